// Package persistence serializes the transaction list into a kv.Store under a
// single fixed key.
package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"spendlog/internal/core"
	"spendlog/internal/kv"
	applog "spendlog/internal/log"
)

const DefaultKey = "transactions"

type Adapter struct {
	store kv.Store
	key   string
}

// New returns an adapter over store. An empty key selects DefaultKey.
func New(store kv.Store, key string) *Adapter {
	if key == "" {
		key = DefaultKey
	}
	return &Adapter{store: store, key: key}
}

func (a *Adapter) Key() string { return a.key }

// Load never fails: a missing, unreadable or corrupt value yields an empty
// list.
func (a *Adapter) Load(ctx context.Context) []core.Transaction {
	raw, err := a.store.Get(ctx, a.key)
	if errors.Is(err, kv.ErrNotFound) {
		return []core.Transaction{}
	}
	if err != nil {
		slog.WarnContext(ctx, "Failed to read stored transactions",
			applog.FieldComponent, applog.ComponentPersistence,
			applog.FieldOperation, applog.OpLoad,
			applog.FieldStorageKey, a.key,
			applog.FieldError, err)
		return []core.Transaction{}
	}

	var list []core.Transaction
	if err := json.Unmarshal(raw, &list); err != nil {
		slog.WarnContext(ctx, "Stored transactions are unreadable, starting empty",
			applog.FieldComponent, applog.ComponentPersistence,
			applog.FieldOperation, applog.OpLoad,
			applog.FieldStorageKey, a.key,
			applog.FieldError, err)
		return []core.Transaction{}
	}
	if list == nil {
		list = []core.Transaction{}
	}
	return list
}

// Save overwrites the stored list.
func (a *Adapter) Save(ctx context.Context, list []core.Transaction) error {
	if list == nil {
		list = []core.Transaction{}
	}
	raw, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("encode transactions: %w", err)
	}
	if err := a.store.Set(ctx, a.key, raw); err != nil {
		return fmt.Errorf("write transactions: %w", err)
	}
	slog.DebugContext(ctx, "Transactions saved",
		applog.FieldComponent, applog.ComponentPersistence,
		applog.FieldOperation, applog.OpSave,
		applog.FieldStorageKey, a.key,
		applog.FieldCount, len(list))
	return nil
}
