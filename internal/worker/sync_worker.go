package worker

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"spendlog/internal/amqp"
	"spendlog/internal/core"
	applog "spendlog/internal/log"
	"spendlog/internal/sheets"
)

// Source loads the persisted transaction list.
type Source interface {
	Load(ctx context.Context) []core.Transaction
}

// SyncWorker mirrors the persisted transaction list to a spreadsheet. Change
// events and the periodic tick both trigger a full export; an export is
// skipped when the list is identical to the one exported last.
type SyncWorker struct {
	source   Source
	exporter sheets.TransactionExporter

	mu       sync.Mutex
	lastHash [sha256.Size]byte
	synced   bool
}

func NewSyncWorker(source Source, exporter sheets.TransactionExporter) *SyncWorker {
	return &SyncWorker{
		source:   source,
		exporter: exporter,
	}
}

// HandleTransactionEvent processes a single change event from AMQP.
func (w *SyncWorker) HandleTransactionEvent(ctx context.Context, msg *amqp.TransactionEvent) error {
	slog.InfoContext(ctx, "Processing transaction event",
		"action", msg.Action,
		"id", msg.ID,
		"revision", msg.Revision)

	if err := w.SyncNow(ctx); err != nil {
		return fmt.Errorf("sync after %s %s: %w", msg.Action, msg.ID, err)
	}
	return nil
}

// SyncNow exports the current list unless it is unchanged since the last
// successful export.
func (w *SyncWorker) SyncNow(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	list := w.source.Load(ctx)
	raw, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("encode transactions: %w", err)
	}
	hash := sha256.Sum256(raw)
	if w.synced && hash == w.lastHash {
		slog.DebugContext(ctx, "Transactions unchanged, skipping export",
			applog.FieldComponent, applog.ComponentWorker,
			applog.FieldCount, len(list))
		return nil
	}

	if err := w.exporter.Export(ctx, list); err != nil {
		return fmt.Errorf("export transactions: %w", err)
	}
	w.lastHash, w.synced = hash, true

	slog.InfoContext(ctx, "Transactions synced",
		applog.FieldComponent, applog.ComponentWorker,
		applog.FieldOperation, applog.OpSync,
		applog.FieldCount, len(list))
	return nil
}

// RunPeriodic calls SyncNow every interval until ctx is done. This is the
// backup path for lost or dropped events.
func (w *SyncWorker) RunPeriodic(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.SyncNow(ctx); err != nil {
				slog.ErrorContext(ctx, "Periodic sync failed",
					applog.FieldComponent, applog.ComponentWorker,
					applog.FieldOperation, applog.OpSync,
					applog.FieldError, err)
			}
		}
	}
}
