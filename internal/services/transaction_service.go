package services

import (
	"context"
	"fmt"
	"log/slog"

	"spendlog/internal/amqp"
	"spendlog/internal/core"
	applog "spendlog/internal/log"
	"spendlog/internal/store"
)

// Publisher announces store changes to other processes.
type Publisher interface {
	PublishTransactionEvent(ctx context.Context, event *amqp.TransactionEvent) error
}

// TransactionService applies mutations to the store and then publishes a
// change event once the new list has been persisted, so consumers reading the
// stored list see the change. The store is the source of truth; a failed
// flush or publish is logged and never fails the mutation.
type TransactionService struct {
	store     *store.Store
	publisher Publisher
}

// NewTransactionService accepts a nil publisher, in which case no events are
// sent.
func NewTransactionService(st *store.Store, publisher Publisher) *TransactionService {
	return &TransactionService{
		store:     st,
		publisher: publisher,
	}
}

func (s *TransactionService) List(opts core.FilterOptions) []core.Transaction {
	return core.Filter(s.store.List(), opts)
}

func (s *TransactionService) Get(id string) (core.Transaction, bool) {
	return s.store.FindByID(id)
}

func (s *TransactionService) Summary() core.Summary {
	return core.Analyze(s.store.List())
}

func (s *TransactionService) Revision() uint64 {
	return s.store.Revision()
}

func (s *TransactionService) Create(ctx context.Context, d core.Draft) core.Transaction {
	t := s.store.Add(d)
	slog.InfoContext(ctx, "Transaction created",
		"id", t.ID,
		"type", t.Type,
		"amount", core.FormatAmount(t.Amount),
		"category", t.Category)
	s.publish(ctx, amqp.ActionCreated, t.ID)
	return t
}

// Update replaces the stored record with id by the draft's values.
func (s *TransactionService) Update(ctx context.Context, id string, d core.Draft) (core.Transaction, error) {
	t := d.WithID(id)
	if err := s.store.Edit(t); err != nil {
		return core.Transaction{}, fmt.Errorf("update %s: %w", id, err)
	}
	slog.InfoContext(ctx, "Transaction updated", "id", id)
	s.publish(ctx, amqp.ActionUpdated, id)
	return t, nil
}

// Delete is idempotent. It reports whether anything was removed; no event is
// published for an absent id.
func (s *TransactionService) Delete(ctx context.Context, id string) bool {
	if !s.store.Remove(id) {
		return false
	}
	slog.InfoContext(ctx, "Transaction deleted", "id", id)
	s.publish(ctx, amqp.ActionDeleted, id)
	return true
}

func (s *TransactionService) publish(ctx context.Context, action, id string) {
	if s.publisher == nil {
		slog.DebugContext(ctx, "No publisher configured, skipping change event", "action", action)
		return
	}
	revision := s.store.Revision()
	if err := s.store.Flush(ctx); err != nil {
		slog.WarnContext(ctx, "Failed to flush transactions before publishing",
			"action", action,
			"id", id,
			"error", err)
	}
	event := amqp.NewTransactionEvent(action, id, revision)
	if err := s.publisher.PublishTransactionEvent(ctx, event); err != nil {
		slog.ErrorContext(ctx, "Failed to publish change event",
			applog.FieldErrorType, applog.ErrorTypeNetwork,
			"action", action,
			applog.FieldTransactionID, id,
			applog.FieldError, err)
	}
}
