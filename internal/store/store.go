// Package store owns the in-memory transaction list. Every mutation is
// applied immediately and handed to a single background writer; when several
// mutations land before the writer runs, only the latest snapshot is saved.
package store

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"spendlog/internal/core"
	applog "spendlog/internal/log"
)

var ErrNotFound = errors.New("transaction not found")

// Repository is where snapshots of the list are loaded from and saved to.
type Repository interface {
	Load(ctx context.Context) []core.Transaction
	Save(ctx context.Context, list []core.Transaction) error
}

type Option func(*Store)

// WithIDGenerator replaces uuid generation, mostly for tests.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

type Store struct {
	mu    sync.RWMutex
	items []core.Transaction
	rev   uint64

	repo  Repository
	newID func() string
	ctx   context.Context

	pendingMu  sync.Mutex
	pending    []core.Transaction
	hasPending bool

	wake     chan struct{}
	flushReq chan chan struct{}
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// New loads the persisted list once and starts the writer.
func New(ctx context.Context, repo Repository, opts ...Option) *Store {
	s := &Store{
		repo:     repo,
		newID:    uuid.NewString,
		ctx:      context.WithoutCancel(ctx),
		wake:     make(chan struct{}, 1),
		flushReq: make(chan chan struct{}),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.items = repo.Load(ctx)
	if s.items == nil {
		s.items = []core.Transaction{}
	}
	slog.InfoContext(ctx, "Transactions loaded",
		applog.FieldComponent, applog.ComponentStore,
		applog.FieldCount, len(s.items))

	go s.run()
	return s
}

// Add assigns a fresh id and puts the record at the front of the list.
func (s *Store) Add(d core.Draft) core.Transaction {
	s.mu.Lock()
	t := d.WithID(s.newID())
	items := make([]core.Transaction, 0, len(s.items)+1)
	items = append(items, t)
	s.items = append(items, s.items...)
	s.commitLocked()
	s.mu.Unlock()
	return t
}

// Edit replaces the record with the same id, keeping its position.
func (s *Store) Edit(t core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(t.ID)
	if i < 0 {
		return ErrNotFound
	}
	s.items[i] = t
	s.commitLocked()
	return nil
}

// Remove deletes the record with id and reports whether it was there.
// Removing an absent id does nothing.
func (s *Store) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(id)
	if i < 0 {
		return false
	}
	items := make([]core.Transaction, 0, len(s.items)-1)
	items = append(items, s.items[:i]...)
	s.items = append(items, s.items[i+1:]...)
	s.commitLocked()
	return true
}

func (s *Store) FindByID(id string) (core.Transaction, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexLocked(id)
	if i < 0 {
		return core.Transaction{}, false
	}
	return s.items[i], true
}

// List returns a copy of the list, most recent first.
func (s *Store) List() []core.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.Transaction(nil), s.items...)
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Revision increases by one on every mutation.
func (s *Store) Revision() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rev
}

func (s *Store) indexLocked(id string) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) commitLocked() {
	s.rev++
	snapshot := append([]core.Transaction(nil), s.items...)

	s.pendingMu.Lock()
	s.pending = snapshot
	s.hasPending = true
	s.pendingMu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Store) run() {
	defer close(s.done)
	for {
		select {
		case <-s.wake:
			s.writePending()
		case reply := <-s.flushReq:
			s.writePending()
			close(reply)
		case <-s.stop:
			s.writePending()
			return
		}
	}
}

func (s *Store) writePending() {
	s.pendingMu.Lock()
	snapshot, ok := s.pending, s.hasPending
	s.pending, s.hasPending = nil, false
	s.pendingMu.Unlock()
	if !ok {
		return
	}
	if err := s.repo.Save(s.ctx, snapshot); err != nil {
		slog.ErrorContext(s.ctx, "Failed to persist transactions",
			applog.FieldComponent, applog.ComponentStore,
			applog.FieldOperation, applog.OpSave,
			applog.FieldErrorType, applog.ErrorTypeDatabase,
			applog.FieldCount, len(snapshot),
			applog.FieldError, err)
	}
}

// Flush blocks until every mutation made before the call has been handed to
// the repository.
func (s *Store) Flush(ctx context.Context) error {
	reply := make(chan struct{})
	select {
	case s.flushReq <- reply:
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-reply:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close writes any pending snapshot and stops the writer. Mutations made
// after Close stay in memory only.
func (s *Store) Close(ctx context.Context) error {
	s.stopOnce.Do(func() { close(s.stop) })
	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
