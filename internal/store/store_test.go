package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spendlog/internal/core"
	"spendlog/internal/kv/memory"
	"spendlog/internal/persistence"
)

type fakeRepo struct {
	mu      sync.Mutex
	initial []core.Transaction
	saves   [][]core.Transaction
	err     error
}

func (r *fakeRepo) Load(context.Context) []core.Transaction {
	return r.initial
}

func (r *fakeRepo) Save(_ context.Context, list []core.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves = append(r.saves, list)
	return r.err
}

func (r *fakeRepo) saveCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.saves)
}

func (r *fakeRepo) last() []core.Transaction {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.saves) == 0 {
		return nil
	}
	return r.saves[len(r.saves)-1]
}

func sequentialIDs() Option {
	n := 0
	var mu sync.Mutex
	return WithIDGenerator(func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("id-%d", n)
	})
}

func draft(title, amount string) core.Draft {
	return core.Draft{Type: core.Expense, Title: title, Amount: core.MustAmount(amount), Date: "2025-01-01", Category: core.CategoryFood}
}

func newStore(t *testing.T, repo *fakeRepo, opts ...Option) *Store {
	t.Helper()
	s := New(context.Background(), repo, opts...)
	t.Cleanup(func() { s.Close(context.Background()) })
	return s
}

func TestNew_LoadsPersistedList(t *testing.T) {
	repo := &fakeRepo{initial: []core.Transaction{{ID: "x", Title: "Rent"}}}
	s := newStore(t, repo)

	assert.Equal(t, 1, s.Len())
	got, ok := s.FindByID("x")
	assert.True(t, ok)
	assert.Equal(t, "Rent", got.Title)
	assert.Zero(t, s.Revision())
}

func TestAdd_PrependsAndPersists(t *testing.T) {
	repo := &fakeRepo{}
	s := newStore(t, repo, sequentialIDs())

	first := s.Add(draft("Coffee", "3"))
	second := s.Add(draft("Bus", "2.5"))

	assert.Equal(t, "id-1", first.ID)
	assert.Equal(t, "id-2", second.ID)
	list := s.List()
	require.Len(t, list, 2)
	assert.Equal(t, "Bus", list[0].Title)
	assert.Equal(t, "Coffee", list[1].Title)
	assert.Equal(t, uint64(2), s.Revision())

	require.NoError(t, s.Flush(context.Background()))
	assert.Equal(t, list, repo.last())
}

func TestAdd_GeneratesUniqueUUIDs(t *testing.T) {
	s := newStore(t, &fakeRepo{})
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		id := s.Add(draft("t", "1")).ID
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestEdit_ReplacesInPlace(t *testing.T) {
	repo := &fakeRepo{}
	s := newStore(t, repo, sequentialIDs())
	s.Add(draft("A", "1"))
	b := s.Add(draft("B", "2"))
	s.Add(draft("C", "3"))

	b.Title = "B2"
	b.Amount = core.MustAmount("20")
	require.NoError(t, s.Edit(b))

	list := s.List()
	assert.Equal(t, []string{"C", "B2", "A"}, []string{list[0].Title, list[1].Title, list[2].Title})
	assert.Equal(t, "20.00", core.FormatAmount(list[1].Amount))
	assert.Equal(t, uint64(4), s.Revision())
}

func TestEdit_UnknownIDIsNotFound(t *testing.T) {
	repo := &fakeRepo{}
	s := newStore(t, repo, sequentialIDs())
	s.Add(draft("A", "1"))
	require.NoError(t, s.Flush(context.Background()))
	saves := repo.saveCount()

	err := s.Edit(core.Transaction{ID: "nope", Title: "ghost"})
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, uint64(1), s.Revision())

	require.NoError(t, s.Flush(context.Background()))
	assert.Equal(t, saves, repo.saveCount())
}

func TestRemove_IsIdempotent(t *testing.T) {
	repo := &fakeRepo{}
	s := newStore(t, repo, sequentialIDs())
	a := s.Add(draft("A", "1"))
	s.Add(draft("B", "2"))
	s.Add(draft("C", "3"))

	assert.True(t, s.Remove(a.ID))
	require.NoError(t, s.Flush(context.Background()))
	saves := repo.saveCount()
	rev := s.Revision()
	before := s.List()

	assert.False(t, s.Remove(a.ID))
	assert.False(t, s.Remove("never-existed"))
	require.NoError(t, s.Flush(context.Background()))

	assert.Equal(t, saves, repo.saveCount(), "absent ids must not trigger a write")
	assert.Equal(t, rev, s.Revision())
	assert.Equal(t, before, s.List(), "contents and order unchanged")
	assert.Equal(t, []string{"id-3", "id-2"}, ids(s.List()))
	_, ok := s.FindByID(a.ID)
	assert.False(t, ok)
	assert.Equal(t, before, repo.last())
}

func TestRemove_ConcurrentSameIDRemovesOnce(t *testing.T) {
	s := newStore(t, &fakeRepo{}, sequentialIDs())
	a := s.Add(draft("A", "1"))
	rev := s.Revision()

	var wg sync.WaitGroup
	var mu sync.Mutex
	removed := 0
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.Remove(a.ID) {
				mu.Lock()
				removed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, removed)
	assert.Equal(t, rev+1, s.Revision())
}

func ids(list []core.Transaction) []string {
	out := make([]string, len(list))
	for i, t := range list {
		out[i] = t.ID
	}
	return out
}

func TestList_ReturnsCopy(t *testing.T) {
	s := newStore(t, &fakeRepo{}, sequentialIDs())
	s.Add(draft("A", "1"))

	list := s.List()
	list[0].Title = "mutated"

	got, _ := s.FindByID("id-1")
	assert.Equal(t, "A", got.Title)
}

func TestSaveFailureDoesNotFailMutation(t *testing.T) {
	repo := &fakeRepo{err: errors.New("quota exceeded")}
	s := newStore(t, repo)

	tx := s.Add(draft("A", "1"))
	require.NoError(t, s.Flush(context.Background()))

	got, ok := s.FindByID(tx.ID)
	assert.True(t, ok)
	assert.Equal(t, "A", got.Title)
}

func TestConcurrentMutationsPersistLatestSnapshot(t *testing.T) {
	repo := &fakeRepo{}
	s := newStore(t, repo)

	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Add(draft("t", "1"))
		}()
	}
	wg.Wait()

	require.NoError(t, s.Flush(context.Background()))
	assert.Len(t, repo.last(), 40)
	assert.Equal(t, uint64(40), s.Revision())
	assert.LessOrEqual(t, repo.saveCount(), 40)
}

func TestClose_FlushesPending(t *testing.T) {
	repo := &fakeRepo{}
	s := New(context.Background(), repo)
	s.Add(draft("A", "1"))

	require.NoError(t, s.Close(context.Background()))
	require.NoError(t, s.Close(context.Background()))
	assert.Len(t, repo.last(), 1)
	assert.NoError(t, s.Flush(context.Background()))
}

func TestStoreSurvivesRestartThroughPersistence(t *testing.T) {
	ctx := context.Background()
	kv := memory.New()

	s1 := New(ctx, persistence.New(kv, ""))
	added := s1.Add(draft("Groceries", "45.10"))
	require.NoError(t, s1.Close(ctx))

	s2 := New(ctx, persistence.New(kv, ""))
	defer s2.Close(ctx)
	got, ok := s2.FindByID(added.ID)
	require.True(t, ok)
	assert.Equal(t, "45.10", core.FormatAmount(got.Amount))
}
