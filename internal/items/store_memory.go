package items

import (
	"context"
	"sort"
	"strings"
	"sync"

	"disposal-platform/internal/audit"
)

// MemoryStore is an in-memory Store for tests and early development.
// A single mutex serializes all writes, which also gives each mutating
// call the same all-or-nothing behavior as a database transaction: the
// item copy and audit entry are committed only after fn succeeds.
type MemoryStore struct {
	mu    sync.Mutex
	seq   int64
	items map[int64]Item
	audit *audit.MemoryRepo
}

// NewMemoryStore builds a store writing audit entries into auditRepo,
// so the audit read surface sees workflow history as it would in Postgres.
func NewMemoryStore(auditRepo *audit.MemoryRepo) *MemoryStore {
	if auditRepo == nil {
		auditRepo = audit.NewMemoryRepo()
	}
	return &MemoryStore{items: map[int64]Item{}, audit: auditRepo}
}

// AuditEntries returns everything appended so far, oldest first.
func (s *MemoryStore) AuditEntries() []audit.Entry { return s.audit.Entries() }

func (s *MemoryStore) Insert(ctx context.Context, it Item, entry audit.Entry) (Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	it.ID = s.seq
	entry.ItemID = it.ID
	if _, err := s.audit.Append(ctx, entry); err != nil {
		return Item{}, err
	}
	s.items[it.ID] = it
	return it, nil
}

func (s *MemoryStore) Get(ctx context.Context, id int64) (Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	it, ok := s.items[id]
	if !ok {
		return Item{}, ErrNotFound
	}
	return it, nil
}

func (s *MemoryStore) List(ctx context.Context, f ListFilter) ([]Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Item, 0, len(s.items))
	for _, it := range s.items {
		if f.NameContains != "" && !strings.Contains(strings.ToLower(it.Name), strings.ToLower(f.NameContains)) {
			continue
		}
		if f.Status != "" && it.Status != f.Status {
			continue
		}
		if f.Method != "" && it.Method != f.Method {
			continue
		}
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *MemoryStore) Mutate(ctx context.Context, id int64, fn MutateFunc) (Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	it, ok := s.items[id]
	if !ok {
		return Item{}, ErrNotFound
	}

	// fn works on a copy; nothing is visible until it succeeds.
	updated := it
	entry, err := fn(&updated)
	if err != nil {
		return Item{}, err
	}
	if _, err := s.audit.Append(ctx, entry); err != nil {
		return Item{}, err
	}
	s.items[id] = updated
	return updated, nil
}

func (s *MemoryStore) MutateUnplanned(ctx context.Context, fn func(it *Item) error, summary func(updated int) audit.Entry) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]int64, 0)
	for id, it := range s.items {
		if it.Method == "" {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	staged := make(map[int64]Item, len(ids))
	for _, id := range ids {
		updated := s.items[id]
		if err := fn(&updated); err != nil {
			return 0, err
		}
		staged[id] = updated
	}
	if len(staged) == 0 {
		return 0, nil
	}
	if _, err := s.audit.Append(ctx, summary(len(staged))); err != nil {
		return 0, err
	}
	for id, it := range staged {
		s.items[id] = it
	}
	return len(staged), nil
}

func (s *MemoryStore) Delete(ctx context.Context, id int64, entry func(it Item) audit.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	it, ok := s.items[id]
	if !ok {
		return ErrNotFound
	}
	if _, err := s.audit.Append(ctx, entry(it)); err != nil {
		return err
	}
	delete(s.items, id)
	return nil
}
