package audit

import (
	"context"
	"errors"
	"time"
)

// DefaultListLimit caps how many entries a single listing returns.
const DefaultListLimit = 200

// Repository is the persistence contract for audit entries.
//
// It MUST stay append-only; there are no Update or Delete methods.
type Repository interface {
	Append(ctx context.Context, e Entry) (Entry, error)
	List(ctx context.Context, limit int) ([]Entry, error)
}

var ErrInvalidEntry = errors.New("audit: invalid entry")

// Service records and lists workflow audit history.
//
// Most entries are written by the items store inside the same transaction
// as the item mutation; this service is the read surface plus a standalone
// append for callers outside a workflow transaction.
type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

func (s *Service) Append(ctx context.Context, e Entry) (Entry, error) {
	if s.repo == nil {
		return Entry{}, errors.New("audit: repository not configured")
	}
	if e.Action == "" {
		return Entry{}, ErrInvalidEntry
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.clock().UTC()
	}
	return s.repo.Append(ctx, e)
}

// List returns entries newest first. A non-positive limit falls back to
// DefaultListLimit, which is also the ceiling.
func (s *Service) List(ctx context.Context, limit int) ([]Entry, error) {
	if s.repo == nil {
		return nil, errors.New("audit: repository not configured")
	}
	if limit <= 0 || limit > DefaultListLimit {
		limit = DefaultListLimit
	}
	return s.repo.List(ctx, limit)
}
