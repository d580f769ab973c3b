package items

import (
	"context"
	"fmt"
	"strings"
	"time"

	"disposal-platform/internal/audit"
	"disposal-platform/internal/catalog"
	"disposal-platform/internal/planner"
)

// Locker serializes a named job across processes. Optional; a nil Locker
// disables the guard. See utils.RedisJobLock.
type Locker interface {
	// Acquire returns ok=false when the lock is already held elsewhere.
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(context.Context) error, ok bool, err error)
}

const (
	autoPlanLockKey = "jobs:auto_plan"
	autoPlanLockTTL = 30 * time.Second
)

// Service orchestrates the disposal workflow.
//
// Contract per operation: validate input, load current state, compute
// derived values through the planner, then persist the update and append
// exactly one audit entry inside one store transaction. Any failure leaves
// the store in its pre-operation state.
type Service struct {
	store   Store
	catalog *catalog.Catalog

	// locker guards AutoPlan so only one bulk pass runs at a time.
	locker Locker

	// clock is injectable for deterministic tests.
	clock func() time.Time
}

func NewService(store Store, cat *catalog.Catalog) *Service {
	return &Service{store: store, catalog: cat, clock: time.Now}
}

// WithLocker installs the optional bulk-apply lock.
func (s *Service) WithLocker(l Locker) *Service {
	s.locker = l
	return s
}

type AddRequest struct {
	Name        string `json:"name"`
	Quantity    int    `json:"quantity"`
	FacilityAge int    `json:"facility_age"`
}

// Add registers a new item in status pending with no method selected.
// Quantity and facility age are clamped into their valid ranges rather
// than rejected.
func (s *Service) Add(ctx context.Context, req AddRequest) (Item, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return Item{}, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if runeLen(name) > MaxNameLength {
		return Item{}, fmt.Errorf("%w: name must be at most %d characters", ErrValidation, MaxNameLength)
	}

	quantity := ClampQuantity(req.Quantity)
	age := ClampFacilityAge(req.FacilityAge)
	now := s.clock().UTC()

	it := Item{
		Name:        name,
		Quantity:    quantity,
		FacilityAge: age,
		Status:      StatusPending,
		CreatedAt:   now,
	}
	entry := audit.Entry{
		ItemName:  name,
		Action:    audit.ActionAdd,
		Detail:    fmt.Sprintf("quantity: %d, facility age: %d", quantity, age),
		CreatedAt: now,
	}
	return s.store.Insert(ctx, it, entry)
}

// Delete removes an item in any status. The audit trail keeps the record.
func (s *Service) Delete(ctx context.Context, id int64) error {
	now := s.clock().UTC()
	return s.store.Delete(ctx, id, func(it Item) audit.Entry {
		return audit.Entry{
			ItemID:    it.ID,
			ItemName:  it.Name,
			Action:    audit.ActionDelete,
			Detail:    fmt.Sprintf("status: %s", it.Status),
			CreatedAt: now,
		}
	})
}

// SelectMethod assigns a disposal method, recomputes all derived fields
// from scratch and resets the status to pending.
func (s *Service) SelectMethod(ctx context.Context, id int64, method catalog.Method, mitigationNote string) (Item, error) {
	if !s.catalog.Contains(method) {
		return Item{}, fmt.Errorf("%w: unknown disposal method %q", ErrValidation, method)
	}
	note := strings.TrimSpace(mitigationNote)
	if runeLen(note) > MaxNoteLength {
		return Item{}, fmt.Errorf("%w: mitigation note must be at most %d characters", ErrValidation, MaxNoteLength)
	}

	now := s.clock().UTC()
	return s.store.Mutate(ctx, id, func(it *Item) (audit.Entry, error) {
		ev, err := planner.Evaluate(s.catalog, method, it.Quantity)
		if err != nil {
			return audit.Entry{}, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		applyEvaluation(it, ev)
		it.MitigationNote = note
		return audit.Entry{
			ItemID:    it.ID,
			ItemName:  it.Name,
			Action:    audit.ActionSelectMethod,
			Detail:    fmt.Sprintf("method: %s, cost: %d", s.catalog.Label(method), ev.Cost),
			CreatedAt: now,
		}, nil
	})
}

// ApplyRecommendation selects the recommended method for one item.
// The mitigation note is left untouched.
func (s *Service) ApplyRecommendation(ctx context.Context, id int64) (Item, error) {
	now := s.clock().UTC()
	return s.store.Mutate(ctx, id, func(it *Item) (audit.Entry, error) {
		method := planner.Recommend(it.Quantity, it.FacilityAge)
		ev, err := planner.Evaluate(s.catalog, method, it.Quantity)
		if err != nil {
			return audit.Entry{}, err
		}
		applyEvaluation(it, ev)
		return audit.Entry{
			ItemID:    it.ID,
			ItemName:  it.Name,
			Action:    audit.ActionApplyRecommendation,
			Detail:    fmt.Sprintf("method: %s", s.catalog.Label(method)),
			CreatedAt: now,
		}, nil
	})
}

// AutoPlan applies the recommended method to every item that has none,
// as one all-or-nothing batch with a single summary audit entry.
// Returns the number of items updated; zero eligible items write no entry.
func (s *Service) AutoPlan(ctx context.Context) (int, error) {
	if s.locker != nil {
		release, ok, err := s.locker.Acquire(ctx, autoPlanLockKey, autoPlanLockTTL)
		if err != nil {
			return 0, err
		}
		if !ok {
			return 0, ErrBusy
		}
		defer func() { _ = release(ctx) }()
	}

	now := s.clock().UTC()
	return s.store.MutateUnplanned(ctx,
		func(it *Item) error {
			ev, err := planner.Evaluate(s.catalog, planner.Recommend(it.Quantity, it.FacilityAge), it.Quantity)
			if err != nil {
				return err
			}
			applyEvaluation(it, ev)
			return nil
		},
		func(updated int) audit.Entry {
			return audit.Entry{
				Action:    audit.ActionBulkApply,
				Detail:    fmt.Sprintf("applied recommended method to %d items", updated),
				CreatedAt: now,
			}
		},
	)
}

// Approve marks an item approved. Requires a selected method; high-risk
// items (risk score >= 3) additionally require a non-blank mitigation note.
// No catalog entry currently assigns risk 3, but the catalog is injected
// and may change, so the gate stays.
func (s *Service) Approve(ctx context.Context, id int64) (Item, error) {
	now := s.clock().UTC()
	return s.store.Mutate(ctx, id, func(it *Item) (audit.Entry, error) {
		if it.Method == "" {
			return audit.Entry{}, fmt.Errorf("%w: select a disposal method first", ErrPrecondition)
		}
		if it.RiskScore >= 3 && strings.TrimSpace(it.MitigationNote) == "" {
			return audit.Entry{}, fmt.Errorf("%w: high-risk disposal requires a mitigation note", ErrPrecondition)
		}
		it.Status = StatusApproved
		return audit.Entry{
			ItemID:    it.ID,
			ItemName:  it.Name,
			Action:    audit.ActionApprove,
			Detail:    fmt.Sprintf("method: %s", it.Method),
			CreatedAt: now,
		}, nil
	})
}

// Reject marks an item rejected.
func (s *Service) Reject(ctx context.Context, id int64) (Item, error) {
	now := s.clock().UTC()
	return s.store.Mutate(ctx, id, func(it *Item) (audit.Entry, error) {
		it.Status = StatusRejected
		return audit.Entry{
			ItemID:    it.ID,
			ItemName:  it.Name,
			Action:    audit.ActionReject,
			CreatedAt: now,
		}, nil
	})
}

// Reset returns a rejected item to pending, clearing the method and every
// derived field back to the state it had right after Add.
func (s *Service) Reset(ctx context.Context, id int64) (Item, error) {
	now := s.clock().UTC()
	return s.store.Mutate(ctx, id, func(it *Item) (audit.Entry, error) {
		if it.Status != StatusRejected {
			return audit.Entry{}, fmt.Errorf("%w: only rejected items can be reset", ErrPrecondition)
		}
		it.Method = ""
		it.Cost = 0
		it.EnvScore = 0
		it.RiskScore = 0
		it.ExpectedBenefit = 0
		it.NetEffect = 0
		it.MitigationNote = ""
		it.Status = StatusPending
		return audit.Entry{
			ItemID:    it.ID,
			ItemName:  it.Name,
			Action:    audit.ActionReset,
			Detail:    "rejected -> pending",
			CreatedAt: now,
		}, nil
	})
}

// Execute performs the disposal of an approved item.
func (s *Service) Execute(ctx context.Context, id int64) (Item, error) {
	now := s.clock().UTC()
	return s.store.Mutate(ctx, id, func(it *Item) (audit.Entry, error) {
		if it.Status != StatusApproved {
			return audit.Entry{}, fmt.Errorf("%w: only approved items can be executed", ErrPrecondition)
		}
		it.Status = StatusExecuted
		return audit.Entry{
			ItemID:    it.ID,
			ItemName:  it.Name,
			Action:    audit.ActionExecute,
			Detail:    fmt.Sprintf("method: %s, cost: %d", it.Method, it.Cost),
			CreatedAt: now,
		}, nil
	})
}

func (s *Service) Get(ctx context.Context, id int64) (Item, error) {
	return s.store.Get(ctx, id)
}

// List returns items newest first, optionally filtered by name substring,
// status and method.
func (s *Service) List(ctx context.Context, f ListFilter) ([]Item, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, f.Status)
	}
	if f.Method != "" && !s.catalog.Contains(f.Method) {
		return nil, fmt.Errorf("%w: unknown disposal method %q", ErrValidation, f.Method)
	}
	return s.store.List(ctx, f)
}

// Recommendation returns the method the planner would pick for an item,
// without mutating anything.
func (s *Service) Recommendation(ctx context.Context, id int64) (catalog.Method, error) {
	it, err := s.store.Get(ctx, id)
	if err != nil {
		return "", err
	}
	return planner.Recommend(it.Quantity, it.FacilityAge), nil
}

// applyEvaluation overwrites the derived fields and resets the status, so
// a changed method is always recomputed from scratch and re-reviewed.
func applyEvaluation(it *Item, ev planner.Evaluation) {
	it.Method = ev.Method
	it.Cost = ev.Cost
	it.EnvScore = ev.EnvScore
	it.RiskScore = ev.RiskScore
	it.ExpectedBenefit = ev.ExpectedBenefit
	it.NetEffect = ev.NetEffect
	it.Status = StatusPending
}
