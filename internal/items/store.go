package items

import (
	"context"

	"disposal-platform/internal/audit"
)

// MutateFunc is the unit of work applied to a locked item. It validates
// preconditions, mutates the item in place and returns the audit entry to
// append. Returning an error aborts the whole operation: no field update
// and no audit row are persisted.
type MutateFunc func(it *Item) (audit.Entry, error)

// Store is the persistence contract for items and their audit trail.
//
// Every mutating method is a single atomic unit: item write and audit
// append either both commit or neither does. Implementations serialize
// concurrent writes to the same item id (row locks in Postgres, a mutex
// in memory).
type Store interface {
	// Insert persists a new item and its audit entry. The entry's ItemID
	// is filled in from the assigned id.
	Insert(ctx context.Context, it Item, entry audit.Entry) (Item, error)

	// Get returns the item or ErrNotFound.
	Get(ctx context.Context, id int64) (Item, error)

	// List returns items matching the filter, newest first.
	List(ctx context.Context, f ListFilter) ([]Item, error)

	// Mutate loads the item (ErrNotFound if missing), applies fn and
	// persists the result together with the returned audit entry.
	Mutate(ctx context.Context, id int64, fn MutateFunc) (Item, error)

	// MutateUnplanned applies fn to every item without a method, all or
	// nothing. When at least one item was updated, the summary entry is
	// appended in the same unit; zero eligible items write no audit row.
	MutateUnplanned(ctx context.Context, fn func(it *Item) error, summary func(updated int) audit.Entry) (int, error)

	// Delete removes the item in any status, appending the entry built
	// from its last observed state.
	Delete(ctx context.Context, id int64, entry func(it Item) audit.Entry) error
}
