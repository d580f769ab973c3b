package audit

import "time"

// Entry is an immutable, append-only audit log record.
//
// Invariants:
// - Entries are never updated or deleted.
// - ItemID may reference an item that has since been deleted; the history
//   survives item deletion (no foreign key).
// - Bulk actions carry no item reference (ItemID 0, stored as NULL).
//
// Storage (Postgres):
// - Table audit_log with an INSERT-only policy.
type Entry struct {
	ID int64 `json:"id" db:"id"`

	// ItemID is the target item, 0 when the action is not item-scoped
	// (bulk apply). Stored as NULL in that case.
	ItemID int64 `json:"item_id,omitempty" db:"item_id"`

	// ItemName is captured at write time so the record stays readable
	// after the item is deleted.
	ItemName string `json:"item_name,omitempty" db:"item_name"`

	Action Action `json:"action" db:"action"`

	// Detail is a short human-readable description of key parameters
	// (method label, cost, counts) for review.
	Detail string `json:"detail,omitempty" db:"detail"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type Action string

const (
	ActionAdd                 Action = "add"
	ActionDelete              Action = "delete"
	ActionSelectMethod        Action = "select_method"
	ActionApplyRecommendation Action = "apply_recommendation"
	ActionBulkApply           Action = "bulk_apply"
	ActionApprove             Action = "approve"
	ActionReject              Action = "reject"
	ActionReset               Action = "reset"
	ActionExecute             Action = "execute"
)
