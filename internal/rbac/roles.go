package rbac

// Role names. Keep these stable; they are part of auth/RBAC contracts.
//
// - operator: registers items and plans disposal methods.
// - approver: additionally approves/rejects/resets/executes disposals.
// - admin: full access, including item deletion.
const (
	RoleOperator = "operator"
	RoleApprover = "approver"
	RoleAdmin    = "admin"
)

func IsAdmin(role string) bool { return role == RoleAdmin }
