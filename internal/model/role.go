package model

// GlobalRole classifies an account at the platform level.  It is set at
// registration time and carried in the JWT's role claim.  Global roles are
// deliberately narrow: ADMIN only administers accounts and may never act
// inside the cinema workflow, and VISITOR is the implicit role of an
// unauthenticated caller (it is never stored).
type GlobalRole string

const (
	RoleVisitor GlobalRole = "VISITOR" // unauthenticated caller; never persisted
	RoleUser    GlobalRole = "USER"    // ordinary account; may hold program-scoped roles
	RoleAdmin   GlobalRole = "ADMIN"   // platform administration only
)

// ParseGlobalRole normalizes a raw role string (e.g. from a JWT claim) into a
// GlobalRole.  Unknown or empty strings resolve to VISITOR so that callers
// holding malformed tokens never gain privileges by accident.
func ParseGlobalRole(s string) GlobalRole {
	switch GlobalRole(s) {
	case RoleUser:
		return RoleUser
	case RoleAdmin:
		return RoleAdmin
	}
	return RoleVisitor
}
