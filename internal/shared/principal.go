package shared

// RoleAdmin grants unrestricted access to every task operation.
const RoleAdmin = "admin"

// Principal describes the authenticated actor for the duration of one
// request. The admin capability is resolved once at construction and the
// value is passed immutably through the call chain; nothing downstream
// re-reads session state.
type Principal struct {
	ID    int64
	Name  string
	Roles []string

	admin bool
}

// NewPrincipal builds a Principal from a user record and its role labels.
func NewPrincipal(id int64, name string, roles []string) Principal {
	p := Principal{ID: id, Name: name, Roles: roles}
	for _, role := range roles {
		if role == RoleAdmin {
			p.admin = true
			break
		}
	}
	return p
}

// IsAdmin reports whether the principal carries the admin role.
func (p Principal) IsAdmin() bool {
	return p.admin
}
