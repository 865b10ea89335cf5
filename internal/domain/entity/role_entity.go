package entity

// Role is the closed set of principals.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleProfessor Role = "professor"
	RoleStudent   Role = "student"
)

// Roles lists every valid role.
var Roles = []Role{RoleAdmin, RoleProfessor, RoleStudent}

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleProfessor, RoleStudent:
		return true
	}
	return false
}

func (r Role) String() string { return string(r) }
