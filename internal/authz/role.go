package authz

import "fmt"

// Role is the closed set of account roles. Grants are enumerated per role;
// there is no inheritance between roles.
type Role string

const (
	RoleSuperadmin Role = "superadmin"
	RoleAdmin      Role = "admin"
	RoleManagement Role = "management"
	RoleTeacher    Role = "teacher"
	RoleStudent    Role = "student"
	RoleAcademics  Role = "academics"
)

// Roles lists every defined role in seeding order.
func Roles() []Role {
	return []Role{RoleSuperadmin, RoleAdmin, RoleManagement, RoleTeacher, RoleStudent, RoleAcademics}
}

// ParseRole converts a stored string into a Role, rejecting unknown values.
func ParseRole(value string) (Role, error) {
	switch Role(value) {
	case RoleSuperadmin, RoleAdmin, RoleManagement, RoleTeacher, RoleStudent, RoleAcademics:
		return Role(value), nil
	default:
		return "", fmt.Errorf("authz: unknown role %q", value)
	}
}

// Valid reports whether the role is one of the defined constants.
func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

func (r Role) String() string {
	return string(r)
}
