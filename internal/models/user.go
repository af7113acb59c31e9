package models

// UserRole represents the roles known to the inspection workflow.
type UserRole string

const (
	RoleMaster UserRole = "master"
	RoleWorker UserRole = "worker"
)

// Valid reports whether the role is one of the supported roles.
func (r UserRole) Valid() bool {
	return r == RoleMaster || r == RoleWorker
}

// User is reference data describing a person acting on sheets.
// Name doubles as the signature written onto a sheet.
type User struct {
	ID   string   `json:"id" yaml:"id"`
	Name string   `json:"name" yaml:"name"`
	Role UserRole `json:"role" yaml:"role"`
}

// IsMaster reports whether the user holds the supervising role.
func (u *User) IsMaster() bool {
	return u != nil && u.Role == RoleMaster
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
