package model

// Role codes as constants
const (
	RoleAdmin    = "admin"
	RoleCustomer = "customer"
)

// ValidRole reports whether code is a known role.
func ValidRole(code string) bool {
	return code == RoleAdmin || code == RoleCustomer
}
