package models

import "github.com/golang-jwt/jwt/v5"

// Roles recognized by the authorization checks. Authentication itself is
// handled by an external service; tokens arrive already issued.
const (
	RoleUser     = "user"
	RoleReviewer = "reviewer"
	RoleAdmin    = "admin"
)

// PrivilegedRole reports whether the role may review feedback and change
// report statuses.
func PrivilegedRole(role string) bool {
	return role == RoleReviewer || role == RoleAdmin
}

// Claims defines the structure of the JWT claims.
type Claims struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}
