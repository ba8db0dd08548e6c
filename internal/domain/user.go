package domain

import "time"

// Role is the coarse permission level of a principal.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Principal is an account that owns tasks and can present credentials.
type Principal struct {
	ID         string
	Name       string
	Email      string
	SecretHash string
	Role       Role
	CreatedAt  time.Time
}
