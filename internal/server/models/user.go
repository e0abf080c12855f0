package models

import "time"

// Role values come from a fixed table; role-to-permission mapping is decided
// outside this subsystem.
type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RoleProfessor Role = "PROFESSOR"
	RoleAluno     Role = "ALUNO"
)

// User is the principal a credential resolves to. Full member profiles
// live in the academy modules; this subsystem only reads and
// updates the authentication-relevant fields.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	Active       bool
	Phone        string
	Address      string
	CreatedAt    time.Time
}
