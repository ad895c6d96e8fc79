package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin    = "admin"
	RoleEmpleado = "empleado"
)

// User representa un usuario del sistema.
type User struct {
	ID            string
	Username      string
	PasswordHash  string // bcrypt
	Role          string // admin, empleado
	Status        string // active, archived
	ArchiveReason string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsValidRole indica si role es un rol conocido.
func IsValidRole(role string) bool {
	return role == RoleAdmin || role == RoleEmpleado
}
