package domain

import "time"

// Role identifies which dashboard a user signs into.
type Role string

const (
	RoleConsumer Role = "consumer"
	RoleAdmin    Role = "admin"
	RoleWorker   Role = "worker"
)

// ParseRole validates a role label.
func ParseRole(v string) (Role, bool) {
	switch Role(v) {
	case RoleConsumer, RoleAdmin, RoleWorker:
		return Role(v), true
	}
	return "", false
}

// User is an account able to open a session.
type User struct {
	ID            string
	Email         string
	Name          string
	Role          Role
	PasswordHash  string
	ContactNumber string
	PinCode       string
	CreatedAt     time.Time
}
