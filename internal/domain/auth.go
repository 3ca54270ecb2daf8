package domain

import "time"

// Session is issued after a successful authentication and consumed by
// dashboard bootstrap.
type Session struct {
	ID        string
	UserID    string
	Email     string
	Role      Role
	Token     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// RememberedSession is what "remember me" persists between visits.
type RememberedSession struct {
	Email string
	Role  Role
}
