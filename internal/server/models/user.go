package models

import "time"

// User is a credential record. SessionMarker holds the id of the last
// issued token; HasSession is false until the first issuance.
type User struct {
	ID            int64     `db:"id"`
	Email         string    `db:"email"`
	PasswordHash  string    `db:"password_hash"`
	SessionMarker string    `db:"session_marker"`
	HasSession    bool      `db:"-"`
	CreatedAt     time.Time `db:"created_at"`
}

// Principal is the authenticated caller resolved from a bearer token.
type Principal struct {
	UserID  int64
	Email   string
	TokenID string
}
