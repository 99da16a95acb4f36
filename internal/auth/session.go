package auth

import "github.com/google/uuid"

// Session identifies the authenticated account a ledger call runs on behalf
// of. It is passed explicitly into every service operation; there is no
// process-wide current user.
type Session struct {
	UserID uuid.UUID
	Email  string
}

// Valid reports whether the session belongs to an authenticated account.
func (s Session) Valid() bool {
	return s.UserID != uuid.Nil
}
