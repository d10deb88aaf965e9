package models

import "time"

// Session is the short-lived authenticated context. It lives in redis for
// the transport-session lifetime and is re-derivable from a valid
// remember token.
type Session struct {
	ID            string    `json:"id"`
	AccountID     string    `json:"accountId"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	IsVerified    bool      `json:"isVerified"`
	Role          string    `json:"role"`
	CSRFToken     string    `json:"csrfToken"`
	EstablishedAt time.Time `json:"establishedAt"`
}
