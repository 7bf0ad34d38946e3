package auth

import (
	"time"
)

type AccessClaims struct {
	Sub string `json:"sub"` // user id
	Iat int64  `json:"iat"` // issued at
	Exp int64  `json:"exp"` // expires at
}

// Session is the persisted record of one token issuance. Logout flips
// Active; it never deletes the row and never revokes the access token
// itself, which stays valid until Exp.
type Session struct {
	ID        int64
	UserID    int64
	TokenHash string
	Device    string
	IP        string
	PushToken string
	IssuedAt  time.Time
	ExpiresAt time.Time
	Active    bool
}
