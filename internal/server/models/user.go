package models

import "time"

// Identity is the authenticated principal. It carries only non-secret
// fields and is what the session layer hands to the rest of the server.
type Identity struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Nickname string `json:"nickname"`
	IsAdmin  bool   `json:"isAdmin"`
}

// User is a stored account including its credential record.
// PasswordHash never leaves the service layer; use Identity for responses.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	Nickname     string
	IsAdmin      bool
	CreatedAt    time.Time
}

// Identity projects the non-secret fields of u.
func (u *User) Identity() *Identity {
	return &Identity{
		ID:       u.ID,
		Username: u.Username,
		Nickname: u.Nickname,
		IsAdmin:  u.IsAdmin,
	}
}
