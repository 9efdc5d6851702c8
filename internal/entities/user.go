package entities

import (
	"strings"
	"time"
)

type User struct {
	ID         int64     `json:"id"`
	TelegramID int64     `json:"telegram_id"`
	Username   string    `json:"username"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	ReferralID *int64    `json:"referral_id,omitempty"` // set once at first contact, never reassigned
	JoinDate   time.Time `json:"join_date"`
	IsPartner  bool      `json:"is_partner"`
}

// DisplayName returns "First Last" with empty parts trimmed away.
func (u *User) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}

// Handle returns the @username or a placeholder when the user has none.
func (u *User) Handle() string {
	if u.Username == "" {
		return "no username"
	}
	return "@" + u.Username
}
