package model

import "time"

// User represents a platform account. Moderation state (ban/suspension)
// lives directly on the row and is attributed to the acting moderator.
type User struct {
	ID           int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string `gorm:"uniqueIndex;size:32;not null" json:"username"`
	Email        string `gorm:"size:128" json:"email"`
	PasswordHash string `gorm:"size:72;not null" json:"-"`
	IsModerator  bool   `gorm:"default:false" json:"is_moderator"`

	IsBanned       bool       `gorm:"default:false" json:"is_banned"`
	BanReason      string     `gorm:"size:255" json:"ban_reason,omitempty"`
	BanExpiresAt   *time.Time `json:"ban_expires_at,omitempty"`
	BannedByUserID *int64     `json:"banned_by_user_id,omitempty"`
	SuspendedUntil *time.Time `json:"suspended_until,omitempty"`

	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	LastLoginAt *time.Time `json:"last_login_at"`
	LastLoginIP string     `gorm:"size:45" json:"last_login_ip"`
}

// BanActive reports whether the user's ban is in force at the given time.
// A ban with a past expiry is treated as lifted; the row is not rewritten
// (same lazy policy as request/invitation TTLs).
func (u *User) BanActive(now time.Time) bool {
	if !u.IsBanned {
		return false
	}
	return u.BanExpiresAt == nil || u.BanExpiresAt.After(now)
}

// SuspensionActive reports whether the user is suspended at the given time.
func (u *User) SuspensionActive(now time.Time) bool {
	return u.SuspendedUntil != nil && u.SuspendedUntil.After(now)
}
