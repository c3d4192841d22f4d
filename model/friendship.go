package model

import "time"

// FriendRequest is an outstanding request from requester to requestee.
// At most one request per ordered pair; the unique index settles
// concurrent duplicate sends. Expiry is lazy: the row persists past
// Expiring until someone acts on it.
type FriendRequest struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	RequesterID int64     `gorm:"uniqueIndex:idx_friend_request_pair;not null" json:"requester_id"`
	RequesteeID int64     `gorm:"uniqueIndex:idx_friend_request_pair;not null" json:"requestee_id"`
	Sent        time.Time `gorm:"autoCreateTime" json:"sent"`
	Expiring    time.Time `gorm:"not null" json:"expiring"`
}

// Friendship is one directed edge: "user considers friend a friend".
// A real friendship is always the pair of both directions, both
// accepted; the pair is created and deleted together in one
// transaction. No single-sided row may persist.
type Friendship struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID     int64     `gorm:"uniqueIndex:idx_friend_edge;not null" json:"user_id"`
	FriendID   int64     `gorm:"uniqueIndex:idx_friend_edge;not null" json:"friend_id"`
	IsAccepted bool      `gorm:"default:true" json:"is_accepted"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// BlockedUser is a unidirectional block. It may not coexist with an
// accepted friendship between the pair (callers must unfriend first).
type BlockedUser struct {
	ID            int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID        int64     `gorm:"uniqueIndex:idx_block_pair;not null" json:"user_id"`
	BlockedUserID int64     `gorm:"uniqueIndex:idx_block_pair;not null" json:"blocked_user_id"`
	BlockedAt     time.Time `gorm:"autoCreateTime" json:"blocked_at"`
}
