package model

import "time"

// Notification types emitted by the domain services.
const (
	NotifyFriendRequest = "friend_request"
	NotifyFriendAccept  = "friend_accept"
	NotifyProjectInvite = "project_invite"
	NotifyInviteAccept  = "invite_accept"
	NotifyMemberRemoved = "member_removed"
)

// Notification surfaces another user's action. Rows are append-only;
// the only permitted mutation is flipping IsRead.
type Notification struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      int64     `gorm:"index:idx_notification_user;not null" json:"user_id"`
	Type        string    `gorm:"size:32;not null" json:"type"`
	ActorUserID int64     `gorm:"not null" json:"actor_user_id"`
	SubjectID   int64     `json:"subject_id"`
	IsRead      bool      `gorm:"default:false;index:idx_notification_read" json:"is_read"`
	CreatedAt   time.Time `gorm:"index:idx_notification_created;autoCreateTime" json:"created_at"`
}
