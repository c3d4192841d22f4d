package model

import (
	"time"

	"gorm.io/datatypes"
)

// AuditLog records moderation actions for review. It is observability,
// not domain state: moderation outcomes live on the User row itself.
type AuditLog struct {
	ID           int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	TraceID      string         `gorm:"index:idx_audit_trace;size:36" json:"trace_id"`
	ModeratorID  int64          `gorm:"index:idx_audit_moderator;not null" json:"moderator_id"`
	TargetUserID *int64         `gorm:"index:idx_audit_target" json:"target_user_id"`
	Action       string         `gorm:"size:64;not null" json:"action"`
	Detail       datatypes.JSON `json:"detail"`
	Error        string         `gorm:"type:text" json:"error"`
	IP           string         `gorm:"size:45" json:"ip"`
	CreatedAt    time.Time      `gorm:"index:idx_audit_created;autoCreateTime:milli" json:"created_at"`
}
