package model

import "time"

// Chat is a project's message channel. A project has at most one chat.
// Chat membership must stay a superset of active project membership;
// that invariant is maintained by the project service, not a foreign key.
type Chat struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ProjectID int64     `gorm:"uniqueIndex:idx_chat_project;not null" json:"project_id"`
	Project   *Project  `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Name      string    `gorm:"size:64" json:"name"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// ChatMember links a user to a chat.
type ChatMember struct {
	ID       int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ChatID   int64     `gorm:"uniqueIndex:idx_chat_member;not null" json:"chat_id"`
	Chat     *Chat     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	UserID   int64     `gorm:"uniqueIndex:idx_chat_member;not null" json:"user_id"`
	JoinedAt time.Time `gorm:"autoCreateTime" json:"joined_at"`
}

// ChatMessage is one message in a chat.
type ChatMessage struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ChatID    int64     `gorm:"index:idx_chat_message;not null" json:"chat_id"`
	Chat      *Chat     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	UserID    int64     `gorm:"not null" json:"user_id"`
	Body      string    `gorm:"type:text;not null" json:"body"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
