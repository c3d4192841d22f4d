package model

import "time"

// MemberRole is a collaborator's role within a project.
type MemberRole = string

const (
	RoleCollaborator MemberRole = "Collaborator"
	RoleAdmin        MemberRole = "Admin"
	RoleViewer       MemberRole = "Viewer"
)

// Project is a collaboration space. The owner is implicit via OwnerID
// and holds no ProjectMember row.
type Project struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	OwnerID     int64     `gorm:"index:idx_project_owner;not null" json:"owner_id"`
	Name        string    `gorm:"size:64;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	IsPublic    bool      `gorm:"default:false" json:"is_public"`
	LastUpdated time.Time `gorm:"index:idx_project_updated;not null" json:"last_updated"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// ProjectInvitation invites a friend into a project. Unique per
// (project, invited user); reaped lazily once Expiring passes.
type ProjectInvitation struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ProjectID  int64     `gorm:"uniqueIndex:idx_invitation_pair;not null" json:"project_id"`
	Project    *Project  `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	InvitingID int64     `gorm:"not null" json:"inviting_id"`
	InvitedID  int64     `gorm:"uniqueIndex:idx_invitation_pair;not null" json:"invited_id"`
	Sent       time.Time `gorm:"autoCreateTime" json:"sent"`
	Expiring   time.Time `gorm:"not null" json:"expiring"`
}

// ProjectMember links a non-owner user to a project with a role.
type ProjectMember struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64     `gorm:"uniqueIndex:idx_member_pair;not null" json:"user_id"`
	ProjectID int64     `gorm:"uniqueIndex:idx_member_pair;not null" json:"project_id"`
	Project   *Project  `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Role      string    `gorm:"size:16;default:'Collaborator'" json:"role"`
	JoinedAt  time.Time `gorm:"autoCreateTime" json:"joined_at"`
}
