// Package project owns collaboration spaces: project creation, the
// invitation lifecycle, and membership with its chat side effects.
//
// The owner is implicit via Project.OwnerID and never holds a member
// row. Chat membership is kept a superset of project membership by
// running every membership change and its chat counterpart in one
// transaction.
package project

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/crewlink/server/apperr"
	"github.com/crewlink/server/config"
	"github.com/crewlink/server/model"
	"github.com/crewlink/server/notify"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service implements project membership operations.
type Service struct {
	db      *gorm.DB
	emitter *notify.Emitter
	cfg     config.SocialConfig
	logger  *zap.Logger
}

// NewService creates a project Service.
func NewService(db *gorm.DB, emitter *notify.Emitter, cfg config.SocialConfig, logger *zap.Logger) *Service {
	if cfg.InvitationTTL <= 0 {
		cfg.InvitationTTL = 3 * time.Hour
	}
	return &Service{db: db, emitter: emitter, cfg: cfg, logger: logger}
}

// CreateProject inserts the project, its chat, and the owner's chat
// membership in one transaction.
func (s *Service) CreateProject(ctx context.Context, ownerID int64, name, description string, isPublic bool) (*model.Project, error) {
	if name == "" {
		return nil, fmt.Errorf("project name required: %w", apperr.ErrRuleViolation)
	}

	p := &model.Project{
		OwnerID:     ownerID,
		Name:        name,
		Description: description,
		IsPublic:    isPublic,
		LastUpdated: time.Now(),
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(p).Error; err != nil {
			return err
		}
		chat := &model.Chat{ProjectID: p.ID, Name: name}
		if err := tx.Create(chat).Error; err != nil {
			return err
		}
		return tx.Create(&model.ChatMember{ChatID: chat.ID, UserID: ownerID}).Error
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// GetProject loads one project.
func (s *Service) GetProject(ctx context.Context, projectID int64) (*model.Project, error) {
	var p model.Project
	if err := s.db.WithContext(ctx).First(&p, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("project %d: %w", projectID, apperr.ErrNotFound)
		}
		return nil, err
	}
	return &p, nil
}

// CreateInvitation invites a friend into a project. Preconditions, in
// order: the caller must be the inviter; the invited user must not
// already be a member; the pair must have an accepted friendship and
// no block between them; at most one outstanding invitation per
// (project, invited) pair.
func (s *Service) CreateInvitation(ctx context.Context, actingUserID, invitingID, invitedID, projectID int64) (*model.ProjectInvitation, error) {
	if actingUserID != invitingID {
		return nil, fmt.Errorf("only the inviter may send the invitation: %w", apperr.ErrUnauthorized)
	}

	db := s.db.WithContext(ctx)

	p, err := s.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	member, err := s.isMember(db, p, invitedID)
	if err != nil {
		return nil, err
	}
	if member {
		return nil, fmt.Errorf("already a member: %w", apperr.ErrConflict)
	}

	var friends int64
	if err := db.Model(&model.Friendship{}).
		Where("user_id = ? AND friend_id = ? AND is_accepted = ?", invitingID, invitedID, true).
		Count(&friends).Error; err != nil {
		return nil, err
	}
	if friends == 0 {
		return nil, fmt.Errorf("not friends: %w", apperr.ErrRuleViolation)
	}

	// Friendship and a block are mutually exclusive, but an unfriend
	// racing this call could leave a fresh block visible first.
	var blocks int64
	if err := db.Model(&model.BlockedUser{}).
		Where("(user_id = ? AND blocked_user_id = ?) OR (user_id = ? AND blocked_user_id = ?)",
			invitingID, invitedID, invitedID, invitingID).
		Count(&blocks).Error; err != nil {
		return nil, err
	}
	if blocks > 0 {
		return nil, fmt.Errorf("user is blocked: %w", apperr.ErrRuleViolation)
	}

	now := time.Now()
	inv := &model.ProjectInvitation{
		ProjectID:  projectID,
		InvitingID: invitingID,
		InvitedID:  invitedID,
		Sent:       now,
		Expiring:   now.Add(s.cfg.InvitationTTL),
	}
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(inv).Error; err != nil {
			if apperr.IsUniqueViolation(err) {
				return fmt.Errorf("invitation already sent: %w", apperr.ErrConflict)
			}
			return err
		}
		return s.emitter.Emit(tx, invitedID, model.NotifyProjectInvite, invitingID, inv.ID)
	})
	if err != nil {
		return nil, err
	}

	s.emitter.Broadcast(ctx, invitedID, model.NotifyProjectInvite, invitingID, inv.ID)
	return inv, nil
}

// AcceptInvitation admits the invited user into the project and its
// chat. Only the invited user may accept. An expired invitation is
// deleted on access and the call fails Expired. Accepting while
// already a member (a racing duplicate) still succeeds and just
// removes the stale invitation.
func (s *Service) AcceptInvitation(ctx context.Context, invitationID, actingUserID int64) error {
	db := s.db.WithContext(ctx)

	var inv model.ProjectInvitation
	if err := db.First(&inv, invitationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("invitation %d: %w", invitationID, apperr.ErrNotFound)
		}
		return err
	}
	if inv.InvitedID != actingUserID {
		return fmt.Errorf("only the invited user may accept: %w", apperr.ErrUnauthorized)
	}
	if time.Now().After(inv.Expiring) {
		if err := db.Delete(&model.ProjectInvitation{}, inv.ID).Error; err != nil {
			return err
		}
		return fmt.Errorf("invitation %d: %w", invitationID, apperr.ErrExpired)
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		m := &model.ProjectMember{
			UserID:    actingUserID,
			ProjectID: inv.ProjectID,
			Role:      model.RoleCollaborator,
		}
		// A racing accept or an out-of-band join may have inserted the
		// row between the invitation load and here. A check-then-insert
		// can read zero twice under concurrent transactions, so let the
		// unique index arbitrate and treat the loss as already-joined.
		if err := tx.Create(m).Error; err != nil && !apperr.IsUniqueViolation(err) {
			return err
		}
		if err := joinChat(tx, inv.ProjectID, actingUserID); err != nil {
			return err
		}
		if err := tx.Delete(&model.ProjectInvitation{}, inv.ID).Error; err != nil {
			return err
		}
		if err := touchProject(tx, inv.ProjectID); err != nil {
			return err
		}
		return s.emitter.Emit(tx, inv.InvitingID, model.NotifyInviteAccept, actingUserID, inv.ProjectID)
	})
	if err != nil {
		return err
	}

	s.emitter.Broadcast(ctx, inv.InvitingID, model.NotifyInviteAccept, actingUserID, inv.ProjectID)
	return nil
}

// RejectInvitation deletes the invitation. Only the invited user may
// reject; expiry is not checked, the row goes away either way.
func (s *Service) RejectInvitation(ctx context.Context, invitationID, actingUserID int64) error {
	db := s.db.WithContext(ctx)

	var inv model.ProjectInvitation
	if err := db.First(&inv, invitationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("invitation %d: %w", invitationID, apperr.ErrNotFound)
		}
		return err
	}
	if inv.InvitedID != actingUserID {
		return fmt.Errorf("only the invited user may reject: %w", apperr.ErrUnauthorized)
	}
	return db.Delete(&model.ProjectInvitation{}, inv.ID).Error
}

// RemoveMember ejects a collaborator. Only the owner may remove, the
// owner cannot be removed, and the member row plus the chat row go
// together.
func (s *Service) RemoveMember(ctx context.Context, actingUserID, projectID, memberID int64) error {
	p, err := s.GetProject(ctx, projectID)
	if err != nil {
		return err
	}
	if p.OwnerID != actingUserID {
		return fmt.Errorf("only the project owner may remove members: %w", apperr.ErrUnauthorized)
	}
	if memberID == p.OwnerID {
		return fmt.Errorf("the owner cannot be removed: %w", apperr.ErrRuleViolation)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("project_id = ? AND user_id = ?", projectID, memberID).
			Delete(&model.ProjectMember{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("user %d is not a member of project %d: %w", memberID, projectID, apperr.ErrNotFound)
		}
		if err := leaveChat(tx, projectID, memberID); err != nil {
			return err
		}
		if err := touchProject(tx, projectID); err != nil {
			return err
		}
		return s.emitter.Emit(tx, memberID, model.NotifyMemberRemoved, actingUserID, projectID)
	})
	if err != nil {
		return err
	}

	s.emitter.Broadcast(ctx, memberID, model.NotifyMemberRemoved, actingUserID, projectID)
	return nil
}

// LeaveProject is a member's self-removal. The owner cannot leave their
// own project.
func (s *Service) LeaveProject(ctx context.Context, userID, projectID int64) error {
	p, err := s.GetProject(ctx, projectID)
	if err != nil {
		return err
	}
	if p.OwnerID == userID {
		return fmt.Errorf("the owner cannot leave their own project: %w", apperr.ErrRuleViolation)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("project_id = ? AND user_id = ?", projectID, userID).
			Delete(&model.ProjectMember{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("user %d is not a member of project %d: %w", userID, projectID, apperr.ErrNotFound)
		}
		if err := leaveChat(tx, projectID, userID); err != nil {
			return err
		}
		return touchProject(tx, projectID)
	})
}

// ListMembers returns the project's collaborator rows. The owner is
// not among them.
func (s *Service) ListMembers(ctx context.Context, projectID int64) ([]model.ProjectMember, error) {
	if _, err := s.GetProject(ctx, projectID); err != nil {
		return nil, err
	}
	var out []model.ProjectMember
	err := s.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("joined_at ASC").
		Find(&out).Error
	return out, err
}

// ListInvitations returns the user's incoming pending invitations.
func (s *Service) ListInvitations(ctx context.Context, userID int64) ([]model.ProjectInvitation, error) {
	var out []model.ProjectInvitation
	err := s.db.WithContext(ctx).
		Where("invited_id = ?", userID).
		Order("sent DESC").
		Find(&out).Error
	return out, err
}

// SweepExpiredInvitations deletes invitations whose deadline passed.
// Same delete path as the lazy reap; safe to run repeatedly.
func (s *Service) SweepExpiredInvitations(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("expiring < ?", time.Now()).
		Delete(&model.ProjectInvitation{})
	return res.RowsAffected, res.Error
}

// isMember reports whether the user is the owner or holds a member row.
func (s *Service) isMember(db *gorm.DB, p *model.Project, userID int64) (bool, error) {
	if p.OwnerID == userID {
		return true, nil
	}
	var n int64
	err := db.Model(&model.ProjectMember{}).
		Where("project_id = ? AND user_id = ?", p.ID, userID).
		Count(&n).Error
	return n > 0, err
}
