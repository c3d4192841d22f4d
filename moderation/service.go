// Package moderation implements moderator-only state transitions on
// users and hard deletion of content. Cascading cleanup of dependents
// (comments, likes, memberships) is the store's job; this service only
// authorizes and performs the top-level action, and records each one
// to the audit trail.
package moderation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/crewlink/server/apperr"
	"github.com/crewlink/server/audit"
	"github.com/crewlink/server/model"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Service implements moderation operations.
type Service struct {
	db     *gorm.DB
	audit  *audit.Service
	logger *zap.Logger
}

// NewService creates a moderation Service.
func NewService(db *gorm.DB, auditSvc *audit.Service, logger *zap.Logger) *Service {
	return &Service{db: db, audit: auditSvc, logger: logger}
}

// requireModerator loads the acting user and refuses non-moderators.
func (s *Service) requireModerator(db *gorm.DB, moderatorID int64) (*model.User, error) {
	var mod model.User
	if err := db.First(&mod, moderatorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("moderator %d: %w", moderatorID, apperr.ErrNotFound)
		}
		return nil, err
	}
	if !mod.IsModerator {
		return nil, fmt.Errorf("user %d is not a moderator: %w", moderatorID, apperr.ErrUnauthorized)
	}
	return &mod, nil
}

func (s *Service) loadTarget(db *gorm.DB, userID int64) (*model.User, error) {
	var u model.User
	if err := db.First(&u, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user %d: %w", userID, apperr.ErrNotFound)
		}
		return nil, err
	}
	return &u, nil
}

func (s *Service) record(moderatorID, targetID int64, action string, detail interface{}) {
	s.audit.Log(audit.Entry{
		ModeratorID:  moderatorID,
		TargetUserID: &targetID,
		Action:       action,
		Detail:       detail,
	})
}

// BanUser sets the target's ban fields. Banning an already-banned user
// simply overwrites reason and expiry; the operation is idempotent.
// A nil expiresAt is a permanent ban.
func (s *Service) BanUser(ctx context.Context, moderatorID, userID int64, reason string, expiresAt *time.Time) error {
	db := s.db.WithContext(ctx)
	if _, err := s.requireModerator(db, moderatorID); err != nil {
		return err
	}
	target, err := s.loadTarget(db, userID)
	if err != nil {
		return err
	}

	err = db.Model(target).Updates(map[string]interface{}{
		"is_banned":         true,
		"ban_reason":        reason,
		"ban_expires_at":    expiresAt,
		"banned_by_user_id": moderatorID,
	}).Error
	if err != nil {
		return err
	}
	s.record(moderatorID, userID, "ban_user", map[string]interface{}{
		"reason": reason, "expires_at": expiresAt,
	})
	return nil
}

// UnbanUser clears the target's ban fields.
func (s *Service) UnbanUser(ctx context.Context, moderatorID, userID int64) error {
	db := s.db.WithContext(ctx)
	if _, err := s.requireModerator(db, moderatorID); err != nil {
		return err
	}
	target, err := s.loadTarget(db, userID)
	if err != nil {
		return err
	}

	err = db.Model(target).Updates(map[string]interface{}{
		"is_banned":         false,
		"ban_reason":        "",
		"ban_expires_at":    nil,
		"banned_by_user_id": nil,
	}).Error
	if err != nil {
		return err
	}
	s.record(moderatorID, userID, "unban_user", nil)
	return nil
}

// SuspendUser sets the suspension deadline. Suspension and ban are
// independent states; neither clears the other.
func (s *Service) SuspendUser(ctx context.Context, moderatorID, userID int64, until time.Time) error {
	db := s.db.WithContext(ctx)
	if _, err := s.requireModerator(db, moderatorID); err != nil {
		return err
	}
	target, err := s.loadTarget(db, userID)
	if err != nil {
		return err
	}

	if err := db.Model(target).Update("suspended_until", until).Error; err != nil {
		return err
	}
	s.record(moderatorID, userID, "suspend_user", map[string]interface{}{"until": until})
	return nil
}

// UnsuspendUser clears the suspension deadline.
func (s *Service) UnsuspendUser(ctx context.Context, moderatorID, userID int64) error {
	db := s.db.WithContext(ctx)
	if _, err := s.requireModerator(db, moderatorID); err != nil {
		return err
	}
	target, err := s.loadTarget(db, userID)
	if err != nil {
		return err
	}

	if err := db.Model(target).Update("suspended_until", nil).Error; err != nil {
		return err
	}
	s.record(moderatorID, userID, "unsuspend_user", nil)
	return nil
}

// ManageUserRole toggles the target's moderator flag. A moderator may
// demote themselves; the last moderator standing is their own problem.
func (s *Service) ManageUserRole(ctx context.Context, moderatorID, userID int64, isModerator bool) error {
	db := s.db.WithContext(ctx)
	if _, err := s.requireModerator(db, moderatorID); err != nil {
		return err
	}
	target, err := s.loadTarget(db, userID)
	if err != nil {
		return err
	}

	if err := db.Model(target).Update("is_moderator", isModerator).Error; err != nil {
		return err
	}
	s.record(moderatorID, userID, "manage_user_role", map[string]interface{}{"is_moderator": isModerator})
	return nil
}

// ResetPassword replaces the target's credential hash.
func (s *Service) ResetPassword(ctx context.Context, moderatorID, userID int64, newPassword string) error {
	db := s.db.WithContext(ctx)
	if _, err := s.requireModerator(db, moderatorID); err != nil {
		return err
	}
	target, err := s.loadTarget(db, userID)
	if err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := db.Model(target).Update("password_hash", string(hash)).Error; err != nil {
		return err
	}
	s.record(moderatorID, userID, "reset_password", nil)
	return nil
}

// DeletePost hard-deletes a post; comments and likes cascade.
func (s *Service) DeletePost(ctx context.Context, moderatorID, postID int64) error {
	return s.deleteEntity(ctx, moderatorID, postID, "delete_post", &model.Post{})
}

// DeleteComment hard-deletes a comment.
func (s *Service) DeleteComment(ctx context.Context, moderatorID, commentID int64) error {
	return s.deleteEntity(ctx, moderatorID, commentID, "delete_comment", &model.Comment{})
}

// DeleteProject hard-deletes a project; memberships, invitations,
// chat, posts, and views cascade.
func (s *Service) DeleteProject(ctx context.Context, moderatorID, projectID int64) error {
	return s.deleteEntity(ctx, moderatorID, projectID, "delete_project", &model.Project{})
}

// DeleteChat hard-deletes a chat; members and messages cascade.
func (s *Service) DeleteChat(ctx context.Context, moderatorID, chatID int64) error {
	return s.deleteEntity(ctx, moderatorID, chatID, "delete_chat", &model.Chat{})
}

func (s *Service) deleteEntity(ctx context.Context, moderatorID, id int64, action string, entity interface{}) error {
	db := s.db.WithContext(ctx)
	if _, err := s.requireModerator(db, moderatorID); err != nil {
		return err
	}

	res := db.Delete(entity, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%s %d: %w", action, id, apperr.ErrNotFound)
	}
	s.audit.Log(audit.Entry{
		ModeratorID: moderatorID,
		Action:      action,
		Detail:      map[string]int64{"id": id},
	})
	return nil
}
