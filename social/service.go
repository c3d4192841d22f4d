// Package social owns the friend-request lifecycle, the symmetric
// friendship edges, and blocking rules.
//
// A friendship is stored as two directed rows, (A,B) and (B,A); the
// pair is a single logical edge and is only ever created or deleted
// together inside one transaction, via the symmetric-edge helpers.
package social

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

// Service implements the friend graph operations.
type Service struct {
	db      *gorm.DB
	emitter *notify.Emitter
	cfg     config.SocialConfig
	logger  *zap.Logger
}

// NewService creates a friend graph Service.
func NewService(db *gorm.DB, emitter *notify.Emitter, cfg config.SocialConfig, logger *zap.Logger) *Service {
	if cfg.FriendRequestTTL <= 0 {
		cfg.FriendRequestTTL = 72 * time.Hour
	}
	return &Service{db: db, emitter: emitter, cfg: cfg, logger: logger}
}

// SendFriendRequest creates an outstanding request from requester to
// requestee. A pending request in the opposite direction is collapsed:
// the caller is told to accept that one instead of creating a twin.
func (s *Service) SendFriendRequest(ctx context.Context, requesterID, requesteeID int64) (*model.FriendRequest, error) {
	if requesterID == requesteeID {
		return nil, fmt.Errorf("cannot send a friend request to yourself: %w", apperr.ErrRuleViolation)
	}

	db := s.db.WithContext(ctx)

	blocked, err := blockExists(db, requesterID, requesteeID)
	if err != nil {
		return nil, err
	}
	if blocked {
		return nil, fmt.Errorf("user is blocked: %w", apperr.ErrRuleViolation)
	}

	friends, err := friendshipExists(db, requesterID, requesteeID)
	if err != nil {
		return nil, err
	}
	if friends {
		return nil, fmt.Errorf("already friends: %w", apperr.ErrConflict)
	}

	// Reap on access: an expired request between the pair, in either
	// direction, must not stand in the way of a fresh one.
	now := time.Now()
	if err := db.Where("expiring < ? AND ((requester_id = ? AND requestee_id = ?) OR (requester_id = ? AND requestee_id = ?))",
		now, requesterID, requesteeID, requesteeID, requesterID).
		Delete(&model.FriendRequest{}).Error; err != nil {
		return nil, err
	}

	var reverse int64
	if err := db.Model(&model.FriendRequest{}).
		Where("requester_id = ? AND requestee_id = ?", requesteeID, requesterID).
		Count(&reverse).Error; err != nil {
		return nil, err
	}
	if reverse > 0 {
		return nil, fmt.Errorf("the other user already sent you a request, accept it instead: %w", apperr.ErrConflict)
	}

	req := &model.FriendRequest{
		RequesterID: requesterID,
		RequesteeID: requesteeID,
		Sent:        now,
		Expiring:    now.Add(s.cfg.FriendRequestTTL),
	}
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(req).Error; err != nil {
			if apperr.IsUniqueViolation(err) {
				return fmt.Errorf("friend request already sent: %w", apperr.ErrConflict)
			}
			return err
		}
		return s.emitter.Emit(tx, requesteeID, model.NotifyFriendRequest, requesterID, req.ID)
	})
	if err != nil {
		return nil, err
	}

	s.emitter.Broadcast(ctx, requesteeID, model.NotifyFriendRequest, requesterID, req.ID)
	return req, nil
}

// AcceptFriendRequest turns a pending request into a friendship. Only
// the requestee may accept. An expired request is reaped on access and
// the call fails Expired; a later call with the same id is NotFound.
func (s *Service) AcceptFriendRequest(ctx context.Context, requestID, actingUserID int64) error {
	db := s.db.WithContext(ctx)

	var req model.FriendRequest
	if err := db.First(&req, requestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("friend request %d: %w", requestID, apperr.ErrNotFound)
		}
		return err
	}
	if req.RequesteeID != actingUserID {
		return fmt.Errorf("only the requestee may accept: %w", apperr.ErrUnauthorized)
	}
	if time.Now().After(req.Expiring) {
		if err := db.Delete(&model.FriendRequest{}, req.ID).Error; err != nil {
			return err
		}
		return fmt.Errorf("friend request %d: %w", requestID, apperr.ErrExpired)
	}

	// Both edges plus request deletion commit together; a half-accepted
	// friendship would be one-directional.
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := createSymmetricEdge(tx, req.RequesterID, req.RequesteeID); err != nil {
			// A racing duplicate accept loses on the edge's unique index.
			if apperr.IsUniqueViolation(err) {
				return fmt.Errorf("already friends: %w", apperr.ErrConflict)
			}
			return err
		}
		if err := tx.Delete(&model.FriendRequest{}, req.ID).Error; err != nil {
			return err
		}
		return s.emitter.Emit(tx, req.RequesterID, model.NotifyFriendAccept, actingUserID, req.ID)
	})
	if err != nil {
		return err
	}

	s.emitter.Broadcast(ctx, req.RequesterID, model.NotifyFriendAccept, actingUserID, req.ID)
	return nil
}

// RejectFriendRequest deletes a pending request without creating a
// friendship. Only the requestee may reject.
func (s *Service) RejectFriendRequest(ctx context.Context, requestID, actingUserID int64) error {
	db := s.db.WithContext(ctx)

	var req model.FriendRequest
	if err := db.First(&req, requestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("friend request %d: %w", requestID, apperr.ErrNotFound)
		}
		return err
	}
	if req.RequesteeID != actingUserID {
		return fmt.Errorf("only the requestee may reject: %w", apperr.ErrUnauthorized)
	}
	return db.Delete(&model.FriendRequest{}, req.ID).Error
}

// RemoveFriend deletes both directed rows of the friendship in one
// transaction. NotFound if no row exists in either direction.
func (s *Service) RemoveFriend(ctx context.Context, userID, friendID int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rows, err := deleteSymmetricEdge(tx, userID, friendID)
		if err != nil {
			return err
		}
		if rows == 0 {
			return fmt.Errorf("no friendship between %d and %d: %w", userID, friendID, apperr.ErrNotFound)
		}
		return nil
	})
}

// BlockUser creates a block from userID toward targetID. Blocking a
// current friend is refused; the caller must unfriend first.
func (s *Service) BlockUser(ctx context.Context, userID, targetID int64) (*model.BlockedUser, error) {
	if userID == targetID {
		return nil, fmt.Errorf("cannot block yourself: %w", apperr.ErrRuleViolation)
	}

	db := s.db.WithContext(ctx)

	friends, err := friendshipExists(db, userID, targetID)
	if err != nil {
		return nil, err
	}
	if friends {
		return nil, fmt.Errorf("unfriend before blocking: %w", apperr.ErrRuleViolation)
	}

	block := &model.BlockedUser{UserID: userID, BlockedUserID: targetID}
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(block).Error; err != nil {
			if apperr.IsUniqueViolation(err) {
				return fmt.Errorf("already blocked: %w", apperr.ErrConflict)
			}
			return err
		}
		// Outstanding requests between the pair are dead either way.
		return tx.Where("(requester_id = ? AND requestee_id = ?) OR (requester_id = ? AND requestee_id = ?)",
			userID, targetID, targetID, userID).
			Delete(&model.FriendRequest{}).Error
	})
	if err != nil {
		return nil, err
	}
	return block, nil
}

// UnblockUser removes the block row. NotFound if none exists.
func (s *Service) UnblockUser(ctx context.Context, userID, targetID int64) error {
	res := s.db.WithContext(ctx).
		Where("user_id = ? AND blocked_user_id = ?", userID, targetID).
		Delete(&model.BlockedUser{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user %d has not blocked %d: %w", userID, targetID, apperr.ErrNotFound)
	}
	return nil
}

// ListFriends returns the user's accepted outgoing edges.
func (s *Service) ListFriends(ctx context.Context, userID int64) ([]model.Friendship, error) {
	var out []model.Friendship
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND is_accepted = ?", userID, true).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}

// ListRequests returns the user's incoming and outgoing pending requests.
func (s *Service) ListRequests(ctx context.Context, userID int64) (incoming, outgoing []model.FriendRequest, err error) {
	db := s.db.WithContext(ctx)
	if err = db.Where("requestee_id = ?", userID).Order("sent DESC").Find(&incoming).Error; err != nil {
		return nil, nil, err
	}
	if err = db.Where("requester_id = ?", userID).Order("sent DESC").Find(&outgoing).Error; err != nil {
		return nil, nil, err
	}
	return incoming, outgoing, nil
}

// ListBlocked returns the users blocked by userID.
func (s *Service) ListBlocked(ctx context.Context, userID int64) ([]model.BlockedUser, error) {
	var out []model.BlockedUser
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("blocked_at DESC").
		Find(&out).Error
	return out, err
}

// SweepExpiredRequests deletes friend requests whose deadline passed.
// Same delete path as the lazy reap; safe to run repeatedly.
func (s *Service) SweepExpiredRequests(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("expiring < ?", time.Now()).
		Delete(&model.FriendRequest{})
	return res.RowsAffected, res.Error
}
