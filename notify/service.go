package notify

import (
	"context"
	"fmt"

	"github.com/crewlink/server/apperr"
	"github.com/crewlink/server/model"
	"gorm.io/gorm"
)

// Service reads and marks notifications. Rows are append-only; flipping
// IsRead is the only mutation permitted here.
type Service struct {
	db *gorm.DB
}

// NewService creates a notification read Service.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// List returns the user's notifications, newest first.
func (s *Service) List(ctx context.Context, userID int64, unreadOnly bool, limit int) ([]model.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	q := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if unreadOnly {
		q = q.Where("is_read = ?", false)
	}
	var out []model.Notification
	if err := q.Order("created_at DESC").Limit(limit).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// MarkRead flips one notification to read. The row must belong to the
// caller.
func (s *Service) MarkRead(ctx context.Context, userID, notificationID int64) error {
	res := s.db.WithContext(ctx).Model(&model.Notification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Update("is_read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("notification %d: %w", notificationID, apperr.ErrNotFound)
	}
	return nil
}

// MarkAllRead flips every unread notification for the user and returns
// how many rows changed.
func (s *Service) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	res := s.db.WithContext(ctx).Model(&model.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}
