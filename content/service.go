// Package content is the thin post/comment/like surface. Posts feed
// the trending ranking and moderation acts on all of it; counts (likes,
// comments) are always derived from rows, never stored.
package content

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/crewlink/server/apperr"
	"github.com/crewlink/server/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service implements content operations.
type Service struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewService creates a content Service.
func NewService(db *gorm.DB, logger *zap.Logger) *Service {
	return &Service{db: db, logger: logger}
}

// CreatePost adds a post to a project. Only the owner and members may
// post; posting bumps the project's activity timestamp.
func (s *Service) CreatePost(ctx context.Context, authorID, projectID int64, title, body string) (*model.Post, error) {
	if title == "" {
		return nil, fmt.Errorf("post title required: %w", apperr.ErrRuleViolation)
	}

	db := s.db.WithContext(ctx)

	var p model.Project
	if err := db.First(&p, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("project %d: %w", projectID, apperr.ErrNotFound)
		}
		return nil, err
	}
	if p.OwnerID != authorID {
		var n int64
		if err := db.Model(&model.ProjectMember{}).
			Where("project_id = ? AND user_id = ?", projectID, authorID).
			Count(&n).Error; err != nil {
			return nil, err
		}
		if n == 0 {
			return nil, fmt.Errorf("only members may post: %w", apperr.ErrUnauthorized)
		}
	}

	post := &model.Post{ProjectID: projectID, AuthorID: authorID, Title: title, Body: body}
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(post).Error; err != nil {
			return err
		}
		return tx.Model(&model.Project{}).
			Where("id = ?", projectID).
			Update("last_updated", time.Now()).Error
	})
	if err != nil {
		return nil, err
	}
	return post, nil
}

// ListPosts returns a project's posts, newest first.
func (s *Service) ListPosts(ctx context.Context, projectID int64) ([]model.Post, error) {
	var out []model.Post
	err := s.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}

// CreateComment replies to a post, optionally to another comment.
// The parent, when given, must belong to the same post.
func (s *Service) CreateComment(ctx context.Context, authorID, postID int64, parentID *int64, body string) (*model.Comment, error) {
	if body == "" {
		return nil, fmt.Errorf("comment body required: %w", apperr.ErrRuleViolation)
	}

	db := s.db.WithContext(ctx)

	var post model.Post
	if err := db.First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("post %d: %w", postID, apperr.ErrNotFound)
		}
		return nil, err
	}

	if parentID != nil {
		var parent model.Comment
		if err := db.First(&parent, *parentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("parent comment %d: %w", *parentID, apperr.ErrNotFound)
			}
			return nil, err
		}
		if parent.PostID != postID {
			return nil, fmt.Errorf("parent comment belongs to another post: %w", apperr.ErrRuleViolation)
		}
	}

	c := &model.Comment{PostID: postID, AuthorID: authorID, ParentID: parentID, Body: body}
	if err := db.Create(c).Error; err != nil {
		return nil, err
	}
	return c, nil
}

// ListComments returns a post's comments, oldest first (thread order).
func (s *Service) ListComments(ctx context.Context, postID int64) ([]model.Comment, error) {
	var out []model.Comment
	err := s.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("created_at ASC").
		Find(&out).Error
	return out, err
}

// LikePost records a like. Liking twice is an idempotent success; the
// unique pair index absorbs the duplicate.
func (s *Service) LikePost(ctx context.Context, userID, postID int64) error {
	db := s.db.WithContext(ctx)

	var n int64
	if err := db.Model(&model.Post{}).Where("id = ?", postID).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("post %d: %w", postID, apperr.ErrNotFound)
	}

	if err := db.Create(&model.PostLike{PostID: postID, UserID: userID}).Error; err != nil {
		if apperr.IsUniqueViolation(err) {
			return nil
		}
		return err
	}
	return nil
}

// UnlikePost removes the like. NotFound if the user never liked the post.
func (s *Service) UnlikePost(ctx context.Context, userID, postID int64) error {
	res := s.db.WithContext(ctx).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Delete(&model.PostLike{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user %d has not liked post %d: %w", userID, postID, apperr.ErrNotFound)
	}
	return nil
}

// CountLikes derives a post's like count from its rows.
func (s *Service) CountLikes(ctx context.Context, postID int64) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&model.PostLike{}).
		Where("post_id = ?", postID).
		Count(&n).Error
	return n, err
}
