package project

import (
	"errors"
	"time"

	"github.com/crewlink/server/apperr"
	"github.com/crewlink/server/model"
	"gorm.io/gorm"
)

// joinChat adds the user to the project's chat if the project has one.
// Must run inside the membership transaction so chat membership never
// lags project membership. A duplicate insert from a racing join is
// absorbed; the unique index arbitrates.
func joinChat(tx *gorm.DB, projectID, userID int64) error {
	var chat model.Chat
	err := tx.Where("project_id = ?", projectID).First(&chat).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	err = tx.Create(&model.ChatMember{ChatID: chat.ID, UserID: userID}).Error
	if err != nil && !apperr.IsUniqueViolation(err) {
		return err
	}
	return nil
}

// leaveChat removes the user from the project's chat, if any.
func leaveChat(tx *gorm.DB, projectID, userID int64) error {
	var chat model.Chat
	err := tx.Where("project_id = ?", projectID).First(&chat).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return tx.Where("chat_id = ? AND user_id = ?", chat.ID, userID).
		Delete(&model.ChatMember{}).Error
}

// touchProject bumps the project's activity timestamp.
func touchProject(tx *gorm.DB, projectID int64) error {
	return tx.Model(&model.Project{}).
		Where("id = ?", projectID).
		Update("last_updated", time.Now()).Error
}
