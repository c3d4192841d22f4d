// Package notify appends notification records and fans them out to
// connected clients. The append happens on the caller's transaction so
// a failed operation leaves no notification behind; the pub/sub fan-out
// happens after commit and is best-effort.
package notify

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/crewlink/server/cache"
	"github.com/crewlink/server/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Channel returns the pub/sub channel carrying one user's events.
func Channel(userID int64) string {
	return "notify:" + strconv.FormatInt(userID, 10)
}

// Event is the payload published for each emitted notification.
type Event struct {
	Type        string `json:"type"`
	ActorUserID int64  `json:"actor_user_id"`
	SubjectID   int64  `json:"subject_id"`
}

// Emitter writes notifications for domain services.
type Emitter struct {
	ps     cache.PubSub
	logger *zap.Logger
}

// NewEmitter creates an Emitter.
func NewEmitter(ps cache.PubSub, logger *zap.Logger) *Emitter {
	return &Emitter{ps: ps, logger: logger}
}

// Emit appends a notification row on the given transaction handle.
// An error here rolls the caller's whole operation back; there is no
// independent retry channel.
func (e *Emitter) Emit(tx *gorm.DB, userID int64, typ string, actorUserID, subjectID int64) error {
	return tx.Create(&model.Notification{
		UserID:      userID,
		Type:        typ,
		ActorUserID: actorUserID,
		SubjectID:   subjectID,
	}).Error
}

// Broadcast publishes the event to the user's channel after the
// caller's transaction committed. Failures are logged and swallowed;
// the notification row is already durable.
func (e *Emitter) Broadcast(ctx context.Context, userID int64, typ string, actorUserID, subjectID int64) {
	payload, _ := json.Marshal(Event{Type: typ, ActorUserID: actorUserID, SubjectID: subjectID})
	if err := e.ps.Publish(ctx, Channel(userID), string(payload)); err != nil {
		e.logger.Warn("notification broadcast failed",
			zap.Int64("user_id", userID),
			zap.String("type", typ),
			zap.Error(err))
	}
}
