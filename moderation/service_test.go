package moderation

import (
	"context"
	"testing"
	"time"

	"github.com/crewlink/server/apperr"
	"github.com/crewlink/server/audit"
	"github.com/crewlink/server/model"
	"github.com/crewlink/server/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type moderationSetup struct {
	db    *gorm.DB
	audit *audit.Service
	svc   *Service
}

func newModerationSetup(t *testing.T) *moderationSetup {
	t.Helper()
	db := testutil.SetupTestDB(t)
	auditSvc := audit.New(db, zap.NewNop())
	t.Cleanup(func() { auditSvc.Stop(context.Background()) })
	return &moderationSetup{db: db, audit: auditSvc, svc: NewService(db, auditSvc, zap.NewNop())}
}

func (s *moderationSetup) createUser(t *testing.T, name string, isModerator bool) int64 {
	t.Helper()
	u := &model.User{Username: name, PasswordHash: "x", IsModerator: isModerator}
	require.NoError(t, s.db.Create(u).Error)
	return u.ID
}

func (s *moderationSetup) auditCount(t *testing.T, action string) int64 {
	t.Helper()
	s.audit.Stop(context.Background())
	var n int64
	require.NoError(t, s.db.Model(&model.AuditLog{}).Where("action = ?", action).Count(&n).Error)
	return n
}

func TestBanUser(t *testing.T) {
	s := newModerationSetup(t)
	ctx := context.Background()
	mod := s.createUser(t, "mod", true)
	user := s.createUser(t, "user", false)

	assert.ErrorIs(t, s.svc.BanUser(ctx, user, mod, "nope", nil), apperr.ErrUnauthorized)
	assert.ErrorIs(t, s.svc.BanUser(ctx, mod, 9999, "spam", nil), apperr.ErrNotFound)

	require.NoError(t, s.svc.BanUser(ctx, mod, user, "spam", nil))

	var u model.User
	require.NoError(t, s.db.First(&u, user).Error)
	assert.True(t, u.IsBanned)
	assert.Equal(t, "spam", u.BanReason)
	assert.Nil(t, u.BanExpiresAt)
	require.NotNil(t, u.BannedByUserID)
	assert.Equal(t, mod, *u.BannedByUserID)
	assert.True(t, u.BanActive(time.Now()))

	// Banning again overwrites reason and expiry, no error.
	until := time.Now().Add(time.Hour)
	require.NoError(t, s.svc.BanUser(ctx, mod, user, "harassment", &until))
	require.NoError(t, s.db.First(&u, user).Error)
	assert.Equal(t, "harassment", u.BanReason)
	require.NotNil(t, u.BanExpiresAt)

	require.NoError(t, s.svc.UnbanUser(ctx, mod, user))
	u = model.User{}
	require.NoError(t, s.db.First(&u, user).Error)
	assert.False(t, u.IsBanned)
	assert.Empty(t, u.BanReason)
	assert.Nil(t, u.BanExpiresAt)
	assert.Nil(t, u.BannedByUserID)

	assert.EqualValues(t, 2, s.auditCount(t, "ban_user"))
}

func TestBanExpiryIsLazy(t *testing.T) {
	s := newModerationSetup(t)
	ctx := context.Background()
	mod := s.createUser(t, "mod", true)
	user := s.createUser(t, "user", false)

	past := time.Now().Add(-time.Hour)
	require.NoError(t, s.svc.BanUser(ctx, mod, user, "spam", &past))

	// The row still says banned, but the ban is no longer in force.
	var u model.User
	require.NoError(t, s.db.First(&u, user).Error)
	assert.True(t, u.IsBanned)
	assert.False(t, u.BanActive(time.Now()))
}

func TestSuspendUser(t *testing.T) {
	s := newModerationSetup(t)
	ctx := context.Background()
	mod := s.createUser(t, "mod", true)
	user := s.createUser(t, "user", false)

	until := time.Now().Add(24 * time.Hour)
	require.NoError(t, s.svc.SuspendUser(ctx, mod, user, until))

	var u model.User
	require.NoError(t, s.db.First(&u, user).Error)
	assert.True(t, u.SuspensionActive(time.Now()))

	// Ban and suspension are independent; banning does not clear it.
	require.NoError(t, s.svc.BanUser(ctx, mod, user, "spam", nil))
	require.NoError(t, s.db.First(&u, user).Error)
	assert.True(t, u.SuspensionActive(time.Now()))
	assert.True(t, u.BanActive(time.Now()))

	require.NoError(t, s.svc.UnsuspendUser(ctx, mod, user))
	u = model.User{}
	require.NoError(t, s.db.First(&u, user).Error)
	assert.False(t, u.SuspensionActive(time.Now()))
	assert.Nil(t, u.SuspendedUntil)
}

func TestManageUserRole(t *testing.T) {
	s := newModerationSetup(t)
	ctx := context.Background()
	mod := s.createUser(t, "mod", true)
	user := s.createUser(t, "user", false)

	assert.ErrorIs(t, s.svc.ManageUserRole(ctx, user, mod, false), apperr.ErrUnauthorized)

	require.NoError(t, s.svc.ManageUserRole(ctx, mod, user, true))
	var u model.User
	require.NoError(t, s.db.First(&u, user).Error)
	assert.True(t, u.IsModerator)

	// Self-demotion is allowed.
	require.NoError(t, s.svc.ManageUserRole(ctx, mod, mod, false))
	u = model.User{}
	require.NoError(t, s.db.First(&u, mod).Error)
	assert.False(t, u.IsModerator)

	// And now the demoted moderator is locked out.
	assert.ErrorIs(t, s.svc.ManageUserRole(ctx, mod, user, false), apperr.ErrUnauthorized)
}

func TestResetPassword(t *testing.T) {
	s := newModerationSetup(t)
	ctx := context.Background()
	mod := s.createUser(t, "mod", true)
	user := s.createUser(t, "user", false)

	require.NoError(t, s.svc.ResetPassword(ctx, mod, user, "new-secret"))

	var u model.User
	require.NoError(t, s.db.First(&u, user).Error)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("new-secret")))
}

func TestDeletePostCascades(t *testing.T) {
	s := newModerationSetup(t)
	ctx := context.Background()
	mod := s.createUser(t, "mod", true)
	author := s.createUser(t, "author", false)

	p := &model.Project{OwnerID: author, Name: "atlas", LastUpdated: time.Now()}
	require.NoError(t, s.db.Create(p).Error)
	post := &model.Post{ProjectID: p.ID, AuthorID: author, Title: "hello"}
	require.NoError(t, s.db.Create(post).Error)
	require.NoError(t, s.db.Create(&model.Comment{PostID: post.ID, AuthorID: author, Body: "hi"}).Error)
	require.NoError(t, s.db.Create(&model.PostLike{PostID: post.ID, UserID: mod}).Error)

	assert.ErrorIs(t, s.svc.DeletePost(ctx, author, post.ID), apperr.ErrUnauthorized)
	assert.ErrorIs(t, s.svc.DeletePost(ctx, mod, 9999), apperr.ErrNotFound)

	require.NoError(t, s.svc.DeletePost(ctx, mod, post.ID))

	var comments, likes int64
	require.NoError(t, s.db.Model(&model.Comment{}).Count(&comments).Error)
	require.NoError(t, s.db.Model(&model.PostLike{}).Count(&likes).Error)
	assert.Zero(t, comments)
	assert.Zero(t, likes)
}

func TestDeleteProjectCascades(t *testing.T) {
	s := newModerationSetup(t)
	ctx := context.Background()
	mod := s.createUser(t, "mod", true)
	owner := s.createUser(t, "owner", false)
	member := s.createUser(t, "member", false)

	p := &model.Project{OwnerID: owner, Name: "atlas", LastUpdated: time.Now()}
	require.NoError(t, s.db.Create(p).Error)
	chat := &model.Chat{ProjectID: p.ID, Name: "atlas"}
	require.NoError(t, s.db.Create(chat).Error)
	require.NoError(t, s.db.Create(&model.ChatMember{ChatID: chat.ID, UserID: member}).Error)
	require.NoError(t, s.db.Create(&model.ProjectMember{ProjectID: p.ID, UserID: member}).Error)
	require.NoError(t, s.db.Create(&model.Post{ProjectID: p.ID, AuthorID: owner, Title: "t"}).Error)

	require.NoError(t, s.svc.DeleteProject(ctx, mod, p.ID))

	for _, entity := range []interface{}{
		&model.Chat{}, &model.ChatMember{}, &model.ProjectMember{}, &model.Post{},
	} {
		var n int64
		require.NoError(t, s.db.Model(entity).Count(&n).Error)
		assert.Zero(t, n)
	}
}

func TestDeleteCommentAndChat(t *testing.T) {
	s := newModerationSetup(t)
	ctx := context.Background()
	mod := s.createUser(t, "mod", true)
	owner := s.createUser(t, "owner", false)

	p := &model.Project{OwnerID: owner, Name: "atlas", LastUpdated: time.Now()}
	require.NoError(t, s.db.Create(p).Error)
	post := &model.Post{ProjectID: p.ID, AuthorID: owner, Title: "t"}
	require.NoError(t, s.db.Create(post).Error)
	c := &model.Comment{PostID: post.ID, AuthorID: owner, Body: "hi"}
	require.NoError(t, s.db.Create(c).Error)
	chat := &model.Chat{ProjectID: p.ID, Name: "atlas"}
	require.NoError(t, s.db.Create(chat).Error)
	require.NoError(t, s.db.Create(&model.ChatMessage{ChatID: chat.ID, UserID: owner, Body: "yo"}).Error)

	require.NoError(t, s.svc.DeleteComment(ctx, mod, c.ID))
	require.NoError(t, s.svc.DeleteChat(ctx, mod, chat.ID))

	var comments, messages int64
	require.NoError(t, s.db.Model(&model.Comment{}).Count(&comments).Error)
	require.NoError(t, s.db.Model(&model.ChatMessage{}).Count(&messages).Error)
	assert.Zero(t, comments)
	assert.Zero(t, messages)
}
