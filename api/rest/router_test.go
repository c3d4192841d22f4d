package rest_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/crewlink/server/api/rest"
	"github.com/crewlink/server/audit"
	"github.com/crewlink/server/config"
	"github.com/crewlink/server/content"
	mw "github.com/crewlink/server/middleware"
	"github.com/crewlink/server/moderation"
	"github.com/crewlink/server/notify"
	"github.com/crewlink/server/project"
	"github.com/crewlink/server/ranking"
	"github.com/crewlink/server/social"
	"github.com/crewlink/server/testutil"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type apiSetup struct {
	r  *gin.Engine
	db *gorm.DB
}

// newAPISetup wires the full route table against an in-memory store,
// mirroring the production router.
func newAPISetup(t *testing.T) *apiSetup {
	t.Helper()
	db := testutil.SetupTestDB(t)
	c, ps := testutil.SetupTestCache(t)
	logger := zap.NewNop()
	sec := config.SecurityConfig{JWTSecret: "test-secret", JWTTTLH: 72 * time.Hour}

	auditSvc := audit.New(db, logger)
	t.Cleanup(func() { auditSvc.Stop(context.Background()) })

	emitter := notify.NewEmitter(ps, logger)
	socialSvc := social.NewService(db, emitter, config.SocialConfig{}, logger)
	projectSvc := project.NewService(db, emitter, config.SocialConfig{}, logger)
	moderationSvc := moderation.NewService(db, auditSvc, logger)
	rankingSvc := ranking.NewService(db, logger)
	contentSvc := content.NewService(db, logger)
	notifySvc := notify.NewService(db)

	authH := rest.NewAuthHandler(db, c, sec)
	socialH := rest.NewSocialHandler(socialSvc)
	projectH := rest.NewProjectHandler(projectSvc)
	contentH := rest.NewContentHandler(contentSvc, rankingSvc)
	trendingH := rest.NewTrendingHandler(rankingSvc)
	notificationH := rest.NewNotificationHandler(notifySvc)
	adminH := rest.NewAdminHandler(moderationSvc)

	auth := mw.Auth(sec, c, db)

	r := gin.New()
	api := r.Group("/api")

	api.POST("/auth/login", authH.Login)
	api.POST("/auth/logout", auth, authH.Logout)
	api.POST("/auth/refresh", auth, authH.Refresh)

	socialG := api.Group("/social", auth)
	socialG.GET("/friends", socialH.ListFriends)
	socialG.DELETE("/friends/:id", socialH.RemoveFriend)
	socialG.GET("/requests", socialH.ListRequests)
	socialG.POST("/requests", socialH.SendFriendRequest)
	socialG.POST("/requests/:id/accept", socialH.AcceptFriendRequest)
	socialG.POST("/requests/:id/reject", socialH.RejectFriendRequest)
	socialG.GET("/blocks", socialH.ListBlocked)
	socialG.POST("/blocks/:id", socialH.BlockUser)
	socialG.DELETE("/blocks/:id", socialH.UnblockUser)

	projectsG := api.Group("/projects", auth)
	projectsG.POST("", projectH.Create)
	projectsG.GET("/:id", projectH.Detail)
	projectsG.GET("/:id/members", projectH.ListMembers)
	projectsG.DELETE("/:id/members/:uid", projectH.RemoveMember)
	projectsG.POST("/:id/leave", projectH.Leave)
	projectsG.POST("/:id/invitations", projectH.Invite)
	projectsG.POST("/:id/posts", contentH.CreatePost)
	projectsG.GET("/:id/posts", contentH.ListPosts)
	projectsG.POST("/:id/view", contentH.RecordView)

	invitationsG := api.Group("/invitations", auth)
	invitationsG.GET("", projectH.ListInvitations)
	invitationsG.POST("/:id/accept", projectH.AcceptInvitation)
	invitationsG.POST("/:id/reject", projectH.RejectInvitation)

	postsG := api.Group("/posts", auth)
	postsG.POST("/:id/comments", contentH.CreateComment)
	postsG.GET("/:id/comments", contentH.ListComments)
	postsG.POST("/:id/like", contentH.Like)
	postsG.DELETE("/:id/like", contentH.Unlike)

	notificationsG := api.Group("/notifications", auth)
	notificationsG.GET("", notificationH.List)
	notificationsG.POST("/:id/read", notificationH.MarkRead)
	notificationsG.POST("/read-all", notificationH.MarkAllRead)

	api.GET("/trending", trendingH.Trending)

	adminG := api.Group("/admin", auth)
	adminG.POST("/users/:id/ban", adminH.BanUser)
	adminG.DELETE("/users/:id/ban", adminH.UnbanUser)
	adminG.POST("/users/:id/suspend", adminH.SuspendUser)
	adminG.DELETE("/users/:id/suspend", adminH.UnsuspendUser)
	adminG.PUT("/users/:id/role", adminH.ManageUserRole)
	adminG.POST("/users/:id/password", adminH.ResetPassword)
	adminG.DELETE("/posts/:id", adminH.DeletePost)
	adminG.DELETE("/comments/:id", adminH.DeleteComment)
	adminG.DELETE("/projects/:id", adminH.DeleteProject)
	adminG.DELETE("/chats/:id", adminH.DeleteChat)

	return &apiSetup{r: r, db: db}
}

// login registers (on first call) and authenticates a user, returning
// its id and bearer token.
func (s *apiSetup) login(t *testing.T, username string) (int64, string) {
	t.Helper()
	w := postJSON(s.r, "/api/auth/login", map[string]string{
		"username": username, "password": "pass1234",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var lr map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &lr))
	return int64(lr["user_id"].(float64)), lr["token"].(string)
}

func bearer(token string) []string {
	return []string{"Authorization", "Bearer " + token}
}

func postJSON(r *gin.Engine, path string, body interface{}, headers ...string) *httptest.ResponseRecorder {
	b, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func putJSON(r *gin.Engine, path string, body interface{}, headers ...string) *httptest.ResponseRecorder {
	b, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPut, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func getReq(r *gin.Engine, path string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func deleteReq(r *gin.Engine, path string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodDelete, path, nil)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}
