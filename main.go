package main

import (
	"context"
	"fmt"
	"log"
	"os"

	apirest "github.com/crewlink/server/api/rest"
	"github.com/crewlink/server/api/sse"
	"github.com/crewlink/server/audit"
	"github.com/crewlink/server/cache"
	"github.com/crewlink/server/config"
	"github.com/crewlink/server/content"
	dbadapter "github.com/crewlink/server/db"
	mw "github.com/crewlink/server/middleware"
	"github.com/crewlink/server/model"
	"github.com/crewlink/server/moderation"
	"github.com/crewlink/server/notify"
	"github.com/crewlink/server/project"
	"github.com/crewlink/server/ranking"
	"github.com/crewlink/server/scheduler"
	"github.com/crewlink/server/social"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func main() {
	cfgPath := "config/config.yaml"
	if len(os.Args) > 1 {
		cfgPath = os.Args[1]
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// ---- Logger ----
	var logger *zap.Logger
	var logErr error
	if cfg.Server.Debug {
		logger, logErr = zap.NewDevelopment()
	} else {
		logger, logErr = zap.NewProduction()
	}
	if logErr != nil {
		log.Fatalf("logger: %v", logErr)
	}
	defer logger.Sync()

	if cfg.Security.JWTSecret == "" {
		log.Fatal("security.jwt_secret must be set")
	}

	// ---- Database ----
	db, err := dbadapter.Open(cfg.Database)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	if err := model.AutoMigrate(db); err != nil {
		log.Fatalf("db migrate: %v", err)
	}
	logger.Info("DB initialized")

	// ---- Audit ----
	auditSvc := audit.New(db, logger)
	defer auditSvc.Stop(context.Background())

	// ---- Cache / PubSub ----
	cacheConfig := cache.Config{
		RedisAddr:       cfg.Cache.RedisAddr,
		RedisPassword:   cfg.Cache.RedisPassword,
		RedisDB:         cfg.Cache.RedisDB,
		LocalGCInterval: cfg.Cache.LocalGCInterval,
		LocalPubSubBuf:  cfg.Cache.LocalPubSubBuf,
	}
	c, err := cache.NewCache(cacheConfig)
	if err != nil {
		log.Fatalf("cache: %v", err)
	}
	pubsub, err := cache.NewPubSub(cacheConfig)
	if err != nil {
		log.Fatalf("pubsub: %v", err)
	}
	logger.Info("Cache initialized")

	// ---- Domain services ----
	emitter := notify.NewEmitter(pubsub, logger)
	socialSvc := social.NewService(db, emitter, cfg.Social, logger)
	projectSvc := project.NewService(db, emitter, cfg.Social, logger)
	moderationSvc := moderation.NewService(db, auditSvc, logger)
	rankingSvc := ranking.NewService(db, logger)
	contentSvc := content.NewService(db, logger)
	notifySvc := notify.NewService(db)

	// ---- Expiry sweeper ----
	// Off by default: expiry is lazy, checked on access. The sweeper is
	// opt-in housekeeping that reuses the same delete paths.
	sweeper := scheduler.New(logger)
	defer sweeper.Stop()
	sweeper.Register("friend_requests", socialSvc.SweepExpiredRequests)
	sweeper.Register("project_invitations", projectSvc.SweepExpiredInvitations)
	sweeper.Start(cfg.Social.SweepInterval)

	// ---- Gin HTTP Server ----
	if !cfg.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(mw.TraceID(), mw.Logger(logger), mw.Recovery(logger))
	r.Use(mw.RateLimit(rate.Limit(cfg.Security.RateLimitRPS), cfg.Security.RateLimitBurst))

	// Health check
	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(200, gin.H{"status": "ok"})
	})

	// ---- REST API routes ----
	authH := apirest.NewAuthHandler(db, c, cfg.Security)
	socialH := apirest.NewSocialHandler(socialSvc)
	projectH := apirest.NewProjectHandler(projectSvc)
	contentH := apirest.NewContentHandler(contentSvc, rankingSvc)
	trendingH := apirest.NewTrendingHandler(rankingSvc)
	notificationH := apirest.NewNotificationHandler(notifySvc)
	adminH := apirest.NewAdminHandler(moderationSvc)

	auth := mw.Auth(cfg.Security, c, db)

	api := r.Group("/api")
	{
		authG := api.Group("/auth")
		authG.POST("/login", authH.Login)
		authG.POST("/logout", auth, authH.Logout)
		authG.POST("/refresh", auth, authH.Refresh)

		socialG := api.Group("/social")
		socialG.Use(auth)
		socialG.GET("/friends", socialH.ListFriends)
		socialG.DELETE("/friends/:id", socialH.RemoveFriend)
		socialG.GET("/requests", socialH.ListRequests)
		socialG.POST("/requests", socialH.SendFriendRequest)
		socialG.POST("/requests/:id/accept", socialH.AcceptFriendRequest)
		socialG.POST("/requests/:id/reject", socialH.RejectFriendRequest)
		socialG.GET("/blocks", socialH.ListBlocked)
		socialG.POST("/blocks/:id", socialH.BlockUser)
		socialG.DELETE("/blocks/:id", socialH.UnblockUser)

		projectsG := api.Group("/projects")
		projectsG.Use(auth)
		projectsG.POST("", projectH.Create)
		projectsG.GET("/:id", projectH.Detail)
		projectsG.GET("/:id/members", projectH.ListMembers)
		projectsG.DELETE("/:id/members/:uid", projectH.RemoveMember)
		projectsG.POST("/:id/leave", projectH.Leave)
		projectsG.POST("/:id/invitations", projectH.Invite)
		projectsG.POST("/:id/posts", contentH.CreatePost)
		projectsG.GET("/:id/posts", contentH.ListPosts)
		projectsG.POST("/:id/view", contentH.RecordView)

		invitationsG := api.Group("/invitations")
		invitationsG.Use(auth)
		invitationsG.GET("", projectH.ListInvitations)
		invitationsG.POST("/:id/accept", projectH.AcceptInvitation)
		invitationsG.POST("/:id/reject", projectH.RejectInvitation)

		postsG := api.Group("/posts")
		postsG.Use(auth)
		postsG.POST("/:id/comments", contentH.CreateComment)
		postsG.GET("/:id/comments", contentH.ListComments)
		postsG.POST("/:id/like", contentH.Like)
		postsG.DELETE("/:id/like", contentH.Unlike)

		notificationsG := api.Group("/notifications")
		notificationsG.Use(auth)
		notificationsG.GET("", notificationH.List)
		notificationsG.POST("/:id/read", notificationH.MarkRead)
		notificationsG.POST("/read-all", notificationH.MarkAllRead)

		// Trending is public; no auth.
		api.GET("/trending", trendingH.Trending)

		adminG := api.Group("/admin")
		adminG.Use(auth)
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
	}

	// ---- SSE ----
	sseH := sse.NewHandler(pubsub, c, cfg.Security, logger)
	r.GET("/events", sseH.ServeEvents)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	logger.Info("Server listening", zap.String("addr", addr))
	if err := r.Run(addr); err != nil {
		log.Fatalf("server: %v", err)
	}
}
