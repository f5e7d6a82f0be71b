package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"anoa.com/practiceforum/internal/agent"
	"anoa.com/practiceforum/internal/agent/agents"
	agentHttp "anoa.com/practiceforum/internal/agent/delivery/http"
	"anoa.com/practiceforum/internal/agent/providers"
	"anoa.com/practiceforum/internal/config"
	"anoa.com/practiceforum/internal/middleware"
	"anoa.com/practiceforum/pkg/cache"
	"anoa.com/practiceforum/pkg/clock"

	blockHttp "anoa.com/practiceforum/internal/modules/block/delivery/http"
	blockRepo "anoa.com/practiceforum/internal/modules/block/repository"
	blockService "anoa.com/practiceforum/internal/modules/block/service"

	communityRepo "anoa.com/practiceforum/internal/modules/community/repository"

	notiHttp "anoa.com/practiceforum/internal/modules/notification/delivery/http"
	notifRepo "anoa.com/practiceforum/internal/modules/notification/repository"
	notifService "anoa.com/practiceforum/internal/modules/notification/service"

	postHttp "anoa.com/practiceforum/internal/modules/post/delivery/http"
	postRepo "anoa.com/practiceforum/internal/modules/post/repository"
	postService "anoa.com/practiceforum/internal/modules/post/service"

	rankHttp "anoa.com/practiceforum/internal/modules/rank/delivery/http"
	rankRepo "anoa.com/practiceforum/internal/modules/rank/repository"
	rankService "anoa.com/practiceforum/internal/modules/rank/service"

	scheduleHttp "anoa.com/practiceforum/internal/modules/schedule/delivery/http"
	scheduleRepo "anoa.com/practiceforum/internal/modules/schedule/repository"
	scheduleService "anoa.com/practiceforum/internal/modules/schedule/service"

	streakHttp "anoa.com/practiceforum/internal/modules/streak/delivery/http"
	streakRepo "anoa.com/practiceforum/internal/modules/streak/repository"
	streakService "anoa.com/practiceforum/internal/modules/streak/service"

	tierHttp "anoa.com/practiceforum/internal/modules/tier/delivery/http"
	tierRepo "anoa.com/practiceforum/internal/modules/tier/repository"
	tierService "anoa.com/practiceforum/internal/modules/tier/service"

	userHttp "anoa.com/practiceforum/internal/modules/user/delivery/http"
	userRepo "anoa.com/practiceforum/internal/modules/user/repository"
	userService "anoa.com/practiceforum/internal/modules/user/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type Server struct {
	engine      *gin.Engine
	httpServer  *http.Server
	db          *gorm.DB
	redisClient *redis.Client
	scheduler   *agent.Scheduler
	ranks       rankService.RankService
	generator   providers.TextGenerator
}

func NewServer(ctx context.Context, cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	clk := clock.System()

	userRepository := userRepo.NewUserRepository(db)
	authSvc := userService.NewAuthService(userRepository, cfg.JWTSecret, cfg.JWTTTL)
	authHandler := userHttp.NewAuthHandler(authSvc)

	// Notification Module
	notificationRepository := notifRepo.NewNotificationRepository(db)
	notificationSvc := notifService.NewNotificationService(notificationRepository, redisClient)
	notificationHandler := notiHttp.NewNotificationHandler(notificationSvc, redisClient, allowOrigins(cfg.Origins()))

	tierRepository := tierRepo.NewTierRepository(db)
	tierSvc := tierService.NewTierService(tierRepository)
	tierHandler := tierHttp.NewTierHandler(tierSvc)

	rankRepository := rankRepo.NewRankRepository(db)
	rankSvc := rankService.NewRankService(rankRepository, tierSvc, notificationSvc, clk)
	rankHandler := rankHttp.NewRankHandler(rankSvc)

	streakRepository := streakRepo.NewStreakRepository(db)
	streakSvc := streakService.NewStreakService(streakRepository, userRepository, rankSvc, clk)
	streakHandler := streakHttp.NewStreakHandler(streakSvc)

	blockRepository := blockRepo.NewBlockRepository(db)
	blockSvc := blockService.NewBlockService(blockRepository)
	blockHandler := blockHttp.NewBlockHandler(blockSvc)

	postRepository := postRepo.NewPostRepository(db)
	postSvc := postService.NewPostService(postRepository, blockRepository, streakSvc)
	postHandler := postHttp.NewPostHandler(postSvc)

	// Community schedule agent
	var generator providers.TextGenerator
	if cfg.GeminiAPIKey != "" {
		gemini, err := providers.NewGeminiProvider(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, err
		}
		generator = gemini
	} else {
		log.Warn("GEMINI_API_KEY is not set: block titles fall back to dates and posts are skipped")
	}
	contentGenerator := agent.NewContentGenerator(generator, cfg.BlockTitleMasterPrompt, cfg.PostContentMasterPrompt, cfg.GeneratorTimeout)

	scheduleRepository := scheduleRepo.NewScheduleRepository(db)
	scheduleAgent := agents.NewCommunityScheduleAgent(
		scheduleRepository,
		blockRepository,
		postSvc,
		contentGenerator,
		cache.NewRedisLocker(redisClient),
		clk,
		agents.CommunityScheduleConfig{
			Schedule:    cfg.SchedulerSpec,
			Concurrency: cfg.SchedulerConcurrency,
			LockTTL:     cfg.ScheduleLockTTL,
		},
	)

	scheduler := agent.NewScheduler(clock.Location(cfg.SchedulerTimezone))
	if err := scheduler.RegisterAgent(scheduleAgent); err != nil {
		return nil, err
	}

	agentHandler := agentHttp.NewAgentHandler(scheduler)

	communityRepository := communityRepo.NewCommunityRepository(db)
	scheduleSvc := scheduleService.NewScheduleService(scheduleRepository, communityRepository, userRepository, scheduleAgent, clk)
	scheduleHandler := scheduleHttp.NewScheduleHandler(scheduleSvc)

	router := gin.New()

	setupCORS(router, cfg.Origins())

	router.Use(gin.Recovery())
	router.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/health"},
	}))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authMiddleware := middleware.NewAuthMiddleware(userRepository, cfg.JWTSecret)

	api := router.Group("/api")

	// Public routes (no auth required)
	auth := api.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
	}

	tiers := api.Group("/tiers")
	{
		tiers.GET("/major", tierHandler.GetMajorTiers)
		tiers.GET("/sub-major", tierHandler.GetSubMajorTiers)
		tiers.GET("/minor", tierHandler.GetMinorTiers)
	}

	// Protected routes (apply auth middleware explicitly)
	protected := api.Group("")
	protected.Use(authMiddleware.RequireAuth())
	{
		protected.GET("/auth/me", authHandler.Me)
		protected.PUT("/auth/timezone", authHandler.UpdateTimezone)

		// Rank routes
		protected.GET("/ranks/me", rankHandler.GetMyRanks)
		protected.GET("/ranks/user/:user_id", rankHandler.GetUserRanks)
		protected.GET("/ranks/days-to-rank", rankHandler.GetDaysToRank)
		protected.GET("/ranks/constants", tierHandler.GetConstants)
		protected.PUT("/ranks/constants/:kind", authMiddleware.RequireAdmin(), tierHandler.UpdateConstant)
		protected.GET("/ranks/:kind/leaderboard", rankHandler.GetLeaderboard)
		protected.GET("/ranks/:kind/history", rankHandler.GetMyHistory)

		// Streak routes
		protected.POST("/streaks/activity", streakHandler.RecordActivity)
		protected.GET("/streaks/me", streakHandler.GetMyStreaks)
		protected.GET("/streaks/user/:user_id", streakHandler.GetUserStreaks)
		protected.GET("/streaks/:kind/leaderboard", streakHandler.GetLeaderboard)

		// Community schedule routes
		protected.GET("/communities/:community_id/schedule", scheduleHandler.GetSchedule)
		protected.POST("/communities/:community_id/schedule", scheduleHandler.UpsertSchedule)
		protected.DELETE("/communities/:community_id/schedule", scheduleHandler.DeleteSchedule)
		protected.POST("/communities/:community_id/schedule/execute", scheduleHandler.ExecuteNow)
		protected.GET("/communities/:community_id/blocks", blockHandler.ListByCommunity)

		// Block and post routes
		protected.GET("/blocks/:block_id", blockHandler.GetBlock)
		protected.GET("/blocks/:block_id/posts", postHandler.GetPostsByBlockID)
		protected.POST("/blocks/:block_id/posts", postHandler.CreatePost)
		protected.GET("/posts/:post_id", postHandler.GetPostByID)

		// Admin agent routes
		protected.GET("/admin/agents", authMiddleware.RequireAdmin(), agentHandler.ListAgents)
		protected.POST("/admin/agents/:name/run", authMiddleware.RequireAdmin(), agentHandler.RunAgent)

		// Notification routes
		protected.GET("/notifications", notificationHandler.GetNotifications)
		protected.GET("/notifications/unread-count", notificationHandler.UnreadCount)
		protected.PUT("/notifications/:id/read", notificationHandler.MarkAsRead)
		protected.PUT("/notifications/read-all", notificationHandler.MarkAllAsRead)
		protected.GET("/notifications/ws", notificationHandler.HandleWebSocket)
	}

	return &Server{
		engine: router,
		httpServer: &http.Server{
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		db:          db,
		redisClient: redisClient,
		scheduler:   scheduler,
		ranks:       rankSvc,
		generator:   generator,
	}, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run starts the scheduler and serves HTTP until Shutdown is called.
func (s *Server) Run(addr string) error {
	s.scheduler.Start()

	s.httpServer.Addr = addr

	log.WithField("addr", addr).Info("http server listening")
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and the scheduler, then drains pending
// rank syncs so no credited streak is left without its rank update.
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error

	if err := s.httpServer.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := s.scheduler.Stop(ctx); err != nil {
		errs = append(errs, err)
	}

	s.ranks.Wait()

	if s.generator != nil {
		s.generator.Close()
	}
	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if sqlDB, err := s.db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func setupCORS(router *gin.Engine, origins []string) {
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}

// allowOrigins accepts websocket upgrades from the CORS origins and from
// clients that send no Origin header.
func allowOrigins(origins []string) func(r *http.Request) bool {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[o] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || allowed[origin]
	}
}
