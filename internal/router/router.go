package router

import (
	"log"

	"bubble/config"
	"bubble/internal/handler"
	"bubble/internal/middleware"
	"bubble/internal/repository"
	"bubble/internal/service"
	"bubble/internal/worker"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Setup wires repositories, services and handlers into a gin engine and
// returns the sweeper so main can run it alongside the server.
func Setup(cfg *config.Config, db *gorm.DB) (*gin.Engine, *worker.Sweeper) {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	limiter := middleware.NewRateLimiter(&cfg.Server)
	r.Use(middleware.RateLimitByIP(limiter))

	// Repositories
	userRepo := repository.NewUserRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	locationRepo := repository.NewLocationRepository(db)
	historyRepo := repository.NewNotificationRepository(db)

	// Services
	fcmSvc := service.NewFCMService(cfg.Firebase.ServiceAccountPath)
	if fcmSvc != nil {
		log.Printf("[FCM] Push notifications enabled")
	} else if cfg.Firebase.ServiceAccountPath != "" {
		log.Printf("[FCM] Push notifications disabled: failed to init (check service account file)")
	} else {
		log.Printf("[FCM] Push notifications disabled: set FIREBASE_SERVICE_ACCOUNT_PATH to enable")
	}
	composer := service.NewComposer(cfg.Geofence.MapBaseURL)
	geofenceSvc := service.NewGeofenceService(cfg.Geofence.DefaultRadiusM)
	notifySvc := service.NewNotifyService(scheduleRepo, locationRepo, historyRepo, userRepo, fcmSvc, composer, cfg.Retention.TTL)
	locationSvc := service.NewLocationService(locationRepo, scheduleRepo, geofenceSvc, notifySvc, cfg.Retention.TTL)
	scheduleSvc := service.NewScheduleService(scheduleRepo, cfg.Geofence.DefaultRadiusM)
	cleanupSvc := service.NewCleanupService(scheduleRepo, locationRepo, historyRepo, cfg.Retention.TTL)

	// Handlers
	locationHandler := handler.NewLocationHandler(locationSvc)
	scheduleHandler := handler.NewScheduleHandler(scheduleSvc)
	notificationHandler := handler.NewNotificationHandler(historyRepo, userRepo)
	batchHandler := handler.NewBatchHandler(notifySvc, cleanupSvc)

	authMw := middleware.AuthRequired(&cfg.JWT)
	userLimitMw := middleware.RateLimitByUser(limiter)
	batchMw := middleware.BatchTokenRequired(cfg)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")
	{
		locationGroup := api.Group("/location")
		locationGroup.Use(authMw, userLimitMw)
		{
			locationGroup.POST("/update", locationHandler.UpdateLocation)
			locationGroup.GET("/status", locationHandler.GetStatus)
		}

		scheduleGroup := api.Group("/schedules")
		scheduleGroup.Use(authMw, userLimitMw)
		{
			scheduleGroup.POST("", scheduleHandler.Create)
			scheduleGroup.GET("", scheduleHandler.List)
			scheduleGroup.GET("/:id", scheduleHandler.Get)
			scheduleGroup.PATCH("/:id", scheduleHandler.Update)
			scheduleGroup.DELETE("/:id", scheduleHandler.Delete)
		}

		notificationGroup := api.Group("/notifications")
		notificationGroup.Use(authMw, userLimitMw)
		{
			notificationGroup.GET("", notificationHandler.List)
			notificationGroup.POST("/token", notificationHandler.RegisterToken)
			notificationGroup.DELETE("/token", notificationHandler.RemoveToken)
		}

		batchGroup := api.Group("/batch")
		batchGroup.Use(batchMw)
		{
			batchGroup.POST("/stay-notifications", batchHandler.StayNotifications)
			batchGroup.POST("/update-expired-schedules", batchHandler.UpdateExpiredSchedules)
			batchGroup.POST("/cleanup", batchHandler.Cleanup)
			batchGroup.GET("/cleanup-stats", batchHandler.CleanupStats)
			batchGroup.POST("/run-all", batchHandler.RunAll)
		}
	}

	sweeper := worker.NewSweeper(notifySvc, cleanupSvc, cfg.Sweeper)
	return r, sweeper
}
