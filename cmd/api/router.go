package api

import (
	"net/http"

	authDelivery "eshop-backend/internal/auth/delivery"
	notifDelivery "eshop-backend/internal/notification/delivery"
	schedDelivery "eshop-backend/internal/scheduler/delivery"
	"eshop-backend/pkg/config"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, cfg *config.Config, notifHandler *notifDelivery.NotificationHandler, schedHandler *schedDelivery.SchedulerHandler) {
	api := r.Group("/api")
	{
		// Health check (no auth required)
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		// Notification routes (protected)
		notifications := api.Group("/notifications")
		notifications.Use(authDelivery.AuthMiddleware(cfg.JWTSecret))
		{
			notifications.GET("", notifHandler.GetNotifications)
			notifications.PUT("/:id/read", notifHandler.MarkAsRead)
			notifications.PUT("/read-all", notifHandler.MarkAllAsRead)
			notifications.DELETE("/:id", notifHandler.DeleteNotification)

			// Admin routes - for sending push notifications
			notifications.POST("/send", authDelivery.AdminMiddleware(), notifHandler.SendToUser)
			notifications.POST("/broadcast", authDelivery.AdminMiddleware(), notifHandler.Broadcast)
		}

		// Device token routes (protected)
		devices := api.Group("/devices")
		devices.Use(authDelivery.AuthMiddleware(cfg.JWTSecret))
		{
			devices.POST("/register", notifHandler.RegisterToken)
			devices.DELETE("", notifHandler.UnregisterToken)
		}

		// Scheduler operator routes (admin only)
		sched := api.Group("/scheduler")
		sched.Use(authDelivery.AuthMiddleware(cfg.JWTSecret), authDelivery.AdminMiddleware())
		{
			sched.GET("/status", schedHandler.GetStatus)
			sched.POST("/start", schedHandler.Start)
			sched.POST("/stop", schedHandler.Stop)
			sched.POST("/send-now", schedHandler.SendNow)
			sched.POST("/send-random", schedHandler.SendRandom)
		}
	}
}
