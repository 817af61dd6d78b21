package main

import (
	"log"

	api "eshop-backend/cmd/api"
	authdomain "eshop-backend/internal/auth/domain"
	authRepo "eshop-backend/internal/auth/repository"
	notifdomain "eshop-backend/internal/notification/domain"
	"eshop-backend/internal/notification/dispatch"
	"eshop-backend/internal/notification/hygiene"
	notifRepo "eshop-backend/internal/notification/repository"
	"eshop-backend/internal/scheduler"
	"eshop-backend/pkg/config"
	"eshop-backend/pkg/database"
	"eshop-backend/pkg/fcm"
	"eshop-backend/pkg/push"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.NewPostgresConnection(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Auto-migrate database schemas
	if err := db.AutoMigrate(&authdomain.User{}, &notifdomain.Notification{}); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Initialize repositories (dependency injection)
	userRepo := authRepo.NewUserRepository(db)
	notificationRepo := notifRepo.NewNotificationRepository(db)

	// Initialize FCM gateway (optional, dispatch degrades without it)
	var gateway push.Gateway
	if cfg.FirebaseCredentials != "" {
		client, err := fcm.NewClient(cfg.FirebaseCredentials)
		if err != nil {
			log.Printf("[WARN] Failed to initialize FCM client (push notifications disabled): %v", err)
		} else {
			gateway = client
		}
	} else {
		log.Println("[WARN] No Firebase credentials configured, push notifications disabled")
	}

	// Initialize dispatch engine and token hygiene
	engine := dispatch.NewEngine(gateway, userRepo, notificationRepo)
	cleaner := hygiene.NewCleaner(userRepo)

	// Initialize and start the notification scheduler
	sched := scheduler.New(engine, cleaner, cfg.SchedulerTimezone)
	if gateway != nil {
		sched.Start()
	} else {
		log.Println("[WARN] Scheduler not started: delivery gateway unavailable")
	}

	// Initialize HTTP handler
	handler := api.NewHandler(cfg, userRepo, notificationRepo, engine, sched)

	// Start server
	log.Printf("Server starting on port %s", cfg.Port)
	if err := handler.Start(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
