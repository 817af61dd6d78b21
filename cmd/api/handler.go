package api

import (
	authrepo "eshop-backend/internal/auth/repository"
	notifDelivery "eshop-backend/internal/notification/delivery"
	"eshop-backend/internal/notification/dispatch"
	notifrepo "eshop-backend/internal/notification/repository"
	"eshop-backend/internal/scheduler"
	schedDelivery "eshop-backend/internal/scheduler/delivery"
	"eshop-backend/pkg/config"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	router *gin.Engine
}

func NewHandler(cfg *config.Config, userRepo authrepo.UserRepository, notifRepo notifrepo.NotificationRepository, engine *dispatch.Engine, sched *scheduler.Scheduler) *Handler {
	notifHandler := notifDelivery.NewNotificationHandler(notifRepo, userRepo, engine)
	schedHandler := schedDelivery.NewSchedulerHandler(sched)

	router := gin.Default()
	SetupRoutes(router, cfg, notifHandler, schedHandler)

	return &Handler{router: router}
}

func (h *Handler) Start(addr string) error {
	return h.router.Run(addr)
}
