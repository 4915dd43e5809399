package handlers

import (
	"context"
	"strconv"

	"github.com/787516/Matrimonial/internal/config"
	"github.com/787516/Matrimonial/internal/middleware"
	"github.com/787516/Matrimonial/internal/services"
	"github.com/787516/Matrimonial/pkg/utils"
	"github.com/gin-gonic/gin"
)

// TelegramLinker stores the Telegram chat a member receives alerts in.
type TelegramLinker interface {
	LinkTelegramChat(ctx context.Context, userID uint, chatID int64) error
}

type HandlerManager struct {
	Config          *config.Config
	MatchSvc        *services.MatchService
	NotificationSvc *services.NotificationService
	Users           TelegramLinker
	RateLimiter     *middleware.RateLimiter
}

func NewHandlerManager(
	cfg *config.Config,
	matchSvc *services.MatchService,
	notificationSvc *services.NotificationService,
	users TelegramLinker,
	rateLimiter *middleware.RateLimiter,
) *HandlerManager {
	return &HandlerManager{
		Config:          cfg,
		MatchSvc:        matchSvc,
		NotificationSvc: notificationSvc,
		Users:           users,
		RateLimiter:     rateLimiter,
	}
}

// caller returns the authenticated user or replies 401.
func caller(c *gin.Context) (uint, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		utils.Unauthorized(c, "unauthorized")
	}
	return userID, ok
}

// idParam parses a positive numeric path parameter or replies 400.
func idParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		utils.BadRequest(c, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}

// pageQuery reads page and limit, leaving range checks to the services.
func pageQuery(c *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.Query("limit"))
	return page, limit
}
