package handlers

import (
	"github.com/787516/Matrimonial/internal/middleware"
	"github.com/787516/Matrimonial/pkg/utils"
	"github.com/gin-gonic/gin"
)

// NewRouter wires every route onto a fresh engine
func (h *HandlerManager) NewRouter() *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.RequestLogger(), middleware.Recovery())
	if h.RateLimiter != nil {
		r.Use(middleware.IPRateLimit(h.RateLimiter))
	}

	r.GET("/health", func(c *gin.Context) {
		utils.SuccessResponse(c, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")
	api.Use(middleware.Auth(h.Config.JWTSecret))
	if h.RateLimiter != nil {
		api.Use(middleware.UserRateLimit(h.RateLimiter))
	}

	matches := api.Group("/matches")
	{
		matches.GET("/feed", h.GetFeed)
		matches.GET("/filter", h.SearchProfiles)
		matches.GET("/view/:id", h.ViewProfile)
		matches.POST("/interest", h.SendInterest)
		matches.POST("/chat-request", h.SendChatRequest)
		matches.GET("/chat-access/:id", h.CheckChatAccess)
		matches.GET("/requests/pending", h.GetPendingRequests)
		matches.PATCH("/requests/:requestId", h.RespondToRequest)
		matches.DELETE("/requests/:requestId", h.CancelRequest)
		matches.POST("/block", h.BlockUser)
		matches.DELETE("/block/:targetId", h.UnblockUser)
		matches.GET("/dashboard-stats", h.GetDashboardCounts)
		matches.GET("/dashboard-stats/requests", h.ListRequests)
	}

	notifications := api.Group("/notifications")
	{
		notifications.GET("", h.ListNotifications)
		notifications.GET("/unread-count", h.UnreadCount)
		notifications.PATCH("/read-all", h.MarkAllNotificationsRead)
		notifications.PATCH("/:id/read", h.MarkNotificationRead)
		notifications.DELETE("/:id", h.DeleteNotification)
		notifications.DELETE("", h.ClearNotifications)
	}

	me := api.Group("/me")
	{
		me.PUT("/telegram", h.LinkTelegram)
		me.DELETE("/telegram", h.UnlinkTelegram)
	}

	return r
}
