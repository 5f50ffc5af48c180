package api

import (
	"net/http"

	"sikadvoltz/progression/internal/live"
	"sikadvoltz/progression/internal/presence"
	"sikadvoltz/progression/internal/push"
	"sikadvoltz/progression/internal/service"

	"github.com/gin-gonic/gin"
)

// SetupRoutes wires the exposed operations onto the router.
func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	completionService service.CompletionService,
	goalService service.GoalService,
	notificationService service.NotificationService,
	pushSender *push.SNSSender,
	hub *live.Hub,
	tracker presence.Tracker,
) {
	completionHandler := NewCompletionHandler(completionService)
	achievementHandler := NewAchievementHandler(completionService)
	goalHandler := NewGoalHandler(goalService)
	notificationHandler := NewNotificationHandler(notificationService, pushSender)
	wsHandler := NewWSHandler(hub, tracker)

	authMiddleware := AuthMiddleware(jwtSecret)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		protected.POST("/sessions/complete", completionHandler.CompleteSession)
		protected.GET("/achievements/summary", achievementHandler.GetSummary)
		protected.GET("/goals/:id/progress", goalHandler.GetGoalProgress)

		notificationGroup := protected.Group("/notifications")
		{
			notificationGroup.GET("", notificationHandler.ListRecent)
			notificationGroup.GET("/unread-count", notificationHandler.GetUnreadCount)
			notificationGroup.POST("/:id/read", notificationHandler.MarkRead)
			notificationGroup.POST("/devices", notificationHandler.RegisterDevice)
		}

		protected.GET("/ws", wsHandler.Connect)
	}
}
