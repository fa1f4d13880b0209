package notification

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/golazo-app/golazo/internal/middleware"
)

// NotificationRoutes wires the notification endpoints.
func NotificationRoutes(router *gin.RouterGroup, db *gorm.DB, jwtSecret string) {
	repo := NewNotificationRepository(db)
	controller := NewNotificationController(repo)

	routes := router.Group("/notifications")
	routes.Use(middleware.AuthMiddleware(jwtSecret, db))
	{
		routes.GET("", controller.ListMyNotifications)
		routes.POST("/:id/read", controller.MarkNotificationRead)
	}
}
