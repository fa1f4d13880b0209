package auth

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/golazo-app/golazo/config"
	"github.com/golazo-app/golazo/internal/middleware"
)

// RegisterAuthRoutes wires the auth endpoints.
func RegisterAuthRoutes(router *gin.RouterGroup, db *gorm.DB, appConfig *config.Config) {
	repo := NewAuthRepository(db)
	controller := NewAuthController(repo, appConfig)

	router.POST("/register", controller.Register)
	router.POST("/login", controller.Login)

	protected := router.Group("")
	protected.Use(middleware.AuthMiddleware(appConfig.JWT.AccessTokenSecret, db))
	protected.GET("/me", controller.Me)
}
