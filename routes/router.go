package routes

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/golazo-app/golazo/config"
	"github.com/golazo-app/golazo/internal/auth"
	"github.com/golazo-app/golazo/internal/match"
	"github.com/golazo-app/golazo/internal/middleware"
	"github.com/golazo-app/golazo/internal/notification"
	"github.com/golazo-app/golazo/internal/social"
	"github.com/golazo-app/golazo/internal/team"
)

// SetupRoutes builds the gin engine with all route groups wired up.
func SetupRoutes(db *gorm.DB, appConfig *config.Config) *gin.Engine {
	if appConfig.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.RequestLogger(zap.L()), gin.Recovery())
	r.Use(cors.Default())

	r.Static("/public", "./public")

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"name": "golazo", "status": "ok"})
	})

	// Swagger route
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	notifier := notification.NewService(notification.NewNotificationRepository(db))

	api := r.Group("/api/v1")
	auth.RegisterAuthRoutes(api.Group("/auth"), db, appConfig)
	notification.NotificationRoutes(api, db, appConfig.JWT.AccessTokenSecret)
	team.RegisterTeamRoutes(api, db, appConfig, notifier)
	match.RegisterMatchRoutes(api, db, appConfig, notifier)
	social.RegisterSocialRoutes(api, db, appConfig, notifier)

	return r
}
