package social

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/golazo-app/golazo/config"
	"github.com/golazo-app/golazo/internal/middleware"
	"github.com/golazo-app/golazo/internal/notification"
)

// RegisterSocialRoutes sets up commendation and profile comment routes.
func RegisterSocialRoutes(router *gin.RouterGroup, db *gorm.DB, appConfig *config.Config, notifier notification.Notifier) {
	repo := NewSocialRepository(db)
	controller := NewSocialController(repo, notifier)
	auth := middleware.AuthMiddleware(appConfig.JWT.AccessTokenSecret, db)

	users := router.Group("/users")
	{
		users.GET("/:user_id/commendations", controller.GetCommendations)
		users.GET("/:user_id/comments", controller.GetProfileComments)

		protected := users.Group("")
		protected.Use(auth)
		{
			protected.POST("/:user_id/commendations", controller.CreateCommendation)
			protected.POST("/:user_id/comments", controller.CreateProfileComment)
			protected.DELETE("/:user_id/comments/:comment_id", controller.DeleteProfileComment)
		}
	}
}
