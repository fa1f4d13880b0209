package match

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/golazo-app/golazo/config"
	"github.com/golazo-app/golazo/internal/middleware"
	"github.com/golazo-app/golazo/internal/notification"
	"github.com/golazo-app/golazo/internal/team"
	"github.com/golazo-app/golazo/pkg/responses"
)

// RegisterMatchRoutes sets up match lifecycle, request, availability, lineup,
// event and admin sweep routes.
func RegisterMatchRoutes(router *gin.RouterGroup, db *gorm.DB, appConfig *config.Config, notifier notification.Notifier) {
	repo := NewMatchRepository(db)
	teamRepo := team.NewTeamRepository(db)
	controller := NewMatchController(repo, teamRepo, notifier)
	auth := middleware.AuthMiddleware(appConfig.JWT.AccessTokenSecret, db)

	matches := router.Group("/matches")
	{
		matches.GET("", controller.GetAllMatches)
		matches.GET("/:match_id", controller.GetMatchByID)
		matches.GET("/:match_id/events", controller.GetMatchEvents)
		matches.GET("/:match_id/lineup", controller.GetLineup)

		protected := matches.Group("")
		protected.Use(auth)
		{
			protected.POST("", controller.CreateMatch)
			protected.GET("/mine", controller.GetMyMatches)
			protected.PUT("/:match_id", controller.UpdateMatchDetails)
			protected.POST("/:match_id/cancel", controller.CancelMatch)
			protected.POST("/:match_id/start", controller.StartMatch)
			protected.PUT("/:match_id/score", controller.UpdateScore)
			protected.POST("/:match_id/complete", controller.CompleteMatch)

			protected.POST("/:match_id/requests", controller.CreateMatchRequest)
			protected.GET("/:match_id/requests", controller.GetMatchRequests)
			protected.PUT("/:match_id/requests/:request_id/:action", controller.RespondToMatchRequest)

			protected.PUT("/:match_id/availability", controller.UpdateAvailability)
			protected.GET("/:match_id/availability", controller.GetAvailabilitySummary)

			protected.PUT("/:match_id/lineup", controller.SetLineup)

			protected.POST("/:match_id/events", controller.CreateMatchEvent)
			protected.DELETE("/:match_id/events/:event_id", controller.DeleteMatchEvent)
		}
	}

	router.GET("/teams/:team_id/matches", controller.GetMatchesByTeam)

	reminders := NewReminderService(repo, teamRepo, notifier, appConfig.Jobs.ReminderLeadHours)
	admin := router.Group("/admin")
	admin.Use(auth, middleware.AdminMiddleware(db))
	{
		admin.POST("/reminders/sweep", func(c *gin.Context) {
			sent, err := reminders.Sweep()
			if err != nil {
				responses.SendError(c, http.StatusInternalServerError, "Reminder sweep failed: "+err.Error())
				return
			}
			responses.SendSuccess(c, http.StatusOK, "Reminder sweep completed", gin.H{"reminders_sent": sent})
		})
	}
}
