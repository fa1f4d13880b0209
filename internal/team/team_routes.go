package team

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/golazo-app/golazo/config"
	"github.com/golazo-app/golazo/internal/middleware"
	"github.com/golazo-app/golazo/internal/notification"
)

// RegisterTeamRoutes sets up team, membership, join-request and invitation routes.
func RegisterTeamRoutes(router *gin.RouterGroup, db *gorm.DB, appConfig *config.Config, notifier notification.Notifier) {
	repo := NewTeamRepository(db)
	controller := NewTeamController(repo, notifier)
	auth := middleware.AuthMiddleware(appConfig.JWT.AccessTokenSecret, db)

	teams := router.Group("/teams")
	{
		teams.GET("", controller.GetAllTeams)
		teams.GET("/:team_id", controller.GetTeamByID)
		teams.GET("/:team_id/members", controller.GetTeamMembers)

		protected := teams.Group("")
		protected.Use(auth)
		{
			protected.POST("", controller.CreateTeam)
			protected.GET("/mine", controller.GetMyTeams)
			protected.PUT("/:team_id", controller.UpdateTeam)
			protected.DELETE("/:team_id", controller.DeleteTeam)
			protected.DELETE("/:team_id/members/:user_id", controller.RemoveTeamMember)
			protected.POST("/:team_id/captaincy", controller.TransferCaptaincy)

			protected.POST("/:team_id/join-requests", controller.RequestToJoinTeam)
			protected.GET("/:team_id/join-requests", controller.GetJoinRequestsForTeam)
			protected.PUT("/:team_id/join-requests/:request_id/:action", controller.RespondToJoinRequest)

			protected.POST("/:team_id/invitations", controller.CreateInvitation)
			protected.GET("/:team_id/invitations", controller.GetInvitationsForTeam)
			protected.DELETE("/:team_id/invitations/:invitation_id", controller.RevokeInvitation)
		}
	}

	invitations := router.Group("/invitations")
	{
		invitations.GET("/:token", controller.GetInvitationByToken)
		invitations.POST("/:token/accept", auth, controller.AcceptInvitation)
	}
}
