package main

import (
	"flag"
	"log"

	"go.uber.org/zap"

	"github.com/golazo-app/golazo/config"
	_ "github.com/golazo-app/golazo/docs"
	"github.com/golazo-app/golazo/internal/match"
	"github.com/golazo-app/golazo/internal/notification"
	"github.com/golazo-app/golazo/internal/social"
	"github.com/golazo-app/golazo/internal/team"
	"github.com/golazo-app/golazo/internal/user"
	"github.com/golazo-app/golazo/routes"
)

// @title Golazo REST API
// @version 1.0
// @description Amateur football organization: teams, matches, availability and lineups.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
func main() {
	sweepReminders := flag.Bool("sweep-reminders", false,
		"run one availability-reminder sweep and exit (for cron)")
	flag.Parse()

	if err := config.Initialize(); err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer zap.L().Sync()

	cfg := config.GetConfig()
	db := config.DB

	err := db.AutoMigrate(
		&user.User{},
		&team.Team{}, &team.TeamMember{}, &team.JoinRequest{}, &team.TeamInvitation{},
		&match.FootballMatch{}, &match.MatchRequest{}, &match.MatchAvailability{},
		&match.MatchLineup{}, &match.MatchEvent{},
		&notification.Notification{},
		&social.Commendation{}, &social.ProfileComment{},
	)
	if err != nil {
		log.Fatalf("AutoMigrate failed: %v", err)
	}
	zap.L().Info("migrations applied")

	notifier := notification.NewService(notification.NewNotificationRepository(db))

	if *sweepReminders {
		sweeper := match.NewReminderService(
			match.NewMatchRepository(db),
			team.NewTeamRepository(db),
			notifier,
			cfg.Jobs.ReminderLeadHours,
		)
		sent, err := sweeper.Sweep()
		if err != nil {
			log.Fatalf("Reminder sweep failed: %v", err)
		}
		zap.L().Info("reminder sweep done", zap.Int("sent", sent))
		return
	}

	r := routes.SetupRoutes(db, cfg)

	zap.L().Info("starting server",
		zap.String("port", cfg.App.Port), zap.String("env", cfg.App.Env))
	if err := r.Run(":" + cfg.App.Port); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}
