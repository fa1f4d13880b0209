package match

import (
	"time"

	"go.uber.org/zap"

	"github.com/golazo-app/golazo/internal/notification"
	"github.com/golazo-app/golazo/internal/team"
)

// ReminderService sweeps matches approaching their scheduled time and nudges
// every member whose availability is still pending. The reminded_at stamp
// makes each nudge at-most-once per (match, user) even across overlapping
// sweep runs.
type ReminderService struct {
	matchRepo MatchRepository
	teamRepo  team.TeamRepository
	notifier  notification.Notifier
	now       func() time.Time
	leadHours int
}

// NewReminderService creates a reminder sweeper. leadHours is how far ahead
// of kickoff the sweep looks (one-hour window ending at leadHours).
func NewReminderService(matchRepo MatchRepository, teamRepo team.TeamRepository, notifier notification.Notifier, leadHours int) *ReminderService {
	return &ReminderService{
		matchRepo: matchRepo,
		teamRepo:  teamRepo,
		notifier:  notifier,
		now:       time.Now,
		leadHours: leadHours,
	}
}

// NewReminderServiceWithClock creates a reminder sweeper with an injected
// time source for tests.
func NewReminderServiceWithClock(matchRepo MatchRepository, teamRepo team.TeamRepository, notifier notification.Notifier, leadHours int, now func() time.Time) *ReminderService {
	svc := NewReminderService(matchRepo, teamRepo, notifier, leadHours)
	svc.now = now
	return svc
}

// Sweep finds matches scheduled leadHours out, ensures every active member
// of each side has an availability row, and reminds the ones still pending.
// Returns the number of reminders sent.
func (s *ReminderService) Sweep() (int, error) {
	now := s.now()
	from := now.Add(time.Duration(s.leadHours-1) * time.Hour)
	to := now.Add(time.Duration(s.leadHours) * time.Hour)

	matches, err := s.matchRepo.FindMatchesInWindow(from, to)
	if err != nil {
		return 0, err
	}

	sent := 0
	for i := range matches {
		m := &matches[i]
		sides := []uint{m.HomeTeamID}
		if m.AwayTeamID != nil {
			sides = append(sides, *m.AwayTeamID)
		}
		for _, teamID := range sides {
			n, err := s.sweepSide(m, teamID, now)
			if err != nil {
				zap.L().Error("reminder sweep failed for match side",
					zap.Uint("match_id", m.ID), zap.Uint("team_id", teamID), zap.Error(err))
				continue
			}
			sent += n
		}
	}
	zap.L().Info("reminder sweep finished",
		zap.Int("matches", len(matches)), zap.Int("reminders_sent", sent))
	return sent, nil
}

func (s *ReminderService) sweepSide(m *FootballMatch, teamID uint, now time.Time) (int, error) {
	members, err := s.teamRepo.GetActiveMembers(teamID)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, member := range members {
		row, err := s.matchRepo.EnsurePendingAvailability(m.ID, member.UserID, teamID)
		if err != nil {
			return sent, err
		}
		if row == nil || row.Status != AvailabilityPending || row.RemindedAt != nil {
			continue
		}
		stamped, err := s.matchRepo.MarkReminded(row.ID, now)
		if err != nil {
			return sent, err
		}
		if !stamped {
			continue
		}
		s.notifier.Notify(member.UserID, notification.KindAvailabilityReminder, map[string]interface{}{
			"match_id":     m.ID,
			"team_id":      teamID,
			"scheduled_at": m.ScheduledAt,
			"location":     m.Location,
		})
		sent++
	}
	return sent, nil
}
