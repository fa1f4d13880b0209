package match

import (
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/golazo-app/golazo/internal/notification"
	"github.com/golazo-app/golazo/internal/team"
	"github.com/golazo-app/golazo/internal/user"
	"github.com/golazo-app/golazo/internal/variant"
)

// recordingNotifier captures emitted events for assertions.
type recordingNotifier struct {
	events []recordedEvent
}

type recordedEvent struct {
	UserID  uint
	Kind    notification.Kind
	Payload map[string]interface{}
}

func (n *recordingNotifier) Notify(userID uint, kind notification.Kind, payload map[string]interface{}) {
	n.events = append(n.events, recordedEvent{UserID: userID, Kind: kind, Payload: payload})
}

func (n *recordingNotifier) countKind(kind notification.Kind) int {
	count := 0
	for _, e := range n.events {
		if e.Kind == kind {
			count++
		}
	}
	return count
}

type fixture struct {
	db        *gorm.DB
	repo      MatchRepository
	teamRepo  team.TeamRepository
	clock     *time.Time
	homeTeam  *team.Team
	awayTeam  *team.Team
	thirdTeam *team.Team
}

func newFixture(t *testing.T, v variant.Variant) *fixture {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&user.User{}, &team.Team{}, &team.TeamMember{},
		&FootballMatch{}, &MatchRequest{}, &MatchAvailability{},
		&MatchLineup{}, &MatchEvent{},
	))

	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	f := &fixture{db: db, clock: &current}
	f.repo = NewMatchRepositoryWithClock(db, func() time.Time { return *f.clock })
	f.teamRepo = team.NewTeamRepository(db)

	f.homeTeam = f.createTeam(t, "Home FC", v, 1)
	f.awayTeam = f.createTeam(t, "Away FC", v, 100)
	f.thirdTeam = f.createTeam(t, "Third FC", v, 200)
	return f
}

func (f *fixture) createTeam(t *testing.T, name string, v variant.Variant, captainID uint) *team.Team {
	t.Helper()
	tm := &team.Team{Name: name, Variant: v, CreatedByID: captainID}
	require.NoError(t, f.teamRepo.CreateTeamWithCaptain(tm, captainID))
	return tm
}

func (f *fixture) addMembers(t *testing.T, teamID uint, userIDs ...uint) {
	t.Helper()
	for _, id := range userIDs {
		require.NoError(t, f.teamRepo.AddMember(&team.TeamMember{
			TeamID: teamID, UserID: id, Role: team.RolePlayer,
			Status: team.MemberActive, JoinedAt: *f.clock,
		}))
	}
}

func (f *fixture) createMatch(t *testing.T, scheduledAt time.Time) *FootballMatch {
	t.Helper()
	m := &FootballMatch{
		HomeTeamID:  f.homeTeam.ID,
		Variant:     f.homeTeam.Variant,
		ScheduledAt: scheduledAt,
		Location:    "City Park",
		MatchType:   TypeFriendly,
		CreatedByID: 1,
	}
	require.NoError(t, f.repo.CreateMatch(m))
	return m
}

func (f *fixture) confirmAgainst(t *testing.T, m *FootballMatch, teamID uint) *MatchRequest {
	t.Helper()
	request := &MatchRequest{MatchID: m.ID, TeamID: teamID}
	require.NoError(t, f.repo.CreateRequest(request))
	accepted, err := f.repo.AcceptRequest(request.ID, 1)
	require.NoError(t, err)
	return accepted
}

func (f *fixture) advance(d time.Duration) {
	*f.clock = f.clock.Add(d)
}

func TestRequestArbitration(t *testing.T) {
	f := newFixture(t, variant.Football7)
	m := f.createMatch(t, f.clock.Add(72*time.Hour))

	first := &MatchRequest{MatchID: m.ID, TeamID: f.awayTeam.ID, Message: "good to go"}
	require.NoError(t, f.repo.CreateRequest(first))
	second := &MatchRequest{MatchID: m.ID, TeamID: f.thirdTeam.ID}
	require.NoError(t, f.repo.CreateRequest(second))

	t.Run("duplicate pending request rejected", func(t *testing.T) {
		dup := &MatchRequest{MatchID: m.ID, TeamID: f.awayTeam.ID}
		assert.ErrorIs(t, f.repo.CreateRequest(dup), ErrDuplicateRequest)
	})

	t.Run("home team cannot request its own match", func(t *testing.T) {
		own := &MatchRequest{MatchID: m.ID, TeamID: f.homeTeam.ID}
		assert.ErrorIs(t, f.repo.CreateRequest(own), ErrNotMatchSide)
	})

	t.Run("accept confirms match and rejects siblings", func(t *testing.T) {
		accepted, err := f.repo.AcceptRequest(first.ID, 1)
		require.NoError(t, err)
		assert.Equal(t, RequestAccepted, accepted.Status)
		require.NotNil(t, accepted.ReviewedByID)
		assert.Equal(t, uint(1), *accepted.ReviewedByID)
		require.NotNil(t, accepted.ReviewedAt)

		loaded, err := f.repo.GetMatchByID(m.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusConfirmed, loaded.Status)
		require.NotNil(t, loaded.AwayTeamID)
		assert.Equal(t, f.awayTeam.ID, *loaded.AwayTeamID)
		require.NotNil(t, loaded.ConfirmedAt)

		sibling, err := f.repo.GetRequestByID(second.ID)
		require.NoError(t, err)
		assert.Equal(t, RequestRejected, sibling.Status)
		assert.Equal(t, accepted.ReviewedAt.Unix(), sibling.ReviewedAt.Unix())
	})

	t.Run("second accept cannot also win", func(t *testing.T) {
		_, err := f.repo.AcceptRequest(second.ID, 1)
		assert.ErrorIs(t, err, ErrRequestNotPending)

		// even a still-pending request loses once the match is claimed
		require.NoError(t, f.db.Model(&MatchRequest{}).
			Where("id = ?", second.ID).Update("status", RequestPending).Error)
		_, err = f.repo.AcceptRequest(second.ID, 1)
		assert.ErrorIs(t, err, ErrMatchNotAvailable)
	})

	t.Run("requests against non-available matches rejected", func(t *testing.T) {
		late := &MatchRequest{MatchID: m.ID, TeamID: f.thirdTeam.ID}
		assert.ErrorIs(t, f.repo.CreateRequest(late), ErrMatchNotAvailable)
	})
}

func TestVariantMismatchRequest(t *testing.T) {
	f := newFixture(t, variant.Football7)
	futsalTeam := f.createTeam(t, "Futsal FC", variant.Futsal, 300)
	m := f.createMatch(t, f.clock.Add(72*time.Hour))

	request := &MatchRequest{MatchID: m.ID, TeamID: futsalTeam.ID}
	assert.ErrorIs(t, f.repo.CreateRequest(request), ErrVariantMismatch)
}

func TestCancelMatch(t *testing.T) {
	f := newFixture(t, variant.Football5)

	t.Run("cancelling deletes pending requests", func(t *testing.T) {
		m := f.createMatch(t, f.clock.Add(48*time.Hour))
		require.NoError(t, f.repo.CreateRequest(&MatchRequest{MatchID: m.ID, TeamID: f.awayTeam.ID}))

		require.NoError(t, f.repo.CancelMatch(m.ID))

		loaded, err := f.repo.GetMatchByID(m.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusCancelled, loaded.Status)

		requests, err := f.repo.GetRequestsByMatchID(m.ID, "")
		require.NoError(t, err)
		assert.Empty(t, requests)
	})

	t.Run("confirmed matches cannot be cancelled", func(t *testing.T) {
		m := f.createMatch(t, f.clock.Add(48*time.Hour))
		f.confirmAgainst(t, m, f.awayTeam.ID)
		assert.ErrorIs(t, f.repo.CancelMatch(m.ID), ErrInvalidTransition)
	})
}

func TestScoreUpdateLifecycle(t *testing.T) {
	f := newFixture(t, variant.Football7)
	m := f.createMatch(t, f.clock.Add(72*time.Hour))
	f.confirmAgainst(t, m, f.awayTeam.ID)

	t.Run("rejected before scheduled time", func(t *testing.T) {
		_, err := f.repo.UpdateScore(m.ID, 1, 0)
		assert.ErrorIs(t, err, ErrMatchNotStarted)

		loaded, err := f.repo.GetMatchByID(m.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusConfirmed, loaded.Status)
		assert.Nil(t, loaded.HomeScore)
	})

	t.Run("first score update starts the match", func(t *testing.T) {
		f.advance(73 * time.Hour)

		updated, err := f.repo.UpdateScore(m.ID, 2, 1)
		require.NoError(t, err)
		assert.Equal(t, StatusInProgress, updated.Status)
		require.NotNil(t, updated.StartedAt)
		require.NotNil(t, updated.HomeScore)
		assert.Equal(t, 2, *updated.HomeScore)
		assert.Equal(t, 1, *updated.AwayScore)
	})

	t.Run("further updates keep the match in progress", func(t *testing.T) {
		before, err := f.repo.GetMatchByID(m.ID)
		require.NoError(t, err)
		startedAt := *before.StartedAt

		updated, err := f.repo.UpdateScore(m.ID, 3, 1)
		require.NoError(t, err)
		assert.Equal(t, StatusInProgress, updated.Status)

		after, err := f.repo.GetMatchByID(m.ID)
		require.NoError(t, err)
		assert.Equal(t, startedAt.Unix(), after.StartedAt.Unix())
		assert.Equal(t, 3, *after.HomeScore)
	})

	t.Run("completion derives the outcome", func(t *testing.T) {
		completed, err := f.repo.CompleteMatch(m.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusCompleted, completed.Status)
		require.NotNil(t, completed.CompletedAt)
		assert.Equal(t, OutcomeHomeWin, completed.Outcome())
		require.NotNil(t, completed.WinnerTeamID())
		assert.Equal(t, f.homeTeam.ID, *completed.WinnerTeamID())

		// completed matches accept no further scores
		_, err = f.repo.UpdateScore(m.ID, 4, 1)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})
}

func TestStartMatchExplicitly(t *testing.T) {
	f := newFixture(t, variant.Futsal)
	m := f.createMatch(t, f.clock.Add(24*time.Hour))
	f.confirmAgainst(t, m, f.awayTeam.ID)

	_, err := f.repo.StartMatch(m.ID)
	assert.ErrorIs(t, err, ErrMatchNotStarted)

	f.advance(25 * time.Hour)
	started, err := f.repo.StartMatch(m.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, started.Status)
	require.NotNil(t, started.StartedAt)

	// starting twice is a no-op transition error
	_, err = f.repo.StartMatch(m.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestOutcomeDerivation(t *testing.T) {
	two, three := 2, 3
	cases := []struct {
		name       string
		status     MatchStatus
		home, away *int
		expected   Outcome
	}{
		{"draw on equal scores", StatusCompleted, &two, &two, OutcomeDraw},
		{"away win", StatusCompleted, &two, &three, OutcomeAwayWin},
		{"undecided while in progress", StatusInProgress, &three, &two, OutcomeUndecided},
		{"undecided without scores", StatusCompleted, nil, nil, OutcomeUndecided},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			awayID := uint(2)
			m := &FootballMatch{
				HomeTeamID: 1, AwayTeamID: &awayID,
				Status: tc.status, HomeScore: tc.home, AwayScore: tc.away,
			}
			assert.Equal(t, tc.expected, m.Outcome())
		})
	}
}

func TestAvailabilityUpsertIdempotence(t *testing.T) {
	f := newFixture(t, variant.Football5)
	m := f.createMatch(t, f.clock.Add(48*time.Hour))

	first, err := f.repo.UpsertAvailability(m.ID, 7, f.homeTeam.ID, AvailabilityAvailable)
	require.NoError(t, err)
	require.NotNil(t, first.ConfirmedAt)

	f.advance(time.Hour)
	_, err = f.repo.UpsertAvailability(m.ID, 7, f.homeTeam.ID, AvailabilityMaybe)
	require.NoError(t, err)

	rows, err := f.repo.GetAvailability(m.ID, f.homeTeam.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, AvailabilityMaybe, rows[0].Status)
	require.NotNil(t, rows[0].ConfirmedAt)
	assert.Nil(t, rows[0].RemindedAt, "availability updates must not touch reminded_at")
}

func TestAggregatorThresholds(t *testing.T) {
	f := newFixture(t, variant.Football11)
	m := f.createMatch(t, f.clock.Add(48*time.Hour))
	aggregator := NewAggregator(f.repo, f.teamRepo)

	// captain (user 1) plus 14 more members
	var extra []uint
	for i := uint(2); i <= 15; i++ {
		extra = append(extra, i)
	}
	f.addMembers(t, f.homeTeam.ID, extra...)

	markAvailable := func(userIDs ...uint) {
		for _, id := range userIDs {
			_, err := f.repo.UpsertAvailability(m.ID, id, f.homeTeam.ID, AvailabilityAvailable)
			require.NoError(t, err)
		}
	}

	markAvailable(1, 2, 3, 4, 5)
	summary, err := aggregator.Summarize(m, f.homeTeam.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), summary.Available)
	assert.Equal(t, 11, summary.MinimumPlayers)
	assert.Equal(t, int64(10), summary.Pending, "members who never answered count as pending")
	assert.False(t, summary.HasEnough)
	assert.True(t, summary.NeedsAlert)

	alert, err := aggregator.NeedsPlayerAlert(m, f.homeTeam.ID)
	require.NoError(t, err)
	assert.True(t, alert)

	markAvailable(6, 7, 8, 9, 10, 11)
	summary, err = aggregator.Summarize(m, f.homeTeam.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(11), summary.Available)
	assert.True(t, summary.HasEnough)
	assert.False(t, summary.NeedsAlert)

	t.Run("no alert once the match is terminal", func(t *testing.T) {
		m.Status = StatusCancelled
		alert, err := aggregator.NeedsPlayerAlert(m, f.homeTeam.ID)
		require.NoError(t, err)
		assert.False(t, alert)
	})

	t.Run("outsider team is not a side", func(t *testing.T) {
		m.Status = StatusAvailable
		_, err := aggregator.Summarize(m, f.thirdTeam.ID)
		assert.ErrorIs(t, err, ErrNotMatchSide)
	})
}

func TestLineupReplaceOnWrite(t *testing.T) {
	f := newFixture(t, variant.Football5)
	m := f.createMatch(t, f.clock.Add(48*time.Hour))

	lineupA := []MatchLineup{
		{UserID: 1, Position: "GK", IsStarter: true},
		{UserID: 2, Position: "DEF", IsStarter: true},
		{UserID: 3, IsStarter: false},
	}
	require.NoError(t, f.repo.ReplaceLineup(m.ID, f.homeTeam.ID, lineupA))

	loaded, err := f.repo.GetLineup(m.ID, f.homeTeam.ID)
	require.NoError(t, err)
	require.Len(t, loaded, 3)

	lineupB := []MatchLineup{
		{UserID: 10, Position: "GK", IsStarter: true},
		{UserID: 11, IsStarter: true},
	}
	require.NoError(t, f.repo.ReplaceLineup(m.ID, f.homeTeam.ID, lineupB))

	loaded, err = f.repo.GetLineup(m.ID, f.homeTeam.ID)
	require.NoError(t, err)
	require.Len(t, loaded, 2, "no residue from the previous lineup")
	for _, entry := range loaded {
		assert.Contains(t, []uint{10, 11}, entry.UserID)
	}
}

func TestMatchEvents(t *testing.T) {
	f := newFixture(t, variant.Football7)
	m := f.createMatch(t, f.clock.Add(time.Hour))
	f.confirmAgainst(t, m, f.awayTeam.ID)
	f.advance(2 * time.Hour)
	_, err := f.repo.StartMatch(m.ID)
	require.NoError(t, err)

	userID := uint(5)
	events := []MatchEvent{
		{MatchID: m.ID, TeamID: f.homeTeam.ID, UserID: &userID, Type: EventGoal, Minute: 23},
		{MatchID: m.ID, TeamID: f.awayTeam.ID, Type: EventYellowCard, Minute: 11},
		{MatchID: m.ID, TeamID: f.homeTeam.ID, Type: EventSubstitutionIn, Minute: 60},
	}
	for i := range events {
		require.NoError(t, f.repo.CreateEvent(&events[i]))
	}

	loaded, err := f.repo.GetEventsByMatchID(m.ID)
	require.NoError(t, err)
	require.Len(t, loaded, 3)
	assert.Equal(t, 11, loaded[0].Minute, "events come back in minute order")
	assert.Equal(t, 23, loaded[1].Minute)

	require.NoError(t, f.repo.DeleteEvent(events[0].ID))
	loaded, err = f.repo.GetEventsByMatchID(m.ID)
	require.NoError(t, err)
	assert.Len(t, loaded, 2)
}

func TestReminderSweep(t *testing.T) {
	f := newFixture(t, variant.Football5)
	notifier := &recordingNotifier{}
	sweeper := NewReminderServiceWithClock(f.repo, f.teamRepo, notifier, 48,
		func() time.Time { return *f.clock })

	// home side: captain + 2 players; away side: captain only
	f.addMembers(t, f.homeTeam.ID, 2, 3)
	m := f.createMatch(t, f.clock.Add(47*time.Hour+30*time.Minute))
	f.confirmAgainst(t, m, f.awayTeam.ID)

	// user 2 already answered; they must not be nudged
	_, err := f.repo.UpsertAvailability(m.ID, 2, f.homeTeam.ID, AvailabilityAvailable)
	require.NoError(t, err)

	sent, err := sweeper.Sweep()
	require.NoError(t, err)
	assert.Equal(t, 3, sent, "captain and player 3 at home, captain away")
	assert.Equal(t, 3, notifier.countKind(notification.KindAvailabilityReminder))

	row, err := f.repo.GetAvailabilityRow(m.ID, 3, f.homeTeam.ID)
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, AvailabilityPending, row.Status)
	require.NotNil(t, row.RemindedAt)

	answered, err := f.repo.GetAvailabilityRow(m.ID, 2, f.homeTeam.ID)
	require.NoError(t, err)
	assert.Nil(t, answered.RemindedAt)

	t.Run("second sweep is idempotent", func(t *testing.T) {
		sent, err := sweeper.Sweep()
		require.NoError(t, err)
		assert.Zero(t, sent)
	})

	t.Run("matches outside the window are ignored", func(t *testing.T) {
		far := f.createMatch(t, f.clock.Add(90*time.Hour))
		require.NotNil(t, far)
		sent, err := sweeper.Sweep()
		require.NoError(t, err)
		assert.Zero(t, sent)
	})
}

func TestCreateMatchResetsDerivedFields(t *testing.T) {
	f := newFixture(t, variant.Football7)
	awayID := f.awayTeam.ID
	m := &FootballMatch{
		HomeTeamID:  f.homeTeam.ID,
		AwayTeamID:  &awayID, // must be ignored at creation
		Variant:     f.homeTeam.Variant,
		ScheduledAt: f.clock.Add(24 * time.Hour),
		Status:      StatusConfirmed, // must be ignored too
		CreatedByID: 1,
	}
	require.NoError(t, f.repo.CreateMatch(m))
	assert.Equal(t, StatusAvailable, m.Status)
	assert.Nil(t, m.AwayTeamID)
}

func TestGetMatchesByTeam(t *testing.T) {
	f := newFixture(t, variant.Football7)
	for i := 0; i < 3; i++ {
		f.createMatch(t, f.clock.Add(time.Duration(24*(i+1))*time.Hour))
	}
	m := f.createMatch(t, f.clock.Add(96*time.Hour))
	f.confirmAgainst(t, m, f.awayTeam.ID)

	home, total, err := f.repo.GetMatchesByTeamID(f.homeTeam.ID, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	assert.Len(t, home, 4)

	away, total, err := f.repo.GetMatchesByTeamID(f.awayTeam.ID, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, away, 1)
	assert.Equal(t, m.ID, away[0].ID)
}

func TestGetAllMatchesFilters(t *testing.T) {
	f := newFixture(t, variant.Football7)
	for i := 0; i < 5; i++ {
		m := f.createMatch(t, f.clock.Add(time.Duration(24*(i+1))*time.Hour))
		if i == 0 {
			f.confirmAgainst(t, m, f.awayTeam.ID)
		}
	}

	available, total, err := f.repo.GetAllMatches(1, 10, map[string]interface{}{
		"status": StatusAvailable,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	for _, m := range available {
		assert.Equal(t, StatusAvailable, m.Status)
	}

	page1, total, err := f.repo.GetAllMatches(1, 2, map[string]interface{}{})
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	assert.Len(t, page1, 2)
}

func TestConcurrentAcceptOnlyOneWins(t *testing.T) {
	f := newFixture(t, variant.Football7)
	m := f.createMatch(t, f.clock.Add(72*time.Hour))

	requests := make([]*MatchRequest, 0, 4)
	teams := []uint{f.awayTeam.ID, f.thirdTeam.ID}
	for i, teamID := range teams {
		request := &MatchRequest{MatchID: m.ID, TeamID: teamID, Message: fmt.Sprintf("bid %d", i)}
		require.NoError(t, f.repo.CreateRequest(request))
		requests = append(requests, request)
	}

	winners := 0
	for _, request := range requests {
		if _, err := f.repo.AcceptRequest(request.ID, 1); err == nil {
			winners++
		}
	}
	assert.Equal(t, 1, winners, "exactly one accept may succeed")

	var acceptedCount int64
	require.NoError(t, f.db.Model(&MatchRequest{}).
		Where("match_id = ? AND status = ?", m.ID, RequestAccepted).
		Count(&acceptedCount).Error)
	assert.Equal(t, int64(1), acceptedCount)
}
