package match

import (
	"github.com/golazo-app/golazo/internal/team"
	"github.com/golazo-app/golazo/internal/variant"
)

// AvailabilitySummary is a per-team-per-match breakdown of player intent.
// Active members without an availability row count as pending.
type AvailabilitySummary struct {
	MatchID        uint  `json:"match_id"`
	TeamID         uint  `json:"team_id"`
	Available      int64 `json:"available"`
	Maybe          int64 `json:"maybe"`
	Unavailable    int64 `json:"unavailable"`
	Pending        int64 `json:"pending"`
	ActiveMembers  int64 `json:"active_members"`
	MinimumPlayers int   `json:"minimum_players"`
	HasEnough      bool  `json:"has_enough_players"`
	NeedsAlert     bool  `json:"needs_player_alert"`
}

// Aggregator computes availability summaries for a match side against the
// variant-derived minimum-player threshold.
type Aggregator struct {
	matchRepo MatchRepository
	teamRepo  team.TeamRepository
}

// NewAggregator creates an availability aggregator.
func NewAggregator(matchRepo MatchRepository, teamRepo team.TeamRepository) *Aggregator {
	return &Aggregator{matchRepo: matchRepo, teamRepo: teamRepo}
}

// Summarize computes the availability breakdown for one side of a match.
// The team must be the home or confirmed away side.
func (a *Aggregator) Summarize(m *FootballMatch, teamID uint) (*AvailabilitySummary, error) {
	if !m.HasSide(teamID) {
		return nil, ErrNotMatchSide
	}

	counts, err := a.matchRepo.CountAvailabilityByStatus(m.ID, teamID)
	if err != nil {
		return nil, err
	}
	activeMembers, err := a.teamRepo.CountActiveMembers(teamID)
	if err != nil {
		return nil, err
	}

	summary := &AvailabilitySummary{
		MatchID:        m.ID,
		TeamID:         teamID,
		Available:      counts[AvailabilityAvailable],
		Maybe:          counts[AvailabilityMaybe],
		Unavailable:    counts[AvailabilityUnavailable],
		ActiveMembers:  activeMembers,
		MinimumPlayers: variant.MinPlayers(m.Variant),
	}
	// members who never answered are pending alongside explicit pending rows
	summary.Pending = activeMembers - summary.Available - summary.Maybe - summary.Unavailable
	if summary.Pending < counts[AvailabilityPending] {
		summary.Pending = counts[AvailabilityPending]
	}
	if summary.Pending < 0 {
		summary.Pending = 0
	}

	summary.HasEnough = summary.Available >= int64(summary.MinimumPlayers)
	summary.NeedsAlert = !summary.HasEnough &&
		m.Status != StatusCancelled && m.Status != StatusCompleted
	return summary, nil
}

// AvailableCount returns the number of players who marked themselves
// available for a match on one team.
func (a *Aggregator) AvailableCount(m *FootballMatch, teamID uint) (int64, error) {
	counts, err := a.matchRepo.CountAvailabilityByStatus(m.ID, teamID)
	if err != nil {
		return 0, err
	}
	return counts[AvailabilityAvailable], nil
}

// HasEnoughConfirmedPlayers reports whether a side has reached the variant's
// minimum-player threshold.
func (a *Aggregator) HasEnoughConfirmedPlayers(m *FootballMatch, teamID uint) (bool, error) {
	count, err := a.AvailableCount(m, teamID)
	if err != nil {
		return false, err
	}
	return count >= int64(variant.MinPlayers(m.Variant)), nil
}

// NeedsPlayerAlert reports whether leaders should be warned that a side is
// short of its minimum. Cancelled and completed matches never alert.
func (a *Aggregator) NeedsPlayerAlert(m *FootballMatch, teamID uint) (bool, error) {
	if m.Status == StatusCancelled || m.Status == StatusCompleted {
		return false, nil
	}
	enough, err := a.HasEnoughConfirmedPlayers(m, teamID)
	if err != nil {
		return false, err
	}
	return !enough, nil
}
