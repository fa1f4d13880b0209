package match

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/golazo-app/golazo/internal/team"
	"github.com/golazo-app/golazo/internal/user"
	"github.com/golazo-app/golazo/internal/variant"
)

// MatchStatus is a match's lifecycle state. Transitions are one-way:
// available → confirmed → in_progress → completed, with cancelled reachable
// from available only.
type MatchStatus string

const (
	StatusAvailable  MatchStatus = "available"
	StatusConfirmed  MatchStatus = "confirmed"
	StatusInProgress MatchStatus = "in_progress"
	StatusCompleted  MatchStatus = "completed"
	StatusCancelled  MatchStatus = "cancelled"
)

// MatchType distinguishes friendlies from competitive fixtures.
type MatchType string

const (
	TypeFriendly    MatchType = "friendly"
	TypeCompetitive MatchType = "competitive"
)

// Valid reports whether the match type is one of the known values.
func (t MatchType) Valid() bool {
	return t == TypeFriendly || t == TypeCompetitive
}

// RequestStatus is a match request's review state.
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestAccepted RequestStatus = "accepted"
	RequestRejected RequestStatus = "rejected"
)

// AvailabilityStatus is a player's self-reported intent for a match.
type AvailabilityStatus string

const (
	AvailabilityAvailable   AvailabilityStatus = "available"
	AvailabilityMaybe       AvailabilityStatus = "maybe"
	AvailabilityUnavailable AvailabilityStatus = "unavailable"
	AvailabilityPending     AvailabilityStatus = "pending"
)

// Valid reports whether the availability status is one of the known values.
func (s AvailabilityStatus) Valid() bool {
	switch s {
	case AvailabilityAvailable, AvailabilityMaybe, AvailabilityUnavailable, AvailabilityPending:
		return true
	}
	return false
}

// EventType is an in-match occurrence type.
type EventType string

const (
	EventGoal            EventType = "goal"
	EventAssist          EventType = "assist"
	EventYellowCard      EventType = "yellow_card"
	EventRedCard         EventType = "red_card"
	EventSubstitutionIn  EventType = "substitution_in"
	EventSubstitutionOut EventType = "substitution_out"
)

// Valid reports whether the event type is one of the known values.
func (e EventType) Valid() bool {
	switch e {
	case EventGoal, EventAssist, EventYellowCard, EventRedCard,
		EventSubstitutionIn, EventSubstitutionOut:
		return true
	}
	return false
}

// Outcome is the derived result of a completed match.
type Outcome string

const (
	OutcomeHomeWin   Outcome = "home_win"
	OutcomeAwayWin   Outcome = "away_win"
	OutcomeDraw      Outcome = "draw"
	OutcomeUndecided Outcome = "undecided"
)

var (
	ErrMatchNotFound     = errors.New("match not found")
	ErrMatchNotAvailable = errors.New("match is not available")
	ErrMatchStarted      = errors.New("match has already started")
	ErrMatchNotStarted   = errors.New("match has not started yet")
	ErrInvalidTransition = errors.New("invalid match status transition")
	ErrVariantMismatch   = errors.New("requesting team variant does not match")
	ErrDuplicateRequest  = errors.New("team already has a pending request for this match")
	ErrRequestNotFound   = errors.New("match request not found")
	ErrRequestNotPending = errors.New("match request is not pending")
	ErrNotMatchSide      = errors.New("team is not one of the match sides")
	ErrEventNotFound     = errors.New("match event not found")
)

// FootballMatch is an open or scheduled fixture. The away side stays null
// until a match request is accepted; scores stay null until the match is
// in progress.
type FootballMatch struct {
	gorm.Model
	HomeTeamID  uint            `json:"home_team_id" gorm:"index;not null"`
	HomeTeam    team.Team       `json:"home_team,omitempty" gorm:"foreignKey:HomeTeamID"`
	AwayTeamID  *uint           `json:"away_team_id" gorm:"index"`
	AwayTeam    *team.Team      `json:"away_team,omitempty" gorm:"foreignKey:AwayTeamID"`
	Variant     variant.Variant `json:"variant" gorm:"index;not null"`
	ScheduledAt time.Time       `json:"scheduled_at" gorm:"index;not null"`
	Location    string          `json:"location"`
	Notes       string          `json:"notes"`
	MatchType   MatchType       `json:"match_type" gorm:"not null;default:'friendly'"`
	Status      MatchStatus     `json:"status" gorm:"index;not null;default:'available'"`
	HomeScore   *int            `json:"home_score"`
	AwayScore   *int            `json:"away_score"`
	ConfirmedAt *time.Time      `json:"confirmed_at"`
	StartedAt   *time.Time      `json:"started_at"`
	CompletedAt *time.Time      `json:"completed_at"`
	CreatedByID uint            `json:"created_by_id" gorm:"not null"`
	CreatedBy   user.User       `json:"-" gorm:"foreignKey:CreatedByID"`
}

// HasSide reports whether teamID is the home or the confirmed away side.
func (m *FootballMatch) HasSide(teamID uint) bool {
	if m.HomeTeamID == teamID {
		return true
	}
	return m.AwayTeamID != nil && *m.AwayTeamID == teamID
}

// Outcome derives the result from the scores. Only a completed match with
// both scores set has a decided outcome.
func (m *FootballMatch) Outcome() Outcome {
	if m.Status != StatusCompleted || m.HomeScore == nil || m.AwayScore == nil {
		return OutcomeUndecided
	}
	switch {
	case *m.HomeScore > *m.AwayScore:
		return OutcomeHomeWin
	case *m.AwayScore > *m.HomeScore:
		return OutcomeAwayWin
	default:
		return OutcomeDraw
	}
}

// WinnerTeamID returns the winning side's team ID, or nil on a draw or an
// undecided match.
func (m *FootballMatch) WinnerTeamID() *uint {
	switch m.Outcome() {
	case OutcomeHomeWin:
		id := m.HomeTeamID
		return &id
	case OutcomeAwayWin:
		return m.AwayTeamID
	default:
		return nil
	}
}

// MatchRequest is a team's bid to fill the away slot of an available match.
// At most one request per match is ever accepted.
type MatchRequest struct {
	gorm.Model
	MatchID      uint          `json:"match_id" gorm:"index;not null"`
	Match        FootballMatch `json:"-" gorm:"foreignKey:MatchID"`
	TeamID       uint          `json:"team_id" gorm:"index;not null"`
	Team         team.Team     `json:"team,omitempty" gorm:"foreignKey:TeamID"`
	Message      string        `json:"message"`
	Status       RequestStatus `json:"status" gorm:"index;not null;default:'pending'"`
	ReviewedByID *uint         `json:"reviewed_by_id"`
	ReviewedAt   *time.Time    `json:"reviewed_at"`
}

// MatchAvailability records one player's intent for one match on one team.
// One row per (match, user, team); updates overwrite in place.
type MatchAvailability struct {
	gorm.Model
	MatchID     uint               `json:"match_id" gorm:"uniqueIndex:idx_match_user_team;not null"`
	UserID      uint               `json:"user_id" gorm:"uniqueIndex:idx_match_user_team;not null"`
	TeamID      uint               `json:"team_id" gorm:"uniqueIndex:idx_match_user_team;not null"`
	Status      AvailabilityStatus `json:"status" gorm:"not null;default:'pending'"`
	ConfirmedAt *time.Time         `json:"confirmed_at"`
	RemindedAt  *time.Time         `json:"reminded_at"`
}

// MatchLineup is one roster slot in a team's lineup for a match. A team's
// whole lineup is replaced on every write.
type MatchLineup struct {
	gorm.Model
	MatchID       uint   `json:"match_id" gorm:"index:idx_lineup_match_team;not null"`
	TeamID        uint   `json:"team_id" gorm:"index:idx_lineup_match_team;not null"`
	UserID        uint   `json:"user_id" gorm:"not null"`
	Position      string `json:"position"`
	IsStarter     bool   `json:"is_starter" gorm:"default:false"`
	MinutesPlayed int    `json:"minutes_played" gorm:"default:0"`
}

// MatchEvent is a timestamped in-match occurrence, ordered by match minute.
// Scores and goal events are tracked independently and are not reconciled.
type MatchEvent struct {
	gorm.Model
	MatchID     uint      `json:"match_id" gorm:"index;not null"`
	TeamID      uint      `json:"team_id" gorm:"index;not null"`
	UserID      *uint     `json:"user_id"`
	Type        EventType `json:"type" gorm:"not null"`
	Minute      int       `json:"minute" gorm:"not null"`
	Description string    `json:"description"`
}
