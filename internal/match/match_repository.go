package match

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MatchRepository defines the interface for match data operations. Every
// multi-row state change (request acceptance, cancellation, lineup
// replacement) runs inside a single transaction and re-reads authoritative
// state before mutating it; status transitions use conditional updates whose
// affected-row count is checked, so two concurrent accepts can never both
// succeed.
type MatchRepository interface {
	// Match lifecycle
	CreateMatch(match *FootballMatch) error
	GetMatchByID(id uint) (*FootballMatch, error)
	GetAllMatches(page, limit int, filters map[string]interface{}) ([]FootballMatch, int64, error)
	GetMatchesByTeamID(teamID uint, page, limit int) ([]FootballMatch, int64, error)
	GetMatchesByUserID(userID uint, page, limit int) ([]FootballMatch, int64, error)
	UpdateMatchDetails(match *FootballMatch) error
	CancelMatch(matchID uint) error
	StartMatch(matchID uint) (*FootballMatch, error)
	UpdateScore(matchID uint, homeScore, awayScore int) (*FootballMatch, error)
	CompleteMatch(matchID uint) (*FootballMatch, error)

	// Request arbitration
	CreateRequest(request *MatchRequest) error
	GetRequestByID(id uint) (*MatchRequest, error)
	GetRequestsByMatchID(matchID uint, status RequestStatus) ([]MatchRequest, error)
	AcceptRequest(requestID, reviewerID uint) (*MatchRequest, error)
	RejectRequest(requestID, reviewerID uint) (*MatchRequest, error)

	// Availability
	UpsertAvailability(matchID, userID, teamID uint, status AvailabilityStatus) (*MatchAvailability, error)
	GetAvailability(matchID, teamID uint) ([]MatchAvailability, error)
	GetAvailabilityRow(matchID, userID, teamID uint) (*MatchAvailability, error)
	CountAvailabilityByStatus(matchID, teamID uint) (map[AvailabilityStatus]int64, error)

	// Reminder sweep support
	FindMatchesInWindow(from, to time.Time) ([]FootballMatch, error)
	EnsurePendingAvailability(matchID, userID, teamID uint) (*MatchAvailability, error)
	MarkReminded(availabilityID uint, at time.Time) (bool, error)

	// Lineups
	ReplaceLineup(matchID, teamID uint, entries []MatchLineup) error
	GetLineup(matchID, teamID uint) ([]MatchLineup, error)

	// Events
	CreateEvent(event *MatchEvent) error
	GetEventByID(id uint) (*MatchEvent, error)
	GetEventsByMatchID(matchID uint) ([]MatchEvent, error)
	DeleteEvent(id uint) error

	WithTransaction(txFunc func(MatchRepository) error) error
}

type matchRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewMatchRepository creates a MatchRepository backed by gorm.
func NewMatchRepository(db *gorm.DB) MatchRepository {
	return &matchRepository{db: db, now: time.Now}
}

// NewMatchRepositoryWithClock creates a MatchRepository with an injected time
// source, used by tests to simulate scheduled-time preconditions.
func NewMatchRepositoryWithClock(db *gorm.DB, now func() time.Time) MatchRepository {
	return &matchRepository{db: db, now: now}
}

func (r *matchRepository) WithTransaction(txFunc func(MatchRepository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return txFunc(&matchRepository{db: tx, now: r.now})
	})
}

// --- Match lifecycle ---

func (r *matchRepository) CreateMatch(match *FootballMatch) error {
	match.Status = StatusAvailable
	match.AwayTeamID = nil
	return r.db.Create(match).Error
}

func (r *matchRepository) GetMatchByID(id uint) (*FootballMatch, error) {
	var match FootballMatch
	err := r.db.Preload("HomeTeam").Preload("AwayTeam").First(&match, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &match, nil
}

func (r *matchRepository) GetAllMatches(page, limit int, filters map[string]interface{}) ([]FootballMatch, int64, error) {
	var matches []FootballMatch
	var total int64

	query := r.db.Model(&FootballMatch{})
	if status, ok := filters["status"]; ok {
		query = query.Where("status = ?", status)
	}
	if v, ok := filters["variant"]; ok {
		query = query.Where("variant = ?", v)
	}
	if matchType, ok := filters["match_type"]; ok {
		query = query.Where("match_type = ?", matchType)
	}
	if from, ok := filters["from"]; ok {
		query = query.Where("scheduled_at >= ?", from)
	}

	query.Count(&total)
	offset := (page - 1) * limit
	err := query.Preload("HomeTeam").Preload("AwayTeam").
		Offset(offset).Limit(limit).Order("scheduled_at asc").Find(&matches).Error
	if err != nil {
		return nil, 0, err
	}
	return matches, total, nil
}

func (r *matchRepository) GetMatchesByTeamID(teamID uint, page, limit int) ([]FootballMatch, int64, error) {
	var matches []FootballMatch
	var total int64

	query := r.db.Model(&FootballMatch{}).
		Where("home_team_id = ? OR away_team_id = ?", teamID, teamID)
	query.Count(&total)
	offset := (page - 1) * limit
	err := query.Preload("HomeTeam").Preload("AwayTeam").
		Offset(offset).Limit(limit).Order("scheduled_at desc").Find(&matches).Error
	if err != nil {
		return nil, 0, err
	}
	return matches, total, nil
}

// GetMatchesByUserID lists matches where any of the user's active teams is a
// side.
func (r *matchRepository) GetMatchesByUserID(userID uint, page, limit int) ([]FootballMatch, int64, error) {
	var matches []FootballMatch
	var total int64

	memberTeams := r.db.Table("team_members").Select("team_id").
		Where("user_id = ? AND status = ? AND deleted_at IS NULL", userID, "active")

	query := r.db.Model(&FootballMatch{}).
		Where("home_team_id IN (?) OR away_team_id IN (?)", memberTeams, memberTeams)
	query.Count(&total)
	offset := (page - 1) * limit
	err := query.Preload("HomeTeam").Preload("AwayTeam").
		Offset(offset).Limit(limit).Order("scheduled_at desc").Find(&matches).Error
	if err != nil {
		return nil, 0, err
	}
	return matches, total, nil
}

// UpdateMatchDetails persists location/time/notes changes. Callers gate on
// the match not having started; status is never touched here.
func (r *matchRepository) UpdateMatchDetails(match *FootballMatch) error {
	return r.db.Model(&FootballMatch{}).Where("id = ?", match.ID).
		Updates(map[string]interface{}{
			"scheduled_at": match.ScheduledAt,
			"location":     match.Location,
			"notes":        match.Notes,
			"match_type":   match.MatchType,
		}).Error
}

// CancelMatch withdraws an available match and deletes its pending requests.
// The conditional update fails once any request has been accepted, so a
// concurrent accept and cancel cannot both win.
func (r *matchRepository) CancelMatch(matchID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&FootballMatch{}).
			Where("id = ? AND status = ? AND started_at IS NULL", matchID, StatusAvailable).
			Update("status", StatusCancelled)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrInvalidTransition
		}
		return tx.Unscoped().
			Where("match_id = ? AND status = ?", matchID, RequestPending).
			Delete(&MatchRequest{}).Error
	})
}

// StartMatch moves a confirmed match to in_progress once its scheduled time
// has passed.
func (r *matchRepository) StartMatch(matchID uint) (*FootballMatch, error) {
	now := r.now()
	var match FootballMatch
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&match, matchID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrMatchNotFound
			}
			return err
		}
		if match.Status != StatusConfirmed {
			return ErrInvalidTransition
		}
		if match.ScheduledAt.After(now) {
			return ErrMatchNotStarted
		}
		result := tx.Model(&FootballMatch{}).
			Where("id = ? AND status = ?", matchID, StatusConfirmed).
			Updates(map[string]interface{}{"status": StatusInProgress, "started_at": now})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrInvalidTransition
		}
		match.Status = StatusInProgress
		match.StartedAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &match, nil
}

// UpdateScore writes both scores. A confirmed match transitions to
// in_progress on its first score update; scores are only legal once the
// scheduled time has passed.
func (r *matchRepository) UpdateScore(matchID uint, homeScore, awayScore int) (*FootballMatch, error) {
	now := r.now()
	var match FootballMatch
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&match, matchID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrMatchNotFound
			}
			return err
		}
		if match.Status != StatusConfirmed && match.Status != StatusInProgress {
			return ErrInvalidTransition
		}
		if match.ScheduledAt.After(now) {
			return ErrMatchNotStarted
		}

		updates := map[string]interface{}{
			"home_score": homeScore,
			"away_score": awayScore,
		}
		if match.Status == StatusConfirmed {
			updates["status"] = StatusInProgress
			updates["started_at"] = now
			match.Status = StatusInProgress
			match.StartedAt = &now
		}
		if err := tx.Model(&FootballMatch{}).Where("id = ?", matchID).Updates(updates).Error; err != nil {
			return err
		}
		match.HomeScore = &homeScore
		match.AwayScore = &awayScore
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &match, nil
}

// CompleteMatch moves an in-progress match to completed.
func (r *matchRepository) CompleteMatch(matchID uint) (*FootballMatch, error) {
	now := r.now()
	result := r.db.Model(&FootballMatch{}).
		Where("id = ? AND status = ?", matchID, StatusInProgress).
		Updates(map[string]interface{}{"status": StatusCompleted, "completed_at": now})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrInvalidTransition
	}
	return r.GetMatchByID(matchID)
}

// --- Request arbitration ---

// CreateRequest validates the bid inside a transaction: the match must still
// be available, the variants must agree, and the team must not already have a
// pending request for this match.
func (r *matchRepository) CreateRequest(request *MatchRequest) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var match FootballMatch
		if err := tx.First(&match, request.MatchID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrMatchNotFound
			}
			return err
		}
		if match.Status != StatusAvailable {
			return ErrMatchNotAvailable
		}
		if match.HomeTeamID == request.TeamID {
			return ErrNotMatchSide
		}

		var requestingTeam struct{ Variant string }
		if err := tx.Table("teams").Select("variant").
			Where("id = ?", request.TeamID).Scan(&requestingTeam).Error; err != nil {
			return err
		}
		if requestingTeam.Variant != string(match.Variant) {
			return ErrVariantMismatch
		}

		var count int64
		if err := tx.Model(&MatchRequest{}).
			Where("match_id = ? AND team_id = ? AND status = ?",
				request.MatchID, request.TeamID, RequestPending).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrDuplicateRequest
		}

		request.Status = RequestPending
		return tx.Create(request).Error
	})
}

func (r *matchRepository) GetRequestByID(id uint) (*MatchRequest, error) {
	var request MatchRequest
	if err := r.db.Preload("Team").First(&request, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &request, nil
}

func (r *matchRepository) GetRequestsByMatchID(matchID uint, status RequestStatus) ([]MatchRequest, error) {
	var requests []MatchRequest
	query := r.db.Preload("Team").Where("match_id = ?", matchID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	err := query.Order("created_at asc").Find(&requests).Error
	return requests, err
}

// AcceptRequest binds the requesting team to the away slot. The match row is
// claimed with a conditional update on status = available; if zero rows are
// affected another accept (or a cancel) already won and the whole
// transaction rolls back. On success every sibling pending request is
// rejected with the same reviewer and timestamp.
func (r *matchRepository) AcceptRequest(requestID, reviewerID uint) (*MatchRequest, error) {
	now := r.now()
	var request MatchRequest
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&request, requestID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRequestNotFound
			}
			return err
		}
		if request.Status != RequestPending {
			return ErrRequestNotPending
		}

		claim := tx.Model(&FootballMatch{}).
			Where("id = ? AND status = ?", request.MatchID, StatusAvailable).
			Updates(map[string]interface{}{
				"away_team_id": request.TeamID,
				"status":       StatusConfirmed,
				"confirmed_at": now,
			})
		if claim.Error != nil {
			return claim.Error
		}
		if claim.RowsAffected == 0 {
			return ErrMatchNotAvailable
		}

		if err := tx.Model(&MatchRequest{}).Where("id = ?", request.ID).
			Updates(map[string]interface{}{
				"status":         RequestAccepted,
				"reviewed_by_id": reviewerID,
				"reviewed_at":    now,
			}).Error; err != nil {
			return err
		}

		if err := tx.Model(&MatchRequest{}).
			Where("match_id = ? AND id != ? AND status = ?", request.MatchID, request.ID, RequestPending).
			Updates(map[string]interface{}{
				"status":         RequestRejected,
				"reviewed_by_id": reviewerID,
				"reviewed_at":    now,
			}).Error; err != nil {
			return err
		}

		request.Status = RequestAccepted
		request.ReviewedByID = &reviewerID
		request.ReviewedAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &request, nil
}

// RejectRequest marks one pending request rejected; the match is untouched.
func (r *matchRepository) RejectRequest(requestID, reviewerID uint) (*MatchRequest, error) {
	now := r.now()
	var request MatchRequest
	if err := r.db.First(&request, requestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}
	if request.Status != RequestPending {
		return nil, ErrRequestNotPending
	}

	result := r.db.Model(&MatchRequest{}).
		Where("id = ? AND status = ?", request.ID, RequestPending).
		Updates(map[string]interface{}{
			"status":         RequestRejected,
			"reviewed_by_id": reviewerID,
			"reviewed_at":    now,
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrRequestNotPending
	}
	request.Status = RequestRejected
	request.ReviewedByID = &reviewerID
	request.ReviewedAt = &now
	return &request, nil
}

// --- Availability ---

// UpsertAvailability writes a player's status for a match, keyed on the
// (match, user, team) triple. Every write stamps confirmed_at; reminded_at
// is never touched here.
func (r *matchRepository) UpsertAvailability(matchID, userID, teamID uint, status AvailabilityStatus) (*MatchAvailability, error) {
	now := r.now()
	availability := MatchAvailability{
		MatchID:     matchID,
		UserID:      userID,
		TeamID:      teamID,
		Status:      status,
		ConfirmedAt: &now,
	}
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "match_id"}, {Name: "user_id"}, {Name: "team_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "confirmed_at", "updated_at"}),
	}).Create(&availability).Error
	if err != nil {
		return nil, err
	}
	return &availability, nil
}

func (r *matchRepository) GetAvailabilityRow(matchID, userID, teamID uint) (*MatchAvailability, error) {
	var row MatchAvailability
	err := r.db.Where("match_id = ? AND user_id = ? AND team_id = ?", matchID, userID, teamID).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *matchRepository) GetAvailability(matchID, teamID uint) ([]MatchAvailability, error) {
	var rows []MatchAvailability
	err := r.db.Where("match_id = ? AND team_id = ?", matchID, teamID).
		Order("user_id asc").Find(&rows).Error
	return rows, err
}

func (r *matchRepository) CountAvailabilityByStatus(matchID, teamID uint) (map[AvailabilityStatus]int64, error) {
	type statusCount struct {
		Status AvailabilityStatus
		Count  int64
	}
	var rows []statusCount
	err := r.db.Model(&MatchAvailability{}).
		Select("status, COUNT(*) as count").
		Where("match_id = ? AND team_id = ?", matchID, teamID).
		Group("status").Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[AvailabilityStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// --- Reminder sweep support ---

// FindMatchesInWindow returns available and confirmed matches scheduled
// inside [from, to).
func (r *matchRepository) FindMatchesInWindow(from, to time.Time) ([]FootballMatch, error) {
	var matches []FootballMatch
	err := r.db.Where("status IN ? AND scheduled_at >= ? AND scheduled_at < ?",
		[]MatchStatus{StatusAvailable, StatusConfirmed}, from, to).
		Order("scheduled_at asc").Find(&matches).Error
	return matches, err
}

// EnsurePendingAvailability inserts a pending row for the triple if none
// exists yet. An existing row is left completely untouched.
func (r *matchRepository) EnsurePendingAvailability(matchID, userID, teamID uint) (*MatchAvailability, error) {
	row := MatchAvailability{
		MatchID: matchID,
		UserID:  userID,
		TeamID:  teamID,
		Status:  AvailabilityPending,
	}
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "match_id"}, {Name: "user_id"}, {Name: "team_id"}},
		DoNothing: true,
	}).Create(&row).Error
	if err != nil {
		return nil, err
	}
	return r.GetAvailabilityRow(matchID, userID, teamID)
}

// MarkReminded stamps reminded_at on a row that has not been reminded yet.
// The conditional update makes reminders at-most-once per row even if two
// sweeps overlap.
func (r *matchRepository) MarkReminded(availabilityID uint, at time.Time) (bool, error) {
	result := r.db.Model(&MatchAvailability{}).
		Where("id = ? AND reminded_at IS NULL", availabilityID).
		Update("reminded_at", at)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// --- Lineups ---

// ReplaceLineup swaps a team's whole lineup for a match in one transaction:
// delete everything, then insert the new entries. No diffing.
func (r *matchRepository) ReplaceLineup(matchID, teamID uint, entries []MatchLineup) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().
			Where("match_id = ? AND team_id = ?", matchID, teamID).
			Delete(&MatchLineup{}).Error; err != nil {
			return err
		}
		if len(entries) == 0 {
			return nil
		}
		for i := range entries {
			entries[i].ID = 0
			entries[i].MatchID = matchID
			entries[i].TeamID = teamID
		}
		return tx.Create(&entries).Error
	})
}

func (r *matchRepository) GetLineup(matchID, teamID uint) ([]MatchLineup, error) {
	var entries []MatchLineup
	err := r.db.Where("match_id = ? AND team_id = ?", matchID, teamID).
		Order("is_starter desc, user_id asc").Find(&entries).Error
	return entries, err
}

// --- Events ---

func (r *matchRepository) CreateEvent(event *MatchEvent) error {
	return r.db.Create(event).Error
}

func (r *matchRepository) GetEventByID(id uint) (*MatchEvent, error) {
	var event MatchEvent
	if err := r.db.First(&event, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &event, nil
}

func (r *matchRepository) GetEventsByMatchID(matchID uint) ([]MatchEvent, error) {
	var events []MatchEvent
	err := r.db.Where("match_id = ?", matchID).
		Order("minute asc, created_at asc").Find(&events).Error
	return events, err
}

func (r *matchRepository) DeleteEvent(id uint) error {
	return r.db.Unscoped().Delete(&MatchEvent{}, id).Error
}
