package match

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/golazo-app/golazo/internal/middleware"
	"github.com/golazo-app/golazo/internal/notification"
	"github.com/golazo-app/golazo/internal/team"
	"github.com/golazo-app/golazo/internal/variant"
	"github.com/golazo-app/golazo/pkg/responses"
	"github.com/golazo-app/golazo/pkg/validator"
)

// MatchController handles match lifecycle, request arbitration, availability,
// lineup and event HTTP requests.
type MatchController struct {
	repo       MatchRepository
	teamRepo   team.TeamRepository
	aggregator *Aggregator
	notifier   notification.Notifier
}

// NewMatchController creates a new match controller.
func NewMatchController(repo MatchRepository, teamRepo team.TeamRepository, notifier notification.Notifier) *MatchController {
	return &MatchController{
		repo:       repo,
		teamRepo:   teamRepo,
		aggregator: NewAggregator(repo, teamRepo),
		notifier:   notifier,
	}
}

// --- DTOs ---

type CreateMatchRequest struct {
	HomeTeamID  uint      `json:"home_team_id" binding:"required"`
	ScheduledAt time.Time `json:"scheduled_at" binding:"required"`
	Location    string    `json:"location" binding:"required,max=255"`
	Notes       string    `json:"notes" binding:"max=1000"`
	MatchType   MatchType `json:"match_type" binding:"required,oneof=friendly competitive"`
}

type UpdateMatchDetailsRequest struct {
	ScheduledAt *time.Time `json:"scheduled_at"`
	Location    *string    `json:"location" binding:"omitempty,max=255"`
	Notes       *string    `json:"notes" binding:"omitempty,max=1000"`
	MatchType   *MatchType `json:"match_type" binding:"omitempty,oneof=friendly competitive"`
}

type CreateMatchRequestBody struct {
	TeamID  uint   `json:"team_id" binding:"required"`
	Message string `json:"message" binding:"max=500"`
}

type UpdateScoreRequest struct {
	HomeScore *int `json:"home_score" binding:"required,gte=0"`
	AwayScore *int `json:"away_score" binding:"required,gte=0"`
}

type UpdateAvailabilityRequest struct {
	TeamID uint               `json:"team_id" binding:"required"`
	Status AvailabilityStatus `json:"status" binding:"required,oneof=available maybe unavailable pending"`
}

type LineupEntryRequest struct {
	UserID        uint   `json:"user_id" binding:"required"`
	Position      string `json:"position" binding:"max=50"`
	IsStarter     bool   `json:"is_starter"`
	MinutesPlayed int    `json:"minutes_played" binding:"gte=0,lte=200"`
}

type SetLineupRequest struct {
	TeamID  uint                 `json:"team_id" binding:"required"`
	Entries []LineupEntryRequest `json:"entries" binding:"required,dive"`
}

type CreateEventRequest struct {
	TeamID      uint      `json:"team_id" binding:"required"`
	UserID      *uint     `json:"user_id"`
	Type        EventType `json:"type" binding:"required,oneof=goal assist yellow_card red_card substitution_in substitution_out"`
	Minute      int       `json:"minute" binding:"gte=0,lte=150"`
	Description string    `json:"description" binding:"max=500"`
}

// --- Match lifecycle handlers ---

// CreateMatch godoc
// @Summary Create an open match
// @Description Creates a match in available status with an empty away slot. Caller must lead the home team.
// @Tags Matches
// @Accept json
// @Produce json
// @Param match body CreateMatchRequest true "Match data"
// @Success 201 {object} responses.SuccessResponse{data=FootballMatch}
// @Failure 403 {object} responses.ErrorResponse "Not a leader of the home team"
// @Security ApiKeyAuth
// @Router /matches [post]
func (mc *MatchController) CreateMatch(c *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.SendError(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req CreateMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.SendValidationError(c, validator.ParseError(err))
		return
	}

	homeTeam, err := mc.teamRepo.GetTeamByID(req.HomeTeamID)
	if err != nil || homeTeam == nil {
		responses.SendError(c, http.StatusNotFound, "Home team not found")
		return
	}
	if !mc.requireLeader(c, homeTeam.ID, userID) {
		return
	}

	match := FootballMatch{
		HomeTeamID:  homeTeam.ID,
		Variant:     homeTeam.Variant,
		ScheduledAt: req.ScheduledAt,
		Location:    req.Location,
		Notes:       req.Notes,
		MatchType:   req.MatchType,
		CreatedByID: userID,
	}
	if err := mc.repo.CreateMatch(&match); err != nil {
		responses.SendError(c, http.StatusInternalServerError, "Failed to create match: "+err.Error())
		return
	}
	zap.L().Info("match created",
		zap.Uint("match_id", match.ID), zap.Uint("home_team_id", homeTeam.ID))
	responses.SendSuccess(c, http.StatusCreated, "Match created successfully", match)
}

// GetMatchByID godoc
// @Summary Get a match with its derived outcome
// @Tags Matches
// @Produce json
// @Param match_id path uint true "Match ID"
// @Success 200 {object} responses.SuccessResponse
// @Failure 404 {object} responses.ErrorResponse "Match not found"
// @Router /matches/{match_id} [get]
func (mc *MatchController) GetMatchByID(c *gin.Context) {
	match, ok := mc.loadMatch(c)
	if !ok {
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Match retrieved successfully", gin.H{
		"match":          match,
		"outcome":        match.Outcome(),
		"winner_team_id": match.WinnerTeamID(),
	})
}

// GetAllMatches godoc
// @Summary List matches
// @Tags Matches
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(10)
// @Param status query string false "Filter by status"
// @Param variant query string false "Filter by variant"
// @Param match_type query string false "Filter by match type"
// @Success 200 {object} responses.PaginatedResponse{data=[]FootballMatch}
// @Router /matches [get]
func (mc *MatchController) GetAllMatches(c *gin.Context) {
	page, limit := pagination(c)

	filters := make(map[string]interface{})
	if status := c.Query("status"); status != "" {
		filters["status"] = status
	}
	if v := c.Query("variant"); v != "" {
		if !variant.Variant(v).Valid() {
			responses.SendError(c, http.StatusBadRequest, "Unknown variant: "+v)
			return
		}
		filters["variant"] = v
	}
	if matchType := c.Query("match_type"); matchType != "" {
		filters["match_type"] = matchType
	}
	if c.Query("upcoming") == "true" {
		filters["from"] = time.Now()
	}

	matches, total, err := mc.repo.GetAllMatches(page, limit, filters)
	if err != nil {
		responses.SendError(c, http.StatusInternalServerError, "Failed to retrieve matches: "+err.Error())
		return
	}
	responses.SendPaginated(c, http.StatusOK, "Matches retrieved successfully", matches, total, page, limit)
}

// GetMatchesByTeam godoc
// @Summary List a team's matches, home or away
// @Tags Matches
// @Produce json
// @Param team_id path uint true "Team ID"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(10)
// @Success 200 {object} responses.PaginatedResponse{data=[]FootballMatch}
// @Router /teams/{team_id}/matches [get]
func (mc *MatchController) GetMatchesByTeam(c *gin.Context) {
	teamID, err := strconv.ParseUint(c.Param("team_id"), 10, 32)
	if err != nil {
		responses.SendError(c, http.StatusBadRequest, "Invalid team ID")
		return
	}
	page, limit := pagination(c)
	matches, total, err := mc.repo.GetMatchesByTeamID(uint(teamID), page, limit)
	if err != nil {
		responses.SendError(c, http.StatusInternalServerError, "Failed to retrieve matches: "+err.Error())
		return
	}
	responses.SendPaginated(c, http.StatusOK, "Matches retrieved successfully", matches, total, page, limit)
}

// GetMyMatches godoc
// @Summary List matches involving the caller's teams
// @Tags Matches
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(10)
// @Success 200 {object} responses.PaginatedResponse{data=[]FootballMatch}
// @Security ApiKeyAuth
// @Router /matches/mine [get]
func (mc *MatchController) GetMyMatches(c *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.SendError(c, http.StatusUnauthorized, "User not authenticated")
		return
	}
	page, limit := pagination(c)
	matches, total, err := mc.repo.GetMatchesByUserID(userID, page, limit)
	if err != nil {
		responses.SendError(c, http.StatusInternalServerError, "Failed to retrieve matches: "+err.Error())
		return
	}
	responses.SendPaginated(c, http.StatusOK, "Your matches retrieved successfully", matches, total, page, limit)
}

// UpdateMatchDetails godoc
// @Summary Update match details
// @Description Home-team leaders may change time, place, notes and type while the match has not started.
// @Tags Matches
// @Accept json
// @Produce json
// @Param match_id path uint true "Match ID"
// @Param match body UpdateMatchDetailsRequest true "Fields to update"
// @Success 200 {object} responses.SuccessResponse{data=FootballMatch}
// @Failure 409 {object} responses.ErrorResponse "Match already started"
// @Security ApiKeyAuth
// @Router /matches/{match_id} [put]
func (mc *MatchController) UpdateMatchDetails(c *gin.Context) {
	_, match, ok := mc.loadMatchForHomeLeader(c)
	if !ok {
		return
	}

	if match.StartedAt != nil {
		responses.SendError(c, http.StatusConflict, "Match details cannot change once the match has started")
		return
	}

	var req UpdateMatchDetailsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.SendValidationError(c, validator.ParseError(err))
		return
	}
	if req.ScheduledAt != nil {
		match.ScheduledAt = *req.ScheduledAt
	}
	if req.Location != nil {
		match.Location = *req.Location
	}
	if req.Notes != nil {
		match.Notes = *req.Notes
	}
	if req.MatchType != nil {
		match.MatchType = *req.MatchType
	}

	if err := mc.repo.UpdateMatchDetails(match); err != nil {
		responses.SendError(c, http.StatusInternalServerError, "Failed to update match: "+err.Error())
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Match updated successfully", match)
}

// CancelMatch godoc
// @Summary Cancel an open match
// @Description Only possible while the match is still available. Deletes all pending requests.
// @Tags Matches
// @Produce json
// @Param match_id path uint true "Match ID"
// @Success 200 {object} responses.SuccessResponse
// @Failure 409 {object} responses.ErrorResponse "Match is past cancellation"
// @Security ApiKeyAuth
// @Router /matches/{match_id}/cancel [post]
func (mc *MatchController) CancelMatch(c *gin.Context) {
	_, match, ok := mc.loadMatchForHomeLeader(c)
	if !ok {
		return
	}

	pending, _ := mc.repo.GetRequestsByMatchID(match.ID, RequestPending)

	if err := mc.repo.CancelMatch(match.ID); err != nil {
		if errors.Is(err, ErrInvalidTransition) {
			responses.SendError(c, http.StatusConflict, "Only available matches can be cancelled")
			return
		}
		responses.SendError(c, http.StatusInternalServerError, "Failed to cancel match: "+err.Error())
		return
	}

	for _, request := range pending {
		mc.notifyTeamLeaders(request.TeamID, notification.KindMatchCancelled, map[string]interface{}{
			"match_id": match.ID, "scheduled_at": match.ScheduledAt,
		})
	}
	zap.L().Info("match cancelled", zap.Uint("match_id", match.ID))
	responses.SendSuccess(c, http.StatusOK, "Match cancelled successfully", nil)
}

// StartMatch godoc
// @Summary Start a confirmed match
// @Tags Matches
// @Produce json
// @Param match_id path uint true "Match ID"
// @Success 200 {object} responses.SuccessResponse{data=FootballMatch}
// @Failure 409 {object} responses.ErrorResponse "Not confirmed or before scheduled time"
// @Security ApiKeyAuth
// @Router /matches/{match_id}/start [post]
func (mc *MatchController) StartMatch(c *gin.Context) {
	_, match, ok := mc.loadMatchForSideLeader(c)
	if !ok {
		return
	}

	started, err := mc.repo.StartMatch(match.ID)
	switch {
	case errors.Is(err, ErrMatchNotStarted):
		responses.SendError(c, http.StatusConflict, "Match cannot start before its scheduled time")
	case errors.Is(err, ErrInvalidTransition):
		responses.SendError(c, http.StatusConflict, "Only confirmed matches can be started")
	case err != nil:
		responses.SendError(c, http.StatusInternalServerError, "Failed to start match: "+err.Error())
	default:
		responses.SendSuccess(c, http.StatusOK, "Match started", started)
	}
}

// UpdateScore godoc
// @Summary Update the score
// @Description Legal while confirmed or in progress, once the scheduled time has passed. A confirmed match moves to in progress.
// @Tags Matches
// @Accept json
// @Produce json
// @Param match_id path uint true "Match ID"
// @Param score body UpdateScoreRequest true "New scores"
// @Success 200 {object} responses.SuccessResponse{data=FootballMatch}
// @Failure 409 {object} responses.ErrorResponse "Score update not allowed in this state"
// @Security ApiKeyAuth
// @Router /matches/{match_id}/score [put]
func (mc *MatchController) UpdateScore(c *gin.Context) {
	_, match, ok := mc.loadMatchForSideLeader(c)
	if !ok {
		return
	}

	var req UpdateScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.SendValidationError(c, validator.ParseError(err))
		return
	}

	updated, err := mc.repo.UpdateScore(match.ID, *req.HomeScore, *req.AwayScore)
	switch {
	case errors.Is(err, ErrMatchNotStarted):
		responses.SendError(c, http.StatusConflict, "Cannot update score before the match starts")
	case errors.Is(err, ErrInvalidTransition):
		responses.SendError(c, http.StatusConflict, "Score can only change while the match is confirmed or in progress")
	case err != nil:
		responses.SendError(c, http.StatusInternalServerError, "Failed to update score: "+err.Error())
	default:
		mc.notifyMatchSides(updated, notification.KindScoreUpdated, map[string]interface{}{
			"match_id": updated.ID, "home_score": *req.HomeScore, "away_score": *req.AwayScore,
		})
		responses.SendSuccess(c, http.StatusOK, "Score updated successfully", updated)
	}
}

// CompleteMatch godoc
// @Summary Complete an in-progress match
// @Tags Matches
// @Produce json
// @Param match_id path uint true "Match ID"
// @Success 200 {object} responses.SuccessResponse{data=FootballMatch}
// @Failure 409 {object} responses.ErrorResponse "Match is not in progress"
// @Security ApiKeyAuth
// @Router /matches/{match_id}/complete [post]
func (mc *MatchController) CompleteMatch(c *gin.Context) {
	_, match, ok := mc.loadMatchForSideLeader(c)
	if !ok {
		return
	}

	completed, err := mc.repo.CompleteMatch(match.ID)
	switch {
	case errors.Is(err, ErrInvalidTransition):
		responses.SendError(c, http.StatusConflict, "Only in-progress matches can be completed")
	case err != nil:
		responses.SendError(c, http.StatusInternalServerError, "Failed to complete match: "+err.Error())
	default:
		zap.L().Info("match completed", zap.Uint("match_id", completed.ID))
		responses.SendSuccess(c, http.StatusOK, "Match completed", gin.H{
			"match":          completed,
			"outcome":        completed.Outcome(),
			"winner_team_id": completed.WinnerTeamID(),
		})
	}
}

// --- Request arbitration handlers ---

// CreateMatchRequest godoc
// @Summary Request to fill a match's away slot
// @Description Caller must lead the requesting team; variants must agree and the match must still be available.
// @Tags Match Requests
// @Accept json
// @Produce json
// @Param match_id path uint true "Match ID"
// @Param request body CreateMatchRequestBody true "Requesting team"
// @Success 201 {object} responses.SuccessResponse{data=MatchRequest}
// @Failure 409 {object} responses.ErrorResponse "Match taken, variant mismatch or duplicate request"
// @Security ApiKeyAuth
// @Router /matches/{match_id}/requests [post]
func (mc *MatchController) CreateMatchRequest(c *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.SendError(c, http.StatusUnauthorized, "User not authenticated")
		return
	}
	match, ok := mc.loadMatch(c)
	if !ok {
		return
	}

	var req CreateMatchRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.SendValidationError(c, validator.ParseError(err))
		return
	}
	if !mc.requireLeader(c, req.TeamID, userID) {
		return
	}

	request := MatchRequest{MatchID: match.ID, TeamID: req.TeamID, Message: req.Message}
	err = mc.repo.CreateRequest(&request)
	switch {
	case errors.Is(err, ErrMatchNotAvailable):
		responses.SendError(c, http.StatusConflict, "Match is no longer available")
	case errors.Is(err, ErrNotMatchSide):
		responses.SendError(c, http.StatusConflict, "A team cannot request its own match")
	case errors.Is(err, ErrVariantMismatch):
		responses.SendError(c, http.StatusConflict, "Requesting team plays a different variant")
	case errors.Is(err, ErrDuplicateRequest):
		responses.SendError(c, http.StatusConflict, "Your team already has a pending request for this match")
	case err != nil:
		responses.SendError(c, http.StatusInternalServerError, "Failed to create request: "+err.Error())
	default:
		mc.notifyTeamLeaders(match.HomeTeamID, notification.KindMatchRequestReceived, map[string]interface{}{
			"match_id": match.ID, "team_id": req.TeamID, "request_id": request.ID,
		})
		responses.SendSuccess(c, http.StatusCreated, "Match request sent successfully", request)
	}
}

// GetMatchRequests godoc
// @Summary List a match's requests
// @Description Only home-team leaders can review requests.
// @Tags Match Requests
// @Produce json
// @Param match_id path uint true "Match ID"
// @Param status query string false "Filter by status"
// @Success 200 {object} responses.SuccessResponse{data=[]MatchRequest}
// @Security ApiKeyAuth
// @Router /matches/{match_id}/requests [get]
func (mc *MatchController) GetMatchRequests(c *gin.Context) {
	_, match, ok := mc.loadMatchForHomeLeader(c)
	if !ok {
		return
	}
	requests, err := mc.repo.GetRequestsByMatchID(match.ID, RequestStatus(c.Query("status")))
	if err != nil {
		responses.SendError(c, http.StatusInternalServerError, "Failed to retrieve requests: "+err.Error())
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Match requests retrieved successfully", requests)
}

// RespondToMatchRequest godoc
// @Summary Accept or reject a match request
// @Description Acceptance confirms the match, fills the away slot and rejects every other pending request, all atomically. First committer wins.
// @Tags Match Requests
// @Produce json
// @Param match_id path uint true "Match ID"
// @Param request_id path uint true "Request ID"
// @Param action path string true "Action: accept or reject"
// @Success 200 {object} responses.SuccessResponse{data=MatchRequest}
// @Failure 409 {object} responses.ErrorResponse "Already reviewed or match taken"
// @Security ApiKeyAuth
// @Router /matches/{match_id}/requests/{request_id}/{action} [put]
func (mc *MatchController) RespondToMatchRequest(c *gin.Context) {
	userID, match, ok := mc.loadMatchForHomeLeader(c)
	if !ok {
		return
	}

	requestID, err := strconv.ParseUint(c.Param("request_id"), 10, 32)
	if err != nil {
		responses.SendError(c, http.StatusBadRequest, "Invalid request ID")
		return
	}
	action := strings.ToLower(c.Param("action"))
	if action != "accept" && action != "reject" {
		responses.SendError(c, http.StatusBadRequest, "Invalid action. Must be 'accept' or 'reject'.")
		return
	}

	request, err := mc.repo.GetRequestByID(uint(requestID))
	if err != nil || request == nil {
		responses.SendError(c, http.StatusNotFound, "Match request not found")
		return
	}
	if request.MatchID != match.ID {
		responses.SendError(c, http.StatusBadRequest, "Request does not belong to this match")
		return
	}

	if action == "accept" {
		siblings, _ := mc.repo.GetRequestsByMatchID(match.ID, RequestPending)

		accepted, err := mc.repo.AcceptRequest(request.ID, userID)
		switch {
		case errors.Is(err, ErrRequestNotPending):
			responses.SendError(c, http.StatusConflict, "Request has already been reviewed")
		case errors.Is(err, ErrMatchNotAvailable):
			responses.SendError(c, http.StatusConflict, "Match is no longer available")
		case err != nil:
			responses.SendError(c, http.StatusInternalServerError, "Failed to accept request: "+err.Error())
		default:
			mc.notifyTeamLeaders(accepted.TeamID, notification.KindMatchRequestAccepted, map[string]interface{}{
				"match_id": match.ID, "request_id": accepted.ID,
			})
			for _, sibling := range siblings {
				if sibling.ID == accepted.ID {
					continue
				}
				mc.notifyTeamLeaders(sibling.TeamID, notification.KindMatchRequestRejected, map[string]interface{}{
					"match_id": match.ID, "request_id": sibling.ID,
				})
			}
			zap.L().Info("match request accepted",
				zap.Uint("match_id", match.ID), zap.Uint("request_id", accepted.ID))
			responses.SendSuccess(c, http.StatusOK, "Match confirmed against the requesting team", accepted)
		}
		return
	}

	rejected, err := mc.repo.RejectRequest(request.ID, userID)
	switch {
	case errors.Is(err, ErrRequestNotPending):
		responses.SendError(c, http.StatusConflict, "Request has already been reviewed")
	case err != nil:
		responses.SendError(c, http.StatusInternalServerError, "Failed to reject request: "+err.Error())
	default:
		mc.notifyTeamLeaders(rejected.TeamID, notification.KindMatchRequestRejected, map[string]interface{}{
			"match_id": match.ID, "request_id": rejected.ID,
		})
		responses.SendSuccess(c, http.StatusOK, "Match request rejected", rejected)
	}
}

// --- Availability handlers ---

// UpdateAvailability godoc
// @Summary Record the caller's availability for a match
// @Description Upserts on (match, user, team); repeated updates overwrite in place.
// @Tags Availability
// @Accept json
// @Produce json
// @Param match_id path uint true "Match ID"
// @Param availability body UpdateAvailabilityRequest true "Availability status"
// @Success 200 {object} responses.SuccessResponse{data=MatchAvailability}
// @Failure 403 {object} responses.ErrorResponse "Not an active member of the team"
// @Security ApiKeyAuth
// @Router /matches/{match_id}/availability [put]
func (mc *MatchController) UpdateAvailability(c *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.SendError(c, http.StatusUnauthorized, "User not authenticated")
		return
	}
	match, ok := mc.loadMatch(c)
	if !ok {
		return
	}

	var req UpdateAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.SendValidationError(c, validator.ParseError(err))
		return
	}
	if !match.HasSide(req.TeamID) {
		responses.SendError(c, http.StatusConflict, "Team is not playing in this match")
		return
	}
	isMember, err := mc.teamRepo.HasMember(req.TeamID, userID)
	if err != nil {
		responses.SendError(c, http.StatusInternalServerError, "Failed to check membership: "+err.Error())
		return
	}
	if !isMember {
		responses.SendError(c, http.StatusForbidden, "You are not an active member of this team")
		return
	}

	availability, err := mc.repo.UpsertAvailability(match.ID, userID, req.TeamID, req.Status)
	if err != nil {
		responses.SendError(c, http.StatusInternalServerError, "Failed to update availability: "+err.Error())
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Availability updated successfully", availability)
}

// GetAvailabilitySummary godoc
// @Summary Availability breakdown for one side of a match
// @Tags Availability
// @Produce json
// @Param match_id path uint true "Match ID"
// @Param team_id query uint true "Team ID (home or away side)"
// @Success 200 {object} responses.SuccessResponse{data=AvailabilitySummary}
// @Security ApiKeyAuth
// @Router /matches/{match_id}/availability [get]
func (mc *MatchController) GetAvailabilitySummary(c *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.SendError(c, http.StatusUnauthorized, "User not authenticated")
		return
	}
	match, ok := mc.loadMatch(c)
	if !ok {
		return
	}

	teamID, err := strconv.ParseUint(c.Query("team_id"), 10, 32)
	if err != nil {
		responses.SendError(c, http.StatusBadRequest, "Invalid or missing team_id")
		return
	}

	summary, err := mc.aggregator.Summarize(match, uint(teamID))
	if errors.Is(err, ErrNotMatchSide) {
		responses.SendError(c, http.StatusConflict, "Team is not playing in this match")
		return
	}
	if err != nil {
		responses.SendError(c, http.StatusInternalServerError, "Failed to summarize availability: "+err.Error())
		return
	}

	// the short-of-players alert is leader-only information
	isLeader, _ := mc.teamRepo.IsLeader(uint(teamID), userID)
	if !isLeader {
		summary.NeedsAlert = false
	}

	rows, err := mc.repo.GetAvailability(match.ID, uint(teamID))
	if err != nil {
		responses.SendError(c, http.StatusInternalServerError, "Failed to load availability rows: "+err.Error())
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Availability retrieved successfully", gin.H{
		"summary": summary,
		"players": rows,
	})
}

// --- Lineup handlers ---

// SetLineup godoc
// @Summary Replace a team's lineup for a match
// @Description Wipes the previous lineup and writes the new one atomically. Legal while confirmed or in progress.
// @Tags Lineups
// @Accept json
// @Produce json
// @Param match_id path uint true "Match ID"
// @Param lineup body SetLineupRequest true "Full lineup"
// @Success 200 {object} responses.SuccessResponse{data=[]MatchLineup}
// @Failure 409 {object} responses.ErrorResponse "Wrong match state or team not a side"
// @Security ApiKeyAuth
// @Router /matches/{match_id}/lineup [put]
func (mc *MatchController) SetLineup(c *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.SendError(c, http.StatusUnauthorized, "User not authenticated")
		return
	}
	match, ok := mc.loadMatch(c)
	if !ok {
		return
	}

	var req SetLineupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.SendValidationError(c, validator.ParseError(err))
		return
	}
	if match.Status != StatusConfirmed && match.Status != StatusInProgress {
		responses.SendError(c, http.StatusConflict, "Lineups can only change while the match is confirmed or in progress")
		return
	}
	if !match.HasSide(req.TeamID) {
		responses.SendError(c, http.StatusConflict, "Team is not playing in this match")
		return
	}
	if !mc.requireLeader(c, req.TeamID, userID) {
		return
	}

	entries := make([]MatchLineup, 0, len(req.Entries))
	for _, entry := range req.Entries {
		entries = append(entries, MatchLineup{
			UserID:        entry.UserID,
			Position:      entry.Position,
			IsStarter:     entry.IsStarter,
			MinutesPlayed: entry.MinutesPlayed,
		})
	}
	if err := mc.repo.ReplaceLineup(match.ID, req.TeamID, entries); err != nil {
		responses.SendError(c, http.StatusInternalServerError, "Failed to set lineup: "+err.Error())
		return
	}

	lineup, err := mc.repo.GetLineup(match.ID, req.TeamID)
	if err != nil {
		responses.SendError(c, http.StatusInternalServerError, "Failed to load lineup: "+err.Error())
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Lineup set successfully", lineup)
}

// GetLineup godoc
// @Summary Get a team's lineup for a match
// @Tags Lineups
// @Produce json
// @Param match_id path uint true "Match ID"
// @Param team_id query uint true "Team ID"
// @Success 200 {object} responses.SuccessResponse{data=[]MatchLineup}
// @Router /matches/{match_id}/lineup [get]
func (mc *MatchController) GetLineup(c *gin.Context) {
	match, ok := mc.loadMatch(c)
	if !ok {
		return
	}
	teamID, err := strconv.ParseUint(c.Query("team_id"), 10, 32)
	if err != nil {
		responses.SendError(c, http.StatusBadRequest, "Invalid or missing team_id")
		return
	}
	lineup, err := mc.repo.GetLineup(match.ID, uint(teamID))
	if err != nil {
		responses.SendError(c, http.StatusInternalServerError, "Failed to load lineup: "+err.Error())
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Lineup retrieved successfully", lineup)
}

// --- Event handlers ---

// CreateMatchEvent godoc
// @Summary Record an in-match event
// @Description Goals, cards and substitutions. Only while the match is in progress, for one of its sides.
// @Tags Match Events
// @Accept json
// @Produce json
// @Param match_id path uint true "Match ID"
// @Param event body CreateEventRequest true "Event data"
// @Success 201 {object} responses.SuccessResponse{data=MatchEvent}
// @Failure 409 {object} responses.ErrorResponse "Match not in progress"
// @Security ApiKeyAuth
// @Router /matches/{match_id}/events [post]
func (mc *MatchController) CreateMatchEvent(c *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.SendError(c, http.StatusUnauthorized, "User not authenticated")
		return
	}
	match, ok := mc.loadMatch(c)
	if !ok {
		return
	}

	var req CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.SendValidationError(c, validator.ParseError(err))
		return
	}
	if match.Status != StatusInProgress {
		responses.SendError(c, http.StatusConflict, "Events can only be recorded while the match is in progress")
		return
	}
	if !match.HasSide(req.TeamID) {
		responses.SendError(c, http.StatusConflict, "Team is not playing in this match")
		return
	}
	if !mc.requireLeader(c, req.TeamID, userID) {
		return
	}

	event := MatchEvent{
		MatchID:     match.ID,
		TeamID:      req.TeamID,
		UserID:      req.UserID,
		Type:        req.Type,
		Minute:      req.Minute,
		Description: req.Description,
	}
	if err := mc.repo.CreateEvent(&event); err != nil {
		responses.SendError(c, http.StatusInternalServerError, "Failed to record event: "+err.Error())
		return
	}
	responses.SendSuccess(c, http.StatusCreated, "Event recorded successfully", event)
}

// GetMatchEvents godoc
// @Summary List a match's events in minute order
// @Tags Match Events
// @Produce json
// @Param match_id path uint true "Match ID"
// @Success 200 {object} responses.SuccessResponse{data=[]MatchEvent}
// @Router /matches/{match_id}/events [get]
func (mc *MatchController) GetMatchEvents(c *gin.Context) {
	match, ok := mc.loadMatch(c)
	if !ok {
		return
	}
	events, err := mc.repo.GetEventsByMatchID(match.ID)
	if err != nil {
		responses.SendError(c, http.StatusInternalServerError, "Failed to retrieve events: "+err.Error())
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Match events retrieved successfully", events)
}

// DeleteMatchEvent godoc
// @Summary Delete a recorded event
// @Description Only a leader of the event's own team, while the match is in progress or completed.
// @Tags Match Events
// @Produce json
// @Param match_id path uint true "Match ID"
// @Param event_id path uint true "Event ID"
// @Success 200 {object} responses.SuccessResponse
// @Failure 403 {object} responses.ErrorResponse "Not a leader of the event's team"
// @Security ApiKeyAuth
// @Router /matches/{match_id}/events/{event_id} [delete]
func (mc *MatchController) DeleteMatchEvent(c *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.SendError(c, http.StatusUnauthorized, "User not authenticated")
		return
	}
	match, ok := mc.loadMatch(c)
	if !ok {
		return
	}

	eventID, err := strconv.ParseUint(c.Param("event_id"), 10, 32)
	if err != nil {
		responses.SendError(c, http.StatusBadRequest, "Invalid event ID")
		return
	}
	event, err := mc.repo.GetEventByID(uint(eventID))
	if err != nil || event == nil || event.MatchID != match.ID {
		responses.SendError(c, http.StatusNotFound, "Event not found")
		return
	}
	if match.Status != StatusInProgress && match.Status != StatusCompleted {
		responses.SendError(c, http.StatusConflict, "Events can only be deleted while the match is in progress or completed")
		return
	}
	if !mc.requireLeader(c, event.TeamID, userID) {
		return
	}

	if err := mc.repo.DeleteEvent(event.ID); err != nil {
		responses.SendError(c, http.StatusInternalServerError, "Failed to delete event: "+err.Error())
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Event deleted successfully", nil)
}

// --- helpers ---

func (mc *MatchController) loadMatch(c *gin.Context) (*FootballMatch, bool) {
	matchID, err := strconv.ParseUint(c.Param("match_id"), 10, 32)
	if err != nil {
		responses.SendError(c, http.StatusBadRequest, "Invalid match ID")
		return nil, false
	}
	match, err := mc.repo.GetMatchByID(uint(matchID))
	if err != nil {
		responses.SendError(c, http.StatusInternalServerError, "Failed to retrieve match: "+err.Error())
		return nil, false
	}
	if match == nil {
		responses.SendError(c, http.StatusNotFound, "Match not found")
		return nil, false
	}
	return match, true
}

// loadMatchForHomeLeader resolves the match and authorizes the caller as a
// home-team leader.
func (mc *MatchController) loadMatchForHomeLeader(c *gin.Context) (uint, *FootballMatch, bool) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.SendError(c, http.StatusUnauthorized, "User not authenticated")
		return 0, nil, false
	}
	match, ok := mc.loadMatch(c)
	if !ok {
		return 0, nil, false
	}
	if !mc.requireLeader(c, match.HomeTeamID, userID) {
		return 0, nil, false
	}
	return userID, match, true
}

// loadMatchForSideLeader resolves the match and authorizes the caller as a
// leader of either side.
func (mc *MatchController) loadMatchForSideLeader(c *gin.Context) (uint, *FootballMatch, bool) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.SendError(c, http.StatusUnauthorized, "User not authenticated")
		return 0, nil, false
	}
	match, ok := mc.loadMatch(c)
	if !ok {
		return 0, nil, false
	}

	isHomeLeader, err := mc.teamRepo.IsLeader(match.HomeTeamID, userID)
	if err != nil {
		responses.SendError(c, http.StatusInternalServerError, "Failed to check permissions: "+err.Error())
		return 0, nil, false
	}
	isAwayLeader := false
	if match.AwayTeamID != nil {
		isAwayLeader, err = mc.teamRepo.IsLeader(*match.AwayTeamID, userID)
		if err != nil {
			responses.SendError(c, http.StatusInternalServerError, "Failed to check permissions: "+err.Error())
			return 0, nil, false
		}
	}
	if !isHomeLeader && !isAwayLeader {
		responses.SendError(c, http.StatusForbidden, "Only leaders of a participating team can perform this action")
		return 0, nil, false
	}
	return userID, match, true
}

// requireLeader responds with 403 and returns false unless the user leads
// the team.
func (mc *MatchController) requireLeader(c *gin.Context, teamID, userID uint) bool {
	isLeader, err := mc.teamRepo.IsLeader(teamID, userID)
	if err != nil {
		responses.SendError(c, http.StatusInternalServerError, "Failed to check permissions: "+err.Error())
		return false
	}
	if !isLeader {
		responses.SendError(c, http.StatusForbidden, "Only team leaders can perform this action")
		return false
	}
	return true
}

func (mc *MatchController) notifyTeamLeaders(teamID uint, kind notification.Kind, payload map[string]interface{}) {
	members, err := mc.teamRepo.GetActiveMembers(teamID)
	if err != nil {
		zap.L().Warn("failed to load members for notification",
			zap.Uint("team_id", teamID), zap.Error(err))
		return
	}
	for _, member := range members {
		if member.IsLeader() {
			mc.notifier.Notify(member.UserID, kind, payload)
		}
	}
}

func (mc *MatchController) notifyMatchSides(m *FootballMatch, kind notification.Kind, payload map[string]interface{}) {
	mc.notifyTeamLeaders(m.HomeTeamID, kind, payload)
	if m.AwayTeamID != nil {
		mc.notifyTeamLeaders(*m.AwayTeamID, kind, payload)
	}
}

func pagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}
