package team

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/golazo-app/golazo/internal/middleware"
	"github.com/golazo-app/golazo/internal/notification"
	"github.com/golazo-app/golazo/internal/variant"
	"github.com/golazo-app/golazo/pkg/responses"
	"github.com/golazo-app/golazo/pkg/validator"
)

// TeamController handles team-related HTTP requests.
type TeamController struct {
	repo     TeamRepository
	notifier notification.Notifier
}

// NewTeamController creates a new team controller.
func NewTeamController(repo TeamRepository, notifier notification.Notifier) *TeamController {
	return &TeamController{repo: repo, notifier: notifier}
}

// --- DTOs ---

type CreateTeamRequest struct {
	Name        string          `json:"name" binding:"required,min=3,max=100"`
	Description string          `json:"description" binding:"max=1000"`
	Variant     variant.Variant `json:"variant" binding:"required,oneof=football_11 football_7 football_5 futsal"`
	Logo        string          `json:"logo"`
	MaxMembers  *int            `json:"max_members" binding:"omitempty,gte=1"`
}

type UpdateTeamRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=3,max=100"`
	Description *string `json:"description" binding:"omitempty,max=1000"`
	Logo        *string `json:"logo"`
	MaxMembers  *int    `json:"max_members" binding:"omitempty,gte=1"`
}

type CreateJoinRequestBody struct {
	Message string `json:"message" binding:"max=500"`
}

type TransferCaptaincyRequest struct {
	NewCaptainID uint `json:"new_captain_id" binding:"required"`
}

type CreateInvitationRequest struct {
	// InviteeID, when set, sends the token to that user as a notification.
	// Without it the token is shared out of band.
	InviteeID *uint `json:"invitee_id"`
}

// --- Team handlers ---

// CreateTeam godoc
// @Summary Create a new team
// @Description Creates a team with the authenticated user as captain.
// @Tags Teams
// @Accept json
// @Produce json
// @Param team body CreateTeamRequest true "Team creation data"
// @Success 201 {object} responses.SuccessResponse{data=Team}
// @Failure 409 {object} responses.ErrorResponse "Team name already exists"
// @Security ApiKeyAuth
// @Router /teams [post]
func (tc *TeamController) CreateTeam(c *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.SendError(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req CreateTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.SendValidationError(c, validator.ParseError(err))
		return
	}

	existing, _ := tc.repo.GetTeamByName(req.Name)
	if existing != nil {
		responses.SendError(c, http.StatusConflict, "Team name already exists")
		return
	}

	team := Team{
		Name:        req.Name,
		Description: req.Description,
		Variant:     req.Variant,
		Logo:        req.Logo,
		CreatedByID: userID,
		MaxMembers:  req.MaxMembers,
	}
	if err := tc.repo.CreateTeamWithCaptain(&team, userID); err != nil {
		responses.SendError(c, http.StatusInternalServerError, "Failed to create team: "+err.Error())
		return
	}

	zap.L().Info("team created", zap.Uint("team_id", team.ID), zap.Uint("captain_id", userID))
	responses.SendSuccess(c, http.StatusCreated, "Team created successfully", team)
}

// GetTeamByID godoc
// @Summary Get a team by ID
// @Tags Teams
// @Produce json
// @Param team_id path uint true "Team ID"
// @Success 200 {object} responses.SuccessResponse
// @Failure 404 {object} responses.ErrorResponse "Team not found"
// @Router /teams/{team_id} [get]
func (tc *TeamController) GetTeamByID(c *gin.Context) {
	teamID, err := strconv.ParseUint(c.Param("team_id"), 10, 32)
	if err != nil {
		responses.SendError(c, http.StatusBadRequest, "Invalid team ID")
		return
	}

	team, err := tc.repo.GetTeamByID(uint(teamID))
	if err != nil {
		responses.SendError(c, http.StatusInternalServerError, "Failed to retrieve team: "+err.Error())
		return
	}
	if team == nil {
		responses.SendError(c, http.StatusNotFound, "Team not found")
		return
	}

	memberCount, _ := tc.repo.CountActiveMembers(team.ID)
	responses.SendSuccess(c, http.StatusOK, "Team retrieved successfully", gin.H{
		"team":         team,
		"member_count": memberCount,
		"max_members":  team.EffectiveMaxMembers(),
		"min_members":  team.MinMembers(),
	})
}

// GetAllTeams godoc
// @Summary List teams
// @Tags Teams
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(10)
// @Param variant query string false "Filter by variant"
// @Param name query string false "Search by name (partial match)"
// @Success 200 {object} responses.PaginatedResponse{data=[]Team}
// @Router /teams [get]
func (tc *TeamController) GetAllTeams(c *gin.Context) {
	page, limit := pagination(c)

	filters := make(map[string]interface{})
	if v := c.Query("variant"); v != "" {
		if !variant.Variant(v).Valid() {
			responses.SendError(c, http.StatusBadRequest, "Unknown variant: "+v)
			return
		}
		filters["variant"] = v
	}
	if name := c.Query("name"); name != "" {
		filters["name"] = strings.ToLower(name)
	}

	teams, total, err := tc.repo.GetAllTeams(page, limit, filters)
	if err != nil {
		responses.SendError(c, http.StatusInternalServerError, "Failed to retrieve teams: "+err.Error())
		return
	}
	responses.SendPaginated(c, http.StatusOK, "Teams retrieved successfully", teams, total, page, limit)
}

// UpdateTeam godoc
// @Summary Update a team
// @Description Only team leaders (captain or co-captain) can update.
// @Tags Teams
// @Accept json
// @Produce json
// @Param team_id path uint true "Team ID"
// @Param team body UpdateTeamRequest true "Team update data"
// @Success 200 {object} responses.SuccessResponse{data=Team}
// @Failure 403 {object} responses.ErrorResponse "Not a team leader"
// @Security ApiKeyAuth
// @Router /teams/{team_id} [put]
func (tc *TeamController) UpdateTeam(c *gin.Context) {
	_, team, ok := tc.loadTeamForLeader(c)
	if !ok {
		return
	}

	var req UpdateTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.SendValidationError(c, validator.ParseError(err))
		return
	}

	if req.Name != nil {
		team.Name = *req.Name
	}
	if req.Description != nil {
		team.Description = *req.Description
	}
	if req.Logo != nil {
		team.Logo = *req.Logo
	}
	if req.MaxMembers != nil {
		count, _ := tc.repo.CountActiveMembers(team.ID)
		if int64(*req.MaxMembers) < count {
			responses.SendError(c, http.StatusConflict, "Max members cannot be below the current active member count")
			return
		}
		team.MaxMembers = req.MaxMembers
	}

	if err := tc.repo.UpdateTeam(team); err != nil {
		responses.SendError(c, http.StatusInternalServerError, "Failed to update team: "+err.Error())
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Team updated successfully", team)
}

// DeleteTeam godoc
// @Summary Delete a team
// @Description Only the captain can delete. Removes members, join requests and invitations in one transaction.
// @Tags Teams
// @Produce json
// @Param team_id path uint true "Team ID"
// @Success 200 {object} responses.SuccessResponse
// @Failure 403 {object} responses.ErrorResponse "Not the team captain"
// @Security ApiKeyAuth
// @Router /teams/{team_id} [delete]
func (tc *TeamController) DeleteTeam(c *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.SendError(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	teamID, err := strconv.ParseUint(c.Param("team_id"), 10, 32)
	if err != nil {
		responses.SendError(c, http.StatusBadRequest, "Invalid team ID")
		return
	}

	team, err := tc.repo.GetTeamByID(uint(teamID))
	if err != nil || team == nil {
		responses.SendError(c, http.StatusNotFound, "Team not found")
		return
	}

	isCaptain, err := tc.repo.IsCaptain(team.ID, userID)
	if err != nil {
		responses.SendError(c, http.StatusInternalServerError, "Failed to check permissions: "+err.Error())
		return
	}
	if !isCaptain {
		responses.SendError(c, http.StatusForbidden, "Only the team captain can delete the team")
		return
	}

	if err := tc.repo.DeleteTeamCascade(team.ID); err != nil {
		responses.SendError(c, http.StatusInternalServerError, "Failed to delete team: "+err.Error())
		return
	}
	zap.L().Info("team deleted", zap.Uint("team_id", team.ID))
	responses.SendSuccess(c, http.StatusOK, "Team deleted successfully", nil)
}

// GetMyTeams godoc
// @Summary List the authenticated user's teams
// @Tags Teams
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(10)
// @Success 200 {object} responses.PaginatedResponse{data=[]Team}
// @Security ApiKeyAuth
// @Router /teams/mine [get]
func (tc *TeamController) GetMyTeams(c *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.SendError(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	page, limit := pagination(c)
	teams, total, err := tc.repo.GetTeamsByUserID(userID, page, limit)
	if err != nil {
		responses.SendError(c, http.StatusInternalServerError, "Failed to retrieve your teams: "+err.Error())
		return
	}
	responses.SendPaginated(c, http.StatusOK, "Your teams retrieved successfully", teams, total, page, limit)
}

// --- Member handlers ---

// GetTeamMembers godoc
// @Summary List active team members
// @Tags Team Members
// @Produce json
// @Param team_id path uint true "Team ID"
// @Success 200 {object} responses.SuccessResponse{data=[]TeamMember}
// @Router /teams/{team_id}/members [get]
func (tc *TeamController) GetTeamMembers(c *gin.Context) {
	teamID, err := strconv.ParseUint(c.Param("team_id"), 10, 32)
	if err != nil {
		responses.SendError(c, http.StatusBadRequest, "Invalid team ID")
		return
	}

	team, err := tc.repo.GetTeamByID(uint(teamID))
	if err != nil || team == nil {
		responses.SendError(c, http.StatusNotFound, "Team not found")
		return
	}

	members, err := tc.repo.GetActiveMembers(team.ID)
	if err != nil {
		responses.SendError(c, http.StatusInternalServerError, "Failed to retrieve members: "+err.Error())
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Team members retrieved successfully", members)
}

// RemoveTeamMember godoc
// @Summary Remove a member from a team
// @Description Leaders remove members. The captain cannot be removed; transfer captaincy first.
// @Tags Team Members
// @Produce json
// @Param team_id path uint true "Team ID"
// @Param user_id path uint true "User ID of the member"
// @Success 200 {object} responses.SuccessResponse
// @Failure 403 {object} responses.ErrorResponse
// @Security ApiKeyAuth
// @Router /teams/{team_id}/members/{user_id} [delete]
func (tc *TeamController) RemoveTeamMember(c *gin.Context) {
	_, team, ok := tc.loadTeamForLeader(c)
	if !ok {
		return
	}

	memberUserID, err := strconv.ParseUint(c.Param("user_id"), 10, 32)
	if err != nil {
		responses.SendError(c, http.StatusBadRequest, "Invalid user ID")
		return
	}

	member, err := tc.repo.GetTeamMember(team.ID, uint(memberUserID))
	if err != nil || member == nil || member.Status != MemberActive {
		responses.SendError(c, http.StatusNotFound, "Member not found in this team")
		return
	}
	if member.Role == RoleCaptain {
		responses.SendError(c, http.StatusForbidden, "The captain cannot be removed; transfer captaincy first")
		return
	}

	if err := tc.repo.RemoveMember(team.ID, uint(memberUserID)); err != nil {
		responses.SendError(c, http.StatusInternalServerError, "Failed to remove member: "+err.Error())
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Member removed successfully", nil)
}

// TransferCaptaincy godoc
// @Summary Transfer team captaincy
// @Description Demotes the current captain to player and promotes the target, atomically.
// @Tags Team Members
// @Accept json
// @Produce json
// @Param team_id path uint true "Team ID"
// @Param body body TransferCaptaincyRequest true "New captain"
// @Success 200 {object} responses.SuccessResponse
// @Failure 403 {object} responses.ErrorResponse "Not the captain"
// @Failure 409 {object} responses.ErrorResponse "Target is not an active member"
// @Security ApiKeyAuth
// @Router /teams/{team_id}/captaincy [post]
func (tc *TeamController) TransferCaptaincy(c *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.SendError(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	teamID, err := strconv.ParseUint(c.Param("team_id"), 10, 32)
	if err != nil {
		responses.SendError(c, http.StatusBadRequest, "Invalid team ID")
		return
	}

	var req TransferCaptaincyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.SendValidationError(c, validator.ParseError(err))
		return
	}
	if req.NewCaptainID == userID {
		responses.SendError(c, http.StatusBadRequest, "You are already the captain")
		return
	}

	err = tc.repo.TransferCaptaincy(uint(teamID), userID, req.NewCaptainID)
	switch {
	case errors.Is(err, ErrNotCaptain):
		responses.SendError(c, http.StatusForbidden, "Only the current captain can transfer captaincy")
	case errors.Is(err, ErrNotMember):
		responses.SendError(c, http.StatusConflict, "Target user is not an active member of this team")
	case err != nil:
		responses.SendError(c, http.StatusInternalServerError, "Failed to transfer captaincy: "+err.Error())
	default:
		zap.L().Info("captaincy transferred",
			zap.Uint("team_id", uint(teamID)), zap.Uint("from", userID), zap.Uint("to", req.NewCaptainID))
		responses.SendSuccess(c, http.StatusOK, "Captaincy transferred successfully", nil)
	}
}

// --- Join request handlers ---

// RequestToJoinTeam godoc
// @Summary Request to join a team
// @Tags Join Requests
// @Accept json
// @Produce json
// @Param team_id path uint true "Team ID"
// @Param body body CreateJoinRequestBody true "Join request details"
// @Success 201 {object} responses.SuccessResponse{data=JoinRequest}
// @Failure 409 {object} responses.ErrorResponse "Team full or duplicate request"
// @Security ApiKeyAuth
// @Router /teams/{team_id}/join-requests [post]
func (tc *TeamController) RequestToJoinTeam(c *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.SendError(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	teamID, err := strconv.ParseUint(c.Param("team_id"), 10, 32)
	if err != nil {
		responses.SendError(c, http.StatusBadRequest, "Invalid team ID")
		return
	}

	var req CreateJoinRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.SendValidationError(c, validator.ParseError(err))
		return
	}

	team, err := tc.repo.GetTeamByID(uint(teamID))
	if err != nil || team == nil {
		responses.SendError(c, http.StatusNotFound, "Team not found")
		return
	}

	isMember, _ := tc.repo.HasMember(team.ID, userID)
	if isMember {
		responses.SendError(c, http.StatusConflict, "You are already a member of this team")
		return
	}

	full, err := tc.repo.IsFull(team)
	if err != nil {
		responses.SendError(c, http.StatusInternalServerError, "Failed to check team capacity: "+err.Error())
		return
	}
	if full {
		responses.SendError(c, http.StatusConflict, "Team has reached its maximum capacity")
		return
	}

	existing, _ := tc.repo.GetPendingJoinRequest(team.ID, userID)
	if existing != nil {
		responses.SendError(c, http.StatusConflict, "You already have a pending join request for this team")
		return
	}

	joinRequest := JoinRequest{TeamID: team.ID, UserID: userID, Message: req.Message}
	if err := tc.repo.CreateJoinRequest(&joinRequest); err != nil {
		responses.SendError(c, http.StatusInternalServerError, "Failed to send join request: "+err.Error())
		return
	}

	tc.notifyLeaders(team.ID, notification.KindJoinRequestReceived, map[string]interface{}{
		"team_id": team.ID, "user_id": userID, "request_id": joinRequest.ID,
	})
	responses.SendSuccess(c, http.StatusCreated, "Join request sent successfully", joinRequest)
}

// GetJoinRequestsForTeam godoc
// @Summary List a team's join requests
// @Description Only team leaders can view join requests.
// @Tags Join Requests
// @Produce json
// @Param team_id path uint true "Team ID"
// @Param status query string false "Filter by status" default(pending)
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(10)
// @Success 200 {object} responses.PaginatedResponse{data=[]JoinRequest}
// @Security ApiKeyAuth
// @Router /teams/{team_id}/join-requests [get]
func (tc *TeamController) GetJoinRequestsForTeam(c *gin.Context) {
	_, team, ok := tc.loadTeamForLeader(c)
	if !ok {
		return
	}

	page, limit := pagination(c)
	status := RequestStatus(strings.ToLower(c.DefaultQuery("status", string(RequestPending))))

	requests, total, err := tc.repo.GetJoinRequestsByTeamID(team.ID, status, page, limit)
	if err != nil {
		responses.SendError(c, http.StatusInternalServerError, "Failed to retrieve join requests: "+err.Error())
		return
	}
	responses.SendPaginated(c, http.StatusOK, "Join requests retrieved successfully", requests, total, page, limit)
}

// RespondToJoinRequest godoc
// @Summary Accept or reject a join request
// @Description Leaders only. Acceptance re-checks capacity at accept time.
// @Tags Join Requests
// @Produce json
// @Param team_id path uint true "Team ID"
// @Param request_id path uint true "Join request ID"
// @Param action path string true "Action: accept or reject"
// @Success 200 {object} responses.SuccessResponse{data=JoinRequest}
// @Failure 409 {object} responses.ErrorResponse "Not pending or team full"
// @Security ApiKeyAuth
// @Router /teams/{team_id}/join-requests/{request_id}/{action} [put]
func (tc *TeamController) RespondToJoinRequest(c *gin.Context) {
	_, team, ok := tc.loadTeamForLeader(c)
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

	joinRequest, err := tc.repo.GetJoinRequestByID(uint(requestID))
	if err != nil || joinRequest == nil {
		responses.SendError(c, http.StatusNotFound, "Join request not found")
		return
	}
	if joinRequest.TeamID != team.ID {
		responses.SendError(c, http.StatusBadRequest, "Join request does not belong to this team")
		return
	}

	if action == "accept" {
		accepted, err := tc.repo.AcceptJoinRequest(joinRequest.ID)
		switch {
		case errors.Is(err, ErrRequestNotPending):
			responses.SendError(c, http.StatusConflict, "Join request is not pending")
		case errors.Is(err, ErrTeamFull):
			responses.SendError(c, http.StatusConflict, "Team has reached its maximum capacity")
		case err != nil:
			responses.SendError(c, http.StatusInternalServerError, "Failed to accept join request: "+err.Error())
		default:
			tc.notifier.Notify(accepted.UserID, notification.KindJoinRequestAccepted, map[string]interface{}{
				"team_id": team.ID, "request_id": accepted.ID,
			})
			responses.SendSuccess(c, http.StatusOK, "Join request accepted and member added", accepted)
		}
		return
	}

	rejected, err := tc.repo.RejectJoinRequest(joinRequest.ID)
	switch {
	case errors.Is(err, ErrRequestNotPending):
		responses.SendError(c, http.StatusConflict, "Join request is not pending")
	case err != nil:
		responses.SendError(c, http.StatusInternalServerError, "Failed to reject join request: "+err.Error())
	default:
		tc.notifier.Notify(rejected.UserID, notification.KindJoinRequestRejected, map[string]interface{}{
			"team_id": team.ID, "request_id": rejected.ID,
		})
		responses.SendSuccess(c, http.StatusOK, "Join request rejected", rejected)
	}
}

// --- Invitation handlers ---

// CreateInvitation godoc
// @Summary Create a tokenized team invitation
// @Description Leaders only. The invitation expires after 7 days.
// @Tags Team Invitations
// @Produce json
// @Param team_id path uint true "Team ID"
// @Success 201 {object} responses.SuccessResponse{data=TeamInvitation}
// @Security ApiKeyAuth
// @Router /teams/{team_id}/invitations [post]
func (tc *TeamController) CreateInvitation(c *gin.Context) {
	userID, team, ok := tc.loadTeamForLeader(c)
	if !ok {
		return
	}

	var req CreateInvitationRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			responses.SendValidationError(c, validator.ParseError(err))
			return
		}
	}

	full, err := tc.repo.IsFull(team)
	if err != nil {
		responses.SendError(c, http.StatusInternalServerError, "Failed to check team capacity: "+err.Error())
		return
	}
	if full {
		responses.SendError(c, http.StatusConflict, "Team has reached its maximum capacity")
		return
	}

	invitation, err := tc.repo.CreateInvitation(team.ID, userID)
	if err != nil {
		responses.SendError(c, http.StatusInternalServerError, "Failed to create invitation: "+err.Error())
		return
	}

	if req.InviteeID != nil {
		tc.notifier.Notify(*req.InviteeID, notification.KindTeamInvitation, map[string]interface{}{
			"team_id": team.ID, "token": invitation.Token, "expires_at": invitation.ExpiresAt,
		})
	}
	responses.SendSuccess(c, http.StatusCreated, "Invitation created successfully", invitation)
}

// GetInvitationsForTeam godoc
// @Summary List a team's invitations
// @Description Leaders only.
// @Tags Team Invitations
// @Produce json
// @Param team_id path uint true "Team ID"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(10)
// @Success 200 {object} responses.PaginatedResponse{data=[]TeamInvitation}
// @Security ApiKeyAuth
// @Router /teams/{team_id}/invitations [get]
func (tc *TeamController) GetInvitationsForTeam(c *gin.Context) {
	_, team, ok := tc.loadTeamForLeader(c)
	if !ok {
		return
	}

	page, limit := pagination(c)
	invitations, total, err := tc.repo.GetInvitationsByTeamID(team.ID, page, limit)
	if err != nil {
		responses.SendError(c, http.StatusInternalServerError, "Failed to retrieve invitations: "+err.Error())
		return
	}
	responses.SendPaginated(c, http.StatusOK, "Invitations retrieved successfully", invitations, total, page, limit)
}

// GetInvitationByToken godoc
// @Summary Look up an invitation by token
// @Description Expired pending invitations transition to expired on first read.
// @Tags Team Invitations
// @Produce json
// @Param token path string true "Invitation token"
// @Success 200 {object} responses.SuccessResponse{data=TeamInvitation}
// @Failure 404 {object} responses.ErrorResponse "Invitation not found"
// @Router /invitations/{token} [get]
func (tc *TeamController) GetInvitationByToken(c *gin.Context) {
	invitation, err := tc.repo.GetInvitationByToken(c.Param("token"))
	if err != nil {
		responses.SendError(c, http.StatusInternalServerError, "Failed to retrieve invitation: "+err.Error())
		return
	}
	if invitation == nil {
		responses.SendError(c, http.StatusNotFound, "Invitation not found")
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Invitation retrieved successfully", invitation)
}

// AcceptInvitation godoc
// @Summary Accept a team invitation
// @Tags Team Invitations
// @Produce json
// @Param token path string true "Invitation token"
// @Success 200 {object} responses.SuccessResponse{data=TeamInvitation}
// @Failure 409 {object} responses.ErrorResponse "Expired, revoked or team full"
// @Security ApiKeyAuth
// @Router /invitations/{token}/accept [post]
func (tc *TeamController) AcceptInvitation(c *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.SendError(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	invitation, err := tc.repo.AcceptInvitation(c.Param("token"), userID)
	switch {
	case errors.Is(err, ErrInvitationNotFound):
		responses.SendError(c, http.StatusNotFound, "Invitation not found")
	case errors.Is(err, ErrInvitationExpired):
		responses.SendError(c, http.StatusConflict, "Invitation has expired")
	case errors.Is(err, ErrInvitationNotPending):
		responses.SendError(c, http.StatusConflict, "Invitation is no longer pending")
	case errors.Is(err, ErrTeamFull):
		responses.SendError(c, http.StatusConflict, "Team has reached its maximum capacity")
	case err != nil:
		responses.SendError(c, http.StatusInternalServerError, "Failed to accept invitation: "+err.Error())
	default:
		responses.SendSuccess(c, http.StatusOK, "Invitation accepted, welcome to the team", invitation)
	}
}

// RevokeInvitation godoc
// @Summary Revoke a pending invitation
// @Tags Team Invitations
// @Produce json
// @Param team_id path uint true "Team ID"
// @Param invitation_id path uint true "Invitation ID"
// @Success 200 {object} responses.SuccessResponse
// @Failure 409 {object} responses.ErrorResponse "Invitation is not pending"
// @Security ApiKeyAuth
// @Router /teams/{team_id}/invitations/{invitation_id} [delete]
func (tc *TeamController) RevokeInvitation(c *gin.Context) {
	if _, _, ok := tc.loadTeamForLeader(c); !ok {
		return
	}

	invitationID, err := strconv.ParseUint(c.Param("invitation_id"), 10, 32)
	if err != nil {
		responses.SendError(c, http.StatusBadRequest, "Invalid invitation ID")
		return
	}

	err = tc.repo.RevokeInvitation(uint(invitationID))
	switch {
	case errors.Is(err, ErrInvitationNotPending):
		responses.SendError(c, http.StatusConflict, "Only pending invitations can be revoked")
	case err != nil:
		responses.SendError(c, http.StatusInternalServerError, "Failed to revoke invitation: "+err.Error())
	default:
		responses.SendSuccess(c, http.StatusOK, "Invitation revoked successfully", nil)
	}
}

// --- helpers ---

// loadTeamForLeader resolves the team from the path and authorizes the caller
// as one of its leaders. Responds and returns ok=false on any failure.
func (tc *TeamController) loadTeamForLeader(c *gin.Context) (uint, *Team, bool) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.SendError(c, http.StatusUnauthorized, "User not authenticated")
		return 0, nil, false
	}

	teamID, err := strconv.ParseUint(c.Param("team_id"), 10, 32)
	if err != nil {
		responses.SendError(c, http.StatusBadRequest, "Invalid team ID")
		return 0, nil, false
	}

	team, err := tc.repo.GetTeamByID(uint(teamID))
	if err != nil {
		responses.SendError(c, http.StatusInternalServerError, "Failed to retrieve team: "+err.Error())
		return 0, nil, false
	}
	if team == nil {
		responses.SendError(c, http.StatusNotFound, "Team not found")
		return 0, nil, false
	}

	isLeader, err := tc.repo.IsLeader(team.ID, userID)
	if err != nil {
		responses.SendError(c, http.StatusInternalServerError, "Failed to check permissions: "+err.Error())
		return 0, nil, false
	}
	if !isLeader {
		responses.SendError(c, http.StatusForbidden, "Only team leaders can perform this action")
		return 0, nil, false
	}
	return userID, team, true
}

// notifyLeaders fans a notification out to every leader of a team.
func (tc *TeamController) notifyLeaders(teamID uint, kind notification.Kind, payload map[string]interface{}) {
	members, err := tc.repo.GetActiveMembers(teamID)
	if err != nil {
		zap.L().Warn("failed to load members for notification", zap.Uint("team_id", teamID), zap.Error(err))
		return
	}
	for _, m := range members {
		if m.IsLeader() {
			tc.notifier.Notify(m.UserID, kind, payload)
		}
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
