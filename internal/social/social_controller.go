package social

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/golazo-app/golazo/internal/middleware"
	"github.com/golazo-app/golazo/internal/notification"
	"github.com/golazo-app/golazo/pkg/responses"
	"github.com/golazo-app/golazo/pkg/validator"
)

// SocialController handles commendation and profile comment HTTP requests.
type SocialController struct {
	repo     SocialRepository
	notifier notification.Notifier
}

// NewSocialController creates a new social controller.
func NewSocialController(repo SocialRepository, notifier notification.Notifier) *SocialController {
	return &SocialController{repo: repo, notifier: notifier}
}

type CreateCommendationRequest struct {
	Category CommendationCategory `json:"category" binding:"required,oneof=sportsmanship skill leadership teamwork reliability"`
	Comment  string               `json:"comment" binding:"max=500"`
}

type CreateProfileCommentRequest struct {
	Body string `json:"body" binding:"required,min=1,max=1000"`
}

// CreateCommendation godoc
// @Summary Commend a user
// @Description One commendation per category per (from, to) pair.
// @Tags Social
// @Accept json
// @Produce json
// @Param user_id path uint true "User to commend"
// @Param commendation body CreateCommendationRequest true "Commendation"
// @Success 201 {object} responses.SuccessResponse{data=Commendation}
// @Failure 409 {object} responses.ErrorResponse "Already commended in this category"
// @Security ApiKeyAuth
// @Router /users/{user_id}/commendations [post]
func (sc *SocialController) CreateCommendation(c *gin.Context) {
	fromUserID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.SendError(c, http.StatusUnauthorized, "User not authenticated")
		return
	}
	toUserID, err := strconv.ParseUint(c.Param("user_id"), 10, 32)
	if err != nil {
		responses.SendError(c, http.StatusBadRequest, "Invalid user ID")
		return
	}

	var req CreateCommendationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.SendValidationError(c, validator.ParseError(err))
		return
	}

	commendation := Commendation{
		FromUserID: fromUserID,
		ToUserID:   uint(toUserID),
		Category:   req.Category,
		Comment:    req.Comment,
	}
	err = sc.repo.CreateCommendation(&commendation)
	switch {
	case errors.Is(err, ErrSelfCommendation):
		responses.SendError(c, http.StatusBadRequest, "You cannot commend yourself")
	case errors.Is(err, ErrDuplicateCommendation):
		responses.SendError(c, http.StatusConflict, "You have already commended this user in this category")
	case err != nil:
		responses.SendError(c, http.StatusInternalServerError, "Failed to create commendation: "+err.Error())
	default:
		sc.notifier.Notify(uint(toUserID), notification.KindCommendationReceived, map[string]interface{}{
			"from_user_id": fromUserID, "category": req.Category,
		})
		responses.SendSuccess(c, http.StatusCreated, "Commendation sent successfully", commendation)
	}
}

// GetCommendations godoc
// @Summary List a user's received commendations with per-category counts
// @Tags Social
// @Produce json
// @Param user_id path uint true "User ID"
// @Success 200 {object} responses.SuccessResponse
// @Router /users/{user_id}/commendations [get]
func (sc *SocialController) GetCommendations(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("user_id"), 10, 32)
	if err != nil {
		responses.SendError(c, http.StatusBadRequest, "Invalid user ID")
		return
	}

	commendations, err := sc.repo.GetCommendationsForUser(uint(userID))
	if err != nil {
		responses.SendError(c, http.StatusInternalServerError, "Failed to retrieve commendations: "+err.Error())
		return
	}
	counts, err := sc.repo.CountCommendationsByCategory(uint(userID))
	if err != nil {
		responses.SendError(c, http.StatusInternalServerError, "Failed to count commendations: "+err.Error())
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Commendations retrieved successfully", gin.H{
		"commendations": commendations,
		"counts":        counts,
	})
}

// CreateProfileComment godoc
// @Summary Leave a comment on a user's profile
// @Tags Social
// @Accept json
// @Produce json
// @Param user_id path uint true "Profile user ID"
// @Param comment body CreateProfileCommentRequest true "Comment body"
// @Success 201 {object} responses.SuccessResponse{data=ProfileComment}
// @Security ApiKeyAuth
// @Router /users/{user_id}/comments [post]
func (sc *SocialController) CreateProfileComment(c *gin.Context) {
	authorID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.SendError(c, http.StatusUnauthorized, "User not authenticated")
		return
	}
	profileUserID, err := strconv.ParseUint(c.Param("user_id"), 10, 32)
	if err != nil {
		responses.SendError(c, http.StatusBadRequest, "Invalid user ID")
		return
	}

	var req CreateProfileCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.SendValidationError(c, validator.ParseError(err))
		return
	}

	comment := ProfileComment{
		ProfileUserID: uint(profileUserID),
		AuthorID:      authorID,
		Body:          req.Body,
	}
	if err := sc.repo.CreateProfileComment(&comment); err != nil {
		responses.SendError(c, http.StatusInternalServerError, "Failed to create comment: "+err.Error())
		return
	}

	if uint(profileUserID) != authorID {
		sc.notifier.Notify(uint(profileUserID), notification.KindProfileComment, map[string]interface{}{
			"author_id": authorID, "comment_id": comment.ID,
		})
	}
	responses.SendSuccess(c, http.StatusCreated, "Comment posted successfully", comment)
}

// GetProfileComments godoc
// @Summary List a user's profile comments
// @Tags Social
// @Produce json
// @Param user_id path uint true "Profile user ID"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(10)
// @Success 200 {object} responses.PaginatedResponse{data=[]ProfileComment}
// @Router /users/{user_id}/comments [get]
func (sc *SocialController) GetProfileComments(c *gin.Context) {
	profileUserID, err := strconv.ParseUint(c.Param("user_id"), 10, 32)
	if err != nil {
		responses.SendError(c, http.StatusBadRequest, "Invalid user ID")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}

	comments, total, err := sc.repo.GetProfileComments(uint(profileUserID), page, limit)
	if err != nil {
		responses.SendError(c, http.StatusInternalServerError, "Failed to retrieve comments: "+err.Error())
		return
	}
	responses.SendPaginated(c, http.StatusOK, "Comments retrieved successfully", comments, total, page, limit)
}

// DeleteProfileComment godoc
// @Summary Delete a profile comment as its author or the profile owner
// @Tags Social
// @Produce json
// @Param user_id path uint true "Profile user ID"
// @Param comment_id path uint true "Comment ID"
// @Success 200 {object} responses.SuccessResponse
// @Failure 403 {object} responses.ErrorResponse "Not the comment author"
// @Security ApiKeyAuth
// @Router /users/{user_id}/comments/{comment_id} [delete]
func (sc *SocialController) DeleteProfileComment(c *gin.Context) {
	authorID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.SendError(c, http.StatusUnauthorized, "User not authenticated")
		return
	}
	commentID, err := strconv.ParseUint(c.Param("comment_id"), 10, 32)
	if err != nil {
		responses.SendError(c, http.StatusBadRequest, "Invalid comment ID")
		return
	}

	err = sc.repo.DeleteProfileComment(uint(commentID), authorID)
	switch {
	case errors.Is(err, ErrCommentNotFound):
		responses.SendError(c, http.StatusNotFound, "Comment not found")
	case errors.Is(err, ErrNotCommentAuthor):
		responses.SendError(c, http.StatusForbidden, "Only the comment author or the profile owner can delete this comment")
	case err != nil:
		responses.SendError(c, http.StatusInternalServerError, "Failed to delete comment: "+err.Error())
	default:
		responses.SendSuccess(c, http.StatusOK, "Comment deleted successfully", nil)
	}
}
