package notification

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/golazo-app/golazo/internal/middleware"
	"github.com/golazo-app/golazo/pkg/responses"
)

// NotificationController handles notification read endpoints.
type NotificationController struct {
	repo NotificationRepository
}

// NewNotificationController creates a new notification controller.
func NewNotificationController(repo NotificationRepository) *NotificationController {
	return &NotificationController{repo: repo}
}

// ListMyNotifications godoc
// @Summary List the authenticated user's notifications
// @Tags Notifications
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Param unread query bool false "Only unread notifications" default(false)
// @Success 200 {object} responses.PaginatedResponse{data=[]Notification}
// @Security ApiKeyAuth
// @Router /notifications [get]
func (nc *NotificationController) ListMyNotifications(c *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.SendError(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	unreadOnly, _ := strconv.ParseBool(c.DefaultQuery("unread", "false"))

	items, total, err := nc.repo.GetByUserID(userID, unreadOnly, page, limit)
	if err != nil {
		responses.SendError(c, http.StatusInternalServerError, "Failed to retrieve notifications: "+err.Error())
		return
	}
	responses.SendPaginated(c, http.StatusOK, "Notifications retrieved successfully", items, total, page, limit)
}

// MarkNotificationRead godoc
// @Summary Mark one of the authenticated user's notifications as read
// @Tags Notifications
// @Produce json
// @Param id path uint true "Notification ID"
// @Success 200 {object} responses.SuccessResponse
// @Failure 404 {object} responses.ErrorResponse "Notification not found"
// @Security ApiKeyAuth
// @Router /notifications/{id}/read [post]
func (nc *NotificationController) MarkNotificationRead(c *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.SendError(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		responses.SendError(c, http.StatusBadRequest, "Invalid notification ID")
		return
	}

	if err := nc.repo.MarkRead(uint(id), userID); err != nil {
		responses.SendError(c, http.StatusNotFound, "Notification not found or already read")
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Notification marked as read", nil)
}
