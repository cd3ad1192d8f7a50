package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yigit/studentdesk/internal/app/models"
	"github.com/yigit/studentdesk/internal/app/models/dto"
	"github.com/yigit/studentdesk/internal/middleware"
	"github.com/yigit/studentdesk/internal/pkg/apperrors"
)

// NotificationSource is the part of the notification channel the views read
type NotificationSource interface {
	Active() []models.Notification
	Dismiss(id int64) bool
}

// NotificationController exposes the toast queue
type NotificationController struct {
	notifications NotificationSource
}

// NewNotificationController creates a new NotificationController
func NewNotificationController(notifications NotificationSource) *NotificationController {
	return &NotificationController{notifications: notifications}
}

// ListNotifications returns the visible notifications, oldest first
// @Summary List notifications
// @Tags notifications
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.NotificationListResponse}
// @Router /notifications [get]
func (c *NotificationController) ListNotifications(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.NotificationListResponse{
		Notifications: c.notifications.Active(),
	}, ""))
}

// DismissNotification removes a notification before it expires
// @Summary Dismiss notification
// @Tags notifications
// @Param id path int true "Notification ID"
// @Success 204
// @Failure 404 {object} dto.ErrorResponse
// @Router /notifications/{id} [delete]
func (c *NotificationController) DismissNotification(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid notification ID")
		errorDetail = errorDetail.WithDetails("Notification ID must be a valid number")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	if !c.notifications.Dismiss(id) {
		middleware.HandleAPIError(ctx, apperrors.NewResourceNotFoundError("notification not found"))
		return
	}
	ctx.Status(http.StatusNoContent)
}
