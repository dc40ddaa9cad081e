package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/clinsim-backend/internal/model"
	"github.com/stemsi/clinsim-backend/internal/response"
	"github.com/stemsi/clinsim-backend/internal/service"
)

// NotificationHandler exposes a student's alert notifications.
type NotificationHandler struct {
	svc *service.SimulationService
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(svc *service.SimulationService) *NotificationHandler {
	return &NotificationHandler{svc: svc}
}

// ListNotifications godoc
// GET /api/v1/simulations/students/:student_id/notifications?unread=true
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	unreadOnly, _ := strconv.ParseBool(c.DefaultQuery("unread", "false"))

	list, err := h.svc.ListNotifications(c.Request.Context(), c.Param("student_id"), unreadOnly)
	if err != nil {
		failFromError(c, err)
		return
	}
	if list == nil {
		list = []model.Notification{}
	}

	response.Success(c, http.StatusOK, gin.H{"notifications": list})
}

// MarkRead godoc
// POST /api/v1/simulations/students/:student_id/notifications/:notification_id/read
// Idempotent.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	studentID := c.Param("student_id")
	id := c.Param("notification_id")

	if err := h.svc.MarkNotificationRead(c.Request.Context(), studentID, id); err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"id": id, "read": true})
}
