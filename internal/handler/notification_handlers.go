package handler

import (
	"net/http"

	"github.com/mtlprog/taskdesk/internal/handler/dto"
)

// handleListNotifications lists the caller's notifications, newest first.
// @Summary List notifications
// @Tags notifications
// @Produce json
// @Success 200 {array} dto.NotificationResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /notifications [get]
func (h *Handler) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	notifications, err := h.notificationService.ListForRecipient(r.Context(), user)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NotificationsFromDomain(notifications))
}

// handleMarkNotificationRead marks a notification as read.
// @Summary Mark notification read
// @Tags notifications
// @Produce json
// @Param id path string true "Notification ID"
// @Success 200 {object} dto.MarkReadResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /notifications/{id}/read [get]
func (h *Handler) handleMarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	notificationID, ok := extractID(w, r, "notification")
	if !ok {
		return
	}

	notification, err := h.notificationService.MarkRead(r.Context(), notificationID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.MarkReadResponse{
		Message:             "Marked as read",
		UpdatedNotification: dto.NotificationFromDomain(notification),
	})
}
