package notification

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/crewplan/crewplan/internal/rest"
	"github.com/crewplan/crewplan/pkg/user"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type NotificationDTO struct {
	Id          int    `json:"id"`
	Message     string `json:"message"`
	IsRead      bool   `json:"isRead"`
	CreatedTime string `json:"createdTime"`
}

type Handler struct {
	notificationService Service
}

func NewHandler(notificationService Service) *Handler {
	return &Handler{notificationService: notificationService}
}

// ListNotifications godoc
// @Summary List the caller's notifications
// @Tags Notification
// @Produce json
// @Success 200 {array} NotificationDTO
// @Router /api/notification [get]
func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	userId, err := user.CurrentId(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	notifications, err := h.notificationService.ListNotifications(r.Context(), userId)
	if err != nil {
		log.Errorf("failed to list notifications: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	dtos := make([]NotificationDTO, 0, len(notifications))
	for _, notification := range notifications {
		dtos = append(dtos, NotificationDTO{
			Id:          notification.Id,
			Message:     notification.Message,
			IsRead:      notification.IsRead,
			CreatedTime: notification.CreatedTime.Format(time.RFC3339),
		})
	}
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// MarkRead godoc
// @Summary Mark a notification as read
// @Tags Notification
// @Success 204
// @Failure 404 {object} rest.ErrorResponse "Notification not found"
// @Router /api/notification/{notificationId}/read [patch]
func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	userId, err := user.CurrentId(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	notificationId, err := strconv.Atoi(mux.Vars(r)["notificationId"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid notification id")
		return
	}

	if err := h.notificationService.MarkRead(r.Context(), userId, notificationId); err != nil {
		if errors.Is(err, ErrNotificationNotFound) {
			writeError(w, http.StatusNotFound, "Notification not found")
			return
		}
		log.Errorf("failed to mark notification read: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MarkAllRead godoc
// @Summary Mark all of the caller's notifications as read
// @Tags Notification
// @Success 204
// @Router /api/notification/read [patch]
func (h *Handler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	userId, err := user.CurrentId(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	if err := h.notificationService.MarkAllRead(r.Context(), userId); err != nil {
		log.Errorf("failed to mark notifications read: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.WriteHeader(status)
	encodeErr := json.NewEncoder(w).Encode(rest.ErrorResponse{
		Error: message,
	})
	if encodeErr != nil {
		http.Error(w, encodeErr.Error(), http.StatusInternalServerError)
	}
}
