package google

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/crewplan/crewplan/pkg/schedule"
)

type CalendarItemDto struct {
	Id      string `json:"id"`
	Summary string `json:"summary"`
}

type ExportRequestDto struct {
	CalendarId string `json:"calendarId"`
	StartDay   string `json:"startDay"`
	EndDay     string `json:"endDay"`
}

type ExportResultDto struct {
	Exported int `json:"exported"`
}

type Handler struct {
	service Service
}

func NewHandler(s Service) *Handler {
	return &Handler{s}
}

func (h *Handler) ListCalendars(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	calendars, err := h.service.ListCalendars(r.Context())
	if err != nil {
		if errors.Is(err, ErrUnauthenticated) {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	calendarItems := make([]CalendarItemDto, 0, len(calendars))
	for _, c := range calendars {
		calendarItems = append(calendarItems, toCalendarItemDto(c))
	}

	if err := json.NewEncoder(w).Encode(calendarItems); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *Handler) ExportSchedules(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var req ExportRequestDto
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body format", http.StatusBadRequest)
		return
	}
	if req.CalendarId == "" {
		http.Error(w, "calendarId is required", http.StatusBadRequest)
		return
	}

	exported, err := h.service.ExportSchedules(r.Context(), req.CalendarId, req.StartDay, req.EndDay)
	if err != nil {
		switch {
		case errors.Is(err, ErrUnauthenticated):
			w.WriteHeader(http.StatusForbidden)
		case errors.Is(err, schedule.ErrInvalidDate):
			http.Error(w, "Invalid day, expected yyyyMMdd", http.StatusBadRequest)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(ExportResultDto{Exported: exported}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func toCalendarItemDto(ci CalendarItem) CalendarItemDto {
	return CalendarItemDto{
		Id:      ci.ID,
		Summary: ci.Summary,
	}
}
