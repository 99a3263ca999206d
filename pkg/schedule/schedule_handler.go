package schedule

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/crewplan/crewplan/internal/rest"
	"github.com/crewplan/crewplan/pkg/team"
	"github.com/crewplan/crewplan/pkg/user"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type ScheduleRequestDTO struct {
	Summary     string       `json:"summary"`
	Description string       `json:"description"`
	StartTime   time.Time    `json:"startTime"`
	EndTime     time.Time    `json:"endTime"`
	Type        ScheduleType `json:"type,omitempty"`
}

type ScheduleDTO struct {
	Id          int          `json:"id"`
	Summary     string       `json:"summary"`
	Description string       `json:"description"`
	StartTime   time.Time    `json:"startTime"`
	EndTime     time.Time    `json:"endTime"`
	Type        ScheduleType `json:"type"`
}

type TimeSlotDTO struct {
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
}

type Handler struct {
	scheduleService Service
}

func NewHandler(scheduleService Service) *Handler {
	return &Handler{scheduleService: scheduleService}
}

// CreateSchedule godoc
// @Summary Create a personal schedule
// @Description Create a schedule owned by the caller; overlapping schedules are allowed
// @Tags Schedule
// @Accept json
// @Produce json
// @Param schedule body ScheduleRequestDTO true "Schedule"
// @Success 201 {object} ScheduleDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid request"
// @Router /api/schedule [post]
func (h *Handler) CreateSchedule(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	userId, err := user.CurrentId(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var req ScheduleRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body format")
		return
	}
	if !req.EndTime.After(req.StartTime) {
		writeError(w, http.StatusBadRequest, "End time must be after start time")
		return
	}
	scheduleType := req.Type
	if scheduleType == "" {
		scheduleType = TypePersonal
	}

	created, err := h.scheduleService.CreateSchedule(r.Context(), userId,
		req.Summary, req.Description, req.StartTime, req.EndTime, scheduleType)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(scheduleToDTO(created)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// GetSchedules godoc
// @Summary List the caller's schedules in a day range
// @Description Return schedules starting between the start and end days, both inclusive
// @Tags Schedule
// @Produce json
// @Param start query string true "Start day (yyyyMMdd)"
// @Param end query string true "End day (yyyyMMdd)"
// @Success 200 {array} ScheduleDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid day"
// @Router /api/schedule [get]
func (h *Handler) GetSchedules(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	userId, err := user.CurrentId(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	startDay := r.URL.Query().Get("start")
	endDay := r.URL.Query().Get("end")

	schedules, err := h.scheduleService.GetPrivateSchedules(r.Context(), userId, startDay, endDay)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	dtos := make([]ScheduleDTO, 0, len(schedules))
	for _, schedule := range schedules {
		dtos = append(dtos, scheduleToDTO(schedule))
	}
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// ModifySchedule godoc
// @Summary Modify a personal schedule
// @Description Replace summary, description and time range; conference schedules are rejected
// @Tags Schedule
// @Accept json
// @Success 204
// @Failure 400 {object} rest.ErrorResponse "Conference schedule"
// @Failure 403 {object} rest.ErrorResponse "Not the owner"
// @Failure 404 {object} rest.ErrorResponse "Schedule not found"
// @Router /api/schedule/{scheduleId} [put]
func (h *Handler) ModifySchedule(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	userId, scheduleId, ok := h.callerAndSchedule(w, r)
	if !ok {
		return
	}

	var req ScheduleRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body format")
		return
	}
	if !req.EndTime.After(req.StartTime) {
		writeError(w, http.StatusBadRequest, "End time must be after start time")
		return
	}

	err := h.scheduleService.ModifySchedule(r.Context(), userId, scheduleId,
		req.Summary, req.Description, req.StartTime, req.EndTime)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteSchedule godoc
// @Summary Delete a personal schedule
// @Description Delete the schedule and return its pre-deletion snapshot
// @Tags Schedule
// @Produce json
// @Success 200 {object} ScheduleDTO
// @Failure 403 {object} rest.ErrorResponse "Not the owner"
// @Failure 404 {object} rest.ErrorResponse "Schedule not found"
// @Router /api/schedule/{scheduleId} [delete]
func (h *Handler) DeleteSchedule(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	userId, scheduleId, ok := h.callerAndSchedule(w, r)
	if !ok {
		return
	}

	snapshot, err := h.scheduleService.DeleteSchedule(r.Context(), userId, scheduleId)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	if err := json.NewEncoder(w).Encode(scheduleToDTO(snapshot)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// GetTeamSlots godoc
// @Summary Team availability for a day
// @Description Return the busy intervals of every member on the given day; leader only, no content is exposed
// @Tags Schedule
// @Produce json
// @Param day query string true "Day (yyyyMMdd)"
// @Success 200 {array} TimeSlotDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid day"
// @Failure 403 {object} rest.ErrorResponse "Not a member or not the leader"
// @Router /api/team/{teamId}/schedule [get]
func (h *Handler) GetTeamSlots(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	userId, err := user.CurrentId(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	teamId, err := strconv.Atoi(mux.Vars(r)["teamId"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid team id")
		return
	}
	day := r.URL.Query().Get("day")

	slots, err := h.scheduleService.GetTeamSlots(r.Context(), userId, teamId, day)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	dtos := make([]TimeSlotDTO, 0, len(slots))
	for _, slot := range slots {
		dtos = append(dtos, TimeSlotDTO{StartTime: slot.StartTime, EndTime: slot.EndTime})
	}
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) callerAndSchedule(w http.ResponseWriter, r *http.Request) (int, int, bool) {
	userId, err := user.CurrentId(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return 0, 0, false
	}
	scheduleId, err := strconv.Atoi(mux.Vars(r)["scheduleId"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid schedule id")
		return 0, 0, false
	}
	return userId, scheduleId, true
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, user.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "User not found")
	case errors.Is(err, ErrScheduleNotFound):
		writeError(w, http.StatusNotFound, "Schedule not found")
	case errors.Is(err, ErrNotOwner):
		writeError(w, http.StatusForbidden, "Schedule belongs to another user")
	case errors.Is(err, ErrConferenceReadOnly):
		writeError(w, http.StatusBadRequest, "Conference schedules cannot be modified")
	case errors.Is(err, ErrInvalidDate):
		writeError(w, http.StatusBadRequest, "Invalid day, expected yyyyMMdd")
	case errors.Is(err, team.ErrNotMember):
		writeError(w, http.StatusForbidden, "Not a member of this team")
	case errors.Is(err, team.ErrNotLeader):
		writeError(w, http.StatusForbidden, "Only the team leader may see member availability")
	default:
		log.Errorf("schedule operation failed: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
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

func scheduleToDTO(schedule Schedule) ScheduleDTO {
	return ScheduleDTO{
		Id:          schedule.Id,
		Summary:     schedule.Summary,
		Description: schedule.Description,
		StartTime:   schedule.StartTime,
		EndTime:     schedule.EndTime,
		Type:        schedule.Type,
	}
}
