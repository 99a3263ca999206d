package team

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

type TeamRequestDTO struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Members     []int  `json:"members"`
}

type TeamSummaryDTO struct {
	Id          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Role        Role   `json:"role"`
}

type TeamDetailDTO struct {
	Id          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	CreatedTime string `json:"createdTime"`
}

type MemberDTO struct {
	Id       int    `json:"id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Position string `json:"position"`
	Dept     string `json:"dept"`
}

type AddMemberDTO struct {
	UserId int `json:"userId"`
}

type TransferLeadershipDTO struct {
	UserId int `json:"userId"`
}

type Handler struct {
	teamService Service
}

func NewHandler(teamService Service) *Handler {
	return &Handler{teamService: teamService}
}

// CreateTeam godoc
// @Summary Create a team
// @Description Create a team with the caller as leader and an optional initial member list
// @Tags Team
// @Accept json
// @Produce json
// @Param team body TeamRequestDTO true "Team"
// @Success 201 {object} TeamDetailDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid request"
// @Failure 404 {object} rest.ErrorResponse "Unknown member id"
// @Router /api/team [post]
func (h *Handler) CreateTeam(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	userId, err := user.CurrentId(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var req TeamRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body format")
		return
	}
	if len(req.Name) == 0 {
		writeError(w, http.StatusBadRequest, "Team name is required")
		return
	}

	created, err := h.teamService.CreateTeam(r.Context(), userId, req.Name, req.Description, req.Members)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(teamToDetailDTO(created)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// ListTeams godoc
// @Summary List the caller's teams
// @Description List every team the caller belongs to, annotated with the caller's role
// @Tags Team
// @Produce json
// @Success 200 {array} TeamSummaryDTO
// @Router /api/team [get]
func (h *Handler) ListTeams(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	userId, err := user.CurrentId(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	teams, err := h.teamService.ListTeams(r.Context(), userId)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	dtos := make([]TeamSummaryDTO, 0, len(teams))
	for _, t := range teams {
		dtos = append(dtos, TeamSummaryDTO{Id: t.Id, Name: t.Name, Description: t.Description, Role: t.Role})
	}
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// GetTeamDetail godoc
// @Summary Get team detail
// @Tags Team
// @Produce json
// @Success 200 {object} TeamDetailDTO
// @Failure 403 {object} rest.ErrorResponse "Not a member"
// @Failure 404 {object} rest.ErrorResponse "Team not found"
// @Router /api/team/{teamId} [get]
func (h *Handler) GetTeamDetail(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	userId, teamId, ok := h.callerAndTeam(w, r)
	if !ok {
		return
	}

	detail, err := h.teamService.GetTeamDetail(r.Context(), userId, teamId)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	if err := json.NewEncoder(w).Encode(TeamDetailDTO{
		Id:          detail.Id,
		Name:        detail.Name,
		Description: detail.Description,
		CreatedTime: detail.CreatedTime.Format(time.RFC3339),
	}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// ListMembers godoc
// @Summary List team members
// @Description List all members of a team; any member may call this
// @Tags Team
// @Produce json
// @Success 200 {array} MemberDTO
// @Failure 403 {object} rest.ErrorResponse "Not a member"
// @Router /api/team/{teamId}/member [get]
func (h *Handler) ListMembers(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	userId, teamId, ok := h.callerAndTeam(w, r)
	if !ok {
		return
	}

	members, err := h.teamService.ListMembers(r.Context(), userId, teamId)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	dtos := make([]MemberDTO, 0, len(members))
	for _, m := range members {
		dtos = append(dtos, MemberDTO{Id: m.Id, Email: m.Email, Name: m.Name, Position: m.Position, Dept: m.Dept})
	}
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// AddMember godoc
// @Summary Add a member
// @Description Add a user to the team; leader only
// @Tags Team
// @Accept json
// @Success 201
// @Failure 403 {object} rest.ErrorResponse "Not the leader"
// @Failure 404 {object} rest.ErrorResponse "User or team not found"
// @Router /api/team/{teamId}/member [post]
func (h *Handler) AddMember(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	userId, teamId, ok := h.callerAndTeam(w, r)
	if !ok {
		return
	}

	var req AddMemberDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body format")
		return
	}

	if err := h.teamService.AddMember(r.Context(), userId, teamId, req.UserId); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

// RemoveMember godoc
// @Summary Remove a member
// @Description Remove a member from the team; leader only, the leader itself cannot be removed
// @Tags Team
// @Success 204
// @Failure 400 {object} rest.ErrorResponse "Leader cannot be removed"
// @Failure 403 {object} rest.ErrorResponse "Not the leader"
// @Failure 404 {object} rest.ErrorResponse "Member not found"
// @Router /api/team/{teamId}/member/{memberId} [delete]
func (h *Handler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	userId, teamId, ok := h.callerAndTeam(w, r)
	if !ok {
		return
	}
	memberId, err := strconv.Atoi(mux.Vars(r)["memberId"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid member id")
		return
	}

	if err := h.teamService.RemoveMember(r.Context(), userId, teamId, memberId); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RenameTeam godoc
// @Summary Update team name and description
// @Tags Team
// @Accept json
// @Success 204
// @Failure 403 {object} rest.ErrorResponse "Not the leader"
// @Failure 404 {object} rest.ErrorResponse "Team not found"
// @Router /api/team/{teamId} [put]
func (h *Handler) RenameTeam(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	userId, teamId, ok := h.callerAndTeam(w, r)
	if !ok {
		return
	}

	var req TeamRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body format")
		return
	}
	if len(req.Name) == 0 {
		writeError(w, http.StatusBadRequest, "Team name is required")
		return
	}

	if err := h.teamService.RenameTeam(r.Context(), userId, teamId, req.Name, req.Description); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteTeam godoc
// @Summary Delete a team
// @Description Delete the team and all its memberships; leader only
// @Tags Team
// @Success 204
// @Failure 403 {object} rest.ErrorResponse "Not the leader"
// @Failure 404 {object} rest.ErrorResponse "Team not found"
// @Router /api/team/{teamId} [delete]
func (h *Handler) DeleteTeam(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	userId, teamId, ok := h.callerAndTeam(w, r)
	if !ok {
		return
	}

	if err := h.teamService.DeleteTeam(r.Context(), userId, teamId); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// TransferLeadership godoc
// @Summary Transfer team leadership
// @Description Atomically demote the caller to member and promote the given member to leader
// @Tags Team
// @Accept json
// @Success 204
// @Failure 403 {object} rest.ErrorResponse "Not the leader or target not a member"
// @Router /api/team/{teamId}/leader [patch]
func (h *Handler) TransferLeadership(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	userId, teamId, ok := h.callerAndTeam(w, r)
	if !ok {
		return
	}

	var req TransferLeadershipDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body format")
		return
	}

	if err := h.teamService.TransferLeadership(r.Context(), userId, teamId, req.UserId); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CheckRole godoc
// @Summary Check whether the caller leads the team
// @Tags Team
// @Produce json
// @Success 200 {boolean} bool
// @Failure 403 {object} rest.ErrorResponse "Not a member or not the leader"
// @Router /api/team/{teamId}/role [get]
func (h *Handler) CheckRole(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	userId, teamId, ok := h.callerAndTeam(w, r)
	if !ok {
		return
	}

	isLeader, err := h.teamService.CheckRole(r.Context(), userId, teamId)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	if err := json.NewEncoder(w).Encode(isLeader); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) callerAndTeam(w http.ResponseWriter, r *http.Request) (int, int, bool) {
	userId, err := user.CurrentId(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return 0, 0, false
	}
	teamId, err := strconv.Atoi(mux.Vars(r)["teamId"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid team id")
		return 0, 0, false
	}
	return userId, teamId, true
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, user.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "User not found")
	case errors.Is(err, ErrTeamNotFound):
		writeError(w, http.StatusNotFound, "Team not found")
	case errors.Is(err, ErrMemberNotFound):
		writeError(w, http.StatusNotFound, "Member not found")
	case errors.Is(err, ErrNotMember):
		writeError(w, http.StatusForbidden, "Not a member of this team")
	case errors.Is(err, ErrNotLeader):
		writeError(w, http.StatusForbidden, "Only the team leader may do this")
	case errors.Is(err, ErrLeaderNotRemovable):
		writeError(w, http.StatusBadRequest, "The leader cannot be removed, transfer leadership first")
	default:
		log.Errorf("team operation failed: %v", err)
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

func teamToDetailDTO(t Team) TeamDetailDTO {
	return TeamDetailDTO{
		Id:          t.Id,
		Name:        t.Name,
		Description: t.Description,
		CreatedTime: t.CreatedTime.Format(time.RFC3339),
	}
}
