package app

import (
	"github.com/crewplan/crewplan/internal/config"
	"github.com/gorilla/mux"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies, cfg config.Application) {

	// Authentication
	r.HandleFunc("/api/auth/signup", deps.UserHandler.SignUp).Methods("POST")
	r.HandleFunc("/api/auth/login", deps.UserHandler.Login).Methods("POST")

	// User management
	r.HandleFunc("/api/user/current", deps.UserHandler.CurrentUser).Methods("GET")
	r.HandleFunc("/api/user", deps.UserHandler.GetAvailableUsers).Methods("GET")
	r.HandleFunc("/api/user/current/photo", deps.UserHandler.UploadPhoto).Methods("PUT")
	r.HandleFunc("/api/user/current/photo", deps.UserHandler.GetPhoto).Methods("GET")
	r.HandleFunc("/api/user/current/photo", deps.UserHandler.DeletePhoto).Methods("DELETE")
	r.HandleFunc("/api/user/{userId}/photo", deps.UserHandler.GetPhoto).Methods("GET")

	// Teams
	r.HandleFunc("/api/team", deps.TeamHandler.CreateTeam).Methods("POST")
	r.HandleFunc("/api/team", deps.TeamHandler.ListTeams).Methods("GET")
	r.HandleFunc("/api/team/{teamId}", deps.TeamHandler.GetTeamDetail).Methods("GET")
	r.HandleFunc("/api/team/{teamId}", deps.TeamHandler.RenameTeam).Methods("PUT")
	r.HandleFunc("/api/team/{teamId}", deps.TeamHandler.DeleteTeam).Methods("DELETE")
	r.HandleFunc("/api/team/{teamId}/member", deps.TeamHandler.ListMembers).Methods("GET")
	r.HandleFunc("/api/team/{teamId}/member", deps.TeamHandler.AddMember).Methods("POST")
	r.HandleFunc("/api/team/{teamId}/member/{memberId}", deps.TeamHandler.RemoveMember).Methods("DELETE")
	r.HandleFunc("/api/team/{teamId}/leader", deps.TeamHandler.TransferLeadership).Methods("PATCH")
	r.HandleFunc("/api/team/{teamId}/role", deps.TeamHandler.CheckRole).Methods("GET")

	// Schedules
	r.HandleFunc("/api/schedule", deps.ScheduleHandler.CreateSchedule).Methods("POST")
	r.HandleFunc("/api/schedule", deps.ScheduleHandler.GetSchedules).Queries("start", "{start}", "end", "{end}").Methods("GET")
	r.HandleFunc("/api/schedule/{scheduleId}", deps.ScheduleHandler.ModifySchedule).Methods("PUT")
	r.HandleFunc("/api/schedule/{scheduleId}", deps.ScheduleHandler.DeleteSchedule).Methods("DELETE")
	r.HandleFunc("/api/team/{teamId}/schedule", deps.ScheduleHandler.GetTeamSlots).Queries("day", "{day}").Methods("GET")

	// Notifications
	r.HandleFunc("/api/notification", deps.NotificationHandler.ListNotifications).Methods("GET")
	r.HandleFunc("/api/notification/read", deps.NotificationHandler.MarkAllRead).Methods("PATCH")
	r.HandleFunc("/api/notification/{notificationId}/read", deps.NotificationHandler.MarkRead).Methods("PATCH")

	// Google integration
	r.HandleFunc("/api/integrations/google/auth/login", deps.GoogleAuth.OAuthLogin).Methods("GET")
	r.HandleFunc("/api/integrations/google/auth/logout", deps.GoogleAuth.OAuthLogout).Methods("DELETE")
	r.HandleFunc("/api/integrations/google/auth/callback", deps.GoogleAuth.OAuthCallback).Methods("GET")
	r.HandleFunc("/api/integrations/google/calendars", deps.GoogleHandler.ListCalendars).Methods("GET")
	r.HandleFunc("/api/integrations/google/export", deps.GoogleHandler.ExportSchedules).Methods("POST")
}
