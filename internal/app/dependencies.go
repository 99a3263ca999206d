package app

import (
	"time"

	"github.com/crewplan/crewplan/internal/auth"
	"github.com/crewplan/crewplan/internal/config"
	"github.com/crewplan/crewplan/internal/event_bus"
	"github.com/crewplan/crewplan/pkg/google"
	"github.com/crewplan/crewplan/pkg/notification"
	"github.com/crewplan/crewplan/pkg/schedule"
	"github.com/crewplan/crewplan/pkg/team"
	"github.com/crewplan/crewplan/pkg/user"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	TokenIssuer    *auth.TokenIssuer
	TokenValidator *auth.TokenValidator
	EventBus       *event_bus.EventBus

	UserService user.Service
	UserHandler *user.Handler

	TeamService team.Service
	TeamHandler *team.Handler

	ScheduleService schedule.Service
	ScheduleHandler *schedule.Handler

	NotificationService notification.Service
	NotificationHandler *notification.Handler

	GoogleAuth    *google.GoogleAuth
	GoogleService google.Service
	GoogleHandler *google.Handler
}

// BuildDependencies initializes and wires all application services and handlers.
func BuildDependencies(db *pgxpool.Pool, cfg config.Application) *Dependencies {
	deps := &Dependencies{}

	deps.TokenIssuer = auth.NewTokenIssuer(cfg.Auth.Secret, time.Duration(cfg.Auth.TokenTtlMinutes)*time.Minute)
	deps.TokenValidator = auth.NewTokenValidator(cfg.Auth.Secret)
	deps.EventBus = event_bus.NewEventBus()

	deps.UserService = user.NewUserService(user.NewUserRepo(db))
	deps.UserHandler = user.NewHandler(deps.UserService, deps.TokenIssuer)

	deps.TeamService = team.NewTeamService(team.NewTeamRepo(db), deps.UserService, deps.EventBus)
	deps.TeamHandler = team.NewHandler(deps.TeamService)

	deps.ScheduleService = schedule.NewScheduleService(schedule.NewScheduleRepo(db), deps.UserService, deps.TeamService)
	deps.ScheduleHandler = schedule.NewHandler(deps.ScheduleService)

	notificationService := notification.NewNotificationService(notification.NewNotificationRepo(db))
	notificationService.RegisterSubscriptions(deps.EventBus)
	deps.NotificationService = notificationService
	deps.NotificationHandler = notification.NewHandler(deps.NotificationService)

	deps.GoogleAuth = google.NewGoogleAuth(db, deps.UserService, cfg)
	deps.GoogleService = google.NewService(deps.GoogleAuth, deps.ScheduleService)
	deps.GoogleHandler = google.NewHandler(deps.GoogleService)

	return deps
}
