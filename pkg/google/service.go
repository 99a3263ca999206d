package google

import (
	"context"
	"fmt"

	"github.com/crewplan/crewplan/pkg/schedule"
	"github.com/crewplan/crewplan/pkg/user"
	log "github.com/sirupsen/logrus"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

type CalendarItem struct {
	ID      string
	Summary string
}

// ScheduleSource provides the schedules to export. Satisfied by
// schedule.Service.
type ScheduleSource interface {
	GetPrivateSchedules(ctx context.Context, userId int, startDay, endDay string) ([]schedule.Schedule, error)
}

type Service interface {
	ListCalendars(ctx context.Context) ([]CalendarItem, error)
	// ExportSchedules copies the caller's schedules from the inclusive day range
	// into the given Google calendar and returns how many events were created.
	ExportSchedules(ctx context.Context, calendarId, startDay, endDay string) (int, error)
}

type ServiceImpl struct {
	auth      *GoogleAuth
	schedules ScheduleSource
}

func NewService(auth *GoogleAuth, schedules ScheduleSource) *ServiceImpl {
	return &ServiceImpl{
		auth:      auth,
		schedules: schedules,
	}
}

func (s *ServiceImpl) ListCalendars(ctx context.Context) ([]CalendarItem, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}

	googleService, err := s.prepareGoogleService(ctx, userId)
	if err != nil {
		return nil, err
	}
	calendars, err := googleService.CalendarList.List().Do()
	if err != nil {
		err := fmt.Errorf("unable to retrieve calendars from Google Calendar: %v", err)
		log.Error(err)
		return nil, err
	}
	var googleCalendars []CalendarItem
	for _, cal := range calendars.Items {
		googleCalendars = append(googleCalendars, CalendarItem{
			ID:      cal.Id,
			Summary: cal.Summary,
		})
	}
	return googleCalendars, nil
}

func (s *ServiceImpl) ExportSchedules(ctx context.Context, calendarId, startDay, endDay string) (int, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get current user: %w", err)
	}

	schedules, err := s.schedules.GetPrivateSchedules(ctx, userId, startDay, endDay)
	if err != nil {
		return 0, err
	}

	googleService, err := s.prepareGoogleService(ctx, userId)
	if err != nil {
		return 0, err
	}

	exported := 0
	for _, item := range schedules {
		event := &calendar.Event{
			Summary:     item.Summary,
			Description: item.Description,
			Start:       &calendar.EventDateTime{DateTime: item.StartTime.Format("2006-01-02T15:04:05-07:00")},
			End:         &calendar.EventDateTime{DateTime: item.EndTime.Format("2006-01-02T15:04:05-07:00")},
		}
		if _, err := googleService.Events.Insert(calendarId, event).Do(); err != nil {
			err := fmt.Errorf("unable to create event in Google Calendar: %v", err)
			log.Error(err)
			return exported, err
		}
		exported++
	}
	return exported, nil
}

func (s *ServiceImpl) prepareGoogleService(ctx context.Context, userId int) (*calendar.Service, error) {
	client, err := s.auth.getClient(ctx, userId)
	if err != nil {
		err := fmt.Errorf("unable to retrieve Google auth client: %v", err)
		log.Error(err)
		return nil, err
	}
	if client == nil {
		log.Debug("user is unauthenticated, authentication is required")
		return nil, ErrUnauthenticated
	}
	service, err := calendar.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		err := fmt.Errorf("unable to retrieve Calendar client: %v", err)
		log.Error(err)
		return nil, err
	}

	return service, nil
}
