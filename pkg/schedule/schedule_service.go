package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/crewplan/crewplan/pkg/team"
	"github.com/crewplan/crewplan/pkg/user"
)

const dayFormat = "20060102"

// UserDirectory resolves user ids. Satisfied by user.Service.
type UserDirectory interface {
	GetUser(ctx context.Context, id int) (user.User, error)
}

// TeamAccess is the slice of the team service the availability view needs.
type TeamAccess interface {
	RequireLeader(ctx context.Context, userId, teamId int) (team.Membership, error)
	MemberIds(ctx context.Context, teamId int) ([]int, error)
}

type Service interface {
	CreateSchedule(ctx context.Context, userId int, summary, description string, start, end time.Time, scheduleType ScheduleType) (Schedule, error)
	// DeleteSchedule removes the schedule and returns its pre-deletion snapshot.
	DeleteSchedule(ctx context.Context, userId, scheduleId int) (Schedule, error)
	ModifySchedule(ctx context.Context, userId, scheduleId int, summary, description string, start, end time.Time) error
	// GetPrivateSchedules returns the user's schedules starting within the
	// inclusive day range, ordered by start time. Days are yyyyMMdd strings.
	GetPrivateSchedules(ctx context.Context, userId int, startDay, endDay string) ([]Schedule, error)
	// GetTeamSlots returns the busy intervals of every team member on the given
	// day. Only the team leader may call it.
	GetTeamSlots(ctx context.Context, requesterId, teamId int, day string) ([]TimeSlot, error)
}

type ScheduleServiceImpl struct {
	repo  Repo
	users UserDirectory
	teams TeamAccess
}

func NewScheduleService(repo Repo, users UserDirectory, teams TeamAccess) *ScheduleServiceImpl {
	return &ScheduleServiceImpl{repo: repo, users: users, teams: teams}
}

func (s *ScheduleServiceImpl) CreateSchedule(ctx context.Context, userId int, summary, description string, start, end time.Time, scheduleType ScheduleType) (Schedule, error) {
	if _, err := s.users.GetUser(ctx, userId); err != nil {
		return Schedule{}, err
	}

	// Overlapping schedules for the same user are allowed.
	schedule := Schedule{
		UserId:      userId,
		StartTime:   start,
		EndTime:     end,
		Summary:     summary,
		Description: description,
		Type:        scheduleType,
	}
	id, err := s.repo.Store(ctx, schedule)
	if err != nil {
		return Schedule{}, err
	}
	schedule.Id = id
	return schedule, nil
}

func (s *ScheduleServiceImpl) DeleteSchedule(ctx context.Context, userId, scheduleId int) (Schedule, error) {
	schedule, err := s.ownedSchedule(ctx, userId, scheduleId)
	if err != nil {
		return Schedule{}, err
	}
	if err := s.repo.Delete(ctx, scheduleId); err != nil {
		return Schedule{}, err
	}
	return schedule, nil
}

func (s *ScheduleServiceImpl) ModifySchedule(ctx context.Context, userId, scheduleId int, summary, description string, start, end time.Time) error {
	schedule, err := s.ownedSchedule(ctx, userId, scheduleId)
	if err != nil {
		return err
	}
	if schedule.Type == TypeConference {
		return ErrConferenceReadOnly
	}

	schedule.Summary = summary
	schedule.Description = description
	schedule.StartTime = start
	schedule.EndTime = end
	return s.repo.Update(ctx, schedule)
}

func (s *ScheduleServiceImpl) GetPrivateSchedules(ctx context.Context, userId int, startDay, endDay string) ([]Schedule, error) {
	if _, err := s.users.GetUser(ctx, userId); err != nil {
		return nil, err
	}

	startDate, err := parseDay(startDay)
	if err != nil {
		return nil, err
	}
	endDate, err := parseDay(endDay)
	if err != nil {
		return nil, err
	}

	// The range covers [startDay 00:00:00.000, endDay 23:59:59.999], both ends
	// inclusive.
	start := startDate
	end := endDate.Add(24*time.Hour - time.Millisecond)
	return s.repo.FindByUserBetween(ctx, userId, start, end)
}

func (s *ScheduleServiceImpl) GetTeamSlots(ctx context.Context, requesterId, teamId int, day string) ([]TimeSlot, error) {
	if _, err := s.teams.RequireLeader(ctx, requesterId, teamId); err != nil {
		return nil, err
	}

	date, err := parseDay(day)
	if err != nil {
		return nil, err
	}

	memberIds, err := s.teams.MemberIds(ctx, teamId)
	if err != nil {
		return nil, err
	}
	return s.repo.FindSlotsForUsersOn(ctx, memberIds, date)
}

// ownedSchedule loads the schedule and verifies the caller owns it.
func (s *ScheduleServiceImpl) ownedSchedule(ctx context.Context, userId, scheduleId int) (Schedule, error) {
	schedule, err := s.repo.FindById(ctx, scheduleId)
	if err != nil {
		return Schedule{}, err
	}
	if schedule == nil {
		return Schedule{}, ErrScheduleNotFound
	}
	if schedule.UserId != userId {
		return Schedule{}, ErrNotOwner
	}
	return *schedule, nil
}

func parseDay(day string) (time.Time, error) {
	parsed, err := time.Parse(dayFormat, day)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, day)
	}
	return parsed, nil
}
