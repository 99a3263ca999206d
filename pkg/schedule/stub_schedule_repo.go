package schedule

import (
	"context"
	"sort"
	"time"
)

// StubScheduleRepository is an in-memory Repo used by service tests.
type StubScheduleRepository struct {
	nextId    int
	schedules map[int]Schedule
}

func NewStubScheduleRepository() *StubScheduleRepository {
	return &StubScheduleRepository{schedules: map[int]Schedule{}}
}

func (s *StubScheduleRepository) Store(ctx context.Context, schedule Schedule) (int, error) {
	s.nextId++
	schedule.Id = s.nextId
	s.schedules[schedule.Id] = schedule
	return schedule.Id, nil
}

func (s *StubScheduleRepository) FindById(ctx context.Context, scheduleId int) (*Schedule, error) {
	schedule, ok := s.schedules[scheduleId]
	if !ok {
		return nil, nil
	}
	found := schedule
	return &found, nil
}

func (s *StubScheduleRepository) Update(ctx context.Context, schedule Schedule) error {
	stored, ok := s.schedules[schedule.Id]
	if !ok {
		return ErrScheduleNotFound
	}
	stored.Summary = schedule.Summary
	stored.Description = schedule.Description
	stored.StartTime = schedule.StartTime
	stored.EndTime = schedule.EndTime
	s.schedules[schedule.Id] = stored
	return nil
}

func (s *StubScheduleRepository) Delete(ctx context.Context, scheduleId int) error {
	if _, ok := s.schedules[scheduleId]; !ok {
		return ErrScheduleNotFound
	}
	delete(s.schedules, scheduleId)
	return nil
}

func (s *StubScheduleRepository) FindByUserBetween(ctx context.Context, userId int, start, end time.Time) ([]Schedule, error) {
	result := make([]Schedule, 0)
	for _, schedule := range s.schedules {
		if schedule.UserId != userId {
			continue
		}
		if schedule.StartTime.Before(start) || schedule.StartTime.After(end) {
			continue
		}
		result = append(result, schedule)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].StartTime.Before(result[j].StartTime)
	})
	return result, nil
}

func (s *StubScheduleRepository) FindSlotsForUsersOn(ctx context.Context, userIds []int, day time.Time) ([]TimeSlot, error) {
	members := make(map[int]bool, len(userIds))
	for _, id := range userIds {
		members[id] = true
	}

	slots := make([]TimeSlot, 0)
	for _, schedule := range s.schedules {
		if !members[schedule.UserId] {
			continue
		}
		y1, m1, d1 := schedule.StartTime.Date()
		y2, m2, d2 := day.Date()
		if y1 != y2 || m1 != m2 || d1 != d2 {
			continue
		}
		slots = append(slots, TimeSlot{StartTime: schedule.StartTime, EndTime: schedule.EndTime})
	}
	sort.Slice(slots, func(i, j int) bool {
		return slots[i].StartTime.Before(slots[j].StartTime)
	})
	return slots, nil
}
