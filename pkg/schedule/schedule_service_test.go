package schedule

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/crewplan/crewplan/pkg/team"
	"github.com/crewplan/crewplan/pkg/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubUserDirectory struct {
	users map[int]user.User
}

func newStubUserDirectory(ids ...int) *stubUserDirectory {
	dir := &stubUserDirectory{users: map[int]user.User{}}
	for _, id := range ids {
		dir.users[id] = user.User{Id: id, Email: fmt.Sprintf("user%d@example.com", id)}
	}
	return dir
}

func (s *stubUserDirectory) GetUser(ctx context.Context, id int) (user.User, error) {
	u, ok := s.users[id]
	if !ok {
		return user.User{}, user.ErrUserNotFound
	}
	return u, nil
}

// stubTeamAccess models a single team with a fixed leader and member set.
type stubTeamAccess struct {
	teamId    int
	leaderId  int
	memberIds []int
}

func (s *stubTeamAccess) RequireLeader(ctx context.Context, userId, teamId int) (team.Membership, error) {
	isMember := false
	for _, id := range s.memberIds {
		if id == userId {
			isMember = true
		}
	}
	if teamId != s.teamId || !isMember {
		return team.Membership{}, team.ErrNotMember
	}
	if userId != s.leaderId {
		return team.Membership{}, team.ErrNotLeader
	}
	return team.Membership{TeamId: teamId, UserId: userId, Role: team.RoleLeader}, nil
}

func (s *stubTeamAccess) MemberIds(ctx context.Context, teamId int) ([]int, error) {
	return s.memberIds, nil
}

func at(day string, hour, min int) time.Time {
	parsed, _ := time.Parse("20060102", day)
	return parsed.Add(time.Duration(hour)*time.Hour + time.Duration(min)*time.Minute)
}

func TestCreateSchedule(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a schedule owned by the user", func(t *testing.T) {
		repo := NewStubScheduleRepository()
		service := NewScheduleService(repo, newStubUserDirectory(1), nil)

		created, err := service.CreateSchedule(ctx, 1, "Standup", "Daily sync",
			at("20240301", 9, 0), at("20240301", 9, 15), TypePersonal)

		assert.NoError(t, err)
		assert.NotZero(t, created.Id)
		assert.Equal(t, 1, created.UserId)
		assert.Equal(t, TypePersonal, created.Type)
	})

	t.Run("overlapping schedules are allowed", func(t *testing.T) {
		repo := NewStubScheduleRepository()
		service := NewScheduleService(repo, newStubUserDirectory(1), nil)

		_, err := service.CreateSchedule(ctx, 1, "First", "",
			at("20240301", 9, 0), at("20240301", 10, 0), TypePersonal)
		require.NoError(t, err)
		_, err = service.CreateSchedule(ctx, 1, "Second", "",
			at("20240301", 9, 30), at("20240301", 10, 30), TypePersonal)

		assert.NoError(t, err)
		schedules, err := service.GetPrivateSchedules(ctx, 1, "20240301", "20240301")
		assert.NoError(t, err)
		assert.Len(t, schedules, 2)
	})

	t.Run("unknown user", func(t *testing.T) {
		repo := NewStubScheduleRepository()
		service := NewScheduleService(repo, newStubUserDirectory(1), nil)

		_, err := service.CreateSchedule(ctx, 99, "Standup", "",
			at("20240301", 9, 0), at("20240301", 9, 15), TypePersonal)

		assert.ErrorIs(t, err, user.ErrUserNotFound)
	})
}

func TestModifySchedule(t *testing.T) {
	ctx := context.Background()

	t.Run("owner replaces the content and time range", func(t *testing.T) {
		repo := NewStubScheduleRepository()
		service := NewScheduleService(repo, newStubUserDirectory(1), nil)
		created, _ := service.CreateSchedule(ctx, 1, "Standup", "",
			at("20240301", 9, 0), at("20240301", 10, 0), TypePersonal)

		err := service.ModifySchedule(ctx, 1, created.Id, "Planning", "Sprint planning",
			at("20240301", 14, 0), at("20240301", 15, 0))

		assert.NoError(t, err)
		stored, _ := repo.FindById(ctx, created.Id)
		require.NotNil(t, stored)
		assert.Equal(t, "Planning", stored.Summary)
		assert.Equal(t, at("20240301", 14, 0), stored.StartTime)
		assert.Equal(t, TypePersonal, stored.Type)
	})

	t.Run("another user is rejected", func(t *testing.T) {
		repo := NewStubScheduleRepository()
		service := NewScheduleService(repo, newStubUserDirectory(1, 2), nil)
		created, _ := service.CreateSchedule(ctx, 1, "Standup", "",
			at("20240301", 9, 0), at("20240301", 10, 0), TypePersonal)

		err := service.ModifySchedule(ctx, 2, created.Id, "Hijacked", "",
			at("20240301", 9, 0), at("20240301", 10, 0))

		assert.ErrorIs(t, err, ErrNotOwner)
	})

	t.Run("conference schedules are immutable", func(t *testing.T) {
		repo := NewStubScheduleRepository()
		service := NewScheduleService(repo, newStubUserDirectory(1), nil)
		created, _ := service.CreateSchedule(ctx, 1, "Quarterly review", "",
			at("20240301", 9, 0), at("20240301", 10, 0), TypeConference)

		err := service.ModifySchedule(ctx, 1, created.Id, "Moved", "",
			at("20240301", 11, 0), at("20240301", 12, 0))

		assert.ErrorIs(t, err, ErrConferenceReadOnly)
		stored, _ := repo.FindById(ctx, created.Id)
		assert.Equal(t, "Quarterly review", stored.Summary)
	})

	t.Run("unknown schedule", func(t *testing.T) {
		repo := NewStubScheduleRepository()
		service := NewScheduleService(repo, newStubUserDirectory(1), nil)

		err := service.ModifySchedule(ctx, 1, 42, "Anything", "",
			at("20240301", 9, 0), at("20240301", 10, 0))

		assert.ErrorIs(t, err, ErrScheduleNotFound)
	})
}

func TestDeleteSchedule(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the pre-deletion snapshot", func(t *testing.T) {
		repo := NewStubScheduleRepository()
		service := NewScheduleService(repo, newStubUserDirectory(1), nil)
		created, _ := service.CreateSchedule(ctx, 1, "Standup", "Daily sync",
			at("20240301", 9, 0), at("20240301", 10, 0), TypePersonal)

		snapshot, err := service.DeleteSchedule(ctx, 1, created.Id)

		assert.NoError(t, err)
		assert.Equal(t, created.Id, snapshot.Id)
		assert.Equal(t, "Standup", snapshot.Summary)
		assert.Equal(t, at("20240301", 9, 0), snapshot.StartTime)
		assert.Equal(t, at("20240301", 10, 0), snapshot.EndTime)

		stored, _ := repo.FindById(ctx, created.Id)
		assert.Nil(t, stored)
	})

	t.Run("another user is rejected", func(t *testing.T) {
		repo := NewStubScheduleRepository()
		service := NewScheduleService(repo, newStubUserDirectory(1, 2), nil)
		created, _ := service.CreateSchedule(ctx, 1, "Standup", "",
			at("20240301", 9, 0), at("20240301", 10, 0), TypePersonal)

		_, err := service.DeleteSchedule(ctx, 2, created.Id)

		assert.ErrorIs(t, err, ErrNotOwner)
		stored, _ := repo.FindById(ctx, created.Id)
		assert.NotNil(t, stored)
	})

	t.Run("unknown schedule", func(t *testing.T) {
		repo := NewStubScheduleRepository()
		service := NewScheduleService(repo, newStubUserDirectory(1), nil)

		_, err := service.DeleteSchedule(ctx, 1, 42)

		assert.ErrorIs(t, err, ErrScheduleNotFound)
	})
}

func TestGetPrivateSchedules(t *testing.T) {
	ctx := context.Background()

	t.Run("returns schedules in the range ordered by start time", func(t *testing.T) {
		repo := NewStubScheduleRepository()
		service := NewScheduleService(repo, newStubUserDirectory(1), nil)
		_, err := service.CreateSchedule(ctx, 1, "Later", "",
			at("20240302", 14, 0), at("20240302", 15, 0), TypePersonal)
		require.NoError(t, err)
		_, err = service.CreateSchedule(ctx, 1, "Earlier", "",
			at("20240301", 9, 0), at("20240301", 10, 0), TypePersonal)
		require.NoError(t, err)
		_, err = service.CreateSchedule(ctx, 1, "Outside", "",
			at("20240305", 9, 0), at("20240305", 10, 0), TypePersonal)
		require.NoError(t, err)

		schedules, err := service.GetPrivateSchedules(ctx, 1, "20240301", "20240302")

		assert.NoError(t, err)
		require.Len(t, schedules, 2)
		assert.Equal(t, "Earlier", schedules[0].Summary)
		assert.Equal(t, "Later", schedules[1].Summary)
	})

	t.Run("day boundaries are inclusive", func(t *testing.T) {
		repo := NewStubScheduleRepository()
		service := NewScheduleService(repo, newStubUserDirectory(1), nil)

		lastInstant := at("20240101", 23, 59).Add(59*time.Second + 999*time.Millisecond)
		_, err := service.CreateSchedule(ctx, 1, "Included", "",
			lastInstant, lastInstant.Add(time.Hour), TypePersonal)
		require.NoError(t, err)
		_, err = service.CreateSchedule(ctx, 1, "Excluded", "",
			at("20240102", 0, 0), at("20240102", 1, 0), TypePersonal)
		require.NoError(t, err)

		schedules, err := service.GetPrivateSchedules(ctx, 1, "20240101", "20240101")

		assert.NoError(t, err)
		require.Len(t, schedules, 1)
		assert.Equal(t, "Included", schedules[0].Summary)
	})

	t.Run("invalid day string", func(t *testing.T) {
		repo := NewStubScheduleRepository()
		service := NewScheduleService(repo, newStubUserDirectory(1), nil)

		_, err := service.GetPrivateSchedules(ctx, 1, "2024-01-01", "20240102")

		assert.ErrorIs(t, err, ErrInvalidDate)
	})

	t.Run("unknown user", func(t *testing.T) {
		repo := NewStubScheduleRepository()
		service := NewScheduleService(repo, newStubUserDirectory(1), nil)

		_, err := service.GetPrivateSchedules(ctx, 99, "20240101", "20240102")

		assert.ErrorIs(t, err, user.ErrUserNotFound)
	})
}

func TestGetTeamSlots(t *testing.T) {
	ctx := context.Background()
	teams := &stubTeamAccess{teamId: 10, leaderId: 1, memberIds: []int{1, 2, 3}}

	setup := func(t *testing.T) Service {
		repo := NewStubScheduleRepository()
		service := NewScheduleService(repo, newStubUserDirectory(1, 2, 3), teams)
		for i, userId := range []int{3, 1, 2} {
			_, err := service.CreateSchedule(ctx, userId, "Busy", "",
				at("20240305", 9+i, 0), at("20240305", 10+i, 0), TypePersonal)
			require.NoError(t, err)
		}
		_, err := service.CreateSchedule(ctx, 2, "Other day", "",
			at("20240306", 9, 0), at("20240306", 10, 0), TypePersonal)
		require.NoError(t, err)
		return service
	}

	t.Run("leader sees every member's slots for the day", func(t *testing.T) {
		service := setup(t)

		slots, err := service.GetTeamSlots(ctx, 1, 10, "20240305")

		assert.NoError(t, err)
		require.Len(t, slots, 3)
		assert.Equal(t, at("20240305", 9, 0), slots[0].StartTime)
		assert.Equal(t, at("20240305", 10, 0), slots[1].StartTime)
		assert.Equal(t, at("20240305", 11, 0), slots[2].StartTime)
	})

	t.Run("a plain member is rejected", func(t *testing.T) {
		service := setup(t)

		_, err := service.GetTeamSlots(ctx, 2, 10, "20240305")

		assert.ErrorIs(t, err, team.ErrNotLeader)
	})

	t.Run("a non-member is rejected", func(t *testing.T) {
		service := setup(t)

		_, err := service.GetTeamSlots(ctx, 99, 10, "20240305")

		assert.ErrorIs(t, err, team.ErrNotMember)
	})

	t.Run("invalid day string", func(t *testing.T) {
		service := setup(t)

		_, err := service.GetTeamSlots(ctx, 1, 10, "03/05/2024")

		assert.ErrorIs(t, err, ErrInvalidDate)
	})
}
