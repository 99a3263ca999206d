package schedule

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/crewplan/crewplan/internal/test_utils"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var db *pgxpool.Pool

func TestMain(m *testing.M) {
	var cleanup func()
	db, cleanup = test_utils.TestWithDB()
	defer cleanup()
	code := m.Run()
	os.Exit(code)
}

var nextUserSuffix int

func createUser(t *testing.T, ctx context.Context, name string) int {
	t.Helper()
	nextUserSuffix++
	email := fmt.Sprintf("%s%d@schedule.example.com", name, nextUserSuffix)
	id, err := test_utils.CreateTestUser(ctx, db, email, name)
	require.NoError(t, err)
	return id
}

func storeSchedule(t *testing.T, ctx context.Context, repo Repo, userId int, summary string, start, end time.Time, scheduleType ScheduleType) int {
	t.Helper()
	id, err := repo.Store(ctx, Schedule{
		UserId:      userId,
		StartTime:   start,
		EndTime:     end,
		Summary:     summary,
		Description: "",
		Type:        scheduleType,
	})
	require.NoError(t, err)
	return id
}

func ts(value string) time.Time {
	parsed, err := time.Parse("2006-01-02T15:04:05.000", value)
	if err != nil {
		panic(err)
	}
	return parsed
}

func TestScheduleRepoImpl_StoreAndFindById(t *testing.T) {
	// given
	ctx := context.Background()
	repo := NewScheduleRepo(db)
	userId := createUser(t, ctx, "owner")

	// when
	id := storeSchedule(t, ctx, repo, userId, "Standup",
		ts("2024-03-01T09:00:00.000"), ts("2024-03-01T09:15:00.000"), TypePersonal)

	// then
	stored, err := repo.FindById(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, userId, stored.UserId)
	assert.Equal(t, "Standup", stored.Summary)
	assert.Equal(t, TypePersonal, stored.Type)
	assert.True(t, stored.StartTime.Equal(ts("2024-03-01T09:00:00.000")))
}

func TestScheduleRepoImpl_FindById_ReturnsNilWhenAbsent(t *testing.T) {
	ctx := context.Background()
	repo := NewScheduleRepo(db)

	stored, err := repo.FindById(ctx, 999999)

	assert.NoError(t, err)
	assert.Nil(t, stored)
}

func TestScheduleRepoImpl_Update_PreservesType(t *testing.T) {
	// given
	ctx := context.Background()
	repo := NewScheduleRepo(db)
	userId := createUser(t, ctx, "owner")
	id := storeSchedule(t, ctx, repo, userId, "Review",
		ts("2024-03-01T13:00:00.000"), ts("2024-03-01T14:00:00.000"), TypeConference)

	// when
	err := repo.Update(ctx, Schedule{
		Id:        id,
		Summary:   "Moved review",
		StartTime: ts("2024-03-01T15:00:00.000"),
		EndTime:   ts("2024-03-01T16:00:00.000"),
	})

	// then
	assert.NoError(t, err)
	stored, err := repo.FindById(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Moved review", stored.Summary)
	assert.Equal(t, TypeConference, stored.Type)
}

func TestScheduleRepoImpl_Delete(t *testing.T) {
	// given
	ctx := context.Background()
	repo := NewScheduleRepo(db)
	userId := createUser(t, ctx, "owner")
	id := storeSchedule(t, ctx, repo, userId, "Gone",
		ts("2024-03-01T09:00:00.000"), ts("2024-03-01T10:00:00.000"), TypePersonal)

	// when
	err := repo.Delete(ctx, id)

	// then
	assert.NoError(t, err)
	stored, err := repo.FindById(ctx, id)
	assert.NoError(t, err)
	assert.Nil(t, stored)

	assert.ErrorIs(t, repo.Delete(ctx, id), ErrScheduleNotFound)
}

func TestScheduleRepoImpl_FindByUserBetween(t *testing.T) {
	// given
	ctx := context.Background()
	repo := NewScheduleRepo(db)
	userId := createUser(t, ctx, "owner")
	otherId := createUser(t, ctx, "other")

	storeSchedule(t, ctx, repo, userId, "Second",
		ts("2024-01-01T12:00:00.000"), ts("2024-01-01T13:00:00.000"), TypePersonal)
	storeSchedule(t, ctx, repo, userId, "First",
		ts("2024-01-01T09:00:00.000"), ts("2024-01-01T10:00:00.000"), TypePersonal)
	storeSchedule(t, ctx, repo, userId, "At the last instant",
		ts("2024-01-01T23:59:59.999"), ts("2024-01-02T01:00:00.000"), TypePersonal)
	storeSchedule(t, ctx, repo, userId, "Next day",
		ts("2024-01-02T00:00:00.000"), ts("2024-01-02T01:00:00.000"), TypePersonal)
	storeSchedule(t, ctx, repo, otherId, "Someone else",
		ts("2024-01-01T09:00:00.000"), ts("2024-01-01T10:00:00.000"), TypePersonal)

	// when
	schedules, err := repo.FindByUserBetween(ctx, userId,
		ts("2024-01-01T00:00:00.000"), ts("2024-01-01T23:59:59.999"))

	// then
	assert.NoError(t, err)
	require.Len(t, schedules, 3)
	assert.Equal(t, "First", schedules[0].Summary)
	assert.Equal(t, "Second", schedules[1].Summary)
	assert.Equal(t, "At the last instant", schedules[2].Summary)
}

func TestScheduleRepoImpl_FindSlotsForUsersOn(t *testing.T) {
	// given
	ctx := context.Background()
	repo := NewScheduleRepo(db)
	firstId := createUser(t, ctx, "first")
	secondId := createUser(t, ctx, "second")
	outsiderId := createUser(t, ctx, "outsider")

	storeSchedule(t, ctx, repo, secondId, "Afternoon",
		ts("2024-03-05T14:00:00.000"), ts("2024-03-05T15:00:00.000"), TypePersonal)
	storeSchedule(t, ctx, repo, firstId, "Morning",
		ts("2024-03-05T09:00:00.000"), ts("2024-03-05T10:00:00.000"), TypePersonal)
	storeSchedule(t, ctx, repo, firstId, "Wrong day",
		ts("2024-03-06T09:00:00.000"), ts("2024-03-06T10:00:00.000"), TypePersonal)
	storeSchedule(t, ctx, repo, outsiderId, "Not in the team",
		ts("2024-03-05T09:00:00.000"), ts("2024-03-05T10:00:00.000"), TypePersonal)

	// when
	slots, err := repo.FindSlotsForUsersOn(ctx, []int{firstId, secondId}, ts("2024-03-05T00:00:00.000"))

	// then
	assert.NoError(t, err)
	require.Len(t, slots, 2)
	assert.True(t, slots[0].StartTime.Equal(ts("2024-03-05T09:00:00.000")))
	assert.True(t, slots[1].StartTime.Equal(ts("2024-03-05T14:00:00.000")))
}
