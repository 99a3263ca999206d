package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

type Repo interface {
	Store(ctx context.Context, schedule Schedule) (int, error)
	// FindById returns the schedule, or nil when no row exists.
	FindById(ctx context.Context, scheduleId int) (*Schedule, error)
	// Update replaces summary, description and the time range. The type column
	// is never touched.
	Update(ctx context.Context, schedule Schedule) error
	Delete(ctx context.Context, scheduleId int) error
	// FindByUserBetween returns the user's schedules whose start timestamp lies
	// in [start, end], both ends inclusive, ordered by start timestamp.
	FindByUserBetween(ctx context.Context, userId int, start, end time.Time) ([]Schedule, error)
	// FindSlotsForUsersOn returns the bare time slots of every schedule of the
	// given users whose start timestamp falls on the given calendar date,
	// ordered by start timestamp.
	FindSlotsForUsersOn(ctx context.Context, userIds []int, day time.Time) ([]TimeSlot, error)
}

type ScheduleRepoImpl struct {
	db *pgxpool.Pool
}

func NewScheduleRepo(db *pgxpool.Pool) *ScheduleRepoImpl {
	return &ScheduleRepoImpl{db: db}
}

func (s *ScheduleRepoImpl) Store(ctx context.Context, schedule Schedule) (int, error) {
	var id int
	err := s.db.QueryRow(ctx,
		`INSERT INTO private_schedule (user_id, started_time, end_time, summary, description, type)
			VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		schedule.UserId, schedule.StartTime, schedule.EndTime, schedule.Summary, schedule.Description, schedule.Type,
	).Scan(&id)
	if err != nil {
		log.Errorf("failed to store schedule for user %d: %v", schedule.UserId, err)
		return 0, err
	}
	return id, nil
}

func (s *ScheduleRepoImpl) FindById(ctx context.Context, scheduleId int) (*Schedule, error) {
	query := `SELECT id, user_id, started_time, end_time, summary, description, type
				FROM private_schedule WHERE id = $1`
	var schedule Schedule
	err := s.db.QueryRow(ctx, query, scheduleId).
		Scan(&schedule.Id, &schedule.UserId, &schedule.StartTime, &schedule.EndTime,
			&schedule.Summary, &schedule.Description, &schedule.Type)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	} else if err != nil {
		log.Errorf("failed to find schedule %d: %v", scheduleId, err)
		return nil, err
	}
	return &schedule, nil
}

func (s *ScheduleRepoImpl) Update(ctx context.Context, schedule Schedule) error {
	result, err := s.db.Exec(ctx,
		`UPDATE private_schedule SET summary = $1, description = $2, started_time = $3, end_time = $4 WHERE id = $5`,
		schedule.Summary, schedule.Description, schedule.StartTime, schedule.EndTime, schedule.Id,
	)
	if err != nil {
		log.Errorf("failed to update schedule %d: %v", schedule.Id, err)
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrScheduleNotFound
	}
	return nil
}

func (s *ScheduleRepoImpl) Delete(ctx context.Context, scheduleId int) error {
	result, err := s.db.Exec(ctx, `DELETE FROM private_schedule WHERE id = $1`, scheduleId)
	if err != nil {
		log.Errorf("failed to delete schedule %d: %v", scheduleId, err)
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrScheduleNotFound
	}
	return nil
}

func (s *ScheduleRepoImpl) FindByUserBetween(ctx context.Context, userId int, start, end time.Time) ([]Schedule, error) {
	query := `SELECT id, user_id, started_time, end_time, summary, description, type
				FROM private_schedule
				WHERE user_id = $1 AND started_time BETWEEN $2 AND $3
				ORDER BY started_time`
	rows, err := s.db.Query(ctx, query, userId, start, end)
	if err != nil {
		log.Errorf("failed to query schedules of user %d: %v", userId, err)
		return nil, err
	}
	defer rows.Close()

	schedules := make([]Schedule, 0, 10)
	for rows.Next() {
		var schedule Schedule
		if err := rows.Scan(&schedule.Id, &schedule.UserId, &schedule.StartTime, &schedule.EndTime,
			&schedule.Summary, &schedule.Description, &schedule.Type); err != nil {
			log.Errorf("failed to scan schedule: %v", err)
			return nil, err
		}
		schedules = append(schedules, schedule)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over rows: %w", err)
		log.Error(err)
		return nil, err
	}
	return schedules, nil
}

func (s *ScheduleRepoImpl) FindSlotsForUsersOn(ctx context.Context, userIds []int, day time.Time) ([]TimeSlot, error) {
	// Calendar-date equality on the start timestamp, not a [start, end) range.
	query := `SELECT started_time, end_time
				FROM private_schedule
				WHERE user_id = ANY($1) AND started_time::date = $2::date
				ORDER BY started_time`
	rows, err := s.db.Query(ctx, query, userIds, day)
	if err != nil {
		log.Errorf("failed to query team slots: %v", err)
		return nil, err
	}
	defer rows.Close()

	slots := make([]TimeSlot, 0, 10)
	for rows.Next() {
		var slot TimeSlot
		if err := rows.Scan(&slot.StartTime, &slot.EndTime); err != nil {
			log.Errorf("failed to scan time slot: %v", err)
			return nil, err
		}
		slots = append(slots, slot)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over rows: %w", err)
		log.Error(err)
		return nil, err
	}
	return slots, nil
}
