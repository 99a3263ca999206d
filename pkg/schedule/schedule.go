package schedule

import (
	"errors"
	"time"
)

var (
	ErrScheduleNotFound   = errors.New("schedule not found")
	ErrNotOwner           = errors.New("schedule belongs to another user")
	ErrConferenceReadOnly = errors.New("conference schedules cannot be modified")
	ErrInvalidDate        = errors.New("invalid date, expected yyyyMMdd")
)

// ScheduleType distinguishes user-authored entries from system-managed ones.
// Conference entries are written by the meeting subsystem and are read-only
// through the personal schedule path.
type ScheduleType string

const (
	TypePersonal   ScheduleType = "PERSONAL"
	TypeConference ScheduleType = "CONFERENCE"
	TypeEtc        ScheduleType = "ETC"
)

type Schedule struct {
	Id          int
	UserId      int
	StartTime   time.Time
	EndTime     time.Time
	Summary     string
	Description string
	Type        ScheduleType
}

// TimeSlot is a busy interval stripped of its content, used for the team
// availability view.
type TimeSlot struct {
	StartTime time.Time
	EndTime   time.Time
}
