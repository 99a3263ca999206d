package notification

import (
	"context"
	"sort"
)

// StubNotificationRepository is an in-memory Repo used by service tests.
type StubNotificationRepository struct {
	nextId        int
	notifications map[int]Notification
}

func NewStubNotificationRepository() *StubNotificationRepository {
	return &StubNotificationRepository{notifications: map[int]Notification{}}
}

func (s *StubNotificationRepository) Store(ctx context.Context, notification Notification) (int, error) {
	s.nextId++
	notification.Id = s.nextId
	s.notifications[notification.Id] = notification
	return notification.Id, nil
}

func (s *StubNotificationRepository) ListByUser(ctx context.Context, userId int) ([]Notification, error) {
	result := make([]Notification, 0)
	for _, notification := range s.notifications {
		if notification.UserId == userId {
			result = append(result, notification)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedTime.Equal(result[j].CreatedTime) {
			return result[i].Id > result[j].Id
		}
		return result[i].CreatedTime.After(result[j].CreatedTime)
	})
	return result, nil
}

func (s *StubNotificationRepository) MarkRead(ctx context.Context, userId, notificationId int) error {
	notification, ok := s.notifications[notificationId]
	if !ok || notification.UserId != userId {
		return ErrNotificationNotFound
	}
	notification.IsRead = true
	s.notifications[notificationId] = notification
	return nil
}

func (s *StubNotificationRepository) MarkAllRead(ctx context.Context, userId int) error {
	for id, notification := range s.notifications {
		if notification.UserId == userId {
			notification.IsRead = true
			s.notifications[id] = notification
		}
	}
	return nil
}
