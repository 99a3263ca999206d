package notification

import (
	"context"
	"fmt"

	"github.com/crewplan/crewplan/internal/event_bus"
	"github.com/crewplan/crewplan/internal/utils"
)

type Service interface {
	ListNotifications(ctx context.Context, userId int) ([]Notification, error)
	MarkRead(ctx context.Context, userId, notificationId int) error
	MarkAllRead(ctx context.Context, userId int) error
}

type NotificationServiceImpl struct {
	repo  Repo
	clock utils.Clock
}

func NewNotificationService(repo Repo) *NotificationServiceImpl {
	return &NotificationServiceImpl{repo: repo, clock: utils.SystemClock{}}
}

// RegisterSubscriptions attaches the service to the team events it turns into
// stored notifications.
func (s *NotificationServiceImpl) RegisterSubscriptions(bus *event_bus.EventBus) {
	event_bus.SubscribeTyped(bus, event_bus.EventTeamMemberAdded,
		func(e event_bus.EventT[event_bus.TeamMemberAdded]) error {
			return s.store(e.Context(), e.Data.UserId,
				fmt.Sprintf("You have been added to team %q", e.Data.TeamName))
		})
	event_bus.SubscribeTyped(bus, event_bus.EventTeamMemberRemoved,
		func(e event_bus.EventT[event_bus.TeamMemberRemoved]) error {
			return s.store(e.Context(), e.Data.UserId,
				fmt.Sprintf("You have been removed from team %q", e.Data.TeamName))
		})
	event_bus.SubscribeTyped(bus, event_bus.EventTeamLeaderChanged,
		func(e event_bus.EventT[event_bus.TeamLeaderChanged]) error {
			return s.store(e.Context(), e.Data.ToUserId,
				fmt.Sprintf("You are now the leader of team %q", e.Data.TeamName))
		})
	event_bus.SubscribeTyped(bus, event_bus.EventTeamDeleted,
		func(e event_bus.EventT[event_bus.TeamDeleted]) error {
			for _, memberId := range e.Data.MemberIds {
				if err := s.store(e.Context(), memberId,
					fmt.Sprintf("Team %q has been deleted", e.Data.TeamName)); err != nil {
					return err
				}
			}
			return nil
		})
}

func (s *NotificationServiceImpl) ListNotifications(ctx context.Context, userId int) ([]Notification, error) {
	return s.repo.ListByUser(ctx, userId)
}

func (s *NotificationServiceImpl) MarkRead(ctx context.Context, userId, notificationId int) error {
	return s.repo.MarkRead(ctx, userId, notificationId)
}

func (s *NotificationServiceImpl) MarkAllRead(ctx context.Context, userId int) error {
	return s.repo.MarkAllRead(ctx, userId)
}

func (s *NotificationServiceImpl) store(ctx context.Context, userId int, message string) error {
	_, err := s.repo.Store(ctx, Notification{
		UserId:      userId,
		Message:     message,
		IsRead:      false,
		CreatedTime: s.clock.Now(),
	})
	return err
}
