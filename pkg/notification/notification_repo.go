package notification

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

type Repo interface {
	Store(ctx context.Context, notification Notification) (int, error)
	// ListByUser returns the user's notifications, newest first.
	ListByUser(ctx context.Context, userId int) ([]Notification, error)
	// MarkRead flags the notification as read. The user id is part of the
	// predicate so a user can never touch someone else's notification.
	MarkRead(ctx context.Context, userId, notificationId int) error
	MarkAllRead(ctx context.Context, userId int) error
}

type NotificationRepoImpl struct {
	db *pgxpool.Pool
}

func NewNotificationRepo(db *pgxpool.Pool) *NotificationRepoImpl {
	return &NotificationRepoImpl{db: db}
}

func (n *NotificationRepoImpl) Store(ctx context.Context, notification Notification) (int, error) {
	var id int
	err := n.db.QueryRow(ctx,
		`INSERT INTO notification (user_id, message, is_read, created_time) VALUES ($1, $2, $3, $4) RETURNING id`,
		notification.UserId, notification.Message, notification.IsRead, notification.CreatedTime,
	).Scan(&id)
	if err != nil {
		log.Errorf("failed to store notification for user %d: %v", notification.UserId, err)
		return 0, err
	}
	return id, nil
}

func (n *NotificationRepoImpl) ListByUser(ctx context.Context, userId int) ([]Notification, error) {
	query := `SELECT id, user_id, message, is_read, created_time
				FROM notification WHERE user_id = $1
				ORDER BY created_time DESC, id DESC`
	rows, err := n.db.Query(ctx, query, userId)
	if err != nil {
		log.Errorf("failed to list notifications for user %d: %v", userId, err)
		return nil, err
	}
	defer rows.Close()

	notifications := make([]Notification, 0, 10)
	for rows.Next() {
		var notification Notification
		if err := rows.Scan(&notification.Id, &notification.UserId, &notification.Message,
			&notification.IsRead, &notification.CreatedTime); err != nil {
			log.Errorf("failed to scan notification: %v", err)
			return nil, err
		}
		notifications = append(notifications, notification)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over rows: %w", err)
		log.Error(err)
		return nil, err
	}
	return notifications, nil
}

func (n *NotificationRepoImpl) MarkRead(ctx context.Context, userId, notificationId int) error {
	result, err := n.db.Exec(ctx,
		`UPDATE notification SET is_read = TRUE WHERE id = $1 AND user_id = $2`,
		notificationId, userId,
	)
	if err != nil {
		log.Errorf("failed to mark notification %d read: %v", notificationId, err)
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

func (n *NotificationRepoImpl) MarkAllRead(ctx context.Context, userId int) error {
	_, err := n.db.Exec(ctx,
		`UPDATE notification SET is_read = TRUE WHERE user_id = $1 AND is_read = FALSE`,
		userId,
	)
	if err != nil {
		log.Errorf("failed to mark notifications of user %d read: %v", userId, err)
		return err
	}
	return nil
}
