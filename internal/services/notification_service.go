package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/lokercirebon/jobportal/internal/models"
	mongorepo "github.com/lokercirebon/jobportal/internal/repositories/mongo"
	"github.com/lokercirebon/jobportal/internal/utils"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	notifyTimeout      = 5 * time.Second
	defaultNotifyLimit = 50
)

// NotificationChannel is the redis pub/sub channel carrying a user's notifications.
func NotificationChannel(userID string) string {
	return "notifications:" + userID
}

type NotificationService interface {
	Notifier
	List(ctx context.Context, userID string, unreadOnly bool, limit int64) ([]models.Notification, error)
	MarkRead(ctx context.Context, userID, id string) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	UnreadCount(ctx context.Context, userID string) (int64, error)
	// Subscribe streams the user's notifications as JSON until ctx is done or
	// the returned close func is called.
	Subscribe(ctx context.Context, userID string) (<-chan string, func() error, error)
}

type notificationService struct {
	repo  mongorepo.NotificationRepository
	redis *redis.Client
	log   *logrus.Logger
}

// NewNotificationService accepts a nil repo or redis client; the matching
// feature then degrades to logging.
func NewNotificationService(repo mongorepo.NotificationRepository, rdb *redis.Client, log *logrus.Logger) NotificationService {
	if log == nil {
		log = logrus.New()
	}
	return &notificationService{repo: repo, redis: rdb, log: log}
}

func (s *notificationService) Notify(ctx context.Context, n models.Notification) {
	// delivery outlives the request that triggered it
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()

	entry := s.log.WithFields(logrus.Fields{"user_id": n.UserID, "type": n.Type})
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}

	if s.repo != nil {
		if err := s.repo.Insert(ctx, &n); err != nil {
			entry.WithError(err).Warn("notification insert failed")
		}
	} else {
		entry.WithField("title", n.Title).Info("notification")
	}

	if s.redis != nil {
		b, err := json.Marshal(n)
		if err != nil {
			entry.WithError(err).Warn("notification encode failed")
			return
		}
		if err := s.redis.Publish(ctx, NotificationChannel(n.UserID), b).Err(); err != nil {
			entry.WithError(err).Warn("notification publish failed")
		}
	}
}

func (s *notificationService) unavailable(op string) error {
	return utils.E(utils.CodeUnavailable, op, "layanan notifikasi tidak tersedia", nil)
}

func (s *notificationService) List(ctx context.Context, userID string, unreadOnly bool, limit int64) ([]models.Notification, error) {
	const op = "NotificationService.List"

	if s.repo == nil {
		return []models.Notification{}, nil
	}
	if limit <= 0 || limit > maxPageSize {
		limit = defaultNotifyLimit
	}
	out, err := s.repo.ListByUser(ctx, userID, unreadOnly, limit)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list notifications", err)
	}
	return out, nil
}

func (s *notificationService) MarkRead(ctx context.Context, userID, id string) error {
	const op = "NotificationService.MarkRead"

	if s.repo == nil {
		return s.unavailable(op)
	}
	if err := s.repo.MarkRead(ctx, userID, id); err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return utils.E(utils.CodeNotFound, op, "notifikasi tidak ditemukan", err)
		}
		return utils.E(utils.CodeInternal, op, "failed to mark notification", err)
	}
	return nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	const op = "NotificationService.MarkAllRead"

	if s.repo == nil {
		return 0, s.unavailable(op)
	}
	n, err := s.repo.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, utils.E(utils.CodeInternal, op, "failed to mark notifications", err)
	}
	return n, nil
}

func (s *notificationService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	if s.repo == nil {
		return 0, nil
	}
	n, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return 0, utils.E(utils.CodeInternal, "NotificationService.UnreadCount", "failed to count notifications", err)
	}
	return n, nil
}

func (s *notificationService) Subscribe(ctx context.Context, userID string) (<-chan string, func() error, error) {
	const op = "NotificationService.Subscribe"

	if s.redis == nil {
		return nil, nil, s.unavailable(op)
	}
	pubsub := s.redis.Subscribe(ctx, NotificationChannel(userID))
	// wait for the subscription to be confirmed before handing it out
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, nil, utils.E(utils.CodeUnavailable, op, "gagal berlangganan notifikasi", err)
	}

	out := make(chan string)
	go func() {
		defer close(out)
		for {
			m, err := pubsub.ReceiveMessage(ctx)
			if err != nil {
				return
			}
			select {
			case out <- m.Payload:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, pubsub.Close, nil
}
