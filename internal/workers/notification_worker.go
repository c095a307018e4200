package workers

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/lokercirebon/jobportal/internal/models"
	"github.com/lokercirebon/jobportal/internal/services"
)

const (
	DefaultStream = "jobportal:notifications:stream"
	DefaultGroup  = "notification-workers"

	payloadField = "payload"
	enqueueWait  = 2 * time.Second
)

// NotificationQueue is a Notifier that defers delivery to the worker pool
// through a redis stream. When the stream is unreachable it delivers inline.
type NotificationQueue struct {
	Redis   *redis.Client
	Stream  string
	Inline  services.Notifier
	Logger  *logrus.Logger
	MaxSize int64
}

func (q *NotificationQueue) Notify(ctx context.Context, n models.Notification) {
	if q.Redis == nil {
		q.Inline.Notify(ctx, n)
		return
	}
	b, err := json.Marshal(n)
	if err != nil {
		q.Inline.Notify(ctx, n)
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), enqueueWait)
	defer cancel()
	args := &redis.XAddArgs{
		Stream: q.stream(),
		Values: map[string]any{payloadField: string(b)},
	}
	if q.MaxSize > 0 {
		args.MaxLen = q.MaxSize
		args.Approx = true
	}
	if err := q.Redis.XAdd(ctx, args).Err(); err != nil {
		if q.Logger != nil {
			q.Logger.WithError(err).WithField("user_id", n.UserID).Warn("notification enqueue failed; delivering inline")
		}
		q.Inline.Notify(ctx, n)
	}
}

func (q *NotificationQueue) stream() string {
	if q.Stream == "" {
		return DefaultStream
	}
	return q.Stream
}

// NotificationWorkerPool drains the stream through a consumer group and hands
// each entry to Deliver.
type NotificationWorkerPool struct {
	Redis      *redis.Client
	Deliver    services.Notifier
	NumWorkers int

	Logger *logrus.Logger

	Stream         string
	Group          string
	ConsumerPrefix string
}

func (p *NotificationWorkerPool) Start(ctx context.Context) error {
	if p.Redis == nil || p.Deliver == nil {
		return errors.New("NotificationWorkerPool missing dependency: Redis/Deliver must be set")
	}
	if p.Stream == "" {
		p.Stream = DefaultStream
	}
	if p.Group == "" {
		p.Group = DefaultGroup
	}
	if p.ConsumerPrefix == "" {
		p.ConsumerPrefix = "c"
	}
	if p.NumWorkers <= 0 {
		p.NumWorkers = 2
	}
	if p.Logger == nil {
		p.Logger = logrus.New()
	}

	_ = p.Redis.XGroupCreateMkStream(ctx, p.Stream, p.Group, "0").Err() // ignore BUSYGROUP

	for i := 0; i < p.NumWorkers; i++ {
		consumer := p.ConsumerPrefix + "-" + strconv.Itoa(i+1)
		go p.runConsumer(ctx, consumer)
	}
	return nil
}

func (p *NotificationWorkerPool) runConsumer(ctx context.Context, consumer string) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		res, err := p.Redis.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    p.Group,
			Consumer: consumer,
			Streams:  []string{p.Stream, ">"},
			Count:    20,
			Block:    5 * time.Second,
		}).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) || ctx.Err() != nil {
				continue
			}
			p.Logger.WithError(err).Warn("notification stream read failed")
			time.Sleep(500 * time.Millisecond)
			continue
		}

		for _, stream := range res {
			for _, msg := range stream.Messages {
				p.handleMsg(ctx, msg)
				_ = p.Redis.XAck(ctx, p.Stream, p.Group, msg.ID).Err()
			}
		}
	}
}

func (p *NotificationWorkerPool) handleMsg(ctx context.Context, msg redis.XMessage) {
	n, err := decodeNotification(msg.Values)
	if err != nil {
		// poison entries are acked and dropped
		p.Logger.WithError(err).WithField("redis_id", msg.ID).Warn("bad notification entry")
		return
	}
	p.Deliver.Notify(ctx, n)
}

func decodeNotification(values map[string]any) (models.Notification, error) {
	var n models.Notification
	raw, _ := values[payloadField].(string)
	if raw == "" {
		return n, errors.New("missing payload")
	}
	if err := json.Unmarshal([]byte(raw), &n); err != nil {
		return n, err
	}
	if n.UserID == "" {
		return n, errors.New("missing user_id")
	}
	return n, nil
}
