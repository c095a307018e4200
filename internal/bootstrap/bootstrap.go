// Package bootstrap connects the stores named in config and assembles the
// service dependencies shared by the binaries.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"

	"github.com/lokercirebon/jobportal/config"
	mongorepo "github.com/lokercirebon/jobportal/internal/repositories/mongo"
	pgrepo "github.com/lokercirebon/jobportal/internal/repositories/postgres"
	"github.com/lokercirebon/jobportal/internal/services"
)

type Stores struct {
	DB    *gorm.DB
	Redis *redis.Client
	Mongo *mongo.Database
}

// Connect opens postgres and, when configured, redis and mongo.
func Connect(ctx context.Context, cfg *config.Config, log *logrus.Logger) (*Stores, error) {
	db, err := config.InitPostgres(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("postgres: %w", err)
	}
	log.Info("PostgreSQL connected")

	st := &Stores{DB: db}

	st.Redis, err = config.InitRedis(cfg.Redis.Addr)
	switch {
	case err != nil:
		log.WithError(err).Warn("Redis unavailable; cache and realtime disabled")
	case st.Redis == nil:
		log.Info("Redis not configured")
	default:
		log.Info("Redis connected")
	}

	st.Mongo, err = config.InitMongo(cfg.Mongo)
	switch {
	case err != nil:
		log.WithError(err).Warn("MongoDB unavailable; notifications are logged only")
	case st.Mongo == nil:
		log.Info("MongoDB not configured")
	default:
		if err := config.EnsureMongoIndexes(ctx, st.Mongo); err != nil {
			log.WithError(err).Warn("MongoDB index setup failed")
		}
		log.Info("MongoDB connected")
	}
	return st, nil
}

func (s *Stores) Close(ctx context.Context) {
	if s.Redis != nil {
		_ = s.Redis.Close()
	}
	if s.Mongo != nil {
		_ = s.Mongo.Client().Disconnect(ctx)
	}
	if sqlDB, err := s.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func (s *Stores) Repos() services.Repos {
	return services.Repos{
		Users:        pgrepo.NewUserRepo(s.DB),
		Jobseekers:   pgrepo.NewJobseekerRepo(s.DB),
		Companies:    pgrepo.NewCompanyRepo(s.DB),
		Recruiters:   pgrepo.NewRecruiterRepo(s.DB),
		Jobs:         pgrepo.NewJobRepo(s.DB),
		Applications: pgrepo.NewApplicationRepo(s.DB),
		Interviews:   pgrepo.NewInterviewRepo(s.DB),
		Contracts:    pgrepo.NewContractRepo(s.DB),
		Resignations: pgrepo.NewResignationRepo(s.DB),
		Audit:        pgrepo.NewAuditRepo(s.DB),
	}
}

func (s *Stores) Notifications(log *logrus.Logger) services.NotificationService {
	var repo mongorepo.NotificationRepository
	if s.Mongo != nil {
		repo = mongorepo.NewNotificationRepo(s.Mongo)
	}
	return services.NewNotificationService(repo, s.Redis, log)
}

func (s *Stores) Deps(notifier services.Notifier, log *logrus.Logger) services.Deps {
	return services.Deps{
		Repos:    s.Repos(),
		Tx:       pgrepo.NewTransactionManager(s.DB),
		Notifier: notifier,
		Log:      log,
	}
}
