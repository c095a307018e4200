// Command sweeper runs one sweep pass and exits. It is meant for cron-style
// schedulers that prefer a binary over the HTTP trigger.
package main

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lokercirebon/jobportal/config"
	"github.com/lokercirebon/jobportal/internal/bootstrap"
	"github.com/lokercirebon/jobportal/internal/cache"
	"github.com/lokercirebon/jobportal/internal/logger"
	"github.com/lokercirebon/jobportal/internal/services"
)

func main() {
	log := logger.New()

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("config error")
	}
	logger.SetLevel(log, cfg.Server.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Sweep.Timeout.Std())
	defer cancel()

	stores, err := bootstrap.Connect(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("store init error")
	}
	defer stores.Close(context.Background())

	var locker cache.Locker
	if stores.Redis != nil {
		locker = cache.NewRedisCache(stores.Redis)
	}

	sweeps := services.NewSweepService(stores.Deps(stores.Notifications(log), log), locker)
	res, err := sweeps.Run(ctx, time.Now().UTC())
	if err != nil {
		stores.Close(context.Background())
		log.WithError(err).Fatal("sweep failed")
	}
	log.WithFields(logrus.Fields{
		"completed_interviews": res.CompletedInterviews,
		"completed_contracts":  res.CompletedContracts,
		"expired_jobs":         res.ExpiredJobs,
		"skipped":              res.Skipped,
	}).Info("sweep finished")
}
