package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/linskybing/fieldreport-go/internal/application"
	"github.com/linskybing/fieldreport-go/internal/config"
	"github.com/linskybing/fieldreport-go/internal/config/db"
	"github.com/linskybing/fieldreport-go/internal/cron"
	"github.com/linskybing/fieldreport-go/internal/logging"
	"github.com/linskybing/fieldreport-go/internal/repository"
	"github.com/linskybing/fieldreport-go/internal/storage"
	"github.com/sirupsen/logrus"
)

func main() {
	config.LoadConfig()
	logging.Setup(config.LogLevel, config.LogFormat, os.Stdout)

	if err := run(); err != nil {
		logrus.WithError(err).Fatal("scheduler failed")
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := db.Init(); err != nil {
		return err
	}
	if err := db.Migrate(db.DB); err != nil {
		return err
	}

	blob, err := storage.NewMinioStore(ctx, storage.MinioConfig{
		Endpoint:  config.MinioEndpoint,
		AccessKey: config.MinioAccessKey,
		SecretKey: config.MinioSecretKey,
		UseSSL:    config.MinioUseSSL,
		Bucket:    config.MinioBucket,
		PublicURL: config.MinioPublicURL,
	})
	if err != nil {
		return fmt.Errorf("blob store: %w", err)
	}

	repos := repository.New(db.DB)
	sched := cron.New(
		application.NewBackupService(repos, blob),
		application.NewAuditService(repos),
		config.AuditRetentionDays,
	)
	if err := sched.Register(config.BackupSchedule, config.CleanupSchedule); err != nil {
		return err
	}

	sched.Start()
	logrus.WithField("jobs", sched.Jobs()).Info("scheduler started")

	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	sched.Stop(stopCtx)
	logrus.Info("scheduler stopped")
	return nil
}
