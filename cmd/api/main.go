package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/linskybing/fieldreport-go/internal/api/middleware"
	"github.com/linskybing/fieldreport-go/internal/api/routes"
	"github.com/linskybing/fieldreport-go/internal/application"
	"github.com/linskybing/fieldreport-go/internal/config"
	"github.com/linskybing/fieldreport-go/internal/config/db"
	"github.com/linskybing/fieldreport-go/internal/domain/schema"
	"github.com/linskybing/fieldreport-go/internal/logging"
	"github.com/linskybing/fieldreport-go/internal/mirror"
	"github.com/linskybing/fieldreport-go/internal/repository"
	"github.com/linskybing/fieldreport-go/internal/storage"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 15 * time.Second

// @title Field Report API
// @version 1.0
// @description Dynamic construction-site forms with chained follow-ups, photo storage and exports.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	root := &cobra.Command{
		Use:           "fieldreport-api",
		Short:         "Field report forms API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			config.LoadConfig()
			logging.Setup(config.LogLevel, config.LogFormat, os.Stdout)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
	root.AddCommand(newServeCmd(), newMigrateCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		logrus.WithError(err).Error("fieldreport-api failed")
		stop()
		os.Exit(1)
	}
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database tables and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := db.Init(); err != nil {
				return err
			}
			if err := db.Migrate(db.DB); err != nil {
				return err
			}
			logrus.Info("migration completed")
			return nil
		},
	}
}

func runServe(ctx context.Context) error {
	middleware.Init()

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

	docMirror, err := openMirror(ctx)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := docMirror.Close(closeCtx); err != nil {
			logrus.WithError(err).Warn("close mirror")
		}
	}()

	registry := schema.Default()
	repos := repository.New(db.DB)
	svc := application.New(repos, registry, blob, docMirror)

	if config.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := &http.Server{
		Addr:              ":" + config.ServerPort,
		Handler:           routes.NewRouter(repos, svc, registry),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logrus.WithField("addr", srv.Addr).Info("starting API server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logrus.Info("shutting down API server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// openMirror connects to MongoDB when MONGO_URI is set. Without it the
// mirror is disabled and submissions only land in the record store.
func openMirror(ctx context.Context) (mirror.Mirror, error) {
	if config.MongoURI == "" {
		logrus.Warn("MONGO_URI not set, document mirror disabled")
		return mirror.Noop{}, nil
	}
	m, err := mirror.NewMongoMirror(ctx, config.MongoURI, config.MongoDatabase)
	if err != nil {
		return nil, fmt.Errorf("document mirror: %w", err)
	}
	return m, nil
}
