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

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"

	"github.com/olenaliuby/social-media-api/config"
	"github.com/olenaliuby/social-media-api/database"
	"github.com/olenaliuby/social-media-api/handlers"
	"github.com/olenaliuby/social-media-api/logger"
	"github.com/olenaliuby/social-media-api/repositories"
	"github.com/olenaliuby/social-media-api/routes"
	"github.com/olenaliuby/social-media-api/scheduler"
	"github.com/olenaliuby/social-media-api/services"
	"github.com/olenaliuby/social-media-api/storage"
)

func main() {
	cfg := config.Load()

	root := &cli.Command{
		Name:  "social-media-api",
		Usage: "Social network REST API",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "db-driver", Value: cfg.DBDriver, Usage: "postgres or sqlite"},
			&cli.StringFlag{Name: "dsn", Value: cfg.DBDSN, Usage: "database DSN"},
			&cli.StringFlag{Name: "log-level", Value: cfg.LogLevel},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			cfg.DBDriver = c.String("db-driver")
			cfg.DBDSN = c.String("dsn")
			cfg.LogLevel = c.String("log-level")
			logger.InitLogger(cfg.LogLevel, cfg.LogFile)
			return ctx, nil
		},
		Commands: []*cli.Command{
			serveCommand(&cfg),
			migrateCommand(&cfg),
			workerCommand(&cfg),
			cleanupTokensCommand(&cfg),
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return runServer(ctx, &cfg, true)
		},
	}

	if err := root.Run(context.Background(), os.Args); err != nil {
		logrus.WithError(err).Fatal("Command failed")
	}
}

func serveCommand(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP API",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "port", Value: cfg.Port, Usage: "HTTP listen port"},
			&cli.BoolFlag{Name: "with-worker", Value: true, Usage: "also run the scheduled post worker"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg.Port = c.String("port")
			return runServer(ctx, cfg, c.Bool("with-worker"))
		},
	}
}

func migrateCommand(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Apply the database schema and exit",
		Action: func(ctx context.Context, c *cli.Command) error {
			db, err := openDB(cfg)
			if err != nil {
				return err
			}
			defer db.Close()
			color.Green("Database schema is up to date")
			return nil
		},
	}
}

func workerCommand(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "worker",
		Usage: "Run only the scheduled post worker",
		Action: func(ctx context.Context, c *cli.Command) error {
			db, err := openDB(cfg)
			if err != nil {
				return err
			}
			defer db.Close()
			a, err := wire(cfg, db)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return a.worker.Run(ctx)
		},
	}
}

func cleanupTokensCommand(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "cleanup-tokens",
		Usage: "Remove all blacklisted tokens",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "expired", Usage: "also remove expired tokens"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			db, err := openDB(cfg)
			if err != nil {
				return err
			}
			defer db.Close()
			a, err := wire(cfg, db)
			if err != nil {
				return err
			}
			n, err := a.accounts.CleanupTokens(ctx, c.Bool("expired"))
			if err != nil {
				return err
			}
			color.Green("Successfully removed %d tokens", n)
			return nil
		},
	}
}

func openDB(cfg *config.Config) (*database.DB, error) {
	db, err := database.New(cfg.DBDriver, cfg.DBDSN, cfg.DBDebug)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(cfg.Migrations); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

type application struct {
	accounts *services.AccountService
	router   http.Handler
	worker   *scheduler.Worker
}

func wire(cfg *config.Config, db *database.DB) (*application, error) {
	var media interface {
		services.MediaStore
		URL(key string) string
	}
	mediaRoutes := routes.Media{URL: cfg.MediaURL}
	if cfg.S3Bucket != "" {
		s3, err := storage.NewS3Store(cfg.S3Bucket, cfg.S3Region)
		if err != nil {
			return nil, err
		}
		media = s3
	} else {
		media = storage.NewLocalStore(cfg.MediaRoot, cfg.MediaURL)
		mediaRoutes.Root = cfg.MediaRoot
	}

	jobs, err := scheduler.NewStore(db)
	if err != nil {
		return nil, err
	}

	users := repositories.NewUserRepository(db.DB)
	tokens := repositories.NewTokenRepository(db.DB)
	profiles := repositories.NewProfileRepository(db.DB)
	follows := repositories.NewFollowRepository(db.DB)
	posts := repositories.NewPostRepository(db.DB)
	likes := repositories.NewLikeRepository(db.DB)
	comments := repositories.NewCommentRepository(db.DB)

	accounts := services.NewAccountService(users, tokens, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	postService := services.NewPostService(profiles, posts, likes, jobs, media)

	worker := scheduler.NewWorker(jobs, scheduler.Options{
		PollInterval: cfg.SchedulerPollInterval,
		Concurrency:  cfg.SchedulerWorkers,
		MaxAttempts:  cfg.SchedulerMaxAttempts,
	})
	worker.Handle(services.JobCreateScheduledPost, postService.PublishScheduled)

	router := routes.SetupRoutes(routes.Handlers{
		User: handlers.NewUserHandler(accounts),
		Profile: handlers.NewProfileHandler(
			services.NewProfileService(profiles, media),
			services.NewFollowService(profiles, follows),
			media.URL,
		),
		Post:    handlers.NewPostHandler(postService, media.URL),
		Comment: handlers.NewCommentHandler(services.NewCommentService(profiles, posts, comments)),
		System:  handlers.NewSystemHandler(db),
	}, accounts, mediaRoutes)

	return &application{accounts: accounts, router: router, worker: worker}, nil
}

func runServer(ctx context.Context, cfg *config.Config, withWorker bool) error {
	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	a, err := wire(cfg, db)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	workerDone := make(chan error, 1)
	if withWorker {
		go func() { workerDone <- a.worker.Run(ctx) }()
	} else {
		close(workerDone)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           a.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logrus.Infof("Server running on port %s", cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logrus.Info("Shutting down")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			stop()
			<-workerDone
			return fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err = srv.Shutdown(shutdownCtx)
	stop()
	<-workerDone
	return err
}
