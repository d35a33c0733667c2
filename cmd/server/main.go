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

	"github.com/St1cky1/taskboard/internal/api"
	grpcapi "github.com/St1cky1/taskboard/internal/api/grpc"
	"github.com/St1cky1/taskboard/internal/api/handlers"
	"github.com/St1cky1/taskboard/internal/board"
	"github.com/St1cky1/taskboard/internal/config"
	"github.com/St1cky1/taskboard/internal/infrastructure/auth"
	"github.com/St1cky1/taskboard/internal/infrastructure/client"
	"github.com/St1cky1/taskboard/internal/logging"
	"github.com/St1cky1/taskboard/internal/repository"
	"github.com/St1cky1/taskboard/internal/usecase"
	"github.com/St1cky1/taskboard/internal/worker"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const (
	tokenCleanupInterval = time.Hour
	shutdownTimeout      = 10 * time.Second
)

func main() {
	var configPath string

	cmd := &cobra.Command{
		Use:          "taskboard-server",
		Short:        "Task board HTTP and gRPC server",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return run(ctx, cfg)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "path to YAML config (default $"+config.EnvConfigPath+")")

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config) error {
	logger := logging.New(cfg.Log.Level, cfg.Log.Format)

	// Запускаем миграции
	if cfg.Database.RunMigrations {
		if err := repository.RunMigrations(cfg.Database.URL()); err != nil {
			logger.WithError(err).Error("migrations failed")
			return err
		}
		logger.Info("миграции выполнены")
	}

	// Подключаемся к БД
	pg, err := client.NewPostgresClient(ctx, cfg.Database)
	if err != nil {
		logger.WithError(err).Error("database unavailable")
		return err
	}
	defer pg.Close()
	logger.Info("подключение к БД установлено")

	userRepo := repository.NewUserRepository(pg.Pool)
	auditRepo := repository.NewTaskAuditRepository(pg.Pool)
	refreshRepo := repository.NewRefreshTokenRepository(pg.Pool)
	var taskRepo repository.ITaskRepository = repository.NewTaskRepository(pg.Pool)

	// Redis не обязателен: без него доска читается прямо из БД
	if cfg.Redis.URL != "" && cfg.Redis.CacheTTL > 0 {
		rdb, err := client.NewRedisClient(ctx, cfg.Redis.URL)
		if err != nil {
			logger.WithError(err).Warn("redis unavailable, board cache disabled")
		} else {
			defer rdb.Close()
			taskRepo = repository.NewCachedTaskRepository(taskRepo, rdb, cfg.Redis.CacheTTL, logging.Component(logger, "cache"))
		}
	}

	// RabbitMQ не обязателен: без него аудит не пишется
	var publisher usecase.RabbitMQPublisher
	rabbitMQ, err := client.NewRabbitMQClient(cfg.RabbitMQ.URL(), cfg.RabbitMQ.AuditQueue, logging.Component(logger, "rabbitmq"))
	if err != nil {
		logger.WithError(err).Warn("rabbitmq unavailable, audit publishing disabled")
	} else {
		defer rabbitMQ.Close()
		publisher = rabbitMQ
	}

	taskService := usecase.NewTaskService(taskRepo, userRepo, auditRepo, publisher, logging.Component(logger, "tasks"))
	userService := usecase.NewUserService(userRepo)
	jwtManager := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTTL, cfg.Auth.RefreshTTL)
	authService := usecase.NewAuthService(userRepo, refreshRepo, auth.NewPasswordManager(), jwtManager, logging.Component(logger, "auth"))

	sessions := board.NewSessions(cfg.Board.SessionTTL, logging.Component(logger, "board"))

	router := api.NewRouter(api.Deps{
		Tasks:    taskService,
		Auth:     authService,
		Users:    userService,
		Tokens:   authService,
		Sessions: sessions,
		TasksFor: func(userID string) board.TaskAPI {
			return usecase.NewUserTasks(taskService, userID)
		},
		Health: pg,
		Cookie: handlers.CookieConfig{
			Name:   cfg.Auth.CookieName,
			Secure: cfg.Auth.CookieSecure,
			MaxAge: cfg.Auth.AccessTTL,
		},
		LoginPerMinute:    cfg.Auth.LoginPerMinute,
		TrustProxyHeaders: cfg.TrustProxyHeaders,
		Logger:            logging.Component(logger, "http"),
	})
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	grpcServer := grpcapi.NewGRPCServer(taskService, authService, logging.Component(logger, "grpc"))

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.WithField("addr", cfg.HTTPAddr).Info("HTTP server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := grpcServer.Start(cfg.GRPCAddr); err != nil {
			return fmt.Errorf("grpc server: %w", err)
		}
		return nil
	})
	if publisher != nil {
		auditWorker := worker.NewAuditWorker(rabbitMQ.URL(), rabbitMQ.QueueName(), auditRepo, logging.Component(logger, "audit_worker"))
		g.Go(func() error { return auditWorker.Run(ctx) })
	}
	g.Go(func() error {
		return worker.NewTokenJanitor(authService, tokenCleanupInterval, logging.Component(logger, "token_janitor")).Run(ctx)
	})
	g.Go(func() error { return sessions.Run(ctx, cfg.Board.SweepInterval) })

	// Ждем сигнал завершения или ошибку любой из горутин
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("завершение работы")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		grpcServer.Stop()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.WithError(err).Error("server stopped with error")
		return err
	}
	logger.Info("приложение завершено корректно")
	return nil
}
