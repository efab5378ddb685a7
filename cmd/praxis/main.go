package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/praxis-compliance/praxis/internal/app"
	"github.com/praxis-compliance/praxis/internal/auth"
	"github.com/praxis-compliance/praxis/internal/authz"
	"github.com/praxis-compliance/praxis/internal/clients"
	"github.com/praxis-compliance/praxis/internal/documents"
	"github.com/praxis-compliance/praxis/internal/filings"
	"github.com/praxis-compliance/praxis/internal/observability"
	"github.com/praxis-compliance/praxis/internal/platform/cache"
	"github.com/praxis-compliance/praxis/internal/platform/db"
	"github.com/praxis-compliance/praxis/internal/servicerequests"
	"github.com/praxis-compliance/praxis/internal/shared"
	"github.com/praxis-compliance/praxis/internal/tenant"
	"github.com/praxis-compliance/praxis/internal/users"
	"github.com/praxis-compliance/praxis/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "praxis_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())

	// The matrix is loaded once at startup; a malformed file is fatal.
	matrix, err := authz.LoadMatrix(cfg.AuthzMatrixPath)
	if err != nil {
		logger.Error("load permission matrix", slog.Any("error", err))
		os.Exit(1)
	}

	metrics := observability.NewMetrics()

	jobClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()

	recorder := authz.NewRecorder(authz.NewPGDecisionStore(pool), logger,
		authz.WithIncidentNotifier(jobs.NewIncidentNotifier(jobClient, logger)),
		authz.WithDecisionMetrics(metrics),
	)
	recorderCtx, stopRecorder := context.WithCancel(context.Background())
	go recorder.Run(recorderCtx)

	owners := authz.NewPGOwnershipChecker(pool, logger)
	evaluator := authz.NewEvaluator(matrix, owners, recorder, logger)
	guard := authz.NewGuard(evaluator, logger)

	scopes := tenant.NewFactory(pool)

	authRepo := auth.NewRepository(pool)
	authService := auth.NewService(authRepo)
	authHandler := auth.NewHandler(logger, authService, sessionManager)

	clientsService := clients.NewService(scopes, clients.NewRepository())
	clientsHandler := clients.NewHandler(logger, clientsService, guard)

	documentsService := documents.NewService(scopes, documents.NewRepository())
	documentsHandler := documents.NewHandler(logger, documentsService, guard)

	filingsService := filings.NewService(scopes, filings.NewRepository())
	filingsHandler := filings.NewHandler(logger, filingsService, guard)

	requestsService := servicerequests.NewService(scopes, servicerequests.NewRepository())
	requestsHandler := servicerequests.NewHandler(logger, requestsService, guard)

	usersService := users.NewService(scopes, users.NewRepository())
	usersHandler := users.NewHandler(logger, usersService, guard)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:                logger,
		Config:                cfg,
		SessionManager:        sessionManager,
		Guard:                 guard,
		AuthHandler:           authHandler,
		ClientsHandler:        clientsHandler,
		DocumentsHandler:      documentsHandler,
		FilingsHandler:        filingsHandler,
		ServiceRequestHandler: requestsHandler,
		UsersHandler:          usersHandler,
		JobHandler:            jobHandler,
		Pool:                  pool,
		Metrics:               metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}

	// Stop the recorder after the server so in-flight decisions flush.
	stopRecorder()
	select {
	case <-recorder.Done():
	case <-time.After(5 * time.Second):
		logger.Warn("audit recorder drain timed out")
	}
}
