// File: cmd/app/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"serial-job-applier/internal/config"
	"serial-job-applier/internal/domain/ports/adapter"
	aiAdapters "serial-job-applier/internal/infra/adapters/ai"
	driverAdapters "serial-job-applier/internal/infra/adapters/driver"
	pg "serial-job-applier/internal/infra/db/postgres"
	"serial-job-applier/internal/infra/logging"
	"serial-job-applier/internal/infra/metrics"
	red "serial-job-applier/internal/infra/redis"
	"serial-job-applier/internal/infra/web"
	"serial-job-applier/internal/infra/worker"
	"serial-job-applier/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, relaxed checks)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		log.Info().Msg("dev mode enabled")
	}
	metrics.MustRegister()

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()
	if err := pg.EnsureSchema(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("schema")
	}

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("redis")
	}
	defer redisClient.Close()

	// ---- Repositories ----
	taskRepo := pg.NewTaskRepo(pool)
	dispatchRepo := pg.NewDispatchRepo(pool)
	companyRepo := pg.NewCompanyRepo(pool)
	appliedRepo := pg.NewAppliedJobRepo(pool)
	sessionStore := red.NewSessionStore(redisClient)
	quota := red.NewSendQuota(redisClient, cfg.Outreach.QuotaWindow)
	locker := red.NewAccountLocker(redisClient)

	// ---- Broker ----
	publisher := red.NewPublisher(redisClient, cfg.Broker.PublishAttempts, cfg.Broker.PublishBackoff, log)

	// ---- Worker pool ----
	wpool := worker.NewPool(cfg.Worker.Count, *log)
	wpool.Start(ctx)
	defer wpool.Stop()

	// ---- AI adapter ----
	var llm adapter.LanguageModel
	if cfg.AI.APIKey != "" {
		openAI, err := aiAdapters.NewOpenAIAdapter(&cfg.AI)
		if err != nil {
			log.Fatal().Err(err).Msg("openai adapter")
		}
		llm = aiAdapters.NewLimitedAI(openAI, cfg.AI.ConcurrentLimit)
		log.Info().Str("model", cfg.AI.Model).Msg("AI adapter: OpenAI")
	} else {
		llm = aiAdapters.NewNoopAIAdapter()
		log.Warn().Msg("no AI key configured; classification will default to Other and form answers to profile values")
	}

	// ---- Browser driver ----
	browser := driverAdapters.NewHTTPDriver(&cfg.Driver)

	// ---- Listener (result watching + logging consumers) ----
	var tasks usecase.TaskUseCase
	listener := red.NewListener(redisClient, cfg.Broker.DedupeSize, func(correlationID string) {
		// Only task-correlated topics arm timers, so the id is a task id.
		if tasks != nil {
			tasks.FailTimeout(correlationID)
		}
	}, *log)
	logResult := func(topic string) adapter.Handler {
		return func(ctx context.Context, env adapter.Envelope) {
			log.Info().Str("topic", topic).Str("correlation_id", env.CorrelationID).Msg("result delivered")
		}
	}
	listener.Subscribe(adapter.TopicJobResults, logResult(adapter.TopicJobResults))
	listener.Subscribe(adapter.TopicOutreachSearchResults, logResult(adapter.TopicOutreachSearchResults))
	listener.Subscribe(adapter.TopicOutreachResults, logResult(adapter.TopicOutreachResults))
	listener.Subscribe(adapter.TopicSearchComplete, func(ctx context.Context, env adapter.Envelope) {
		log.Info().Str("session_id", env.CorrelationID).Msg("search phase completed")
	})
	go func() {
		if err := listener.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("listener stopped")
		}
	}()

	// ---- Use cases ----
	tasks = usecase.NewTaskUseCase(taskRepo, wpool, listener, cfg.Broker.ResultTimeout, log)
	forms := usecase.NewFormRunner(browser, llm, cfg.Form, *log)
	applyUC := usecase.NewJobApplyUseCase(browser, forms, appliedRepo, locker, publisher, cfg.Form, log)
	searchUC := usecase.NewOutreachSearchUseCase(companyRepo, sessionStore, browser, llm, locker, publisher, cfg.Outreach, cfg.Form, cfg.Session, log)
	sendUC := usecase.NewOutreachSendUseCase(sessionStore, dispatchRepo, quota, locker, browser, publisher, cfg.Outreach, cfg.Form, log)

	// ---- HTTP server ----
	srv := web.NewServer(tasks, applyUC, searchUC, sendUC, companyRepo, dispatchRepo, log)
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info().Str("addr", server.Addr).Msg("http listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("http server error")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	log.Info().Msg("shutdown requested")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("http shutdown")
	}
	cancel()
}
