package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-co-op/gocron/v2"

	"github.com/courtflow/boxleague/internal/config"
	"github.com/courtflow/boxleague/internal/database"
	"github.com/courtflow/boxleague/internal/engine"
	server "github.com/courtflow/boxleague/internal/http"
	"github.com/courtflow/boxleague/internal/league"
	"github.com/courtflow/boxleague/internal/matches"
	"github.com/courtflow/boxleague/internal/metrics"
	"github.com/courtflow/boxleague/internal/pubsub"
	"github.com/courtflow/boxleague/internal/season"
	"github.com/courtflow/boxleague/internal/week"
)

func main() {
	// Start profiling timer
	startTime := time.Now()
	log.SetFormatter(log.JSONFormatter)
	cfg := config.Load()

	rules, err := config.LoadRules(cfg.RulesPath)
	if err != nil {
		log.Fatalf("Failed to load league rules: %s", err)
	}

	db, dbTeardown, err := database.InitDB(cfg.DBName, cfg.Turso.PrimaryURL, cfg.Turso.AuthToken, cfg.MigrationsDir)
	dbInitDuration := time.Since(startTime)
	log.Info("Database initialization time recorded", "duration_ms", dbInitDuration.Milliseconds())
	if err != nil {
		log.Fatalf("Failed to initialize database: %s", err)
	}
	defer func() {
		log.Info("Closing database connection")
		dbTeardown()
	}()

	weekStore := week.NewStore(db)
	memberStore := league.NewStore(db)
	matchSvc := matches.NewStore(db)
	seasonSvc := season.NewStore(db)
	metricsSvc := metrics.NewService()
	metricsHandler := metrics.NewMetricsHandler()
	counters := metrics.New(db)
	pubsubClient := pubsub.New(cfg.ProjectID)

	eng := engine.New(weekStore, memberStore, matchSvc, seasonSvc, metricsSvc, counters, pubsubClient, rules)
	weekManager := week.NewManager(weekStore, memberStore)

	s := server.NewServer(
		eng,
		weekManager,
		weekStore,
		memberStore,
		matchSvc,
		seasonSvc,
		metricsSvc,
		counters,
		metricsHandler,
		cfg,
	)

	var scheduler gocron.Scheduler
	if cfg.AutoFinalize {
		scheduler, err = gocron.NewScheduler()
		if err != nil {
			log.Fatalf("Failed to create scheduler: %s", err)
		}
		_, err = scheduler.NewJob(
			gocron.DurationJob(15*time.Minute),
			gocron.NewTask(func() {
				if err := eng.AutoFinalizeDue(cfg.LeagueID); err != nil {
					log.Error("Auto finalize run failed", "league_id", cfg.LeagueID, "error", err)
				}
			}),
		)
		if err != nil {
			log.Fatalf("Failed to schedule auto finalize job: %s", err)
		}
		scheduler.Start()
		log.Info("Auto finalize job scheduled", "interval", "15m")
	}

	// --- Record startup time ---
	startupDuration := time.Since(startTime)
	metricsSvc.SetStartupTime(startupDuration.Seconds())
	log.Info("Startup time recorded", "duration_ms", startupDuration.Milliseconds())

	// --- Graceful shutdown setup ---
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: s,
	}

	// Channel to listen for errors coming from the server
	serverErrors := make(chan error, 1)

	// Start the server in a goroutine
	go func() {
		log.Info("Server started", "port", cfg.Port)
		serverErrors <- srv.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	case sig := <-shutdown:
		log.Info("Shutdown signal received", "signal", sig)

		// Create a context with a timeout for the shutdown.
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if scheduler != nil {
			if err := scheduler.Shutdown(); err != nil {
				log.Error("Scheduler shutdown failed", "error", err)
			}
		}

		// Attempt to gracefully shut down the server.
		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Server shutdown failed", "error", err)
		} else {
			log.Info("Server gracefully stopped")
		}
	}

	log.Info("Server process shutting down")
}
