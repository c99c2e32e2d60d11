package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/bwmarrin/discordgo"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/pindoc/internal/adapters/driven/dates"
	"github.com/custodia-labs/pindoc/internal/adapters/driven/discord"
	discordbot "github.com/custodia-labs/pindoc/internal/adapters/driving/discord"
	httpapi "github.com/custodia-labs/pindoc/internal/adapters/driving/http"
	"github.com/custodia-labs/pindoc/internal/core/domain"
	"github.com/custodia-labs/pindoc/internal/core/ports/driven"
	"github.com/custodia-labs/pindoc/internal/core/services"
	"github.com/custodia-labs/pindoc/internal/worker"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the Discord bot",
	Long: `Connects to the Discord gateway and answers the ping, help and doc commands.
Reports are generated by a pool of workers; the HTTP server exposes health
checks and the report run history when HTTP_PORT is not 0.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if err := cfg.RequireToken(); err != nil {
		return err
	}
	permission, err := cfg.Permission()
	if err != nil {
		return err
	}
	logger := slog.Default()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("pindoc starting", "version", version)

	b, err := openBackends(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer b.Close()

	// ===== Discord session =====
	session, err := discordgo.New(cfg.BotToken())
	if err != nil {
		return fmt.Errorf("create discord session: %w", err)
	}
	session.Identify.Intents = discordbot.Intents
	if err := session.Open(); err != nil {
		return fmt.Errorf("open discord gateway: %w", err)
	}
	defer session.Close()

	botID := cfg.AppID
	if session.State != nil && session.State.User != nil {
		botID = session.State.User.ID
	}
	logger.Info("connected to discord", "bot_id", botID)

	// ===== Services =====
	reports := services.NewReportService(services.ReportServiceConfig{
		Platform:             discord.NewPlatform(session),
		DateParser:           dates.NewParser(),
		Lock:                 b.lock,
		RunStore:             b.runs,
		Logger:               logger,
		Filename:             cfg.ReportFilename,
		EmptySectionTemplate: cfg.EmptySectionTemplate,
		LockTTL:              cfg.ReportLockTTL,
	})

	// ===== Worker =====
	w := worker.NewWorker(worker.WorkerConfig{
		Queue:   b.queue,
		Reports: reports,
		Sinks: func(job *domain.ReportJob) driven.DeliverySink {
			return discord.NewReplySink(session, job)
		},
		Logger:         logger,
		Concurrency:    cfg.WorkerConcurrency,
		DequeueTimeout: cfg.WorkerDequeueTimeout,
		JobTimeout:     cfg.ReportLockTTL,
	})
	if err := w.Start(ctx); err != nil {
		return fmt.Errorf("start worker: %w", err)
	}

	// ===== Command router =====
	router := discordbot.NewRouter(discordbot.RouterConfig{
		Session:            session,
		Queue:              b.queue,
		Logger:             logger,
		BotID:              botID,
		OwnerID:            cfg.OwnerID,
		Prefix:             cfg.CommandPrefix,
		RequiredPermission: permission,
	})
	unregister := router.Register(session)
	defer unregister()

	// ===== HTTP (optional) =====
	httpDone := make(chan error, 1)
	if cfg.HTTPPort > 0 {
		server := httpapi.NewServer(httpapi.Config{
			Host:    "0.0.0.0",
			Port:    cfg.HTTPPort,
			Version: version,
			Logger:  logger,
		}, reports, readinessChecks(b, w), func() int { return w.Health().QueueDepth })
		go func() {
			httpDone <- server.Start(ctx)
			close(httpDone)
		}()
	} else {
		close(httpDone)
	}

	logger.Info("pindoc ready", "prefix", cfg.CommandPrefix, "workers", cfg.WorkerConcurrency)

	select {
	case <-ctx.Done():
	case err, ok := <-httpDone:
		if ok && err != nil {
			stop()
			w.Stop()
			return err
		}
		<-ctx.Done()
	}

	logger.Info("shutdown signal received, stopping")
	w.Stop()
	if err, ok := <-httpDone; ok && err != nil {
		logger.Error("http server stopped with error", "error", err)
	}
	return nil
}

// readinessChecks adds the worker pool to the backend checks
func readinessChecks(b *backends, w *worker.Worker) map[string]httpapi.Pinger {
	checks := make(map[string]httpapi.Pinger, len(b.checks)+1)
	for name, p := range b.checks {
		checks[name] = p
	}
	checks["worker"] = w
	return checks
}
