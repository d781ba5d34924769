package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"github.com/top242011/relife-app/internal/api"
	"github.com/top242011/relife-app/internal/auth"
	"github.com/top242011/relife-app/internal/config"
	"github.com/top242011/relife-app/internal/directory"
	"github.com/top242011/relife-app/internal/meeting"
	"github.com/top242011/relife-app/internal/member"
	"github.com/top242011/relife-app/internal/metrics"
	"github.com/top242011/relife-app/internal/ratelimit"
	"github.com/top242011/relife-app/internal/session"
	"github.com/top242011/relife-app/internal/user"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Relife API server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return err
	}
	slog.Info("connected to database")

	accounts := user.NewStore(pool)
	sessions := session.NewMemoryStore()
	authService := auth.NewService(accounts, sessions)

	m := metrics.New()
	m.RegisterDBPoolCollector(accounts.PoolStat)
	m.RegisterSessionGauge(sessions.Len)

	router := api.NewRouter(api.RouterDeps{
		Auth:        authService,
		Sessions:    sessions,
		Members:     member.NewStore(pool),
		Assignments: member.NewAssignmentStore(pool),
		Directory:   directory.NewStore(pool),
		Meetings:    meeting.NewStore(pool),
		Limiter:     ratelimit.New(cfg.RateLimit.Default, cfg.RateLimit.Window),
		Metrics:     m,
		CORSOrigins: cfg.CORS.AllowedOrigins,
		Production:  cfg.Auth.Production,
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-sigCh
	slog.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	return srv.Shutdown(shutdownCtx)
}
