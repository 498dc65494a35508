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

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ai-startup-tracker/tracker/internal/api"
	"github.com/ai-startup-tracker/tracker/internal/cache"
	"github.com/ai-startup-tracker/tracker/internal/config"
	"github.com/ai-startup-tracker/tracker/internal/core"
	"github.com/ai-startup-tracker/tracker/internal/logger"
	"github.com/ai-startup-tracker/tracker/internal/store"
)

var (
	version = "dev"
	commit  = "none"
)

var flagConfig string

var rootCmd = &cobra.Command{
	Use:          "tracker",
	Short:        "AI startup tracker API server",
	SilenceUsage: true,
	RunE:         runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the JSON API and RSS feed",
	RunE:  runServe,
}

var initDBCmd = &cobra.Command{
	Use:   "init-db",
	Short: "Create the SQLite schema",
	RunE:  runInitDB,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("tracker %s (commit: %s)\n", version, commit)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file")
	rootCmd.AddCommand(serveCmd, initDBCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setup loads configuration, initialises logging and opens the store.
func setup(ctx context.Context) (*config.Config, *store.Store, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, nil, err
	}
	logger.Init(cfg.LogLevel, cfg.LogFormat)

	dsn, err := cfg.DSN()
	if err != nil {
		return nil, nil, err
	}
	openCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	s, err := store.Open(openCtx, cfg.Driver(), dsn, cfg.DBMaxOpenConns)
	if err != nil {
		return nil, nil, err
	}
	log.Info().Str("driver", cfg.Driver()).Int("max_open_conns", cfg.DBMaxOpenConns).Msg("database connected")
	return cfg, s, nil
}

func runInitDB(cmd *cobra.Command, args []string) error {
	_, s, err := setup(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.InitSchema(cmd.Context()); err != nil {
		return err
	}
	log.Info().Msg("schema initialized")
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, s, err := setup(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()

	responses := cache.New(cfg.CacheTTLDuration())
	directory := core.NewDirectoryService(s, responses)
	h := api.NewAPIHandler(
		directory,
		core.NewFeedService(s, cfg.SiteURL),
		core.NewTicketService(s),
	)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      api.NewRouter(h),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Dur("cache_ttl", responses.TTL()).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigs)

	for {
		select {
		case err := <-errCh:
			return fmt.Errorf("could not listen on %s: %w", srv.Addr, err)
		case sig := <-sigs:
			if sig == syscall.SIGHUP {
				n := directory.Flush()
				log.Info().Int("entries", n).Msg("cache cleared")
				continue
			}
			log.Info().Str("signal", sig.String()).Msg("shutting down server")
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				return fmt.Errorf("server forced to shutdown: %w", err)
			}
			log.Info().Msg("server exiting gracefully")
			return nil
		}
	}
}
