package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/FildCommander/ytptube/internal/common/fsutil"
	"github.com/FildCommander/ytptube/internal/config"
	"github.com/FildCommander/ytptube/internal/httpapi"
	"github.com/FildCommander/ytptube/internal/notify"
	"github.com/FildCommander/ytptube/internal/version"
)

func main() {
	if err := buildRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// buildRootCmd constructs the Cobra command tree.
func buildRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "ytptube",
		Short:         "Download manager notification service",
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	var (
		cfgPath     string
		addr        string
		configDir   string
		debug       bool
		logLevel    string
		corsEnabled bool
		corsOrigins []string
	)

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Config{}
			if cfgPath != "" {
				loaded, err := config.Load(cfgPath)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				cfg = loaded
			}
			// Flags and environment override the file.
			if cmd.Flags().Changed("addr") || cfg.Addr == "" {
				cfg.Addr = addr
			}
			if cmd.Flags().Changed("config-dir") || cfg.ConfigDir == "" {
				cfg.ConfigDir = configDir
			}
			if cmd.Flags().Changed("debug") {
				cfg.Debug = debug
			}
			if cmd.Flags().Changed("log-level") || cfg.LogLevel == "" {
				cfg.LogLevel = logLevel
			}
			if cmd.Flags().Changed("cors-enabled") {
				cfg.CORSEnabled = corsEnabled
			}
			if cmd.Flags().Changed("cors-origins") {
				cfg.CORSOrigins = corsOrigins
			}
			if cfg.RequestTimeoutSecs <= 0 {
				cfg.RequestTimeoutSecs = 60
			}
			if cfg.ShutdownGraceSecs <= 0 {
				cfg.ShutdownGraceSecs = 5
			}
			return runServe(cfg)
		},
	}

	serve.Flags().StringVar(&cfgPath, "config", os.Getenv("YTPTUBE_CONFIG"), "Config file (.yaml, .json or .toml)")
	serve.Flags().StringVar(&addr, "addr", envOr("YTPTUBE_ADDR", ":8081"), "HTTP listen address, e.g. :8081")
	serve.Flags().StringVar(&configDir, "config-dir", envOr("YTPTUBE_CONFIG_DIR", "~/.config/ytptube"), "Directory holding notifications.json")
	serve.Flags().BoolVar(&debug, "debug", os.Getenv("YTPTUBE_DEBUG") == "1", "Log webhook response bodies")
	serve.Flags().StringVar(&logLevel, "log-level", envOr("YTPTUBE_LOG_LEVEL", "info"), "Log level: debug|info|warn|error")
	serve.Flags().BoolVar(&corsEnabled, "cors-enabled", false, "Enable CORS middleware")
	serve.Flags().StringSliceVar(&corsOrigins, "cors-origins", nil, "Allowed CORS origins")

	root.AddCommand(serve)
	return root
}

func runServe(cfg config.Config) error {
	lvl, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	log := zerolog.New(os.Stderr).Level(lvl).With().Timestamp().Logger()

	dir, err := fsutil.ExpandHome(cfg.ConfigDir)
	if err != nil {
		return err
	}
	if err := fsutil.EnsureDir(dir); err != nil {
		return fmt.Errorf("config dir: %w", err)
	}

	svc := notify.NewService(notify.Options{
		File:   filepath.Join(dir, "notifications.json"),
		Client: &http.Client{Timeout: time.Duration(cfg.RequestTimeoutSecs) * time.Second},
		Debug:  cfg.Debug,
	}, log)

	httpapi.SetCORSOptions(cfg.CORSEnabled, cfg.CORSOrigins, nil, nil)
	srv := &http.Server{Addr: cfg.Addr, Handler: httpapi.NewMux(svc, log)}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Addr).Str("config_dir", dir).Msg("ytptube listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Graceful shutdown (Ctrl+C / SIGTERM)
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case <-stop:
	}

	grace := time.Duration(cfg.ShutdownGraceSecs) * time.Second
	ctx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown error")
	}
	// In-flight webhook deliveries get the same bounded grace.
	if err := svc.Close(ctx); err != nil {
		log.Warn().Err(err).Msg("abandoned in-flight notifications")
	}
	return nil
}
