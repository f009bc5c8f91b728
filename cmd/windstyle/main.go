// Package main is the entry point for the windstyle command.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/lemonberrylabs/windstyle/pkg/api"
	"github.com/lemonberrylabs/windstyle/pkg/config"
	"github.com/lemonberrylabs/windstyle/pkg/loader"
	"github.com/lemonberrylabs/windstyle/pkg/store"
	"github.com/lemonberrylabs/windstyle/web"
	"github.com/spf13/cobra"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "windstyle",
		Short: "Tokenize, parse and check windstyle sources",
	}
	root.Version = version + " (commit=" + commit + ", built=" + date + ")"
	root.SetVersionTemplate("windstyle version {{.Version}}\n")

	root.PersistentFlags().String("config", "", "YAML config file (env WINDSTYLE_CONFIG)")
	root.PersistentFlags().Int("max-source-size", 0, "Largest accepted source in bytes (default 131072, env MAX_SOURCE_SIZE)")

	root.AddCommand(newTokensCmd(), newParseCmd(), newCheckCmd(), newServeCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig layers the config file, the environment and the flags of cmd.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = os.Getenv("WINDSTYLE_CONFIG")
	}

	cfg, err := config.Load(path, os.Getenv)
	if err != nil {
		return config.Config{}, err
	}
	if err := cfg.ApplyFlags(cmd.Flags()); err != nil {
		return config.Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and web UI",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	cmd.Flags().Int("port", 0, "HTTP server port (default 8787, env PORT)")
	cmd.Flags().String("host", "", "Bind address (default 0.0.0.0, env HOST)")
	cmd.Flags().String("sources-dir", "", "Directory of stylesheets to load at startup (env SOURCES_DIR)")
	cmd.Flags().Int("workers", 0, "Files parsed concurrently while loading (default 4, env WORKERS)")
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	s := store.New()
	server := api.New(s, cfg.MaxSourceSize)

	if cfg.SourcesDir != "" {
		log.Printf("Loading stylesheets from: %s", cfg.SourcesDir)
		opts := loader.Options{
			Extensions:    cfg.Extensions,
			Workers:       cfg.Workers,
			MaxSourceSize: cfg.MaxSourceSize,
		}
		if err := server.LoadDir(cmd.Context(), cfg.SourcesDir, opts); err != nil {
			log.Printf("Warning: failed to load sources directory: %v", err)
		}
	}

	// Register the web UI (non-fatal if template parsing fails)
	func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("Warning: web UI disabled due to template error: %v", r)
			}
		}()
		web.New(s).Register(server.App())
	}()

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		log.Println("Shutting down windstyle...")
		if err := server.Shutdown(); err != nil {
			log.Printf("Error during shutdown: %v", err)
		}
	}()

	addr := cfg.Addr()
	log.Printf("windstyle listening on %s", addr)
	if cfg.SourcesDir == "" {
		log.Printf("API-only mode (no --sources-dir specified)")
	}
	return server.Listen(addr)
}
