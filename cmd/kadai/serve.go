package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/snakayama/kadai/internal/catalogcache"
	"github.com/snakayama/kadai/internal/reconcile"
	"github.com/snakayama/kadai/internal/web"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var (
		configPath string
		port       int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the Kadai web server",
		Long:  "Serves the task table, board, Gantt chart and settings pages until interrupted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, configPath, port)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "kadai.yaml", "path to Kadai config file")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "override the configured port")
	return cmd
}

func runServe(cmd *cobra.Command, configPath string, port int) error {
	out := cmd.OutOrStdout()

	cfg, gormDB, err := openDB(configPath)
	if err != nil {
		return err
	}
	if port == 0 {
		port = cfg.Server.Port
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cache, err := catalogcache.New(ctx, cfg.Cache.RedisURL)
	if err != nil {
		return err
	}
	defer cache.Close()
	if cache != nil {
		fmt.Fprintln(out, "Catalog cache enabled")
	}

	if cfg.Reconcile.Enabled {
		if err := reconcile.ValidateSchedule(cfg.Reconcile.Schedule); err != nil {
			return err
		}
		fmt.Fprintf(out, "Reconciler scheduled: %s (fallback %q)\n", cfg.Reconcile.Schedule, cfg.Reconcile.FallbackStatus)
		go reconcile.Run(ctx, gormDB, cfg.Reconcile.Schedule, cfg.Reconcile.FallbackStatus, out)
	}

	return web.Start(ctx, web.StartOpts{
		DB:    gormDB,
		Cache: cache,
		Port:  port,
		Out:   out,
	})
}
