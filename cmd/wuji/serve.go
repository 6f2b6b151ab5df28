package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"tailscale.com/tsnet"

	"github.com/majowuji/wuji/internal/metrics"
	"github.com/majowuji/wuji/internal/server"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger()
			log.Info("wuji starting", "version", Version)

			cfg, db, err := openDatabase()
			if err != nil {
				return err
			}
			defer db.Close()
			log.Info("database ready", "path", cfg.Database.Path)

			loc, err := cfg.Location()
			if err != nil {
				return err
			}

			srv := server.New(db, cfg.Auth.APIKey, loc, metrics.New(), log)

			var listener net.Listener
			var tsServer *tsnet.Server

			if cfg.Tailscale.Enabled {
				tsServer = &tsnet.Server{
					Hostname: cfg.Tailscale.Hostname,
					Dir:      cfg.Tailscale.StateDir,
				}
				if err := tsServer.Start(); err != nil {
					return fmt.Errorf("tsnet start: %w", err)
				}
				defer tsServer.Close()

				listener, err = tsServer.Listen("tcp", ":80")
				if err != nil {
					return fmt.Errorf("tsnet listen: %w", err)
				}
				log.Info("tsnet server starting", "hostname", cfg.Tailscale.Hostname)
			} else {
				addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
				listener, err = net.Listen("tcp", addr)
				if err != nil {
					return fmt.Errorf("listen %s: %w", addr, err)
				}
				log.Info("server starting", "addr", addr, "mode", "dev (no tailscale)")
			}

			httpSrv := &http.Server{Handler: srv}

			go func() {
				if err := httpSrv.Serve(listener); err != nil && err != http.ErrServerClosed {
					log.Error("server error", "error", err)
					os.Exit(1)
				}
			}()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			sig := <-quit
			log.Info("shutting down", "signal", sig)

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := httpSrv.Shutdown(shutdownCtx); err != nil {
				log.Error("shutdown error", "error", err)
			}
			log.Info("server stopped")
			return nil
		},
	}
}
