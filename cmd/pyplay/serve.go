package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/caffeineduck/pyplay/internal/api"
	"github.com/caffeineduck/pyplay/internal/logger"
	"github.com/caffeineduck/pyplay/locale"
	"github.com/caffeineduck/pyplay/store"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the playground over HTTP",
	Long: `Start the playground service for browser front ends.

Endpoints:
  GET    /health                      Health check
  GET    /v1/examples                 List examples
  GET    /v1/examples/{name}          Example code
  POST   /v1/sessions                 Create or resume a session
  GET    /v1/sessions/{id}            Session state
  DELETE /v1/sessions/{id}            Close a session
  PUT    /v1/sessions/{id}/code       Replace editor content
  POST   /v1/sessions/{id}/commands   Any command as JSON
  POST   /v1/sessions/{id}/{command}  run, stop, input, save, load, clear,
                                      example, font, split, key
  GET    /v1/sessions/{id}/download   code.py
  GET    /v1/sessions/{id}/ws         Live events over WebSocket`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (default :8080)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	runner, closeRunner, err := newRunner()
	if err != nil {
		return err
	}
	defer closeRunner()

	backend, err := store.Open(cfg.StoreDriver, cfg.StorePath)
	if err != nil {
		return err
	}
	defer backend.Close()

	srv := api.New(api.Options{
		Runner:           runner,
		Store:            backend,
		Catalog:          locale.Default(),
		Locale:           cfg.Locale,
		Limit:            cfg.ExecLimit,
		AutosaveInterval: cfg.AutosaveInterval,
		SessionTTL:       cfg.SessionTTL,
		AllowedOrigins:   cfg.AllowedOrigins,
	})
	defer srv.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Debugf("store=%s limit=%v ttl=%v", cfg.StoreDriver, cfg.ExecLimit, cfg.SessionTTL)
	return srv.ListenAndServe(ctx, cfg.Addr)
}
