package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/claude/liftlog/internal/draft"
	liftmcp "github.com/claude/liftlog/internal/mcp"
	"github.com/claude/liftlog/internal/schedule"
	"github.com/claude/liftlog/internal/server"
	"github.com/claude/liftlog/internal/session"
	"github.com/claude/liftlog/internal/storage"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the local API and the MCP endpoint",
	Long: `Apply migrations, recover any interrupted session and serve the JSON API
under /api/v1 plus a streamable HTTP MCP endpoint at /mcp.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	log.Info("LiftLog starting", "version", Version)

	// Run migrations
	if err := storage.RunMigrations(cfg.Storage.EntityPath()); err != nil {
		return fmt.Errorf("migrating: %w", err)
	}
	log.Info("migrations applied")

	ctx := cmd.Context()
	db, err := storage.Open(ctx, cfg.Storage.EntityPath())
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() { _ = db.Close() }()

	drafts, err := draft.Open(cfg.Storage.DraftPath())
	if err != nil {
		return fmt.Errorf("opening draft store: %w", err)
	}
	defer func() { _ = drafts.Close() }()

	sessions := session.NewManager(ctx, db, drafts, session.Options{
		AutosaveInterval: cfg.Session.AutosaveInterval,
		Logger:           log.With("component", "session"),
	})
	defer sessions.Close()
	log.Info("session manager ready", "state", sessions.State())

	planner := schedule.NewPlanner(db, log.With("component", "schedule"))

	srv := server.New(db, sessions, planner, log)

	mcpSrv := liftmcp.New(liftmcp.NewLocal(db, planner, sessions), Version, log.With("component", "mcp"))
	srv.Mount("/mcp", mcpserver.NewStreamableHTTPServer(mcpSrv))

	addr := cfg.Server.Addr()
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	log.Info("server starting", "addr", addr)

	httpSrv := &http.Server{Handler: srv, ReadHeaderTimeout: 10 * time.Second}

	serveErr := make(chan error, 1)
	go func() {
		if err := httpSrv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		log.Info("shutting down", "signal", sig)
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
	}
	log.Info("server stopped")
	return nil
}
