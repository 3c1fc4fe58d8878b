package main

import (
	"context"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/robfig/cron"
	"google.golang.org/api/option"
	"tailscale.com/tsnet"

	clientportal "github.com/claude/clientportal"
	"github.com/claude/clientportal/internal/config"
	"github.com/claude/clientportal/internal/mcp"
	"github.com/claude/clientportal/internal/refresh"
	"github.com/claude/clientportal/internal/render"
	"github.com/claude/clientportal/internal/server"
	"github.com/claude/clientportal/internal/source"
	"github.com/claude/clientportal/internal/source/firestore"
	"github.com/claude/clientportal/internal/source/sheets"
	"github.com/claude/clientportal/internal/source/xlsx"
	"github.com/claude/clientportal/internal/storage"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	migrateOnly := flag.Bool("migrate-only", false, "run migrations and exit")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	log.Info("client portal starting", "version", Version)

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Run migrations
	dsn := cfg.Database.DSN()
	if err := storage.RunMigrations(dsn, "migrations"); err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}
	log.Info("migrations applied")

	if *migrateOnly {
		log.Info("migrate-only: exiting")
		return
	}

	// Connect database
	ctx := context.Background()
	db, err := storage.New(ctx, dsn)
	if err != nil {
		log.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	log.Info("database connected")

	// Grid sources: Google Sheets for web URLs, local workbooks for paths.
	// Without either, sheets keep the grids they were uploaded with.
	var fetcher source.Switch
	if cfg.Sheets.WorkbookDir != "" {
		fetcher.Local = xlsx.Fetcher{Dir: cfg.Sheets.WorkbookDir}
	}
	if cfg.Sheets.CredentialsFile != "" {
		sc, err := sheets.NewClient(ctx, cfg.Sheets.CredentialsFile, cfg.Sheets.Range)
		if err != nil {
			log.Error("failed to create sheets client", "error", err)
			os.Exit(1)
		}
		fetcher.Remote = sc
		log.Info("google sheets enabled")
	}

	var directory source.Directory
	if cfg.Firestore.ProjectID != "" {
		var opts []option.ClientOption
		if cfg.Firestore.CredentialsFile != "" {
			opts = append(opts, option.WithCredentialsFile(cfg.Firestore.CredentialsFile))
		}
		fsDir, err := firestore.New(ctx, cfg.Firestore.ProjectID, cfg.Firestore.Collection, opts...)
		if err != nil {
			log.Error("failed to create firestore client", "error", err)
			os.Exit(1)
		}
		defer fsDir.Close()
		directory = fsDir
		log.Info("firestore directory enabled", "project", cfg.Firestore.ProjectID)
	}

	refresher := refresh.New(db, fetcher, directory, log)
	renderer := render.New(cfg.Parse.MealKeywords)

	// Scheduled refresh
	if cfg.Refresh.Schedule != "" {
		timeout := time.Duration(cfg.Refresh.TimeoutMinutes) * time.Minute
		c := cron.New()
		err := c.AddFunc(cfg.Refresh.Schedule, func() {
			runCtx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()
			log.Info("scheduled refresh starting")
			if err := refresher.RefreshAll(runCtx); err != nil {
				log.Error("scheduled refresh failed", "error", err)
				return
			}
			log.Info("scheduled refresh finished")
		})
		if err != nil {
			log.Error("invalid refresh schedule", "schedule", cfg.Refresh.Schedule, "error", err)
			os.Exit(1)
		}
		c.Start()
		defer c.Stop()
		log.Info("refresh scheduled", "schedule", cfg.Refresh.Schedule)
	}

	// Create server
	srv := server.New(db, refresher, renderer, cfg.Auth.APIKey, cfg.Auth.DevLogin, log)

	// MCP over streamable HTTP, scoped to the caller's login
	mcpSrv := mcp.New(db, renderer, Version, log)
	srv.MountMCP(mcpserver.NewStreamableHTTPServer(mcpSrv,
		mcpserver.WithHTTPContextFunc(func(ctx context.Context, r *http.Request) context.Context {
			return mcp.WithClientEmail(ctx, server.UserFromContext(r.Context()).Login)
		}),
	))

	// Serve embedded frontend
	webFS, err := fs.Sub(clientportal.WebFS, "web")
	if err != nil {
		log.Error("failed to load embedded frontend", "error", err)
		os.Exit(1)
	}
	srv.SetFrontend(webFS)

	// Start server — tsnet or plain HTTP
	var listener net.Listener
	var tsServer *tsnet.Server

	if cfg.Tailscale.Enabled {
		tsServer = &tsnet.Server{
			Hostname: cfg.Tailscale.Hostname,
			Dir:      cfg.Tailscale.StateDir,
		}
		if err := tsServer.Start(); err != nil {
			log.Error("tsnet start failed", "error", err)
			os.Exit(1)
		}
		defer tsServer.Close()

		lc, err := tsServer.LocalClient()
		if err != nil {
			log.Error("tsnet local client failed", "error", err)
			os.Exit(1)
		}
		srv.SetTailscale(lc)

		listener, err = tsServer.Listen("tcp", ":80")
		if err != nil {
			log.Error("tsnet listen failed", "error", err)
			os.Exit(1)
		}
		log.Info("tsnet server starting", "hostname", cfg.Tailscale.Hostname)
	} else {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		listener, err = net.Listen("tcp", addr)
		if err != nil {
			log.Error("listen failed", "addr", addr, "error", err)
			os.Exit(1)
		}
		log.Info("server starting", "addr", addr, "mode", "dev (no tailscale)", "login", cfg.Auth.DevLogin)
	}

	httpSrv := &http.Server{Handler: srv}

	go func() {
		if err := httpSrv.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
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
}
