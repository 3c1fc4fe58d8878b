package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/claude/clientportal/internal/upload"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	serverURL := flag.String("server", "", "portal server URL (e.g. https://portal.tail1234.ts.net)")
	apiKey := flag.String("api-key", os.Getenv("PORTAL_AUTH_API_KEY"), "ingest API key (defaults to $PORTAL_AUTH_API_KEY)")
	manifestPath := flag.String("manifest", "", "path to the client manifest YAML")
	stateDir := flag.String("state-dir", "", "state directory (defaults to ~/.portal-upload)")
	dryRun := flag.Bool("dry-run", false, "read workbooks and build the document but don't send it")
	force := flag.Bool("force", false, "send even if no file changed since the last upload")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("portal-upload", Version)
		return
	}

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *manifestPath == "" {
		fmt.Fprintf(os.Stderr, "Usage: portal-upload -server <URL> -api-key <key> -manifest <client.yaml> [-dry-run] [-force]\n\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	if !*dryRun && (*serverURL == "" || *apiKey == "") {
		fmt.Fprintf(os.Stderr, "Error: -server and -api-key are required (or use -dry-run)\n")
		os.Exit(1)
	}

	// Open state database
	dir := *stateDir
	if dir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			log.Error("failed to get home directory", "error", err)
			os.Exit(1)
		}
		dir = filepath.Join(homeDir, ".portal-upload")
	}

	state, err := upload.OpenStateDB(dir)
	if err != nil {
		log.Error("failed to open state database", "error", err)
		os.Exit(1)
	}
	defer state.Close()

	// Create client (nil-safe in dry-run mode)
	var client *upload.Client
	if !*dryRun {
		client = upload.NewClient(*serverURL, *apiKey)
	}

	if *dryRun {
		log.Info("DRY RUN mode - workbooks will be read but nothing is sent")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	uploader := upload.New(client, state, *dryRun, *force, log)
	stats, err := uploader.Run(ctx, *manifestPath)
	if err != nil {
		log.Error("upload failed", "error", err)
		printStats(stats)
		os.Exit(1)
	}

	printStats(stats)
	log.Info("upload complete")
}

func printStats(stats *upload.Stats) {
	fmt.Println()
	fmt.Println("=== Upload Summary ===")
	fmt.Printf("  Files total:      %d\n", stats.FilesTotal)
	fmt.Printf("  Files changed:    %d\n", stats.FilesChanged)
	fmt.Printf("  Files unchanged:  %d\n", stats.FilesSkipped)
	fmt.Printf("  Spreadsheets:     %d\n", stats.SheetsSent)
	fmt.Printf("  Document sent:    %v\n", stats.Sent)
	fmt.Println()
}
