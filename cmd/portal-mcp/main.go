// Command portal-mcp serves the portal's MCP tools over stdio, reading data
// from a remote portal server's REST API.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/claude/clientportal/internal/mcp"
	"github.com/claude/clientportal/internal/render"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	serverURL := flag.String("server", os.Getenv("PORTAL_SERVER_URL"), "portal server URL (defaults to $PORTAL_SERVER_URL)")
	mealKeywords := flag.String("meal-keywords", "", "comma separated meal keywords (defaults to the built-in list)")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("portal-mcp", Version)
		return
	}

	// stdout carries the MCP protocol, so logs go to stderr.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *serverURL == "" {
		fmt.Fprintf(os.Stderr, "Usage: portal-mcp -server <URL>\n\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	var keywords []string
	if *mealKeywords != "" {
		keywords = strings.Split(*mealKeywords, ",")
	}

	ds := mcp.NewHTTPClient(*serverURL)
	s := mcp.New(ds, render.New(keywords), Version, log)

	log.Info("portal-mcp serving on stdio", "server", *serverURL)
	if err := mcpserver.ServeStdio(s); err != nil {
		log.Error("stdio server error", "error", err)
		os.Exit(1)
	}
}
