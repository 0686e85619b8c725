package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/claude/flextrack/internal/mcp"
	"github.com/claude/flextrack/internal/storage"
	"github.com/mark3labs/mcp-go/server"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	serverURL := flag.String("server", "", "FlexTrack server URL for remote mode (e.g. https://flextrack.tail1234.ts.net)")
	dbPath := flag.String("db", "", "sqlite data directory for local mode")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("flextrack-mcp", Version)
		return
	}

	// stdout carries the MCP stdio transport; logs go to stderr.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	var ds mcp.DataSource
	switch {
	case *serverURL != "":
		ds = mcp.NewHTTPClient(*serverURL)
		log.Info("remote mode", "server", *serverURL)
	case *dbPath != "":
		lite, err := storage.OpenLite(*dbPath)
		if err != nil {
			log.Error("failed to open database", "error", err)
			os.Exit(1)
		}
		defer lite.Close()
		ds = lite
		log.Info("local mode", "path", *dbPath)
	default:
		fmt.Fprintf(os.Stderr, "Usage: flextrack-mcp -server <URL> | -db <dir>\n\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	s := mcp.New(ds, Version, log)
	if err := server.ServeStdio(s); err != nil {
		log.Error("mcp server error", "error", err)
		os.Exit(1)
	}
}
