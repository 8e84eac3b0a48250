package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/claude/repright/internal/mcp"
	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	serverURL := flag.String("server", "", "RepRight server URL (e.g. https://repright.tail1234.ts.net)")
	apiKey := flag.String("api-key", "", "API key (defaults to $REPRIGHT_AUTH_API_KEY)")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("repright-mcp", Version)
		return
	}

	_ = godotenv.Load()

	// stdout carries the protocol, so logs go to stderr.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *serverURL == "" {
		*serverURL = os.Getenv("REPRIGHT_SERVER_URL")
	}
	if *apiKey == "" {
		*apiKey = os.Getenv("REPRIGHT_AUTH_API_KEY")
	}
	if *serverURL == "" || *apiKey == "" {
		fmt.Fprintf(os.Stderr, "Usage: repright-mcp -server <URL> -api-key <key>\n\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	s := mcp.New(mcp.NewHTTPClient(*serverURL, *apiKey), Version, log)
	log.Info("serving MCP over stdio", "server", *serverURL)
	if err := server.ServeStdio(s); err != nil {
		log.Error("stdio server stopped", "error", err)
		os.Exit(1)
	}
}
