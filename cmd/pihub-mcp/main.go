package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"pihub/internal/adapters/csvlog"
	mcpadapter "pihub/internal/adapters/mcp"
	"pihub/internal/adapters/motion"
	"pihub/internal/adapters/sqlite"
	"pihub/internal/config"
	"pihub/internal/hub"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	store, err := sqlite.Open(cfg.DBPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	eventLog, err := csvlog.New(cfg.LogsDir())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	remote := motion.NewClient(cfg.Motion.APIKey)
	h := hub.New(store, remote, eventLog, cfg.Tasks.DefaultDueDays)

	mcpServer := server.NewMCPServer(
		"pihub-mcp",
		"0.1.0",
		server.WithToolCapabilities(true),
	)

	mcpServer.AddTool(
		mcp.NewTool("ping",
			mcp.WithDescription("Health check — returns pong"),
		),
		func(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return mcp.NewToolResultText("pong"), nil
		},
	)

	mcpadapter.RegisterReadTools(mcpServer, h)
	mcpadapter.RegisterWriteTools(mcpServer, h)

	if err := server.ServeStdio(mcpServer); err != nil {
		log.Fatalf("pihub-mcp: %v", err)
	}
}
