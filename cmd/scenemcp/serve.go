package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/scenemcp/scenemcp/internal/tools"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run as MCP server",
	Long: `Run as an MCP (Model Context Protocol) server for AI coding assistants.

This is the primary mode for integration with Claude Code, Claude Desktop,
and other MCP clients. Tools talk to the scene host over its TCP bridge;
start one with 'scenemcp host' first.`,
	Run: runServe,
}

func runServe(cmd *cobra.Command, args []string) {
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer cancel()

	cfg, err := loadConfig(cmd)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	st := tools.NewSceneTools(cfg)
	defer st.Close()

	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    appName,
			Version: appVersion,
		},
		&mcp.ServerOptions{
			HasTools: true,
			Instructions: `Scene-graph editing server. Tools operate on a live scene
inside a separate host process over a local TCP bridge.

Available tools:
- scene: Inspect the scene (summary or per-object detail)
- execute: Run a Lua script on the host's main execution context
- groups: Query node groups and set their modifier inputs
- parts: Browse and swap library parts (requires the host's assets feature)

Commands run one at a time on the host; keep scripts short and check the
scene summary after edits.`,
		},
	)

	tools.RegisterSceneTools(server, st)

	// Run server over stdio
	log.SetOutput(os.Stderr)
	log.Printf("Starting %s v%s (scene host at %s)", appName, appVersion, cfg.Address())

	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil {
		if ctx.Err() == nil {
			log.Fatalf("Server error: %v", err)
		}
	}

	log.Println("MCP server shutdown complete")
}
