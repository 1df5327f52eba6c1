package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/scenemcp/scenemcp/internal/bridge"
	"github.com/scenemcp/scenemcp/internal/scene"
)

var hostCmd = &cobra.Command{
	Use:   "host",
	Short: "Run a standalone scene host",
	Long: `Run the scene-graph host: an in-memory scene behind the TCP bridge.

Embedding applications normally run the bridge inside their own process;
this command provides the same host standalone, for development and for
driving the MCP tools without an embedding application.`,
	Run: runHost,
}

func runHost(cmd *cobra.Command, args []string) {
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer cancel()

	cfg, err := loadConfig(cmd)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	var s *scene.Scene
	if cfg.DemoScene {
		s = scene.Demo()
	} else {
		s = scene.New(cfg.SceneName)
	}
	if cfg.SceneName != "" {
		s.Name = cfg.SceneName
	}

	dispatcher := bridge.NewDispatcher()
	scene.RegisterHandlers(dispatcher, s, cfg.Gate("assets"))

	// The loop goroutine is this host's main execution context.
	loop := bridge.NewLoop()
	defer loop.Stop()

	srvConfig := bridge.DefaultConfig()
	srvConfig.Host = cfg.Host
	srvConfig.Port = cfg.Port

	srv := bridge.NewServer(srvConfig, dispatcher, loop)
	if err := srv.Start(); err != nil {
		log.Fatalf("scene host: %v", err)
	}

	log.Printf("scene host %q ready with %d objects, commands: %d",
		s.Name, s.Count(), len(dispatcher.Commands()))

	<-ctx.Done()
	srv.Stop()
}
