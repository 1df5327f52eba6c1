package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/scenemcp/scenemcp/internal/client"
)

var sendCmd = &cobra.Command{
	Use:   "send <command> [params-json]",
	Short: "Send one raw command to the scene host",
	Long: `Send a single command envelope to the scene host and print the result.

Useful for poking at the wire protocol directly.

Examples:
  scenemcp send query-scene-state
  scenemcp send query-entity-detail '{"name": "Cube"}'
  scenemcp send set-group-input '{"group_name": "Scatter", "input_name": "Density", "value": 2}'`,
	Args: cobra.RangeArgs(1, 2),
	Run:  runSend,
}

func runSend(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	var params any
	if len(args) == 2 {
		if err := json.Unmarshal([]byte(args[1]), &params); err != nil {
			log.Fatalf("params must be a JSON object: %v", err)
		}
	}

	c := client.New(
		client.WithAddress(cfg.Host, cfg.Port),
		client.WithTimeout(cfg.Timeout),
	)
	defer c.Close()

	result, err := c.Send(args[0], params)
	if err != nil {
		var remote *client.RemoteError
		if errors.As(err, &remote) {
			fmt.Fprintf(os.Stderr, "host error: %s\n", remote.Message)
		} else {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}

	var pretty any
	if err := json.Unmarshal(result, &pretty); err != nil {
		fmt.Println(string(result))
		return
	}
	out, _ := json.MarshalIndent(pretty, "", "  ")
	fmt.Println(string(out))
}
