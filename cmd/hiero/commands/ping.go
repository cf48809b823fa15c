package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hiero-ledger/hiero-go-client/src/client"
	"github.com/hiero-ledger/hiero-go-client/src/hiero"
)

func init() {
	RootCmd.AddCommand(pingCmd)
}

var pingCmd = &cobra.Command{
	Use:   "ping [node-account-id]...",
	Short: "Check that consensus nodes answer on their endpoints",
	Long: `Ping probes consensus nodes for liveness. With no arguments every node
of the configured network is probed; otherwise only the named node accounts
are.`,
	RunE: runPing,
}

func runPing(cmd *cobra.Command, args []string) error {
	config.SetLogger(logger)
	c, err := client.NewClient(config)
	if err != nil {
		return err
	}
	defer c.Close()

	targets := c.Network().NodeIDs()
	if len(args) > 0 {
		targets = targets[:0]
		for _, arg := range args {
			id, err := hiero.AccountIDFromString(arg)
			if err != nil {
				return err
			}
			targets = append(targets, id)
		}
	}

	failed := 0
	for _, id := range targets {
		if err := c.Ping(id); err != nil {
			failed++
			fmt.Printf("%s\tDOWN\t%v\n", id, err)
			continue
		}
		fmt.Printf("%s\tUP\n", id)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d nodes did not answer", failed, len(targets))
	}
	return nil
}
