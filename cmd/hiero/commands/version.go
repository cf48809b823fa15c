package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hiero-ledger/hiero-go-client/src/version"
)

func init() {
	RootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version info",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.Version)
	},
}
