package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hiero-ledger/hiero-go-client/src/client"
	"github.com/hiero-ledger/hiero-go-client/src/network"
)

var addressBookFile string

func init() {
	addressBookCmd.Flags().StringVar(&addressBookFile, "file", "", "Load a JSON address book and apply it to the network")
	RootCmd.AddCommand(addressBookCmd)
}

var addressBookCmd = &cobra.Command{
	Use:   "addressbook",
	Short: "Show or replace the network's node addresses",
	Long: `Addressbook prints the address to node-account mapping of the configured
network. With --file, a JSON address book is loaded first and the topology is
replaced from it; when caching is enabled the book is also persisted.`,
	RunE: runAddressBook,
}

func runAddressBook(cmd *cobra.Command, args []string) error {
	config.SetLogger(logger)
	c, err := client.NewClient(config)
	if err != nil {
		return err
	}
	defer c.Close()

	if addressBookFile != "" {
		book, err := network.NewJSONAddressBook(addressBookFile).AddressBook()
		if err != nil {
			return err
		}
		if book == nil {
			return fmt.Errorf("address book file %s is empty", addressBookFile)
		}
		if err := c.UpdateFromAddressBook(book); err != nil {
			return err
		}
	}

	addresses := c.Network().Addresses()

	out := make(map[string]string, len(addresses))
	for address, id := range addresses {
		out[address] = id.String()
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "\t")
	return enc.Encode(out)
}
