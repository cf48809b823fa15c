package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/hiero-ledger/hiero-go-client/src/execute"
	"github.com/hiero-ledger/hiero-go-client/src/hiero"
	"github.com/hiero-ledger/hiero-go-client/src/network"
	"github.com/hiero-ledger/hiero-go-client/src/store"
)

// Client ties together the node registry, the mirror network and the
// execution engine, and carries the operator that pays for transactions. It
// is safe for concurrent use; requests in flight are never disturbed by
// configuration changes.
type Client struct {
	config *Config
	logger *logrus.Entry

	net    *network.Network
	mirror *network.MirrorNetwork

	mu                    sync.RWMutex
	operator              *hiero.AccountID
	ledgerID              *hiero.LedgerID
	autoValidateChecksums bool

	// pingFunc is the node liveness probe. The default dials the node's
	// endpoints over TCP.
	pingFunc func(index int) bool

	books *store.AddressBookStore
}

// NewClient builds a client for the network named in the config.
func NewClient(config *Config) (*Client, error) {
	logger := config.Logger()

	c := &Client{
		config:                config,
		logger:                logger,
		autoValidateChecksums: config.AutoValidateChecksums,
	}

	switch config.NetworkName {
	case "mainnet":
		c.net = network.ForMainnet(logger)
		c.mirror = network.MirrorForMainnet()
		c.setLedgerIDLocked(hiero.LedgerIDMainnet)
	case "testnet":
		c.net = network.ForTestnet(logger)
		c.mirror = network.MirrorForTestnet()
		c.setLedgerIDLocked(hiero.LedgerIDTestnet)
	case "previewnet":
		c.net = network.ForPreviewnet(logger)
		c.mirror = network.MirrorForPreviewnet()
		c.setLedgerIDLocked(hiero.LedgerIDPreviewnet)
	default:
		return nil, fmt.Errorf("unknown network name %q", config.NetworkName)
	}

	c.net.SetTransportSecurity(config.TransportSecurity)
	c.pingFunc = func(index int) bool {
		return c.net.ProbeNode(index, config.PingTimeout)
	}

	if config.Operator != "" {
		operator, err := hiero.AccountIDFromString(config.Operator)
		if err != nil {
			return nil, err
		}
		c.operator = &operator
	}

	if config.Store {
		books, err := store.NewAddressBookStore(config.DatabaseDir)
		if err != nil {
			return nil, err
		}
		c.books = books

		if book, err := books.Load(config.NetworkName); err == nil && book != nil {
			c.net.UpdateFromAddressBook(book)
			logger.WithField("nodes", len(book.NodeAddresses)).Debug("topology restored from cache")
		}
	}

	return c, nil
}

// ForMainnet returns a client against mainnet with default configuration.
func ForMainnet() (*Client, error) {
	return NewClient(NewDefaultConfig())
}

// ForTestnet returns a client against testnet with default configuration.
func ForTestnet() (*Client, error) {
	config := NewDefaultConfig()
	config.NetworkName = "testnet"
	return NewClient(config)
}

// ForPreviewnet returns a client against previewnet with default
// configuration.
func ForPreviewnet() (*Client, error) {
	config := NewDefaultConfig()
	config.NetworkName = "previewnet"
	return NewClient(config)
}

// ForAddresses returns a client over an explicit address→node map. No
// ledger id is known for a custom network until SetLedgerID is called.
func ForAddresses(addresses map[string]hiero.AccountID, config *Config) *Client {
	if config == nil {
		config = NewDefaultConfig()
	}
	logger := config.Logger()

	c := &Client{
		config:                config,
		logger:                logger,
		net:                   network.ForAddresses(addresses, logger),
		mirror:                network.NewMirrorNetwork(nil),
		autoValidateChecksums: config.AutoValidateChecksums,
	}
	c.net.SetTransportSecurity(config.TransportSecurity)
	c.pingFunc = func(index int) bool {
		return c.net.ProbeNode(index, config.PingTimeout)
	}
	return c
}

// Network returns the consensus node registry.
func (c *Client) Network() *network.Network {
	return c.net
}

// Mirror returns the mirror node network.
func (c *Client) Mirror() *network.MirrorNetwork {
	return c.mirror
}

// SetOperator sets the account that pays for generated transactions.
func (c *Client) SetOperator(operator hiero.AccountID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.operator = &operator
}

// Operator returns the paying account, or nil when none is configured.
func (c *Client) Operator() *hiero.AccountID {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.operator == nil {
		return nil
	}
	out := *c.operator
	return &out
}

// GenerateTransactionID mints a transaction id paid for by the operator.
func (c *Client) GenerateTransactionID() (hiero.TransactionID, error) {
	operator := c.Operator()
	if operator == nil {
		return hiero.TransactionID{}, fmt.Errorf("no operator configured to pay for the transaction")
	}
	return hiero.GenerateTransactionID(*operator), nil
}

// LedgerID identifies the ledger the client talks to, nil when unknown.
func (c *Client) LedgerID() *hiero.LedgerID {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ledgerID
}

// SetLedgerID pins the ledger id used for checksum validation.
func (c *Client) SetLedgerID(ledgerID hiero.LedgerID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setLedgerIDLocked(ledgerID)
}

func (c *Client) setLedgerIDLocked(ledgerID hiero.LedgerID) {
	copied := append(hiero.LedgerID(nil), ledgerID...)
	c.ledgerID = &copied
}

// AutoValidateChecksums reports whether entity checksums are verified
// before requests are sent.
func (c *Client) AutoValidateChecksums() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.autoValidateChecksums
}

// SetAutoValidateChecksums toggles checksum verification.
func (c *Client) SetAutoValidateChecksums(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.autoValidateChecksums = enabled
}

// RequestTimeout is the default overall deadline for requests.
func (c *Client) RequestTimeout() time.Duration {
	return c.config.RequestTimeout
}

// PingNode probes the node at index for liveness, recording the outcome.
func (c *Client) PingNode(index int) bool {
	c.mu.RLock()
	f := c.pingFunc
	c.mu.RUnlock()
	return f(index)
}

// SetPingFunc replaces the node liveness probe.
func (c *Client) SetPingFunc(f func(index int) bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pingFunc = f
}

// Logger returns the client's log entry.
func (c *Client) Logger() *logrus.Entry {
	return c.logger
}

// Execute runs a request through the retry engine. A timeout of zero means
// the client default applies.
func (c *Client) Execute(ctx context.Context, executable execute.Executable, timeout time.Duration) (interface{}, error) {
	return execute.Execute(ctx, c, executable, timeout)
}

// Ping checks that the named node answers on one of its endpoints.
func (c *Client) Ping(nodeAccountID hiero.AccountID) error {
	indexes, err := c.net.NodeIndexesForIDs([]hiero.AccountID{nodeAccountID})
	if err != nil {
		return err
	}
	if !c.PingNode(indexes[0]) {
		return &hiero.TransportError{
			NodeAccountID: nodeAccountID,
			Err:           fmt.Errorf("node did not answer on any endpoint"),
		}
	}
	return nil
}

// UpdateFromAddressBook replaces the network topology from a fetched
// address book, persisting it when caching is enabled.
func (c *Client) UpdateFromAddressBook(book *network.NodeAddressBook) error {
	c.net.UpdateFromAddressBook(book)

	if c.books != nil {
		if err := c.books.Save(c.config.NetworkName, book); err != nil {
			return err
		}
	}
	return nil
}

// Close releases all channels and the address book cache.
func (c *Client) Close() error {
	c.net.Close()
	c.mirror.Close()
	if c.books != nil {
		return c.books.Close()
	}
	return nil
}
