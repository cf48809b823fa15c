package network

import (
	"crypto/tls"
	"errors"
	"net"
	"sync"
	"sync/atomic"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
)

// Default mirror node endpoints for the public networks. The public mirrors
// only answer on the TLS port.
const (
	MainnetMirror    = "mainnet-public.mirrornode.hedera.com:443"
	TestnetMirror    = "testnet.mirrornode.hedera.com:443"
	PreviewnetMirror = "previewnet.mirrornode.hedera.com:443"
)

// mirrorTopology is an immutable snapshot of the mirror address list with
// its lazily created channel. The channel targets the first address only;
// mirrors are interchangeable so there is no per-node health tracking.
type mirrorTopology struct {
	addresses []string

	mu      sync.Mutex
	channel *grpc.ClientConn
}

// MirrorNetwork tracks the mirror node endpoints used for queries that the
// consensus nodes do not answer, such as address book fetches. Like Network
// it swaps whole snapshots atomically, so replacing the address list never
// disturbs a caller holding the previous channel.
type MirrorNetwork struct {
	current atomic.Pointer[mirrorTopology]
}

// NewMirrorNetwork returns a mirror network over the given addresses.
func NewMirrorNetwork(addresses []string) *MirrorNetwork {
	m := &MirrorNetwork{}
	m.current.Store(&mirrorTopology{addresses: append([]string(nil), addresses...)})
	return m
}

// MirrorForMainnet returns the public mainnet mirror.
func MirrorForMainnet() *MirrorNetwork {
	return NewMirrorNetwork([]string{MainnetMirror})
}

// MirrorForTestnet returns the public testnet mirror.
func MirrorForTestnet() *MirrorNetwork {
	return NewMirrorNetwork([]string{TestnetMirror})
}

// MirrorForPreviewnet returns the public previewnet mirror.
func MirrorForPreviewnet() *MirrorNetwork {
	return NewMirrorNetwork([]string{PreviewnetMirror})
}

// Addresses returns the current mirror address list.
func (m *MirrorNetwork) Addresses() []string {
	t := m.current.Load()
	out := make([]string, len(t.addresses))
	copy(out, t.addresses)
	return out
}

// SetAddresses atomically replaces the mirror address list, dropping any
// cached channel to the old addresses.
func (m *MirrorNetwork) SetAddresses(addresses []string) {
	next := &mirrorTopology{addresses: append([]string(nil), addresses...)}
	old := m.current.Swap(next)

	old.mu.Lock()
	if old.channel != nil {
		old.channel.Close()
		old.channel = nil
	}
	old.mu.Unlock()
}

// Channel returns the shared channel to the primary mirror, creating it on
// first use. Local mirrors are dialed in plaintext, everything else over
// TLS with system roots; the public mirrors sit behind real certificates so
// no trust bootstrapping is needed.
func (m *MirrorNetwork) Channel() (*grpc.ClientConn, error) {
	t := m.current.Load()

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.channel != nil {
		return t.channel, nil
	}

	if len(t.addresses) == 0 {
		return nil, errors.New("no mirror addresses configured")
	}
	address := t.addresses[0]

	creds := credentials.NewTLS(&tls.Config{MinVersion: tls.VersionTLS12})
	if isLocalAddress(address) {
		creds = insecure.NewCredentials()
	}

	conn, err := grpc.NewClient(address, grpc.WithTransportCredentials(creds))
	if err != nil {
		return nil, err
	}

	t.channel = conn
	return conn, nil
}

// Close releases the cached channel, if any.
func (m *MirrorNetwork) Close() {
	t := m.current.Load()

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.channel != nil {
		t.channel.Close()
		t.channel = nil
	}
}

func isLocalAddress(address string) bool {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		host = address
	}
	return host == "localhost" || host == "127.0.0.1" || host == "::1"
}
