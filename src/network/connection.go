package network

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
)

// Consensus nodes serve plaintext gRPC on one well-known port and TLS on
// another. Only plaintext endpoints are stored; TLS addressing is derived
// by port substitution at connection time.
const (
	PlaintextPort = 50211
	TLSPort       = 50212
)

const certRetrieveTimeout = 10 * time.Second

// nodeConnection caches the channels for one node: a single plaintext
// channel over the node's full address set, and a pool of TLS channels
// selected round-robin. Channels are created lazily and kept for the
// lifetime of the topology generation that owns the connection.
type nodeConnection struct {
	// addresses is the sorted set of "host:port" plaintext endpoints.
	addresses []string

	mu        sync.Mutex
	plaintext *grpc.ClientConn
	tlsConns  []*grpc.ClientConn
	tlsIndex  atomic.Uint64
}

// newNodeConnection builds a connection over the given plaintext addresses,
// deduplicating and sorting them so address sets compare cheaply.
func newNodeConnection(addresses []string) *nodeConnection {
	set := make(map[string]struct{}, len(addresses))
	for _, a := range addresses {
		set[a] = struct{}{}
	}

	sorted := make([]string, 0, len(set))
	for a := range set {
		sorted = append(sorted, a)
	}
	sort.Strings(sorted)

	return &nodeConnection{addresses: sorted}
}

// newStaticNodeConnection builds a connection from bare seed hostnames,
// applying the default plaintext port.
func newStaticNodeConnection(hosts []string) *nodeConnection {
	addresses := make([]string, len(hosts))
	for i, h := range hosts {
		addresses[i] = fmt.Sprintf("%s:%d", h, PlaintextPort)
	}
	return newNodeConnection(addresses)
}

// sameAddresses reports whether the connection covers exactly the given
// address set.
func (c *nodeConnection) sameAddresses(addresses []string) bool {
	other := newNodeConnection(addresses)
	if len(c.addresses) != len(other.addresses) {
		return false
	}
	for i := range c.addresses {
		if c.addresses[i] != other.addresses[i] {
			return false
		}
	}
	return true
}

// channel returns the node's plaintext channel, creating it on first use.
// The channel is lazy: no I/O happens until the first RPC, and the same
// instance is returned on every subsequent call.
func (c *nodeConnection) channel(connectTimeout time.Duration) (*grpc.ClientConn, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.plaintext != nil {
		return c.plaintext, nil
	}

	conn, err := grpc.NewClient(
		"passthrough:///"+c.addresses[0],
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithContextDialer(c.dialAny(connectTimeout)),
	)
	if err != nil {
		return nil, err
	}

	c.plaintext = conn
	return conn, nil
}

// dialAny walks the node's addresses in order until one accepts a TCP
// connection, so a node remains reachable while any one of its endpoints is
// up.
func (c *nodeConnection) dialAny(timeout time.Duration) func(context.Context, string) (net.Conn, error) {
	addresses := c.addresses

	return func(ctx context.Context, _ string) (net.Conn, error) {
		var lastErr error
		for _, address := range addresses {
			d := net.Dialer{Timeout: timeout}
			conn, err := d.DialContext(ctx, "tcp", address)
			if err == nil {
				return conn, nil
			}
			lastErr = err
		}
		return nil, lastErr
	}
}

// tlsChannel returns the next channel from the node's TLS pool, building
// the pool on first use. Round-robin distributes load across the node's
// TLS endpoints and tolerates any one of them being down, as long as at
// least one was reachable at bootstrap.
func (c *nodeConnection) tlsChannel(connectTimeout time.Duration) (*grpc.ClientConn, error) {
	c.mu.Lock()
	if c.tlsConns == nil {
		conns, err := c.bootstrapTLS(connectTimeout)
		if err != nil {
			c.mu.Unlock()
			return nil, err
		}
		c.tlsConns = conns
	}
	conns := c.tlsConns
	c.mu.Unlock()

	index := c.tlsIndex.Add(1) - 1
	return conns[index%uint64(len(conns))], nil
}

// bootstrapTLS establishes trust for the node's TLS endpoints and opens one
// channel per reachable endpoint.
//
// Trust is on-first-use: each endpoint is dialed without verification to
// retrieve its certificate, every retrieved certificate goes into one shared
// pool, and the channels then verify peers against that pool with hostname
// checking bypassed. This gives confidentiality but only weak authentication
// of the nodes; it deliberately mirrors the sibling SDKs rather than
// requiring a CA chain the networks do not publish.
//
// Failing to reach every TLS endpoint of the node is a hard error: it only
// happens once per node at cold start and means the TLS configuration is
// unusable.
func (c *nodeConnection) bootstrapTLS(connectTimeout time.Duration) ([]*grpc.ClientConn, error) {
	pool := x509.NewCertPool()
	var reachable []string

	for _, address := range c.tlsAddresses() {
		cert, err := retrieveCertificate(address)
		if err != nil {
			continue
		}
		pool.AddCert(cert)
		reachable = append(reachable, address)
	}

	if len(reachable) == 0 {
		return nil, fmt.Errorf("no TLS endpoint reachable for node addresses %v", c.addresses)
	}

	tlsConfig := &tls.Config{
		MinVersion: tls.VersionTLS12,
		NextProtos: []string{"h2"},

		// Identity was established by direct retrieval above, so the
		// chain is checked against the pool but the hostname is not.
		InsecureSkipVerify:    true,
		VerifyPeerCertificate: verifyAgainstPool(pool),
	}

	conns := make([]*grpc.ClientConn, 0, len(reachable))
	for _, address := range reachable {
		d := net.Dialer{Timeout: connectTimeout}
		conn, err := grpc.NewClient(
			address,
			grpc.WithTransportCredentials(credentials.NewTLS(tlsConfig)),
			grpc.WithContextDialer(func(ctx context.Context, target string) (net.Conn, error) {
				return d.DialContext(ctx, "tcp", target)
			}),
		)
		if err != nil {
			return nil, err
		}
		conns = append(conns, conn)
	}

	return conns, nil
}

// tlsAddresses returns the node's addresses with the TLS port substituted.
func (c *nodeConnection) tlsAddresses() []string {
	out := make([]string, 0, len(c.addresses))
	for _, address := range c.addresses {
		host, _, err := net.SplitHostPort(address)
		if err != nil {
			continue
		}
		out = append(out, fmt.Sprintf("%s:%d", host, TLSPort))
	}
	return out
}

// retrieveCertificate dials the endpoint without verification and returns
// the certificate it presents.
func retrieveCertificate(address string) (*x509.Certificate, error) {
	dialer := net.Dialer{Timeout: certRetrieveTimeout}

	conn, err := tls.DialWithDialer(&dialer, "tcp", address, &tls.Config{
		InsecureSkipVerify: true,
		NextProtos:         []string{"h2"},
		MinVersion:         tls.VersionTLS12,
	})
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	certs := conn.ConnectionState().PeerCertificates
	if len(certs) == 0 {
		return nil, fmt.Errorf("no certificate presented by %s", address)
	}

	return certs[0], nil
}

// verifyAgainstPool checks the presented chain against the retrieved
// certificates without hostname verification.
func verifyAgainstPool(pool *x509.CertPool) func([][]byte, [][]*x509.Certificate) error {
	return func(rawCerts [][]byte, _ [][]*x509.Certificate) error {
		if len(rawCerts) == 0 {
			return fmt.Errorf("no certificate presented")
		}

		leaf, err := x509.ParseCertificate(rawCerts[0])
		if err != nil {
			return err
		}

		intermediates := x509.NewCertPool()
		for _, raw := range rawCerts[1:] {
			cert, err := x509.ParseCertificate(raw)
			if err != nil {
				return err
			}
			intermediates.AddCert(cert)
		}

		_, err = leaf.Verify(x509.VerifyOptions{
			Roots:         pool,
			Intermediates: intermediates,
		})
		return err
	}
}

// close releases any channels this connection created.
func (c *nodeConnection) close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.plaintext != nil {
		c.plaintext.Close()
		c.plaintext = nil
	}
	for _, conn := range c.tlsConns {
		conn.Close()
	}
	c.tlsConns = nil
}
