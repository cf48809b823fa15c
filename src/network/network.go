package network

import (
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"

	"github.com/hiero-ledger/hiero-go-client/src/hiero"
)

// Network is the mutable registry of consensus nodes behind a client. The
// current topology snapshot sits behind an atomically replaceable pointer:
// readers take the snapshot lock-free, writers compute a candidate and
// publish it with compare-and-swap, retrying against the latest snapshot on
// contention. In-flight executions keep working against whatever snapshot
// they started with.
type Network struct {
	current atomic.Pointer[topology]

	policyMu sync.RWMutex
	policy   BackoffPolicy

	transportSecurity atomic.Bool

	logger *logrus.Entry
}

// NewNetwork returns an empty network. Use one of the For* constructors or
// an Update* call to populate it.
func NewNetwork(logger *logrus.Entry) *Network {
	if logger == nil {
		log := logrus.New()
		log.Level = logrus.InfoLevel
		logger = logrus.NewEntry(log)
	}

	n := &Network{
		policy: DefaultBackoffPolicy(),
		logger: logger.WithField("prefix", "network"),
	}
	n.current.Store(&topology{indexOf: map[hiero.AccountID]int{}})

	return n
}

// ForMainnet returns a network seeded with the mainnet address table.
func ForMainnet(logger *logrus.Entry) *Network {
	n := NewNetwork(logger)
	n.current.Store(newStaticTopology(mainnetSeeds))
	return n
}

// ForTestnet returns a network seeded with the testnet address table.
func ForTestnet(logger *logrus.Entry) *Network {
	n := NewNetwork(logger)
	n.current.Store(newStaticTopology(testnetSeeds))
	return n
}

// ForPreviewnet returns a network seeded with the previewnet address table.
func ForPreviewnet(logger *logrus.Entry) *Network {
	n := NewNetwork(logger)
	n.current.Store(newStaticTopology(previewnetSeeds))
	return n
}

// ForAddresses returns a network built from an explicit address→node map.
func ForAddresses(addresses map[string]hiero.AccountID, logger *logrus.Entry) *Network {
	n := NewNetwork(logger)
	n.UpdateFromAddresses(addresses)
	return n
}

// swap publishes f(current) as the new topology, recomputing against the
// latest snapshot if another writer got there first.
func (n *Network) swap(f func(*topology) *topology) {
	for {
		cur := n.current.Load()
		next := f(cur)
		if n.current.CompareAndSwap(cur, next) {
			return
		}
	}
}

// UpdateFromAddresses replaces the topology from an explicit address→node
// map, carrying over health state for nodes that persist.
func (n *Network) UpdateFromAddresses(addresses map[string]hiero.AccountID) {
	n.swap(func(t *topology) *topology {
		return t.withAddresses(addresses)
	})
	n.logger.WithField("nodes", len(n.current.Load().nodeIDs)).Debug("topology replaced from addresses")
}

// UpdateFromAddressBook replaces the topology from a fetched address book,
// reusing connections and health per the rules in topology.withAddressBook.
func (n *Network) UpdateFromAddressBook(book *NodeAddressBook) {
	n.swap(func(t *topology) *topology {
		return t.withAddressBook(book)
	})
	n.logger.WithField("nodes", len(n.current.Load().nodeIDs)).Debug("topology replaced from address book")
}

// NodeIDs returns the node account ids of the current topology, in index
// order.
func (n *Network) NodeIDs() []hiero.AccountID {
	t := n.current.Load()
	out := make([]hiero.AccountID, len(t.nodeIDs))
	copy(out, t.nodeIDs)
	return out
}

// NodeIndexesForIDs resolves explicit node account ids against the current
// topology, preserving order. Unknown ids fail with
// hiero.NodeAccountUnknownError.
func (n *Network) NodeIndexesForIDs(ids []hiero.AccountID) ([]int, error) {
	return n.current.Load().nodeIndexesForIDs(ids)
}

// HealthyNodeIndexes returns the indices selectable at the given instant.
func (n *Network) HealthyNodeIndexes(now time.Time) []int {
	return n.current.Load().healthyNodeIndexes(now)
}

// IsNodeHealthy reports whether the node at index may be selected now.
func (n *Network) IsNodeHealthy(index int, now time.Time) bool {
	return n.current.Load().health[index].isHealthy(now)
}

// NodeRecentlyPinged reports whether the node was heard from recently
// enough to skip a liveness probe.
func (n *Network) NodeRecentlyPinged(index int, now time.Time) bool {
	return n.current.Load().health[index].recentlyPinged(now)
}

// MarkNodeUnhealthy records a failure against the node, growing its
// backoff.
func (n *Network) MarkNodeUnhealthy(index int) {
	n.policyMu.RLock()
	policy := n.policy
	n.policyMu.RUnlock()

	t := n.current.Load()
	attempts, delay := t.health[index].markUnhealthy(policy, time.Now())

	entry := n.logger.WithFields(logrus.Fields{
		"node":     t.nodeIDs[index].String(),
		"attempts": attempts,
		"backoff":  delay.String(),
	})
	entry.Debug("node marked unhealthy")

	// The attempt cap is reported but not enforced; the node stays in the
	// topology. See the address-book update path for actual removal.
	if policy.MaxAttempts > 0 && attempts > policy.MaxAttempts {
		entry.Warn("node exceeded the backoff attempt cap")
	}
}

// MarkNodeHealthy resets the node's backoff and records it as freshly used.
func (n *Network) MarkNodeHealthy(index int) {
	n.current.Load().health[index].markHealthy(time.Now())
}

// MarkNodeUsed records that the node was just attempted, whatever the
// outcome.
func (n *Network) MarkNodeUsed(index int, now time.Time) {
	n.current.Load().health[index].markUsed(now)
}

// Channel returns the node's account id and a gRPC channel to it. With
// transport security enabled this comes from the node's round-robin TLS
// pool; otherwise it is the node's cached plaintext channel.
func (n *Network) Channel(index int, connectTimeout time.Duration) (hiero.AccountID, *grpc.ClientConn, error) {
	t := n.current.Load()
	id := t.nodeIDs[index]

	var conn *grpc.ClientConn
	var err error
	if n.transportSecurity.Load() {
		conn, err = t.connections[index].tlsChannel(connectTimeout)
	} else {
		conn, err = t.connections[index].channel(connectTimeout)
	}
	if err != nil {
		return id, nil, err
	}

	return id, conn, nil
}

// ProbeNode checks right now whether any of the node's endpoints accepts a
// TCP connection. It is the default liveness probe for nodes that have not
// been used recently.
func (n *Network) ProbeNode(index int, timeout time.Duration) bool {
	t := n.current.Load()

	for _, address := range t.connections[index].addresses {
		conn, err := net.DialTimeout("tcp", address, timeout)
		if err == nil {
			conn.Close()
			n.MarkNodeUsed(index, time.Now())
			return true
		}
	}

	n.MarkNodeUnhealthy(index)
	return false
}

// Addresses returns the current address→node map.
func (n *Network) Addresses() map[string]hiero.AccountID {
	return n.current.Load().addresses()
}

// SetTransportSecurity toggles TLS for all subsequent channel requests.
func (n *Network) SetTransportSecurity(enabled bool) {
	n.transportSecurity.Store(enabled)
}

// TransportSecurity reports whether TLS channels are in use.
func (n *Network) TransportSecurity() bool {
	return n.transportSecurity.Load()
}

// SetMinBackoff sets the initial backoff applied to a newly failing node.
func (n *Network) SetMinBackoff(d time.Duration) {
	n.policyMu.Lock()
	defer n.policyMu.Unlock()
	n.policy.MinBackoff = d
}

// MinBackoff returns the initial per-node backoff.
func (n *Network) MinBackoff() time.Duration {
	n.policyMu.RLock()
	defer n.policyMu.RUnlock()
	return n.policy.MinBackoff
}

// SetMaxBackoff caps the per-node backoff interval.
func (n *Network) SetMaxBackoff(d time.Duration) {
	n.policyMu.Lock()
	defer n.policyMu.Unlock()
	n.policy.MaxBackoff = d
}

// MaxBackoff returns the per-node backoff cap.
func (n *Network) MaxBackoff() time.Duration {
	n.policyMu.RLock()
	defer n.policyMu.RUnlock()
	return n.policy.MaxBackoff
}

// SetMaxNodeAttempts sets the attempt count past which a failing node is
// reported as exhausted. 0 disables the report.
func (n *Network) SetMaxNodeAttempts(attempts int) {
	n.policyMu.Lock()
	defer n.policyMu.Unlock()
	n.policy.MaxAttempts = attempts
}

// MaxNodeAttempts returns the reported attempt cap.
func (n *Network) MaxNodeAttempts() int {
	n.policyMu.RLock()
	defer n.policyMu.RUnlock()
	return n.policy.MaxAttempts
}

// Close releases every channel of the current topology.
func (n *Network) Close() {
	t := n.current.Load()
	for _, c := range t.connections {
		c.close()
	}
}
