package network

import (
	"net"
	"strconv"
	"time"

	"github.com/hiero-ledger/hiero-go-client/src/hiero"
)

// topology is an immutable snapshot of the known nodes. All slices are
// index-aligned with nodeIDs; indexOf maps a node account id back to its
// index. Health handles are shared with prior generations when the node
// persists across an update, connections are owned by exactly one
// generation.
type topology struct {
	indexOf     map[hiero.AccountID]int
	nodeIDs     []hiero.AccountID
	health      []*nodeHealth
	connections []*nodeConnection
}

func newStaticTopology(seeds []seedEntry) *topology {
	t := &topology{
		indexOf:     make(map[hiero.AccountID]int, len(seeds)),
		nodeIDs:     make([]hiero.AccountID, 0, len(seeds)),
		health:      make([]*nodeHealth, 0, len(seeds)),
		connections: make([]*nodeConnection, 0, len(seeds)),
	}

	for i, seed := range seeds {
		id := hiero.NewAccountID(seed.nodeNum)
		t.indexOf[id] = i
		t.nodeIDs = append(t.nodeIDs, id)
		t.health = append(t.health, &nodeHealth{})
		t.connections = append(t.connections, newStaticNodeConnection(seed.hosts))
	}

	return t
}

// withAddresses builds the next topology generation from an explicit
// address→node map, grouping addresses by node and carrying health handles
// over for nodes that already existed.
func (t *topology) withAddresses(addresses map[string]hiero.AccountID) *topology {
	grouped := make(map[hiero.AccountID][]string)
	var order []hiero.AccountID

	for address, id := range addresses {
		id = id.WithoutChecksum()
		if _, ok := grouped[id]; !ok {
			order = append(order, id)
		}
		grouped[id] = append(grouped[id], address)
	}

	next := &topology{
		indexOf:     make(map[hiero.AccountID]int, len(grouped)),
		nodeIDs:     make([]hiero.AccountID, 0, len(grouped)),
		health:      make([]*nodeHealth, 0, len(grouped)),
		connections: make([]*nodeConnection, 0, len(grouped)),
	}

	for i, id := range order {
		health := &nodeHealth{}
		if old, ok := t.indexOf[id]; ok {
			health = t.health[old]
		}

		next.indexOf[id] = i
		next.nodeIDs = append(next.nodeIDs, id)
		next.health = append(next.health, health)
		next.connections = append(next.connections, newNodeConnection(grouped[id]))
	}

	return next
}

// withAddressBook builds the next generation from a fetched address book.
// A node that kept its address set keeps its connection (warm channels
// included) and health; a node whose addresses changed keeps health but
// gets a fresh connection; a new node starts from scratch. Nodes absent
// from the book are dropped without a trace.
func (t *topology) withAddressBook(book *NodeAddressBook) *topology {
	entries := book.NodeAddresses

	next := &topology{
		indexOf:     make(map[hiero.AccountID]int, len(entries)),
		nodeIDs:     make([]hiero.AccountID, 0, len(entries)),
		health:      make([]*nodeHealth, 0, len(entries)),
		connections: make([]*nodeConnection, 0, len(entries)),
	}

	for i, entry := range entries {
		id := entry.NodeAccountID.WithoutChecksum()
		addresses := plaintextEndpoints(entry.ServiceEndpoints)

		health := &nodeHealth{}
		connection := newNodeConnection(addresses)

		if old, ok := t.indexOf[id]; ok {
			health = t.health[old]
			if t.connections[old].sameAddresses(addresses) {
				connection = t.connections[old]
			}
		}

		next.indexOf[id] = i
		next.nodeIDs = append(next.nodeIDs, id)
		next.health = append(next.health, health)
		next.connections = append(next.connections, connection)
	}

	return next
}

// plaintextEndpoints filters "host:port" strings down to the plaintext
// port. TLS addressing is derived from these at connection time, never
// stored.
func plaintextEndpoints(endpoints []string) []string {
	var out []string
	for _, endpoint := range endpoints {
		_, portStr, err := net.SplitHostPort(endpoint)
		if err != nil {
			continue
		}
		port, err := strconv.Atoi(portStr)
		if err != nil || port != PlaintextPort {
			continue
		}
		out = append(out, endpoint)
	}
	return out
}

// nodeIndexesForIDs resolves node account ids to indices, preserving input
// order. The first unknown id fails the whole lookup.
func (t *topology) nodeIndexesForIDs(ids []hiero.AccountID) ([]int, error) {
	indexes := make([]int, 0, len(ids))
	for _, id := range ids {
		index, ok := t.indexOf[id.WithoutChecksum()]
		if !ok {
			return nil, &hiero.NodeAccountUnknownError{NodeAccountID: id}
		}
		indexes = append(indexes, index)
	}
	return indexes, nil
}

func (t *topology) healthyNodeIndexes(now time.Time) []int {
	var out []int
	for i := range t.nodeIDs {
		if t.health[i].isHealthy(now) {
			out = append(out, i)
		}
	}
	return out
}

// addresses flattens the topology back into an address→node map for
// diagnostics and serialization.
func (t *topology) addresses() map[string]hiero.AccountID {
	out := make(map[string]hiero.AccountID)
	for i, id := range t.nodeIDs {
		for _, address := range t.connections[i].addresses {
			out[address] = id
		}
	}
	return out
}
