package network

import (
	"bytes"
	"encoding/json"
	"os"
	"sync"

	"github.com/hiero-ledger/hiero-go-client/src/hiero"
)

// NodeAddress is one consensus node's entry in the network address book.
type NodeAddress struct {
	// NodeID is the sequential node number assigned by the network.
	NodeID int64

	// NodeAccountID is the account that collects the node's fees and the
	// identity transactions are addressed to.
	NodeAccountID hiero.AccountID

	// ServiceEndpoints are "host:port" strings covering both the plaintext
	// and TLS ports.
	ServiceEndpoints []string

	// RSAPublicKey is the hex-encoded key the node signs gossip with.
	RSAPublicKey string

	// TLSCertificateHash is the SHA-384 hash of the node's TLS certificate.
	TLSCertificateHash []byte

	Description string
}

// NodeAddressBook is the full node roster as published on the ledger.
type NodeAddressBook struct {
	NodeAddresses []NodeAddress
}

// JSONAddressBook provides address book persistence on disk in the form of
// a JSON file, so a client can start from the last known roster before the
// first refresh completes.
type JSONAddressBook struct {
	l    sync.Mutex
	path string
}

// NewJSONAddressBook creates a JSONAddressBook backed by the given file.
func NewJSONAddressBook(path string) *JSONAddressBook {
	return &JSONAddressBook{path: path}
}

// AddressBook parses the underlying JSON file and returns the corresponding
// NodeAddressBook.
func (j *JSONAddressBook) AddressBook() (*NodeAddressBook, error) {
	j.l.Lock()
	defer j.l.Unlock()

	buf, err := os.ReadFile(j.path)
	if err != nil {
		return nil, err
	}

	if len(buf) == 0 {
		return nil, nil
	}

	var addresses []NodeAddress
	dec := json.NewDecoder(bytes.NewReader(buf))
	if err := dec.Decode(&addresses); err != nil {
		return nil, err
	}

	return &NodeAddressBook{NodeAddresses: addresses}, nil
}

// Write persists a NodeAddressBook to the JSON file.
func (j *JSONAddressBook) Write(book *NodeAddressBook) error {
	j.l.Lock()
	defer j.l.Unlock()

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "\t")
	if err := enc.Encode(book.NodeAddresses); err != nil {
		return err
	}

	return os.WriteFile(j.path, buf.Bytes(), 0755)
}
