package hiero

import (
	"encoding/hex"
	"fmt"
)

// LedgerID identifies the target ledger. It is used to salt entity-id
// checksums so that an id copied from one network fails validation on
// another.
type LedgerID []byte

// Well-known ledgers.
var (
	LedgerIDMainnet    = LedgerID{0x00}
	LedgerIDTestnet    = LedgerID{0x01}
	LedgerIDPreviewnet = LedgerID{0x02}
)

// LedgerIDFromString parses a ledger id from a network name or a hex string.
func LedgerIDFromString(s string) (LedgerID, error) {
	switch s {
	case "mainnet":
		return LedgerIDMainnet, nil
	case "testnet":
		return LedgerIDTestnet, nil
	case "previewnet":
		return LedgerIDPreviewnet, nil
	}

	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid ledger id %q: %w", s, err)
	}

	return LedgerID(b), nil
}

func (l LedgerID) String() string {
	switch {
	case l.equal(LedgerIDMainnet):
		return "mainnet"
	case l.equal(LedgerIDTestnet):
		return "testnet"
	case l.equal(LedgerIDPreviewnet):
		return "previewnet"
	}
	return hex.EncodeToString(l)
}

func (l LedgerID) equal(other LedgerID) bool {
	if len(l) != len(other) {
		return false
	}
	for i := range l {
		if l[i] != other[i] {
			return false
		}
	}
	return true
}
