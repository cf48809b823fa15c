package hiero

import (
	"fmt"
	"strconv"
	"strings"
)

// AccountID is the shard.realm.num triple that identifies an account on the
// ledger. Consensus nodes are addressed by the account that gets paid for
// their services, so this is also the stable node identity used by the
// network registry.
type AccountID struct {
	Shard uint64
	Realm uint64
	Num   uint64

	// Checksum is only set when the id was parsed from a string that
	// carried one, e.g. "0.0.123-vfmkw". It is validated lazily against
	// the client's ledger id.
	Checksum string
}

// AccountIDFromString parses "shard.realm.num" with an optional "-ccccc"
// checksum suffix.
func AccountIDFromString(s string) (AccountID, error) {
	numPart := s
	checksum := ""

	if dash := strings.IndexByte(s, '-'); dash >= 0 {
		numPart = s[:dash]
		checksum = s[dash+1:]
		if err := validateChecksumFormat(checksum); err != nil {
			return AccountID{}, err
		}
	}

	parts := strings.Split(numPart, ".")
	if len(parts) != 3 {
		return AccountID{}, fmt.Errorf("invalid account id %q: expected shard.realm.num", s)
	}

	nums := make([]uint64, 3)
	for i, p := range parts {
		n, err := strconv.ParseUint(p, 10, 64)
		if err != nil {
			return AccountID{}, fmt.Errorf("invalid account id %q: %w", s, err)
		}
		nums[i] = n
	}

	return AccountID{
		Shard:    nums[0],
		Realm:    nums[1],
		Num:      nums[2],
		Checksum: checksum,
	}, nil
}

// NewAccountID returns an account id in the default shard and realm.
func NewAccountID(num uint64) AccountID {
	return AccountID{Num: num}
}

func (id AccountID) String() string {
	return fmt.Sprintf("%d.%d.%d", id.Shard, id.Realm, id.Num)
}

// StringWithChecksum renders the id with the checksum for the given ledger.
func (id AccountID) StringWithChecksum(ledgerID LedgerID) string {
	addr := id.String()
	return addr + "-" + generateChecksum(addr, ledgerID)
}

// ValidateChecksum verifies the embedded checksum, if any, against the given
// ledger id. Ids parsed without a checksum always pass.
func (id AccountID) ValidateChecksum(ledgerID LedgerID) error {
	if id.Checksum == "" {
		return nil
	}

	expected := generateChecksum(id.String(), ledgerID)
	if id.Checksum != expected {
		return &BadEntityIDError{
			Entity:           id.String(),
			PresentChecksum:  id.Checksum,
			ExpectedChecksum: expected,
		}
	}

	return nil
}

// WithoutChecksum strips the checksum, yielding the canonical form used as
// a map key: ids compare equal regardless of how they were written.
func (id AccountID) WithoutChecksum() AccountID {
	id.Checksum = ""
	return id
}

// Equal compares the shard.realm.num triple, ignoring any checksum.
func (id AccountID) Equal(other AccountID) bool {
	return id.WithoutChecksum() == other.WithoutChecksum()
}

func validateChecksumFormat(c string) error {
	if len(c) != 5 {
		return fmt.Errorf("expected checksum to be exactly 5 lowercase letters, got %q", c)
	}
	for i := 0; i < len(c); i++ {
		if c[i] < 'a' || c[i] > 'z' {
			return fmt.Errorf("expected checksum to be exactly 5 lowercase letters, got %q", c)
		}
	}
	return nil
}
