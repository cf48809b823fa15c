package hiero

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"
)

// TransactionID uniquely identifies a transaction: the paying account plus
// the instant from which the transaction is valid. Nodes reject duplicates,
// so a fresh valid-start is generated per logical submission.
type TransactionID struct {
	AccountID  AccountID
	ValidStart time.Time
	Nonce      int32
	Scheduled  bool
}

// Transactions are valid for a fixed window starting at ValidStart. The
// valid-start is backdated by a small random amount so that ids generated in
// quick succession by the same operator do not collide.
const (
	txIDJitterMin = 8 * time.Second
	txIDJitterMax = 10 * time.Second
)

// GenerateTransactionID creates a transaction id for the given payer with a
// jittered valid-start just before now.
func GenerateTransactionID(payer AccountID) TransactionID {
	jitter := txIDJitterMin + time.Duration(rand.Int63n(int64(txIDJitterMax-txIDJitterMin)))

	return TransactionID{
		AccountID:  payer,
		ValidStart: time.Now().Add(-jitter),
	}
}

// TransactionIDFromString parses "payer@seconds.nanos", with optional
// "?scheduled" and "/nonce" suffixes.
func TransactionIDFromString(s string) (TransactionID, error) {
	var id TransactionID

	if i := strings.IndexByte(s, '/'); i >= 0 {
		nonce, err := strconv.ParseInt(s[i+1:], 10, 32)
		if err != nil {
			return id, fmt.Errorf("invalid transaction id nonce in %q: %w", s, err)
		}
		id.Nonce = int32(nonce)
		s = s[:i]
	}

	if strings.HasSuffix(s, "?scheduled") {
		id.Scheduled = true
		s = strings.TrimSuffix(s, "?scheduled")
	}

	at := strings.IndexByte(s, '@')
	if at < 0 {
		return id, fmt.Errorf("invalid transaction id %q: expected payer@seconds.nanos", s)
	}

	payer, err := AccountIDFromString(s[:at])
	if err != nil {
		return id, err
	}

	secNano := strings.SplitN(s[at+1:], ".", 2)
	if len(secNano) != 2 {
		return id, fmt.Errorf("invalid transaction id %q: expected payer@seconds.nanos", s)
	}

	sec, err := strconv.ParseInt(secNano[0], 10, 64)
	if err != nil {
		return id, fmt.Errorf("invalid transaction id %q: %w", s, err)
	}
	nano, err := strconv.ParseInt(secNano[1], 10, 64)
	if err != nil {
		return id, fmt.Errorf("invalid transaction id %q: %w", s, err)
	}

	id.AccountID = payer
	id.ValidStart = time.Unix(sec, nano).UTC()

	return id, nil
}

func (id TransactionID) String() string {
	s := fmt.Sprintf("%s@%d.%d", id.AccountID, id.ValidStart.Unix(), id.ValidStart.Nanosecond())
	if id.Scheduled {
		s += "?scheduled"
	}
	if id.Nonce != 0 {
		s += "/" + strconv.FormatInt(int64(id.Nonce), 10)
	}
	return s
}
