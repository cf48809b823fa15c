package hiero

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateTransactionIDBackdates(t *testing.T) {
	payer := NewAccountID(2)

	before := time.Now()
	id := GenerateTransactionID(payer)
	after := time.Now()

	assert.Equal(t, payer, id.AccountID)

	// valid-start lands 8 to 10 seconds before now
	assert.True(t, id.ValidStart.Before(before.Add(-txIDJitterMin+time.Second)))
	assert.True(t, id.ValidStart.After(after.Add(-txIDJitterMax-time.Second)))
}

func TestGenerateTransactionIDUnique(t *testing.T) {
	payer := NewAccountID(2)

	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		seen[GenerateTransactionID(payer).String()] = true
	}
	assert.Greater(t, len(seen), 1)
}

func TestTransactionIDFromString(t *testing.T) {
	id, err := TransactionIDFromString("0.0.2@1671234567.890")
	require.NoError(t, err)
	assert.Equal(t, NewAccountID(2), id.AccountID)
	assert.Equal(t, int64(1671234567), id.ValidStart.Unix())
	assert.Equal(t, 890, id.ValidStart.Nanosecond())
	assert.False(t, id.Scheduled)
	assert.Zero(t, id.Nonce)
}

func TestTransactionIDFromStringScheduledAndNonce(t *testing.T) {
	id, err := TransactionIDFromString("0.0.2@1671234567.890?scheduled/4")
	require.NoError(t, err)
	assert.True(t, id.Scheduled)
	assert.Equal(t, int32(4), id.Nonce)

	assert.Equal(t, "0.0.2@1671234567.890?scheduled/4", id.String())
}

func TestTransactionIDFromStringRejectsMalformed(t *testing.T) {
	for _, s := range []string{"", "0.0.2", "0.0.2@", "0.0.2@12", "@1.2", "0.0.2@a.b"} {
		_, err := TransactionIDFromString(s)
		assert.Error(t, err, "input %q", s)
	}
}
