package hiero

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountIDFromString(t *testing.T) {
	id, err := AccountIDFromString("0.0.123")
	require.NoError(t, err)
	assert.Equal(t, AccountID{Shard: 0, Realm: 0, Num: 123}, id)
	assert.Equal(t, "0.0.123", id.String())

	id, err = AccountIDFromString("1.2.3")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), id.Shard)
	assert.Equal(t, uint64(2), id.Realm)
	assert.Equal(t, uint64(3), id.Num)
}

func TestAccountIDFromStringRejectsMalformed(t *testing.T) {
	for _, s := range []string{"", "0.0", "0.0.1.2", "a.b.c", "0.0.-1", "0.0.1-ABCDE", "0.0.1-abc"} {
		_, err := AccountIDFromString(s)
		assert.Error(t, err, "input %q", s)
	}
}

func TestAccountIDChecksumRoundTrip(t *testing.T) {
	id, err := AccountIDFromString("0.0.123")
	require.NoError(t, err)

	withChecksum := id.StringWithChecksum(LedgerIDMainnet)

	parsed, err := AccountIDFromString(withChecksum)
	require.NoError(t, err)
	assert.Len(t, parsed.Checksum, 5)

	assert.NoError(t, parsed.ValidateChecksum(LedgerIDMainnet))
}

func TestAccountIDChecksumWrongLedger(t *testing.T) {
	id, err := AccountIDFromString("0.0.123")
	require.NoError(t, err)

	parsed, err := AccountIDFromString(id.StringWithChecksum(LedgerIDMainnet))
	require.NoError(t, err)

	err = parsed.ValidateChecksum(LedgerIDTestnet)
	require.Error(t, err)

	var bad *BadEntityIDError
	require.ErrorAs(t, err, &bad)
	assert.Equal(t, "0.0.123", bad.Entity)
	assert.Equal(t, parsed.Checksum, bad.PresentChecksum)
	assert.NotEqual(t, bad.PresentChecksum, bad.ExpectedChecksum)
}

func TestAccountIDWithoutChecksumPasses(t *testing.T) {
	id, err := AccountIDFromString("0.0.7")
	require.NoError(t, err)
	assert.NoError(t, id.ValidateChecksum(LedgerIDMainnet))
	assert.NoError(t, id.ValidateChecksum(LedgerIDTestnet))
}

func TestAccountIDEqualIgnoresChecksum(t *testing.T) {
	plain, err := AccountIDFromString("0.0.42")
	require.NoError(t, err)

	checked, err := AccountIDFromString(plain.StringWithChecksum(LedgerIDMainnet))
	require.NoError(t, err)

	assert.True(t, plain.Equal(checked))
	assert.NotEqual(t, plain, checked)
	assert.Equal(t, plain, checked.WithoutChecksum())
}
