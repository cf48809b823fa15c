package hiero

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateChecksumShape(t *testing.T) {
	for _, entity := range []string{"0.0.1", "0.0.123", "12.34.5678", "0.0.18446744073709551615"} {
		c := generateChecksum(entity, LedgerIDMainnet)
		assert.Len(t, c, 5)
		for i := 0; i < len(c); i++ {
			assert.GreaterOrEqual(t, c[i], byte('a'))
			assert.LessOrEqual(t, c[i], byte('z'))
		}
	}
}

func TestGenerateChecksumKnownValues(t *testing.T) {
	cases := []struct {
		entity   string
		ledger   LedgerID
		expected string
	}{
		{"0.0.1", LedgerIDMainnet, "dfkxr"},
		{"0.0.2", LedgerIDMainnet, "lpifi"},
		{"0.0.3", LedgerIDMainnet, "tzfmz"},
		{"0.0.123", LedgerIDMainnet, "vfmkw"},
		{"0.0.1001", LedgerIDMainnet, "urkbk"},
		{"1.2.3", LedgerIDMainnet, "islfi"},
		{"0.0.123", LedgerIDTestnet, "esxsf"},
		{"0.0.123", LedgerIDPreviewnet, "ogizo"},
	}

	for _, tc := range cases {
		got := generateChecksum(tc.entity, tc.ledger)
		assert.Equal(t, tc.expected, got, "%s on %s", tc.entity, tc.ledger)
	}
}

func TestGenerateChecksumDeterministic(t *testing.T) {
	a := generateChecksum("0.0.123", LedgerIDMainnet)
	b := generateChecksum("0.0.123", LedgerIDMainnet)
	assert.Equal(t, a, b)
}

func TestGenerateChecksumLedgerDependent(t *testing.T) {
	for _, entity := range []string{"0.0.1", "0.0.123", "3.14.159"} {
		mainnet := generateChecksum(entity, LedgerIDMainnet)
		testnet := generateChecksum(entity, LedgerIDTestnet)
		previewnet := generateChecksum(entity, LedgerIDPreviewnet)
		assert.NotEqual(t, mainnet, testnet, "entity %s", entity)
		assert.NotEqual(t, mainnet, previewnet, "entity %s", entity)
	}
}

func TestGenerateChecksumEntityDependent(t *testing.T) {
	a := generateChecksum("0.0.123", LedgerIDMainnet)
	b := generateChecksum("0.0.124", LedgerIDMainnet)
	assert.NotEqual(t, a, b)
}
