package network

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hiero-ledger/hiero-go-client/src/hiero"
)

func TestJSONAddressBookRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "address_book.json")
	j := NewJSONAddressBook(path)

	book := &NodeAddressBook{NodeAddresses: []NodeAddress{
		{
			NodeID:           0,
			NodeAccountID:    hiero.NewAccountID(3),
			ServiceEndpoints: []string{"10.0.0.1:50211", "10.0.0.1:50212"},
			RSAPublicKey:     "308201a2",
			Description:      "node 0",
		},
		{
			NodeID:           1,
			NodeAccountID:    hiero.NewAccountID(4),
			ServiceEndpoints: []string{"10.0.0.2:50211"},
		},
	}}

	require.NoError(t, j.Write(book))

	read, err := j.AddressBook()
	require.NoError(t, err)
	require.NotNil(t, read)
	assert.Equal(t, book.NodeAddresses, read.NodeAddresses)
}

func TestJSONAddressBookMissingFile(t *testing.T) {
	j := NewJSONAddressBook(filepath.Join(t.TempDir(), "nope.json"))

	_, err := j.AddressBook()
	assert.Error(t, err)
}

func TestJSONAddressBookEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	book, err := NewJSONAddressBook(path).AddressBook()
	require.NoError(t, err)
	assert.Nil(t, book)
}
