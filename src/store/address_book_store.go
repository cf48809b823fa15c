package store

import (
	"bytes"

	"github.com/dgraph-io/badger"
	"github.com/ugorji/go/codec"

	"github.com/hiero-ledger/hiero-go-client/src/network"
)

const addressBookKeyPrefix = "address_book_"

// AddressBookStore caches fetched address books on disk, keyed by network
// name, so a client can come up with the last known topology before its
// first refresh completes.
type AddressBookStore struct {
	db   *badger.DB
	path string
}

// NewAddressBookStore opens (or creates) the database at path.
func NewAddressBookStore(path string) (*AddressBookStore, error) {
	opts := badger.DefaultOptions(path)
	opts.SyncWrites = false
	opts.Logger = nil
	handle, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	return &AddressBookStore{
		db:   handle,
		path: path,
	}, nil
}

// Save persists the address book under the given network name.
func (s *AddressBookStore) Save(networkName string, book *network.NodeAddressBook) error {
	data, err := marshalAddressBook(book)
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(addressBookKey(networkName), data)
	})
}

// Load returns the cached address book for the network, or nil when none
// was ever saved.
func (s *AddressBookStore) Load(networkName string) (*network.NodeAddressBook, error) {
	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(addressBookKey(networkName))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if err == badger.ErrKeyNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return unmarshalAddressBook(data)
}

// Path returns the directory backing the store.
func (s *AddressBookStore) Path() string {
	return s.path
}

// Close flushes and closes the underlying database.
func (s *AddressBookStore) Close() error {
	return s.db.Close()
}

func addressBookKey(networkName string) []byte {
	return []byte(addressBookKeyPrefix + networkName)
}

func marshalAddressBook(book *network.NodeAddressBook) ([]byte, error) {
	b := new(bytes.Buffer)
	jh := new(codec.JsonHandle)
	jh.Canonical = true
	enc := codec.NewEncoder(b, jh)

	if err := enc.Encode(book); err != nil {
		return nil, err
	}

	return b.Bytes(), nil
}

func unmarshalAddressBook(data []byte) (*network.NodeAddressBook, error) {
	b := bytes.NewBuffer(data)
	jh := new(codec.JsonHandle)
	jh.Canonical = true
	dec := codec.NewDecoder(b, jh)

	book := new(network.NodeAddressBook)
	if err := dec.Decode(book); err != nil {
		return nil, err
	}

	return book, nil
}
