package kvio

import (
	"errors"
	"log/slog"
	"strconv"

	"github.com/dgraph-io/badger/v2"
	"github.com/gnames/gncurator/internal/ent/kv"
	"github.com/gnames/gnsys"
)

// conflictRetries is how many times an increment is repeated when a
// concurrent transaction changed the same key.
const conflictRetries = 100

var errClosed = errors.New("key-value store is not open")

type kvio struct {
	dir string
	kv  *badger.DB
}

// New returns a new instance of kvio. Data already present in the directory
// are kept.
func New(dir string) (kv.KeyVal, error) {
	res := kvio{
		dir: dir,
	}

	err := gnsys.MakeDir(dir)
	if err != nil {
		slog.Error("Cannot create directory", "error", err, "dir", dir)
		return nil, err
	}

	return &res, nil
}

// Open opens a key-value store.
func (k *kvio) Open() error {
	if k.kv != nil {
		slog.Warn("key-value store is not nil")
	}
	options := badger.DefaultOptions(k.dir)
	options.Logger = nil

	bdb, err := badger.Open(options)
	if err != nil {
		return err
	}
	k.kv = bdb
	return nil
}

// Close closes a key-value store.
func (k *kvio) Close() error {
	if k.kv == nil {
		slog.Warn("key-value store is nil")
		return nil
	}
	err := k.kv.Close()
	k.kv = nil
	return err
}

// GetValue returns a value for a given key.
func (k *kvio) GetValue(key []byte) ([]byte, error) {
	if k.kv == nil {
		return nil, errClosed
	}
	txn := k.kv.NewTransaction(false)
	defer txn.Discard()
	val, err := txn.Get(key)
	if err == badger.ErrKeyNotFound {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	var res []byte
	return val.ValueCopy(res)
}

// Increment increases a counter kept under a key.
func (k *kvio) Increment(key []byte) (int, error) {
	if k.kv == nil {
		return 0, errClosed
	}
	var res int
	var err error
	for range conflictRetries {
		err = k.kv.Update(func(txn *badger.Txn) error {
			n, err := counterValue(txn, key)
			if err != nil {
				return err
			}
			res = n + 1
			return txn.Set(key, []byte(strconv.Itoa(res)))
		})
		if err != badger.ErrConflict {
			break
		}
	}
	if err != nil {
		return 0, err
	}
	return res, nil
}

func counterValue(txn *badger.Txn, key []byte) (int, error) {
	item, err := txn.Get(key)
	if err == badger.ErrKeyNotFound {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	var n int
	err = item.Value(func(val []byte) error {
		n, err = strconv.Atoi(string(val))
		return err
	})
	return n, err
}
