package undokv

import (
	"fmt"
	"slices"
	"time"

	"go.etcd.io/bbolt"
)

var boltBucketName = []byte("kv")

// BoltHead is a durable head store backed by a Bolt database with a single
// bucket. Each operation runs in its own transaction.
type BoltHead struct {
	bdb *bbolt.DB
}

type BoltHeadOptions struct {
	// IsTesting disables syncing for faster test runs.
	IsTesting bool
}

func OpenBoltHead(path string, opt BoltHeadOptions) (*BoltHead, error) {
	bopt := *bbolt.DefaultOptions
	bopt.Timeout = 10 * time.Second
	if opt.IsTesting {
		bopt.NoSync = true
		bopt.NoFreelistSync = true
	}

	bdb, err := bbolt.Open(path, 0666, &bopt)
	if err != nil {
		return nil, fmt.Errorf("undokv: %w", err)
	}

	err = bdb.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(boltBucketName)
		return err
	})
	if err != nil {
		bdb.Close()
		return nil, fmt.Errorf("undokv: %w", err)
	}

	return &BoltHead{bdb: bdb}, nil
}

func (h *BoltHead) Bolt() *bbolt.DB {
	return h.bdb
}

func (h *BoltHead) Get(key []byte) ([]byte, bool, error) {
	var value []byte
	var ok bool
	err := h.bdb.View(func(tx *bbolt.Tx) error {
		// Copy: Bolt memory is only valid while the transaction is open.
		if v := tx.Bucket(boltBucketName).Get(key); v != nil {
			value, ok = slices.Clone(v), true
		}
		return nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("undokv: %w", err)
	}
	return value, ok, nil
}

func (h *BoltHead) Put(key, value []byte) error {
	err := h.bdb.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(boltBucketName).Put(key, value)
	})
	if err != nil {
		return fmt.Errorf("undokv: %w", err)
	}
	return nil
}

func (h *BoltHead) Delete(key []byte) error {
	err := h.bdb.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(boltBucketName).Delete(key)
	})
	if err != nil {
		return fmt.Errorf("undokv: %w", err)
	}
	return nil
}

func (h *BoltHead) Close() error {
	return h.bdb.Close()
}

var _ Store = (*BoltHead)(nil)
