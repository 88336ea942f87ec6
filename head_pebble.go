package undokv

import (
	"errors"
	"fmt"

	"github.com/cockroachdb/pebble"
)

// PebbleHead is a durable head store backed by a Pebble database.
type PebbleHead struct {
	db        *pebble.DB
	writeOpts *pebble.WriteOptions
}

type PebbleHeadOptions struct {
	// SyncWrites makes every write wait for the WAL to reach stable
	// storage. Leave false for tests.
	SyncWrites bool
}

func OpenPebbleHead(path string, opt PebbleHeadOptions) (*PebbleHead, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("undokv: failed to open %s: %w", path, err)
	}

	writeOpts := pebble.NoSync
	if opt.SyncWrites {
		writeOpts = pebble.Sync
	}

	return &PebbleHead{db: db, writeOpts: writeOpts}, nil
}

func (h *PebbleHead) Get(key []byte) ([]byte, bool, error) {
	val, closer, err := h.db.Get(key)
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("undokv: get failed: %w", err)
	}
	defer closer.Close()

	// Copy — the returned slice is only valid until closer.Close().
	out := make([]byte, len(val))
	copy(out, val)
	return out, true, nil
}

func (h *PebbleHead) Put(key, value []byte) error {
	if err := h.db.Set(key, value, h.writeOpts); err != nil {
		return fmt.Errorf("undokv: put failed: %w", err)
	}
	return nil
}

func (h *PebbleHead) Delete(key []byte) error {
	if err := h.db.Delete(key, h.writeOpts); err != nil {
		return fmt.Errorf("undokv: delete failed: %w", err)
	}
	return nil
}

func (h *PebbleHead) Close() error {
	if err := h.db.Flush(); err != nil {
		h.db.Close()
		return fmt.Errorf("undokv: flush failed: %w", err)
	}
	if err := h.db.Close(); err != nil {
		return fmt.Errorf("undokv: close failed: %w", err)
	}
	return nil
}

var _ Store = (*PebbleHead)(nil)
