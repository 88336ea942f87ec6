package undokv

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// PutValue marshals v with msgpack and stores it under key. Works against
// any Store, so callers can write typed values through a frontier, a
// session or a head store alike.
func PutValue(s Store, key []byte, v any) error {
	data, err := msgpack.Marshal(v)
	if err != nil {
		return fmt.Errorf("undokv: marshaling value of %q: %w", key, err)
	}
	return s.Put(key, data)
}

// GetValue unmarshals the value stored under key into out. Returns false
// when the key is absent.
func GetValue(s Store, key []byte, out any) (bool, error) {
	data, ok, err := s.Get(key)
	if err != nil || !ok {
		return ok, err
	}
	if err := msgpack.Unmarshal(data, out); err != nil {
		return true, dataErrf(data, 0, err, "unmarshaling value of %q", key)
	}
	return true, nil
}
