package undokv

// Store represents a key-value surface shared by head stores, sessions and
// frontiers, so that callers read and write the current frontier the same
// way whether or not any speculative session exists.
type Store interface {
	// Get retrieves a value by key. ok is false if the key is absent.
	// Implementations must return a value the caller may retain.
	Get(key []byte) (value []byte, ok bool, err error)

	// Put stores a key-value pair. Implementations must not alias the
	// caller's buffers after returning.
	Put(key, value []byte) error

	// Delete removes a key. Deleting an absent key is not an error.
	Delete(key []byte) error
}
