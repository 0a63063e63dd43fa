package kv

// KeyVal is a key-value store.
type KeyVal interface {
	// Open opens a key-value store.
	Open() error

	// Close closes a key-value store.
	Close() error

	// GetValue returns a value of a key, or nil if the key is absent.
	GetValue(key []byte) ([]byte, error)

	// Increment atomically increases a decimal counter kept under a key
	// and returns its new value. An absent key counts from zero.
	Increment(key []byte) (int, error)
}
