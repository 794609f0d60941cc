package badgerfx

// Entity is a value stored under its own key with optional secondary index
// keys pointing back to it.
type Entity interface {
	StorageKey() string
	StorageIndexes() []string

	MarshalStorage() ([]byte, error)
	UnmarshalStorage(data []byte) error
}

// KeyFunc maps an entity id to its storage key.
type KeyFunc func(id string) string
