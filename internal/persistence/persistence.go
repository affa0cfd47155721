package persistence

import "context"

// Store is the durable key-value boundary the entity store mirrors itself
// into. Each collection is written whole under its name after every mutation
// and read back once at process start. The engine never reads through it
// afterwards, so any durable key-value mechanism suffices.
type Store interface {
	Save(ctx context.Context, collection string, v any) error
	// Load unmarshals the stored collection into dest and reports whether
	// anything was stored under that name.
	Load(ctx context.Context, collection string, dest any) (bool, error)
	Delete(ctx context.Context, collection string) error
}
