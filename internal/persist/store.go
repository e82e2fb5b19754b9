package persist

import "context"

// Store is where snapshot documents live. Save must be atomic with respect
// to readers; Load returns every retrievable document, newest first, so the
// manager can fall back past a corrupt latest generation.
type Store interface {
	Save(ctx context.Context, data []byte) error
	Load(ctx context.Context) ([][]byte, error)
}
