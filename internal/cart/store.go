package cart

import "context"

// Store persists the basket between runs under a single named slot.
// Save overwrites the record, Clear removes it, and Load returns nil lines
// when nothing is stored.
type Store interface {
	Load(ctx context.Context) ([]Line, error)
	Save(ctx context.Context, lines []Line) error
	Clear(ctx context.Context) error
}
