package quota

import (
	"context"
	"time"
)

// One accepted request attempt. Timestamps are server-assigned at write
// time; concurrent writers mean no per-client ordering is guaranteed.
type Record struct {
	Identity string
	Action   string
	At       time.Time
}

// Backing store for the ledger. Implementations are shared by many
// concurrent handlers and must be safe for concurrent use; no local
// locking is layered on top because the count check is advisory.
type Store interface {
	// Number of records for identity with a timestamp at or after since.
	CountSince(ctx context.Context, identity string, since time.Time) (int64, error)

	// Appends one record. Never called on the response-critical path.
	Append(ctx context.Context, record Record) error
}
