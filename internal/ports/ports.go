package ports

import (
	"context"

	"VCScanner/internal/domain"
)

// MessageSource pulls recent raw messages from a channel. Implementations
// wrap the external transport and may fail with transport errors that the
// scan loop isolates per source.
type MessageSource interface {
	Fetch(ctx context.Context, channel string, limit int) ([]domain.RawMessage, error)
}

// RecordStore persists extracted records with idempotent upserts keyed by
// (source, message id) and serves read-only reporting queries.
type RecordStore interface {
	UpsertPerson(ctx context.Context, rec *domain.Record) (int64, error)
	UpsertProject(ctx context.Context, rec *domain.Record) (int64, error)

	// People and Projects return active records in reverse insertion order.
	// An empty role/stage means no filter.
	People(ctx context.Context, role domain.Role, limit int) ([]domain.Record, error)
	Projects(ctx context.Context, stage domain.Stage, limit int) ([]domain.Record, error)

	RecordRun(ctx context.Context, entry domain.RunEntry) error
	RecentRuns(ctx context.Context, limit int) ([]domain.RunEntry, error)
	Statistics(ctx context.Context) (domain.Statistics, error)
}
