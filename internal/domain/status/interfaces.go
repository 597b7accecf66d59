package status

import "context"

// Repository persists status records.
type Repository interface {
	List(ctx context.Context) ([]Record, error)
	Upsert(ctx context.Context, rec *Record) error
}
