package patient

import "context"

// Store is the persistence interface for patient records. Records are
// addressed by their insertion index, which is never reassigned.
type Store interface {
	Append(ctx context.Context, rec *Record) (index int, err error)
	ReadAll(ctx context.Context) ([]*Record, error)
	Reset(ctx context.Context) error
}
