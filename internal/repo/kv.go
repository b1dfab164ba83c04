package repo

import "context"

// KVStore is the string key-value storage the persistence adapter writes
// snapshots into. Implementations return domain.ErrNotFound from Get for a
// missing key. Delete of a missing key is not an error.
type KVStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
