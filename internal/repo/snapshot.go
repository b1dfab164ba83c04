package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/pkordes/visa-planner/internal/domain"
)

// LastNationalityKey stores the most recently selected passport code.
const LastNationalityKey = "last-nationality"

// SnapshotKey is the storage key of a nationality's trip snapshot.
func SnapshotKey(nationality string) string {
	return "trip-" + strings.ToUpper(nationality)
}

// SnapshotRepo is the persistence adapter for trip snapshots.
type SnapshotRepo struct {
	kv  KVStore
	log *slog.Logger
}

// NewSnapshotRepo wraps kv. A nil logger discards.
func NewSnapshotRepo(kv KVStore, log *slog.Logger) *SnapshotRepo {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &SnapshotRepo{kv: kv, log: log}
}

// Save writes snap under the nationality's key, replacing any previous one.
func (r *SnapshotRepo) Save(ctx context.Context, nationality string, snap domain.Snapshot) error {
	if snap.Route == nil {
		snap.Route = []domain.Country{}
	}
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("repo.SnapshotRepo.Save: encode: %w", err)
	}
	if err := r.kv.Set(ctx, SnapshotKey(nationality), string(raw)); err != nil {
		return fmt.Errorf("repo.SnapshotRepo.Save: %w", err)
	}
	return nil
}

// Load returns the saved snapshot or nil when there is none. A corrupt
// record reads as absent. Only storage failures are returned.
func (r *SnapshotRepo) Load(ctx context.Context, nationality string) (*domain.Snapshot, error) {
	key := SnapshotKey(nationality)
	raw, err := r.kv.Get(ctx, key)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("repo.SnapshotRepo.Load: %w", err)
	}

	var snap domain.Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		r.log.Warn("discarding malformed trip snapshot", "key", key, "error", err)
		return nil, nil
	}
	return &snap, nil
}

// Clear removes the nationality's snapshot.
func (r *SnapshotRepo) Clear(ctx context.Context, nationality string) error {
	if err := r.kv.Delete(ctx, SnapshotKey(nationality)); err != nil {
		return fmt.Errorf("repo.SnapshotRepo.Clear: %w", err)
	}
	return nil
}

// SaveLastNationality records code as the most recent selection.
func (r *SnapshotRepo) SaveLastNationality(ctx context.Context, code string) error {
	if err := r.kv.Set(ctx, LastNationalityKey, code); err != nil {
		return fmt.Errorf("repo.SnapshotRepo.SaveLastNationality: %w", err)
	}
	return nil
}

// LastNationality returns the most recent selection, or "" if none was saved.
func (r *SnapshotRepo) LastNationality(ctx context.Context) (string, error) {
	code, err := r.kv.Get(ctx, LastNationalityKey)
	if errors.Is(err, domain.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("repo.SnapshotRepo.LastNationality: %w", err)
	}
	return code, nil
}
