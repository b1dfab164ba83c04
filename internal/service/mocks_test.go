package service_test

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/pkordes/visa-planner/internal/domain"
	"github.com/pkordes/visa-planner/internal/service"
	"github.com/pkordes/visa-planner/internal/visa"
)

// ---- mock store ------------------------------------------------------------

// mockStore is an in-memory SnapshotStore. Function fields, when set,
// replace the default behaviour.
type mockStore struct {
	mu    sync.Mutex
	snaps map[string]domain.Snapshot
	last  string

	save  func(ctx context.Context, nationality string, snap domain.Snapshot) error
	clear func(ctx context.Context, nationality string) error
}

var _ service.SnapshotStore = (*mockStore)(nil)

func newMockStore() *mockStore {
	return &mockStore{snaps: map[string]domain.Snapshot{}}
}

func (m *mockStore) Save(ctx context.Context, nationality string, snap domain.Snapshot) error {
	if m.save != nil {
		return m.save(ctx, nationality, snap)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snaps[nationality] = snap
	return nil
}

func (m *mockStore) Load(_ context.Context, nationality string) (*domain.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap, ok := m.snaps[nationality]
	if !ok {
		return nil, nil
	}
	return &snap, nil
}

func (m *mockStore) Clear(ctx context.Context, nationality string) error {
	if m.clear != nil {
		return m.clear(ctx, nationality)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.snaps, nationality)
	return nil
}

func (m *mockStore) SaveLastNationality(_ context.Context, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.last = code
	return nil
}

func (m *mockStore) LastNationality(context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last, nil
}

func (m *mockStore) snapshot(nationality string) (domain.Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.snaps[nationality]
	return s, ok
}

// ---- mock visa source ------------------------------------------------------

// mockSource is a hand-written VisaSource. fetch defaults to an empty map.
type mockSource struct {
	fetch func(ctx context.Context, code string) (domain.RequirementMap, error)

	mu      sync.Mutex
	calls   []string
	cleared int
}

var _ service.VisaSource = (*mockSource)(nil)

func (m *mockSource) FetchAllVisaRequirements(ctx context.Context, code string) (domain.RequirementMap, error) {
	m.mu.Lock()
	m.calls = append(m.calls, code)
	m.mu.Unlock()
	if m.fetch == nil {
		return domain.RequirementMap{}, nil
	}
	return m.fetch(ctx, code)
}

func (m *mockSource) ClearCache() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cleared++
}

func (m *mockSource) LastUpdated() string { return "2025-01-15" }

func (m *mockSource) Stats() visa.CacheStats { return visa.CacheStats{} }

func (m *mockSource) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// fixedSource answers every passport with the same map.
func fixedSource(reqs domain.RequirementMap) *mockSource {
	return &mockSource{fetch: func(context.Context, string) (domain.RequirementMap, error) {
		out := make(domain.RequirementMap, len(reqs))
		for k, v := range reqs {
			out[k] = v
		}
		return out, nil
	}}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
