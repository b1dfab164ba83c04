// Package service holds the planning session: it drives the route state
// machine, persists every change, and keeps the visa requirement map for
// the selected nationality up to date in the background.
// No SQL or HTTP lives here. Storage and the visa source are interfaces.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/visa-planner/internal/domain"
	"github.com/pkordes/visa-planner/internal/geo"
	"github.com/pkordes/visa-planner/internal/route"
	"github.com/pkordes/visa-planner/internal/visa"
)

const dateLayout = "2006-01-02"

// SnapshotStore persists one trip snapshot per nationality plus the last
// selected nationality. repo.SnapshotRepo implements it.
type SnapshotStore interface {
	Save(ctx context.Context, nationality string, snap domain.Snapshot) error
	Load(ctx context.Context, nationality string) (*domain.Snapshot, error)
	Clear(ctx context.Context, nationality string) error
	SaveLastNationality(ctx context.Context, code string) error
	LastNationality(ctx context.Context) (string, error)
}

// VisaSource is the part of visa.Client the session uses.
type VisaSource interface {
	visa.RequirementsFetcher
	ClearCache()
	LastUpdated() string
	Stats() visa.CacheStats
}

// Options tune a PlannerService. Zero values pick the defaults.
type Options struct {
	Logger *slog.Logger
	// FetchTimeout bounds each background requirement fetch.
	FetchTimeout time.Duration
	Now          func() time.Time
}

// PlannerService is the single planning session of the process. All
// methods are safe for concurrent use.
type PlannerService struct {
	store    SnapshotStore
	source   VisaSource
	resolver *visa.Service
	log      *slog.Logger
	now      func() time.Time
	timeout  time.Duration

	// base is canceled by Close to stop outstanding fetches.
	base    context.Context
	stop    context.CancelFunc
	fetches sync.WaitGroup

	mu          sync.Mutex
	sessionID   uuid.UUID
	nationality string
	planner     *route.Planner
	reqs        domain.RequirementMap
	loading     bool
	visaErr     *visa.ServiceError
	// seq identifies the latest fetch. Results carrying an older value are
	// discarded.
	seq uint64
}

// NewPlannerService constructs a session with an empty route and no
// nationality selected.
func NewPlannerService(store SnapshotStore, source VisaSource, opts Options) *PlannerService {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = 30 * time.Second
	}
	base, stop := context.WithCancel(context.Background())
	return &PlannerService{
		store:     store,
		source:    source,
		resolver:  visa.NewService(source),
		log:       opts.Logger,
		now:       opts.Now,
		timeout:   opts.FetchTimeout,
		base:      base,
		stop:      stop,
		sessionID: uuid.New(),
		planner:   route.New(),
	}
}

// Close cancels outstanding fetches and waits for them to return.
func (s *PlannerService) Close() {
	s.stop()
	s.fetches.Wait()
}

// Wait blocks until every fetch started so far has been applied or
// discarded.
func (s *PlannerService) Wait() {
	s.fetches.Wait()
}

// RestoreLast re-selects the nationality saved by a previous run, if any.
func (s *PlannerService) RestoreLast(ctx context.Context) (State, error) {
	code, err := s.store.LastNationality(ctx)
	if err != nil {
		return State{}, fmt.Errorf("service.PlannerService.RestoreLast: %w", err)
	}
	if code == "" {
		return s.State(), nil
	}
	return s.SelectNationality(ctx, code)
}

// SelectNationality switches the session to a passport code: the code is
// remembered, that nationality's saved trip is loaded, and a requirement
// fetch starts in the background. Malformed codes fail before any network
// call with an error matching both domain.ErrValidation and
// visa.ErrInvalidNationality.
func (s *PlannerService) SelectNationality(ctx context.Context, code string) (State, error) {
	nat, ok := visa.NormalizeNationality(code)
	if !ok {
		res := s.resolver.ResolveForNationality(ctx, code)
		return State{}, fmt.Errorf("service.PlannerService.SelectNationality: %w: %w", domain.ErrValidation, res.Err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.SaveLastNationality(ctx, nat); err != nil {
		return State{}, fmt.Errorf("service.PlannerService.SelectNationality: %w", err)
	}
	snap, err := s.store.Load(ctx, nat)
	if err != nil {
		return State{}, fmt.Errorf("service.PlannerService.SelectNationality: %w", err)
	}

	s.nationality = nat
	s.planner = restorePlanner(snap)
	s.startFetchLocked(nat)

	s.log.Info("nationality selected", "nationality", nat, "route_len", s.planner.Len())
	return s.stateLocked(), nil
}

// restorePlanner rebuilds the state machine from a snapshot, filling in
// ISO codes that older snapshots lack.
func restorePlanner(snap *domain.Snapshot) *route.Planner {
	if snap == nil {
		return route.New()
	}
	for i, c := range snap.Route {
		if c.ISO == "" {
			if iso, ok := geo.ISOFromGeographyID(c.ID); ok {
				snap.Route[i].ISO = iso
			}
		}
	}
	return route.Restore(*snap)
}

// RefreshVisa drops every cached requirement and fetches the current
// nationality again.
func (s *PlannerService) RefreshVisa(ctx context.Context) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.nationality == "" {
		return State{}, fmt.Errorf("service.PlannerService.RefreshVisa: %w", domain.ErrNoNationality)
	}
	stats := s.source.Stats()
	s.source.ClearCache()
	s.log.Info("visa cache cleared", "entries", stats.Size, "nationality", s.nationality)

	s.startFetchLocked(s.nationality)
	return s.stateLocked(), nil
}

// startFetchLocked begins a background fetch for nat and makes it the only
// one whose result will be applied. Caller holds s.mu.
func (s *PlannerService) startFetchLocked(nat string) {
	s.seq++
	seq := s.seq
	s.reqs = nil
	s.visaErr = nil
	s.loading = true

	s.fetches.Add(1)
	go func() {
		defer s.fetches.Done()
		ctx, cancel := context.WithTimeout(s.base, s.timeout)
		defer cancel()
		s.applyFetch(seq, nat, s.resolver.ResolveForNationality(ctx, nat))
	}()
}

// applyFetch stores a fetch result unless a newer fetch has started or the
// nationality has changed since.
func (s *PlannerService) applyFetch(seq uint64, nat string, res visa.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if seq != s.seq || nat != s.nationality {
		s.log.Info("discarding stale visa response", "nationality", nat, "current", s.nationality, "seq", seq)
		return
	}
	s.loading = false
	if res.Err != nil {
		s.visaErr = res.Err
		s.log.Warn("visa requirements unavailable", "nationality", nat, "kind", res.Err.Kind, "details", res.Err.Details)
		return
	}
	s.reqs = res.Data
	s.log.Info("visa requirements loaded", "nationality", nat, "destinations", len(res.Data))
}

// ---- route mutations -------------------------------------------------------

// ClickInput is a map click as sent by the front end. Geometry is the
// GeoJSON geometry of the clicked territory and may be empty.
type ClickInput struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Geometry json.RawMessage `json:"geometry,omitempty"`
}

// ClickResult reports what a click did and the entry it touched.
type ClickResult struct {
	Action string         `json:"action"`
	Entry  *domain.Country `json:"entry,omitempty"`
	State  State          `json:"state"`
}

// Click applies a map click to the route: add, toggle off, or nothing
// while the route is planned.
func (s *PlannerService) Click(ctx context.Context, in ClickInput) (ClickResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.nationality == "" {
		return ClickResult{}, fmt.Errorf("service.PlannerService.Click: %w", domain.ErrNoNationality)
	}

	iso, _ := geo.ISOFromGeographyID(in.ID)
	name := in.Name
	if name == "" && iso != "" {
		name = geo.CountryNameFromISO(iso)
	}
	if name == "" {
		name = in.ID
	}
	var coords domain.Coordinates
	if len(in.Geometry) > 0 {
		coords = geo.CentroidFromGeoJSON(in.Geometry)
	}

	next := s.planner.Clone()
	outcome, entry := next.Select(route.Click{ID: in.ID, Name: name, ISO: iso, Coordinates: coords})
	res := ClickResult{Action: actionName(outcome)}
	if outcome != route.OutcomeIgnored {
		res.Entry = &entry
		if err := s.commitLocked(ctx, next); err != nil {
			return ClickResult{}, fmt.Errorf("service.PlannerService.Click: %w", err)
		}
		s.log.Debug("route click", "action", res.Action, "id", entry.ID, "name", entry.Name)
	}
	res.State = s.stateLocked()
	return res, nil
}

func actionName(o route.Outcome) string {
	switch o {
	case route.OutcomeAdded:
		return "added"
	case route.OutcomeRemoved:
		return "removed"
	default:
		return "ignored"
	}
}

// RemoveAt deletes the entry at index. Removing always leaves planned mode.
func (s *PlannerService) RemoveAt(ctx context.Context, index int) (State, error) {
	return s.mutate(ctx, "RemoveAt", func(p *route.Planner) error {
		_, err := p.RemoveAt(index)
		return err
	})
}

// Move relocates the entry at from to position to.
func (s *PlannerService) Move(ctx context.Context, from, to int) (State, error) {
	return s.mutate(ctx, "Move", func(p *route.Planner) error {
		return p.MoveTo(from, to)
	})
}

// Undo removes the most recently added entry. It is a no-op on an empty
// route.
func (s *PlannerService) Undo(ctx context.Context) (State, error) {
	return s.mutate(ctx, "Undo", func(p *route.Planner) error {
		p.UndoLast()
		return nil
	})
}

// Plan locks the route. It needs at least two entries.
func (s *PlannerService) Plan(ctx context.Context) (State, error) {
	st, err := s.mutate(ctx, "Plan", func(p *route.Planner) error {
		if !p.PlanRoute() {
			return fmt.Errorf("%w: a route needs a start and a destination", domain.ErrValidation)
		}
		return nil
	})
	if err == nil {
		s.log.Info("route planned", "nationality", st.Nationality, "countries", len(st.Route), "distance_km", st.Summary.DistanceKm)
	}
	return st, err
}

// CancelPlanning unlocks a planned route for editing.
func (s *PlannerService) CancelPlanning(ctx context.Context) (State, error) {
	return s.mutate(ctx, "CancelPlanning", func(p *route.Planner) error {
		p.CancelPlanning()
		return nil
	})
}

// Update edits the dates and notes of the entry at index. Dates must be
// empty or "2006-01-02"; their order is not checked.
func (s *PlannerService) Update(ctx context.Context, index int, patch domain.CountryPatch) (State, error) {
	if patch.Dates != nil {
		for _, d := range []string{patch.Dates.Arrival, patch.Dates.Departure} {
			if d == "" {
				continue
			}
			if _, err := time.Parse(dateLayout, d); err != nil {
				return State{}, fmt.Errorf("service.PlannerService.Update: %w: date %q is not YYYY-MM-DD", domain.ErrValidation, d)
			}
		}
	}
	return s.mutate(ctx, "Update", func(p *route.Planner) error {
		return p.Update(index, patch)
	})
}

// Reset empties the route and deletes the nationality's saved trip.
func (s *PlannerService) Reset(ctx context.Context) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.nationality == "" {
		return State{}, fmt.Errorf("service.PlannerService.Reset: %w", domain.ErrNoNationality)
	}
	if err := s.store.Clear(ctx, s.nationality); err != nil {
		return State{}, fmt.Errorf("service.PlannerService.Reset: %w", err)
	}
	s.planner.Reset()
	s.log.Info("trip reset", "nationality", s.nationality)
	return s.stateLocked(), nil
}

// Save persists the current trip on demand.
func (s *PlannerService) Save(ctx context.Context) (State, error) {
	return s.mutate(ctx, "Save", func(*route.Planner) error { return nil })
}

// mutate runs fn against a copy of the planner and swaps the copy in only
// once it is persisted.
func (s *PlannerService) mutate(ctx context.Context, op string, fn func(*route.Planner) error) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.nationality == "" {
		return State{}, fmt.Errorf("service.PlannerService.%s: %w", op, domain.ErrNoNationality)
	}
	next := s.planner.Clone()
	if err := fn(next); err != nil {
		return State{}, fmt.Errorf("service.PlannerService.%s: %w", op, err)
	}
	if err := s.commitLocked(ctx, next); err != nil {
		return State{}, fmt.Errorf("service.PlannerService.%s: %w", op, err)
	}
	return s.stateLocked(), nil
}

// commitLocked saves next and makes it the session planner. On a store
// error the session keeps its previous route.
func (s *PlannerService) commitLocked(ctx context.Context, next *route.Planner) error {
	if err := s.store.Save(ctx, s.nationality, next.Snapshot()); err != nil {
		return err
	}
	s.planner = next
	return nil
}

// ---- lookups ---------------------------------------------------------------

// ResolveNationality fetches the requirement map of any passport code
// synchronously. It does not touch the session.
func (s *PlannerService) ResolveNationality(ctx context.Context, code string) visa.Result {
	return s.resolver.ResolveForNationality(ctx, code)
}

// ResolveCountry returns the requirement for one destination on a
// passport. A destination without data yields the unknown record.
func (s *PlannerService) ResolveCountry(ctx context.Context, passport, destination string) (domain.VisaRequirement, *visa.ServiceError) {
	res := s.resolver.ResolveForNationality(ctx, passport)
	if res.Err != nil && res.Err.Kind == visa.KindInvalidNationality {
		return domain.VisaRequirement{}, res.Err
	}
	nat, _ := visa.NormalizeNationality(passport)
	dest, ok := visa.NormalizeNationality(destination)
	if !ok {
		return domain.VisaRequirement{}, &visa.ServiceError{
			Kind:    visa.KindInvalidNationality,
			Message: "Invalid destination code provided",
			Details: "Destination must be a valid 2-letter ISO country code",
		}
	}
	if r, ok := visa.ResolveForCountry(dest, nat, res.Data); ok {
		return r, nil
	}
	return visa.UnknownRequirement(dest), res.Err
}
