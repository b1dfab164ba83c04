// Package route implements the trip-building state machine: an ordered list
// of selected countries plus the phase of the three-step selection workflow
// (start, destination, further waypoints) and the planned lock.
//
// A Planner is not safe for concurrent use; callers serialize access.
package route

import (
	"fmt"

	"github.com/pkordes/visa-planner/internal/domain"
)

// Step is the selection step shown to the traveller.
type Step string

const (
	StepSelectStart       Step = "select-start"
	StepSelectDestination Step = "select-destination"
	StepAddingCountries   Step = "adding-countries"
)

// Phase is the single tagged state of a Planner. Planned is only reachable
// with at least two entries, so a planned route with no destination cannot
// be represented.
type Phase int

const (
	PhaseSelectStart Phase = iota
	PhaseSelectDestination
	PhaseEditing
	PhasePlanned
)

func (p Phase) String() string {
	switch p {
	case PhaseSelectStart:
		return "select-start"
	case PhaseSelectDestination:
		return "select-destination"
	case PhaseEditing:
		return "editing"
	case PhasePlanned:
		return "planned"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// Click is a resolved map click: the geometry id and name of the clicked
// territory with its ISO code and centroid already derived.
type Click struct {
	ID          string
	Name        string
	ISO         string
	Coordinates domain.Coordinates
}

// Outcome reports what Select did.
type Outcome int

const (
	OutcomeIgnored Outcome = iota
	OutcomeAdded
	OutcomeRemoved
)

// Planner owns the route and its phase.
type Planner struct {
	route []domain.Country
	phase Phase
}

// New returns an empty Planner in the select-start step.
func New() *Planner {
	return &Planner{phase: PhaseSelectStart}
}

// Restore rebuilds a Planner from a persisted snapshot. The step is derived
// from the route length, a planned flag on a route shorter than two entries
// is dropped, and repeated ids keep only their first occurrence.
func Restore(s domain.Snapshot) *Planner {
	p := New()
	seen := make(map[string]bool, len(s.Route))
	for _, c := range s.Route {
		if c.ID == "" || seen[c.ID] {
			continue
		}
		seen[c.ID] = true
		p.route = append(p.route, c)
	}
	p.rederive()
	if s.IsPlanned && len(p.route) >= 2 {
		p.phase = PhasePlanned
	}
	return p
}

// Clone returns an independent copy. Mutating the copy leaves p untouched.
func (p *Planner) Clone() *Planner {
	return &Planner{route: p.Route(), phase: p.phase}
}

// Phase returns the current tagged state.
func (p *Planner) Phase() Phase { return p.phase }

// Step returns the selection step. A planned route reports
// adding-countries.
func (p *Planner) Step() Step {
	switch p.phase {
	case PhaseSelectStart:
		return StepSelectStart
	case PhaseSelectDestination:
		return StepSelectDestination
	default:
		return StepAddingCountries
	}
}

// IsPlanned reports whether the route is locked in planned mode.
func (p *Planner) IsPlanned() bool { return p.phase == PhasePlanned }

// Len returns the number of route entries.
func (p *Planner) Len() int { return len(p.route) }

// Route returns a copy of the ordered route.
func (p *Planner) Route() []domain.Country {
	out := make([]domain.Country, len(p.route))
	copy(out, p.route)
	return out
}

// Snapshot returns the persistable form of the planner.
func (p *Planner) Snapshot() domain.Snapshot {
	return domain.Snapshot{Route: p.Route(), IsPlanned: p.IsPlanned()}
}

// IndexOf returns the position of the entry with the given geometry id, or
// -1.
func (p *Planner) IndexOf(id string) int {
	for i, c := range p.route {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// Select applies a map click. Clicking a country already in the route
// removes it; any other click appends it. Clicks are ignored while planned
// and when the click carries no id.
func (p *Planner) Select(c Click) (Outcome, domain.Country) {
	if p.phase == PhasePlanned || c.ID == "" {
		return OutcomeIgnored, domain.Country{}
	}

	if i := p.IndexOf(c.ID); i >= 0 {
		removed := p.removeAt(i)
		return OutcomeRemoved, removed
	}

	entry := domain.Country{
		Name:        c.Name,
		ID:          c.ID,
		ISO:         c.ISO,
		Coordinates: c.Coordinates,
	}
	p.route = append(p.route, entry)
	p.rederive()
	return OutcomeAdded, entry
}

// PlanRoute locks the route. It reports false, changing nothing, when the
// route has fewer than two entries.
func (p *Planner) PlanRoute() bool {
	if len(p.route) < 2 {
		return false
	}
	p.phase = PhasePlanned
	return true
}

// CancelPlanning returns a planned route to editing. The route is untouched.
func (p *Planner) CancelPlanning() {
	if p.phase == PhasePlanned {
		p.phase = PhaseEditing
	}
}

// RemoveAt deletes the entry at index and leaves planned mode.
func (p *Planner) RemoveAt(index int) (domain.Country, error) {
	if err := p.checkIndex(index); err != nil {
		return domain.Country{}, err
	}
	return p.removeAt(index), nil
}

// MoveTo moves the entry at from so that it ends up at position to.
// The route must not be planned.
func (p *Planner) MoveTo(from, to int) error {
	if p.phase == PhasePlanned {
		return domain.ErrRouteLocked
	}
	if err := p.checkIndex(from); err != nil {
		return err
	}
	if err := p.checkIndex(to); err != nil {
		return err
	}
	if from == to {
		return nil
	}

	moved := p.route[from]
	rest := append(p.route[:from:from], p.route[from+1:]...)
	out := make([]domain.Country, 0, len(p.route))
	out = append(out, rest[:to]...)
	out = append(out, moved)
	out = append(out, rest[to:]...)
	p.route = out
	return nil
}

// UndoLast removes the last entry. It reports false on an empty route.
func (p *Planner) UndoLast() (domain.Country, bool) {
	if len(p.route) == 0 {
		return domain.Country{}, false
	}
	return p.removeAt(len(p.route) - 1), true
}

// Reset clears the route and returns to select-start.
func (p *Planner) Reset() {
	p.route = nil
	p.phase = PhaseSelectStart
}

// Update merges editable fields into the entry at index. It has no effect
// on the phase, and dates are not validated against each other.
func (p *Planner) Update(index int, patch domain.CountryPatch) error {
	if err := p.checkIndex(index); err != nil {
		return err
	}
	entry := p.route[index]
	if patch.Dates != nil {
		d := *patch.Dates
		entry.Dates = &d
	}
	if patch.Notes != nil {
		entry.Notes = *patch.Notes
	}
	p.route[index] = entry
	return nil
}

func (p *Planner) removeAt(index int) domain.Country {
	removed := p.route[index]
	out := make([]domain.Country, 0, len(p.route)-1)
	out = append(out, p.route[:index]...)
	out = append(out, p.route[index+1:]...)
	p.route = out
	p.rederive()
	return removed
}

// rederive sets the phase from the route length, leaving planned mode.
func (p *Planner) rederive() {
	switch len(p.route) {
	case 0:
		p.phase = PhaseSelectStart
	case 1:
		p.phase = PhaseSelectDestination
	default:
		p.phase = PhaseEditing
	}
}

func (p *Planner) checkIndex(index int) error {
	if index < 0 || index >= len(p.route) {
		return fmt.Errorf("%w: index %d out of range [0,%d)", domain.ErrValidation, index, len(p.route))
	}
	return nil
}
