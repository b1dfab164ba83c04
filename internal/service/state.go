package service

import (
	"fmt"
	"sort"

	"github.com/pkordes/visa-planner/internal/domain"
	"github.com/pkordes/visa-planner/internal/metrics"
	"github.com/pkordes/visa-planner/internal/route"
	"github.com/pkordes/visa-planner/internal/visa"
)

// State is the read model of the session handed to the front end after
// every operation.
type State struct {
	SessionID   string       `json:"sessionId"`
	Nationality string       `json:"nationality"`
	Step        route.Step   `json:"step"`
	IsPlanned   bool         `json:"isPlanned"`
	Route       []RouteEntry `json:"route"`
	Summary     Summary      `json:"summary"`
	Visa        VisaStatus   `json:"visa"`
}

// RouteEntry is a route country with its resolved requirement.
type RouteEntry struct {
	domain.Country
	Visa domain.VisaRequirement `json:"visa"`
}

// Summary holds the trip figures.
type Summary struct {
	DistanceKm int   `json:"distanceKm"`
	VisaFree   Ratio `json:"visaFree"`
}

// Ratio is a count out of a total.
type Ratio struct {
	Count int `json:"count"`
	Total int `json:"total"`
}

// VisaStatus reports the background requirement fetch.
type VisaStatus struct {
	Loading     bool               `json:"loading"`
	Error       *visa.ServiceError `json:"error,omitempty"`
	LastUpdated string             `json:"lastUpdated,omitempty"`
}

// State returns the current read model.
func (s *PlannerService) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

func (s *PlannerService) stateLocked() State {
	countries := s.planner.Route()
	entries := make([]RouteEntry, len(countries))
	for i, c := range countries {
		entries[i] = RouteEntry{Country: c, Visa: s.requirementLocked(c.ISO)}
	}
	count, total := metrics.VisaFreeRatio(countries, s.nationality, s.reqs)

	return State{
		SessionID:   s.sessionID.String(),
		Nationality: s.nationality,
		Step:        s.planner.Step(),
		IsPlanned:   s.planner.IsPlanned(),
		Route:       entries,
		Summary: Summary{
			DistanceKm: metrics.TotalRouteDistanceKm(countries),
			VisaFree:   Ratio{Count: count, Total: total},
		},
		Visa: VisaStatus{
			Loading:     s.loading,
			Error:       s.visaErr,
			LastUpdated: s.source.LastUpdated(),
		},
	}
}

// requirementLocked resolves iso for the current nationality, falling back
// to the unknown record.
func (s *PlannerService) requirementLocked(iso string) domain.VisaRequirement {
	if r, ok := visa.ResolveForCountry(iso, s.nationality, s.reqs); ok {
		return r
	}
	return visa.UnknownRequirement(iso)
}

// VisaFreeDestinations lists, sorted, the destination codes the current
// nationality can enter visa-free, its own country included.
func (s *PlannerService) VisaFreeDestinations() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.nationality == "" {
		return nil, fmt.Errorf("service.PlannerService.VisaFreeDestinations: %w", domain.ErrNoNationality)
	}
	codes := []string{s.nationality}
	for code, r := range s.reqs {
		if code != s.nationality && r.Requirement == domain.RequirementVisaFree {
			codes = append(codes, code)
		}
	}
	sort.Strings(codes)
	return codes, nil
}
