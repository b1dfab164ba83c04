package service

import (
	"github.com/pkordes/visa-planner/internal/domain"
	"github.com/pkordes/visa-planner/internal/geo"
	"github.com/pkordes/visa-planner/internal/visa"
)

// Category is how the map should paint one geometry.
type Category string

const (
	CategoryDefault        Category = "default"
	CategoryInRoute        Category = "in-route"
	CategoryDimmed         Category = "dimmed"
	CategoryVisaFree       Category = "visa-free"
	CategoryPlannedUnknown Category = "planned-unknown"
)

// GeometryCategory classifies the geometry id for map colouring. Countries
// in a planned route show their requirement; the rest of the map is dimmed
// while planned. When visaFreeOnly is set in editing mode, only visa-free
// destinations stand out.
func (s *PlannerService) GeometryCategory(id string, visaFreeOnly bool) Category {
	s.mu.Lock()
	defer s.mu.Unlock()

	inRoute := s.planner.IndexOf(id) >= 0
	planned := s.planner.IsPlanned()

	var (
		req   domain.VisaRequirement
		known bool
	)
	if iso, ok := geo.ISOFromGeographyID(id); ok {
		req, known = visa.ResolveForCountry(iso, s.nationality, s.reqs)
	}

	switch {
	case inRoute && planned:
		if !known {
			return CategoryPlannedUnknown
		}
		switch req.Requirement {
		case domain.RequirementVisaFree, domain.RequirementVisaOnArrival, domain.RequirementEVisa,
			domain.RequirementVisaRequired, domain.RequirementNoAdmission:
			return Category("planned-" + string(req.Requirement))
		}
		return CategoryPlannedUnknown
	case inRoute:
		return CategoryInRoute
	case planned:
		return CategoryDimmed
	case visaFreeOnly:
		if known && req.Requirement == domain.RequirementVisaFree {
			return CategoryVisaFree
		}
		return CategoryDimmed
	}
	return CategoryDefault
}
