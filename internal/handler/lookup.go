package handler

import (
	"net/http"

	"github.com/pkordes/visa-planner/internal/domain"
	"github.com/pkordes/visa-planner/internal/geo"
	"github.com/pkordes/visa-planner/internal/visa"
)

// ListNationalities handles GET /nationalities with the preset passports.
// Any other well-formed two-letter code is accepted by PUT
// /session/nationality too.
func (s *Server) ListNationalities(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, geo.PresetNationalities())
}

// GetCountry handles GET /countries/{geographyId}.
func (s *Server) GetCountry(w http.ResponseWriter, r *http.Request) {
	id, ok := pathString(w, r, "geographyId")
	if !ok {
		return
	}
	t, found := geo.LookupGeography(id)
	if !found {
		writeJSON(w, http.StatusNotFound, notFoundBody("no country for geography id "+id))
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// CategoryResponse is the body of GET /geometries/{geographyId}/category.
type CategoryResponse struct {
	ID       string `json:"id"`
	Category string `json:"category"`
}

// GetGeometryCategory handles GET /geometries/{geographyId}/category.
// ?visaFreeOnly=true applies the visa-free filter.
func (s *Server) GetGeometryCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathString(w, r, "geographyId")
	if !ok {
		return
	}
	var visaFreeOnly *bool
	if !queryOptional(w, r, "visaFreeOnly", &visaFreeOnly) {
		return
	}
	cat := s.planner.GeometryCategory(id, visaFreeOnly != nil && *visaFreeOnly)
	writeJSON(w, http.StatusOK, CategoryResponse{ID: id, Category: string(cat)})
}

// GetVisaRequirements handles GET /visa/{passport}. Missing or failed data
// is reported in the body with status 200; only a malformed code is a 422.
func (s *Server) GetVisaRequirements(w http.ResponseWriter, r *http.Request) {
	passport, ok := pathString(w, r, "passport")
	if !ok {
		return
	}
	res := s.planner.ResolveNationality(r.Context(), passport)
	if res.Err != nil && res.Err.Kind == visa.KindInvalidNationality {
		writeJSON(w, http.StatusUnprocessableEntity, validationBody(res.Err))
		return
	}
	if res.Data == nil {
		res.Data = domain.RequirementMap{}
	}
	writeJSON(w, http.StatusOK, res)
}

// VisaLookupResponse is the body of GET /visa/{passport}/{destination}.
type VisaLookupResponse struct {
	Requirement domain.VisaRequirement `json:"requirement"`
	Error       *visa.ServiceError     `json:"error,omitempty"`
}

// GetVisaRequirement handles GET /visa/{passport}/{destination}.
func (s *Server) GetVisaRequirement(w http.ResponseWriter, r *http.Request) {
	passport, ok := pathString(w, r, "passport")
	if !ok {
		return
	}
	destination, ok := pathString(w, r, "destination")
	if !ok {
		return
	}
	req, serr := s.planner.ResolveCountry(r.Context(), passport, destination)
	if serr != nil && serr.Kind == visa.KindInvalidNationality {
		writeJSON(w, http.StatusUnprocessableEntity, validationBody(serr))
		return
	}
	writeJSON(w, http.StatusOK, VisaLookupResponse{Requirement: req, Error: serr})
}
