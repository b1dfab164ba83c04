package handler

import (
	"context"
	"net/http"

	"github.com/pkordes/visa-planner/internal/domain"
	"github.com/pkordes/visa-planner/internal/service"
)

// GetSession handles GET /session.
func (s *Server) GetSession(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.planner.State())
}

// NationalityRequest is the body of PUT /session/nationality.
type NationalityRequest struct {
	Code string `json:"code"`
}

// PutNationality handles PUT /session/nationality. The requirement fetch
// continues after the response; poll GET /session for visa.loading.
func (s *Server) PutNationality(w http.ResponseWriter, r *http.Request) {
	var body NationalityRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	st, err := s.planner.SelectNationality(r.Context(), body.Code)
	s.respondState(w, r, st, err)
}

// PostClick handles POST /session/clicks.
func (s *Server) PostClick(w http.ResponseWriter, r *http.Request) {
	var body service.ClickInput
	if !decodeJSON(w, r, &body) {
		return
	}
	if body.ID == "" {
		writeJSON(w, http.StatusUnprocessableEntity, requestBody("id is required"))
		return
	}
	res, err := s.planner.Click(r.Context(), body)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// DeleteRouteEntry handles DELETE /session/route/{index}.
func (s *Server) DeleteRouteEntry(w http.ResponseWriter, r *http.Request) {
	index, ok := pathInt(w, r, "index")
	if !ok {
		return
	}
	st, err := s.planner.RemoveAt(r.Context(), index)
	s.respondState(w, r, st, err)
}

// PatchEntryRequest is the body of PATCH /session/route/{index}. Absent
// fields are left unchanged.
type PatchEntryRequest struct {
	Dates *domain.Dates `json:"dates"`
	Notes *string       `json:"notes"`
}

// PatchRouteEntry handles PATCH /session/route/{index}.
func (s *Server) PatchRouteEntry(w http.ResponseWriter, r *http.Request) {
	index, ok := pathInt(w, r, "index")
	if !ok {
		return
	}
	var body PatchEntryRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	st, err := s.planner.Update(r.Context(), index, domain.CountryPatch{Dates: body.Dates, Notes: body.Notes})
	s.respondState(w, r, st, err)
}

// MoveRequest is the body of POST /session/route/moves.
type MoveRequest struct {
	From *int `json:"from"`
	To   *int `json:"to"`
}

// PostMove handles POST /session/route/moves.
func (s *Server) PostMove(w http.ResponseWriter, r *http.Request) {
	var body MoveRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	if body.From == nil || body.To == nil {
		writeJSON(w, http.StatusUnprocessableEntity, requestBody("from and to are required"))
		return
	}
	st, err := s.planner.Move(r.Context(), *body.From, *body.To)
	s.respondState(w, r, st, err)
}

// PostUndo handles POST /session/undo.
func (s *Server) PostUndo(w http.ResponseWriter, r *http.Request) {
	s.stateAction(w, r, s.planner.Undo)
}

// PostReset handles POST /session/reset.
func (s *Server) PostReset(w http.ResponseWriter, r *http.Request) {
	s.stateAction(w, r, s.planner.Reset)
}

// PostPlan handles POST /session/plan.
func (s *Server) PostPlan(w http.ResponseWriter, r *http.Request) {
	s.stateAction(w, r, s.planner.Plan)
}

// DeletePlan handles DELETE /session/plan.
func (s *Server) DeletePlan(w http.ResponseWriter, r *http.Request) {
	s.stateAction(w, r, s.planner.CancelPlanning)
}

// PostSave handles POST /session/save.
func (s *Server) PostSave(w http.ResponseWriter, r *http.Request) {
	s.stateAction(w, r, s.planner.Save)
}

// PostVisaRefresh handles POST /session/visa/refresh.
func (s *Server) PostVisaRefresh(w http.ResponseWriter, r *http.Request) {
	s.stateAction(w, r, s.planner.RefreshVisa)
}

// VisaFreeResponse is the body of GET /session/visa-free.
type VisaFreeResponse struct {
	Codes []string `json:"codes"`
}

// GetVisaFree handles GET /session/visa-free.
func (s *Server) GetVisaFree(w http.ResponseWriter, r *http.Request) {
	codes, err := s.planner.VisaFreeDestinations()
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, VisaFreeResponse{Codes: codes})
}

func (s *Server) stateAction(w http.ResponseWriter, r *http.Request, fn func(context.Context) (service.State, error)) {
	st, err := fn(r.Context())
	s.respondState(w, r, st, err)
}

func (s *Server) respondState(w http.ResponseWriter, r *http.Request, st service.State, err error) {
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}
