package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pkordes/visa-planner/internal/domain"
	"github.com/pkordes/visa-planner/internal/handler"
	"github.com/pkordes/visa-planner/internal/service"
	"github.com/pkordes/visa-planner/internal/visa"
)

// mockPlanner is a test double for handler.PlannerServicer.
// Set only the method fields your test needs; the rest panic if called.
type mockPlanner struct {
	state                func() service.State
	selectNationality    func(ctx context.Context, code string) (service.State, error)
	click                func(ctx context.Context, in service.ClickInput) (service.ClickResult, error)
	removeAt             func(ctx context.Context, index int) (service.State, error)
	move                 func(ctx context.Context, from, to int) (service.State, error)
	update               func(ctx context.Context, index int, patch domain.CountryPatch) (service.State, error)
	undo                 func(ctx context.Context) (service.State, error)
	reset                func(ctx context.Context) (service.State, error)
	plan                 func(ctx context.Context) (service.State, error)
	cancelPlanning       func(ctx context.Context) (service.State, error)
	save                 func(ctx context.Context) (service.State, error)
	refreshVisa          func(ctx context.Context) (service.State, error)
	visaFreeDestinations func() ([]string, error)
	export               func() (domain.ExportDocument, error)
	shareText            func() (string, error)
	shareQR              func(size int) ([]byte, error)
	geometryCategory     func(id string, visaFreeOnly bool) service.Category
	resolveNationality   func(ctx context.Context, code string) visa.Result
	resolveCountry       func(ctx context.Context, passport, destination string) (domain.VisaRequirement, *visa.ServiceError)
}

// compile-time check: mockPlanner must satisfy handler.PlannerServicer.
var _ handler.PlannerServicer = (*mockPlanner)(nil)

func (m *mockPlanner) State() service.State { return m.state() }
func (m *mockPlanner) SelectNationality(ctx context.Context, code string) (service.State, error) {
	return m.selectNationality(ctx, code)
}
func (m *mockPlanner) Click(ctx context.Context, in service.ClickInput) (service.ClickResult, error) {
	return m.click(ctx, in)
}
func (m *mockPlanner) RemoveAt(ctx context.Context, index int) (service.State, error) {
	return m.removeAt(ctx, index)
}
func (m *mockPlanner) Move(ctx context.Context, from, to int) (service.State, error) {
	return m.move(ctx, from, to)
}
func (m *mockPlanner) Update(ctx context.Context, index int, patch domain.CountryPatch) (service.State, error) {
	return m.update(ctx, index, patch)
}
func (m *mockPlanner) Undo(ctx context.Context) (service.State, error)  { return m.undo(ctx) }
func (m *mockPlanner) Reset(ctx context.Context) (service.State, error) { return m.reset(ctx) }
func (m *mockPlanner) Plan(ctx context.Context) (service.State, error)  { return m.plan(ctx) }
func (m *mockPlanner) CancelPlanning(ctx context.Context) (service.State, error) {
	return m.cancelPlanning(ctx)
}
func (m *mockPlanner) Save(ctx context.Context) (service.State, error) { return m.save(ctx) }
func (m *mockPlanner) RefreshVisa(ctx context.Context) (service.State, error) {
	return m.refreshVisa(ctx)
}
func (m *mockPlanner) VisaFreeDestinations() ([]string, error) { return m.visaFreeDestinations() }
func (m *mockPlanner) Export() (domain.ExportDocument, error)  { return m.export() }
func (m *mockPlanner) ShareText() (string, error)              { return m.shareText() }
func (m *mockPlanner) ShareQR(size int) ([]byte, error)        { return m.shareQR(size) }
func (m *mockPlanner) GeometryCategory(id string, visaFreeOnly bool) service.Category {
	return m.geometryCategory(id, visaFreeOnly)
}
func (m *mockPlanner) ResolveNationality(ctx context.Context, code string) visa.Result {
	return m.resolveNationality(ctx, code)
}
func (m *mockPlanner) ResolveCountry(ctx context.Context, passport, destination string) (domain.VisaRequirement, *visa.ServiceError) {
	return m.resolveCountry(ctx, passport, destination)
}

// ---- helpers ---------------------------------------------------------------

// newHTTPHandler wires a Server with the given mock into its chi router,
// the same way main.go does.
func newHTTPHandler(m handler.PlannerServicer) http.Handler {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return handler.NewServer(m, log).Routes()
}

// do sends a request through h and returns the recorder.
func do(h http.Handler, method, target string, body io.Reader) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func stateFixture() service.State {
	return service.State{
		SessionID:   "8f0c7a52-0000-4000-8000-000000000001",
		Nationality: "FR",
		Step:        "adding-countries",
		Route: []service.RouteEntry{
			{Country: domain.Country{Name: "Germany", ID: "276", ISO: "DE"}, Visa: domain.VisaRequirement{CountryCode: "DE", Requirement: domain.RequirementVisaFree}},
			{Country: domain.Country{Name: "Japan", ID: "392", ISO: "JP"}, Visa: domain.VisaRequirement{CountryCode: "JP", Requirement: domain.RequirementVisaFree}},
		},
		Summary: service.Summary{DistanceKm: 9012, VisaFree: service.Ratio{Count: 2, Total: 2}},
	}
}

// stateOK returns a state-returning mock func that succeeds.
func stateOK(context.Context) (service.State, error) { return stateFixture(), nil }
