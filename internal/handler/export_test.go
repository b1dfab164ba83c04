package handler_test

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/visa-planner/internal/domain"
	"github.com/pkordes/visa-planner/internal/handler"
)

func intPtr(n int) *int { return &n }

func exportFixture() domain.ExportDocument {
	return domain.ExportDocument{
		ID:          "3b0e5d2c-7a61-4c55-9f0e-1f3c7a2b9d11",
		Nationality: "FR",
		Route: []domain.ExportEntry{
			{
				Name:  "Germany",
				ISO:   "DE",
				Dates: &domain.Dates{Arrival: "2025-04-01", Departure: "2025-04-05"},
				Notes: "Berlin, Munich",
				Visa:  &domain.VisaRequirement{CountryCode: "DE", Requirement: domain.RequirementVisaFree, Duration: intPtr(90)},
			},
			{
				Name: "Japan",
				ISO:  "JP",
				Visa: &domain.VisaRequirement{CountryCode: "JP", Requirement: domain.RequirementUnknown},
			},
		},
		TotalDistance: 9012,
		ExportedAt:    time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC),
	}
}

// ---- GET /session/export ---------------------------------------------------

func TestGetExport_JSONDefault(t *testing.T) {
	m := &mockPlanner{export: func() (domain.ExportDocument, error) { return exportFixture(), nil }}

	rec := do(newHTTPHandler(m), http.MethodGet, "/session/export", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="trip-FR-2025-03-14.json"`, rec.Header().Get("Content-Disposition"))
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
	got := decode[domain.ExportDocument](t, rec)
	assert.Equal(t, "FR", got.Nationality)
	assert.Equal(t, 9012, got.TotalDistance)
	require.Len(t, got.Route, 2)
	require.NotNil(t, got.Route[1].Visa)
	assert.Equal(t, domain.RequirementUnknown, got.Route[1].Visa.Requirement)
}

func TestGetExport_CSV(t *testing.T) {
	m := &mockPlanner{export: func() (domain.ExportDocument, error) { return exportFixture(), nil }}

	rec := do(newHTTPHandler(m), http.MethodGet, "/session/export?format=csv", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="trip-FR-2025-03-14.csv"`, rec.Header().Get("Content-Disposition"))

	records, err := csv.NewReader(strings.NewReader(rec.Body.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"position", "name", "iso", "arrival", "departure", "notes", "requirement", "duration_days"}, records[0])
	assert.Equal(t, []string{"1", "Germany", "DE", "2025-04-01", "2025-04-05", "Berlin, Munich", "visa-free", "90"}, records[1])
	assert.Equal(t, []string{"2", "Japan", "JP", "", "", "", "unknown", ""}, records[2])
}

func TestGetExport_CSV_EmptyRoute(t *testing.T) {
	m := &mockPlanner{export: func() (domain.ExportDocument, error) {
		doc := exportFixture()
		doc.Route = []domain.ExportEntry{}
		return doc, nil
	}}

	rec := do(newHTTPHandler(m), http.MethodGet, "/session/export?format=CSV", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	assert.Len(t, lines, 1, "header row only")
}

func TestGetExport_400_UnknownFormat(t *testing.T) {
	rec := do(newHTTPHandler(&mockPlanner{}), http.MethodGet, "/session/export?format=xml", nil)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "format must be json or csv", decode[handler.ErrorResponse](t, rec).Error.Message)
}

func TestGetExport_409_NoNationality(t *testing.T) {
	m := &mockPlanner{export: func() (domain.ExportDocument, error) {
		return domain.ExportDocument{}, fmt.Errorf("service.PlannerService.Export: %w", domain.ErrNoNationality)
	}}

	rec := do(newHTTPHandler(m), http.MethodGet, "/session/export", nil)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

// ---- GET /session/share ----------------------------------------------------

const shareFixture = "My trip: Germany → Japan\nDistance: 9,012 km\nVisa-free: 2 / 2"

func TestGetShare_JSON(t *testing.T) {
	m := &mockPlanner{shareText: func() (string, error) { return shareFixture, nil }}

	rec := do(newHTTPHandler(m), http.MethodGet, "/session/share", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, shareFixture, decode[handler.ShareResponse](t, rec).Text)
}

func TestGetShare_PlainText(t *testing.T) {
	m := &mockPlanner{shareText: func() (string, error) { return shareFixture, nil }}

	rec := do(newHTTPHandler(m), http.MethodGet, "/session/share?format=text", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, shareFixture, rec.Body.String())
}

// ---- GET /session/share.png ------------------------------------------------

var pngMagic = []byte{0x89, 'P', 'N', 'G'}

func TestGetShareQR_DefaultSize(t *testing.T) {
	got := -1
	m := &mockPlanner{shareQR: func(size int) ([]byte, error) {
		got = size
		return pngMagic, nil
	}}

	rec := do(newHTTPHandler(m), http.MethodGet, "/session/share.png", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, got, "zero selects the service default")
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, pngMagic, rec.Body.Bytes())
}

func TestGetShareQR_Size(t *testing.T) {
	got := 0
	m := &mockPlanner{shareQR: func(size int) ([]byte, error) {
		got = size
		return pngMagic, nil
	}}

	rec := do(newHTTPHandler(m), http.MethodGet, "/session/share.png?size=512", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 512, got)
}

func TestGetShareQR_400(t *testing.T) {
	h := newHTTPHandler(&mockPlanner{})
	for _, q := range []string{"size=32", "size=2048", "size=big"} {
		t.Run(q, func(t *testing.T) {
			rec := do(h, http.MethodGet, "/session/share.png?"+q, nil)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}
