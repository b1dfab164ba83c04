package service_test

import (
	"bytes"
	"context"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/visa-planner/internal/domain"
	"github.com/pkordes/visa-planner/internal/service"
)

var brazilClick = service.ClickInput{ID: "076", Name: "Brazil", Geometry: square(-51, -10)}

// ---- Export ----------------------------------------------------------------

func TestExport_Document(t *testing.T) {
	svc := newService(t, newMockStore(), fixedSource(frRequirements()))
	selectNationality(t, svc, "FR")
	st := clickAll(t, svc, germanyClick, japanClick, indiaClick, brazilClick)

	doc, err := svc.Export()

	require.NoError(t, err)
	_, err = uuid.Parse(doc.ID)
	assert.NoError(t, err, "id is a uuid")
	assert.Equal(t, "FR", doc.Nationality)
	assert.Equal(t, st.Summary.DistanceKm, doc.TotalDistance)
	assert.Zero(t, doc.TotalVisaCost)
	assert.Equal(t, time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC), doc.ExportedAt)

	require.Len(t, doc.Route, 4)
	names := make([]string, len(doc.Route))
	for i, e := range doc.Route {
		names[i] = e.Name
		require.NotNil(t, e.Visa, "entry %d", i)
	}
	assert.Equal(t, []string{"Germany", "Japan", "India", "Brazil"}, names)
	assert.Equal(t, domain.RequirementVisaFree, doc.Route[0].Visa.Requirement)
	require.NotNil(t, doc.Route[0].Visa.Duration)
	assert.Equal(t, 90, *doc.Route[0].Visa.Duration)
	assert.Equal(t, domain.RequirementEVisa, doc.Route[2].Visa.Requirement)
	assert.Equal(t, domain.RequirementUnknown, doc.Route[3].Visa.Requirement)
}

func TestExport_CarriesDatesAndNotes(t *testing.T) {
	svc := newService(t, newMockStore(), fixedSource(frRequirements()))
	selectNationality(t, svc, "FR")
	clickAll(t, svc, germanyClick, japanClick)
	notes := "Berlin first"
	_, err := svc.Update(context.Background(), 0, domain.CountryPatch{
		Dates: &domain.Dates{Arrival: "2025-04-01", Departure: "2025-04-05"},
		Notes: &notes,
	})
	require.NoError(t, err)

	doc, err := svc.Export()

	require.NoError(t, err)
	require.NotNil(t, doc.Route[0].Dates)
	assert.Equal(t, "2025-04-01", doc.Route[0].Dates.Arrival)
	assert.Equal(t, "Berlin first", doc.Route[0].Notes)
	assert.Nil(t, doc.Route[1].Dates)
}

func TestExport_EmptyRoute(t *testing.T) {
	svc := newService(t, newMockStore(), fixedSource(frRequirements()))
	selectNationality(t, svc, "FR")

	doc, err := svc.Export()

	require.NoError(t, err)
	assert.Empty(t, doc.Route)
	assert.Zero(t, doc.TotalDistance)
}

func TestExport_NoNationality(t *testing.T) {
	svc := newService(t, newMockStore(), fixedSource(nil))

	_, err := svc.Export()

	assert.ErrorIs(t, err, domain.ErrNoNationality)
}

// ---- Share -----------------------------------------------------------------

func TestShareText(t *testing.T) {
	svc := newService(t, newMockStore(), fixedSource(frRequirements()))
	selectNationality(t, svc, "FR")
	clickAll(t, svc, germanyClick, japanClick, indiaClick)

	text, err := svc.ShareText()

	require.NoError(t, err)
	lines := strings.Split(text, "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "My trip: Germany → Japan → India", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "Distance: "), lines[1])
	assert.True(t, strings.HasSuffix(lines[1], " km"), lines[1])
	assert.Equal(t, "Visa-free: 2 / 3", lines[2])
}

func TestShareText_NoNationality(t *testing.T) {
	svc := newService(t, newMockStore(), fixedSource(nil))

	_, err := svc.ShareText()

	assert.ErrorIs(t, err, domain.ErrNoNationality)
}

func TestShareQR(t *testing.T) {
	svc := newService(t, newMockStore(), fixedSource(frRequirements()))
	selectNationality(t, svc, "FR")
	clickAll(t, svc, germanyClick, japanClick)

	tests := []struct {
		size, want int
	}{
		{0, service.DefaultQRSize},
		{512, 512},
	}
	for _, tc := range tests {
		b, err := svc.ShareQR(tc.size)
		require.NoError(t, err)

		cfg, err := png.DecodeConfig(bytes.NewReader(b))
		require.NoError(t, err)
		assert.Equal(t, tc.want, cfg.Width)
		assert.Equal(t, tc.want, cfg.Height)
	}
}

func TestShareQR_NoNationality(t *testing.T) {
	svc := newService(t, newMockStore(), fixedSource(nil))

	_, err := svc.ShareQR(0)

	assert.ErrorIs(t, err, domain.ErrNoNationality)
}
