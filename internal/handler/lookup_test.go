package handler_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/visa-planner/internal/domain"
	"github.com/pkordes/visa-planner/internal/geo"
	"github.com/pkordes/visa-planner/internal/handler"
	"github.com/pkordes/visa-planner/internal/service"
	"github.com/pkordes/visa-planner/internal/visa"
)

// ---- GET /nationalities ----------------------------------------------------

func TestListNationalities(t *testing.T) {
	rec := do(newHTTPHandler(&mockPlanner{}), http.MethodGet, "/nationalities", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[[]geo.Nationality](t, rec)
	assert.Len(t, got, 20)
	assert.Contains(t, got, geo.Nationality{Code: "FR", Name: "France"})
}

// ---- GET /countries/{geographyId} ------------------------------------------

func TestGetCountry_200(t *testing.T) {
	rec := do(newHTTPHandler(&mockPlanner{}), http.MethodGet, "/countries/276", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[geo.Territory](t, rec)
	assert.Equal(t, geo.Territory{ID: "276", ISO: "DE", Name: "Germany"}, got)
}

func TestGetCountry_404(t *testing.T) {
	rec := do(newHTTPHandler(&mockPlanner{}), http.MethodGet, "/countries/999", nil)

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decode[handler.ErrorResponse](t, rec).Error.Code)
}

// ---- GET /geometries/{geographyId}/category --------------------------------

func TestGetGeometryCategory(t *testing.T) {
	var gotID string
	var gotFilter bool
	m := &mockPlanner{geometryCategory: func(id string, visaFreeOnly bool) service.Category {
		gotID, gotFilter = id, visaFreeOnly
		return service.CategoryVisaFree
	}}

	rec := do(newHTTPHandler(m), http.MethodGet, "/geometries/392/category?visaFreeOnly=true", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "392", gotID)
	assert.True(t, gotFilter)
	assert.Equal(t, handler.CategoryResponse{ID: "392", Category: "visa-free"}, decode[handler.CategoryResponse](t, rec))
}

func TestGetGeometryCategory_FilterDefaultsOff(t *testing.T) {
	gotFilter := true
	m := &mockPlanner{geometryCategory: func(_ string, visaFreeOnly bool) service.Category {
		gotFilter = visaFreeOnly
		return service.CategoryDefault
	}}

	rec := do(newHTTPHandler(m), http.MethodGet, "/geometries/392/category", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, gotFilter)
}

func TestGetGeometryCategory_400_BadFlag(t *testing.T) {
	rec := do(newHTTPHandler(&mockPlanner{}), http.MethodGet, "/geometries/392/category?visaFreeOnly=maybe", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// ---- GET /visa/{passport} --------------------------------------------------

func TestGetVisaRequirements_200(t *testing.T) {
	m := &mockPlanner{resolveNationality: func(_ context.Context, code string) visa.Result {
		assert.Equal(t, "FR", code)
		return visa.Result{Data: domain.RequirementMap{"DE": {CountryCode: "DE", Requirement: domain.RequirementVisaFree}}}
	}}

	rec := do(newHTTPHandler(m), http.MethodGet, "/visa/FR", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[visa.Result](t, rec)
	assert.Nil(t, got.Err)
	assert.Equal(t, domain.RequirementVisaFree, got.Data["DE"].Requirement)
}

func TestGetVisaRequirements_NoDataIs200WithError(t *testing.T) {
	m := &mockPlanner{resolveNationality: func(context.Context, string) visa.Result {
		return visa.Result{Err: &visa.ServiceError{Kind: visa.KindNoData, Message: "No visa data available"}}
	}}

	rec := do(newHTTPHandler(m), http.MethodGet, "/visa/AQ", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[visa.Result](t, rec)
	require.NotNil(t, got.Err)
	assert.Equal(t, visa.KindNoData, got.Err.Kind)
	assert.NotNil(t, got.Data, "data is an empty object, not null")
}

func TestGetVisaRequirements_422_Invalid(t *testing.T) {
	m := &mockPlanner{resolveNationality: func(context.Context, string) visa.Result {
		return visa.Result{Err: &visa.ServiceError{Kind: visa.KindInvalidNationality, Message: "Invalid nationality code provided"}}
	}}

	rec := do(newHTTPHandler(m), http.MethodGet, "/visa/FRA", nil)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := decode[handler.ErrorResponse](t, rec)
	assert.Equal(t, "validation_error", body.Error.Code)
	assert.Equal(t, "Invalid nationality code provided", body.Error.Message)
}

// ---- GET /visa/{passport}/{destination} ------------------------------------

func TestGetVisaRequirement_200(t *testing.T) {
	m := &mockPlanner{resolveCountry: func(_ context.Context, passport, destination string) (domain.VisaRequirement, *visa.ServiceError) {
		assert.Equal(t, "FR", passport)
		assert.Equal(t, "IN", destination)
		return domain.VisaRequirement{CountryCode: "IN", Requirement: domain.RequirementEVisa}, nil
	}}

	rec := do(newHTTPHandler(m), http.MethodGet, "/visa/FR/IN", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[handler.VisaLookupResponse](t, rec)
	assert.Equal(t, domain.RequirementEVisa, got.Requirement.Requirement)
	assert.Nil(t, got.Error)
}

func TestGetVisaRequirement_422(t *testing.T) {
	m := &mockPlanner{resolveCountry: func(context.Context, string, string) (domain.VisaRequirement, *visa.ServiceError) {
		return domain.VisaRequirement{}, &visa.ServiceError{Kind: visa.KindInvalidNationality, Message: "Invalid destination code provided"}
	}}

	rec := do(newHTTPHandler(m), http.MethodGet, "/visa/FR/XYZ", nil)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}
