package visa

import (
	"context"

	"github.com/pkordes/visa-planner/internal/domain"
)

// RequirementsFetcher is the slice of Client the Service depends on.
type RequirementsFetcher interface {
	FetchAllVisaRequirements(ctx context.Context, code string) (domain.RequirementMap, error)
}

// Result is the outcome of ResolveForNationality. Exactly one of Data and
// Err is set once Loading is false.
type Result struct {
	Data    domain.RequirementMap `json:"data"`
	Err     *ServiceError         `json:"error"`
	Loading bool                  `json:"isLoading"`
}

// Service resolves visa requirements on top of a RequirementsFetcher.
// Caching is the fetcher's concern; Service keeps no state.
type Service struct {
	fetcher RequirementsFetcher
}

// NewService constructs a Service backed by f.
func NewService(f RequirementsFetcher) *Service {
	return &Service{fetcher: f}
}

// ResolveForNationality loads the requirement map for a passport code and
// classifies failures: INVALID_NATIONALITY without any network call,
// NO_DATA for an empty result, API_ERROR when the fetcher fails.
func (s *Service) ResolveForNationality(ctx context.Context, nationality string) Result {
	code, ok := NormalizeNationality(nationality)
	if !ok {
		return Result{Err: &ServiceError{
			Kind:    KindInvalidNationality,
			Message: "Invalid nationality code provided",
			Details: "Nationality must be a valid 2-letter ISO country code",
		}}
	}

	data, err := s.fetcher.FetchAllVisaRequirements(ctx, code)
	if err != nil {
		return Result{Err: &ServiceError{
			Kind:    KindAPIError,
			Message: "Failed to fetch visa requirements",
			Details: err.Error(),
		}}
	}
	if len(data) == 0 {
		return Result{Err: &ServiceError{
			Kind:    KindNoData,
			Message: "No visa data available",
			Details: "No visa requirements found for " + code + " passport holders",
		}}
	}
	return Result{Data: data}
}

// ResolveForCountry returns the effective requirement for travelling to
// destination on a nationality passport. The own country is always
// visa-free whatever reqs contains. A destination missing from reqs reports
// false and should be shown as unknown.
func ResolveForCountry(destination, nationality string, reqs domain.RequirementMap) (domain.VisaRequirement, bool) {
	if destination == "" {
		return domain.VisaRequirement{}, false
	}
	if destination == nationality {
		return domain.VisaRequirement{
			Country:     "Own Country",
			CountryCode: destination,
			Requirement: domain.RequirementVisaFree,
			Notes:       "No visa required for own country",
		}, true
	}
	r, ok := reqs[destination]
	return r, ok
}

// UnknownRequirement is the placeholder record for destinations without data.
func UnknownRequirement(destination string) domain.VisaRequirement {
	return domain.VisaRequirement{
		CountryCode: destination,
		Requirement: domain.RequirementUnknown,
		Notes:       "Information not available",
	}
}

// NormalizeNationality upper-cases a passport code and reports whether it
// is exactly two ASCII letters.
func NormalizeNationality(code string) (string, bool) {
	if len(code) != 2 {
		return "", false
	}
	b := []byte(code)
	for i, ch := range b {
		switch {
		case ch >= 'A' && ch <= 'Z':
		case ch >= 'a' && ch <= 'z':
			b[i] = ch - 'a' + 'A'
		default:
			return "", false
		}
	}
	return string(b), true
}
