package visa

// ErrorKind classifies a failed visa lookup.
type ErrorKind string

const (
	KindInvalidNationality ErrorKind = "INVALID_NATIONALITY"
	KindNoData             ErrorKind = "NO_DATA"
	KindAPIError           ErrorKind = "API_ERROR"
)

// ServiceError is the typed failure returned across the visa service
// boundary. errors.Is matches on Kind, so callers can compare against the
// sentinels below.
type ServiceError struct {
	Kind    ErrorKind `json:"type"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
}

func (e *ServiceError) Error() string {
	if e.Details != "" {
		return string(e.Kind) + ": " + e.Message + ": " + e.Details
	}
	return string(e.Kind) + ": " + e.Message
}

// Is reports whether target is a *ServiceError of the same kind.
func (e *ServiceError) Is(target error) bool {
	t, ok := target.(*ServiceError)
	return ok && t.Kind == e.Kind
}

var (
	ErrInvalidNationality = &ServiceError{Kind: KindInvalidNationality}
	ErrNoData             = &ServiceError{Kind: KindNoData}
	ErrAPI                = &ServiceError{Kind: KindAPIError}
)
