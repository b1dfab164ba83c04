package domain

import "errors"

// ErrNotFound is returned when the requested resource does not exist,
// e.g. a geography id with no ISO mapping or an unset snapshot key.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned when input fails a business rule
// (e.g. a route index out of range, a malformed nationality code).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrRouteLocked is returned by operations that are only valid while the
// route is being edited, when the route is in planned mode.
// Handlers should map this to HTTP 409 Conflict.
var ErrRouteLocked = errors.New("route is planned")

// ErrNoNationality is returned by session operations invoked before a
// nationality has been selected.
// Handlers should map this to HTTP 409 Conflict.
var ErrNoNationality = errors.New("no nationality selected")
