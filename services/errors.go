package services

import (
	"errors"
	"net/http"
)

// Sentinel errors for the failure modes surfaced to API callers. Controllers
// map these to HTTP status codes and machine-readable kinds.
var (
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("not found")
	ErrForbidden         = errors.New("forbidden")
	ErrCampaignNotActive = errors.New("campaign is not active")
	ErrDuplicateUser     = errors.New("username or email already taken")
)

// Kind returns the machine-readable error kind for a service error.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return "ValidationError"
	case errors.Is(err, ErrNotFound):
		return "NotFound"
	case errors.Is(err, ErrForbidden):
		return "Forbidden"
	case errors.Is(err, ErrCampaignNotActive):
		return "CampaignNotActive"
	case errors.Is(err, ErrDuplicateUser):
		return "DuplicateUser"
	default:
		return "Internal"
	}
}

// StatusCode maps a service error to an HTTP status.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrCampaignNotActive):
		return http.StatusConflict
	case errors.Is(err, ErrDuplicateUser):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
