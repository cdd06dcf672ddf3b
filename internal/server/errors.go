// Package server provides the HTTP REST API for the discovery pipeline.
package server

import (
	"errors"
	"net/http"

	"github.com/MichaelCrowe11/CroweLM/internal/llm"
	"github.com/MichaelCrowe11/CroweLM/internal/nim"
)

// HTTPStatus returns the appropriate HTTP status code for a service error.
// Rejected requests map to 422 (the input was understood but unusable);
// upstream failures map to 502 so clients can distinguish them from our own
// errors.
func HTTPStatus(err error) int {
	var nimErr *nim.Error
	if errors.As(err, &nimErr) {
		switch nimErr.Kind {
		case nim.KindRejected:
			return http.StatusUnprocessableEntity
		case nim.KindUnavailable, nim.KindMalformed:
			return http.StatusBadGateway
		}
	}

	var llmErr *llm.Error
	if errors.As(err, &llmErr) {
		return http.StatusBadGateway
	}

	return http.StatusInternalServerError
}
