package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"aurejet/internal/repository"
	"aurejet/internal/service"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error      string                               `json:"error"`
	Fields     map[service.Field]service.FieldError `json:"fields,omitempty"`
	EmptyState *EmptyStateResponse                  `json:"empty_state,omitempty"`
}

// EmptyStateResponse tells the client what to render when a flight no longer resolves.
type EmptyStateResponse struct {
	Title       string `json:"title"`
	Copy        string `json:"copy"`
	ActionLabel string `json:"action_label"`
	ActionRoute string `json:"action_route"`
}

// respondError sends an error response with the appropriate HTTP status code.
func respondError(c *gin.Context, err error) {
	code := mapErrorToHTTPStatus(err)
	resp := ErrorResponse{Error: err.Error()}

	var verr *service.ValidationError
	if errors.As(err, &verr) {
		resp.Error = "validation failed"
		resp.Fields = verr.Fields
	}

	if errors.Is(err, service.ErrFlightUnavailable) {
		es := service.FlightUnavailable
		resp.EmptyState = &EmptyStateResponse{
			Title:       es.Title,
			Copy:        es.Copy,
			ActionLabel: es.ActionLabel,
			ActionRoute: string(es.ActionRoute),
		}
	}

	if code >= http.StatusInternalServerError {
		_ = c.Error(err)
		resp.Error = "internal server error"
	}

	c.JSON(code, resp)
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// mapErrorToHTTPStatus maps service/repository errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	var verr *service.ValidationError

	switch {
	// Field-scoped input errors
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity

	// Not found errors
	case errors.Is(err, repository.ErrNotFound),
		errors.Is(err, service.ErrFlightUnavailable),
		errors.Is(err, service.ErrSessionNotFound):
		return http.StatusNotFound

	// Validation errors - Bad Request
	case errors.Is(err, service.ErrInvalidFlightID),
		errors.Is(err, service.ErrInvalidSessionID),
		errors.Is(err, service.ErrInvalidPaymentMethod),
		errors.Is(err, service.ErrInvalidSignInMethod),
		errors.Is(err, service.ErrInvalidScreen):
		return http.StatusBadRequest

	// Conflict errors
	case errors.Is(err, service.ErrSubmitNotAllowed),
		errors.Is(err, service.ErrCheckoutLocked),
		errors.Is(err, service.ErrSessionClosed),
		errors.Is(err, service.ErrReceiptNotReady),
		errors.Is(err, service.ErrChargeInFlight):
		return http.StatusConflict

	case errors.Is(err, service.ErrInvalidToken):
		return http.StatusUnauthorized

	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout

	// Default to internal server error
	default:
		return http.StatusInternalServerError
	}
}
