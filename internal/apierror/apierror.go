// Package apierror renders booking errors as HTTP problem bodies.
package apierror

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/yusufgokkayy/IBP-final-project/internal/booking"
	"go.opentelemetry.io/otel/trace"
)

// Error is the body of every failed API call. It implements huma.StatusError.
type Error struct {
	status    int
	Kind      booking.Kind `json:"kind" doc:"Stable error class"`
	Code      string       `json:"code" doc:"Stable error code"`
	Message   string       `json:"message" doc:"Human readable description"`
	Field     string       `json:"field,omitempty" doc:"Input field the error refers to"`
	Retryable bool         `json:"retryable" doc:"Whether the same request may be sent again"`
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) GetStatus() int {
	return e.status
}

// StatusOf maps an error kind to its HTTP status.
func StatusOf(kind booking.Kind) int {
	switch kind {
	case booking.KindValidation:
		return http.StatusUnprocessableEntity
	case booking.KindNotFound:
		return http.StatusNotFound
	case booking.KindConflict:
		return http.StatusConflict
	case booking.KindAuth:
		return http.StatusUnauthorized
	case booking.KindEligibility:
		return http.StatusForbidden
	}
	return http.StatusServiceUnavailable
}

// From converts err into an *Error. Persistence failures are logged with the
// request and trace ids and replaced by a generic message.
func From(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	var be *booking.Error
	if !errors.As(err, &be) || be.Kind == booking.KindPersistence {
		logFailure(ctx, err)
		return &Error{
			status:    http.StatusServiceUnavailable,
			Kind:      booking.KindPersistence,
			Code:      "persistence_failure",
			Message:   "the service is temporarily unavailable, please try again",
			Retryable: true,
		}
	}

	status := StatusOf(be.Kind)
	if errors.Is(be, booking.ErrForbidden) {
		status = http.StatusForbidden
	}
	return &Error{
		status:  status,
		Kind:    be.Kind,
		Code:    be.Code,
		Message: be.Message,
		Field:   be.Field,
	}
}

func logFailure(ctx context.Context, err error) {
	reqID := middleware.GetReqID(ctx)
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		log.Printf("request %s trace %s failed: %v", reqID, sc.TraceID(), err)
		return
	}
	log.Printf("request %s failed: %v", reqID, err)
}
