package apierror

import (
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/yusufgokkayy/IBP-final-project/internal/booking"
)

// NewHumaError replaces huma.NewError so that requests rejected by schema
// validation or body parsing get the same body as errors from the booking core.
func NewHumaError(status int, msg string, errs ...error) huma.StatusError {
	e := &Error{
		status:  status,
		Kind:    kindOfStatus(status),
		Code:    codeOfStatus(status),
		Message: msg,
	}
	if status >= http.StatusInternalServerError {
		e.Retryable = true
	}

	for _, err := range errs {
		if err == nil {
			continue
		}
		detailer, ok := err.(huma.ErrorDetailer)
		if !ok {
			if e.Message == "" {
				e.Message = err.Error()
			}
			continue
		}
		detail := detailer.ErrorDetail()
		if detail.Message != "" {
			e.Message = detail.Message
		}
		e.Field = fieldOf(detail.Location)
		break
	}
	if e.Message == "" {
		e.Message = http.StatusText(status)
	}
	return e
}

func kindOfStatus(status int) booking.Kind {
	switch {
	case status == http.StatusUnauthorized:
		return booking.KindAuth
	case status == http.StatusForbidden:
		return booking.KindEligibility
	case status == http.StatusNotFound:
		return booking.KindNotFound
	case status == http.StatusConflict:
		return booking.KindConflict
	case status >= http.StatusInternalServerError:
		return booking.KindPersistence
	}
	return booking.KindValidation
}

func codeOfStatus(status int) string {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return "invalid_input"
	case http.StatusRequestEntityTooLarge:
		return "body_too_large"
	case http.StatusUnsupportedMediaType:
		return "unsupported_media_type"
	case http.StatusUnauthorized:
		return "unauthenticated"
	case http.StatusForbidden:
		return "forbidden"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusConflict:
		return "conflict"
	}
	if status >= http.StatusInternalServerError {
		return "persistence_failure"
	}
	return "invalid_request"
}

// fieldOf turns a huma location such as "body.stay.checkIn" into "stay.checkIn".
func fieldOf(location string) string {
	for _, prefix := range []string{"body", "path", "query", "header", "cookie"} {
		if location == prefix {
			return ""
		}
		if rest, ok := strings.CutPrefix(location, prefix+"."); ok {
			return rest
		}
	}
	return location
}
