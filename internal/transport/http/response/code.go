package response

import (
	"net/http"

	"campus-leave/pkg/apperr"
)

// Status codes used by the API. Throttling middleware adds 429 and 504.
const (
	CodeOK              = http.StatusOK
	CodeCreated         = http.StatusCreated
	CodeNoContent       = http.StatusNoContent
	CodeBadRequest      = http.StatusBadRequest
	CodeUnauthorized    = http.StatusUnauthorized
	CodeForbidden       = http.StatusForbidden
	CodeNotFound        = http.StatusNotFound
	CodeConflict        = http.StatusConflict
	CodeTooManyRequests = http.StatusTooManyRequests
	CodeServerError     = http.StatusInternalServerError
	CodeTimeout         = http.StatusGatewayTimeout
)

// CodeMsgMap holds the default error text per status.
var CodeMsgMap = map[int]string{
	CodeOK:              "OK",
	CodeCreated:         "Created",
	CodeBadRequest:      "Invalid input",
	CodeUnauthorized:    "Unauthorized",
	CodeForbidden:       "Access forbidden",
	CodeNotFound:        "Not found",
	CodeConflict:        "Conflict",
	CodeTooManyRequests: "Too many requests",
	CodeServerError:     "Internal server error",
	CodeTimeout:         "Request timeout",
}

func StatusOf(k apperr.Kind) int {
	switch k {
	case apperr.KindValidation, apperr.KindExpired:
		return CodeBadRequest
	case apperr.KindUnauthenticated:
		return CodeUnauthorized
	case apperr.KindForbidden:
		return CodeForbidden
	case apperr.KindNotFound:
		return CodeNotFound
	case apperr.KindConflict:
		return CodeConflict
	default:
		return CodeServerError
	}
}
