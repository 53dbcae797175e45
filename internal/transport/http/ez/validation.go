package ez

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	resp "campus-leave/internal/transport/http/response"
	"campus-leave/pkg/apperr"
)

// UseJSONFieldNames makes validation errors report json/form tag names
// instead of Go field names. Call once before serving.
func UseJSONFieldNames() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return f.Name
	})
}

func bindError(err error) error {
	msg := resp.CodeMsgMap[resp.CodeBadRequest]
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		return apperr.Validation(msg, ValidationDetails(ve))
	}
	var se *json.SyntaxError
	var te *json.UnmarshalTypeError
	var mbe *http.MaxBytesError
	switch {
	case errors.As(err, &te):
		return apperr.Field(msg, te.Field, "has the wrong type")
	case errors.As(err, &se), errors.Is(err, io.ErrUnexpectedEOF):
		return apperr.Field(msg, "body", "is not valid JSON")
	case errors.Is(err, io.EOF):
		return apperr.Field(msg, "body", "is required")
	case errors.As(err, &mbe):
		return apperr.Field(msg, "body", "is too large")
	}
	return apperr.Field(msg, "body", "could not be parsed")
}

func ValidationDetails(ve validator.ValidationErrors) []apperr.FieldError {
	out := make([]apperr.FieldError, 0, len(ve))
	for _, fe := range ve {
		out = append(out, apperr.FieldError{Field: fe.Field(), Message: describe(fe)})
	}
	return out
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "url":
		return "must be a valid URL"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return "must be at least " + fe.Param()
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return "must be at most " + fe.Param()
	case "len":
		return fmt.Sprintf("must be exactly %s characters", fe.Param())
	case "numeric":
		return "must contain digits only"
	}
	return "failed the " + fe.Tag() + " check"
}
