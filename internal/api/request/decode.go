package request

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/mcoot/snakegame-go/internal/api/apierr"
)

// MaxBodyBytes caps the size of a request body
const MaxBodyBytes = 1 << 20

// Decode reads a single JSON object from the request body into dst. Unknown
// fields, trailing data and oversized bodies are rejected with an invalid
// request error.
func Decode(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError
		var maxBytesError *http.MaxBytesError

		switch {
		case errors.As(err, &syntaxError):
			return apierr.NewInvalidRequestError(
				fmt.Sprintf("request body contains badly-formed JSON (at character %d)", syntaxError.Offset))
		case errors.Is(err, io.ErrUnexpectedEOF):
			return apierr.NewInvalidRequestError("request body contains badly-formed JSON")
		case errors.As(err, &unmarshalTypeError):
			if unmarshalTypeError.Field != "" {
				return apierr.NewInvalidRequestError(
					fmt.Sprintf("request body contains incorrect JSON type for field %q", unmarshalTypeError.Field))
			}
			return apierr.NewInvalidRequestError("request body contains incorrect JSON type")
		case errors.Is(err, io.EOF):
			return apierr.NewInvalidRequestError("request body must not be empty")
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			field := strings.TrimPrefix(err.Error(), "json: unknown field ")
			return apierr.NewInvalidRequestError("request body contains unknown field " + field)
		case errors.As(err, &maxBytesError):
			return apierr.NewInvalidRequestError(
				fmt.Sprintf("request body must not be larger than %d bytes", maxBytesError.Limit))
		default:
			return apierr.NewInvalidRequestError("invalid request body")
		}
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return apierr.NewInvalidRequestError("request body must only contain a single JSON object")
	}

	return nil
}
