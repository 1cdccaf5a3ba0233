package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/dmitrymomot/eventhub/pkg/validator"
)

// Error codes.
const (
	codeBadRequest         = "bad_request"
	codeValidation         = "validation_error"
	codeInvalidCredentials = "invalid_credentials"
	codeDuplicateUsername  = "duplicate_username"
	codeUnauthorized       = "unauthorized"
	codeNotFound           = "not_found"
	codeEventFull          = "event_full"
	codeRegistrationClosed = "registration_closed"
	codeInternal           = "internal_error"
)

const maxBodyBytes = 1 << 20

// Response is the JSON envelope of every non-stream reply.
type Response struct {
	Data  any          `json:"data,omitempty"`
	Error *ErrorDetail `json:"error,omitempty"`
}

// ErrorDetail describes a failed request.
type ErrorDetail struct {
	Code    string              `json:"code"`
	Message string              `json:"message"`
	Details map[string][]string `json:"details,omitempty"`
}

var errMalformedBody = errors.New("api: malformed request body")

func writeJSON(w http.ResponseWriter, status int, data any) {
	write(w, status, Response{Data: data})
}

func writeError(w http.ResponseWriter, status int, code, message string, details map[string][]string) {
	write(w, status, Response{Error: &ErrorDetail{Code: code, Message: message, Details: details}})
}

// writeValidation reports field errors with 422 when err carries them.
func writeValidation(w http.ResponseWriter, err error) bool {
	if !validator.IsValidationError(err) {
		return false
	}
	ve := validator.ExtractValidationErrors(err)
	writeError(w, http.StatusUnprocessableEntity, codeValidation, "please check the highlighted fields", ve.Map())
	return true
}

func write(w http.ResponseWriter, status int, body Response) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// decode reads a JSON body into v. Unknown fields are rejected.
func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Join(errMalformedBody, err)
	}
	return nil
}
