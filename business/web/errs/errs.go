// Package errs maps errors raised by handlers onto the responses the node
// sends back to clients.
package errs

import (
	"errors"
	"net/http"

	"github.com/ardanlabs/minichain/business/sys/validate"
)

// Response is the body sent for every failed request.
type Response struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// Trusted is an error a handler expects and whose message is safe to show
// to the client.
type Trusted struct {
	Err    error
	Status int
}

// NewTrusted wraps the error with the status the client should receive.
func NewTrusted(err error, status int) error {
	return &Trusted{err, status}
}

// Error implements the error interface.
func (te *Trusted) Error() string {
	return te.Err.Error()
}

// Unwrap gives errors.Is access to the wrapped error.
func (te *Trusted) Unwrap() error {
	return te.Err
}

// IsTrusted checks if a Trusted error exists in the chain.
func IsTrusted(err error) bool {
	var te *Trusted
	return errors.As(err, &te)
}

// GetTrusted returns the Trusted error in the chain or nil.
func GetTrusted(err error) *Trusted {
	var te *Trusted
	if !errors.As(err, &te) {
		return nil
	}
	return te
}

// ToResponse returns the body and status for the error. Anything that is
// neither a validation failure nor trusted is hidden behind a 500.
func ToResponse(err error) (Response, int) {
	switch {
	case validate.IsFieldErrors(err):
		return Response{
			Error:  "data validation error",
			Fields: validate.GetFieldErrors(err).Fields(),
		}, http.StatusBadRequest

	case IsTrusted(err):
		te := GetTrusted(err)
		return Response{Error: te.Error()}, te.Status

	default:
		return Response{Error: http.StatusText(http.StatusInternalServerError)}, http.StatusInternalServerError
	}
}
