// Package liberrors contains errors returned by the library.
package liberrors

import (
	"fmt"

	"github.com/bluenviron/rtspctl/pkg/base"
)

// ErrClientURLMissing is returned when a session is built without an URL.
type ErrClientURLMissing struct{}

// Error implements the error interface.
func (e ErrClientURLMissing) Error() string {
	return "server URL not provided"
}

// ErrClientWrongState is returned in case of a wrong client state.
type ErrClientWrongState struct {
	AllowedList []fmt.Stringer
	State       fmt.Stringer
}

// Error implements the error interface.
func (e ErrClientWrongState) Error() string {
	return fmt.Sprintf("must be in state %v, while is in state %v",
		e.AllowedList, e.State)
}

// ErrClientTerminated is returned when an operation is invoked on a closed session.
type ErrClientTerminated struct{}

// Error implements the error interface.
func (e ErrClientTerminated) Error() string {
	return "terminated"
}

// ErrClientConnection is returned when the transport fails to establish
// a connection or to transfer bytes.
type ErrClientConnection struct {
	Op  string
	Err error
}

// Error implements the error interface.
func (e ErrClientConnection) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e ErrClientConnection) Unwrap() error {
	return e.Err
}

// ErrClientInvalidResponse is returned in case the response cannot be decoded.
type ErrClientInvalidResponse struct {
	Message string
}

// Error implements the error interface.
func (e ErrClientInvalidResponse) Error() string {
	return fmt.Sprintf("invalid response: %s", e.Message)
}

// ErrClientWrongStatusCode is returned in case of a wrong status code.
type ErrClientWrongStatusCode struct {
	Code    base.StatusCode
	Message string
}

// Error implements the error interface.
func (e ErrClientWrongStatusCode) Error() string {
	return fmt.Sprintf("wrong status code: %d (%s)", e.Code, e.Message)
}

// ErrClientSessionHeaderInvalid is returned in case of an invalid session header.
type ErrClientSessionHeaderInvalid struct {
	Err error
}

// Error implements the error interface.
func (e ErrClientSessionHeaderInvalid) Error() string {
	return fmt.Sprintf("invalid session header: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e ErrClientSessionHeaderInvalid) Unwrap() error {
	return e.Err
}

// ErrClientTransportHeaderInvalid is returned in case of an invalid transport header.
type ErrClientTransportHeaderInvalid struct {
	Err error
}

// Error implements the error interface.
func (e ErrClientTransportHeaderInvalid) Error() string {
	return fmt.Sprintf("invalid transport header: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e ErrClientTransportHeaderInvalid) Unwrap() error {
	return e.Err
}

// ErrClientMediaNotProvided is returned when a media is required but not provided.
type ErrClientMediaNotProvided struct{}

// Error implements the error interface.
func (e ErrClientMediaNotProvided) Error() string {
	return "media not provided"
}
