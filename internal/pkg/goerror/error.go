// Package goerror carries the typed errors usecases return and the router
// renders. A Code decides the HTTP status; Msg is what the client reads.
package goerror

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound is returned by adapters when a record is absent or expired.
	ErrNotFound = errors.New("resource not found")

	// ErrConflict is returned by adapters on a unique constraint violation.
	ErrConflict = errors.New("resource conflict")
)

// Type groups codes by who is at fault.
type Type int

const (
	TypeServer Type = iota
	TypeBusiness
	TypeValidation
)

var typeNames = map[Type]string{
	TypeServer:     "ERROR_TYPE_SERVER",
	TypeBusiness:   "ERROR_TYPE_BUSINESS",
	TypeValidation: "ERROR_TYPE_VALIDATION",
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return "ERROR_TYPE_UNKNOWN"
}

// Code is a stable identifier that maps an error onto an HTTP status.
type Code int

const (
	CodeInternal Code = iota
	CodeInvalidFormat
	CodeInvalidInput
	CodeNotFound
	CodeConflict
	CodeTooManyRequest
	// CodeExpired marks a one-time code that outlived its TTL.
	CodeExpired
	// CodeTooManyAttempts marks a one-time code whose attempt budget is spent.
	CodeTooManyAttempts
	// CodeInvalidCode marks a submitted one-time code that did not match.
	CodeInvalidCode
	// CodeDeliveryFailed marks an outbound message the provider did not accept.
	CodeDeliveryFailed
	// CodeUnavailable marks an unreachable dependency.
	CodeUnavailable
)

type codeInfo struct {
	name   string
	status int
}

// Every OTP verification failure is a 400.
var codes = map[Code]codeInfo{
	CodeInternal:        {name: "ERROR_CODE_INTERNAL", status: http.StatusInternalServerError},
	CodeInvalidFormat:   {name: "ERROR_CODE_INVALID_FORMAT", status: http.StatusBadRequest},
	CodeInvalidInput:    {name: "ERROR_CODE_INVALID_INPUT", status: http.StatusBadRequest},
	CodeNotFound:        {name: "ERROR_CODE_NOT_FOUND", status: http.StatusBadRequest},
	CodeConflict:        {name: "ERROR_CODE_CONFLICT", status: http.StatusConflict},
	CodeTooManyRequest:  {name: "ERROR_CODE_TOO_MANY_REQUESTS", status: http.StatusTooManyRequests},
	CodeExpired:         {name: "ERROR_CODE_EXPIRED", status: http.StatusBadRequest},
	CodeTooManyAttempts: {name: "ERROR_CODE_TOO_MANY_ATTEMPTS", status: http.StatusBadRequest},
	CodeInvalidCode:     {name: "ERROR_CODE_INVALID_CODE", status: http.StatusBadRequest},
	CodeDeliveryFailed:  {name: "ERROR_CODE_DELIVERY_FAILED", status: http.StatusInternalServerError},
	CodeUnavailable:     {name: "ERROR_CODE_UNAVAILABLE", status: http.StatusServiceUnavailable},
}

func (c Code) String() string {
	if info, ok := codes[c]; ok {
		return info.name
	}
	return codes[CodeInternal].name
}

// Error wraps an optional cause with a client message, a Type and a Code.
type Error struct {
	err     error
	msg     string
	errType Type
	code    Code
	fields  map[string]string
}

func (e *Error) Error() string {
	switch {
	case e.err != nil:
		return e.err.Error()
	case e.msg != "":
		return e.msg
	default:
		return e.code.String()
	}
}

// String is the verbose form used in logs.
func (e *Error) String() string {
	return fmt.Sprintf("type=%s code=%s msg=%q cause=%v", e.errType, e.code, e.msg, e.err)
}

func (e *Error) Msg() string { return e.msg }
func (e *Error) Type() Type { return e.errType }
func (e *Error) Code() Code { return e.code }
func (e *Error) Fields() map[string]string { return e.fields }
func (e *Error) Unwrap() error { return e.err }

// StatusCode maps the code to an HTTP status; unknown codes are 500.
func (e *Error) StatusCode() int {
	if info, ok := codes[e.code]; ok {
		return info.status
	}
	return http.StatusInternalServerError
}

func newError(err error, msg string, et Type, code Code) error {
	return &Error{err: err, msg: msg, errType: et, code: code}
}

// NewServer hides err behind a generic message.
func NewServer(err error) error {
	return newError(err, "Internal server error", TypeServer, CodeInternal)
}

// NewDelivery keeps the provider error for logs while the client sees msg.
func NewDelivery(err error, msg string) error {
	return newError(err, msg, TypeServer, CodeDeliveryFailed)
}

func NewUnavailable(err error, msg string) error {
	return newError(err, msg, TypeServer, CodeUnavailable)
}

func NewBusiness(msg string, code Code) error {
	return newError(nil, msg, TypeBusiness, code)
}

// NewInvalidInput wraps a validator error, or builds one from field/message
// pairs. An odd number of pairs is treated as a malformed body.
func NewInvalidInput(err error, kv ...string) error {
	if err != nil {
		return newError(err, "Validation error", TypeValidation, CodeInvalidInput)
	}
	if len(kv)%2 != 0 {
		return NewInvalidFormat()
	}

	fields := make(map[string]string, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		fields[kv[i]] = kv[i+1]
	}

	return &Error{msg: "Validation error", errType: TypeValidation, code: CodeInvalidInput, fields: fields}
}

// NewInvalidFormat reports a body that could not be decoded. The first msg,
// if any, replaces the default message.
func NewInvalidFormat(msgs ...string) error {
	msg := "Invalid request body"
	if len(msgs) > 0 {
		msg = msgs[0]
	}
	return newError(nil, msg, TypeValidation, CodeInvalidFormat)
}
