package goerror

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_StatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "invalid format", err: NewInvalidFormat(), want: http.StatusBadRequest},
		{name: "invalid input", err: NewInvalidInput(nil, "email", "is required"), want: http.StatusBadRequest},
		{name: "not found", err: NewBusiness("OTP expired or not found", CodeNotFound), want: http.StatusBadRequest},
		{name: "expired", err: NewBusiness("OTP expired", CodeExpired), want: http.StatusBadRequest},
		{name: "too many attempts", err: NewBusiness("Too many attempts", CodeTooManyAttempts), want: http.StatusBadRequest},
		{name: "invalid code", err: NewBusiness("Invalid OTP", CodeInvalidCode), want: http.StatusBadRequest},
		{name: "rate limited", err: NewBusiness("Too many requests", CodeTooManyRequest), want: http.StatusTooManyRequests},
		{name: "conflict", err: NewBusiness("duplicate", CodeConflict), want: http.StatusConflict},
		{name: "delivery", err: NewDelivery(errors.New("smtp down"), "Failed to send OTP"), want: http.StatusInternalServerError},
		{name: "unavailable", err: NewUnavailable(errors.New("dial tcp"), "store unavailable"), want: http.StatusServiceUnavailable},
		{name: "server", err: NewServer(errors.New("boom")), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gerr *Error
			require.True(t, errors.As(tt.err, &gerr))
			assert.Equal(t, tt.want, gerr.StatusCode())
		})
	}
}

func TestNewDelivery_KeepsCause(t *testing.T) {
	cause := errors.New("provider returned no id")
	err := NewDelivery(cause, "Failed to send OTP")

	var gerr *Error
	require.True(t, errors.As(err, &gerr))
	assert.Equal(t, "Failed to send OTP", gerr.Msg())
	assert.Equal(t, TypeServer, gerr.Type())
	assert.Equal(t, CodeDeliveryFailed, gerr.Code())
	assert.ErrorIs(t, err, cause)
}

func TestNewInvalidInput_Fields(t *testing.T) {
	err := NewInvalidInput(nil, "email", "email is required", "otp")

	var gerr *Error
	require.True(t, errors.As(err, &gerr))
	assert.Equal(t, CodeInvalidFormat, gerr.Code())

	err = NewInvalidInput(nil, "email", "email is required")
	require.True(t, errors.As(err, &gerr))
	assert.Equal(t, map[string]string{"email": "email is required"}, gerr.Fields())
}

func TestCode_String(t *testing.T) {
	assert.Equal(t, "ERROR_CODE_TOO_MANY_ATTEMPTS", CodeTooManyAttempts.String())
	assert.Equal(t, "ERROR_CODE_DELIVERY_FAILED", CodeDeliveryFailed.String())
	assert.Equal(t, "ERROR_TYPE_BUSINESS", TypeBusiness.String())
}

func TestError_Error(t *testing.T) {
	assert.Equal(t, "smtp down", NewDelivery(errors.New("smtp down"), "Failed to send OTP").Error())
	assert.Equal(t, "Invalid OTP", NewBusiness("Invalid OTP", CodeInvalidCode).Error())
	assert.Equal(t, "ERROR_CODE_CONFLICT", (&Error{code: CodeConflict}).Error())
	assert.Equal(t, http.StatusInternalServerError, (&Error{code: Code(99)}).StatusCode())
	assert.Equal(t, "ERROR_CODE_INTERNAL", Code(99).String())
	assert.Equal(t, "ERROR_TYPE_UNKNOWN", Type(9).String())
}
