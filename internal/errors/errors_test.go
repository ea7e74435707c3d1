package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_ErrorAndUnwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := Wrap(cause, ErrCodeInternal, "Something went wrong")
	assert.Equal(t, "Something went wrong: connection reset", err.Error())
	require.ErrorIs(t, err, cause)

	assert.Equal(t, "no cause", NotFound("no cause").Error())
	assert.Nil(t, Wrap(nil, ErrCodeInternal, "x"))
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		err  *AppError
		code ErrorCode
	}{
		{NotFound("x"), ErrCodeNotFound},
		{Conflict("x"), ErrCodeConflict},
		{Validation("x"), ErrCodeValidation},
		{Validationf("x %d", 1), ErrCodeValidation},
		{Unauthorized("x"), ErrCodeUnauthorized},
		{Forbidden("x"), ErrCodeForbidden},
		{Internal("x"), ErrCodeInternal},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.code, tt.err.Code)
	}
	assert.Equal(t, "x 1", Validationf("x %d", 1).Message)

	f := ValidationField("url", "bad url")
	assert.Equal(t, "url", GetField(f))
	assert.Equal(t, "wrapped 7", Wrapf(errors.New("c"), ErrCodeInternal, "wrapped %d", 7).Message)
}

func TestIsHelpersThroughWrapping(t *testing.T) {
	err := fmt.Errorf("handler: %w", Conflict("dup"))
	assert.True(t, IsConflict(err))
	assert.False(t, IsNotFound(err))
	assert.False(t, IsValidation(errors.New("plain")))
	assert.Equal(t, ErrCodeConflict, GetCode(err))
	assert.Equal(t, ErrorCode(""), GetCode(errors.New("plain")))
	assert.Empty(t, GetField(errors.New("plain")))
}

func TestErrorCode_HTTPStatus(t *testing.T) {
	tests := map[ErrorCode]int{
		ErrCodeNotFound:     http.StatusNotFound,
		ErrCodeConflict:     http.StatusConflict,
		ErrCodeValidation:   http.StatusBadRequest,
		ErrCodeForeignKey:   http.StatusBadRequest,
		ErrCodeUnauthorized: http.StatusUnauthorized,
		ErrCodeForbidden:    http.StatusForbidden,
		ErrCodeUnavailable:  http.StatusServiceUnavailable,
		ErrCodeTimeout:      http.StatusGatewayTimeout,
		ErrCodeCanceled:     499,
		ErrCodeInternal:     http.StatusInternalServerError,
		ErrorCode("other"):  http.StatusInternalServerError,
	}
	for code, want := range tests {
		assert.Equal(t, want, code.HTTPStatus(), code)
	}
}
