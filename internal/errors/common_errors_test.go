package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name        string
		appError    *AppError
		wantMessage string
	}{
		{
			name:        "error without cause",
			appError:    NewAppValidationError("nights must be positive"),
			wantMessage: "[VALIDATION] nights must be positive",
		},
		{
			name:        "error with cause",
			appError:    NewSourceError("listings source unreadable", errors.New("permission denied")),
			wantMessage: "[SOURCE] listings source unreadable: permission denied",
		},
		{
			name:        "not found",
			appError:    NewNotFoundError("view"),
			wantMessage: "[NOT_FOUND] view not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMessage, tt.appError.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("short write")
	err := NewExportError("csv export failed", cause)

	assert.ErrorIs(t, err, cause)

	var appErr *AppError
	require.ErrorAs(t, error(err), &appErr)
	assert.Equal(t, ErrTypeExport, appErr.Type)
}

func TestAppError_WithContext(t *testing.T) {
	err := (&AppError{Type: ErrTypeParsing, Message: "bad row"}).
		WithContext("row", 12).
		WithContext("column", "price")

	assert.Equal(t, 12, err.Context["row"])
	assert.Equal(t, "price", err.Context["column"])
}

func TestAppErrorConstructors(t *testing.T) {
	assert.Equal(t, ErrTypeParsing, NewParsingError("x", nil).Type)
	assert.Equal(t, ErrTypeConfig, NewConfigError("x", nil).Type)
	assert.Equal(t, ErrTypeSource, NewSourceError("x", nil).Type)
	assert.NotNil(t, NewAppError(ErrTypeExport, "x", nil).Context)
}
