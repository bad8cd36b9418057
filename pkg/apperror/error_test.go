package apperror_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"contact-manager-backend/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppErrorStatus(t *testing.T) {
	cause := errors.New("duplicate key value violates unique constraint")

	tests := []struct {
		name   string
		err    *apperror.AppError
		kind   apperror.Kind
		status int
		detail string
	}{
		{"validation is a client error", apperror.BadRequest("Name field cannot be empty"), apperror.KindValidation, http.StatusBadRequest, ""},
		{"not found is a client error", apperror.NotFound("Contact not found"), apperror.KindNotFound, http.StatusNotFound, ""},
		{"conflict is a server error with detail", apperror.Conflict("Error saving contact. This name may already exist.", cause), apperror.KindConflict, http.StatusInternalServerError, cause.Error()},
		{"internal keeps cause text", apperror.Internal("Error retrieving contacts", cause), apperror.KindInternal, http.StatusInternalServerError, cause.Error()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, tt.err.Kind)
			assert.Equal(t, tt.status, tt.err.Code)
			assert.Equal(t, tt.detail, tt.err.Detail())
		})
	}
}

func TestAsFindsWrappedError(t *testing.T) {
	wrapped := fmt.Errorf("handler: %w", apperror.NotFound("Contact not found"))

	appErr, ok := apperror.As(wrapped)
	require.True(t, ok)
	assert.Equal(t, "Contact not found", appErr.Message)
	assert.True(t, apperror.IsKind(wrapped, apperror.KindNotFound))
	assert.False(t, apperror.IsKind(errors.New("plain"), apperror.KindNotFound))
}

func TestInternalDefaultMessage(t *testing.T) {
	err := apperror.Internal("", errors.New("boom"))
	assert.Equal(t, "Internal Server Error", err.Message)
	assert.ErrorContains(t, err, "boom")
}
