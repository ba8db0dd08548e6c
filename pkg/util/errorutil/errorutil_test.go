package errorutil

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainErrorIsMatchesByCode(t *testing.T) {
	notFound := NewNotFound("task", map[string]any{"task_id": "1"})
	forbidden := NewForbidden("access denied")

	assert.ErrorIs(t, notFound, ErrNotFound)
	assert.NotErrorIs(t, notFound, ErrForbidden)
	assert.ErrorIs(t, forbidden, ErrForbidden)
	assert.NotErrorIs(t, forbidden, ErrNotFound)

	wrapped := fmt.Errorf("get task: %w", notFound)
	assert.ErrorIs(t, wrapped, ErrNotFound)
}

func TestStorageFailureKeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewStorageFailure(cause)

	assert.ErrorIs(t, err, ErrStorageFailure)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, http.StatusInternalServerError, ToDomainError(err).HTTPStatus)
}

func TestToDomainError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantCode   string
		wantStatus int
	}{
		{name: "domain error passes through", err: NewForbidden("nope"), wantCode: CodeForbidden, wantStatus: http.StatusForbidden},
		{name: "sql no rows", err: sql.ErrNoRows, wantCode: CodeNotFound, wantStatus: http.StatusNotFound},
		{name: "generic error", err: errors.New("boom"), wantCode: CodeInternal, wantStatus: http.StatusInternalServerError},
		{name: "bare sentinel", err: ErrUnauthorized, wantCode: CodeUnauthorized, wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToDomainError(tt.err)
			require.NotNil(t, got)
			assert.Equal(t, tt.wantCode, got.Code)
			assert.Equal(t, tt.wantStatus, got.HTTPStatus)
		})
	}

	assert.Nil(t, ToDomainError(nil))
	assert.Zero(t, ErrUnauthorized.HTTPStatus)
}

func TestInvalidCredentialsMessageIsGeneric(t *testing.T) {
	err := ToDomainError(NewInvalidCredentials())
	assert.Equal(t, "invalid username or password", err.Message)
	assert.Equal(t, http.StatusUnauthorized, err.HTTPStatus)
}
