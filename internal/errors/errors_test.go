package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDerivesCategoryAndSeverity(t *testing.T) {
	tests := []struct {
		code        string
		category    Category
		severity    Severity
		recoverable bool
	}{
		{ErrCodeConfigInvalid, CategoryConfig, SeverityError, false},
		{ErrCodeIndexUnavailable, CategoryIndex, SeverityWarning, true},
		{ErrCodeExternalService, CategoryService, SeverityWarning, true},
		{ErrCodeServiceTimeout, CategoryService, SeverityWarning, true},
		{ErrCodeEmptyQuery, CategoryQuery, SeverityError, false},
		{ErrCodeRetrieval, CategoryQuery, SeverityFatal, false},
		{ErrCodeIndexBuild, CategoryIndex, SeverityFatal, false},
		{ErrCodeInternal, CategoryInternal, SeverityError, false},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := New(tt.code, "boom", nil)

			assert.Equal(t, tt.category, err.Category)
			assert.Equal(t, tt.severity, err.Severity)
			assert.Equal(t, tt.recoverable, err.Recoverable)
		})
	}
}

func TestErrorChain(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := ExternalServiceError("embedding service unreachable", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), ErrCodeExternalService)
	assert.Contains(t, err.Error(), "embedding service unreachable")
}

func TestIsMatchesByCode(t *testing.T) {
	err := EmptyQueryError("?!")

	assert.True(t, stderrors.Is(err, New(ErrCodeEmptyQuery, "", nil)))
	assert.False(t, stderrors.Is(err, New(ErrCodeRetrieval, "", nil)))
}

func TestEmptyQueryCarriesQueryDetail(t *testing.T) {
	err := EmptyQueryError("...")

	require.NotNil(t, err.Details)
	assert.Equal(t, "...", err.Details["query"])
	assert.False(t, IsRecoverable(err))
}

func TestWrap(t *testing.T) {
	assert.Nil(t, Wrap(ErrCodeInternal, nil))

	cause := fmt.Errorf("disk full")
	err := Wrap(ErrCodeCacheCorrupt, cause)
	require.NotNil(t, err)
	assert.Equal(t, "disk full", err.Message)
	assert.True(t, IsRecoverable(err))
}

func TestHelpers(t *testing.T) {
	assert.False(t, IsRecoverable(nil))
	assert.False(t, IsFatal(nil))
	assert.True(t, IsFatal(RetrievalError("stage 1 failed", nil)))
	assert.False(t, IsFatal(fmt.Errorf("plain")))
	assert.Equal(t, "", GetCode(fmt.Errorf("plain")))
	assert.Equal(t, ErrCodeConfigInvalid, GetCode(ConfigError("bad", nil)))
}
