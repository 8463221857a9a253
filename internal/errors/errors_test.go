package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRankError_Unwrap_PreservesOriginalError(t *testing.T) {
	originalErr := errors.New("original error")

	rankErr := New(ErrCodeInternal, "wrapped failure", originalErr)

	require.NotNil(t, rankErr)
	assert.Equal(t, originalErr, errors.Unwrap(rankErr))
	assert.True(t, errors.Is(rankErr, originalErr))
}

func TestRankError_Error_ReturnsFormattedMessage(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		message  string
		expected string
	}{
		{
			name:     "input error",
			code:     ErrCodeQueryEmpty,
			message:  "query cannot be empty",
			expected: "[ERR_101_QUERY_EMPTY] query cannot be empty",
		},
		{
			name:     "filter error",
			code:     ErrCodeFilterEmpty,
			message:  "no candidates survived filtering",
			expected: "[ERR_201_FILTER_EMPTY] no candidates survived filtering",
		},
		{
			name:     "upstream error",
			code:     ErrCodeLLMTimeout,
			message:  "intent classification timed out",
			expected: "[ERR_302_LLM_TIMEOUT] intent classification timed out",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code, tt.message, nil)
			assert.Equal(t, tt.expected, err.Error())
		})
	}
}

func TestRankError_Is_MatchesByCode(t *testing.T) {
	err1 := New(ErrCodeFilterEmpty, "pool A empty", nil)
	err2 := New(ErrCodeFilterEmpty, "pool B empty", nil)

	assert.True(t, errors.Is(err1, err2))
}

func TestRankError_Is_DoesNotMatchDifferentCodes(t *testing.T) {
	err1 := New(ErrCodeFilterEmpty, "pool empty", nil)
	err2 := New(ErrCodeQueryEmpty, "query empty", nil)

	assert.False(t, errors.Is(err1, err2))
}

func TestRankError_WithDetails_AddsContext(t *testing.T) {
	err := New(ErrCodeFilterEmpty, "no candidates", nil)

	err = err.WithDetail("stage", "insurance")
	err = err.WithDetail("pool_size", "0")

	assert.Equal(t, "insurance", err.Details["stage"])
	assert.Equal(t, "0", err.Details["pool_size"])
}

func TestRankError_WithSuggestion_AddsSuggestion(t *testing.T) {
	err := New(ErrCodeLLMTimeout, "llm call timed out", nil)

	err = err.WithSuggestion("retrying with the pattern-based fallback")

	assert.Equal(t, "retrying with the pattern-based fallback", err.Suggestion)
}

func TestRankError_CategoryFromCode(t *testing.T) {
	tests := []struct {
		code         string
		wantCategory Category
	}{
		{ErrCodeQueryEmpty, CategoryInput},
		{ErrCodeInvalidInput, CategoryInput},
		{ErrCodeFilterEmpty, CategoryFilter},
		{ErrCodeLLMUnavailable, CategoryUpstream},
		{ErrCodeLLMTimeout, CategoryUpstream},
		{ErrCodeConfigInvalid, CategoryConfig},
		{ErrCodeSemanticScoreMissing, CategoryConfig},
		{ErrCodeInternal, CategoryInternal},
		{ErrCodeRankingFailed, CategoryInternal},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := New(tt.code, "test message", nil)
			assert.Equal(t, tt.wantCategory, err.Category)
		})
	}
}

func TestRankError_SeverityFromCode(t *testing.T) {
	tests := []struct {
		code         string
		wantSeverity Severity
	}{
		{ErrCodeFilterEmpty, SeverityInfo},
		{ErrCodeConfigInvalid, SeverityFatal},
		{ErrCodeQueryEmpty, SeverityFatal},
		{ErrCodeRankingFailed, SeverityError},
		{ErrCodeLLMTimeout, SeverityWarning},
		{ErrCodeLLMUnavailable, SeverityWarning},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := New(tt.code, "test message", nil)
			assert.Equal(t, tt.wantSeverity, err.Severity)
		})
	}
}

func TestRankError_RetryableFromCode(t *testing.T) {
	tests := []struct {
		code          string
		wantRetryable bool
	}{
		{ErrCodeLLMTimeout, true},
		{ErrCodeLLMUnavailable, true},
		{ErrCodeFilterEmpty, false},
		{ErrCodeConfigInvalid, false},
		{ErrCodeQueryEmpty, false},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := New(tt.code, "test message", nil)
			assert.Equal(t, tt.wantRetryable, err.Retryable)
		})
	}
}

func TestWrap_CreatesRankErrorFromError(t *testing.T) {
	originalErr := errors.New("something went wrong")

	rankErr := Wrap(ErrCodeInternal, originalErr)

	require.NotNil(t, rankErr)
	assert.Equal(t, ErrCodeInternal, rankErr.Code)
	assert.Equal(t, "something went wrong", rankErr.Message)
	assert.Equal(t, originalErr, rankErr.Cause)
}

func TestInputError_CreatesInputCategoryError(t *testing.T) {
	err := InputError("query cannot be empty after trimming", nil)

	assert.Equal(t, CategoryInput, err.Category)
	assert.Equal(t, ErrCodeQueryEmpty, err.Code)
}

func TestFilterEmpty_CreatesFilterCategoryError(t *testing.T) {
	err := FilterEmpty("insurance")

	assert.Equal(t, CategoryFilter, err.Category)
	assert.Equal(t, "insurance", err.Details["stage"])
}

func TestLLMFailure_CreatesUpstreamRetryableError(t *testing.T) {
	err := LLMFailure("clinical_intent", errors.New("deadline exceeded"))

	assert.Equal(t, CategoryUpstream, err.Category)
	assert.True(t, err.Retryable)
	assert.Equal(t, "clinical_intent", err.Details["task"])
}

func TestSemanticScoreMissing_CreatesConfigCategoryError(t *testing.T) {
	err := SemanticScoreMissing("practitioner-123")

	assert.Equal(t, CategoryConfig, err.Category)
	assert.Equal(t, "practitioner-123", err.Details["practitioner_id"])
}

func TestRankingConfigInvalid_IsFatal(t *testing.T) {
	err := RankingConfigInvalid("k1 must be > 0", nil)

	assert.True(t, IsFatal(err))
}

func TestCancelled_WrapsContextError(t *testing.T) {
	cause := errors.New("context canceled")
	err := Cancelled(cause)

	assert.Equal(t, ErrCodeCancelled, err.Code)
	assert.Equal(t, cause, err.Cause)
}

func TestIsRetryable_ChecksRetryableFlag(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "retryable RankError",
			err:      New(ErrCodeLLMTimeout, "timeout", nil),
			expected: true,
		},
		{
			name:     "non-retryable RankError",
			err:      New(ErrCodeFilterEmpty, "empty", nil),
			expected: false,
		},
		{
			name:     "wrapped retryable error",
			err:      Wrap(ErrCodeLLMTimeout, errors.New("wrapped")),
			expected: true,
		},
		{
			name:     "standard error",
			err:      errors.New("standard error"),
			expected: false,
		},
		{
			name:     "nil error",
			err:      nil,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsRetryable(tt.err))
		})
	}
}

func TestIsFatal_ChecksFatalSeverity(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "fatal config error",
			err:      New(ErrCodeConfigInvalid, "b must be in [0,1]", nil),
			expected: true,
		},
		{
			name:     "fatal input error",
			err:      New(ErrCodeQueryEmpty, "query empty", nil),
			expected: true,
		},
		{
			name:     "non-fatal error",
			err:      New(ErrCodeFilterEmpty, "empty", nil),
			expected: false,
		},
		{
			name:     "standard error",
			err:      errors.New("standard error"),
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsFatal(tt.err))
		})
	}
}
