package errors

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorCode_String(t *testing.T) {
	assert.Equal(t, "COMMON_001", ErrCodeInternal.String())
	assert.Equal(t, "GRAPH_001", ErrCodeEntityNotFound.String())
	assert.Equal(t, "FRD_001", ErrCodeShellChainDetection.String())
}

func TestHTTPStatusForCode(t *testing.T) {
	tests := []struct {
		code     ErrorCode
		expected int
	}{
		{ErrCodeInternal, 500},
		{ErrCodeBadRequest, 400},
		{ErrCodeNotFound, 404},
		{ErrCodeConflict, 409},
		{ErrCodeTooManyRequests, 429},
		{ErrCodeValidation, 422},
		{ErrCodeEntityNotFound, 404},
		{ErrCodeStoreUnavailable, 503},
		{ErrCodeAnalysisTimeout, 504},
		{ErrorCode("UNKNOWN"), 500},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, HTTPStatusForCode(tt.code))
	}
}

func TestDefaultMessageForCode(t *testing.T) {
	assert.Equal(t, "internal server error", DefaultMessageForCode(ErrCodeInternal))
	assert.Equal(t, "entity not found in graph", DefaultMessageForCode(ErrCodeEntityNotFound))
	assert.Equal(t, "unknown error", DefaultMessageForCode(ErrorCode("UNKNOWN")))
}

func TestIsClientError(t *testing.T) {
	assert.True(t, IsClientError(ErrCodeBadRequest))
	assert.True(t, IsClientError(ErrCodeEntityNotFound))
	assert.False(t, IsClientError(ErrCodeInternal))
}

func TestIsServerError(t *testing.T) {
	assert.True(t, IsServerError(ErrCodeInternal))
	assert.True(t, IsServerError(ErrCodeStoreUnavailable))
	assert.False(t, IsServerError(ErrCodeBadRequest))
}

func TestModuleForCode(t *testing.T) {
	assert.Equal(t, "COMMON", ModuleForCode(ErrCodeInternal))
	assert.Equal(t, "GRAPH", ModuleForCode(ErrCodeEntityNotFound))
	assert.Equal(t, "FRD", ModuleForCode(ErrCodeCircularTradeDetection))
	assert.Equal(t, "UNKNOWN", ModuleForCode(ErrorCode("")))
}

func TestErrorCodeFormat_Convention(t *testing.T) {
	re := regexp.MustCompile(`^[A-Z]+_\d{3}$`)
	allCodes := []ErrorCode{
		ErrCodeInternal, ErrCodeBadRequest, ErrCodeNotFound, ErrCodeConflict,
		ErrCodeTooManyRequests, ErrCodeServiceUnavailable, ErrCodeTimeout,
		ErrCodeValidation, ErrCodeSerialization, ErrCodeDatabaseError,
		ErrCodeCacheError, ErrCodeMessagingError,
		ErrCodeEntityNotFound, ErrCodeStoreUnavailable, ErrCodeQueryFailed,
		ErrCodeMalformedAttribute,
		ErrCodeShellChainDetection, ErrCodeCircularTradeDetection,
		ErrCodeHiddenInfluenceDetection, ErrCodeNeighborhoodExtraction,
		ErrCodeAnalysisTimeout, ErrCodeAlertPublishFailed,
	}
	for _, code := range allCodes {
		assert.Regexp(t, re, string(code))
	}
}

func TestErrorCodeMappings_Completeness(t *testing.T) {
	// Every code in the status map must have a default message and vice versa.
	for code := range ErrorCodeHTTPStatus {
		_, hasMessage := ErrorCodeMessage[code]
		assert.True(t, hasMessage, "missing message for %s", code)
	}
	for code := range ErrorCodeMessage {
		_, hasStatus := ErrorCodeHTTPStatus[code]
		assert.True(t, hasStatus, "missing status for %s", code)
	}
}
