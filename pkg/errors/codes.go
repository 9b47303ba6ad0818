package errors

import (
	"net/http"
	"strings"
)

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common Error Codes
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeNotFound           ErrorCode = "COMMON_003"
	ErrCodeConflict           ErrorCode = "COMMON_004"
	ErrCodeTooManyRequests    ErrorCode = "COMMON_005"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_006"
	ErrCodeTimeout            ErrorCode = "COMMON_007"
	ErrCodeValidation         ErrorCode = "COMMON_008"
	ErrCodeSerialization      ErrorCode = "COMMON_009"
	ErrCodeDatabaseError      ErrorCode = "COMMON_010"
	ErrCodeCacheError         ErrorCode = "COMMON_011"
	ErrCodeMessagingError     ErrorCode = "COMMON_012"
)

// Graph Store Error Codes
const (
	ErrCodeEntityNotFound     ErrorCode = "GRAPH_001"
	ErrCodeStoreUnavailable   ErrorCode = "GRAPH_002"
	ErrCodeQueryFailed        ErrorCode = "GRAPH_003"
	ErrCodeMalformedAttribute ErrorCode = "GRAPH_004"
)

// Fraud Analysis Error Codes
const (
	ErrCodeShellChainDetection      ErrorCode = "FRD_001"
	ErrCodeCircularTradeDetection   ErrorCode = "FRD_002"
	ErrCodeHiddenInfluenceDetection ErrorCode = "FRD_003"
	ErrCodeNeighborhoodExtraction   ErrorCode = "FRD_004"
	ErrCodeAnalysisTimeout          ErrorCode = "FRD_005"
	ErrCodeAlertPublishFailed       ErrorCode = "FRD_006"
)

// Aliases kept for call-site readability
const (
	CodeInternal     = ErrCodeInternal
	CodeInvalidParam = ErrCodeBadRequest
	CodeNotFound     = ErrCodeNotFound
	CodeConflict     = ErrCodeConflict
	CodeRateLimit    = ErrCodeTooManyRequests
	CodeOK           = ErrorCode("OK")
	CodeUnknown      = ErrorCode("UNKNOWN")

	// Domain specific aliases
	CodeEntityNotFound   = ErrCodeEntityNotFound
	CodeStoreUnavailable = ErrCodeStoreUnavailable
	CodeDatabaseError    = ErrCodeDatabaseError
	CodeCacheError       = ErrCodeCacheError
)

// ErrorCodeHTTPStatus maps ErrorCodes to HTTP status codes.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeTooManyRequests:    http.StatusTooManyRequests,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeValidation:         http.StatusUnprocessableEntity,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeDatabaseError:      http.StatusInternalServerError,
	ErrCodeCacheError:         http.StatusInternalServerError,
	ErrCodeMessagingError:     http.StatusInternalServerError,

	ErrCodeEntityNotFound:     http.StatusNotFound,
	ErrCodeStoreUnavailable:   http.StatusServiceUnavailable,
	ErrCodeQueryFailed:        http.StatusInternalServerError,
	ErrCodeMalformedAttribute: http.StatusUnprocessableEntity,

	ErrCodeShellChainDetection:      http.StatusInternalServerError,
	ErrCodeCircularTradeDetection:   http.StatusInternalServerError,
	ErrCodeHiddenInfluenceDetection: http.StatusInternalServerError,
	ErrCodeNeighborhoodExtraction:   http.StatusInternalServerError,
	ErrCodeAnalysisTimeout:          http.StatusGatewayTimeout,
	ErrCodeAlertPublishFailed:       http.StatusInternalServerError,
}

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:           "internal server error",
	ErrCodeBadRequest:         "bad request",
	ErrCodeNotFound:           "resource not found",
	ErrCodeConflict:           "resource conflict",
	ErrCodeTooManyRequests:    "too many requests",
	ErrCodeServiceUnavailable: "service unavailable",
	ErrCodeTimeout:            "request timeout",
	ErrCodeValidation:         "validation failed",
	ErrCodeSerialization:      "serialization failed",
	ErrCodeDatabaseError:      "database error",
	ErrCodeCacheError:         "cache error",
	ErrCodeMessagingError:     "message publish failed",

	ErrCodeEntityNotFound:     "entity not found in graph",
	ErrCodeStoreUnavailable:   "graph store unavailable",
	ErrCodeQueryFailed:        "graph query failed",
	ErrCodeMalformedAttribute: "malformed graph attribute",

	ErrCodeShellChainDetection:      "shell chain detection failed",
	ErrCodeCircularTradeDetection:   "circular trade detection failed",
	ErrCodeHiddenInfluenceDetection: "hidden influence detection failed",
	ErrCodeNeighborhoodExtraction:   "neighborhood extraction failed",
	ErrCodeAnalysisTimeout:          "analysis deadline exceeded",
	ErrCodeAlertPublishFailed:       "fraud alert publish failed",
}

// HTTPStatusForCode returns the HTTP status code for an ErrorCode.
func HTTPStatusForCode(code ErrorCode) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DefaultMessageForCode returns the default message for an ErrorCode.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := ErrorCodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

// IsClientError returns true if the ErrorCode corresponds to a 4xx HTTP status.
func IsClientError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 400 && status < 500
}

// IsServerError returns true if the ErrorCode corresponds to a 5xx HTTP status.
func IsServerError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 500 && status < 600
}

// ModuleForCode returns the module prefix of an ErrorCode.
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 0 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}
