package backend

import (
	"context"
	"errors"
	"strings"

	"github.com/signaltrustai/SignalTrust-AI-Scanner-sub000/internal/types"
)

// NewAuthError creates an error for a provider with missing or rejected credentials.
func NewAuthError(provider string, cause error) *types.ScannerError {
	return types.WrapError(types.BACKEND_UNAUTHORIZED, "authentication failed for provider: "+provider, cause)
}

// NewParseError creates an error for an unusable provider reply.
func NewParseError(provider string, cause error) *types.ScannerError {
	return types.WrapError(types.BACKEND_PARSE_FAILED, "unparseable reply from provider: "+provider, cause)
}

// TranslateError converts a raw provider/SDK error into a structured scanner
// error with an appropriate code and retryability hint. Classification is by
// message inspection because vendor SDKs do not share an error taxonomy.
func TranslateError(provider string, err error) *types.ScannerError {
	if err == nil {
		return nil
	}

	var scanErr *types.ScannerError
	if errors.As(err, &scanErr) {
		return scanErr
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return types.WrapRetryableError(types.BACKEND_TIMEOUT, "provider call timed out: "+provider, err)
	}
	if errors.Is(err, context.Canceled) {
		return types.WrapError(types.BACKEND_CONTEXT_CANCELED, "provider call canceled: "+provider, err)
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "rate limit") || strings.Contains(msg, "429"):
		return types.WrapRetryableError(types.BACKEND_RATE_LIMITED, "rate limit exceeded for provider: "+provider, err)
	case strings.Contains(msg, "unauthorized") || strings.Contains(msg, "401") ||
		strings.Contains(msg, "api key") || strings.Contains(msg, "forbidden"):
		return NewAuthError(provider, err)
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline"):
		return types.WrapRetryableError(types.BACKEND_TIMEOUT, "provider call timed out: "+provider, err)
	case strings.Contains(msg, "connection refused") || strings.Contains(msg, "no such host") ||
		strings.Contains(msg, "unavailable") || strings.Contains(msg, "503") ||
		strings.Contains(msg, "502"):
		return types.WrapRetryableError(types.BACKEND_UNAVAILABLE, "provider temporarily unavailable: "+provider, err)
	default:
		return types.WrapError(types.BACKEND_CALL_FAILED, "provider call failed: "+provider, err)
	}
}
