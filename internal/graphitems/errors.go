package graphitems

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/microsoftgraph/msgraph-sdk-go/models/odataerrors"

	"github.com/agallego-css/GraphTools/internal/common/logger"
)

// enrichGraphAPIError enriches Graph API errors with additional context,
// particularly for rate limiting scenarios. It detects rate limit errors (429)
// and extracts the Retry-After header if available.
func enrichGraphAPIError(err error, slogger *slog.Logger, operation string) error {
	if err == nil {
		return nil
	}

	// Check if this is an OData error from Microsoft Graph
	var odataErr *odataerrors.ODataError
	if !errors.As(err, &odataErr) {
		// Not an OData error, return as-is
		return err
	}

	// Extract error details if available
	if odataErr.GetErrorEscaped() == nil {
		return err
	}

	errorInfo := odataErr.GetErrorEscaped()
	code := ""
	message := ""

	if errorInfo.GetCode() != nil {
		code = *errorInfo.GetCode()
	}
	if errorInfo.GetMessage() != nil {
		message = *errorInfo.GetMessage()
	}

	// Handle rate limiting (429 TooManyRequests)
	if code == "TooManyRequests" || code == "activityLimitReached" {
		logger.LogWarn(slogger, "Graph API rate limit exceeded", "operation", operation, "code", code)

		// Try to extract Retry-After header
		retryAfter := ""
		if odataErr.GetResponseHeaders() != nil {
			if retryHeaders := odataErr.GetResponseHeaders().Get("Retry-After"); len(retryHeaders) > 0 {
				retryAfter = retryHeaders[0] // Get first value
				logger.LogInfo(slogger, "Rate limit retry guidance available", "retryAfterSeconds", retryAfter)
			}
		}

		// Build enriched error message
		enrichedMsg := fmt.Sprintf("rate limit exceeded during %s", operation)
		if retryAfter != "" {
			enrichedMsg += fmt.Sprintf(" (retry after %s seconds)", retryAfter)
		}
		enrichedMsg += ". Consider lowering -rps or raising -retrydelay"

		return fmt.Errorf("%s: %w", enrichedMsg, err)
	}

	// Handle other service errors (503, 504)
	if code == "ServiceUnavailable" || code == "GatewayTimeout" {
		logger.LogWarn(slogger, "Graph API service error", "operation", operation, "code", code, "message", message)
		return fmt.Errorf("service temporarily unavailable during %s (code: %s): %w", operation, code, err)
	}

	// For other OData errors, log details for debugging
	if code != "" {
		logger.LogDebug(slogger, "Graph API error", "operation", operation, "code", code, "message", message)
	}

	return err
}

// isNotFound reports whether the error is a 404 from the API.
func isNotFound(err error) bool {
	var odataErr *odataerrors.ODataError
	if errors.As(err, &odataErr) {
		return odataErr.ResponseStatusCode == 404
	}
	return false
}
