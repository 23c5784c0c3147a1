package errors

import (
	"fmt"
)

// Common error creators for frequent use cases

// NewValidationError creates a validation error with field context
func NewValidationError(field, message string) *AppError {
	return New(ErrCodeValidationFailed, message).
		WithContext("field", field).
		WithUserMessage(fmt.Sprintf("Invalid %s: %s", field, message))
}

// NewConfigError creates a configuration error
func NewConfigError(key, message string) *AppError {
	return New(ErrCodeInvalidConfig, message).
		WithContext("config_key", key).
		WithUserMessage("Configuration error")
}

// NewPersistenceError creates a queue/sent-log I/O error
func NewPersistenceError(operation, path string, err error) *AppError {
	return Wrap(err, ErrCodeQueueIO, fmt.Sprintf("queue %s failed", operation)).
		WithContext("operation", operation).
		WithContext("path", path).
		WithUserMessage("Message store operation failed")
}

// NewSendError creates an error for a failed platform API call. 5xx, 429
// and 408 responses are marked retryable.
func NewSendError(platform, endpoint string, statusCode int, err error) *AppError {
	var code ErrorCode
	switch platform {
	case "telegram":
		code = ErrCodeTelegramAPI
	case "discord":
		code = ErrCodeDiscordAPI
	default:
		code = ErrCodeInternalError
	}

	appErr := Wrap(err, code, fmt.Sprintf("%s API call failed", platform)).
		WithContext("platform", platform).
		WithContext("endpoint", endpoint).
		WithContext("status_code", statusCode)

	if statusCode >= 500 || statusCode == 429 || statusCode == 408 {
		appErr.Retryable = true
	}

	return appErr
}

// NewAuthError creates an authentication error
func NewAuthError(reason string) *AppError {
	return New(ErrCodeAuthentication, "authentication failed").
		WithContext("reason", reason).
		WithUserMessage("Forbidden: invalid access token")
}

// NewRateLimitError creates a rate limit error
func NewRateLimitError(limit int, window string) *AppError {
	return New(ErrCodeRateLimit, "rate limit exceeded").
		WithContext("limit", limit).
		WithContext("window", window).
		WithUserMessage("Too many requests, please try again later")
}

// NewAlertError creates an error for a failed operator alert
func NewAlertError(transport string, err error) *AppError {
	return Wrap(err, ErrCodeAlertDelivery, "alert delivery failed").
		WithContext("transport", transport).
		WithUserMessage("Alert delivery failed")
}

// HTTP helpers

// HTTPStatusCode maps error codes to appropriate HTTP status codes
func HTTPStatusCode(err error) int {
	switch GetCode(err) {
	case ErrCodeValidationFailed, ErrCodeInvalidInput, ErrCodeInvalidConfig:
		return 400
	case ErrCodeAuthentication:
		return 403
	case ErrCodeRateLimit:
		return 429
	case ErrCodeTelegramAPI, ErrCodeDiscordAPI:
		if IsRetryable(err) {
			return 502
		}
		return 500
	case ErrCodeQueueIO:
		return 503
	default:
		return 500
	}
}

// HTTPErrorResponse is the standardized HTTP error envelope
type HTTPErrorResponse struct {
	Error struct {
		Code    ErrorCode `json:"code"`
		Message string    `json:"message"`
	} `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// ToHTTPResponse converts an error to a standardized HTTP response. Error
// context is never exposed to callers; it may contain file paths and
// endpoint URLs.
func ToHTTPResponse(err error, requestID string) HTTPErrorResponse {
	response := HTTPErrorResponse{
		RequestID: requestID,
	}
	response.Error.Code = GetCode(err)
	response.Error.Message = GetUserMessage(err)
	return response
}
