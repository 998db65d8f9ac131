package errors

import (
	stderrors "errors"
)

// ErrorResponse is the JSON envelope for HTTP error answers.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody carries the client-visible part of an AppError. Cause is never
// serialized.
type ErrorBody struct {
	Code      ErrorCode      `json:"code"`
	Message   string         `json:"message"`
	Retryable bool           `json:"retryable"`
	RequestID string         `json:"request_id,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
}

// ToResponse builds the envelope. requestID is echoed when non-empty so
// callers can correlate the answer with server logs.
func (e *AppError) ToResponse(requestID ...string) ErrorResponse {
	body := ErrorBody{
		Code:      e.Code,
		Message:   e.Message,
		Retryable: e.Retryable,
		Details:   e.Details,
	}
	if len(requestID) > 0 {
		body.RequestID = requestID[0]
	}
	return ErrorResponse{Error: body}
}

// AsAppError converts err to an AppError if it is (or wraps) one.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// Classifier maps a sentinel from another package to an AppError, or
// returns nil when it does not recognize err.
type Classifier func(err error) *AppError

// FromError returns err as an AppError. Other errors go through classifiers
// in order; anything unrecognized becomes an internal error.
func FromError(err error, classifiers ...Classifier) *AppError {
	if appErr, ok := AsAppError(err); ok {
		return appErr
	}
	for _, classify := range classifiers {
		if appErr := classify(err); appErr != nil {
			return appErr
		}
	}
	return Internal(err)
}
