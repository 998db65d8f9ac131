// Package errors provides the structured AppError type with machine-readable
// codes, HTTP status mapping and retryable detection.
package errors
