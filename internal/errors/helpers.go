package errors

import (
	"fmt"
)

// Common error creators for frequent use cases

// NewConfigError creates a configuration error
func NewConfigError(key, message string) *AppError {
	return New(ErrCodeInvalidConfig, message).
		WithContext("config_key", key).
		WithUserMessage("Configuration error")
}

// NewStoreAPIError creates an error for a failed remote store call
func NewStoreAPIError(endpoint string, statusCode int, err error) *AppError {
	return Wrap(err, ErrCodeStoreAPI, fmt.Sprintf("store API call failed: %s", endpoint)).
		WithContext("endpoint", endpoint).
		WithContext("status_code", statusCode).
		WithUserMessage("File store request failed")
}

// NewStoreNoIDError creates an error for a store response missing the
// expected identifier field
func NewStoreNoIDError(endpoint string) *AppError {
	return New(ErrCodeStoreNoID, fmt.Sprintf("store accepted %s but returned no id", endpoint)).
		WithContext("endpoint", endpoint).
		WithUserMessage("Store returned no file ID")
}

// NewDownloadError creates an error for a failed attachment download
func NewDownloadError(fileRef string, err error) *AppError {
	return Wrap(err, ErrCodeMediaDownload, "attachment download failed").
		WithContext("file_ref", fileRef).
		WithUserMessage("Could not download the attachment")
}

// NewTimeoutError creates a timeout error with context
func NewTimeoutError(operation string, duration string) *AppError {
	return New(ErrCodeTimeout, fmt.Sprintf("%s timed out after %s", operation, duration)).
		WithContext("operation", operation).
		WithContext("timeout", duration).
		WithUserMessage("Operation timed out, please try again")
}

// NewNotFoundError creates a not found error with resource context
func NewNotFoundError(resource, identifier string) *AppError {
	return New(ErrCodeNotFound, fmt.Sprintf("%s not found", resource)).
		WithContext("resource", resource).
		WithContext("identifier", identifier).
		WithUserMessage(fmt.Sprintf("%s not found", resource))
}
