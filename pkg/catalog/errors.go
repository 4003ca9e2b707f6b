package catalog

import (
	"errors"
	"fmt"
)

// Common errors returned by the client.
var (
	// ErrInvalidPageRequest is returned when page or limit is below 1.
	ErrInvalidPageRequest = errors.New("page and limit must be positive")
)

// ErrorClass represents a classification of fetch failures.
type ErrorClass string

const (
	// ErrorClassClient represents 4xx client errors.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx server errors.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassNetwork represents transport and timeout errors.
	ErrorClassNetwork ErrorClass = "network"

	// ErrorClassDecode represents a successful status with an unreadable body.
	ErrorClassDecode ErrorClass = "decode"
)

// CatalogError describes a failed page fetch.
type CatalogError struct {
	StatusCode int
	ErrorClass ErrorClass
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *CatalogError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("catalog %s error (status %d): %s: %v",
			e.ErrorClass, e.StatusCode, e.Message, e.Err)
	}
	return fmt.Sprintf("catalog %s error (status %d): %s",
		e.ErrorClass, e.StatusCode, e.Message)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *CatalogError) Unwrap() error {
	return e.Err
}

// ClassOf returns the error class of err, or "" when err is not a CatalogError.
func ClassOf(err error) ErrorClass {
	var ce *CatalogError
	if errors.As(err, &ce) {
		return ce.ErrorClass
	}
	return ""
}

// classifyStatus maps a non-success HTTP status to an error class.
func classifyStatus(status int) ErrorClass {
	switch {
	case status >= 400 && status < 500:
		return ErrorClassClient
	case status >= 500:
		return ErrorClassServer
	default:
		// 1xx and 3xx that survive redirects are still failures for us
		return ErrorClassClient
	}
}
