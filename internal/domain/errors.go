package domain

import "fmt"

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain error codes
const (
	ErrCodeValidation    = "VALIDATION_ERROR"
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeInternalError = "INTERNAL_ERROR"
)

// Validation errors
var (
	ErrInvalidPartition     = NewDomainError(ErrCodeValidation, "invalid memory partition")
	ErrMissingRequiredField = NewDomainError(ErrCodeValidation, "missing required field")
	ErrMissingChunkID       = NewDomainError(ErrCodeValidation, "chunk is missing chunk_id")
	ErrMissingEntityType    = NewDomainError(ErrCodeValidation, "chunk is missing entity_type")
	ErrEmptyQuery           = NewDomainError(ErrCodeValidation, "query text cannot be empty")
)

// Not found errors
var (
	ErrDataDirNotFound = NewDomainError(ErrCodeNotFound, "knowledge base directory not found")
)

// Internal errors
var (
	ErrStoreOperationFail = NewDomainError(ErrCodeInternalError, "vector store operation failed")
)
