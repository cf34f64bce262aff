package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common error conditions
var (
	// ErrConfiguration is returned when a weight model or engine settings are invalid
	ErrConfiguration = errors.New("invalid configuration")

	// ErrInvalidArgument is returned when a caller passes an argument outside its domain
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrRecordNotFound is returned when a record is not found
	ErrRecordNotFound = errors.New("record not found")

	// ErrRecordRead is returned by a record provider that could not read a record
	ErrRecordRead = errors.New("record read failed")

	// ErrJobNotFound is returned when a background job is not found
	ErrJobNotFound = errors.New("job not found")
)

// ConfigurationError represents an invalid weight model or setting, with the
// dotted path of the offending key.
type ConfigurationError struct {
	Path    string
	Message string
}

func (e *ConfigurationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("configuration error at '%s': %s", e.Path, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// NewConfigurationError creates a new ConfigurationError
func NewConfigurationError(path, message string) *ConfigurationError {
	return &ConfigurationError{Path: path, Message: message}
}

// InvalidArgumentError represents an argument validation error with context
type InvalidArgumentError struct {
	Argument string
	Message  string
}

func (e *InvalidArgumentError) Error() string {
	if e.Argument != "" {
		return fmt.Sprintf("invalid argument '%s': %s", e.Argument, e.Message)
	}
	return fmt.Sprintf("invalid argument: %s", e.Message)
}

func (e *InvalidArgumentError) Is(target error) bool {
	return target == ErrInvalidArgument
}

// NewInvalidArgumentError creates a new InvalidArgumentError
func NewInvalidArgumentError(argument, message string) *InvalidArgumentError {
	return &InvalidArgumentError{Argument: argument, Message: message}
}

// RecordNotFoundError represents a record not found error with context
type RecordNotFoundError struct {
	RecordType string
	RecordID   string
}

func (e *RecordNotFoundError) Error() string {
	return fmt.Sprintf("%s record with ID '%s' not found", e.RecordType, e.RecordID)
}

func (e *RecordNotFoundError) Is(target error) bool {
	return target == ErrRecordNotFound
}

// NewRecordNotFoundError creates a new RecordNotFoundError
func NewRecordNotFoundError(recordType, recordID string) *RecordNotFoundError {
	return &RecordNotFoundError{RecordType: recordType, RecordID: recordID}
}

// RecordReadError wraps a provider failure for a single record. Searches
// treat it as non-fatal: the record is skipped and reported as a warning.
type RecordReadError struct {
	RecordType string
	RecordID   string
	Err        error
}

func (e *RecordReadError) Error() string {
	if e.RecordID == "" {
		return fmt.Sprintf("failed to read %s records: %v", e.RecordType, e.Err)
	}
	return fmt.Sprintf("failed to read %s record '%s': %v", e.RecordType, e.RecordID, e.Err)
}

func (e *RecordReadError) Is(target error) bool {
	return target == ErrRecordRead
}

func (e *RecordReadError) Unwrap() error {
	return e.Err
}

// NewRecordReadError creates a new RecordReadError
func NewRecordReadError(recordType, recordID string, err error) *RecordReadError {
	return &RecordReadError{RecordType: recordType, RecordID: recordID, Err: err}
}

// JobNotFoundError represents a job not found error with context
type JobNotFoundError struct {
	JobID string
}

func (e *JobNotFoundError) Error() string {
	return fmt.Sprintf("job with ID '%s' not found", e.JobID)
}

func (e *JobNotFoundError) Is(target error) bool {
	return target == ErrJobNotFound
}

// NewJobNotFoundError creates a new JobNotFoundError
func NewJobNotFoundError(jobID string) *JobNotFoundError {
	return &JobNotFoundError{JobID: jobID}
}
