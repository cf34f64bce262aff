// Package api provides the HTTP interface of the record search engine.
package api

import (
	"fmt"
	"strings"

	"github.com/gcbaptista/gedcom-search/model"
)

// ValidationError represents a validation error with field context
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationResult holds the result of validation operations
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// AddError adds a validation error to the result
func (vr *ValidationResult) AddError(field, message string) {
	vr.Valid = false
	vr.Errors = append(vr.Errors, ValidationError{
		Field:   field,
		Message: message,
	})
}

// HasErrors returns true if there are validation errors
func (vr *ValidationResult) HasErrors() bool {
	return len(vr.Errors) > 0
}

// ValidateRecordType resolves a record type path or query parameter.
// Tags ("indi"), long names ("individual") and other lowercase names are accepted.
func ValidateRecordType(raw string) (model.RecordType, *ValidationResult) {
	result := &ValidationResult{Valid: true}

	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		result.AddError("type", "Record type is required")
		return "", result
	}
	if recordType, ok := model.ParseRecordType(trimmed); ok {
		return recordType, result
	}
	return model.RecordType(strings.ToLower(trimmed)), result
}

// ValidateRecordID validates a record ID
func ValidateRecordID(recordID string) *ValidationResult {
	result := &ValidationResult{Valid: true}

	if recordID == "" {
		result.AddError("id", "Record ID is required")
		return result
	}

	if strings.TrimSpace(recordID) != recordID {
		result.AddError("id", "Record ID cannot have leading or trailing whitespace")
		return result
	}

	return result
}

// ValidateLimit checks a requested results limit against the configured
// maximum (0 = unbounded). Non-positive limits are left to the search
// service, which rejects them as invalid arguments.
func ValidateLimit(field string, limit, maxLimit int) *ValidationResult {
	result := &ValidationResult{Valid: true}

	if maxLimit > 0 && limit > maxLimit {
		result.AddError(field, fmt.Sprintf("Limit cannot exceed %d", maxLimit))
	}

	return result
}

// ValidateMultiSearchRequest checks the shape of a multi-search request
func ValidateMultiSearchRequest(req *MultiSearchRequest, maxLimit int) *ValidationResult {
	result := &ValidationResult{Valid: true}

	if len(req.Queries) == 0 {
		result.AddError("queries", "At least one query is required")
		return result
	}

	seen := make(map[string]bool, len(req.Queries))
	for i, q := range req.Queries {
		field := fmt.Sprintf("queries[%d].name", i)
		switch {
		case strings.TrimSpace(q.Name) == "":
			result.AddError(field, "Query name is required")
		case seen[q.Name]:
			result.AddError(field, fmt.Sprintf("Duplicate query name '%s'", q.Name))
		}
		seen[q.Name] = true
	}

	if req.Limit != nil {
		for _, e := range ValidateLimit("limit", *req.Limit, maxLimit).Errors {
			result.AddError(e.Field, e.Message)
		}
	}

	return result
}
