// Package errors provides custom error types for the stockmap system.
// These errors separate recoverable supplier failures from fatal schema
// drift and from data-quality findings, so the pipeline can isolate one
// supplier's problems from the rest of a reconciliation run.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Join returns an error that wraps the given errors, discarding nils.
var Join = errors.Join

// As finds the first error in err's tree that matches target.
var As = errors.As

// Common sentinel errors for the stockmap system
var (
	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates that a resource already exists
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrSourceUnavailable indicates a supplier feed could not be obtained or parsed
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrSchema indicates a feed does not carry the columns its mapping declares
	ErrSchema = errors.New("schema mismatch")

	// ErrDataQuality indicates a data-quality finding that did not stop processing
	ErrDataQuality = errors.New("data quality")

	// ErrCanceled indicates that an operation was canceled
	ErrCanceled = errors.New("operation canceled")

	// ErrTimeout indicates that an operation timed out
	ErrTimeout = errors.New("operation timed out")
)

// NotFoundError represents an error when a resource is not found
type NotFoundError struct {
	Resource string
	ID       string
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %s not found", e.Resource, e.ID)
}

// Is implements errors.Is support
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// ValidationError represents a validation failure. Inside the pipeline it
// marks a field-level correction (clamp or drop) that was applied and counted.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// SourceUnavailableError reports that a supplier's raw input could not be
// obtained or parsed. It is recoverable: the supplier is skipped for the
// current run and its last known rows are kept.
type SourceUnavailableError struct {
	Supplier string
	Source   string // file name or feed identity
	Message  string
	Err      error
}

// Error implements the error interface
func (e *SourceUnavailableError) Error() string {
	var b strings.Builder
	b.WriteString("source unavailable")
	if e.Supplier != "" {
		fmt.Fprintf(&b, " for supplier %s", e.Supplier)
	}
	if e.Source != "" {
		fmt.Fprintf(&b, " (%s)", e.Source)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	return b.String()
}

// Unwrap implements errors.Unwrap
func (e *SourceUnavailableError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *SourceUnavailableError) Is(target error) bool {
	return target == ErrSourceUnavailable
}

// NewSourceUnavailableError creates a new SourceUnavailableError
func NewSourceUnavailableError(supplier, source string, err error) *SourceUnavailableError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &SourceUnavailableError{
		Supplier: supplier,
		Source:   source,
		Message:  message,
		Err:      err,
	}
}

// SchemaError reports that one or more mapped columns are absent from a feed.
// It is fatal for the supplier's run and must reach the operator.
type SchemaError struct {
	Supplier  string
	Source    string
	Missing   []string
	Available []string
}

// Error implements the error interface
func (e *SchemaError) Error() string {
	subject := e.Source
	if e.Supplier != "" {
		subject = "supplier " + e.Supplier
	}
	if subject == "" {
		subject = "feed"
	}
	return fmt.Sprintf("schema error in %s: missing columns %s (have %s)",
		subject, quoteAll(e.Missing), quoteAll(e.Available))
}

// Is implements errors.Is support
func (e *SchemaError) Is(target error) bool {
	return target == ErrSchema
}

// NewSchemaError creates a new SchemaError
func NewSchemaError(supplier, source string, missing, available []string) *SchemaError {
	return &SchemaError{
		Supplier:  supplier,
		Source:    source,
		Missing:   missing,
		Available: available,
	}
}

// DataQualityWarning reports a finding such as duplicate join keys or
// duplicate product codes. Processing continues with best-effort retention.
type DataQualityWarning struct {
	Stage   string // normalize, floor, listings, orders, ledger
	Key     string
	Count   int
	Message string
}

// Error implements the error interface
func (e *DataQualityWarning) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("data quality warning in %s for %s: %s", e.Stage, e.Key, e.Message)
	}
	return fmt.Sprintf("data quality warning in %s: %s", e.Stage, e.Message)
}

// Is implements errors.Is support
func (e *DataQualityWarning) Is(target error) bool {
	return target == ErrDataQuality
}

// NewDataQualityWarning creates a new DataQualityWarning
func NewDataQualityWarning(stage, key string, count int, message string) *DataQualityWarning {
	return &DataQualityWarning{
		Stage:   stage,
		Key:     key,
		Count:   count,
		Message: message,
	}
}

// ConfigError represents a configuration error
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError
func NewConfigError(component, message string, err error) *ConfigError {
	return &ConfigError{
		Component: component,
		Message:   message,
		Err:       err,
	}
}

// ParseError represents an error when parsing data formats
type ParseError struct {
	Format  string // "csv", "xlsx", "yaml", etc.
	File    string
	Line    int
	Message string
	Err     error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.File != "" && e.Line > 0 {
		return fmt.Sprintf("parse error in %s at %s:%d: %s", e.Format, e.File, e.Line, e.Message)
	}
	if e.File != "" {
		return fmt.Sprintf("parse error in %s file %s: %s", e.Format, e.File, e.Message)
	}
	return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError creates a new ParseError
func NewParseError(format, file string, message string, err error) *ParseError {
	return &ParseError{
		Format:  format,
		File:    file,
		Message: message,
		Err:     err,
	}
}

// IOError represents an error during I/O operations
type IOError struct {
	Operation string // "read", "write", "create", "open", "glob"
	Path      string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("IO error during %s of %s: %s", e.Operation, e.Path, e.Message)
	}
	return fmt.Sprintf("IO error during %s: %s", e.Operation, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *IOError) Unwrap() error {
	return e.Err
}

// NewIOError creates a new IOError
func NewIOError(operation, path string, err error) *IOError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &IOError{
		Operation: operation,
		Path:      path,
		Message:   message,
		Err:       err,
	}
}

// ResourceError represents an error during resource operations
type ResourceError struct {
	Operation string // "load", "save", "open", "migrate"
	Resource  string // "ledger", "backorders", "inventory", "registry"
	ID        string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ResourceError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("failed to %s %s %s: %s", e.Operation, e.Resource, e.ID, e.Message)
	}
	return fmt.Sprintf("failed to %s %s: %s", e.Operation, e.Resource, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ResourceError) Unwrap() error {
	return e.Err
}

// NewResourceError creates a new ResourceError
func NewResourceError(operation, resource, id string, err error) *ResourceError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &ResourceError{
		Operation: operation,
		Resource:  resource,
		ID:        id,
		Message:   message,
		Err:       err,
	}
}

// Helper functions for error checking

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if an error is an already exists error
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsSourceUnavailable checks if an error marks an unavailable supplier feed
func IsSourceUnavailable(err error) bool {
	return errors.Is(err, ErrSourceUnavailable)
}

// IsSchemaError checks if an error is a column mapping mismatch
func IsSchemaError(err error) bool {
	return errors.Is(err, ErrSchema)
}

// IsDataQuality checks if an error is a data-quality warning
func IsDataQuality(err error) bool {
	return errors.Is(err, ErrDataQuality)
}

// IsCanceled checks if an error is a cancellation error
func IsCanceled(err error) bool {
	return errors.Is(err, ErrCanceled)
}

// IsTimeout checks if an error is a timeout error
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// Helper wrapping functions for common patterns

// WrapIO wraps an error as an IOError
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return NewIOError(operation, path, err)
}

// WrapResource wraps an error as a ResourceError
func WrapResource(operation, resource, id string, err error) error {
	if err == nil {
		return nil
	}
	return NewResourceError(operation, resource, id, err)
}

// WrapParse wraps an error as a ParseError
func WrapParse(format, file string, err error) error {
	if err == nil {
		return nil
	}
	return NewParseError(format, file, err.Error(), err)
}

// WrapSourceUnavailable wraps an error as a SourceUnavailableError.
// Errors that already carry ErrSourceUnavailable are returned unchanged.
func WrapSourceUnavailable(supplier, source string, err error) error {
	if err == nil {
		return nil
	}
	if IsSourceUnavailable(err) {
		return err
	}
	return NewSourceUnavailableError(supplier, source, err)
}

// Canceled wraps a context error so it matches ErrCanceled.
func Canceled(stage string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w during %s: %w", ErrCanceled, stage, err)
}

func quoteAll(values []string) string {
	if len(values) == 0 {
		return "[]"
	}
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = fmt.Sprintf("%q", v)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
