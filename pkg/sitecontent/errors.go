package sitecontent

import (
	"errors"
	"fmt"
	"strings"
)

// Error types
var (
	// ErrIndexOutOfRange indicates a list operation addressed a missing position
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrInvariantViolation indicates an operation would break a structural invariant
	ErrInvariantViolation = errors.New("invariant violation")

	// ErrValidation indicates a document failed completeness checks
	ErrValidation = errors.New("validation failed")

	// ErrUploadFailed indicates an upload operation failed
	ErrUploadFailed = errors.New("upload failed")

	// ErrPersistence indicates the document store rejected or failed a write
	ErrPersistence = errors.New("persistence failed")

	// ErrDocumentNotFound indicates a document was not found
	ErrDocumentNotFound = errors.New("document not found")

	// ErrUnknownCollection indicates a collection name is not registered
	ErrUnknownCollection = errors.New("unknown collection")

	// ErrObjectNotFound indicates a stored media object was not found
	ErrObjectNotFound = errors.New("object not found")
)

// IndexError reports an out-of-bounds list index.
type IndexError struct {
	Op    string
	Index int
	Len   int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("%s: index %d out of range [0,%d)", e.Op, e.Index, e.Len)
}

func (e *IndexError) Unwrap() error {
	return ErrIndexOutOfRange
}

// InvariantError reports an edit that was refused because it would leave the
// list or one of its blocks in an invalid shape.
type InvariantError struct {
	Op     string
	Reason string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

func (e *InvariantError) Unwrap() error {
	return ErrInvariantViolation
}

// BlockProblem describes one incomplete block.
type BlockProblem struct {
	Index  int       `json:"index"`
	Type   BlockType `json:"type,omitempty"`
	Field  string    `json:"field,omitempty"`
	Reason string    `json:"reason"`
}

// ValidationError lists every problem found in a document before submission.
type ValidationError struct {
	Problems []BlockProblem
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Problems))
	for _, p := range e.Problems {
		switch {
		case p.Field != "":
			parts = append(parts, fmt.Sprintf("%s: %s", p.Field, p.Reason))
		case p.Index < 0:
			parts = append(parts, p.Reason)
		default:
			parts = append(parts, fmt.Sprintf("block %d (%s): %s", p.Index, p.Type, p.Reason))
		}
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// UploadError represents a failed media submission for the block at Index.
type UploadError struct {
	Index int
	File  string
	Err   error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload of %q for block %d failed: %v", e.File, e.Index, e.Err)
}

// Unwrap exposes both the sentinel and the transport cause.
func (e *UploadError) Unwrap() []error {
	return []error{ErrUploadFailed, e.Err}
}

// PersistenceError represents a create/update/delete failure against the
// document store.
type PersistenceError struct {
	Collection string
	ID         string
	Op         string
	Err        error
}

func (e *PersistenceError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s on %s failed: %v", e.Op, e.Collection, e.Err)
	}
	return fmt.Sprintf("%s on %s/%s failed: %v", e.Op, e.Collection, e.ID, e.Err)
}

func (e *PersistenceError) Unwrap() []error {
	return []error{ErrPersistence, e.Err}
}

// StorageError represents an error related to blob storage operations
type StorageError struct {
	Backend string
	Key     string
	Op      string
	Err     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage operation %s failed for key %s on backend %s: %v", e.Op, e.Key, e.Backend, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func invariant(op, format string, args ...any) error {
	return &InvariantError{Op: op, Reason: fmt.Sprintf(format, args...)}
}

func checkIndex(op string, index, n int) error {
	if index < 0 || index >= n {
		return &IndexError{Op: op, Index: index, Len: n}
	}
	return nil
}
