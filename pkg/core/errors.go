package core

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidRecord is matched by every *ValidationError via errors.Is.
var ErrInvalidRecord = errors.New("invalid record")

// ValidationError describes a malformed catalog record.
type ValidationError struct {
	Kind   string   // "dataset", "column", "lineage edge", "audit"
	Key    string   // record identity, may be empty when the key itself is missing
	Row    int      // 1-based position in its source, 0 when unknown
	Fields []string // one message per failing field
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString("invalid ")
	b.WriteString(e.Kind)
	if e.Key != "" {
		fmt.Fprintf(&b, " %q", e.Key)
	}
	if e.Row > 0 {
		fmt.Fprintf(&b, " (row %d)", e.Row)
	}
	if len(e.Fields) > 0 {
		b.WriteString(": ")
		b.WriteString(strings.Join(e.Fields, ", "))
	}
	return b.String()
}

// Is reports whether target is ErrInvalidRecord.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidRecord
}

// BatchError collects independent per-record failures from one batch.
type BatchError struct {
	Errors []error
}

func (e *BatchError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	msgs := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("%d invalid records: %s", len(e.Errors), strings.Join(msgs, "; "))
}

// Unwrap exposes the individual failures to errors.Is and errors.As.
func (e *BatchError) Unwrap() []error {
	return e.Errors
}

// WithRow stamps a row number onto a validation error.
func WithRow(err error, row int) error {
	var ve *ValidationError
	if errors.As(err, &ve) && ve.Row == 0 {
		ve.Row = row
	}
	return err
}
