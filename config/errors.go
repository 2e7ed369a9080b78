package config

import (
	"errors"
	"fmt"
)

// Sentinel errors.
var (
	// ErrNotFound is returned for ids outside a record table.
	ErrNotFound = errors.New("config: record not found")

	// ErrTruncatedRecord is returned when a record reads past the end of its
	// bytes.
	ErrTruncatedRecord = errors.New("config: truncated record")

	// ErrUnknownOpcode is returned when a record contains an opcode its kind
	// does not define and the decoder policy is PolicyFail.
	ErrUnknownOpcode = errors.New("config: unknown opcode")

	// ErrCorruptTable is returned when a record table's offsets do not fit
	// its data.
	ErrCorruptTable = errors.New("config: corrupt record table")
)

// NotFoundError identifies a missing record.
type NotFoundError struct {
	Kind Kind
	ID   int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("config: %s %d not found", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// RecordError describes a failed record decode.
type RecordError struct {
	Kind Kind
	ID   int

	// Opcode is the opcode being decoded, or -1 when the opcode byte itself
	// was missing.
	Opcode int

	// Offset is the position of the opcode within the record bytes.
	Offset int

	// Err is ErrTruncatedRecord or ErrUnknownOpcode.
	Err error
}

func (e *RecordError) Error() string {
	if e.Opcode < 0 {
		return fmt.Sprintf("config: %s %d: %v at offset %d (missing opcode)", e.Kind, e.ID, e.Err, e.Offset)
	}
	return fmt.Sprintf("config: %s %d: %v (opcode %d at offset %d)", e.Kind, e.ID, e.Err, e.Opcode, e.Offset)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}
