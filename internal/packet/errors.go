package packet

import (
	"errors"
	"fmt"

	"github.com/muurk/pktdecode/internal/bitstream"
)

// ErrorType represents the category of a decode or evaluation failure
type ErrorType int

const (
	// ErrTypeMalformedHex indicates a non-hex character in the input
	ErrTypeMalformedHex ErrorType = iota
	// ErrTypeUnderflow indicates a field read past the end of the bit stream
	ErrTypeUnderflow
	// ErrTypeLengthMismatch indicates children that do not exactly fill a
	// length-framed operator
	ErrTypeLengthMismatch
	// ErrTypeArity indicates an operator applied to the wrong number of operands
	ErrTypeArity
	// ErrTypeInvalidOperator indicates a type ID with no operator semantics
	ErrTypeInvalidOperator
	// ErrTypeOverflow indicates a value that does not fit in 64 bits
	ErrTypeOverflow
	// ErrTypeDepthExceeded indicates operator nesting beyond the parser limit
	ErrTypeDepthExceeded
	// ErrTypePadding indicates non-zero trailing bits under strict padding
	ErrTypePadding
	// ErrTypeTopLevel indicates a transmission without exactly one top-level packet
	ErrTypeTopLevel
	// ErrTypeUnknown indicates an unexpected error
	ErrTypeUnknown
)

// String returns a human-readable name for the error type
func (et ErrorType) String() string {
	switch et {
	case ErrTypeMalformedHex:
		return "Malformed Hex"
	case ErrTypeUnderflow:
		return "Underflow"
	case ErrTypeLengthMismatch:
		return "Length Mismatch"
	case ErrTypeArity:
		return "Arity Error"
	case ErrTypeInvalidOperator:
		return "Invalid Operator"
	case ErrTypeOverflow:
		return "Overflow"
	case ErrTypeDepthExceeded:
		return "Depth Exceeded"
	case ErrTypePadding:
		return "Padding Error"
	case ErrTypeTopLevel:
		return "Top-Level Error"
	case ErrTypeUnknown:
		return "Unknown Error"
	default:
		return fmt.Sprintf("ErrorType(%d)", et)
	}
}

// Code returns a stable snake_case identifier for the error type, used in
// machine-readable output.
func (et ErrorType) Code() string {
	switch et {
	case ErrTypeMalformedHex:
		return "malformed_hex"
	case ErrTypeUnderflow:
		return "underflow"
	case ErrTypeLengthMismatch:
		return "length_mismatch"
	case ErrTypeArity:
		return "arity"
	case ErrTypeInvalidOperator:
		return "invalid_operator"
	case ErrTypeOverflow:
		return "overflow"
	case ErrTypeDepthExceeded:
		return "depth_exceeded"
	case ErrTypePadding:
		return "padding"
	case ErrTypeTopLevel:
		return "top_level"
	default:
		return "unknown"
	}
}

// DecodeError describes a failure while decoding or evaluating packets.
// Offset is the bit offset the failure relates to.
type DecodeError struct {
	Type    ErrorType
	Message string
	Offset  int
	Err     error
}

// Error implements the error interface
func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s at bit %d: %s (caused by: %v)", e.Type, e.Offset, e.Message, e.Err)
	}
	return fmt.Sprintf("%s at bit %d: %s", e.Type, e.Offset, e.Message)
}

// Unwrap returns the underlying error for error chain inspection
func (e *DecodeError) Unwrap() error {
	return e.Err
}

func newError(et ErrorType, offset int, err error, format string, args ...any) *DecodeError {
	return &DecodeError{
		Type:    et,
		Message: fmt.Sprintf(format, args...),
		Offset:  offset,
		Err:     err,
	}
}

// cursorError classifies a bitstream failure while reading the named field.
func cursorError(err error, offset int, field string) error {
	var decErr *DecodeError
	if errors.As(err, &decErr) {
		return err
	}
	if errors.Is(err, bitstream.ErrUnderflow) {
		return newError(ErrTypeUnderflow, offset, err, "truncated %s", field)
	}
	return newError(ErrTypeUnknown, offset, err, "reading %s", field)
}

// TypeOf returns the category of err, or ErrTypeUnknown if err did not come
// from this package.
func TypeOf(err error) ErrorType {
	var decErr *DecodeError
	if errors.As(err, &decErr) {
		return decErr.Type
	}
	if errors.Is(err, bitstream.ErrMalformedHex) {
		return ErrTypeMalformedHex
	}
	if errors.Is(err, bitstream.ErrUnderflow) {
		return ErrTypeUnderflow
	}
	return ErrTypeUnknown
}

// IsType reports whether err is a DecodeError of the given type.
func IsType(err error, et ErrorType) bool {
	return err != nil && TypeOf(err) == et
}

// Troubleshooting returns hints for reporting err to a user.
func Troubleshooting(err error) []string {
	switch TypeOf(err) {
	case ErrTypeMalformedHex:
		return []string{
			"Input must contain only the digits 0-9 and A-F",
			"Remove any 0x prefix, spaces or separators",
		}
	case ErrTypeUnderflow:
		return []string{
			"The transmission ends in the middle of a packet",
			"Check that the whole line was copied",
		}
	case ErrTypeLengthMismatch:
		return []string{
			"An operator's declared bit length does not match its children",
		}
	case ErrTypeArity, ErrTypeInvalidOperator:
		return []string{
			"The packet tree decoded but is not a valid expression",
			"Use the decode command to inspect the tree",
		}
	case ErrTypeDepthExceeded:
		return []string{
			"Raise decoder.max_depth in the config file or pass --max-depth",
			"A limit of 0 turns the check off",
		}
	case ErrTypePadding:
		return []string{
			"Trailing bits after the last packet are not zero",
			"Disable strict padding to ignore them",
		}
	case ErrTypeTopLevel:
		return []string{
			"Expression evaluation needs exactly one top-level packet",
		}
	default:
		return nil
	}
}
