package mutate

import (
	"errors"
	"fmt"
)

// Contract errors. These signal a caller bug (an index or name that was not
// taken from the current document), not a user input problem.
var (
	// ErrIndexOutOfRange is wrapped by every *IndexError.
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrModelNotFound is returned when an operation names a missing model.
	ErrModelNotFound = errors.New("model not found")

	// ErrUnknownOp is returned when decoding an unregistered op name.
	ErrUnknownOp = errors.New("unknown op")
)

// IndexError reports an index outside the bounds of a document collection.
type IndexError struct {
	Collection string // e.g. "endpoints", "schema.User.fields"
	Index      int
	Len        int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("%s[%d]: index out of range (len %d)", e.Collection, e.Index, e.Len)
}

func (e *IndexError) Unwrap() error {
	return ErrIndexOutOfRange
}

// DecodeError reports op arguments that could not be decoded.
type DecodeError struct {
	Op  string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Op, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// IsContractError reports whether err is an out-of-range index or a missing model.
func IsContractError(err error) bool {
	return errors.Is(err, ErrIndexOutOfRange) || errors.Is(err, ErrModelNotFound)
}

func checkIndex(collection string, index, length int) error {
	if index < 0 || index >= length {
		return &IndexError{Collection: collection, Index: index, Len: length}
	}
	return nil
}

func modelNotFound(name string) error {
	return fmt.Errorf("%w: %q", ErrModelNotFound, name)
}
