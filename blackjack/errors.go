package blackjack

import (
	"errors"
	"fmt"
)

var ErrDeckEmpty = errors.New("deck is empty")

// ValidationError reports a field value outside its allowed range.
type ValidationError struct {
	Field string
	Value any
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Value)
}

type Check string

const (
	CheckLength Check = "length"
	CheckCookie Check = "cookie"
	CheckType   Check = "type"
)

// ProtocolError reports a frame that failed one of the decode checks.
type ProtocolError struct {
	Message string
	Check   Check
	Got     uint64
	Want    uint64
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("%s: bad %s: got %#x, want %#x", e.Message, e.Check, e.Got, e.Want)
}

// ConnectionError reports that the peer closed or reset the connection.
type ConnectionError struct {
	Op  string
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection lost during %s: %s", e.Op, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

type TimeoutError struct {
	Op  string
	Err error
}

func (e *TimeoutError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s timed out", e.Op)
	}
	return fmt.Sprintf("%s timed out: %s", e.Op, e.Err)
}

func (e *TimeoutError) Unwrap() error { return e.Err }
