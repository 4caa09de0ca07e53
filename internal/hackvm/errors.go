package hackvm

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrHalt is the sentinel returned when the bootstrap's terminal marker is
// reached. It is a normal terminal state, not a fault.
var ErrHalt = errors.New("halt")

// ParseError reports a malformed line in a translation unit's VM text.
type ParseError struct {
	File string
	Line int
	Col  int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.File, e.Line, e.Col, e.Msg)
}

func newParseError(file string, line int, msg string, args ...any) error {
	return errors.WithStack(&ParseError{File: file, Line: line, Col: 1, Msg: fmt.Sprintf(msg, args...)})
}

// LinkError reports a problem resolving cross-unit references: an unknown
// call target, an unresolved branch label, a duplicate function name, or
// static-segment overflow.
type LinkError struct {
	Msg string
}

func (e *LinkError) Error() string {
	return "link: " + e.Msg
}

func newLinkError(msg string, args ...any) error {
	return errors.WithStack(&LinkError{Msg: fmt.Sprintf(msg, args...)})
}

// RuntimeError reports a fault raised while executing the instruction
// stream: an out-of-range memory access, division by zero, a negative
// sqrt operand, stack underflow, or an otherwise-unreachable opcode.
type RuntimeError struct {
	PC     int
	Reason string
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("runtime fault at pc=%d: %s", e.PC, e.Reason)
}

func newRuntimeError(pc int, reason string, args ...any) error {
	return errors.WithStack(&RuntimeError{PC: pc, Reason: fmt.Sprintf(reason, args...)})
}
