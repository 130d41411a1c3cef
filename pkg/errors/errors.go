// Provide error wrapper with created locaion.
//
// Usage:
//
// ```
// wrapped := xe.Wrap(err)
// ```
//
// returns new error object wraps `err`.
//
// `wrapped` knows filename, line, and the name of function where itself is created.
//
// When you read message of this, replace
//
//	s/<-/\n/
//
// and it gives you "stacks" of where you marks.
package errors

import (
	"errors"
	"fmt"
	"runtime"
)

// Frame is the location where an error is wrapped.
type Frame struct {
	File     string
	Line     int
	Function string
}

func (f Frame) String() string {
	return fmt.Sprintf(`@ %s "%s" l%d`, f.Function, f.File, f.Line)
}

type ErrWithCaller struct {
	Frame
	note string
	err  error
}

func (e *ErrWithCaller) Error() string {
	if e.note == "" {
		return fmt.Sprintf(`%s <- %s`, e.Frame, e.err)
	}
	return fmt.Sprintf(`%s (%s) <- %s`, e.Frame, e.note, e.err)
}

func (e *ErrWithCaller) Unwrap() error {
	return e.err
}

// Note returns the note given with WrapWithNote.
func (e *ErrWithCaller) Note() string {
	return e.note
}

func New(text string) error {
	return wrap("", errors.New(text), 1)
}

func Wrap(err error) error {
	return wrap("", err, 1)
}

func WrapWithNote(note string, err error) error {
	return wrap(note, err, 1)
}

func caller(depth int) Frame {
	pc, file, line, ok := runtime.Caller(depth + 1)
	if !ok {
		return Frame{File: "?", Line: -1, Function: "(unknown func)"}
	}
	f := Frame{File: file, Line: line, Function: "(unknown func)"}
	if fn := runtime.FuncForPC(pc); fn != nil {
		f.Function = fn.Name()
	}
	return f
}

func wrap(note string, err error, depth int) error {
	if err == nil {
		return nil
	}
	return &ErrWithCaller{
		Frame: caller(depth + 1),
		note:  note,
		err:   err,
	}
}
