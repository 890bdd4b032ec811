// This file is part of rpl48x.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package rtl

import "github.com/pkg/errors"

// Kind classifies the single error slot the runtime carries at any one
// time (spec.md §7: one error is ever live; setting a new one replaces the
// old, evaluation of the rest of a program stops, and LastError reports
// it).
type Kind int

// The error kinds the evaluator, parser and commands can raise.
const (
	NoError Kind = iota
	TypeError
	ValueError
	IndexError
	DimensionError
	UndefinedNameError
	InvalidNameError
	UnterminatedError
	SyntaxError
	MissingVariableError
	ArgumentExpectedError
	PrefixExpectedError
	MalformedDirectoryError
	PurgeActiveDirectoryError
	InternalError
	ScreenshotCaptureError
	NoEquationError
	NoDataError
	InvalidEquationError
	InvalidPlotTypeError
	InvalidPlotDataError
	InvalidFunctionError
	InvalidStatsDataError
	InvalidStatsParametersError
)

var kindText = [...]string{
	NoError:                     "",
	TypeError:                   "bad argument type",
	ValueError:                  "bad argument value",
	IndexError:                  "index out of range",
	DimensionError:              "inconsistent dimensions",
	UndefinedNameError:          "undefined name",
	InvalidNameError:            "invalid name",
	UnterminatedError:           "unterminated",
	SyntaxError:                 "syntax error",
	MissingVariableError:        "missing variable",
	ArgumentExpectedError:       "argument expected",
	PrefixExpectedError:         "prefix expected",
	MalformedDirectoryError:     "malformed directory",
	PurgeActiveDirectoryError:   "cannot purge active directory",
	InternalError:               "internal error",
	ScreenshotCaptureError:      "screenshot capture error",
	NoEquationError:             "no current equation",
	NoDataError:                 "no current data",
	InvalidEquationError:        "invalid equation",
	InvalidPlotTypeError:        "invalid plot type",
	InvalidPlotDataError:        "invalid plot data",
	InvalidFunctionError:        "invalid function",
	InvalidStatsDataError:       "invalid statistics data",
	InvalidStatsParametersError: "invalid statistics parameters",
}

// Error is a typed runtime error carrying the kind, a message, and an
// optional source span for parser/syntax errors (spec.md §7's fluent
// setters, generalized to Go's error interface).
type Error struct {
	Kind    Kind
	Message string
	Source  string
	Start   int
	End     int
	cause   error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return kindText[e.Kind]
}

// Unwrap exposes the wrapped cause, if any, to errors.Is/As.
func (e *Error) Unwrap() error { return e.cause }

// WithSource attaches the source text span the error was raised from,
// fluent-setter style, mirroring the firmware's error::source(start,end).
func (e *Error) WithSource(source string, start, end int) *Error {
	e.Source = source
	e.Start = start
	e.End = end
	return e
}

func newError(kind Kind, cause error) *Error {
	return &Error{Kind: kind, Message: kindText[kind], cause: cause}
}

// Typed constructors, one per kind, so call sites read the same way the
// firmware's error.h macros do.
func NewTypeError() *Error                   { return newError(TypeError, nil) }
func NewValueError() *Error                  { return newError(ValueError, nil) }
func NewIndexError() *Error                  { return newError(IndexError, nil) }
func NewDimensionError() *Error              { return newError(DimensionError, nil) }
func NewUndefinedNameError() *Error          { return newError(UndefinedNameError, nil) }
func NewInvalidNameError() *Error            { return newError(InvalidNameError, nil) }
func NewUnterminatedError() *Error           { return newError(UnterminatedError, nil) }
func NewSyntaxError() *Error                 { return newError(SyntaxError, nil) }
func NewMissingVariableError() *Error        { return newError(MissingVariableError, nil) }
func NewArgumentExpectedError() *Error       { return newError(ArgumentExpectedError, nil) }
func NewPrefixExpectedError() *Error         { return newError(PrefixExpectedError, nil) }
func NewMalformedDirectoryError() *Error     { return newError(MalformedDirectoryError, nil) }
func NewPurgeActiveDirectoryError() *Error   { return newError(PurgeActiveDirectoryError, nil) }
func NewInternalError(cause error) *Error    { return newError(InternalError, cause) }
func NewScreenshotCaptureError() *Error      { return newError(ScreenshotCaptureError, nil) }
func NewNoEquationError() *Error             { return newError(NoEquationError, nil) }
func NewNoDataError() *Error                 { return newError(NoDataError, nil) }
func NewInvalidEquationError() *Error        { return newError(InvalidEquationError, nil) }
func NewInvalidPlotTypeError() *Error        { return newError(InvalidPlotTypeError, nil) }
func NewInvalidPlotDataError() *Error        { return newError(InvalidPlotDataError, nil) }
func NewInvalidFunctionError() *Error        { return newError(InvalidFunctionError, nil) }
func NewInvalidStatsDataError() *Error       { return newError(InvalidStatsDataError, nil) }
func NewInvalidStatsParametersError() *Error { return newError(InvalidStatsParametersError, nil) }

// Internal sentinel errors the directory navigation helpers raise; wrapped
// as InvalidNameError/UndefinedNameError/MalformedDirectoryError so callers
// outside this package only ever see the typed *Error form via Failed.
var (
	errInvalidName        = NewInvalidNameError()
	errUndefinedName      = NewUndefinedNameError()
	errMalformedDirectory = NewMalformedDirectoryError()
)

// ErrorSlot holds the single live error, spec.md §7.
type ErrorSlot struct {
	err *Error
}

// Fail sets the error slot. A plain error is wrapped as InternalError; a
// *rtl.Error (or anything wrapping one) is stored as-is so its Kind
// survives. Setting a new error always replaces whatever was there.
func (r *Runtime) Fail(err error) {
	if err == nil {
		return
	}
	var e *Error
	if !errors.As(err, &e) {
		e = NewInternalError(err)
	}
	r.errSlot.err = e
}

// Failed reports whether the error slot currently holds an error.
func (r *Runtime) Failed() bool { return r.errSlot.err != nil }

// ClearError empties the error slot (IfErr's clear-on-catch, and the
// REPL's clear-on-new-command).
func (r *Runtime) ClearError() { r.errSlot.err = nil }

// LastError returns the current error slot contents, or nil.
func (r *Runtime) LastError() *Error { return r.errSlot.err }
