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

// Package object implements the tagged, self-delimiting object encoding
// shared by every runtime value, plus the dispatch table indexed by tag.
//
// The id set below is a closed, ordered enumeration. Ranges are kept
// contiguous on purpose: every type predicate (IsAlgebraic, IsCommand, ...)
// is a pair of integer comparisons, never a table lookup, exactly as the
// invariant in the specification requires.
package object

// ID identifies the type of an object. It is the value carried by the
// object's leading LEB128 tag.
type ID uint

const (
	ObjectID ID = iota // generic/default/error sentinel

	// --- algebraic numbers (contiguous: IsAlgebraicNumber) ---
	Integer
	Bignum
	Decimal
	Fraction
	Complex

	// --- symbolic (contiguous: IsSymbolic) ---
	Symbol
	Expression

	// --- list-like (contiguous with the above: IsAlgebraicOrList) ---
	List
	Array

	// --- extended algebraic (contiguous with the above: IsExtendedAlgebraic) ---
	Text

	// --- structural, non-algebraic self-representing objects ---
	Program
	Block
	Directory
	Comment

	numSelfRepresenting = Comment + 1

	// --- commands (arity-bearing, no payload beyond the tag) ---
	// Each group restarts from iota, less the alias lines declared so far,
	// so that the aliases above it do not become the repeated expression.
	Add ID = iota - 1
	Sub
	Mul
	Div
	Mod
	Dup
	Drop
	Swap
	Over
	Roll
	Rolld
	Depth
	Sto
	Rcl
	Purge
	PurgeAll
	Updir
	Home
	CurrentDirectory
	Crdir
	Lt
	Gt
	Le
	Ge
	Eq
	Ne
	And
	Or
	Xor
	Not
	SingleStep
	StepOver
	StepOut
	MultipleSteps
	Continue
	Kill
	Halt
	Debug
	LastArg
	StoreAdd
	StoreSub
	StoreMul
	StoreDiv
	RecallAdd
	RecallSub
	RecallMul
	RecallDiv
	Increment
	Decrement

	firstCommand = Add
	lastCommand  = Decrement

	// --- control-flow structures ---
	IfThen ID = iota - 3
	IfThenElse
	DoUntil
	WhileRepeat
	StartNext
	StartStep
	ForNext
	ForStep
	Case
	CaseThen
	CaseWhen
	IfErrThen
	IfErrThenElse

	firstControlFlow = IfThen
	lastControlFlow  = IfErrThenElse

	// --- internal, non-parseable markers (§4.4 "marker objects") ---
	CaseEnd ID = iota - 5
	CaseSkip
	Conditional
	WhileConditional
	StartNextConditional
	StartStepConditional
	ForNextConditional
	ForStepConditional

	firstMarker = CaseEnd
	lastMarker  = ForStepConditional

	NumIDs ID = iota - 7
)

func inRange(ty, lo, hi ID) bool { return ty >= lo && ty <= hi }

// IsAlgebraicNumber reports whether ty is a real or complex number.
func (ty ID) IsAlgebraicNumber() bool { return inRange(ty, Integer, Complex) }

// IsReal reports whether ty is a non-complex number.
func (ty ID) IsReal() bool { return inRange(ty, Integer, Fraction) }

// IsInteger reports whether ty is an exact integer (machine or big).
func (ty ID) IsInteger() bool { return inRange(ty, Integer, Bignum) }

// IsComplex reports whether ty is a complex number.
func (ty ID) IsComplex() bool { return ty == Complex }

// IsSymbolic reports whether ty is a symbol or an expression.
func (ty ID) IsSymbolic() bool { return inRange(ty, Symbol, Expression) }

// IsSymbolicArg reports whether ty denotes a symbolic argument: a symbol,
// expression or number.
func (ty ID) IsSymbolicArg() bool { return inRange(ty, Integer, Expression) }

// IsAlgebraic reports whether ty denotes an algebraic value or function.
func (ty ID) IsAlgebraic() bool { return inRange(ty, Integer, Expression) }

// IsAlgebraicOrList reports whether ty is algebraic, a list or an array.
func (ty ID) IsAlgebraicOrList() bool { return inRange(ty, Integer, Array) }

// IsExtendedAlgebraic additionally admits text.
func (ty ID) IsExtendedAlgebraic() bool { return inRange(ty, Integer, Text) }

// IsSelfRepresenting reports whether evaluating ty simply pushes it back on
// the data stack (the default object behaviour, spec.md §4.4 step 2).
func (ty ID) IsSelfRepresenting() bool { return ty < numSelfRepresenting }

// IsCommand reports whether ty is a zero-payload command.
func (ty ID) IsCommand() bool { return inRange(ty, firstCommand, lastCommand) }

// IsControlFlow reports whether ty is a control-flow structure.
func (ty ID) IsControlFlow() bool { return inRange(ty, firstControlFlow, lastControlFlow) }

// IsMarker reports whether ty is an internal, non-parseable marker object.
func (ty ID) IsMarker() bool { return inRange(ty, firstMarker, lastMarker) }

// IsDirectory reports whether ty is the (mutable) directory object.
func (ty ID) IsDirectory() bool { return ty == Directory }

// IsList reports whether ty is a list or an array.
func (ty ID) IsList() bool { return ty == List || ty == Array }

// IsProgram reports whether ty is a program or a bare block.
func (ty ID) IsProgram() bool { return ty == Program || ty == Block }

// names gives every id a short spelling (lower-case for the object types,
// upper-case or symbolic for commands and keywords), used by the renderer
// and the parser's keyword table. Unlike the firmware's dual short/fancy
// spelling table (spec.md §4.5 "spellings"), this implementation keeps one
// canonical spelling per id; case folding for lookup is a parser/settings
// concern, not an encoding concern.
var names = [NumIDs]string{
	ObjectID:   "object",
	Integer:    "integer",
	Bignum:     "bignum",
	Decimal:    "decimal",
	Fraction:   "fraction",
	Complex:    "complex",
	Symbol:     "symbol",
	Expression: "expression",
	List:       "list",
	Array:      "array",
	Text:       "text",
	Program:    "program",
	Block:      "block",
	Directory:  "directory",
	Comment:    "comment",

	Add: "+", Sub: "-", Mul: "*", Div: "/", Mod: "MOD",
	Dup: "DUP", Drop: "DROP", Swap: "SWAP", Over: "OVER",
	Roll: "ROLL", Rolld: "ROLLD", Depth: "DEPTH",
	Sto: "STO", Rcl: "RCL", Purge: "PURGE", PurgeAll: "PGDIR",
	Updir: "UPDIR", Home: "HOME", CurrentDirectory: "PATH", Crdir: "CRDIR",
	Lt: "<", Gt: ">", Le: "<=", Ge: ">=", Eq: "==", Ne: "!=",
	And: "AND", Or: "OR", Xor: "XOR", Not: "NOT",
	SingleStep: "SST", StepOver: "SSTOVER", StepOut: "SSTOUT",
	MultipleSteps: "NSTEPS", Continue: "CONTINUE", Kill: "KILL",
	Halt: "HALT", Debug: "DEBUG", LastArg: "LASTARG",
	StoreAdd: "STO+", StoreSub: "STO-", StoreMul: "STO*", StoreDiv: "STO/",
	RecallAdd: "RCL+", RecallSub: "RCL-", RecallMul: "RCL*", RecallDiv: "RCL/",
	Increment: "INCR", Decrement: "DECR",

	IfThen: "IF", IfThenElse: "IF", DoUntil: "DO", WhileRepeat: "WHILE",
	StartNext: "START", StartStep: "START", ForNext: "FOR", ForStep: "FOR",
	Case: "CASE", CaseThen: "THEN", CaseWhen: "WHEN",
	IfErrThen: "IFERR", IfErrThenElse: "IFERR",
}

// Name returns the canonical spelling for ty, or "" for internal markers
// that have no textual source form.
func (ty ID) Name() string {
	if int(ty) < len(names) {
		return names[ty]
	}
	return ""
}

func (ty ID) String() string {
	if n := ty.Name(); n != "" {
		return n
	}
	return "id#" + itoa(uint(ty))
}

func itoa(v uint) string {
	if v == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	return string(buf[i:])
}
