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

// Package eval implements the iterative evaluator: the return-stack main
// loop, the control-flow constructs and their marker objects, the
// arithmetic/stack/directory commands, and the single-step debugger.
package eval

import (
	"github.com/rpl48x/rpl48x/heap"
	"github.com/rpl48x/rpl48x/object"
	"github.com/rpl48x/rpl48x/rtl"
)

// Evaluator drives one Runtime through the return-stack main loop
// described in spec.md §4.4. It holds no state of its own: the debugger
// flags (halted, step budget) and all evaluation state (stacks,
// directories, settings, error slot) live in the Runtime, so that a
// command implementation and a freshly constructed Evaluator always agree
// on whether the program is halted.
type Evaluator struct {
	rt *rtl.Runtime
}

// New returns an Evaluator driving rt.
func New(rt *rtl.Runtime) *Evaluator {
	return &Evaluator{rt: rt}
}

// Run defers p and runs the main loop to completion (or until halted or an
// error is set), returning the error from the runtime's slot, if any.
//
// p is protected for the duration of the run: it is always the lowest,
// first-allocated object in Temporaries for this evaluation, so rooting it
// here is what keeps every marker's embedded absolute pointer into it valid
// across a collection triggered by a later allocation (spec.md §3.3, §9).
func (e *Evaluator) Run(p heap.Pointer) error {
	return e.runToDepth(p, 0)
}

// runToDepth defers p and runs only until the return stack unwinds back to
// floor entries deep, rather than to empty. If the run fails, the entries
// it left above floor are discarded. evalProtected uses this to run
// a nested IFERR branch without draining statements the enclosing program
// deferred before the construct was reached, since both share the same
// Runtime's return stack (spec.md §4.4).
func (e *Evaluator) runToDepth(p heap.Pointer, floor int) error {
	root := e.rt.Heap().Protect(p)
	defer root.Release()
	e.rt.Defer(p)
	err := e.loop(floor)
	if e.rt.Failed() {
		// An error abandons whatever this run still had deferred.
		for e.rt.ReturnDepth() > floor {
			e.rt.PopReturn()
		}
	}
	return err
}

// RunPush evaluates p for a single data-stack-pushing step such as a REPL
// "evaluate this one object" request. It is the same as Run: p is deferred
// onto the return stack and the main loop runs it.
func (e *Evaluator) RunPush(p heap.Pointer) error {
	return e.Run(p)
}

// loop is the evaluator's core: pop the return stack, evaluate, repeat,
// stopping once the stack unwinds back down to floor entries. Exactly the
// shape of the firmware's "fetch one deferred object, dispatch on its tag,
// continue" loop (spec.md §4.4), generalized from the teacher's opcode
// switch (vm/run.go) to a per-tag function-pointer call.
func (e *Evaluator) loop(floor int) error {
	for {
		if e.rt.Halted() {
			return nil
		}
		if e.rt.Interrupted() {
			// Cancellation is not a failure: leave the error slot clear so
			// callers can distinguish "stopped" from "errored" (spec.md §5).
			return nil
		}
		if e.rt.ReturnDepth() <= floor {
			break
		}
		p, ok := e.rt.PopReturn()
		if !ok {
			break
		}
		e.evalOne(p)
		if e.rt.Failed() {
			break
		}
		if e.afterStep() {
			break
		}
	}
	if e.rt.Failed() {
		return e.rt.LastError()
	}
	return nil
}

// evalOne dispatches a single object by tag, exactly steps 1-5 of
// spec.md §4.4.
func (e *Evaluator) evalOne(p heap.Pointer) {
	ty := object.Type(e.rt, p)

	if ty == object.Symbol {
		e.evalSymbol(p)
		return
	}

	d := object.Handlers(ty)
	if d.Arity > 0 {
		if !e.rt.Args(d.Arity) {
			return
		}
	}
	e.rt.Command(ty.Name())
	if d.Evaluate != nil {
		d.Evaluate(e.rt, p)
		return
	}
	// No registered behaviour: self-representing default (push it back).
	e.rt.Push(p)
}

// evalSymbol implements step 5: recall the symbol's value and defer it,
// or fail with UndefinedNameError if nothing is bound.
func (e *Evaluator) evalSymbol(p heap.Pointer) {
	v := e.rt.Recall(p)
	if e.rt.Failed() {
		return
	}
	e.rt.Defer(v)
}

// deferProgram pushes a program/block's component objects onto the return
// stack in reverse order so the main loop evaluates them in forward
// source order next (spec.md §4.4 step 4).
func deferProgram(m object.Machine, p heap.Pointer) {
	payload := object.PayloadBytes(m, p)
	var offsets []int
	off := 0
	for off < len(payload) {
		offsets = append(offsets, off)
		off += object.Size(m, p+heap.Pointer(objectHeaderLen(m, p))+heap.Pointer(off))
	}
	for i := len(offsets) - 1; i >= 0; i-- {
		m.Defer(p + heap.Pointer(objectHeaderLen(m, p)) + heap.Pointer(offsets[i]))
	}
}

// objectHeaderLen returns the number of bytes occupied by tag+length for
// a length-prefixed object at p (tag size plus the LEB128 length field).
func objectHeaderLen(m object.Machine, p heap.Pointer) int {
	mem := m.Heap().Bytes(p)
	tagN := object.Skip(mem)
	_, lenN := object.ReadUint(mem[tagN:])
	return tagN + lenN
}

func init() {
	object.Register(object.Program, object.Dispatch{Evaluate: deferProgram})
	object.Register(object.Block, object.Dispatch{Evaluate: deferProgram})
}

// Interrupt requests cooperative cancellation; forwarded to the runtime so
// long-running numeric commands (out of scope here) and the main loop see
// the same flag.
func (e *Evaluator) Interrupt() { e.rt.Interrupt() }

// Halted reports whether the evaluator is currently suspended by the
// debugger between two deferred objects.
func (e *Evaluator) Halted() bool { return e.rt.Halted() }
