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

package eval

import (
	"github.com/rpl48x/rpl48x/heap"
	"github.com/rpl48x/rpl48x/object"
	"github.com/rpl48x/rpl48x/rtl"
)

// Control-flow tags carry their branches as a fixed sequence of
// sub-objects in their payload (children()), exactly like a program, but
// their Evaluate does NOT defer all children at once: it defers a marker
// object alongside the pieces it needs evaluated first, so the marker can
// read the data-stack result and decide which remaining piece(s) to defer
// next. Markers are allocated fresh in Temporaries at evaluation time and
// have no textual form (spec.md §4.4's "anonymous marker objects"); the one
// exception is CaseEnd, which the parser appends to every Case payload.

// children splits a control-flow object's payload into its n immediate
// sub-objects, returning their absolute pointers.
func children(m object.Machine, p heap.Pointer, n int) []heap.Pointer {
	out := make([]heap.Pointer, 0, n)
	cur := p + heap.Pointer(objectHeaderLen(m, p))
	for i := 0; i < n; i++ {
		out = append(out, cur)
		cur = object.SkipObject(m, cur)
	}
	return out
}

// allocMarker builds a length-prefixed marker object of tag id whose
// payload is the LEB128 encoding of ptrs, and bump-allocates it into
// Temporaries.
func allocMarker(m object.Machine, id object.ID, ptrs ...heap.Pointer) heap.Pointer {
	var payload []byte
	for _, p := range ptrs {
		payload = object.WriteUint(payload, uint64(p))
	}
	encoded := object.Encode(id, payload)
	dst, err := m.Heap().Allocate(len(encoded), sizeOfFor(m))
	if err != nil {
		m.Fail(err)
		return 0
	}
	copy(m.Heap().Slice(dst, dst+heap.Pointer(len(encoded))), encoded)
	return dst
}

func sizeOfFor(m object.Machine) heap.SizeOf {
	return func(_ []byte, p heap.Pointer) int { return object.Size(m, p) }
}

// markerArgs decodes a marker object's LEB128-encoded pointer payload.
func markerArgs(m object.Machine, p heap.Pointer, n int) []heap.Pointer {
	payload := object.PayloadBytes(m, p)
	out := make([]heap.Pointer, n)
	off := 0
	for i := 0; i < n; i++ {
		v, w := object.ReadUint(payload[off:])
		out[i] = heap.Pointer(v)
		off += w
	}
	return out
}

// popBool reads and pops the top of the data stack as a truth value: any
// Integer other than 0 is true.
func popBool(m object.Machine) bool {
	p := m.Pop()
	if m.Failed() {
		return false
	}
	return object.DecodeInteger(m, p) != 0
}

func evalIfThen(m object.Machine, p heap.Pointer) {
	parts := children(m, p, 2)
	marker := allocMarker(m, object.Conditional, parts[1], 0)
	m.Defer(marker)
	m.Defer(parts[0])
}

func evalIfThenElse(m object.Machine, p heap.Pointer) {
	parts := children(m, p, 3)
	marker := allocMarker(m, object.Conditional, parts[1], parts[2])
	m.Defer(marker)
	m.Defer(parts[0])
}

func evalConditionalMarker(mm object.Machine, p heap.Pointer) {
	args := markerArgs(mm, p, 2)
	if popBool(mm) {
		mm.Defer(args[0])
	} else if args[1] != 0 {
		mm.Defer(args[1])
	}
}

func evalDoUntil(m object.Machine, p heap.Pointer) {
	parts := children(m, p, 2)
	marker := allocMarker(m, object.WhileConditional, parts[0], parts[1], 1)
	m.Defer(marker)
	m.Defer(parts[1])
	m.Defer(parts[0])
}

func evalWhileRepeat(m object.Machine, p heap.Pointer) {
	parts := children(m, p, 2) // [cond][body]
	marker := allocMarker(m, object.WhileConditional, parts[1], parts[0], 0)
	m.Defer(marker)
	m.Defer(parts[0])
}

// evalWhileConditionalMarker re-arms Do-Until/While-Repeat after one
// condition check. arg[2]==1 marks Do-Until (loop while condition is
// false); arg[2]==0 marks While-Repeat (loop while condition is true,
// body comes after the check).
func evalWhileConditionalMarker(mm object.Machine, p heap.Pointer) {
	args := markerArgs(mm, p, 3)
	body, cond, isDoUntil := args[0], args[1], args[2] == 1
	again := popBool(mm)
	if isDoUntil {
		again = !again
	}
	if !again {
		return
	}
	marker := allocMarker(mm, object.WhileConditional, body, cond, args[2])
	mm.Defer(marker)
	mm.Defer(cond)
	mm.Defer(body)
}

func evalStartNext(m object.Machine, p heap.Pointer) {
	parts := children(m, p, 1)
	runStartLoop(m, parts[0], nil, false)
}

func evalStartStep(m object.Machine, p heap.Pointer) {
	parts := children(m, p, 1)
	runStartLoop(m, parts[0], nil, true)
}

// runStartLoop implements Start-Next/Start-Step: the bounds were already
// pushed on the data stack by the parsed program preceding this object
// (`low high START ... NEXT`), so the low/high values are popped here once
// and the loop is driven entirely by the marker from then on.
func runStartLoop(m object.Machine, body heap.Pointer, _ []heap.Pointer, hasStep bool) {
	high := m.Pop()
	low := m.Pop()
	if m.Failed() {
		return
	}
	id := object.StartNextConditional
	if hasStep {
		id = object.StartStepConditional
	}
	marker := allocMarker(m, id, body, heap.Pointer(object.DecodeInteger(m, low)), heap.Pointer(object.DecodeInteger(m, high)))
	m.Defer(marker)
	m.Defer(body)
}

func evalStartNextConditionalMarker(m object.Machine, p heap.Pointer) {
	stepLoopMarker(m, p, false)
}

func evalStartStepConditionalMarker(m object.Machine, p heap.Pointer) {
	stepLoopMarker(m, p, true)
}

func stepLoopMarker(m object.Machine, p heap.Pointer, hasStep bool) {
	args := markerArgs(m, p, 3)
	body, low, high := args[0], int64(args[1]), int64(args[2])
	step := int64(1)
	if hasStep {
		s := m.Pop()
		if m.Failed() {
			return
		}
		step = object.DecodeInteger(m, s)
	}
	low += step
	if (step > 0 && low > high) || (step < 0 && low < high) {
		return
	}
	id := object.StartNextConditional
	if hasStep {
		id = object.StartStepConditional
	}
	marker := allocMarker(m, id, body, heap.Pointer(low), heap.Pointer(high))
	m.Defer(marker)
	m.Defer(body)
}

func evalForNext(m object.Machine, p heap.Pointer) {
	runForLoop(m, p, false)
}

func evalForStep(m object.Machine, p heap.Pointer) {
	runForLoop(m, p, true)
}

func runForLoop(m object.Machine, p heap.Pointer, hasStep bool) {
	parts := children(m, p, 2) // [local-name][body]
	name, body := parts[0], parts[1]
	high := m.Pop()
	low := m.Pop()
	if m.Failed() {
		return
	}
	m.Store(name, low)
	id := object.ForNextConditional
	if hasStep {
		id = object.ForStepConditional
	}
	marker := allocMarker(m, id, body, name, heap.Pointer(object.DecodeInteger(m, low)), heap.Pointer(object.DecodeInteger(m, high)))
	m.Defer(marker)
	m.Defer(body)
}

func evalForNextConditionalMarker(m object.Machine, p heap.Pointer) {
	forLoopMarker(m, p, false)
}

func evalForStepConditionalMarker(m object.Machine, p heap.Pointer) {
	forLoopMarker(m, p, true)
}

func forLoopMarker(m object.Machine, p heap.Pointer, hasStep bool) {
	args := markerArgs(m, p, 4)
	body, name := args[0], args[1]
	low, high := int64(args[2]), int64(args[3])
	step := int64(1)
	if hasStep {
		s := m.Pop()
		if m.Failed() {
			return
		}
		step = object.DecodeInteger(m, s)
	}
	low += step
	if (step > 0 && low > high) || (step < 0 && low < high) {
		return
	}
	encoded := object.EncodeInteger(low)
	dst, err := m.Heap().Allocate(len(encoded), sizeOfFor(m))
	if err != nil {
		m.Fail(err)
		return
	}
	copy(m.Heap().Slice(dst, dst+heap.Pointer(len(encoded))), encoded)
	m.Store(name, dst)
	id := object.ForNextConditional
	if hasStep {
		id = object.ForStepConditional
	}
	marker := allocMarker(m, id, body, name, heap.Pointer(low), heap.Pointer(high))
	m.Defer(marker)
	m.Defer(body)
}

// evalCase dispatches the first Case-When whose condition is true, in
// source order: a full Case object's payload is a flat sequence of CaseWhen
// clauses terminated by a CaseEnd sentinel (loop.go always appends one),
// and Case itself only ever defers the FIRST clause. Each CaseWhen decides
// at runtime, via its CaseSkip marker, whether to run its own branch or
// chain to whatever immediately follows it in memory — another CaseWhen,
// or the CaseEnd that ends the construct with nothing having matched.
func evalCase(m object.Machine, p heap.Pointer) {
	payload := object.PayloadBytes(m, p)
	if len(payload) == 0 {
		return
	}
	m.Defer(p + heap.Pointer(objectHeaderLen(m, p)))
}

// evalCaseWhen defers its own condition plus a CaseSkip marker that embeds
// the branch to run on a match and the sibling to chain to otherwise. The
// sibling is computed as "whatever object immediately follows this CaseWhen
// in memory" rather than being passed down from evalCase, since CaseWhen
// clauses are laid out contiguously in the Case's payload.
func evalCaseWhen(m object.Machine, p heap.Pointer) {
	parts := children(m, p, 2) // [condition][CaseThen]
	next := object.SkipObject(m, p)
	marker := allocMarker(m, object.CaseSkip, parts[1], next)
	m.Defer(marker)
	m.Defer(parts[0])
}

// evalCaseThen defers every statement of its branch in source order; the
// branch is not wrapped in a Program the way IF/WHILE/DO branches are
// because CaseThen is already its own container tag.
func evalCaseThen(m object.Machine, p heap.Pointer) {
	deferProgram(m, p)
}

// evalCaseSkip is CaseWhen's deferred decision point: on a true condition
// it runs this clause's branch; on false it chains to the next sibling
// (another CaseWhen, to try the next condition, or CaseEnd to stop).
func evalCaseSkip(m object.Machine, p heap.Pointer) {
	args := markerArgs(m, p, 2)
	thenBranch, next := args[0], args[1]
	if popBool(m) {
		m.Defer(thenBranch)
		return
	}
	if next != 0 {
		m.Defer(next)
	}
}

// evalCaseEnd is the terminator reached when no CaseWhen clause matched;
// there is nothing left to do.
func evalCaseEnd(m object.Machine, p heap.Pointer) {}

// evalIfErrThen[-Else] evaluates the protected branch immediately (via
// evalProtected's nested run); if the protected branch sets an error, the
// rest of that branch is abandoned, the error is cleared and the catch
// branch is deferred instead of propagating (spec.md §4.4's "IfErr-Then
// catches errors from the protected branch").
func evalIfErrThen(m object.Machine, p heap.Pointer) {
	parts := children(m, p, 2)
	evalProtected(m, parts[0], parts[1], 0)
}

func evalIfErrThenElse(m object.Machine, p heap.Pointer) {
	parts := children(m, p, 3)
	evalProtected(m, parts[0], parts[1], parts[2])
}

// evalProtected runs protected to completion right now, via a nested
// Evaluator sharing the same Runtime, rather than deferring it onto the
// shared return stack: IfErr needs to know whether the protected branch
// failed before deciding what to defer next, so it cannot simply let the
// outer loop reach it in turn. This is the one place evaluation recurses
// into the host call stack instead of staying iterative (spec.md §4.4's
// "failure semantics" carve-out for the error-catching construct).
//
// The nested run must not drain return-stack entries the enclosing program
// deferred before this IFERR was reached: it shares rt.ret with the caller,
// so the nested runToDepth stops as soon as the stack unwinds back to the
// depth it started at, rather than running until empty.
func evalProtected(m object.Machine, protected, onErr, onOK heap.Pointer) {
	rt, ok := m.(*rtl.Runtime)
	if !ok {
		m.Defer(protected)
		return
	}
	sub := New(rt)
	_ = sub.runToDepth(protected, rt.ReturnDepth())
	if rt.Failed() {
		rt.ClearError()
		if onErr != 0 {
			rt.Defer(onErr)
		}
		return
	}
	if onOK != 0 {
		rt.Defer(onOK)
	}
}

// controlFlowSize is the same length-prefixed shape the parser emits for
// every control-flow tag (object.Encode always writes tag+LEB128-length+
// payload); registered here rather than alongside object/encoding.go's
// table because that table only lists tags the object package itself
// knows the parsed shape of.
func controlFlowSize(m object.Machine, p heap.Pointer) int {
	mem := m.Heap().Bytes(p)
	tagN := object.Skip(mem)
	length, lenN := object.ReadUint(mem[tagN:])
	return tagN + lenN + int(length)
}

func init() {
	object.Register(object.IfThen, object.Dispatch{Evaluate: evalIfThen, Size: controlFlowSize})
	object.Register(object.IfThenElse, object.Dispatch{Evaluate: evalIfThenElse, Size: controlFlowSize})
	object.Register(object.DoUntil, object.Dispatch{Evaluate: evalDoUntil, Size: controlFlowSize})
	object.Register(object.WhileRepeat, object.Dispatch{Evaluate: evalWhileRepeat, Size: controlFlowSize})
	object.Register(object.StartNext, object.Dispatch{Evaluate: evalStartNext, Size: controlFlowSize})
	object.Register(object.StartStep, object.Dispatch{Evaluate: evalStartStep, Size: controlFlowSize})
	object.Register(object.ForNext, object.Dispatch{Evaluate: evalForNext, Size: controlFlowSize})
	object.Register(object.ForStep, object.Dispatch{Evaluate: evalForStep, Size: controlFlowSize})
	object.Register(object.Case, object.Dispatch{Evaluate: evalCase, Size: controlFlowSize})
	object.Register(object.CaseWhen, object.Dispatch{Evaluate: evalCaseWhen, Size: controlFlowSize})
	object.Register(object.CaseThen, object.Dispatch{Evaluate: evalCaseThen, Size: controlFlowSize})
	object.Register(object.IfErrThen, object.Dispatch{Evaluate: evalIfErrThen, Size: controlFlowSize})
	object.Register(object.IfErrThenElse, object.Dispatch{Evaluate: evalIfErrThenElse, Size: controlFlowSize})

	markers := []object.ID{
		object.CaseEnd, object.CaseSkip, object.Conditional, object.WhileConditional,
		object.StartNextConditional, object.StartStepConditional,
		object.ForNextConditional, object.ForStepConditional,
	}
	for _, id := range markers {
		object.Register(id, object.Dispatch{Size: markerSize})
	}
	object.Register(object.CaseEnd, object.Dispatch{Evaluate: evalCaseEnd})
	object.Register(object.CaseSkip, object.Dispatch{Evaluate: evalCaseSkip})
	object.Register(object.Conditional, object.Dispatch{Evaluate: evalConditionalMarker})
	object.Register(object.WhileConditional, object.Dispatch{Evaluate: evalWhileConditionalMarker})
	object.Register(object.StartNextConditional, object.Dispatch{Evaluate: evalStartNextConditionalMarker})
	object.Register(object.StartStepConditional, object.Dispatch{Evaluate: evalStartStepConditionalMarker})
	object.Register(object.ForNextConditional, object.Dispatch{Evaluate: evalForNextConditionalMarker})
	object.Register(object.ForStepConditional, object.Dispatch{Evaluate: evalForStepConditionalMarker})
}

// markerSize is the same length-prefixed shape as every structural
// object; markers are registered separately from object/encoding.go's
// list because that list only covers tags visible to the parser.
func markerSize(m object.Machine, p heap.Pointer) int {
	mem := m.Heap().Bytes(p)
	tagN := object.Skip(mem)
	length, lenN := object.ReadUint(mem[tagN:])
	return tagN + lenN + int(length)
}
