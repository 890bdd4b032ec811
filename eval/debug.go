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

// afterStep is called once per main-loop iteration, after evalOne returns
// and before the next PopReturn; it applies the step budget armed by
// SingleStep/StepOver/StepOut/MultipleSteps and reports whether the loop
// should stop here (spec.md §4.4 "Debugging").
func (e *Evaluator) afterStep() bool {
	if e.rt.StepBudget() > 0 {
		return e.rt.ConsumeStep()
	}
	return e.rt.Halted()
}

// SingleStep arms exactly one more step then halts.
func (e *Evaluator) SingleStep() { e.rt.SetStepBudget(1) }

// StepOver behaves like SingleStep at this evaluator's granularity: since
// program/control-flow bodies are deferred onto the shared return stack
// rather than a nested call, "stepping over" a call and "stepping into"
// it both land on the next return-stack pop, so StepOver and SingleStep
// coincide here. A future debugger UI that wants to distinguish them
// would need to track return-stack depth across the step.
func (e *Evaluator) StepOver() { e.rt.SetStepBudget(1) }

// StepOut runs until the return stack shrinks below its depth at the
// time of the call, or becomes empty.
func (e *Evaluator) StepOut() {
	target := e.rt.ReturnDepth() - 1
	e.rt.Resume()
	for e.rt.ReturnDepth() > target && !e.rt.Failed() {
		p, ok := e.rt.PopReturn()
		if !ok {
			break
		}
		e.evalOne(p)
	}
	e.rt.Halt()
}

// MultipleSteps arms n more steps then halts.
func (e *Evaluator) MultipleSteps(n int) { e.rt.SetStepBudget(n) }

// Continue clears the halted flag and runs to completion or the next
// halt/error.
func (e *Evaluator) Continue() error {
	e.rt.Resume()
	return e.loop(0)
}

// Kill empties the return stack, abandoning the program currently being
// single-stepped.
func (e *Evaluator) Kill() {
	for {
		if _, ok := e.rt.PopReturn(); !ok {
			break
		}
	}
	e.rt.Resume()
}

func evalSingleStep(m object.Machine, p heap.Pointer)    { withEvaluator(m, (*Evaluator).SingleStep) }
func evalStepOver(m object.Machine, p heap.Pointer)      { withEvaluator(m, (*Evaluator).StepOver) }
func evalStepOut(m object.Machine, p heap.Pointer)       { withEvaluator(m, (*Evaluator).StepOut) }
func evalKill(m object.Machine, p heap.Pointer)          { withEvaluator(m, (*Evaluator).Kill) }
func evalHalt(m object.Machine, p heap.Pointer) {
	if rt, ok := m.(*rtl.Runtime); ok {
		rt.Halt()
	}
}
func evalContinue(m object.Machine, p heap.Pointer) {
	if rt, ok := m.(*rtl.Runtime); ok {
		_ = New(rt).Continue()
	}
}
func evalMultipleSteps(m object.Machine, p heap.Pointer) {
	n := m.Pop()
	if m.Failed() {
		return
	}
	nv, ok := intArg(m, n)
	if !ok {
		return
	}
	if rt, ok := m.(*rtl.Runtime); ok {
		New(rt).MultipleSteps(int(nv))
	}
}
func evalDebug(m object.Machine, p heap.Pointer) {
	if rt, ok := m.(*rtl.Runtime); ok {
		rt.Halt()
	}
}

// withEvaluator builds a throwaway Evaluator bound to rt to invoke a
// debugger method; the evaluator holds no state of its own beyond the
// fields mirrored in Runtime (stepCount/halted), so this is cheap and
// always consistent with whatever Evaluator is driving the main loop.
func withEvaluator(m object.Machine, fn func(*Evaluator)) {
	rt, ok := m.(*rtl.Runtime)
	if !ok {
		return
	}
	fn(New(rt))
}

func init() {
	object.Register(object.SingleStep, object.Dispatch{Evaluate: evalSingleStep})
	object.Register(object.StepOver, object.Dispatch{Evaluate: evalStepOver})
	object.Register(object.StepOut, object.Dispatch{Evaluate: evalStepOut})
	object.Register(object.MultipleSteps, object.Dispatch{Evaluate: evalMultipleSteps, Arity: 1})
	object.Register(object.Continue, object.Dispatch{Evaluate: evalContinue})
	object.Register(object.Kill, object.Dispatch{Evaluate: evalKill})
	object.Register(object.Halt, object.Dispatch{Evaluate: evalHalt})
	object.Register(object.Debug, object.Dispatch{Evaluate: evalDebug})
}
