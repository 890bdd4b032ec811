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

// Package rtl is the runtime layer: the data and return stacks, the
// directory tree, the process-wide settings, and the single-slot error
// state that object.Machine exposes to command and control-flow
// implementations.
package rtl

import (
	"github.com/pkg/errors"

	"github.com/rpl48x/rpl48x/heap"
	"github.com/rpl48x/rpl48x/object"
)

const (
	defaultStackDepth = 256
	defaultReturnDepth = 256
)

// Option configures a Runtime at construction time, mirroring the
// functional-options shape the teacher uses for its VM instance.
type Option func(*Runtime)

// HeapSize sets the backing arena's size in bytes.
func HeapSize(n int) Option {
	return func(r *Runtime) { r.heap = heap.New(n) }
}

// StackDepth sets the initial capacity of the data stack; it is not a
// limit, since Push grows the stack as needed.
func StackDepth(n int) Option {
	return func(r *Runtime) { r.stack = make([]heap.Pointer, 0, n) }
}

// ReturnDepth sets the initial capacity of the return stack; it is not a
// limit, since Defer grows the stack as needed.
func ReturnDepth(n int) Option {
	return func(r *Runtime) { r.ret = make([]heap.Pointer, 0, n) }
}

// Runtime implements object.Machine. The data and return stacks are kept as
// native Go slices of heap.Pointer rather than byte ranges inside the arena
// (the teacher's vm.Instance keeps its data/address stacks as plain []Cell
// for the same reason: stack slots are fixed-width machine words, and a
// slice header already gives bounds-checked push/pop without hand-rolled
// byte encoding).
type Runtime struct {
	heap *heap.Arena

	stack []heap.Pointer
	ret   []heap.Pointer

	root *Directory
	cwd  *Directory

	settings Settings
	errSlot  ErrorSlot

	currentCommand string
	lastArgs       []heap.Pointer

	interrupted bool

	halted    bool
	stepCount int
}

// New builds a Runtime with the given options applied over sensible
// defaults (70K arena, stacks with an initial capacity of 256, an empty
// root directory named
// HOME).
func New(opts ...Option) *Runtime {
	r := &Runtime{}
	for _, opt := range opts {
		opt(r)
	}
	if r.heap == nil {
		r.heap = heap.New(heap.DefaultSize)
	}
	if r.stack == nil {
		r.stack = make([]heap.Pointer, 0, defaultStackDepth)
	}
	if r.ret == nil {
		r.ret = make([]heap.Pointer, 0, defaultReturnDepth)
	}
	r.root = newDirectory("HOME", nil)
	r.cwd = r.root
	r.settings = DefaultSettings()
	r.heap.SetRootProvider(r)
	return r
}

// Heap returns the backing arena.
func (r *Runtime) Heap() *heap.Arena { return r.heap }

// sizeOfFor adapts object.Size (which needs a Machine) to the
// heap.SizeOf callback shape the arena's allocator and collector expect.
func sizeOfFor(m object.Machine) heap.SizeOf {
	return func(_ []byte, p heap.Pointer) int { return object.Size(m, p) }
}

// Load copies an already-encoded object into the arena and returns a
// pointer to it, growing the heap and running the collector exactly as
// any other allocation would. Callers outside the rtl/eval packages (the
// CLI's file loader and REPL) use this to get parsed source onto the
// heap without reaching into the arena themselves.
func (r *Runtime) Load(encoded []byte) (heap.Pointer, error) {
	p, err := r.heap.Allocate(len(encoded), sizeOfFor(r))
	if err != nil {
		return 0, errors.Wrap(err, "load object")
	}
	copy(r.heap.Slice(p, p+heap.Pointer(len(encoded))), encoded)
	return p, nil
}

// Push pushes p onto the data stack.
func (r *Runtime) Push(p heap.Pointer) {
	r.stack = append(r.stack, p)
}

// Pop removes and returns the top of the data stack. Popping an empty
// stack sets the error slot to a "too few arguments" error (kept as an
// InternalError, since Kind has no dedicated entry) and returns the zero
// Pointer, matching
// the firmware's "underflow never panics, it sets the error slot" contract
// (spec.md §7).
func (r *Runtime) Pop() heap.Pointer {
	n := len(r.stack)
	if n == 0 {
		r.Fail(errors.New("too few arguments"))
		return 0
	}
	v := r.stack[n-1]
	r.stack = r.stack[:n-1]
	return v
}

// Top returns the top of the data stack without removing it.
func (r *Runtime) Top() heap.Pointer {
	if len(r.stack) == 0 {
		return 0
	}
	return r.stack[len(r.stack)-1]
}

// Depth returns the current data stack depth.
func (r *Runtime) Depth() int { return len(r.stack) }

// StackAt returns the object level deep on the stack, 0-based from the top.
func (r *Runtime) StackAt(level int) heap.Pointer {
	i := len(r.stack) - 1 - level
	if i < 0 || i >= len(r.stack) {
		r.Fail(errors.New("too few arguments"))
		return 0
	}
	return r.stack[i]
}

// SetStackAt overwrites the object level deep on the stack.
func (r *Runtime) SetStackAt(level int, p heap.Pointer) {
	i := len(r.stack) - 1 - level
	if i < 0 || i >= len(r.stack) {
		r.Fail(errors.New("too few arguments"))
		return
	}
	r.stack[i] = p
}

// Drop removes the top n objects.
func (r *Runtime) Drop(n int) {
	if n > len(r.stack) {
		n = len(r.stack)
	}
	r.stack = r.stack[:len(r.stack)-n]
}

// Roll moves the object n levels deep to the top.
func (r *Runtime) Roll(n int) {
	if n <= 0 || n >= len(r.stack) {
		return
	}
	i := len(r.stack) - 1 - n
	v := r.stack[i]
	copy(r.stack[i:], r.stack[i+1:])
	r.stack[len(r.stack)-1] = v
}

// Rolld moves the top object down to level n.
func (r *Runtime) Rolld(n int) {
	if n <= 0 || n >= len(r.stack) {
		return
	}
	i := len(r.stack) - 1 - n
	v := r.stack[len(r.stack)-1]
	copy(r.stack[i+1:], r.stack[i:len(r.stack)-1])
	r.stack[i] = v
}

// Args checks that at least n arguments are available, setting the error
// slot and reporting false otherwise. Commands call this once up front
// instead of repeating a depth check before every Pop.
func (r *Runtime) Args(n int) bool {
	if len(r.stack) < n {
		r.Fail(errors.New("too few arguments"))
		return false
	}
	r.lastArgs = append(r.lastArgs[:0], r.stack[len(r.stack)-n:]...)
	return true
}

// LastArgs returns the snapshot taken by the most recent successful Args
// call, used by commands that implement LastArg recall on error.
func (r *Runtime) LastArgs() []heap.Pointer { return r.lastArgs }

// Defer pushes p onto the return stack for the evaluator to pick up next,
// replacing what a recursive interpreter would do with a direct call
// (spec.md §6, the iterative evaluator's core mechanism).
func (r *Runtime) Defer(p heap.Pointer) {
	r.ret = append(r.ret, p)
}

// PopReturn removes and returns the top of the return stack, or 0 if
// empty. Used by the evaluator's main loop, not by commands.
func (r *Runtime) PopReturn() (heap.Pointer, bool) {
	n := len(r.ret)
	if n == 0 {
		return 0, false
	}
	v := r.ret[n-1]
	r.ret = r.ret[:n-1]
	return v, true
}

// ReturnDepth reports the current return stack depth.
func (r *Runtime) ReturnDepth() int { return len(r.ret) }

// Command records the name of the command currently executing, used by
// error messages and the debugger's stack trace.
func (r *Runtime) Command(name string) { r.currentCommand = name }

// CurrentCommand returns the name set by the most recent Command call.
func (r *Runtime) CurrentCommand() string { return r.currentCommand }

// Interrupt requests cooperative cancellation of the running program; the
// evaluator's main loop checks this between steps (spec.md §6.5).
func (r *Runtime) Interrupt() { r.interrupted = true }

// Interrupted reports and clears the pending interrupt flag.
func (r *Runtime) Interrupted() bool {
	v := r.interrupted
	r.interrupted = false
	return v
}

// Halt suspends the main loop after the current step completes (spec.md
// §4.4's debugger flag).
func (r *Runtime) Halt() { r.halted = true }

// Resume clears the halted flag, letting the main loop continue.
func (r *Runtime) Resume() { r.halted = false }

// Halted reports whether the evaluator should stay suspended.
func (r *Runtime) Halted() bool { return r.halted }

// SetStepBudget arms the loop to run n more steps before re-halting (used
// by SingleStep (n=1) and MultipleSteps(n)).
func (r *Runtime) SetStepBudget(n int) {
	r.stepCount = n
	r.halted = false
}

// StepBudget returns the remaining step budget armed by SetStepBudget.
func (r *Runtime) StepBudget() int { return r.stepCount }

// ConsumeStep decrements the step budget by one, halting the loop once it
// reaches zero. Returns true if the loop should halt after this step.
func (r *Runtime) ConsumeStep() bool {
	if r.stepCount <= 0 {
		return false
	}
	r.stepCount--
	if r.stepCount == 0 {
		r.halted = true
		return true
	}
	return false
}

// GCRoots implements heap.RootProvider: every live Temporaries pointer held
// in the data/return stacks, the last-Args snapshot, or a directory
// variable binding must survive a collection, even though the heap package
// cannot address a Go slice element or map value directly.
func (r *Runtime) GCRoots() []heap.Pointer {
	seen := make(map[heap.Pointer]bool)
	var out []heap.Pointer
	add := func(p heap.Pointer) {
		if seen[p] {
			return
		}
		seen[p] = true
		out = append(out, p)
	}
	for _, p := range r.stack {
		add(p)
	}
	for _, p := range r.ret {
		add(p)
	}
	for _, p := range r.lastArgs {
		add(p)
	}
	r.root.walkValues(add)
	return out
}

// GCRelocate rewrites every occurrence of old to new across the stacks, the
// last-Args snapshot, and every directory's variable bindings.
func (r *Runtime) GCRelocate(old, new heap.Pointer) {
	for i, p := range r.stack {
		if p == old {
			r.stack[i] = new
		}
	}
	for i, p := range r.ret {
		if p == old {
			r.ret[i] = new
		}
	}
	for i, p := range r.lastArgs {
		if p == old {
			r.lastArgs[i] = new
		}
	}
	r.root.relocateValues(old, new)
}

var _ object.Machine = (*Runtime)(nil)
var _ heap.RootProvider = (*Runtime)(nil)
