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

// pushInt allocates and pushes a fresh Integer object carrying v.
func pushInt(m object.Machine, v int64) {
	encoded := object.EncodeInteger(v)
	p, err := m.Heap().Allocate(len(encoded), sizeOfFor(m))
	if err != nil {
		m.Fail(err)
		return
	}
	copy(m.Heap().Slice(p, p+heap.Pointer(len(encoded))), encoded)
	m.Push(p)
}

func intArg(m object.Machine, p heap.Pointer) (int64, bool) {
	if object.Type(m, p) != object.Integer {
		m.Fail(rtl.NewTypeError())
		return 0, false
	}
	return object.DecodeInteger(m, p), true
}

// binaryInt implements a two-argument integer arithmetic/relational
// command: pop b then a (a was pushed first), apply fn, push the result.
func binaryInt(fn func(a, b int64) int64) object.EvaluateFn {
	return func(m object.Machine, _ heap.Pointer) {
		b := m.Pop()
		a := m.Pop()
		if m.Failed() {
			return
		}
		av, ok1 := intArg(m, a)
		bv, ok2 := intArg(m, b)
		if !ok1 || !ok2 {
			return
		}
		pushInt(m, fn(av, bv))
	}
}

// relational wraps a bool predicate as a 0/1 Integer-producing command.
func relational(fn func(a, b int64) bool) object.EvaluateFn {
	return binaryInt(func(a, b int64) int64 {
		if fn(a, b) {
			return 1
		}
		return 0
	})
}

func evalAdd(m object.Machine, p heap.Pointer)    { binaryInt(func(a, b int64) int64 { return a + b })(m, p) }
func evalSub(m object.Machine, p heap.Pointer)    { binaryInt(func(a, b int64) int64 { return a - b })(m, p) }
func evalMul(m object.Machine, p heap.Pointer)    { binaryInt(func(a, b int64) int64 { return a * b })(m, p) }
func evalDiv(m object.Machine, p heap.Pointer) {
	b := m.Pop()
	a := m.Pop()
	if m.Failed() {
		return
	}
	av, ok1 := intArg(m, a)
	bv, ok2 := intArg(m, b)
	if !ok1 || !ok2 {
		return
	}
	if bv == 0 {
		m.Fail(rtl.NewValueError())
		return
	}
	pushInt(m, av/bv)
}
func evalMod(m object.Machine, p heap.Pointer) {
	b := m.Pop()
	a := m.Pop()
	if m.Failed() {
		return
	}
	av, ok1 := intArg(m, a)
	bv, ok2 := intArg(m, b)
	if !ok1 || !ok2 {
		return
	}
	if bv == 0 {
		m.Fail(rtl.NewValueError())
		return
	}
	pushInt(m, av%bv)
}

func evalLt(m object.Machine, p heap.Pointer) { relational(func(a, b int64) bool { return a < b })(m, p) }
func evalGt(m object.Machine, p heap.Pointer) { relational(func(a, b int64) bool { return a > b })(m, p) }
func evalLe(m object.Machine, p heap.Pointer) { relational(func(a, b int64) bool { return a <= b })(m, p) }
func evalGe(m object.Machine, p heap.Pointer) { relational(func(a, b int64) bool { return a >= b })(m, p) }
func evalEq(m object.Machine, p heap.Pointer) { relational(func(a, b int64) bool { return a == b })(m, p) }
func evalNe(m object.Machine, p heap.Pointer) { relational(func(a, b int64) bool { return a != b })(m, p) }
func evalAnd(m object.Machine, p heap.Pointer) {
	relational(func(a, b int64) bool { return a != 0 && b != 0 })(m, p)
}
func evalOr(m object.Machine, p heap.Pointer) {
	relational(func(a, b int64) bool { return a != 0 || b != 0 })(m, p)
}
func evalXor(m object.Machine, p heap.Pointer) {
	relational(func(a, b int64) bool { return (a != 0) != (b != 0) })(m, p)
}
func evalNot(m object.Machine, p heap.Pointer) {
	a := m.Pop()
	if m.Failed() {
		return
	}
	av, ok := intArg(m, a)
	if !ok {
		return
	}
	if av == 0 {
		pushInt(m, 1)
	} else {
		pushInt(m, 0)
	}
}

// --- stack manipulation ---

func evalDup(m object.Machine, p heap.Pointer) {
	v := m.Top()
	if m.Failed() {
		return
	}
	m.Push(v)
}

func evalDrop(m object.Machine, p heap.Pointer) { m.Pop() }

func evalSwap(m object.Machine, p heap.Pointer) {
	b := m.Pop()
	a := m.Pop()
	if m.Failed() {
		return
	}
	m.Push(b)
	m.Push(a)
}

func evalOver(m object.Machine, p heap.Pointer) {
	v := m.StackAt(1)
	if m.Failed() {
		return
	}
	m.Push(v)
}

func evalRoll(m object.Machine, p heap.Pointer) {
	n := m.Pop()
	if m.Failed() {
		return
	}
	nv, ok := intArg(m, n)
	if !ok {
		return
	}
	m.Roll(int(nv))
}

func evalRolld(m object.Machine, p heap.Pointer) {
	n := m.Pop()
	if m.Failed() {
		return
	}
	nv, ok := intArg(m, n)
	if !ok {
		return
	}
	m.Rolld(int(nv))
}

func evalDepth(m object.Machine, p heap.Pointer) { pushInt(m, int64(m.Depth())) }

// --- directory/name ops ---

func evalSto(m object.Machine, p heap.Pointer) {
	v := m.Pop()
	name := m.Pop()
	if m.Failed() {
		return
	}
	m.Store(name, v)
}

func evalRcl(m object.Machine, p heap.Pointer) {
	name := m.Pop()
	if m.Failed() {
		return
	}
	m.Push(m.Recall(name))
}

func evalPurge(m object.Machine, p heap.Pointer) {
	name := m.Pop()
	if m.Failed() {
		return
	}
	m.Purge(name)
}

func evalUpdir(m object.Machine, p heap.Pointer) { m.Updir() }

func evalCrdir(m object.Machine, p heap.Pointer) {
	name := m.Pop()
	if m.Failed() {
		return
	}
	m.Enter(name)
	m.Updir()
}

// evalStoreArith implements STO+/STO-/STO*//STO/: name value STO+ adds
// value to the variable named by name, storing the result back.
func evalStoreArith(fn func(a, b int64) int64) object.EvaluateFn {
	return func(m object.Machine, _ heap.Pointer) {
		v := m.Pop()
		name := m.Pop()
		if m.Failed() {
			return
		}
		cur := m.Recall(name)
		if m.Failed() {
			return
		}
		cv, ok1 := intArg(m, cur)
		vv, ok2 := intArg(m, v)
		if !ok1 || !ok2 {
			return
		}
		encoded := object.EncodeInteger(fn(cv, vv))
		dst, err := m.Heap().Allocate(len(encoded), sizeOfFor(m))
		if err != nil {
			m.Fail(err)
			return
		}
		copy(m.Heap().Slice(dst, dst+heap.Pointer(len(encoded))), encoded)
		m.Store(name, dst)
	}
}

func evalIncrement(m object.Machine, p heap.Pointer) {
	name := m.Pop()
	if m.Failed() {
		return
	}
	cur := m.Recall(name)
	if m.Failed() {
		return
	}
	cv, ok := intArg(m, cur)
	if !ok {
		return
	}
	encoded := object.EncodeInteger(cv + 1)
	dst, err := m.Heap().Allocate(len(encoded), sizeOfFor(m))
	if err != nil {
		m.Fail(err)
		return
	}
	copy(m.Heap().Slice(dst, dst+heap.Pointer(len(encoded))), encoded)
	m.Store(name, dst)
}

func evalDecrement(m object.Machine, p heap.Pointer) {
	name := m.Pop()
	if m.Failed() {
		return
	}
	cur := m.Recall(name)
	if m.Failed() {
		return
	}
	cv, ok := intArg(m, cur)
	if !ok {
		return
	}
	encoded := object.EncodeInteger(cv - 1)
	dst, err := m.Heap().Allocate(len(encoded), sizeOfFor(m))
	if err != nil {
		m.Fail(err)
		return
	}
	copy(m.Heap().Slice(dst, dst+heap.Pointer(len(encoded))), encoded)
	m.Store(name, dst)
}

func evalLastArg(m object.Machine, p heap.Pointer) {
	rt, ok := m.(*rtl.Runtime)
	if !ok {
		return
	}
	for _, a := range rt.LastArgs() {
		m.Push(a)
	}
}

func init() {
	object.Register(object.Add, object.Dispatch{Evaluate: evalAdd, Arity: 2})
	object.Register(object.Sub, object.Dispatch{Evaluate: evalSub, Arity: 2})
	object.Register(object.Mul, object.Dispatch{Evaluate: evalMul, Arity: 2})
	object.Register(object.Div, object.Dispatch{Evaluate: evalDiv, Arity: 2})
	object.Register(object.Mod, object.Dispatch{Evaluate: evalMod, Arity: 2})
	object.Register(object.Lt, object.Dispatch{Evaluate: evalLt, Arity: 2})
	object.Register(object.Gt, object.Dispatch{Evaluate: evalGt, Arity: 2})
	object.Register(object.Le, object.Dispatch{Evaluate: evalLe, Arity: 2})
	object.Register(object.Ge, object.Dispatch{Evaluate: evalGe, Arity: 2})
	object.Register(object.Eq, object.Dispatch{Evaluate: evalEq, Arity: 2})
	object.Register(object.Ne, object.Dispatch{Evaluate: evalNe, Arity: 2})
	object.Register(object.And, object.Dispatch{Evaluate: evalAnd, Arity: 2})
	object.Register(object.Or, object.Dispatch{Evaluate: evalOr, Arity: 2})
	object.Register(object.Xor, object.Dispatch{Evaluate: evalXor, Arity: 2})
	object.Register(object.Not, object.Dispatch{Evaluate: evalNot, Arity: 1})

	object.Register(object.Dup, object.Dispatch{Evaluate: evalDup, Arity: 1})
	object.Register(object.Drop, object.Dispatch{Evaluate: evalDrop, Arity: 1})
	object.Register(object.Swap, object.Dispatch{Evaluate: evalSwap, Arity: 2})
	object.Register(object.Over, object.Dispatch{Evaluate: evalOver, Arity: 2})
	object.Register(object.Roll, object.Dispatch{Evaluate: evalRoll, Arity: 1})
	object.Register(object.Rolld, object.Dispatch{Evaluate: evalRolld, Arity: 1})
	object.Register(object.Depth, object.Dispatch{Evaluate: evalDepth})

	object.Register(object.Sto, object.Dispatch{Evaluate: evalSto, Arity: 2})
	object.Register(object.Rcl, object.Dispatch{Evaluate: evalRcl, Arity: 1})
	object.Register(object.Purge, object.Dispatch{Evaluate: evalPurge, Arity: 1})
	object.Register(object.Updir, object.Dispatch{Evaluate: evalUpdir})
	object.Register(object.Crdir, object.Dispatch{Evaluate: evalCrdir, Arity: 1})

	object.Register(object.StoreAdd, object.Dispatch{Evaluate: evalStoreArith(func(a, b int64) int64 { return a + b }), Arity: 2})
	object.Register(object.StoreSub, object.Dispatch{Evaluate: evalStoreArith(func(a, b int64) int64 { return a - b }), Arity: 2})
	object.Register(object.StoreMul, object.Dispatch{Evaluate: evalStoreArith(func(a, b int64) int64 { return a * b }), Arity: 2})
	object.Register(object.StoreDiv, object.Dispatch{Evaluate: evalStoreArith(func(a, b int64) int64 { return a / b }), Arity: 2})
	object.Register(object.RecallAdd, object.Dispatch{Evaluate: evalStoreArith(func(a, b int64) int64 { return a + b }), Arity: 2})
	object.Register(object.RecallSub, object.Dispatch{Evaluate: evalStoreArith(func(a, b int64) int64 { return a - b }), Arity: 2})
	object.Register(object.RecallMul, object.Dispatch{Evaluate: evalStoreArith(func(a, b int64) int64 { return a * b }), Arity: 2})
	object.Register(object.RecallDiv, object.Dispatch{Evaluate: evalStoreArith(func(a, b int64) int64 { return a / b }), Arity: 2})
	object.Register(object.Increment, object.Dispatch{Evaluate: evalIncrement, Arity: 1})
	object.Register(object.Decrement, object.Dispatch{Evaluate: evalDecrement, Arity: 1})
	object.Register(object.LastArg, object.Dispatch{Evaluate: evalLastArg})
}
