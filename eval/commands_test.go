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
	"testing"

	"github.com/rpl48x/rpl48x/object"
	"github.com/rpl48x/rpl48x/rtl"
)

func runCommand(t *testing.T, rt *rtl.Runtime, parts ...[]byte) error {
	t.Helper()
	p := loadForTest(t, rt, program(parts...))
	return New(rt).Run(p)
}

func TestArithmeticCommands(t *testing.T) {
	cases := []struct {
		name    string
		a, b    int64
		op      object.ID
		want    int64
	}{
		{"add", 3, 4, object.Add, 7},
		{"sub", 10, 3, object.Sub, 7},
		{"mul", 6, 7, object.Mul, 42},
		{"div", 20, 4, object.Div, 5},
		{"mod", 17, 5, object.Mod, 2},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			rt := rtl.New()
			if err := runCommand(t, rt, intObj(c.a), intObj(c.b), cmd(c.op)); err != nil {
				t.Fatalf("Run: %v", err)
			}
			if got := topInt(t, rt); got != c.want {
				t.Fatalf("%d %d %s = %d, want %d", c.a, c.b, c.op.Name(), got, c.want)
			}
		})
	}
}

func TestDivisionByZeroFails(t *testing.T) {
	rt := rtl.New()
	err := runCommand(t, rt, intObj(1), intObj(0), cmd(object.Div))
	if err == nil {
		t.Fatal("division by zero should fail")
	}
	if rt.LastError().Kind != rtl.ValueError {
		t.Fatalf("error kind = %v, want ValueError", rt.LastError().Kind)
	}
}

func TestRelationalAndLogicalCommands(t *testing.T) {
	cases := []struct {
		name string
		a, b int64
		op   object.ID
		want int64
	}{
		{"lt-true", 1, 2, object.Lt, 1},
		{"lt-false", 2, 1, object.Lt, 0},
		{"gt", 3, 2, object.Gt, 1},
		{"le-equal", 2, 2, object.Le, 1},
		{"ge-equal", 2, 2, object.Ge, 1},
		{"eq-true", 5, 5, object.Eq, 1},
		{"ne-true", 5, 6, object.Ne, 1},
		{"and-both-true", 1, 1, object.And, 1},
		{"and-one-false", 1, 0, object.And, 0},
		{"or-one-true", 0, 1, object.Or, 1},
		{"xor-differ", 1, 0, object.Xor, 1},
		{"xor-same", 1, 1, object.Xor, 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			rt := rtl.New()
			if err := runCommand(t, rt, intObj(c.a), intObj(c.b), cmd(c.op)); err != nil {
				t.Fatalf("Run: %v", err)
			}
			if got := topInt(t, rt); got != c.want {
				t.Fatalf("%d %s %d = %d, want %d", c.a, c.op.Name(), c.b, got, c.want)
			}
		})
	}
}

func TestNotInvertsTruthValue(t *testing.T) {
	rt := rtl.New()
	if err := runCommand(t, rt, intObj(0), cmd(object.Not)); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := topInt(t, rt); got != 1 {
		t.Fatalf("NOT 0 = %d, want 1", got)
	}
}

func TestDupDropSwapOverDepth(t *testing.T) {
	rt := rtl.New()
	if err := runCommand(t, rt, intObj(1), intObj(2), cmd(object.Swap)); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := topInt(t, rt); got != 1 {
		t.Fatalf("after SWAP, Top = %d, want 1", got)
	}
	if got := object.DecodeInteger(rt, rt.StackAt(1)); got != 2 {
		t.Fatalf("after SWAP, level 2 = %d, want 2", got)
	}

	rt = rtl.New()
	if err := runCommand(t, rt, intObj(1), intObj(2), cmd(object.Over)); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if rt.Depth() != 3 {
		t.Fatalf("Depth() after OVER = %d, want 3", rt.Depth())
	}
	if got := topInt(t, rt); got != 1 {
		t.Fatalf("after OVER, Top = %d, want 1", got)
	}

	rt = rtl.New()
	if err := runCommand(t, rt, intObj(5), cmd(object.Dup)); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if rt.Depth() != 2 {
		t.Fatalf("Depth() after DUP = %d, want 2", rt.Depth())
	}

	rt = rtl.New()
	if err := runCommand(t, rt, intObj(1), intObj(2), intObj(3), cmd(object.Drop), cmd(object.Depth)); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := topInt(t, rt); got != 2 {
		t.Fatalf("DEPTH after DROP = %d, want 2", got)
	}
}

func TestRollAndRolldCommands(t *testing.T) {
	rt := rtl.New()
	// 0 1 2 3 2 ROLL brings the object at level 2 (value 1) to the top.
	if err := runCommand(t, rt, intObj(0), intObj(1), intObj(2), intObj(3), intObj(2), cmd(object.Roll)); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if rt.Depth() != 4 {
		t.Fatalf("Depth() = %d, want 4", rt.Depth())
	}
	if got := topInt(t, rt); got != 1 {
		t.Fatalf("after ROLL, Top = %d, want 1", got)
	}

	p := loadForTest(t, rt, program(intObj(2), cmd(object.Rolld)))
	if err := New(rt).Run(p); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := object.DecodeInteger(rt, rt.StackAt(2)); got != 1 {
		t.Fatalf("after ROLLD, level 2 = %d, want 1", got)
	}
}

func TestStoRclPurge(t *testing.T) {
	rt := rtl.New()
	err := runCommand(t, rt,
		quoted("X"), intObj(42), cmd(object.Sto),
		quoted("X"), cmd(object.Rcl),
	)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := topInt(t, rt); got != 42 {
		t.Fatalf("RCL X = %d, want 42", got)
	}

	rt = rtl.New()
	err = runCommand(t, rt,
		quoted("X"), intObj(1), cmd(object.Sto),
		quoted("X"), cmd(object.Purge),
		quoted("X"), cmd(object.Rcl),
	)
	if err == nil {
		t.Fatal("RCL after PURGE should fail")
	}
	if rt.LastError().Kind != rtl.UndefinedNameError {
		t.Fatalf("error kind = %v, want UndefinedNameError", rt.LastError().Kind)
	}
}

func TestCrdirLeavesCurrentDirectoryUnchanged(t *testing.T) {
	rt := rtl.New()
	err := runCommand(t, rt, quoted("SUB"), cmd(object.Crdir))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if rt.Depth() != 0 {
		t.Fatalf("Depth() after CRDIR = %d, want 0", rt.Depth())
	}
	if err := runCommand(t, rt, cmd(object.Updir)); err == nil {
		t.Fatal("UPDIR at the root directory should fail")
	}
}

func TestStoreArithCommands(t *testing.T) {
	rt := rtl.New()
	err := runCommand(t, rt,
		quoted("X"), intObj(10), cmd(object.Sto),
		quoted("X"), intObj(5), cmd(object.StoreAdd),
		quoted("X"), cmd(object.Rcl),
	)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := topInt(t, rt); got != 15 {
		t.Fatalf("RCL X after STO+ = %d, want 15", got)
	}
}

func TestIncrementAndDecrement(t *testing.T) {
	rt := rtl.New()
	err := runCommand(t, rt,
		quoted("Y"), intObj(5), cmd(object.Sto),
		quoted("Y"), cmd(object.Increment),
		quoted("Y"), cmd(object.Increment),
		quoted("Y"), cmd(object.Decrement),
		quoted("Y"), cmd(object.Rcl),
	)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := topInt(t, rt); got != 6 {
		t.Fatalf("RCL Y after INCR INCR DECR = %d, want 6", got)
	}
}

func TestLastArgRestoresConsumedOperands(t *testing.T) {
	rt := rtl.New()
	err := runCommand(t, rt, intObj(3), intObj(4), cmd(object.Add), cmd(object.LastArg))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if rt.Depth() != 3 {
		t.Fatalf("Depth() = %d, want 3 (7, then the restored 3 4)", rt.Depth())
	}
	if got := topInt(t, rt); got != 4 {
		t.Fatalf("Top after LASTARG = %d, want 4", got)
	}
	if got := object.DecodeInteger(rt, rt.StackAt(1)); got != 3 {
		t.Fatalf("level 2 after LASTARG = %d, want 3", got)
	}
	if got := object.DecodeInteger(rt, rt.StackAt(2)); got != 7 {
		t.Fatalf("level 3 after LASTARG = %d, want 7", got)
	}
}
