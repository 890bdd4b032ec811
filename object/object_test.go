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

package object

import (
	"testing"

	"github.com/rpl48x/rpl48x/heap"
)

// stubMachine is the minimal Machine implementation object's own tests
// need: just enough heap access for Size/Type/Encode round trips, with
// every other method a harmless no-op. The real implementation lives in
// package rtl; object's tests stay independent of it so this package can
// be tested in isolation.
type stubMachine struct {
	h      *heap.Arena
	stack  []heap.Pointer
	failed error
}

func newStubMachine(size int) *stubMachine {
	return &stubMachine{h: heap.New(size)}
}

func (s *stubMachine) Heap() *heap.Arena { return s.h }
func (s *stubMachine) Push(p heap.Pointer) { s.stack = append(s.stack, p) }
func (s *stubMachine) Pop() heap.Pointer {
	n := len(s.stack)
	if n == 0 {
		return 0
	}
	v := s.stack[n-1]
	s.stack = s.stack[:n-1]
	return v
}
func (s *stubMachine) Top() heap.Pointer {
	if len(s.stack) == 0 {
		return 0
	}
	return s.stack[len(s.stack)-1]
}
func (s *stubMachine) StackAt(level int) heap.Pointer {
	i := len(s.stack) - 1 - level
	if i < 0 {
		return 0
	}
	return s.stack[i]
}
func (s *stubMachine) SetStackAt(level int, p heap.Pointer) {
	i := len(s.stack) - 1 - level
	if i >= 0 {
		s.stack[i] = p
	}
}
func (s *stubMachine) Depth() int { return len(s.stack) }
func (s *stubMachine) Drop(n int) {
	if n > len(s.stack) {
		n = len(s.stack)
	}
	s.stack = s.stack[:len(s.stack)-n]
}
func (s *stubMachine) Roll(n int)               {}
func (s *stubMachine) Rolld(n int)               {}
func (s *stubMachine) Args(n int) bool           { return len(s.stack) >= n }
func (s *stubMachine) Defer(p heap.Pointer)      {}
func (s *stubMachine) Store(name, value heap.Pointer) bool { return true }
func (s *stubMachine) Recall(name heap.Pointer) heap.Pointer { return 0 }
func (s *stubMachine) Purge(name heap.Pointer) uint { return 0 }
func (s *stubMachine) Enter(dir heap.Pointer) bool  { return true }
func (s *stubMachine) Updir() bool                  { return true }
func (s *stubMachine) Variables(depth int) heap.Pointer { return 0 }
func (s *stubMachine) Fail(err error) { s.failed = err }
func (s *stubMachine) Failed() bool   { return s.failed != nil }
func (s *stubMachine) ClearError()    { s.failed = nil }
func (s *stubMachine) Command(name string) {}

var _ Machine = (*stubMachine)(nil)

func allocate(t *testing.T, m *stubMachine, encoded []byte) heap.Pointer {
	t.Helper()
	p, err := m.h.Allocate(len(encoded), func(_ []byte, pp heap.Pointer) int { return Size(m, pp) })
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	copy(m.h.Slice(p, p+heap.Pointer(len(encoded))), encoded)
	return p
}

func TestIntegerRoundTrip(t *testing.T) {
	m := newStubMachine(256)
	cases := []int64{0, 1, -1, 127, 128, -128, 1<<40 - 1, -(1 << 40)}
	for _, v := range cases {
		p := allocate(t, m, EncodeInteger(v))
		if got := Type(m, p); got != Integer {
			t.Fatalf("Type(%d) = %v, want Integer", v, got)
		}
		if got := DecodeInteger(m, p); got != v {
			t.Fatalf("DecodeInteger round trip: got %d, want %d", got, v)
		}
	}
}

func TestSizeAndSkipObject(t *testing.T) {
	m := newStubMachine(256)
	p1 := allocate(t, m, EncodeInteger(42))
	p2 := allocate(t, m, Encode(Symbol, []byte("ABC")))

	if got := SkipObject(m, p1); got != p2 {
		t.Fatalf("SkipObject(integer) = %d, want %d", got, p2)
	}
	if got := Size(m, p2); got != len(Encode(Symbol, []byte("ABC"))) {
		t.Fatalf("Size(symbol) = %d, want %d", got, len(Encode(Symbol, []byte("ABC"))))
	}
}

func TestPayloadBytes(t *testing.T) {
	m := newStubMachine(256)
	p := allocate(t, m, Encode(Text, []byte("hello world")))
	if got := string(PayloadBytes(m, p)); got != "hello world" {
		t.Fatalf("PayloadBytes = %q, want %q", got, "hello world")
	}
}

func TestEncodeTagHasNoLengthField(t *testing.T) {
	enc := EncodeTag(Add)
	if len(enc) != SizeUint(uint64(Add)) {
		t.Fatalf("EncodeTag length = %d, want %d (tag only)", len(enc), SizeUint(uint64(Add)))
	}
}

func TestRequiredMemory(t *testing.T) {
	payload := []byte("xyz")
	got := RequiredMemory(Symbol, len(payload))
	want := len(Encode(Symbol, payload))
	if got != want {
		t.Fatalf("RequiredMemory = %d, want %d", got, want)
	}
}

func TestSelfRepresentingDefaultEvaluate(t *testing.T) {
	m := newStubMachine(256)
	p := allocate(t, m, EncodeInteger(7))
	d := Handlers(Integer)
	if d.Evaluate == nil {
		t.Fatal("Integer has no registered Evaluate")
	}
	d.Evaluate(m, p)
	if m.Depth() != 1 || m.Top() != p {
		t.Fatalf("self-representing Evaluate did not push itself: depth=%d top=%d", m.Depth(), m.Top())
	}
}

func TestRegisterDoesNotClobberUnsetFields(t *testing.T) {
	const probe ID = Add
	orig := Handlers(probe)
	Register(probe, Dispatch{Arity: 9})
	got := Handlers(probe)
	if got.Arity != 9 {
		t.Fatalf("Arity = %d, want 9", got.Arity)
	}
	if (got.Evaluate == nil) != (orig.Evaluate == nil) {
		t.Fatal("Register with a partial Dispatch clobbered Evaluate")
	}
	Register(probe, orig)
}

func TestIDPredicates(t *testing.T) {
	if !Integer.IsAlgebraicNumber() {
		t.Fatal("Integer should be an algebraic number")
	}
	if Symbol.IsAlgebraicNumber() {
		t.Fatal("Symbol should not be an algebraic number")
	}
	if !Expression.IsSymbolic() {
		t.Fatal("Expression should be symbolic")
	}
	if !Add.IsCommand() {
		t.Fatal("Add should be a command")
	}
	if Conditional.IsCommand() {
		t.Fatal("Conditional marker should not be a command")
	}
	if !IfThen.IsControlFlow() {
		t.Fatal("IfThen should be control flow")
	}
	if !Conditional.IsMarker() {
		t.Fatal("Conditional should be a marker")
	}
}
