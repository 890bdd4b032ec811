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

package heap

import "testing"

// fixedSizeOf treats every object as occupying a constant number of
// bytes, enough to exercise Allocate/Collect without needing the object
// package's real tag format.
func fixedSizeOf(n int) SizeOf {
	return func(_ []byte, _ Pointer) int { return n }
}

func TestNewDefaultsSize(t *testing.T) {
	a := New(0)
	if a.Len() != DefaultSize {
		t.Fatalf("Len() = %d, want %d", a.Len(), DefaultSize)
	}
}

func TestAllocateGrowsTemporaries(t *testing.T) {
	a := New(256)
	p1, err := a.Allocate(8, fixedSizeOf(8))
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	p2, err := a.Allocate(8, fixedSizeOf(8))
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if p2 != p1+8 {
		t.Fatalf("second allocation at %d, want %d", p2, p1+8)
	}
	if a.TemporariesEnd() != p2+8 {
		t.Fatalf("TemporariesEnd() = %d, want %d", a.TemporariesEnd(), p2+8)
	}
}

func TestAllocateOutOfMemory(t *testing.T) {
	a := New(32)
	_, err := a.Allocate(1024, fixedSizeOf(1024))
	if err != ErrOutOfMemory {
		t.Fatalf("Allocate() err = %v, want ErrOutOfMemory", err)
	}
}

func TestPushPopData(t *testing.T) {
	a := New(64)
	p, err := a.PushData(8)
	if err != nil {
		t.Fatalf("PushData: %v", err)
	}
	if p != Pointer(56) {
		t.Fatalf("PushData() = %d, want 56", p)
	}
	if a.DataTop() != p {
		t.Fatalf("DataTop() = %d, want %d", a.DataTop(), p)
	}
	a.PopData(8)
	if a.DataTop() != 64 {
		t.Fatalf("DataTop() after pop = %d, want 64", a.DataTop())
	}
}

func TestPushReturnBoundedByDataTop(t *testing.T) {
	a := New(64)
	if _, err := a.PushData(32); err != nil {
		t.Fatalf("PushData: %v", err)
	}
	if _, err := a.PushReturn(32); err != nil {
		t.Fatalf("PushReturn: %v", err)
	}
	if _, err := a.PushReturn(1); err != ErrOutOfMemory {
		t.Fatalf("PushReturn() err = %v, want ErrOutOfMemory", err)
	}
}

func TestRootLIFORelease(t *testing.T) {
	a := New(64)
	r1 := a.Protect(10)
	r2 := a.Protect(20)

	defer func() {
		if recover() == nil {
			t.Fatal("Release out of order did not panic")
		}
	}()
	_ = r2
	r1.Release()
}

func TestRootGetSet(t *testing.T) {
	a := New(64)
	r := a.Protect(5)
	defer r.Release()
	if r.Get() != 5 {
		t.Fatalf("Get() = %d, want 5", r.Get())
	}
	r.Set(6)
	if r.Get() != 6 {
		t.Fatalf("Get() after Set = %d, want 6", r.Get())
	}
}

// TestCollectCompactsUnreachableGapAndFixesRoots forces a collection with
// one unrooted object sandwiched between two rooted ones and checks that
// the gap is reclaimed and both roots still read back their live values
// afterwards, at their new (possibly relocated) address.
func TestCollectCompactsUnreachableGapAndFixesRoots(t *testing.T) {
	a := New(256)
	p1, err := a.Allocate(8, fixedSizeOf(8))
	if err != nil {
		t.Fatalf("Allocate p1: %v", err)
	}
	r1 := a.Protect(p1)
	defer r1.Release()

	if _, err := a.Allocate(8, fixedSizeOf(8)); err != nil {
		t.Fatalf("Allocate p2: %v", err)
	}

	p3, err := a.Allocate(8, fixedSizeOf(8))
	if err != nil {
		t.Fatalf("Allocate p3: %v", err)
	}
	r3 := a.Protect(p3)
	defer r3.Release()

	if before := a.TemporariesEnd(); before != 24 {
		t.Fatalf("TemporariesEnd() before Collect = %d, want 24", before)
	}

	a.Collect(fixedSizeOf(8))

	if got := a.TemporariesEnd(); got != 16 {
		t.Fatalf("TemporariesEnd() after Collect = %d, want 16 (one 8-byte gap reclaimed)", got)
	}
	if r1.Get() != 0 {
		t.Fatalf("r1.Get() = %d, want 0 (p1 was already lowest, unmoved)", r1.Get())
	}
	if r3.Get() != 8 {
		t.Fatalf("r3.Get() = %d, want 8 (slid down to close p2's gap)", r3.Get())
	}
}

// stubProvider is a minimal RootProvider used to exercise Collect's
// GCRelocate callback independently of rtl.Runtime.
type stubProvider struct{ p Pointer }

func (s *stubProvider) GCRoots() []Pointer { return []Pointer{s.p} }
func (s *stubProvider) GCRelocate(old, new Pointer) {
	if s.p == old {
		s.p = new
	}
}

func TestCollectRelocatesRootProviderPointers(t *testing.T) {
	a := New(256)
	if _, err := a.Allocate(8, fixedSizeOf(8)); err != nil {
		t.Fatalf("Allocate garbage: %v", err)
	}
	p2, err := a.Allocate(8, fixedSizeOf(8))
	if err != nil {
		t.Fatalf("Allocate p2: %v", err)
	}
	provider := &stubProvider{p: p2}
	a.SetRootProvider(provider)

	a.Collect(fixedSizeOf(8))

	if got := a.TemporariesEnd(); got != 8 {
		t.Fatalf("TemporariesEnd() after Collect = %d, want 8", got)
	}
	if provider.p != 0 {
		t.Fatalf("provider.p = %d, want 0 (p2 slid down to close the first allocation's gap)", provider.p)
	}
}

func TestEditorInsertRemove(t *testing.T) {
	a := New(256)
	a.Edit()
	if !a.Editing() {
		t.Fatal("Editing() = false after Edit()")
	}
	if err := a.InsertEditor(0, []byte("abc")); err != nil {
		t.Fatalf("InsertEditor: %v", err)
	}
	if got := string(a.Editor()); got != "abc" {
		t.Fatalf("Editor() = %q, want %q", got, "abc")
	}
	if err := a.InsertEditor(1, []byte("XY")); err != nil {
		t.Fatalf("InsertEditor: %v", err)
	}
	if got := string(a.Editor()); got != "aXYbc" {
		t.Fatalf("Editor() = %q, want %q", got, "aXYbc")
	}
	a.RemoveEditor(1, 2)
	if got := string(a.Editor()); got != "abc" {
		t.Fatalf("Editor() after remove = %q, want %q", got, "abc")
	}
	a.CloseEditor()
	if a.Editing() {
		t.Fatal("Editing() = true after CloseEditor()")
	}
}
