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

// Package heap implements the single contiguous, region-partitioned arena
// and the precise compacting garbage collector that backs every runtime
// object. It knows nothing about object tags or payload layouts: callers
// supply a SizeOf function so that the collector can walk live regions
// without heap importing the object package.
package heap

import (
	"sort"

	"github.com/pkg/errors"
)

// Pointer is an offset from the start of the arena. The arena has no
// header, so Pointer(0) is a valid address: the first Temporaries
// allocation starts there. A few call sites use 0 to mean "none" in slots
// that can never hold that first object (e.g. an absent ELSE branch inside
// a control-flow marker, or the result returned alongside a failure).
type Pointer int

// Region identifies one of the arena's named regions, in the order they
// occupy memory from low to high address.
type Region int

const (
	Globals Region = iota
	Temporaries
	Editor
	Locals
	stackRegionCount
)

// DefaultSize is the reference hardware's working memory budget.
const DefaultSize = 70 * 1024

// SizeOf reports the size in bytes of the object starting at p. Supplied by
// the caller (the rtl/object layer) so that heap stays free of any
// knowledge of tags or payload formats.
type SizeOf func(mem []byte, p Pointer) int

// Root is a protected reference: a GC root that keeps one Pointer valid
// across a collection. Roots must be released in LIFO order, mirroring the
// single-linked GCSafe list of the original design.
type Root struct {
	arena *Arena
	prev  *Root
	next  *Root
	value Pointer
}

// Get returns the current (possibly relocated) value of the reference.
func (r *Root) Get() Pointer { return r.value }

// Set updates the value the root protects. Used after an allocation that
// the caller wants to keep alive under the same Root.
func (r *Root) Set(p Pointer) { r.value = p }

// Release deregisters the root. It must be called on every exit path
// (typically via defer) and only on the most-recently-protected root that
// has not yet been released.
func (r *Root) Release() {
	if r == nil || r.arena == nil {
		return
	}
	a := r.arena
	if a.roots != r {
		panic("heap: Root.Release called out of LIFO order")
	}
	a.roots = r.next
	if r.next != nil {
		r.next.prev = nil
	}
	r.arena = nil
}

// Arena is the single contiguous byte heap. Region boundaries are tracked
// as offsets; the data and return stacks grow down from the end of the
// arena, everything else grows up.
type Arena struct {
	mem []byte

	globalsEnd  Pointer
	tempEnd     Pointer
	editorStart Pointer
	editorEnd   Pointer
	localsEnd   Pointer
	dataTop     Pointer // exclusive lower bound of the data stack
	returnTop   Pointer // exclusive lower bound of the return stack

	roots    *Root
	provider RootProvider

	// editing tracks whether the editor scratchpad currently holds an
	// open buffer (Edit/Editor/CloseEditor/Editing, spec.md §4.3).
	editing bool
}

// New allocates an arena of the given size. Region pointers start out
// degenerate (every region empty) with the stacks anchored at the very end
// of the arena.
func New(size int) *Arena {
	if size <= 0 {
		size = DefaultSize
	}
	a := &Arena{mem: make([]byte, size)}
	a.globalsEnd = 0
	a.tempEnd = 0
	a.editorStart = 0
	a.editorEnd = 0
	a.localsEnd = 0
	a.dataTop = Pointer(size)
	a.returnTop = Pointer(size)
	return a
}

// Len returns the arena's total size in bytes.
func (a *Arena) Len() int { return len(a.mem) }

// Bytes exposes the raw backing storage starting at p. Callers use this to
// decode/encode object payloads; it must not be retained across any call
// that may allocate or collect.
func (a *Arena) Bytes(p Pointer) []byte { return a.mem[p:] }

// Slice returns the raw bytes between two offsets (exclusive of end).
func (a *Arena) Slice(p Pointer, end Pointer) []byte { return a.mem[p:end] }

// TemporariesEnd is the current bump-allocation pointer for Temporaries.
func (a *Arena) TemporariesEnd() Pointer { return a.tempEnd }

// GlobalsEnd is the end of the Globals region (start of Temporaries).
func (a *Arena) GlobalsEnd() Pointer { return a.globalsEnd }

// LocalsEnd is the end of the Locals region (start of free space).
func (a *Arena) LocalsEnd() Pointer { return a.localsEnd }

// DataTop is the lowest occupied address of the data stack.
func (a *Arena) DataTop() Pointer { return a.dataTop }

// ReturnTop is the lowest occupied address of the return stack.
func (a *Arena) ReturnTop() Pointer { return a.returnTop }

// Available reports whether n more bytes can be bump-allocated in
// Temporaries without colliding with the data stack.
func (a *Arena) Available(n int) bool {
	return int(a.dataTop-a.localsEnd) >= n
}

// ErrOutOfMemory is returned (and mirrored into the runtime's error slot by
// callers) when the allocator cannot satisfy a request even after GC.
var ErrOutOfMemory = errors.New("out of memory")

// Allocate bumps Temporaries by n bytes, running the collector first if
// necessary, and returns a pointer to the start of the new block.
func (a *Arena) Allocate(n int, sizeOf SizeOf) (Pointer, error) {
	if !a.Available(n) {
		a.Collect(sizeOf)
		if !a.Available(n) {
			return 0, ErrOutOfMemory
		}
	}
	p := a.tempEnd
	a.tempEnd += Pointer(n)
	// Temporaries grow into the gap below Editor; shift Editor/Locals up
	// by n so that the invariant "free space is the gap between Locals end
	// and the data stack top" keeps holding.
	a.shiftFrom(Editor, n)
	return p, nil
}

// shiftFrom moves every region at or above `from` up (delta>0) or down
// (delta<0) by delta bytes, updating boundary pointers. Allocate, Collect
// and InsertEditor use it; directories are Go maps (rtl.Directory) and do
// not go through it.
func (a *Arena) shiftFrom(from Region, delta int) {
	if delta == 0 {
		return
	}
	// Capture every boundary before mutating any of them: block two's
	// source range is [editorEnd, localsEnd) as they stood at entry, and
	// using the post-block-one editorEnd here would double-apply delta.
	oldEditorStart, oldEditorEnd, oldLocalsEnd := a.editorStart, a.editorEnd, a.localsEnd
	// Only Editor/Locals/stacks ever need physical shifting here because
	// Temporaries' own bump pointer already accounts for its own growth.
	if from <= Editor {
		copy(a.mem[int(oldEditorStart)+delta:int(oldEditorEnd)+delta], a.mem[oldEditorStart:oldEditorEnd])
		a.editorStart += Pointer(delta)
		a.editorEnd += Pointer(delta)
	}
	if from <= Locals {
		copy(a.mem[int(oldEditorEnd)+delta:int(oldLocalsEnd)+delta], a.mem[oldEditorEnd:oldLocalsEnd])
		a.localsEnd += Pointer(delta)
	}
}

// Protect registers p as a GC root and returns a handle that must be
// released (LIFO) once the pointer no longer needs to survive a
// collection.
func (a *Arena) Protect(p Pointer) *Root {
	r := &Root{arena: a, value: p}
	if a.roots != nil {
		a.roots.prev = r
	}
	r.next = a.roots
	a.roots = r
	return r
}

// MoveGlobals copies a block of bytes of the given length from src to dst
// (to dst+delta when delta is positive) within the Globals/Temporaries
// span. It only moves the bytes: no region boundary, root or other address
// is updated, and nothing in this module calls it.
func (a *Arena) MoveGlobals(dst, src Pointer, length, delta int) {
	if delta > 0 {
		copy(a.mem[int(dst)+delta:int(dst)+delta+length], a.mem[src:int(src)+length])
	} else {
		copy(a.mem[dst:int(dst)+length], a.mem[src:int(src)+length])
	}
	if int(dst) >= int(a.globalsEnd) {
		// caller is responsible for growing globalsEnd/tempEnd; MoveGlobals
		// only performs the byte shuffle.
		return
	}
}

// Collect runs the precise compacting collector: every live object reachable
// from a Root or the registered RootProvider is slid as low as possible
// within Temporaries, and every reference to it is rewritten to match. After
// Collect, Temporaries is one contiguous run starting at globalsEnd and
// everything above it (Editor, Locals) has been shifted down to close the
// gap that compaction reclaimed.
//
// Live spans may nest (a marker can hold a raw Pointer into the middle of
// an object that is also independently rooted, e.g. the loaded program), so
// roots are first reduced to distinct start addresses and processed in
// ascending order; a start address that falls inside a span already placed
// is mapped by offset instead of being copied again.
func (a *Arena) Collect(sizeOf SizeOf) {
	if sizeOf == nil {
		return
	}

	seen := make(map[Pointer]bool)
	var starts []Pointer
	addStart := func(p Pointer) {
		if p < a.globalsEnd || p >= a.tempEnd || seen[p] {
			return
		}
		seen[p] = true
		starts = append(starts, p)
	}

	for r := a.roots; r != nil; r = r.next {
		addStart(r.value)
	}
	var providerRoots []Pointer
	if a.provider != nil {
		providerRoots = a.provider.GCRoots()
		for _, p := range providerRoots {
			addStart(p)
		}
	}
	sort.Slice(starts, func(i, j int) bool { return starts[i] < starts[j] })

	type placedSpan struct{ start, end, newStart Pointer }
	var placed []placedSpan
	newStart := make(map[Pointer]Pointer, len(starts))
	oldTempEnd := a.tempEnd
	dst := a.globalsEnd

	for _, s := range starts {
		if s < dst {
			// Nested inside a span already placed: map by offset rather
			// than copying (and advancing dst) a second time.
			for _, pl := range placed {
				if s >= pl.start && s < pl.end {
					newStart[s] = pl.newStart + (s - pl.start)
					break
				}
			}
			continue
		}
		size := Pointer(sizeOf(a.mem, s))
		if s != dst {
			copy(a.mem[dst:dst+size], a.mem[s:s+size])
		}
		newStart[s] = dst
		placed = append(placed, placedSpan{start: s, end: s + size, newStart: dst})
		dst += size
	}

	a.tempEnd = dst
	a.shiftFrom(Editor, int(dst-oldTempEnd))

	for r := a.roots; r != nil; r = r.next {
		if ns, ok := newStart[r.value]; ok {
			r.value = ns
		}
	}
	if a.provider != nil {
		for _, old := range providerRoots {
			if ns, ok := newStart[old]; ok && ns != old {
				a.provider.GCRelocate(old, ns)
			}
		}
	}
}

// Editing reports whether the editor scratchpad currently holds an open
// buffer (spec.md §4.3 `editing()`).
func (a *Arena) Editing() bool { return a.editing }

// Edit opens the editor scratchpad for writing, returning its current
// extent.
func (a *Arena) Edit() (start, end Pointer) {
	a.editing = true
	if a.editorStart == 0 {
		a.editorStart = a.localsEnd
		a.editorEnd = a.localsEnd
	}
	return a.editorStart, a.editorEnd
}

// Editor returns the current editor buffer contents.
func (a *Arena) Editor() []byte {
	return a.mem[a.editorStart:a.editorEnd]
}

// CloseEditor commits and closes the scratchpad.
func (a *Arena) CloseEditor() {
	a.editing = false
}

// InsertEditor inserts bytes at offset within the editor buffer, growing
// Locals (and everything above it) by len(b).
func (a *Arena) InsertEditor(offset int, b []byte) error {
	n := len(b)
	if !a.Available(n) {
		return ErrOutOfMemory
	}
	at := a.editorStart + Pointer(offset)
	a.shiftFrom(Locals, n)
	copy(a.mem[int(at)+n:], a.mem[at:a.editorEnd])
	copy(a.mem[at:], b)
	a.editorEnd += Pointer(n)
	return nil
}

// RootProvider lets code outside the heap package contribute additional GC
// roots: live Temporaries pointers held in structures heap cannot address
// directly (Go slices and maps owned by the runtime layer), without heap
// importing those packages.
type RootProvider interface {
	// GCRoots returns every distinct live Pointer the provider currently
	// holds a reference to.
	GCRoots() []Pointer
	// GCRelocate is called once per live pointer whose object moved during
	// compaction, so the provider can rewrite every slot that held old to
	// new (a map value's address isn't stable, so Root-style in-place
	// rewriting doesn't reach it).
	GCRelocate(old, new Pointer)
}

// SetRootProvider registers the runtime-layer root source. Collect treats
// its roots exactly like Protect-registered ones.
func (a *Arena) SetRootProvider(p RootProvider) { a.provider = p }

// RemoveEditor deletes length bytes at offset within the editor buffer.
func (a *Arena) RemoveEditor(offset, length int) {
	at := a.editorStart + Pointer(offset)
	copy(a.mem[at:], a.mem[int(at)+length:a.editorEnd])
	a.editorEnd -= Pointer(length)
	a.localsEnd -= Pointer(length)
}

// PushData reserves n bytes at the top of the data stack (growing it
// downward) and returns the new top.
func (a *Arena) PushData(n int) (Pointer, error) {
	if !a.Available(n) {
		return 0, ErrOutOfMemory
	}
	a.dataTop -= Pointer(n)
	return a.dataTop, nil
}

// PopData releases n bytes from the top of the data stack.
func (a *Arena) PopData(n int) {
	a.dataTop += Pointer(n)
}

// PushReturn/PopReturn mirror PushData/PopData for the return stack, which
// sits below the data stack at the very end of the arena.
func (a *Arena) PushReturn(n int) (Pointer, error) {
	if int(a.returnTop-a.dataTop) < n {
		return 0, ErrOutOfMemory
	}
	a.returnTop -= Pointer(n)
	return a.returnTop, nil
}

func (a *Arena) PopReturn(n int) {
	a.returnTop += Pointer(n)
}
