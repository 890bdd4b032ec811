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

import "github.com/rpl48x/rpl48x/heap"

// Renderer is the minimal surface the per-tag render functions need. The
// concrete implementation (lang.Renderer) tracks indentation and deferred
// whitespace; object only needs to be able to emit text and query the
// active target.
type Renderer interface {
	WriteString(s string)
	WriteRune(r rune)
	Indent()
	Unindent()
	WantSpace()
	WantCR()
	Target() int
}

// Render targets, spec.md §4.6.
const (
	TargetEditor = iota
	TargetDisplay
	TargetSymbolic
)

// Machine is the runtime surface that command and control-flow Evaluate
// implementations are written against (spec.md §6.3's "runtime API surface
// consumed by collaborators", generalized to cover evaluation itself). A
// concrete *rtl.Runtime implements it; defining the interface here (rather
// than in rtl) lets the dispatch table stay in this package without
// object importing rtl.
type Machine interface {
	Heap() *heap.Arena

	Push(p heap.Pointer)
	Pop() heap.Pointer
	Top() heap.Pointer
	StackAt(level int) heap.Pointer
	SetStackAt(level int, p heap.Pointer)
	Depth() int
	Drop(n int)
	Roll(n int)
	Rolld(n int)
	Args(n int) bool

	// Defer schedules p for evaluation on the return stack, replacing what
	// would otherwise be a recursive call (spec.md §4.4, §9).
	Defer(p heap.Pointer)

	Store(name, value heap.Pointer) bool
	Recall(name heap.Pointer) heap.Pointer
	Purge(name heap.Pointer) uint
	Enter(dir heap.Pointer) bool
	Updir() bool
	Variables(depth int) heap.Pointer

	Fail(err error)
	Failed() bool
	ClearError()
	Command(name string)
}

// SizeFn computes the size in bytes of the object starting at p.
type SizeFn func(m Machine, p heap.Pointer) int

// EvaluateFn runs an object's evaluation semantics.
type EvaluateFn func(m Machine, p heap.Pointer)

// RenderFn renders an object's text form, returning the size in bytes of
// the rendered object (object.Size), not the length of the text.
type RenderFn func(m Machine, p heap.Pointer, r Renderer) int

// HelpFn returns the help topic name for an object.
type HelpFn func(m Machine, p heap.Pointer) string

// GraphFn renders an object as a pixel graphic; nil for every tag this
// implementation carries (the blitter/grob collaborator is out of core
// scope, spec.md §1).
type GraphFn func(m Machine, p heap.Pointer) heap.Pointer

// InsertFn inserts an object into the editor at the cursor.
type InsertFn func(m Machine, p heap.Pointer) bool

// Dispatch is the per-tag operation table (spec.md §3.1/§4.2).
type Dispatch struct {
	Size       SizeFn
	Evaluate   EvaluateFn
	Render     RenderFn
	Help       HelpFn
	Graph      GraphFn
	Insert     InsertFn
	Arity      int
	Precedence int
}

var handlers [NumIDs]Dispatch

// Register installs the dispatch record for id, used by the object,
// eval and lang packages at init time to populate the shared table
// (spec.md §9 "Virtual dispatch via tag table": an array of function
// pointers indexed by tag, extendable without touching the dispatch
// mechanism itself).
func Register(id ID, d Dispatch) {
	cur := handlers[id]
	if d.Size != nil {
		cur.Size = d.Size
	}
	if d.Evaluate != nil {
		cur.Evaluate = d.Evaluate
	}
	if d.Render != nil {
		cur.Render = d.Render
	}
	if d.Help != nil {
		cur.Help = d.Help
	}
	if d.Graph != nil {
		cur.Graph = d.Graph
	}
	if d.Insert != nil {
		cur.Insert = d.Insert
	}
	if d.Arity != 0 {
		cur.Arity = d.Arity
	}
	if d.Precedence != 0 {
		cur.Precedence = d.Precedence
	}
	handlers[id] = cur
}

// Handlers returns the dispatch record for ty.
func Handlers(ty ID) Dispatch { return handlers[ty] }

// Type reads the tag at p without validating size; callers that need the
// invariant checked should go through Size, which panics on a corrupt
// table the way the firmware's object_error would report it.
func Type(m Machine, p heap.Pointer) ID {
	v, _ := ReadUint(m.Heap().Bytes(p))
	return ID(v)
}

// TagSize reports the number of bytes the leading tag occupies at p.
func TagSize(m Machine, p heap.Pointer) int {
	return Skip(m.Heap().Bytes(p))
}

// Size returns the total size in bytes of the object at p, by dispatching
// on its tag (spec.md §3.1 `size(obj)`).
func Size(m Machine, p heap.Pointer) int {
	ty := Type(m, p)
	if fn := handlers[ty].Size; fn != nil {
		return fn(m, p)
	}
	return TagSize(m, p)
}

// SkipObject returns the pointer to the next object in memory.
func SkipObject(m Machine, p heap.Pointer) heap.Pointer {
	return p + heap.Pointer(Size(m, p))
}

// Payload returns the offset of the first payload byte after the tag.
func Payload(m Machine, p heap.Pointer) heap.Pointer {
	return p + heap.Pointer(TagSize(m, p))
}

func init() {
	// Generic defaults: every tag with no payload beyond the id (the
	// commands) just occupies its tag's LEB128 width. Tags with their own
	// payload shape (the length-prefixed structural tags, Integer, and the
	// control-flow tags and markers, whose Size eval registers) set their
	// own Size in their own init() and must not be clobbered here; since Go runs a package's
	// init() functions in file-name order, this loop only fills in tags
	// still unset rather than assuming it runs first.
	for ty := ObjectID; ty < NumIDs; ty++ {
		if handlers[ty].Size != nil {
			continue
		}
		Register(ty, Dispatch{
			Size: func(m Machine, p heap.Pointer) int { return TagSize(m, p) },
		})
	}
	for ty := ID(0); ty < numSelfRepresenting; ty++ {
		Register(ty, Dispatch{
			Evaluate: func(m Machine, p heap.Pointer) { m.Push(p) },
		})
	}
}

// RequiredMemory computes the size a fresh object of tag id with the given
// payload length will occupy once encoded (tag + LEB128 size + payload),
// mirroring object::required_memory / text::required_memory.
func RequiredMemory(id ID, payloadLen int) int {
	return SizeUint(uint64(id)) + SizeUint(uint64(payloadLen)) + payloadLen
}

// EncodeTag returns the plain tag encoding for a zero-payload object
// (a command; control-flow tags and markers are length-prefixed and use
// Encode): just the LEB128 id, with no
// length field, since the tag's own dispatch record already knows its
// fixed size.
func EncodeTag(id ID) []byte {
	return WriteUint(nil, uint64(id))
}

// WriteHeader writes the tag and size prefix for a payload of length n at
// dst[0:], returning the slice extended by the header (caller appends the
// payload after).
func WriteHeader(dst []byte, id ID, n int) []byte {
	dst = WriteUint(dst, uint64(id))
	dst = WriteUint(dst, uint64(n))
	return dst
}
