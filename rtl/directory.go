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

package rtl

import (
	"github.com/rpl48x/rpl48x/heap"
	"github.com/rpl48x/rpl48x/object"
)

// Directory is a mutable, nested name->value scope (spec.md §3.4). The
// runtime keeps one tree of these rooted at HOME. The object.Directory tag
// (object/encoding.go) is registered as a length-prefixed object, but
// nothing converts this tree to or from that heap-resident form.
type Directory struct {
	name     string
	parent   *Directory
	vars     map[string]heap.Pointer
	children map[string]*Directory
	order    []string // insertion order of vars, for Variables
}

func newDirectory(name string, parent *Directory) *Directory {
	return &Directory{
		name:     name,
		parent:   parent,
		vars:     make(map[string]heap.Pointer),
		children: make(map[string]*Directory),
	}
}

// Name returns the directory's own name (not its full path).
func (d *Directory) Name() string { return d.name }

// Store binds name to value in the current directory, returning false if
// name is already a subdirectory (name collisions between variables and
// subdirectories are rejected, spec.md §3.4).
func (r *Runtime) Store(name, value heap.Pointer) bool {
	key := r.symbolName(name)
	if key == "" {
		r.Fail(errInvalidName)
		return false
	}
	if _, isDir := r.cwd.children[key]; isDir {
		r.Fail(errInvalidName)
		return false
	}
	if _, exists := r.cwd.vars[key]; !exists {
		r.cwd.order = append(r.cwd.order, key)
	}
	r.cwd.vars[key] = value
	return true
}

// Recall looks up name in the current directory, then each enclosing
// directory up to HOME, returning 0 (and setting UndefinedNameError) if
// not found anywhere on the path.
func (r *Runtime) Recall(name heap.Pointer) heap.Pointer {
	key := r.symbolName(name)
	for d := r.cwd; d != nil; d = d.parent {
		if v, ok := d.vars[key]; ok {
			return v
		}
	}
	r.Fail(errUndefinedName)
	return 0
}

// Purge removes name from the current directory if present, reporting the
// number of entries removed (0 or 1; directories purge recursively are out
// of scope for the single-name form exposed here).
func (r *Runtime) Purge(name heap.Pointer) uint {
	key := r.symbolName(name)
	if _, ok := r.cwd.vars[key]; ok {
		delete(r.cwd.vars, key)
		for i, k := range r.cwd.order {
			if k == key {
				r.cwd.order = append(r.cwd.order[:i], r.cwd.order[i+1:]...)
				break
			}
		}
		return 1
	}
	return 0
}

// Enter changes the current directory to the named subdirectory of cwd,
// creating it first if it does not exist (spec.md §3.4's CRDIR semantics
// folded into navigation, matching the firmware's lazy-create behaviour).
func (r *Runtime) Enter(dir heap.Pointer) bool {
	key := r.symbolName(dir)
	if key == "" {
		r.Fail(errInvalidName)
		return false
	}
	child, ok := r.cwd.children[key]
	if !ok {
		child = newDirectory(key, r.cwd)
		r.cwd.children[key] = child
	}
	r.cwd = child
	return true
}

// Updir moves the current directory up one level, failing at HOME.
func (r *Runtime) Updir() bool {
	if r.cwd.parent == nil {
		r.Fail(errMalformedDirectory)
		return false
	}
	r.cwd = r.cwd.parent
	return true
}

// Variables returns a heap-encoded List of Symbol objects naming the
// entries bound in the directory `depth` levels above cwd (0 = cwd
// itself), most-recently stored first, matching VARS's documented
// ordering.
func (r *Runtime) Variables(depth int) heap.Pointer {
	d := r.cwd
	for i := 0; i < depth && d.parent != nil; i++ {
		d = d.parent
	}
	names := append([]string(nil), d.order...)
	for i, j := 0, len(names)-1; i < j; i, j = i+1, j-1 {
		names[i], names[j] = names[j], names[i]
	}

	var payload []byte
	for _, name := range names {
		payload = append(payload, object.Encode(object.Symbol, []byte(name))...)
	}
	encoded := object.Encode(object.List, payload)
	p, err := r.heap.Allocate(len(encoded), sizeOfFor(r))
	if err != nil {
		r.Fail(err)
		return 0
	}
	copy(r.heap.Slice(p, p+heap.Pointer(len(encoded))), encoded)
	return p
}

// walkValues calls add for every variable value bound anywhere in this
// directory's subtree, used to feed Runtime.GCRoots.
func (d *Directory) walkValues(add func(heap.Pointer)) {
	for _, v := range d.vars {
		add(v)
	}
	for _, c := range d.children {
		c.walkValues(add)
	}
}

// relocateValues rewrites every variable binding anywhere in this
// directory's subtree that currently holds old to new, used to fix up
// directory state after a collection moves the object old referred to.
func (d *Directory) relocateValues(old, new heap.Pointer) {
	for k, v := range d.vars {
		if v == old {
			d.vars[k] = new
		}
	}
	for _, c := range d.children {
		c.relocateValues(old, new)
	}
}

// symbolName extracts the textual name carried by a Symbol object at p, or
// by a quoted name ('X', an Expression holding a single Symbol).
func (r *Runtime) symbolName(p heap.Pointer) string {
	payload := object.PayloadBytes(r, p)
	if object.Type(r, p) == object.Expression {
		tag, n := object.ReadUint(payload)
		if object.ID(tag) == object.Symbol {
			length, ln := object.ReadUint(payload[n:])
			return string(payload[n+ln : n+ln+int(length)])
		}
	}
	return string(payload)
}
