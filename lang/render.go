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

package lang

import (
	"strconv"
	"strings"

	"github.com/rpl48x/rpl48x/heap"
	"github.com/rpl48x/rpl48x/object"
)

// Renderer streams an object's textual form into an internal buffer,
// tracking indentation and deferred whitespace (spec.md §4.6). It
// satisfies object.Renderer so per-tag Render functions registered in
// object's dispatch table can write through it without lang importing
// object's handlers package (there is none: object already owns the
// table, lang just supplies implementations via init()).
type Renderer struct {
	buf        strings.Builder
	indent     int
	wantSpace  bool
	wantCR     bool
	target     int
}

// NewRenderer returns a Renderer writing for the given target (one of
// object.TargetEditor/TargetDisplay/TargetSymbolic).
func NewRenderer(target int) *Renderer {
	return &Renderer{target: target}
}

func (r *Renderer) flushPending() {
	if r.wantCR {
		r.buf.WriteByte('\n')
		for i := 0; i < r.indent; i++ {
			r.buf.WriteString("  ")
		}
		r.wantCR = false
		r.wantSpace = false
		return
	}
	if r.wantSpace {
		r.buf.WriteByte(' ')
		r.wantSpace = false
	}
}

// WriteString implements object.Renderer.
func (r *Renderer) WriteString(s string) {
	r.flushPending()
	r.buf.WriteString(s)
}

// WriteRune implements object.Renderer.
func (r *Renderer) WriteRune(c rune) {
	r.flushPending()
	r.buf.WriteRune(c)
}

// Indent implements object.Renderer.
func (r *Renderer) Indent() { r.indent++ }

// Unindent implements object.Renderer.
func (r *Renderer) Unindent() {
	if r.indent > 0 {
		r.indent--
	}
}

// WantSpace implements object.Renderer.
func (r *Renderer) WantSpace() { r.wantSpace = true }

// WantCR implements object.Renderer.
func (r *Renderer) WantCR() { r.wantCR = true }

// Target implements object.Renderer.
func (r *Renderer) Target() int { return r.target }

// String returns everything written so far.
func (r *Renderer) String() string { return r.buf.String() }

var _ object.Renderer = (*Renderer)(nil)

// Render renders the object at p for the given target, returning the
// resulting text.
func Render(m object.Machine, p heap.Pointer, target int) string {
	r := NewRenderer(target)
	renderOne(m, p, r)
	return r.String()
}

func renderOne(m object.Machine, p heap.Pointer, r object.Renderer) {
	ty := object.Type(m, p)
	d := object.Handlers(ty)
	if d.Render != nil {
		d.Render(m, p, r)
		return
	}
	r.WriteString(ty.Name())
}

func renderInteger(m object.Machine, p heap.Pointer, r object.Renderer) int {
	v := object.DecodeInteger(m, p)
	r.WriteString(strconv.FormatInt(v, 10))
	return object.Size(m, p)
}

func renderSymbol(m object.Machine, p heap.Pointer, r object.Renderer) int {
	r.WriteString(string(object.PayloadBytes(m, p)))
	return object.Size(m, p)
}

func renderText(m object.Machine, p heap.Pointer, r object.Renderer) int {
	r.WriteRune('"')
	r.WriteString(string(object.PayloadBytes(m, p)))
	r.WriteRune('"')
	return object.Size(m, p)
}

func renderCommand(id object.ID) object.RenderFn {
	return func(m object.Machine, p heap.Pointer, r object.Renderer) int {
		r.WriteString(id.Name())
		r.WantSpace()
		return object.Size(m, p)
	}
}

// renderSequence renders every sub-object in a list/program/array/block's
// payload, separated by spaces, wrapped in open/close delimiters.
func renderSequence(open, close string) object.RenderFn {
	return func(m object.Machine, p heap.Pointer, r object.Renderer) int {
		r.WriteString(open)
		r.Indent()
		walkChildren(m, p, func(child heap.Pointer) {
			r.WantSpace()
			renderOne(m, child, r)
		})
		r.Unindent()
		r.WantSpace()
		r.WriteString(close)
		return object.Size(m, p)
	}
}

// walkChildren calls fn once per immediate sub-object in a length-prefixed
// object's payload.
func walkChildren(m object.Machine, p heap.Pointer, fn func(heap.Pointer)) {
	payload := object.PayloadBytes(m, p)
	headerLen := object.Size(m, p) - len(payload)
	cur := p + heap.Pointer(headerLen)
	end := cur + heap.Pointer(len(payload))
	for cur < end {
		fn(cur)
		cur = object.SkipObject(m, cur)
	}
}

// renderExpression renders an Expression's postfix payload back into
// infix form using a small operand stack of rendered fragments, applying
// each operator's precedence to decide whether to parenthesise an operand
// (spec.md §4.6).
func renderExpression(m object.Machine, p heap.Pointer, r object.Renderer) int {
	var stack []string
	var prec []int
	walkChildren(m, p, func(child heap.Pointer) {
		ty := object.Type(m, child)
		d := object.Handlers(ty)
		if d.Arity == 2 && len(stack) >= 2 {
			rhs, lhs := stack[len(stack)-1], stack[len(stack)-2]
			rp, lp := prec[len(prec)-1], prec[len(prec)-2]
			opPrec := d.Precedence
			if opPrec == 0 {
				opPrec = object.AdditivePrecedence
			}
			if lp < opPrec {
				lhs = "(" + lhs + ")"
			}
			if rp <= opPrec {
				rhs = "(" + rhs + ")"
			}
			stack = stack[:len(stack)-2]
			prec = prec[:len(prec)-2]
			stack = append(stack, lhs+ty.Name()+rhs)
			prec = append(prec, opPrec)
			return
		}
		stack = append(stack, Render(m, child, r.Target()))
		prec = append(prec, object.SymbolPrecedence)
	})
	if len(stack) > 0 {
		r.WriteString(stack[len(stack)-1])
	}
	return object.Size(m, p)
}

func init() {
	object.Register(object.Integer, object.Dispatch{Render: renderInteger})
	object.Register(object.Symbol, object.Dispatch{Render: renderSymbol})
	object.Register(object.Text, object.Dispatch{Render: renderText})
	object.Register(object.List, object.Dispatch{Render: renderSequence("{ ", "}")})
	object.Register(object.Array, object.Dispatch{Render: renderSequence("[ ", "]")})
	object.Register(object.Block, object.Dispatch{Render: renderSequence("« ", "»")})
	object.Register(object.Program, object.Dispatch{Render: renderSequence("« ", "»")})
	object.Register(object.Expression, object.Dispatch{Render: renderExpression})

	object.Register(object.Add, object.Dispatch{Precedence: object.AdditivePrecedence})
	object.Register(object.Sub, object.Dispatch{Precedence: object.AdditivePrecedence})
	object.Register(object.Mul, object.Dispatch{Precedence: object.MultiplicativePrecedence})
	object.Register(object.Div, object.Dispatch{Precedence: object.MultiplicativePrecedence})

	for _, id := range []object.ID{
		object.Add, object.Sub, object.Mul, object.Div, object.Mod,
		object.Dup, object.Drop, object.Swap, object.Over, object.Roll, object.Rolld, object.Depth,
		object.Sto, object.Rcl, object.Purge, object.PurgeAll, object.Updir, object.Home,
		object.CurrentDirectory, object.Crdir,
		object.Lt, object.Gt, object.Le, object.Ge, object.Eq, object.Ne,
		object.And, object.Or, object.Xor, object.Not,
	} {
		object.Register(id, object.Dispatch{Render: renderCommand(id)})
	}
}
