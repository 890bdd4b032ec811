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
	"strings"
	"testing"

	"github.com/rpl48x/rpl48x/object"
	"github.com/rpl48x/rpl48x/rtl"
)

// normalizeWS collapses runs of whitespace to a single space, so assertions
// don't depend on the renderer's exact deferred-space bookkeeping.
func normalizeWS(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func renderForTest(t *testing.T, rt *rtl.Runtime, encoded []byte) string {
	t.Helper()
	p, err := rt.Load(encoded)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return Render(rt, p, object.TargetDisplay)
}

func TestRenderInteger(t *testing.T) {
	rt := rtl.New()
	if got := renderForTest(t, rt, object.EncodeInteger(42)); got != "42" {
		t.Fatalf("Render = %q, want %q", got, "42")
	}
}

func TestRenderNegativeInteger(t *testing.T) {
	rt := rtl.New()
	if got := renderForTest(t, rt, object.EncodeInteger(-7)); got != "-7" {
		t.Fatalf("Render = %q, want %q", got, "-7")
	}
}

func TestRenderSymbol(t *testing.T) {
	rt := rtl.New()
	encoded := object.Encode(object.Symbol, []byte("FOO"))
	if got := renderForTest(t, rt, encoded); got != "FOO" {
		t.Fatalf("Render = %q, want %q", got, "FOO")
	}
}

func TestRenderText(t *testing.T) {
	rt := rtl.New()
	encoded := object.Encode(object.Text, []byte("hi"))
	if got := renderForTest(t, rt, encoded); got != `"hi"` {
		t.Fatalf("Render = %q, want %q", got, `"hi"`)
	}
}

func TestRenderCommand(t *testing.T) {
	rt := rtl.New()
	if got := renderForTest(t, rt, object.EncodeTag(object.Dup)); got != "DUP" {
		t.Fatalf("Render = %q, want %q", got, "DUP")
	}
}

func TestRenderList(t *testing.T) {
	rt := rtl.New()
	payload := append(append(object.EncodeInteger(1), object.EncodeInteger(2)...), object.EncodeInteger(3)...)
	encoded := object.Encode(object.List, payload)
	if got := normalizeWS(renderForTest(t, rt, encoded)); got != "{ 1 2 3 }" {
		t.Fatalf("Render = %q, want %q", got, "{ 1 2 3 }")
	}
}

func TestRenderArray(t *testing.T) {
	rt := rtl.New()
	payload := append(object.EncodeInteger(1), object.EncodeInteger(2)...)
	encoded := object.Encode(object.Array, payload)
	if got := normalizeWS(renderForTest(t, rt, encoded)); got != "[ 1 2 ]" {
		t.Fatalf("Render = %q, want %q", got, "[ 1 2 ]")
	}
}

func TestRenderBlock(t *testing.T) {
	rt := rtl.New()
	payload := append(object.EncodeInteger(1), object.EncodeTag(object.Add)...)
	encoded := object.Encode(object.Block, payload)
	if got := normalizeWS(renderForTest(t, rt, encoded)); got != "« 1 + »" {
		t.Fatalf("Render = %q, want %q", got, "« 1 + »")
	}
}

func TestRenderExpressionNoSpuriousParens(t *testing.T) {
	rt := rtl.New()
	// 1+2*3 in RPN: 1 2 3 Mul Add
	payload := append(append(append(append(
		object.EncodeInteger(1),
		object.EncodeInteger(2)...),
		object.EncodeInteger(3)...),
		object.EncodeTag(object.Mul)...),
		object.EncodeTag(object.Add)...)
	encoded := object.Encode(object.Expression, payload)
	if got := renderForTest(t, rt, encoded); got != "1+2*3" {
		t.Fatalf("Render = %q, want %q", got, "1+2*3")
	}
}

func TestRenderExpressionAddsParensWhenNeeded(t *testing.T) {
	rt := rtl.New()
	// (1+2)*3 in RPN: 1 2 Add 3 Mul
	payload := append(append(append(
		object.EncodeInteger(1),
		object.EncodeInteger(2)...),
		object.EncodeTag(object.Add)...),
		append(object.EncodeInteger(3), object.EncodeTag(object.Mul)...)...)
	encoded := object.Encode(object.Expression, payload)
	if got := renderForTest(t, rt, encoded); got != "(1+2)*3" {
		t.Fatalf("Render = %q, want %q", got, "(1+2)*3")
	}
}

func TestRenderExpressionLeftAssociativeSubtraction(t *testing.T) {
	rt := rtl.New()
	// (1-2)-3 in RPN: 1 2 Sub 3 Sub  -- must render without parens since
	// subtraction is already left-associative in the source order written.
	payload := append(append(append(
		object.EncodeInteger(1),
		object.EncodeInteger(2)...),
		object.EncodeTag(object.Sub)...),
		append(object.EncodeInteger(3), object.EncodeTag(object.Sub)...)...)
	encoded := object.Encode(object.Expression, payload)
	if got := renderForTest(t, rt, encoded); got != "1-2-3" {
		t.Fatalf("Render = %q, want %q", got, "1-2-3")
	}
}

func TestRenderExpressionParenthesizesRightOperandSamePrecedence(t *testing.T) {
	rt := rtl.New()
	// 1-(2-3) in RPN: 1 2 3 Sub Sub -- the right operand must be
	// parenthesised since subtraction does not associate the other way.
	payload := append(append(append(append(
		object.EncodeInteger(1),
		object.EncodeInteger(2)...),
		object.EncodeInteger(3)...),
		object.EncodeTag(object.Sub)...),
		object.EncodeTag(object.Sub)...)
	encoded := object.Encode(object.Expression, payload)
	if got := renderForTest(t, rt, encoded); got != "1-(2-3)" {
		t.Fatalf("Render = %q, want %q", got, "1-(2-3)")
	}
}

func TestParseRenderRoundTripPreservesParentheses(t *testing.T) {
	rt := rtl.New()
	encoded, err := Parse("'(1+2)*3'")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	children := programChildren(t, rt, encoded)
	if len(children) != 1 {
		t.Fatalf("len(children) = %d, want 1", len(children))
	}
	if got := Render(rt, children[0], object.TargetDisplay); got != "(1+2)*3" {
		t.Fatalf("Render = %q, want %q", got, "(1+2)*3")
	}
}
