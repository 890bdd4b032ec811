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
	"text/scanner"

	"github.com/rpl48x/rpl48x/object"
)

// infixOp names an algebraic infix operator: its source spelling, the
// command ID it lowers to, and its precedence (spec.md §4.5 "Expression
// parsing" step 4).
type infixOp struct {
	token      rune
	id         object.ID
	precedence int
}

var infixOps = []infixOp{
	{'+', object.Add, object.AdditivePrecedence},
	{'-', object.Sub, object.AdditivePrecedence},
	{'*', object.Mul, object.MultiplicativePrecedence},
	{'/', object.Div, object.MultiplicativePrecedence},
}

// parseExpr implements the precedence-climbing algebraic sub-parser
// (spec.md §4.5): parse a prefix, then while the next infix operator's
// precedence is at least `minPrec`, consume it and recurse at
// precedence+1. The result is written directly in Reverse Polish order:
// operand, operand, operator.
func (p *Parser) parseExpr(minPrec int) ([]byte, error) {
	left, err := p.parsePrefix()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.peekInfix()
		if !ok || op.precedence < minPrec {
			return left, nil
		}
		p.next()
		right, err := p.parseExpr(op.precedence + 1)
		if err != nil {
			return nil, err
		}
		left = append(append(left, right...), object.EncodeTag(op.id)...)
	}
}

func (p *Parser) peekInfix() (infixOp, bool) {
	tok := p.peek()
	for _, op := range infixOps {
		if op.token == tok {
			return op, true
		}
	}
	return infixOp{}, false
}

// parsePrefix parses a unary-minus/plus, a parenthesised sub-expression,
// or a leaf (number or symbol), per spec.md §4.5 step 1-2.
func (p *Parser) parsePrefix() ([]byte, error) {
	tok := p.next()
	switch tok {
	case '-':
		operand, err := p.parseExpr(object.PowerPrecedence)
		if err != nil {
			return nil, err
		}
		zero := object.EncodeInteger(0)
		return append(append(zero, operand...), object.EncodeTag(object.Sub)...), nil
	case '+':
		return p.parseExpr(object.PowerPrecedence)
	case '(':
		inner, err := p.parseExpr(object.LowestPrecedence)
		if err != nil {
			return nil, err
		}
		if p.next() != ')' {
			return nil, p.errorf("expected closing parenthesis")
		}
		return inner, nil
	case scanner.Int:
		v, err := strconv.ParseInt(p.s.TokenText(), 10, 64)
		if err != nil {
			return nil, p.errorf("malformed integer literal %q", p.s.TokenText())
		}
		return object.EncodeInteger(v), nil
	case scanner.Ident:
		return object.Encode(object.Symbol, []byte(p.s.TokenText())), nil
	default:
		return nil, p.errorf("expected operand, found %q", scanner.TokenString(tok))
	}
}
