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

// Package lang implements the textual front end: parsing source text into
// the tagged object encoding, and rendering objects back to text.
package lang

import (
	"fmt"
	"strconv"
	"strings"
	"text/scanner"

	"github.com/rpl48x/rpl48x/object"
)

// ErrParse reports a parse failure with the scanner position at which it
// was detected (spec.md §4.5 "Failure semantics"). It carries a position
// only, not the length of the offending text.
type ErrParse struct {
	Pos     scanner.Position
	Message string
}

func (e *ErrParse) Error() string { return fmt.Sprintf("%s: %s", e.Pos, e.Message) }

// keyword -> closing keyword table for the delimited loop constructs.
var loopKeywords = map[string][]string{
	"IF":    {"THEN", "ELSE", "END"},
	"DO":    {"UNTIL", "END"},
	"WHILE": {"REPEAT", "END"},
	"START": {"NEXT", "STEP"},
	"FOR":   {"NEXT", "STEP"},
	"CASE":  {"END"},
	"IFERR": {"THEN", "ELSE", "END"},
}

// Parser turns source text into a tagged object in a scratch buffer. It
// accumulates the encoded bytes of whatever it parses directly (rather
// than building an AST first) so that a parsed list, program or
// expression becomes the payload of its wrapping object with no separate
// encoding pass, exactly as spec.md §4.5 describes.
type Parser struct {
	s      scanner.Scanner
	src    string
	peeked rune
	havePk bool
}

// New returns a Parser over source text.
func New(source string) *Parser {
	p := &Parser{src: source}
	p.s.Init(strings.NewReader(source))
	p.s.Mode = scanner.ScanIdents | scanner.ScanInts | scanner.ScanFloats |
		scanner.ScanStrings | scanner.SkipComments
	p.s.Whitespace ^= 1 << '\n' // keep newlines visible as a token boundary signal
	p.s.Error = func(*scanner.Scanner, string) {} // parser reports its own errors
	return p
}

// Parse is the single entry point (spec.md §4.5): it parses one top-level
// object — typically a program consisting of every object found in
// source — and returns its encoded bytes.
func Parse(source string) ([]byte, error) {
	p := New(source)
	objs, err := p.parseSequence(scanner.EOF)
	if err != nil {
		return nil, err
	}
	return object.Encode(object.Program, objs), nil
}

func (p *Parser) next() rune {
	if p.havePk {
		p.havePk = false
		return p.peeked
	}
	return p.s.Scan()
}

func (p *Parser) peek() rune {
	if !p.havePk {
		p.peeked = p.s.Scan()
		p.havePk = true
	}
	return p.peeked
}

func (p *Parser) errorf(format string, args ...interface{}) error {
	return &ErrParse{Pos: p.s.Pos(), Message: fmt.Sprintf(format, args...)}
}

// parseSequence parses objects until it sees `end` (a token rune, e.g.
// scanner.EOF or a specific closing delimiter), concatenating their
// encoded bytes; keywords such as END are not recognised here (loop.go's
// parseUntilKeyword handles those) — exactly the shared
// list/program parsing routine spec.md §4.5 describes, parameterised here
// by the caller choosing what "end" means.
func (p *Parser) parseSequence(end rune) ([]byte, error) {
	var out []byte
	for {
		tok := p.peek()
		if tok == end {
			p.next()
			return out, nil
		}
		if tok == scanner.EOF {
			if end == scanner.EOF {
				return out, nil
			}
			return nil, p.errorf("unterminated: expected delimiter before end of input")
		}
		if tok == '\n' {
			p.next()
			continue
		}
		encoded, stop, err := p.parseOne()
		if err != nil {
			return nil, err
		}
		if stop {
			return out, nil
		}
		out = append(out, encoded...)
	}
}

// parseOne dispatches on the next token: this is the "fixed order of
// candidate tags, symbol last" chain from spec.md §4.5, implemented as a
// sequence of Go type switches/string comparisons rather than a handler
// table, since unlike object dispatch there is no need for packages
// outside lang to extend it.
func (p *Parser) parseOne() (encoded []byte, stop bool, err error) {
	tok := p.next()
	switch tok {
	case '{':
		payload, err := p.parseSequence('}')
		if err != nil {
			return nil, false, err
		}
		return object.Encode(object.List, payload), false, nil
	case '[':
		payload, err := p.parseSequence(']')
		if err != nil {
			return nil, false, err
		}
		return object.Encode(object.Array, payload), false, nil
	case '«': // «
		payload, err := p.parseSequence('»')
		if err != nil {
			return nil, false, err
		}
		return object.Encode(object.Block, payload), false, nil
	case '\'':
		expr, err := p.parseExpressionQuote()
		if err != nil {
			return nil, false, err
		}
		return expr, false, nil
	case scanner.String:
		text := p.s.TokenText()
		return object.Encode(object.Text, []byte(text[1:len(text)-1])), false, nil
	case scanner.Int:
		return p.parseNumber(p.s.TokenText())
	case '-':
		if p.peek() == scanner.Int {
			p.next()
			return p.parseNumber("-" + p.s.TokenText())
		}
		return nil, false, p.errorf("argument expected after unary minus")
	case scanner.Ident:
		return p.parseIdentOrKeyword(p.s.TokenText())
	default:
		// Operator spellings ("+", "/", ">=", "==", ...) name commands.
		op := string(tok)
		if strings.ContainsRune("<>=!", tok) && p.s.Peek() == '=' {
			p.s.Next()
			op += "="
		}
		if id, ok := Lookup(op); ok {
			return object.EncodeTag(id), false, nil
		}
		return nil, false, p.errorf("unexpected token %q", scanner.TokenString(tok))
	}
}

func (p *Parser) parseNumber(text string) ([]byte, bool, error) {
	v, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return nil, false, p.errorf("malformed integer literal %q", text)
	}
	return object.EncodeInteger(v), false, nil
}

// parseIdentOrKeyword resolves an identifier against the loop-keyword
// table and the command catalog; anything left over becomes a Symbol,
// exactly the "falls back to symbol last" rule of spec.md §4.5.
func (p *Parser) parseIdentOrKeyword(name string) ([]byte, bool, error) {
	upper := strings.ToUpper(name)
	if _, ok := loopKeywords[upper]; ok {
		return p.parseLoop(upper)
	}
	if id, ok := Lookup(upper); ok {
		return object.EncodeTag(id), false, nil
	}
	return object.Encode(object.Symbol, []byte(name)), false, nil
}

// parseExpressionQuote parses `'...'` as a single algebraic Expression
// object whose payload is the postfix (Reverse Polish) encoding of its
// sub-expressions (spec.md §4.5 "Parsed expressions are stored in Reverse
// Polish order").
func (p *Parser) parseExpressionQuote() ([]byte, error) {
	payload, err := p.parseExpr(object.LowestPrecedence)
	if err != nil {
		return nil, err
	}
	if p.next() != '\'' {
		return nil, p.errorf("unterminated expression: missing closing quote")
	}
	return object.Encode(object.Expression, payload), nil
}
