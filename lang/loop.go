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
	"text/scanner"

	"github.com/rpl48x/rpl48x/object"
)

// parseLoop consumes one of the delimited control-flow constructs
// (spec.md §4.5 "Loop parsing"): a separator-driven scanner that reads
// successive keywords and produces the matching tagged object, whose
// payload is the concatenated encoding of its branches/body.
func (p *Parser) parseLoop(keyword string) ([]byte, bool, error) {
	switch keyword {
	case "IF":
		return p.parseIf()
	case "DO":
		return p.parseDoUntil()
	case "WHILE":
		return p.parseWhileRepeat()
	case "START":
		return p.parseStart()
	case "FOR":
		return p.parseFor()
	case "CASE":
		return p.parseCase()
	case "IFERR":
		return p.parseIfErr()
	}
	return nil, false, p.errorf("unknown loop keyword %q", keyword)
}

// expectKeyword consumes the next token and returns which of want it
// matches (case-insensitive), failing if it is not an identifier matching
// one of them.
func (p *Parser) expectKeyword(want ...string) (string, error) {
	tok := p.next()
	if tok != scanner.Ident {
		return "", p.errorf("expected one of %v, found %q", want, scanner.TokenString(tok))
	}
	text := strings.ToUpper(p.s.TokenText())
	for _, w := range want {
		if text == w {
			return w, nil
		}
	}
	return "", p.errorf("expected one of %v, found %q", want, text)
}

// asBranch wraps a (possibly multi-statement) parsed sequence as a single
// Program object, so that a control-flow tag's payload is always a fixed
// number of single objects regardless of how many statements a branch
// holds; evaluating the branch later is then just deferring that one
// Program object and letting deferProgram unpack it in source order.
func asBranch(statements []byte) []byte {
	return object.Encode(object.Program, statements)
}

func (p *Parser) parseIf() ([]byte, bool, error) {
	cond, err := p.parseUntilKeyword("THEN")
	if err != nil {
		return nil, false, err
	}
	then, kw, err := p.parseUntilEitherKeyword("ELSE", "END")
	if err != nil {
		return nil, false, err
	}
	if kw == "END" {
		payload := append(asBranch(cond), asBranch(then)...)
		return object.Encode(object.IfThen, payload), false, nil
	}
	els, err := p.parseUntilKeyword("END")
	if err != nil {
		return nil, false, err
	}
	payload := append(append(asBranch(cond), asBranch(then)...), asBranch(els)...)
	return object.Encode(object.IfThenElse, payload), false, nil
}

// parseIfErr parses `IFERR protected THEN on-error [ELSE on-ok] END`,
// mirroring parseIf's shape (spec.md §4.4's error-catching construct).
func (p *Parser) parseIfErr() ([]byte, bool, error) {
	protected, err := p.parseUntilKeyword("THEN")
	if err != nil {
		return nil, false, err
	}
	onErr, kw, err := p.parseUntilEitherKeyword("ELSE", "END")
	if err != nil {
		return nil, false, err
	}
	if kw == "END" {
		payload := append(asBranch(protected), asBranch(onErr)...)
		return object.Encode(object.IfErrThen, payload), false, nil
	}
	onOK, err := p.parseUntilKeyword("END")
	if err != nil {
		return nil, false, err
	}
	payload := append(append(asBranch(protected), asBranch(onErr)...), asBranch(onOK)...)
	return object.Encode(object.IfErrThenElse, payload), false, nil
}

func (p *Parser) parseDoUntil() ([]byte, bool, error) {
	body, err := p.parseUntilKeyword("UNTIL")
	if err != nil {
		return nil, false, err
	}
	cond, err := p.parseUntilKeyword("END")
	if err != nil {
		return nil, false, err
	}
	payload := append(asBranch(body), asBranch(cond)...)
	return object.Encode(object.DoUntil, payload), false, nil
}

func (p *Parser) parseWhileRepeat() ([]byte, bool, error) {
	cond, err := p.parseUntilKeyword("REPEAT")
	if err != nil {
		return nil, false, err
	}
	body, err := p.parseUntilKeyword("END")
	if err != nil {
		return nil, false, err
	}
	payload := append(asBranch(cond), asBranch(body)...)
	return object.Encode(object.WhileRepeat, payload), false, nil
}

func (p *Parser) parseStart() ([]byte, bool, error) {
	body, kw, err := p.parseUntilEitherKeyword("NEXT", "STEP")
	if err != nil {
		return nil, false, err
	}
	payload := asBranch(body)
	if kw == "NEXT" {
		return object.Encode(object.StartNext, payload), false, nil
	}
	return object.Encode(object.StartStep, payload), false, nil
}

func (p *Parser) parseFor() ([]byte, bool, error) {
	tok := p.next()
	if tok != scanner.Ident {
		return nil, false, p.errorf("FOR requires a local variable name")
	}
	name := object.Encode(object.Symbol, []byte(p.s.TokenText()))
	body, kw, err := p.parseUntilEitherKeyword("NEXT", "STEP")
	if err != nil {
		return nil, false, err
	}
	payload := append(name, asBranch(body)...)
	if kw == "NEXT" {
		return object.Encode(object.ForNext, payload), false, nil
	}
	return object.Encode(object.ForStep, payload), false, nil
}

// parseCase parses a CASE ... END block as a sequence of CaseWhen clauses,
// each `condition THEN branch END`, followed by the CASE's own closing END.
// A trailing CaseEnd sentinel is always appended to the payload: it's the
// object every clause's CaseSkip marker chains to once no condition has
// matched, so evaluation never needs to know the clause list's length.
func (p *Parser) parseCase() ([]byte, bool, error) {
	var payload []byte
	for {
		if kw := p.peekKeyword("END"); kw {
			p.next()
			break
		}
		cond, err := p.parseUntilKeyword("THEN")
		if err != nil {
			return nil, false, err
		}
		then, err := p.parseUntilKeyword("END")
		if err != nil {
			return nil, false, err
		}
		branch := object.Encode(object.CaseWhen, append(asBranch(cond), object.Encode(object.CaseThen, then)...))
		payload = append(payload, branch...)
	}
	payload = append(payload, object.Encode(object.CaseEnd, nil)...)
	return object.Encode(object.Case, payload), false, nil
}

func (p *Parser) peekKeyword(want string) bool {
	if p.peek() != scanner.Ident {
		return false
	}
	return strings.ToUpper(p.s.TokenText()) == want
}

// parseUntilKeyword parses a sequence of objects up to (and consuming) a
// single closing keyword, returning the concatenated encoding.
func (p *Parser) parseUntilKeyword(kw string) ([]byte, error) {
	payload, matched, err := p.parseUntilEitherKeyword(kw)
	if err != nil {
		return nil, err
	}
	_ = matched
	return payload, nil
}

// parseUntilEitherKeyword parses objects until one of the given keywords
// is seen (consuming it), returning the payload and which keyword ended
// the sequence.
func (p *Parser) parseUntilEitherKeyword(kws ...string) ([]byte, string, error) {
	var out []byte
	for {
		if p.peek() == scanner.Ident {
			text := strings.ToUpper(p.s.TokenText())
			for _, kw := range kws {
				if text == kw {
					p.next()
					return out, kw, nil
				}
			}
		}
		if p.peek() == scanner.EOF {
			return nil, "", p.errorf("unterminated: expected one of %v before end of input", kws)
		}
		if p.peek() == '\n' {
			p.next()
			continue
		}
		encoded, stop, err := p.parseOne()
		if err != nil {
			return nil, "", err
		}
		if stop {
			continue
		}
		out = append(out, encoded...)
	}
}
