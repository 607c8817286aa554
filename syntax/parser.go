// Copyright 2025 Blink Labs Software
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

// Package syntax parses the textual form of UPLC programs.
package syntax

import (
	"encoding/hex"
	"math/big"
	"strconv"
	"strings"

	"github.com/blinklabs-io/uplcdec/uplc"
)

// Parser is a recursive descent parser over a token slice. Every binder in
// the parsed term has a distinct name: a lambda that reuses a name bound
// anywhere earlier in the input gets a fresh one.
type Parser struct {
	tokens []Token
	pos    int
	// scope maps a source name to the stack of names it currently refers to
	scope map[string][]string
	// used holds every identifier in the input and every name handed out
	used  map[string]bool
	bound map[string]bool
	fresh int
}

// NewParser creates a parser for the given input text
func NewParser(input string) *Parser {
	p := &Parser{
		tokens: NewLexer(input).Tokenize(),
		scope:  make(map[string][]string),
		used:   make(map[string]bool),
		bound:  make(map[string]bool),
	}
	for _, tok := range p.tokens {
		if tok.Type == IDENT {
			p.used[tok.Literal] = true
		}
	}
	return p
}

// Parse parses a full program. A bare term is accepted and wrapped in a
// program with the default version.
func Parse(input string) (*uplc.Program, error) {
	p := NewParser(input)
	prog, err := p.parseProgram()
	if err != nil {
		return nil, err
	}
	if err := p.expectEOF(); err != nil {
		return nil, err
	}
	return prog, nil
}

// ParseTerm parses input and returns only the term
func ParseTerm(input string) (uplc.Term, error) {
	prog, err := Parse(input)
	if err != nil {
		return nil, err
	}
	return prog.Term, nil
}

func (p *Parser) current() Token {
	return p.tokens[p.pos]
}

func (p *Parser) peek() Token {
	if p.pos+1 < len(p.tokens) {
		return p.tokens[p.pos+1]
	}
	return p.tokens[len(p.tokens)-1]
}

func (p *Parser) advance() Token {
	tok := p.tokens[p.pos]
	if tok.Type != EOF {
		p.pos++
	}
	return tok
}

func (p *Parser) check(tt TokenType) bool {
	return p.current().Type == tt
}

func (p *Parser) expect(tt TokenType) (Token, error) {
	tok := p.current()
	if tok.Type != tt {
		return tok, p.unexpected(tt.String())
	}
	return p.advance(), nil
}

func (p *Parser) unexpected(expected string) *Error {
	tok := p.current()
	return newError(tok, "expected %s, found %s", expected, tok.Describe())
}

func (p *Parser) expectEOF() error {
	if !p.check(EOF) {
		return p.unexpected("end of input")
	}
	return nil
}

func (p *Parser) parseProgram() (*uplc.Program, error) {
	if !p.check(LPAREN) || p.peek().Type != PROGRAM {
		term, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		return &uplc.Program{Version: uplc.DefaultVersion, Term: term}, nil
	}
	p.advance() // (
	p.advance() // program
	verTok, err := p.expect(VERSION)
	if err != nil {
		return nil, err
	}
	version, err := parseVersion(verTok)
	if err != nil {
		return nil, err
	}
	term, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(RPAREN); err != nil {
		return nil, err
	}
	return &uplc.Program{Version: version, Term: term}, nil
}

func parseVersion(tok Token) ([3]uint, error) {
	var ret [3]uint
	parts := strings.Split(tok.Literal, ".")
	if len(parts) != 3 {
		return ret, newError(tok, "invalid version %q: expected major.minor.patch", tok.Literal)
	}
	for i, part := range parts {
		v, err := strconv.ParseUint(part, 10, 32)
		if err != nil {
			return ret, newError(tok, "invalid version %q: %s", tok.Literal, err)
		}
		ret[i] = uint(v)
	}
	return ret, nil
}

func (p *Parser) parseTerm() (uplc.Term, error) {
	tok := p.current()
	switch tok.Type {
	case IDENT:
		p.advance()
		return p.variable(tok)
	case LBRACKET:
		p.advance()
		return p.parseApplication(RBRACKET)
	case LPAREN:
		p.advance()
		return p.parseKeywordTerm()
	default:
		return nil, p.unexpected("term")
	}
}

func (p *Parser) variable(tok Token) (uplc.Term, error) {
	names := p.scope[tok.Literal]
	if len(names) == 0 {
		return nil, newError(tok, "unbound variable %q", tok.Literal)
	}
	return &uplc.Var{Name: names[len(names)-1]}, nil
}

// binderName returns the name to use for a lambda parameter
func (p *Parser) binderName(name string) string {
	if !p.bound[name] {
		p.bound[name] = true
		return name
	}
	for {
		p.fresh++
		candidate := name + "_" + strconv.Itoa(p.fresh)
		if !p.used[candidate] {
			p.used[candidate] = true
			p.bound[candidate] = true
			return candidate
		}
	}
}

// parseKeywordTerm parses the remainder of a parenthesized term after the
// opening paren
func (p *Parser) parseKeywordTerm() (uplc.Term, error) {
	kw := p.current()
	if _, ok := keywords[kw.Literal]; !ok || kw.Type == IDENT {
		return nil, p.unexpected("keyword")
	}
	p.advance()
	var (
		term uplc.Term
		err  error
	)
	switch kw.Type {
	case VAR:
		var name Token
		name, err = p.expect(IDENT)
		if err == nil {
			term, err = p.variable(name)
		}
	case LAM:
		term, err = p.parseLambda()
	case APP:
		return p.parseApplication(RPAREN)
	case CON:
		term, err = p.parseConstant()
	case BUILTIN:
		term, err = p.parseBuiltin()
	case FORCE:
		var inner uplc.Term
		inner, err = p.parseTerm()
		term = &uplc.Force{Term: inner}
	case DELAY:
		var inner uplc.Term
		inner, err = p.parseTerm()
		term = &uplc.Delay{Term: inner}
	case ERROR:
		term = &uplc.Error{}
	case CASE:
		term, err = p.parseCase()
	case CONSTR:
		term, err = p.parseConstr()
	default:
		return nil, newError(kw, "unexpected keyword %q", kw.Literal)
	}
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(RPAREN); err != nil {
		return nil, err
	}
	return term, nil
}

func (p *Parser) parseLambda() (uplc.Term, error) {
	name, err := p.expect(IDENT)
	if err != nil {
		return nil, err
	}
	param := p.binderName(name.Literal)
	p.scope[name.Literal] = append(p.scope[name.Literal], param)
	body, err := p.parseTerm()
	p.scope[name.Literal] = p.scope[name.Literal][:len(p.scope[name.Literal])-1]
	if err != nil {
		return nil, err
	}
	return &uplc.Lambda{Param: param, Body: body}, nil
}

// parseApplication parses one or more arguments applied to a function,
// folding them to the left, up to the closing delimiter
func (p *Parser) parseApplication(closing TokenType) (uplc.Term, error) {
	fn, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	args := 0
	for !p.check(closing) {
		if p.check(EOF) {
			return nil, p.unexpected(closing.String())
		}
		arg, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		fn = &uplc.Apply{Func: fn, Arg: arg}
		args++
	}
	if args == 0 {
		return nil, p.unexpected("argument")
	}
	p.advance()
	return fn, nil
}

func (p *Parser) parseBuiltin() (uplc.Term, error) {
	name, err := p.expect(IDENT)
	if err != nil {
		return nil, err
	}
	if _, ok := uplc.LookupBuiltin(name.Literal); !ok {
		return nil, newError(name, "unknown builtin %q", name.Literal)
	}
	return &uplc.Builtin{Name: name.Literal}, nil
}

func (p *Parser) parseCase() (uplc.Term, error) {
	scrutinee, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	ret := &uplc.Case{Scrutinee: scrutinee}
	for !p.check(RPAREN) && !p.check(EOF) {
		branch, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		ret.Branches = append(ret.Branches, branch)
	}
	return ret, nil
}

func (p *Parser) parseConstr() (uplc.Term, error) {
	tok, err := p.expect(INTEGER)
	if err != nil {
		return nil, err
	}
	index, err := strconv.ParseUint(tok.Literal, 10, 64)
	if err != nil {
		return nil, newError(tok, "invalid constructor index %q", tok.Literal)
	}
	ret := &uplc.Constr{Index: index}
	for !p.check(RPAREN) && !p.check(EOF) {
		arg, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		ret.Args = append(ret.Args, arg)
	}
	return ret, nil
}

func (p *Parser) parseConstant() (uplc.Term, error) {
	typ, err := p.parseType(true)
	if err != nil {
		return nil, err
	}
	value, err := p.parseValue(typ)
	if err != nil {
		return nil, err
	}
	return &uplc.Constant{Value: value}, nil
}

// parseType parses a constant type. Compound types may appear bare
// (list integer) only at the top level of a constant.
func (p *Parser) parseType(allowBare bool) (uplc.Type, error) {
	tok := p.current()
	switch tok.Type {
	case LPAREN:
		p.advance()
		typ, err := p.parseCompoundType()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(RPAREN); err != nil {
			return nil, err
		}
		return typ, nil
	case IDENT:
		if typ, ok := uplc.SimpleTypeByName(tok.Literal); ok {
			p.advance()
			return typ, nil
		}
		if allowBare && (tok.Literal == "list" || tok.Literal == "pair") {
			return p.parseCompoundType()
		}
		return nil, newError(tok, "unknown type %q", tok.Literal)
	default:
		return nil, p.unexpected("type")
	}
}

func (p *Parser) parseCompoundType() (uplc.Type, error) {
	tok, err := p.expect(IDENT)
	if err != nil {
		return nil, err
	}
	switch tok.Literal {
	case "list":
		elem, err := p.parseType(false)
		if err != nil {
			return nil, err
		}
		return &uplc.ListType{Elem: elem}, nil
	case "pair":
		fst, err := p.parseType(false)
		if err != nil {
			return nil, err
		}
		snd, err := p.parseType(false)
		if err != nil {
			return nil, err
		}
		return &uplc.PairType{Fst: fst, Snd: snd}, nil
	default:
		return nil, newError(tok, "unknown type constructor %q", tok.Literal)
	}
}

func (p *Parser) parseValue(typ uplc.Type) (uplc.Value, error) {
	tok := p.current()
	switch t := typ.(type) {
	case *uplc.ListType:
		return p.parseListValue(t)
	case *uplc.PairType:
		return p.parsePairValue(t)
	}
	switch typ {
	case uplc.TypeInteger:
		n, err := p.parseInteger()
		if err != nil {
			return nil, err
		}
		return &uplc.Integer{Value: n}, nil
	case uplc.TypeByteString:
		b, err := p.parseBytes()
		if err != nil {
			return nil, err
		}
		return &uplc.ByteString{Value: b}, nil
	case uplc.TypeString:
		if _, err := p.expect(STRING); err != nil {
			return nil, err
		}
		s, err := strconv.Unquote(tok.Literal)
		if err != nil {
			return nil, newError(tok, "invalid string literal %s", tok.Literal)
		}
		return &uplc.String{Value: s}, nil
	case uplc.TypeBool:
		if tok.Type == IDENT && (tok.Literal == "True" || tok.Literal == "False") {
			p.advance()
			return &uplc.Bool{Value: tok.Literal == "True"}, nil
		}
		return nil, p.unexpected("True or False")
	case uplc.TypeUnit:
		if _, err := p.expect(LPAREN); err != nil {
			return nil, err
		}
		if _, err := p.expect(RPAREN); err != nil {
			return nil, err
		}
		return &uplc.Unit{}, nil
	case uplc.TypeData:
		d, err := p.parseDataConstant()
		if err != nil {
			return nil, err
		}
		return &uplc.DataValue{Value: d}, nil
	}
	return nil, newError(tok, "unsupported constant type %s", typ)
}

func (p *Parser) parseInteger() (*big.Int, error) {
	tok, err := p.expect(INTEGER)
	if err != nil {
		return nil, err
	}
	n, ok := new(big.Int).SetString(strings.TrimPrefix(tok.Literal, "+"), 10)
	if !ok {
		return nil, newError(tok, "invalid integer %q", tok.Literal)
	}
	return n, nil
}

func (p *Parser) parseBytes() ([]byte, error) {
	tok, err := p.expect(BYTESTRING)
	if err != nil {
		return nil, err
	}
	b, err := hex.DecodeString(tok.Literal[1:])
	if err != nil {
		return nil, newError(tok, "invalid bytestring %q: %s", tok.Literal, err)
	}
	return b, nil
}

func (p *Parser) parseListValue(typ *uplc.ListType) (uplc.Value, error) {
	if _, err := p.expect(LBRACKET); err != nil {
		return nil, err
	}
	ret := &uplc.List{ElemType: typ.Elem}
	for !p.check(RBRACKET) {
		if len(ret.Items) > 0 {
			if _, err := p.expect(COMMA); err != nil {
				return nil, err
			}
		}
		item, err := p.parseValue(typ.Elem)
		if err != nil {
			return nil, err
		}
		ret.Items = append(ret.Items, item)
	}
	p.advance()
	return ret, nil
}

func (p *Parser) parsePairValue(typ *uplc.PairType) (uplc.Value, error) {
	if _, err := p.expect(LPAREN); err != nil {
		return nil, err
	}
	fst, err := p.parseValue(typ.Fst)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(COMMA); err != nil {
		return nil, err
	}
	snd, err := p.parseValue(typ.Snd)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(RPAREN); err != nil {
		return nil, err
	}
	return &uplc.Pair{FstType: typ.Fst, SndType: typ.Snd, Fst: fst, Snd: snd}, nil
}

// parseDataConstant parses a data literal or a CBOR encoded data value
func (p *Parser) parseDataConstant() (uplc.Data, error) {
	tok := p.current()
	if tok.Type != BYTESTRING {
		return p.parseData()
	}
	raw, err := p.parseBytes()
	if err != nil {
		return nil, err
	}
	d, err := uplc.DecodeData(raw)
	if err != nil {
		return nil, newError(tok, "invalid CBOR data: %s", err)
	}
	return d, nil
}

func (p *Parser) parseData() (uplc.Data, error) {
	if p.check(LPAREN) {
		p.advance()
		d, err := p.parseData()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(RPAREN); err != nil {
			return nil, err
		}
		return d, nil
	}
	tok := p.current()
	if tok.Type != IDENT {
		return nil, p.unexpected("data literal")
	}
	p.advance()
	switch tok.Literal {
	case "Constr":
		tagTok := p.current()
		tag, err := p.parseInteger()
		if err != nil {
			return nil, err
		}
		if tag.Sign() < 0 || !tag.IsUint64() {
			return nil, newError(tagTok, "invalid constructor tag %s", tag)
		}
		fields, err := p.parseDataList()
		if err != nil {
			return nil, err
		}
		return &uplc.DataConstr{Tag: tag.Uint64(), Fields: fields}, nil
	case "Map":
		pairs, err := p.parseDataPairs()
		if err != nil {
			return nil, err
		}
		return &uplc.DataMap{Pairs: pairs}, nil
	case "List":
		items, err := p.parseDataList()
		if err != nil {
			return nil, err
		}
		return &uplc.DataList{Items: items}, nil
	case "I":
		n, err := p.parseInteger()
		if err != nil {
			return nil, err
		}
		return &uplc.DataInteger{Value: n}, nil
	case "B":
		b, err := p.parseBytes()
		if err != nil {
			return nil, err
		}
		return &uplc.DataBytes{Value: b}, nil
	}
	return nil, newError(tok, "expected data literal, found %s", tok.Describe())
}

func (p *Parser) parseDataList() ([]uplc.Data, error) {
	if _, err := p.expect(LBRACKET); err != nil {
		return nil, err
	}
	var ret []uplc.Data
	for !p.check(RBRACKET) {
		if len(ret) > 0 {
			if _, err := p.expect(COMMA); err != nil {
				return nil, err
			}
		}
		item, err := p.parseData()
		if err != nil {
			return nil, err
		}
		ret = append(ret, item)
	}
	p.advance()
	return ret, nil
}

// parseDataPairs parses map entries written as (k, v) or [k, v]
func (p *Parser) parseDataPairs() ([]uplc.DataPair, error) {
	if _, err := p.expect(LBRACKET); err != nil {
		return nil, err
	}
	var ret []uplc.DataPair
	for !p.check(RBRACKET) {
		if len(ret) > 0 {
			if _, err := p.expect(COMMA); err != nil {
				return nil, err
			}
		}
		closing := RPAREN
		switch {
		case p.check(LBRACKET):
			closing = RBRACKET
		case !p.check(LPAREN):
			return nil, p.unexpected("map entry")
		}
		p.advance()
		key, err := p.parseData()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(COMMA); err != nil {
			return nil, err
		}
		value, err := p.parseData()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(closing); err != nil {
			return nil, err
		}
		ret = append(ret, uplc.DataPair{Key: key, Value: value})
	}
	p.advance()
	return ret, nil
}
