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

package syntax

// Lexer scans UPLC text and produces tokens
type Lexer struct {
	input        string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           byte // current char under examination
	line         int  // current line number
	column       int  // current column number
}

// NewLexer creates a new Lexer instance
func NewLexer(input string) *Lexer {
	l := &Lexer{
		input:  input,
		line:   1,
		column: 0,
	}
	l.readChar()
	return l
}

// readChar reads the next character and advances the position
func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition++
	l.column++
}

func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

// skipWhitespace skips whitespace and "--" line comments
func (l *Lexer) skipWhitespace() {
	for {
		switch {
		case l.ch == ' ' || l.ch == '\t' || l.ch == '\r':
			l.readChar()
		case l.ch == '\n':
			l.line++
			l.column = 0
			l.readChar()
		case l.ch == '-' && l.peekChar() == '-':
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
		default:
			return
		}
	}
}

func (l *Lexer) readIdentifier() string {
	position := l.position
	for isIdentChar(l.ch) {
		l.readChar()
	}
	return l.input[position:l.position]
}

// readNumber reads an integer or a dotted version literal. Signed numbers
// are always integers.
func (l *Lexer) readNumber() (string, TokenType) {
	position := l.position
	signed := l.ch == '-' || l.ch == '+'
	if signed {
		l.readChar()
	}
	for isDigit(l.ch) {
		l.readChar()
	}
	tokenType := INTEGER
	for !signed && l.ch == '.' && isDigit(l.peekChar()) {
		tokenType = VERSION
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	return l.input[position:l.position], tokenType
}

func (l *Lexer) readHex() string {
	position := l.position
	l.readChar() // consume '#'
	for isHexDigit(l.ch) {
		l.readChar()
	}
	return l.input[position:l.position]
}

// readString reads a double-quoted string, returning the raw literal
// including quotes
func (l *Lexer) readString() (string, bool) {
	position := l.position
	for {
		l.readChar()
		switch l.ch {
		case 0, '\n':
			return l.input[position:l.position], false
		case '\\':
			l.readChar()
			if l.ch == 0 {
				return l.input[position:l.position], false
			}
		case '"':
			l.readChar()
			return l.input[position:l.position], true
		}
	}
}

// NextToken returns the next token from the input
func (l *Lexer) NextToken() Token {
	l.skipWhitespace()
	tok := Token{Line: l.line, Column: l.column, Offset: l.position}
	single := func(tt TokenType) Token {
		tok.Type = tt
		tok.Literal = string(l.ch)
		l.readChar()
		return tok
	}
	switch {
	case l.ch == 0:
		tok.Type = EOF
		tok.Offset = len(l.input)
		return tok
	case l.ch == '(':
		return single(LPAREN)
	case l.ch == ')':
		return single(RPAREN)
	case l.ch == '[':
		return single(LBRACKET)
	case l.ch == ']':
		return single(RBRACKET)
	case l.ch == ',':
		return single(COMMA)
	case l.ch == '#':
		tok.Type = BYTESTRING
		tok.Literal = l.readHex()
		return tok
	case l.ch == '"':
		str, ok := l.readString()
		tok.Literal = str
		if !ok {
			tok.Type = ILLEGAL
			return tok
		}
		tok.Type = STRING
		return tok
	case isDigit(l.ch) || (l.ch == '-' || l.ch == '+') && isDigit(l.peekChar()):
		tok.Literal, tok.Type = l.readNumber()
		return tok
	case isIdentStart(l.ch):
		tok.Literal = l.readIdentifier()
		tok.Type = LookupIdent(tok.Literal)
		return tok
	default:
		return single(ILLEGAL)
	}
}

// Tokenize returns all tokens from the input, ending with EOF
func (l *Lexer) Tokenize() []Token {
	var tokens []Token
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == EOF {
			break
		}
	}
	return tokens
}

func isIdentStart(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_'
}

func isIdentChar(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch) || ch == '\''
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

func isHexDigit(ch byte) bool {
	return isDigit(ch) || 'a' <= ch && ch <= 'f' || 'A' <= ch && ch <= 'F'
}
