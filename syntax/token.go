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

import "fmt"

// TokenType represents the type of a token
type TokenType int

const (
	// Special tokens
	ILLEGAL TokenType = iota
	EOF

	// Delimiters
	LPAREN   // (
	RPAREN   // )
	LBRACKET // [
	RBRACKET // ]
	COMMA    // ,

	// Literals
	IDENT      // x, addInteger, True
	INTEGER    // 42, -7
	BYTESTRING // #cafe
	STRING     // "hello"
	VERSION    // 1.1.0

	// Keywords
	PROGRAM
	VAR
	LAM
	APP
	CON
	BUILTIN
	FORCE
	DELAY
	ERROR
	CASE
	CONSTR
)

var tokenNames = map[TokenType]string{
	ILLEGAL:    "ILLEGAL",
	EOF:        "end of input",
	LPAREN:     "'('",
	RPAREN:     "')'",
	LBRACKET:   "'['",
	RBRACKET:   "']'",
	COMMA:      "','",
	IDENT:      "identifier",
	INTEGER:    "integer",
	BYTESTRING: "bytestring",
	STRING:     "string",
	VERSION:    "version",
	PROGRAM:    "'program'",
	VAR:        "'var'",
	LAM:        "'lam'",
	APP:        "'app'",
	CON:        "'con'",
	BUILTIN:    "'builtin'",
	FORCE:      "'force'",
	DELAY:      "'delay'",
	ERROR:      "'error'",
	CASE:       "'case'",
	CONSTR:     "'constr'",
}

// String returns a human readable name for the token type
func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

var keywords = map[string]TokenType{
	"program": PROGRAM,
	"var":     VAR,
	"lam":     LAM,
	"app":     APP,
	"con":     CON,
	"builtin": BUILTIN,
	"force":   FORCE,
	"delay":   DELAY,
	"error":   ERROR,
	"case":    CASE,
	"constr":  CONSTR,
}

// LookupIdent returns the keyword token type for an identifier, or IDENT
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}

// Token is a lexical token with its source location
type Token struct {
	Type    TokenType
	Literal string
	Line    int
	Column  int
	Offset  int
}

// Describe returns the token as it should appear in error messages
func (t Token) Describe() string {
	switch t.Type {
	case EOF:
		return "end of input"
	case ILLEGAL:
		return fmt.Sprintf("illegal input %q", t.Literal)
	case IDENT, INTEGER, BYTESTRING, STRING, VERSION:
		return fmt.Sprintf("%s %q", t.Type, t.Literal)
	default:
		return t.Type.String()
	}
}
