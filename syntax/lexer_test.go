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

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLexerTokens(t *testing.T) {
	tokens := NewLexer("(program 1.1.0 [x' -5 #0a \"s\"]) -- done").Tokenize()
	expected := []TokenType{
		LPAREN, PROGRAM, VERSION, LBRACKET, IDENT, INTEGER, BYTESTRING,
		STRING, RBRACKET, RPAREN, EOF,
	}
	types := make([]TokenType, 0, len(tokens))
	for _, tok := range tokens {
		types = append(types, tok.Type)
	}
	assert.Equal(t, expected, types)
	assert.Equal(t, "x'", tokens[4].Literal)
	assert.Equal(t, "-5", tokens[5].Literal)
	assert.Equal(t, 20, tokens[5].Column)
}

func TestLexerLocations(t *testing.T) {
	tokens := NewLexer("(lam\n  x)").Tokenize()
	assert.Equal(t, 2, tokens[2].Line)
	assert.Equal(t, 3, tokens[2].Column)
	assert.Equal(t, 7, tokens[2].Offset)
}

func TestLexerUnterminatedString(t *testing.T) {
	tok := NewLexer(`"abc`).NextToken()
	assert.Equal(t, ILLEGAL, tok.Type)
}
