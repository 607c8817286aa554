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

package script_test

import (
	"encoding/hex"
	"errors"
	"testing"

	"github.com/blinklabs-io/uplcdec/convert"
	"github.com/blinklabs-io/uplcdec/script"
	"github.com/blinklabs-io/uplcdec/uplc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// (program 1.1.0 (lam _ (con unit ()))) wrapped twice in CBOR bytestrings
const alwaysSucceedsHex = "46450101002499"

func TestUnwrapLayers(t *testing.T) {
	raw, err := hex.DecodeString(alwaysSucceedsHex)
	require.NoError(t, err)
	flat, layers, err := script.Unwrap(raw)
	require.NoError(t, err)
	assert.Equal(t, 2, layers)
	assert.Equal(t, "0101002499", hex.EncodeToString(flat))

	flat2, layers, err := script.Unwrap(flat)
	require.NoError(t, err)
	assert.Equal(t, 0, layers)
	assert.Equal(t, flat, flat2)
}

func TestUnwrapEmpty(t *testing.T) {
	_, _, err := script.Unwrap(nil)
	assert.True(t, errors.Is(err, script.ErrEmptyScript))
	_, _, err = script.Unwrap([]byte{0x40})
	assert.True(t, errors.Is(err, script.ErrEmptyScript))
}

func TestDecodeHex(t *testing.T) {
	s, err := script.DecodeHex(alwaysSucceedsHex, script.LanguagePlutusV3, convert.New())
	require.NoError(t, err)
	assert.Equal(t, "(program 1.1.0 (lam a (con unit ())))", uplc.ShowProgram(s.Program))
	assert.Len(t, s.Hash, 56)

	single, err := script.DecodeHex("450101002499", script.LanguagePlutusV3, convert.New())
	require.NoError(t, err)
	assert.Equal(t, s.Hash, single.Hash)

	v2, err := script.DecodeHex(alwaysSucceedsHex, script.LanguagePlutusV2, convert.New())
	require.NoError(t, err)
	assert.NotEqual(t, s.Hash, v2.Hash)
}

func TestParseLanguage(t *testing.T) {
	testDefs := map[string]script.Language{
		"v1":        script.LanguagePlutusV1,
		"PlutusV2":  script.LanguagePlutusV2,
		"plutus-v3": script.LanguagePlutusV3,
		"":          script.LanguagePlutusV3,
	}
	for input, expected := range testDefs {
		lang, err := script.ParseLanguage(input)
		require.NoError(t, err)
		assert.Equal(t, expected, lang)
	}
	_, err := script.ParseLanguage("v9")
	assert.True(t, errors.Is(err, script.ErrInvalidLanguage))
}

func TestContentKey(t *testing.T) {
	assert.Len(t, script.ContentKey([]byte("x")), 64)
	assert.NotEqual(t, script.ContentKey([]byte("x")), script.ContentKey([]byte("y")))
}
