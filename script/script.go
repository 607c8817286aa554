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

// Package script loads on-chain Plutus scripts from their serialized form.
package script

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/blinklabs-io/gouroboros/cbor"
	"github.com/blinklabs-io/plutigo/syn"
	"github.com/blinklabs-io/uplcdec/convert"
	"github.com/blinklabs-io/uplcdec/uplc"
	"golang.org/x/crypto/blake2b"
)

var (
	ErrEmptyScript     = errors.New("empty script")
	ErrInvalidLanguage = errors.New("invalid script language")
)

// maxWrapLayers bounds how many CBOR bytestring wrappers are removed
const maxWrapLayers = 3

// Language is the Plutus language version. Its value is also the script
// hash prefix.
type Language uint8

const (
	LanguagePlutusV1 Language = 1
	LanguagePlutusV2 Language = 2
	LanguagePlutusV3 Language = 3
)

func (l Language) String() string {
	switch l {
	case LanguagePlutusV1:
		return "plutus-v1"
	case LanguagePlutusV2:
		return "plutus-v2"
	case LanguagePlutusV3:
		return "plutus-v3"
	}
	return fmt.Sprintf("Language(%d)", uint8(l))
}

// ParseLanguage accepts "v1", "plutus-v1", "PlutusV1" and similar spellings
func ParseLanguage(s string) (Language, error) {
	norm := strings.ToLower(strings.NewReplacer("-", "", "_", "").Replace(s))
	norm = strings.TrimPrefix(norm, "plutus")
	switch norm {
	case "v1", "1":
		return LanguagePlutusV1, nil
	case "v2", "2":
		return LanguagePlutusV2, nil
	case "v3", "3", "":
		return LanguagePlutusV3, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidLanguage, s)
}

// Script is a decoded script along with its identifying hash
type Script struct {
	Language Language
	// Flat is the flat-encoded program with all CBOR wrappers removed
	Flat    []byte
	Hash    string
	Program *uplc.Program
}

// Unwrap removes CBOR bytestring wrappers from serialized script bytes and
// returns the flat-encoded program along with the number of layers removed
func Unwrap(raw []byte) ([]byte, int, error) {
	if len(raw) == 0 {
		return nil, 0, ErrEmptyScript
	}
	ret := raw
	layers := 0
	for layers < maxWrapLayers {
		// CBOR major type 2 (bytestring)
		if len(ret) == 0 || ret[0]&0xe0 != 0x40 {
			break
		}
		var inner []byte
		n, err := cbor.Decode(ret, &inner)
		if err != nil || n != len(ret) {
			break
		}
		ret = inner
		layers++
	}
	if len(ret) == 0 {
		return nil, layers, ErrEmptyScript
	}
	return ret, layers, nil
}

// Hash computes the script hash: blake2b-224 over the language prefix
// followed by the flat program wrapped in a single CBOR bytestring
func Hash(flat []byte, lang Language) (string, error) {
	wrapped, err := cbor.Encode(flat)
	if err != nil {
		return "", fmt.Errorf("encode script: %w", err)
	}
	h, err := blake2b.New(28, nil)
	if err != nil {
		return "", err
	}
	h.Write([]byte{byte(lang)})
	h.Write(wrapped)
	return hex.EncodeToString(h.Sum(nil)), nil
}

// ContentKey returns the blake2b-256 hex digest used as a cache key
func ContentKey(content []byte) string {
	sum := blake2b.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// Decode unwraps and flat-decodes serialized script bytes, converting the
// program with conv
func Decode(raw []byte, lang Language, conv *convert.Converter) (*Script, error) {
	flat, _, err := Unwrap(raw)
	if err != nil {
		return nil, err
	}
	prog, err := syn.Decode[syn.DeBruijn](flat)
	if err != nil {
		return nil, fmt.Errorf("decode flat program: %w", err)
	}
	converted, err := conv.ConvertProgram(
		convert.ProgramVersion(prog),
		convert.FromProgram(prog),
	)
	if err != nil {
		return nil, fmt.Errorf("convert program: %w", err)
	}
	hash, err := Hash(flat, lang)
	if err != nil {
		return nil, err
	}
	return &Script{
		Language: lang,
		Flat:     flat,
		Hash:     hash,
		Program:  converted,
	}, nil
}

// DecodeHex is Decode for hex text, as found in explorers and blueprints
func DecodeHex(text string, lang Language, conv *convert.Converter) (*Script, error) {
	raw, err := hex.DecodeString(strings.TrimSpace(text))
	if err != nil {
		return nil, fmt.Errorf("decode script hex: %w", err)
	}
	return Decode(raw, lang, conv)
}
