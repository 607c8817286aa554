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

package codegen

import (
	"strings"
)

const (
	importBuiltin   = "aiken/builtin"
	importByteArray = "aiken/primitive/bytearray"
	importString    = "aiken/primitive/string"
	importCrypto    = "aiken/crypto"
	importCbor      = "aiken/cbor"
	importG1        = "aiken/crypto/bls12_381/g1"
	importG2        = "aiken/crypto/bls12_381/g2"
	importPairing   = "aiken/crypto/bls12_381/pairing"
	importContext   = "cardano/script_context.{ScriptContext}"
)

// surface is the source form of a builtin. Exactly one of infix or fn is
// set. order permutes the builtin's arguments for fn.
type surface struct {
	infix  string
	fn     string
	order  []int
	module string
}

var surfaces = map[string]surface{
	"addInteger":               {infix: "+"},
	"subtractInteger":          {infix: "-"},
	"multiplyInteger":          {infix: "*"},
	"divideInteger":            {infix: "/"},
	"modInteger":               {infix: "%"},
	"equalsInteger":            {infix: "=="},
	"lessThanInteger":          {infix: "<"},
	"lessThanEqualsInteger":    {infix: "<="},
	"equalsByteString":         {infix: "=="},
	"lessThanByteString":       {infix: "<"},
	"lessThanEqualsByteString": {infix: "<="},
	"equalsString":             {infix: "=="},
	"equalsData":               {infix: "=="},

	"appendByteString":   {fn: "bytearray.concat", module: importByteArray},
	"consByteString":     {fn: "bytearray.push", order: []int{1, 0}, module: importByteArray},
	"lengthOfByteString": {fn: "bytearray.length", module: importByteArray},
	"indexByteString":    {fn: "bytearray.at", module: importByteArray},
	"decodeUtf8":         {fn: "string.from_bytearray", module: importString},
	"encodeUtf8":         {fn: "string.to_bytearray", module: importString},
	"appendString":       {fn: "string.concat", module: importString},

	"sha2_256":                        {fn: "crypto.sha2_256", module: importCrypto},
	"sha3_256":                        {fn: "crypto.sha3_256", module: importCrypto},
	"blake2b_224":                     {fn: "crypto.blake2b_224", module: importCrypto},
	"blake2b_256":                     {fn: "crypto.blake2b_256", module: importCrypto},
	"keccak_256":                      {fn: "crypto.keccak_256", module: importCrypto},
	"verifyEd25519Signature":          {fn: "crypto.verify_ed25519_signature", module: importCrypto},
	"verifyEcdsaSecp256k1Signature":   {fn: "crypto.verify_ecdsa_signature", module: importCrypto},
	"verifySchnorrSecp256k1Signature": {fn: "crypto.verify_schnorr_signature", module: importCrypto},
	"serialiseData":                   {fn: "cbor.serialise", module: importCbor},

	"bls12_381_G1_add":         {fn: "g1_add", module: importG1},
	"bls12_381_G1_neg":         {fn: "g1_neg", module: importG1},
	"bls12_381_G1_scalarMul":   {fn: "g1_scalar_mul", module: importG1},
	"bls12_381_G1_equal":       {fn: "g1_equal", module: importG1},
	"bls12_381_G1_compress":    {fn: "g1_compress", module: importG1},
	"bls12_381_G1_uncompress":  {fn: "g1_uncompress", module: importG1},
	"bls12_381_G1_hashToGroup": {fn: "g1_hash_to_group", module: importG1},
	"bls12_381_G2_add":         {fn: "g2_add", module: importG2},
	"bls12_381_G2_neg":         {fn: "g2_neg", module: importG2},
	"bls12_381_G2_scalarMul":   {fn: "g2_scalar_mul", module: importG2},
	"bls12_381_G2_equal":       {fn: "g2_equal", module: importG2},
	"bls12_381_G2_compress":    {fn: "g2_compress", module: importG2},
	"bls12_381_G2_uncompress":  {fn: "g2_uncompress", module: importG2},
	"bls12_381_G2_hashToGroup": {fn: "g2_hash_to_group", module: importG2},
	"bls12_381_millerLoop":     {fn: "miller_loop", module: importPairing},
	"bls12_381_mulMlResult":    {fn: "mul_ml_result", module: importPairing},
	"bls12_381_finalVerify":    {fn: "final_verify", module: importPairing},
}

// SurfaceName returns the source form of a builtin: an operator, a function
// name, or the raw builtin call for builtins without one
func SurfaceName(builtin string) string {
	s, ok := surfaces[builtin]
	switch {
	case ok && s.infix != "":
		return s.infix
	case ok:
		return s.fn
	}
	return "builtin." + builtin
}

// SurfaceImport returns the module a builtin's source form needs
func SurfaceImport(builtin string) string {
	if s, ok := surfaces[builtin]; ok {
		return s.module
	}
	return importBuiltin
}

func isInfix(builtin string) bool {
	return surfaces[builtin].infix != ""
}

func permute(args []string, order []int) []string {
	if len(order) != len(args) {
		return args
	}
	ret := make([]string, len(args))
	for i, j := range order {
		ret[i] = args[j]
	}
	return ret
}

func call(fn string, args []string) string {
	return fn + "(" + strings.Join(args, ", ") + ")"
}
