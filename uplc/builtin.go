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

package uplc

// BuiltinInfo describes the shape of a builtin function
type BuiltinInfo struct {
	Name string
	// Arity is the number of term arguments
	Arity int
	// Forces is the number of type instantiations the builtin expects
	Forces int
}

// Builtins lists every builtin in canonical protocol tag order
var Builtins = []BuiltinInfo{
	{"addInteger", 2, 0},
	{"subtractInteger", 2, 0},
	{"multiplyInteger", 2, 0},
	{"divideInteger", 2, 0},
	{"quotientInteger", 2, 0},
	{"remainderInteger", 2, 0},
	{"modInteger", 2, 0},
	{"equalsInteger", 2, 0},
	{"lessThanInteger", 2, 0},
	{"lessThanEqualsInteger", 2, 0},
	{"appendByteString", 2, 0},
	{"consByteString", 2, 0},
	{"sliceByteString", 3, 0},
	{"lengthOfByteString", 1, 0},
	{"indexByteString", 2, 0},
	{"equalsByteString", 2, 0},
	{"lessThanByteString", 2, 0},
	{"lessThanEqualsByteString", 2, 0},
	{"sha2_256", 1, 0},
	{"sha3_256", 1, 0},
	{"blake2b_256", 1, 0},
	{"verifyEd25519Signature", 3, 0},
	{"appendString", 2, 0},
	{"equalsString", 2, 0},
	{"encodeUtf8", 1, 0},
	{"decodeUtf8", 1, 0},
	{"ifThenElse", 3, 1},
	{"chooseUnit", 2, 1},
	{"trace", 2, 1},
	{"fstPair", 1, 2},
	{"sndPair", 1, 2},
	{"chooseList", 3, 2},
	{"mkCons", 2, 1},
	{"headList", 1, 1},
	{"tailList", 1, 1},
	{"nullList", 1, 1},
	{"chooseData", 6, 1},
	{"constrData", 2, 0},
	{"mapData", 1, 0},
	{"listData", 1, 0},
	{"iData", 1, 0},
	{"bData", 1, 0},
	{"unConstrData", 1, 0},
	{"unMapData", 1, 0},
	{"unListData", 1, 0},
	{"unIData", 1, 0},
	{"unBData", 1, 0},
	{"equalsData", 2, 0},
	{"mkPairData", 2, 0},
	{"mkNilData", 1, 0},
	{"mkNilPairData", 1, 0},
	{"serialiseData", 1, 0},
	{"verifyEcdsaSecp256k1Signature", 3, 0},
	{"verifySchnorrSecp256k1Signature", 3, 0},
	{"bls12_381_G1_add", 2, 0},
	{"bls12_381_G1_neg", 1, 0},
	{"bls12_381_G1_scalarMul", 2, 0},
	{"bls12_381_G1_equal", 2, 0},
	{"bls12_381_G1_compress", 1, 0},
	{"bls12_381_G1_uncompress", 1, 0},
	{"bls12_381_G1_hashToGroup", 2, 0},
	{"bls12_381_G2_add", 2, 0},
	{"bls12_381_G2_neg", 1, 0},
	{"bls12_381_G2_scalarMul", 2, 0},
	{"bls12_381_G2_equal", 2, 0},
	{"bls12_381_G2_compress", 1, 0},
	{"bls12_381_G2_uncompress", 1, 0},
	{"bls12_381_G2_hashToGroup", 2, 0},
	{"bls12_381_millerLoop", 2, 0},
	{"bls12_381_mulMlResult", 2, 0},
	{"bls12_381_finalVerify", 2, 0},
	{"keccak_256", 1, 0},
	{"blake2b_224", 1, 0},
	{"integerToByteString", 3, 0},
	{"byteStringToInteger", 2, 0},
	{"andByteString", 3, 0},
	{"orByteString", 3, 0},
	{"xorByteString", 3, 0},
	{"complementByteString", 1, 0},
	{"readBit", 2, 0},
	{"writeBits", 3, 0},
	{"replicateByte", 2, 0},
	{"shiftByteString", 2, 0},
	{"rotateByteString", 2, 0},
	{"countSetBits", 1, 0},
	{"findFirstSetBit", 1, 0},
	{"ripemd_160", 1, 0},
	{"expModInteger", 3, 0},
	{"dropList", 2, 1},
	{"lengthOfArray", 1, 1},
	{"listToArray", 1, 1},
	{"indexArray", 2, 1},
}

var builtinsByName = func() map[string]BuiltinInfo {
	ret := make(map[string]BuiltinInfo, len(Builtins))
	for _, b := range Builtins {
		ret[b.Name] = b
	}
	return ret
}()

// LookupBuiltin returns the description of a builtin by name
func LookupBuiltin(name string) (BuiltinInfo, bool) {
	b, ok := builtinsByName[name]
	return b, ok
}

// BuiltinByTag returns the builtin with the given canonical protocol tag
func BuiltinByTag(tag int) (BuiltinInfo, bool) {
	if tag < 0 || tag >= len(Builtins) {
		return BuiltinInfo{}, false
	}
	return Builtins[tag], true
}
