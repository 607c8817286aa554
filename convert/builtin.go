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

package convert

import "github.com/blinklabs-io/uplcdec/uplc"

// The upstream decoder reports the G1/G2 hashToGroup, compress and
// uncompress builtins rotated by one position relative to the protocol
// ordering. blsCorrections maps each reported name to the actual builtin.
var blsCorrections = map[string]string{
	"bls12_381_G1_hashToGroup": "bls12_381_G1_compress",
	"bls12_381_G1_compress":    "bls12_381_G1_uncompress",
	"bls12_381_G1_uncompress":  "bls12_381_G1_hashToGroup",
	"bls12_381_G2_hashToGroup": "bls12_381_G2_compress",
	"bls12_381_G2_compress":    "bls12_381_G2_uncompress",
	"bls12_381_G2_uncompress":  "bls12_381_G2_hashToGroup",
}

// upstreamBuiltinNames is the tag table as the upstream decoder reports it
var upstreamBuiltinNames = func() []string {
	reported := make(map[string]string, len(blsCorrections))
	for from, to := range blsCorrections {
		reported[to] = from
	}
	ret := make([]string, len(uplc.Builtins))
	for i, b := range uplc.Builtins {
		ret[i] = b.Name
		if name, ok := reported[b.Name]; ok {
			ret[i] = name
		}
	}
	return ret
}()

// CorrectBuiltinName applies the BLS rotation correction to a builtin name
// reported by the upstream decoder. Other names are returned unchanged.
func CorrectBuiltinName(name string) string {
	if fixed, ok := blsCorrections[name]; ok {
		return fixed
	}
	return name
}

func builtinName(b *Builtin) (string, bool) {
	name := b.Name
	if name == "" {
		if b.Tag < 0 || b.Tag >= len(upstreamBuiltinNames) {
			return "", false
		}
		name = upstreamBuiltinNames[b.Tag]
	}
	name = CorrectBuiltinName(name)
	if _, ok := uplc.LookupBuiltin(name); !ok {
		return "", false
	}
	return name, true
}
