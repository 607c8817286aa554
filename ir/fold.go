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

package ir

import (
	"bytes"
	"crypto/sha256"
	"math/big"
	"unicode/utf8"

	"github.com/blinklabs-io/uplcdec/uplc"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"
)

// FoldBuiltin evaluates a builtin over constant arguments. It reports false
// when the builtin is not foldable, the operands have the wrong kinds, or
// evaluation would fail, such as division by zero.
func FoldBuiltin(name string, args []uplc.Value) (uplc.Value, bool) {
	switch len(args) {
	case 1:
		return foldUnary(name, args[0])
	case 2:
		return foldBinary(name, args[0], args[1])
	}
	return nil, false
}

func foldBinary(name string, left, right uplc.Value) (uplc.Value, bool) {
	if l, ok := left.(*uplc.Integer); ok {
		r, ok := right.(*uplc.Integer)
		if !ok {
			return nil, false
		}
		return foldInteger(name, l.Value, r.Value)
	}
	if l, ok := left.(*uplc.ByteString); ok {
		r, ok := right.(*uplc.ByteString)
		if !ok {
			return nil, false
		}
		switch name {
		case "appendByteString":
			ret := make([]byte, 0, len(l.Value)+len(r.Value))
			ret = append(ret, l.Value...)
			return &uplc.ByteString{Value: append(ret, r.Value...)}, true
		case "equalsByteString":
			return &uplc.Bool{Value: bytes.Equal(l.Value, r.Value)}, true
		case "lessThanByteString":
			return &uplc.Bool{Value: bytes.Compare(l.Value, r.Value) < 0}, true
		case "lessThanEqualsByteString":
			return &uplc.Bool{Value: bytes.Compare(l.Value, r.Value) <= 0}, true
		}
		return nil, false
	}
	if l, ok := left.(*uplc.String); ok {
		r, ok := right.(*uplc.String)
		if !ok {
			return nil, false
		}
		switch name {
		case "appendString":
			return &uplc.String{Value: l.Value + r.Value}, true
		case "equalsString":
			return &uplc.Bool{Value: l.Value == r.Value}, true
		}
		return nil, false
	}
	if l, ok := left.(*uplc.DataValue); ok && name == "equalsData" {
		r, ok := right.(*uplc.DataValue)
		if !ok {
			return nil, false
		}
		return &uplc.Bool{Value: uplc.EqualData(l.Value, r.Value)}, true
	}
	return nil, false
}

func foldInteger(name string, a, b *big.Int) (uplc.Value, bool) {
	intResult := func(v *big.Int) (uplc.Value, bool) {
		return &uplc.Integer{Value: v}, true
	}
	switch name {
	case "addInteger":
		return intResult(new(big.Int).Add(a, b))
	case "subtractInteger":
		return intResult(new(big.Int).Sub(a, b))
	case "multiplyInteger":
		return intResult(new(big.Int).Mul(a, b))
	case "divideInteger", "modInteger", "quotientInteger", "remainderInteger":
		if b.Sign() == 0 {
			return nil, false
		}
		q, r := new(big.Int).QuoRem(a, b, new(big.Int))
		switch name {
		case "quotientInteger":
			return intResult(q)
		case "remainderInteger":
			return intResult(r)
		}
		// Floor division rounds toward negative infinity, so a nonzero
		// remainder with the opposite sign of the divisor adjusts both
		if r.Sign() != 0 && r.Sign() != b.Sign() {
			q.Sub(q, big.NewInt(1))
			r.Add(r, b)
		}
		if name == "divideInteger" {
			return intResult(q)
		}
		return intResult(r)
	case "equalsInteger":
		return &uplc.Bool{Value: a.Cmp(b) == 0}, true
	case "lessThanInteger":
		return &uplc.Bool{Value: a.Cmp(b) < 0}, true
	case "lessThanEqualsInteger":
		return &uplc.Bool{Value: a.Cmp(b) <= 0}, true
	}
	return nil, false
}

func foldUnary(name string, arg uplc.Value) (uplc.Value, bool) {
	switch v := arg.(type) {
	case *uplc.ByteString:
		switch name {
		case "lengthOfByteString":
			return &uplc.Integer{Value: big.NewInt(int64(len(v.Value)))}, true
		case "decodeUtf8":
			if !utf8.Valid(v.Value) {
				return nil, false
			}
			return &uplc.String{Value: string(v.Value)}, true
		case "complementByteString":
			ret := make([]byte, len(v.Value))
			for i, b := range v.Value {
				ret[i] = ^b
			}
			return &uplc.ByteString{Value: ret}, true
		case "sha2_256":
			sum := sha256.Sum256(v.Value)
			return &uplc.ByteString{Value: sum[:]}, true
		case "sha3_256":
			sum := sha3.Sum256(v.Value)
			return &uplc.ByteString{Value: sum[:]}, true
		case "blake2b_256":
			sum := blake2b.Sum256(v.Value)
			return &uplc.ByteString{Value: sum[:]}, true
		case "blake2b_224":
			h, err := blake2b.New(28, nil)
			if err != nil {
				return nil, false
			}
			h.Write(v.Value)
			return &uplc.ByteString{Value: h.Sum(nil)}, true
		case "keccak_256":
			h := sha3.NewLegacyKeccak256()
			h.Write(v.Value)
			return &uplc.ByteString{Value: h.Sum(nil)}, true
		}
	case *uplc.String:
		if name == "encodeUtf8" {
			return &uplc.ByteString{Value: []byte(v.Value)}, true
		}
	case *uplc.DataValue:
		if name == "serialiseData" {
			encoded, err := uplc.EncodeData(v.Value)
			if err != nil {
				return nil, false
			}
			return &uplc.ByteString{Value: encoded}, true
		}
	}
	return nil, false
}
