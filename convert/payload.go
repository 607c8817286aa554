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

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"github.com/blinklabs-io/plutigo/data"
	"github.com/blinklabs-io/uplcdec/uplc"
)

type byteser interface {
	Bytes() []byte
}

type bigInter interface {
	BigInt() *big.Int
}

func normalizeBytes(payload any) ([]byte, error) {
	switch v := payload.(type) {
	case []byte:
		return v, nil
	case string:
		ret, err := hex.DecodeString(strings.TrimPrefix(v, "#"))
		if err != nil {
			return nil, fmt.Errorf("invalid hex bytestring: %w", err)
		}
		return ret, nil
	case byteser:
		return v.Bytes(), nil
	}
	return nil, fmt.Errorf("unsupported bytestring payload %T", payload)
}

func normalizeInteger(payload any) (*big.Int, error) {
	switch v := payload.(type) {
	case *big.Int:
		if v == nil {
			return nil, fmt.Errorf("nil integer payload")
		}
		return new(big.Int).Set(v), nil
	case big.Int:
		return new(big.Int).Set(&v), nil
	case int:
		return big.NewInt(int64(v)), nil
	case int32:
		return big.NewInt(int64(v)), nil
	case int64:
		return big.NewInt(v), nil
	case uint:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint32:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint64:
		return new(big.Int).SetUint64(v), nil
	case string:
		ret, ok := new(big.Int).SetString(v, 10)
		if !ok {
			return nil, fmt.Errorf("invalid integer payload %q", v)
		}
		return ret, nil
	case bigInter:
		n := v.BigInt()
		if n == nil {
			return nil, fmt.Errorf("nil integer payload from %T", payload)
		}
		return new(big.Int).Set(n), nil
	}
	return nil, fmt.Errorf("unsupported integer payload %T", payload)
}

func normalizeData(payload any) (uplc.Data, error) {
	switch v := payload.(type) {
	case uplc.Data:
		return v, nil
	case data.PlutusData:
		return uplc.FromPlutusData(v)
	case []byte:
		return uplc.DecodeData(v)
	}
	return nil, fmt.Errorf("unsupported data payload %T", payload)
}

// normalizeValue converts a decoded constant payload into a uplc value of
// the given type
func normalizeValue(typ uplc.Type, payload any) (uplc.Value, error) {
	switch t := typ.(type) {
	case *uplc.ListType:
		items, ok := payload.([]any)
		if !ok && payload != nil {
			return nil, fmt.Errorf("unsupported list payload %T", payload)
		}
		ret := &uplc.List{ElemType: t.Elem}
		for _, item := range items {
			v, err := normalizeValue(t.Elem, item)
			if err != nil {
				return nil, err
			}
			ret.Items = append(ret.Items, v)
		}
		return ret, nil
	case *uplc.PairType:
		pair, ok := payload.([2]any)
		if !ok {
			return nil, fmt.Errorf("unsupported pair payload %T", payload)
		}
		fst, err := normalizeValue(t.Fst, pair[0])
		if err != nil {
			return nil, err
		}
		snd, err := normalizeValue(t.Snd, pair[1])
		if err != nil {
			return nil, err
		}
		return &uplc.Pair{FstType: t.Fst, SndType: t.Snd, Fst: fst, Snd: snd}, nil
	}
	switch typ {
	case uplc.TypeInteger:
		n, err := normalizeInteger(payload)
		if err != nil {
			return nil, err
		}
		return &uplc.Integer{Value: n}, nil
	case uplc.TypeByteString:
		b, err := normalizeBytes(payload)
		if err != nil {
			return nil, err
		}
		return &uplc.ByteString{Value: b}, nil
	case uplc.TypeString:
		s, ok := payload.(string)
		if !ok {
			return nil, fmt.Errorf("unsupported string payload %T", payload)
		}
		return &uplc.String{Value: s}, nil
	case uplc.TypeBool:
		b, ok := payload.(bool)
		if !ok {
			return nil, fmt.Errorf("unsupported bool payload %T", payload)
		}
		return &uplc.Bool{Value: b}, nil
	case uplc.TypeUnit:
		return &uplc.Unit{}, nil
	case uplc.TypeData:
		d, err := normalizeData(payload)
		if err != nil {
			return nil, err
		}
		return &uplc.DataValue{Value: d}, nil
	}
	return nil, fmt.Errorf("unsupported constant type %v", typ)
}
