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

import (
	"bytes"
	"fmt"
	"math/big"

	"github.com/blinklabs-io/plutigo/data"
)

// Data is an on-chain PlutusData value
type Data interface {
	isData()
}

type DataConstr struct {
	Tag    uint64
	Fields []Data
}

type DataPair struct {
	Key   Data
	Value Data
}

type DataMap struct {
	Pairs []DataPair
}

type DataList struct {
	Items []Data
}

type DataInteger struct {
	Value *big.Int
}

type DataBytes struct {
	Value []byte
}

func (*DataConstr) isData()  {}
func (*DataMap) isData()     {}
func (*DataList) isData()    {}
func (*DataInteger) isData() {}
func (*DataBytes) isData()   {}

// EqualData reports whether two data values are structurally equal
func EqualData(a, b Data) bool {
	switch x := a.(type) {
	case *DataConstr:
		y, ok := b.(*DataConstr)
		if !ok || x.Tag != y.Tag || len(x.Fields) != len(y.Fields) {
			return false
		}
		for i := range x.Fields {
			if !EqualData(x.Fields[i], y.Fields[i]) {
				return false
			}
		}
		return true
	case *DataMap:
		y, ok := b.(*DataMap)
		if !ok || len(x.Pairs) != len(y.Pairs) {
			return false
		}
		for i := range x.Pairs {
			if !EqualData(x.Pairs[i].Key, y.Pairs[i].Key) ||
				!EqualData(x.Pairs[i].Value, y.Pairs[i].Value) {
				return false
			}
		}
		return true
	case *DataList:
		y, ok := b.(*DataList)
		if !ok || len(x.Items) != len(y.Items) {
			return false
		}
		for i := range x.Items {
			if !EqualData(x.Items[i], y.Items[i]) {
				return false
			}
		}
		return true
	case *DataInteger:
		y, ok := b.(*DataInteger)
		return ok && x.Value.Cmp(y.Value) == 0
	case *DataBytes:
		y, ok := b.(*DataBytes)
		return ok && bytes.Equal(x.Value, y.Value)
	}
	return false
}

// ToPlutusData converts a data value into its plutigo representation
func ToPlutusData(d Data) (data.PlutusData, error) {
	switch v := d.(type) {
	case *DataConstr:
		fields := make([]data.PlutusData, 0, len(v.Fields))
		for _, f := range v.Fields {
			tmp, err := ToPlutusData(f)
			if err != nil {
				return nil, err
			}
			fields = append(fields, tmp)
		}
		return data.NewConstr(uint(v.Tag), fields...), nil
	case *DataMap:
		pairs := make([][2]data.PlutusData, 0, len(v.Pairs))
		for _, p := range v.Pairs {
			k, err := ToPlutusData(p.Key)
			if err != nil {
				return nil, err
			}
			val, err := ToPlutusData(p.Value)
			if err != nil {
				return nil, err
			}
			pairs = append(pairs, [2]data.PlutusData{k, val})
		}
		return data.NewMap(pairs), nil
	case *DataList:
		items := make([]data.PlutusData, 0, len(v.Items))
		for _, item := range v.Items {
			tmp, err := ToPlutusData(item)
			if err != nil {
				return nil, err
			}
			items = append(items, tmp)
		}
		return data.NewList(items...), nil
	case *DataInteger:
		return data.NewInteger(new(big.Int).Set(v.Value)), nil
	case *DataBytes:
		return data.NewByteString(v.Value), nil
	}
	return nil, fmt.Errorf("unsupported data value: %T", d)
}

// FromPlutusData converts a plutigo data value into the term model
func FromPlutusData(pd data.PlutusData) (Data, error) {
	switch v := pd.(type) {
	case *data.Constr:
		ret := &DataConstr{Tag: uint64(v.Tag)}
		for _, f := range v.Fields {
			tmp, err := FromPlutusData(f)
			if err != nil {
				return nil, err
			}
			ret.Fields = append(ret.Fields, tmp)
		}
		return ret, nil
	case *data.Map:
		ret := &DataMap{}
		for _, p := range v.Pairs {
			k, err := FromPlutusData(p[0])
			if err != nil {
				return nil, err
			}
			val, err := FromPlutusData(p[1])
			if err != nil {
				return nil, err
			}
			ret.Pairs = append(ret.Pairs, DataPair{Key: k, Value: val})
		}
		return ret, nil
	case *data.List:
		ret := &DataList{}
		for _, item := range v.Items {
			tmp, err := FromPlutusData(item)
			if err != nil {
				return nil, err
			}
			ret.Items = append(ret.Items, tmp)
		}
		return ret, nil
	case *data.Integer:
		return &DataInteger{Value: new(big.Int).Set(v.Inner)}, nil
	case *data.ByteString:
		return &DataBytes{Value: bytes.Clone(v.Inner)}, nil
	}
	return nil, fmt.Errorf("unsupported plutus data type: %T", pd)
}

// EncodeData returns the canonical CBOR encoding of a data value
func EncodeData(d Data) ([]byte, error) {
	pd, err := ToPlutusData(d)
	if err != nil {
		return nil, err
	}
	return data.Encode(pd)
}

// DecodeData parses a CBOR encoded data value
func DecodeData(cborBytes []byte) (Data, error) {
	pd, err := data.Decode(cborBytes)
	if err != nil {
		return nil, fmt.Errorf("decode data: %w", err)
	}
	return FromPlutusData(pd)
}
