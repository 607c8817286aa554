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

package analysis

import (
	"sort"
	"strconv"

	"github.com/blinklabs-io/uplcdec/uplc"
)

// consumerTypes maps a builtin consuming a field to the field type it
// reveals
var consumerTypes = map[string]FieldType{
	"unIData":      FieldInteger,
	"unBData":      FieldByteString,
	"unListData":   FieldList,
	"unMapData":    FieldMap,
	"unConstrData": FieldData,
	"equalsData":   FieldData,
}

func defaultFieldName(index int) string {
	return "field_" + strconv.Itoa(index)
}

// extractFields finds the constructor fields of a src value read within
// root, with their types inferred from how they are consumed
func (a *analyzer) extractFields(root uplc.Term, src source) []FieldInfo {
	if src == nil || root == nil {
		return nil
	}
	found := make(map[int]FieldType)
	for _, v := range builtinApps(root) {
		if v.name == "headList" {
			if k, ok := a.fieldIndex(v.node, src); ok {
				if _, exists := found[k]; !exists {
					found[k] = FieldUnknown
				}
			}
		}
		hint, ok := consumerTypes[v.name]
		if !ok {
			continue
		}
		for _, arg := range v.args {
			k, ok := a.fieldIndex(arg, src)
			if !ok {
				continue
			}
			if cur := found[k]; cur == "" || cur == FieldUnknown {
				found[k] = hint
			}
		}
	}
	ret := make([]FieldInfo, 0, len(found))
	for k, typ := range found {
		ret = append(ret, FieldInfo{Index: k, Name: defaultFieldName(k), Type: typ})
	}
	sort.Slice(ret, func(i, j int) bool {
		return ret[i].Index < ret[j].Index
	})
	return ret
}

func (a *analyzer) datumInfo() DatumInfo {
	var ret DatumInfo
	if a.datum == nil {
		ret.Type = "Void"
		return ret
	}
	ret.Used = uplc.CountReferences(a.body, a.datumName) > 0
	ret.Fields = a.extractFields(a.body, a.datum)
	ret.Optional = len(a.discriminatorComparisons(a.body, a.datum)) > 0
	if !ret.Optional {
		uplc.Inspect(a.body, func(t uplc.Term) bool {
			if c, ok := t.(*uplc.Case); ok && a.datum(c.Scrutinee) {
				ret.Optional = true
				return false
			}
			return !ret.Optional
		})
	}
	switch {
	case len(ret.Fields) > 0:
		ret.Type = "Datum"
	case ret.Used:
		ret.Type = "Data"
	default:
		ret.Type = "Void"
	}
	return ret
}
