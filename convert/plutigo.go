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
	"fmt"

	"github.com/blinklabs-io/plutigo/syn"
	"github.com/blinklabs-io/uplcdec/uplc"
)

// FromProgram adapts a program decoded by plutigo's flat decoder
func FromProgram(prog *syn.Program[syn.DeBruijn]) Node {
	if prog == nil {
		return &Opaque{Kind: "program"}
	}
	return FromTerm(prog.Term)
}

// ProgramVersion returns the version of a program decoded by plutigo
func ProgramVersion(prog *syn.Program[syn.DeBruijn]) [3]uint {
	return [3]uint{
		uint(prog.Version[0]),
		uint(prog.Version[1]),
		uint(prog.Version[2]),
	}
}

// FromTerm adapts a term decoded by plutigo's flat decoder
func FromTerm(term syn.Term[syn.DeBruijn]) Node {
	switch t := term.(type) {
	case *syn.Var[syn.DeBruijn]:
		return &Var{Index: int(t.Name)}
	case *syn.Lambda[syn.DeBruijn]:
		return &Lambda{Body: FromTerm(t.Body)}
	case *syn.Apply[syn.DeBruijn]:
		return &Apply{Func: FromTerm(t.Function), Arg: FromTerm(t.Argument)}
	case *syn.Force[syn.DeBruijn]:
		return &Force{Term: FromTerm(t.Term)}
	case *syn.Delay[syn.DeBruijn]:
		return &Delay{Term: FromTerm(t.Term)}
	case *syn.Builtin:
		return &Builtin{Tag: int(t.DefaultFunction)}
	case *syn.Constant:
		return fromConstant(t.Con)
	case *syn.Error:
		return &Error{}
	case *syn.Constr[syn.DeBruijn]:
		ret := &Constr{Tag: uint64(t.Tag)}
		for _, f := range t.Fields {
			ret.Fields = append(ret.Fields, FromTerm(f))
		}
		return ret
	case *syn.Case[syn.DeBruijn]:
		ret := &Case{Scrutinee: FromTerm(t.Constr)}
		for _, b := range t.Branches {
			ret.Branches = append(ret.Branches, FromTerm(b))
		}
		return ret
	}
	return &Opaque{Kind: "term", Value: term}
}

func fromConstant(con syn.IConstant) Node {
	typ, payload, err := constantPayload(con)
	if err != nil {
		return &Opaque{Kind: "constant", Value: con}
	}
	return &Constant{Type: typ, Payload: payload}
}

func constantPayload(con syn.IConstant) (uplc.Type, any, error) {
	switch c := con.(type) {
	case *syn.Integer:
		return uplc.TypeInteger, c.Inner, nil
	case *syn.ByteString:
		return uplc.TypeByteString, c.Inner, nil
	case *syn.String:
		return uplc.TypeString, c.Inner, nil
	case *syn.Bool:
		return uplc.TypeBool, c.Inner, nil
	case *syn.Unit:
		return uplc.TypeUnit, nil, nil
	case *syn.Data:
		return uplc.TypeData, c.Inner, nil
	case *syn.ProtoList:
		// Element types are taken from the first item. Empty lists
		// default to data, the element type of nearly all ledger lists.
		var elem uplc.Type = uplc.TypeData
		items := make([]any, 0, len(c.List))
		for i, item := range c.List {
			itemType, itemPayload, err := constantPayload(item)
			if err != nil {
				return nil, nil, err
			}
			if i == 0 {
				elem = itemType
			}
			items = append(items, itemPayload)
		}
		return &uplc.ListType{Elem: elem}, items, nil
	case *syn.ProtoPair:
		fstType, fst, err := constantPayload(c.First)
		if err != nil {
			return nil, nil, err
		}
		sndType, snd, err := constantPayload(c.Second)
		if err != nil {
			return nil, nil, err
		}
		return &uplc.PairType{Fst: fstType, Snd: sndType}, [2]any{fst, snd}, nil
	}
	return nil, nil, fmt.Errorf("unsupported constant %T", con)
}
