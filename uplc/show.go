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
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

// ShowProgram renders a program in UPLC text syntax
func ShowProgram(p *Program) string {
	var sb strings.Builder
	fmt.Fprintf(
		&sb,
		"(program %d.%d.%d ",
		p.Version[0],
		p.Version[1],
		p.Version[2],
	)
	writeTerm(&sb, p.Term)
	sb.WriteString(")")
	return sb.String()
}

// Show renders a term in UPLC text syntax
func Show(t Term) string {
	var sb strings.Builder
	writeTerm(&sb, t)
	return sb.String()
}

// showItem is either a term still to be printed or literal text
type showItem struct {
	term Term
	text string
}

func writeTerm(sb *strings.Builder, root Term) {
	stack := []showItem{{term: root}}
	push := func(items ...showItem) {
		for i := len(items) - 1; i >= 0; i-- {
			stack = append(stack, items[i])
		}
	}
	for len(stack) > 0 {
		item := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if item.term == nil {
			sb.WriteString(item.text)
			continue
		}
		switch v := item.term.(type) {
		case *Var:
			sb.WriteString(v.Name)
		case *Lambda:
			sb.WriteString("(lam " + v.Param + " ")
			push(showItem{term: v.Body}, showItem{text: ")"})
		case *Apply:
			sb.WriteString("[")
			push(
				showItem{term: v.Func},
				showItem{text: " "},
				showItem{term: v.Arg},
				showItem{text: "]"},
			)
		case *Constant:
			sb.WriteString("(con ")
			sb.WriteString(v.Value.Type().String())
			sb.WriteString(" ")
			sb.WriteString(ShowValue(v.Value))
			sb.WriteString(")")
		case *Builtin:
			sb.WriteString("(builtin " + v.Name + ")")
		case *Force:
			sb.WriteString("(force ")
			push(showItem{term: v.Term}, showItem{text: ")"})
		case *Delay:
			sb.WriteString("(delay ")
			push(showItem{term: v.Term}, showItem{text: ")"})
		case *Error:
			sb.WriteString("(error)")
		case *Case:
			sb.WriteString("(case ")
			items := []showItem{{term: v.Scrutinee}}
			for _, b := range v.Branches {
				items = append(items, showItem{text: " "}, showItem{term: b})
			}
			items = append(items, showItem{text: ")"})
			push(items...)
		case *Constr:
			sb.WriteString("(constr " + strconv.FormatUint(v.Index, 10))
			items := make([]showItem, 0, len(v.Args)*2+1)
			for _, a := range v.Args {
				items = append(items, showItem{text: " "}, showItem{term: a})
			}
			items = append(items, showItem{text: ")"})
			push(items...)
		default:
			sb.WriteString("(error)")
		}
	}
}

// ShowValue renders a constant value without its type
func ShowValue(v Value) string {
	switch c := v.(type) {
	case *Integer:
		return c.Value.String()
	case *ByteString:
		return "#" + hex.EncodeToString(c.Value)
	case *String:
		return strconv.Quote(c.Value)
	case *Bool:
		if c.Value {
			return "True"
		}
		return "False"
	case *Unit:
		return "()"
	case *List:
		items := make([]string, 0, len(c.Items))
		for _, item := range c.Items {
			items = append(items, ShowValue(item))
		}
		return "[" + strings.Join(items, ", ") + "]"
	case *Pair:
		return "(" + ShowValue(c.Fst) + ", " + ShowValue(c.Snd) + ")"
	case *DataValue:
		return "(" + ShowData(c.Value) + ")"
	}
	return "()"
}

// ShowData renders a data value in UPLC data literal syntax
func ShowData(d Data) string {
	switch v := d.(type) {
	case *DataConstr:
		fields := make([]string, 0, len(v.Fields))
		for _, f := range v.Fields {
			fields = append(fields, ShowData(f))
		}
		return fmt.Sprintf(
			"Constr %d [%s]",
			v.Tag,
			strings.Join(fields, ", "),
		)
	case *DataMap:
		pairs := make([]string, 0, len(v.Pairs))
		for _, p := range v.Pairs {
			pairs = append(
				pairs,
				"("+ShowData(p.Key)+", "+ShowData(p.Value)+")",
			)
		}
		return "Map [" + strings.Join(pairs, ", ") + "]"
	case *DataList:
		items := make([]string, 0, len(v.Items))
		for _, item := range v.Items {
			items = append(items, ShowData(item))
		}
		return "List [" + strings.Join(items, ", ") + "]"
	case *DataInteger:
		return "I " + v.Value.String()
	case *DataBytes:
		return "B #" + hex.EncodeToString(v.Value)
	}
	return "I 0"
}
