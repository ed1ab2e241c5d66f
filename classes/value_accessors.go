package classes

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

func (v Value) Kind() ValueKind { return v.kind }

func (v Value) IsNil() bool { return v.kind == KindNil }

func (v Value) Bool() bool {
	if v.kind == KindBool {
		return v.data.(bool)
	}
	return false
}

func (v Value) Int() int64 {
	switch v.kind {
	case KindInt:
		return v.data.(int64)
	case KindFloat:
		return int64(v.data.(float64))
	default:
		return 0
	}
}

func (v Value) Float() float64 {
	switch v.kind {
	case KindFloat:
		return v.data.(float64)
	case KindInt:
		return float64(v.data.(int64))
	default:
		return 0
	}
}

func (v Value) Array() []Value {
	if v.kind != KindArray {
		return nil
	}
	return v.data.([]Value)
}

func (v Value) Hash() map[string]Value {
	if v.kind != KindHash {
		return nil
	}
	return v.data.(map[string]Value)
}

func (v Value) Method() *Method {
	if v.kind != KindMethod {
		return nil
	}
	return v.data.(*Method)
}

func (v Value) Class() *Class {
	if v.kind != KindClass {
		return nil
	}
	return v.data.(*Class)
}

func (v Value) Instance() *Instance {
	if v.kind != KindInstance {
		return nil
	}
	return v.data.(*Instance)
}

// String renders a Value for display. Strings render without quotes at the
// top level; nested strings inside arrays and hashes are quoted.
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.data.(string)
	default:
		return v.inspect()
	}
}

func (v Value) inspect() string {
	switch v.kind {
	case KindNil:
		return "nil"
	case KindBool:
		return strconv.FormatBool(v.data.(bool))
	case KindInt:
		return strconv.FormatInt(v.data.(int64), 10)
	case KindFloat:
		return strconv.FormatFloat(v.data.(float64), 'g', -1, 64)
	case KindString:
		return strconv.Quote(v.data.(string))
	case KindArray:
		parts := make([]string, len(v.data.([]Value)))
		for i, el := range v.data.([]Value) {
			parts[i] = el.inspect()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case KindHash:
		h := v.data.(map[string]Value)
		keys := make([]string, 0, len(h))
		for k := range h {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = fmt.Sprintf("%s: %s", k, h[k].inspect())
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case KindMethod:
		return fmt.Sprintf("<method %s>", v.data.(*Method).Name)
	case KindClass:
		return fmt.Sprintf("<class %s>", v.data.(*Class).Name())
	case KindInstance:
		inst := v.data.(*Instance)
		return fmt.Sprintf("<%s instance %s>", inst.ClassOf().Name(), inst.ID())
	default:
		return "<unknown>"
	}
}
