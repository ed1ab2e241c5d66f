package classes

func NewNil() Value            { return Value{kind: KindNil} }
func NewBool(b bool) Value     { return Value{kind: KindBool, data: b} }
func NewInt(i int64) Value     { return Value{kind: KindInt, data: i} }
func NewFloat(f float64) Value { return Value{kind: KindFloat, data: f} }
func NewString(s string) Value { return Value{kind: KindString, data: s} }
func NewArray(a []Value) Value { return Value{kind: KindArray, data: a} }
func NewHash(h map[string]Value) Value {
	return Value{kind: KindHash, data: h}
}

// NewMethod wraps a Go function as a method value. The name appears in stack
// traces when the method fails.
func NewMethod(name string, fn MethodFunc) Value {
	return Value{kind: KindMethod, data: &Method{Name: name, Fn: fn}}
}

func NewClassValue(cls *Class) Value {
	return Value{kind: KindClass, data: cls}
}

func NewInstanceValue(inst *Instance) Value {
	return Value{kind: KindInstance, data: inst}
}
