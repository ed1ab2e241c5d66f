package classes

type ValueKind int

const (
	KindNil ValueKind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindArray
	KindHash
	KindMethod
	KindClass
	KindInstance
)

// Value is the dynamically typed unit of storage for class-like objects.
// Fields on definitions and instances hold Values; method bodies receive and
// return them.
type Value struct {
	kind ValueKind
	data any
}

// MethodFunc is the Go body of a method. self is the receiver the method was
// resolved through; reading self's "this" field yields the most-derived
// instance in the hierarchy.
type MethodFunc func(self Value, args []Value) (Value, error)

// Method pairs a method body with the name used in stack traces.
type Method struct {
	Name string
	Fn   MethodFunc
}

func (k ValueKind) String() string {
	switch k {
	case KindNil:
		return "nil"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindHash:
		return "hash"
	case KindMethod:
		return "method"
	case KindClass:
		return "class"
	case KindInstance:
		return "instance"
	default:
		return "unknown"
	}
}
