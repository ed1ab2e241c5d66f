package classes

// Class is a named definition from which instances are constructed. A
// definition owns a field tracker for its directly declared fields (its
// methods and class-level values) and at most one base definition. Base
// definitions are shared references: many derived definitions and instances
// may point at one base, and nothing ever mutates an inherited definition's
// own fields through a derived one.
type Class struct {
	name string
	base *Class
	obj  *object
	h    *Handle
}

// reservedClassFields are pre-registered on every definition so user code
// cannot shadow them.
var reservedClassFields = []string{"name", "base", "class", "new"}

const defaultMaxFields = 256

// Define declares a new class-like type. base may be nil for a root class.
// Cyclic base chains are not checked and must not be constructed.
func Define(name string, base *Class) (*Class, error) {
	return defineClass(name, base, defaultMaxFields)
}

func defineClass(name string, base *Class, maxFields int) (*Class, error) {
	if name == "" {
		return nil, errInvalidArgument("define", "class name must be a non-empty string")
	}
	c := &Class{
		name: name,
		base: base,
		obj:  newObject("class "+name, maxFields),
	}
	c.obj.defineReserved("name", NewString(name))
	if base != nil {
		c.obj.defineReserved("base", NewClassValue(base))
	} else {
		c.obj.defineReserved("base", NewNil())
	}
	// a definition is its own class-of-itself, so .class resolves uniformly
	// on definitions and instances
	c.obj.defineReserved("class", NewClassValue(c))
	c.obj.defineReserved("new", NewMethod(name+"#new", func(self Value, args []Value) (Value, error) {
		inst, err := c.New(args...)
		if err != nil {
			return NewNil(), err
		}
		return NewInstanceValue(inst), nil
	}))
	c.h = newHandle(c.obj, c.resolveField, c.interceptWrite)
	return c, nil
}

// Name returns the declared class name.
func (c *Class) Name() string { return c.name }

// Base returns the direct base definition, or nil.
func (c *Class) Base() *Class { return c.base }

// Handle returns the proxy fronting this definition. Get, Set, Fields, and
// String on the Class itself go through the same proxy.
func (c *Class) Handle() *Handle { return c.h }

func (c *Class) Get(name string) (Value, bool) { return c.h.Get(name) }

func (c *Class) Set(name string, v Value) error { return c.h.Set(name, v) }

func (c *Class) String() string { return c.h.String() }

// InstanceOf reports whether c is other or has other anywhere in its base
// chain. Chains are expected to be shallow; the walk is a plain loop.
func (c *Class) InstanceOf(other *Class) bool {
	for cur := c; cur != nil; cur = cur.base {
		if cur == other {
			return true
		}
	}
	return false
}

// Freeze tags a directly defined field read-only. Fails with
// UndefinedFieldError if the field was never defined on this definition.
func (c *Class) Freeze(name string) error {
	return c.obj.tracker.tagReadOnly(c.obj.label, name, true)
}

// resolveField walks the definition chain, nearest declaration first.
func (c *Class) resolveField(name string) (Value, bool) {
	for cur := c; cur != nil; cur = cur.base {
		if v, ok := cur.obj.get(name); ok {
			return v, true
		}
	}
	return Value{}, false
}

// ownerOfUserField returns the definition in the chain that directly declares
// name, ignoring reserved definition fields. Used by the instance write
// interceptor to detect writes that would clobber class-level fields.
func (c *Class) ownerOfUserField(name string) *Class {
	for cur := c; cur != nil; cur = cur.base {
		if cur.obj.tracker.hasDirectly(name) && !cur.obj.isReserved(name) {
			return cur
		}
	}
	return nil
}

// interceptWrite enforces definition-level ownership: reserved and frozen
// fields reject writes, everything else defines or overwrites a field on this
// definition directly. Shadowing an inherited field declares a fresh field
// here; the base definition keeps its own copy untouched.
func (c *Class) interceptWrite(name string, v Value) error {
	if name == "" {
		return errInvalidArgument(c.obj.label, "field name must be a non-empty string")
	}
	if c.obj.tracker.isReadOnly(name) {
		return errReadOnlyField(c.obj.label, name)
	}
	return c.obj.set(name, v)
}
