package classes

import (
	"strings"

	"github.com/google/uuid"
)

// Instance is one instantiation of a Class. Its base chain mirrors the
// definition's base chain: the base instance is constructed first, owned
// exclusively by its derived instance, and every ancestor's "this" field is
// rebound to the outermost instance so base methods reading self's "this"
// see the most-derived object.
type Instance struct {
	id    string
	class *Class
	base  *Instance
	obj   *object
	h     *Handle
}

// reservedInstanceFields are pre-registered on every instance so user code
// cannot shadow them.
var reservedInstanceFields = []string{"base", "class", "this", "castclass", "instanceof"}

// New constructs an instance of c. The base instance is built first,
// recursively, and every level of the hierarchy receives the same
// constructor arguments. If a definition directly declares an "init" method
// it runs after that level's fields are linked, base levels first. Failures
// surface as traced errors.
func (c *Class) New(args ...Value) (*Instance, error) {
	pushFrame(c.name + "#new")
	defer popFrame()
	inst, err := c.newInstance(args, true)
	if err != nil {
		return nil, traceError(err)
	}
	return inst, nil
}

func (c *Class) newInstance(args []Value, runInit bool) (*Instance, error) {
	var baseInst *Instance
	if c.base != nil {
		bi, err := c.base.newInstance(args, runInit)
		if err != nil {
			return nil, err
		}
		baseInst = bi
	}

	inst := &Instance{
		id:    uuid.NewString(),
		class: c,
		base:  baseInst,
		obj:   newObject(c.name+" instance", c.obj.maxFields),
	}
	self := NewInstanceValue(inst)

	if baseInst != nil {
		inst.obj.defineReserved("base", NewInstanceValue(baseInst))
	} else {
		inst.obj.defineReserved("base", NewNil())
	}
	inst.obj.defineReserved("class", NewClassValue(c))
	inst.obj.defineReserved("this", self)
	inst.obj.defineReserved("castclass", NewMethod(c.name+"#castclass", func(_ Value, args []Value) (Value, error) {
		if len(args) != 1 || args[0].Kind() != KindClass {
			return NewNil(), errInvalidArgument("castclass", "expected a class argument")
		}
		if target, ok := inst.CastClass(args[0].Class()); ok {
			return NewInstanceValue(target), nil
		}
		return NewNil(), nil
	}))
	inst.obj.defineReserved("instanceof", NewMethod(c.name+"#instanceof", func(_ Value, args []Value) (Value, error) {
		if len(args) != 1 || args[0].Kind() != KindClass {
			return NewNil(), errInvalidArgument("instanceof", "expected a class argument")
		}
		return NewBool(inst.InstanceOf(args[0].Class())), nil
	}))

	for anc := baseInst; anc != nil; anc = anc.base {
		if err := anc.rebindThis(self); err != nil {
			return nil, err
		}
	}

	inst.h = newHandle(inst.obj, inst.resolveField, inst.interceptWrite)

	if runInit {
		if v, ok := c.obj.get("init"); ok && v.Kind() == KindMethod {
			if _, err := inst.invoke(v.Method(), args); err != nil {
				return nil, err
			}
		}
	}
	return inst, nil
}

// rebindThis transiently unlocks the read-only "this" field, repoints it at
// the new outermost instance, and relocks it.
func (i *Instance) rebindThis(outer Value) error {
	if err := i.obj.tracker.tagReadOnly(i.obj.label, "this", false); err != nil {
		return err
	}
	i.obj.fields["this"] = outer
	return i.obj.tracker.tagReadOnly(i.obj.label, "this", true)
}

// ID returns the instance's stable identity, assigned at construction and
// preserved across snapshot round-trips.
func (i *Instance) ID() string { return i.id }

// ClassOf returns the definition this instance was constructed from.
func (i *Instance) ClassOf() *Class { return i.class }

// Base returns the base instance, or nil for a root-class instance.
func (i *Instance) Base() *Instance { return i.base }

// This returns the outermost instance of the hierarchy this instance
// belongs to.
func (i *Instance) This() *Instance { return i.thisInstance() }

// Handle returns the proxy fronting this instance.
func (i *Instance) Handle() *Handle { return i.h }

func (i *Instance) Get(name string) (Value, bool) { return i.h.Get(name) }

func (i *Instance) Set(name string, v Value) error { return i.h.Set(name, v) }

func (i *Instance) String() string { return i.h.String() }

// InstanceOf reports whether this instance's class is other or derives
// from it.
func (i *Instance) InstanceOf(other *Class) bool {
	return i.class.InstanceOf(other)
}

// CastClass walks the full hierarchy, starting from the outermost instance,
// and returns the member whose class is exactly cls. Both up- and down-casts
// work from any member of the hierarchy.
func (i *Instance) CastClass(cls *Class) (*Instance, bool) {
	for cur := i.thisInstance(); cur != nil; cur = cur.base {
		if cur.class == cls {
			return cur, true
		}
	}
	return nil, false
}

// Call resolves name through the read path and invokes it as a method with
// this instance as the receiver. Errors carry a stack trace.
func (i *Instance) Call(name string, args ...Value) (Value, error) {
	v, ok := i.Get(name)
	if !ok {
		return NewNil(), traceError(errUndefinedField(i.obj.label, name))
	}
	m := v.Method()
	if m == nil {
		return NewNil(), traceError(errInvalidArgument(i.obj.label, "field %q is a %s, not a method", name, v.Kind()))
	}
	return i.invoke(m, args)
}

// Freeze tags a field read-only on the chain member that owns it. Fails with
// UndefinedFieldError if nothing in the instance chain defines the field.
func (i *Instance) Freeze(name string) error {
	for cur := i; cur != nil; cur = cur.base {
		if cur.obj.tracker.hasDirectly(name) {
			return cur.obj.tracker.tagReadOnly(cur.obj.label, name, true)
		}
	}
	return errUndefinedField(i.obj.label, name)
}

func (i *Instance) invoke(m *Method, args []Value) (Value, error) {
	pushFrame(frameName(i.class.name, m.Name))
	defer popFrame()
	return Scall(m.Fn, NewInstanceValue(i), args...)
}

func (i *Instance) thisInstance() *Instance {
	if v, ok := i.obj.get("this"); ok {
		if t := v.Instance(); t != nil {
			return t
		}
	}
	return i
}

// resolveField implements instance reads: the instance chain is searched
// first and the nearest owner wins, read-only tags never block a read. When
// no instance in the chain owns the field, the definition chain is searched
// for user-declared fields; reserved definition fields (name, base, class,
// new) are invisible through an instance.
func (i *Instance) resolveField(name string) (Value, bool) {
	for cur := i; cur != nil; cur = cur.base {
		if v, ok := cur.obj.get(name); ok {
			return v, true
		}
	}
	for cls := i.class; cls != nil; cls = cls.base {
		if cls.obj.tracker.hasDirectly(name) && !cls.obj.isReserved(name) {
			return cls.obj.fields[name], true
		}
	}
	return Value{}, false
}

// interceptWrite enforces instance writes, evaluated against the outermost
// instance so writes behave identically through any handle in the hierarchy:
// class-level fields reject the write, read-only owners reject the write,
// otherwise the write lands on the chain member that owns the field or, when
// none does, defines a fresh field on the most-derived instance.
func (i *Instance) interceptWrite(name string, v Value) error {
	if name == "" {
		return errInvalidArgument(i.obj.label, "field name must be a non-empty string")
	}
	root := i.thisInstance()
	if owner := root.class.ownerOfUserField(name); owner != nil {
		return errDefinedOnClass(owner.name, name)
	}
	for cur := root; cur != nil; cur = cur.base {
		if cur.obj.tracker.hasDirectly(name) {
			if cur.obj.tracker.isReadOnly(name) {
				return errReadOnlyField(cur.obj.label, name)
			}
			cur.obj.fields[name] = v
			return nil
		}
	}
	return root.obj.set(name, v)
}

func frameName(class, method string) string {
	if strings.Contains(method, "#") {
		return method
	}
	return class + "#" + method
}
