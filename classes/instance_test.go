package classes

import "testing"

func TestInstanceOfThreeLevelChain(t *testing.T) {
	c := mustDefine(t, "C", nil)
	b := mustDefine(t, "B", c)
	d := mustDefine(t, "D", b)
	e := mustDefine(t, "E", nil)

	inst := mustNew(t, d)
	for _, ancestor := range []*Class{d, b, c} {
		if !inst.InstanceOf(ancestor) {
			t.Fatalf("instance.InstanceOf(%s) = false, want true", ancestor.Name())
		}
	}
	if inst.InstanceOf(e) {
		t.Fatalf("instance.InstanceOf(E) = true, want false")
	}
}

func TestBaseChainConstruction(t *testing.T) {
	c := mustDefine(t, "C", nil)
	b := mustDefine(t, "B", c)
	d := mustDefine(t, "D", b)

	inst := mustNew(t, d)
	if inst.Base() == nil || inst.Base().ClassOf() != b {
		t.Fatalf("first base should be a B instance")
	}
	if inst.Base().Base() == nil || inst.Base().Base().ClassOf() != c {
		t.Fatalf("second base should be a C instance")
	}
	if inst.Base().Base().Base() != nil {
		t.Fatalf("root instance must have no base")
	}
}

func TestConstructorArgsForwardedDownChain(t *testing.T) {
	var got []string
	record := func(level string) Value {
		return NewMethod("init", func(self Value, args []Value) (Value, error) {
			label := level
			if len(args) == 1 {
				label += ":" + args[0].String()
			}
			got = append(got, label)
			return NewNil(), nil
		})
	}
	animal := mustDefine(t, "Animal", nil)
	mustSet(t, animal, "init", record("Animal"))
	dog := mustDefine(t, "Dog", animal)
	mustSet(t, dog, "init", record("Dog"))

	mustNew(t, dog, NewString("Rex"))
	if len(got) != 2 || got[0] != "Animal:Rex" || got[1] != "Dog:Rex" {
		t.Fatalf("init order/args = %v, want [Animal:Rex Dog:Rex]", got)
	}
}

func TestMethodOverrideDispatch(t *testing.T) {
	animal, dog := animalDog(t)

	d := mustNew(t, dog)
	out, err := d.Call("speak")
	if err != nil {
		t.Fatalf("Dog speak: unexpected error: %v", err)
	}
	if out.String() != "Woof" {
		t.Fatalf("Dog speak = %q, want Woof", out.String())
	}

	a := mustNew(t, animal)
	out, err = a.Call("speak")
	if err != nil {
		t.Fatalf("Animal speak: unexpected error: %v", err)
	}
	if out.String() != "..." {
		t.Fatalf("Animal speak = %q, want ...", out.String())
	}
}

func TestWriteMethodFieldThroughInstanceFails(t *testing.T) {
	_, dog := animalDog(t)
	d := mustNew(t, dog)

	err := d.Set("speak", NewString("nope"))
	var onClass *DefinedOnClassError
	requireErrorAs(t, err, &onClass)
	if onClass.Class != "Dog" || onClass.Field != "speak" {
		t.Fatalf("error names %s.%s, want Dog.speak", onClass.Class, onClass.Field)
	}

	// reading the same field must succeed and yield the method
	v, ok := d.Get("speak")
	if !ok || v.Method() == nil {
		t.Fatalf("reading a class method through an instance must return the method")
	}
}

func TestBaseFieldSharedNotDuplicated(t *testing.T) {
	animal, dog := animalDog(t)
	_ = animal
	d := mustNew(t, dog)

	if v, _ := d.Get("name"); v.String() != "unknown" {
		t.Fatalf("constructed name = %q, want unknown", v.String())
	}
	if err := d.Set("name", NewString("Rex")); err != nil {
		t.Fatalf("Set(name): unexpected error: %v", err)
	}
	if v, _ := d.Get("name"); v.String() != "Rex" {
		t.Fatalf("name = %q, want Rex", v.String())
	}
	// the write must land on the base instance's copy, not shadow it
	if v, _ := d.Base().Get("name"); v.String() != "Rex" {
		t.Fatalf("base copy = %q, want Rex", v.String())
	}
	if d.obj.tracker.hasDirectly("name") {
		t.Fatalf("derived instance must not grow a duplicate name field")
	}
}

func TestThisResolvesToOutermost(t *testing.T) {
	animal, dog := animalDog(t)
	_ = animal
	d := mustNew(t, dog)
	if err := d.Set("name", NewString("Rex")); err != nil {
		t.Fatalf("Set(name): %v", err)
	}

	base := d.Base()
	thisV, ok := base.Get("this")
	if !ok || thisV.Instance() != d {
		t.Fatalf("base this = %v, want the outermost Dog instance", thisV)
	}
	if v, _ := thisV.Instance().Get("name"); v.String() != "Rex" {
		t.Fatalf("d.base.this.name = %q, want Rex", v.String())
	}
	if d.This() != d {
		t.Fatalf("outermost This() must be itself")
	}
}

func TestThisIsReadOnly(t *testing.T) {
	_, dog := animalDog(t)
	d := mustNew(t, dog)
	other := mustNew(t, dog)

	err := d.Set("this", NewInstanceValue(other))
	var ro *ReadOnlyFieldError
	requireErrorAs(t, err, &ro)
	err = d.Base().Set("this", NewInstanceValue(other))
	requireErrorAs(t, err, &ro)
}

func TestFreshFieldAttachesToMostDerived(t *testing.T) {
	_, dog := animalDog(t)
	d := mustNew(t, dog)

	if err := d.Set("collar", NewString("red")); err != nil {
		t.Fatalf("Set(collar): %v", err)
	}
	if !d.obj.tracker.hasDirectly("collar") {
		t.Fatalf("fresh field must attach to the most-derived instance")
	}
	if d.Base().obj.tracker.hasDirectly("collar") {
		t.Fatalf("fresh field leaked onto the base instance")
	}
	// a write through a base handle routes through the outermost instance
	if err := d.Base().Set("tail", NewBool(true)); err != nil {
		t.Fatalf("Set(tail) via base: %v", err)
	}
	if !d.obj.tracker.hasDirectly("tail") {
		t.Fatalf("fresh field written via base handle must attach to the outermost instance")
	}
}

func TestInstanceFreeze(t *testing.T) {
	_, dog := animalDog(t)
	d := mustNew(t, dog)

	if err := d.Freeze("name"); err != nil {
		t.Fatalf("Freeze(name): %v", err)
	}
	err := d.Set("name", NewString("Rex"))
	var ro *ReadOnlyFieldError
	requireErrorAs(t, err, &ro)

	// privileged unlock, write, relock
	owner := d.Base()
	if err := owner.obj.tracker.tagReadOnly(owner.obj.label, "name", false); err != nil {
		t.Fatalf("unlock: %v", err)
	}
	if err := d.Set("name", NewString("Rex")); err != nil {
		t.Fatalf("write after unlock: %v", err)
	}
	if err := owner.obj.tracker.tagReadOnly(owner.obj.label, "name", true); err != nil {
		t.Fatalf("relock: %v", err)
	}
	requireErrorAs(t, d.Set("name", NewString("Spot")), &ro)
	if v, _ := d.Get("name"); v.String() != "Rex" {
		t.Fatalf("name = %q, want Rex", v.String())
	}
}

func TestFreezeUndefinedField(t *testing.T) {
	_, dog := animalDog(t)
	d := mustNew(t, dog)
	var undef *UndefinedFieldError
	requireErrorAs(t, d.Freeze("nonexistent"), &undef)
}

func TestCastClass(t *testing.T) {
	animal, dog := animalDog(t)
	d := mustNew(t, dog)

	base, ok := d.CastClass(animal)
	if !ok || base != d.Base() {
		t.Fatalf("upcast should return the Animal member of the hierarchy")
	}
	// downcast from the base member reaches the derived member via this
	derived, ok := base.CastClass(dog)
	if !ok || derived != d {
		t.Fatalf("downcast should return the outermost Dog instance")
	}
	unrelated := mustDefine(t, "Cat", nil)
	if _, ok := d.CastClass(unrelated); ok {
		t.Fatalf("cast to an unrelated class must fail")
	}
}

func TestReservedInstanceMethods(t *testing.T) {
	animal, dog := animalDog(t)
	d := mustNew(t, dog)

	out, err := d.Call("instanceof", NewClassValue(animal))
	if err != nil || !out.Bool() {
		t.Fatalf("instanceof(Animal) = %v, %v, want true", out, err)
	}
	out, err = d.Call("castclass", NewClassValue(animal))
	if err != nil || out.Instance() != d.Base() {
		t.Fatalf("castclass(Animal) = %v, %v, want the base member", out, err)
	}
}

func TestCallUnknownMember(t *testing.T) {
	_, dog := animalDog(t)
	d := mustNew(t, dog)

	_, err := d.Call("fly")
	var traced *TracedError
	requireErrorAs(t, err, &traced)
	var undef *UndefinedFieldError
	requireErrorAs(t, err, &undef)
}

func TestReservedFieldsPreRegistered(t *testing.T) {
	_, dog := animalDog(t)
	for _, name := range reservedClassFields {
		if !dog.obj.tracker.hasDirectly(name) || !dog.obj.tracker.isReadOnly(name) {
			t.Fatalf("definition must pre-register %q read-only", name)
		}
	}
	d := mustNew(t, dog)
	for _, name := range reservedInstanceFields {
		if !d.obj.tracker.hasDirectly(name) || !d.obj.tracker.isReadOnly(name) {
			t.Fatalf("instance must pre-register %q read-only", name)
		}
	}
}

func TestBaseMethodSeesMostDerivedViaThis(t *testing.T) {
	animal := mustDefine(t, "Animal", nil)
	mustSet(t, animal, "describe", NewMethod("describe", func(self Value, args []Value) (Value, error) {
		this, _ := self.Instance().Get("this")
		v, _ := this.Instance().Get("sound")
		return v, nil
	}))
	dog := mustDefine(t, "Dog", animal)

	d := mustNew(t, dog)
	if err := d.Set("sound", NewString("Woof")); err != nil {
		t.Fatalf("Set(sound): %v", err)
	}
	// invoke the inherited method on the base member directly; reading
	// self's this must still reach the derived instance's data
	out, err := d.Base().Call("describe")
	if err != nil {
		t.Fatalf("describe: %v", err)
	}
	if out.String() != "Woof" {
		t.Fatalf("describe = %q, want Woof", out.String())
	}
}
