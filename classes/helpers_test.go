package classes

import (
	"errors"
	"testing"
)

func mustDefine(t *testing.T, name string, base *Class) *Class {
	t.Helper()
	cls, err := Define(name, base)
	if err != nil {
		t.Fatalf("Define(%q): unexpected error: %v", name, err)
	}
	return cls
}

func mustSet(t *testing.T, cls *Class, name string, v Value) {
	t.Helper()
	if err := cls.Set(name, v); err != nil {
		t.Fatalf("Set(%q) on %s: unexpected error: %v", name, cls.Name(), err)
	}
}

func mustNew(t *testing.T, cls *Class, args ...Value) *Instance {
	t.Helper()
	inst, err := cls.New(args...)
	if err != nil {
		t.Fatalf("%s.New: unexpected error: %v", cls.Name(), err)
	}
	return inst
}

func requireErrorAs[T error](t *testing.T, err error, want *T) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error, got nil")
	}
	if !errors.As(err, want) {
		t.Fatalf("expected %T, got %T: %v", *want, err, err)
	}
}

// animalDog builds the standard two-level fixture: Animal with a speak
// method returning "..." and an init setting name to "unknown"; Dog derived
// from Animal, overriding speak to return "Woof".
func animalDog(t *testing.T) (*Class, *Class) {
	t.Helper()
	animal := mustDefine(t, "Animal", nil)
	mustSet(t, animal, "speak", NewMethod("speak", func(self Value, args []Value) (Value, error) {
		return NewString("..."), nil
	}))
	mustSet(t, animal, "init", NewMethod("init", func(self Value, args []Value) (Value, error) {
		return NewNil(), self.Instance().Set("name", NewString("unknown"))
	}))
	dog := mustDefine(t, "Dog", animal)
	mustSet(t, dog, "speak", NewMethod("speak", func(self Value, args []Value) (Value, error) {
		return NewString("Woof"), nil
	}))
	return animal, dog
}
