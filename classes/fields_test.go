package classes

import (
	"sort"
	"testing"
)

func TestFieldSetDefineIdempotent(t *testing.T) {
	fs := newFieldSet()
	fs.define("x")
	fs.define("x")
	if !fs.hasDirectly("x") {
		t.Fatalf("x must be defined")
	}
	if len(fs.defined) != 1 {
		t.Fatalf("defined set has %d entries, want 1", len(fs.defined))
	}
	if fs.hasDirectly("y") {
		t.Fatalf("y was never defined")
	}
}

func TestFieldSetReadOnlyTagging(t *testing.T) {
	fs := newFieldSet()
	fs.define("x")

	if fs.isReadOnly("x") {
		t.Fatalf("fresh field must not be read-only")
	}
	if err := fs.tagReadOnly("obj", "x", true); err != nil {
		t.Fatalf("tag on: %v", err)
	}
	if !fs.isReadOnly("x") {
		t.Fatalf("x must be read-only after tagging")
	}
	if err := fs.tagReadOnly("obj", "x", false); err != nil {
		t.Fatalf("tag off: %v", err)
	}
	if fs.isReadOnly("x") {
		t.Fatalf("x must be writable after untagging")
	}
}

func TestFieldSetTagUndefined(t *testing.T) {
	fs := newFieldSet()
	err := fs.tagReadOnly("obj", "ghost", true)
	var undef *UndefinedFieldError
	requireErrorAs(t, err, &undef)
	if undef.Field != "ghost" {
		t.Fatalf("error field = %q, want ghost", undef.Field)
	}
}

func TestFieldSetNames(t *testing.T) {
	fs := newFieldSet()
	for _, name := range []string{"b", "a", "c"} {
		fs.define(name)
	}
	names := fs.names()
	sort.Strings(names)
	if len(names) != 3 || names[0] != "a" || names[2] != "c" {
		t.Fatalf("names = %v, want [a b c]", names)
	}
}
