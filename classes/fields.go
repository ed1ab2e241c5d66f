package classes

// fieldSet records which field names are legitimately defined on one
// class-like object, and which of those are read-only. Only package code can
// touch the read-only subset; external callers never see the tracker
// directly, so read-only tags can only change through privileged
// unlock/relock sequences during construction.
type fieldSet struct {
	defined  map[string]struct{}
	readOnly map[string]struct{}
}

func newFieldSet() *fieldSet {
	return &fieldSet{
		defined:  make(map[string]struct{}),
		readOnly: make(map[string]struct{}),
	}
}

// define registers name as a field of the owning object. Idempotent.
func (fs *fieldSet) define(name string) {
	fs.defined[name] = struct{}{}
}

// hasDirectly reports whether name was registered on this object itself, not
// on anything in its base chain.
func (fs *fieldSet) hasDirectly(name string) bool {
	_, ok := fs.defined[name]
	return ok
}

func (fs *fieldSet) isReadOnly(name string) bool {
	_, ok := fs.readOnly[name]
	return ok
}

// tagReadOnly marks or unmarks a defined field as read-only. Tagging an
// unregistered name fails; construction code relies on this to catch typos in
// reserved-field setup.
func (fs *fieldSet) tagReadOnly(object, name string, readOnly bool) error {
	if !fs.hasDirectly(name) {
		return errUndefinedField(object, name)
	}
	if readOnly {
		fs.readOnly[name] = struct{}{}
	} else {
		delete(fs.readOnly, name)
	}
	return nil
}

func (fs *fieldSet) names() []string {
	out := make([]string, 0, len(fs.defined))
	for name := range fs.defined {
		out = append(out, name)
	}
	return out
}
