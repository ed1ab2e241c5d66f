package classes

// object is the raw storage behind a class-like value: a field bag plus the
// tracker recording which names are defined and which are frozen. External
// code only ever holds a Handle; package code reaches the object directly for
// privileged writes that bypass the interceptor.
type object struct {
	label     string
	fields    map[string]Value
	tracker   *fieldSet
	reserved  map[string]struct{}
	maxFields int
}

func newObject(label string, maxFields int) *object {
	return &object{
		label:     label,
		fields:    make(map[string]Value),
		tracker:   newFieldSet(),
		reserved:  make(map[string]struct{}),
		maxFields: maxFields,
	}
}

// defineReserved registers a field that user code must not shadow. Reserved
// fields are read-only and invisible when resolved through an instance's
// class chain.
func (o *object) defineReserved(name string, v Value) {
	o.tracker.define(name)
	o.fields[name] = v
	o.reserved[name] = struct{}{}
	// cannot fail: the name was defined one line up
	_ = o.tracker.tagReadOnly(o.label, name, true)
}

func (o *object) isReserved(name string) bool {
	_, ok := o.reserved[name]
	return ok
}

// set bypasses the write interceptor. Construction and snapshot restore use
// it; nothing external can.
func (o *object) set(name string, v Value) error {
	if !o.tracker.hasDirectly(name) {
		if o.maxFields > 0 && len(o.tracker.defined) >= o.maxFields {
			return errInvalidArgument(o.label, "field limit of %d reached", o.maxFields)
		}
		o.tracker.define(name)
	}
	o.fields[name] = v
	return nil
}

func (o *object) get(name string) (Value, bool) {
	if !o.tracker.hasDirectly(name) {
		return Value{}, false
	}
	return o.fields[name], true
}
