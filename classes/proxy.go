package classes

type writeFunc func(name string, v Value) error

// Handle is the indirection every caller goes through to touch a class-like
// object. Reads pass straight to the target's own resolution; writes are
// delegated entirely to the interceptor installed at construction, which is
// where ownership and read-only rules live. Everything else (field listing,
// length, string form) forwards to the target so the Handle is otherwise
// indistinguishable from the raw object.
type Handle struct {
	target *object
	read   func(name string) (Value, bool)
	write  writeFunc
}

func newHandle(target *object, read func(string) (Value, bool), write writeFunc) *Handle {
	return &Handle{target: target, read: read, write: write}
}

func (h *Handle) Get(name string) (Value, bool) {
	return h.read(name)
}

func (h *Handle) Set(name string, v Value) error {
	return h.write(name, v)
}

// Fields returns the names defined directly on the wrapped object, reserved
// names included.
func (h *Handle) Fields() []string {
	return h.target.tracker.names()
}

func (h *Handle) Len() int {
	return len(h.target.tracker.defined)
}

func (h *Handle) String() string {
	return h.target.label
}
