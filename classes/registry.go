package classes

import (
	"io"
	"log/slog"
	"sync"
)

// Config controls registry limits and observability.
type Config struct {
	// Logger receives debug records for definitions, constructions, and
	// snapshot activity. Nil discards everything.
	Logger *slog.Logger
	// MaxFieldsPerObject bounds dynamic field definition per class-like
	// object.
	MaxFieldsPerObject int
	// MaxSnapshotBytes bounds the size of a snapshot accepted by Restore.
	MaxSnapshotBytes int
}

// Registry holds class definitions by name and anchors snapshots. The object
// model itself is single-threaded; the registry's map is guarded so host
// programs can look classes up from other goroutines.
type Registry struct {
	config Config
	logger *slog.Logger

	mu      sync.RWMutex
	classes map[string]*Class
	order   []string
}

// NewRegistry constructs a Registry with sane defaults.
func NewRegistry(cfg Config) *Registry {
	if cfg.MaxFieldsPerObject <= 0 {
		cfg.MaxFieldsPerObject = defaultMaxFields
	}
	if cfg.MaxSnapshotBytes <= 0 {
		cfg.MaxSnapshotBytes = 1 << 20
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.Level(127)}))
	}
	return &Registry{
		config:  cfg,
		logger:  logger,
		classes: make(map[string]*Class),
	}
}

// Define declares a class and registers it under its name. Duplicate names
// are rejected.
func (r *Registry) Define(name string, base *Class) (*Class, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.classes[name]; exists {
		return nil, errInvalidArgument("define", "class %q is already defined", name)
	}
	cls, err := defineClass(name, base, r.config.MaxFieldsPerObject)
	if err != nil {
		return nil, err
	}
	r.classes[name] = cls
	r.order = append(r.order, name)
	baseName := ""
	if base != nil {
		baseName = base.Name()
	}
	r.logger.Debug("class defined", "name", name, "base", baseName)
	return cls, nil
}

// Lookup returns the class registered under name.
func (r *Registry) Lookup(name string) (*Class, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cls, ok := r.classes[name]
	return cls, ok
}

// Classes returns registered class names in definition order.
func (r *Registry) Classes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}
