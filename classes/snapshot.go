package classes

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Snapshots capture a registry's class definitions and a labelled set of
// live instances as YAML. Data fields round-trip with their read-only tags
// and instance ids; method bodies are Go closures and only their names are
// recorded, so restoring a snapshot re-attaches behaviour from whatever
// classes the host has already defined.

type snapshotFile struct {
	Classes   []classSnapshot    `yaml:"classes"`
	Instances []instanceSnapshot `yaml:"instances,omitempty"`
}

type classSnapshot struct {
	Name    string                   `yaml:"name"`
	Base    string                   `yaml:"base,omitempty"`
	Fields  map[string]fieldSnapshot `yaml:"fields,omitempty"`
	Methods []string                 `yaml:"methods,omitempty"`
}

type instanceSnapshot struct {
	Label  string                   `yaml:"label,omitempty"`
	ID     string                   `yaml:"id"`
	Class  string                   `yaml:"class"`
	Fields map[string]fieldSnapshot `yaml:"fields,omitempty"`
	Base   *instanceSnapshot        `yaml:"base,omitempty"`
}

type fieldSnapshot struct {
	Value    any  `yaml:"value"`
	ReadOnly bool `yaml:"readonly,omitempty"`
}

// Snapshot serializes every registered class plus the given instances,
// keyed by caller-chosen labels.
func (r *Registry) Snapshot(instances map[string]*Instance) ([]byte, error) {
	var doc snapshotFile
	for _, name := range r.Classes() {
		cls, ok := r.Lookup(name)
		if !ok {
			continue
		}
		doc.Classes = append(doc.Classes, r.snapshotClass(cls))
	}

	labels := make([]string, 0, len(instances))
	for label := range instances {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	for _, label := range labels {
		rec := r.snapshotInstance(instances[label])
		rec.Label = label
		doc.Instances = append(doc.Instances, rec)
	}

	out, err := yaml.Marshal(&doc)
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	r.logger.Debug("snapshot written", "classes", len(doc.Classes), "instances", len(doc.Instances), "bytes", len(out))
	return out, nil
}

func (r *Registry) snapshotClass(cls *Class) classSnapshot {
	rec := classSnapshot{Name: cls.Name()}
	if cls.Base() != nil {
		rec.Base = cls.Base().Name()
	}
	names := cls.obj.tracker.names()
	sort.Strings(names)
	for _, name := range names {
		if cls.obj.isReserved(name) {
			continue
		}
		v := cls.obj.fields[name]
		if v.Kind() == KindMethod {
			rec.Methods = append(rec.Methods, name)
			continue
		}
		plain, ok := encodeValue(v)
		if !ok {
			r.logger.Debug("snapshot: skipping field", "class", cls.Name(), "field", name, "kind", v.Kind().String())
			continue
		}
		if rec.Fields == nil {
			rec.Fields = make(map[string]fieldSnapshot)
		}
		rec.Fields[name] = fieldSnapshot{Value: plain, ReadOnly: cls.obj.tracker.isReadOnly(name)}
	}
	return rec
}

func (r *Registry) snapshotInstance(inst *Instance) instanceSnapshot {
	rec := instanceSnapshot{ID: inst.ID(), Class: inst.ClassOf().Name()}
	names := inst.obj.tracker.names()
	sort.Strings(names)
	for _, name := range names {
		if inst.obj.isReserved(name) {
			continue
		}
		v := inst.obj.fields[name]
		plain, ok := encodeValue(v)
		if !ok {
			r.logger.Debug("snapshot: skipping field", "instance", inst.ID(), "field", name, "kind", v.Kind().String())
			continue
		}
		if rec.Fields == nil {
			rec.Fields = make(map[string]fieldSnapshot)
		}
		rec.Fields[name] = fieldSnapshot{Value: plain, ReadOnly: inst.obj.tracker.isReadOnly(name)}
	}
	if inst.Base() != nil {
		base := r.snapshotInstance(inst.Base())
		rec.Base = &base
	}
	return rec
}

// Restore loads a snapshot: classes missing from the registry are defined
// (data fields only; method names are logged and must be re-attached by the
// host), and instances are rebuilt without running constructors, preserving
// ids, field values, and read-only tags. Returns restored instances by
// label.
func (r *Registry) Restore(data []byte) (map[string]*Instance, error) {
	if len(data) > r.config.MaxSnapshotBytes {
		return nil, errInvalidArgument("restore", "snapshot exceeds %d bytes", r.config.MaxSnapshotBytes)
	}
	var doc snapshotFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("restore: %w", err)
	}

	for _, rec := range doc.Classes {
		if err := r.restoreClass(rec); err != nil {
			return nil, err
		}
	}

	out := make(map[string]*Instance, len(doc.Instances))
	for _, rec := range doc.Instances {
		inst, err := r.restoreInstance(rec)
		if err != nil {
			return nil, err
		}
		label := rec.Label
		if label == "" {
			label = rec.ID
		}
		out[label] = inst
	}
	r.logger.Debug("snapshot restored", "classes", len(doc.Classes), "instances", len(out))
	return out, nil
}

func (r *Registry) restoreClass(rec classSnapshot) error {
	var base *Class
	if rec.Base != "" {
		b, ok := r.Lookup(rec.Base)
		if !ok {
			return errInvalidArgument("restore", "class %q requires base %q, which is not defined", rec.Name, rec.Base)
		}
		base = b
	}
	cls, ok := r.Lookup(rec.Name)
	if ok {
		if (cls.Base() == nil) != (base == nil) || (base != nil && cls.Base() != base) {
			return errInvalidArgument("restore", "class %q exists with a different base", rec.Name)
		}
	} else {
		defined, err := r.Define(rec.Name, base)
		if err != nil {
			return err
		}
		cls = defined
		for _, method := range rec.Methods {
			r.logger.Debug("restore: method not restorable", "class", rec.Name, "method", method)
		}
	}
	return applyFields(cls.obj, rec.Fields)
}

func (r *Registry) restoreInstance(rec instanceSnapshot) (*Instance, error) {
	cls, ok := r.Lookup(rec.Class)
	if !ok {
		return nil, errInvalidArgument("restore", "instance %q references undefined class %q", rec.ID, rec.Class)
	}
	inst, err := cls.newInstance(nil, false)
	if err != nil {
		return nil, err
	}
	cur, curRec := inst, &rec
	for curRec != nil {
		if cur == nil {
			return nil, errInvalidArgument("restore", "instance %q has a deeper chain than class %q", rec.ID, rec.Class)
		}
		if cur.ClassOf().Name() != curRec.Class {
			return nil, errInvalidArgument("restore", "instance chain mismatch: have %q, snapshot says %q", cur.ClassOf().Name(), curRec.Class)
		}
		if _, err := uuid.Parse(curRec.ID); err != nil {
			return nil, errInvalidArgument("restore", "instance id %q is not a valid uuid", curRec.ID)
		}
		cur.id = curRec.ID
		if err := applyFields(cur.obj, curRec.Fields); err != nil {
			return nil, err
		}
		cur, curRec = cur.Base(), curRec.Base
	}
	return inst, nil
}

func applyFields(o *object, fields map[string]fieldSnapshot) error {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if o.isReserved(name) {
			continue
		}
		if err := o.set(name, decodeValue(fields[name].Value)); err != nil {
			return err
		}
		if fields[name].ReadOnly {
			if err := o.tracker.tagReadOnly(o.label, name, true); err != nil {
				return err
			}
		}
	}
	return nil
}

func encodeValue(v Value) (any, bool) {
	switch v.Kind() {
	case KindNil:
		return nil, true
	case KindBool:
		return v.Bool(), true
	case KindInt:
		return v.Int(), true
	case KindFloat:
		return v.Float(), true
	case KindString:
		return v.data.(string), true
	case KindArray:
		out := make([]any, 0, len(v.Array()))
		for _, el := range v.Array() {
			plain, ok := encodeValue(el)
			if !ok {
				return nil, false
			}
			out = append(out, plain)
		}
		return out, true
	case KindHash:
		out := make(map[string]any, len(v.Hash()))
		for k, el := range v.Hash() {
			plain, ok := encodeValue(el)
			if !ok {
				return nil, false
			}
			out[k] = plain
		}
		return out, true
	default:
		return nil, false
	}
}

func decodeValue(raw any) Value {
	switch t := raw.(type) {
	case nil:
		return NewNil()
	case bool:
		return NewBool(t)
	case int:
		return NewInt(int64(t))
	case int64:
		return NewInt(t)
	case uint64:
		return NewInt(int64(t))
	case float64:
		return NewFloat(t)
	case string:
		return NewString(t)
	case []any:
		out := make([]Value, len(t))
		for i, el := range t {
			out[i] = decodeValue(el)
		}
		return NewArray(out)
	case map[string]any:
		out := make(map[string]Value, len(t))
		for k, el := range t {
			out[k] = decodeValue(el)
		}
		return NewHash(out)
	default:
		return NewString(fmt.Sprintf("%v", t))
	}
}
