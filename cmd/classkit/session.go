package main

import (
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/classkit/classkit/classes"
)

// The playground speaks a small line-oriented command language:
//
//	class Dog : Animal
//	method Dog.speak = "Woof"
//	new d = Dog("Rex")
//	set d.name = "Rex"
//	get d.name
//	call d.speak
//	freeze d.name
//	classes | vars | save <file> | load <file>
//
// Lines starting with # are comments.

type command struct {
	verb    string
	class   string
	base    string
	varName string
	target  string
	field   string
	literal classes.Value
	args    []classes.Value
	path    string
}

func parseCommand(line string) (*command, error) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return nil, nil
	}
	verb, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch verb {
	case "class":
		name, base, hasBase := strings.Cut(rest, ":")
		cmd := &command{verb: verb, class: strings.TrimSpace(name)}
		if hasBase {
			cmd.base = strings.TrimSpace(base)
			if cmd.base == "" {
				return nil, fmt.Errorf("class: base name missing after %q", rest)
			}
		}
		if cmd.class == "" {
			return nil, fmt.Errorf("class: name required")
		}
		return cmd, nil
	case "method":
		lhs, lit, ok := strings.Cut(rest, "=")
		if !ok {
			return nil, fmt.Errorf("method: expected Class.name = <literal>")
		}
		target, field, err := splitMember(strings.TrimSpace(lhs))
		if err != nil {
			return nil, fmt.Errorf("method: %w", err)
		}
		value, err := parseLiteral(strings.TrimSpace(lit))
		if err != nil {
			return nil, fmt.Errorf("method: %w", err)
		}
		return &command{verb: verb, target: target, field: field, literal: value}, nil
	case "new":
		varName, call, ok := strings.Cut(rest, "=")
		if !ok {
			return nil, fmt.Errorf("new: expected var = Class(args)")
		}
		varName = strings.TrimSpace(varName)
		if varName == "" {
			return nil, fmt.Errorf("new: variable name required")
		}
		class, args, err := parseCall(strings.TrimSpace(call))
		if err != nil {
			return nil, fmt.Errorf("new: %w", err)
		}
		return &command{verb: verb, varName: varName, class: class, args: args}, nil
	case "set":
		lhs, lit, ok := strings.Cut(rest, "=")
		if !ok {
			return nil, fmt.Errorf("set: expected var.field = <literal>")
		}
		target, field, err := splitMember(strings.TrimSpace(lhs))
		if err != nil {
			return nil, fmt.Errorf("set: %w", err)
		}
		value, err := parseLiteral(strings.TrimSpace(lit))
		if err != nil {
			return nil, fmt.Errorf("set: %w", err)
		}
		return &command{verb: verb, target: target, field: field, literal: value}, nil
	case "get", "freeze":
		target, field, err := splitMember(rest)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", verb, err)
		}
		return &command{verb: verb, target: target, field: field}, nil
	case "call":
		if open := strings.IndexByte(rest, '('); open >= 0 {
			member := strings.TrimSpace(rest[:open])
			target, field, err := splitMember(member)
			if err != nil {
				return nil, fmt.Errorf("call: %w", err)
			}
			args, err := parseArgs(rest[open:])
			if err != nil {
				return nil, fmt.Errorf("call: %w", err)
			}
			return &command{verb: verb, target: target, field: field, args: args}, nil
		}
		target, field, err := splitMember(rest)
		if err != nil {
			return nil, fmt.Errorf("call: %w", err)
		}
		return &command{verb: verb, target: target, field: field}, nil
	case "classes", "vars":
		if rest != "" {
			return nil, fmt.Errorf("%s takes no arguments", verb)
		}
		return &command{verb: verb}, nil
	case "save", "load":
		if rest == "" {
			return nil, fmt.Errorf("%s: file path required", verb)
		}
		return &command{verb: verb, path: rest}, nil
	default:
		return nil, fmt.Errorf("unknown command %q", verb)
	}
}

func splitMember(s string) (string, string, error) {
	target, field, ok := strings.Cut(s, ".")
	if !ok || target == "" || field == "" {
		return "", "", fmt.Errorf("expected target.field, got %q", s)
	}
	return target, field, nil
}

// parseCall parses Class(arg, arg, ...). A bare Class name means no args.
func parseCall(s string) (string, []classes.Value, error) {
	open := strings.IndexByte(s, '(')
	if open < 0 {
		if s == "" {
			return "", nil, fmt.Errorf("class name required")
		}
		return s, nil, nil
	}
	name := strings.TrimSpace(s[:open])
	if name == "" {
		return "", nil, fmt.Errorf("class name required")
	}
	args, err := parseArgs(s[open:])
	if err != nil {
		return "", nil, err
	}
	return name, args, nil
}

func parseArgs(s string) ([]classes.Value, error) {
	if !strings.HasPrefix(s, "(") || !strings.HasSuffix(s, ")") {
		return nil, fmt.Errorf("malformed argument list %q", s)
	}
	inner := strings.TrimSpace(s[1 : len(s)-1])
	if inner == "" {
		return nil, nil
	}
	parts, err := splitTopLevel(inner)
	if err != nil {
		return nil, err
	}
	args := make([]classes.Value, len(parts))
	for i, part := range parts {
		v, err := parseLiteral(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return args, nil
}

// splitTopLevel splits on commas outside double quotes.
func splitTopLevel(s string) ([]string, error) {
	var parts []string
	var cur strings.Builder
	inQuote := false
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case ch == '"' && (i == 0 || s[i-1] != '\\'):
			inQuote = !inQuote
			cur.WriteByte(ch)
		case ch == ',' && !inQuote:
			parts = append(parts, cur.String())
			cur.Reset()
		default:
			cur.WriteByte(ch)
		}
	}
	if inQuote {
		return nil, fmt.Errorf("unterminated string in %q", s)
	}
	parts = append(parts, cur.String())
	return parts, nil
}

func parseLiteral(s string) (classes.Value, error) {
	switch {
	case s == "":
		return classes.NewNil(), fmt.Errorf("literal required")
	case s == "nil":
		return classes.NewNil(), nil
	case s == "true":
		return classes.NewBool(true), nil
	case s == "false":
		return classes.NewBool(false), nil
	case strings.HasPrefix(s, "\""):
		text, err := strconv.Unquote(s)
		if err != nil {
			return classes.NewNil(), fmt.Errorf("bad string literal %s: %w", s, err)
		}
		return classes.NewString(text), nil
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return classes.NewInt(i), nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return classes.NewFloat(f), nil
	}
	return classes.NewNil(), fmt.Errorf("bad literal %q", s)
}

type session struct {
	reg      *classes.Registry
	vars     map[string]*classes.Instance
	varOrder []string
}

func newSession(logger *slog.Logger) *session {
	return &session{
		reg:  classes.NewRegistry(classes.Config{Logger: logger}),
		vars: make(map[string]*classes.Instance),
	}
}

// eval parses and executes one line, returning the text to display. Empty
// output means the line was blank or a comment.
func (s *session) eval(line string) (string, error) {
	cmd, err := parseCommand(line)
	if err != nil || cmd == nil {
		return "", err
	}
	return s.run(cmd)
}

func (s *session) run(cmd *command) (string, error) {
	switch cmd.verb {
	case "class":
		var base *classes.Class
		if cmd.base != "" {
			b, ok := s.reg.Lookup(cmd.base)
			if !ok {
				return "", fmt.Errorf("base class %q is not defined", cmd.base)
			}
			base = b
		}
		if _, err := s.reg.Define(cmd.class, base); err != nil {
			return "", err
		}
		if cmd.base != "" {
			return fmt.Sprintf("defined class %s (base %s)", cmd.class, cmd.base), nil
		}
		return fmt.Sprintf("defined class %s", cmd.class), nil
	case "method":
		cls, ok := s.reg.Lookup(cmd.target)
		if !ok {
			return "", fmt.Errorf("class %q is not defined", cmd.target)
		}
		result := cmd.literal
		err := cls.Set(cmd.field, classes.NewMethod(cmd.field, func(self classes.Value, args []classes.Value) (classes.Value, error) {
			return result, nil
		}))
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("defined method %s.%s", cmd.target, cmd.field), nil
	case "new":
		cls, ok := s.reg.Lookup(cmd.class)
		if !ok {
			return "", fmt.Errorf("class %q is not defined", cmd.class)
		}
		inst, err := cls.New(cmd.args...)
		if err != nil {
			return "", err
		}
		s.bind(cmd.varName, inst)
		return fmt.Sprintf("%s = %s", cmd.varName, inst.String()), nil
	case "set":
		inst, err := s.instance(cmd.target)
		if err != nil {
			return "", err
		}
		if err := inst.Set(cmd.field, cmd.literal); err != nil {
			return "", err
		}
		return fmt.Sprintf("%s.%s = %s", cmd.target, cmd.field, cmd.literal.String()), nil
	case "get":
		inst, err := s.instance(cmd.target)
		if err != nil {
			return "", err
		}
		v, ok := inst.Get(cmd.field)
		if !ok {
			return fmt.Sprintf("%s.%s is not defined", cmd.target, cmd.field), nil
		}
		return v.String(), nil
	case "call":
		inst, err := s.instance(cmd.target)
		if err != nil {
			return "", err
		}
		out, err := inst.Call(cmd.field, cmd.args...)
		if err != nil {
			return "", err
		}
		return out.String(), nil
	case "freeze":
		inst, err := s.instance(cmd.target)
		if err != nil {
			return "", err
		}
		if err := inst.Freeze(cmd.field); err != nil {
			return "", err
		}
		return fmt.Sprintf("%s.%s is now read-only", cmd.target, cmd.field), nil
	case "classes":
		names := s.reg.Classes()
		if len(names) == 0 {
			return "no classes defined", nil
		}
		return strings.Join(names, "\n"), nil
	case "vars":
		if len(s.varOrder) == 0 {
			return "no variables bound", nil
		}
		lines := make([]string, len(s.varOrder))
		for i, name := range s.varOrder {
			lines[i] = fmt.Sprintf("%s = %s", name, s.vars[name].String())
		}
		return strings.Join(lines, "\n"), nil
	case "save":
		data, err := s.reg.Snapshot(s.vars)
		if err != nil {
			return "", err
		}
		if err := os.WriteFile(cmd.path, data, 0o644); err != nil {
			return "", fmt.Errorf("save: %w", err)
		}
		return fmt.Sprintf("saved %d classes, %d vars to %s", len(s.reg.Classes()), len(s.vars), cmd.path), nil
	case "load":
		data, err := os.ReadFile(cmd.path)
		if err != nil {
			return "", fmt.Errorf("load: %w", err)
		}
		restored, err := s.reg.Restore(data)
		if err != nil {
			return "", err
		}
		labels := make([]string, 0, len(restored))
		for label := range restored {
			labels = append(labels, label)
		}
		sort.Strings(labels)
		for _, label := range labels {
			s.bind(label, restored[label])
		}
		return fmt.Sprintf("loaded %d vars from %s", len(restored), cmd.path), nil
	default:
		return "", fmt.Errorf("unknown command %q", cmd.verb)
	}
}

func (s *session) bind(name string, inst *classes.Instance) {
	if _, exists := s.vars[name]; !exists {
		s.varOrder = append(s.varOrder, name)
	}
	s.vars[name] = inst
}

func (s *session) instance(name string) (*classes.Instance, error) {
	inst, ok := s.vars[name]
	if !ok {
		return nil, fmt.Errorf("variable %q is not bound", name)
	}
	return inst, nil
}
