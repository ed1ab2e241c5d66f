package main

import (
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
)

func newTestSession() *session {
	return newSession(slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.Level(127)})))
}

func evalAll(t *testing.T, sess *session, lines ...string) string {
	t.Helper()
	var last string
	for _, line := range lines {
		out, err := sess.eval(line)
		if err != nil {
			t.Fatalf("eval %q: %v", line, err)
		}
		last = out
	}
	return last
}

func TestSessionClassAndMethodDispatch(t *testing.T) {
	sess := newTestSession()
	out := evalAll(t, sess,
		"class Animal",
		`method Animal.speak = "..."`,
		"class Dog : Animal",
		`method Dog.speak = "Woof"`,
		"new d = Dog",
		"call d.speak",
	)
	if out != "Woof" {
		t.Fatalf("call d.speak = %q, want Woof", out)
	}

	out = evalAll(t, sess, "new a = Animal", "call a.speak")
	if out != "..." {
		t.Fatalf("call a.speak = %q, want ...", out)
	}
}

func TestSessionSetGetAndFreeze(t *testing.T) {
	sess := newTestSession()
	evalAll(t, sess,
		"class Animal",
		"new a = Animal",
		`set a.name = "Rex"`,
	)
	if out := evalAll(t, sess, "get a.name"); out != "Rex" {
		t.Fatalf("get a.name = %q, want Rex", out)
	}

	evalAll(t, sess, "freeze a.name")
	if _, err := sess.eval(`set a.name = "Spot"`); err == nil {
		t.Fatalf("write to frozen field must fail")
	}
	if !strings.Contains(evalAll(t, sess, "get a.name"), "Rex") {
		t.Fatalf("frozen field changed")
	}
}

func TestSessionWriteMethodFieldFails(t *testing.T) {
	sess := newTestSession()
	evalAll(t, sess,
		"class Animal",
		`method Animal.speak = "..."`,
		"new a = Animal",
	)
	_, err := sess.eval(`set a.speak = "nope"`)
	if err == nil || !strings.Contains(err.Error(), "defined on class") {
		t.Fatalf("expected a defined-on-class failure, got %v", err)
	}
}

func TestSessionListings(t *testing.T) {
	sess := newTestSession()
	evalAll(t, sess, "class Animal", "class Dog : Animal", "new d = Dog")

	out := evalAll(t, sess, "classes")
	if out != "Animal\nDog" {
		t.Fatalf("classes = %q", out)
	}
	out = evalAll(t, sess, "vars")
	if !strings.HasPrefix(out, "d = ") {
		t.Fatalf("vars = %q", out)
	}
}

func TestSessionSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tape.yaml")
	sess := newTestSession()
	evalAll(t, sess,
		"class Animal",
		"class Dog : Animal",
		"new d = Dog",
		`set d.name = "Rex"`,
		"save "+path,
	)

	fresh := newTestSession()
	evalAll(t, fresh, "load "+path)
	if out := evalAll(t, fresh, "get d.name"); out != "Rex" {
		t.Fatalf("restored d.name = %q, want Rex", out)
	}
}

func TestSessionCommentsAndBlanks(t *testing.T) {
	sess := newTestSession()
	for _, line := range []string{"", "   ", "# a comment"} {
		out, err := sess.eval(line)
		if err != nil || out != "" {
			t.Fatalf("eval(%q) = %q, %v, want silence", line, out, err)
		}
	}
}

func TestSessionErrors(t *testing.T) {
	sess := newTestSession()
	cases := []string{
		"bogus command",
		"class",
		"new d = Ghost",
		"get d.name",
		`set d.name = "Rex"`,
		"call d.speak",
	}
	for _, line := range cases {
		if _, err := sess.eval(line); err == nil {
			t.Fatalf("eval(%q) should fail", line)
		}
	}
}

func TestParseCommandLiterals(t *testing.T) {
	cmd, err := parseCommand(`new d = Dog("Rex, the dog", 3, 1.5, true, nil)`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cmd.class != "Dog" || len(cmd.args) != 5 {
		t.Fatalf("parsed %q with %d args", cmd.class, len(cmd.args))
	}
	if cmd.args[0].String() != "Rex, the dog" {
		t.Fatalf("quoted comma mishandled: %q", cmd.args[0].String())
	}
	if cmd.args[1].Int() != 3 || cmd.args[2].Float() != 1.5 || !cmd.args[3].Bool() || !cmd.args[4].IsNil() {
		t.Fatalf("literal args mishandled: %v", cmd.args)
	}
}

func TestParseCommandRejectsMalformed(t *testing.T) {
	cases := []string{
		"class Dog :",
		"method Dog.speak",
		"method speak = 1",
		"new = Dog",
		"set d.name",
		"get d",
		`new d = Dog("unterminated)`,
		"classes now",
		"save",
	}
	for _, line := range cases {
		if _, err := parseCommand(line); err == nil {
			t.Fatalf("parseCommand(%q) should fail", line)
		}
	}
}
