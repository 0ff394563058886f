package browser

import (
	"errors"
	"strings"
	"testing"
)

func TestOpen_PassesValidURL(t *testing.T) {
	var got string
	err := Open(func(u string) error { got = u; return nil }, "https://ns.example.com/")
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	if got != "https://ns.example.com/" {
		t.Fatalf("opened %q", got)
	}
}

func TestOpen_RejectsUnsafeTargets(t *testing.T) {
	called := false
	open := func(string) error { called = true; return nil }
	for _, target := range []string{"file:///etc/passwd", "javascript:alert(1)", "https://", "::"} {
		if err := Open(open, target); err == nil {
			t.Fatalf("Open(%q) returned nil error", target)
		}
	}
	if called {
		t.Fatal("opener called for a rejected URL")
	}
}

func TestOpen_WrapsLauncherError(t *testing.T) {
	err := Open(func(string) error { return errors.New("no display") }, "http://localhost:1337")
	if err == nil || !strings.Contains(err.Error(), "open browser") {
		t.Fatalf("Open error = %v, want wrapped launcher error", err)
	}
}
