package monitoring

import (
	"testing"
)

func TestSetLogger(t *testing.T) {
	original := Logf
	defer func() { Logf = original }()

	called := false
	SetLogger(func(format string, v ...interface{}) {
		called = true
	})
	Logf("test message")
	if !called {
		t.Error("Custom logger was not called")
	}

	// nil installs a no-op that must not panic or reach the previous logger
	called = false
	SetLogger(nil)
	Logf("test")
	if called {
		t.Error("No-op logger should not have triggered callback")
	}
}

func TestLogf_Default(t *testing.T) {
	if Logf == nil {
		t.Error("Logf should not be nil by default")
	}
	defer func() {
		if r := recover(); r != nil {
			t.Errorf("Logf panicked: %v", r)
		}
	}()
	Logf("test message: %s", "value")
}

func TestComponent(t *testing.T) {
	lines, restore := Capture()
	defer restore()

	logf := Component("ghost")
	logf("lap %d done", 2)

	if len(*lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(*lines))
	}
	if got, want := (*lines)[0], "[ghost] lap 2 done"; got != want {
		t.Errorf("line = %q, want %q", got, want)
	}
}

func TestComponent_FollowsSetLogger(t *testing.T) {
	original := Logf
	defer func() { Logf = original }()

	logf := Component("race")
	var got string
	SetLogger(func(format string, v ...interface{}) { got = format })
	logf("state change")
	if got != "[race] state change" {
		t.Errorf("format = %q, want prefixed format", got)
	}
}
