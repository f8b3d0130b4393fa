package logging

import (
	"bytes"
	"log"
	"os"
	"strings"
	"testing"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"  padded \n line ", 20, "padded   line"},
		{"please cube 4 for me", 6, "please..."},
		{"héllo wörld", 5, "héllo..."},
	}
	for _, tc := range tests {
		if got := Truncate(tc.in, tc.max); got != tc.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tc.in, tc.max, got, tc.want)
		}
	}
}

func TestDebugGate(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)
	prev := DebugEnabled()
	defer SetDebug(prev)

	SetDebug(false)
	Debug("test", "hidden %d", 1)
	if buf.Len() != 0 {
		t.Errorf("expected no output with debug disabled, got %q", buf.String())
	}

	SetDebug(true)
	Debug("test", "shown %d", 2)
	if !strings.Contains(buf.String(), "[test] shown 2") {
		t.Errorf("expected debug line, got %q", buf.String())
	}

	Info("loop", "turn %s", "x")
	if !strings.Contains(buf.String(), "[loop] turn x") {
		t.Errorf("expected info line, got %q", buf.String())
	}
}

func TestToFile(t *testing.T) {
	path := t.TempDir() + "/parley.log"
	closer := ToFile(path)
	defer log.SetOutput(os.Stderr)

	Info("test", "turn %d", 3)
	if err := closer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "[test] turn 3") {
		t.Errorf("log file missing entry: %q", data)
	}
}
