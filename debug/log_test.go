package debug

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLogToWriter(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer Disable()

	Log("voice", "key=%s", "C1")
	out := buf.String()
	if !strings.Contains(out, "key=C1") || !strings.Contains(out, "cat=voice") {
		t.Fatalf("unexpected log output: %q", out)
	}
}

func TestDisabledIsSilent(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	Disable()
	Log("voice", "dropped")
	if strings.Contains(buf.String(), "dropped") {
		t.Fatalf("disabled logger wrote output")
	}
	if Enabled() {
		t.Fatalf("Enabled after Disable")
	}
}

func TestLogEvery(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer Disable()

	for i := 0; i < 10; i++ {
		LogEvery(5, "scan", "tick")
	}
	if n := strings.Count(buf.String(), "tick (every 5"); n != 2 {
		t.Fatalf("LogEvery wrote %d lines; want 2\n%s", n, buf.String())
	}
}

func TestEnableFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "debug.log")
	if err := Enable(path); err != nil {
		t.Fatalf("Enable: %v", err)
	}
	Log("engine", "hello")
	Disable()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "hello") {
		t.Fatalf("log file missing message: %q", data)
	}
}
