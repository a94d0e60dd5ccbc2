package debug

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLogWriter(t *testing.T) {
	var buf bytes.Buffer
	EnableWriter(&buf)
	defer Disable()

	Log("melody", "note %d", 3)
	if !strings.Contains(buf.String(), "melody") || !strings.Contains(buf.String(), "note 3") {
		t.Errorf("unexpected log output %q", buf.String())
	}
}

func TestLogDisabled(t *testing.T) {
	var buf bytes.Buffer
	EnableWriter(&buf)
	Disable()
	Log("melody", "dropped")
	if buf.Len() != 0 {
		t.Errorf("disabled logger wrote %q", buf.String())
	}
	if Enabled() {
		t.Error("Enabled after Disable")
	}
}

func TestLogEvery(t *testing.T) {
	var buf bytes.Buffer
	EnableWriter(&buf)
	defer Disable()

	for i := 0; i < 10; i++ {
		LogEvery(5, "harmony", "step")
	}
	if got := strings.Count(buf.String(), "\n"); got != 2 {
		t.Errorf("got %d lines, want 2:\n%s", got, buf.String())
	}
}

func TestEnableFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "debug.log")
	if err := Enable(path); err != nil {
		t.Fatalf("Enable: %v", err)
	}
	Log("repeat", "starts=%v", []int{0, 4})
	Disable()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "Debug logging started") || !strings.Contains(string(data), "starts=[0 4]") {
		t.Errorf("unexpected log file contents %q", data)
	}
}
