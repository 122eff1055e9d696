package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func fixedLogger(buf *bytes.Buffer, verbose, debug bool) *Logger {
	l := NewLoggerTo(buf, verbose, debug)
	l.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	return l
}

func TestLoggerLevels(t *testing.T) {
	tests := []struct {
		verbose  bool
		debug    bool
		expected string
	}{
		{false, false, "[WARN] 03:04:05: w\n[ERROR] 03:04:05: e\n"},
		{true, false, "[INFO] 03:04:05: i 1\n[WARN] 03:04:05: w\n[ERROR] 03:04:05: e\n"},
		{false, true, "[DEBUG] 03:04:05: d\n[WARN] 03:04:05: w\n[ERROR] 03:04:05: e\n"},
	}

	for _, tt := range tests {
		var buf bytes.Buffer
		l := fixedLogger(&buf, tt.verbose, tt.debug)
		l.Info("i %d", 1)
		l.Debug("d")
		l.Warn("w")
		l.Error("e")

		if buf.String() != tt.expected {
			t.Fatalf("verbose=%v debug=%v. expected=%q, got=%q", tt.verbose, tt.debug, tt.expected, buf.String())
		}
	}
}

func TestNilLoggerDiscards(t *testing.T) {
	var l *Logger
	l.Info("x")
	l.Debug("x")
	l.Warn("x")
	l.Error("x")
}

func TestPrintVersion(t *testing.T) {
	info := &VersionInfo{Version: "1.0.0", BuildDate: "today", CommitSHA: "abc", GoVersion: "go1.23", Platform: "linux", Arch: "amd64"}

	var buf bytes.Buffer
	if err := PrintVersion(&buf, "aurorac", info, false); err != nil {
		t.Fatalf("PrintVersion failed: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "aurorac v1.0.0\n") || !strings.Contains(buf.String(), "Commit: abc") {
		t.Fatalf("unexpected text output %q", buf.String())
	}

	buf.Reset()
	if err := PrintVersion(&buf, "aurorac", info, true); err != nil {
		t.Fatalf("PrintVersion(json) failed: %v", err)
	}

	var decoded struct {
		Tool        string      `json:"tool"`
		VersionInfo VersionInfo `json:"version_info"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("version json does not decode: %v", err)
	}
	if decoded.Tool != "aurorac" || decoded.VersionInfo.Version != "1.0.0" {
		t.Fatalf("unexpected json %+v", decoded)
	}
}

func TestPrintCommandUsage(t *testing.T) {
	var buf bytes.Buffer
	PrintCommandUsage(&buf, "aurorac", CommandInfo{
		Name:        "check",
		Usage:       "aurorac check [-j N] FILE...",
		Description: "Type-check files",
		Flags:       []FlagInfo{{Name: "j", Usage: "parallel files", Default: "4"}, {Name: "json", Usage: "JSON output"}},
		Examples:    []string{"aurorac check a.aur"},
	})

	out := buf.String()
	for _, want := range []string{"aurorac check - Type-check files", "    -j ", "    --json ", "Default: 4", "EXAMPLES:\n    aurorac check a.aur"} {
		if !strings.Contains(out, want) {
			t.Fatalf("usage missing %q, got=%q", want, out)
		}
	}
}

func TestLevelString(t *testing.T) {
	if LevelWarn.String() != "WARN" || Level(9).String() != "LEVEL(9)" {
		t.Fatalf("unexpected level names %q %q", LevelWarn, Level(9))
	}
}
