package logtail

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/ShayOinif/Contacts/internal/logging"
)

func TestRead(t *testing.T) {
	// Create a temporary log file
	tmpDir := t.TempDir()
	logPath := filepath.Join(tmpDir, "test.log")

	// Write 10 lines of content
	var content strings.Builder
	var expectedAll []string
	for i := 1; i <= 10; i++ {
		line := fmt.Sprintf("Line %d", i)
		content.WriteString(line + "\n")
		expectedAll = append(expectedAll, line)
	}

	if err := os.WriteFile(logPath, []byte(content.String()), 0644); err != nil {
		t.Fatalf("failed to create test log file: %v", err)
	}

	tests := []struct {
		name     string
		maxLines int
		expected []string
	}{
		{"read all (0)", 0, expectedAll},
		{"read all (negative)", -1, expectedAll},
		{"read partial (5)", 5, expectedAll[5:]},
		{"read exactly all (10)", 10, expectedAll},
		{"read more than exists (20)", 20, expectedAll},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Read(logPath, tt.maxLines)
			if err != nil {
				t.Fatalf("Read() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Read() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestRead_MissingFile(t *testing.T) {
	got, err := Read(filepath.Join(t.TempDir(), "absent.log"), 10)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if got != nil {
		t.Fatalf("Read() = %v, want nil", got)
	}
}

func TestParse(t *testing.T) {
	line := `{"level":"warn","time":"2026-01-02T15:04:05.000Z","logger":"cache","caller":"state/cache.go:10","msg":"contact query failed","failures":2,"error":"source_unavailable"}`
	e := Parse(line)

	if e.Level != "warn" || e.Logger != "cache" || e.Message != "contact query failed" {
		t.Fatalf("Parse() = %+v", e)
	}
	if _, ok := e.Fields["caller"]; ok {
		t.Fatal("caller should not be kept as a field")
	}
	want := "2026-01-02T15:04:05.000Z WARN  [cache] contact query failed error=source_unavailable failures=2"
	if got := e.Format(); got != want {
		t.Fatalf("Format() = %q\nwant       %q", got, want)
	}
}

func TestParse_RawLine(t *testing.T) {
	e := Parse("panic: something broke")
	if e.Raw != "panic: something broke" {
		t.Fatalf("Raw = %q", e.Raw)
	}
	if got := e.Format(); got != "panic: something broke" {
		t.Fatalf("Format() = %q", got)
	}
	if !e.AtLeast("error") {
		t.Fatal("raw lines should pass every level filter")
	}
}

func TestEntry_AtLeast(t *testing.T) {
	tests := []struct {
		level string
		min   string
		want  bool
	}{
		{"info", "warn", false},
		{"warn", "warn", true},
		{"error", "warn", true},
		{"debug", "", true},
		{"info", "bogus", true},
		{"", "info", true},
	}
	for _, tt := range tests {
		e := Entry{Level: tt.level, Message: "m"}
		if got := e.AtLeast(tt.min); got != tt.want {
			t.Errorf("Entry{Level:%q}.AtLeast(%q) = %v, want %v", tt.level, tt.min, got, tt.want)
		}
	}
}

func TestParse_LoggerOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contacts.log")
	logger, err := logging.New(logging.Options{Level: "debug", File: path})
	if err != nil {
		t.Fatalf("logging.New() error = %v", err)
	}
	logger.Named("poller").Warn("contact store failing, refreshing", zap.Int("failures", 3))
	_ = logger.Sync()

	lines, err := Read(path, 1)
	if err != nil || len(lines) != 1 {
		t.Fatalf("Read() = %v, %v", lines, err)
	}
	e := Parse(lines[0])
	if e.Level != "warn" || e.Logger != "poller" || e.Message != "contact store failing, refreshing" {
		t.Fatalf("Parse() = %+v", e)
	}
	if e.Time == "" {
		t.Fatal("time should be decoded")
	}
	if got, ok := e.Fields["failures"].(float64); !ok || got != 3 {
		t.Fatalf("Fields[failures] = %v", e.Fields["failures"])
	}
}
