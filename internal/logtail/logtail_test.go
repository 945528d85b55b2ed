package logtail

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestRead(t *testing.T) {
	tmpDir := t.TempDir()
	logPath := filepath.Join(tmpDir, "test.log")

	var content strings.Builder
	var expectedAll []string
	for i := 1; i <= 10; i++ {
		line := fmt.Sprintf("Line %d", i)
		content.WriteString(line + "\n")
		expectedAll = append(expectedAll, line)
	}
	if err := os.WriteFile(logPath, []byte(content.String()), 0o644); err != nil {
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
	got, err := Read(filepath.Join(t.TempDir(), "nope.log"), 10)
	if err != nil || got != nil {
		t.Fatalf("Read(missing) = %v, %v; want nil, nil", got, err)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Entry
	}{
		{
			name: "plain record",
			in:   `time=2025-10-08T21:01:05.000+07:00 level=INFO msg="session refreshed"`,
			want: Entry{Time: "2025-10-08T21:01:05.000+07:00", Level: "INFO", Message: "session refreshed"},
		},
		{
			name: "record with attrs",
			in:   `time=2025-10-08T21:01:05Z level=WARN msg="refresh failed, clearing session" error="api /auth/refresh returned status 401: \"bad\"" failures=3`,
			want: Entry{
				Time:    "2025-10-08T21:01:05Z",
				Level:   "WARN",
				Message: "refresh failed, clearing session",
				Attrs: []Attr{
					{Key: "error", Value: `api /auth/refresh returned status 401: "bad"`},
					{Key: "failures", Value: "3"},
				},
			},
		},
		{
			name: "bare message",
			in:   `level=ERROR msg=boom`,
			want: Entry{Level: "ERROR", Message: "boom"},
		},
		{
			name: "not a record",
			in:   "panic: runtime error",
			want: Entry{Raw: "panic: runtime error"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Parse(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Parse() = %#v, want %#v", got, tt.want)
			}
		})
	}
}
