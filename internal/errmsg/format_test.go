//nolint:goconst // test cases intentionally repeat strings for readability
package errmsg

import (
	"errors"
	"testing"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		op       Op
		err      error
		expected string
	}{
		{
			name:     "nil error returns empty string",
			op:       OpSessionStart,
			err:      nil,
			expected: "",
		},
		{
			name:     "formats error with operation",
			op:       OpSessionStart,
			err:      errors.New("no audio device"),
			expected: "Failed to start playback: no audio device",
		},
		{
			name:     "switch operation",
			op:       OpSourceSwitch,
			err:      errors.New(`unknown source "C"`),
			expected: `Failed to switch source: unknown source "C"`,
		},
		{
			name:     "config operation",
			op:       OpConfigLoad,
			err:      errors.New("permission denied"),
			expected: "Failed to load configuration: permission denied",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Format(tt.op, tt.err)
			if result != tt.expected {
				t.Errorf("Format(%q, %v) = %q, want %q", tt.op, tt.err, result, tt.expected)
			}
		})
	}
}

func TestFormatWith(t *testing.T) {
	tests := []struct {
		name     string
		op       Op
		context  string
		err      error
		expected string
	}{
		{
			name:     "nil error returns empty string",
			op:       OpSourceSelect,
			context:  "http_video",
			err:      nil,
			expected: "",
		},
		{
			name:     "formats error with context",
			op:       OpSourceSelect,
			context:  "http_video",
			err:      errors.New("unsupported format"),
			expected: "Failed to select source 'http_video': unsupported format",
		},
		{
			name:     "empty context falls back to Format",
			op:       OpConfigWrite,
			context:  "",
			err:      errors.New("file exists"),
			expected: "Failed to write configuration: file exists",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FormatWith(tt.op, tt.context, tt.err)
			if result != tt.expected {
				t.Errorf("FormatWith(%q, %q, %v) = %q, want %q", tt.op, tt.context, tt.err, result, tt.expected)
			}
		})
	}
}

func TestOpConstants(t *testing.T) {
	ops := []Op{
		OpSessionStart, OpSessionSuspend, OpSourceSwitch, OpSourceSelect,
		OpCatalogBuild, OpCatalogReload,
		OpConfigLoad, OpConfigWrite, OpConfigWatch,
		OpStateOpen, OpStateLoad, OpStateSave,
		OpLogInit, OpInitialize,
	}

	testErr := errors.New("test error")

	for _, op := range ops {
		t.Run(string(op), func(t *testing.T) {
			if op == "" {
				t.Error("Op constant should not be empty")
			}
			expected := "Failed to " + string(op) + ": test error"
			if result := Format(op, testErr); result != expected {
				t.Errorf("Format = %q, want %q", result, expected)
			}
		})
	}
}
