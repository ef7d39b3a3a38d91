package opserr

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
			op:       OpPlay,
			err:      nil,
			expected: "",
		},
		{
			name:     "formats error with operation",
			op:       OpSeek,
			err:      errors.New("seek not supported"),
			expected: "failed to seek: seek not supported",
		},
		{
			name:     "load tracks operation",
			op:       OpLoadTracks,
			err:      errors.New("directory read failed"),
			expected: "failed to load tracks: directory read failed",
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
			op:       OpLoadTrack,
			context:  "/music/a.flac",
			err:      nil,
			expected: "",
		},
		{
			name:     "formats error with context",
			op:       OpLoadTrack,
			context:  "/music/a.flac",
			err:      errors.New("codec not supported"),
			expected: `failed to load track "/music/a.flac": codec not supported`,
		},
		{
			name:     "empty context falls back to Format",
			op:       OpLoadTrack,
			context:  "",
			err:      errors.New("codec not supported"),
			expected: "failed to load track: codec not supported",
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
