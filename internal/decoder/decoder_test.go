package decoder

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestIsSupportedKnownExtensions(t *testing.T) {
	for _, ext := range []string{".mp3", ".flac", ".ogg", ".oga", ".opus", ".m4a", ".mp4", ".aac"} {
		if !IsSupported("track" + ext) {
			t.Errorf("expected %q to be supported", ext)
		}
	}
}

func TestIsSupportedUnknownExtension(t *testing.T) {
	if IsSupported("notes.txt") {
		t.Error("expected .txt to be unsupported")
	}
}

func TestProbeMissingFile(t *testing.T) {
	_, _, err := Probe("/nonexistent/path/does-not-exist.mp3")
	var openErr *OpenError
	if !errors.As(err, &openErr) {
		t.Fatalf("Probe() error = %v, want *OpenError", err)
	}
}

func TestProbeUnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "unsupported.xyz")
	if err := os.WriteFile(path, []byte("not audio"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, _, err := Probe(path)
	if !errors.Is(err, ErrCodecNotSupported) {
		t.Fatalf("Probe() error = %v, want ErrCodecNotSupported", err)
	}
}
