package decoder

import "fmt"

// ErrCodecNotSupported is returned by Probe when no registered decoder
// claims the file's container/codec.
var ErrCodecNotSupported = fmt.Errorf("decoder: codec not supported")

// OpenError wraps a failure to open the underlying file (spec §4.2,
// "OpenFailed(io)").
type OpenError struct {
	Path string
	Err  error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("decoder: open %q: %v", e.Path, e.Err)
}

func (e *OpenError) Unwrap() error { return e.Err }

// ProbeError wraps a container/format probing failure (spec §4.2,
// "ProbeFailed(format)").
type ProbeError struct {
	Path string
	Err  error
}

func (e *ProbeError) Error() string {
	return fmt.Sprintf("decoder: probe %q: %v", e.Path, e.Err)
}

func (e *ProbeError) Unwrap() error { return e.Err }

// SeekNotSupportedError is returned by TrySeek when the underlying decoder
// cannot honor a seek (spec §4.2, "SeekNotSupported").
type SeekNotSupportedError struct {
	Path string
}

func (e *SeekNotSupportedError) Error() string {
	return fmt.Sprintf("decoder: seek not supported for %q", e.Path)
}

// SeekError wraps an internal seek failure (spec §4.2, "SeekFailed(detail)").
type SeekError struct {
	Path string
	Err  error
}

func (e *SeekError) Error() string {
	return fmt.Sprintf("decoder: seek %q: %v", e.Path, e.Err)
}

func (e *SeekError) Unwrap() error { return e.Err }
