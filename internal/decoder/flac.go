package decoder

import (
	"io"
	"os"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
)

func init() {
	registerExt(".flac", newFLACDecoder)
}

type flacDecoder struct {
	f        *os.File
	streamer beep.StreamSeekCloser
	format   beep.Format
}

func newFLACDecoder(path string, f *os.File) (Decoder, error) {
	if err := skipID3v2(f); err != nil {
		return nil, err
	}

	streamer, format, err := flac.Decode(f)
	if err != nil {
		return nil, err
	}
	return &flacDecoder{f: f, streamer: streamer, format: format}, nil
}

// skipID3v2 advances f past a leading ID3v2 tag, which some FLAC encoders
// prepend even though the format forbids it; beep/flac expects the stream
// to start with "fLaC" and otherwise rejects the file outright.
func skipID3v2(f *os.File) error {
	var header [10]byte
	if _, err := io.ReadFull(f, header[:]); err != nil {
		if err == io.ErrUnexpectedEOF {
			_, serr := f.Seek(0, io.SeekStart)
			return serr
		}
		return err
	}

	if header[0] != 'I' || header[1] != 'D' || header[2] != '3' {
		_, err := f.Seek(0, io.SeekStart)
		return err
	}

	size := int64(header[6]&0x7f)<<21 | int64(header[7]&0x7f)<<14 |
		int64(header[8]&0x7f)<<7 | int64(header[9]&0x7f)
	_, err := f.Seek(10+size, io.SeekStart)
	return err
}

func (d *flacDecoder) Stream(samples [][2]float64) (int, bool) {
	return d.streamer.Stream(samples)
}

func (d *flacDecoder) Err() error { return d.streamer.Err() }

func (d *flacDecoder) Position() time.Duration {
	return d.format.SampleRate.D(d.streamer.Position())
}

func (d *flacDecoder) TrySeek(target time.Duration) (time.Duration, error) {
	if total, ok := d.TotalDuration(); ok {
		if target < 0 {
			target = 0
		}
		if target > total {
			target = total
		}
	} else if target < 0 {
		target = 0
	}

	if err := d.streamer.Seek(d.format.SampleRate.N(target)); err != nil {
		return d.Position(), &SeekError{Err: err}
	}
	return d.Position(), nil
}

func (d *flacDecoder) Format() beep.Format { return d.format }

func (d *flacDecoder) TotalDuration() (time.Duration, bool) {
	n := d.streamer.Len()
	if n <= 0 {
		return 0, false
	}
	return d.format.SampleRate.D(n), true
}

func (d *flacDecoder) Close() error {
	err := d.streamer.Close()
	d.f.Close()
	return err
}
