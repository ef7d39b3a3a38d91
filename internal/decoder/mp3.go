package decoder

import (
	"os"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/mp3"

	gomp3 "github.com/llehouerou/go-mp3"
)

func init() {
	registerExt(".mp3", newMP3Decoder)
}

// mp3Decoder wraps beep/mp3's minimp3-backed decoder, the primary MP3 path.
// When beep/mp3 rejects the file it falls back to the pure-Go llehouerou
// decoder, which tolerates a wider range of malformed headers.
type mp3Decoder struct {
	f        *os.File
	streamer beep.StreamSeekCloser
	format   beep.Format
	pos      int64 // samples decoded so far, at format.SampleRate
}

func newMP3Decoder(path string, f *os.File) (Decoder, error) {
	streamer, format, err := mp3.Decode(f)
	if err != nil {
		if _, serr := f.Seek(0, 0); serr == nil {
			if s2, f2, err2 := newGoMP3Decoder(f); err2 == nil {
				return &mp3Decoder{f: f, streamer: s2, format: f2}, nil
			}
		}
		return nil, err
	}
	return &mp3Decoder{f: f, streamer: streamer, format: format}, nil
}

func newGoMP3Decoder(f *os.File) (beep.StreamSeekCloser, beep.Format, error) {
	dec, err := gomp3.NewDecoder(f)
	if err != nil {
		return nil, beep.Format{}, err
	}
	return &goMP3Streamer{dec: dec}, beep.Format{
		SampleRate:  beep.SampleRate(dec.SampleRate()),
		NumChannels: 2,
		Precision:   2,
	}, nil
}

func (d *mp3Decoder) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = d.streamer.Stream(samples)
	d.pos += int64(n)
	return n, ok
}

func (d *mp3Decoder) Err() error { return d.streamer.Err() }

func (d *mp3Decoder) Len() int { return d.streamer.Len() }

func (d *mp3Decoder) Position() time.Duration {
	return d.format.SampleRate.D(int(d.pos))
}

func (d *mp3Decoder) TrySeek(target time.Duration) (time.Duration, error) {
	total, hasTotal := d.TotalDuration()
	if hasTotal {
		if target < 0 {
			target = 0
		}
		if target > total {
			target = total
		}
	} else if target < 0 {
		target = 0
	}

	sample := d.format.SampleRate.N(target)
	if err := d.streamer.Seek(sample); err != nil {
		return d.Position(), &SeekError{Err: err}
	}
	d.pos = int64(sample)
	return d.Position(), nil
}

func (d *mp3Decoder) Format() beep.Format { return d.format }

func (d *mp3Decoder) TotalDuration() (time.Duration, bool) {
	n := d.streamer.Len()
	if n <= 0 {
		return 0, false
	}
	return d.format.SampleRate.D(n), true
}

func (d *mp3Decoder) Close() error {
	err := d.streamer.Close()
	d.f.Close()
	return err
}

// goMP3Streamer adapts llehouerou/go-mp3's frame-at-a-time reader to
// beep.StreamSeekCloser, for files beep/mp3 cannot parse.
type goMP3Streamer struct {
	dec *gomp3.Decoder
	buf [8192]byte
	err error
}

func (s *goMP3Streamer) Stream(samples [][2]float64) (n int, ok bool) {
	if s.err != nil {
		return 0, false
	}

	for n < len(samples) {
		read, err := s.dec.Read(s.buf[:])
		if read == 0 {
			if err != nil {
				s.err = err
			}
			break
		}
		for i := 0; i+4 <= read && n < len(samples); i += 4 {
			l := int16(uint16(s.buf[i]) | uint16(s.buf[i+1])<<8)
			r := int16(uint16(s.buf[i+2]) | uint16(s.buf[i+3])<<8)
			samples[n][0] = float64(l) / 32768
			samples[n][1] = float64(r) / 32768
			n++
		}
	}
	return n, n > 0
}

func (s *goMP3Streamer) Err() error { return s.err }

func (s *goMP3Streamer) Len() int { return int(s.dec.Length() / 4) }

func (s *goMP3Streamer) Position() int { return int(s.dec.Position()) / 4 }

func (s *goMP3Streamer) Seek(p int) error {
	_, err := s.dec.Seek(int64(p)*4, 0)
	return err
}

func (s *goMP3Streamer) Close() error { return nil }
