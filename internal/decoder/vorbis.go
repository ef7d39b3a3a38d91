package decoder

import (
	"os"
	"time"

	"github.com/gopxl/beep/v2"
	vorbis "github.com/jfreymuth/vorbis"
)

func init() {
	registerExt(".ogg", newVorbisDecoder)
	registerExt(".oga", newVorbisDecoder)
}

type vorbisDecoder struct {
	f      *os.File
	dec    *vorbis.Decoder
	format beep.Format
	pos    int
}

func newVorbisDecoder(path string, f *os.File) (Decoder, error) {
	dec, err := vorbis.NewDecoder(f)
	if err != nil {
		return nil, err
	}

	return &vorbisDecoder{
		f:   f,
		dec: dec,
		format: beep.Format{
			SampleRate:  beep.SampleRate(dec.SampleRate()),
			NumChannels: dec.Channels(),
			Precision:   4,
		},
	}, nil
}

func (d *vorbisDecoder) Stream(samples [][2]float64) (n int, ok bool) {
	buf := make([]float32, len(samples)*d.format.NumChannels)
	read, err := d.dec.Read(buf)
	frames := read / d.format.NumChannels
	for i := 0; i < frames; i++ {
		l := float64(buf[i*d.format.NumChannels])
		r := l
		if d.format.NumChannels > 1 {
			r = float64(buf[i*d.format.NumChannels+1])
		}
		samples[i][0] = l
		samples[i][1] = r
	}
	d.pos += frames
	if err != nil {
		return frames, frames > 0
	}
	return frames, true
}

func (d *vorbisDecoder) Err() error { return nil }

func (d *vorbisDecoder) Position() time.Duration {
	return d.format.SampleRate.D(d.pos)
}

func (d *vorbisDecoder) TrySeek(target time.Duration) (time.Duration, error) {
	return d.Position(), &SeekNotSupportedError{}
}

func (d *vorbisDecoder) Format() beep.Format { return d.format }

func (d *vorbisDecoder) TotalDuration() (time.Duration, bool) {
	return 0, false
}

func (d *vorbisDecoder) Close() error {
	return d.f.Close()
}
