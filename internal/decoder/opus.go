package decoder

import (
	"os"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/jj11hh/opus"
)

func init() {
	registerExt(".opus", newOpusDecoder)
}

const opusSampleRate = 48000

type opusDecoder struct {
	f      *os.File
	stream *opus.OggStream
	format beep.Format
	pos    int
}

func newOpusDecoder(path string, f *os.File) (Decoder, error) {
	stream, err := opus.NewOggStream(f)
	if err != nil {
		return nil, err
	}

	return &opusDecoder{
		f:      f,
		stream: stream,
		format: beep.Format{
			SampleRate:  opusSampleRate,
			NumChannels: stream.Channels(),
			Precision:   4,
		},
	}, nil
}

func (d *opusDecoder) Stream(samples [][2]float64) (n int, ok bool) {
	pcm, err := d.stream.Decode()
	if err != nil || len(pcm) == 0 {
		return 0, false
	}

	ch := d.format.NumChannels
	frames := len(pcm) / ch
	if frames > len(samples) {
		frames = len(samples)
	}
	for i := 0; i < frames; i++ {
		l := float64(pcm[i*ch])
		r := l
		if ch > 1 {
			r = float64(pcm[i*ch+1])
		}
		samples[i][0] = l
		samples[i][1] = r
	}
	d.pos += frames
	return frames, frames > 0
}

func (d *opusDecoder) Err() error { return nil }

func (d *opusDecoder) Position() time.Duration {
	return d.format.SampleRate.D(d.pos)
}

func (d *opusDecoder) TrySeek(target time.Duration) (time.Duration, error) {
	return d.Position(), &SeekNotSupportedError{}
}

func (d *opusDecoder) Format() beep.Format { return d.format }

func (d *opusDecoder) TotalDuration() (time.Duration, bool) {
	return 0, false
}

func (d *opusDecoder) Close() error {
	return d.f.Close()
}
