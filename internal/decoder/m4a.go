package decoder

import (
	"fmt"
	"os"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/llehouerou/alac"
	"github.com/llehouerou/go-faad2"
	m4a "github.com/llehouerou/go-m4a"
)

func init() {
	registerExt(".m4a", newM4ADecoder)
	registerExt(".mp4", newM4ADecoder)
	registerExt(".aac", newM4ADecoder)
}

// codecStream is satisfied by both the AAC and ALAC sub-decoders, letting
// m4aDecoder stay agnostic to which codec the container carries.
type codecStream interface {
	// Decode turns one container sample (an access unit) into interleaved
	// PCM16 samples.
	Decode(frame []byte) ([]int16, error)
	SampleRate() int
	Channels() int
}

type m4aDecoder struct {
	f      *os.File
	demux  *m4a.Demuxer
	codec  codecStream
	format beep.Format
	pos    int
	carry  []int16
}

func newM4ADecoder(path string, f *os.File) (Decoder, error) {
	demux, err := m4a.NewDemuxer(f)
	if err != nil {
		return nil, err
	}

	track := demux.AudioTrack()
	if track == nil {
		return nil, fmt.Errorf("m4a: no audio track")
	}

	var codec codecStream
	switch track.Codec() {
	case m4a.CodecAAC:
		codec, err = faad2.NewDecoder(track.DecoderConfig())
	case m4a.CodecALAC:
		codec, err = alac.NewDecoder(track.DecoderConfig())
	default:
		return nil, ErrCodecNotSupported
	}
	if err != nil {
		return nil, err
	}

	return &m4aDecoder{
		f:     f,
		demux: demux,
		codec: codec,
		format: beep.Format{
			SampleRate:  beep.SampleRate(codec.SampleRate()),
			NumChannels: codec.Channels(),
			Precision:   2,
		},
	}, nil
}

func (d *m4aDecoder) Stream(samples [][2]float64) (n int, ok bool) {
	ch := d.format.NumChannels

	for n < len(samples) {
		if len(d.carry) < ch {
			frame, err := d.demux.NextSample()
			if err != nil {
				break
			}
			pcm, err := d.codec.Decode(frame)
			if err != nil {
				// Skip the bad packet and keep decoding; only a demuxer
				// error (EOF or a corrupt container) ends the stream.
				continue
			}
			d.carry = pcm
		}
		for len(d.carry) >= ch && n < len(samples) {
			l := float64(d.carry[0]) / 32768
			r := l
			if ch > 1 {
				r = float64(d.carry[1]) / 32768
			}
			samples[n][0] = l
			samples[n][1] = r
			d.carry = d.carry[ch:]
			n++
		}
	}

	d.pos += n
	return n, n > 0
}

func (d *m4aDecoder) Err() error { return nil }

func (d *m4aDecoder) Position() time.Duration {
	return d.format.SampleRate.D(d.pos)
}

func (d *m4aDecoder) TrySeek(target time.Duration) (time.Duration, error) {
	return d.Position(), &SeekNotSupportedError{}
}

func (d *m4aDecoder) Format() beep.Format { return d.format }

func (d *m4aDecoder) TotalDuration() (time.Duration, bool) {
	if dur, ok := d.demux.Duration(); ok {
		return dur, true
	}
	return 0, false
}

func (d *m4aDecoder) Close() error {
	return d.f.Close()
}
