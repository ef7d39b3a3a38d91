package source

import (
	"time"

	"github.com/gopxl/beep/v2"
)

// fakeDecoder produces n samples of constant amplitude value, then ends,
// satisfying the decoder.Decoder interface for tests.
type fakeDecoder struct {
	value    float64
	total    int
	produced int
	pos      time.Duration
	rate     beep.SampleRate
	seeks    int
}

func newFakeDecoder(total int, rate int) *fakeDecoder {
	return &fakeDecoder{total: total, value: 1.0, rate: beep.SampleRate(rate)}
}

func (d *fakeDecoder) Stream(samples [][2]float64) (n int, ok bool) {
	remaining := d.total - d.produced
	if remaining <= 0 {
		return 0, false
	}
	if remaining > len(samples) {
		remaining = len(samples)
	}
	for i := 0; i < remaining; i++ {
		samples[i] = [2]float64{d.value, d.value}
	}
	d.produced += remaining
	d.pos = d.rate.D(d.produced)
	return remaining, true
}

func (d *fakeDecoder) Err() error { return nil }

func (d *fakeDecoder) TrySeek(target time.Duration) (time.Duration, error) {
	d.seeks++
	d.produced = d.rate.N(target)
	d.pos = target
	return target, nil
}

func (d *fakeDecoder) Position() time.Duration { return d.pos }

func (d *fakeDecoder) Format() beep.Format {
	return beep.Format{SampleRate: d.rate, NumChannels: 2, Precision: 2}
}

func (d *fakeDecoder) TotalDuration() (time.Duration, bool) {
	return d.rate.D(d.total), true
}

func (d *fakeDecoder) Close() error { return nil }
