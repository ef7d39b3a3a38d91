package decoder

import "github.com/gopxl/beep/v2"

// resampledDecoder adapts a Decoder to stream at a fixed rate, leaving
// Position/TrySeek/TotalDuration untouched since they are time-based and
// carry no sample-rate dependency.
type resampledDecoder struct {
	Decoder
	streamer beep.Streamer
	format   beep.Format
}

// Resample wraps dec so every sample it streams is already converted to
// rate. The root Output Source (internal/source) concatenates decoders from
// different tracks onto one continuous stream and has no chance to resample
// after the fact, so every Decoder handed to a Controlled Source must
// already agree on one sample rate. A no-op when dec's native rate matches.
func Resample(dec Decoder, rate beep.SampleRate) Decoder {
	native := dec.Format()
	if native.SampleRate == rate {
		return dec
	}

	format := native
	format.SampleRate = rate

	return &resampledDecoder{
		Decoder:  dec,
		streamer: beep.Resample(4, native.SampleRate, rate, dec),
		format:   format,
	}
}

func (r *resampledDecoder) Stream(samples [][2]float64) (n int, ok bool) {
	return r.streamer.Stream(samples)
}

func (r *resampledDecoder) Format() beep.Format {
	return r.format
}
