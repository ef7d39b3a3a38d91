package source

import "github.com/gopxl/beep/v2"

// DeviceSampleRate is the fixed rate the audio device is opened at. The
// Output Source streams continuously from process start (silence when
// nothing is armed), so the device rate is pinned up front rather than
// inferred lazily from whatever track happens to play first; every decoded
// track is resampled to this rate before being wrapped in a Controlled
// Source (internal/decoder.Resample).
const DeviceSampleRate beep.SampleRate = 44100
