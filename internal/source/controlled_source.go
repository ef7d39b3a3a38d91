package source

import (
	"time"

	"github.com/DJ-Laser/homeslashmusic/internal/decoder"
)

// tickInterval bounds control-to-audio latency per spec §4.3.
const tickInterval = 5 * time.Millisecond

// ControlledSource wraps a Decoder and performs a control read-back every
// tickInterval of produced audio, mediating pause, volume, seek, and skip
// between the control plane and the real-time sample loop.
type ControlledSource struct {
	dec    decoder.Decoder
	ctrl   *Controls
	events *EventQueue

	tickSamples    int
	samplesInTick  int
	paused         bool
	volume         float64
	terminated     bool
	terminateEvent SourceEvent
}

// NewControlledSource builds a ControlledSource over dec. events receives
// Finished/Skipped/LoopError/Seeked occurrences; the caller owns the
// queue's lifetime.
func NewControlledSource(dec decoder.Decoder, ctrl *Controls, events *EventQueue) *ControlledSource {
	rate := int(dec.Format().SampleRate)
	tick := rate * int(tickInterval/time.Millisecond) / 1000
	if tick < 1 {
		tick = 1
	}

	return &ControlledSource{
		dec:         dec,
		ctrl:        ctrl,
		events:      events,
		tickSamples: tick,
		volume:      1.0,
	}
}

// Stream implements beep.Streamer.
func (cs *ControlledSource) Stream(samples [][2]float64) (n int, ok bool) {
	if cs.terminated {
		return 0, false
	}

	for n < len(samples) {
		if cs.samplesInTick <= 0 {
			cs.readBack()
			cs.samplesInTick = cs.tickSamples
			if cs.terminated {
				break
			}
		}

		chunk := len(samples) - n
		if chunk > cs.samplesInTick {
			chunk = cs.samplesInTick
		}

		if cs.paused {
			for i := 0; i < chunk; i++ {
				samples[n+i] = [2]float64{0, 0}
			}
			n += chunk
			cs.samplesInTick -= chunk
			continue
		}

		read, streamOK := cs.dec.Stream(samples[n : n+chunk])
		if read > 0 {
			applyVolume(samples[n:n+read], cs.volume)
		}
		n += read
		cs.samplesInTick -= read

		if !streamOK {
			cs.onDecoderExhausted()
			if cs.terminated {
				break
			}
		}
	}

	return n, n > 0 || !cs.terminated
}

func (cs *ControlledSource) Err() error {
	return cs.dec.Err()
}

// readBack performs the five-step control read-back in the order spec
// §4.3 requires.
func (cs *ControlledSource) readBack() {
	if cs.ctrl.TakeSkip() {
		cs.terminate(SourceEvent{Kind: Skipped})
		return
	}

	cs.paused = cs.ctrl.PlaybackState() != Playing
	cs.volume = cs.ctrl.Volume()

	if req, reply, ok := cs.ctrl.TakePendingSeek(); ok {
		target := resolveSeekTarget(req, cs.dec.Position())
		pos, err := cs.dec.TrySeek(target)
		if reply != nil {
			reply <- SeekOutcome{Position: pos, Err: err}
		}
		if err == nil {
			cs.emit(SourceEvent{Kind: Seeked, Position: pos})
		}
	}

	cs.ctrl.SetPosition(cs.dec.Position())
}

func (cs *ControlledSource) onDecoderExhausted() {
	if cs.ctrl.LoopMode() == LoopTrack {
		if _, err := cs.dec.TrySeek(0); err != nil {
			cs.terminate(SourceEvent{Kind: LoopError, Err: err})
			return
		}
		return
	}

	cs.terminate(SourceEvent{Kind: Finished})
}

func (cs *ControlledSource) terminate(ev SourceEvent) {
	cs.terminated = true
	cs.terminateEvent = ev
	cs.emit(ev)

	if cs.ctrl.QueueState().Kind == QueuePlaying {
		cs.ctrl.SetQueueState(QueueState{Kind: QueueNone})
	}
}

func (cs *ControlledSource) emit(ev SourceEvent) {
	if cs.events == nil {
		return
	}
	cs.events.Push(ev)
}

// Close releases the underlying decoder.
func (cs *ControlledSource) Close() error {
	return cs.dec.Close()
}

func resolveSeekTarget(req SeekRequest, current time.Duration) time.Duration {
	switch req.Kind {
	case SeekForward:
		return current + req.Amount
	case SeekBackward:
		return current - req.Amount
	default:
		return req.Amount
	}
}

func applyVolume(samples [][2]float64, vol float64) {
	if vol == 1.0 {
		return
	}
	for i := range samples {
		samples[i][0] *= vol
		samples[i][1] *= vol
	}
}
