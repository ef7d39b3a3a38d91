package source

// OutputSource is the single root beep.Streamer the audio device pulls
// from. It is conceptually an infinite stream: when its current child runs
// out, it picks up whatever was armed in the Source Queue State, and when
// nothing was armed it fills with silence so the device never starves
// (spec §4.4).
type OutputSource struct {
	ctrl    *Controls
	current *ControlledSource
}

// NewOutputSource returns an OutputSource with no current child; the first
// Stream call will look for whatever is armed in ctrl's Source Queue State.
func NewOutputSource(ctrl *Controls) *OutputSource {
	return &OutputSource{ctrl: ctrl}
}

// Stream implements beep.Streamer. It never returns ok == false.
func (o *OutputSource) Stream(samples [][2]float64) (n int, ok bool) {
	for n < len(samples) {
		if o.current != nil {
			read, streamOK := o.current.Stream(samples[n:])
			n += read
			if !streamOK {
				o.current = nil
			}
			if read > 0 {
				continue
			}
		}

		if o.current == nil {
			o.loadNext()
			if o.current != nil {
				continue
			}
		}

		// Nothing armed: fill the remainder of this pull with silence so
		// the device is never starved.
		for i := n; i < len(samples); i++ {
			samples[i] = [2]float64{0, 0}
		}
		n = len(samples)
	}

	return n, true
}

// Err reports the error of the currently playing child, if any.
func (o *OutputSource) Err() error {
	if o.current == nil {
		return nil
	}
	return o.current.Err()
}

// loadNext prefers the gapless preload slot (the common case: the player
// armed the following track while the current one was still playing) and
// falls back to the Source Queue State (the first track of a fresh play
// session, where there is no "current child" yet to splice after).
func (o *OutputSource) loadNext() {
	if next := o.ctrl.TakePreload(); next != nil {
		o.current = next
		o.ctrl.SetQueueState(QueueState{Kind: QueuePlaying, Source: next})
		return
	}

	qs := o.ctrl.QueueState()
	if qs.Kind != QueueQueued || qs.Source == nil {
		o.current = nil
		return
	}

	o.current = qs.Source
	o.ctrl.SetQueueState(QueueState{Kind: QueuePlaying, Source: qs.Source})
}
