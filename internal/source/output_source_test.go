package source

import "testing"

func TestOutputSourceFillsSilenceWhenNothingArmed(t *testing.T) {
	ctrl := NewControls()
	out := NewOutputSource(ctrl)

	buf := make([][2]float64, 10)
	n, ok := out.Stream(buf)
	if !ok || n != 10 {
		t.Fatalf("Stream() = (%d, %v), want (10, true)", n, ok)
	}
	for _, s := range buf {
		if s[0] != 0 || s[1] != 0 {
			t.Fatalf("expected silence, got %v", s)
		}
	}
}

func TestOutputSourcePicksUpQueuedSource(t *testing.T) {
	ctrl := NewControls()
	ctrl.SetPlaybackState(Playing)

	dec := newFakeDecoder(1000, 1000)
	events := NewEventQueue()
	defer events.Close()
	cs := NewControlledSource(dec, ctrl, events)
	ctrl.SetQueueState(QueueState{Kind: QueueQueued, Source: cs})

	out := NewOutputSource(ctrl)
	buf := make([][2]float64, 4)
	n, ok := out.Stream(buf)
	if !ok || n != 4 {
		t.Fatalf("Stream() = (%d, %v), want (4, true)", n, ok)
	}
	for _, s := range buf {
		if s[0] != 1.0 {
			t.Fatalf("expected samples from the queued source, got %v", s)
		}
	}

	if ctrl.QueueState().Kind != QueuePlaying {
		t.Fatalf("queue state = %v, want QueuePlaying after handoff", ctrl.QueueState().Kind)
	}
}

func TestOutputSourceFallsBackToSilenceAfterChildFinishes(t *testing.T) {
	ctrl := NewControls()
	ctrl.SetPlaybackState(Playing)

	dec := newFakeDecoder(2, 1000) // exhausts almost immediately
	events := NewEventQueue()
	defer events.Close()
	cs := NewControlledSource(dec, ctrl, events)
	ctrl.SetQueueState(QueueState{Kind: QueueQueued, Source: cs})

	out := NewOutputSource(ctrl)
	buf := make([][2]float64, 20)
	n, ok := out.Stream(buf)
	if !ok {
		t.Fatal("OutputSource.Stream() must never return ok = false")
	}
	if n != len(buf) {
		t.Fatalf("n = %d, want %d (silence fill should top off the buffer)", n, len(buf))
	}
}
