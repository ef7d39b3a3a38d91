package source

import (
	"testing"
	"time"
)

func TestControlledSourcePausedYieldsSilence(t *testing.T) {
	ctrl := NewControls()
	ctrl.SetPlaybackState(Paused)
	events := NewEventQueue()
	defer events.Close()

	dec := newFakeDecoder(1000, 1000)
	cs := NewControlledSource(dec, ctrl, events)

	buf := make([][2]float64, 10)
	n, ok := cs.Stream(buf)
	if !ok || n != 10 {
		t.Fatalf("Stream() = (%d, %v), want (10, true)", n, ok)
	}
	for _, s := range buf {
		if s[0] != 0 || s[1] != 0 {
			t.Fatalf("expected silence while paused, got %v", s)
		}
	}
	if dec.produced != 0 {
		t.Fatalf("paused source should not advance the decoder, produced = %d", dec.produced)
	}
}

func TestControlledSourceSkipTerminates(t *testing.T) {
	ctrl := NewControls()
	ctrl.SetPlaybackState(Playing)
	ctrl.BumpSkip()
	events := NewEventQueue()
	defer events.Close()

	dec := newFakeDecoder(1000, 1000)
	cs := NewControlledSource(dec, ctrl, events)

	buf := make([][2]float64, 10)
	_, _ = cs.Stream(buf)

	select {
	case ev := <-events.Out():
		if ev.Kind != Skipped {
			t.Fatalf("event kind = %v, want Skipped", ev.Kind)
		}
	case <-time.After(time.Second):
		t.Fatal("expected a Skipped event")
	}
}

func TestControlledSourceFinishedAtEndOfStream(t *testing.T) {
	ctrl := NewControls()
	ctrl.SetPlaybackState(Playing)
	events := NewEventQueue()
	defer events.Close()

	dec := newFakeDecoder(3, 1000) // shorter than one tick (5 samples)
	cs := NewControlledSource(dec, ctrl, events)

	buf := make([][2]float64, 20)
	cs.Stream(buf) // first call drains the decoder and terminates internally

	n, ok := cs.Stream(buf)
	if ok || n != 0 {
		t.Fatalf("Stream() after termination = (%d, %v), want (0, false)", n, ok)
	}

	select {
	case ev := <-events.Out():
		if ev.Kind != Finished {
			t.Fatalf("event kind = %v, want Finished", ev.Kind)
		}
	case <-time.After(time.Second):
		t.Fatal("expected a Finished event")
	}
}

func TestControlledSourceLoopTrackLoopsInsteadOfFinishing(t *testing.T) {
	ctrl := NewControls()
	ctrl.SetPlaybackState(Playing)
	ctrl.SetLoopMode(LoopTrack)
	events := NewEventQueue()
	defer events.Close()

	dec := newFakeDecoder(3, 1000)
	cs := NewControlledSource(dec, ctrl, events)

	buf := make([][2]float64, 20)
	n, ok := cs.Stream(buf)
	if !ok {
		t.Fatal("Stream() ok = false, want the source to keep going under LoopTrack")
	}
	if n != len(buf) {
		t.Fatalf("n = %d, want %d (looping should keep filling the buffer)", n, len(buf))
	}
	if dec.seeks == 0 {
		t.Fatal("expected at least one seek-to-zero from looping")
	}

	select {
	case ev := <-events.Out():
		t.Fatalf("expected no Finished/Skipped event while looping, got %v", ev.Kind)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestControlledSourceAppliesVolume(t *testing.T) {
	ctrl := NewControls()
	ctrl.SetPlaybackState(Playing)
	ctrl.SetVolume(0.5)
	events := NewEventQueue()
	defer events.Close()

	dec := newFakeDecoder(1000, 1000)
	cs := NewControlledSource(dec, ctrl, events)

	buf := make([][2]float64, 4)
	n, ok := cs.Stream(buf)
	if !ok || n != 4 {
		t.Fatalf("Stream() = (%d, %v)", n, ok)
	}
	for _, s := range buf {
		if s[0] != 0.5 {
			t.Fatalf("sample = %v, want amplitude scaled to 0.5", s)
		}
	}
}

func TestControlledSourceSeekDeliversOutcome(t *testing.T) {
	ctrl := NewControls()
	ctrl.SetPlaybackState(Playing)
	events := NewEventQueue()
	defer events.Close()

	dec := newFakeDecoder(1000, 1000)
	cs := NewControlledSource(dec, ctrl, events)

	reply := ctrl.SetPendingSeek(SeekRequest{Kind: SeekTo, Amount: 0})

	buf := make([][2]float64, 1) // forces a read-back tick
	cs.Stream(buf)

	select {
	case outcome := <-reply:
		if outcome.Err != nil {
			t.Fatalf("unexpected seek error: %v", outcome.Err)
		}
	default:
		t.Fatal("expected a seek outcome to be delivered")
	}
}
