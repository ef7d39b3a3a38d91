package eventbus

import (
	"testing"
	"time"
)

func TestSubscribeReceivesPublishedEvents(t *testing.T) {
	b := New()
	defer b.Close()

	sub := b.Subscribe()
	defer sub.Close()

	b.Publish(Event{Kind: VolumeChanged, Volume: 0.5})

	select {
	case ev := <-sub.Events():
		if ev.Kind != VolumeChanged || ev.Volume != 0.5 {
			t.Fatalf("got %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestMultipleSubscribersEachReceiveBroadcast(t *testing.T) {
	b := New()
	defer b.Close()

	a := b.Subscribe()
	defer a.Close()
	c := b.Subscribe()
	defer c.Close()

	b.Publish(Event{Kind: ShuffleChanged, Shuffle: true})

	for _, s := range []*Subscription{a, c} {
		select {
		case ev := <-s.Events():
			if ev.Kind != ShuffleChanged || !ev.Shuffle {
				t.Fatalf("got %+v", ev)
			}
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for event")
		}
	}
}

func TestUnsubscribedSubscriberStopsReceiving(t *testing.T) {
	b := New()
	defer b.Close()

	sub := b.Subscribe()
	sub.Close()

	// Give the bus goroutine a moment to process the unsubscribe.
	time.Sleep(10 * time.Millisecond)
	b.Publish(Event{Kind: VolumeChanged})

	select {
	case _, open := <-sub.Events():
		if open {
			t.Fatal("expected the subscription's channel to be closed")
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for channel close")
	}
}

func TestUnboundedQueueDoesNotBlockPublisherOnSlowSubscriber(t *testing.T) {
	b := New()
	defer b.Close()

	sub := b.Subscribe()
	defer sub.Close()

	const n = 500
	done := make(chan struct{})
	go func() {
		for i := 0; i < n; i++ {
			b.Publish(Event{Kind: VolumeChanged, Volume: float64(i)})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("publisher blocked despite an unbounded per-subscriber queue")
	}

	received := 0
	for i := 0; i < n; i++ {
		select {
		case <-sub.Events():
			received++
		case <-time.After(time.Second):
			t.Fatalf("only received %d/%d events", received, n)
		}
	}
}
