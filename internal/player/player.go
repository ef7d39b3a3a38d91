// Package player implements the Player (spec §4.7): it owns the shared
// Controls, the Track List, and the event emission that ties every other
// component together.
package player

import (
	"log"
	"sync"
	"time"

	"github.com/DJ-Laser/homeslashmusic/internal/decoder"
	"github.com/DJ-Laser/homeslashmusic/internal/eventbus"
	"github.com/DJ-Laser/homeslashmusic/internal/source"
	"github.com/DJ-Laser/homeslashmusic/internal/track"
	"github.com/DJ-Laser/homeslashmusic/internal/tracklist"
)

// Error is the typed error every Player operation can return.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return "player: " + e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }

// Player serializes its track-list and queueing operations behind an internal
// mutex, mirroring the single-threaded cooperative control plane of spec §5.
// SetVolume and SetLoopMode do not take that mutex; they write their
// Controls fields directly.
type Player struct {
	mu sync.Mutex

	ctrl *source.Controls
	list *tracklist.TrackList
	bus  *eventbus.Bus
	out  *source.OutputSource
	evs  *source.EventQueue
	pool *blockingPool
	stop chan struct{}
	wg   sync.WaitGroup

	// loadFunc builds a ControlledSource for a track. It defaults to
	// probing the real file; tests substitute a fake to avoid touching
	// the filesystem or a real decoder.
	loadFunc func(*track.Track) (*source.ControlledSource, error)
}

// New builds a Player with a fresh Controls/OutputSource pair and starts
// its run loop. The returned OutputSource is the beep.Streamer to hand to
// the audio device.
func New(bus *eventbus.Bus) (*Player, *source.OutputSource) {
	ctrl := source.NewControls()
	out := source.NewOutputSource(ctrl)

	p := &Player{
		ctrl: ctrl,
		list: tracklist.New(),
		bus:  bus,
		out:  out,
		evs:  source.NewEventQueue(),
		pool: newBlockingPool(),
		stop: make(chan struct{}),
	}
	p.loadFunc = p.loadSourceDefault

	p.wg.Add(1)
	go p.runLoop()

	return p, out
}

// Shutdown terminates the run loop. It does not touch the output source or
// decoders; callers drop those themselves once the audio device is closed.
func (p *Player) Shutdown() {
	close(p.stop)
	p.wg.Wait()
	p.evs.Close()
}

// runLoop is the "single cooperative task" of spec §4.7 that reacts to
// Source Events forever.
func (p *Player) runLoop() {
	defer p.wg.Done()
	for {
		select {
		case ev := <-p.evs.Out():
			p.handleSourceEvent(ev)
		case <-p.stop:
			return
		}
	}
}

func (p *Player) handleSourceEvent(ev source.SourceEvent) {
	switch ev.Kind {
	case source.Finished, source.LoopError:
		p.mu.Lock()
		if err := p.nextTrackLocked(); err != nil {
			log.Printf("player: advance after %s: %v", ev.Kind, err)
		}
		p.mu.Unlock()
	case source.Skipped:
		// No automatic advance: the skip was requested by control-plane
		// intent and whatever method bumped it already acted.
	case source.Seeked:
		p.emit(eventbus.Event{Kind: eventbus.Seeked, Position: ev.Position})
	}
}

func (p *Player) emit(ev eventbus.Event) {
	if p.bus != nil {
		p.bus.Publish(ev)
	}
}

// PlaybackState reports the current playback state.
func (p *Player) PlaybackState() source.PlaybackState {
	return p.ctrl.PlaybackState()
}

// LoopMode reports the current loop mode.
func (p *Player) LoopMode() source.LoopMode {
	return p.ctrl.LoopMode()
}

// Shuffle reports whether shuffle is on.
func (p *Player) Shuffle() bool {
	return p.ctrl.Shuffle()
}

// Volume reports the current volume.
func (p *Player) Volume() float64 {
	return p.ctrl.Volume()
}

// Position reports the last-observed playback offset.
func (p *Player) Position() time.Duration {
	return p.ctrl.Position()
}

// CurrentTrackIndex reports the current position in play order.
func (p *Player) CurrentTrackIndex() int {
	return p.ctrl.CurrentIndex()
}

// CurrentTrack reports the track at the current index, if any.
func (p *Player) CurrentTrack() *track.Track {
	p.mu.Lock()
	defer p.mu.Unlock()
	cur, _, ok := p.list.GetTracksToQueue(p.ctrl.CurrentIndex())
	if !ok {
		return nil
	}
	return cur
}

// TrackList returns every track in current play order.
func (p *Player) TrackList() []*track.Track {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.list.OrderedTracks()
}

// TrackListSnapshot returns the underlying tracks and the shuffle
// permutation over them, for the dispatcher's QueryTrackList response.
func (p *Player) TrackListSnapshot() (tracks []*track.Track, shuffleIndices []int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.list.Snapshot()
}

// Play implements spec §4.7 "play".
func (p *Player) Play() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ctrl.PlaybackState() == Stopped() {
		if p.list.Len() == 0 {
			return nil
		}
		if err := p.queueCurrentTrackLocked(true); err != nil {
			return &Error{Op: "play", Err: err}
		}
	}

	if p.ctrl.PlaybackState() != source.Playing {
		p.ctrl.SetPlaybackState(source.Playing)
		p.emit(eventbus.Event{Kind: eventbus.PlaybackStateChanged, PlaybackState: source.Playing})
	}
	return nil
}

// Pause implements spec §4.7 "pause": Stopped never transitions to Paused.
func (p *Player) Pause() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ctrl.PlaybackState() == source.Playing {
		p.ctrl.SetPlaybackState(source.Paused)
		p.emit(eventbus.Event{Kind: eventbus.PlaybackStateChanged, PlaybackState: source.Paused})
	}
	return nil
}

// Toggle implements spec §4.7 "toggle".
func (p *Player) Toggle() error {
	if p.PlaybackState() == source.Playing {
		return p.Pause()
	}
	return p.Play()
}

// Stop implements spec §4.7 "stop".
func (p *Player) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
	return nil
}

func (p *Player) stopLocked() {
	qs := p.ctrl.QueueState()
	if qs.Kind == source.QueuePlaying || qs.Kind == source.QueueQueued {
		p.ctrl.BumpSkip()
	}
	p.ctrl.SetQueueState(source.QueueState{Kind: source.QueueNone})
	p.ctrl.TakePreload()

	if p.ctrl.PlaybackState() != source.Stopped {
		p.ctrl.SetPlaybackState(source.Stopped)
		p.emit(eventbus.Event{Kind: eventbus.PlaybackStateChanged, PlaybackState: source.Stopped})
	}
	p.ctrl.SetPosition(0)
}

// SetVolume implements spec §4.7 "set_volume".
func (p *Player) SetVolume(v float64) error {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	if v == p.ctrl.Volume() {
		return nil
	}
	p.ctrl.SetVolume(v)
	p.emit(eventbus.Event{Kind: eventbus.VolumeChanged, Volume: v})
	return nil
}

// SetLoopMode implements spec §4.7 "set_loop_mode".
func (p *Player) SetLoopMode(m source.LoopMode) error {
	if m == p.ctrl.LoopMode() {
		return nil
	}
	p.ctrl.SetLoopMode(m)
	p.emit(eventbus.Event{Kind: eventbus.LoopModeChanged, LoopMode: m})
	return nil
}

// SetShuffle implements spec §4.7 "set_shuffle".
func (p *Player) SetShuffle(on bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if on == p.ctrl.Shuffle() {
		return nil
	}

	newIdx := p.list.SetShuffle(on, p.ctrl.CurrentIndex())
	p.ctrl.SetCurrentIndex(newIdx)
	p.ctrl.SetShuffle(on)

	if p.ctrl.PlaybackState() != source.Stopped {
		p.refreshPreloadLocked()
	}

	p.emit(eventbus.Event{Kind: eventbus.ShuffleChanged, Shuffle: on})
	return nil
}

// Stopped is a tiny indirection so Play's zero-state check reads naturally;
// source.Stopped is the zero value of source.PlaybackState.
func Stopped() source.PlaybackState { return source.Stopped }
