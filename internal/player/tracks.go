package player

import (
	"errors"
	"time"

	"github.com/DJ-Laser/homeslashmusic/internal/decoder"
	"github.com/DJ-Laser/homeslashmusic/internal/eventbus"
	"github.com/DJ-Laser/homeslashmusic/internal/source"
	"github.com/DJ-Laser/homeslashmusic/internal/track"
	"github.com/DJ-Laser/homeslashmusic/internal/tracklist"
)

// errStaleLoad marks a load whose result arrived after a newer operation
// already moved the current track out from under it. The load is discarded
// rather than reported as an error: the track list has already converged to
// whatever that newer operation installed.
var errStaleLoad = errors.New("player: stale track load, superseded")

// PathError pairs a path that failed to load with the reason.
type PathError struct {
	Path string
	Err  error
}

// InsertTracks implements spec §4.7 "insert_tracks". new tracks are loaded
// by the caller (typically via the Track Cache) and handed in already
// resolved; failures loading individual paths are reported by the caller
// before this is ever called.
func (p *Player) InsertTracks(position tracklist.InsertPosition, newTracks []*track.Track) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	newIdx := p.list.Insert(p.ctrl.CurrentIndex(), position, newTracks)
	p.ctrl.SetCurrentIndex(newIdx)

	if position.Kind == tracklist.Replace && p.ctrl.PlaybackState() != source.Stopped {
		if err := p.queueCurrentTrackLocked(false); err != nil {
			return &Error{Op: "insert_tracks", Err: err}
		}
	} else if p.ctrl.PlaybackState() != source.Stopped {
		p.refreshPreloadLocked()
	}

	p.emit(eventbus.Event{Kind: eventbus.CurrentTrackChanged})
	return nil
}

// ClearTracks implements spec §4.7 "clear_tracks".
func (p *Player) ClearTracks() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
	p.list.Clear()
	p.ctrl.SetCurrentIndex(0)
	return nil
}

// NextTrack implements spec §4.7 "next_track".
func (p *Player) NextTrack() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.nextTrackLocked()
}

func (p *Player) nextTrackLocked() error {
	next := p.ctrl.CurrentIndex() + 1
	if next >= p.list.Len() {
		return p.stopOrWrapLocked(false)
	}

	p.ctrl.SetCurrentIndex(next)
	if p.ctrl.PlaybackState() != source.Stopped {
		if err := p.queueCurrentTrackLocked(true); err != nil {
			return &Error{Op: "next_track", Err: err}
		}
	}
	p.emit(eventbus.Event{Kind: eventbus.CurrentTrackChanged})
	return nil
}

// softSeekBackThreshold is how far into a track "soft" previous-track
// still counts as "restart this track" rather than moving back one.
const softSeekBackThreshold = 5 * time.Second

// PreviousTrack implements spec §4.7 "previous_track(soft)".
func (p *Player) PreviousTrack(soft bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if soft && p.ctrl.Position() > softSeekBackThreshold {
		return p.seekLocked(source.SeekRequest{Kind: source.SeekTo, Amount: 0})
	}

	if p.ctrl.CurrentIndex() == 0 {
		return p.stopOrWrapLocked(true)
	}

	p.ctrl.SetCurrentIndex(p.ctrl.CurrentIndex() - 1)
	if p.ctrl.PlaybackState() != source.Stopped {
		if err := p.queueCurrentTrackLocked(false); err != nil {
			return &Error{Op: "previous_track", Err: err}
		}
	}
	p.emit(eventbus.Event{Kind: eventbus.CurrentTrackChanged})
	return nil
}

// stopOrWrapLocked implements spec §4.7 "stop_or_wrap(reverse)".
func (p *Player) stopOrWrapLocked(reverse bool) error {
	if p.ctrl.LoopMode() == source.LoopNone || p.list.Len() == 0 {
		p.ctrl.SetCurrentIndex(0)
		p.stopLocked()
		return nil
	}

	if reverse {
		p.ctrl.SetCurrentIndex(p.list.Len() - 1)
	} else {
		p.ctrl.SetCurrentIndex(0)
	}

	if p.ctrl.PlaybackState() != source.Stopped {
		if err := p.queueCurrentTrackLocked(false); err != nil {
			return &Error{Op: "stop_or_wrap", Err: err}
		}
	}
	p.emit(eventbus.Event{Kind: eventbus.CurrentTrackChanged})
	return nil
}

// Seek implements spec §4.7 "seek".
func (p *Player) Seek(req source.SeekRequest) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.seekLocked(req)
}

func (p *Player) seekLocked(req source.SeekRequest) error {
	if p.ctrl.QueueState().Kind == source.QueueNone {
		return nil
	}

	reply := p.ctrl.SetPendingSeek(req)
	outcome := <-reply
	if outcome.Err != nil {
		return &Error{Op: "seek", Err: outcome.Err}
	}
	return nil
}

// queueCurrentTrackLocked implements spec §4.7's "queue_current_track(use_queued)"
// policy. useQueued reports whether the caller reached the new current
// track by a plain forward step, in which case the gapless preload slot
// (armed the last time this track was "next") already holds its decoded
// source and can simply be promoted. Any other transition — a jump
// backward, a wrap, or a forced reload such as Replace while playing —
// must decode the current track fresh, since whatever is sitting in the
// preload slot was prepared for a different "next" than this one.
func (p *Player) queueCurrentTrackLocked(useQueued bool) error {
	cur, next, ok := p.list.GetTracksToQueue(p.ctrl.CurrentIndex())
	if !ok {
		p.ctrl.SetQueueState(source.QueueState{Kind: source.QueueNone})
		p.ctrl.TakePreload()
		return nil
	}

	if useQueued {
		if cs := p.ctrl.TakePreload(); cs != nil {
			p.ctrl.SetQueueState(source.QueueState{Kind: source.QueueQueued, Source: cs})
			p.installPreloadLocked(next)
			return nil
		}
	}

	qs := p.ctrl.QueueState()
	if qs.Kind == source.QueueQueued || qs.Kind == source.QueuePlaying {
		p.ctrl.BumpSkip()
	}
	p.ctrl.TakePreload()

	cs, err := p.loadSourceUnlocked(cur)
	if err != nil {
		if errors.Is(err, errStaleLoad) {
			return nil
		}
		return err
	}
	p.ctrl.SetQueueState(source.QueueState{Kind: source.QueueQueued, Source: cs})
	p.installPreloadLocked(next)
	return nil
}

// installPreloadLocked decodes and arms the track that should splice in
// once whatever is now queued/playing exhausts. A nil next clears any
// stale preload rather than leaving it armed for a track that is no
// longer "next".
func (p *Player) installPreloadLocked(next *track.Track) {
	if next == nil {
		p.ctrl.TakePreload()
		return
	}
	cs, err := p.loadSourceUnlocked(next)
	if err != nil {
		return
	}
	p.ctrl.SetPreload(cs)
}

// refreshPreloadLocked re-decodes the preload slot after a track-list edit
// or shuffle toggle that left the current track untouched but may have
// changed what "next" means. It does nothing while stopped, since nothing
// is queued to splice after.
func (p *Player) refreshPreloadLocked() {
	if p.ctrl.QueueState().Kind == source.QueueNone {
		return
	}
	_, next, ok := p.list.GetTracksToQueue(p.ctrl.CurrentIndex())
	if !ok {
		p.ctrl.TakePreload()
		return
	}
	p.installPreloadLocked(next)
}

func (p *Player) loadSource(t *track.Track) (*source.ControlledSource, error) {
	return p.loadFunc(t)
}

// loadSourceUnlocked dispatches t's decode to the blocking pool, releasing
// p.mu for the duration so a slow disk read or codec probe never blocks a
// concurrent QueryVolume/SetVolume/etc. behind it (spec §5's helper blocking
// pool). p.mu is held again by the time this returns, matching every
// caller's "Locked" contract. If the current track changed while unlocked,
// a newer operation has already superseded this one: the freshly decoded
// source is closed and errStaleLoad is returned instead of being installed.
func (p *Player) loadSourceUnlocked(t *track.Track) (*source.ControlledSource, error) {
	snapshot := p.ctrl.CurrentIndex()

	p.mu.Unlock()
	cs, err := p.pool.run(func() (*source.ControlledSource, error) {
		return p.loadSource(t)
	})
	p.mu.Lock()

	if err != nil {
		return nil, err
	}
	if p.ctrl.CurrentIndex() != snapshot {
		cs.Close()
		return nil, errStaleLoad
	}
	return cs, nil
}

func (p *Player) loadSourceDefault(t *track.Track) (*source.ControlledSource, error) {
	dec, _, err := decoder.Probe(t.Path)
	if err != nil {
		return nil, err
	}
	dec = decoder.Resample(dec, source.DeviceSampleRate)
	return source.NewControlledSource(dec, p.ctrl, p.evs), nil
}
