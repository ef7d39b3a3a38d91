//go:build linux

// Package mpris bridges the Player and Event Bus onto the MPRIS D-Bus
// interface, so desktop media keys and notification widgets work without
// a socket client in the loop.
package mpris

import (
	"fmt"
	"hash/fnv"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/quarckster/go-mpris-server/pkg/server"
	"github.com/quarckster/go-mpris-server/pkg/types"

	"github.com/DJ-Laser/homeslashmusic/internal/eventbus"
	"github.com/DJ-Laser/homeslashmusic/internal/player"
	"github.com/DJ-Laser/homeslashmusic/internal/source"
)

// Adapter connects a Player to MPRIS over D-Bus.
type Adapter struct {
	player *player.Player
	server *server.Server
	sub    *eventbus.Subscription
}

// New creates and starts a new MPRIS adapter for p, subscribing to bus so
// future extensions can push property-change signals without reaching back
// into the Player.
func New(p *player.Player, bus *eventbus.Bus) (*Adapter, error) {
	a := &Adapter{
		player: p,
		sub:    bus.Subscribe(),
	}

	root := &rootAdapter{}
	playerAdapter := &playerAdapter{player: p}

	a.server = server.NewServer("homeslashmusic", root, playerAdapter)

	go func() {
		_ = a.server.Listen()
	}()

	return a, nil
}

// Close stops the adapter and releases D-Bus resources.
func (a *Adapter) Close() error {
	a.sub.Close()
	return a.server.Stop()
}

// rootAdapter implements OrgMprisMediaPlayer2Adapter.
type rootAdapter struct{}

func (r *rootAdapter) Raise() error {
	return nil // Not supported
}

func (r *rootAdapter) Quit() error {
	return nil // The daemon manages its own lifecycle
}

func (r *rootAdapter) CanQuit() (bool, error) {
	return false, nil
}

func (r *rootAdapter) CanRaise() (bool, error) {
	return false, nil
}

func (r *rootAdapter) HasTrackList() (bool, error) {
	return false, nil // The org.mpris.MediaPlayer2.TrackList interface is not implemented
}

func (r *rootAdapter) Identity() (string, error) {
	return "homeslashmusic", nil
}

//nolint:revive // Method name required by interface.
func (r *rootAdapter) SupportedUriSchemes() ([]string, error) {
	return []string{"file"}, nil
}

func (r *rootAdapter) SupportedMimeTypes() ([]string, error) {
	return []string{"audio/mpeg", "audio/flac", "audio/ogg", "audio/mp4", "audio/x-m4a"}, nil
}

// playerAdapter implements OrgMprisMediaPlayer2PlayerAdapter and its
// optional LoopStatus/Shuffle extensions, delegating every call straight to
// the Player operation of the same name.
type playerAdapter struct {
	player *player.Player
}

func (p *playerAdapter) Next() error {
	return p.player.NextTrack()
}

func (p *playerAdapter) Previous() error {
	return p.player.PreviousTrack(true)
}

func (p *playerAdapter) Pause() error {
	return p.player.Pause()
}

func (p *playerAdapter) PlayPause() error {
	return p.player.Toggle()
}

func (p *playerAdapter) Stop() error {
	return p.player.Stop()
}

func (p *playerAdapter) Play() error {
	return p.player.Play()
}

func (p *playerAdapter) Seek(offset types.Microseconds) error {
	d := time.Duration(offset) * time.Microsecond
	kind := source.SeekForward
	if d < 0 {
		kind = source.SeekBackward
		d = -d
	}
	return p.player.Seek(source.SeekRequest{Kind: kind, Amount: d})
}

func (p *playerAdapter) SetPosition(_ string, position types.Microseconds) error {
	return p.player.Seek(source.SeekRequest{
		Kind:   source.SeekTo,
		Amount: time.Duration(position) * time.Microsecond,
	})
}

//nolint:revive // Method name required by interface.
func (p *playerAdapter) OpenUri(_ string) error {
	return nil // Not supported: every track reaches the Player through LoadTracks
}

func (p *playerAdapter) PlaybackStatus() (types.PlaybackStatus, error) {
	switch p.player.PlaybackState() {
	case source.Playing:
		return types.PlaybackStatusPlaying, nil
	case source.Paused:
		return types.PlaybackStatusPaused, nil
	default:
		return types.PlaybackStatusStopped, nil
	}
}

func (p *playerAdapter) Rate() (float64, error) {
	return 1.0, nil
}

func (p *playerAdapter) SetRate(_ float64) error {
	return nil // Not supported: spec has no playback-rate control
}

func (p *playerAdapter) Metadata() (types.Metadata, error) {
	t := p.player.CurrentTrack()
	if t == nil {
		return types.Metadata{}, nil
	}

	meta := types.Metadata{
		TrackId:     dbus.ObjectPath(formatTrackID(t.Path)),
		Title:       t.Title(),
		Album:       t.Meta.Album,
		Artist:      t.Meta.Artists,
		TrackNumber: t.Meta.TrackNumber,
	}
	if t.Spec.HasDuration {
		meta.Length = types.Microseconds(t.Spec.Duration.Microseconds())
	}
	if artPath := FindAlbumArt(t.Path); artPath != "" {
		meta.ArtUrl = "file://" + artPath
	} else if url := embeddedArtURL(t.Path); url != "" {
		meta.ArtUrl = url
	}

	return meta, nil
}

func (p *playerAdapter) Volume() (float64, error) {
	return p.player.Volume(), nil
}

func (p *playerAdapter) SetVolume(v float64) error {
	return p.player.SetVolume(v)
}

func (p *playerAdapter) Position() (int64, error) {
	return p.player.Position().Microseconds(), nil
}

func (p *playerAdapter) MinimumRate() (float64, error) {
	return 1.0, nil
}

func (p *playerAdapter) MaximumRate() (float64, error) {
	return 1.0, nil
}

func (p *playerAdapter) CanGoNext() (bool, error) {
	return p.player.CurrentTrackIndex()+1 < len(p.player.TrackList()), nil
}

func (p *playerAdapter) CanGoPrevious() (bool, error) {
	return p.player.CurrentTrackIndex() > 0, nil
}

func (p *playerAdapter) CanPlay() (bool, error) {
	return len(p.player.TrackList()) > 0, nil
}

func (p *playerAdapter) CanPause() (bool, error) {
	return true, nil
}

func (p *playerAdapter) CanSeek() (bool, error) {
	return true, nil
}

func (p *playerAdapter) CanControl() (bool, error) {
	return true, nil
}

// LoopStatus implements OrgMprisMediaPlayer2PlayerAdapterLoopStatus.
func (p *playerAdapter) LoopStatus() (types.LoopStatus, error) {
	switch p.player.LoopMode() {
	case source.LoopTrack:
		return types.LoopStatusTrack, nil
	case source.LoopPlaylist:
		return types.LoopStatusPlaylist, nil
	default:
		return types.LoopStatusNone, nil
	}
}

// SetLoopStatus implements OrgMprisMediaPlayer2PlayerAdapterLoopStatus.
func (p *playerAdapter) SetLoopStatus(status types.LoopStatus) error {
	switch status {
	case types.LoopStatusTrack:
		return p.player.SetLoopMode(source.LoopTrack)
	case types.LoopStatusPlaylist:
		return p.player.SetLoopMode(source.LoopPlaylist)
	default:
		return p.player.SetLoopMode(source.LoopNone)
	}
}

// Shuffle implements OrgMprisMediaPlayer2PlayerAdapterShuffle.
func (p *playerAdapter) Shuffle() (bool, error) {
	return p.player.Shuffle(), nil
}

// SetShuffle implements OrgMprisMediaPlayer2PlayerAdapterShuffle.
func (p *playerAdapter) SetShuffle(shuffle bool) error {
	return p.player.SetShuffle(shuffle)
}

func formatTrackID(path string) string {
	h := fnv.New64a()
	h.Write([]byte(path))
	return fmt.Sprintf("/org/mpris/MediaPlayer2/Track/%x", h.Sum64())
}
