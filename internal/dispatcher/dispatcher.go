// Package dispatcher implements the Request Dispatcher of spec §4.8: it
// decodes a tagged-union request value, invokes the corresponding Player
// (or Track Cache) method, and renders the typed response or error as the
// {"Ok": ...} / {"Err": "..."} envelope spec §6 describes.
//
// Dispatch is deliberately the only entry point a wire front-end needs: the
// socket server (internal/ipcsock) calls it for every line it reads. The
// in-process MPRIS adapter (internal/mpris) talks to the same Player and
// Event Bus directly rather than round-tripping through JSON, but invokes
// exactly the same Player methods this type's handlers do, so both surfaces
// stay semantically equivalent per spec §6's "Event stream" note.
package dispatcher

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/dustin/go-humanize"

	"github.com/DJ-Laser/homeslashmusic/internal/opserr"
	"github.com/DJ-Laser/homeslashmusic/internal/player"
	"github.com/DJ-Laser/homeslashmusic/internal/track"
	"github.com/DJ-Laser/homeslashmusic/internal/trackcache"
)

// Dispatcher routes decoded requests to a Player and a Track Cache.
type Dispatcher struct {
	Version string
	Player  *player.Player
	Cache   *trackcache.Cache
}

// New builds a Dispatcher for the given version string, player and cache.
func New(version string, p *player.Player, cache *trackcache.Cache) *Dispatcher {
	return &Dispatcher{Version: version, Player: p, Cache: cache}
}

type okEnvelope struct {
	Ok interface{} `json:"Ok"`
}

type errEnvelope struct {
	Err string `json:"Err"`
}

// Dispatch decodes one request line (without its trailing newline),
// invokes the matching Player/Track Cache operation, and returns the
// marshaled response envelope (also without a trailing newline). It never
// returns an error itself: deserialization failures are rendered as an Err
// envelope, per spec §7's "Request deserialization failure" taxonomy entry.
func (d *Dispatcher) Dispatch(line []byte) []byte {
	name, params, err := splitEnvelope(line)
	if err != nil {
		return renderErr(err.Error())
	}

	result, err := d.invoke(name, params)
	if err != nil {
		return renderErr(err.Error())
	}
	return renderOk(result)
}

func splitEnvelope(line []byte) (name string, params json.RawMessage, err error) {
	var tagged map[string]json.RawMessage
	if err := json.Unmarshal(line, &tagged); err != nil {
		return "", nil, fmt.Errorf("malformed request: %w", err)
	}
	if len(tagged) != 1 {
		return "", nil, fmt.Errorf("malformed request: expected exactly one request name, got %d", len(tagged))
	}
	for k, v := range tagged {
		name, params = k, v
	}
	return name, params, nil
}

func renderOk(v interface{}) []byte {
	data, err := json.Marshal(okEnvelope{Ok: v})
	if err != nil {
		return renderErr(fmt.Sprintf("failed to encode response: %v", err))
	}
	return data
}

func renderErr(msg string) []byte {
	data, err := json.Marshal(errEnvelope{Err: msg})
	if err != nil {
		// json.Marshal on a string-only struct cannot fail; this is
		// unreachable in practice.
		return []byte(`{"Err":"internal error encoding error response"}`)
	}
	return data
}

// invoke implements the one-handler-per-request-variant shape spec §9
// calls out as the clearer of the two acceptable designs.
func (d *Dispatcher) invoke(name string, params json.RawMessage) (interface{}, error) {
	switch name {
	case "QueryVersion":
		return d.Version, nil

	case "QueryPlaybackState":
		return playbackStateJSON(d.Player.PlaybackState()), nil
	case "Play":
		return nil, d.Player.Play()
	case "Pause":
		return nil, d.Player.Pause()
	case "StopPlayback":
		return nil, d.Player.Stop()
	case "TogglePlayback":
		return nil, d.Player.Toggle()

	case "QueryCurrentTrack":
		return d.Player.CurrentTrack(), nil
	case "QueryCurrentTrackIndex":
		return d.Player.CurrentTrackIndex(), nil
	case "NextTrack":
		return nil, d.Player.NextTrack()
	case "PreviousTrack":
		var args struct {
			Soft bool `json:"soft"`
		}
		if err := json.Unmarshal(params, &args); err != nil {
			return nil, fmt.Errorf("PreviousTrack: %w", err)
		}
		return nil, d.Player.PreviousTrack(args.Soft)

	case "QueryLoopMode":
		return loopModeJSON(d.Player.LoopMode()), nil
	case "SetLoopMode":
		mode, err := parseLoopMode(params)
		if err != nil {
			return nil, err
		}
		return nil, d.Player.SetLoopMode(mode)

	case "QueryShuffle":
		return d.Player.Shuffle(), nil
	case "SetShuffle":
		var on bool
		if err := json.Unmarshal(params, &on); err != nil {
			return nil, fmt.Errorf("SetShuffle: %w", err)
		}
		return nil, d.Player.SetShuffle(on)

	case "QueryVolume":
		return d.Player.Volume(), nil
	case "SetVolume":
		var v float64
		if err := json.Unmarshal(params, &v); err != nil {
			return nil, fmt.Errorf("SetVolume: %w", err)
		}
		return nil, d.Player.SetVolume(v)

	case "QueryPosition":
		return durationMS(d.Player.Position()), nil
	case "Seek":
		req, err := parseSeekPosition(params)
		if err != nil {
			return nil, err
		}
		return nil, d.Player.Seek(req)

	case "QueryTrackList":
		return d.queryTrackList(), nil
	case "ClearTracks":
		return nil, d.Player.ClearTracks()
	case "LoadTracks":
		return d.loadTracks(params)

	default:
		return nil, fmt.Errorf("unrecognized request %q", name)
	}
}

type trackListSnapshot struct {
	Tracks         []*track.Track `json:"tracks"`
	ShuffleIndices []int          `json:"shuffle_indices"`
}

func (d *Dispatcher) queryTrackList() trackListSnapshot {
	tracks, shuffleIndices := d.Player.TrackListSnapshot()
	return trackListSnapshot{Tracks: tracks, ShuffleIndices: shuffleIndices}
}

type loadFailure struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// loadTracks implements spec §4.8's LoadTracks: paths are expanded and
// decoded by the Track Cache first (accumulating per-path failures without
// aborting the batch, per §4.6), then the successfully loaded tracks are
// handed to the Player in one InsertTracks call.
func (d *Dispatcher) loadTracks(params json.RawMessage) (interface{}, error) {
	var args struct {
		Position json.RawMessage `json:"position"`
		Paths    []string        `json:"paths"`
	}
	if err := json.Unmarshal(params, &args); err != nil {
		return nil, fmt.Errorf("LoadTracks: %w", err)
	}

	position, err := parseInsertPosition(args.Position)
	if err != nil {
		return nil, err
	}

	tracks, loadErrors := d.Cache.GetOrLoad(args.Paths)

	failures := make([]loadFailure, 0, len(loadErrors))
	for _, le := range loadErrors {
		failures = append(failures, loadFailure{
			Path:  le.Path,
			Error: opserr.FormatWith(opserr.OpLoadTrack, le.Path, le.Err),
		})
	}

	if err := d.Player.InsertTracks(position, tracks); err != nil {
		return nil, err
	}

	if len(args.Paths) > 1 {
		log.Printf("dispatcher: LoadTracks loaded %s of %s requested paths (%s failed)",
			humanize.Comma(int64(len(tracks))),
			humanize.Comma(int64(len(args.Paths))),
			humanize.Comma(int64(len(failures))))
	}

	return failures, nil
}
