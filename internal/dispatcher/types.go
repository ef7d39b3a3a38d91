package dispatcher

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/DJ-Laser/homeslashmusic/internal/source"
	"github.com/DJ-Laser/homeslashmusic/internal/tracklist"
)

// playbackStateJSON renders a source.PlaybackState as its bare name, the
// wire encoding spec §6 expects for fieldless tagged values.
func playbackStateJSON(s source.PlaybackState) json.RawMessage {
	return json.RawMessage(fmt.Sprintf("%q", s.String()))
}

func loopModeJSON(m source.LoopMode) json.RawMessage {
	return json.RawMessage(fmt.Sprintf("%q", m.String()))
}

func parseLoopMode(raw json.RawMessage) (source.LoopMode, error) {
	var name string
	if err := json.Unmarshal(raw, &name); err != nil {
		return 0, fmt.Errorf("loop mode: %w", err)
	}
	switch name {
	case "None":
		return source.LoopNone, nil
	case "Track":
		return source.LoopTrack, nil
	case "Playlist":
		return source.LoopPlaylist, nil
	default:
		return 0, fmt.Errorf("loop mode: unrecognized variant %q", name)
	}
}

// parseSeekPosition decodes spec §3/§6's SeekPosition tagged union: one of
// {"Forward": ms}, {"Backward": ms}, {"To": ms}.
func parseSeekPosition(raw json.RawMessage) (source.SeekRequest, error) {
	var tagged map[string]int64
	if err := json.Unmarshal(raw, &tagged); err != nil {
		return source.SeekRequest{}, fmt.Errorf("seek position: %w", err)
	}
	if len(tagged) != 1 {
		return source.SeekRequest{}, fmt.Errorf("seek position: expected exactly one tag, got %d", len(tagged))
	}

	for tag, ms := range tagged {
		d := time.Duration(ms) * time.Millisecond
		switch tag {
		case "Forward":
			return source.SeekRequest{Kind: source.SeekForward, Amount: d}, nil
		case "Backward":
			return source.SeekRequest{Kind: source.SeekBackward, Amount: d}, nil
		case "To":
			return source.SeekRequest{Kind: source.SeekTo, Amount: d}, nil
		default:
			return source.SeekRequest{}, fmt.Errorf("seek position: unrecognized tag %q", tag)
		}
	}
	panic("unreachable")
}

// parseInsertPosition decodes spec §4.5/§6's InsertPosition tagged union: the
// unit variants serialize as a bare string, Absolute as {"Absolute": i}.
func parseInsertPosition(raw json.RawMessage) (tracklist.InsertPosition, error) {
	var name string
	if err := json.Unmarshal(raw, &name); err == nil {
		switch name {
		case "Next":
			return tracklist.NextPosition(), nil
		case "Start":
			return tracklist.StartPosition(), nil
		case "End":
			return tracklist.EndPosition(), nil
		case "Replace":
			return tracklist.ReplacePosition(), nil
		default:
			return tracklist.InsertPosition{}, fmt.Errorf("insert position: unrecognized variant %q", name)
		}
	}

	var tagged map[string]int
	if err := json.Unmarshal(raw, &tagged); err != nil {
		return tracklist.InsertPosition{}, fmt.Errorf("insert position: %w", err)
	}
	i, ok := tagged["Absolute"]
	if !ok || len(tagged) != 1 {
		return tracklist.InsertPosition{}, fmt.Errorf("insert position: expected \"Absolute\" tag")
	}
	return tracklist.AbsolutePosition(i), nil
}

func durationMS(d time.Duration) int64 {
	return d.Milliseconds()
}
