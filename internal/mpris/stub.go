//go:build !linux

package mpris

import (
	"github.com/DJ-Laser/homeslashmusic/internal/eventbus"
	"github.com/DJ-Laser/homeslashmusic/internal/player"
)

// Adapter is a no-op on non-Linux platforms: MPRIS is a D-Bus interface
// with no portable equivalent.
type Adapter struct{}

// New returns a no-op adapter on non-Linux platforms.
func New(_ *player.Player, _ *eventbus.Bus) (*Adapter, error) {
	return &Adapter{}, nil
}

// Close is a no-op on non-Linux platforms.
func (a *Adapter) Close() error {
	return nil
}
