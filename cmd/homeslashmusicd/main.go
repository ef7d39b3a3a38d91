// Command homeslashmusicd is the headless music-playing daemon: it wires
// the Track Cache, Player, Request Dispatcher, and control socket together,
// plays audio through the system device, and (on Linux) exposes MPRIS.
package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gopxl/beep/v2/speaker"

	"github.com/DJ-Laser/homeslashmusic/internal/config"
	"github.com/DJ-Laser/homeslashmusic/internal/dispatcher"
	"github.com/DJ-Laser/homeslashmusic/internal/eventbus"
	"github.com/DJ-Laser/homeslashmusic/internal/ipcsock"
	"github.com/DJ-Laser/homeslashmusic/internal/mpris"
	"github.com/DJ-Laser/homeslashmusic/internal/player"
	"github.com/DJ-Laser/homeslashmusic/internal/source"
	"github.com/DJ-Laser/homeslashmusic/internal/trackcache"
)

// Version is stamped at build time via -ldflags "-X main.Version=...".
var Version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "homeslashmusicd:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	bufferSize := source.DeviceSampleRate.N(time.Second / 10)
	if err := speaker.Init(source.DeviceSampleRate, bufferSize); err != nil {
		return fmt.Errorf("init audio device: %w", err)
	}

	bus := eventbus.New()
	defer bus.Close()

	p, out := player.New(bus)
	defer p.Shutdown()

	if err := p.SetVolume(cfg.InitialVolume); err != nil {
		return fmt.Errorf("apply initial volume: %w", err)
	}
	if err := p.SetLoopMode(cfg.LoopMode()); err != nil {
		return fmt.Errorf("apply initial loop mode: %w", err)
	}
	if err := p.SetShuffle(cfg.InitialShuffle); err != nil {
		return fmt.Errorf("apply initial shuffle: %w", err)
	}

	speaker.Play(out)

	cache := trackcache.New()
	d := dispatcher.New(Version, p, cache)

	sock, err := ipcsock.New(cfg.SocketDir, d)
	if err != nil {
		return fmt.Errorf("create control socket: %w", err)
	}

	mp, err := mpris.New(p, bus)
	if err != nil {
		return fmt.Errorf("start mpris adapter: %w", err)
	}
	defer mp.Close()

	sockErr := make(chan error, 1)
	go func() {
		sockErr <- sock.Serve()
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	select {
	case s := <-sig:
		log.Printf("homeslashmusicd: received %s, shutting down", s)
	case err := <-sockErr:
		if err != nil {
			log.Printf("homeslashmusicd: control socket stopped: %v", err)
		}
	}

	return sock.Shutdown()
}
