package player

import "github.com/DJ-Laser/homeslashmusic/internal/source"

// loadConcurrency bounds how many decoder-construction/probe goroutines the
// blocking pool runs at once. Loads are disk- and CPU-bound, not
// parallelism-hungry, so a small bound is plenty.
const loadConcurrency = 4

// blockingPool bounds blocking track-load work (filesystem probing, decoder
// construction) done without holding the Player mutex, per spec §5: "Decoder
// construction and blocking filesystem I/O are dispatched to a helper
// blocking pool so the executor is never parked." Callers release p.mu
// before calling run and reacquire it once the result is in hand, so a slow
// disk read never blocks QueryVolume/SetVolume/etc. behind a track load.
type blockingPool struct {
	sem chan struct{}
}

func newBlockingPool() *blockingPool {
	return &blockingPool{sem: make(chan struct{}, loadConcurrency)}
}

// run waits for a free slot, then executes fn on the caller's own goroutine
// and holds the slot until fn returns. It does not touch the Player mutex.
func (bp *blockingPool) run(fn func() (*source.ControlledSource, error)) (*source.ControlledSource, error) {
	bp.sem <- struct{}{}
	defer func() { <-bp.sem }()
	return fn()
}
