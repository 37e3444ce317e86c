package shutdown

import (
	"sync"
	"time"
)

// closer is the coordinator's handle on one registered worker.
type closer struct {
	id   string
	stop chan struct{}
	once sync.Once
}

func newCloser(id string) *closer {
	return &closer{id: id, stop: make(chan struct{})}
}

// signal closes the stop channel. Closing never blocks, so a worker that
// already exited costs nothing here; repeated calls are no-ops.
func (c *closer) signal() {
	c.once.Do(func() { close(c.stop) })
}

// outcome is what a worker goroutine reports back exactly once.
type outcome struct {
	id  string
	err error
	at  time.Time
}
