// -----------------------------------------------------------------------
// Process pool shim
//
// Long-running work (job submission, remote init, DB I/O) is delegated
// here; completion callbacks are drained by the main loop each tick so
// all state changes stay on the loop.
// -----------------------------------------------------------------------

package scheduler

import (
	"sync"
	"sync/atomic"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/cursus/internal/common"
)

// ProcPool runs delegated work on a bounded set of workers.
type ProcPool struct {
	logger    arbor.ILogger
	work      chan func() func()
	callbacks chan func()
	busy      int64
	wg        sync.WaitGroup
	closed    chan struct{}
	closeOnce sync.Once
}

// NewProcPool starts size workers.
func NewProcPool(size int, logger arbor.ILogger) *ProcPool {
	if size <= 0 {
		size = 4
	}
	p := &ProcPool{
		logger:    logger,
		work:      make(chan func() func(), 256),
		callbacks: make(chan func(), 256),
		closed:    make(chan struct{}),
	}
	for i := 0; i < size; i++ {
		p.wg.Add(1)
		common.SafeGo(logger, "procpool-worker", func() {
			defer p.wg.Done()
			for fn := range p.work {
				atomic.AddInt64(&p.busy, 1)
				callback := fn()
				atomic.AddInt64(&p.busy, -1)
				if callback != nil {
					p.callbacks <- callback
				}
			}
		})
	}
	return p
}

// Submit queues work; the returned callback (if any) runs on the main
// loop at the next Drain.
func (p *ProcPool) Submit(fn func() func()) bool {
	select {
	case <-p.closed:
		return false
	default:
	}
	select {
	case p.work <- fn:
		return true
	default:
		p.logger.Warn().Msg("Process pool queue full, work rejected")
		return false
	}
}

// Drain runs pending completion callbacks on the caller's goroutine.
func (p *ProcPool) Drain() int {
	count := 0
	for {
		select {
		case cb := <-p.callbacks:
			cb()
			count++
		default:
			return count
		}
	}
}

// IsBusy reports whether workers are active or work is queued.
func (p *ProcPool) IsBusy() bool {
	return atomic.LoadInt64(&p.busy) > 0 || len(p.work) > 0
}

// Close stops intake. Wait for drain with WaitDrained.
func (p *ProcPool) Close() {
	p.closeOnce.Do(func() {
		close(p.closed)
		close(p.work)
	})
}

// WaitDrained blocks until running work finishes.
func (p *ProcPool) WaitDrained() {
	p.wg.Wait()
}

// Terminate abandons the pool without waiting.
func (p *ProcPool) Terminate() {
	p.Close()
}
