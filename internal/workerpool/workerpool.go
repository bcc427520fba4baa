// Package workerpool wraps a fixed-size FIFO worker pool used to run
// outbound OCPP calls and host-facing callbacks without blocking the
// goroutine that queued them.
package workerpool

import (
	"github.com/JekaMas/workerpool"

	"github.com/go-ocpp/chargepoint/internal/logger"
)

// Pool runs submitted jobs on a fixed number of worker goroutines, FIFO.
type Pool struct {
	wp *workerpool.WorkerPool
}

// minWorkers is the floor below which a single slow job could stall every
// other pending job.
const minWorkers = 2

// New creates a pool with size workers, clamped up to minWorkers.
func New(size int) *Pool {
	if size < minWorkers {
		size = minWorkers
	}
	return &Pool{wp: workerpool.New(size)}
}

// Submit queues fn to run on the next free worker. Submissions never drop
// except during Stop, when the queue itself rejects further work.
func (p *Pool) Submit(fn func()) {
	p.wp.Submit(func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Errorf("workerpool: job panicked: %v", r)
			}
		}()
		fn()
	})
}

// SubmitWait queues fn and blocks until it has finished running.
func (p *Pool) SubmitWait(fn func()) {
	p.wp.SubmitWait(fn)
}

// Size reports the number of worker goroutines.
func (p *Pool) Size() int {
	return p.wp.Size()
}

// WaitingQueueSize reports how many submitted jobs are queued but not yet
// running.
func (p *Pool) WaitingQueueSize() int {
	return p.wp.WaitingQueueSize()
}

// Stop drains queued jobs and waits for in-flight jobs to finish, then
// returns. No further submissions are accepted afterward.
func (p *Pool) Stop() {
	p.wp.StopWait()
}
