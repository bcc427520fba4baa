// Package timer implements the charge point client's single-threaded
// cooperative timer pool: named one-shot and periodic callbacks that all
// run on one goroutine, so callbacks never race each other and never need
// their own synchronization.
package timer

import (
	"sync"
	"time"

	"github.com/go-ocpp/chargepoint/internal/logger"
)

// Pool runs every registered timer's callback on a single goroutine.
// Callbacks must not block; a slow callback delays every other timer.
type Pool struct {
	mu      sync.Mutex
	timers  map[string]*entry
	actions chan func()
	stopCh  chan struct{}
	wg      sync.WaitGroup
	running bool
}

type entry struct {
	name     string
	interval time.Duration
	periodic bool
	timer    *time.Timer
	stopped  bool
}

// New creates an unstarted timer pool.
func New() *Pool {
	return &Pool{
		timers:  make(map[string]*entry),
		actions: make(chan func(), 64),
		stopCh:  make(chan struct{}),
	}
}

// Start launches the pool's single worker goroutine.
func (p *Pool) Start() {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return
	}
	p.running = true
	p.mu.Unlock()

	p.wg.Add(1)
	go p.run()
}

// Stop halts the worker goroutine and cancels every registered timer.
// Callbacks already in flight are allowed to finish.
func (p *Pool) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	for _, e := range p.timers {
		e.stop()
	}
	p.timers = make(map[string]*entry)
	p.mu.Unlock()

	close(p.stopCh)
	p.wg.Wait()
}

func (p *Pool) run() {
	defer p.wg.Done()
	for {
		select {
		case fn := <-p.actions:
			fn()
		case <-p.stopCh:
			return
		}
	}
}

// After schedules fn to run once after d, on the pool's goroutine.
// Registering another timer under the same name replaces it.
func (p *Pool) After(name string, d time.Duration, fn func()) {
	p.schedule(name, d, false, fn)
}

// Every schedules fn to run repeatedly every d, on the pool's goroutine,
// starting d after this call. Registering another timer under the same
// name replaces it (and restarts the period).
func (p *Pool) Every(name string, d time.Duration, fn func()) {
	p.schedule(name, d, true, fn)
}

func (p *Pool) schedule(name string, d time.Duration, periodic bool, fn func()) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if existing, ok := p.timers[name]; ok {
		existing.stop()
	}

	e := &entry{name: name, interval: d, periodic: periodic}
	e.timer = time.AfterFunc(d, func() { p.fire(name, fn) })
	p.timers[name] = e
}

func (p *Pool) fire(name string, fn func()) {
	p.mu.Lock()
	e, ok := p.timers[name]
	if !ok || e.stopped {
		p.mu.Unlock()
		return
	}
	if e.periodic {
		e.timer = time.AfterFunc(e.interval, func() { p.fire(name, fn) })
	} else {
		delete(p.timers, name)
	}
	p.mu.Unlock()

	select {
	case p.actions <- fn:
	case <-p.stopCh:
		logger.Errorf("timer: pool stopped while queuing %q", name)
	}
}

// Cancel stops a named timer, if one is registered. Safe to call whether
// or not the name exists.
func (p *Pool) Cancel(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if e, ok := p.timers[name]; ok {
		e.stop()
		delete(p.timers, name)
	}
}

// Active reports whether a timer is currently registered under name.
func (p *Pool) Active(name string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.timers[name]
	return ok
}

func (e *entry) stop() {
	if e.stopped {
		return
	}
	e.stopped = true
	e.timer.Stop()
}
