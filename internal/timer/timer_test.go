package timer

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPool_After_FiresOnce(t *testing.T) {
	p := New()
	p.Start()
	defer p.Stop()

	var calls int32
	done := make(chan struct{})
	p.After("once", 10*time.Millisecond, func() {
		atomic.AddInt32(&calls, 1)
		close(done)
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timer never fired")
	}

	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.False(t, p.Active("once"))
}

func TestPool_Every_FiresRepeatedly(t *testing.T) {
	p := New()
	p.Start()
	defer p.Stop()

	var calls int32
	p.Every("tick", 10*time.Millisecond, func() {
		atomic.AddInt32(&calls, 1)
	})

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&calls) >= 3
	}, time.Second, 5*time.Millisecond)

	assert.True(t, p.Active("tick"))
}

func TestPool_Cancel(t *testing.T) {
	p := New()
	p.Start()
	defer p.Stop()

	var calls int32
	p.Every("tick", 10*time.Millisecond, func() {
		atomic.AddInt32(&calls, 1)
	})
	time.Sleep(15 * time.Millisecond)
	p.Cancel("tick")
	assert.False(t, p.Active("tick"))

	countAfterCancel := atomic.LoadInt32(&calls)
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, countAfterCancel, atomic.LoadInt32(&calls))
}

func TestPool_Schedule_ReplacesExisting(t *testing.T) {
	p := New()
	p.Start()
	defer p.Stop()

	var firstFired, secondFired int32
	p.After("slot", time.Hour, func() { atomic.AddInt32(&firstFired, 1) })
	done := make(chan struct{})
	p.After("slot", 5*time.Millisecond, func() {
		atomic.AddInt32(&secondFired, 1)
		close(done)
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("replacement timer never fired")
	}

	assert.Equal(t, int32(0), atomic.LoadInt32(&firstFired))
	assert.Equal(t, int32(1), atomic.LoadInt32(&secondFired))
}

func TestPool_StopCancelsAllTimers(t *testing.T) {
	p := New()
	p.Start()

	var calls int32
	p.Every("tick", 10*time.Millisecond, func() { atomic.AddInt32(&calls, 1) })
	p.Stop()

	countAfterStop := atomic.LoadInt32(&calls)
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, countAfterStop, atomic.LoadInt32(&calls))
}
