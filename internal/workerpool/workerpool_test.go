package workerpool

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPool_SubmitRunsJobs(t *testing.T) {
	p := New(2)
	defer p.Stop()

	var count int32
	for i := 0; i < 10; i++ {
		p.Submit(func() { atomic.AddInt32(&count, 1) })
	}

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&count) == 10
	}, time.Second, 5*time.Millisecond)
}

func TestPool_ClampsToMinWorkers(t *testing.T) {
	p := New(0)
	defer p.Stop()
	assert.Equal(t, minWorkers, p.Size())
}

func TestPool_SubmitWaitBlocksUntilDone(t *testing.T) {
	p := New(2)
	defer p.Stop()

	var done bool
	p.SubmitWait(func() { done = true })
	assert.True(t, done)
}

func TestPool_SubmitRecoversPanics(t *testing.T) {
	p := New(2)
	defer p.Stop()

	var ran int32
	p.Submit(func() { panic("boom") })
	p.SubmitWait(func() { atomic.AddInt32(&ran, 1) })

	assert.Equal(t, int32(1), atomic.LoadInt32(&ran))
}
