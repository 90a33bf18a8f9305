package schedule_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/tmitchel/chancache/schedule"
)

func TestEveryRunsImmediatelyThenRepeats(t *testing.T) {
	if testing.Short() {
		t.Skip("waits on real ticks")
	}

	s := schedule.New()
	s.Start()
	defer s.Stop()

	var runs int32
	cancel := s.Every(time.Second, func() { atomic.AddInt32(&runs, 1) })
	assert.Equal(t, 1, s.Len())

	assert.Eventually(t, func() bool { return atomic.LoadInt32(&runs) >= 1 }, 500*time.Millisecond, 10*time.Millisecond)
	assert.Eventually(t, func() bool { return atomic.LoadInt32(&runs) >= 2 }, 3*time.Second, 50*time.Millisecond)

	cancel()
	cancel()
	assert.Equal(t, 0, s.Len())

	// let a run that was already dispatched finish
	time.Sleep(100 * time.Millisecond)
	settled := atomic.LoadInt32(&runs)
	time.Sleep(1500 * time.Millisecond)
	assert.Equal(t, settled, atomic.LoadInt32(&runs))
}

func TestStopIsIdempotent(t *testing.T) {
	s := schedule.New()
	s.Stop()
	s.Start()
	s.Start()
	s.Stop()
	s.Stop()
}
