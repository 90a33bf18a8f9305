// Package schedule provides the shared periodic-task facility channels
// register their recurring work on.
package schedule

import (
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"github.com/tmitchel/chancache"
)

var _ chancache.Scheduler = (*Cron)(nil)

// Cron runs every registered task on one robfig/cron instance rather than
// a goroutine per task. A task that is still running when its next tick is
// due skips that tick.
type Cron struct {
	mu      sync.Mutex
	cron    *cron.Cron
	chain   cron.Chain
	started bool
}

// New creates a scheduler. Tasks can be registered before or after Start.
func New() *Cron {
	logger := cron.PrintfLogger(logrus.StandardLogger())
	return &Cron{
		cron:  cron.New(cron.WithLogger(logger)),
		chain: cron.NewChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	}
}

// Start begins dispatching ticks. Calling it twice is a no-op.
func (c *Cron) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started {
		return
	}
	c.started = true
	c.cron.Start()
	logrus.Info("schedule: started")
}

// Stop halts dispatching and waits for running tasks to return.
func (c *Cron) Stop() {
	c.mu.Lock()
	if !c.started {
		c.mu.Unlock()
		return
	}
	c.started = false
	c.mu.Unlock()

	<-c.cron.Stop().Done()
	logrus.Info("schedule: stopped")
}

// Every runs task once right away and then every interval. Intervals under
// a second are rounded up to one second. The returned func removes the
// task; a run that is already in progress is allowed to finish.
func (c *Cron) Every(interval time.Duration, task func()) func() {
	job := c.chain.Then(cron.FuncJob(task))
	go job.Run()

	id := c.cron.Schedule(cron.Every(interval), job)

	var once sync.Once
	return func() {
		once.Do(func() { c.cron.Remove(id) })
	}
}

// Len reports how many tasks are registered.
func (c *Cron) Len() int {
	return len(c.cron.Entries())
}
