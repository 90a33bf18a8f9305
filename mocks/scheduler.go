package mocks

import (
	"sort"
	"sync"
	"time"

	"github.com/tmitchel/chancache"
)

var _ chancache.Scheduler = (*Scheduler)(nil)

// Scheduler is a manually driven chancache.Scheduler. Nothing runs until
// Tick is called; the first Tick after Every stands in for its immediate
// run.
type Scheduler struct {
	mu     sync.Mutex
	nextID int
	tasks  map[int]func()
	ever   int
}

// NewScheduler returns a scheduler with no tasks.
func NewScheduler() *Scheduler {
	return &Scheduler{tasks: make(map[int]func())}
}

// Every implements chancache.Scheduler.
func (s *Scheduler) Every(_ time.Duration, task func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	s.ever++
	id := s.nextID
	s.tasks[id] = task
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.tasks, id)
	}
}

// Tick runs every registered task once, in registration order.
func (s *Scheduler) Tick() {
	s.mu.Lock()
	ids := make([]int, 0, len(s.tasks))
	for id := range s.tasks {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	tasks := make([]func(), 0, len(ids))
	for _, id := range ids {
		tasks = append(tasks, s.tasks[id])
	}
	s.mu.Unlock()

	for _, task := range tasks {
		task()
	}
}

// Len reports how many tasks are registered.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// Registered counts every task ever registered, cancelled or not.
func (s *Scheduler) Registered() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ever
}
