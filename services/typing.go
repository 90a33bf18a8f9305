package services

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/tmitchel/chancache"
	"github.com/tmitchel/chancache/cache"
)

type session struct {
	active bool
	cancel func()
}

type typer struct {
	Cache     cache.Getter
	Sender    chancache.TypingSender
	Scheduler chancache.Scheduler

	interval time.Duration
	timeout  time.Duration

	mu       sync.Mutex
	sessions map[string]*session
}

// NewTyper keeps the typing indicator of started channels alive by sending
// a signal every interval on the shared scheduler. Each signal is given
// timeout to complete.
func NewTyper(c cache.Getter, sender chancache.TypingSender, sched chancache.Scheduler, interval, timeout time.Duration) (chancache.Typer, error) {
	if c == nil || sender == nil || sched == nil {
		return nil, errors.New("typer needs a cache, a sender and a scheduler")
	}
	if interval <= 0 {
		return nil, errors.Errorf("typing interval must be positive, got %v", interval)
	}
	if timeout <= 0 || timeout >= interval {
		return nil, errors.Errorf("typing timeout %v must be positive and below the interval %v", timeout, interval)
	}
	return &typer{
		Cache:     c,
		Sender:    sender,
		Scheduler: sched,
		interval:  interval,
		timeout:   timeout,
		sessions:  make(map[string]*session),
	}, nil
}

// Start shows the typing indicator until Stop. Starting a channel that is
// already typing does nothing.
func (t *typer) Start(channelID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.start(channelID)
}

// Stop ends the channel's typing session. A signal already in flight may
// still complete.
func (t *typer) Stop(channelID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stop(channelID)
}

// Toggle starts the channel if it is idle and stops it otherwise, and
// reports whether it is typing afterwards.
func (t *typer) Toggle(channelID string) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if s, ok := t.sessions[channelID]; ok && s.active {
		t.stop(channelID)
		return false, nil
	}
	if err := t.start(channelID); err != nil {
		return false, err
	}
	return true, nil
}

func (t *typer) Typing(channelID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.sessions[channelID]
	return ok && s.active
}

// start requires t.mu.
func (t *typer) start(channelID string) error {
	if s, ok := t.sessions[channelID]; ok && s.active {
		return nil
	}
	if _, err := t.Cache.GetChannel(channelID); err != nil {
		return err
	}

	s := &session{active: true}
	t.sessions[channelID] = s
	s.cancel = t.Scheduler.Every(t.interval, func() { t.tick(channelID, s) })
	TypingSessions.Inc()

	logrus.WithField("channel", channelID).Debug("typing started")
	return nil
}

// stop requires t.mu.
func (t *typer) stop(channelID string) {
	s, ok := t.sessions[channelID]
	if !ok {
		return
	}
	t.end(channelID, s)
	logrus.WithField("channel", channelID).Debug("typing stopped")
}

// end deactivates s and cancels its task. It requires t.mu.
func (t *typer) end(channelID string, s *session) {
	if !s.active {
		return
	}
	s.active = false
	if s.cancel != nil {
		s.cancel()
	}
	if t.sessions[channelID] == s {
		delete(t.sessions, channelID)
	}
	TypingSessions.Dec()
}

func (t *typer) tick(channelID string, s *session) {
	t.mu.Lock()
	if !s.active {
		t.mu.Unlock()
		return
	}
	if t.Cache.IsDeleted(channelID) {
		t.end(channelID, s)
		t.mu.Unlock()
		logrus.WithField("channel", channelID).Debug("channel deleted, typing cancelled")
		return
	}
	t.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
	defer cancel()

	if err := t.Sender.SendTyping(ctx, channelID); err != nil {
		TypingSignals.WithLabelValues(resultLabel(err)).Inc()
		logrus.WithError(err).WithField("channel", channelID).Warn("typing signal failed")
		return
	}
	TypingSignals.WithLabelValues("ok").Inc()
}
