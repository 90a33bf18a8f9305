package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmitchel/chancache"
	"github.com/tmitchel/chancache/cache"
	"github.com/tmitchel/chancache/mocks"
	"github.com/tmitchel/chancache/services"
)

func newTyper(t *testing.T, c cache.Getter, gw *mocks.Gateway, sched *mocks.Scheduler) chancache.Typer {
	typer, err := services.NewTyper(c, gw, sched, 10*time.Second, 5*time.Second)
	require.NoError(t, err)
	return typer
}

func TestNewTyperValidates(t *testing.T) {
	c, gw, sched := cache.New(), mocks.NewGateway(), mocks.NewScheduler()

	_, err := services.NewTyper(c, gw, sched, 0, time.Second)
	assert.Error(t, err)
	_, err = services.NewTyper(c, gw, sched, time.Second, time.Second)
	assert.Error(t, err)
	_, err = services.NewTyper(nil, gw, sched, time.Second, time.Millisecond)
	assert.Error(t, err)
}

func TestStartIsIdempotent(t *testing.T) {
	c := guildChannel(t, chancache.NewOverrides())
	gw, sched := mocks.NewGateway(), mocks.NewScheduler()
	typer := newTyper(t, c, gw, sched)

	require.NoError(t, typer.Start(channelID))
	require.NoError(t, typer.Start(channelID))
	assert.True(t, typer.Typing(channelID))
	assert.Equal(t, 1, sched.Registered())

	sched.Tick()
	sched.Tick()
	assert.Equal(t, 2, gw.TypingSignals(channelID))
}

func TestStartConcurrentRegistersOnce(t *testing.T) {
	c := guildChannel(t, chancache.NewOverrides())
	gw, sched := mocks.NewGateway(), mocks.NewScheduler()
	typer := newTyper(t, c, gw, sched)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, typer.Start(channelID))
		}()
	}
	wg.Wait()

	assert.True(t, typer.Typing(channelID))
	assert.Equal(t, 1, sched.Registered())
	assert.Equal(t, 1, sched.Len())
}

func TestStartUnknownChannel(t *testing.T) {
	c := guildChannel(t, chancache.NewOverrides())
	gw, sched := mocks.NewGateway(), mocks.NewScheduler()
	typer := newTyper(t, c, gw, sched)

	err := typer.Start("missing")
	assert.True(t, errors.Is(err, chancache.ErrUnknownChannel))
	assert.False(t, typer.Typing("missing"))
	assert.Equal(t, 0, sched.Registered())

	_, err = typer.Toggle("missing")
	assert.True(t, errors.Is(err, chancache.ErrUnknownChannel))
	assert.Equal(t, 0, sched.Registered())
}

func TestStopEndsSignals(t *testing.T) {
	c := guildChannel(t, chancache.NewOverrides())
	gw, sched := mocks.NewGateway(), mocks.NewScheduler()
	typer := newTyper(t, c, gw, sched)

	sessions := testutil.ToFloat64(services.TypingSessions)
	require.NoError(t, typer.Start(channelID))
	assert.Equal(t, sessions+1, testutil.ToFloat64(services.TypingSessions))

	sched.Tick()
	typer.Stop(channelID)
	typer.Stop(channelID)
	sched.Tick()

	assert.False(t, typer.Typing(channelID))
	assert.Equal(t, 1, gw.TypingSignals(channelID))
	assert.Equal(t, 0, sched.Len())
	assert.Equal(t, sessions, testutil.ToFloat64(services.TypingSessions))

	require.NoError(t, typer.Start(channelID))
	sched.Tick()
	assert.Equal(t, 2, gw.TypingSignals(channelID))
	assert.Equal(t, 2, sched.Registered())
}

func TestTickOnDeletedChannelCancelsQuietly(t *testing.T) {
	c := guildChannel(t, chancache.NewOverrides())
	gw, sched := mocks.NewGateway(), mocks.NewScheduler()
	typer := newTyper(t, c, gw, sched)

	require.NoError(t, typer.Start(channelID))
	_, err := c.DeleteChannel(channelID)
	require.NoError(t, err)

	sched.Tick()
	assert.Equal(t, 0, gw.TypingSignals(channelID))
	assert.False(t, typer.Typing(channelID))
	assert.Equal(t, 0, sched.Len())

	assert.True(t, chancache.IsStale(typer.Start(channelID)))
}

func TestTickErrorsAreSwallowed(t *testing.T) {
	c := guildChannel(t, chancache.NewOverrides())
	gw, sched := mocks.NewGateway(), mocks.NewScheduler()
	gw.TypingErr = &chancache.TransportError{Op: "typing", Err: errors.New("boom")}
	typer := newTyper(t, c, gw, sched)

	failed := testutil.ToFloat64(services.TypingSignals.WithLabelValues("error"))

	require.NoError(t, typer.Start(channelID))
	sched.Tick()
	sched.Tick()

	assert.True(t, typer.Typing(channelID))
	assert.Equal(t, 2, gw.TypingSignals(channelID))
	assert.Equal(t, failed+2, testutil.ToFloat64(services.TypingSignals.WithLabelValues("error")))
}

func TestTickHasDeadline(t *testing.T) {
	c := guildChannel(t, chancache.NewOverrides())
	gw, sched := mocks.NewGateway(), mocks.NewScheduler()
	var hasDeadline bool
	gw.OnTyping = func(ctx context.Context, _ string) {
		_, hasDeadline = ctx.Deadline()
	}
	typer := newTyper(t, c, gw, sched)

	require.NoError(t, typer.Start(channelID))
	sched.Tick()
	assert.True(t, hasDeadline)
}

func TestStopDuringSignal(t *testing.T) {
	c := guildChannel(t, chancache.NewOverrides())
	gw, sched := mocks.NewGateway(), mocks.NewScheduler()
	typer := newTyper(t, c, gw, sched)
	gw.OnTyping = func(context.Context, string) { typer.Stop(channelID) }

	require.NoError(t, typer.Start(channelID))
	sched.Tick()
	sched.Tick()

	assert.Equal(t, 1, gw.TypingSignals(channelID))
	assert.False(t, typer.Typing(channelID))
}

func TestToggle(t *testing.T) {
	c := guildChannel(t, chancache.NewOverrides())
	gw, sched := mocks.NewGateway(), mocks.NewScheduler()
	typer := newTyper(t, c, gw, sched)

	on, err := typer.Toggle(channelID)
	require.NoError(t, err)
	assert.True(t, on)

	on, err = typer.Toggle(channelID)
	require.NoError(t, err)
	assert.False(t, on)
	assert.False(t, typer.Typing(channelID))
}
