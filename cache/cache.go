package cache

import (
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/tmitchel/chancache"
)

// Cache provides methods to read and mutate the locally held model of
// channels, their overrides and webhooks. Every method is safe to call from
// multiple goroutines and each one is atomic on its own.
type Cache interface {
	Adder
	Deleter
	Getter
	Updater
}

type channelState struct {
	channel chancache.Channel
	users   map[string]chancache.PermissionOverride
	roles   map[string]chancache.PermissionOverride

	// webhooks keyed by lower-cased id, order keeps insertion order
	hooks map[string]chancache.Webhook
	order []string
}

func newChannelState(ch chancache.Channel) *channelState {
	return &channelState{
		channel: ch,
		users:   make(map[string]chancache.PermissionOverride),
		roles:   make(map[string]chancache.PermissionOverride),
		hooks:   make(map[string]chancache.Webhook),
	}
}

type cache struct {
	mu       sync.RWMutex
	guilds   map[string]chancache.Guild
	channels map[string]*channelState
	deleted  map[string]struct{}
}

// New returns an empty cache.
func New() Cache {
	return &cache{
		guilds:   make(map[string]chancache.Guild),
		channels: make(map[string]*channelState),
		deleted:  make(map[string]struct{}),
	}
}

// state looks up a live channel. Callers must hold c.mu.
func (c *cache) state(id string) (*channelState, error) {
	if _, ok := c.deleted[id]; ok {
		return nil, errors.Wrapf(chancache.ErrStaleChannel, "channel %s", id)
	}
	st, ok := c.channels[id]
	if !ok {
		return nil, errors.Wrapf(chancache.ErrUnknownChannel, "channel %s", id)
	}
	return st, nil
}

func hookKey(id string) string {
	return strings.ToLower(id)
}
