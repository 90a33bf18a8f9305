package cache

import (
	"github.com/tmitchel/chancache"
)

// Deleter provides methods for removing objects from the cache.
type Deleter interface {
	DeleteChannel(string) (chancache.Channel, error)
	RemoveUserOverride(string, string) error
	RemoveRoleOverride(string, string) error
	RemoveWebhook(string, string) error
}

// DeleteChannel drops everything cached for the channel and remembers the
// id as deleted, so later operations on it fail with ErrStaleChannel.
// Deleting an already deleted channel returns ErrStaleChannel. A channel
// that was never loaded is still recorded as deleted.
func (c *cache) DeleteChannel(id string) (chancache.Channel, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	st, err := c.state(id)
	if chancache.IsStale(err) {
		return chancache.Channel{}, err
	}

	c.deleted[id] = struct{}{}
	delete(c.channels, id)
	if st == nil {
		return chancache.Channel{ID: id}, nil
	}
	return st.channel, nil
}

// RemoveUserOverride removes the user's override from the channel if it
// has one.
func (c *cache) RemoveUserOverride(channelID, userID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	st, err := c.state(channelID)
	if err != nil {
		return err
	}
	delete(st.users, userID)
	return nil
}

// RemoveRoleOverride removes the role's override from the channel if it
// has one.
func (c *cache) RemoveRoleOverride(channelID, roleID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	st, err := c.state(channelID)
	if err != nil {
		return err
	}
	delete(st.roles, roleID)
	return nil
}

// RemoveWebhook removes the webhook with the given id from the channel's
// cache if it is there.
func (c *cache) RemoveWebhook(channelID, webhookID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	st, err := c.state(channelID)
	if err != nil {
		return err
	}

	key := hookKey(webhookID)
	if _, ok := st.hooks[key]; !ok {
		return nil
	}
	delete(st.hooks, key)
	for i, k := range st.order {
		if k == key {
			st.order = append(st.order[:i:i], st.order[i+1:]...)
			break
		}
	}
	return nil
}
