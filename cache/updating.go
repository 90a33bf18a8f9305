package cache

import (
	"github.com/tmitchel/chancache"
)

// Updater provides methods for changing objects already in the cache.
type Updater interface {
	UpdateChannel(chancache.Channel) error
	ReplaceOverrides(string, chancache.Overrides) error
	UpdateWebhook(string, chancache.Webhook) (chancache.Webhook, error)
}

// UpdateChannel replaces the cached name, topic, position and kind of a
// channel. Overrides and webhooks are untouched.
func (c *cache) UpdateChannel(ch chancache.Channel) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	st, err := c.state(ch.ID)
	if err != nil {
		return err
	}
	if ch.GuildID == "" {
		ch.GuildID = st.channel.GuildID
	}
	st.channel = ch
	return nil
}

// ReplaceOverrides swaps the channel's whole override store for ov.
func (c *cache) ReplaceOverrides(channelID string, ov chancache.Overrides) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	st, err := c.state(channelID)
	if err != nil {
		return err
	}
	st.users = copyOverrides(ov.Users)
	st.roles = copyOverrides(ov.Roles)
	return nil
}

// UpdateWebhook replaces a cached webhook in place, keeping its position in
// the channel's list, and returns the record it replaced. A webhook that is
// not cached yet is appended instead and the zero Webhook is returned.
func (c *cache) UpdateWebhook(channelID string, w chancache.Webhook) (chancache.Webhook, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	st, err := c.state(channelID)
	if err != nil {
		return chancache.Webhook{}, err
	}
	if w.ChannelID == "" {
		w.ChannelID = channelID
	}

	key := hookKey(w.ID)
	old, ok := st.hooks[key]
	if !ok {
		st.order = append(st.order, key)
	}
	st.hooks[key] = w
	return old, nil
}
