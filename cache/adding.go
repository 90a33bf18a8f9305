package cache

import (
	"github.com/pkg/errors"
	"github.com/tmitchel/chancache"
)

// Adder provides methods for putting new objects into the cache.
type Adder interface {
	AddGuild(chancache.Guild)
	AddChannel(chancache.Channel, chancache.Overrides) error
	AddUserOverride(string, chancache.PermissionOverride) error
	AddRoleOverride(string, chancache.PermissionOverride) error
	AddWebhook(string, chancache.Webhook) error
}

// AddGuild stores or replaces the facts kept about a guild.
func (c *cache) AddGuild(g chancache.Guild) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.guilds[g.ID] = g
}

// AddChannel loads a channel and its overrides as delivered by the
// platform, replacing whatever was cached for it. Cached webhooks survive a
// reload. Loading a channel clears any deletion recorded for its id.
func (c *cache) AddChannel(ch chancache.Channel, ov chancache.Overrides) error {
	if ch.ID == "" {
		return errors.New("channel id is required")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.deleted, ch.ID)
	st, ok := c.channels[ch.ID]
	if !ok {
		st = newChannelState(ch)
		c.channels[ch.ID] = st
	}
	st.channel = ch
	st.users = copyOverrides(ov.Users)
	st.roles = copyOverrides(ov.Roles)
	return nil
}

// AddUserOverride caches the override for a user in the given channel,
// replacing any override the user already had there.
func (c *cache) AddUserOverride(channelID string, o chancache.PermissionOverride) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	st, err := c.state(channelID)
	if err != nil {
		return err
	}
	o.Kind = chancache.PrincipalUser
	st.users[o.PrincipalID] = o
	return nil
}

// AddRoleOverride caches the override for a role in the given channel,
// replacing any override the role already had there.
func (c *cache) AddRoleOverride(channelID string, o chancache.PermissionOverride) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	st, err := c.state(channelID)
	if err != nil {
		return err
	}
	o.Kind = chancache.PrincipalRole
	st.roles[o.PrincipalID] = o
	return nil
}

// AddWebhook appends a webhook to the channel's cache. A webhook whose id
// is already cached is left alone.
func (c *cache) AddWebhook(channelID string, w chancache.Webhook) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	st, err := c.state(channelID)
	if err != nil {
		return err
	}

	key := hookKey(w.ID)
	if _, ok := st.hooks[key]; ok {
		return nil
	}
	if w.ChannelID == "" {
		w.ChannelID = channelID
	}
	st.hooks[key] = w
	st.order = append(st.order, key)
	return nil
}

func copyOverrides(m map[string]chancache.PermissionOverride) map[string]chancache.PermissionOverride {
	out := make(map[string]chancache.PermissionOverride, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
