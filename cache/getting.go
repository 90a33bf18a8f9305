package cache

import (
	"sort"

	"github.com/tmitchel/chancache"
)

// Getter provides methods for reading copies of cached state. Nothing
// returned aliases the live cache.
type Getter interface {
	chancache.Guilds

	GetGuild(string) (chancache.Guild, bool)
	GetGuilds() []chancache.Guild
	GetChannel(string) (chancache.Channel, error)
	GetChannels() []chancache.Channel
	GetChannelsInGuild(string) []chancache.Channel
	IsDeleted(string) bool
	GetTombstones() []string
	Position(string) (int, error)

	GetOverrides(string) (chancache.Overrides, error)
	GetUserOverride(string, string) (chancache.PermissionOverride, bool, error)
	GetRoleOverride(string, string) (chancache.PermissionOverride, bool, error)

	GetWebhooks(string) ([]chancache.Webhook, error)
	GetWebhook(string, string) (chancache.Webhook, bool, error)
	GetWebhooksByName(string, string) ([]chancache.Webhook, error)
}

// GetGuilds returns every cached guild, sorted by id.
func (c *cache) GetGuilds() []chancache.Guild {
	c.mu.RLock()
	defer c.mu.RUnlock()

	guilds := make([]chancache.Guild, 0, len(c.guilds))
	for _, g := range c.guilds {
		guilds = append(guilds, g)
	}
	sort.Slice(guilds, func(i, j int) bool { return guilds[i].ID < guilds[j].ID })
	return guilds
}

// GetGuild returns the facts cached for a guild.
func (c *cache) GetGuild(id string) (chancache.Guild, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	g, ok := c.guilds[id]
	return g, ok
}

// IsGuildOwner reports whether the user owns the guild. Unknown guilds have
// no owner.
func (c *cache) IsGuildOwner(guildID, userID string) bool {
	g, ok := c.GetGuild(guildID)
	return ok && userID != "" && g.OwnerID == userID
}

// EveryoneRoleID returns the id of the guild's everyone role.
func (c *cache) EveryoneRoleID(guildID string) string {
	g, ok := c.GetGuild(guildID)
	if !ok {
		return guildID
	}
	return g.Everyone()
}

// GetChannel returns the cached metadata of a channel.
func (c *cache) GetChannel(id string) (chancache.Channel, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	st, err := c.state(id)
	if err != nil {
		return chancache.Channel{}, err
	}
	return st.channel, nil
}

// GetChannels returns every live channel, ordered by id.
func (c *cache) GetChannels() []chancache.Channel {
	c.mu.RLock()
	defer c.mu.RUnlock()

	channels := make([]chancache.Channel, 0, len(c.channels))
	for _, st := range c.channels {
		channels = append(channels, st.channel)
	}
	sort.Slice(channels, func(i, j int) bool {
		return channels[i].ID < channels[j].ID
	})
	return channels
}

// GetChannelsInGuild returns the live channels of one guild, ordered by id.
func (c *cache) GetChannelsInGuild(guildID string) []chancache.Channel {
	var channels []chancache.Channel
	for _, ch := range c.GetChannels() {
		if ch.GuildID == guildID {
			channels = append(channels, ch)
		}
	}
	return channels
}

// IsDeleted reports whether the channel has been deleted.
func (c *cache) IsDeleted(id string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.deleted[id]
	return ok
}

// GetTombstones returns the ids of every deleted channel, sorted.
func (c *cache) GetTombstones() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ids := make([]string, 0, len(c.deleted))
	for id := range c.deleted {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Position returns the index of the channel in its guild's channel list as
// the platform displays it: ordered by raw position, with ties going to the
// newer channel first.
func (c *cache) Position(id string) (int, error) {
	ch, err := c.GetChannel(id)
	if err != nil {
		return 0, err
	}
	if ch.IsPrivate() {
		return 0, nil
	}

	siblings := c.GetChannelsInGuild(ch.GuildID)
	sort.SliceStable(siblings, func(i, j int) bool {
		if siblings[i].Position != siblings[j].Position {
			return siblings[i].Position < siblings[j].Position
		}
		return siblings[i].CreatedAt().After(siblings[j].CreatedAt())
	})

	for i, s := range siblings {
		if s.ID == id {
			return i, nil
		}
	}
	return 0, nil
}

// GetOverrides returns a copy of the channel's override store.
func (c *cache) GetOverrides(channelID string) (chancache.Overrides, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	st, err := c.state(channelID)
	if err != nil {
		return chancache.Overrides{}, err
	}
	return chancache.Overrides{
		Users: copyOverrides(st.users),
		Roles: copyOverrides(st.roles),
	}, nil
}

// GetUserOverride returns the user's override in the channel, if any.
func (c *cache) GetUserOverride(channelID, userID string) (chancache.PermissionOverride, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	st, err := c.state(channelID)
	if err != nil {
		return chancache.PermissionOverride{}, false, err
	}
	o, ok := st.users[userID]
	return o, ok, nil
}

// GetRoleOverride returns the role's override in the channel, if any.
func (c *cache) GetRoleOverride(channelID, roleID string) (chancache.PermissionOverride, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	st, err := c.state(channelID)
	if err != nil {
		return chancache.PermissionOverride{}, false, err
	}
	o, ok := st.roles[roleID]
	return o, ok, nil
}

// GetWebhooks returns a copy of the channel's webhooks in insertion order.
func (c *cache) GetWebhooks(channelID string) ([]chancache.Webhook, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	st, err := c.state(channelID)
	if err != nil {
		return nil, err
	}

	hooks := make([]chancache.Webhook, 0, len(st.order))
	for _, k := range st.order {
		hooks = append(hooks, st.hooks[k])
	}
	return hooks, nil
}

// GetWebhook looks a webhook up by id, ignoring case.
func (c *cache) GetWebhook(channelID, webhookID string) (chancache.Webhook, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	st, err := c.state(channelID)
	if err != nil {
		return chancache.Webhook{}, false, err
	}
	w, ok := st.hooks[hookKey(webhookID)]
	return w, ok, nil
}

// GetWebhooksByName returns every cached webhook with exactly the given
// display name.
func (c *cache) GetWebhooksByName(channelID, name string) ([]chancache.Webhook, error) {
	hooks, err := c.GetWebhooks(channelID)
	if err != nil {
		return nil, err
	}

	var named []chancache.Webhook
	for _, w := range hooks {
		if w.Name == name {
			named = append(named, w)
		}
	}
	return named, nil
}
