package cache_test

import (
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmitchel/chancache"
	"github.com/tmitchel/chancache/cache"
)

var general = chancache.Channel{
	ID:      "1001",
	GuildID: "g1",
	Name:    "general",
	Kind:    chancache.KindText,
}

func newCache(t *testing.T) cache.Cache {
	c := cache.New()
	c.AddGuild(chancache.Guild{ID: "g1", OwnerID: "owner"})
	require.NoError(t, c.AddChannel(general, chancache.NewOverrides()))
	return c
}

func TestAddChannel(t *testing.T) {
	c := cache.New()
	ov := chancache.NewOverrides()
	ov.Roles["r1"] = chancache.PermissionOverride{PrincipalID: "r1", Allow: chancache.PermissionSendMessages}

	require.NoError(t, c.AddChannel(general, ov))

	ch, err := c.GetChannel(general.ID)
	require.NoError(t, err)
	assert.Equal(t, general, ch)

	got, err := c.GetOverrides(general.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Len())

	// the cache keeps its own copy
	delete(ov.Roles, "r1")
	got, err = c.GetOverrides(general.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Len())

	assert.Error(t, c.AddChannel(chancache.Channel{}, ov))
}

func TestAddUserOverrideReplaces(t *testing.T) {
	c := newCache(t)

	first := chancache.PermissionOverride{PrincipalID: "u1", Allow: chancache.PermissionSendMessages}
	second := chancache.PermissionOverride{PrincipalID: "u1", Deny: chancache.PermissionEmbedLinks}
	require.NoError(t, c.AddUserOverride(general.ID, first))
	require.NoError(t, c.AddUserOverride(general.ID, second))

	o, ok, err := c.GetUserOverride(general.ID, "u1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, chancache.Permissions(0), o.Allow)
	assert.Equal(t, chancache.PermissionEmbedLinks, o.Deny)
	assert.Equal(t, chancache.PrincipalUser, o.Kind)

	ov, err := c.GetOverrides(general.ID)
	require.NoError(t, err)
	assert.Len(t, ov.Users, 1)
}

func TestRemoveOverride(t *testing.T) {
	c := newCache(t)

	require.NoError(t, c.AddRoleOverride(general.ID, chancache.PermissionOverride{PrincipalID: "r1"}))
	require.NoError(t, c.RemoveRoleOverride(general.ID, "r1"))
	require.NoError(t, c.RemoveRoleOverride(general.ID, "r1"))
	require.NoError(t, c.RemoveUserOverride(general.ID, "nobody"))

	_, ok, err := c.GetRoleOverride(general.ID, "r1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestWebhooksKeepInsertionOrder(t *testing.T) {
	c := newCache(t)

	for _, id := range []string{"w3", "w1", "w2"} {
		require.NoError(t, c.AddWebhook(general.ID, chancache.Webhook{ID: id, Name: "hook-" + id}))
	}
	// duplicate ids are ignored
	require.NoError(t, c.AddWebhook(general.ID, chancache.Webhook{ID: "w1", Name: "other"}))

	old, err := c.UpdateWebhook(general.ID, chancache.Webhook{ID: "w1", Name: "renamed"})
	require.NoError(t, err)
	assert.Equal(t, "hook-w1", old.Name)

	require.NoError(t, c.RemoveWebhook(general.ID, "w3"))

	hooks, err := c.GetWebhooks(general.ID)
	require.NoError(t, err)
	require.Len(t, hooks, 2)
	assert.Equal(t, "w1", hooks[0].ID)
	assert.Equal(t, "renamed", hooks[0].Name)
	assert.Equal(t, general.ID, hooks[0].ChannelID)
	assert.Equal(t, "w2", hooks[1].ID)
}

func TestGetWebhookIgnoresCase(t *testing.T) {
	c := newCache(t)
	require.NoError(t, c.AddWebhook(general.ID, chancache.Webhook{ID: "AbC", Name: "bot"}))
	require.NoError(t, c.AddWebhook(general.ID, chancache.Webhook{ID: "def", Name: "bot"}))

	w, ok, err := c.GetWebhook(general.ID, "abc")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "AbC", w.ID)

	named, err := c.GetWebhooksByName(general.ID, "bot")
	require.NoError(t, err)
	assert.Len(t, named, 2)
}

func TestDeleteChannelIsStale(t *testing.T) {
	c := newCache(t)
	require.NoError(t, c.AddWebhook(general.ID, chancache.Webhook{ID: "w1"}))

	deleted, err := c.DeleteChannel(general.ID)
	require.NoError(t, err)
	assert.Equal(t, general.Name, deleted.Name)
	assert.True(t, c.IsDeleted(general.ID))

	_, err = c.GetChannel(general.ID)
	assert.True(t, chancache.IsStale(err))
	_, err = c.GetWebhooks(general.ID)
	assert.True(t, chancache.IsStale(err))
	err = c.AddUserOverride(general.ID, chancache.PermissionOverride{PrincipalID: "u1"})
	assert.True(t, chancache.IsStale(err))
	_, err = c.DeleteChannel(general.ID)
	assert.True(t, chancache.IsStale(err))

	// an explicit reload brings it back
	require.NoError(t, c.AddChannel(general, chancache.NewOverrides()))
	assert.False(t, c.IsDeleted(general.ID))
}

func TestUnknownChannel(t *testing.T) {
	c := cache.New()
	_, err := c.GetChannel("missing")
	assert.ErrorIs(t, err, chancache.ErrUnknownChannel)
	assert.False(t, c.IsDeleted("missing"))
}

func TestGuildFacts(t *testing.T) {
	c := cache.New()
	c.AddGuild(chancache.Guild{ID: "g1", OwnerID: "owner"})
	c.AddGuild(chancache.Guild{ID: "g2", OwnerID: "other", EveryoneRoleID: "everyone-2"})

	assert.True(t, c.IsGuildOwner("g1", "owner"))
	assert.False(t, c.IsGuildOwner("g1", "other"))
	assert.False(t, c.IsGuildOwner("unknown", ""))
	assert.Equal(t, "g1", c.EveryoneRoleID("g1"))
	assert.Equal(t, "everyone-2", c.EveryoneRoleID("g2"))
	assert.Equal(t, "g3", c.EveryoneRoleID("g3"))
}

func TestUpdateChannelKeepsOverrides(t *testing.T) {
	c := newCache(t)
	require.NoError(t, c.AddUserOverride(general.ID, chancache.PermissionOverride{PrincipalID: "u1"}))

	require.NoError(t, c.UpdateChannel(chancache.Channel{ID: general.ID, Name: "renamed", Topic: "news"}))

	ch, err := c.GetChannel(general.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", ch.Name)
	assert.Equal(t, "news", ch.Topic)
	assert.Equal(t, "g1", ch.GuildID)

	ov, err := c.GetOverrides(general.ID)
	require.NoError(t, err)
	assert.Len(t, ov.Users, 1)
}

func TestPosition(t *testing.T) {
	c := cache.New()
	older := strconv.FormatUint(1<<22, 10)
	newer := strconv.FormatUint(2<<22, 10)
	top := strconv.FormatUint(3<<22, 10)

	require.NoError(t, c.AddChannel(chancache.Channel{ID: older, GuildID: "g1", Position: 1}, chancache.NewOverrides()))
	require.NoError(t, c.AddChannel(chancache.Channel{ID: newer, GuildID: "g1", Position: 1}, chancache.NewOverrides()))
	require.NoError(t, c.AddChannel(chancache.Channel{ID: top, GuildID: "g1", Position: 0}, chancache.NewOverrides()))
	require.NoError(t, c.AddChannel(chancache.Channel{ID: "dm", Kind: chancache.KindPrivate}, chancache.NewOverrides()))

	for id, want := range map[string]int{top: 0, newer: 1, older: 2, "dm": 0} {
		got, err := c.Position(id)
		require.NoError(t, err)
		assert.Equal(t, want, got, "channel %s", id)
	}
}

func TestConcurrentWebhookMutation(t *testing.T) {
	c := newCache(t)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := strconv.Itoa(i)
			_ = c.AddWebhook(general.ID, chancache.Webhook{ID: id})
			_, _ = c.GetWebhooks(general.ID)
			if i%2 == 0 {
				_ = c.RemoveWebhook(general.ID, id)
			}
		}(i)
	}
	wg.Wait()

	hooks, err := c.GetWebhooks(general.ID)
	require.NoError(t, err)
	assert.Len(t, hooks, 25)
}
