package store

import (
	"github.com/tmitchel/chancache"
)

type channel struct {
	ID       string `db:"id"`
	GuildID  string `db:"guild_id"`
	Name     string `db:"name"`
	Topic    string `db:"topic"`
	Position int    `db:"position"`
	Kind     string `db:"kind"`
}

// channelFromModel converts the normal chancache.Channel model
// into a channel which has properties only useful for the
// database.
func channelFromModel(c chancache.Channel) channel {
	return channel{
		ID:       c.ID,
		GuildID:  c.GuildID,
		Name:     c.Name,
		Topic:    c.Topic,
		Position: c.Position,
		Kind:     c.Kind.String(),
	}
}

func (c channel) ToModel() chancache.Channel {
	kind, _ := chancache.ParseChannelKind(c.Kind)
	return chancache.Channel{
		ID:       c.ID,
		GuildID:  c.GuildID,
		Name:     c.Name,
		Topic:    c.Topic,
		Position: c.Position,
		Kind:     kind,
	}
}

type override struct {
	ChannelID   string `db:"channel_id"`
	PrincipalID string `db:"principal_id"`
	Kind        string `db:"kind"`
	Allow       int64  `db:"allow_bits"`
	Deny        int64  `db:"deny_bits"`
}

func overrideFromModel(channelID string, o chancache.PermissionOverride) override {
	return override{
		ChannelID:   channelID,
		PrincipalID: o.PrincipalID,
		Kind:        string(o.Kind),
		Allow:       int64(o.Allow),
		Deny:        int64(o.Deny),
	}
}

func (o override) ToModel() chancache.PermissionOverride {
	return chancache.PermissionOverride{
		PrincipalID: o.PrincipalID,
		Kind:        chancache.PrincipalKind(o.Kind),
		Allow:       chancache.Permissions(o.Allow),
		Deny:        chancache.Permissions(o.Deny),
	}
}

type webhook struct {
	ChannelID string `db:"channel_id"`
	ID        string `db:"id"`
	Name      string `db:"name"`
	Avatar    string `db:"avatar"`
	Seq       int    `db:"seq"`
}

func webhookFromModel(w chancache.Webhook, seq int) webhook {
	return webhook{
		ChannelID: w.ChannelID,
		ID:        w.ID,
		Name:      w.Name,
		Avatar:    w.Avatar,
		Seq:       seq,
	}
}

func (w webhook) ToModel() chancache.Webhook {
	return chancache.Webhook{
		ID:        w.ID,
		Name:      w.Name,
		Avatar:    w.Avatar,
		ChannelID: w.ChannelID,
	}
}
