package store

import (
	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	"github.com/tmitchel/chancache"
)

// Adder provides methods for adding rows to the database. Adding a row
// that already exists overwrites it.
type Adder interface {
	AddGuild(chancache.Guild) error
	AddChannel(chancache.Channel) error
}

func addGuildQuery(g chancache.Guild) sq.InsertBuilder {
	return psql.Insert("guilds").
		Columns("id", "owner_id", "everyone_role_id").
		Values(g.ID, g.OwnerID, g.EveryoneRoleID).
		Suffix("ON CONFLICT (id) DO UPDATE SET owner_id = EXCLUDED.owner_id, everyone_role_id = EXCLUDED.everyone_role_id")
}

func addChannelQuery(c channel) sq.InsertBuilder {
	return psql.Insert("channels").
		Columns("id", "guild_id", "name", "topic", "position", "kind", "deleted").
		Values(c.ID, c.GuildID, c.Name, c.Topic, c.Position, c.Kind, false).
		Suffix("ON CONFLICT (id) DO UPDATE SET guild_id = EXCLUDED.guild_id, name = EXCLUDED.name, " +
			"topic = EXCLUDED.topic, position = EXCLUDED.position, kind = EXCLUDED.kind, deleted = FALSE")
}

// AddGuild stores the guild's owner and everyone role.
func (d *database) AddGuild(g chancache.Guild) error {
	if g.ID == "" {
		return errors.New("guild id is required")
	}
	_, err := addGuildQuery(g).RunWith(d).Exec()
	return errors.Wrapf(err, "Error saving guild %s", g.ID)
}

// AddChannel stores the channel's metadata and clears any tombstone it has.
func (d *database) AddChannel(ch chancache.Channel) error {
	if ch.ID == "" {
		return errors.New("channel id is required")
	}
	_, err := addChannelQuery(channelFromModel(ch)).RunWith(d).Exec()
	return errors.Wrapf(err, "Error saving channel %s", ch.ID)
}
