package store

import (
	"sort"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	"github.com/tmitchel/chancache"
)

// Getter provides methods for reading rows back from the database.
type Getter interface {
	GetGuilds() ([]chancache.Guild, error)
	GetChannels() ([]chancache.Channel, error)
	GetTombstones() ([]string, error)
	GetOverrides(string) (chancache.Overrides, error)
	GetWebhooks(string) ([]chancache.Webhook, error)
}

// GetGuilds returns every stored guild.
func (d *database) GetGuilds() ([]chancache.Guild, error) {
	rows, err := psql.Select("id", "owner_id", "everyone_role_id").
		From("guilds").OrderBy("id").
		RunWith(d).Query()
	if err != nil {
		return nil, errors.Wrap(err, "Error querying guilds")
	}
	defer rows.Close()

	var guilds []chancache.Guild
	for rows.Next() {
		var g chancache.Guild
		if err := rows.Scan(&g.ID, &g.OwnerID, &g.EveryoneRoleID); err != nil {
			return nil, errors.Wrap(err, "Error scanning guild")
		}
		guilds = append(guilds, g)
	}
	return guilds, rows.Err()
}

func channelsQuery(deleted bool) sq.SelectBuilder {
	return psql.Select("id", "guild_id", "name", "topic", "position", "kind").
		From("channels").
		Where(sq.Eq{"deleted": deleted}).
		OrderBy("id")
}

// GetChannels returns every stored channel that has not been deleted.
func (d *database) GetChannels() ([]chancache.Channel, error) {
	rows, err := channelsQuery(false).RunWith(d).Query()
	if err != nil {
		return nil, errors.Wrap(err, "Error querying channels")
	}
	defer rows.Close()

	var channels []chancache.Channel
	for rows.Next() {
		var c channel
		if err := rows.Scan(&c.ID, &c.GuildID, &c.Name, &c.Topic, &c.Position, &c.Kind); err != nil {
			return nil, errors.Wrap(err, "Error scanning channel")
		}
		channels = append(channels, c.ToModel())
	}
	return channels, rows.Err()
}

// GetTombstones returns the ids of deleted channels.
func (d *database) GetTombstones() ([]string, error) {
	rows, err := psql.Select("id").From("channels").
		Where(sq.Eq{"deleted": true}).OrderBy("id").
		RunWith(d).Query()
	if err != nil {
		return nil, errors.Wrap(err, "Error querying tombstones")
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, errors.Wrap(err, "Error scanning tombstone")
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// GetOverrides returns the stored overrides of a channel.
func (d *database) GetOverrides(channelID string) (chancache.Overrides, error) {
	rows, err := psql.Select("channel_id", "principal_id", "kind", "allow_bits", "deny_bits").
		From("overrides").Where(sq.Eq{"channel_id": channelID}).
		RunWith(d).Query()
	if err != nil {
		return chancache.Overrides{}, errors.Wrapf(err, "Error querying overrides of channel %s", channelID)
	}
	defer rows.Close()

	ov := chancache.NewOverrides()
	for rows.Next() {
		var o override
		if err := rows.Scan(&o.ChannelID, &o.PrincipalID, &o.Kind, &o.Allow, &o.Deny); err != nil {
			return chancache.Overrides{}, errors.Wrap(err, "Error scanning override")
		}
		m := o.ToModel()
		if m.Kind == chancache.PrincipalRole {
			ov.Roles[m.PrincipalID] = m
		} else {
			ov.Users[m.PrincipalID] = m
		}
	}
	return ov, rows.Err()
}

// GetWebhooks returns the stored webhooks of a channel in the order they
// were saved.
func (d *database) GetWebhooks(channelID string) ([]chancache.Webhook, error) {
	rows, err := psql.Select("channel_id", "id", "name", "avatar", "seq").
		From("webhooks").Where(sq.Eq{"channel_id": channelID}).OrderBy("seq").
		RunWith(d).Query()
	if err != nil {
		return nil, errors.Wrapf(err, "Error querying webhooks of channel %s", channelID)
	}
	defer rows.Close()

	var hooks []chancache.Webhook
	for rows.Next() {
		var w webhook
		if err := rows.Scan(&w.ChannelID, &w.ID, &w.Name, &w.Avatar, &w.Seq); err != nil {
			return nil, errors.Wrap(err, "Error scanning webhook")
		}
		hooks = append(hooks, w.ToModel())
	}
	return hooks, rows.Err()
}

func sortedKeys(m map[string]chancache.PermissionOverride) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
