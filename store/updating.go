package store

import (
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	"github.com/tmitchel/chancache"
)

// Updater provides methods for replacing the rows that hang off a channel.
type Updater interface {
	ReplaceOverrides(string, chancache.Overrides) error
	ReplaceWebhooks(string, []chancache.Webhook) error
}

func insertOverridesQuery(channelID string, ov chancache.Overrides) (sq.InsertBuilder, bool) {
	q := psql.Insert("overrides").Columns("channel_id", "principal_id", "kind", "allow_bits", "deny_bits")
	n := 0
	for _, set := range []map[string]chancache.PermissionOverride{ov.Users, ov.Roles} {
		for _, id := range sortedKeys(set) {
			o := overrideFromModel(channelID, set[id])
			q = q.Values(o.ChannelID, o.PrincipalID, o.Kind, o.Allow, o.Deny)
			n++
		}
	}
	return q, n > 0
}

func insertWebhooksQuery(channelID string, hooks []chancache.Webhook) (sq.InsertBuilder, bool) {
	q := psql.Insert("webhooks").Columns("channel_id", "id", "name", "avatar", "seq")
	for i, h := range hooks {
		h.ChannelID = channelID
		w := webhookFromModel(h, i)
		q = q.Values(w.ChannelID, w.ID, w.Name, w.Avatar, w.Seq)
	}
	return q, len(hooks) > 0
}

// ReplaceOverrides swaps every stored override of the channel for ov.
func (d *database) ReplaceOverrides(channelID string, ov chancache.Overrides) error {
	insert, ok := insertOverridesQuery(channelID, ov)
	return d.replace(channelID, "overrides", insert, ok)
}

// ReplaceWebhooks swaps every stored webhook of the channel for hooks,
// keeping their order.
func (d *database) ReplaceWebhooks(channelID string, hooks []chancache.Webhook) error {
	insert, ok := insertWebhooksQuery(channelID, hooks)
	return d.replace(channelID, "webhooks", insert, ok)
}

// replace clears the channel's rows in table and runs insert, in one
// transaction.
func (d *database) replace(channelID, table string, insert sq.InsertBuilder, hasRows bool) (err error) {
	tx, err := d.Begin()
	if err != nil {
		return errors.Wrap(err, "Error starting transaction")
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
				err = errors.Wrapf(err, "rollback failed: %v", rbErr)
			}
		}
	}()

	if _, err = psql.Delete(table).Where(sq.Eq{"channel_id": channelID}).RunWith(tx).Exec(); err != nil {
		return errors.Wrapf(err, "Error clearing %s of channel %s", table, channelID)
	}
	if hasRows {
		if _, err = insert.RunWith(tx).Exec(); err != nil {
			return errors.Wrapf(err, "Error saving %s of channel %s", table, channelID)
		}
	}
	return errors.Wrap(tx.Commit(), "Error committing transaction")
}
