package store

import (
	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
)

// Deleter provides methods for deleting rows from the database.
type Deleter interface {
	DeleteChannel(string) error
}

func tombstoneQuery(id string) sq.InsertBuilder {
	return psql.Insert("channels").
		Columns("id", "deleted").
		Values(id, true).
		Suffix("ON CONFLICT (id) DO UPDATE SET deleted = TRUE")
}

// DeleteChannel removes the channel's overrides and webhooks and leaves a
// tombstone row behind so a reload still knows the channel is gone.
func (d *database) DeleteChannel(id string) error {
	for _, table := range []string{"overrides", "webhooks"} {
		_, err := psql.Delete(table).Where(sq.Eq{"channel_id": id}).RunWith(d).Exec()
		if err != nil {
			return errors.Wrapf(err, "Error deleting %s of channel %s", table, id)
		}
	}

	_, err := tombstoneQuery(id).RunWith(d).Exec()
	return errors.Wrapf(err, "Error deleting channel %s", id)
}
