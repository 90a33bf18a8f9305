package services

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/tmitchel/chancache/cache"
	"github.com/tmitchel/chancache/store"
)

// Snapshotter saves the cache to the database and loads it back on start.
type Snapshotter interface {
	Save() error
	Load() error
}

type snapshotter struct {
	Cache cache.Cache
	DB    store.Database
}

// NewSnapshotter wraps a database connection with a Snapshotter for c.
func NewSnapshotter(c cache.Cache, db store.Database) (Snapshotter, error) {
	if c == nil || db == nil {
		return nil, errors.New("snapshotter needs a cache and a database")
	}
	return &snapshotter{
		Cache: c,
		DB:    db,
	}, nil
}

// Save writes every guild, live channel and tombstone in the cache.
func (s *snapshotter) Save() error {
	for _, g := range s.Cache.GetGuilds() {
		if err := s.DB.AddGuild(g); err != nil {
			return err
		}
	}

	channels := s.Cache.GetChannels()
	for _, ch := range channels {
		ov, err := s.Cache.GetOverrides(ch.ID)
		if err != nil {
			// deleted since the listing, picked up as a tombstone below
			continue
		}
		hooks, err := s.Cache.GetWebhooks(ch.ID)
		if err != nil {
			continue
		}

		if err := s.DB.AddChannel(ch); err != nil {
			return err
		}
		if err := s.DB.ReplaceOverrides(ch.ID, ov); err != nil {
			return err
		}
		if err := s.DB.ReplaceWebhooks(ch.ID, hooks); err != nil {
			return err
		}
	}

	tombs := s.Cache.GetTombstones()
	for _, id := range tombs {
		if err := s.DB.DeleteChannel(id); err != nil {
			return err
		}
	}

	logrus.WithFields(logrus.Fields{
		"channels":   len(channels),
		"tombstones": len(tombs),
	}).Info("snapshot saved")
	return nil
}

// Load fills the cache from the database.
func (s *snapshotter) Load() error {
	guilds, err := s.DB.GetGuilds()
	if err != nil {
		return err
	}
	for _, g := range guilds {
		s.Cache.AddGuild(g)
	}

	channels, err := s.DB.GetChannels()
	if err != nil {
		return err
	}
	for _, ch := range channels {
		ov, err := s.DB.GetOverrides(ch.ID)
		if err != nil {
			return err
		}
		if err := s.Cache.AddChannel(ch, ov); err != nil {
			return errors.Wrapf(err, "loading channel %s", ch.ID)
		}

		hooks, err := s.DB.GetWebhooks(ch.ID)
		if err != nil {
			return err
		}
		for _, w := range hooks {
			if err := s.Cache.AddWebhook(ch.ID, w); err != nil {
				return err
			}
		}
	}

	tombs, err := s.DB.GetTombstones()
	if err != nil {
		return err
	}
	for _, id := range tombs {
		// already deleted is fine
		s.Cache.DeleteChannel(id)
	}

	logrus.WithFields(logrus.Fields{
		"guilds":     len(guilds),
		"channels":   len(channels),
		"tombstones": len(tombs),
	}).Info("snapshot loaded")
	return nil
}
