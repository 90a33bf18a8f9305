package mocks

import (
	"database/sql"
	"sort"
	"sync"

	"github.com/pkg/errors"
	"github.com/tmitchel/chancache"
	"github.com/tmitchel/chancache/store"
)

var _ store.Database = (*Database)(nil)

// Database is an in-memory store.Database. Raw SQL is not supported.
type Database struct {
	mu sync.Mutex

	guilds    map[string]chancache.Guild
	channels  map[string]chancache.Channel
	deleted   map[string]bool
	overrides map[string]chancache.Overrides
	webhooks  map[string][]chancache.Webhook

	// Err, when set, fails every call.
	Err    error
	Closed bool
}

// NewDatabase returns an empty in-memory database.
func NewDatabase() *Database {
	return &Database{
		guilds:    make(map[string]chancache.Guild),
		channels:  make(map[string]chancache.Channel),
		deleted:   make(map[string]bool),
		overrides: make(map[string]chancache.Overrides),
		webhooks:  make(map[string][]chancache.Webhook),
	}
}

func (d *Database) Exec(string, ...interface{}) (sql.Result, error) {
	return nil, errors.New("mocks: raw sql not supported")
}

func (d *Database) Query(string, ...interface{}) (*sql.Rows, error) {
	return nil, errors.New("mocks: raw sql not supported")
}

func (d *Database) Migrate() error { return d.Err }

func (d *Database) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Closed = true
}

func (d *Database) AddGuild(g chancache.Guild) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Err != nil {
		return d.Err
	}
	d.guilds[g.ID] = g
	return nil
}

func (d *Database) AddChannel(ch chancache.Channel) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Err != nil {
		return d.Err
	}
	d.channels[ch.ID] = ch
	delete(d.deleted, ch.ID)
	return nil
}

func (d *Database) ReplaceOverrides(channelID string, ov chancache.Overrides) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Err != nil {
		return d.Err
	}
	cp := chancache.NewOverrides()
	for k, v := range ov.Users {
		cp.Users[k] = v
	}
	for k, v := range ov.Roles {
		cp.Roles[k] = v
	}
	d.overrides[channelID] = cp
	return nil
}

func (d *Database) ReplaceWebhooks(channelID string, hooks []chancache.Webhook) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Err != nil {
		return d.Err
	}
	cp := make([]chancache.Webhook, len(hooks))
	for i, h := range hooks {
		h.ChannelID = channelID
		cp[i] = h
	}
	d.webhooks[channelID] = cp
	return nil
}

func (d *Database) DeleteChannel(id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Err != nil {
		return d.Err
	}
	delete(d.channels, id)
	delete(d.overrides, id)
	delete(d.webhooks, id)
	d.deleted[id] = true
	return nil
}

func (d *Database) GetGuilds() ([]chancache.Guild, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Err != nil {
		return nil, d.Err
	}
	var guilds []chancache.Guild
	for _, g := range d.guilds {
		guilds = append(guilds, g)
	}
	sort.Slice(guilds, func(i, j int) bool { return guilds[i].ID < guilds[j].ID })
	return guilds, nil
}

func (d *Database) GetChannels() ([]chancache.Channel, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Err != nil {
		return nil, d.Err
	}
	var channels []chancache.Channel
	for _, ch := range d.channels {
		channels = append(channels, ch)
	}
	sort.Slice(channels, func(i, j int) bool { return channels[i].ID < channels[j].ID })
	return channels, nil
}

func (d *Database) GetTombstones() ([]string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Err != nil {
		return nil, d.Err
	}
	var ids []string
	for id := range d.deleted {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (d *Database) GetOverrides(channelID string) (chancache.Overrides, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Err != nil {
		return chancache.Overrides{}, d.Err
	}
	ov, ok := d.overrides[channelID]
	if !ok {
		return chancache.NewOverrides(), nil
	}
	return ov, nil
}

func (d *Database) GetWebhooks(channelID string) ([]chancache.Webhook, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Err != nil {
		return nil, d.Err
	}
	return append([]chancache.Webhook(nil), d.webhooks[channelID]...), nil
}
