package store

var schema = []string{
	`CREATE TABLE IF NOT EXISTS guilds (
		id               TEXT PRIMARY KEY,
		owner_id         TEXT NOT NULL DEFAULT '',
		everyone_role_id TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS channels (
		id       TEXT PRIMARY KEY,
		guild_id TEXT NOT NULL DEFAULT '',
		name     TEXT NOT NULL DEFAULT '',
		topic    TEXT NOT NULL DEFAULT '',
		position INTEGER NOT NULL DEFAULT 0,
		kind     TEXT NOT NULL DEFAULT 'text',
		deleted  BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE TABLE IF NOT EXISTS overrides (
		channel_id   TEXT NOT NULL REFERENCES channels (id) ON DELETE CASCADE,
		principal_id TEXT NOT NULL,
		kind         TEXT NOT NULL,
		allow_bits   BIGINT NOT NULL DEFAULT 0,
		deny_bits    BIGINT NOT NULL DEFAULT 0,
		PRIMARY KEY (channel_id, principal_id)
	)`,
	`CREATE TABLE IF NOT EXISTS webhooks (
		channel_id TEXT NOT NULL REFERENCES channels (id) ON DELETE CASCADE,
		id         TEXT NOT NULL,
		name       TEXT NOT NULL DEFAULT '',
		avatar     TEXT NOT NULL DEFAULT '',
		seq        INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (channel_id, id)
	)`,
}
