package chancache

import (
	"strconv"
	"time"
)

// ChannelKind tags what sort of channel a Channel is.
type ChannelKind int

// channel kinds
const (
	KindText ChannelKind = iota
	KindVoice
	KindPrivate
	KindCategory
	KindStore
)

func (k ChannelKind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindVoice:
		return "voice"
	case KindPrivate:
		return "private"
	case KindCategory:
		return "category"
	case KindStore:
		return "store"
	}
	return "unknown"
}

// ParseChannelKind is the inverse of ChannelKind.String.
func ParseChannelKind(s string) (ChannelKind, bool) {
	for k := KindText; k <= KindStore; k++ {
		if k.String() == s {
			return k, true
		}
	}
	return 0, false
}

// Channel holds the cached metadata of a communication channel. Private
// channels have no GuildID.
type Channel struct {
	ID       string      `json:"id"`
	GuildID  string      `json:"guild_id,omitempty"`
	Name     string      `json:"name"`
	Topic    string      `json:"topic"`
	Position int         `json:"position"`
	Kind     ChannelKind `json:"kind"`
}

// IsPrivate reports whether the channel is a direct or group message
// rather than a guild channel.
func (c Channel) IsPrivate() bool {
	return c.Kind == KindPrivate
}

// Mention renders the channel the way the platform links it in messages.
func (c Channel) Mention() string {
	return "<#" + c.ID + ">"
}

// CreatedAt decodes the creation time embedded in the channel's id.
func (c Channel) CreatedAt() time.Time {
	return SnowflakeTime(c.ID)
}

// platformEpoch is the first millisecond of 2015, in unix millis.
const platformEpoch = 1420070400000

// SnowflakeTime extracts the timestamp of a snowflake id. Ids that are not
// numeric decode to the platform epoch.
func SnowflakeTime(id string) time.Time {
	n, err := strconv.ParseUint(id, 10, 64)
	if err != nil {
		n = 0
	}
	ms := int64(n>>22) + platformEpoch
	return time.Unix(0, ms*int64(time.Millisecond)).UTC()
}
