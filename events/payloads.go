package events

import (
	"encoding/json"
	"strconv"

	"github.com/pkg/errors"
	"github.com/tmitchel/chancache"
)

// push event types the listener understands
const (
	ChannelCreate         = "CHANNEL_CREATE"
	ChannelUpdate         = "CHANNEL_UPDATE"
	ChannelDelete         = "CHANNEL_DELETE"
	ChannelOverrideUpdate = "CHANNEL_OVERRIDE_UPDATE"
	ChannelOverrideDelete = "CHANNEL_OVERRIDE_DELETE"
	GuildCreate           = "GUILD_CREATE"
	WebhooksUpdate        = "WEBHOOKS_UPDATE"
)

// Payload is one frame pushed by the platform's gateway.
type Payload struct {
	Type string          `json:"t"`
	Data json.RawMessage `json:"d"`
}

type overwrite struct {
	ID    string `json:"id"`
	Type  string `json:"type"`
	Allow string `json:"allow"`
	Deny  string `json:"deny"`
}

func (o overwrite) ToModel() (chancache.PermissionOverride, error) {
	kind, ok := chancache.ParsePrincipalKind(o.Type)
	if !ok {
		return chancache.PermissionOverride{}, errors.Errorf("unknown overwrite type %q", o.Type)
	}
	allow, err := parseBits(o.Allow)
	if err != nil {
		return chancache.PermissionOverride{}, err
	}
	deny, err := parseBits(o.Deny)
	if err != nil {
		return chancache.PermissionOverride{}, err
	}
	return chancache.PermissionOverride{PrincipalID: o.ID, Kind: kind, Allow: allow, Deny: deny}, nil
}

func parseBits(s string) (chancache.Permissions, error) {
	if s == "" {
		return 0, nil
	}
	bits, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "bad permission bits %q", s)
	}
	return chancache.Permissions(bits), nil
}

type channelPayload struct {
	ID         string      `json:"id"`
	GuildID    string      `json:"guild_id"`
	Name       string      `json:"name"`
	Topic      string      `json:"topic"`
	Position   int         `json:"position"`
	Type       string      `json:"type"`
	Overwrites []overwrite `json:"permission_overwrites"`
}

func (c channelPayload) ToModel() (chancache.Channel, chancache.Overrides, error) {
	kind := chancache.KindText
	if c.Type != "" {
		var ok bool
		if kind, ok = chancache.ParseChannelKind(c.Type); !ok {
			return chancache.Channel{}, chancache.Overrides{}, errors.Errorf("unknown channel type %q", c.Type)
		}
	}

	ov := chancache.NewOverrides()
	for _, w := range c.Overwrites {
		o, err := w.ToModel()
		if err != nil {
			return chancache.Channel{}, chancache.Overrides{}, err
		}
		if o.Kind == chancache.PrincipalRole {
			ov.Roles[o.PrincipalID] = o
		} else {
			ov.Users[o.PrincipalID] = o
		}
	}

	return chancache.Channel{
		ID:       c.ID,
		GuildID:  c.GuildID,
		Name:     c.Name,
		Topic:    c.Topic,
		Position: c.Position,
		Kind:     kind,
	}, ov, nil
}

type guildPayload struct {
	ID             string           `json:"id"`
	OwnerID        string           `json:"owner_id"`
	EveryoneRoleID string           `json:"everyone_role_id"`
	Channels       []channelPayload `json:"channels"`
}

type overrideUpdatePayload struct {
	ChannelID string    `json:"channel_id"`
	Overwrite overwrite `json:"overwrite"`
}

type overrideDeletePayload struct {
	ChannelID string `json:"channel_id"`
	ID        string `json:"id"`
	Type      string `json:"type"`
}

type webhooksUpdatePayload struct {
	ChannelID string `json:"channel_id"`
	GuildID   string `json:"guild_id"`
}
