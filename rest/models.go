package rest

import (
	"encoding/json"
	"strconv"

	"github.com/tmitchel/chancache"
)

type apiWebhook struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Avatar    string `json:"avatar"`
	ChannelID string `json:"channel_id"`
}

func (w apiWebhook) ToModel() chancache.Webhook {
	return chancache.Webhook{
		ID:        w.ID,
		Name:      w.Name,
		Avatar:    w.Avatar,
		ChannelID: w.ChannelID,
	}
}

type apiRole struct {
	ID          string      `json:"id"`
	Position    int         `json:"position"`
	Permissions json.Number `json:"permissions"`
}

func (r apiRole) ToModel() chancache.Role {
	bits, _ := strconv.ParseUint(r.Permissions.String(), 10, 64)
	return chancache.Role{
		ID:          r.ID,
		Position:    r.Position,
		Permissions: chancache.Permissions(bits),
	}
}

type apiMember struct {
	Roles []string `json:"roles"`
}

// apiOverwrite is the wire form of a permission override. Bit sets travel
// as decimal strings.
type apiOverwrite struct {
	ID    string `json:"id"`
	Type  string `json:"type"`
	Allow string `json:"allow"`
	Deny  string `json:"deny"`
}

func overwriteFromModel(o chancache.PermissionOverride) apiOverwrite {
	return apiOverwrite{
		ID:    o.PrincipalID,
		Type:  string(o.Kind),
		Allow: strconv.FormatUint(uint64(o.Allow), 10),
		Deny:  strconv.FormatUint(uint64(o.Deny), 10),
	}
}
