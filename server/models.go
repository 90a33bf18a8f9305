package server

import (
	"github.com/pkg/errors"
	"github.com/tmitchel/chancache"
)

// ChannelInfo is a cached channel with its display position.
type ChannelInfo struct {
	chancache.Channel
	Mention      string `json:"mention"`
	DisplayIndex int    `json:"display_index"`
}

// PermissionSet describes the resolved permissions of one principal.
type PermissionSet struct {
	ChannelID string                `json:"channel_id"`
	Principal string                `json:"principal"`
	Bits      chancache.Permissions `json:"bits"`
	Names     []string              `json:"names"`
}

func newPermissionSet(channelID, principal string, p chancache.Permissions) PermissionSet {
	names := p.Names()
	if names == nil {
		names = []string{}
	}
	return PermissionSet{ChannelID: channelID, Principal: principal, Bits: p, Names: names}
}

// OverrideRequest is the body of a PUT on an override. Flags are given by
// name, e.g. "send_messages".
type OverrideRequest struct {
	Allow []string `json:"allow"`
	Deny  []string `json:"deny"`
}

func (o OverrideRequest) toModel(kind chancache.PrincipalKind, principal string) (chancache.PermissionOverride, error) {
	allow, err := parseNames(o.Allow)
	if err != nil {
		return chancache.PermissionOverride{}, err
	}
	deny, err := parseNames(o.Deny)
	if err != nil {
		return chancache.PermissionOverride{}, err
	}
	return chancache.PermissionOverride{PrincipalID: principal, Kind: kind, Allow: allow, Deny: deny}, nil
}

func parseNames(names []string) (chancache.Permissions, error) {
	var p chancache.Permissions
	for _, n := range names {
		flag, ok := chancache.ParsePermission(n)
		if !ok {
			return 0, errors.Errorf("unknown permission %q", n)
		}
		p = p.Add(flag)
	}
	return p, nil
}

// TypingStatus reports whether the typing indicator is on in a channel.
type TypingStatus struct {
	ChannelID string `json:"channel_id"`
	Typing    bool   `json:"typing"`
}
