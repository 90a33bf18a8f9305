package services

import (
	"context"

	"github.com/pkg/errors"
	"github.com/tmitchel/chancache"
	"github.com/tmitchel/chancache/cache"
)

type resolver struct {
	Cache   cache.Getter
	Members chancache.MemberSource
}

// NewResolver answers permission queries from the cached overrides, asking
// members for the guild-wide roles of a user.
func NewResolver(c cache.Getter, members chancache.MemberSource) (chancache.Resolver, error) {
	if c == nil || members == nil {
		return nil, errors.New("resolver needs a cache and a member source")
	}
	return &resolver{
		Cache:   c,
		Members: members,
	}, nil
}

func (r *resolver) PermissionsForUser(ctx context.Context, channelID, userID string) (chancache.Permissions, error) {
	ch, err := r.Cache.GetChannel(channelID)
	if err != nil {
		return 0, err
	}
	if ch.IsPrivate() {
		return chancache.AllPermissions, nil
	}

	ov, err := r.Cache.GetOverrides(channelID)
	if err != nil {
		return 0, err
	}

	m := chancache.Member{
		UserID: userID,
		Owner:  r.Cache.IsGuildOwner(ch.GuildID, userID),
	}
	if !m.Owner {
		m.Roles, m.Base, err = r.Members.MemberRoles(ctx, ch.GuildID, r.Cache.EveryoneRoleID(ch.GuildID), userID)
		if err != nil {
			return 0, errors.Wrapf(err, "roles of %s in guild %s", userID, ch.GuildID)
		}
	}

	return chancache.ResolveForUser(ch, m, ov), nil
}

func (r *resolver) PermissionsForRole(channelID string, role chancache.Role) (chancache.Permissions, error) {
	ch, err := r.Cache.GetChannel(channelID)
	if err != nil {
		return 0, err
	}
	ov, err := r.Cache.GetOverrides(channelID)
	if err != nil {
		return 0, err
	}
	return chancache.ResolveForRole(role, r.Cache.EveryoneRoleID(ch.GuildID), ov), nil
}

// Check returns a *chancache.MissingPermissionsError naming the flags of
// required the user lacks in the channel.
func (r *resolver) Check(ctx context.Context, channelID, userID string, required chancache.Permissions) error {
	perms, err := r.PermissionsForUser(ctx, channelID, userID)
	if err != nil {
		return err
	}
	if missing := perms.Missing(required); missing != 0 {
		return &chancache.MissingPermissionsError{Missing: missing}
	}
	return nil
}
