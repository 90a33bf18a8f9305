package chancache

import (
	"sort"
)

// ResolveForUser computes a member's effective permissions in ch.
//
// Owners and members of private channels get every flag. Everyone else
// starts from their guild-wide base set; the overrides of their roles are
// applied from the lowest hierarchy position to the highest, and the
// member's own override, if any, is applied last. Each override grants its
// allow-set before revoking its deny-set.
func ResolveForUser(ch Channel, m Member, ov Overrides) Permissions {
	if ch.IsPrivate() || m.Owner {
		return AllPermissions
	}

	perms := m.Base
	for _, o := range roleOverridesInMergeOrder(m.Roles, ov.Roles) {
		perms = o.Apply(perms)
	}

	if o, ok := ov.Users[m.UserID]; ok {
		perms = o.Apply(perms)
	}

	return perms
}

// ResolveForRole computes a role's effective permissions in a channel. The
// role's own override is used when present, otherwise the everyone role's
// override; with neither the base set is returned unchanged.
func ResolveForRole(role Role, everyoneID string, ov Overrides) Permissions {
	o, ok := ov.Roles[role.ID]
	if !ok {
		o, ok = ov.Roles[everyoneID]
	}
	if !ok {
		return role.Permissions
	}
	return o.Apply(role.Permissions)
}

type rankedOverride struct {
	position int
	override PermissionOverride
}

// roleOverridesInMergeOrder collects the overrides of the given roles,
// highest position first as the roles are naturally listed, then returns
// them reversed so higher ranked overrides are applied later and win.
func roleOverridesInMergeOrder(roles []Role, overrides map[string]PermissionOverride) []PermissionOverride {
	ranked := make([]rankedOverride, 0, len(roles))
	for _, r := range roles {
		if o, ok := overrides[r.ID]; ok {
			ranked = append(ranked, rankedOverride{position: r.Position, override: o})
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].position > ranked[j].position
	})

	ordered := make([]PermissionOverride, len(ranked))
	for i, r := range ranked {
		ordered[len(ranked)-1-i] = r.override
	}
	return ordered
}
