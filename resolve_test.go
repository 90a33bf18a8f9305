package chancache_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tmitchel/chancache"
)

var textChannel = chancache.Channel{ID: "c1", GuildID: "g1", Kind: chancache.KindText}

func override(id string, allow, deny chancache.Permissions) chancache.PermissionOverride {
	return chancache.PermissionOverride{PrincipalID: id, Allow: allow, Deny: deny}
}

func TestResolveForUserOwnerAndPrivateBypass(t *testing.T) {
	ov := chancache.NewOverrides()
	ov.Users["u1"] = override("u1", 0, chancache.AllPermissions)
	ov.Roles["r1"] = override("r1", 0, chancache.AllPermissions)

	owner := chancache.Member{UserID: "u1", Owner: true, Roles: []chancache.Role{{ID: "r1"}}}
	assert.Equal(t, chancache.AllPermissions, chancache.ResolveForUser(textChannel, owner, ov))

	dm := chancache.Channel{ID: "dm", Kind: chancache.KindPrivate}
	member := chancache.Member{UserID: "u1", Roles: []chancache.Role{{ID: "r1"}}}
	assert.Equal(t, chancache.AllPermissions, chancache.ResolveForUser(dm, member, ov))
}

func TestResolveForUserNoOverrides(t *testing.T) {
	m := chancache.Member{UserID: "u1", Base: chancache.PermissionReadMessages | chancache.PermissionSendMessages}
	assert.Equal(t, m.Base, chancache.ResolveForUser(textChannel, m, chancache.NewOverrides()))
}

func TestResolveForUserHigherRoleWins(t *testing.T) {
	low := chancache.Role{ID: "low", Position: 1}
	high := chancache.Role{ID: "high", Position: 2}

	ov := chancache.NewOverrides()
	ov.Roles["low"] = override("low", chancache.PermissionEmbedLinks, 0)
	ov.Roles["high"] = override("high", 0, chancache.PermissionSendMessages)

	m := chancache.Member{UserID: "u1", Roles: []chancache.Role{high, low}, Base: chancache.PermissionSendMessages}
	assert.Equal(t, chancache.PermissionEmbedLinks, chancache.ResolveForUser(textChannel, m, ov))

	// the order roles are listed in does not change the outcome
	m.Roles = []chancache.Role{low, high}
	assert.Equal(t, chancache.PermissionEmbedLinks, chancache.ResolveForUser(textChannel, m, ov))
}

func TestResolveForUserConflictingRoles(t *testing.T) {
	low := chancache.Role{ID: "low", Position: 1}
	high := chancache.Role{ID: "high", Position: 5}

	tests := []struct {
		name string
		low  chancache.PermissionOverride
		high chancache.PermissionOverride
		want chancache.Permissions
	}{
		{
			name: "higher allow beats lower deny",
			low:  override("low", 0, chancache.PermissionAttachFiles),
			high: override("high", chancache.PermissionAttachFiles, 0),
			want: chancache.PermissionAttachFiles,
		},
		{
			name: "higher deny beats lower allow",
			low:  override("low", chancache.PermissionAttachFiles, 0),
			high: override("high", 0, chancache.PermissionAttachFiles),
			want: 0,
		},
	}

	for _, tt := range tests {
		ov := chancache.NewOverrides()
		ov.Roles["low"] = tt.low
		ov.Roles["high"] = tt.high
		m := chancache.Member{UserID: "u1", Roles: []chancache.Role{high, low}}
		assert.Equal(t, tt.want, chancache.ResolveForUser(textChannel, m, ov), tt.name)
	}
}

func TestResolveForUserOverrideIsLast(t *testing.T) {
	role := chancache.Role{ID: "r1", Position: 100}
	ov := chancache.NewOverrides()
	ov.Roles["r1"] = override("r1", 0, chancache.PermissionSendMessages)
	ov.Users["u1"] = override("u1", chancache.PermissionSendMessages, chancache.PermissionAddReactions)

	m := chancache.Member{UserID: "u1", Roles: []chancache.Role{role}, Base: chancache.PermissionAddReactions}
	assert.Equal(t, chancache.PermissionSendMessages, chancache.ResolveForUser(textChannel, m, ov))
}

func TestResolveDenyWinsWithinOneOverride(t *testing.T) {
	ov := chancache.NewOverrides()
	ov.Users["u1"] = override("u1", chancache.PermissionSendMessages, chancache.PermissionSendMessages)

	m := chancache.Member{UserID: "u1"}
	assert.Equal(t, chancache.Permissions(0), chancache.ResolveForUser(textChannel, m, ov))
}

func TestResolveDisjointFormula(t *testing.T) {
	base := chancache.PermissionReadMessages | chancache.PermissionSendMessages
	allow := chancache.PermissionEmbedLinks | chancache.PermissionAttachFiles
	deny := chancache.PermissionSendMessages

	ov := chancache.NewOverrides()
	ov.Users["u1"] = override("u1", allow, deny)
	m := chancache.Member{UserID: "u1", Base: base}

	want := (base | allow) &^ deny
	first := chancache.ResolveForUser(textChannel, m, ov)
	assert.Equal(t, want, first)
	assert.Equal(t, first, chancache.ResolveForUser(textChannel, m, ov))
}

func TestResolveForRole(t *testing.T) {
	role := chancache.Role{ID: "r1", Permissions: chancache.PermissionReadMessages | chancache.PermissionSendMessages}

	ov := chancache.NewOverrides()
	assert.Equal(t, role.Permissions, chancache.ResolveForRole(role, "g1", ov))

	ov.Roles["g1"] = override("g1", chancache.PermissionAddReactions, chancache.PermissionSendMessages)
	assert.Equal(t, chancache.PermissionReadMessages|chancache.PermissionAddReactions,
		chancache.ResolveForRole(role, "g1", ov))

	// the role's own override replaces the everyone fallback
	ov.Roles["r1"] = override("r1", chancache.PermissionEmbedLinks, 0)
	assert.Equal(t, role.Permissions|chancache.PermissionEmbedLinks,
		chancache.ResolveForRole(role, "g1", ov))

	// the base set is never modified
	assert.Equal(t, chancache.PermissionReadMessages|chancache.PermissionSendMessages, role.Permissions)
}
