package chancache

// PrincipalKind says whether an override belongs to a user or a role.
type PrincipalKind string

// principal kinds
const (
	PrincipalUser PrincipalKind = "member"
	PrincipalRole PrincipalKind = "role"
)

// ParsePrincipalKind accepts "member" or "user" for users and "role" for
// roles.
func ParsePrincipalKind(s string) (PrincipalKind, bool) {
	switch s {
	case "member", "user":
		return PrincipalUser, true
	case "role":
		return PrincipalRole, true
	}
	return "", false
}

// PermissionOverride layers explicit grants and revocations for one
// principal on top of its guild-wide permissions. Allow and Deny are
// expected to be disjoint but that is not checked; where they overlap the
// flag ends up denied.
type PermissionOverride struct {
	PrincipalID string        `json:"id"`
	Kind        PrincipalKind `json:"type"`
	Allow       Permissions   `json:"allow"`
	Deny        Permissions   `json:"deny"`
}

// Apply grants the override's allow-set then revokes its deny-set.
func (o PermissionOverride) Apply(p Permissions) Permissions {
	return p.Add(o.Allow).Remove(o.Deny)
}

// Overrides is a point-in-time copy of one channel's override store.
type Overrides struct {
	Users map[string]PermissionOverride `json:"users"`
	Roles map[string]PermissionOverride `json:"roles"`
}

// NewOverrides returns an empty Overrides ready for use.
func NewOverrides() Overrides {
	return Overrides{
		Users: make(map[string]PermissionOverride),
		Roles: make(map[string]PermissionOverride),
	}
}

// Len counts the overrides across both principal kinds.
func (o Overrides) Len() int {
	return len(o.Users) + len(o.Roles)
}
