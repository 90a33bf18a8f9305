package chancache

// Role is the read-only view of a guild role the resolver needs. Position is
// the hierarchy rank: higher positions take precedence.
type Role struct {
	ID          string      `json:"id"`
	Position    int         `json:"position"`
	Permissions Permissions `json:"permissions"`
}

// Member bundles the guild-wide facts about a user that permission
// resolution starts from. Roles are in the user's natural order and Base
// already reflects those role memberships.
type Member struct {
	UserID string      `json:"user_id"`
	Owner  bool        `json:"owner"`
	Roles  []Role      `json:"roles"`
	Base   Permissions `json:"base"`
}

// Guild holds the guild facts the cache keeps. An empty EveryoneRoleID
// means the guild id doubles as the everyone role id.
type Guild struct {
	ID             string `json:"id"`
	OwnerID        string `json:"owner_id"`
	EveryoneRoleID string `json:"everyone_role_id,omitempty"`
}

// Everyone returns the id of the guild's implicit everyone role.
func (g Guild) Everyone() string {
	if g.EveryoneRoleID != "" {
		return g.EveryoneRoleID
	}
	return g.ID
}
