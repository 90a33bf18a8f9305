package chancache

import (
	"context"
	"time"
)

// WebhookSource fetches the authoritative webhook list of a channel.
type WebhookSource interface {
	FetchWebhooks(ctx context.Context, channelID string) ([]Webhook, error)
}

// TypingSender tells the platform the client is typing in a channel.
type TypingSender interface {
	SendTyping(ctx context.Context, channelID string) error
}

// MemberSource supplies a user's roles, in their natural order, and the
// guild-wide permission set those roles give them on top of the everyone
// role.
type MemberSource interface {
	MemberRoles(ctx context.Context, guildID, everyoneID, userID string) ([]Role, Permissions, error)
}

// Gateway is the REST collaborator the core pulls from.
type Gateway interface {
	WebhookSource
	TypingSender
	MemberSource
}

// OverrideSyncer pushes override changes to the platform.
type OverrideSyncer interface {
	PutOverride(ctx context.Context, channelID string, o PermissionOverride) error
	DeleteOverride(ctx context.Context, channelID, principalID string) error
}

// Guilds answers the ownership and everyone-role questions about a guild.
type Guilds interface {
	IsGuildOwner(guildID, userID string) bool
	EveryoneRoleID(guildID string) string
}

// Scheduler is a shared facility running recurring tasks. Every runs task
// straight away and then once per interval until the returned cancel func
// is called.
type Scheduler interface {
	Every(interval time.Duration, task func()) (cancel func())
}

// Resolver answers permission queries against the cache.
type Resolver interface {
	PermissionsForUser(ctx context.Context, channelID, userID string) (Permissions, error)
	PermissionsForRole(channelID string, role Role) (Permissions, error)
	Check(ctx context.Context, channelID, userID string, required Permissions) error
}

// Overrider manages a channel's cached permission overrides.
type Overrider interface {
	AddOverride(channelID string, o PermissionOverride) error
	RemoveOverride(channelID string, kind PrincipalKind, principalID string) error
	Sync(ctx context.Context, channelID string, o PermissionOverride) error
	Unsync(ctx context.Context, channelID string, kind PrincipalKind, principalID string) error
}

// Reconciler brings a channel's webhook cache in line with the platform.
type Reconciler interface {
	Reconcile(ctx context.Context, channelID string) (WebhookDiff, error)
	LoadWebhooks(ctx context.Context, channelID, selfUserID string) (WebhookDiff, error)
}

// Typer controls the typing indicator of channels.
type Typer interface {
	Start(channelID string) error
	Stop(channelID string)
	Toggle(channelID string) (bool, error)
	Typing(channelID string) bool
}
