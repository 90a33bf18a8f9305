package mocks

import (
	"context"
	"sync"

	"github.com/tmitchel/chancache"
)

var (
	_ chancache.Gateway        = (*Gateway)(nil)
	_ chancache.OverrideSyncer = (*Gateway)(nil)
)

// Member is what the fake gateway returns for one guild member.
type Member struct {
	Roles []chancache.Role
	Base  chancache.Permissions
}

// Gateway is an in-memory stand-in for the platform's REST API. Set the
// exported error fields to make the matching calls fail.
type Gateway struct {
	mu sync.Mutex

	webhooks  map[string][]chancache.Webhook
	members   map[string]Member
	overrides map[string]map[string]chancache.PermissionOverride
	typing    map[string]int
	fetches   map[string]int

	WebhookErr error
	TypingErr  error
	MemberErr  error
	SyncErr    error

	// OnTyping, when set, runs inside every SendTyping call.
	OnTyping func(ctx context.Context, channelID string)
}

// NewGateway returns an empty fake gateway.
func NewGateway() *Gateway {
	return &Gateway{
		webhooks:  make(map[string][]chancache.Webhook),
		members:   make(map[string]Member),
		overrides: make(map[string]map[string]chancache.PermissionOverride),
		typing:    make(map[string]int),
		fetches:   make(map[string]int),
	}
}

// SetWebhooks sets the remote webhook list of a channel.
func (g *Gateway) SetWebhooks(channelID string, hooks ...chancache.Webhook) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.webhooks[channelID] = hooks
}

// SetMember sets the roles and base permissions of a guild member.
func (g *Gateway) SetMember(guildID, userID string, m Member) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.members[guildID+"/"+userID] = m
}

// FetchWebhooks implements chancache.WebhookSource.
func (g *Gateway) FetchWebhooks(_ context.Context, channelID string) ([]chancache.Webhook, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.fetches[channelID]++
	if g.WebhookErr != nil {
		return nil, g.WebhookErr
	}
	hooks := make([]chancache.Webhook, len(g.webhooks[channelID]))
	copy(hooks, g.webhooks[channelID])
	return hooks, nil
}

// Fetches counts FetchWebhooks calls for a channel.
func (g *Gateway) Fetches(channelID string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.fetches[channelID]
}

// SendTyping implements chancache.TypingSender. Failed calls are counted too.
func (g *Gateway) SendTyping(ctx context.Context, channelID string) error {
	g.mu.Lock()
	g.typing[channelID]++
	hook, err := g.OnTyping, g.TypingErr
	g.mu.Unlock()

	if hook != nil {
		hook(ctx, channelID)
	}
	return err
}

// TypingSignals counts SendTyping calls for a channel.
func (g *Gateway) TypingSignals(channelID string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.typing[channelID]
}

// MemberRoles implements chancache.MemberSource.
func (g *Gateway) MemberRoles(_ context.Context, guildID, _, userID string) ([]chancache.Role, chancache.Permissions, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.MemberErr != nil {
		return nil, 0, g.MemberErr
	}
	m := g.members[guildID+"/"+userID]
	return m.Roles, m.Base, nil
}

// PutOverride implements chancache.OverrideSyncer.
func (g *Gateway) PutOverride(_ context.Context, channelID string, o chancache.PermissionOverride) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.SyncErr != nil {
		return g.SyncErr
	}
	if g.overrides[channelID] == nil {
		g.overrides[channelID] = make(map[string]chancache.PermissionOverride)
	}
	g.overrides[channelID][o.PrincipalID] = o
	return nil
}

// DeleteOverride implements chancache.OverrideSyncer.
func (g *Gateway) DeleteOverride(_ context.Context, channelID, principalID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.SyncErr != nil {
		return g.SyncErr
	}
	delete(g.overrides[channelID], principalID)
	return nil
}

// RemoteOverride returns the override the fake platform holds.
func (g *Gateway) RemoteOverride(channelID, principalID string) (chancache.PermissionOverride, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	o, ok := g.overrides[channelID][principalID]
	return o, ok
}
