package rest

import (
	"context"
	"net/http"
	"net/url"
	"sort"

	"github.com/tmitchel/chancache"
)

func channelPath(channelID string, rest ...string) string {
	p := "/channels/" + url.PathEscape(channelID)
	for _, r := range rest {
		p += "/" + url.PathEscape(r)
	}
	return p
}

// FetchWebhooks lists the channel's webhooks.
func (c *Client) FetchWebhooks(ctx context.Context, channelID string) ([]chancache.Webhook, error) {
	out, err := do[[]apiWebhook](ctx, c, request{
		op:      "fetch webhooks",
		method:  http.MethodGet,
		path:    channelPath(channelID, "webhooks"),
		channel: true,
	})
	if err != nil || out == nil {
		return nil, err
	}

	hooks := make([]chancache.Webhook, 0, len(*out))
	for _, w := range *out {
		m := w.ToModel()
		if m.ChannelID == "" {
			m.ChannelID = channelID
		}
		hooks = append(hooks, m)
	}
	return hooks, nil
}

// SendTyping triggers the typing indicator in the channel.
func (c *Client) SendTyping(ctx context.Context, channelID string) error {
	_, err := do[struct{}](ctx, c, request{
		op:      "send typing",
		method:  http.MethodPost,
		path:    channelPath(channelID, "typing"),
		channel: true,
	})
	return err
}

// PutOverride creates or replaces a permission override on the channel.
func (c *Client) PutOverride(ctx context.Context, channelID string, o chancache.PermissionOverride) error {
	_, err := do[struct{}](ctx, c, request{
		op:      "put override",
		method:  http.MethodPut,
		path:    channelPath(channelID, "permissions", o.PrincipalID),
		body:    overwriteFromModel(o),
		channel: true,
	})
	return err
}

// DeleteOverride removes a principal's permission override from the
// channel.
func (c *Client) DeleteOverride(ctx context.Context, channelID, principalID string) error {
	_, err := do[struct{}](ctx, c, request{
		op:      "delete override",
		method:  http.MethodDelete,
		path:    channelPath(channelID, "permissions", principalID),
		channel: true,
	})
	return err
}

// MemberRoles looks up the member's roles, highest position first, and the
// guild-wide permissions they add up to together with the everyone role
// everyoneID.
func (c *Client) MemberRoles(ctx context.Context, guildID, everyoneID, userID string) ([]chancache.Role, chancache.Permissions, error) {
	guild := "/guilds/" + url.PathEscape(guildID)

	member, err := do[apiMember](ctx, c, request{
		op:     "get member",
		method: http.MethodGet,
		path:   guild + "/members/" + url.PathEscape(userID),
	})
	if err != nil {
		return nil, 0, err
	}
	all, err := do[[]apiRole](ctx, c, request{
		op:     "get roles",
		method: http.MethodGet,
		path:   guild + "/roles",
	})
	if err != nil {
		return nil, 0, err
	}

	byID := make(map[string]chancache.Role)
	if all != nil {
		for _, r := range *all {
			byID[r.ID] = r.ToModel()
		}
	}

	var base chancache.Permissions
	if everyone, ok := byID[everyoneID]; ok {
		base = everyone.Permissions
	}

	var roles []chancache.Role
	if member != nil {
		for _, id := range member.Roles {
			r, ok := byID[id]
			if !ok {
				continue
			}
			roles = append(roles, r)
			base = base.Add(r.Permissions)
		}
	}
	sort.SliceStable(roles, func(i, j int) bool { return roles[i].Position > roles[j].Position })

	return roles, base, nil
}
