package server_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmitchel/chancache"
	"github.com/tmitchel/chancache/cache"
	"github.com/tmitchel/chancache/events"
	"github.com/tmitchel/chancache/mocks"
	"github.com/tmitchel/chancache/server"
	"github.com/tmitchel/chancache/services"
)

const (
	guildID   = "100"
	channelID = "200"
)

type fixture struct {
	handler http.Handler
	cache   cache.Cache
	gateway *mocks.Gateway
	sched   *mocks.Scheduler
}

func setupNewServer(t *testing.T) *fixture {
	c := cache.New()
	c.AddGuild(chancache.Guild{ID: guildID, OwnerID: "owner"})
	ov := chancache.NewOverrides()
	ov.Roles["r1"] = chancache.PermissionOverride{PrincipalID: "r1", Kind: chancache.PrincipalRole, Deny: chancache.PermissionSendMessages}
	require.NoError(t, c.AddChannel(chancache.Channel{ID: channelID, GuildID: guildID, Name: "general", Position: 1}, ov))

	gw := mocks.NewGateway()
	gw.SetMember(guildID, "u1", mocks.Member{
		Roles: []chancache.Role{{ID: "r1", Position: 1}},
		Base:  chancache.PermissionSendMessages | chancache.PermissionReadMessages,
	})
	sched := mocks.NewScheduler()

	resolve, err := services.NewResolver(c, gw)
	require.NoError(t, err)
	override, err := services.NewOverrider(c, gw)
	require.NoError(t, err)
	reconcile, err := services.NewReconciler(c, gw, resolve, nil)
	require.NoError(t, err)
	typer, err := services.NewTyper(c, gw, sched, 10*time.Second, time.Second)
	require.NoError(t, err)

	hub := events.NewHub()
	go hub.Run()
	t.Cleanup(hub.Close)

	s := server.NewServer(c, resolve, override, reconcile, typer, hub)
	assert.NotEmpty(t, s)

	return &fixture{handler: s.Serve(), cache: c, gateway: gw, sched: sched}
}

func (f *fixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	var err error
	if body != "" {
		req, err = http.NewRequestWithContext(context.Background(), method, path, strings.NewReader(body))
	} else {
		req, err = http.NewRequestWithContext(context.Background(), method, path, nil)
	}
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, req)
	return rr
}

func TestGetChannel(t *testing.T) {
	f := setupNewServer(t)

	rr := f.do(t, "GET", "/api/channels/"+channelID, "")
	require.Equal(t, http.StatusOK, rr.Code)

	var resp server.ChannelInfo
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "general", resp.Name)
	assert.Equal(t, "<#"+channelID+">", resp.Mention)
	assert.Equal(t, 0, resp.DisplayIndex)

	rr = f.do(t, "GET", "/api/channels/nope", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = f.do(t, "GET", "/api/channels", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var all []chancache.Channel
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&all))
	assert.Len(t, all, 1)
}

func TestUserPermissions(t *testing.T) {
	f := setupNewServer(t)

	rr := f.do(t, "GET", "/api/channels/"+channelID+"/permissions/users/u1", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var resp server.PermissionSet
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, chancache.PermissionReadMessages, resp.Bits)
	assert.Equal(t, []string{"read_messages"}, resp.Names)

	f.gateway.MemberErr = &chancache.TransportError{Op: "member", Status: 500}
	rr = f.do(t, "GET", "/api/channels/"+channelID+"/permissions/users/u1", "")
	assert.Equal(t, http.StatusBadGateway, rr.Code)
}

func TestRolePermissions(t *testing.T) {
	f := setupNewServer(t)

	rr := f.do(t, "GET", "/api/channels/"+channelID+"/permissions/roles/r1?permissions=3072", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var resp server.PermissionSet
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, chancache.PermissionReadMessages, resp.Bits)

	rr = f.do(t, "GET", "/api/channels/"+channelID+"/permissions/roles/r1?permissions=lots", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestOverrides(t *testing.T) {
	f := setupNewServer(t)
	path := "/api/channels/" + channelID + "/overrides/user/u1"

	rr := f.do(t, "PUT", path, `{"allow":["embed_links"],"deny":["send_messages"]}`)
	require.Equal(t, http.StatusOK, rr.Code)

	o, ok, err := f.cache.GetUserOverride(channelID, "u1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, chancache.PermissionEmbedLinks, o.Allow)
	_, remote := f.gateway.RemoteOverride(channelID, "u1")
	assert.False(t, remote)

	rr = f.do(t, "PUT", path+"?sync=true", `{"allow":["attach_files"]}`)
	require.Equal(t, http.StatusOK, rr.Code)
	_, remote = f.gateway.RemoteOverride(channelID, "u1")
	assert.True(t, remote)

	rr = f.do(t, "PUT", path, `{"allow":["fly"]}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	rr = f.do(t, "PUT", "/api/channels/"+channelID+"/overrides/bot/u1", `{}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	f.gateway.SyncErr = &chancache.RateLimitError{Op: "delete override", RetryAfter: 1500 * time.Millisecond}
	rr = f.do(t, "DELETE", path+"?sync=true", "")
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "2", rr.Header().Get("Retry-After"))

	rr = f.do(t, "DELETE", path, "")
	assert.Equal(t, http.StatusNoContent, rr.Code)
	_, ok, err = f.cache.GetUserOverride(channelID, "u1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestWebhooks(t *testing.T) {
	f := setupNewServer(t)
	f.gateway.SetWebhooks(channelID,
		chancache.Webhook{ID: "w1", Name: "deploys"},
		chancache.Webhook{ID: "w2", Name: "alerts"},
	)

	rr := f.do(t, "POST", "/api/channels/"+channelID+"/webhooks/refresh", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var diff chancache.WebhookDiff
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&diff))
	assert.Len(t, diff.Created, 2)

	rr = f.do(t, "GET", "/api/channels/"+channelID+"/webhooks?name=alerts", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var hooks []chancache.Webhook
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&hooks))
	require.Len(t, hooks, 1)
	assert.Equal(t, "w2", hooks[0].ID)

	f.gateway.WebhookErr = &chancache.TransportError{Op: "webhooks", Status: 503}
	rr = f.do(t, "POST", "/api/channels/"+channelID+"/webhooks/refresh", "")
	assert.Equal(t, http.StatusBadGateway, rr.Code)

	f.gateway.WebhookErr = chancache.ErrStaleChannel
	rr = f.do(t, "POST", "/api/channels/"+channelID+"/webhooks/refresh", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	rr = f.do(t, "GET", "/api/channels/"+channelID+"/webhooks", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestTyping(t *testing.T) {
	f := setupNewServer(t)
	path := "/api/channels/" + channelID + "/typing"

	var status server.TypingStatus
	rr := f.do(t, "POST", path, "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&status))
	assert.True(t, status.Typing)

	f.sched.Tick()
	assert.Equal(t, 1, f.gateway.TypingSignals(channelID))

	rr = f.do(t, "GET", path, "")
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&status))
	assert.True(t, status.Typing)

	rr = f.do(t, "POST", path+"?toggle=true", "")
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&status))
	assert.False(t, status.Typing)

	rr = f.do(t, "POST", path+"?toggle=true", "")
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&status))
	assert.True(t, status.Typing)

	rr = f.do(t, "DELETE", path, "")
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&status))
	assert.False(t, status.Typing)
	assert.Equal(t, 0, f.sched.Len())
}

func TestMetrics(t *testing.T) {
	f := setupNewServer(t)
	f.do(t, "POST", "/api/channels/"+channelID+"/webhooks/refresh", "")

	rr := f.do(t, "GET", "/metrics", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "chancache_webhook_reconciliations_total")
}
