package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/tmitchel/chancache"
	"github.com/tmitchel/chancache/cache"
)

// Listener applies push events from the platform gateway to the cache.
type Listener struct {
	Cache      cache.Cache
	Reconciler chancache.Reconciler
	Typer      chancache.Typer
	SelfUserID string

	// Timeout bounds the webhook reload a push event triggers.
	Timeout time.Duration
}

// Run dials url and handles frames until ctx is done or the connection
// fails.
func (l *Listener) Run(ctx context.Context, url string) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return errors.Wrap(err, "dialing gateway")
	}
	defer conn.Close()

	go func() {
		<-ctx.Done()
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
		conn.Close()
	}()

	logrus.WithField("url", url).Info("gateway connected")
	for {
		var p Payload
		if err := conn.ReadJSON(&p); err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logrus.Info("gateway closed")
				return nil
			}
			return errors.Wrap(err, "reading gateway")
		}

		if err := l.Handle(ctx, p); err != nil {
			logrus.WithError(err).WithField("type", p.Type).Warn("dropping gateway event")
		}
	}
}

// Handle applies a single push event. Unknown event types are ignored.
func (l *Listener) Handle(ctx context.Context, p Payload) error {
	switch p.Type {
	case GuildCreate:
		var g guildPayload
		if err := json.Unmarshal(p.Data, &g); err != nil {
			return errors.Wrap(err, "decoding guild")
		}
		l.Cache.AddGuild(chancache.Guild{ID: g.ID, OwnerID: g.OwnerID, EveryoneRoleID: g.EveryoneRoleID})
		for _, ch := range g.Channels {
			if ch.GuildID == "" {
				ch.GuildID = g.ID
			}
			if err := l.loadChannel(ctx, ch); err != nil {
				return err
			}
		}
		return nil

	case ChannelCreate:
		var ch channelPayload
		if err := json.Unmarshal(p.Data, &ch); err != nil {
			return errors.Wrap(err, "decoding channel")
		}
		return l.loadChannel(ctx, ch)

	case ChannelUpdate:
		var ch channelPayload
		if err := json.Unmarshal(p.Data, &ch); err != nil {
			return errors.Wrap(err, "decoding channel")
		}
		model, ov, err := ch.ToModel()
		if err != nil {
			return err
		}
		if err := l.Cache.UpdateChannel(model); err != nil {
			return err
		}
		return l.Cache.ReplaceOverrides(model.ID, ov)

	case ChannelDelete:
		var ch channelPayload
		if err := json.Unmarshal(p.Data, &ch); err != nil {
			return errors.Wrap(err, "decoding channel")
		}
		if l.Typer != nil {
			l.Typer.Stop(ch.ID)
		}
		_, err := l.Cache.DeleteChannel(ch.ID)
		return err

	case ChannelOverrideUpdate:
		var u overrideUpdatePayload
		if err := json.Unmarshal(p.Data, &u); err != nil {
			return errors.Wrap(err, "decoding override")
		}
		o, err := u.Overwrite.ToModel()
		if err != nil {
			return err
		}
		if o.Kind == chancache.PrincipalRole {
			return l.Cache.AddRoleOverride(u.ChannelID, o)
		}
		return l.Cache.AddUserOverride(u.ChannelID, o)

	case ChannelOverrideDelete:
		var d overrideDeletePayload
		if err := json.Unmarshal(p.Data, &d); err != nil {
			return errors.Wrap(err, "decoding override")
		}
		kind, ok := chancache.ParsePrincipalKind(d.Type)
		if !ok {
			return errors.Errorf("unknown overwrite type %q", d.Type)
		}
		if kind == chancache.PrincipalRole {
			return l.Cache.RemoveRoleOverride(d.ChannelID, d.ID)
		}
		return l.Cache.RemoveUserOverride(d.ChannelID, d.ID)

	case WebhooksUpdate:
		var u webhooksUpdatePayload
		if err := json.Unmarshal(p.Data, &u); err != nil {
			return errors.Wrap(err, "decoding webhooks update")
		}
		return l.loadWebhooks(ctx, u.ChannelID)
	}

	logrus.WithField("type", p.Type).Debug("ignoring gateway event")
	return nil
}

func (l *Listener) loadChannel(ctx context.Context, ch channelPayload) error {
	model, ov, err := ch.ToModel()
	if err != nil {
		return err
	}
	if err := l.Cache.AddChannel(model, ov); err != nil {
		return err
	}
	if model.IsPrivate() {
		return nil
	}
	return l.loadWebhooks(ctx, model.ID)
}

func (l *Listener) loadWebhooks(ctx context.Context, channelID string) error {
	if l.Reconciler == nil {
		return nil
	}
	if l.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.Timeout)
		defer cancel()
	}
	_, err := l.Reconciler.LoadWebhooks(ctx, channelID, l.SelfUserID)
	return err
}
