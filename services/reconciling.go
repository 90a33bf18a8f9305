package services

import (
	"context"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/tmitchel/chancache"
	"github.com/tmitchel/chancache/cache"
)

type reconciler struct {
	Cache     cache.Cache
	Source    chancache.WebhookSource
	Resolver  chancache.Resolver
	Publisher chancache.Publisher

	mu    sync.Mutex
	locks map[string]*channelLock
}

type channelLock struct {
	sync.Mutex
	refs int
}

// NewReconciler keeps cached webhooks in line with source. resolver gates
// LoadWebhooks and publisher receives a webhook event per change; either
// may be nil.
func NewReconciler(c cache.Cache, source chancache.WebhookSource, resolver chancache.Resolver, publisher chancache.Publisher) (chancache.Reconciler, error) {
	if c == nil || source == nil {
		return nil, errors.New("reconciler needs a cache and a webhook source")
	}
	return &reconciler{
		Cache:     c,
		Source:    source,
		Resolver:  resolver,
		Publisher: publisher,
		locks:     make(map[string]*channelLock),
	}, nil
}

// lock serialises reconciliations of one channel. The returned func
// releases it; the entry is dropped once no caller holds or awaits it.
func (r *reconciler) lock(channelID string) func() {
	r.mu.Lock()
	l, ok := r.locks[channelID]
	if !ok {
		l = &channelLock{}
		r.locks[channelID] = l
	}
	l.refs++
	r.mu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()

		r.mu.Lock()
		defer r.mu.Unlock()
		l.refs--
		if l.refs == 0 {
			delete(r.locks, channelID)
		}
	}
}

// pending reports how many channels have a reconciliation running or
// queued.
func (r *reconciler) pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.locks)
}

// Reconcile fetches the channel's webhooks and applies the difference to
// the cache. A failed fetch leaves the cache untouched; a fetch saying the
// channel is gone marks it deleted.
func (r *reconciler) Reconcile(ctx context.Context, channelID string) (diff chancache.WebhookDiff, err error) {
	unlock := r.lock(channelID)
	defer unlock()

	log := logrus.WithField("channel", channelID)
	defer func() {
		Reconciliations.WithLabelValues(resultLabel(err)).Inc()
	}()

	cached, err := r.Cache.GetWebhooks(channelID)
	if err != nil {
		return diff, err
	}

	remote, err := r.Source.FetchWebhooks(ctx, channelID)
	if err != nil {
		if chancache.IsStale(err) {
			if _, delErr := r.Cache.DeleteChannel(channelID); delErr == nil {
				log.Info("channel deleted upstream")
			}
		}
		return diff, errors.Wrap(err, "fetching webhooks")
	}

	known := make(map[string]chancache.Webhook, len(cached))
	stale := make(map[string]struct{}, len(cached))
	for _, w := range cached {
		known[strings.ToLower(w.ID)] = w
		stale[strings.ToLower(w.ID)] = struct{}{}
	}

	for _, w := range remote {
		w.ChannelID = channelID
		key := strings.ToLower(w.ID)
		delete(stale, key)

		old, ok := known[key]
		switch {
		case !ok:
			if err := r.Cache.AddWebhook(channelID, w); err != nil {
				return diff, err
			}
			diff.Created = append(diff.Created, w)
		case !old.SameDisplay(w):
			if _, err := r.Cache.UpdateWebhook(channelID, w); err != nil {
				return diff, err
			}
			diff.Updated = append(diff.Updated, chancache.WebhookUpdate{Old: old, New: w})
		}
		known[key] = w
	}

	for _, w := range cached {
		if _, ok := stale[strings.ToLower(w.ID)]; !ok {
			continue
		}
		if err := r.Cache.RemoveWebhook(channelID, w.ID); err != nil {
			return diff, err
		}
		diff.Deleted = append(diff.Deleted, w)
	}

	r.publish(channelID, diff)
	if !diff.Empty() {
		log.WithFields(logrus.Fields{
			"created": len(diff.Created),
			"updated": len(diff.Updated),
			"deleted": len(diff.Deleted),
		}).Info("webhooks reconciled")
	}
	return diff, nil
}

func (r *reconciler) publish(channelID string, diff chancache.WebhookDiff) {
	WebhookChanges.WithLabelValues("created").Add(float64(len(diff.Created)))
	WebhookChanges.WithLabelValues("updated").Add(float64(len(diff.Updated)))
	WebhookChanges.WithLabelValues("deleted").Add(float64(len(diff.Deleted)))

	if r.Publisher == nil {
		return
	}
	for _, w := range diff.Created {
		r.Publisher.Publish(chancache.Event{Type: chancache.EventWebhookCreate, ChannelID: channelID, Webhook: w})
	}
	for _, u := range diff.Updated {
		old := u.Old
		r.Publisher.Publish(chancache.Event{Type: chancache.EventWebhookUpdate, ChannelID: channelID, Webhook: u.New, Old: &old})
	}
	for _, w := range diff.Deleted {
		r.Publisher.Publish(chancache.Event{Type: chancache.EventWebhookDelete, ChannelID: channelID, Webhook: w})
	}
}

// LoadWebhooks reconciles the channel only when selfUserID may manage its
// webhooks. Without that permission it returns an empty diff and makes no
// network call.
func (r *reconciler) LoadWebhooks(ctx context.Context, channelID, selfUserID string) (chancache.WebhookDiff, error) {
	if r.Resolver != nil {
		err := r.Resolver.Check(ctx, channelID, selfUserID, chancache.PermissionManageWebhooks)
		var missing *chancache.MissingPermissionsError
		if errors.As(err, &missing) {
			logrus.WithField("channel", channelID).Debug("not allowed to manage webhooks, skipping load")
			return chancache.WebhookDiff{}, nil
		}
		if err != nil {
			return chancache.WebhookDiff{}, err
		}
	}
	return r.Reconcile(ctx, channelID)
}
