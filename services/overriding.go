package services

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/tmitchel/chancache"
	"github.com/tmitchel/chancache/cache"
)

type overrider struct {
	Cache  cache.Cache
	Syncer chancache.OverrideSyncer
}

// NewOverrider manages cached overrides. syncer may be nil, in which case
// Sync and Unsync fail.
func NewOverrider(c cache.Cache, syncer chancache.OverrideSyncer) (chancache.Overrider, error) {
	if c == nil {
		return nil, errors.New("overrider needs a cache")
	}
	return &overrider{
		Cache:  c,
		Syncer: syncer,
	}, nil
}

func (o *overrider) AddOverride(channelID string, ov chancache.PermissionOverride) error {
	if ov.PrincipalID == "" {
		return errors.New("override principal id is required")
	}
	switch ov.Kind {
	case chancache.PrincipalUser:
		return o.Cache.AddUserOverride(channelID, ov)
	case chancache.PrincipalRole:
		return o.Cache.AddRoleOverride(channelID, ov)
	}
	return errors.Errorf("unknown principal kind %q", ov.Kind)
}

func (o *overrider) RemoveOverride(channelID string, kind chancache.PrincipalKind, principalID string) error {
	switch kind {
	case chancache.PrincipalUser:
		return o.Cache.RemoveUserOverride(channelID, principalID)
	case chancache.PrincipalRole:
		return o.Cache.RemoveRoleOverride(channelID, principalID)
	}
	return errors.Errorf("unknown principal kind %q", kind)
}

// Sync pushes the override to the platform and caches it once the platform
// accepted it.
func (o *overrider) Sync(ctx context.Context, channelID string, ov chancache.PermissionOverride) error {
	if o.Syncer == nil {
		return errors.New("no override syncer configured")
	}
	if _, err := o.Cache.GetChannel(channelID); err != nil {
		return err
	}
	if err := o.Syncer.PutOverride(ctx, channelID, ov); err != nil {
		return errors.Wrapf(err, "pushing override for %s", ov.PrincipalID)
	}

	logrus.WithFields(logrus.Fields{
		"channel":   channelID,
		"principal": ov.PrincipalID,
		"allow":     ov.Allow.String(),
		"deny":      ov.Deny.String(),
	}).Info("override synced")
	return o.AddOverride(channelID, ov)
}

// Unsync deletes the override on the platform and then from the cache.
func (o *overrider) Unsync(ctx context.Context, channelID string, kind chancache.PrincipalKind, principalID string) error {
	if o.Syncer == nil {
		return errors.New("no override syncer configured")
	}
	if _, err := o.Cache.GetChannel(channelID); err != nil {
		return err
	}
	if err := o.Syncer.DeleteOverride(ctx, channelID, principalID); err != nil {
		return errors.Wrapf(err, "deleting override for %s", principalID)
	}

	logrus.WithFields(logrus.Fields{
		"channel":   channelID,
		"principal": principalID,
	}).Info("override removed")
	return o.RemoveOverride(channelID, kind, principalID)
}
