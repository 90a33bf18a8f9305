package chancache

// Webhook is a cached webhook record. Two records are the same webhook when
// their ids match.
type Webhook struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Avatar    string `json:"avatar"`
	ChannelID string `json:"channel_id"`
}

// SameDisplay reports whether w and o show the same name and avatar.
func (w Webhook) SameDisplay(o Webhook) bool {
	return w.Name == o.Name && w.Avatar == o.Avatar
}

// WebhookUpdate pairs the cached record with the one that replaced it.
type WebhookUpdate struct {
	Old Webhook `json:"old"`
	New Webhook `json:"new"`
}

// WebhookDiff is the outcome of reconciling a channel's webhook cache.
type WebhookDiff struct {
	Created []Webhook       `json:"created"`
	Updated []WebhookUpdate `json:"updated"`
	Deleted []Webhook       `json:"deleted"`
}

// Empty reports whether the reconciliation changed nothing.
func (d WebhookDiff) Empty() bool {
	return len(d.Created) == 0 && len(d.Updated) == 0 && len(d.Deleted) == 0
}
