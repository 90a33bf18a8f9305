package chancache

// event types published to subscribers
const (
	EventWebhookCreate = "WEBHOOK_CREATE"
	EventWebhookUpdate = "WEBHOOK_UPDATE"
	EventWebhookDelete = "WEBHOOK_DELETE"
)

// Event is published whenever reconciliation changes the webhook cache.
type Event struct {
	// Type of event so the receiver can decide how to read the payload
	Type string `json:"type"`

	ChannelID string `json:"channel_id"`

	// Webhook is the created or deleted record, or the new record of an update.
	Webhook Webhook `json:"webhook"`

	// Old is only set for updates.
	Old *Webhook `json:"old,omitempty"`
}

// Publisher accepts events for delivery to subscribers.
type Publisher interface {
	Publish(Event)
}
