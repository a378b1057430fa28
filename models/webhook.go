package models

// WebhookEnvelope is the outer payload Meta delivers to the webhook.
type WebhookEnvelope struct {
	Object string         `json:"object"`
	Entry  []WebhookEntry `json:"entry"`
}

// WebhookEntry is one page-scoped batch of events.
type WebhookEntry struct {
	ID        string           `json:"id"`
	Time      int64            `json:"time"`
	Messaging []MessagingEvent `json:"messaging,omitempty"`
	Changes   []WebhookChange  `json:"changes,omitempty"`
}

// MessagingEvent carries a direct message.
type MessagingEvent struct {
	Sender    WebhookParty    `json:"sender"`
	Recipient WebhookParty    `json:"recipient"`
	Timestamp int64           `json:"timestamp"`
	Message   *WebhookMessage `json:"message,omitempty"`
}

type WebhookParty struct {
	ID string `json:"id"`
}

type WebhookMessage struct {
	MID  string `json:"mid"`
	Text string `json:"text"`
}

// WebhookChange carries comment field changes.
type WebhookChange struct {
	Field string             `json:"field"`
	Value WebhookChangeValue `json:"value"`
}

type WebhookChangeValue struct {
	ID   string        `json:"id"`
	Text string        `json:"text"`
	From *WebhookParty `json:"from,omitempty"`
}
