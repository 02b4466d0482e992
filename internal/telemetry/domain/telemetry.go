package domain

import "time"

// Event is a single telemetry event as it travels through Kafka and the
// OTel log pipeline (JSON-encoded on the wire).
type Event struct {
	EventType  string            `json:"event_type"`
	Source     string            `json:"source"`
	Platform   string            `json:"platform,omitempty"`
	UserID     string            `json:"user_id,omitempty"`
	OrgID      string            `json:"org_id,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
}
