package events

import "time"

const (
	MailRequestedTopic     = "leave.mail.requested.v1"
	MailRequestedEventType = "mail_requested"
)

type MailRequestedEvent struct {
	EventType   string    `json:"event_type"`
	MessageID   string    `json:"message_id"`
	From        string    `json:"from"`
	To          string    `json:"to"`
	Subject     string    `json:"subject"`
	Text        string    `json:"text"`
	HTML        string    `json:"html,omitempty"`
	RequestID   string    `json:"request_id,omitempty"`
	RequestedAt time.Time `json:"requested_at"`
}
