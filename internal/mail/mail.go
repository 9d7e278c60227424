package mail

import (
	"context"
	"errors"
	"strings"
)

var ErrNoRecipient = errors.New("mail recipient is required")

type Message struct {
	From    string
	To      string
	Subject string
	Text    string
	HTML    string
}

func (m Message) Validate() error {
	if strings.TrimSpace(m.To) == "" {
		return ErrNoRecipient
	}
	return nil
}

//go:generate mockgen -source=mail.go -destination=mock/sender_mock.go -package=mock
type Sender interface {
	Send(ctx context.Context, msg Message) error
}
