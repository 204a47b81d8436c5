package mailservice

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"golang.org/x/exp/rand"

	"github.com/sushihentaime/portfolio/internal/common"
	"github.com/sushihentaime/portfolio/internal/contactservice"
)

const (
	contactTemplate = "contact_message.html"

	defaultMaxRetries = 5
	defaultBaseDelay  = 500 * time.Millisecond
)

func NewMailService(mb common.MessageConsumer, cfg Config, logger *slog.Logger) *MailService {
	return &MailService{
		mb:         mb,
		m:          NewMailer(cfg, NewTemplate()),
		logger:     logger,
		recipient:  cfg.Recipient,
		maxRetries: defaultMaxRetries,
		baseDelay:  defaultBaseDelay,
	}
}

// SendContactEmails delivers queued contact messages until ctx is cancelled or
// the delivery channel closes. It blocks.
func (s *MailService) SendContactEmails(ctx context.Context) error {
	msgs, err := s.mb.Consume(common.ContactSubmittedKey, common.ContactExchange, common.ContactSubmittedQueue)
	if err != nil {
		return err
	}

	for {
		select {
		case msg, ok := <-msgs:
			if !ok {
				s.logger.Info("contact queue closed")
				return nil
			}

			var data contactservice.Message
			err := json.Unmarshal(msg.Body, &data)
			if err != nil {
				s.logger.Error("could not unmarshal message", slog.String("error", err.Error()))
				// undecodable messages never become deliverable
				msg.Reject(false)
				continue
			}

			if !s.deliver(ctx, data) {
				// shutting down mid retry: leave the message for the next consumer
				msg.Nack(false, true)
				return nil
			}
			msg.Ack(false)

		case <-ctx.Done():
			s.logger.Info("stopping SendContactEmails due to context cancellation")
			return nil
		}
	}
}

// deliver sends one message, retrying with exponential backoff and jitter. It
// reports false only when ctx ended before the message was settled.
func (s *MailService) deliver(ctx context.Context, data contactservice.Message) bool {
	for attempt := 0; attempt < s.maxRetries; attempt++ {
		err := s.m.send(s.recipient, data.Email, data, contactTemplate)
		if err == nil {
			s.logger.Info("contact email sent", slog.String("id", data.ID))
			return true
		}

		delay := time.Duration(rand.Int63n(int64(s.baseDelay) << uint(attempt)))
		s.logger.Info("delaying contact email", slog.String("id", data.ID), slog.Int("attempt", attempt), slog.Duration("delay", delay), slog.String("error", err.Error()))

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return false
		}
	}

	s.logger.Error("could not send contact email", slog.String("id", data.ID))
	return true
}
