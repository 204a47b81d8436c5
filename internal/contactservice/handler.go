package contactservice

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sushihentaime/portfolio/internal/common"
)

func NewContactService(mb common.MessageProducer) *ContactService {
	return &ContactService{mb: mb, now: time.Now}
}

// Submit validates a contact form and queues it for delivery by mail.
func (s *ContactService) Submit(ctx context.Context, req *SubmitRequest) (*Message, error) {
	msg := &Message{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(req.Name),
		Email:       strings.TrimSpace(req.Email),
		Subject:     strings.TrimSpace(req.Subject),
		Message:     strings.TrimSpace(req.Message),
		SubmittedAt: s.now().UTC(),
	}

	v := common.NewValidator()
	validateName(v, msg.Name)
	validateEmail(v, msg.Email)
	validateSubject(v, msg.Subject)
	validateMessage(v, msg.Message)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return nil, err
	}

	err = s.mb.Publish(ctx, data, common.ContactSubmittedKey, common.ContactExchange)
	if err != nil {
		return nil, err
	}

	return msg, nil
}
