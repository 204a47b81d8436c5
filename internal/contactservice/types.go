package contactservice

import (
	"time"

	"github.com/sushihentaime/portfolio/internal/common"
)

type SubmitRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// Message is the payload published for every accepted contact form.
type Message struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Subject     string    `json:"subject"`
	Message     string    `json:"message"`
	SubmittedAt time.Time `json:"submitted_at"`
}

type ContactService struct {
	mb  common.MessageProducer
	now func() time.Time
}
