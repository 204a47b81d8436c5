package mailservice

import (
	"bytes"
	"sync"
	"time"

	"github.com/go-mail/mail/v2"

	"github.com/sushihentaime/portfolio/internal/common"
)

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	Sender   string
	// Recipient receives every contact message.
	Recipient string
}

type MailService struct {
	mb         common.MessageConsumer
	m          Mailer
	logger     MailLogger
	recipient  string
	maxRetries int
	baseDelay  time.Duration
}

type MailLogger interface {
	Error(msg string, args ...any)
	Info(msg string, args ...any)
}

type Mail struct {
	mu     sync.Mutex
	dialer Dialer
	parser TemplateParser
	sender string
}

type Mailer interface {
	send(recipient, replyTo string, data any, templateFile string) error
}

// Template renders the embedded mail templates. The zero value is ready to use.
type Template struct {
	mu     sync.Mutex
	parsed map[string]*parsedTemplate
}

type Dialer interface {
	DialAndSend(m ...*mail.Message) error
}

type TemplateParser interface {
	ParseTemplate(name string, data any) (*bytes.Buffer, *bytes.Buffer, *bytes.Buffer, error)
}
