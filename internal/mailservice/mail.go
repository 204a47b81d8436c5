package mailservice

import (
	"strings"
	"time"

	"github.com/go-mail/mail/v2"
)

const dialTimeout = 5 * time.Second

// headerSafe keeps submitted text from starting new header lines.
var headerSafe = strings.NewReplacer("\r", " ", "\n", " ")

// NewMailer returns an SMTP mailer sending from cfg.Sender.
func NewMailer(cfg Config, tp TemplateParser) *Mail {
	dialer := mail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	dialer.Timeout = dialTimeout

	return &Mail{
		dialer: dialer,
		sender: cfg.Sender,
		parser: tp,
	}
}

// compose renders templateFile into a multipart message addressed to recipient.
func (m *Mail) compose(recipient, replyTo string, data any, templateFile string) (*mail.Message, error) {
	subject, plainBody, htmlBody, err := m.parser.ParseTemplate(templateFile, data)
	if err != nil {
		return nil, err
	}

	msg := mail.NewMessage()
	msg.SetHeader("From", m.sender)
	msg.SetHeader("To", recipient)
	if replyTo != "" {
		msg.SetHeader("Reply-To", headerSafe.Replace(replyTo))
	}
	msg.SetHeader("Subject", headerSafe.Replace(subject.String()))
	msg.SetBody("text/plain", plainBody.String())
	msg.AddAlternative("text/html", htmlBody.String())

	return msg, nil
}

func (m *Mail) send(recipient, replyTo string, data any, templateFile string) error {
	msg, err := m.compose(recipient, replyTo, data, templateFile)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	return m.dialer.DialAndSend(msg)
}
