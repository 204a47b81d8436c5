package mailservice

import (
	"bytes"
	"testing"

	"github.com/go-mail/mail/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSendEmail(t *testing.T) {
	testCases := []struct {
		name        string
		replyTo     string
		subject     string
		wantReplyTo []string
		wantSubject []string
	}{
		{
			name:        "reply to submitter",
			replyTo:     "ada@example.com",
			subject:     "Test Subject",
			wantReplyTo: []string{"ada@example.com"},
			wantSubject: []string{"Test Subject"},
		},
		{
			name:        "no reply to",
			subject:     "Test Subject",
			wantSubject: []string{"Test Subject"},
		},
		{
			name:        "newlines in subject",
			replyTo:     "ada@example.com",
			subject:     "Hello\r\nBcc: victim@example.com",
			wantReplyTo: []string{"ada@example.com"},
			wantSubject: []string{"Hello  Bcc: victim@example.com"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mockParser := new(MockTemplate)
			mockDialer := new(MockDialer)

			mailer := Mail{
				dialer: mockDialer,
				parser: mockParser,
				sender: "sender@example.com",
			}

			subject := bytes.NewBufferString(tc.subject)
			plainBody := bytes.NewBufferString("Test Plain Body")
			htmlBody := bytes.NewBufferString("Test HTML Body")
			mockParser.On("ParseTemplate", "template.html", mock.Anything).Return(subject, plainBody, htmlBody, nil)

			var sent *mail.Message
			mockDialer.On("DialAndSend", mock.AnythingOfType("[]*mail.Message")).
				Run(func(args mock.Arguments) { sent = args.Get(0).([]*mail.Message)[0] }).
				Return(nil)

			err := mailer.send("owner@example.com", tc.replyTo, nil, "template.html")
			assert.NoError(t, err)

			mockParser.AssertExpectations(t)
			mockDialer.AssertExpectations(t)

			require.NotNil(t, sent)
			assert.Equal(t, []string{"owner@example.com"}, sent.GetHeader("To"))
			assert.Equal(t, []string{"sender@example.com"}, sent.GetHeader("From"))
			assert.Equal(t, tc.wantReplyTo, sent.GetHeader("Reply-To"))
			assert.Equal(t, tc.wantSubject, sent.GetHeader("Subject"))
		})
	}
}
