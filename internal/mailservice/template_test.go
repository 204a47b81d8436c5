package mailservice

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sushihentaime/portfolio/internal/contactservice"
)

func TestParseTemplate(t *testing.T) {
	template := &Template{}

	msg := contactservice.Message{
		ID:          "6f1c",
		Name:        "Ada <b>",
		Email:       "ada@example.com",
		Subject:     "Prints & frames",
		Message:     "Hello there, is this available?",
		SubmittedAt: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
	}

	testCases := []struct {
		name         string
		templateName string
		data         any
		expectedErr  bool
	}{
		{
			name:         "success",
			templateName: contactTemplate,
			data:         msg,
			expectedErr:  false,
		},
		{
			name:         "invalid template name",
			templateName: "invalid_template.html",
			data:         nil,
			expectedErr:  true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s, p, h, err := template.ParseTemplate(tc.templateName, tc.data)
			assert.Equal(t, tc.expectedErr, err != nil)

			if err == nil {
				assert.Equal(t, "[Portfolio] Prints & frames", s.String())
				assert.Contains(t, p.String(), "Ada <b> <ada@example.com>")
				assert.Contains(t, p.String(), "2024-03-01 10:00 UTC")
				assert.Contains(t, h.String(), "Ada &lt;b&gt;")
				assert.Contains(t, h.String(), "Prints &amp; frames")
			}
		})
	}
}
