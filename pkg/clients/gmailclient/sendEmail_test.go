package gmailclient

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMessage(t *testing.T) {
	msg := buildMessage("reports@example.com", []string{"a@example.com", "b@example.com"}, "Ranking 2025-03", "1. Ana")

	assert.Equal(t,
		"From: reports@example.com\r\n"+
			"To: a@example.com, b@example.com\r\n"+
			"Subject: Ranking 2025-03\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/plain; charset=\"UTF-8\"\r\n\r\n"+
			"1. Ana",
		msg)
}

func TestBuildMessage_NoSender(t *testing.T) {
	msg := buildMessage("", []string{"a@example.com"}, "s", "b")
	assert.NotContains(t, msg, "From:")
	assert.Contains(t, msg, "To: a@example.com\r\n")
}

func TestSendEmail_NoRecipients(t *testing.T) {
	c := &Client{userID: defaultUserID}
	err := c.SendEmail(context.Background(), nil, "s", "b")
	require.Error(t, err)
}
