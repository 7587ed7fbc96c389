// Copyright (c) 2026 Gravity. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package mailer

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/gravity/internal/platform/config"
)

func TestPasswordResetMessage(t *testing.T) {
	message, err := PasswordResetMessage("ana@x.com", PasswordResetData{
		ProductName: "Gravity",
		ProductURL:  "https://gravity.com",
		Name:        "<Ana>",
		ResetLink:   "http://localhost:5173/reset-password/abc123",
		ExpiresIn:   "20 minutes",
	})
	require.NoError(t, err)

	assert.Equal(t, "ana@x.com", message.To)
	assert.NotEmpty(t, message.Subject)

	assert.Contains(t, message.HTML, `href="http://localhost:5173/reset-password/abc123"`)
	assert.Contains(t, message.HTML, "&lt;Ana&gt;")
	assert.Contains(t, message.Text, "http://localhost:5173/reset-password/abc123")
	assert.Contains(t, message.Text, "20 minutes")
}

func TestSMTPClient_Build(t *testing.T) {
	client, err := NewSMTPClient(config.SMTP{Host: "smtp.example.com", Port: 587, From: "Gravity <no-reply@gravity.app>"})
	require.NoError(t, err)

	raw, err := client.build(Message{To: "ana@x.com", Subject: "Password reset request", HTML: "<p>hi</p>", Text: "hi"}, time.Unix(0, 0))
	require.NoError(t, err)

	body := string(raw)
	assert.True(t, strings.HasPrefix(body, `From: "Gravity" <no-reply@gravity.app>`))
	assert.Contains(t, body, "To: ana@x.com\r\n")
	assert.Contains(t, body, "multipart/alternative")
	assert.Contains(t, body, "text/plain; charset=utf-8")
	assert.Contains(t, body, "<p>hi</p>")
}

func TestNewSMTPClient_Invalid(t *testing.T) {
	_, err := NewSMTPClient(config.SMTP{})
	assert.Error(t, err)

	_, err = NewSMTPClient(config.SMTP{Host: "smtp.example.com", From: "not an address"})
	assert.Error(t, err)
}

func TestLogSender(t *testing.T) {
	var buffer bytes.Buffer
	sender := NewLogSender(slog.New(slog.NewJSONHandler(&buffer, nil)))

	require.NoError(t, sender.Send(context.Background(), Message{To: "ana@x.com", Subject: "Password reset request", Text: "secret-link"}))

	assert.Contains(t, buffer.String(), "mail_delivery_skipped")
	assert.NotContains(t, buffer.String(), "secret-link")
}
