// Copyright (c) 2026 Gravity. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package mailer renders and delivers transactional mail.
//
// Delivery goes over SMTP when a relay host is configured. Without one the
// [LogSender] is used, which only records that a message would have been sent.
package mailer

import (
	"bytes"
	"context"
	"embed"
	htmltemplate "html/template"
	"log/slog"
	texttemplate "text/template"
)

var (
	//go:embed templates/*
	templateFS embed.FS

	passwordResetHTML = htmltemplate.Must(htmltemplate.ParseFS(templateFS, "templates/password_reset.html"))
	passwordResetText = texttemplate.Must(texttemplate.ParseFS(templateFS, "templates/password_reset.txt"))
)

// Message is a rendered mail ready for delivery.
type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// Sender delivers a rendered [Message].
type Sender interface {
	Send(ctx context.Context, message Message) error
}

// PasswordResetData feeds the password reset templates.
type PasswordResetData struct {
	ProductName string
	ProductURL  string
	Name        string
	ResetLink   string
	ExpiresIn   string
}

// PasswordResetMessage renders the HTML and plain text bodies of the reset mail.
func PasswordResetMessage(to string, data PasswordResetData) (Message, error) {
	var html, text bytes.Buffer

	if err := passwordResetHTML.Execute(&html, data); err != nil {
		return Message{}, err
	}
	if err := passwordResetText.Execute(&text, data); err != nil {
		return Message{}, err
	}

	return Message{
		To:      to,
		Subject: "Password reset request",
		HTML:    html.String(),
		Text:    text.String(),
	}, nil
}

// LogSender stands in for SMTP when no relay is configured.
type LogSender struct {
	logger *slog.Logger
}

// NewLogSender creates a [LogSender].
func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

// Send logs the envelope. The body is only emitted at debug level since it
// carries one-time links.
func (s *LogSender) Send(ctx context.Context, message Message) error {
	s.logger.InfoContext(ctx, "mail_delivery_skipped",
		slog.String("to", message.To),
		slog.String("subject", message.Subject),
	)
	s.logger.DebugContext(ctx, "mail_body", slog.String("text", message.Text))
	return nil
}
