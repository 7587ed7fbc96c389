// Copyright (c) 2026 Gravity. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package mailer

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"mime"
	"mime/multipart"
	"net"
	"net/mail"
	"net/smtp"
	"net/textproto"
	"strconv"
	"time"

	"github.com/taibuivan/gravity/internal/platform/config"
)

// implicitTLSPort is the SMTPS port; every other port upgrades with STARTTLS when offered.
const implicitTLSPort = 465

// SMTPClient delivers mail through an SMTP relay.
type SMTPClient struct {
	cfg  config.SMTP
	from *mail.Address
}

// NewSMTPClient validates the relay settings and returns a client.
func NewSMTPClient(cfg config.SMTP) (*SMTPClient, error) {
	if cfg.Host == "" {
		return nil, errors.New("mailer: smtp host is not configured")
	}

	fromValue := cfg.From
	if fromValue == "" {
		fromValue = cfg.Username
	}
	from, err := mail.ParseAddress(fromValue)
	if err != nil {
		return nil, fmt.Errorf("mailer: invalid from address %q: %w", fromValue, err)
	}

	return &SMTPClient{cfg: cfg, from: from}, nil
}

// Send opens a connection, delivers one message and quits. The context
// deadline bounds the whole exchange.
func (c *SMTPClient) Send(ctx context.Context, message Message) error {
	body, err := c.build(message, time.Now())
	if err != nil {
		return fmt.Errorf("mailer: build message: %w", err)
	}

	addr := net.JoinHostPort(c.cfg.Host, strconv.Itoa(c.cfg.Port))
	dialer := &net.Dialer{}

	var conn net.Conn
	if c.cfg.Port == implicitTLSPort {
		tlsDialer := &tls.Dialer{NetDialer: dialer, Config: &tls.Config{ServerName: c.cfg.Host, MinVersion: tls.VersionTLS12}}
		conn, err = tlsDialer.DialContext(ctx, "tcp", addr)
	} else {
		conn, err = dialer.DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return fmt.Errorf("mailer: dial %s: %w", addr, err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, c.cfg.Host)
	if err != nil {
		return fmt.Errorf("mailer: handshake: %w", err)
	}
	defer client.Close()

	if c.cfg.Port != implicitTLSPort {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(&tls.Config{ServerName: c.cfg.Host, MinVersion: tls.VersionTLS12}); err != nil {
				return fmt.Errorf("mailer: starttls: %w", err)
			}
		}
	}

	if c.cfg.Username != "" || c.cfg.Password != "" {
		if err := client.Auth(smtp.PlainAuth("", c.cfg.Username, c.cfg.Password, c.cfg.Host)); err != nil {
			return fmt.Errorf("mailer: auth: %w", err)
		}
	}

	if err := client.Mail(c.from.Address); err != nil {
		return fmt.Errorf("mailer: mail from: %w", err)
	}
	if err := client.Rcpt(message.To); err != nil {
		return fmt.Errorf("mailer: rcpt to: %w", err)
	}

	writer, err := client.Data()
	if err != nil {
		return fmt.Errorf("mailer: data: %w", err)
	}
	if _, err := writer.Write(body); err != nil {
		return fmt.Errorf("mailer: write body: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("mailer: close body: %w", err)
	}

	return client.Quit()
}

// build encodes the message as multipart/alternative with a plain text and an HTML part.
func (c *SMTPClient) build(message Message, now time.Time) ([]byte, error) {
	var buffer bytes.Buffer
	parts := multipart.NewWriter(&buffer)

	header := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nDate: %s\r\nMIME-Version: 1.0\r\nContent-Type: multipart/alternative; boundary=%q\r\n\r\n",
		c.from.String(),
		message.To,
		mime.QEncoding.Encode("utf-8", message.Subject),
		now.Format(time.RFC1123Z),
		parts.Boundary(),
	)

	for _, part := range []struct {
		contentType string
		content     string
	}{
		{"text/plain; charset=utf-8", message.Text},
		{"text/html; charset=utf-8", message.HTML},
	} {
		writer, err := parts.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {part.contentType},
			"Content-Transfer-Encoding": {"8bit"},
		})
		if err != nil {
			return nil, err
		}
		if _, err := writer.Write([]byte(part.content)); err != nil {
			return nil, err
		}
	}

	if err := parts.Close(); err != nil {
		return nil, err
	}

	return append([]byte(header), buffer.Bytes()...), nil
}
