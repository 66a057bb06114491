package notification

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net"
	"net/mail"
	"net/smtp"
	"sort"
	"strconv"
	"time"

	"github.com/demonyhq/demony/pkg/config"
	"github.com/demonyhq/demony/pkg/notification"
)

const defaultSMTPTimeout = 10 * time.Second

type sendFunc func(ctx context.Context, addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPNotifier sends plain-text mail. Every exchange with the server is
// bounded by the configured timeout or the context deadline, whichever
// comes first.
type SMTPNotifier struct {
	cfg     *config.SMTP
	timeout time.Duration
	logger  *slog.Logger
	send    sendFunc
}

// NewSMTPNotifier builds an SMTP notifier. Host must be set.
func NewSMTPNotifier(cfg *config.SMTP, logger *slog.Logger) (*SMTPNotifier, error) {
	if cfg == nil || cfg.Host == "" {
		return nil, fmt.Errorf("smtp notifier: host is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	n := &SMTPNotifier{cfg: cfg, timeout: cfg.Timeout, logger: logger.With("notifier", "smtp")}
	if n.timeout <= 0 {
		n.timeout = defaultSMTPTimeout
	}
	n.send = n.deliver
	return n, nil
}

// Send implements notification.Notifier.
func (n *SMTPNotifier) Send(
	ctx context.Context,
	template notification.Template,
	to notification.Recipient,
	data map[string]any,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if to.Email == "" {
		return fmt.Errorf("smtp notifier: recipient email is required")
	}
	msg := n.compose(template, to, data)

	var auth smtp.Auth
	if n.cfg.Username != "" {
		auth = smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.cfg.Host)
	}
	from := n.cfg.From
	if addr, err := mail.ParseAddress(from); err == nil {
		from = addr.Address
	}
	addr := net.JoinHostPort(n.cfg.Host, strconv.Itoa(n.cfg.Port))
	if err := n.send(ctx, addr, auth, from, []string{to.Email}, msg); err != nil {
		n.logger.Error("send failed", "template", template, "to", to.Email, "error", err)
		return fmt.Errorf("smtp notifier: %w", err)
	}
	return nil
}

// deliver runs one SMTP session over a connection whose deadline covers
// the whole exchange. Cancelling ctx closes the connection.
func (n *SMTPNotifier) deliver(
	ctx context.Context,
	addr string,
	auth smtp.Auth,
	from string,
	to []string,
	msg []byte,
) error {
	dialer := net.Dialer{Timeout: n.timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	deadline := time.Now().Add(n.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetDeadline(deadline); err != nil {
		_ = conn.Close()
		return err
	}

	c, err := smtp.NewClient(conn, n.cfg.Host)
	if err != nil {
		_ = conn.Close()
		return err
	}
	defer c.Close() //nolint:errcheck

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: n.cfg.Host}); err != nil {
			return err
		}
	}
	if auth != nil {
		if ok, _ := c.Extension("AUTH"); ok {
			if err := c.Auth(auth); err != nil {
				return err
			}
		}
	}
	if err := c.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := c.Rcpt(rcpt); err != nil {
			return err
		}
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return c.Quit()
}

func (n *SMTPNotifier) compose(template notification.Template, to notification.Recipient, data map[string]any) []byte {
	subject := notification.Subjects[template]
	if subject == "" {
		subject = string(template)
	}
	var b bytes.Buffer
	fmt.Fprintf(&b, "From: %s\r\n", n.cfg.From)
	fmt.Fprintf(&b, "To: %s\r\n", to.Email)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	if to.Name != "" {
		fmt.Fprintf(&b, "Hello %s,\r\n\r\n", to.Name)
	}
	b.WriteString(subject + ".\r\n\r\n")

	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, "%s: %v\r\n", k, data[k])
	}
	return b.Bytes()
}

var _ notification.Notifier = (*SMTPNotifier)(nil)
