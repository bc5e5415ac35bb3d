// Package notify provides the quote email notifiers. Neither delivers mail:
// LogMailer logs the message after a short delay and MailtoLink returns a
// mail-client deep link for the user to send.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"net/url"
	"strings"
	"time"

	"github.com/jsamuelsen/quotedesk/internal/domain"
	"github.com/jsamuelsen/quotedesk/internal/ports"
)

// Delivery channels.
const (
	ChannelLog    = "log"
	ChannelMailto = "mailto"
)

// Message is a rendered quote email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Compose renders the subject and body for msg.
func Compose(msg ports.QuoteEmail) (Message, error) {
	to := strings.TrimSpace(msg.To)
	if _, err := mail.ParseAddress(to); err != nil {
		return Message{}, domain.NewValidationErrorWithValue("to", "must be a valid email address", msg.To)
	}

	number := msg.QuoteNumber
	if number == "" {
		number = "(unnumbered)"
	}

	name := strings.TrimSpace(msg.ClientName)
	if name == "" {
		name = "there"
	}

	var b strings.Builder

	fmt.Fprintf(&b, "Hello %s,\n\n", name)
	fmt.Fprintf(&b, "Your quote %s is ready for review.\n\n", number)
	fmt.Fprintf(&b, "Total: %s\n", domain.FormatMoney(msg.Total))

	if msg.ExpiresAt != nil {
		fmt.Fprintf(&b, "Valid until: %s\n", msg.ExpiresAt.Format("January 2, 2006"))
	}

	if msg.QuoteURL != "" {
		fmt.Fprintf(&b, "\nView and respond: %s\n", msg.QuoteURL)
	}

	return Message{
		To:      to,
		Subject: "Quote " + number,
		Body:    b.String(),
	}, nil
}

// LogMailer logs quote emails instead of sending them.
type LogMailer struct {
	from   string
	delay  time.Duration
	logger *slog.Logger
	now    func() time.Time
}

var _ ports.Notifier = (*LogMailer)(nil)

// NewLogMailer creates a LogMailer that waits delay before reporting success.
func NewLogMailer(from string, delay time.Duration, logger *slog.Logger) *LogMailer {
	if logger == nil {
		logger = slog.Default()
	}

	return &LogMailer{
		from:   from,
		delay:  delay,
		logger: logger.With(slog.String("component", "notify.LogMailer")),
		now:    time.Now,
	}
}

// SendQuote implements ports.Notifier.
func (m *LogMailer) SendQuote(ctx context.Context, msg ports.QuoteEmail) (ports.Delivery, error) {
	rendered, err := Compose(msg)
	if err != nil {
		return ports.Delivery{}, err
	}

	if m.delay > 0 {
		timer := time.NewTimer(m.delay)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return ports.Delivery{}, fmt.Errorf("send quote email: %w", ctx.Err())
		case <-timer.C:
		}
	}

	m.logger.InfoContext(ctx, "quote email sent",
		slog.String("from", m.from),
		slog.String("to", rendered.To),
		slog.String("subject", rendered.Subject),
		slog.String("quote_number", msg.QuoteNumber),
		slog.String("quote_url", msg.QuoteURL),
	)

	return ports.Delivery{Channel: ChannelLog, SentAt: m.now()}, nil
}

// MailtoLink returns a mailto: deep link instead of sending.
type MailtoLink struct {
	now func() time.Time
}

var _ ports.Notifier = (*MailtoLink)(nil)

// NewMailtoLink creates a MailtoLink notifier.
func NewMailtoLink() *MailtoLink {
	return &MailtoLink{now: time.Now}
}

// SendQuote implements ports.Notifier. The returned Delivery carries the link.
func (m *MailtoLink) SendQuote(_ context.Context, msg ports.QuoteEmail) (ports.Delivery, error) {
	rendered, err := Compose(msg)
	if err != nil {
		return ports.Delivery{}, err
	}

	return ports.Delivery{
		Channel: ChannelMailto,
		Link:    BuildMailto(rendered),
		SentAt:  m.now(),
	}, nil
}

// BuildMailto encodes a message as an RFC 6068 mailto URI. Spaces are %20,
// never '+', so mail clients show them literally.
func BuildMailto(msg Message) string {
	q := url.Values{}
	q.Set("subject", msg.Subject)
	q.Set("body", msg.Body)

	return "mailto:" + url.PathEscape(msg.To) + "?" + strings.ReplaceAll(q.Encode(), "+", "%20")
}

// New returns the notifier for mode.
func New(mode, from string, delay time.Duration, logger *slog.Logger) (ports.Notifier, error) {
	switch mode {
	case ChannelLog, "":
		return NewLogMailer(from, delay, logger), nil
	case ChannelMailto:
		return NewMailtoLink(), nil
	default:
		return nil, errors.New("notify: unknown mode " + mode)
	}
}
