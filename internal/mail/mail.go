// Package mail delivers HTML messages over an authenticated, implicitly
// encrypted SMTP session.
package mail

import (
	"context"
	"fmt"
	"strings"
	"time"

	gomail "github.com/wneessen/go-mail"

	"github.com/yourusername/vornify-cli/internal/models"
)

const (
	DefaultPort    = 465
	DefaultTimeout = 30 * time.Second
)

// Settings configures the SMTP session and sender identity
type Settings struct {
	Host     string
	Port     int
	Username string
	Password string
	// From defaults to Username
	From    string
	Timeout time.Duration
}

// Message is a single-recipient HTML email
type Message struct {
	To      string
	Subject string
	HTML    string
}

// sender is satisfied by *gomail.Client
type sender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*gomail.Msg) error
}

// Mailer composes and sends messages
type Mailer struct {
	settings  Settings
	newSender func(Settings) (sender, error)
}

// NewMailer creates a Mailer; the SMTP connection is opened per Send
func NewMailer(s Settings) *Mailer {
	if s.Port == 0 {
		s.Port = DefaultPort
	}
	if s.Timeout == 0 {
		s.Timeout = DefaultTimeout
	}
	if s.From == "" {
		s.From = s.Username
	}
	return &Mailer{settings: s, newSender: dialSMTP}
}

func dialSMTP(s Settings) (sender, error) {
	return gomail.NewClient(s.Host,
		gomail.WithPort(s.Port),
		gomail.WithSSL(),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.Username),
		gomail.WithPassword(s.Password),
		gomail.WithTimeout(s.Timeout),
	)
}

// Compose builds the MIME message for m
func (ml *Mailer) Compose(m Message) (*gomail.Msg, error) {
	if strings.TrimSpace(m.To) == "" {
		return nil, fmt.Errorf("recipient is required")
	}
	if ml.settings.From == "" {
		return nil, fmt.Errorf("sender address is required")
	}

	msg := gomail.NewMsg()
	if err := msg.From(ml.settings.From); err != nil {
		return nil, fmt.Errorf("invalid sender %q: %w", ml.settings.From, err)
	}
	if err := msg.To(m.To); err != nil {
		return nil, fmt.Errorf("invalid recipient %q: %w", m.To, err)
	}
	msg.Subject(m.Subject)
	msg.SetBodyString(gomail.TypeTextHTML, m.HTML)
	return msg, nil
}

// Send delivers m. It returns true on delivery; every failure is reported as
// a KindDeliveryFailed error carrying the cause.
func (ml *Mailer) Send(ctx context.Context, m Message) (bool, error) {
	op := "send mail to " + m.To
	if ml.settings.Host == "" {
		return false, models.NewError(models.KindDeliveryFailed, op, fmt.Errorf("smtp host is not configured"))
	}

	msg, err := ml.Compose(m)
	if err != nil {
		return false, models.NewError(models.KindDeliveryFailed, op, err)
	}

	s, err := ml.newSender(ml.settings)
	if err != nil {
		return false, models.NewError(models.KindDeliveryFailed, op, err)
	}
	if err := s.DialAndSendWithContext(ctx, msg); err != nil {
		return false, models.NewError(models.KindDeliveryFailed, op, err)
	}
	return true, nil
}
