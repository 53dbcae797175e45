package mailer

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

type Sender interface {
	Send(ctx context.Context, m Message) error
}

type Options struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPSender(o Options) *SMTPSender {
	return &SMTPSender{
		dialer: gomail.NewDialer(o.Host, o.Port, o.Username, o.Password),
		from:   o.From,
	}
}

func (s *SMTPSender) Send(ctx context.Context, m Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := gomail.NewMessage()
	msg.SetHeader("From", s.from)
	msg.SetHeader("To", m.To)
	msg.SetHeader("Subject", m.Subject)
	switch {
	case m.HTML != "" && m.Text != "":
		msg.SetBody("text/plain", m.Text)
		msg.AddAlternative("text/html", m.HTML)
	case m.HTML != "":
		msg.SetBody("text/html", m.HTML)
	default:
		msg.SetBody("text/plain", m.Text)
	}
	if err := s.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("smtp send to %s: %w", m.To, err)
	}
	return nil
}

// LogSender stands in when no SMTP host is configured.
type LogSender struct{ L *zap.Logger }

func (s LogSender) Send(_ context.Context, m Message) error {
	s.L.Info("mail not sent: smtp disabled", zap.String("to", m.To), zap.String("subject", m.Subject))
	return nil
}

const PendingReminderSubject = "You have pending leave requests"

func PendingReminder(to, name string, pending int64, url string) (Message, error) {
	html, err := render("pending_reminder.html", map[string]any{"Name": name, "Pending": pending, "URL": url})
	if err != nil {
		return Message{}, err
	}
	return Message{
		To:      to,
		Subject: PendingReminderSubject,
		Text:    fmt.Sprintf("You have %d pending leave requests. Review them at %s", pending, url),
		HTML:    html,
	}, nil
}

func PasswordResetCode(to, code string, ttlMinutes int) (Message, error) {
	html, err := render("otp.html", map[string]any{"Code": code, "TTLMinutes": ttlMinutes})
	if err != nil {
		return Message{}, err
	}
	return Message{
		To:      to,
		Subject: "Your password reset code",
		Text:    fmt.Sprintf("Your password reset code is %s. It expires in %d minutes.", code, ttlMinutes),
		HTML:    html,
	}, nil
}

func render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}
