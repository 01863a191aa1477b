// Package mail provides email delivery for risk notifications with template
// rendering and a test double.
package mail

import (
	"context"
	"errors"
	"fmt"
	"net/smtp"
	"strings"
	"sync"
)

// Sender is the interface for delivering risk notification emails.
type Sender interface {
	SendRiskNotification(ctx context.Context, to, name, riskLevel string, predictedPositive bool) error
}

// Template defines a reusable email template with {{key}} placeholders.
type Template struct {
	Subject string
	Body    string
}

var riskTemplates = map[bool]Template{
	true: {
		Subject: "Diabetes Risk Assessment Result for {{name}}",
		Body: "Dear {{name}},\n\n" +
			"Your recent assessment indicates an elevated diabetes risk ({{risk_level}}). " +
			"Please review the recommendations in your dashboard and consider consulting a healthcare provider.\n\n" +
			"This is an automated message.",
	},
	false: {
		Subject: "Diabetes Risk Assessment Result for {{name}}",
		Body: "Dear {{name}},\n\n" +
			"Your recent assessment indicates a {{risk_level}} diabetes risk. " +
			"Keep up your healthy habits and check your dashboard for details.\n\n" +
			"This is an automated message.",
	},
}

// Render performs {{key}} replacement using the supplied data map. Keys present
// in the template but absent from data are left as-is.
func (t Template) Render(data map[string]string) (subject, body string) {
	subject = t.Subject
	body = t.Body
	for k, v := range data {
		placeholder := "{{" + k + "}}"
		subject = strings.ReplaceAll(subject, placeholder, v)
		body = strings.ReplaceAll(body, placeholder, v)
	}
	return subject, body
}

// SMTPConfig holds SMTP connection settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPSender delivers email over SMTP.
type SMTPSender struct {
	cfg SMTPConfig
}

// NewSMTPSender constructs an SMTPSender.
func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	return &SMTPSender{cfg: cfg}
}

// SendRiskNotification renders the risk template for the outcome and delivers
// it to the recipient.
func (s *SMTPSender) SendRiskNotification(_ context.Context, to, name, riskLevel string, predictedPositive bool) error {
	if to == "" {
		return errors.New("recipient address is empty")
	}

	tpl := riskTemplates[predictedPositive]
	subject, body := tpl.Render(map[string]string{
		"name":       name,
		"risk_level": riskLevel,
	})

	msg := buildMessage(s.cfg.From, to, subject, body)
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	if err := smtp.SendMail(addr, auth, s.cfg.From, []string{to}, msg); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}

func buildMessage(from, to, subject, body string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	return []byte(b.String())
}

// SentMail records a single call to SendRiskNotification.
type SentMail struct {
	To                string
	Name              string
	RiskLevel         string
	PredictedPositive bool
}

// MockSender is a test double for Sender.
type MockSender struct {
	mu         sync.Mutex
	calls      []SentMail
	ShouldFail bool
	FailError  string
}

// SendRiskNotification records the call and optionally returns an error.
func (m *MockSender) SendRiskNotification(_ context.Context, to, name, riskLevel string, predictedPositive bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, SentMail{To: to, Name: name, RiskLevel: riskLevel, PredictedPositive: predictedPositive})
	if m.ShouldFail {
		return errors.New(m.FailError)
	}
	return nil
}

// Calls returns a copy of recorded calls.
func (m *MockSender) Calls() []SentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SentMail, len(m.calls))
	copy(out, m.calls)
	return out
}
