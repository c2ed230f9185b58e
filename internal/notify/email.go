package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/jordan-wright/email"
	"go.opentelemetry.io/otel/codes"
)

type SmtpConfig struct {
	Server       string `json:"server"`
	Port         int    `json:"port"`
	EmailAddress string `json:"email_address"`
	Password     string `json:"password"`
}

// Email sends notifications as plain text mail, the webhook target is the recipient address.
type Email struct {
	config SmtpConfig
}

func NewEmail(config SmtpConfig) Email {
	return Email{config: config}
}

func (e Email) Send(ctx context.Context, target string, msg Message) error {
	_, span := tracer.Start(ctx, "Email.Send")
	defer span.End()

	mail := email.NewEmail()
	mail.From = fmt.Sprintf("ttvdrops <%s>", e.config.EmailAddress)
	mail.To = []string{target}
	mail.Subject = msg.Title
	mail.Text = []byte(msg.Text)

	addr := fmt.Sprintf("%s:%d", e.config.Server, e.config.Port)
	err := mail.Send(addr, smtp.PlainAuth("", e.config.EmailAddress, e.config.Password, e.config.Server))
	if err != nil && strings.Contains(err.Error(), "server doesn't support AUTH") {
		err = mail.Send(addr, nil)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to send email")
		return err
	}
	return nil
}
