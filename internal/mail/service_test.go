package mail

import (
	"context"
	"net/smtp"
	"testing"
)

func TestMail_SendsEmail(t *testing.T) {
	var sentTo []string
	mailSvc := NewService(WithConfig(Config{
		ServerAddr: "localhost:8000",
		FromAddr:   "no-reply@idarawallet.com",
		Auth:       smtp.PlainAuth("identity", "username", "password", "host"),
		MailFn: func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
			sentTo = to
			return nil
		},
	}))
	ctx := context.Background()
	if err := mailSvc.Email(ctx, "jane@example.com", "hello world"); err != nil {
		t.Error("expected nil error, received:", err)
	}
	if len(sentTo) != 1 || sentTo[0] != "jane@example.com" {
		t.Error("incorrect recipients:", sentTo)
	}
}
