package msgpublisher

import (
	"context"
	"fmt"
	"testing"

	wallet "github.com/idaralabs/Idara-Wallet"
	"github.com/idaralabs/Idara-Wallet/internal/test"
)

func TestMsgPublisher_Send(t *testing.T) {
	tt := []struct {
		name        string
		address     string
		method      wallet.DeliveryMethod
		publishMock func() error
		isFailed    bool
	}{
		{
			name:     "Queues SMS",
			address:  "+15551234567",
			method:   wallet.SMS,
			isFailed: false,
		},
		{
			name:     "Queues email",
			address:  "jane@example.com",
			method:   wallet.Email,
			isFailed: false,
		},
		{
			name:     "Rejects malformed phone number",
			address:  "94867353",
			method:   wallet.SMS,
			isFailed: true,
		},
		{
			name:     "Rejects malformed email address",
			address:  "not-an-email",
			method:   wallet.Email,
			isFailed: true,
		},
		{
			name:    "Fails on repository error",
			address: "jane@example.com",
			method:  wallet.Email,
			publishMock: func() error {
				return fmt.Errorf("whoops")
			},
			isFailed: true,
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			messageRepo := test.MessageRepository{
				PublishFn: tc.publishMock,
			}

			ctx := context.Background()
			publisherSvc := NewService(&messageRepo)
			err := publisherSvc.Send(ctx, "994213", tc.address, tc.method, wallet.PurposeLogin)
			if err != nil && !tc.isFailed {
				t.Error("expected nil error, received:", err)
			}
			if err == nil && tc.isFailed {
				t.Error("expected error, received nil")
			}
		})
	}
}

func TestMsgPublisher_PublishedMessage(t *testing.T) {
	messageRepo := test.MessageRepository{}
	publisherSvc := NewService(&messageRepo)

	err := publisherSvc.Send(context.Background(), "994213", "+15551234567", wallet.SMS, wallet.PurposeRegistration)
	if err != nil {
		t.Fatal("expected nil error, received:", err)
	}

	if len(messageRepo.Published) != 1 {
		t.Fatal("expected 1 published message, received", len(messageRepo.Published))
	}

	msg := messageRepo.Published[0]
	if msg.Content != "994213" {
		t.Error("incorrect content: want 994213, got", msg.Content)
	}
	if msg.Address != "+15551234567" {
		t.Error("incorrect address: want +15551234567, got", msg.Address)
	}
	if msg.Purpose != wallet.PurposeRegistration {
		t.Errorf("incorrect purpose: want %s, got %s", wallet.PurposeRegistration, msg.Purpose)
	}
	if msg.ExpiresAt.IsZero() {
		t.Error("expected expiry to be set")
	}
}
