// Package msgpublisher queues SMS/Email secrets for delivery.
package msgpublisher

import (
	"context"
	"time"

	"github.com/go-kit/kit/log"
	"github.com/pkg/errors"

	wallet "github.com/idaralabs/Idara-Wallet"
	"github.com/idaralabs/Idara-Wallet/internal/contactchecker"
)

// service is an implementation of wallet.MessagingService. It hands
// messages to a MessageRepository for asynchronous delivery.
type service struct {
	logger      log.Logger
	messageRepo wallet.MessageRepository
	expireAfter time.Duration
}

// Send queues a secret for delivery to an out-of-band address.
func (s *service) Send(ctx context.Context, content, addr string, method wallet.DeliveryMethod, purpose wallet.Purpose) error {
	if !contactchecker.Validator(method)(addr) {
		return errors.New("invalid delivery address")
	}

	msg := wallet.Message{
		Delivery:  method,
		Content:   content,
		Address:   addr,
		Purpose:   purpose,
		ExpiresAt: time.Now().Add(s.expireAfter),
	}

	if err := s.messageRepo.Publish(ctx, &msg); err != nil {
		return errors.Wrap(err, "failed to publish to repository")
	}

	return nil
}
