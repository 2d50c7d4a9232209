// Package msgconsumer delivers queued SMS/Email secrets.
package msgconsumer

import (
	"context"
	"fmt"
	"time"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"

	wallet "github.com/idaralabs/Idara-Wallet"
)

// Consumer reads a message stream off a repository.
type Consumer interface {
	Run(ctx context.Context) error
}

// service consumes messages from a repository into a channel
// to be delivered in parallel through goroutines.
type service struct {
	logger       log.Logger
	smsLib       wallet.SMSer
	emailLib     wallet.Emailer
	totalWorkers int
	messageQueue chan *wallet.Message
	messageRepo  wallet.MessageRepository
}

// Run retrieves recent messages from the repository and passes
// them into a channel to be consumed by workers.
func (s *service) Run(ctx context.Context) error {
	s.startWorkers()
	defer close(s.messageQueue)

	msgc, errc := s.messageRepo.Recent(ctx)

	for {
		select {
		case msg, ok := <-msgc:
			if !ok {
				msgc = nil
				continue
			}
			s.messageQueue <- msg
		case err := <-errc:
			return err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// startWorkers starts a finite number of workers to deliver messages
// found in the message queue.
func (s *service) startWorkers() {
	for i := 0; i < s.totalWorkers; i++ {
		go func() {
			for msg := range s.messageQueue {
				s.processMessage(msg)
			}
		}()
	}
}

// processMessage delivers a message through email or SMS. Failed
// deliveries are published back for redelivery until the message
// expires.
func (s *service) processMessage(msg *wallet.Message) {
	if time.Now().After(msg.ExpiresAt) {
		level.Info(s.logger).Log(
			"source", "MsgConsumer.processMessage",
			"message", "dropping expired message",
			"delivery", msg.Delivery,
		)
		return
	}

	var err error
	body := renderBody(msg)

	switch msg.Delivery {
	case wallet.SMS:
		err = s.smsLib.SMS(context.Background(), msg.Address, body)
	case wallet.Email:
		err = s.emailLib.Email(context.Background(), msg.Address, body)
	default:
		level.Info(s.logger).Log(
			"source", "MsgConsumer.processMessage",
			"message", "unknown delivery method",
			"delivery", msg.Delivery,
		)
		return
	}

	if err == nil {
		return
	}

	level.Info(s.logger).Log(
		"source", "MsgConsumer.processMessage",
		"message", "delivery failed",
		"delivery", msg.Delivery,
		"delivery_attempts", msg.DeliveryAttempts,
		"error", err,
	)

	if err = s.messageRepo.Publish(context.Background(), msg); err != nil {
		// Redelivery budget is spent. The message lands in the log
		// sink so a failed delivery is never silent.
		level.Info(s.logger).Log(
			"source", "MsgConsumer.processMessage",
			"message", "delivery abandoned, writing message to log sink",
			"delivery", msg.Delivery,
			"recipient", msg.Address,
			"body", body,
			"error", err,
		)
	}
}

func renderBody(msg *wallet.Message) string {
	switch msg.Purpose {
	case wallet.PurposeRegistration:
		return fmt.Sprintf("%s is your Idara Wallet registration code.", msg.Content)
	case wallet.PurposeRecovery:
		return fmt.Sprintf("%s is your Idara Wallet recovery code.", msg.Content)
	default:
		return fmt.Sprintf("%s is your Idara Wallet login code.", msg.Content)
	}
}
