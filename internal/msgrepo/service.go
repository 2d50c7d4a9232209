// Package msgrepo provides message storage for consumers and publishers.
package msgrepo

import (
	"context"
	"math/rand"
	"time"

	"github.com/go-kit/kit/log"
	"github.com/pkg/errors"

	wallet "github.com/idaralabs/Idara-Wallet"
)

// service is an in-process implementation of wallet.MessageRepository
// backed by a channel. It stands in for the Kafka repository when no
// broker is configured.
type service struct {
	logger       log.Logger
	messageQueue chan *wallet.Message
}

// Publish writes an unsent message to a channel.
func (s *service) Publish(ctx context.Context, msg *wallet.Message) error {
	if time.Now().After(msg.ExpiresAt) {
		return errors.New("cannot publish expired message")
	}

	go func() {
		msg.DeliveryAttempts++

		if msg.DeliveryAttempts == 1 {
			s.messageQueue <- msg
			return
		}

		time.Sleep(delay(msg.DeliveryAttempts))

		s.messageQueue <- msg
	}()

	return nil
}

// Recent retrieves recently published unsent messages.
func (s *service) Recent(ctx context.Context) (<-chan *wallet.Message, <-chan error) {
	errc := make(chan error, 1)

	go func() {
		defer close(errc)
		defer close(s.messageQueue)
		<-ctx.Done()
		errc <- ctx.Err()
	}()

	return s.messageQueue, errc
}

// delay calculates the amount of time to wait before
// publishing a message back into the queue.
func delay(deliveryAttempts int) time.Duration {
	// Maximum 3 second jitter
	// nolint:gosec // crypto/rand not necessary for jitter
	jitter := time.Duration(rand.Intn(3000)) * time.Millisecond
	minDelay := (time.Duration(deliveryAttempts) * time.Second) * 2
	countdown := jitter + minDelay
	maxCountdown := 30 * time.Second

	if countdown < maxCountdown {
		return countdown
	}

	return maxCountdown
}
