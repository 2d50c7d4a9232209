// Package kafka contains repositories backed by Kafka.
package kafka

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	kafkaLib "github.com/segmentio/kafka-go"

	wallet "github.com/idaralabs/Idara-Wallet"
)

// MessageRepository allows us to read and write to an OTP
// Kafka topic.
type MessageRepository struct {
	reader *kafkaLib.Reader
	writer *kafkaLib.Writer
}

// NewMessageRepository returns a new implementation of wallet.MessageRepository.
func NewMessageRepository(client *Client) wallet.MessageRepository {
	return &MessageRepository{
		reader: client.OTPReader,
		writer: client.OTPWriter,
	}
}

// Publish writes a message to topic `wallet.messages.otp`.
func (r *MessageRepository) Publish(ctx context.Context, msg *wallet.Message) error {
	b, err := json.Marshal(msg)
	if err != nil {
		return errors.Wrap(err, "failed to marshal message")
	}

	return r.writer.WriteMessages(ctx, kafkaLib.Message{
		Value: b,
	})
}

// Recent retrieves messages recently written to `wallet.messages.otp`.
func (r *MessageRepository) Recent(ctx context.Context) (<-chan *wallet.Message, <-chan error) {
	errc := make(chan error, 1)
	msgc := make(chan *wallet.Message)

	go func() {
		defer close(errc)
		defer close(msgc)

		for {
			kafkaMsg, err := r.reader.ReadMessage(ctx)
			if err != nil {
				errc <- errors.Wrap(err, "failed to read otp")
				break
			}

			var msg wallet.Message
			{
				err = json.Unmarshal(kafkaMsg.Value, &msg)
				if err != nil {
					errc <- errors.Wrap(err, "failed to unmarshal message")
					return
				}
			}

			select {
			case <-ctx.Done():
				errc <- ctx.Err()
				return
			case msgc <- &msg:
				continue
			}
		}
	}()

	return msgc, errc
}
