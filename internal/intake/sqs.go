package intake

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/nebula-hq/nebula-lead-relay/internal/domain"
	"github.com/nebula-hq/nebula-lead-relay/internal/logger"
)

const maxBatchSize = 10

// Message is one intake envelope pulled off the queue. ReceiptHandle must be
// passed back to Ack once the lead has been relayed.
type Message struct {
	ID            string
	ReceiptHandle string
	Envelope      domain.LeadMessage
}

// sqsAPI is the subset of the SQS client the source uses.
type sqsAPI interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// SQSSource long-polls an SQS queue for lead messages.
type SQSSource struct {
	client      sqsAPI
	queueURL    string
	waitSeconds int32
	log         logger.Logger
}

// NewSQSSource builds a source against the given queue using the default AWS
// credential chain.
func NewSQSSource(ctx context.Context, queueURL, region string, waitSeconds int64, log logger.Logger) (*SQSSource, error) {
	if strings.TrimSpace(queueURL) == "" {
		return nil, fmt.Errorf("intake queue url is empty")
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	awsCfg, err := awscfg.LoadDefaultConfig(ctx, awscfg.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return &SQSSource{
		client:      sqs.NewFromConfig(awsCfg),
		queueURL:    queueURL,
		waitSeconds: int32(waitSeconds),
		log:         log,
	}, nil
}

// Receive pulls up to one batch of messages, decoding each body into a
// LeadMessage. Bodies that are not valid envelopes are acked immediately so a
// poison message cannot wedge the queue; everything else redelivers until the
// relay acks it.
func (s *SQSSource) Receive(ctx context.Context) ([]Message, error) {
	out, err := s.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            aws.String(s.queueURL),
		MaxNumberOfMessages: maxBatchSize,
		WaitTimeSeconds:     s.waitSeconds,
	})
	if err != nil {
		return nil, fmt.Errorf("receive from sqs: %w", err)
	}

	msgs := make([]Message, 0, len(out.Messages))
	for _, raw := range out.Messages {
		var env domain.LeadMessage
		if err := json.Unmarshal([]byte(aws.ToString(raw.Body)), &env); err != nil {
			s.log.WarnObj("dropping undecodable intake message", "intake_decode_error", map[string]any{
				"message_id": aws.ToString(raw.MessageId),
				"error":      err.Error(),
			})
			if ackErr := s.delete(ctx, aws.ToString(raw.ReceiptHandle)); ackErr != nil {
				s.log.ErrorObj("failed to drop undecodable message", "error", ackErr)
			}
			continue
		}
		if env.ReceivedAt.IsZero() {
			env.ReceivedAt = time.Now().UTC()
		}
		msgs = append(msgs, Message{
			ID:            aws.ToString(raw.MessageId),
			ReceiptHandle: aws.ToString(raw.ReceiptHandle),
			Envelope:      env,
		})
	}
	return msgs, nil
}

// Ack removes the message from the queue after a successful relay.
func (s *SQSSource) Ack(ctx context.Context, msg Message) error {
	return s.delete(ctx, msg.ReceiptHandle)
}

func (s *SQSSource) delete(ctx context.Context, receiptHandle string) error {
	_, err := s.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(s.queueURL),
		ReceiptHandle: aws.String(receiptHandle),
	})
	if err != nil {
		return fmt.Errorf("delete sqs message: %w", err)
	}
	return nil
}
