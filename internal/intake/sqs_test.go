package intake

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"github.com/nebula-hq/nebula-lead-relay/internal/logger"
)

type fakeSQSClient struct {
	messages []types.Message
	received *sqs.ReceiveMessageInput
	deleted  []string
	err      error
}

func (f *fakeSQSClient) ReceiveMessage(_ context.Context, params *sqs.ReceiveMessageInput, _ ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
	f.received = params
	if f.err != nil {
		return nil, f.err
	}
	return &sqs.ReceiveMessageOutput{Messages: f.messages}, nil
}

func (f *fakeSQSClient) DeleteMessage(_ context.Context, params *sqs.DeleteMessageInput, _ ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
	f.deleted = append(f.deleted, aws.ToString(params.ReceiptHandle))
	return &sqs.DeleteMessageOutput{}, nil
}

func newTestSource(client sqsAPI) *SQSSource {
	return &SQSSource{
		client:      client,
		queueURL:    "https://sqs.test/queue",
		waitSeconds: 20,
		log:         logger.NopLogger{},
	}
}

func TestReceiveDecodesEnvelopes(t *testing.T) {
	client := &fakeSQSClient{
		messages: []types.Message{
			{
				MessageId:     aws.String("m1"),
				ReceiptHandle: aws.String("rh1"),
				Body:          aws.String(`{"source":"Zillow","lead":{"first_name":"Jane","last_name":"Doe","email":"jane@example.com"}}`),
			},
		},
	}
	source := newTestSource(client)

	msgs, err := source.Receive(context.Background())
	if err != nil {
		t.Fatalf("Receive: %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("got %d messages", len(msgs))
	}

	msg := msgs[0]
	if msg.ID != "m1" || msg.ReceiptHandle != "rh1" {
		t.Fatalf("message metadata = %+v", msg)
	}
	if msg.Envelope.Source != "Zillow" {
		t.Fatalf("source = %q", msg.Envelope.Source)
	}
	if msg.Envelope.Lead == nil || msg.Envelope.Lead.FirstName != "Jane" {
		t.Fatalf("lead = %+v", msg.Envelope.Lead)
	}
	if msg.Envelope.ReceivedAt.IsZero() {
		t.Fatalf("ReceivedAt should be stamped")
	}

	if got := aws.ToString(client.received.QueueUrl); got != "https://sqs.test/queue" {
		t.Fatalf("QueueUrl = %s", got)
	}
	if client.received.WaitTimeSeconds != 20 {
		t.Fatalf("WaitTimeSeconds = %d", client.received.WaitTimeSeconds)
	}
}

func TestReceiveDropsPoisonMessages(t *testing.T) {
	client := &fakeSQSClient{
		messages: []types.Message{
			{
				MessageId:     aws.String("bad"),
				ReceiptHandle: aws.String("rh-bad"),
				Body:          aws.String(`{not json`),
			},
			{
				MessageId:     aws.String("good"),
				ReceiptHandle: aws.String("rh-good"),
				Body:          aws.String(`{"lead":{"first_name":"John","last_name":"Smith","phone":"305-555-1234"}}`),
			},
		},
	}
	source := newTestSource(client)

	msgs, err := source.Receive(context.Background())
	if err != nil {
		t.Fatalf("Receive: %v", err)
	}
	if len(msgs) != 1 || msgs[0].ID != "good" {
		t.Fatalf("poison message should be filtered, got %+v", msgs)
	}
	if len(client.deleted) != 1 || client.deleted[0] != "rh-bad" {
		t.Fatalf("poison message should be deleted, deleted = %v", client.deleted)
	}
}

func TestAckDeletes(t *testing.T) {
	client := &fakeSQSClient{}
	source := newTestSource(client)

	err := source.Ack(context.Background(), Message{ReceiptHandle: "rh1"})
	if err != nil {
		t.Fatalf("Ack: %v", err)
	}
	if len(client.deleted) != 1 || client.deleted[0] != "rh1" {
		t.Fatalf("deleted = %v", client.deleted)
	}
}

func TestNewSQSSourceRequiresQueueURL(t *testing.T) {
	if _, err := NewSQSSource(context.Background(), "", "us-east-1", 20, nil); err == nil {
		t.Fatalf("empty queue url should fail")
	}
}
