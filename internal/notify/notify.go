package notify

import (
	"context"
	"log"

	"github.com/ephremt/travelbook/internal/kafka"
)

// Dispatcher is the side channel for payment confirmations. Delivery is
// fire-and-forget at-least-once; the payment core only depends on this
// interface and never fails a settlement because dispatch failed.
type Dispatcher interface {
	PaymentConfirmed(ctx context.Context, event kafka.PaymentEvent) error
}

type Publisher interface {
	Publish(ctx context.Context, topic, key string, payload interface{}) error
}

type EmailSender interface {
	Send(ctx context.Context, event kafka.PaymentEvent) error
}

// QueueDispatcher publishes confirmation events to the notifications topic
// for the worker to deliver. When the queue is unavailable it falls back to
// sending the email synchronously; a failure of the fallback itself is only
// logged so the caller's settlement result is unaffected.
type QueueDispatcher struct {
	producer Publisher
	topic    string
	fallback EmailSender
}

func NewQueueDispatcher(producer Publisher, topic string, fallback EmailSender) *QueueDispatcher {
	return &QueueDispatcher{producer: producer, topic: topic, fallback: fallback}
}

func (d *QueueDispatcher) PaymentConfirmed(ctx context.Context, event kafka.PaymentEvent) error {
	event.Type = "payment_confirmed"
	if err := d.producer.Publish(ctx, d.topic, event.Reference, event); err != nil {
		log.Printf("queue publish failed for payment %s, sending email synchronously: %v", event.Reference, err)
		if d.fallback != nil {
			if sendErr := d.fallback.Send(ctx, event); sendErr != nil {
				log.Printf("synchronous confirmation email failed for payment %s: %v", event.Reference, sendErr)
			}
		}
	}
	return nil
}

// SyncDispatcher sends the confirmation email in-line. Used when no queue
// is configured.
type SyncDispatcher struct {
	sender EmailSender
}

func NewSyncDispatcher(sender EmailSender) *SyncDispatcher {
	return &SyncDispatcher{sender: sender}
}

func (d *SyncDispatcher) PaymentConfirmed(ctx context.Context, event kafka.PaymentEvent) error {
	event.Type = "payment_confirmed"
	if err := d.sender.Send(ctx, event); err != nil {
		log.Printf("confirmation email failed for payment %s: %v", event.Reference, err)
	}
	return nil
}

var (
	_ Dispatcher = (*QueueDispatcher)(nil)
	_ Dispatcher = (*SyncDispatcher)(nil)
)
