package queue

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/openclinic/medscout/internal/entity"
	"github.com/openclinic/medscout/internal/infra/http/middleware"
)

// MailSender is the SMTP side of dispatch.
type MailSender interface {
	SendOutreach(to, from, subject, body string) error
}

// OutreachStore records every attempt, sent or failed.
type OutreachStore interface {
	Insert(ctx context.Context, rec *entity.OutreachRecord) error
}

// LeadMarker flips the is_emailed flag after a successful send.
type LeadMarker interface {
	MarkEmailed(ctx context.Context, npi string) error
}

// Worker consumes queued outreach messages, sends them over SMTP and writes
// the outreach record. A failed send is recorded as failed and acked: the
// record is the source of truth, retrying blind would double-send.
type Worker struct {
	Channel *amqp.Channel
	Mailer  MailSender
	Records OutreachStore
	Leads   LeadMarker
}

func NewWorker(ch *amqp.Channel, mailer MailSender, records OutreachStore, leads LeadMarker) *Worker {
	return &Worker{Channel: ch, Mailer: mailer, Records: records, Leads: leads}
}

func (w *Worker) Start(queueName string) {
	msgs, err := w.Channel.Consume(
		queueName,
		"",    // consumer
		false, // manual ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		log.Fatalf("[worker] failed to register consumer: %s", err)
	}

	forever := make(chan bool)

	go func() {
		for d := range msgs {
			var payload OutreachPayload
			if err := json.Unmarshal(d.Body, &payload); err != nil {
				log.Printf("[worker] malformed message, dropping: %s", err)
				d.Nack(false, false)
				continue
			}

			if err := w.processMessage(context.Background(), payload); err != nil {
				log.Printf("[worker] failed to record outreach for %s: %s", payload.Receiver, err)
				d.Nack(false, false)
				continue
			}
			d.Ack(false)
		}
	}()

	log.Printf("[worker] waiting on queue %q", queueName)
	<-forever
}

func (w *Worker) processMessage(ctx context.Context, payload OutreachPayload) error {
	status := entity.OutreachStatusSent
	if err := w.Mailer.SendOutreach(payload.Receiver, payload.Sender, payload.Subject, payload.Body); err != nil {
		log.Printf("[worker] smtp send to %s failed: %s", payload.Receiver, err)
		middleware.RecordIntegrationError("smtp")
		status = entity.OutreachStatusFailed
	}
	middleware.RecordOutreachEmail(status)

	rec := &entity.OutreachRecord{
		ID:       uuid.New().String(),
		LeadNPI:  payload.LeadNPI,
		Sender:   payload.Sender,
		Receiver: payload.Receiver,
		Subject:  payload.Subject,
		Body:     payload.Body,
		Status:   status,
		SentAt:   time.Now().UTC(),
	}
	if err := w.Records.Insert(ctx, rec); err != nil {
		return err
	}

	if payload.LeadNPI != "" && status == entity.OutreachStatusSent {
		if err := w.Leads.MarkEmailed(ctx, payload.LeadNPI); err != nil {
			// The record exists; a stale flag is recoverable.
			log.Printf("[worker] could not mark lead %s as emailed: %s", payload.LeadNPI, err)
		}
	}
	return nil
}
