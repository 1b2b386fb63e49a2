package usecase

import (
	"context"
	"errors"

	"github.com/openclinic/medscout/internal/entity"
	"github.com/openclinic/medscout/internal/infra/queue"
)

// SendOutreachUseCase enqueues one outreach message for dispatch. The
// actual SMTP send and the outreach record insert happen in the queue
// worker; this path only validates, resolves the receiver and publishes.
type SendOutreachUseCase struct {
	Leads    LeadRepositoryInterface
	Producer OutreachProducerInterface
}

func NewSendOutreachUseCase(leads LeadRepositoryInterface, producer OutreachProducerInterface) *SendOutreachUseCase {
	return &SendOutreachUseCase{Leads: leads, Producer: producer}
}

func (uc *SendOutreachUseCase) Execute(ctx context.Context, input SendOutreachInput) (*SendOutreachOutput, error) {
	if errs := ValidateSendOutreachInput(input); len(errs) > 0 {
		return nil, joinValidationErrors(errs)
	}

	receiver := input.Receiver
	if input.LeadNPI != "" {
		lead, err := uc.Leads.FindByNPI(ctx, input.LeadNPI)
		if errors.Is(err, entity.ErrLeadNotFound) {
			return nil, &DomainError{Code: CodeNotFound, Message: "lead not found: " + input.LeadNPI}
		}
		if err != nil {
			return nil, &TechnicalError{Code: CodeDatabase, Message: err.Error()}
		}
		if receiver == "" {
			if !lead.HasEmail {
				return nil, &DomainError{Code: CodeValidation, Message: "lead has no email and no receiver was given"}
			}
			receiver = lead.Email
		}
	}

	payload := queue.OutreachPayload{
		LeadNPI:  input.LeadNPI,
		Sender:   input.Sender,
		Receiver: receiver,
		Subject:  input.Subject,
		Body:     input.Body,
	}
	if err := uc.Producer.PublishOutreach(ctx, payload); err != nil {
		return nil, &TechnicalError{Code: CodeQueue, Message: "failed to enqueue outreach: " + err.Error()}
	}

	return &SendOutreachOutput{Status: "queued", Receiver: receiver}, nil
}
