package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/openclinic/medscout/internal/entity"
	"github.com/openclinic/medscout/internal/infra/queue"
	"github.com/openclinic/medscout/internal/usecase"
)

type MockOutreachProducer struct {
	mock.Mock
}

func (m *MockOutreachProducer) PublishOutreach(ctx context.Context, payload queue.OutreachPayload) error {
	args := m.Called(ctx, payload)
	return args.Error(0)
}

func TestSendOutreach(t *testing.T) {
	ctx := context.Background()

	validInput := func() usecase.SendOutreachInput {
		return usecase.SendOutreachInput{
			LeadNPI: "1234567890",
			Sender:  "scout@openclinic.example",
			Subject: "Partnership",
			Body:    "Hello Dr. Doe",
		}
	}

	seededStore := func(t *testing.T, email string) *memoryLeadStore {
		t.Helper()
		store, _ := newMemoryStores()
		seedLead(t, store, "1234567890", "Austin", email, "", entity.StatusScoutOnly, time.Now().UTC())
		return store
	}

	t.Run("Receiver Defaults To Lead Email", func(t *testing.T) {
		store := seededStore(t, "jane@clinic.example")
		producer := new(MockOutreachProducer)
		producer.On("PublishOutreach", mock.Anything, queue.OutreachPayload{
			LeadNPI:  "1234567890",
			Sender:   "scout@openclinic.example",
			Receiver: "jane@clinic.example",
			Subject:  "Partnership",
			Body:     "Hello Dr. Doe",
		}).Return(nil)

		uc := usecase.NewSendOutreachUseCase(store, producer)
		out, err := uc.Execute(ctx, validInput())

		assert.NoError(t, err)
		assert.Equal(t, "queued", out.Status)
		assert.Equal(t, "jane@clinic.example", out.Receiver)
		producer.AssertExpectations(t)
	})

	t.Run("Explicit Receiver Overrides Lead Email", func(t *testing.T) {
		store := seededStore(t, "jane@clinic.example")
		producer := new(MockOutreachProducer)
		producer.On("PublishOutreach", mock.Anything, mock.Anything).Return(nil)

		input := validInput()
		input.Receiver = "office@clinic.example"

		uc := usecase.NewSendOutreachUseCase(store, producer)
		out, err := uc.Execute(ctx, input)

		assert.NoError(t, err)
		assert.Equal(t, "office@clinic.example", out.Receiver)
	})

	t.Run("Lead Without Email Needs Explicit Receiver", func(t *testing.T) {
		store := seededStore(t, "")
		producer := new(MockOutreachProducer)

		uc := usecase.NewSendOutreachUseCase(store, producer)
		out, err := uc.Execute(ctx, validInput())

		assert.Nil(t, out)
		assert.Equal(t, usecase.CodeValidation, usecase.DomainErrorCode(err))
		producer.AssertNotCalled(t, "PublishOutreach", mock.Anything, mock.Anything)
	})

	t.Run("Unknown Lead", func(t *testing.T) {
		store, _ := newMemoryStores()
		producer := new(MockOutreachProducer)

		uc := usecase.NewSendOutreachUseCase(store, producer)
		out, err := uc.Execute(ctx, validInput())

		assert.Nil(t, out)
		assert.Equal(t, usecase.CodeNotFound, usecase.DomainErrorCode(err))
	})

	t.Run("No Lead Link Requires Receiver", func(t *testing.T) {
		store, _ := newMemoryStores()
		producer := new(MockOutreachProducer)

		input := validInput()
		input.LeadNPI = ""

		uc := usecase.NewSendOutreachUseCase(store, producer)
		out, err := uc.Execute(ctx, input)

		assert.Nil(t, out)
		assert.Equal(t, usecase.CodeValidation, usecase.DomainErrorCode(err))
	})

	t.Run("Standalone Send Without Lead", func(t *testing.T) {
		store, _ := newMemoryStores()
		producer := new(MockOutreachProducer)
		producer.On("PublishOutreach", mock.Anything, mock.Anything).Return(nil)

		input := validInput()
		input.LeadNPI = ""
		input.Receiver = "anyone@clinic.example"

		uc := usecase.NewSendOutreachUseCase(store, producer)
		out, err := uc.Execute(ctx, input)

		assert.NoError(t, err)
		assert.Equal(t, "queued", out.Status)
	})

	t.Run("Queue Failure Surfaces As Technical Error", func(t *testing.T) {
		store := seededStore(t, "jane@clinic.example")
		producer := new(MockOutreachProducer)
		producer.On("PublishOutreach", mock.Anything, mock.Anything).Return(errors.New("channel closed"))

		uc := usecase.NewSendOutreachUseCase(store, producer)
		out, err := uc.Execute(ctx, validInput())

		assert.Nil(t, out)
		assert.True(t, usecase.IsTechnicalError(err))
	})
}
