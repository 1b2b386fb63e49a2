package usecase

import (
	"context"

	"github.com/openclinic/medscout/internal/entity"
	"github.com/openclinic/medscout/internal/infra/integration/apollo"
	"github.com/openclinic/medscout/internal/infra/integration/nppes"
	"github.com/openclinic/medscout/internal/infra/queue"
)

// DirectoryGateway is the external provider registry. A transport or auth
// failure here aborts a recruitment run before anything is persisted.
type DirectoryGateway interface {
	Search(ctx context.Context, city, specialty string, limit int) ([]nppes.Candidate, error)
}

// EnrichmentGateway attempts to find a contact email for one candidate.
// Each call consumes one credit regardless of outcome. A (nil, nil) return
// means the service answered but found nothing usable.
type EnrichmentGateway interface {
	Enrich(ctx context.Context, in apollo.EnrichInput) (*apollo.EmailResult, error)
	RemainingCredits() int
}

// LeadRepositoryInterface is the persistent lead store. Upsert must be a
// single atomic merge keyed by NPI: descriptive fields overwrite, contact
// fields fill gaps only, enrichment status only moves forward.
type LeadRepositoryInterface interface {
	Upsert(ctx context.Context, lead *entity.Lead) (*entity.Lead, error)
	FindByNPI(ctx context.Context, npi string) (*entity.Lead, error)
	Find(ctx context.Context, filter entity.LeadFilter, page, pageSize int) ([]entity.Lead, int, error)
	Count(ctx context.Context, filter entity.LeadFilter) (int, error)
	KnownNPIs(ctx context.Context, city, specialty string) (map[string]bool, error)
	MarkEmailed(ctx context.Context, npi string) error
	CityBreakdown(ctx context.Context, filter entity.LeadFilter) ([]entity.CityAggregate, error)
}

// OutreachRepositoryInterface is append-only: the dispatch worker inserts,
// the dashboard counts.
type OutreachRepositoryInterface interface {
	Insert(ctx context.Context, rec *entity.OutreachRecord) error
	Count(ctx context.Context, filter entity.OutreachFilter) (int, error)
	CountByCity(ctx context.Context, filter entity.OutreachFilter) ([]entity.OutreachCityCount, error)
}

// OutreachProducerInterface hands a message to the dispatch queue.
type OutreachProducerInterface interface {
	PublishOutreach(ctx context.Context, payload queue.OutreachPayload) error
}
