package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/openclinic/medscout/internal/entity"
	"github.com/openclinic/medscout/internal/infra/integration/apollo"
	"github.com/openclinic/medscout/internal/infra/integration/nppes"
)

// Reconciler merges directory candidates and enrichment results into
// persisted leads. The registry is authoritative for descriptive data;
// enrichment only fills contact gaps. Persistence is an atomic upsert keyed
// by NPI, so two concurrent runs observing the same provider converge on one
// row.
type Reconciler struct {
	Leads LeadRepositoryInterface
}

func NewReconciler(leads LeadRepositoryInterface) *Reconciler {
	return &Reconciler{Leads: leads}
}

// BuildObservation turns one candidate plus an optional enrichment result
// into the lead state observed by this run. `attempted` marks that an
// enrichment call was issued, successful or not; it drives the
// scout_only / apollo_searched distinction.
func BuildObservation(c nppes.Candidate, enr *apollo.EmailResult, attempted bool, now time.Time) *entity.Lead {
	lead := &entity.Lead{
		ID:               uuid.New().String(),
		NPI:              c.NPI,
		Name:             c.Name,
		ClinicName:       c.ClinicName,
		Address:          c.Address,
		City:             c.City,
		State:            c.State,
		Specialty:        c.Specialty,
		Phone:            c.Phone,
		Email:            c.Email,
		Website:          c.Website,
		DirectAddress:    c.DirectAddress,
		EnrichmentStatus: entity.StatusScoutOnly,
		CreatedAt:        now,
	}

	if attempted {
		lead.EnrichmentStatus = entity.StatusApolloSearched
		t := now
		lead.LastEnrichedAt = &t
	}

	if enr != nil && enr.Email != "" {
		// Directory email wins when both sources supply one.
		if lead.Email == "" {
			lead.Email = enr.Email
		}
		lead.EnrichmentStatus = entity.StatusApolloEnriched
		lead.ApolloConfidence = enr.Confidence
		if lead.ClinicName == "" {
			lead.ClinicName = enr.Organization
		}
		if lead.Website == "" {
			lead.Website = enr.WebsiteURL
		}
		lead.LinkedinURL = enr.LinkedinURL
	}

	lead.HasEmail = lead.Email != ""
	return lead
}

// MergeOnto applies the merge policy against the stored lead. It is the pure
// reference for what the repository's ON CONFLICT clause does in SQL, and
// what the in-memory store used in tests does in Go.
//
// Rules: registry descriptive fields overwrite; optional fields fill gaps
// only; a stored email is never erased by an incoming empty one; the
// enrichment status never regresses.
func MergeOnto(existing, incoming *entity.Lead) *entity.Lead {
	if existing == nil {
		out := *incoming
		return &out
	}

	out := *existing
	out.Name = incoming.Name
	out.Address = incoming.Address
	out.City = incoming.City
	out.State = incoming.State
	out.Specialty = incoming.Specialty

	out.ClinicName = firstNonEmpty(incoming.ClinicName, existing.ClinicName)
	out.Phone = firstNonEmpty(incoming.Phone, existing.Phone)
	out.Website = firstNonEmpty(incoming.Website, existing.Website)
	out.LinkedinURL = firstNonEmpty(incoming.LinkedinURL, existing.LinkedinURL)
	out.DirectAddress = firstNonEmpty(incoming.DirectAddress, existing.DirectAddress)

	out.Email = firstNonEmpty(incoming.Email, existing.Email)
	out.HasEmail = out.Email != ""
	if incoming.Email != "" {
		out.ApolloConfidence = incoming.ApolloConfidence
	}

	if entity.StatusRank(incoming.EnrichmentStatus) > entity.StatusRank(existing.EnrichmentStatus) {
		out.EnrichmentStatus = incoming.EnrichmentStatus
	}
	if incoming.LastEnrichedAt != nil {
		out.LastEnrichedAt = incoming.LastEnrichedAt
	}

	// Bookkeeping stays with the stored row.
	out.ID = existing.ID
	out.CreatedAt = existing.CreatedAt
	out.IsEmailed = existing.IsEmailed
	out.Visited = existing.Visited
	return &out
}

// Persist validates, builds the observation and upserts it. An identifier
// race is retried once against the latest stored version; a second conflict
// surfaces as a record-level failure.
func (r *Reconciler) Persist(ctx context.Context, c nppes.Candidate, enr *apollo.EmailResult, attempted bool) (*entity.Lead, error) {
	if err := ValidateCandidate(c); err != nil {
		return nil, err
	}

	observed := BuildObservation(c, enr, attempted, time.Now().UTC())

	lead, err := r.Leads.Upsert(ctx, observed)
	if errors.Is(err, entity.ErrDuplicateNPI) {
		lead, err = r.Leads.Upsert(ctx, observed)
	}
	if err != nil {
		return nil, err
	}
	return lead, nil
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
