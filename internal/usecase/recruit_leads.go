package usecase

import (
	"context"
	"log"
	"math"

	"github.com/openclinic/medscout/internal/entity"
	"github.com/openclinic/medscout/internal/infra/http/middleware"
	"github.com/openclinic/medscout/internal/infra/integration/apollo"
	"github.com/openclinic/medscout/internal/infra/integration/nppes"
)

// RecruitLeadsUseCase drives one recruitment run end to end: dedup gate,
// registry search, budgeted enrichment, reconcile-and-persist, summary.
type RecruitLeadsUseCase struct {
	Leads      LeadRepositoryInterface
	Directory  DirectoryGateway
	Enricher   EnrichmentGateway
	Reconciler *Reconciler
}

func NewRecruitLeadsUseCase(
	leads LeadRepositoryInterface,
	directory DirectoryGateway,
	enricher EnrichmentGateway,
) *RecruitLeadsUseCase {
	return &RecruitLeadsUseCase{
		Leads:      leads,
		Directory:  directory,
		Enricher:   enricher,
		Reconciler: NewReconciler(leads),
	}
}

func (uc *RecruitLeadsUseCase) Execute(ctx context.Context, input RecruitInput) (*RecruitmentResult, error) {
	if errs := ValidateRecruitInput(&input); len(errs) > 0 {
		return nil, joinValidationErrors(errs)
	}

	// Dedup gate: never re-spend registry or enrichment budget on providers
	// we already know in this scope.
	// Leads store the taxonomy description, not the friendly specialty name.
	known, err := uc.Leads.KnownNPIs(ctx, input.City, nppes.MapSpecialtyToTaxonomy(input.Specialty))
	if err != nil {
		return nil, &TechnicalError{Code: CodeDatabase, Message: "dedup query failed: " + err.Error()}
	}

	candidates, err := uc.fetchCandidates(ctx, input, known)
	if err != nil {
		// Registry down: abort before any partial persistence.
		middleware.RecordIntegrationError("nppes")
		return nil, &DomainError{Code: CodeSourceUnavailable, Message: "directory source unavailable: " + err.Error()}
	}

	var recordErrors []RecordError
	candidates, recordErrors = dedupeBatch(candidates, recordErrors)

	// Enrichment pass: sequential against the shared budget counter so a
	// single run can never over-spend it.
	budget := uc.Enricher.RemainingCredits()
	if input.EnrichmentBudget > 0 && input.EnrichmentBudget < budget {
		budget = input.EnrichmentBudget
	}
	if input.SkipEnrichment {
		budget = 0
	}

	spent := 0
	enrichments := make([]*apollo.EmailResult, len(candidates))
	attempted := make([]bool, len(candidates))

	for i, c := range candidates {
		if c.Email != "" || spent >= budget {
			continue
		}
		res, err := uc.Enricher.Enrich(ctx, apollo.EnrichInput{
			FirstName:        c.FirstName,
			LastName:         c.LastName,
			OrganizationName: c.ClinicName,
			City:             c.City,
			State:            c.State,
		})
		spent++
		attempted[i] = true
		middleware.RecordApolloCredit()
		if err != nil {
			// Per-candidate failure: the lead is still persisted as
			// apollo_searched and the run continues.
			log.Printf("[recruit] enrichment failed for %s: %v", c.NPI, err)
			middleware.RecordIntegrationError("apollo")
			continue
		}
		enrichments[i] = res
	}

	result := &RecruitmentResult{
		RemainingCredits: budget - spent,
		Leads:            []entity.Lead{},
		Errors:           recordErrors,
	}

	for i, c := range candidates {
		lead, err := uc.Reconciler.Persist(ctx, c, enrichments[i], attempted[i])
		if err != nil {
			result.Errors = append(result.Errors, RecordError{NPI: c.NPI, Name: c.Name, Reason: err.Error()})
			continue
		}
		result.Leads = append(result.Leads, *lead)
		result.TotalLeads++
		if lead.HasEmail {
			result.WithEmail++
		} else {
			result.WithoutEmail++
		}
	}

	result.EmailCoveragePercent = coveragePercent(result.WithEmail, result.TotalLeads)
	middleware.RecordLeadsRecruited(result.TotalLeads)

	log.Printf("[recruit] %s/%s: %d leads (%d with email), %d credits left",
		input.City, input.Specialty, result.TotalLeads, result.WithEmail, result.RemainingCredits)

	return result, nil
}

// fetchCandidates asks the registry for enough records to satisfy the
// requested count after excluding already-known NPIs. One bounded expansion
// retry, never a busy loop: the registry may simply not have more providers.
func (uc *RecruitLeadsUseCase) fetchCandidates(ctx context.Context, input RecruitInput, known map[string]bool) ([]nppes.Candidate, error) {
	limit := input.Count + len(known)
	if limit > maxRecruitCount {
		limit = maxRecruitCount
	}

	batch, err := uc.Directory.Search(ctx, input.City, input.Specialty, limit)
	if err != nil {
		return nil, err
	}
	fresh := excludeKnown(batch, known)

	if len(fresh) < input.Count && len(batch) == limit && limit < maxRecruitCount {
		expanded := limit * 2
		if expanded > maxRecruitCount {
			expanded = maxRecruitCount
		}
		batch, err = uc.Directory.Search(ctx, input.City, input.Specialty, expanded)
		if err != nil {
			return nil, err
		}
		fresh = excludeKnown(batch, known)
	}

	if len(fresh) > input.Count {
		fresh = fresh[:input.Count]
	}
	return fresh, nil
}

func excludeKnown(batch []nppes.Candidate, known map[string]bool) []nppes.Candidate {
	fresh := make([]nppes.Candidate, 0, len(batch))
	for _, c := range batch {
		if known[c.NPI] {
			continue
		}
		fresh = append(fresh, c)
	}
	return fresh
}

// dedupeBatch collapses repeated NPIs within one registry batch,
// last-write-wins, and drops candidates without a usable identifier up
// front so they never consume enrichment budget.
func dedupeBatch(batch []nppes.Candidate, errs []RecordError) ([]nppes.Candidate, []RecordError) {
	out := make([]nppes.Candidate, 0, len(batch))
	index := make(map[string]int, len(batch))
	for _, c := range batch {
		if err := ValidateCandidate(c); err != nil {
			errs = append(errs, RecordError{NPI: c.NPI, Name: c.Name, Reason: err.Error()})
			continue
		}
		if i, seen := index[c.NPI]; seen {
			out[i] = c
			continue
		}
		index[c.NPI] = len(out)
		out = append(out, c)
	}
	return out, errs
}

func coveragePercent(withEmail, total int) float64 {
	if total == 0 {
		return 0.0
	}
	return math.Round(float64(withEmail)/float64(total)*1000) / 10
}
