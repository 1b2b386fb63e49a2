package usecase_test

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/openclinic/medscout/internal/entity"
	"github.com/openclinic/medscout/internal/usecase"
)

// memoryLeadStore is an in-memory stand-in for the lead repository. Its
// Upsert applies usecase.MergeOnto, i.e. the same merge contract the
// Postgres ON CONFLICT clause implements.
type memoryLeadStore struct {
	mu        sync.Mutex
	leads     map[string]*entity.Lead
	order     []string // npi insertion order
	outreach  *memoryOutreachStore
	upsertErr error // returned once, then cleared (conflict retry tests)
}

// memoryOutreachStore is the append-only counterpart for outreach records.
type memoryOutreachStore struct {
	mu      sync.Mutex
	records []entity.OutreachRecord
	leads   *memoryLeadStore
}

func newMemoryStores() (*memoryLeadStore, *memoryOutreachStore) {
	ls := &memoryLeadStore{leads: make(map[string]*entity.Lead)}
	os := &memoryOutreachStore{leads: ls}
	ls.outreach = os
	return ls, os
}

func (s *memoryLeadStore) Upsert(ctx context.Context, lead *entity.Lead) (*entity.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.upsertErr != nil {
		err := s.upsertErr
		s.upsertErr = nil
		return nil, err
	}

	existing := s.leads[lead.NPI]
	merged := usecase.MergeOnto(existing, lead)
	if existing == nil {
		s.order = append(s.order, lead.NPI)
	}
	s.leads[lead.NPI] = merged

	out := *merged
	return &out, nil
}

func (s *memoryLeadStore) FindByNPI(ctx context.Context, npi string) (*entity.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lead, ok := s.leads[npi]
	if !ok {
		return nil, entity.ErrLeadNotFound
	}
	out := *lead
	return &out, nil
}

func (s *memoryLeadStore) Find(ctx context.Context, filter entity.LeadFilter, page, pageSize int) ([]entity.Lead, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	matched := s.matching(filter)
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	start := (page - 1) * pageSize
	if start >= total {
		return nil, total, nil
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (s *memoryLeadStore) Count(ctx context.Context, filter entity.LeadFilter) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.matching(filter)), nil
}

func (s *memoryLeadStore) KnownNPIs(ctx context.Context, city, specialty string) (map[string]bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	known := make(map[string]bool)
	for npi, lead := range s.leads {
		if !strings.EqualFold(lead.City, city) {
			continue
		}
		if specialty != "" && !strings.EqualFold(lead.Specialty, specialty) {
			continue
		}
		known[npi] = true
	}
	return known, nil
}

func (s *memoryLeadStore) MarkEmailed(ctx context.Context, npi string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	lead, ok := s.leads[npi]
	if !ok {
		return entity.ErrLeadNotFound
	}
	lead.IsEmailed = true
	return nil
}

func (s *memoryLeadStore) CityBreakdown(ctx context.Context, filter entity.LeadFilter) ([]entity.CityAggregate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	byCity := make(map[string]*entity.CityAggregate)
	for _, lead := range s.matching(filter) {
		agg, ok := byCity[lead.City]
		if !ok {
			agg = &entity.CityAggregate{City: lead.City}
			byCity[lead.City] = agg
		}
		agg.TotalLeads++
		if lead.HasEmail {
			agg.WithEmail++
		} else {
			agg.WithoutEmail++
		}
		switch lead.EnrichmentStatus {
		case entity.StatusApolloEnriched:
			agg.ApolloEnriched++
		case entity.StatusApolloSearched:
			agg.ApolloSearched++
		}
		if !s.outreach.hasRecordFor(lead.NPI) {
			agg.LeadsLeft++
		}
	}

	out := make([]entity.CityAggregate, 0, len(byCity))
	for _, agg := range byCity {
		out = append(out, *agg)
	}
	return out, nil
}

func (s *memoryLeadStore) matching(filter entity.LeadFilter) []entity.Lead {
	var out []entity.Lead
	for _, npi := range s.order {
		lead := s.leads[npi]
		if s.matchLead(*lead, filter) {
			out = append(out, *lead)
		}
	}
	return out
}

func (s *memoryLeadStore) matchLead(l entity.Lead, f entity.LeadFilter) bool {
	if f.City != "" && !strings.EqualFold(l.City, f.City) {
		return false
	}
	if f.Specialty != "" && !strings.EqualFold(l.Specialty, f.Specialty) {
		return false
	}
	if f.HasEmail != nil && l.HasEmail != *f.HasEmail {
		return false
	}
	if f.EnrichmentStatus != "" && l.EnrichmentStatus != f.EnrichmentStatus {
		return false
	}
	if f.WithPhone && l.Phone == "" {
		return false
	}
	if f.CreatedFrom != nil && l.CreatedAt.Before(*f.CreatedFrom) {
		return false
	}
	if f.CreatedTo != nil && !l.CreatedAt.Before(*f.CreatedTo) {
		return false
	}
	if f.NotEmailed && s.outreach.hasRecordFor(l.NPI) {
		return false
	}
	return true
}

func (s *memoryOutreachStore) Insert(ctx context.Context, rec *entity.OutreachRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, *rec)
	return nil
}

func (s *memoryOutreachStore) Count(ctx context.Context, filter entity.OutreachFilter) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, rec := range s.records {
		if matchOutreach(rec, filter) {
			n++
		}
	}
	return n, nil
}

func (s *memoryOutreachStore) CountByCity(ctx context.Context, filter entity.OutreachFilter) ([]entity.OutreachCityCount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	byCity := make(map[string]*entity.OutreachCityCount)
	for _, rec := range s.records {
		if !matchOutreach(rec, filter) || rec.LeadNPI == "" {
			continue
		}
		lead, ok := s.leads.leads[rec.LeadNPI]
		if !ok {
			continue
		}
		c, ok := byCity[lead.City]
		if !ok {
			c = &entity.OutreachCityCount{City: lead.City}
			byCity[lead.City] = c
		}
		if rec.Status == entity.OutreachStatusSent {
			c.Sent++
		} else {
			c.Failed++
		}
	}

	out := make([]entity.OutreachCityCount, 0, len(byCity))
	for _, c := range byCity {
		out = append(out, *c)
	}
	return out, nil
}

func (s *memoryOutreachStore) hasRecordFor(npi string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.records {
		if rec.LeadNPI == npi {
			return true
		}
	}
	return false
}

func matchOutreach(rec entity.OutreachRecord, f entity.OutreachFilter) bool {
	if f.Status != "" && rec.Status != f.Status {
		return false
	}
	if f.SentFrom != nil && rec.SentAt.Before(*f.SentFrom) {
		return false
	}
	if f.SentTo != nil && !rec.SentAt.Before(*f.SentTo) {
		return false
	}
	return true
}
