package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/openclinic/medscout/internal/entity"
	"github.com/openclinic/medscout/internal/usecase"
)

func seedLead(t *testing.T, store *memoryLeadStore, npi, city, email, phone, status string, createdAt time.Time) {
	t.Helper()
	_, err := store.Upsert(context.Background(), &entity.Lead{
		ID:               uuid.New().String(),
		NPI:              npi,
		Name:             "Lead " + npi,
		Address:          "100 Main St",
		City:             city,
		State:            "TX",
		Specialty:        "Internal Medicine",
		Phone:            phone,
		Email:            email,
		HasEmail:         email != "",
		EnrichmentStatus: status,
		CreatedAt:        createdAt,
	})
	assert.NoError(t, err)
}

func seedOutreach(t *testing.T, store *memoryOutreachStore, npi, status string, sentAt time.Time) {
	t.Helper()
	err := store.Insert(context.Background(), &entity.OutreachRecord{
		ID:       uuid.New().String(),
		LeadNPI:  npi,
		Sender:   "scout@openclinic.example",
		Receiver: "someone@clinic.example",
		Subject:  "Hello",
		Body:     "Hi there",
		Status:   status,
		SentAt:   sentAt,
	})
	assert.NoError(t, err)
}

func TestResolveWindow(t *testing.T) {
	t.Run("Nil Bounds Stay Unconstrained", func(t *testing.T) {
		w := usecase.ResolveWindow(nil, nil)
		assert.Nil(t, w.From)
		assert.Nil(t, w.To)
	})

	t.Run("End Day Is Inclusive", func(t *testing.T) {
		end := time.Date(2026, 8, 20, 15, 30, 0, 0, time.UTC)
		w := usecase.ResolveWindow(nil, &end)

		assert.Equal(t, time.Date(2026, 8, 21, 0, 0, 0, 0, time.UTC), *w.To)
	})

	t.Run("Start Truncates To Midnight", func(t *testing.T) {
		start := time.Date(2026, 8, 14, 9, 45, 0, 0, time.UTC)
		w := usecase.ResolveWindow(&start, nil)

		assert.Equal(t, time.Date(2026, 8, 14, 0, 0, 0, 0, time.UTC), *w.From)
	})
}

func TestDashboardStats(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()

	t.Run("Stats Defaults To Last Seven Days", func(t *testing.T) {
		leads, outreach := newMemoryStores()
		seedLead(t, leads, "1000000001", "Austin", "a@x.example", "", entity.StatusApolloEnriched, now.AddDate(0, 0, -2))
		seedLead(t, leads, "1000000002", "Austin", "", "", entity.StatusScoutOnly, now.AddDate(0, 0, -30))

		uc := usecase.NewDashboardStatsUseCase(leads, outreach)
		stats, err := uc.Stats(ctx, nil, nil)

		assert.NoError(t, err)
		assert.Equal(t, 1, stats.TotalLeads, "leads outside the default window must not count")
		assert.Equal(t, 1, stats.WithEmail)
		assert.Equal(t, 0, stats.WithoutEmail)
	})

	t.Run("MainStats Is All Time", func(t *testing.T) {
		leads, outreach := newMemoryStores()
		seedLead(t, leads, "1000000001", "Austin", "a@x.example", "", entity.StatusApolloEnriched, now.AddDate(0, 0, -2))
		seedLead(t, leads, "1000000002", "Austin", "", "", entity.StatusScoutOnly, now.AddDate(0, 0, -30))

		uc := usecase.NewDashboardStatsUseCase(leads, outreach)
		stats, err := uc.MainStats(ctx, nil, nil)

		assert.NoError(t, err)
		assert.Equal(t, 2, stats.TotalLeads)
		assert.Equal(t, 1, stats.ApolloEnrichedLeads)
	})

	t.Run("Explicit Window Bounds", func(t *testing.T) {
		leads, outreach := newMemoryStores()
		seedLead(t, leads, "1000000001", "Austin", "", "", entity.StatusScoutOnly,
			time.Date(2026, 8, 10, 23, 0, 0, 0, time.UTC))
		seedLead(t, leads, "1000000002", "Austin", "", "", entity.StatusScoutOnly,
			time.Date(2026, 8, 11, 0, 30, 0, 0, time.UTC))

		start := time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)
		end := time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)

		uc := usecase.NewDashboardStatsUseCase(leads, outreach)
		stats, err := uc.Stats(ctx, &start, &end)

		assert.NoError(t, err)
		assert.Equal(t, 1, stats.TotalLeads, "the end day is inclusive, the next day is not")
	})

	t.Run("Email Success Rate", func(t *testing.T) {
		leads, outreach := newMemoryStores()
		seedLead(t, leads, "1000000001", "Austin", "a@x.example", "", entity.StatusApolloEnriched, now)
		seedOutreach(t, outreach, "1000000001", entity.OutreachStatusSent, now)
		seedOutreach(t, outreach, "1000000001", entity.OutreachStatusSent, now)
		seedOutreach(t, outreach, "1000000001", entity.OutreachStatusFailed, now)

		uc := usecase.NewDashboardStatsUseCase(leads, outreach)
		stats, err := uc.MainStats(ctx, nil, nil)

		assert.NoError(t, err)
		assert.Equal(t, 2, stats.Sent)
		assert.Equal(t, 1, stats.Failed)
		assert.Equal(t, 66.7, stats.EmailSuccessRate)
	})

	t.Run("Empty Store Yields Zero Rates", func(t *testing.T) {
		leads, outreach := newMemoryStores()
		uc := usecase.NewDashboardStatsUseCase(leads, outreach)

		stats, err := uc.MainStats(ctx, nil, nil)

		assert.NoError(t, err)
		assert.Equal(t, 0, stats.TotalLeads)
		assert.Equal(t, 0.0, stats.EmailSuccessRate)
		assert.Empty(t, stats.CityStats)
		assert.NotNil(t, stats.CityStats, "empty breakdown must serialize as a list, not null")
	})

	t.Run("City Stats Ordered By Volume Then Name", func(t *testing.T) {
		leads, outreach := newMemoryStores()
		seedLead(t, leads, "1000000001", "Austin", "", "", entity.StatusScoutOnly, now)
		seedLead(t, leads, "1000000002", "Austin", "a@x.example", "", entity.StatusApolloEnriched, now)
		seedLead(t, leads, "1000000003", "Dallas", "", "", entity.StatusScoutOnly, now)
		seedLead(t, leads, "1000000004", "Boston", "", "", entity.StatusScoutOnly, now)

		uc := usecase.NewDashboardStatsUseCase(leads, outreach)
		stats, err := uc.MainStats(ctx, nil, nil)

		assert.NoError(t, err)
		assert.Len(t, stats.CityStats, 3)
		assert.Equal(t, "Austin", stats.CityStats[0].City)
		assert.Equal(t, "Boston", stats.CityStats[1].City, "equal totals break ties by city name")
		assert.Equal(t, "Dallas", stats.CityStats[2].City)
		assert.Equal(t, 2, stats.CityStats[0].TotalLeads)
		assert.Equal(t, 1, stats.CityStats[0].WithEmail)
	})

	t.Run("City Stats Include Outreach Outcomes", func(t *testing.T) {
		leads, outreach := newMemoryStores()
		seedLead(t, leads, "1000000001", "Austin", "a@x.example", "", entity.StatusApolloEnriched, now)
		seedLead(t, leads, "1000000002", "Austin", "b@x.example", "", entity.StatusApolloEnriched, now)
		seedOutreach(t, outreach, "1000000001", entity.OutreachStatusSent, now)

		uc := usecase.NewDashboardStatsUseCase(leads, outreach)
		stats, err := uc.MainStats(ctx, nil, nil)

		assert.NoError(t, err)
		assert.Len(t, stats.CityStats, 1)
		austin := stats.CityStats[0]
		assert.Equal(t, 1, austin.Sent)
		assert.Equal(t, 100.0, austin.EmailSuccessRate)
		assert.Equal(t, 1, austin.LeadsLeft, "leads without outreach records remain to contact")
	})
}

func TestWithEmailStats(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()

	leads, outreach := newMemoryStores()
	for i := 0; i < 12; i++ {
		npi := "10000000" + string(rune('0'+i/10)) + string(rune('0'+i%10))
		seedLead(t, leads, npi, "Austin", "lead@x.example", "", entity.StatusApolloEnriched, now.Add(-time.Duration(i)*time.Hour))
	}
	seedLead(t, leads, "1000000099", "Austin", "", "", entity.StatusScoutOnly, now)
	seedOutreach(t, outreach, "1000000000", entity.OutreachStatusSent, now)

	uc := usecase.NewDashboardStatsUseCase(leads, outreach)

	t.Run("Counts And Pagination", func(t *testing.T) {
		stats, err := uc.WithEmailStats(ctx, nil, nil, 1, 5)

		assert.NoError(t, err)
		assert.Equal(t, 12, stats.TotalWithEmail)
		assert.Equal(t, 1, stats.Sent)
		assert.Equal(t, 8.3, stats.SuccessRate)
		assert.Len(t, stats.LeadsData.Leads, 5)
		assert.Equal(t, 3, stats.LeadsData.Pages)
	})

	t.Run("Last Page Is Short", func(t *testing.T) {
		stats, err := uc.WithEmailStats(ctx, nil, nil, 3, 5)

		assert.NoError(t, err)
		assert.Len(t, stats.LeadsData.Leads, 2)
	})

	t.Run("Page Beyond Range Is Empty Not Error", func(t *testing.T) {
		stats, err := uc.WithEmailStats(ctx, nil, nil, 9, 5)

		assert.NoError(t, err)
		assert.Empty(t, stats.LeadsData.Leads)
		assert.Equal(t, 12, stats.LeadsData.Total)
	})

	t.Run("Newest First", func(t *testing.T) {
		stats, err := uc.WithEmailStats(ctx, nil, nil, 1, 5)

		assert.NoError(t, err)
		first := stats.LeadsData.Leads[0]
		second := stats.LeadsData.Leads[1]
		assert.True(t, first.CreatedAt.After(second.CreatedAt) || first.CreatedAt.Equal(second.CreatedAt))
	})
}

func TestWithoutEmailStats(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()

	leads, outreach := newMemoryStores()
	seedLead(t, leads, "1000000001", "Austin", "", "512-555-0100", entity.StatusApolloSearched, now)
	seedLead(t, leads, "1000000002", "Austin", "", "", entity.StatusScoutOnly, now)
	seedLead(t, leads, "1000000003", "Austin", "", "", entity.StatusScoutOnly, now)
	seedLead(t, leads, "1000000004", "Austin", "has@x.example", "", entity.StatusApolloEnriched, now)

	uc := usecase.NewDashboardStatsUseCase(leads, outreach)

	stats, err := uc.WithoutEmailStats(ctx, nil, nil, 1, 10)

	assert.NoError(t, err)
	assert.Equal(t, 3, stats.TotalWithoutEmail)
	assert.Equal(t, 1, stats.WithPhoneNumber)
	assert.Equal(t, 3, stats.WithAddress)
	assert.Equal(t, 33.3, stats.Contactable)
	assert.Len(t, stats.LeadsData.Leads, 3)
}
