package usecase

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/openclinic/medscout/internal/entity"
)

// DashboardStatsUseCase answers dashboard queries purely from the lead store
// and the outreach collection. No external calls, and empty windows never
// error: rates default to 0.0, lists to empty.
type DashboardStatsUseCase struct {
	Leads    LeadRepositoryInterface
	Outreach OutreachRepositoryInterface
}

func NewDashboardStatsUseCase(leads LeadRepositoryInterface, outreach OutreachRepositoryInterface) *DashboardStatsUseCase {
	return &DashboardStatsUseCase{Leads: leads, Outreach: outreach}
}

// DateWindow is an inclusive calendar-day range. Nil bounds mean
// unconstrained on that side.
type DateWindow struct {
	From *time.Time
	To   *time.Time
}

// ResolveWindow turns optional day-granularity endpoints into half-open
// timestamp bounds: [start 00:00, end+1day 00:00).
func ResolveWindow(start, end *time.Time) DateWindow {
	var w DateWindow
	if start != nil {
		t := truncateDay(*start)
		w.From = &t
	}
	if end != nil {
		t := truncateDay(*end).AddDate(0, 0, 1)
		w.To = &t
	}
	return w
}

// DefaultWindow is the last 7 days ending today, used when the caller
// supplies no dates.
func DefaultWindow(now time.Time) DateWindow {
	start := truncateDay(now).AddDate(0, 0, -7)
	end := truncateDay(now).AddDate(0, 0, 1)
	return DateWindow{From: &start, To: &end}
}

// Stats is the windowed summary: last 7 days by default.
func (uc *DashboardStatsUseCase) Stats(ctx context.Context, start, end *time.Time) (*DashboardStats, error) {
	w := ResolveWindow(start, end)
	if start == nil && end == nil {
		w = DefaultWindow(time.Now().UTC())
	}
	return uc.compute(ctx, w)
}

// MainStats is the all-time summary unless the caller narrows it.
func (uc *DashboardStatsUseCase) MainStats(ctx context.Context, start, end *time.Time) (*DashboardStats, error) {
	return uc.compute(ctx, ResolveWindow(start, end))
}

func (uc *DashboardStatsUseCase) compute(ctx context.Context, w DateWindow) (*DashboardStats, error) {
	leadFilter := entity.LeadFilter{CreatedFrom: w.From, CreatedTo: w.To}
	outFilter := entity.OutreachFilter{SentFrom: w.From, SentTo: w.To}

	stats := &DashboardStats{LastUpdated: time.Now().UTC(), CityStats: []CityStats{}}

	var err error
	if stats.TotalLeads, err = uc.Leads.Count(ctx, leadFilter); err != nil {
		return nil, &TechnicalError{Code: CodeDatabase, Message: err.Error()}
	}

	withEmail := true
	f := leadFilter
	f.HasEmail = &withEmail
	if stats.WithEmail, err = uc.Leads.Count(ctx, f); err != nil {
		return nil, &TechnicalError{Code: CodeDatabase, Message: err.Error()}
	}
	stats.WithoutEmail = stats.TotalLeads - stats.WithEmail

	f = leadFilter
	f.EnrichmentStatus = entity.StatusApolloEnriched
	if stats.ApolloEnrichedLeads, err = uc.Leads.Count(ctx, f); err != nil {
		return nil, &TechnicalError{Code: CodeDatabase, Message: err.Error()}
	}
	f.EnrichmentStatus = entity.StatusApolloSearched
	if stats.ApolloSearched, err = uc.Leads.Count(ctx, f); err != nil {
		return nil, &TechnicalError{Code: CodeDatabase, Message: err.Error()}
	}

	totalOutreach, err := uc.Outreach.Count(ctx, outFilter)
	if err != nil {
		return nil, &TechnicalError{Code: CodeDatabase, Message: err.Error()}
	}
	of := outFilter
	of.Status = entity.OutreachStatusSent
	if stats.Sent, err = uc.Outreach.Count(ctx, of); err != nil {
		return nil, &TechnicalError{Code: CodeDatabase, Message: err.Error()}
	}
	of.Status = entity.OutreachStatusFailed
	if stats.Failed, err = uc.Outreach.Count(ctx, of); err != nil {
		return nil, &TechnicalError{Code: CodeDatabase, Message: err.Error()}
	}
	stats.EmailSuccessRate = ratePercent(stats.Sent, totalOutreach)

	cityStats, err := uc.cityBreakdown(ctx, leadFilter, outFilter)
	if err != nil {
		return nil, err
	}
	stats.CityStats = cityStats

	return stats, nil
}

func (uc *DashboardStatsUseCase) cityBreakdown(ctx context.Context, leadFilter entity.LeadFilter, outFilter entity.OutreachFilter) ([]CityStats, error) {
	aggregates, err := uc.Leads.CityBreakdown(ctx, leadFilter)
	if err != nil {
		return nil, &TechnicalError{Code: CodeDatabase, Message: err.Error()}
	}
	outreach, err := uc.Outreach.CountByCity(ctx, outFilter)
	if err != nil {
		return nil, &TechnicalError{Code: CodeDatabase, Message: err.Error()}
	}

	sentByCity := make(map[string]entity.OutreachCityCount, len(outreach))
	for _, o := range outreach {
		sentByCity[o.City] = o
	}

	stats := make([]CityStats, 0, len(aggregates))
	for _, agg := range aggregates {
		o := sentByCity[agg.City]
		stats = append(stats, CityStats{
			City:                agg.City,
			TotalLeads:          agg.TotalLeads,
			WithEmail:           agg.WithEmail,
			WithoutEmail:        agg.WithoutEmail,
			ApolloEnrichedLeads: agg.ApolloEnriched,
			ApolloSearched:      agg.ApolloSearched,
			EmailSuccessRate:    ratePercent(o.Sent, o.Sent+o.Failed),
			Sent:                o.Sent,
			Failed:              o.Failed,
			LeadsLeft:           agg.LeadsLeft,
		})
	}

	// Largest markets first; city name breaks ties deterministically.
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].TotalLeads != stats[j].TotalLeads {
			return stats[i].TotalLeads > stats[j].TotalLeads
		}
		return stats[i].City < stats[j].City
	})
	return stats, nil
}

// WithEmailStats lists contactable leads for the window, newest first.
func (uc *DashboardStatsUseCase) WithEmailStats(ctx context.Context, start, end *time.Time, page, pageSize int) (*WithEmailStats, error) {
	w := ResolveWindow(start, end)
	withEmail := true
	filter := entity.LeadFilter{CreatedFrom: w.From, CreatedTo: w.To, HasEmail: &withEmail}

	paginated, err := uc.paginate(ctx, filter, page, pageSize)
	if err != nil {
		return nil, err
	}

	of := entity.OutreachFilter{SentFrom: w.From, SentTo: w.To, Status: entity.OutreachStatusSent}
	sent, err := uc.Outreach.Count(ctx, of)
	if err != nil {
		return nil, &TechnicalError{Code: CodeDatabase, Message: err.Error()}
	}

	return &WithEmailStats{
		TotalWithEmail: paginated.Total,
		Sent:           sent,
		SuccessRate:    ratePercent(sent, paginated.Total),
		LeadsData:      *paginated,
	}, nil
}

// WithoutEmailStats lists leads still needing manual research.
func (uc *DashboardStatsUseCase) WithoutEmailStats(ctx context.Context, start, end *time.Time, page, pageSize int) (*WithoutEmailStats, error) {
	w := ResolveWindow(start, end)
	withEmail := false
	filter := entity.LeadFilter{CreatedFrom: w.From, CreatedTo: w.To, HasEmail: &withEmail}

	paginated, err := uc.paginate(ctx, filter, page, pageSize)
	if err != nil {
		return nil, err
	}

	f := filter
	f.WithPhone = true
	withPhone, err := uc.Leads.Count(ctx, f)
	if err != nil {
		return nil, &TechnicalError{Code: CodeDatabase, Message: err.Error()}
	}

	return &WithoutEmailStats{
		TotalWithoutEmail: paginated.Total,
		WithPhoneNumber:   withPhone,
		WithAddress:       paginated.Total, // registry records always carry a practice address
		Contactable:       ratePercent(withPhone, paginated.Total),
		LeadsData:         *paginated,
	}, nil
}

func (uc *DashboardStatsUseCase) paginate(ctx context.Context, filter entity.LeadFilter, page, pageSize int) (*PaginatedLeads, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}

	leads, total, err := uc.Leads.Find(ctx, filter, page, pageSize)
	if err != nil {
		return nil, &TechnicalError{Code: CodeDatabase, Message: err.Error()}
	}
	if leads == nil {
		leads = []entity.Lead{}
	}

	return &PaginatedLeads{
		Leads:    leads,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
		Pages:    int(math.Ceil(float64(total) / float64(pageSize))),
	}, nil
}

func ratePercent(num, den int) float64 {
	if den == 0 {
		return 0.0
	}
	return math.Round(float64(num)/float64(den)*1000) / 10
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
