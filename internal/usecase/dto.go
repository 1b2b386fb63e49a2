package usecase

import (
	"time"

	"github.com/openclinic/medscout/internal/entity"
)

type RecruitInput struct {
	City      string `json:"city"`
	Specialty string `json:"specialty"`
	Count     int    `json:"count"`

	// EnrichmentBudget caps enrichment calls for this run. Zero means
	// "whatever credits the service still has". SkipEnrichment persists
	// everything scout_only (bulk load path).
	EnrichmentBudget int  `json:"enrichment_budget,omitempty"`
	SkipEnrichment   bool `json:"skip_enrichment,omitempty"`
}

// RecordError is a per-candidate failure that did not abort the batch.
type RecordError struct {
	NPI    string `json:"npi,omitempty"`
	Name   string `json:"name,omitempty"`
	Reason string `json:"reason"`
}

// RecruitmentResult summarizes one recruitment run. Transient: never stored.
type RecruitmentResult struct {
	TotalLeads           int           `json:"total_leads"`
	WithEmail            int           `json:"with_email"`
	WithoutEmail         int           `json:"without_email"`
	EmailCoveragePercent float64       `json:"email_coverage_percent"`
	RemainingCredits     int           `json:"remaining_credits"`
	Leads                []entity.Lead `json:"leads"`
	Errors               []RecordError `json:"errors,omitempty"`
}

type CityStats struct {
	City                string  `json:"city"`
	TotalLeads          int     `json:"total_leads"`
	WithEmail           int     `json:"with_email"`
	WithoutEmail        int     `json:"without_email"`
	ApolloEnrichedLeads int     `json:"apollo_enriched_leads"`
	ApolloSearched      int     `json:"apollo_searched"`
	EmailSuccessRate    float64 `json:"email_success_rate"`
	Sent                int     `json:"sent"`
	Failed              int     `json:"failed"`
	LeadsLeft           int     `json:"leads_left"`
}

type DashboardStats struct {
	TotalLeads          int         `json:"total_leads"`
	WithEmail           int         `json:"with_email"`
	WithoutEmail        int         `json:"without_email"`
	ApolloEnrichedLeads int         `json:"apollo_enriched_leads"`
	ApolloSearched      int         `json:"apollo_searched"`
	EmailSuccessRate    float64     `json:"email_success_rate"`
	Sent                int         `json:"sent"`
	Failed              int         `json:"failed"`
	LastUpdated         time.Time   `json:"last_updated"`
	CityStats           []CityStats `json:"city_stats"`
}

type PaginatedLeads struct {
	Leads    []entity.Lead `json:"leads"`
	Total    int           `json:"total"`
	Page     int           `json:"page"`
	PageSize int           `json:"page_size"`
	Pages    int           `json:"pages"`
}

type WithEmailStats struct {
	TotalWithEmail int            `json:"total_with_email"`
	Sent           int            `json:"sent"`
	SuccessRate    float64        `json:"success_rate"`
	LeadsData      PaginatedLeads `json:"leads_data"`
}

type WithoutEmailStats struct {
	TotalWithoutEmail int            `json:"total_without_email"`
	WithPhoneNumber   int            `json:"with_phone_number"`
	WithAddress       int            `json:"with_address"`
	Contactable       float64        `json:"contactable"`
	LeadsData         PaginatedLeads `json:"leads_data"`
}

type SendOutreachInput struct {
	LeadNPI  string `json:"lead_npi,omitempty"`
	Sender   string `json:"sender"`
	Receiver string `json:"receiver,omitempty"` // defaults to the lead's email
	Subject  string `json:"subject"`
	Body     string `json:"body"`
}

type SendOutreachOutput struct {
	Status   string `json:"status"` // queued
	Receiver string `json:"receiver"`
}
