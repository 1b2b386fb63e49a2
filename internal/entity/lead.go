package entity

import (
	"errors"
	"time"
)

// Enrichment status state machine. Transitions only move forward within the
// lifetime of a lead: an enriched lead never regresses to scout_only.
const (
	StatusScoutOnly      = "scout_only"      // registry data persisted, no enrichment attempted
	StatusApolloSearched = "apollo_searched" // enrichment attempted, no usable email
	StatusApolloEnriched = "apollo_enriched" // enrichment supplied an email
)

var (
	ErrLeadNotFound = errors.New("lead not found")
	ErrDuplicateNPI = errors.New("npi already exists")
)

// StatusRank orders the enrichment statuses so repositories and merges can
// enforce forward-only transitions.
func StatusRank(status string) int {
	switch status {
	case StatusApolloEnriched:
		return 2
	case StatusApolloSearched:
		return 1
	default:
		return 0
	}
}

type Lead struct {
	ID  string `json:"id"`
	NPI string `json:"npi"` // national provider identifier, natural key

	Name       string `json:"name"`
	ClinicName string `json:"clinic_name,omitempty"`
	Address    string `json:"address"`
	City       string `json:"city"`
	State      string `json:"state"`
	Specialty  string `json:"specialty"`
	Phone      string `json:"phone,omitempty"`

	Email         string `json:"email,omitempty"`
	HasEmail      bool   `json:"has_email"`
	Website       string `json:"website,omitempty"`
	LinkedinURL   string `json:"linkedin_url,omitempty"`
	DirectAddress string `json:"direct_address,omitempty"` // Direct secure messaging address

	ApolloConfidence float64 `json:"apollo_confidence,omitempty"`
	EnrichmentStatus string  `json:"enrichment_status"`

	IsEmailed bool `json:"is_emailed"`
	Visited   bool `json:"visited"`

	CreatedAt      time.Time  `json:"created_at"`
	LastEnrichedAt *time.Time `json:"last_enriched_at,omitempty"`
}

// LeadFilter narrows repository reads. Zero values mean "no constraint".
type LeadFilter struct {
	City             string
	Specialty        string
	HasEmail         *bool
	EnrichmentStatus string
	NotEmailed       bool
	WithPhone        bool
	CreatedFrom      *time.Time
	CreatedTo        *time.Time
}

// CityAggregate is one row of the per-city dashboard breakdown, computed by
// the lead repository in a single grouped query.
type CityAggregate struct {
	City           string
	TotalLeads     int
	WithEmail      int
	WithoutEmail   int
	ApolloEnriched int
	ApolloSearched int
	LeadsLeft      int // leads not yet linked to any outreach record
}
