package entity

import "time"

const (
	OutreachStatusSent   = "sent"
	OutreachStatusFailed = "failed"
)

// OutreachRecord is one outbound message. Records are append-only: the
// dispatch worker is the sole writer, the dashboard only counts them.
type OutreachRecord struct {
	ID       string    `json:"id"`
	LeadNPI  string    `json:"lead_npi,omitempty"` // empty when sent without a linked lead
	Sender   string    `json:"sender"`
	Receiver string    `json:"receiver"`
	Subject  string    `json:"subject"`
	Body     string    `json:"body"`
	Status   string    `json:"status"`
	SentAt   time.Time `json:"sent_at"`
}

// OutreachFilter narrows outreach counting. Zero values mean "no constraint".
type OutreachFilter struct {
	Status   string
	SentFrom *time.Time
	SentTo   *time.Time
}

// OutreachCityCount carries per-city send outcomes, joined through the lead
// the record points at.
type OutreachCityCount struct {
	City   string
	Sent   int
	Failed int
}
