package apollo

// EnrichInput identifies the person to look up. First and last name are the
// minimum the API accepts; the rest improves the match rate.
type EnrichInput struct {
	FirstName        string
	LastName         string
	OrganizationName string
	City             string
	State            string
}

// EmailResult is a successful enrichment: Apollo found the person and an
// email for them.
type EmailResult struct {
	Email        string  `json:"email"`
	EmailStatus  string  `json:"email_status"` // verified, guessed, unknown
	Confidence   float64 `json:"confidence"`   // 0.95 when verified, 0.75 otherwise
	Organization string  `json:"organization,omitempty"`
	LinkedinURL  string  `json:"linkedin_url,omitempty"`
	WebsiteURL   string  `json:"website_url,omitempty"`
}

type matchRequest struct {
	FirstName        string   `json:"first_name"`
	LastName         string   `json:"last_name"`
	OrganizationName string   `json:"organization_name,omitempty"`
	PersonLocations  []string `json:"person_locations,omitempty"`
}

type matchResponse struct {
	Person *person `json:"person"`
}

type person struct {
	Email        string        `json:"email"`
	EmailStatus  string        `json:"email_status"`
	LinkedinURL  string        `json:"linkedin_url"`
	Organization *organization `json:"organization"`
}

type organization struct {
	Name       string `json:"name"`
	WebsiteURL string `json:"website_url"`
}
