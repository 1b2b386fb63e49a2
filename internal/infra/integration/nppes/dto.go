package nppes

// Candidate is one normalized provider record coming out of the registry.
// It is the shape the recruitment pipeline works with; the raw API response
// never leaves this package.
type Candidate struct {
	NPI           string `json:"npi"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Name          string `json:"name"` // display form, "Dr. First Last, MD"
	ClinicName    string `json:"clinic_name,omitempty"`
	Address       string `json:"address"`
	City          string `json:"city"`
	State         string `json:"state"`
	Zip           string `json:"zip"`
	Phone         string `json:"phone,omitempty"`
	Fax           string `json:"fax,omitempty"`
	Specialty     string `json:"specialty"`
	Email         string `json:"email,omitempty"`
	Website       string `json:"website,omitempty"`
	DirectAddress string `json:"direct_address,omitempty"`
}

type searchResponse struct {
	ResultCount int      `json:"result_count"`
	Results     []result `json:"results"`
}

type result struct {
	Number    string     `json:"number"`
	Basic     basic      `json:"basic"`
	Addresses []address  `json:"addresses"`
	Endpoints []endpoint `json:"endpoints"`
}

type basic struct {
	FirstName        string `json:"first_name"`
	LastName         string `json:"last_name"`
	Credential       string `json:"credential"`
	OrganizationName string `json:"organization_name"`
}

type address struct {
	AddressPurpose  string `json:"address_purpose"` // LOCATION or MAILING
	Address1        string `json:"address_1"`
	Address2        string `json:"address_2"`
	City            string `json:"city"`
	State           string `json:"state"`
	PostalCode      string `json:"postal_code"`
	TelephoneNumber string `json:"telephone_number"`
	FaxNumber       string `json:"fax_number"`
}

type endpoint struct {
	EndpointType string `json:"endpointType"`
	Endpoint     string `json:"endpoint"`
}
