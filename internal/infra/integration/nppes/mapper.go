package nppes

import (
	"strings"
)

// specialtyTaxonomyMap translates the friendly specialty names used by the
// frontend into NPI taxonomy descriptions the registry understands.
var specialtyTaxonomyMap = map[string]string{
	"Primary Care":     "Internal Medicine",
	"Family Medicine":  "Family Medicine",
	"Cardiology":       "Cardiovascular Disease",
	"Dermatology":      "Dermatology",
	"Orthopedics":      "Orthopaedic Surgery",
	"Pediatrics":       "Pediatrics",
	"Neurology":        "Neurology",
	"Oncology":         "Medical Oncology",
	"Psychiatry":       "Psychiatry",
	"Gastroenterology": "Gastroenterology",
	"Pulmonology":      "Pulmonary Disease",
	"Endocrinology":    "Endocrinology, Diabetes & Metabolism",
	"Rheumatology":     "Rheumatology",
	"Nephrology":       "Nephrology",
	"Urology":          "Urology",
}

// majorCityStateMap lets us fill in the state parameter when the caller only
// supplies a city. The registry search is far more precise with both.
var majorCityStateMap = map[string]string{
	"new york":      "NY",
	"los angeles":   "CA",
	"chicago":       "IL",
	"houston":       "TX",
	"phoenix":       "AZ",
	"philadelphia":  "PA",
	"san antonio":   "TX",
	"san diego":     "CA",
	"dallas":        "TX",
	"san jose":      "CA",
	"austin":        "TX",
	"jacksonville":  "FL",
	"fort worth":    "TX",
	"columbus":      "OH",
	"charlotte":     "NC",
	"san francisco": "CA",
	"indianapolis":  "IN",
	"seattle":       "WA",
	"denver":        "CO",
	"boston":        "MA",
	"nashville":     "TN",
	"detroit":       "MI",
	"novi":          "MI",
	"ann arbor":     "MI",
	"grand rapids":  "MI",
	"portland":      "OR",
	"las vegas":     "NV",
	"miami":         "FL",
	"atlanta":       "GA",
	"baltimore":     "MD",
	"minneapolis":   "MN",
	"cleveland":     "OH",
	"pittsburgh":    "PA",
	"orlando":       "FL",
	"tampa":         "FL",
	"milwaukee":     "WI",
}

func MapSpecialtyToTaxonomy(specialty string) string {
	if tax, ok := specialtyTaxonomyMap[specialty]; ok {
		return tax
	}
	return specialty
}

func GuessStateFromCity(city string) string {
	return majorCityStateMap[strings.ToLower(strings.TrimSpace(city))]
}

// titleCase capitalizes the first letter of each space-separated word.
// Registry names arrive in all caps.
func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// formatPhone normalizes a registry phone/fax number to XXX-XXX-XXXX.
// Numbers that are not 10 digits (or 11 with a leading 1) pass through as-is.
func formatPhone(raw string) string {
	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	d := digits.String()
	if len(d) == 11 && d[0] == '1' {
		d = d[1:]
	}
	if len(d) != 10 {
		return raw
	}
	return d[:3] + "-" + d[3:6] + "-" + d[6:]
}

// organizationFromAddress2 treats the second address line as a practice name
// unless it is just a suite/floor/unit marker.
func organizationFromAddress2(address2 string) string {
	a := strings.ToLower(strings.TrimSpace(address2))
	if len(a) <= 5 {
		return ""
	}
	for _, prefix := range []string{"suite", "ste ", "ste.", "#", "floor", "fl ", "unit", "apt", "bldg", "building"} {
		if strings.HasPrefix(a, prefix) {
			return ""
		}
	}
	return strings.TrimSpace(address2)
}

// toCandidate maps one raw registry result to a normalized Candidate.
// Returns false when the result is unusable (no name or no address).
func toCandidate(res result, taxonomy, fallbackCity, fallbackState string) (Candidate, bool) {
	first := titleCase(res.Basic.FirstName)
	last := titleCase(res.Basic.LastName)
	if first == "" || last == "" {
		return Candidate{}, false
	}

	credential := res.Basic.Credential
	if credential == "" {
		credential = "MD"
	}
	name := "Dr. " + first + " " + last + ", " + credential

	// Prefer the practice location over the mailing address.
	var practice *address
	for i := range res.Addresses {
		if res.Addresses[i].AddressPurpose == "LOCATION" {
			practice = &res.Addresses[i]
			break
		}
	}
	if practice == nil && len(res.Addresses) > 0 {
		practice = &res.Addresses[0]
	}
	if practice == nil {
		return Candidate{}, false
	}

	org := res.Basic.OrganizationName
	if org == "" {
		org = organizationFromAddress2(practice.Address2)
	}

	var direct string
	for _, ep := range res.Endpoints {
		if strings.EqualFold(ep.EndpointType, "DIRECT") {
			direct = ep.Endpoint
			break
		}
	}

	city := practice.City
	if city == "" {
		city = fallbackCity
	}
	state := practice.State
	if state == "" {
		state = fallbackState
	}

	zip := practice.PostalCode
	if len(zip) > 5 {
		zip = zip[:5]
	}

	return Candidate{
		NPI:           res.Number,
		FirstName:     first,
		LastName:      last,
		Name:          name,
		ClinicName:    org,
		Address:       practice.Address1,
		City:          titleCase(city),
		State:         state,
		Zip:           zip,
		Phone:         formatPhone(practice.TelephoneNumber),
		Fax:           formatPhone(practice.FaxNumber),
		Specialty:     taxonomy,
		DirectAddress: direct,
	}, true
}
