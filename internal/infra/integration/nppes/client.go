package nppes

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const (
	BaseURL    = "https://npiregistry.cms.hhs.gov/api/"
	APIVersion = "2.1"

	// The registry rejects limits above 50.
	maxLimit = 50
)

// Client queries the CMS National Provider Identifier registry. The registry
// is public, no auth involved.
type Client struct {
	HTTPClient *http.Client
	BaseURL    string
}

func NewClient() *Client {
	return &Client{
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
		BaseURL:    BaseURL,
	}
}

// Search returns normalized candidates for a city/specialty query. Only
// individual providers (NPI-1) are requested. The state is guessed from the
// city when the caller does not know it; the registry tolerates its absence.
func (c *Client) Search(ctx context.Context, city, specialty string, limit int) ([]Candidate, error) {
	state := GuessStateFromCity(city)
	taxonomy := MapSpecialtyToTaxonomy(specialty)

	if limit <= 0 {
		limit = 10
	}
	// Request extra in case some results are filtered during mapping.
	requested := limit * 2
	if requested > maxLimit {
		requested = maxLimit
	}

	params := url.Values{}
	params.Set("version", APIVersion)
	params.Set("city", city)
	params.Set("enumeration_type", "NPI-1")
	params.Set("taxonomy_description", taxonomy)
	params.Set("limit", fmt.Sprintf("%d", requested))
	if state != "" {
		params.Set("state", state)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("nppes request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("nppes api error: status %d", resp.StatusCode)
	}

	var data searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("nppes decode failed: %w", err)
	}

	candidates := make([]Candidate, 0, limit)
	for _, res := range data.Results {
		cand, ok := toCandidate(res, taxonomy, city, state)
		if !ok {
			continue
		}
		candidates = append(candidates, cand)
		if len(candidates) == limit {
			break
		}
	}
	return candidates, nil
}

// LookupByNPI fetches a single provider by its registry number.
func (c *Client) LookupByNPI(ctx context.Context, npi string) (*Candidate, error) {
	params := url.Values{}
	params.Set("version", APIVersion)
	params.Set("number", npi)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("nppes request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("nppes api error: status %d", resp.StatusCode)
	}

	var data searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("nppes decode failed: %w", err)
	}
	if len(data.Results) == 0 {
		return nil, nil
	}

	cand, ok := toCandidate(data.Results[0], "", "", "")
	if !ok {
		return nil, nil
	}
	return &cand, nil
}
