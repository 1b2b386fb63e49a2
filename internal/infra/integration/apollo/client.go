package apollo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"time"
)

const DefaultBaseURL = "https://api.apollo.io/api/v1"

// ErrNoCredits is returned once the credit budget is exhausted. Callers are
// expected to check RemainingCredits before issuing calls; this is the
// backstop.
var ErrNoCredits = errors.New("apollo credit budget exhausted")

// Generic placeholder organizations that only hurt the match; treated as if
// no organization was supplied.
var genericOrgNames = map[string]bool{
	"private practice":    true,
	"individual practice": true,
	"not available":       true,
	"n/a":                 true,
}

// Client wraps the Apollo.io people-match API under a finite credit budget.
// Every Enrich call consumes one credit, hit or miss, matching how Apollo
// bills. The counter is atomic so concurrent recruitment runs cannot
// over-spend it.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	credits atomic.Int64
}

func NewClient(apiKey, baseURL string, credits int) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	c.credits.Store(int64(credits))
	return c
}

func (c *Client) RemainingCredits() int {
	n := c.credits.Load()
	if n < 0 {
		return 0
	}
	return int(n)
}

// tryConsume reserves one credit, refusing when the budget is spent.
func (c *Client) tryConsume() bool {
	for {
		n := c.credits.Load()
		if n <= 0 {
			return false
		}
		if c.credits.CompareAndSwap(n, n-1) {
			return true
		}
	}
}

// Enrich looks up an email for one person. A (nil, nil) return is a miss:
// Apollo answered but found no usable email. Errors cover transport/auth
// failures; the credit is spent either way.
func (c *Client) Enrich(ctx context.Context, in EnrichInput) (*EmailResult, error) {
	if !c.tryConsume() {
		return nil, ErrNoCredits
	}

	payload := matchRequest{
		FirstName: in.FirstName,
		LastName:  in.LastName,
	}
	if org := strings.ToLower(strings.TrimSpace(in.OrganizationName)); org != "" && !genericOrgNames[org] {
		payload.OrganizationName = in.OrganizationName
	}
	if in.City != "" && in.State != "" {
		payload.PersonLocations = []string{in.City + ", " + in.State}
	} else if in.State != "" {
		payload.PersonLocations = []string{in.State}
	}

	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/people/match", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("apollo request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("apollo api error: status %d", resp.StatusCode)
	}

	var data matchResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("apollo decode failed: %w", err)
	}

	p := data.Person
	if p == nil || p.Email == "" {
		return nil, nil
	}

	confidence := 0.75
	if p.EmailStatus == "verified" {
		confidence = 0.95
	}

	result := &EmailResult{
		Email:       p.Email,
		EmailStatus: p.EmailStatus,
		Confidence:  confidence,
		LinkedinURL: p.LinkedinURL,
	}
	if p.Organization != nil {
		result.Organization = p.Organization.Name
		result.WebsiteURL = p.Organization.WebsiteURL
	}
	return result, nil
}
