package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/aliro/scout/internal/model"
)

const (
	DefaultPiplBaseURL       = "https://api.pipl.com/search/"
	DefaultCountry           = "US"
	DefaultMatchRequirements = "(emails and jobs)"
	maxIdentityResponseBytes = 4 << 20
)

// PiplAdapter queries the Pipl person search API.
type PiplAdapter struct {
	baseURL           string
	apiKey            string
	country           string
	matchRequirements string
	client            *http.Client
}

// NewPiplAdapter creates an identity client. Empty baseURL, country and
// matchRequirements fall back to the defaults.
func NewPiplAdapter(baseURL, apiKey, country, matchRequirements string, client *http.Client) *PiplAdapter {
	if baseURL == "" {
		baseURL = DefaultPiplBaseURL
	}
	if country == "" {
		country = DefaultCountry
	}
	if matchRequirements == "" {
		matchRequirements = DefaultMatchRequirements
	}
	return &PiplAdapter{
		baseURL:           baseURL,
		apiKey:            apiKey,
		country:           country,
		matchRequirements: matchRequirements,
		client:            client,
	}
}

// SearchByName looks up a raw name restricted to the configured country and
// match requirements.
func (a *PiplAdapter) SearchByName(ctx context.Context, name string) (*model.IdentityResponse, error) {
	q := url.Values{}
	q.Set("key", a.apiKey)
	q.Set("raw_name", name)
	q.Set("country", a.country)
	q.Set("match_requirements", a.matchRequirements)

	resp, err := a.search(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("pipl search for %q: %w", name, err)
	}
	return resp, nil
}

// SearchByPointer re-queries a candidate using the search pointer returned
// with a possible person.
func (a *PiplAdapter) SearchByPointer(ctx context.Context, pointer string) (*model.IdentityResponse, error) {
	q := url.Values{}
	q.Set("key", a.apiKey)
	q.Set("search_pointer", pointer)

	resp, err := a.search(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("pipl pointer search: %w", err)
	}
	return resp, nil
}

// Close releases idle connections held by the underlying HTTP client.
func (a *PiplAdapter) Close() {
	a.client.CloseIdleConnections()
}

func (a *PiplAdapter) search(ctx context.Context, q url.Values) (*model.IdentityResponse, error) {
	u, err := url.Parse(a.baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base url: %w", err)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &model.HTTPError{
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Err:        fmt.Errorf("unexpected status: %s", body),
		}
	}

	var out model.IdentityResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxIdentityResponseBytes)).Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return &out, nil
}
