// Package places wraps the Google Places text-search API behind the narrow
// contract the planner consumes: a query in, a bounded list of venue
// candidates out. An empty list is a valid response, not an error.
package places

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"

	"github.com/campusmeet/planner-cli/internal/retry"
)

const defaultBaseURL = "https://places.googleapis.com/v1"

// Client performs place lookup operations.
type Client interface {
	TextSearch(ctx context.Context, query string, limit int) ([]Place, error)
}

// Place is a single venue candidate. Rating, ReviewCount, Address and Hours
// may be absent; consumers degrade to neutral scores in that case.
type Place struct {
	Name        string
	Rating      float64
	ReviewCount int
	Address     string
	Website     string
	MapsURL     string
	Category    string
	Hours       []string
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates a Google Places API client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type textSearchRequest struct {
	TextQuery string `json:"textQuery"`
	PageSize  int    `json:"pageSize,omitempty"`
}

type textSearchResponse struct {
	Places []apiPlace `json:"places"`
}

type apiPlace struct {
	DisplayName     displayName   `json:"displayName"`
	Rating          float64       `json:"rating"`
	UserRatingCount int           `json:"userRatingCount"`
	FormattedAddr   string        `json:"formattedAddress"`
	WebsiteURI      string        `json:"websiteUri"`
	GoogleMapsURI   string        `json:"googleMapsUri"`
	PrimaryType     displayName   `json:"primaryTypeDisplayName"`
	OpeningHours    *openingHours `json:"regularOpeningHours"`
}

type displayName struct {
	Text string `json:"text"`
}

type openingHours struct {
	WeekdayDescriptions []string `json:"weekdayDescriptions"`
}

const fieldMask = "places.displayName,places.rating,places.userRatingCount," +
	"places.formattedAddress,places.websiteUri,places.googleMapsUri," +
	"places.primaryTypeDisplayName,places.regularOpeningHours"

func (c *httpClient) TextSearch(ctx context.Context, query string, limit int) ([]Place, error) {
	body, err := json.Marshal(textSearchRequest{TextQuery: query, PageSize: limit})
	if err != nil {
		return nil, eris.Wrap(err, "places: marshal request")
	}

	var result textSearchResponse
	err = retry.Do(ctx, retry.DefaultConfig(), func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/places:searchText", bytes.NewReader(body))
		if err != nil {
			return eris.Wrap(err, "places: create request")
		}

		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Goog-Api-Key", c.apiKey)
		req.Header.Set("X-Goog-FieldMask", fieldMask)

		resp, err := c.http.Do(req)
		if err != nil {
			return eris.Wrap(err, "places: send request")
		}
		defer resp.Body.Close() //nolint:errcheck

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return eris.Wrap(err, "places: read response")
		}

		if resp.StatusCode != http.StatusOK {
			statusErr := eris.Errorf("places: unexpected status %d: %s", resp.StatusCode, string(respBody))
			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
				return retry.Transient(statusErr, resp.StatusCode)
			}
			return statusErr
		}

		result = textSearchResponse{}
		if err := json.Unmarshal(respBody, &result); err != nil {
			return eris.Wrap(err, "places: unmarshal response")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	places := make([]Place, 0, len(result.Places))
	for _, p := range result.Places {
		if limit > 0 && len(places) >= limit {
			break
		}
		place := Place{
			Name:        p.DisplayName.Text,
			Rating:      p.Rating,
			ReviewCount: p.UserRatingCount,
			Address:     p.FormattedAddr,
			Website:     p.WebsiteURI,
			MapsURL:     p.GoogleMapsURI,
			Category:    p.PrimaryType.Text,
		}
		if p.OpeningHours != nil {
			place.Hours = p.OpeningHours.WeekdayDescriptions
		}
		places = append(places, place)
	}

	return places, nil
}
