// Package news wraps the external news aggregator API. The aggregator is a
// queried data source with a fixed response shape; we never write to it.
package news

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/newsportal/news-backend/util"
)

const defaultBaseURL = "https://newsdata.io"

// Article is a single aggregator result.
type Article struct {
	Title       string `json:"title"`
	Link        string `json:"link"`
	Description string `json:"description"`
	PubDate     string `json:"pubDate"`
	SourceID    string `json:"source_id"`
}

type latestResponse struct {
	Status       string    `json:"status"`
	TotalResults int       `json:"totalResults"`
	Results      []Article `json:"results"`
}

// Client queries the news aggregator for latest headlines.
type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// NewClient returns a Client with a bounded request timeout.
func NewClient(baseURL string, apiKey string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		BaseURL:    baseURL,
		APIKey:     apiKey,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// MakeClientFromEnv initializes a Client from environment variables.
// NEWS_API_URL is optional and defaults to the public aggregator endpoint.
func MakeClientFromEnv() (*Client, error) {
	varErrs := util.Errors{}
	apiKey := util.RequireEnv("NEWS_API_KEY", &varErrs)
	if len(varErrs) > 0 {
		return nil, varErrs
	}
	return NewClient(os.Getenv("NEWS_API_URL"), apiKey), nil
}

// Latest fetches the latest headlines for a country. The query string is
// passed through to the aggregator's q parameter.
func (c *Client) Latest(countryCode string, query string) ([]Article, error) {
	endpoint, err := url.Parse(c.BaseURL + "/api/1/latest")
	if err != nil {
		return nil, err
	}
	params := url.Values{}
	params.Set("apikey", c.APIKey)
	params.Set("q", query)
	params.Set("country", countryCode)
	endpoint.RawQuery = params.Encode()

	resp, err := c.HTTPClient.Get(endpoint.String())
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("news aggregator returned status %d", resp.StatusCode)
	}
	var parsed latestResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("could not parse news aggregator response: %v", err)
	}
	if parsed.Status != "success" {
		return nil, fmt.Errorf("news aggregator returned status %q", parsed.Status)
	}
	return parsed.Results, nil
}
