package search

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
)

const searchBaseURL = "https://skills.sh"

const defaultLimit = 20

// Skill is one hit from the skills.sh search index.
type Skill struct {
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	Source   string `json:"source"`
	Installs int    `json:"installs"`
}

type searchResponse struct {
	Skills []Skill `json:"skills"`
}

// Client queries the public skills.sh search API.
type Client struct {
	client *resty.Client
}

func NewClient() *Client {
	return &Client{
		client: resty.New().
			SetBaseURL(searchBaseURL).
			SetTimeout(30 * time.Second).
			SetHeader("User-Agent", "skillsmd"),
	}
}

// SetBaseURL overrides the API endpoint, for tests.
func (c *Client) SetBaseURL(url string) {
	c.client.SetBaseURL(url)
}

// Search returns skills matching the query, most installed first. A
// non-positive limit uses the service default.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]Skill, error) {
	if limit <= 0 {
		limit = defaultLimit
	}

	var result searchResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("q", query).
		SetQueryParam("limit", strconv.Itoa(limit)).
		SetResult(&result).
		Get("/api/search")
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("search service returned %d", resp.StatusCode())
	}
	return result.Skills, nil
}
