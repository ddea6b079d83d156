package update

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

const checkUpdatesBaseURL = "https://add-skill.vercel.sh"

// SkillCheck describes one installed skill in an update query.
type SkillCheck struct {
	Name            string `json:"name"`
	Source          string `json:"source"`
	Path            string `json:"path,omitempty"`
	SkillFolderHash string `json:"skillFolderHash,omitempty"`
}

// AvailableUpdate is one skill the service reports as changed upstream.
type AvailableUpdate struct {
	Name       string `json:"name"`
	Source     string `json:"source"`
	CurrentSHA string `json:"currentSha,omitempty"`
	LatestSHA  string `json:"latestSha,omitempty"`
}

// CheckError is a per-skill failure in an otherwise successful check.
type CheckError struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

type checkRequest struct {
	Skills []SkillCheck `json:"skills"`
}

// CheckResponse is the update service's verdict.
type CheckResponse struct {
	Updates []AvailableUpdate `json:"updates"`
	Errors  []CheckError      `json:"errors"`
}

// Client queries the hosted update-check service, which compares recorded
// skill folder hashes against the current upstream trees in one batch.
type Client struct {
	client *resty.Client
}

func NewClient() *Client {
	return &Client{
		client: resty.New().
			SetBaseURL(checkUpdatesBaseURL).
			SetTimeout(30 * time.Second).
			SetHeader("User-Agent", "skillsmd"),
	}
}

// SetBaseURL overrides the service endpoint, for tests.
func (c *Client) SetBaseURL(url string) {
	c.client.SetBaseURL(url)
}

// CheckUpdates submits the installed skill set and returns the skills with
// newer upstream content.
func (c *Client) CheckUpdates(ctx context.Context, skills []SkillCheck) (*CheckResponse, error) {
	if len(skills) == 0 {
		return &CheckResponse{}, nil
	}

	var result CheckResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(checkRequest{Skills: skills}).
		SetResult(&result).
		Post("/check-updates")
	if err != nil {
		return nil, fmt.Errorf("update check failed: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("update service returned %d", resp.StatusCode())
	}
	return &result, nil
}
