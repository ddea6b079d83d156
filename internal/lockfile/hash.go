package lockfile

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const githubAPIBaseURL = "https://api.github.com"

// ComputeContentHash returns the sha256 hex digest of skill content, used as
// the change marker for sources without a git tree (direct URLs, local
// paths).
func ComputeContentHash(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

type gitTreeEntry struct {
	Path string `json:"path"`
	Type string `json:"type"`
	SHA  string `json:"sha"`
}

type gitTree struct {
	SHA  string         `json:"sha"`
	Tree []gitTreeEntry `json:"tree"`
}

// HashClient resolves skill folder hashes from the GitHub git trees API.
type HashClient struct {
	client *resty.Client
}

// NewHashClient builds a client against api.github.com. A non-empty token is
// sent as a bearer credential to lift the unauthenticated rate limit.
func NewHashClient(token string) *HashClient {
	client := resty.New().
		SetBaseURL(githubAPIBaseURL).
		SetTimeout(30*time.Second).
		SetHeader("Accept", "application/vnd.github.v3+json").
		SetHeader("User-Agent", "skillsmd")
	if token != "" {
		client.SetAuthToken(token)
	}
	return &HashClient{client: client}
}

// SetBaseURL overrides the API endpoint, for tests.
func (c *HashClient) SetBaseURL(url string) {
	c.client.SetBaseURL(url)
}

// normalizeSkillPath turns a recorded skill path into the repo-relative
// folder the trees API knows: backslashes become slashes and a trailing
// SKILL.md component is dropped.
func normalizeSkillPath(skillPath string) string {
	p := strings.ReplaceAll(skillPath, `\`, "/")
	p = strings.Trim(p, "/")
	p = strings.TrimSuffix(p, "/SKILL.md")
	if p == "SKILL.md" {
		return ""
	}
	return p
}

// FetchSkillFolderHash returns the git tree sha for a skill folder inside a
// GitHub repository, trying the main branch then master. An empty skill path
// hashes the repository root. Returns "" when the hash cannot be resolved;
// callers treat a missing hash as "update status unknown", not an error.
func (c *HashClient) FetchSkillFolderHash(ctx context.Context, ownerRepo, skillPath string) string {
	if ownerRepo == "" {
		return ""
	}

	folder := normalizeSkillPath(skillPath)

	for _, branch := range []string{"main", "master"} {
		var tree gitTree
		resp, err := c.client.R().
			SetContext(ctx).
			SetResult(&tree).
			Get(fmt.Sprintf("/repos/%s/git/trees/%s?recursive=1", ownerRepo, branch))
		if err != nil || resp.StatusCode() != http.StatusOK {
			continue
		}

		if folder == "" {
			return tree.SHA
		}
		for _, entry := range tree.Tree {
			if entry.Type == "tree" && entry.Path == folder {
				return entry.SHA
			}
		}
	}
	return ""
}
