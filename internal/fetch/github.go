package fetch

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/skillsmd/skillsmd/internal/provider"
)

const githubAPIBaseURL = "https://api.github.com"

// RepoContent is one entry from the GitHub repository contents API.
type RepoContent struct {
	Name        string `json:"name"`
	Path        string `json:"path"`
	Type        string `json:"type"`
	DownloadURL string `json:"download_url"`
}

// GitHubClient downloads repository trees through the GitHub contents API,
// which avoids a full clone for shorthand sources.
type GitHubClient struct {
	client *resty.Client
	logger provider.Logger
}

// NewGitHubClient builds an API client. A non-empty token lifts the
// unauthenticated rate limit.
func NewGitHubClient(token string) *GitHubClient {
	client := resty.New().
		SetBaseURL(githubAPIBaseURL).
		SetTimeout(30*time.Second).
		SetHeader("Accept", "application/vnd.github.v3+json").
		SetHeader("User-Agent", "skillsmd")
	if token != "" {
		client.SetAuthToken(token)
	}
	return &GitHubClient{client: client, logger: provider.NoOpLogger{}}
}

// SetLogger sets the logger. If no logger is set, a NoOpLogger is used
// which suppresses all log output.
func (c *GitHubClient) SetLogger(logger provider.Logger) {
	c.logger = logger
}

// SetBaseURL overrides the API endpoint, for tests.
func (c *GitHubClient) SetBaseURL(url string) {
	c.client.SetBaseURL(url)
}

// GetRepositoryContents lists a repository path. An empty ref uses the
// repository's default branch.
func (c *GitHubClient) GetRepositoryContents(ctx context.Context, owner, repo, path, ref string) ([]RepoContent, error) {
	req := c.client.R().SetContext(ctx)
	if ref != "" {
		req.SetQueryParam("ref", ref)
	}

	var contents []RepoContent
	resp, err := req.
		SetResult(&contents).
		Get(fmt.Sprintf("/repos/%s/%s/contents/%s", owner, repo, path))
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}

	if resp.StatusCode() == http.StatusForbidden && strings.Contains(resp.String(), "rate limit") {
		return nil, fmt.Errorf("GitHub API rate limit exceeded. Configure a token via 'skillsmd config set github_token <token>'")
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, fmt.Errorf("repository path %s/%s/%s not found", owner, repo, path)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("API returned %d: %s", resp.StatusCode(), resp.String())
	}

	return contents, nil
}

// DownloadRawContent fetches one file's raw bytes.
func (c *GitHubClient) DownloadRawContent(ctx context.Context, downloadURL string) ([]byte, error) {
	resp, err := c.client.R().SetContext(ctx).Get(downloadURL)
	if err != nil {
		return nil, fmt.Errorf("download failed: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("download returned %d", resp.StatusCode())
	}
	return resp.Body(), nil
}

// DownloadToTemp downloads a repository subtree into a fresh temp directory
// and returns its path. The caller owns cleanup.
func (c *GitHubClient) DownloadToTemp(ctx context.Context, owner, repo, subpath, ref string) (string, error) {
	contents, err := c.GetRepositoryContents(ctx, owner, repo, subpath, ref)
	if err != nil {
		return "", err
	}

	dir, err := os.MkdirTemp("", "skillsmd-*")
	if err != nil {
		return "", err
	}
	c.logger.Debug("downloading repository subtree", "repo", owner+"/"+repo, "path", subpath)

	if err := c.downloadContentsRecursive(ctx, owner, repo, ref, contents, dir); err != nil {
		os.RemoveAll(dir)
		return "", err
	}
	return dir, nil
}

func (c *GitHubClient) downloadContentsRecursive(ctx context.Context, owner, repo, ref string, contents []RepoContent, destDir string) error {
	for _, content := range contents {
		if strings.Contains(content.Name, "..") || strings.ContainsAny(content.Name, `/\`) {
			return fmt.Errorf("unsafe entry name %q in repository listing", content.Name)
		}
		target := filepath.Join(destDir, content.Name)

		switch content.Type {
		case "dir":
			sub, err := c.GetRepositoryContents(ctx, owner, repo, content.Path, ref)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
			if err := c.downloadContentsRecursive(ctx, owner, repo, ref, sub, target); err != nil {
				return err
			}
		case "file":
			data, err := c.DownloadRawContent(ctx, content.DownloadURL)
			if err != nil {
				return err
			}
			if err := os.WriteFile(target, data, 0o644); err != nil {
				return fmt.Errorf("failed to write file %s: %w", target, err)
			}
		}
	}
	return nil
}
