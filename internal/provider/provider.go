// Package provider implements the host provider abstraction: strategy
// objects that recognize and fetch skill documents from one class of remote
// host. Providers are consulted through an explicitly constructed Registry
// so the resolution pipeline stays testable.
package provider

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/skillsmd/skillsmd/internal/types"
)

const requestTimeout = 30 * time.Second

// Hosts that have dedicated handling and must never be claimed by the
// generic document providers.
var excludedGitHosts = map[string]bool{
	"github.com":                true,
	"gitlab.com":                true,
	"huggingface.co":            true,
	"raw.githubusercontent.com": true,
}

// Match is a provider's verdict on a URL. SourceIdentifier is a grouping
// key for telemetry and update batching, e.g. "mintlify/docs.example.com".
type Match struct {
	Matches          bool
	SourceIdentifier string
}

// HostProvider is the capability set every skill host implements.
// FetchSkill returns (nil, nil) when the host has no valid skill at the URL;
// callers surface that as a generic "could not fetch" outcome.
type HostProvider interface {
	ID() string
	DisplayName() string
	Match(rawURL string) Match
	ToRawURL(rawURL string) string
	FetchSkill(ctx context.Context, rawURL string) (*types.RemoteSkill, error)
	SourceIdentifier(rawURL string) string
}

// Logger receives diagnostic output from providers. Fetch misses surface to
// callers as nil results, so the logger is the only place the underlying
// cause is visible.
type Logger interface {
	Debug(msg string, fields ...interface{})
	Info(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
	Error(msg string, err error, fields ...interface{})
}

type NoOpLogger struct{}

func (l NoOpLogger) Debug(msg string, fields ...interface{})            {}
func (l NoOpLogger) Info(msg string, fields ...interface{})             {}
func (l NoOpLogger) Warn(msg string, fields ...interface{})             {}
func (l NoOpLogger) Error(msg string, err error, fields ...interface{}) {}

// NewHTTPClient builds the resty client providers share: a single attempt
// per request with a fixed timeout, no automatic retries.
func NewHTTPClient() *resty.Client {
	client := resty.New()
	client.SetTimeout(requestTimeout)
	client.SetHeader("User-Agent", "skillsmd")
	return client
}

func hostname(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

func isHTTP(rawURL string) bool {
	return strings.HasPrefix(rawURL, "http://") || strings.HasPrefix(rawURL, "https://")
}

func endsWithSkillMD(rawURL string) bool {
	return strings.HasSuffix(strings.ToLower(rawURL), "/skill.md")
}

// deriveInstallName turns a display name into a directory-friendly slug.
// Host-specific metadata overrides take precedence over this fallback.
func deriveInstallName(displayName string) string {
	return strings.ReplaceAll(strings.ToLower(displayName), " ", "-")
}
