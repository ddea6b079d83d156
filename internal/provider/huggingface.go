package provider

import (
	"context"
	"net/http"
	"regexp"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/skillsmd/skillsmd/internal/skillfile"
	"github.com/skillsmd/skillsmd/internal/types"
)

var hfSpacesRe = regexp.MustCompile(`/spaces/([^/]+)/([^/]+)`)

// HuggingFaceProvider fetches skills from HuggingFace Spaces that publish a
// SKILL.md file.
type HuggingFaceProvider struct {
	client *resty.Client
	logger Logger
}

func NewHuggingFaceProvider(client *resty.Client) *HuggingFaceProvider {
	return &HuggingFaceProvider{client: client, logger: NoOpLogger{}}
}

func (p *HuggingFaceProvider) SetLogger(logger Logger) {
	p.logger = logger
}

func (p *HuggingFaceProvider) ID() string          { return "huggingface" }
func (p *HuggingFaceProvider) DisplayName() string { return "HuggingFace" }

func (p *HuggingFaceProvider) parseURL(rawURL string) (owner, repo string, ok bool) {
	m := hfSpacesRe.FindStringSubmatch(rawURL)
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}

// Match accepts huggingface.co Spaces URLs ending in /skill.md.
func (p *HuggingFaceProvider) Match(rawURL string) Match {
	if !isHTTP(rawURL) {
		return Match{}
	}
	if hostname(rawURL) != "huggingface.co" {
		return Match{}
	}
	if !strings.Contains(rawURL, "/spaces/") {
		return Match{}
	}
	if !endsWithSkillMD(rawURL) {
		return Match{}
	}
	return Match{Matches: true, SourceIdentifier: p.SourceIdentifier(rawURL)}
}

// ToRawURL rewrites HuggingFace blob URLs to raw content URLs.
func (p *HuggingFaceProvider) ToRawURL(rawURL string) string {
	return strings.Replace(rawURL, "/blob/", "/raw/", 1)
}

func (p *HuggingFaceProvider) SourceIdentifier(rawURL string) string {
	if owner, repo, ok := p.parseURL(rawURL); ok {
		return "huggingface/" + owner + "/" + repo
	}
	return "huggingface"
}

func (p *HuggingFaceProvider) FetchSkill(ctx context.Context, rawURL string) (*types.RemoteSkill, error) {
	resp, err := p.client.R().SetContext(ctx).Get(p.ToRawURL(rawURL))
	if err != nil || resp.StatusCode() != http.StatusOK {
		p.logger.Debug("skill document fetch failed", "url", rawURL)
		return nil, nil
	}

	doc, err := skillfile.Parse(resp.Body())
	if err != nil {
		p.logger.Warn("skill document has invalid front matter", "url", rawURL)
		return nil, nil
	}

	installName := doc.NestedString("install-name")
	if installName == "" {
		if _, repo, ok := p.parseURL(rawURL); ok {
			installName = repo
		} else {
			installName = deriveInstallName(doc.Name)
		}
	}

	return &types.RemoteSkill{
		Skill: types.Skill{
			Name:        doc.Name,
			Description: doc.Description,
			Content:     doc.Content,
		},
		InstallName: installName,
		SourceURL:   rawURL,
		Metadata:    doc.Metadata,
	}, nil
}
