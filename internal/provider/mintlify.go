package provider

import (
	"context"
	"net/http"

	"github.com/go-resty/resty/v2"

	"github.com/skillsmd/skillsmd/internal/skillfile"
	"github.com/skillsmd/skillsmd/internal/types"
)

// MintlifyProvider fetches skills from documentation sites that serve a
// SKILL.md directly. The URL is already raw content - no rewriting needed.
type MintlifyProvider struct {
	client *resty.Client
	logger Logger
}

func NewMintlifyProvider(client *resty.Client) *MintlifyProvider {
	return &MintlifyProvider{client: client, logger: NoOpLogger{}}
}

func (p *MintlifyProvider) SetLogger(logger Logger) {
	p.logger = logger
}

func (p *MintlifyProvider) ID() string          { return "mintlify" }
func (p *MintlifyProvider) DisplayName() string { return "Mintlify" }

// Match accepts any HTTP(S) URL ending in /skill.md whose host is not a
// dedicated git host.
func (p *MintlifyProvider) Match(rawURL string) Match {
	if !isHTTP(rawURL) {
		return Match{}
	}
	if !endsWithSkillMD(rawURL) {
		return Match{}
	}
	if excludedGitHosts[hostname(rawURL)] {
		return Match{}
	}
	return Match{Matches: true, SourceIdentifier: p.SourceIdentifier(rawURL)}
}

func (p *MintlifyProvider) ToRawURL(rawURL string) string {
	return rawURL
}

func (p *MintlifyProvider) SourceIdentifier(rawURL string) string {
	host := hostname(rawURL)
	if host == "" {
		host = "com"
	}
	return "mintlify/" + host
}

func (p *MintlifyProvider) FetchSkill(ctx context.Context, rawURL string) (*types.RemoteSkill, error) {
	resp, err := p.client.R().SetContext(ctx).Get(rawURL)
	if err != nil || resp.StatusCode() != http.StatusOK {
		p.logger.Debug("skill document fetch failed", "url", rawURL)
		return nil, nil
	}

	doc, err := skillfile.Parse(resp.Body())
	if err != nil {
		p.logger.Warn("skill document has invalid front matter", "url", rawURL)
		return nil, nil
	}

	installName := doc.NestedString("mintlify-proj")
	if installName == "" {
		installName = deriveInstallName(doc.Name)
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
