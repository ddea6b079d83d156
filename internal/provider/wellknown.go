package provider

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/go-resty/resty/v2"

	"github.com/skillsmd/skillsmd/internal/skillfile"
	"github.com/skillsmd/skillsmd/internal/types"
)

const (
	wellKnownSuffix = "/.well-known/skills"

	// Fan-out limit for per-skill file fetches and index-wide skill fetches.
	maxConcurrentFetches = 5
)

// WellKnownSkillEntry is one skill listed in a well-known index.json.
type WellKnownSkillEntry struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Files       []string `json:"files"`
}

// WellKnownIndex is the index.json document at <base>/.well-known/skills.
type WellKnownIndex struct {
	Skills []WellKnownSkillEntry `json:"skills"`
}

// WellKnownSkill is a fetched well-known skill with every listed file.
// Files is keyed by filename and always contains SKILL.md.
type WellKnownSkill struct {
	types.RemoteSkill
	Files      map[string]string
	IndexEntry *WellKnownSkillEntry
}

// WellKnownProvider implements the RFC 8615 style discovery protocol:
// an index.json under <base>/.well-known/skills listing skills, each served
// from <base>/.well-known/skills/<name>/SKILL.md.
//
// It is the registry fallback, matching any HTTP(S) URL no other provider
// claims.
type WellKnownProvider struct {
	client *resty.Client
	logger Logger
}

func NewWellKnownProvider(client *resty.Client) *WellKnownProvider {
	return &WellKnownProvider{client: client, logger: NoOpLogger{}}
}

func (p *WellKnownProvider) SetLogger(logger Logger) {
	p.logger = logger
}

func (p *WellKnownProvider) ID() string          { return "well-known" }
func (p *WellKnownProvider) DisplayName() string { return "Well-Known Skills" }

func (p *WellKnownProvider) Match(rawURL string) Match {
	if !isHTTP(rawURL) {
		return Match{}
	}
	if excludedGitHosts[hostname(rawURL)] {
		return Match{}
	}
	if endsWithSkillMD(rawURL) {
		return Match{} // direct document URLs belong to mintlify
	}
	if strings.HasSuffix(rawURL, ".git") {
		return Match{}
	}
	return Match{Matches: true, SourceIdentifier: p.SourceIdentifier(rawURL)}
}

func (p *WellKnownProvider) ToRawURL(rawURL string) string {
	return rawURL
}

// SourceIdentifier is the bare hostname for well-known sources.
func (p *WellKnownProvider) SourceIdentifier(rawURL string) string {
	if host := hostname(rawURL); host != "" {
		return host
	}
	return rawURL
}

// WellKnownBase computes <scheme>://<host><path>/.well-known/skills for a
// URL, idempotently: a URL already containing the suffix is truncated back
// to it.
func WellKnownBase(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return strings.TrimRight(rawURL, "/") + wellKnownSuffix
	}

	path := strings.TrimRight(u.Path, "/")
	if idx := strings.Index(path, wellKnownSuffix); idx >= 0 {
		path = path[:idx+len(wellKnownSuffix)]
	} else {
		path += wellKnownSuffix
	}

	return u.Scheme + "://" + u.Host + path
}

// FetchIndex retrieves and decodes index.json for the endpoint, or nil when
// the endpoint has no usable index.
func (p *WellKnownProvider) FetchIndex(ctx context.Context, baseURL string) *WellKnownIndex {
	var index WellKnownIndex
	resp, err := p.client.R().
		SetContext(ctx).
		SetResult(&index).
		Get(WellKnownBase(baseURL) + "/index.json")
	if err != nil || resp.StatusCode() != http.StatusOK {
		p.logger.Debug("no skills index", "url", baseURL)
		return nil
	}
	return &index
}

// HasSkillsIndex reports whether the URL serves a non-empty skills index.
func (p *WellKnownProvider) HasSkillsIndex(ctx context.Context, rawURL string) bool {
	index := p.FetchIndex(ctx, rawURL)
	return index != nil && len(index.Skills) > 0
}

// validSkillFile rejects path-traversal style filenames from the index.
func validSkillFile(name string) bool {
	if name == "" {
		return false
	}
	if strings.HasPrefix(name, "/") || strings.HasPrefix(name, `\`) {
		return false
	}
	return !strings.Contains(name, "..")
}

// FetchSkillByEntry fetches one indexed skill: SKILL.md first (required),
// then every other listed file concurrently. A failed sibling file is
// dropped without aborting the rest.
func (p *WellKnownProvider) FetchSkillByEntry(ctx context.Context, baseURL string, entry WellKnownSkillEntry) *WellKnownSkill {
	skillBase := WellKnownBase(baseURL) + "/" + entry.Name
	skillMDURL := skillBase + "/" + skillfile.FileName

	resp, err := p.client.R().SetContext(ctx).Get(skillMDURL)
	if err != nil || resp.StatusCode() != http.StatusOK {
		return nil
	}

	content := string(resp.Body())
	name := entry.Name
	description := entry.Description
	var metadata map[string]any

	// Front matter refines the index entry but its absence is not fatal here:
	// the index already carries name and description.
	if doc, err := skillfile.Parse(resp.Body()); err == nil {
		name = doc.Name
		description = doc.Description
		metadata = doc.Metadata
	}

	files := map[string]string{skillfile.FileName: content}

	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		sem = make(chan struct{}, maxConcurrentFetches)
	)

	for _, filename := range entry.Files {
		if filename == skillfile.FileName || !validSkillFile(filename) {
			continue
		}

		wg.Add(1)
		go func(filename string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			resp, err := p.client.R().SetContext(ctx).Get(skillBase + "/" + filename)
			if err != nil || resp.StatusCode() != http.StatusOK {
				p.logger.Warn("skill file fetch failed", "skill", entry.Name, "file", filename)
				return
			}

			mu.Lock()
			files[filename] = string(resp.Body())
			mu.Unlock()
		}(filename)
	}
	wg.Wait()

	return &WellKnownSkill{
		RemoteSkill: types.RemoteSkill{
			Skill: types.Skill{
				Name:        name,
				Description: description,
				Content:     content,
			},
			InstallName: entry.Name,
			SourceURL:   skillMDURL,
			Metadata:    metadata,
		},
		Files:      files,
		IndexEntry: &entry,
	}
}

// FetchSkill resolves a single skill from the endpoint. A skill name
// embedded in the URL after /.well-known/skills/ selects a specific index
// entry; otherwise the first indexed skill is returned.
func (p *WellKnownProvider) FetchSkill(ctx context.Context, rawURL string) (*types.RemoteSkill, error) {
	index := p.FetchIndex(ctx, rawURL)
	if index == nil || len(index.Skills) == 0 {
		return nil, nil
	}

	wanted := skillNameFromURL(rawURL)
	if wanted != "" {
		for _, entry := range index.Skills {
			if entry.Name == wanted {
				if skill := p.FetchSkillByEntry(ctx, rawURL, entry); skill != nil {
					return &skill.RemoteSkill, nil
				}
				return nil, nil
			}
		}
		return nil, nil
	}

	if skill := p.FetchSkillByEntry(ctx, rawURL, index.Skills[0]); skill != nil {
		return &skill.RemoteSkill, nil
	}
	return nil, nil
}

// FetchAllSkills fetches every indexed skill concurrently, dropping entries
// that fail.
func (p *WellKnownProvider) FetchAllSkills(ctx context.Context, rawURL string) []*WellKnownSkill {
	index := p.FetchIndex(ctx, rawURL)
	if index == nil || len(index.Skills) == 0 {
		return nil
	}

	results := make([]*WellKnownSkill, len(index.Skills))

	var wg sync.WaitGroup
	sem := make(chan struct{}, maxConcurrentFetches)

	for i, entry := range index.Skills {
		wg.Add(1)
		go func(idx int, entry WellKnownSkillEntry) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			results[idx] = p.FetchSkillByEntry(ctx, rawURL, entry)
		}(i, entry)
	}
	wg.Wait()

	var skills []*WellKnownSkill
	for _, skill := range results {
		if skill != nil {
			skills = append(skills, skill)
		}
	}
	return skills
}

func skillNameFromURL(rawURL string) string {
	marker := wellKnownSuffix + "/"
	idx := strings.Index(rawURL, marker)
	if idx < 0 {
		return ""
	}

	remainder := strings.Trim(rawURL[idx+len(marker):], "/")
	if remainder == "" || strings.Contains(remainder, "/") {
		return ""
	}
	return remainder
}
