// Package source classifies a user-supplied source string into a structured
// reference. Parsing is purely lexical: no network or filesystem access, and
// no error returns - ambiguous input degrades to the most specific matching
// case.
package source

import (
	"net/url"
	"regexp"
	"strings"
)

// Type identifies the kind of source a reference points at.
type Type string

const (
	TypeGitHub    Type = "github"
	TypeGitLab    Type = "gitlab"
	TypeGit       Type = "git"
	TypeLocal     Type = "local"
	TypeDirectURL Type = "direct-url"
)

// Ref is a parsed source reference. Exactly one of URL/LocalPath is
// meaningful per Type. For github/gitlab/git types URL always ends in ".git".
type Ref struct {
	Type        Type
	URL         string
	Ref         string
	Subpath     string
	SkillFilter string
	LocalPath   string
}

var (
	driveLetterRe = regexp.MustCompile(`^[A-Za-z]:[/\\]`)
	sshStyleRe    = regexp.MustCompile(`^[\w.+-]+@[\w.-]+:`)
	hostedRepoRe  = regexp.MustCompile(`^https?://(?:www\.)?(github|gitlab)\.com/`)
)

// Parse classifies the input. Classification order: local path, full
// GitHub/GitLab URL, GitHub shorthand (owner/repo), then the git / direct-url
// fallback. It never fails; unrecognized input falls through to a generic git
// reference with the URL left as given.
func Parse(input string) Ref {
	input = strings.TrimSpace(input)

	if isLocalPath(input) {
		return Ref{Type: TypeLocal, LocalPath: input}
	}

	if m := hostedRepoRe.FindStringSubmatch(input); m != nil {
		if ref, ok := parseHostedURL(input, m[1]); ok {
			return ref
		}
		// Fewer than two path segments: treat as a plain git URL.
		return Ref{Type: TypeGit, URL: input}
	}

	if sshStyleRe.MatchString(input) {
		return Ref{Type: TypeGit, URL: input}
	}

	if strings.HasPrefix(input, "http://") || strings.HasPrefix(input, "https://") {
		// Non-hosted HTTP(S): .git URLs go to the clone path, anything else
		// is handed to the provider registry.
		if strings.HasSuffix(input, ".git") {
			return Ref{Type: TypeGit, URL: input}
		}
		return Ref{Type: TypeDirectURL, URL: input}
	}

	if strings.Contains(input, "://") {
		return Ref{Type: TypeGit, URL: input}
	}

	if ref, ok := parseShorthand(input); ok {
		return ref
	}

	return Ref{Type: TypeGit, URL: input}
}

func isLocalPath(s string) bool {
	if s == "." || s == ".." {
		return true
	}
	for _, prefix := range []string{"/", "./", "../", `.\`, `..\`} {
		if strings.HasPrefix(s, prefix) {
			return true
		}
	}
	return driveLetterRe.MatchString(s)
}

func parseHostedURL(input, host string) (Ref, bool) {
	u, err := url.Parse(input)
	if err != nil {
		return Ref{}, false
	}

	segments := splitPath(u.Path)
	if len(segments) < 2 || segments[0] == "" || segments[1] == "" {
		return Ref{}, false
	}

	owner := segments[0]
	repo := strings.TrimSuffix(segments[1], ".git")

	ref := Ref{
		URL: "https://" + host + ".com/" + owner + "/" + repo + ".git",
	}

	var rest []string
	switch host {
	case "github":
		ref.Type = TypeGitHub
		rest = segments[2:]
		// /tree/<ref>/<subpath...>
		if len(rest) >= 2 && rest[0] == "tree" {
			ref.Ref = rest[1]
			ref.Subpath = strings.Join(rest[2:], "/")
		}
	case "gitlab":
		ref.Type = TypeGitLab
		rest = segments[2:]
		// /-/tree/<ref>/<subpath...>
		if len(rest) >= 3 && rest[0] == "-" && rest[1] == "tree" {
			ref.Ref = rest[2]
			ref.Subpath = strings.Join(rest[3:], "/")
		}
	default:
		return Ref{}, false
	}

	return ref, true
}

// parseShorthand handles owner/repo[/subpath][@skill-filter]. The filter is
// the suffix after the last "@", only when it appears after the owner/repo
// prefix (so SSH-style user@host strings never lose their "@").
func parseShorthand(input string) (Ref, bool) {
	body := input
	filter := ""
	if at := strings.LastIndex(input, "@"); at > 0 {
		body = input[:at]
		filter = input[at+1:]
	}

	segments := splitPath(body)
	if len(segments) < 2 || segments[0] == "" || segments[1] == "" {
		return Ref{}, false
	}

	owner := segments[0]
	repo := strings.TrimSuffix(segments[1], ".git")
	if repo == "" {
		return Ref{}, false
	}

	return Ref{
		Type:        TypeGitHub,
		URL:         "https://github.com/" + owner + "/" + repo + ".git",
		Subpath:     strings.Join(segments[2:], "/"),
		SkillFilter: filter,
	}, true
}

func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

// OwnerRepo extracts "owner/repo" from a github or gitlab reference. It
// returns "" for local, SSH, and custom-host references - callers must not
// assume extraction succeeds.
func OwnerRepo(ref Ref) string {
	if ref.Type != TypeGitHub && ref.Type != TypeGitLab {
		return ""
	}

	u, err := url.Parse(ref.URL)
	if err != nil {
		return ""
	}

	segments := splitPath(u.Path)
	if len(segments) < 2 {
		return ""
	}

	return segments[0] + "/" + strings.TrimSuffix(segments[1], ".git")
}
