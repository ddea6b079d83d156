package cmd

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/skillsmd/skillsmd/internal/source"
	"github.com/skillsmd/skillsmd/internal/types"
)

func TestPlural(t *testing.T) {
	if got := plural(1, "skill"); got != "1 skill" {
		t.Errorf("plural(1) = %q", got)
	}
	if got := plural(3, "skill"); got != "3 skills" {
		t.Errorf("plural(3) = %q", got)
	}
	if got := plural(0, "source"); got != "0 sources" {
		t.Errorf("plural(0) = %q", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 60); got != "short" {
		t.Errorf("truncate(short) = %q", got)
	}
	long := "this description is definitely much longer than the sixty character limit allows"
	got := truncate(long, 60)
	if len(got) != 60 {
		t.Errorf("len(truncate(long)) = %d, want 60", len(got))
	}

	// Rune-counted, so multibyte text cuts on character boundaries.
	wide := strings.Repeat("скилл ", 20)
	got = truncate(wide, 60)
	if !utf8.ValidString(got) {
		t.Errorf("truncate(wide) produced invalid UTF-8: %q", got)
	}
	if n := utf8.RuneCountInString(got); n != 60 {
		t.Errorf("rune count of truncate(wide) = %d, want 60", n)
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("truncate(wide) = %q, want ... suffix", got)
	}
}

func TestMaskToken(t *testing.T) {
	if got := maskToken(""); got != "(not set)" {
		t.Errorf("maskToken(empty) = %q", got)
	}
	if got := maskToken("short"); got != "********" {
		t.Errorf("maskToken(short) = %q", got)
	}
	got := maskToken("ghp_abcdefghijklmnop")
	if got != "ghp_...mnop" {
		t.Errorf("maskToken(long) = %q", got)
	}
}

func TestFilterCandidates(t *testing.T) {
	candidates := []skillCandidate{
		{skill: types.Skill{Name: "Code Review"}, installName: "code-review"},
		{skill: types.Skill{Name: "writing"}},
	}

	if got := filterCandidates(candidates, nil); len(got) != 2 {
		t.Errorf("no filter kept %d candidates, want 2", len(got))
	}
	if got := filterCandidates(candidates, []string{"WRITING"}); len(got) != 1 || got[0].skill.Name != "writing" {
		t.Errorf("filter by name = %v", got)
	}
	// The install name matches too, so @filters work against sanitized names.
	if got := filterCandidates(candidates, []string{"code-review"}); len(got) != 1 {
		t.Errorf("filter by install name kept %d, want 1", len(got))
	}
	if got := filterCandidates(candidates, []string{"missing"}); len(got) != 0 {
		t.Errorf("unknown filter kept %d, want 0", len(got))
	}
}

// Updates reinstall by the lock key, which is the sanitized skill name.
// Restricting by that key must pick out exactly its candidate even when the
// source offers siblings.
func TestFilterCandidatesByLockKey(t *testing.T) {
	candidates := []skillCandidate{
		{skill: types.Skill{Name: "PDF Processing"}},
		{skill: types.Skill{Name: "Web Scraping"}},
	}

	got := filterCandidates(candidates, []string{"pdf-processing"})
	if len(got) != 1 || got[0].skill.Name != "PDF Processing" {
		t.Errorf("filterCandidates(pdf-processing) = %v, want only PDF Processing", got)
	}
}

func TestSelectedSkillNames(t *testing.T) {
	ref := source.Parse("owner/repo@my-skill")

	addFlags.skills = []string{"other"}
	defer func() { addFlags.skills = nil }()

	names := selectedSkillNames(ref)
	if len(names) != 2 || names[0] != "other" || names[1] != "my-skill" {
		t.Errorf("selectedSkillNames() = %v, want [other my-skill]", names)
	}
}
