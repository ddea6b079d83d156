// Package discovery locates skill documents in a filesystem tree (a local
// path or a fetched repository) by the SKILL.md filename convention.
package discovery

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/skillsmd/skillsmd/internal/skillfile"
	"github.com/skillsmd/skillsmd/internal/types"
)

// Directories never searched for nested skills.
var skippedDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
}

// DiscoverSkills finds skill documents under rootDir. A valid root-level
// SKILL.md is always included; unless fullDepth is set it also
// short-circuits the search, which keeps scans of large repositories cheap.
// Nested documents are collected from any depth otherwise. Duplicate names
// keep the first occurrence (root wins over nested); invalid documents are
// skipped, never fatal.
func DiscoverSkills(rootDir string, fullDepth bool) []types.Skill {
	var skills []types.Skill
	seen := make(map[string]bool)

	if doc, err := skillfile.Load(rootDir); err == nil {
		skills = append(skills, types.Skill{
			Name:        doc.Name,
			Description: doc.Description,
			Path:        rootDir,
			Content:     doc.Content,
		})
		seen[doc.Name] = true

		if !fullDepth {
			return skills
		}
	}

	_ = filepath.WalkDir(rootDir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if entry.IsDir() && skippedDirs[entry.Name()] {
			return filepath.SkipDir
		}
		if entry.IsDir() || entry.Name() != skillfile.FileName {
			return nil
		}

		dir := filepath.Dir(path)
		if sameDir(dir, rootDir) {
			return nil // root document already handled
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		doc, err := skillfile.Parse(content)
		if err != nil {
			return nil
		}
		if seen[doc.Name] {
			return nil
		}

		seen[doc.Name] = true
		skills = append(skills, types.Skill{
			Name:        doc.Name,
			Description: doc.Description,
			Path:        dir,
			Content:     doc.Content,
		})
		return nil
	})

	return skills
}

func sameDir(a, b string) bool {
	return filepath.Clean(a) == filepath.Clean(b)
}

// FilterSkills selects skills whose declared name matches one of the given
// tokens, case-insensitively and whole-token. Multi-word names must arrive
// as a single quoted token; split tokens never match.
func FilterSkills(skills []types.Skill, names []string) []types.Skill {
	if len(names) == 0 {
		return nil
	}

	wanted := make(map[string]bool, len(names))
	for _, name := range names {
		wanted[strings.ToLower(name)] = true
	}

	var matched []types.Skill
	for _, skill := range skills {
		if wanted[strings.ToLower(skill.Name)] {
			matched = append(matched, skill)
		}
	}
	return matched
}
