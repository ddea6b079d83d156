package initializer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/skillsmd/skillsmd/internal/skillfile"
)

const skillTemplate = `---
name: %s
description: Describe when an agent should reach for this skill.
---

# %s

Explain the workflow this skill teaches. Agents read this document when the
description above matches their current task.

## Usage

Describe the steps, commands, or conventions the agent should follow.
`

// Scaffold creates a new skill directory containing a SKILL.md template.
// An empty name scaffolds into dir itself using the directory's base name.
func Scaffold(dir, name string) (string, error) {
	target := dir
	skillName := name
	if name != "" {
		target = filepath.Join(dir, name)
	} else {
		skillName = filepath.Base(absOrSelf(dir))
	}
	skillName = strings.TrimSpace(skillName)
	if skillName == "" || skillName == "." || skillName == string(filepath.Separator) {
		skillName = "my-skill"
	}

	path := filepath.Join(target, skillfile.FileName)
	if _, err := os.Stat(path); err == nil {
		return "", &InitError{Type: ErrTypeAlreadyExists, Message: fmt.Sprintf("%s already exists", path)}
	}

	if err := os.MkdirAll(target, 0o755); err != nil {
		return "", &InitError{Type: ErrTypeDirCreate, Message: "failed to create skill directory", Err: err}
	}

	content := fmt.Sprintf(skillTemplate, skillName, skillName)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", &InitError{Type: ErrTypeFileWrite, Message: "failed to write " + skillfile.FileName, Err: err}
	}
	return path, nil
}

func absOrSelf(dir string) string {
	if abs, err := filepath.Abs(dir); err == nil {
		return abs
	}
	return dir
}
