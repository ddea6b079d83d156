// Package types holds the shared data model for skills moving through the
// resolve / fetch / install pipeline.
package types

// Skill is a skill document discovered on disk. Path is the directory
// containing SKILL.md, not the file itself.
type Skill struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Path        string `json:"path"`
	Content     string `json:"content,omitempty"`
}

// RemoteSkill is a skill fetched from a remote host. InstallName is the
// filesystem-safe directory name, distinct from the display Name.
type RemoteSkill struct {
	Skill
	InstallName string         `json:"install_name"`
	SourceURL   string         `json:"source_url"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// InstallMode selects how a skill is materialized into an agent directory.
type InstallMode string

const (
	ModeSymlink InstallMode = "symlink"
	ModeCopy    InstallMode = "copy"
)

// InstallResult is the outcome of installing one skill for one agent.
// SymlinkFailed is set when symlink creation degraded to a copy.
type InstallResult struct {
	Success       bool        `json:"success"`
	Mode          InstallMode `json:"mode"`
	Path          string      `json:"path"`
	SymlinkFailed bool        `json:"symlink_failed,omitempty"`
	Error         string      `json:"error,omitempty"`
}

// InstalledSkill is a skill found in the canonical shared directory,
// attributed to the installed agents whose directories reference it.
type InstalledSkill struct {
	Skill
	Scope  string   `json:"scope"` // "project" or "global"
	Agents []string `json:"agents"`
}
