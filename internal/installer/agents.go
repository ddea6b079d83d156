package installer

import (
	"os"
	"path/filepath"
)

// CanonicalSkillsDir is the shared per-scope directory every install writes
// through. Agents whose own layout points here (amp, kimi-cli) receive the
// content directly instead of a link.
const CanonicalSkillsDir = ".agents/skills"

// AgentLayout maps an agent id to its on-disk conventions. SkillsDir is
// relative to the scope root (cwd or home); DetectDir marks the agent as
// installed when present under the user's home.
type AgentLayout struct {
	ID          string
	DisplayName string
	SkillsDir   string
	DetectDir   string
}

// agentLayouts is ordered for stable presentation.
var agentLayouts = []AgentLayout{
	{ID: "amp", DisplayName: "Amp", SkillsDir: ".agents/skills", DetectDir: ".amp"},
	{ID: "kimi-cli", DisplayName: "Kimi CLI", SkillsDir: ".agents/skills", DetectDir: ".kimi"},
	{ID: "claude", DisplayName: "Claude Code", SkillsDir: ".claude/skills", DetectDir: ".claude"},
	{ID: "codex", DisplayName: "Codex", SkillsDir: ".codex/skills", DetectDir: ".codex"},
	{ID: "cursor", DisplayName: "Cursor", SkillsDir: ".cursor/skills", DetectDir: ".cursor"},
	{ID: "opencode", DisplayName: "opencode", SkillsDir: ".opencode/skills", DetectDir: ".opencode"},
	{ID: "windsurf", DisplayName: "Windsurf", SkillsDir: ".windsurf/skills", DetectDir: ".windsurf"},
	{ID: "cline", DisplayName: "Cline", SkillsDir: ".cline/skills", DetectDir: ".cline"},
	{ID: "copilot", DisplayName: "GitHub Copilot", SkillsDir: ".github/skills", DetectDir: ".copilot"},
	{ID: "gemini", DisplayName: "Gemini CLI", SkillsDir: ".gemini/skills", DetectDir: ".gemini"},
}

// AgentByID resolves an agent id against the layout table.
func AgentByID(id string) (AgentLayout, bool) {
	for _, layout := range agentLayouts {
		if layout.ID == id {
			return layout, true
		}
	}
	return AgentLayout{}, false
}

// AgentIDs returns every known agent id in table order.
func AgentIDs() []string {
	ids := make([]string, 0, len(agentLayouts))
	for _, layout := range agentLayouts {
		ids = append(ids, layout.ID)
	}
	return ids
}

// DetectInstalledAgents reports the agents whose marker directory exists
// under the user's home. Skills are only ever attributed to detected agents.
func DetectInstalledAgents() []string {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}

	var installed []string
	for _, layout := range agentLayouts {
		if _, err := os.Stat(filepath.Join(home, layout.DetectDir)); err == nil {
			installed = append(installed, layout.ID)
		}
	}
	return installed
}
