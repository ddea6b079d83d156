package installer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/skillsmd/skillsmd/internal/skillfile"
	"github.com/skillsmd/skillsmd/internal/types"
)

const maxSkillNameLength = 255

var (
	pathSeparatorRe = regexp.MustCompile(`[/\\]+`)
	unsafeCharsRe   = regexp.MustCompile(`[^a-z0-9._-]+`)
	hyphenRunRe     = regexp.MustCompile(`-{2,}`)
)

// SanitizeName converts an arbitrary skill name into a safe directory name.
// Path separators become hyphens, dot and dot-dot segments are dropped, and
// anything outside [a-z0-9._-] collapses to a single hyphen. The result is
// stable under repeated application.
func SanitizeName(name string) string {
	lowered := strings.ToLower(name)

	var segments []string
	for _, seg := range pathSeparatorRe.Split(lowered, -1) {
		if seg == "" || seg == "." || seg == ".." {
			continue
		}
		segments = append(segments, seg)
	}

	sanitized := strings.Join(segments, "-")
	sanitized = unsafeCharsRe.ReplaceAllString(sanitized, "-")
	sanitized = hyphenRunRe.ReplaceAllString(sanitized, "-")
	sanitized = strings.Trim(sanitized, ".-")

	if len(sanitized) > maxSkillNameLength {
		sanitized = strings.Trim(sanitized[:maxSkillNameLength], ".-")
	}
	if sanitized == "" {
		return "unnamed-skill"
	}
	return sanitized
}

// pathLocks serializes writers of a canonical skill directory. Installs for
// several agents run concurrently and share that directory.
var pathLocks sync.Map

func lockPath(path string) *sync.Mutex {
	m, _ := pathLocks.LoadOrStore(path, &sync.Mutex{})
	return m.(*sync.Mutex)
}

// Installer places skills into agent directories. DetectAgents is injectable
// so tests can pin the agent set without touching the user's home.
type Installer struct {
	DetectAgents func() []string
}

func New() *Installer {
	return &Installer{DetectAgents: DetectInstalledAgents}
}

func (i *Installer) scopeRoot(isGlobal bool, cwd string) (string, error) {
	if isGlobal {
		return os.UserHomeDir()
	}
	if cwd != "" {
		return cwd, nil
	}
	return os.Getwd()
}

// InstallSkillForAgent installs one skill for one agent. Content is
// materialized under the shared .agents/skills directory of the scope root,
// and the agent's own skills directory receives a symlink to it, or a full
// copy when mode is copy or the symlink cannot be created.
func (i *Installer) InstallSkillForAgent(skill types.Skill, agentID string, isGlobal bool, cwd string, mode types.InstallMode) types.InstallResult {
	layout, ok := AgentByID(agentID)
	if !ok {
		return types.InstallResult{Error: fmt.Sprintf("unknown agent %q", agentID)}
	}

	root, err := i.scopeRoot(isGlobal, cwd)
	if err != nil {
		return types.InstallResult{Error: err.Error()}
	}

	dirName := SanitizeName(skill.Name)
	canonical := filepath.Join(root, filepath.FromSlash(CanonicalSkillsDir), dirName)
	agentPath := filepath.Join(root, filepath.FromSlash(layout.SkillsDir), dirName)

	mu := lockPath(canonical)
	mu.Lock()
	err = materializeSkill(skill, canonical)
	mu.Unlock()
	if err != nil {
		return types.InstallResult{Error: err.Error()}
	}

	// Agent layout already points at the canonical directory.
	if agentPath == canonical {
		return types.InstallResult{Success: true, Mode: mode, Path: canonical}
	}

	if err := os.MkdirAll(filepath.Dir(agentPath), 0o755); err != nil {
		return types.InstallResult{Error: err.Error()}
	}
	if _, err := os.Lstat(agentPath); err == nil {
		if err := os.RemoveAll(agentPath); err != nil {
			return types.InstallResult{Error: err.Error()}
		}
	}

	if mode == types.ModeCopy {
		if err := copyTree(canonical, agentPath); err != nil {
			return types.InstallResult{Error: err.Error()}
		}
		return types.InstallResult{Success: true, Mode: types.ModeCopy, Path: agentPath}
	}

	if err := os.Symlink(canonical, agentPath); err != nil {
		// Filesystems without symlink support degrade to a copy.
		if copyErr := copyTree(canonical, agentPath); copyErr != nil {
			return types.InstallResult{Error: copyErr.Error()}
		}
		return types.InstallResult{Success: true, Mode: types.ModeCopy, Path: agentPath, SymlinkFailed: true}
	}

	return types.InstallResult{Success: true, Mode: types.ModeSymlink, Path: agentPath}
}

// InstallSkillShared materializes only the canonical copy, used when no
// agent is detected or selected. Any agent configured later picks the skill
// up from the shared directory.
func (i *Installer) InstallSkillShared(skill types.Skill, isGlobal bool, cwd string) types.InstallResult {
	root, err := i.scopeRoot(isGlobal, cwd)
	if err != nil {
		return types.InstallResult{Error: err.Error()}
	}

	canonical := filepath.Join(root, filepath.FromSlash(CanonicalSkillsDir), SanitizeName(skill.Name))

	mu := lockPath(canonical)
	mu.Lock()
	err = materializeSkill(skill, canonical)
	mu.Unlock()
	if err != nil {
		return types.InstallResult{Error: err.Error()}
	}
	return types.InstallResult{Success: true, Mode: types.ModeCopy, Path: canonical}
}

// materializeSkill writes the skill content to dir. A stale symlink at dir,
// including one pointing at itself from an earlier broken install, is removed
// before writing.
func materializeSkill(skill types.Skill, dir string) error {
	if info, err := os.Lstat(dir); err == nil && info.Mode()&os.ModeSymlink != 0 {
		if err := os.Remove(dir); err != nil {
			return err
		}
	}

	if skill.Path != "" {
		if src, err := filepath.Abs(skill.Path); err == nil {
			if dst, err := filepath.Abs(dir); err == nil && src == dst {
				return nil
			}
		}
		if info, err := os.Stat(skill.Path); err == nil && info.IsDir() {
			return copyTree(skill.Path, dir)
		}
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, skillfile.FileName), []byte(skill.Content), 0o644)
}

// copyTree copies a directory recursively, replacing dst. Symlinks to files
// are resolved into regular copies; dangling links and links to directories
// are skipped so a copy never carries dead links or loops.
func copyTree(src, dst string) error {
	if err := os.RemoveAll(dst); err != nil {
		return err
	}

	return filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		if info.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		if info.Mode()&os.ModeSymlink != 0 {
			resolved, err := os.Stat(path)
			if err != nil || resolved.IsDir() {
				return nil
			}
		}
		return copyFile(path, target)
	})
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}

// Uninstall removes a skill's canonical directory and every agent link or
// copy that points at it within the scope.
func (i *Installer) Uninstall(name string, isGlobal bool, cwd string) error {
	root, err := i.scopeRoot(isGlobal, cwd)
	if err != nil {
		return err
	}

	dirName := SanitizeName(name)
	seen := map[string]bool{}

	for _, layout := range agentLayouts {
		path := filepath.Join(root, filepath.FromSlash(layout.SkillsDir), dirName)
		if seen[path] {
			continue
		}
		seen[path] = true

		if _, err := os.Lstat(path); err != nil {
			continue
		}
		if err := os.RemoveAll(path); err != nil {
			return err
		}
	}

	canonical := filepath.Join(root, filepath.FromSlash(CanonicalSkillsDir), dirName)
	if _, err := os.Lstat(canonical); err == nil {
		return os.RemoveAll(canonical)
	}
	return nil
}

// RemoveAgentLinks removes the given agents' copies of a skill, leaving the
// canonical directory and other agents untouched.
func (i *Installer) RemoveAgentLinks(name string, isGlobal bool, cwd string, agents []string) error {
	root, err := i.scopeRoot(isGlobal, cwd)
	if err != nil {
		return err
	}

	dirName := SanitizeName(name)
	for _, agentID := range agents {
		layout, ok := AgentByID(agentID)
		if !ok {
			return fmt.Errorf("unknown agent %q", agentID)
		}
		path := filepath.Join(root, filepath.FromSlash(layout.SkillsDir), dirName)
		if _, err := os.Lstat(path); err != nil {
			continue
		}
		if err := os.RemoveAll(path); err != nil {
			return err
		}
	}
	return nil
}

// InstalledSkillNames lists the directory names under the scope's canonical
// skills directory.
func (i *Installer) InstalledSkillNames(isGlobal bool, cwd string) ([]string, error) {
	root, err := i.scopeRoot(isGlobal, cwd)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(filepath.Join(root, filepath.FromSlash(CanonicalSkillsDir)))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}

// ListInstalledSkills enumerates skills under the scope's canonical
// directory and attributes each to the detected agents that carry it. Agents
// not detected on this machine are never reported, even if their directory
// happens to contain the skill.
func (i *Installer) ListInstalledSkills(isGlobal bool, cwd string, agentFilter []string) ([]types.InstalledSkill, error) {
	root, err := i.scopeRoot(isGlobal, cwd)
	if err != nil {
		return nil, err
	}

	canonicalDir := filepath.Join(root, filepath.FromSlash(CanonicalSkillsDir))
	entries, err := os.ReadDir(canonicalDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	detect := i.DetectAgents
	if detect == nil {
		detect = DetectInstalledAgents
	}
	agents := filterAgents(detect(), agentFilter)

	scope := "project"
	if isGlobal {
		scope = "global"
	}

	var installed []types.InstalledSkill
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		skillDir := filepath.Join(canonicalDir, entry.Name())
		doc, err := skillfile.Load(skillDir)
		if err != nil {
			continue
		}

		// Every valid canonical skill is listed; agent detection only
		// decides the attribution, so a shared-only install still shows up.
		var holders []string
		for _, agentID := range agents {
			layout, ok := AgentByID(agentID)
			if !ok {
				continue
			}
			agentPath := filepath.Join(root, filepath.FromSlash(layout.SkillsDir), entry.Name())
			if _, err := os.Lstat(agentPath); err == nil {
				holders = append(holders, agentID)
			}
		}

		installed = append(installed, types.InstalledSkill{
			Skill: types.Skill{
				Name:        doc.Name,
				Description: doc.Description,
				Path:        skillDir,
				Content:     doc.Content,
			},
			Scope:  scope,
			Agents: holders,
		})
	}

	return installed, nil
}

func filterAgents(detected, filter []string) []string {
	if len(filter) == 0 {
		return detected
	}

	allowed := map[string]bool{}
	for _, id := range filter {
		allowed[id] = true
	}

	var out []string
	for _, id := range detected {
		if allowed[id] {
			out = append(out, id)
		}
	}
	return out
}
