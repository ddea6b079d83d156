package installer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/skillsmd/skillsmd/internal/types"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "simple", input: "my-skill", want: "my-skill"},
		{name: "uppercase", input: "My Skill", want: "my-skill"},
		{name: "dots preserved", input: "bun.sh", want: "bun.sh"},
		{name: "slash becomes hyphen", input: "vercel/next.js", want: "vercel-next.js"},
		{name: "traversal removed", input: "../etc/passwd", want: "etc-passwd"},
		{name: "deep traversal removed", input: "../../secret", want: "secret"},
		{name: "windows traversal removed", input: `..\..\secret`, want: "secret"},
		{name: "windows path", input: `C:\Windows\System32`, want: "c-windows-system32"},
		{name: "absolute path", input: "/etc/passwd", want: "etc-passwd"},
		{name: "leading dot stripped", input: ".hidden", want: "hidden"},
		{name: "trailing dot stripped", input: "skill.", want: "skill"},
		{name: "only dots", input: "...", want: "unnamed-skill"},
		{name: "empty", input: "", want: "unnamed-skill"},
		{name: "special chars collapse", input: "a!!b??c", want: "a-b-c"},
		{name: "unicode stripped", input: "skill日本語", want: "skill"},
		{name: "underscore collapses", input: "skill_v2", want: "skill-v2"},
		{name: "url-ish input", input: "https://example.com", want: "https-example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeName(tt.input)
			if got != tt.want {
				t.Errorf("SanitizeName(%q) = %q, want %q", tt.input, got, tt.want)
			}
			if again := SanitizeName(got); again != got {
				t.Errorf("SanitizeName is not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestSanitizeNameTruncates(t *testing.T) {
	long := strings.Repeat("a", 300)
	got := SanitizeName(long)
	if len(got) != 255 {
		t.Errorf("len(SanitizeName(long)) = %d, want 255", len(got))
	}
}

func testSkill(name string) types.Skill {
	return types.Skill{
		Name:        name,
		Description: "a test skill",
		Content:     "---\nname: " + name + "\ndescription: a test skill\n---\n\nbody\n",
	}
}

func TestInstallSkillForAgentSymlink(t *testing.T) {
	root := t.TempDir()
	inst := New()

	result := inst.InstallSkillForAgent(testSkill("my-skill"), "claude", false, root, types.ModeSymlink)
	if !result.Success {
		t.Fatalf("install failed: %s", result.Error)
	}
	if result.Mode != types.ModeSymlink {
		t.Errorf("Mode = %v, want symlink", result.Mode)
	}

	canonical := filepath.Join(root, ".agents", "skills", "my-skill")
	if _, err := os.Stat(filepath.Join(canonical, "SKILL.md")); err != nil {
		t.Errorf("canonical SKILL.md missing: %v", err)
	}

	agentPath := filepath.Join(root, ".claude", "skills", "my-skill")
	info, err := os.Lstat(agentPath)
	if err != nil {
		t.Fatalf("agent path missing: %v", err)
	}
	if info.Mode()&os.ModeSymlink == 0 {
		t.Error("agent path is not a symlink")
	}
	target, err := os.Readlink(agentPath)
	if err != nil {
		t.Fatal(err)
	}
	if target != canonical {
		t.Errorf("symlink target = %q, want %q", target, canonical)
	}
}

func TestInstallSkillForAgentCopy(t *testing.T) {
	root := t.TempDir()
	inst := New()

	result := inst.InstallSkillForAgent(testSkill("copied"), "cursor", false, root, types.ModeCopy)
	if !result.Success {
		t.Fatalf("install failed: %s", result.Error)
	}
	if result.Mode != types.ModeCopy {
		t.Errorf("Mode = %v, want copy", result.Mode)
	}

	agentPath := filepath.Join(root, ".cursor", "skills", "copied")
	info, err := os.Lstat(agentPath)
	if err != nil {
		t.Fatalf("agent path missing: %v", err)
	}
	if info.Mode()&os.ModeSymlink != 0 {
		t.Error("copy mode produced a symlink")
	}
	if _, err := os.Stat(filepath.Join(agentPath, "SKILL.md")); err != nil {
		t.Errorf("copied SKILL.md missing: %v", err)
	}
}

func TestInstallSkillForAgentCanonicalAgent(t *testing.T) {
	root := t.TempDir()
	inst := New()

	// amp's skills directory is the canonical directory itself; the install
	// must not create a self-referential symlink.
	result := inst.InstallSkillForAgent(testSkill("shared"), "amp", false, root, types.ModeSymlink)
	if !result.Success {
		t.Fatalf("install failed: %s", result.Error)
	}

	path := filepath.Join(root, ".agents", "skills", "shared")
	info, err := os.Lstat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode()&os.ModeSymlink != 0 {
		t.Error("canonical agent install produced a symlink")
	}
}

func TestInstallSkillRepairsSelfLoop(t *testing.T) {
	root := t.TempDir()
	inst := New()

	canonical := filepath.Join(root, ".agents", "skills", "looped")
	if err := os.MkdirAll(filepath.Dir(canonical), 0o755); err != nil {
		t.Fatal(err)
	}
	// A broken earlier install left the canonical path as a symlink to
	// itself.
	if err := os.Symlink(canonical, canonical); err != nil {
		t.Fatal(err)
	}

	result := inst.InstallSkillForAgent(testSkill("looped"), "amp", false, root, types.ModeSymlink)
	if !result.Success {
		t.Fatalf("install failed: %s", result.Error)
	}

	info, err := os.Lstat(canonical)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode()&os.ModeSymlink != 0 {
		t.Error("self-loop symlink survived the install")
	}
	if _, err := os.Stat(filepath.Join(canonical, "SKILL.md")); err != nil {
		t.Errorf("SKILL.md missing after repair: %v", err)
	}
}

func TestInstallSkillFromDirectory(t *testing.T) {
	root := t.TempDir()
	src := t.TempDir()

	skill := testSkill("dir-skill")
	if err := os.WriteFile(filepath.Join(src, "SKILL.md"), []byte(skill.Content), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(src, "helper.py"), []byte("print('hi')\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	skill.Path = src

	inst := New()
	result := inst.InstallSkillForAgent(skill, "claude", false, root, types.ModeSymlink)
	if !result.Success {
		t.Fatalf("install failed: %s", result.Error)
	}

	canonical := filepath.Join(root, ".agents", "skills", "dir-skill")
	if _, err := os.Stat(filepath.Join(canonical, "helper.py")); err != nil {
		t.Errorf("sibling file not copied: %v", err)
	}
}

func TestInstallSkillWithDanglingSymlink(t *testing.T) {
	root := t.TempDir()
	src := t.TempDir()

	skill := testSkill("linked")
	if err := os.WriteFile(filepath.Join(src, "SKILL.md"), []byte(skill.Content), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(src, "notes.txt"), []byte("notes\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	// A link to a path that no longer exists must not sink the install.
	if err := os.Symlink(filepath.Join(src, "gone"), filepath.Join(src, "dangling")); err != nil {
		t.Fatal(err)
	}
	skill.Path = src

	inst := New()
	result := inst.InstallSkillForAgent(skill, "claude", false, root, types.ModeSymlink)
	if !result.Success {
		t.Fatalf("install failed: %s", result.Error)
	}

	canonical := filepath.Join(root, ".agents", "skills", "linked")
	if _, err := os.Stat(filepath.Join(canonical, "notes.txt")); err != nil {
		t.Errorf("regular file not copied: %v", err)
	}
	if _, err := os.Lstat(filepath.Join(canonical, "dangling")); !os.IsNotExist(err) {
		t.Error("dangling link was carried into the copy")
	}
}

func TestInstallSkillForUnknownAgent(t *testing.T) {
	inst := New()
	result := inst.InstallSkillForAgent(testSkill("x"), "nonexistent", false, t.TempDir(), types.ModeSymlink)
	if result.Success {
		t.Fatal("install for unknown agent succeeded")
	}
	if !strings.Contains(result.Error, "unknown agent") {
		t.Errorf("Error = %q, want mention of unknown agent", result.Error)
	}
}

func TestInstallSkillShared(t *testing.T) {
	root := t.TempDir()
	inst := New()

	result := inst.InstallSkillShared(testSkill("solo"), false, root)
	if !result.Success {
		t.Fatalf("install failed: %s", result.Error)
	}
	if _, err := os.Stat(filepath.Join(root, ".agents", "skills", "solo", "SKILL.md")); err != nil {
		t.Errorf("shared SKILL.md missing: %v", err)
	}
}

func TestListInstalledSkills(t *testing.T) {
	root := t.TempDir()
	inst := New()
	inst.DetectAgents = func() []string { return []string{"claude", "cursor"} }

	for _, agent := range []string{"claude", "cursor"} {
		if r := inst.InstallSkillForAgent(testSkill("listed"), agent, false, root, types.ModeSymlink); !r.Success {
			t.Fatalf("install failed: %s", r.Error)
		}
	}
	if r := inst.InstallSkillForAgent(testSkill("cursor-only"), "cursor", false, root, types.ModeSymlink); !r.Success {
		t.Fatalf("install failed: %s", r.Error)
	}
	// An undetected agent's install is still listed, just not attributed.
	if r := inst.InstallSkillForAgent(testSkill("ghost"), "windsurf", false, root, types.ModeSymlink); !r.Success {
		t.Fatalf("install failed: %s", r.Error)
	}

	skills, err := inst.ListInstalledSkills(false, root, nil)
	if err != nil {
		t.Fatalf("ListInstalledSkills() error = %v", err)
	}

	byName := map[string]types.InstalledSkill{}
	for _, s := range skills {
		byName[s.Name] = s
	}

	if len(byName["listed"].Agents) != 2 {
		t.Errorf("listed.Agents = %v, want claude and cursor", byName["listed"].Agents)
	}
	if agents := byName["cursor-only"].Agents; len(agents) != 1 || agents[0] != "cursor" {
		t.Errorf("cursor-only.Agents = %v, want [cursor]", agents)
	}
	ghost, ok := byName["ghost"]
	if !ok {
		t.Fatal("skill held only by an undetected agent was dropped")
	}
	if len(ghost.Agents) != 0 {
		t.Errorf("ghost.Agents = %v, want none attributed", ghost.Agents)
	}
	if byName["listed"].Scope != "project" {
		t.Errorf("Scope = %q, want project", byName["listed"].Scope)
	}

	filtered, err := inst.ListInstalledSkills(false, root, []string{"claude"})
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range filtered {
		if s.Name == "cursor-only" && len(s.Agents) != 0 {
			t.Errorf("agent filter attributed %v to a skill claude does not hold", s.Agents)
		}
	}
}

func TestListInstalledSkillsSharedOnly(t *testing.T) {
	root := t.TempDir()
	inst := New()
	inst.DetectAgents = func() []string { return nil }

	if r := inst.InstallSkillShared(testSkill("orphan"), false, root); !r.Success {
		t.Fatalf("install failed: %s", r.Error)
	}

	skills, err := inst.ListInstalledSkills(false, root, nil)
	if err != nil {
		t.Fatalf("ListInstalledSkills() error = %v", err)
	}
	if len(skills) != 1 {
		t.Fatalf("got %d skills, want the shared-only install listed", len(skills))
	}
	if skills[0].Name != "orphan" {
		t.Errorf("Name = %q, want orphan", skills[0].Name)
	}
	if len(skills[0].Agents) != 0 {
		t.Errorf("Agents = %v, want none", skills[0].Agents)
	}
}

func TestListInstalledSkillsEmpty(t *testing.T) {
	inst := New()
	inst.DetectAgents = func() []string { return []string{"claude"} }

	skills, err := inst.ListInstalledSkills(false, t.TempDir(), nil)
	if err != nil {
		t.Fatalf("ListInstalledSkills() error = %v", err)
	}
	if skills != nil {
		t.Errorf("ListInstalledSkills() = %v, want nil", skills)
	}
}

func TestUninstall(t *testing.T) {
	root := t.TempDir()
	inst := New()

	if r := inst.InstallSkillForAgent(testSkill("doomed"), "claude", false, root, types.ModeSymlink); !r.Success {
		t.Fatalf("install failed: %s", r.Error)
	}

	if err := inst.Uninstall("doomed", false, root); err != nil {
		t.Fatalf("Uninstall() error = %v", err)
	}

	for _, path := range []string{
		filepath.Join(root, ".agents", "skills", "doomed"),
		filepath.Join(root, ".claude", "skills", "doomed"),
	} {
		if _, err := os.Lstat(path); !os.IsNotExist(err) {
			t.Errorf("%s still exists after uninstall", path)
		}
	}

	// Removing a skill that was never installed is not an error.
	if err := inst.Uninstall("never-there", false, root); err != nil {
		t.Errorf("Uninstall(missing) error = %v", err)
	}
}

func TestRemoveAgentLinks(t *testing.T) {
	root := t.TempDir()
	inst := New()

	for _, agent := range []string{"claude", "cursor"} {
		if r := inst.InstallSkillForAgent(testSkill("partial"), agent, false, root, types.ModeSymlink); !r.Success {
			t.Fatalf("install failed: %s", r.Error)
		}
	}

	if err := inst.RemoveAgentLinks("partial", false, root, []string{"claude"}); err != nil {
		t.Fatalf("RemoveAgentLinks() error = %v", err)
	}

	if _, err := os.Lstat(filepath.Join(root, ".claude", "skills", "partial")); !os.IsNotExist(err) {
		t.Error("claude link survived removal")
	}
	if _, err := os.Lstat(filepath.Join(root, ".cursor", "skills", "partial")); err != nil {
		t.Error("cursor link was removed")
	}
	if _, err := os.Stat(filepath.Join(root, ".agents", "skills", "partial")); err != nil {
		t.Error("canonical copy was removed")
	}

	if err := inst.RemoveAgentLinks("partial", false, root, []string{"bogus"}); err == nil {
		t.Error("unknown agent accepted")
	}
}

func TestInstalledSkillNames(t *testing.T) {
	root := t.TempDir()
	inst := New()

	names, err := inst.InstalledSkillNames(false, root)
	if err != nil || names != nil {
		t.Fatalf("InstalledSkillNames(empty) = (%v, %v)", names, err)
	}

	for _, name := range []string{"one", "two"} {
		if r := inst.InstallSkillShared(testSkill(name), false, root); !r.Success {
			t.Fatalf("install failed: %s", r.Error)
		}
	}

	names, err = inst.InstalledSkillNames(false, root)
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 2 {
		t.Errorf("InstalledSkillNames() = %v, want 2 entries", names)
	}
}

func TestAgentByID(t *testing.T) {
	layout, ok := AgentByID("claude")
	if !ok || layout.SkillsDir != ".claude/skills" {
		t.Errorf("AgentByID(claude) = %+v, %v", layout, ok)
	}
	if _, ok := AgentByID("nope"); ok {
		t.Error("AgentByID(nope) reported known")
	}

	ids := AgentIDs()
	if len(ids) == 0 || ids[0] != "amp" {
		t.Errorf("AgentIDs() = %v, want amp first", ids)
	}
}
