package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/skillsmd/skillsmd/internal/discovery"
	"github.com/skillsmd/skillsmd/internal/fetch"
	"github.com/skillsmd/skillsmd/internal/installer"
	"github.com/skillsmd/skillsmd/internal/lockfile"
	"github.com/skillsmd/skillsmd/internal/provider"
	"github.com/skillsmd/skillsmd/internal/source"
	"github.com/skillsmd/skillsmd/internal/types"
)

// Fan-out limit for per-agent installs of a single batch.
const maxConcurrentInstalls = 4

var addFlags struct {
	global    bool
	copyMode  bool
	listOnly  bool
	yes       bool
	all       bool
	fullDepth bool
	agents    []string
	skills    []string
}

func init() {
	addCmd.Flags().BoolVarP(&addFlags.global, "global", "g", false, "install into the home directory instead of the current project")
	addCmd.Flags().BoolVar(&addFlags.copyMode, "copy", false, "copy skills into agent directories instead of symlinking")
	addCmd.Flags().BoolVarP(&addFlags.listOnly, "list", "l", false, "list the skills a source provides without installing")
	addCmd.Flags().BoolVarP(&addFlags.yes, "yes", "y", false, "accept defaults without prompting")
	addCmd.Flags().BoolVar(&addFlags.all, "all", false, "install for every known agent")
	addCmd.Flags().BoolVar(&addFlags.fullDepth, "full-depth", false, "discover nested skills even when the source root has a SKILL.md")
	addCmd.Flags().StringSliceVarP(&addFlags.agents, "agent", "a", nil, "agent(s) to install for (repeatable)")
	addCmd.Flags().StringSliceVarP(&addFlags.skills, "skill", "s", nil, "skill name(s) to install from the source (repeatable)")
	rootCmd.AddCommand(addCmd)
}

var addCmd = &cobra.Command{
	Use:     "add <source>...",
	Aliases: []string{"install", "i"},
	Short:   "Install skills from a repository, URL, or local path",
	Long: `Install SKILL.md documents from a source into your coding agents.

Sources can be GitHub shorthand (owner/repo), full GitHub or GitLab URLs,
git SSH remotes, direct HTTPS URLs to a skill.md, well-known skill
endpoints, or local paths.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return executeAdd(cmd.Context(), args)
	},
}

// skillCandidate pairs a discovered skill with the provenance recorded in
// the lock file.
type skillCandidate struct {
	skill       types.Skill
	installName string
	sourceType  string
	source      string
	sourceURL   string
	skillPath   string
}

func executeAdd(ctx context.Context, inputs []string) error {
	var failed int
	for _, input := range inputs {
		if err := addOneSource(ctx, input); err != nil {
			printError("%s: %v", input, err)
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%s failed to install", plural(failed, "source"))
	}
	return nil
}

// addOneSource resolves and installs one source. Extra names restrict the
// install to those skills on top of any --skill flags and @filter; the
// update flow uses this to reinstall a single skill from a multi-skill
// source.
func addOneSource(ctx context.Context, input string, only ...string) error {
	ref := source.Parse(input)

	candidates, cleanup, err := collectSkills(ctx, ref)
	if cleanup != nil {
		defer cleanup()
	}
	if err != nil {
		return err
	}
	if len(candidates) == 0 {
		return fmt.Errorf("no skills found")
	}

	candidates = filterCandidates(candidates, append(selectedSkillNames(ref), only...))
	if len(candidates) == 0 {
		return fmt.Errorf("no skills match the requested names")
	}

	if addFlags.listOnly {
		for _, c := range candidates {
			fmt.Printf("%s  %s\n", bold(c.skill.Name), c.skill.Description)
		}
		fmt.Printf("\n%s available\n", plural(len(candidates), "skill"))
		return nil
	}

	if len(candidates) > 1 && !addFlags.yes {
		if !confirm(fmt.Sprintf("Install %s?", plural(len(candidates), "skill"))) {
			return nil
		}
	}

	inst := installer.New()
	agents, err := selectAgents(inst)
	if err != nil {
		return err
	}

	mode := types.ModeSymlink
	if addFlags.copyMode {
		mode = types.ModeCopy
	}

	installed := installCandidates(inst, candidates, agents, mode)
	if installed == 0 {
		return fmt.Errorf("no skills installed")
	}

	recordInstalls(ctx, candidates)
	printSuccess("Installed %s", plural(installed, "skill"))
	maybeSuggestFind()
	return nil
}

// maybeSuggestFind shows the discovery tip after an install until the user
// opts out; the opt-out persists in the lock file.
func maybeSuggestFind() {
	store, err := lockfile.NewStore()
	if err != nil || store.FindSkillsPromptDismissed() {
		return
	}

	printInfo("Tip: discover more skills with 'skillsmd find <query>'")
	if addFlags.yes {
		return
	}
	if !confirm("Show this tip after future installs?") {
		_ = store.DismissFindSkillsPrompt()
	}
}

// collectSkills resolves a parsed source into concrete skills. The cleanup
// func removes any temp directory the source was staged in.
func collectSkills(ctx context.Context, ref source.Ref) ([]skillCandidate, func(), error) {
	switch ref.Type {
	case source.TypeLocal:
		return collectLocalSkills(ref)
	case source.TypeGitHub:
		return collectGitHubSkills(ctx, ref)
	case source.TypeGitLab, source.TypeGit:
		return collectGitSkills(ctx, ref)
	case source.TypeDirectURL:
		return collectRemoteSkills(ctx, ref)
	default:
		return nil, nil, fmt.Errorf("unsupported source type %q", ref.Type)
	}
}

func collectLocalSkills(ref source.Ref) ([]skillCandidate, func(), error) {
	abs, err := filepath.Abs(ref.LocalPath)
	if err != nil {
		return nil, nil, err
	}
	if _, err := os.Stat(abs); err != nil {
		return nil, nil, fmt.Errorf("path does not exist")
	}

	skills := discovery.DiscoverSkills(abs, addFlags.fullDepth)
	return candidatesFromSkills(skills, abs, "local", abs, abs), nil, nil
}

func collectGitHubSkills(ctx context.Context, ref source.Ref) ([]skillCandidate, func(), error) {
	ownerRepo := source.OwnerRepo(ref)
	parts := strings.SplitN(ownerRepo, "/", 2)
	if len(parts) != 2 {
		return nil, nil, fmt.Errorf("cannot determine repository from source")
	}

	client := fetch.NewGitHubClient(viper.GetString("github_token"))
	if verbose {
		client.SetLogger(consoleLogger{})
	}
	dir, err := client.DownloadToTemp(ctx, parts[0], parts[1], ref.Subpath, ref.Ref)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() { os.RemoveAll(dir) }

	skills := discovery.DiscoverSkills(dir, addFlags.fullDepth)
	return candidatesFromSkills(skills, dir, "github", ownerRepo, ref.URL), cleanup, nil
}

func collectGitSkills(ctx context.Context, ref source.Ref) ([]skillCandidate, func(), error) {
	dir, err := fetch.CloneToTemp(ctx, ref.URL, ref.Ref, ref.Subpath)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() { os.RemoveAll(dir) }

	sourceID := source.OwnerRepo(ref)
	if sourceID == "" {
		sourceID = ref.URL
	}

	skills := discovery.DiscoverSkills(dir, addFlags.fullDepth)
	return candidatesFromSkills(skills, dir, string(ref.Type), sourceID, ref.URL), cleanup, nil
}

func collectRemoteSkills(ctx context.Context, ref source.Ref) ([]skillCandidate, func(), error) {
	client := provider.NewHTTPClient()
	registry := provider.NewDefaultRegistry(client)

	// A well-known endpoint can serve multiple skills with sibling files;
	// stage those on disk so the install carries every file.
	wk := provider.NewWellKnownProvider(client)
	if verbose {
		wk.SetLogger(consoleLogger{})
	}
	if registry.Find(ref.URL) == nil && wk.Match(ref.URL).Matches && wk.HasSkillsIndex(ctx, ref.URL) {
		return collectWellKnownSkills(ctx, wk, ref)
	}

	remote, err := registry.FetchRemoteSkill(ctx, ref.URL)
	if err != nil {
		return nil, nil, err
	}
	if remote == nil {
		return nil, nil, fmt.Errorf("no skill found at URL")
	}

	p := registry.Find(ref.URL)
	sourceID := "direct-url"
	if p != nil {
		sourceID = p.SourceIdentifier(ref.URL)
	}

	return []skillCandidate{{
		skill:       remote.Skill,
		installName: remote.InstallName,
		sourceType:  "direct-url",
		source:      sourceID,
		sourceURL:   remote.SourceURL,
	}}, nil, nil
}

func collectWellKnownSkills(ctx context.Context, wk *provider.WellKnownProvider, ref source.Ref) ([]skillCandidate, func(), error) {
	skills := wk.FetchAllSkills(ctx, ref.URL)
	if len(skills) == 0 {
		return nil, nil, fmt.Errorf("no skills found at well-known endpoint")
	}

	stage, err := os.MkdirTemp("", "skillsmd-wk-*")
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() { os.RemoveAll(stage) }

	var candidates []skillCandidate
	for _, skill := range skills {
		dir := filepath.Join(stage, installer.SanitizeName(skill.InstallName))
		if err := os.MkdirAll(dir, 0o755); err != nil {
			cleanup()
			return nil, nil, err
		}
		for name, content := range skill.Files {
			if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
				cleanup()
				return nil, nil, err
			}
		}

		s := skill.Skill
		s.Path = dir
		candidates = append(candidates, skillCandidate{
			skill:       s,
			installName: skill.InstallName,
			sourceType:  "direct-url",
			source:      wk.SourceIdentifier(ref.URL),
			sourceURL:   skill.SourceURL,
		})
	}
	return candidates, cleanup, nil
}

func candidatesFromSkills(skills []types.Skill, rootDir, sourceType, sourceID, sourceURL string) []skillCandidate {
	var candidates []skillCandidate
	for _, skill := range skills {
		skillPath := ""
		if skill.Path != "" {
			if rel, err := filepath.Rel(rootDir, skill.Path); err == nil && rel != "." {
				skillPath = filepath.ToSlash(rel)
			}
		}
		candidates = append(candidates, skillCandidate{
			skill:      skill,
			sourceType: sourceType,
			source:     sourceID,
			sourceURL:  sourceURL,
			skillPath:  skillPath,
		})
	}
	return candidates
}

// selectedSkillNames merges the --skill flags with an @filter embedded in
// the source itself.
func selectedSkillNames(ref source.Ref) []string {
	names := append([]string(nil), addFlags.skills...)
	if ref.SkillFilter != "" {
		names = append(names, ref.SkillFilter)
	}
	return names
}

func filterCandidates(candidates []skillCandidate, names []string) []skillCandidate {
	if len(names) == 0 {
		return candidates
	}

	wanted := map[string]bool{}
	for _, name := range names {
		wanted[strings.ToLower(name)] = true
	}

	var out []skillCandidate
	for _, c := range candidates {
		// Lock entries are keyed by sanitized name, so that form has to
		// match too.
		if wanted[strings.ToLower(c.skill.Name)] ||
			wanted[strings.ToLower(c.installName)] ||
			wanted[installer.SanitizeName(c.skill.Name)] {
			out = append(out, c)
		}
	}
	return out
}

/// selectAgents resolves the target agent set: explicit flags win, then
// detected agents, then the remembered selection from the previous install.
// An empty result installs into the shared directory only.
func selectAgents(inst *installer.Installer) ([]string, error) {
	if addFlags.all {
		return installer.AgentIDs(), nil
	}

	if len(addFlags.agents) > 0 {
		for _, id := range addFlags.agents {
			if _, ok := installer.AgentByID(id); !ok {
				return nil, fmt.Errorf("unknown agent %q (known: %s)", id, strings.Join(installer.AgentIDs(), ", "))
			}
		}
		if store, err := lockfile.NewStore(); err == nil {
			_ = store.SetLastSelectedAgents(addFlags.agents)
		}
		return addFlags.agents, nil
	}

	detected := inst.DetectAgents()
	if len(detected) > 0 {
		return detected, nil
	}

	if store, err := lockfile.NewStore(); err == nil {
		if last := store.LastSelectedAgents(); len(last) > 0 {
			return last, nil
		}
	}

	printWarning("No coding agents detected; installing into %s only", installer.CanonicalSkillsDir)
	return nil, nil
}

// installCandidates fans each skill out across the selected agents with
// bounded concurrency and reports per-install results as they land.
func installCandidates(inst *installer.Installer, candidates []skillCandidate, agents []string, mode types.InstallMode) int {
	type installJob struct {
		skill types.Skill
		agent string
	}

	var jobs []installJob
	for _, c := range candidates {
		skill := c.skill
		if c.installName != "" {
			skill.Name = c.installName
		}
		if len(agents) == 0 {
			result := inst.InstallSkillShared(skill, addFlags.global, "")
			reportInstall(c.skill.Name, "", result)
			continue
		}
		for _, agent := range agents {
			jobs = append(jobs, installJob{skill: skill, agent: agent})
		}
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		results = make(map[string]bool)
		sem     = make(chan struct{}, maxConcurrentInstalls)
	)

	for _, job := range jobs {
		wg.Add(1)
		go func(job installJob) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			result := inst.InstallSkillForAgent(job.skill, job.agent, addFlags.global, "", mode)

			mu.Lock()
			reportInstall(job.skill.Name, job.agent, result)
			if result.Success {
				results[job.skill.Name] = true
			}
			mu.Unlock()
		}(job)
	}
	wg.Wait()

	if len(agents) == 0 {
		return len(candidates)
	}
	return len(results)
}

func reportInstall(name, agent string, result types.InstallResult) {
	switch {
	case !result.Success:
		if agent != "" {
			printError("%s (%s): %s", name, agent, result.Error)
		} else {
			printError("%s: %s", name, result.Error)
		}
	case result.SymlinkFailed:
		printWarning("%s → %s (symlink unavailable, copied)", name, result.Path)
	default:
		printInfo("%s → %s", name, result.Path)
	}
}

// recordInstalls updates the lock file with provenance and change-detection
// hashes for every installed skill.
func recordInstalls(ctx context.Context, candidates []skillCandidate) {
	store, err := lockfile.NewStore()
	if err != nil {
		return
	}

	hashClient := lockfile.NewHashClient(viper.GetString("github_token"))

	for _, c := range candidates {
		hash := ""
		if c.sourceType == "github" {
			hash = hashClient.FetchSkillFolderHash(ctx, c.source, c.skillPath)
		}
		if hash == "" {
			hash = lockfile.ComputeContentHash(c.skill.Content)
		}

		name := c.installName
		if name == "" {
			name = c.skill.Name
		}

		entry := lockfile.SkillLockEntry{
			Source:          c.source,
			SourceType:      c.sourceType,
			SourceURL:       c.sourceURL,
			SkillFolderHash: hash,
			SkillPath:       c.skillPath,
		}
		if err := store.AddSkill(installer.SanitizeName(name), entry); err != nil {
			printWarning("failed to update lock file: %v", err)
			return
		}
	}
}
