package lockfile

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// LockVersion is the current lock file schema version. Files written by
// older schemas are discarded wholesale rather than migrated.
const LockVersion = 3

const lockFileName = ".skill-lock.json"

// SkillLockEntry records provenance for one installed skill.
type SkillLockEntry struct {
	Source          string `json:"source"`
	SourceType      string `json:"sourceType"`
	SourceURL       string `json:"sourceUrl"`
	SkillFolderHash string `json:"skillFolderHash"`
	SkillPath       string `json:"skillPath,omitempty"`
	InstalledAt     string `json:"installedAt"`
	UpdatedAt       string `json:"updatedAt"`
}

// DismissedPrompts tracks one-time prompts the user opted out of.
type DismissedPrompts struct {
	FindSkillsPrompt bool `json:"findSkillsPrompt,omitempty"`
}

// SkillLockFile is the on-disk lock document, keyed by sanitized skill name.
type SkillLockFile struct {
	Version            int                       `json:"version"`
	Skills             map[string]SkillLockEntry `json:"skills"`
	Dismissed          *DismissedPrompts         `json:"dismissed,omitempty"`
	LastSelectedAgents []string                  `json:"lastSelectedAgents,omitempty"`
}

// Store reads and writes the global skill lock file.
type Store struct {
	path string
}

// NewStore returns a store backed by ~/.agents/.skill-lock.json.
func NewStore() (*Store, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return &Store{path: filepath.Join(home, ".agents", lockFileName)}, nil
}

// NewStoreAt returns a store backed by an explicit path.
func NewStoreAt(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Path() string { return s.path }

func emptyLock() *SkillLockFile {
	return &SkillLockFile{Version: LockVersion, Skills: map[string]SkillLockEntry{}}
}

// Read loads the lock file. A missing, unparseable, or stale-versioned file
// yields a fresh empty document; lock data is always recomputable from the
// installed skills so nothing is worth salvaging.
func (s *Store) Read() *SkillLockFile {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return emptyLock()
	}

	var lock SkillLockFile
	if err := json.Unmarshal(data, &lock); err != nil {
		return emptyLock()
	}
	if lock.Version < LockVersion {
		return emptyLock()
	}
	if lock.Skills == nil {
		lock.Skills = map[string]SkillLockEntry{}
	}
	return &lock
}

// Write persists the lock file atomically via a temp file and rename.
func (s *Store) Write(lock *SkillLockFile) error {
	lock.Version = LockVersion
	if lock.Skills == nil {
		lock.Skills = map[string]SkillLockEntry{}
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(lock, "", "  ")
	if err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

// AddSkill upserts an entry. An existing entry keeps its installedAt
// timestamp; updatedAt always moves to now.
func (s *Store) AddSkill(name string, entry SkillLockEntry) error {
	lock := s.Read()

	now := time.Now().UTC().Format(time.RFC3339)
	if existing, ok := lock.Skills[name]; ok && existing.InstalledAt != "" {
		entry.InstalledAt = existing.InstalledAt
	} else if entry.InstalledAt == "" {
		entry.InstalledAt = now
	}
	entry.UpdatedAt = now

	lock.Skills[name] = entry
	return s.Write(lock)
}

// RemoveSkill drops an entry if present. Removing an unknown name is a
// no-op.
func (s *Store) RemoveSkill(name string) error {
	lock := s.Read()
	if _, ok := lock.Skills[name]; !ok {
		return nil
	}
	delete(lock.Skills, name)
	return s.Write(lock)
}

// DismissFindSkillsPrompt records that the user declined the interactive
// skill discovery prompt so it is never shown again.
func (s *Store) DismissFindSkillsPrompt() error {
	lock := s.Read()
	if lock.Dismissed == nil {
		lock.Dismissed = &DismissedPrompts{}
	}
	lock.Dismissed.FindSkillsPrompt = true
	return s.Write(lock)
}

// FindSkillsPromptDismissed reports whether the discovery prompt was opted
// out of.
func (s *Store) FindSkillsPromptDismissed() bool {
	lock := s.Read()
	return lock.Dismissed != nil && lock.Dismissed.FindSkillsPrompt
}

// SetLastSelectedAgents remembers the agent set chosen during the last
// install, used as the default selection next time.
func (s *Store) SetLastSelectedAgents(agents []string) error {
	lock := s.Read()
	lock.LastSelectedAgents = agents
	return s.Write(lock)
}

// LastSelectedAgents returns the remembered agent selection, or nil.
func (s *Store) LastSelectedAgents() []string {
	return s.Read().LastSelectedAgents
}
