package fetch

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// CloneToTemp shallow-clones a git repository into a fresh temp directory
// and returns the directory holding the requested subpath. Used for SSH
// remotes, explicit .git URLs, and GitLab sources where the contents API is
// unavailable.
func CloneToTemp(ctx context.Context, repoURL, ref, subpath string) (string, error) {
	if _, err := exec.LookPath("git"); err != nil {
		return "", fmt.Errorf("git is not installed: %w", err)
	}

	dir, err := os.MkdirTemp("", "skillsmd-clone-*")
	if err != nil {
		return "", err
	}

	args := []string{"clone", "--depth", "1"}
	if ref != "" {
		args = append(args, "--branch", ref)
	}
	args = append(args, repoURL, dir)

	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")
	if out, err := cmd.CombinedOutput(); err != nil {
		os.RemoveAll(dir)
		return "", fmt.Errorf("git clone failed: %s", strings.TrimSpace(string(out)))
	}

	if subpath == "" {
		return dir, nil
	}

	sub := filepath.Join(dir, filepath.FromSlash(subpath))
	rel, err := filepath.Rel(dir, sub)
	if err != nil || strings.HasPrefix(rel, "..") {
		os.RemoveAll(dir)
		return "", fmt.Errorf("subpath %q escapes the repository", subpath)
	}
	if info, err := os.Stat(sub); err != nil || !info.IsDir() {
		os.RemoveAll(dir)
		return "", fmt.Errorf("subpath %q not found in repository", subpath)
	}
	return sub, nil
}
