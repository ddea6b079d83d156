package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skillsmd/skillsmd/internal/lockfile"
	"github.com/skillsmd/skillsmd/internal/update"
)

func init() {
	rootCmd.AddCommand(checkCmd)
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check installed skills for upstream updates",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		updates, errs, err := checkForUpdates(cmd.Context(), nil)
		if err != nil {
			return err
		}

		for _, e := range errs {
			printWarning("%s: %s", e.Name, e.Message)
		}

		if len(updates) == 0 {
			printSuccess("All skills are up to date")
			return nil
		}

		for _, upd := range updates {
			printInfo("%s (%s) has an update available", bold(upd.Name), upd.Source)
		}
		fmt.Println("\nRun 'skillsmd update' to install updates.")
		return nil
	},
}

// checkForUpdates submits locked skills to the update service. A non-empty
// names slice restricts the check to those skills.
func checkForUpdates(ctx context.Context, names []string) ([]update.AvailableUpdate, []update.CheckError, error) {
	store, err := lockfile.NewStore()
	if err != nil {
		return nil, nil, err
	}
	lock := store.Read()

	wanted := map[string]bool{}
	for _, name := range names {
		wanted[name] = true
	}

	var checks []update.SkillCheck
	for name, entry := range lock.Skills {
		if len(wanted) > 0 && !wanted[name] {
			continue
		}
		checks = append(checks, update.SkillCheck{
			Name:            name,
			Source:          entry.Source,
			Path:            entry.SkillPath,
			SkillFolderHash: entry.SkillFolderHash,
		})
	}

	if len(checks) == 0 {
		return nil, nil, nil
	}

	resp, err := update.NewClient().CheckUpdates(ctx, checks)
	if err != nil {
		return nil, nil, err
	}
	return resp.Updates, resp.Errors, nil
}
