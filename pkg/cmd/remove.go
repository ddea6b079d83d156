package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skillsmd/skillsmd/internal/installer"
	"github.com/skillsmd/skillsmd/internal/lockfile"
)

var removeFlags struct {
	global bool
	all    bool
	yes    bool
	agents []string
}

func init() {
	removeCmd.Flags().BoolVarP(&removeFlags.global, "global", "g", false, "remove from the home directory instead of the current project")
	removeCmd.Flags().BoolVar(&removeFlags.all, "all", false, "remove every installed skill in the scope")
	removeCmd.Flags().BoolVarP(&removeFlags.yes, "yes", "y", false, "skip the confirmation prompt")
	removeCmd.Flags().StringSliceVarP(&removeFlags.agents, "agent", "a", nil, "remove only these agents' copies, keeping the shared one")
	rootCmd.AddCommand(removeCmd)
}

var removeCmd = &cobra.Command{
	Use:     "remove [skill]...",
	Aliases: []string{"rm", "uninstall"},
	Short:   "Remove installed skills",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 && !removeFlags.all {
			return fmt.Errorf("name at least one skill, or pass --all")
		}
		return executeRemove(args)
	},
}

func executeRemove(names []string) error {
	inst := installer.New()

	if removeFlags.all {
		installed, err := inst.InstalledSkillNames(removeFlags.global, "")
		if err != nil {
			return err
		}
		if len(installed) == 0 {
			fmt.Println(emptyMsg)
			return nil
		}
		names = installed
	}

	if len(names) > 1 && !removeFlags.yes {
		if !confirm(fmt.Sprintf("Remove %s?", plural(len(names), "skill"))) {
			return nil
		}
	}

	store, storeErr := lockfile.NewStore()

	var failed int
	for _, name := range names {
		// With an agent filter only those agents' links go; the shared copy
		// and the lock entry stay.
		if len(removeFlags.agents) > 0 {
			if err := inst.RemoveAgentLinks(name, removeFlags.global, "", removeFlags.agents); err != nil {
				printError("%s: %v", name, err)
				failed++
				continue
			}
			printSuccess("Removed %s for %s", name, plural(len(removeFlags.agents), "agent"))
			continue
		}

		if err := inst.Uninstall(name, removeFlags.global, ""); err != nil {
			printError("%s: %v", name, err)
			failed++
			continue
		}
		if storeErr == nil {
			if err := store.RemoveSkill(installer.SanitizeName(name)); err != nil {
				printWarning("failed to update lock file: %v", err)
			}
		}
		printSuccess("Removed %s", name)
	}

	if failed > 0 {
		return fmt.Errorf("%s failed to remove", plural(failed, "skill"))
	}
	return nil
}
