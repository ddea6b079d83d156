package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skillsmd/skillsmd/internal/installer"
	"github.com/skillsmd/skillsmd/internal/lockfile"
)

func init() {
	rootCmd.AddCommand(updateCmd)
}

var updateCmd = &cobra.Command{
	Use:     "update [skill]...",
	Aliases: []string{"upgrade"},
	Short:   "Update installed skills to their latest upstream content",
	RunE: func(cmd *cobra.Command, args []string) error {
		return executeUpdate(cmd, args)
	},
}

func executeUpdate(cmd *cobra.Command, args []string) error {
	names := make([]string, 0, len(args))
	for _, arg := range args {
		names = append(names, installer.SanitizeName(arg))
	}

	updates, errs, err := checkForUpdates(cmd.Context(), names)
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

	store, err := lockfile.NewStore()
	if err != nil {
		return err
	}
	lock := store.Read()

	// Updates reinstall from the recorded source, so the whole batch reuses
	// the add pipeline without prompting.
	addFlags.yes = true

	var failed int
	for _, upd := range updates {
		entry, ok := lock.Skills[upd.Name]
		if !ok {
			continue
		}

		src := entry.SourceURL
		if src == "" {
			src = entry.Source
		}

		// Reinstall only the updated skill; the source may provide siblings
		// the user never installed.
		printInfo("Updating %s from %s", bold(upd.Name), src)
		if err := addOneSource(cmd.Context(), src, upd.Name); err != nil {
			printError("%s: %v", upd.Name, err)
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("%s failed to update", plural(failed, "skill"))
	}
	printSuccess("Updated %s", plural(len(updates)-failed, "skill"))
	return nil
}
