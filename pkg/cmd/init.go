package cmd

import (
	"github.com/spf13/cobra"

	"github.com/skillsmd/skillsmd/internal/initializer"
)

func init() {
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init [name]",
	Short: "Scaffold a new skill in the current directory",
	Long: `Create a SKILL.md template ready to fill in.

With a name, the skill is created in a new subdirectory; without one, the
current directory becomes the skill.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := ""
		if len(args) == 1 {
			name = args[0]
		}

		path, err := initializer.Scaffold(".", name)
		if err != nil {
			return err
		}
		printSuccess("Created %s", path)
		printInfo("Edit the name and description, then share the directory or publish it to a repository.")
		return nil
	},
}
