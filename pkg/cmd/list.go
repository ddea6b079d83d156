package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"

	"github.com/skillsmd/skillsmd/internal/installer"
	"github.com/skillsmd/skillsmd/internal/types"
)

const (
	colName        = "Name"
	colDescription = "Description"
	colScope       = "Scope"
	colAgents      = "Agents"
	emptyMsg       = "No skills installed yet."
	usageHint      = "Use 'skillsmd add <source>' to install a skill."
)

var listFlags struct {
	global bool
	agents []string
}

func init() {
	listCmd.Flags().BoolVarP(&listFlags.global, "global", "g", false, "list only global skills")
	listCmd.Flags().StringSliceVarP(&listFlags.agents, "agent", "a", nil, "limit to skills held by these agents")
	rootCmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List installed skills",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return executeList()
	},
}

// executeList shows project-scoped skills plus global ones, or only global
// with --global.
func executeList() error {
	inst := installer.New()

	var skills []types.InstalledSkill
	if !listFlags.global {
		project, err := inst.ListInstalledSkills(false, "", listFlags.agents)
		if err != nil {
			return fmt.Errorf("failed to list project skills: %w", err)
		}
		skills = append(skills, project...)
	}
	global, err := inst.ListInstalledSkills(true, "", listFlags.agents)
	if err != nil {
		return fmt.Errorf("failed to list global skills: %w", err)
	}
	skills = append(skills, global...)

	if len(skills) == 0 {
		fmt.Println(emptyMsg)
		fmt.Println(usageHint)
		return nil
	}

	cnf := tablewriter.Config{
		Header: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignCenter},
		},
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignLeft},
		},
	}

	table := tablewriter.NewTable(os.Stdout, tablewriter.WithConfig(cnf))
	table.Header(colName, colDescription, colScope, colAgents)

	for _, skill := range skills {
		table.Append(skill.Name, truncate(skill.Description, 60), skill.Scope, strings.Join(skill.Agents, ", "))
	}

	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	fmt.Printf("\nTotal: %s\n", plural(len(skills), "skill"))
	return nil
}

// truncate caps s at max characters, counting runes so a multibyte
// description is never cut mid-character.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
