package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"

	"github.com/skillsmd/skillsmd/internal/search"
)

var findFlags struct {
	limit int
}

func init() {
	findCmd.Flags().IntVarP(&findFlags.limit, "limit", "n", 20, "maximum number of results")
	rootCmd.AddCommand(findCmd)
}

var findCmd = &cobra.Command{
	Use:     "find <query>...",
	Aliases: []string{"search"},
	Short:   "Search the public skill registry",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return executeFind(cmd, strings.Join(args, " "))
	},
}

func executeFind(cmd *cobra.Command, query string) error {
	client := search.NewClient()
	skills, err := client.Search(cmd.Context(), query, findFlags.limit)
	if err != nil {
		return err
	}

	if len(skills) == 0 {
		fmt.Printf("No skills found for %q.\n", query)
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
	table.Header("Name", "Source", "Installs")
	for _, skill := range skills {
		table.Append(skill.Name, skill.Source, strconv.Itoa(skill.Installs))
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	fmt.Println("\nInstall with 'skillsmd add <source>'.")
	return nil
}
