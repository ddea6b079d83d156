package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version is stamped at build time via -ldflags.
var Version = "dev"

const logo = `         __    _  __ __                   __
   _____/ /__ (_)/ // /____ ____ ___  ____/ /
  / ___/ //_// // // // __ '__ '_  \/ __  /
 (__  ) ,<  / // // // / / / / / / / /_/ /
/____/_/|_|/_//_//_//_/ /_/ /_/ /_/\__,_/
`

var rootCmd = &cobra.Command{
	Use:   "skillsmd",
	Short: "Install agent skills from anywhere",
	Long:  "skillsmd installs SKILL.md documents from repositories, documentation sites, and local paths into every coding agent on your machine.",

	CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},

	RunE: func(cmd *cobra.Command, args []string) error {
		if showVersion, _ := cmd.Flags().GetBool("version"); showVersion {
			fmt.Println("skillsmd", Version)
			return nil
		}
		fmt.Print(logo)
		return cmd.Help()
	},
}

var verbose bool

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "print the version and exit")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "print diagnostic output")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
