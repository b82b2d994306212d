package cmd

import (
	"github.com/spf13/cobra"
)

// New creates the root command with all subcommands registered.
func New() *cobra.Command {
	opts := NewOptions()

	rootCmd := &cobra.Command{
		Use:   "contribs",
		Short: "Contributor list summarizer",
		Long: `Loads the contributors of one or more repositories (or a contributor
file) and prints the first few by name, collapsing the rest into
"N others". A list only one longer than the cap is shown in full.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSummary(cmd, opts)
		},
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	// Add summary flags to root command so `contribs` and `contribs summary` work identically
	addSummaryFlags(rootCmd, opts)

	// Register subcommands
	rootCmd.AddCommand(NewCmdSummary(opts))
	rootCmd.AddCommand(NewCmdNotify(opts))
	rootCmd.AddCommand(NewCmdConfig())
	rootCmd.AddCommand(NewCmdCache())
	rootCmd.AddCommand(NewCmdSent())
	rootCmd.AddCommand(NewCmdVersion())
	rootCmd.AddCommand(NewCmdRateLimit())

	return rootCmd
}
