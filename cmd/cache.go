package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spiffcs/contribs/internal/cache"
	"github.com/spiffcs/contribs/internal/constants"
	"github.com/spiffcs/contribs/internal/sent"
)

// NewCmdCache creates the cache command with subcommands.
func NewCmdCache() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the contributor list cache",
	}

	cmd.AddCommand(newCmdCacheClear())
	cmd.AddCommand(newCmdCacheStats())

	return cmd
}

// newCmdCacheClear creates the cache clear subcommand.
func newCmdCacheClear() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear cached contributor lists",
		RunE:  runCacheClear,
	}
}

// newCmdCacheStats creates the cache stats subcommand.
func newCmdCacheStats() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show cache statistics",
		RunE:  runCacheStats,
	}
}

func runCacheClear(cmd *cobra.Command, _ []string) error {
	c, err := cache.NewCache()
	if err != nil {
		return fmt.Errorf("failed to access cache: %w", err)
	}

	if err := c.Clear(); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Cache cleared.")
	return nil
}

func runCacheStats(cmd *cobra.Command, _ []string) error {
	c, err := cache.NewCache()
	if err != nil {
		return fmt.Errorf("failed to access cache: %w", err)
	}

	total, valid, err := c.Stats()
	if err != nil {
		return fmt.Errorf("failed to get cache stats: %w", err)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Cache statistics (%s):\n", c.Dir())
	fmt.Fprintf(w, "  Contributor lists (TTL: %s):\n", constants.ContributorListCacheTTL)
	fmt.Fprintf(w, "    Total: %d\n", total)
	fmt.Fprintf(w, "    Valid: %d\n", valid)
	fmt.Fprintf(w, "    Expired: %d\n", total-valid)

	if ledger, err := sent.NewStore(); err == nil {
		fmt.Fprintf(w, "  Sent summaries: %d\n", ledger.Count())
	}
	return nil
}
