package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"fcegen/internal/store"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Inspect recorded model calls and generation attempts",
}

var eventsCallsCmd = &cobra.Command{
	Use:   "calls",
	Short: "List recent model calls",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		repo, closeRepo, err := openEventsStrict(cmd)
		if err != nil {
			return err
		}
		defer closeRepo()

		calls, err := repo.RecentModelCalls(context.Background(), limit)
		if err != nil {
			return fmt.Errorf("query model calls: %w", err)
		}
		if len(calls) == 0 {
			fmt.Println("No model calls recorded.")
			return nil
		}

		fmt.Printf("%-5s  %-19s  %-16s  %-6s  %-6s  %-7s  %s\n",
			"ID", "Timestamp", "Model", "In", "Out", "Ms", "OK")
		fmt.Println(strings.Repeat("─", 72))
		for _, e := range calls {
			ok := "✓"
			if !e.Success {
				ok = "✗"
			}
			fmt.Printf("%-5d  %-19s  %-16s  %-6d  %-6d  %-7d  %s\n",
				e.ID,
				e.Timestamp.Local().Format("2006-01-02 15:04:05"),
				truncate(e.Model, 16),
				e.InputTokens,
				e.OutputTokens,
				e.LatencyMs,
				ok,
			)
		}
		return nil
	},
}

var eventsGenerationsCmd = &cobra.Command{
	Use:   "generations",
	Short: "List recent generation requests and their outcomes",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		repo, closeRepo, err := openEventsStrict(cmd)
		if err != nil {
			return err
		}
		defer closeRepo()

		gens, err := repo.RecentGenerations(context.Background(), limit)
		if err != nil {
			return fmt.Errorf("query generations: %w", err)
		}
		if len(gens) == 0 {
			fmt.Println("No generations recorded.")
			return nil
		}

		fmt.Printf("%-5s  %-19s  %-14s  %-5s  %-4s  %-8s  %-16s  %s\n",
			"ID", "Timestamp", "Category", "Level", "Age", "Attempts", "Model", "OK")
		fmt.Println(strings.Repeat("─", 90))
		for _, e := range gens {
			ok := "✓"
			if !e.Success {
				ok = "✗"
			}
			fmt.Printf("%-5d  %-19s  %-14s  %-5s  %-4d  %-8d  %-16s  %s\n",
				e.ID,
				e.Timestamp.Local().Format("2006-01-02 15:04:05"),
				e.Category,
				e.Level,
				e.Age,
				e.Attempts,
				truncate(e.ModelUsed, 16),
				ok,
			)
		}
		return nil
	},
}

// openEventsStrict opens the event store for inspection; unlike the
// generation path it fails loudly when the database cannot be opened.
func openEventsStrict(cmd *cobra.Command) (store.EventRepo, func(), error) {
	path, err := resolveDBPath(cmd)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve event log path: %w", err)
	}
	s, err := store.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open event log: %w", err)
	}
	return s.EventRepo(), func() { s.Close() }, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func init() {
	eventsCallsCmd.Flags().IntP("limit", "n", 20, "Number of events to show")
	eventsGenerationsCmd.Flags().IntP("limit", "n", 20, "Number of events to show")

	eventsCmd.AddCommand(eventsCallsCmd)
	eventsCmd.AddCommand(eventsGenerationsCmd)
}
