package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/codecoach/internal/store"
)

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "List recent pipeline task outcomes",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		kind, _ := cmd.Flags().GetString("kind")
		class, _ := cmd.Flags().GetString("class")

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		events, err := s.EventRepo().QueryTaskEvents(cmd.Context(), store.TaskQueryOpts{
			QueryOpts: store.QueryOpts{Limit: limit},
			Kind:      kind,
			Outcome:   class,
		})
		if err != nil {
			return fmt.Errorf("query task events: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(events) == 0 {
			fmt.Fprintln(out, "No task events found.")
			return nil
		}

		fmt.Fprintf(out, "%-5s  %-19s  %-18s  %-8s  %-18s  %-3s  %-7s  %s\n",
			"ID", "Timestamp", "Kind", "Language", "Outcome", "Try", "Ms", "Invocation")
		fmt.Fprintln(out, strings.Repeat("─", 110))

		for _, e := range events {
			outcome := e.Outcome
			if e.Cached {
				outcome += " (cached)"
			}
			fmt.Fprintf(out, "%-5d  %-19s  %-18s  %-8s  %-18s  %-3d  %-7d  %s\n",
				e.Sequence,
				e.Timestamp.Local().Format("2006-01-02 15:04:05"),
				e.Kind,
				truncate(e.Language, 8),
				truncate(outcome, 18),
				e.Attempts,
				e.LatencyMs,
				e.InvocationID,
			)
		}
		return nil
	},
}

func init() {
	tasksCmd.Flags().IntP("limit", "n", 20, "Number of events to show")
	tasksCmd.Flags().StringP("kind", "k", "", "Filter by kind (generate_question, evaluate_code, analyze_complexity, review_code)")
	tasksCmd.Flags().StringP("class", "c", "", "Filter by outcome (ok or a failure class such as schema_violation)")
}
