package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Query the round journal",
}

func init() {
	recentCmd := &cobra.Command{
		Use:   "recent",
		Short: "Show the most recent events",
		Args:  cobra.NoArgs,
		RunE:  runJournalRecent,
	}
	recentCmd.Flags().IntP("limit", "l", 20, "Max results")

	summaryCmd := &cobra.Command{
		Use:   "summary",
		Short: "Per-level round and response counts",
		Args:  cobra.NoArgs,
		RunE:  runJournalSummary,
	}

	journalCmd.AddCommand(recentCmd, summaryCmd)
	RootCmd.AddCommand(journalCmd)
}

func runJournalRecent(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")

	j, err := openJournal()
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer j.Close()

	entries, err := j.Recent(cmd.Context(), limit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if textFormat() {
		for _, e := range entries {
			fmt.Fprintf(out, "%s  #%-4d nivel %d  %-18s %-12s %q %s\n",
				e.At.Local().Format("2006-01-02 15:04:05"), e.Generation, e.Level+1, e.Kind, e.Word, e.Text,
				strings.Join(append(e.Objects, e.Reason), " "))
		}
		return nil
	}
	return writeJSON(out, entries)
}

func runJournalSummary(cmd *cobra.Command, args []string) error {
	j, err := openJournal()
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer j.Close()

	summary, err := j.LevelSummary(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if textFormat() {
		fmt.Fprintln(out, "nivel  rondas  resueltas  fallidas  aciertos  errores")
		for _, s := range summary {
			fmt.Fprintf(out, "%5d  %6d  %9d  %8d  %8d  %7d\n",
				s.Level+1, s.RoundsStarted, s.RoundsResolved, s.RoundsFailed, s.ResponsesAccepted, s.ResponsesRejected)
		}
		return nil
	}
	return writeJSON(out, summary)
}
