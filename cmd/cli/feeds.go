package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/mauv0809/quiniela-client/internal/live"
	"github.com/spf13/cobra"
)

func init() {
	resultsCmd.Flags().BoolP("watch", "w", false, "Keep polling until interrupted")
	rankingsCmd.Flags().BoolP("watch", "w", false, "Keep polling until interrupted")
	rankingsCmd.Flags().Int("event", 0, "Event id, defaults to the last active event")

	rootCmd.AddCommand(resultsCmd, rankingsCmd)
}

var resultsCmd = &cobra.Command{
	Use:   "results",
	Short: "Show your graded predictions",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := client.Auth.CurrentUser(); err != nil {
			return err
		}
		watch, _ := cmd.Flags().GetBool("watch")
		out := cmd.OutOrStdout()
		if !watch {
			view := client.Results.Refresh(cmd.Context())
			fmt.Fprint(out, renderResults(view))
			return viewErr(view.Status, view.Err)
		}
		return follow(cmd.Context(), out, client.Results.Subscribe, client.Results.Start, client.Results.Stop, renderResults)
	},
}

var rankingsCmd = &cobra.Command{
	Use:   "rankings",
	Short: "Show the leaderboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		explicit, _ := cmd.Flags().GetInt("event")
		watch, _ := cmd.Flags().GetBool("watch")

		eventID, err := client.RankingsEventID(explicit)
		if err != nil {
			return err
		}
		feed := client.Rankings(eventID)
		out := cmd.OutOrStdout()
		if !watch {
			view := feed.Refresh(cmd.Context())
			fmt.Fprint(out, renderRankings(view))
			return viewErr(view.Status, view.Err)
		}
		return follow(cmd.Context(), out, feed.Subscribe, feed.Start, feed.Stop, renderRankings)
	},
}

// follow prints every view of a feed until interrupted.
func follow[V any](ctx context.Context, out io.Writer, subscribe func(func(V)) func(), start func(context.Context), stop func(), render func(V) string) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	unsubscribe := subscribe(func(v V) {
		fmt.Fprint(out, render(v))
		fmt.Fprintln(out)
	})
	defer unsubscribe()

	start(ctx)
	defer stop()
	<-ctx.Done()
	return nil
}

// viewErr turns an error-only view into a command failure. Hidden and stale
// views are not failures.
func viewErr(status live.Status, err error) error {
	if status == live.StatusError {
		return err
	}
	return nil
}
