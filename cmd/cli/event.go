package main

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/quiniela-client/internal/backend"
	"github.com/mauv0809/quiniela-client/internal/participation"
	"github.com/spf13/cobra"
)

func init() {
	predictCmd.Flags().StringArrayP("pick", "p", nil, "A prediction as <match-id>=<side>, side is 1, 2, x or the full name")
	predictCmd.Flags().BoolP("yes", "y", false, "Submit a partial set without asking")
	_ = predictCmd.MarkFlagRequired("pick")

	rootCmd.AddCommand(eventCmd, ticketsCmd, joinCmd, statusCmd, predictCmd)
}

var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Show the live event",
	RunE: func(cmd *cobra.Command, args []string) error {
		ev, err := client.Events.Refresh(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), renderEvent(ev, nil))
		return nil
	},
}

var ticketsCmd = &cobra.Command{
	Use:   "tickets",
	Short: "Show your ticket balance",
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := client.Gate.RefreshTickets(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "You have %d ticket(s).\n", n)
		return nil
	},
}

var joinCmd = &cobra.Command{
	Use:   "join",
	Short: "Spend a ticket to enter the live event",
	RunE: func(cmd *cobra.Command, args []string) error {
		ev, _, err := client.Focus(cmd.Context())
		if err != nil {
			return err
		}
		if err := client.Gate.SpendTicket(cmd.Context()); err != nil {
			if errors.Is(err, participation.ErrAlreadyJoined) {
				fmt.Fprintf(cmd.OutOrStdout(), "You are already in %s.\n", ev.Name)
				return nil
			}
			return err
		}
		tickets, _ := client.Gate.Tickets()
		fmt.Fprintf(cmd.OutOrStdout(), "You are in %s. %d ticket(s) left.\n", ev.Name, tickets)
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show what you can do in the live event",
	RunE: func(cmd *cobra.Command, args []string) error {
		ev, status, err := client.Focus(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s (#%d): %s\n", ev.Name, ev.ID, describeStatus(status))
		if n, err := client.Gate.RefreshTickets(cmd.Context()); err == nil {
			fmt.Fprintf(out, "Tickets: %d\n", n)
		}
		attempts, err := client.Submissions(ev.ID)
		if err != nil {
			log.Warn("Could not read the local submission log", "error", err)
			return nil
		}
		fmt.Fprint(out, renderSubmissions(attempts))
		return nil
	},
}

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Lock in your predictions for the live event",
	Long: `Record one pick per match and submit them. Submitting is final: once the
predictions are in they cannot be changed.`,
	Example: `  quiniela predict -p 1=1 -p 2=x -p 3=equipo2`,
	RunE: func(cmd *cobra.Command, args []string) error {
		picks, _ := cmd.Flags().GetStringArray("pick")
		yes, _ := cmd.Flags().GetBool("yes")

		parsed, err := parsePicks(picks)
		if err != nil {
			return err
		}

		session, release, err := client.Prediction(cmd.Context())
		if err != nil {
			return err
		}
		defer release()
		eventID := session.Event().ID
		for _, p := range parsed {
			if err := session.SetChoice(p.MatchID, p.Choice); err != nil {
				return err
			}
		}

		// The card can change between loading and submitting; the session
		// drops picks for matches that disappeared.
		if _, err := client.Events.Refresh(cmd.Context()); err != nil {
			log.Warn("Could not re-check the event before submitting", "error", err)
		}
		if session.Event().ID != eventID {
			return participation.ErrEventChanged
		}

		out := cmd.OutOrStdout()
		fmt.Fprint(out, renderEvent(session.Event(), session.Choices()))

		confirm := func(chosen, total int) bool {
			if yes {
				return true
			}
			return promptYesNo(cmd, fmt.Sprintf("You picked %d of %d matches. Submissions are final. Submit anyway? [y/N] ", chosen, total))
		}
		res, err := session.Submit(cmd.Context(), confirm)
		if err != nil {
			if backend.IsAlreadySubmitted(err) {
				fmt.Fprintln(out, "Your predictions for this event were already submitted.")
				return nil
			}
			return err
		}
		fmt.Fprintf(out, "Predictions submitted. Points so far: %d\n", res.TotalPoints)
		return nil
	},
}
