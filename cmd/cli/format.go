package main

import (
	"bufio"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mauv0809/quiniela-client/internal/app"
	"github.com/mauv0809/quiniela-client/internal/backend"
	"github.com/mauv0809/quiniela-client/internal/live"
	"github.com/mauv0809/quiniela-client/internal/participation"
	"github.com/mauv0809/quiniela-client/internal/session"
	"github.com/spf13/cobra"
)

var titleStyle = lipgloss.NewStyle().Bold(true)

type pick struct {
	MatchID int
	Choice  backend.Side
}

// parsePicks reads --pick values of the form <match-id>=<side>.
func parsePicks(values []string) ([]pick, error) {
	picks := make([]pick, 0, len(values))
	for _, v := range values {
		id, side, ok := strings.Cut(v, "=")
		if !ok {
			return nil, fmt.Errorf("invalid pick %q, expected <match-id>=<side>", v)
		}
		matchID, err := strconv.Atoi(strings.TrimSpace(id))
		if err != nil {
			return nil, fmt.Errorf("invalid match id in pick %q", v)
		}
		choice, err := backend.ParseSide(side)
		if err != nil {
			return nil, fmt.Errorf("invalid pick %q: %w", v, err)
		}
		picks = append(picks, pick{MatchID: matchID, Choice: choice})
	}
	return picks, nil
}

// renderEvent prints the rounds of ev. choices may be nil.
func renderEvent(ev backend.Event, choices map[int]backend.Side) string {
	var b strings.Builder
	fmt.Fprintln(&b, titleStyle.Render(fmt.Sprintf("%s (#%d)", ev.Name, ev.ID)))
	if ev.Date != "" || ev.Location != "" {
		fmt.Fprintln(&b, strings.TrimSpace(ev.Date+" "+ev.Location))
	}

	rows := make([][]string, 0, ev.MatchCount())
	for _, r := range ev.Rounds {
		for _, m := range r.Matches {
			row := []string{strconv.Itoa(r.Number), strconv.Itoa(m.ID), m.SideOne, m.SideTwo, m.Label(m.Outcome)}
			if choices != nil {
				if c, ok := choices[m.ID]; ok {
					row = append(row, m.Label(c))
				} else {
					row = append(row, "-")
				}
			}
			rows = append(rows, row)
		}
	}
	headers := []string{"Round", "Match", "Side 1", "Side 2", "Result"}
	if choices != nil {
		headers = append(headers, "Your pick")
	}
	fmt.Fprintln(&b, newTable(headers, rows))
	return b.String()
}

func renderResults(v live.ResultsView) string {
	switch v.Status {
	case live.StatusLoading:
		return "Loading results...\n"
	case live.StatusHidden:
		return "Results are not available yet.\n"
	case live.StatusError:
		return fmt.Sprintf("Could not load results: %s\n", userMessage(v.Err))
	}

	var b strings.Builder
	rows := make([][]string, 0, len(v.Entries))
	for _, e := range v.Entries {
		m := backend.Match{SideOne: e.SideOne, SideTwo: e.SideTwo}
		mark := ""
		switch {
		case e.Outcome == "":
		case e.Correct:
			mark = "yes"
		default:
			mark = "no"
		}
		rows = append(rows, []string{strconv.Itoa(e.MatchID), e.SideOne + " vs " + e.SideTwo, m.Label(e.Choice), m.Label(e.Outcome), mark})
	}
	fmt.Fprintln(&b, newTable([]string{"Match", "Fight", "Your pick", "Result", "Correct"}, rows))
	fmt.Fprintf(&b, "Points: %d  Correct: %d/%d  Accuracy: %.1f%%\n", v.TotalPoints, v.Correct, v.Decided, v.Accuracy)
	if v.Err != nil {
		fmt.Fprintf(&b, "Showing data from %s: %s\n", v.UpdatedAt.Format(time.Kitchen), userMessage(v.Err))
	}
	return b.String()
}

func renderRankings(v live.RankingsView) string {
	switch v.Status {
	case live.StatusLoading:
		return "Loading rankings...\n"
	case live.StatusHidden:
		return fmt.Sprintf("Rankings for event #%d are not public yet.\n", v.EventID)
	case live.StatusError:
		return fmt.Sprintf("Could not load rankings: %s\n", userMessage(v.Err))
	}

	var b strings.Builder
	fmt.Fprintln(&b, titleStyle.Render(fmt.Sprintf("Rankings for event #%d", v.EventID)))
	rows := make([][]string, 0, len(v.Entries))
	for i, e := range v.Entries {
		rows = append(rows, []string{strconv.Itoa(i + 1), e.User, strconv.Itoa(e.Points)})
	}
	fmt.Fprintln(&b, newTable([]string{"#", "User", "Points"}, rows))
	if v.Err != nil {
		fmt.Fprintf(&b, "Showing data from %s: %s\n", v.UpdatedAt.Format(time.Kitchen), userMessage(v.Err))
	}
	return b.String()
}

// renderSubmissions lists the submit attempts made from this device.
func renderSubmissions(records []session.SubmissionRecord) string {
	if len(records) == 0 {
		return ""
	}
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{r.CreatedAt.Format("2006-01-02 15:04"), strconv.Itoa(r.Choices), describeOutcome(r.Outcome)})
	}
	return "Submissions from this device:\n" + newTable([]string{"When", "Picks", "Outcome"}, rows) + "\n"
}

func describeOutcome(o session.SubmissionOutcome) string {
	switch o {
	case session.OutcomeAccepted:
		return "accepted"
	case session.OutcomeAlreadySubmitted:
		return "already on the server"
	case session.OutcomeFailed:
		return "failed"
	}
	return string(o)
}

func newTable(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		String()
}

func describeStatus(s participation.Status) string {
	switch s {
	case participation.StatusNotParticipating:
		return "not joined, run `quiniela join` to spend a ticket"
	case participation.StatusParticipatingUnsubmitted:
		return "joined, predictions open"
	case participation.StatusSubmitted:
		return "predictions submitted"
	}
	return "unknown, try again"
}

// userMessage maps errors to the text shown on the terminal.
func userMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, session.ErrNotLoggedIn):
		return "you are not logged in, run `quiniela login <user-id>`"
	case errors.Is(err, app.ErrNoKnownEvent):
		return "no event known yet, pass --event or run `quiniela event` first"
	case errors.Is(err, participation.ErrNotParticipating):
		return "you have not joined this event, run `quiniela join` first"
	case errors.Is(err, participation.ErrLocked):
		return "your predictions for this event are already locked in"
	case errors.Is(err, participation.ErrEventChanged):
		return "the live event changed, check it with `quiniela event` and try again"
	case errors.Is(err, participation.ErrNotConfirmed):
		return "submission cancelled"
	case errors.Is(err, participation.ErrStatusUnknown):
		return "could not check your participation, try again"
	case errors.Is(err, participation.ErrNoTickets), backend.IsInsufficientTickets(err):
		return "you have no tickets left"
	case backend.KindOf(err) == backend.KindTransport:
		return "could not reach the server, check your connection"
	}
	return backend.UserMessage(err)
}

// stdin is shared so consecutive prompts do not lose buffered lines.
var stdin *bufio.Reader

func input(cmd *cobra.Command) *bufio.Reader {
	if stdin == nil {
		stdin = bufio.NewReader(cmd.InOrStdin())
	}
	return stdin
}

func flagOrPrompt(cmd *cobra.Command, flag, prompt string) (string, error) {
	v, _ := cmd.Flags().GetString(flag)
	if v != "" {
		return v, nil
	}
	fmt.Fprint(cmd.OutOrStdout(), prompt)
	line, err := input(cmd).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("reading %s: %w", flag, err)
	}
	return strings.TrimSpace(line), nil
}

func promptYesNo(cmd *cobra.Command, prompt string) bool {
	fmt.Fprint(cmd.OutOrStdout(), prompt)
	line, _ := input(cmd).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes", "s", "si":
		return true
	}
	return false
}
