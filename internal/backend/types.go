package backend

import (
	"fmt"
	"strings"
)

// Side is one of the three possible picks for a match. The same values are
// used for outcomes; an empty Side means the match is not decided yet.
type Side string

const (
	SideOne Side = "equipo1"
	SideTwo Side = "equipo2"
	SideTie Side = "empate"
)

// outcomeTie is how the backend spells a tied outcome.
const outcomeTie = "tie"

// ParseSide accepts the wire spellings plus the short forms 1, 2 and x.
func ParseSide(s string) (Side, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(SideOne), "1":
		return SideOne, nil
	case string(SideTwo), "2":
		return SideTwo, nil
	case string(SideTie), outcomeTie, "x":
		return SideTie, nil
	}
	return "", fmt.Errorf("unknown side %q", s)
}

// Valid reports whether s is one of the three picks.
func (s Side) Valid() bool {
	return s == SideOne || s == SideTwo || s == SideTie
}

// parseOutcome maps a resultado field to a Side. Unknown values are treated
// as undecided.
func parseOutcome(s string) Side {
	if s == "" {
		return ""
	}
	side, err := ParseSide(s)
	if err != nil {
		return ""
	}
	return side
}

// Event is one live contest instance.
type Event struct {
	ID       int
	Name     string
	Date     string
	Location string
	Rounds   []Round
}

// Round is an ordered group of matches.
type Round struct {
	ID      int
	Number  int
	Matches []Match
}

// Match is a single contest between two sides.
type Match struct {
	ID      int
	SideOne string
	SideTwo string
	Outcome Side
}

// Decided reports whether the backend has set an outcome.
func (m Match) Decided() bool {
	return m.Outcome != ""
}

// Label returns the display name of a pick on this match.
func (m Match) Label(s Side) string {
	switch s {
	case SideOne:
		return m.SideOne
	case SideTwo:
		return m.SideTwo
	case SideTie:
		return "Empate"
	}
	return "Pendiente"
}

// MatchCount returns the number of matches across all rounds.
func (e Event) MatchCount() int {
	total := 0
	for _, r := range e.Rounds {
		total += len(r.Matches)
	}
	return total
}

// Match finds a match by id in any round.
func (e Event) Match(id int) (Match, bool) {
	for _, r := range e.Rounds {
		for _, m := range r.Matches {
			if m.ID == id {
				return m, true
			}
		}
	}
	return Match{}, false
}

// Prediction is one entry of a submission.
type Prediction struct {
	MatchID int  `json:"pelea_id"`
	Choice  Side `json:"prediccion"`
}

// SubmitResult is returned by a successful submission.
type SubmitResult struct {
	TotalPoints int
}

// SpendResult is returned by a successful ticket spend. Remaining is nil when
// the backend does not report the new balance.
type SpendResult struct {
	Remaining *int
}

// ResultEntry is one graded prediction.
type ResultEntry struct {
	MatchID int
	SideOne string
	SideTwo string
	Choice  Side
	Outcome Side
	Correct bool
}

// UserResults is the payload of the results endpoint. Entries and TotalPoints
// must not be shown when Visible is false.
type UserResults struct {
	Visible     bool
	Entries     []ResultEntry
	TotalPoints int
}

// RankingEntry is one leaderboard row, in server order.
type RankingEntry struct {
	User   string `json:"user"`
	Points int    `json:"points"`
}

// RegisterRequest carries the sign-up form.
type RegisterRequest struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password"`
	Name     string `json:"nombre,omitempty"`
}

// ProfileUpdate changes the username and, optionally, the password.
type ProfileUpdate struct {
	UserID      string `json:"user_id"`
	NewUsername string `json:"new_username"`
	NewPassword string `json:"new_password,omitempty"`
}

// Wire formats.

type eventResponse struct {
	ID        int             `json:"id"`
	Nombre    string          `json:"nombre"`
	Fecha     string          `json:"fecha"`
	Ubicacion string          `json:"ubicacion"`
	Rondas    []roundResponse `json:"rondas"`
}

type roundResponse struct {
	ID     int             `json:"id"`
	Numero int             `json:"numero"`
	Peleas []matchResponse `json:"peleas"`
}

type matchResponse struct {
	ID        int     `json:"id"`
	Equipo1   string  `json:"equipo1"`
	Equipo2   string  `json:"equipo2"`
	Resultado *string `json:"resultado"`
}

func (r eventResponse) toEvent() Event {
	ev := Event{
		ID:       r.ID,
		Name:     r.Nombre,
		Date:     r.Fecha,
		Location: r.Ubicacion,
		Rounds:   make([]Round, 0, len(r.Rondas)),
	}
	for _, ronda := range r.Rondas {
		round := Round{ID: ronda.ID, Number: ronda.Numero, Matches: make([]Match, 0, len(ronda.Peleas))}
		for _, pelea := range ronda.Peleas {
			m := Match{ID: pelea.ID, SideOne: pelea.Equipo1, SideTwo: pelea.Equipo2}
			if pelea.Resultado != nil {
				m.Outcome = parseOutcome(*pelea.Resultado)
			}
			round.Matches = append(round.Matches, m)
		}
		ev.Rounds = append(ev.Rounds, round)
	}
	return ev
}

type loginRequest struct {
	UserID   string `json:"user_id"`
	Password string `json:"password"`
}

type userIDResponse struct {
	UserID string `json:"user_id"`
}

type ticketsResponse struct {
	Tickets int `json:"tickets"`
}

type spendTicketRequest struct {
	UserID  string `json:"user_id"`
	EventID int    `json:"event_id"`
}

type spendTicketResponse struct {
	Tickets *int `json:"tickets"`
}

type participationResponse struct {
	Participated bool `json:"participated"`
}

type submissionStatusResponse struct {
	HasSubmitted      *bool `json:"has_submitted"`
	HasSubmittedCamel *bool `json:"hasSubmitted"`
}

type submitRequest struct {
	UserID      string       `json:"user_id"`
	EventID     int          `json:"event_id"`
	Predictions []Prediction `json:"predictions"`
}

type submitResponse struct {
	TotalPoints int `json:"total_points"`
}

type resultsResponse struct {
	ResultsVisible    bool             `json:"resultsVisible"`
	PredictionResults []resultResponse `json:"predictionResults"`
	TotalPoints       int              `json:"totalPoints"`
}

type resultResponse struct {
	PeleaID    int     `json:"pelea_id"`
	Equipo1    string  `json:"equipo1"`
	Equipo2    string  `json:"equipo2"`
	Prediccion string  `json:"prediccion"`
	Resultado  *string `json:"resultado"`
	Correct    bool    `json:"correct"`
}

type rankingsResponse struct {
	Rankings []struct {
		User   string `json:"user"`
		Points int    `json:"points"`
	} `json:"rankings"`
}
