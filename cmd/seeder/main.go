package main

import (
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/mauv0809/quiniela-client/internal/backend"
	"github.com/mauv0809/quiniela-client/internal/config"
	"github.com/mauv0809/quiniela-client/internal/database"
	"github.com/mauv0809/quiniela-client/internal/live"
	"github.com/mauv0809/quiniela-client/internal/session"
)

// The seeder stages the local store of a device: a logged-in identity and a
// cached event snapshot. The CLI and the watcher start from that snapshot
// until the backend answers, which is enough to demo them offline.

var fighters = []string{
	"Rojo", "Azul", "Verde", "Negro", "Blanco", "Dorado",
	"Plata", "Bronce", "Trueno", "Rayo", "Tigre", "Halcon",
}

func envInt(key string, fallback int) int {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Fatalf("Error: %s must be a number, got %q", key, v)
	}
	return n
}

// buildEvent generates rounds of matches. The first decided matches get an
// outcome so the results view has something to grade.
func buildEvent(id, rounds, perRound, decided int) backend.Event {
	ev := backend.Event{
		ID:       id,
		Name:     fmt.Sprintf("Seeded Event %d", id),
		Date:     time.Now().Format("2006-01-02"),
		Location: "Seeded Arena",
	}
	sides := []backend.Side{backend.SideOne, backend.SideTwo, backend.SideTie}
	matchID := id * 1000
	for r := 1; r <= rounds; r++ {
		round := backend.Round{ID: id*100 + r, Number: r}
		for i := 0; i < perRound; i++ {
			matchID++
			a := rand.Intn(len(fighters))
			b := (a + 1 + rand.Intn(len(fighters)-1)) % len(fighters)
			m := backend.Match{ID: matchID, SideOne: fighters[a], SideTwo: fighters[b]}
			if decided > 0 {
				m.Outcome = sides[rand.Intn(len(sides))]
				decided--
			}
			round.Matches = append(round.Matches, m)
		}
		ev.Rounds = append(ev.Rounds, round)
	}
	return ev
}

func main() {
	log.Info("Starting local store seeder...")
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %s", err)
	}

	db, closeDB, err := database.InitDB(cfg.DBName, cfg.Turso.PrimaryURL, cfg.Turso.AuthToken)
	if err != nil {
		log.Fatalf("Failed to open local store: %s", err)
	}
	defer closeDB()

	sess := session.New(session.NewStore(db))

	userID := os.Getenv("SEED_USER_ID")
	if userID == "" {
		userID = "seed-" + uuid.NewString()[:8]
	}
	if err := sess.SetUserID(userID); err != nil {
		log.Fatalf("Failed to store user id: %s", err)
	}
	log.Info("Stored identity.", "userID", userID)

	ev := buildEvent(
		envInt("SEED_EVENT_ID", 1),
		envInt("SEED_ROUNDS", 3),
		envInt("SEED_MATCHES_PER_ROUND", 4),
		envInt("SEED_DECIDED", 0),
	)
	if err := live.SaveSnapshot(sess, ev); err != nil {
		log.Fatalf("Failed to store event snapshot: %s", err)
	}
	log.Info("Stored event snapshot.", "eventID", ev.ID, "rounds", len(ev.Rounds), "matches", ev.MatchCount())
}
