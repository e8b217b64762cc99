package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mauv0809/quiniela-client/internal/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*APIClient, *metrics.Mock) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	m := metrics.NewMock()
	c := NewClient(server.URL+"/", 2*time.Second, m)
	c.httpClient = server.Client()
	c.httpClient.Timeout = 2 * time.Second
	return c, m
}

func TestCurrentEvent(t *testing.T) {
	mockJSONResponse := `{
		"id": 7,
		"nombre": "Derby de Mayo",
		"fecha": "2025-05-10",
		"ubicacion": "Palenque Central",
		"rondas": [
			{"id": 1, "numero": 1, "peleas": [
				{"id": 1, "equipo1": "A", "equipo2": "B", "resultado": null},
				{"id": 2, "equipo1": "C", "equipo2": "D", "resultado": "tie"}
			]},
			{"id": 2, "numero": 2, "peleas": [
				{"id": 3, "equipo1": "E", "equipo2": "F", "resultado": "equipo2"}
			]}
		]
	}`

	client, m := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/eventos/api/current-event/", r.URL.Path)
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintln(w, mockJSONResponse)
	})

	event, err := client.CurrentEvent(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 7, event.ID)
	assert.Equal(t, "Derby de Mayo", event.Name)
	assert.Equal(t, "Palenque Central", event.Location)
	require.Len(t, event.Rounds, 2)
	assert.Equal(t, 3, event.MatchCount())

	first, ok := event.Match(1)
	require.True(t, ok)
	assert.False(t, first.Decided())

	tied, _ := event.Match(2)
	assert.Equal(t, SideTie, tied.Outcome)

	third, _ := event.Match(3)
	assert.Equal(t, SideTwo, third.Outcome)
	assert.Equal(t, "F", third.Label(third.Outcome))

	_, ok = event.Match(99)
	assert.False(t, ok)
	assert.Equal(t, 1, m.BackendRequests("current-event", metrics.OutcomeOK))
}

func TestCurrentEvent_NoActiveEvent(t *testing.T) {
	client, m := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"error": "No hay evento activo."}`)
	})

	_, err := client.CurrentEvent(context.Background())

	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.Equal(t, "No hay evento activo.", UserMessage(err))
	assert.Equal(t, 1, m.BackendRequests("current-event", "not_found"))
}

func TestSubmitPredictions_Payload(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/eventos/api/submit-predictions/", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{"user_id":"u1","event_id":7,"predictions":[{"pelea_id":1,"prediccion":"equipo1"}]}`, string(body))

		fmt.Fprint(w, `{"total_points": 4}`)
	})

	res, err := client.SubmitPredictions(context.Background(), "u1", 7, []Prediction{{MatchID: 1, Choice: SideOne}})

	require.NoError(t, err)
	assert.Equal(t, 4, res.TotalPoints)
}

func TestSubmitPredictions_AlreadySubmitted(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error": "Ya has enviado tus predicciones para este evento."}`)
	})

	_, err := client.SubmitPredictions(context.Background(), "u1", 7, []Prediction{{MatchID: 1, Choice: SideOne}})

	require.Error(t, err)
	assert.True(t, IsAlreadySubmitted(err))
	assert.Equal(t, KindConflict, KindOf(err))
}

func TestSubmitPredictions_Validation(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"predictions": ["This list may not be empty."]}`)
	})

	_, err := client.SubmitPredictions(context.Background(), "u1", 7, nil)

	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))
	assert.False(t, IsAlreadySubmitted(err))
	assert.Equal(t, "predictions: This list may not be empty.", UserMessage(err))
}

func TestRankings(t *testing.T) {
	t.Run("returns rows in server order", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/eventos/api/rankings/7/", r.URL.Path)
			fmt.Fprint(w, `{"rankings": [{"user": "zeta", "points": 3}, {"user": "alfa", "points": 9}]}`)
		})

		rows, err := client.Rankings(context.Background(), 7)
		require.NoError(t, err)
		assert.Equal(t, []RankingEntry{{User: "zeta", Points: 3}, {User: "alfa", Points: 9}}, rows)
	})

	t.Run("hidden sentinel", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			fmt.Fprint(w, `{"error": "Ranking is currently hidden."}`)
		})

		_, err := client.Rankings(context.Background(), 7)
		require.Error(t, err)
		assert.True(t, IsRankingHidden(err))
		assert.Equal(t, KindVisibility, KindOf(err))
	})

	t.Run("other forbidden is not hidden", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			fmt.Fprint(w, `{"error": "Forbidden"}`)
		})

		_, err := client.Rankings(context.Background(), 7)
		require.Error(t, err)
		assert.False(t, IsRankingHidden(err))
		assert.Equal(t, KindAuthentication, KindOf(err))
	})
}

func TestUserResults(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "u1", r.URL.Query().Get("user_id"))
		fmt.Fprint(w, `{
			"resultsVisible": true,
			"totalPoints": 2,
			"predictionResults": [
				{"pelea_id": 1, "equipo1": "A", "equipo2": "B", "prediccion": "equipo1", "resultado": "equipo1", "correct": true},
				{"pelea_id": 2, "equipo1": "C", "equipo2": "D", "prediccion": "empate", "resultado": null, "correct": false}
			]
		}`)
	})

	res, err := client.UserResults(context.Background(), "u1")

	require.NoError(t, err)
	assert.True(t, res.Visible)
	assert.Equal(t, 2, res.TotalPoints)
	require.Len(t, res.Entries, 2)
	assert.Equal(t, SideOne, res.Entries[0].Outcome)
	assert.True(t, res.Entries[0].Correct)
	assert.Equal(t, SideTie, res.Entries[1].Choice)
	assert.Equal(t, Side(""), res.Entries[1].Outcome)
}

func TestParticipationAndSubmissionStatus(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "u1", r.URL.Query().Get("user_id"))
		assert.Equal(t, "7", r.URL.Query().Get("event_id"))
		switch r.URL.Path {
		case "/eventos/api/check-participation/":
			fmt.Fprint(w, `{"participated": true}`)
		case "/eventos/api/check-submission/":
			fmt.Fprint(w, `{"hasSubmitted": true}`)
		default:
			http.NotFound(w, r)
		}
	})

	participated, err := client.CheckParticipation(context.Background(), "u1", 7)
	require.NoError(t, err)
	assert.True(t, participated)

	submitted, err := client.HasSubmitted(context.Background(), "u1", 7)
	require.NoError(t, err)
	assert.True(t, submitted)
}

func TestSpendTicket(t *testing.T) {
	t.Run("reports remaining balance", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			var req map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "u1", req["user_id"])
			assert.Equal(t, float64(7), req["event_id"])
			fmt.Fprint(w, `{"tickets": 2}`)
		})

		res, err := client.SpendTicket(context.Background(), "u1", 7)
		require.NoError(t, err)
		require.NotNil(t, res.Remaining)
		assert.Equal(t, 2, *res.Remaining)
	})

	t.Run("refusal maps to insufficient tickets", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, `{"error": "No tienes tickets disponibles."}`)
		})

		_, err := client.SpendTicket(context.Background(), "u1", 7)
		require.Error(t, err)
		assert.True(t, IsInsufficientTickets(err))
		assert.Equal(t, KindConflict, KindOf(err))
	})
}

func TestLogin(t *testing.T) {
	t.Run("returns identity", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/accounts/login/", r.URL.Path)
			fmt.Fprint(w, `{"user_id": "gallo-7"}`)
		})

		id, err := client.Login(context.Background(), "gallo-7", "secret")
		require.NoError(t, err)
		assert.Equal(t, "gallo-7", id)
	})

	t.Run("bad credentials", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, `{"error": "Credenciales inválidas"}`)
		})

		_, err := client.Login(context.Background(), "gallo-7", "wrong")
		require.Error(t, err)
		assert.Equal(t, KindAuthentication, KindOf(err))
	})
}

func TestTransportErrors(t *testing.T) {
	t.Run("timeout", func(t *testing.T) {
		release := make(chan struct{})
		client, m := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		})
		defer close(release)
		client.httpClient.Timeout = 50 * time.Millisecond

		_, err := client.GetTickets(context.Background(), "u1")
		require.Error(t, err)
		assert.Equal(t, KindTransport, KindOf(err))
		assert.Equal(t, 1, m.BackendRequests("tickets", "transport"))
	})

	t.Run("connection refused", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		url := server.URL
		server.Close()

		client := NewClient(url, time.Second, nil)
		_, err := client.CurrentEvent(context.Background())
		require.Error(t, err)
		assert.Equal(t, KindTransport, KindOf(err))
	})

	t.Run("server error with html body", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			fmt.Fprint(w, `<html><body>Bad Gateway</body></html>`)
		})

		_, err := client.CurrentEvent(context.Background())
		require.Error(t, err)
		assert.Equal(t, KindUnknown, KindOf(err))
		assert.Equal(t, "Bad Gateway", UserMessage(err))
	})
}
