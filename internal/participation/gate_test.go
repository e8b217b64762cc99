package participation

import (
	"context"
	"errors"
	"testing"

	"github.com/mauv0809/quiniela-client/internal/backend"
	"github.com/mauv0809/quiniela-client/internal/metrics"
	"github.com/mauv0809/quiniela-client/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	client  *backend.Mock
	kv      *session.Mock
	metrics *metrics.Mock
	gate    *Gate
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	kv := session.NewMock()
	sess := session.New(kv)
	require.NoError(t, sess.SetUserID("u1"))
	client := backend.NewMock()
	m := metrics.NewMock()
	return &fixture{client: client, kv: kv, metrics: m, gate: NewGate(client, sess, m)}
}

func TestGate_Refresh(t *testing.T) {
	t.Run("not participating", func(t *testing.T) {
		f := newFixture(t)
		status, err := f.gate.Refresh(context.Background(), 7)
		require.NoError(t, err)
		assert.Equal(t, StatusNotParticipating, status)
		assert.Zero(t, f.client.HasSubmittedCalls)
	})

	t.Run("participating and unsubmitted", func(t *testing.T) {
		f := newFixture(t)
		f.client.CheckParticipationFunc = func(userID string, eventID int) (bool, error) {
			assert.Equal(t, "u1", userID)
			assert.Equal(t, 7, eventID)
			return true, nil
		}
		status, err := f.gate.Refresh(context.Background(), 7)
		require.NoError(t, err)
		assert.Equal(t, StatusParticipatingUnsubmitted, status)
	})

	t.Run("converges to submitted", func(t *testing.T) {
		f := newFixture(t)
		submitted := false
		f.client.CheckParticipationFunc = func(string, int) (bool, error) { return true, nil }
		f.client.HasSubmittedFunc = func(string, int) (bool, error) { return submitted, nil }

		status, err := f.gate.Refresh(context.Background(), 7)
		require.NoError(t, err)
		assert.Equal(t, StatusParticipatingUnsubmitted, status)

		// Submitted from another device.
		submitted = true
		status, err = f.gate.Refresh(context.Background(), 7)
		require.NoError(t, err)
		assert.Equal(t, StatusSubmitted, status)

		// Never back.
		submitted = false
		status, err = f.gate.Refresh(context.Background(), 7)
		require.NoError(t, err)
		assert.Equal(t, StatusSubmitted, status)
		assert.Equal(t, 1, f.metrics.GateTransitions(StatusSubmitted.String()))
	})

	t.Run("failed submission check keeps previous state", func(t *testing.T) {
		f := newFixture(t)
		f.client.CheckParticipationFunc = func(string, int) (bool, error) { return true, nil }

		_, err := f.gate.Refresh(context.Background(), 7)
		require.NoError(t, err)

		f.client.HasSubmittedFunc = func(string, int) (bool, error) {
			return false, &backend.Error{Kind: backend.KindTransport, Message: "could not reach the server"}
		}
		status, err := f.gate.Refresh(context.Background(), 7)
		require.Error(t, err)
		assert.Equal(t, backend.KindTransport, backend.KindOf(err))
		assert.Equal(t, StatusParticipatingUnsubmitted, status)
		assert.Equal(t, err, f.gate.View().Err)
	})

	t.Run("failure on first check stays unknown", func(t *testing.T) {
		f := newFixture(t)
		f.client.CheckParticipationFunc = func(string, int) (bool, error) {
			return false, errors.New("offline")
		}
		status, err := f.gate.Refresh(context.Background(), 7)
		require.Error(t, err)
		assert.Equal(t, StatusUnknown, status)
	})

	t.Run("new event starts over", func(t *testing.T) {
		f := newFixture(t)
		f.client.CheckParticipationFunc = func(_ string, eventID int) (bool, error) { return eventID == 7, nil }
		f.client.HasSubmittedFunc = func(string, int) (bool, error) { return true, nil }

		status, _ := f.gate.Refresh(context.Background(), 7)
		assert.Equal(t, StatusSubmitted, status)

		status, err := f.gate.Refresh(context.Background(), 8)
		require.NoError(t, err)
		assert.Equal(t, StatusNotParticipating, status)
		assert.Equal(t, 8, f.gate.EventID())
		assert.Equal(t, StatusUnknown, f.gate.StatusFor(7))
	})

	t.Run("logged out", func(t *testing.T) {
		client := backend.NewMock()
		gate := NewGate(client, session.New(session.NewMock()), nil)
		_, err := gate.Refresh(context.Background(), 7)
		assert.ErrorIs(t, err, session.ErrNotLoggedIn)
		assert.Zero(t, client.CheckParticipationCalls)
	})
}

func TestGate_SpendTicket(t *testing.T) {
	t.Run("requires a known status", func(t *testing.T) {
		f := newFixture(t)
		assert.ErrorIs(t, f.gate.SpendTicket(context.Background()), ErrStatusUnknown)
	})

	t.Run("success advances and decrements", func(t *testing.T) {
		f := newFixture(t)
		f.client.GetTicketsFunc = func(string) (int, error) { return 2, nil }
		_, err := f.gate.Refresh(context.Background(), 7)
		require.NoError(t, err)

		require.NoError(t, f.gate.SpendTicket(context.Background()))
		assert.Equal(t, StatusParticipatingUnsubmitted, f.gate.Status())
		tickets, known := f.gate.Tickets()
		assert.True(t, known)
		assert.Equal(t, 1, tickets)
		require.Len(t, f.client.SpendTicketCalls, 1)
		assert.Equal(t, backend.SpendTicketCall{UserID: "u1", EventID: 7}, f.client.SpendTicketCalls[0])

		assert.ErrorIs(t, f.gate.SpendTicket(context.Background()), ErrAlreadyJoined)
	})

	t.Run("uses reported balance", func(t *testing.T) {
		f := newFixture(t)
		remaining := 5
		f.client.GetTicketsFunc = func(string) (int, error) { return 9, nil }
		f.client.SpendTicketFunc = func(string, int) (backend.SpendResult, error) {
			return backend.SpendResult{Remaining: &remaining}, nil
		}
		_, _ = f.gate.Refresh(context.Background(), 7)
		require.NoError(t, f.gate.SpendTicket(context.Background()))
		tickets, _ := f.gate.Tickets()
		assert.Equal(t, 5, tickets)
	})

	t.Run("no tickets blocks locally", func(t *testing.T) {
		f := newFixture(t)
		_, _ = f.gate.Refresh(context.Background(), 7)
		_, err := f.gate.RefreshTickets(context.Background())
		require.NoError(t, err)

		assert.ErrorIs(t, f.gate.SpendTicket(context.Background()), ErrNoTickets)
		assert.Empty(t, f.client.SpendTicketCalls)
		assert.Equal(t, StatusNotParticipating, f.gate.Status())
	})

	t.Run("backend refusal does not advance", func(t *testing.T) {
		f := newFixture(t)
		f.client.GetTicketsFunc = func(string) (int, error) { return 1, nil }
		f.client.SpendTicketFunc = func(string, int) (backend.SpendResult, error) {
			return backend.SpendResult{}, &backend.Error{Kind: backend.KindConflict, Reason: backend.ReasonInsufficientTickets}
		}
		_, _ = f.gate.Refresh(context.Background(), 7)

		err := f.gate.SpendTicket(context.Background())
		assert.True(t, backend.IsInsufficientTickets(err))
		assert.Equal(t, StatusNotParticipating, f.gate.Status())
		tickets, _ := f.gate.Tickets()
		assert.Equal(t, 1, tickets)
	})
}

func TestGate_Reset(t *testing.T) {
	f := newFixture(t)
	f.client.GetTicketsFunc = func(string) (int, error) { return 3, nil }
	_, _ = f.gate.Refresh(context.Background(), 7)
	_, _ = f.gate.RefreshTickets(context.Background())

	f.gate.Reset()

	view := f.gate.View()
	assert.Equal(t, GateView{}, view)
}
