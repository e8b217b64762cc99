package session_test

import (
	"testing"

	"github.com/mauv0809/quiniela-client/internal/database"
	"github.com/mauv0809/quiniela-client/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestSession(t *testing.T) (*session.Session, session.SubmissionLog) {
	t.Helper()

	db, teardown, err := database.InitDB(":memory:", "", "")
	require.NoError(t, err)
	t.Cleanup(teardown)

	store := session.NewStore(db)
	return session.New(store), store
}

func TestSession_UserLifecycle(t *testing.T) {
	sess, _ := setupTestSession(t)

	_, ok, err := sess.UserID()
	require.NoError(t, err)
	assert.False(t, ok, "fresh session should have no identity")

	_, err = sess.RequireUserID()
	assert.ErrorIs(t, err, session.ErrNotLoggedIn)

	require.NoError(t, sess.SetUserID("gallo-7"))
	require.NoError(t, sess.SetActiveEventID(7))
	require.NoError(t, sess.SetEventSnapshot([]byte{0x01, 0x02}))

	id, ok, err := sess.UserID()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "gallo-7", id)

	eventID, ok, err := sess.ActiveEventID()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 7, eventID)

	// Overwrite keeps a single row per key.
	require.NoError(t, sess.SetActiveEventID(8))
	eventID, _, err = sess.ActiveEventID()
	require.NoError(t, err)
	assert.Equal(t, 8, eventID)

	require.NoError(t, sess.Clear())
	_, ok, err = sess.UserID()
	require.NoError(t, err)
	assert.False(t, ok)
	_, ok, err = sess.ActiveEventID()
	require.NoError(t, err)
	assert.False(t, ok)
	_, ok, err = sess.EventSnapshot()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSession_CorruptEventID(t *testing.T) {
	kv := session.NewMock()
	require.NoError(t, kv.Set(session.KeyActiveEventID, []byte("seven")))

	_, _, err := session.New(kv).ActiveEventID()
	assert.Error(t, err)
}

func TestStore_SubmissionLog(t *testing.T) {
	_, log := setupTestSession(t)

	require.NoError(t, log.RecordSubmission(session.SubmissionRecord{UserID: "u1", EventID: 7, Choices: 3, Outcome: session.OutcomeFailed}))
	require.NoError(t, log.RecordSubmission(session.SubmissionRecord{UserID: "u1", EventID: 7, Choices: 3, Outcome: session.OutcomeAccepted}))
	require.NoError(t, log.RecordSubmission(session.SubmissionRecord{UserID: "u2", EventID: 7, Choices: 1, Outcome: session.OutcomeAccepted}))

	records, err := log.Submissions("u1", 7)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, session.OutcomeFailed, records[0].Outcome)
	assert.Equal(t, session.OutcomeAccepted, records[1].Outcome)
	assert.Equal(t, 3, records[1].Choices)

	records, err = log.Submissions("u1", 8)
	require.NoError(t, err)
	assert.Empty(t, records)
}
