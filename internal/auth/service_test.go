package auth

import (
	"context"
	"testing"

	"github.com/mauv0809/quiniela-client/internal/backend"
	"github.com/mauv0809/quiniela-client/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService() (*Service, *backend.Mock, *session.Mock) {
	client := backend.NewMock()
	kv := session.NewMock()
	return NewService(client, session.New(kv)), client, kv
}

func TestLogin(t *testing.T) {
	t.Run("stores identity", func(t *testing.T) {
		svc, client, kv := newService()
		client.LoginFunc = func(userID, password string) (string, error) {
			assert.Equal(t, "gallo", userID)
			assert.Equal(t, "secret", password)
			return "gallo", nil
		}

		id, err := svc.Login(context.Background(), " gallo ", "secret")
		require.NoError(t, err)
		assert.Equal(t, "gallo", id)

		stored, ok := kv.Value(session.KeyUserID)
		assert.True(t, ok)
		assert.Equal(t, "gallo", stored)
	})

	t.Run("bad credentials store nothing", func(t *testing.T) {
		svc, client, kv := newService()
		client.LoginFunc = func(string, string) (string, error) {
			return "", &backend.Error{Kind: backend.KindAuthentication, Message: "Credenciales inválidas"}
		}

		_, err := svc.Login(context.Background(), "gallo", "bad")
		assert.Equal(t, backend.KindAuthentication, backend.KindOf(err))
		assert.Empty(t, kv.SetCalls)
	})

	t.Run("missing fields", func(t *testing.T) {
		svc, client, _ := newService()
		_, err := svc.Login(context.Background(), "", "x")
		assert.ErrorIs(t, err, ErrMissingCredentials)
		assert.Empty(t, client.LoginCalls)
	})
}

func TestLogout(t *testing.T) {
	svc, _, kv := newService()
	require.NoError(t, kv.Set(session.KeyUserID, []byte("gallo")))
	require.NoError(t, kv.Set(session.KeyActiveEventID, []byte("7")))
	require.NoError(t, kv.Set(session.KeyEventSnapshot, []byte{0x80}))

	require.NoError(t, svc.Logout())

	for _, key := range []string{session.KeyUserID, session.KeyActiveEventID, session.KeyEventSnapshot} {
		_, ok := kv.Value(key)
		assert.False(t, ok, key)
	}
	_, err := svc.CurrentUser()
	assert.ErrorIs(t, err, session.ErrNotLoggedIn)
}

func TestRegister(t *testing.T) {
	svc, client, kv := newService()
	var got backend.RegisterRequest
	client.RegisterFunc = func(req backend.RegisterRequest) (string, error) {
		got = req
		return req.UserID, nil
	}

	_, err := svc.Register(context.Background(), backend.RegisterRequest{UserID: "gallo", Password: "a"}, "b")
	assert.ErrorIs(t, err, ErrPasswordMismatch)

	id, err := svc.Register(context.Background(), backend.RegisterRequest{UserID: "gallo", Email: "g@example.com", Password: "a"}, "a")
	require.NoError(t, err)
	assert.Equal(t, "gallo", id)
	assert.Equal(t, "g@example.com", got.Email)
	_, loggedIn := kv.Value(session.KeyUserID)
	assert.False(t, loggedIn)
}

func TestUpdateProfile(t *testing.T) {
	svc, client, kv := newService()
	var calls []backend.ProfileUpdate
	client.UpdateProfileFunc = func(u backend.ProfileUpdate) error {
		calls = append(calls, u)
		return nil
	}

	err := svc.UpdateProfile(context.Background(), "nuevo", "", "")
	assert.ErrorIs(t, err, session.ErrNotLoggedIn)

	require.NoError(t, kv.Set(session.KeyUserID, []byte("gallo")))
	assert.ErrorIs(t, svc.UpdateProfile(context.Background(), "nuevo", "a", "b"), ErrPasswordMismatch)
	assert.ErrorIs(t, svc.UpdateProfile(context.Background(), "  ", "", ""), ErrMissingUsername)
	assert.Empty(t, calls)

	require.NoError(t, svc.UpdateProfile(context.Background(), "nuevo", "pw", "pw"))
	assert.Equal(t, []backend.ProfileUpdate{{UserID: "gallo", NewUsername: "nuevo", NewPassword: "pw"}}, calls)
}
