// Package auth covers account creation, login and the profile screen.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/quiniela-client/internal/backend"
	"github.com/mauv0809/quiniela-client/internal/session"
)

var (
	ErrMissingCredentials = errors.New("user id and password are required")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrMissingUsername    = errors.New("new username is required")
)

// Service ties the backend account endpoints to the persisted session.
type Service struct {
	client  backend.Client
	session *session.Session
}

func NewService(client backend.Client, sess *session.Session) *Service {
	return &Service{client: client, session: sess}
}

// Register creates an account. It does not log the user in.
func (s *Service) Register(ctx context.Context, req backend.RegisterRequest, confirmPassword string) (string, error) {
	req.UserID = strings.TrimSpace(req.UserID)
	if req.UserID == "" || req.Password == "" {
		return "", ErrMissingCredentials
	}
	if req.Password != confirmPassword {
		return "", ErrPasswordMismatch
	}
	id, err := s.client.Register(ctx, req)
	if err != nil {
		return "", err
	}
	log.Info("Account created", "userID", id)
	return id, nil
}

// Login verifies the credentials and stores the identity.
func (s *Service) Login(ctx context.Context, userID, password string) (string, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" || password == "" {
		return "", ErrMissingCredentials
	}
	id, err := s.client.Login(ctx, userID, password)
	if err != nil {
		return "", err
	}
	if err := s.session.SetUserID(id); err != nil {
		return "", fmt.Errorf("saving session: %w", err)
	}
	log.Info("Logged in", "userID", id)
	return id, nil
}

// Logout erases the identity and everything cached for it.
func (s *Service) Logout() error {
	if err := s.session.Clear(); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	log.Info("Logged out")
	return nil
}

// CurrentUser returns the stored identity, or session.ErrNotLoggedIn.
func (s *Service) CurrentUser() (string, error) {
	return s.session.RequireUserID()
}

// UpdateProfile changes the username and optionally the password. An empty
// newPassword keeps the current one.
func (s *Service) UpdateProfile(ctx context.Context, newUsername, newPassword, confirmPassword string) error {
	userID, err := s.session.RequireUserID()
	if err != nil {
		return err
	}
	newUsername = strings.TrimSpace(newUsername)
	if newUsername == "" {
		return ErrMissingUsername
	}
	if newPassword != confirmPassword {
		return ErrPasswordMismatch
	}
	return s.client.UpdateProfile(ctx, backend.ProfileUpdate{
		UserID:      userID,
		NewUsername: newUsername,
		NewPassword: newPassword,
	})
}
