package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"animehub/internal/apperr"
	"animehub/internal/logging"
	"animehub/pkg/models"
)

// Service registers users, checks credentials and resolves identity tokens.
type Service struct {
	Repo   *Repo
	Tokens TokenService
	// Cost is the bcrypt cost; zero means bcrypt.DefaultCost.
	Cost int
}

func NewService(repo *Repo, tokens TokenService) *Service {
	return &Service{Repo: repo, Tokens: tokens}
}

func (s *Service) Register(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, apperr.Validation("username and password are required")
	}

	existing, err := s.Repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.Conflict("A user with that username already exists")
	}

	cost := s.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, apperr.Validation("password must be at most 72 bytes")
		}
		return nil, err
	}

	u := &models.User{Username: username, PasswordHash: string(hash)}
	// the unique index still guards against a concurrent register
	if err := s.Repo.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	logging.Ctx(ctx).Info().Uint("user_id", u.ID).Str("username", u.Username).Msg("user registered")
	return u, nil
}

// Login returns a signed token and its expiry.
func (s *Service) Login(ctx context.Context, username, password string) (string, time.Time, error) {
	u, err := s.Repo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return "", time.Time{}, err
	}
	// same message for unknown user and wrong password
	if u == nil || bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return "", time.Time{}, apperr.Unauthorized("Invalid credentials")
	}
	return s.Tokens.Sign(u)
}

// Identify validates token and returns its claims. Tokens of users that no
// longer exist are rejected.
func (s *Service) Identify(ctx context.Context, token string) (*Claims, error) {
	claims, err := s.Tokens.Parse(token)
	if err != nil {
		return nil, apperr.Unauthorized("invalid token")
	}
	u, err := s.Repo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, apperr.Unauthorized("invalid token")
	}
	return claims, nil
}
