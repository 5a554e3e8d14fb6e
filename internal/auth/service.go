// Package auth is the top-level signup/login/refresh orchestration. It
// composes the user repository and the token service and owns the coarse
// error taxonomy that crosses the service boundary: internal causes are
// logged here and never surfaced to callers.
package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/user-auth-service/internal/cache"
	"github.com/iliyamo/user-auth-service/internal/model"
	"github.com/iliyamo/user-auth-service/internal/repository"
	"github.com/iliyamo/user-auth-service/internal/token"
)

// Profile is the public projection of a user. It never carries the
// password hash.
type Profile struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Role  string    `json:"role"`
}

// Session is the result shape shared by password-based and token-based
// authentication so callers can treat both uniformly.
type Session struct {
	AccessToken  string
	RefreshToken string
	User         Profile
}

// SignupRequest carries the raw signup input.
type SignupRequest struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
}

// Service orchestrates authentication against the stores and the token
// service. The profile cache may be nil.
type Service struct {
	users      *repository.UserRepo
	tokens     *token.Service
	profiles   *cache.Store
	bcryptCost int
}

func NewService(users *repository.UserRepo, tokens *token.Service, profiles *cache.Store, bcryptCost int) *Service {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{users: users, tokens: tokens, profiles: profiles, bcryptCost: bcryptCost}
}

// Signup creates a disabled SYSTEM user with a bcrypt password hash and its
// USER role in one transaction. The mismatch check runs before any lookup.
func (s *Service) Signup(ctx context.Context, req SignupRequest) (Profile, error) {
	if req.Password != req.ConfirmPassword {
		return Profile{}, ErrPasswordMismatch
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		log.Printf("auth: hash password failed: %v", err)
		return Profile{}, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		ID:                  uuid.New(),
		Name:                req.Name,
		Email:               strings.ToLower(strings.TrimSpace(req.Email)),
		IsEnabled:           false,
		IsAccountNonExpired: true,
		IsAccountNonLocked:  true,
		PasswordHash:        sql.NullString{String: string(hash), Valid: true},
		Source:              model.SourceSystem,
	}

	role, err := s.users.Create(ctx, user)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return Profile{}, err
		}
		log.Printf("auth: create user failed: %v", err)
		return Profile{}, fmt.Errorf("create user: %w", err)
	}

	return Profile{ID: user.ID, Name: user.Name, Email: user.Email, Role: role.Role}, nil
}

// Login verifies the password against the stored hash and issues a fresh
// session pair. An unknown email and a wrong password are indistinguishable
// to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Session{}, ErrInvalidCredentials
		}
		log.Printf("auth: lookup user failed: %v", err)
		return Session{}, fmt.Errorf("lookup user: %w", err)
	}

	// Federated users have no local password to verify.
	if !user.PasswordHash.Valid {
		return Session{}, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash.String), []byte(password)) != nil {
		return Session{}, ErrInvalidCredentials
	}

	return s.session(ctx, user)
}

// AuthenticateToken verifies an ACCESS token, resolves the subject back to
// a full user and re-issues a fresh session, mirroring the login shape.
// Every verification failure collapses to ErrInvalidCredentials.
func (s *Service) AuthenticateToken(ctx context.Context, signed string) (Session, error) {
	subject, err := s.tokens.Verify(ctx, signed, token.KindAccess)
	if err != nil {
		if isVerifyFailure(err) {
			log.Printf("auth: token rejected: %v", err)
			return Session{}, ErrInvalidCredentials
		}
		log.Printf("auth: token verification failed: %v", err)
		return Session{}, fmt.Errorf("verify token: %w", err)
	}

	user, err := s.users.GetByEmail(ctx, subject)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Session{}, ErrInvalidCredentials
		}
		log.Printf("auth: lookup subject failed: %v", err)
		return Session{}, fmt.Errorf("lookup user: %w", err)
	}

	return s.session(ctx, user)
}

// Refresh mints a new access token from a refresh token. The refresh token
// stays usable; invalidation is an external revocation decision.
func (s *Service) Refresh(ctx context.Context, refresh string) (string, error) {
	access, err := s.tokens.AccessFromRefresh(ctx, refresh)
	if err != nil {
		if isVerifyFailure(err) {
			log.Printf("auth: refresh rejected: %v", err)
			return "", ErrInvalidCredentials
		}
		log.Printf("auth: refresh failed: %v", err)
		return "", fmt.Errorf("refresh: %w", err)
	}
	return access, nil
}

// session issues a persisted token pair and resolves the public profile.
func (s *Service) session(ctx context.Context, user model.User) (Session, error) {
	pair, err := s.tokens.IssuePair(ctx, user.Email)
	if err != nil {
		log.Printf("auth: issue session pair failed: %v", err)
		return Session{}, fmt.Errorf("issue session: %w", err)
	}

	profile, err := s.profile(ctx, user)
	if err != nil {
		log.Printf("auth: resolve profile failed: %v", err)
		return Session{}, fmt.Errorf("resolve profile: %w", err)
	}

	return Session{AccessToken: pair.Access, RefreshToken: pair.Refresh, User: profile}, nil
}

// profile resolves the public projection, read-through cached by email.
// Safe to cache: email is immutable and the role never changes after signup.
func (s *Service) profile(ctx context.Context, user model.User) (Profile, error) {
	var p Profile
	if s.profiles.Get(ctx, user.Email, &p) {
		return p, nil
	}

	role, err := s.users.GetRoleByUserID(ctx, user.ID)
	if err != nil {
		return Profile{}, err
	}
	p = Profile{ID: user.ID, Name: user.Name, Email: user.Email, Role: role.Role}
	s.profiles.Set(ctx, user.Email, p)
	return p, nil
}

// isVerifyFailure reports whether err is one of the token verification
// outcomes that must stay indistinguishable to callers.
func isVerifyFailure(err error) bool {
	return errors.Is(err, token.ErrInvalidToken) ||
		errors.Is(err, token.ErrExpired) ||
		errors.Is(err, token.ErrRevoked) ||
		errors.Is(err, token.ErrKindMismatch) ||
		errors.Is(err, repository.ErrNotFound)
}
