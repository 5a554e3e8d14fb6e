// Package token mints and verifies the signed session tokens and gates
// their use against the persisted token store. A signed token is only
// usable while its stored row is neither expired nor revoked; the row is
// authoritative even when the payload's own expiry has not elapsed.
package token

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/iliyamo/user-auth-service/internal/model"
	"github.com/iliyamo/user-auth-service/internal/repository"
)

// Kind distinguishes short-lived API tokens from the longer-lived tokens
// used solely to mint new access tokens.
type Kind string

const (
	KindAccess  Kind = "ACCESS"
	KindRefresh Kind = "REFRESH"
)

// Claims is the signed payload: subject (user email), expiry and kind.
// Minted once per token row, never mutated.
type Claims struct {
	TokenType Kind `json:"token_type"`
	jwt.RegisteredClaims
}

var (
	// ErrInvalidToken covers malformed tokens and bad signatures.
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpired covers both an elapsed payload expiry and a row whose
	// expired flag was set early.
	ErrExpired = errors.New("token expired")
	// ErrRevoked means the persisted row was revoked.
	ErrRevoked = errors.New("token revoked")
	// ErrKindMismatch means the embedded kind disagrees with the expected one.
	ErrKindMismatch = errors.New("token kind mismatch")
)

// Pair is one freshly issued session: both values are persisted rows.
type Pair struct {
	Access  string
	Refresh string
}

// Service signs tokens with a symmetric secret (HS256) and persists every
// issued value through the token repository.
type Service struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	tokens     *repository.TokenRepo
	users      *repository.UserRepo
}

func NewService(secret string, accessTTL, refreshTTL time.Duration, tokens *repository.TokenRepo, users *repository.UserRepo) *Service {
	return &Service{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		tokens:     tokens,
		users:      users,
	}
}

func (s *Service) ttl(kind Kind) time.Duration {
	if kind == KindRefresh {
		return s.refreshTTL
	}
	return s.accessTTL
}

// Mint builds a claim with exp = now + ttl(kind) and signs it.
func (s *Service) Mint(subject string, kind Kind) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		TokenType: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl(kind))),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature and payload expiry, the embedded kind, and
// finally the persisted row. All four gates must pass; on success it
// returns the subject. Payload expiry is checked first because it costs no
// I/O, but the row is the final verdict for expiry and revocation.
func (s *Service) Verify(ctx context.Context, signed string, kind Kind) (string, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(signed, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrExpired
		}
		return "", ErrInvalidToken
	}

	if claims.TokenType != kind {
		return "", ErrKindMismatch
	}

	row, err := s.tokens.GetByValue(ctx, signed)
	if err != nil {
		return "", err
	}
	if row.IsExpired {
		return "", ErrExpired
	}
	if row.IsRevoked {
		return "", ErrRevoked
	}
	return claims.Subject, nil
}

// IssuePair mints one ACCESS and one REFRESH token for the user resolved by
// email and persists both rows in a single transaction.
func (s *Service) IssuePair(ctx context.Context, email string) (Pair, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return Pair{}, err
	}

	access, err := s.Mint(user.Email, KindAccess)
	if err != nil {
		return Pair{}, err
	}
	refresh, err := s.Mint(user.Email, KindRefresh)
	if err != nil {
		return Pair{}, err
	}

	err = s.tokens.InsertPair(ctx,
		&model.Token{ID: uuid.New(), UserID: user.ID, Token: access},
		&model.Token{ID: uuid.New(), UserID: user.ID, Token: refresh})
	if err != nil {
		return Pair{}, fmt.Errorf("persist token pair: %w", err)
	}
	return Pair{Access: access, Refresh: refresh}, nil
}

// AccessFromRefresh verifies a REFRESH token and mints and persists a new
// ACCESS token for the same subject. The refresh row is left untouched:
// there is no rotation-on-use, a refresh token keeps working until its row
// is revoked or expires.
func (s *Service) AccessFromRefresh(ctx context.Context, refresh string) (string, error) {
	subject, err := s.Verify(ctx, refresh, KindRefresh)
	if err != nil {
		return "", err
	}

	user, err := s.users.GetByEmail(ctx, subject)
	if err != nil {
		return "", err
	}

	access, err := s.Mint(user.Email, KindAccess)
	if err != nil {
		return "", err
	}
	if err := s.tokens.Insert(ctx, &model.Token{ID: uuid.New(), UserID: user.ID, Token: access}); err != nil {
		return "", fmt.Errorf("persist access token: %w", err)
	}
	return access, nil
}
