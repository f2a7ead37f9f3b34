// Package services contains server-side business logic. This file implements
// AuthService, which handles registration and login and mints bearer tokens.
package services

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"github.com/dsmirnov/bookshelf/internal/common"
	"github.com/dsmirnov/bookshelf/internal/server/auth"
	"github.com/dsmirnov/bookshelf/internal/server/config"
	"github.com/dsmirnov/bookshelf/internal/server/models"
	"github.com/dsmirnov/bookshelf/internal/server/repositories/repomanager"
)

// AuthService provides the authentication workflow:
// - Register: create an account and issue a token
// - Login: verify credentials and issue a token
type AuthService struct {
	db                    *sql.DB
	repomanager           repomanager.RepositoryManager
	hasher                *auth.PasswordHasher
	jwtSecret             []byte
	tokenValidityDuration time.Duration
}

// NewAuthService constructs an AuthService using repositories and server config.
func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, hasher *auth.PasswordHasher, cfg *config.Config) *AuthService {
	return &AuthService{
		db:                    db,
		repomanager:           m,
		hasher:                hasher,
		jwtSecret:             []byte(cfg.SecretKey),
		tokenValidityDuration: cfg.TokenValidityDuration,
	}
}

// Register creates a new account for the given email and returns it together
// with a fresh bearer token. A taken email yields common.ErrAlreadyRegistered;
// the storage layer's unique constraint is mapped to the same error, so two
// concurrent registrations for one email cannot both succeed.
func (s *AuthService) Register(ctx context.Context, email, password string) (*models.User, string, error) {
	repo := s.repomanager.Users(s.db)

	if _, err := repo.GetByEmail(ctx, email); err == nil {
		return nil, "", common.ErrAlreadyRegistered
	} else if !errors.Is(err, common.ErrNotFound) {
		return nil, "", common.ErrInternal
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, "", common.ErrInternal
	}

	user := &models.User{
		Username:     email,
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleUser,
		FromDataset:  false,
	}

	user, err = repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrAlreadyExists) {
			return nil, "", common.ErrAlreadyRegistered
		}
		return nil, "", common.ErrInternal
	}

	token, err := s.generateToken(user)
	if err != nil {
		return nil, "", common.ErrInternal
	}

	return user, token, nil
}

// Login verifies the credentials and, on success, returns the account and a
// new bearer token. An unknown email and a wrong password both yield
// common.ErrInvalidCredentials and are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, "", common.ErrInvalidCredentials
		}
		return nil, "", common.ErrInternal
	}

	if !s.hasher.Check(password, user.PasswordHash) {
		return nil, "", common.ErrInvalidCredentials
	}

	token, err := s.generateToken(user)
	if err != nil {
		return nil, "", common.ErrInternal
	}

	return user, token, nil
}

func (s *AuthService) generateToken(user *models.User) (string, error) {
	return auth.GenerateToken(strconv.FormatInt(user.ID, 10), s.jwtSecret, s.tokenValidityDuration)
}
