package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/quarterdeck-labs/quarterdeck/internal/auth/domain"
	"github.com/quarterdeck-labs/quarterdeck/internal/auth/store"
	"github.com/quarterdeck-labs/quarterdeck/pkg/cryptox"
	"github.com/quarterdeck-labs/quarterdeck/pkg/idx"
	"github.com/quarterdeck-labs/quarterdeck/pkg/jwtx"
	"github.com/quarterdeck-labs/quarterdeck/pkg/slogx"
)

const DefaultRole = "user"

var (
	// ErrInvalidCredentials covers both unknown-username and wrong-password so
	// login failures don't reveal which usernames exist.
	ErrInvalidCredentials = errors.New("invalid_credentials")

	ErrUsernameTaken    = errors.New("username_taken")
	ErrPasswordMismatch = errors.New("password_mismatch")
	ErrUserNotFound     = errors.New("user_not_found")
	ErrInvalidToken     = errors.New("invalid_token")
	ErrTokenExpired     = errors.New("token_expired")
	ErrInsufficientRole = errors.New("insufficient_role")
)

// AccountService owns registration, login and role resolution.
type AccountService struct {
	Store     store.Store
	Signer    jwtx.Signer
	Verifier  jwtx.Verifier
	Issuer    string
	AccessTTL time.Duration
}

// Credentials carries an issued access token back to the caller.
type Credentials struct {
	AccessToken string
	TokenType   string
	ExpiresIn   time.Duration
	Role        string
}

// RegisterParams is the input to Register. Validation of shape (lengths,
// character sets) happens at the transport edge; the service enforces the
// semantic rules.
type RegisterParams struct {
	Username        string
	Password        string
	ConfirmPassword string
	Role            string
	Email           string
	MobileNumber    string
}

// Register creates a new account. The password is hashed before anything is
// written; the cleartext never reaches the store. Uniqueness is enforced
// twice: a lookup inside the transaction and the UNIQUE constraint underneath
// it, so concurrent registrations of the same username cannot both win.
func (s *AccountService) Register(ctx context.Context, p RegisterParams) (domain.User, error) {
	l := slogx.FromContext(ctx)

	username := strings.TrimSpace(p.Username)
	if p.Password != p.ConfirmPassword {
		return domain.User{}, ErrPasswordMismatch
	}

	role := p.Role
	if role == "" {
		role = DefaultRole
	}

	hash, err := cryptox.HashPassword(p.Password)
	if err != nil {
		return domain.User{}, err
	}

	user := domain.User{
		ID:           idx.New().String(),
		Username:     username,
		PasswordHash: hash,
		Role:         role,
		Email:        strings.TrimSpace(p.Email),
		MobileNumber: strings.TrimSpace(p.MobileNumber),
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		_, err := tx.Users().GetUserByUsername(ctx, username)
		if err == nil {
			return ErrUsernameTaken
		}
		if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		if err := tx.Users().CreateUser(ctx, user); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrUsernameTaken
			}
			return err
		}
		return nil
	})
	if err != nil {
		return domain.User{}, err
	}

	l.Info("user registered",
		slog.String("user_id", user.ID),
		slog.String("username", user.Username),
		slog.String("role", user.Role),
	)

	return user, nil
}

// Login verifies the credentials and issues a signed access token. The role
// embedded in the token is a snapshot for display; authorization decisions
// always go back to the store via ResolveRole.
func (s *AccountService) Login(ctx context.Context, username, password string) (*Credentials, error) {
	l := slogx.FromContext(ctx)
	now := time.Now()

	user, err := s.Store.Users().GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Burn comparable time so unknown usernames aren't distinguishable
			// from wrong passwords by response latency.
			cryptox.VerifyDummy(password)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrPasswordMismatch) {
			l.Info("login failed", slog.String("username", user.Username))
			return nil, ErrInvalidCredentials
		}
		// Corrupt stored hash is an operational failure, not a bad login.
		return nil, err
	}

	ttl := s.AccessTTL
	if ttl <= 0 {
		ttl = jwtx.DefaultAccessTokenTTL
	}
	claims := jwtx.NewAccessClaims(user.Username, user.Role, ttl, s.Issuer, now)
	token, err := s.Signer.Sign(claims)
	if err != nil {
		return nil, err
	}

	l.Info("login succeeded",
		slog.String("user_id", user.ID),
		slog.String("username", user.Username),
	)

	return &Credentials{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   ttl,
		Role:        user.Role,
	}, nil
}

// ResolveRole verifies the access token and returns the subject's CURRENT
// role from the store. A role changed after token issuance takes effect
// immediately; the claim inside the token is never trusted for this.
func (s *AccountService) ResolveRole(ctx context.Context, rawToken string) (username, role string, err error) {
	claims, err := s.Verifier.Verify(rawToken)
	if err != nil {
		switch {
		case errors.Is(err, jwtx.ErrExpired):
			return "", "", ErrTokenExpired
		default:
			return "", "", ErrInvalidToken
		}
	}

	user, err := s.Store.Users().GetUserByUsername(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Token outlived the account.
			return "", "", ErrUserNotFound
		}
		return "", "", err
	}

	return user.Username, user.Role, nil
}

// ChangeRole sets a user's role. The caller must currently hold the admin
// role; the check re-reads the caller from the store rather than trusting
// their token claims.
func (s *AccountService) ChangeRole(ctx context.Context, callerUsername, targetUsername, newRole string) (domain.User, error) {
	l := slogx.FromContext(ctx)

	var updated domain.User

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		caller, err := tx.Users().GetUserByUsername(ctx, callerUsername)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInvalidToken
			}
			return err
		}
		if caller.Role != "admin" {
			return ErrInsufficientRole
		}

		target, err := tx.Users().GetUserByUsername(ctx, targetUsername)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		if err := tx.Users().UpdateUserRole(ctx, target.ID, newRole); err != nil {
			return err
		}

		target.Role = newRole
		updated = target
		return nil
	})
	if err != nil {
		return domain.User{}, err
	}

	l.Info("role changed",
		slog.String("by", callerUsername),
		slog.String("username", updated.Username),
		slog.String("role", newRole),
	)

	return updated, nil
}
