package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/assadsharif/chatkit-widget-implementation/internal/config"
	"github.com/assadsharif/chatkit-widget-implementation/internal/logging"
	"github.com/assadsharif/chatkit-widget-implementation/internal/models"
	"github.com/assadsharif/chatkit-widget-implementation/internal/repositories"
	"gorm.io/gorm"
)

var (
	ErrUnauthorized   = errors.New("authorization required")
	ErrSessionExpired = errors.New("session has expired or is invalid")

	// Verification-token failure modes, re-exported so callers don't
	// reach into the repository layer.
	ErrTokenNotFound    = repositories.ErrTokenNotFound
	ErrTokenExpired     = repositories.ErrTokenExpired
	ErrTokenAlreadyUsed = repositories.ErrTokenAlreadyUsed
)

const tokenEntropyBytes = 32

// Identity is the resolved principal behind a validated credential. It
// is what the rate limiter keys on (Session.SessionToken).
type Identity struct {
	User    *models.User
	Session *models.Session
}

// AuthService owns the whole credential lifecycle: verification-token
// issue/consume and session issue/validate/refresh.
type AuthService struct {
	users    repositories.UserRepository
	sessions repositories.SessionRepository
	tokens   repositories.VerificationTokenRepository
	cfg      *config.Config
	log      logging.Logger
}

func NewAuthService(
	users repositories.UserRepository,
	sessions repositories.SessionRepository,
	tokens repositories.VerificationTokenRepository,
	cfg *config.Config,
	log logging.Logger,
) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		tokens:   tokens,
		cfg:      cfg,
		log:      log,
	}
}

// RegisterUser creates the user row for an email on first signup and
// returns the existing row otherwise. Email syntax and consent are the
// controller's responsibility.
func (s *AuthService) RegisterUser(ctx context.Context, email string) (*models.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user != nil {
		return user, nil
	}

	user = &models.User{
		Email:         email,
		EmailVerified: false,
		Tier:          models.TierLightweight,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	s.log.Info(ctx, "user_created", "user_id", user.ID)
	return user, nil
}

// IssueVerificationToken mints a fresh single-use token for the email.
// Delivery is the caller's concern.
func (s *AuthService) IssueVerificationToken(ctx context.Context, email string) (string, error) {
	token, err := models.GenerateSecureToken(tokenEntropyBytes)
	if err != nil {
		return "", err
	}

	ttl, err := s.cfg.GetVerificationTokenTTL()
	if err != nil {
		return "", err
	}

	now := time.Now().UTC()
	record := &models.VerificationToken{
		Email:     email,
		Token:     token,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
		Used:      false,
	}
	if err := s.tokens.Create(ctx, record); err != nil {
		return "", fmt.Errorf("store verification token: %w", err)
	}

	s.log.Info(ctx, "verification_token_issued", "email", email, "expires_at", record.ExpiresAt)
	return token, nil
}

// VerifyEmail consumes a verification token, marks the owning user
// verified and issues a session. The consume step is atomic against
// the store, so two concurrent verifies with the same token cannot
// both reach session creation.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) (*models.User, *models.Session, error) {
	now := time.Now().UTC()
	record, err := s.tokens.Consume(ctx, token, now)
	if err != nil {
		return nil, nil, err
	}

	user, err := s.users.GetByEmail(ctx, record.Email)
	if err != nil {
		return nil, nil, err
	}
	if user == nil {
		// Token issued through resend-verification for an address that
		// never completed signup.
		user = &models.User{Email: record.Email, Tier: models.TierLightweight}
		if err := s.users.Create(ctx, user); err != nil {
			return nil, nil, err
		}
	}

	if !user.EmailVerified {
		user.EmailVerified = true
		if err := s.users.Update(ctx, user); err != nil {
			return nil, nil, err
		}
	}

	session, err := s.IssueSession(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	s.log.Info(ctx, "email_verified", "user_id", user.ID)
	return user, session, nil
}

// IssueSession mints a new opaque session for the user. Always succeeds
// for a valid identity, barring store failure.
func (s *AuthService) IssueSession(ctx context.Context, user *models.User) (*models.Session, error) {
	token, err := models.GenerateSecureToken(tokenEntropyBytes)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	session := &models.Session{
		UserID:       user.ID,
		SessionToken: token,
		CreatedAt:    now,
		LastActivity: now,
	}

	expiry, err := s.cfg.GetSessionExpiry()
	if err != nil {
		return nil, err
	}
	if expiry > 0 {
		expiresAt := now.Add(expiry)
		session.ExpiresAt = &expiresAt
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	s.log.Info(ctx, "session_created", "user_id", user.ID)
	return session, nil
}

// ValidateSession resolves a raw Authorization header value to an
// identity. Touches last_activity on success. Store failures propagate
// so callers fail closed.
func (s *AuthService) ValidateSession(ctx context.Context, authorization string) (*Identity, error) {
	token, ok := bearerToken(authorization)
	if !ok {
		return nil, ErrUnauthorized
	}

	now := time.Now().UTC()
	session, err := s.sessions.GetActiveByToken(ctx, token, now)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionExpired
		}
		return nil, err
	}

	if err := s.sessions.TouchActivity(ctx, session.ID, now); err != nil {
		return nil, err
	}
	session.LastActivity = now

	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrSessionExpired
	}

	return &Identity{User: user, Session: session}, nil
}

// RefreshSession validates the presented token and mints a successor
// bound to the same user. The predecessor stays valid; when a refresh
// grace is configured its expiry is clamped to now+grace instead of
// living forever.
func (s *AuthService) RefreshSession(ctx context.Context, authorization string) (*models.Session, error) {
	identity, err := s.ValidateSession(ctx, authorization)
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}

	newSession, err := s.IssueSession(ctx, identity.User)
	if err != nil {
		return nil, err
	}

	grace, err := s.cfg.GetRefreshGrace()
	if err != nil {
		return nil, err
	}
	if grace > 0 {
		cutoff := time.Now().UTC().Add(grace)
		old := identity.Session
		if old.ExpiresAt == nil || old.ExpiresAt.After(cutoff) {
			if err := s.sessions.SetExpiry(ctx, old.ID, cutoff); err != nil {
				return nil, err
			}
		}
	}

	s.log.Info(ctx, "session_refreshed", "user_id", identity.User.ID)
	return newSession, nil
}

func bearerToken(authorization string) (string, bool) {
	if authorization == "" || !strings.HasPrefix(authorization, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(authorization, "Bearer "))
	if token == "" {
		return "", false
	}
	return token, true
}
