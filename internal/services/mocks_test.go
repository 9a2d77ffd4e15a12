package services_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/assadsharif/chatkit-widget-implementation/internal/config"
	"github.com/assadsharif/chatkit-widget-implementation/internal/logging"
	"github.com/assadsharif/chatkit-widget-implementation/internal/models"
	"github.com/assadsharif/chatkit-widget-implementation/internal/repositories"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func discardLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func newTestConfig() *config.Config {
	return &config.Config{
		Session: config.SessionConfig{
			Expiry: "24h",
		},
		Verification: config.VerificationConfig{
			TokenTTL: "10m",
			BaseURL:  "http://localhost:3000",
		},
		RateLimit: config.RateLimitConfig{
			WindowSeconds: 60,
			MaxRequests:   10,
			SaveChat:      5,
			Personalize:   3,
		},
	}
}

// ==== func-field mocks, one per repository ====

type mockUserRepo struct {
	getByIDFunc    func(id uuid.UUID) (*models.User, error)
	getByEmailFunc func(email string) (*models.User, error)
	createFunc     func(user *models.User) error
	updateFunc     func(user *models.User) error
}

func (m *mockUserRepo) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	if m.getByIDFunc == nil {
		return nil, errors.New("not implemented")
	}
	return m.getByIDFunc(id)
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	if m.getByEmailFunc == nil {
		return nil, errors.New("not implemented")
	}
	return m.getByEmailFunc(email)
}

func (m *mockUserRepo) Create(_ context.Context, user *models.User) error {
	if m.createFunc == nil {
		return errors.New("not implemented")
	}
	return m.createFunc(user)
}

func (m *mockUserRepo) Update(_ context.Context, user *models.User) error {
	if m.updateFunc == nil {
		return errors.New("not implemented")
	}
	return m.updateFunc(user)
}

type mockSessionRepo struct {
	createFunc           func(session *models.Session) error
	getActiveByTokenFunc func(token string, now time.Time) (*models.Session, error)
	touchActivityFunc    func(id uuid.UUID, now time.Time) error
	setExpiryFunc        func(id uuid.UUID, expiresAt time.Time) error
}

func (m *mockSessionRepo) Create(_ context.Context, session *models.Session) error {
	if m.createFunc == nil {
		return errors.New("not implemented")
	}
	return m.createFunc(session)
}

func (m *mockSessionRepo) GetActiveByToken(_ context.Context, token string, now time.Time) (*models.Session, error) {
	if m.getActiveByTokenFunc == nil {
		return nil, errors.New("not implemented")
	}
	return m.getActiveByTokenFunc(token, now)
}

func (m *mockSessionRepo) TouchActivity(_ context.Context, id uuid.UUID, now time.Time) error {
	if m.touchActivityFunc == nil {
		return errors.New("not implemented")
	}
	return m.touchActivityFunc(id, now)
}

func (m *mockSessionRepo) SetExpiry(_ context.Context, id uuid.UUID, expiresAt time.Time) error {
	if m.setExpiryFunc == nil {
		return errors.New("not implemented")
	}
	return m.setExpiryFunc(id, expiresAt)
}

type mockTokenRepo struct {
	createFunc  func(token *models.VerificationToken) error
	consumeFunc func(token string, now time.Time) (*models.VerificationToken, error)
}

func (m *mockTokenRepo) Create(_ context.Context, token *models.VerificationToken) error {
	if m.createFunc == nil {
		return errors.New("not implemented")
	}
	return m.createFunc(token)
}

func (m *mockTokenRepo) Consume(_ context.Context, token string, now time.Time) (*models.VerificationToken, error) {
	if m.consumeFunc == nil {
		return nil, errors.New("not implemented")
	}
	return m.consumeFunc(token, now)
}

type mockRateLimitRepo struct {
	takeFunc        func(sessionToken, action string, limit int, window time.Duration, now time.Time) (*repositories.RateLimitDecision, error)
	resetFunc       func(sessionToken, action string) error
	listByTokenFunc func(sessionToken string) ([]models.RateLimit, error)
}

func (m *mockRateLimitRepo) Take(_ context.Context, sessionToken, action string, limit int, window time.Duration, now time.Time) (*repositories.RateLimitDecision, error) {
	if m.takeFunc == nil {
		return nil, errors.New("not implemented")
	}
	return m.takeFunc(sessionToken, action, limit, window, now)
}

func (m *mockRateLimitRepo) Reset(_ context.Context, sessionToken, action string) error {
	if m.resetFunc == nil {
		return errors.New("not implemented")
	}
	return m.resetFunc(sessionToken, action)
}

func (m *mockRateLimitRepo) ListByToken(_ context.Context, sessionToken string) ([]models.RateLimit, error) {
	if m.listByTokenFunc == nil {
		return nil, errors.New("not implemented")
	}
	return m.listByTokenFunc(sessionToken)
}

type mockSavedChatRepo struct {
	createFunc     func(chat *models.SavedChat) error
	listByUserFunc func(userID uuid.UUID) ([]models.SavedChat, error)
}

func (m *mockSavedChatRepo) Create(_ context.Context, chat *models.SavedChat) error {
	if m.createFunc == nil {
		return errors.New("not implemented")
	}
	return m.createFunc(chat)
}

func (m *mockSavedChatRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]models.SavedChat, error) {
	if m.listByUserFunc == nil {
		return nil, errors.New("not implemented")
	}
	return m.listByUserFunc(userID)
}

type mockAnonRepo struct {
	getByAnonIDFunc func(anonID string) (*models.AnonymousSession, error)
	deleteFunc      func(id uuid.UUID) error
}

func (m *mockAnonRepo) GetByAnonID(_ context.Context, anonID string) (*models.AnonymousSession, error) {
	if m.getByAnonIDFunc == nil {
		return nil, errors.New("not implemented")
	}
	return m.getByAnonIDFunc(anonID)
}

func (m *mockAnonRepo) Delete(_ context.Context, id uuid.UUID) error {
	if m.deleteFunc == nil {
		return errors.New("not implemented")
	}
	return m.deleteFunc(id)
}

// ==== in-memory fakes with real semantics, for lifecycle and
// concurrency tests ====

type fakeTokenRepo struct {
	mu     sync.Mutex
	tokens map[string]*models.VerificationToken
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{tokens: make(map[string]*models.VerificationToken)}
}

func (f *fakeTokenRepo) Create(_ context.Context, token *models.VerificationToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *token
	f.tokens[token.Token] = &cp
	return nil
}

func (f *fakeTokenRepo) Consume(_ context.Context, token string, now time.Time) (*models.VerificationToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	vt, ok := f.tokens[token]
	if !ok {
		return nil, repositories.ErrTokenNotFound
	}
	if vt.Used {
		return nil, repositories.ErrTokenAlreadyUsed
	}
	if now.After(vt.ExpiresAt) {
		return nil, repositories.ErrTokenExpired
	}
	vt.Used = true
	cp := *vt
	return &cp, nil
}

type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*models.Session
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[string]*models.Session)}
}

func (f *fakeSessionRepo) Create(_ context.Context, session *models.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}
	cp := *session
	f.sessions[session.SessionToken] = &cp
	return nil
}

func (f *fakeSessionRepo) GetActiveByToken(_ context.Context, token string, now time.Time) (*models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[token]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if s.ExpiresAt != nil && !s.ExpiresAt.After(now) {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeSessionRepo) TouchActivity(_ context.Context, id uuid.UUID, now time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.sessions {
		if s.ID == id {
			s.LastActivity = now
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeSessionRepo) SetExpiry(_ context.Context, id uuid.UUID, expiresAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.sessions {
		if s.ID == id {
			cp := expiresAt
			s.ExpiresAt = &cp
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeSessionRepo) expiryOf(id uuid.UUID) *time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.sessions {
		if s.ID == id {
			if s.ExpiresAt == nil {
				return nil
			}
			cp := *s.ExpiresAt
			return &cp
		}
	}
	return nil
}
