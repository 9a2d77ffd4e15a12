package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/assadsharif/chatkit-widget-implementation/internal/models"
	"github.com/assadsharif/chatkit-widget-implementation/internal/repositories"
	"github.com/assadsharif/chatkit-widget-implementation/internal/services"
)

func TestRateLimitCheck_ResolvesPerActionLimits(t *testing.T) {
	cases := []struct {
		action string
		want   int
	}{
		{services.ActionDefault, 10},
		{services.ActionSaveChat, 5},
		{services.ActionPersonalize, 3},
		{"something_new", 10},
	}
	for _, tc := range cases {
		t.Run(tc.action, func(t *testing.T) {
			var gotLimit int
			var gotWindow time.Duration
			repo := &mockRateLimitRepo{
				takeFunc: func(sessionToken, action string, limit int, window time.Duration, now time.Time) (*repositories.RateLimitDecision, error) {
					gotLimit = limit
					gotWindow = window
					return &repositories.RateLimitDecision{Allowed: true, Count: 1}, nil
				},
			}
			cfg := newTestConfig()
			svc := services.NewRateLimitService(repo, &cfg.RateLimit, discardLogger())

			allowed, retryAfter, err := svc.Check(context.Background(), "tok", tc.action)
			if err != nil {
				t.Fatalf("Check() error = %v", err)
			}
			if !allowed {
				t.Error("expected request allowed")
			}
			if retryAfter != 0 {
				t.Errorf("retryAfter = %d on an allowed request, want 0", retryAfter)
			}
			if gotLimit != tc.want {
				t.Errorf("limit passed to store = %d, want %d", gotLimit, tc.want)
			}
			if gotWindow != 60*time.Second {
				t.Errorf("window passed to store = %v, want 60s", gotWindow)
			}
		})
	}
}

func TestRateLimitCheck_RejectionCarriesRetryAfter(t *testing.T) {
	repo := &mockRateLimitRepo{
		takeFunc: func(sessionToken, action string, limit int, window time.Duration, now time.Time) (*repositories.RateLimitDecision, error) {
			return &repositories.RateLimitDecision{Allowed: false, RetryAfter: 42, Count: limit}, nil
		},
	}
	cfg := newTestConfig()
	svc := services.NewRateLimitService(repo, &cfg.RateLimit, discardLogger())

	allowed, retryAfter, err := svc.Check(context.Background(), "tok", services.ActionSaveChat)
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if allowed {
		t.Error("expected request rejected")
	}
	if retryAfter != 42 {
		t.Errorf("retryAfter = %d, want 42", retryAfter)
	}
}

// A store error yields no verdict. The caller sees the error and must
// fail closed rather than treat it as an allow.
func TestRateLimitCheck_StoreErrorGivesNoVerdict(t *testing.T) {
	storeErr := errors.New("deadlock detected")
	repo := &mockRateLimitRepo{
		takeFunc: func(sessionToken, action string, limit int, window time.Duration, now time.Time) (*repositories.RateLimitDecision, error) {
			return nil, storeErr
		},
	}
	cfg := newTestConfig()
	svc := services.NewRateLimitService(repo, &cfg.RateLimit, discardLogger())

	allowed, _, err := svc.Check(context.Background(), "tok", services.ActionDefault)
	if !errors.Is(err, storeErr) {
		t.Fatalf("Check() error = %v, want the store error", err)
	}
	if allowed {
		t.Error("store error must never report allowed")
	}
}

func TestRateLimitStatus(t *testing.T) {
	now := time.Now().UTC()
	repo := &mockRateLimitRepo{
		listByTokenFunc: func(sessionToken string) ([]models.RateLimit, error) {
			return []models.RateLimit{
				{Action: services.ActionSaveChat, Count: 5, WindowStart: now.Add(-10 * time.Second)},
				{Action: services.ActionDefault, Count: 2, WindowStart: now.Add(-30 * time.Second)},
				{Action: services.ActionPersonalize, Count: 3, WindowStart: now.Add(-2 * time.Minute)},
			}, nil
		},
	}
	cfg := newTestConfig()
	svc := services.NewRateLimitService(repo, &cfg.RateLimit, discardLogger())

	status, err := svc.Status(context.Background(), "tok")
	if err != nil {
		t.Fatalf("Status() error = %v", err)
	}

	save := status[services.ActionSaveChat]
	if !save.Limited {
		t.Error("save_chat at its cap inside the window must report limited")
	}
	if save.Max != 5 {
		t.Errorf("save_chat max = %d, want 5", save.Max)
	}
	if save.RemainingSeconds <= 0 || save.RemainingSeconds > 60 {
		t.Errorf("save_chat remaining = %d, want within (0, 60]", save.RemainingSeconds)
	}

	def := status[services.ActionDefault]
	if def.Limited {
		t.Error("default below its cap must not report limited")
	}

	// Counter whose window already lapsed: stale, not limiting.
	pers := status[services.ActionPersonalize]
	if pers.Limited {
		t.Error("lapsed window must not report limited")
	}
	if pers.RemainingSeconds != 0 {
		t.Errorf("lapsed window remaining = %d, want 0", pers.RemainingSeconds)
	}
}

func TestRateLimitReset(t *testing.T) {
	var gotToken, gotAction string
	repo := &mockRateLimitRepo{
		resetFunc: func(sessionToken, action string) error {
			gotToken, gotAction = sessionToken, action
			return nil
		},
	}
	cfg := newTestConfig()
	svc := services.NewRateLimitService(repo, &cfg.RateLimit, discardLogger())

	if err := svc.Reset(context.Background(), "tok", services.ActionSaveChat); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}
	if gotToken != "tok" || gotAction != services.ActionSaveChat {
		t.Errorf("Reset forwarded (%q, %q), want (tok, save_chat)", gotToken, gotAction)
	}
}
