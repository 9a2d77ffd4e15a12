package services

import (
	"context"
	"time"

	"github.com/assadsharif/chatkit-widget-implementation/internal/config"
	"github.com/assadsharif/chatkit-widget-implementation/internal/logging"
	"github.com/assadsharif/chatkit-widget-implementation/internal/repositories"
)

// Well-known rate-limited actions. Anything else falls back to the
// default limit.
const (
	ActionDefault     = "default"
	ActionSaveChat    = "save_chat"
	ActionPersonalize = "personalize"
)

// ActionStatus is the read-only view of one counter, for diagnostics.
type ActionStatus struct {
	Count            int  `json:"count"`
	Max              int  `json:"max"`
	WindowSeconds    int  `json:"window_seconds"`
	RemainingSeconds int  `json:"remaining_seconds"`
	Limited          bool `json:"limited"`
}

// RateLimitService enforces a fixed-window quota per (session token,
// action) pair before any business side effect runs. The backend is
// authoritative: the frontend may predict, this must enforce.
type RateLimitService struct {
	repo repositories.RateLimitRepository
	cfg  *config.RateLimitConfig
	log  logging.Logger
}

func NewRateLimitService(repo repositories.RateLimitRepository, cfg *config.RateLimitConfig, log logging.Logger) *RateLimitService {
	return &RateLimitService{repo: repo, cfg: cfg, log: log}
}

// Check consults (and advances) the counter for the pair. Returns
// whether the request may proceed and, when it may not, how many
// seconds the caller should back off. A store error means no verdict:
// callers must fail closed.
func (s *RateLimitService) Check(ctx context.Context, sessionToken, action string) (bool, int, error) {
	limit := s.cfg.LimitFor(action)
	window := s.cfg.Window()
	now := time.Now().UTC()

	decision, err := s.repo.Take(ctx, sessionToken, action, limit, window, now)
	if err != nil {
		s.log.Error(ctx, "rate_limit_store_error", "action", action, "error", err.Error())
		return false, 0, err
	}

	if !decision.Allowed {
		s.log.Warn(ctx, "rate_limit_exceeded",
			"action", action,
			"count", decision.Count,
			"max", limit,
			"retry_after", decision.RetryAfter,
		)
		return false, decision.RetryAfter, nil
	}

	s.log.Debug(ctx, "rate_limit_allowed", "action", action, "count", decision.Count, "max", limit)
	return true, 0, nil
}

// Reset deletes the counter for the pair. Administrative/test override.
func (s *RateLimitService) Reset(ctx context.Context, sessionToken, action string) error {
	if err := s.repo.Reset(ctx, sessionToken, action); err != nil {
		return err
	}
	s.log.Info(ctx, "rate_limit_reset", "action", action)
	return nil
}

// Status reports every counter held for the identity without mutating
// any of them.
func (s *RateLimitService) Status(ctx context.Context, sessionToken string) (map[string]ActionStatus, error) {
	limits, err := s.repo.ListByToken(ctx, sessionToken)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	status := make(map[string]ActionStatus, len(limits))
	for _, rl := range limits {
		max := s.cfg.LimitFor(rl.Action)
		remaining := int(rl.WindowStart.Add(s.cfg.Window()).Sub(now).Seconds())
		if remaining < 0 {
			remaining = 0
		}
		status[rl.Action] = ActionStatus{
			Count:            rl.Count,
			Max:              max,
			WindowSeconds:    s.cfg.WindowSeconds,
			RemainingSeconds: remaining,
			Limited:          rl.Count >= max && remaining > 0,
		}
	}
	return status, nil
}
