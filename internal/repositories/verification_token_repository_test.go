package repositories_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/assadsharif/chatkit-widget-implementation/internal/models"
	"github.com/assadsharif/chatkit-widget-implementation/internal/repositories"
)

func seedToken(t *testing.T, repo repositories.VerificationTokenRepository, expiresAt time.Time) string {
	t.Helper()
	token := uniqueToken(t)
	err := repo.Create(context.Background(), &models.VerificationToken{
		Email:     "verify@example.com",
		Token:     token,
		CreatedAt: time.Now().UTC(),
		ExpiresAt: expiresAt,
	})
	if err != nil {
		t.Fatalf("Create token error = %v", err)
	}
	return token
}

func TestConsume_MarksUsedAndKeepsRow(t *testing.T) {
	db := testDB(t)
	repo := repositories.NewVerificationTokenRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	token := seedToken(t, repo, now.Add(10*time.Minute))

	vt, err := repo.Consume(ctx, token, now)
	if err != nil {
		t.Fatalf("Consume error = %v", err)
	}
	if !vt.Used {
		t.Error("returned record not marked used")
	}
	if vt.Email != "verify@example.com" {
		t.Errorf("email = %q", vt.Email)
	}

	// The row survives consumption as an audit record.
	var stored models.VerificationToken
	if err := db.First(&stored, "token = ?", token).Error; err != nil {
		t.Fatalf("consumed row was deleted: %v", err)
	}
	if !stored.Used {
		t.Error("stored row not marked used")
	}
}

func TestConsume_SecondAttemptFails(t *testing.T) {
	db := testDB(t)
	repo := repositories.NewVerificationTokenRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	token := seedToken(t, repo, now.Add(10*time.Minute))

	if _, err := repo.Consume(ctx, token, now); err != nil {
		t.Fatalf("first Consume error = %v", err)
	}
	_, err := repo.Consume(ctx, token, now)
	if !errors.Is(err, repositories.ErrTokenAlreadyUsed) {
		t.Errorf("second Consume error = %v, want ErrTokenAlreadyUsed", err)
	}
}

func TestConsume_ExpiredToken(t *testing.T) {
	db := testDB(t)
	repo := repositories.NewVerificationTokenRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	token := seedToken(t, repo, now.Add(-time.Minute))

	_, err := repo.Consume(ctx, token, now)
	if !errors.Is(err, repositories.ErrTokenExpired) {
		t.Errorf("Consume error = %v, want ErrTokenExpired", err)
	}
}

func TestConsume_UnknownToken(t *testing.T) {
	db := testDB(t)
	repo := repositories.NewVerificationTokenRepository(db)

	_, err := repo.Consume(context.Background(), "never-issued", time.Now().UTC())
	if !errors.Is(err, repositories.ErrTokenNotFound) {
		t.Errorf("Consume error = %v, want ErrTokenNotFound", err)
	}
}

func TestConsume_ConcurrentSucceedsOnce(t *testing.T) {
	db := testDB(t)
	repo := repositories.NewVerificationTokenRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	token := seedToken(t, repo, now.Add(10*time.Minute))

	const workers = 8
	var wg sync.WaitGroup
	results := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Consume(ctx, token, now)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
			continue
		}
		if !errors.Is(err, repositories.ErrTokenAlreadyUsed) {
			t.Errorf("unexpected error from racing consume: %v", err)
		}
	}
	if succeeded != 1 {
		t.Errorf("%d consumes succeeded, want exactly 1", succeeded)
	}
}
