package model

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetUserCredit(t *testing.T) {
	setupTestDB(t)
	createTestUser(t, "u1", 3)
	ctx := context.Background()

	credit, err := GetUserCredit(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), credit)

	_, err = GetUserCredit(ctx, "missing")
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = GetUserCredit(ctx, "")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestDebitUserCredit(t *testing.T) {
	setupTestDB(t)
	createTestUser(t, "u1", 2)
	ctx := context.Background()

	credit, err := DebitUserCredit(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), credit)

	credit, err = DebitUserCredit(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), credit)

	credit, err = DebitUserCredit(ctx, "u1")
	assert.ErrorIs(t, err, ErrInsufficientCredit)
	assert.Equal(t, int64(0), credit)

	_, err = DebitUserCredit(ctx, "missing")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestDebitUserCreditConcurrent(t *testing.T) {
	setupTestDB(t)
	createTestUser(t, "u1", 5)
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded, rejected := 0, 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := DebitUserCredit(ctx, "u1")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, ErrInsufficientCredit):
				rejected++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, succeeded)
	assert.Equal(t, 15, rejected)
	credit, err := GetUserCredit(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), credit)
}

func TestIncreaseUserCredit(t *testing.T) {
	setupTestDB(t)
	createTestUser(t, "u1", 0)
	ctx := context.Background()

	credit, err := increaseUserCredit(DB.WithContext(ctx), "u1", 100)
	require.NoError(t, err)
	assert.Equal(t, int64(100), credit)

	_, err = increaseUserCredit(DB.WithContext(ctx), "u1", 0)
	assert.Error(t, err)

	_, err = increaseUserCredit(DB.WithContext(ctx), "missing", 10)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestCreditStoreWithoutRedis(t *testing.T) {
	setupTestDB(t)
	createTestUser(t, "u1", 1)
	ctx := context.Background()
	store := CreditStore{}

	credit, err := store.GetUserCredit(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), credit)

	credit, err = store.DebitUserCredit(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), credit)

	_, err = store.DebitUserCredit(ctx, "u1")
	assert.ErrorIs(t, err, ErrInsufficientCredit)
}

func TestSeedUser(t *testing.T) {
	setupTestDB(t)
	require.NoError(t, SeedUser("dev", 5))
	// seeding again must not reset a spent balance
	_, err := DebitUserCredit(context.Background(), "dev")
	require.NoError(t, err)
	require.NoError(t, SeedUser("dev", 5))

	credit, err := GetUserCredit(context.Background(), "dev")
	require.NoError(t, err)
	assert.Equal(t, int64(4), credit)

	assert.NoError(t, SeedUser("", 5))
}
