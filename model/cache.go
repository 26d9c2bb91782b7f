package model

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/pixai-app/pixai-api/common"
	"github.com/pixai-app/pixai-api/common/config"
	"github.com/pixai-app/pixai-api/common/logger"
)

// The cached balance may lag below the database but must never exceed it:
// debits decrement it, top-ups and failed debits drop it, and refills are
// discarded when a write races them. Values <= 0 are always re-read.

var UserId2CreditCacheSeconds = config.SyncFrequency

func userCreditKey(id string) string {
	return fmt.Sprintf("user_credit:%s", id)
}

func userCreditTTL() time.Duration {
	return time.Duration(UserId2CreditCacheSeconds) * time.Second
}

func fetchAndUpdateUserCredit(ctx context.Context, id string) (credit int64, err error) {
	var dbErr error
	_, err = common.RedisSetUnlessChanged(ctx, userCreditKey(id), userCreditTTL(), func() (string, error) {
		credit, dbErr = GetUserCredit(ctx, id)
		if dbErr != nil {
			return "", dbErr
		}
		return strconv.FormatInt(credit, 10), nil
	})
	if dbErr != nil {
		return 0, dbErr
	}
	if err != nil {
		logger.Error(ctx, "Redis set user credit error: "+err.Error())
	}
	return credit, nil
}

func cacheDecreaseUserCredit(ctx context.Context, id string, credits int64) {
	if !common.RedisEnabled {
		return
	}
	if err := common.RedisDecrease(ctx, userCreditKey(id), credits, userCreditTTL()); err != nil {
		logger.Error(ctx, "Redis decrease user credit error: "+err.Error())
		cacheDeleteUserCredit(ctx, id)
	}
}

func cacheDeleteUserCredit(ctx context.Context, id string) {
	if !common.RedisEnabled {
		return
	}
	if err := common.RedisDel(ctx, userCreditKey(id)); err != nil {
		logger.Error(ctx, "Redis delete user credit error: "+err.Error())
	}
}

// CacheGetUserCredit reads the balance through Redis. A cached value is
// only a hint for the pre-check; the debit itself always hits the database.
func CacheGetUserCredit(ctx context.Context, id string) (credit int64, err error) {
	if !common.RedisEnabled {
		return GetUserCredit(ctx, id)
	}
	creditString, err := common.RedisGet(ctx, userCreditKey(id))
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Warn(ctx, "Redis get user credit error: "+err.Error())
		}
		return fetchAndUpdateUserCredit(ctx, id)
	}
	credit, err = strconv.ParseInt(creditString, 10, 64)
	if err != nil {
		return fetchAndUpdateUserCredit(ctx, id)
	}
	if credit <= 0 {
		// a top-up may have landed since the value was cached
		return fetchAndUpdateUserCredit(ctx, id)
	}
	return credit, nil
}

func CacheDebitUserCredit(ctx context.Context, id string) (credit int64, err error) {
	credit, err = DebitUserCredit(ctx, id)
	switch {
	case err == nil:
		cacheDecreaseUserCredit(ctx, id, 1)
	case errors.Is(err, ErrInsufficientCredit):
		cacheDeleteUserCredit(ctx, id)
	}
	return credit, err
}

// CreditStore is the database backed balance store used by the image relay.
type CreditStore struct{}

func (CreditStore) GetUserCredit(ctx context.Context, userId string) (int64, error) {
	return CacheGetUserCredit(ctx, userId)
}

func (CreditStore) DebitUserCredit(ctx context.Context, userId string) (int64, error) {
	return CacheDebitUserCredit(ctx, userId)
}
