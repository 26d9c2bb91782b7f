package common

import (
	"context"
	"fmt"
	"math"

	"github.com/bytedance/gopkg/util/gopool"
	"github.com/pixai-app/pixai-api/common/logger"
)

var relayGoPool gopool.Pool

func init() {
	relayGoPool = gopool.NewPool("gopool.RelayPool", math.MaxInt32, gopool.NewConfig())
	relayGoPool.SetPanicHandler(func(ctx context.Context, i interface{}) {
		logger.Error(ctx, fmt.Sprintf("panic in gopool.RelayPool: %v", i))
	})
}

// RelayCtxGo runs f off the request goroutine. Used for bookkeeping that
// must not delay the response.
func RelayCtxGo(ctx context.Context, f func()) {
	relayGoPool.CtxGo(ctx, f)
}
