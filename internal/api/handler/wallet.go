package handler

import (
	"errors"

	"gemrush/internal/interfaces"
	"gemrush/internal/pkg/limiter"
	"gemrush/internal/services"

	"github.com/go-redis/redis_rate/v10"
	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo/v4"
	"github.com/samber/do"
)

type groupWallet struct {
	container *do.Injector
}

func (gr *groupWallet) GetWallet(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := ResolveUserID(ctx)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceWallet, err := do.Invoke[*services.ServiceWallet](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	state, err := serviceWallet.GetWalletState(ctx, userID)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, state, nil)
}

type payloadAddDiamonds struct {
	Amount int64  `json:"amount"`
	Reason string `json:"reason"`
	Source string `json:"source"`
}

func (gr *groupWallet) AddDiamonds(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := ResolveUserID(ctx)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	var payload payloadAddDiamonds
	if err := c.Bind(&payload); err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(errors.New("invalid payload"), errorx.Invalid))
	}

	rateLimiter, err := do.Invoke[interfaces.Limiter](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	err = rateLimiter.Allow(ctx, services.LimitKeyWalletAdd(userID), redis_rate.PerMinute(services.WALLET_ADD_RATE_LIMIT_PER_MINUTE))
	if err != nil {
		if errors.Is(err, limiter.ErrRateLimited) {
			return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.RateLimiting))
		}
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	serviceWallet, err := do.Invoke[*services.ServiceWallet](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	result, err := serviceWallet.GrantReward(ctx, userID, payload.Amount, payload.Reason, payload.Source)
	if errors.Is(err, services.ErrDailyRewardClaimed) {
		// expected business outcome: report the current state, applied=false
		return httpx.RestAbort(c, result, nil)
	}
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, result, nil)
}
