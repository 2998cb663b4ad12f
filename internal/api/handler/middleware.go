package handler

import (
	"context"
	"errors"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/labstack/echo/v4"
)

const (
	HeaderOpenID  = "X-TT-OpenID"
	HeaderUnionID = "X-TT-UnionID"
)

type ctxKey string

var ctxKeyUserID ctxKey = "USER_ID"
var ctxKeyUnionID ctxKey = "UNION_ID"

// Identity resolves the already-exchanged user identity from either the
// platform gateway headers or the userId query parameter, whichever the
// deployment uses.
func Identity() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID := c.Request().Header.Get(HeaderOpenID)
			if userID == "" {
				userID = c.QueryParam("userId")
			}

			if userID == "" {
				return next(c)
			}

			ctx := c.Request().Context()
			ctx = context.WithValue(ctx, ctxKeyUserID, userID)
			if unionID := c.Request().Header.Get(HeaderUnionID); unionID != "" {
				ctx = context.WithValue(ctx, ctxKeyUnionID, unionID)
			}
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

func ResolveUserID(ctx context.Context) (string, error) {
	userID, ok := ctx.Value(ctxKeyUserID).(string)
	if !ok || userID == "" {
		return "", errorx.Wrap(errors.New("missing user id"), errorx.Invalid)
	}

	return userID, nil
}
