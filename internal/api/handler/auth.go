package handler

import (
	"errors"

	"gemrush/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo/v4"
	"github.com/samber/do"
)

type groupAuth struct {
	container *do.Injector
}

type payloadCode2Session struct {
	Code string `json:"code"`
}

func (gr *groupAuth) Code2Session(c echo.Context) error {
	ctx := c.Request().Context()

	var payload payloadCode2Session
	if err := c.Bind(&payload); err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(errors.New("invalid payload"), errorx.Invalid))
	}

	serviceIdentity, err := do.Invoke[*services.ServiceIdentity](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	session, err := serviceIdentity.Code2Session(ctx, payload.Code)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, session, nil)
}
