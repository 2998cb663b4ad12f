package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"gemrush/internal/models"

	"github.com/gojek/heimdall/v7"
	"github.com/gojek/heimdall/v7/httpclient"
	"github.com/hiendaovinh/toolkit/pkg/errorx"
)

// ServiceIdentity exchanges a one-time login code for the platform identity
// via the Douyin jscode2session endpoint. It never touches the stores.
type ServiceIdentity struct {
	client    *httpclient.Client
	baseURL   string
	appID     string
	appSecret string
}

func NewServiceIdentity(baseURL string, appID string, appSecret string) (*ServiceIdentity, error) {
	client := httpclient.NewClient(
		httpclient.WithHTTPTimeout(5*time.Second),
		httpclient.WithRetryCount(2),
		httpclient.WithRetrier(heimdall.NewRetrier(heimdall.NewConstantBackoff(200*time.Millisecond, 50*time.Millisecond))),
	)

	if baseURL == "" {
		baseURL = DOUYIN_API_BASE_URL
	}

	return &ServiceIdentity{client, baseURL, appID, appSecret}, nil
}

func (service *ServiceIdentity) Code2Session(ctx context.Context, code string) (*models.Session, error) {
	if code == "" {
		return nil, errorx.Wrap(fmt.Errorf("missing code"), errorx.Invalid)
	}

	params := url.Values{}
	params.Set("appid", service.appID)
	params.Set("secret", service.appSecret)
	params.Set("code", code)
	params.Set("grant_type", "authorization_code")

	endpoint := fmt.Sprintf("%s/api/apps/jscode2session?%s", service.baseURL, params.Encode())
	res, err := service.client.Get(endpoint, http.Header{})
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}
	defer res.Body.Close()

	var payload models.Code2SessionResponse
	err = json.NewDecoder(res.Body).Decode(&payload)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	if payload.ErrCode != 0 || payload.OpenID == "" {
		msg := payload.ErrMsg
		if msg == "" {
			msg = ErrIdentityResolution.Error()
		}
		return nil, errorx.Wrap(fmt.Errorf("%w: %s", ErrIdentityResolution, msg), errorx.Other)
	}

	return &models.Session{
		OpenID:  payload.OpenID,
		UnionID: payload.UnionID,
	}, nil
}
