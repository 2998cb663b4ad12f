package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCode2Session(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/apps/jscode2session", r.URL.Path)
		assert.Equal(t, "app-1", r.URL.Query().Get("appid"))
		assert.Equal(t, "secret-1", r.URL.Query().Get("secret"))
		assert.Equal(t, "code-1", r.URL.Query().Get("code"))
		assert.Equal(t, "authorization_code", r.URL.Query().Get("grant_type"))

		//nolint:errcheck
		json.NewEncoder(w).Encode(map[string]any{
			"openid":      "openid-1",
			"unionid":     "unionid-1",
			"session_key": "sk",
		})
	}))
	defer ts.Close()

	service, err := NewServiceIdentity(ts.URL, "app-1", "secret-1")
	require.NoError(t, err)

	session, err := service.Code2Session(context.Background(), "code-1")
	require.NoError(t, err)
	assert.Equal(t, "openid-1", session.OpenID)
	require.NotNil(t, session.UnionID)
	assert.Equal(t, "unionid-1", *session.UnionID)
}

func TestCode2SessionOptionalUnionID(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		//nolint:errcheck
		json.NewEncoder(w).Encode(map[string]any{"openid": "openid-1"})
	}))
	defer ts.Close()

	service, err := NewServiceIdentity(ts.URL, "app-1", "secret-1")
	require.NoError(t, err)

	session, err := service.Code2Session(context.Background(), "code-1")
	require.NoError(t, err)
	assert.Equal(t, "openid-1", session.OpenID)
	assert.Nil(t, session.UnionID)
}

func TestCode2SessionUpstreamError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		//nolint:errcheck
		json.NewEncoder(w).Encode(map[string]any{
			"errcode": 40029,
			"errmsg":  "invalid code",
		})
	}))
	defer ts.Close()

	service, err := NewServiceIdentity(ts.URL, "app-1", "secret-1")
	require.NoError(t, err)

	_, err = service.Code2Session(context.Background(), "code-1")
	require.Error(t, err)
	assert.ErrorContains(t, err, "invalid code")
}

func TestCode2SessionMissingOpenID(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		//nolint:errcheck
		json.NewEncoder(w).Encode(map[string]any{"session_key": "sk"})
	}))
	defer ts.Close()

	service, err := NewServiceIdentity(ts.URL, "app-1", "secret-1")
	require.NoError(t, err)

	_, err = service.Code2Session(context.Background(), "code-1")
	assert.Error(t, err)
}

func TestCode2SessionMissingCode(t *testing.T) {
	service, err := NewServiceIdentity("http://127.0.0.1:0", "app-1", "secret-1")
	require.NoError(t, err)

	_, err = service.Code2Session(context.Background(), "")
	assert.Error(t, err)
}
