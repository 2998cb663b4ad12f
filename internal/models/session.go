package models

// Session is the identity pair returned by the Douyin code2session exchange.
// UnionID is only present when the unionid capability is granted on the
// platform side, so it stays optional.
type Session struct {
	OpenID  string  `json:"openid"`
	UnionID *string `json:"unionid,omitempty"`
}

// Code2SessionResponse mirrors the upstream jscode2session payload.
type Code2SessionResponse struct {
	OpenID          string  `json:"openid"`
	AnonymousOpenID string  `json:"anonymous_openid"`
	UnionID         *string `json:"unionid"`
	SessionKey      string  `json:"session_key"`
	ErrCode         int     `json:"errcode"`
	ErrMsg          string  `json:"errmsg"`
}
