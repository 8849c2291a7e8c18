package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hauntpass/backend/internal/model"
	"github.com/hauntpass/backend/pkg/authenticator"
	"github.com/hauntpass/backend/pkg/errorx"
	"github.com/hauntpass/backend/pkg/testutil"
	"github.com/hauntpass/backend/pkg/xcontext"
	"github.com/stretchr/testify/require"
)

func Test_AuthVerifier(t *testing.T) {
	cfg := testutil.MockConfigs()
	engine := authenticator.NewTokenEngine[model.AccessToken](cfg.Auth.TokenSecret, cfg.Auth.AccessToken.Expiration)
	token, err := engine.Generate("user1", model.AccessToken{ID: "user1"})
	require.NoError(t, err)

	verifier := NewAuthVerifier(engine).Middleware()
	base := xcontext.WithConfigs(context.Background(), cfg)

	tests := []struct {
		name    string
		prepare func(r *httptestRequest)
		userID  string
		wantErr errorx.Code
	}{
		{
			name:    "bearer header",
			prepare: func(r *httptestRequest) { r.header("Authorization", "Bearer "+token) },
			userID:  "user1",
		},
		{
			name:    "query parameter",
			prepare: func(r *httptestRequest) { r.target = "/ws?access_token=" + token },
			userID:  "user1",
		},
		{
			name:    "cookie",
			prepare: func(r *httptestRequest) { r.header("Cookie", cfg.Auth.AccessToken.Name+"="+token) },
			userID:  "user1",
		},
		{
			name:    "other scheme",
			prepare: func(r *httptestRequest) { r.header("Authorization", "Basic "+token) },
			wantErr: errorx.Unauthenticated,
		},
		{
			name:    "invalid token",
			prepare: func(r *httptestRequest) { r.header("Authorization", "Bearer abc") },
			wantErr: errorx.Unauthenticated,
		},
		{
			name:    "no token",
			prepare: func(r *httptestRequest) {},
			wantErr: errorx.Unauthenticated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &httptestRequest{target: "/getMyProgress", headers: map[string]string{}}
			tt.prepare(r)

			ctx, err := verifier(xcontext.WithHTTPRequest(base, r.build()))
			if tt.wantErr != 0 {
				require.True(t, errorx.Is(err, tt.wantErr))
				return
			}

			require.NoError(t, err)
			require.Equal(t, tt.userID, xcontext.RequestUserID(ctx))
		})
	}
}

func Test_OnlyAdmin(t *testing.T) {
	base := xcontext.WithConfigs(context.Background(), testutil.MockConfigs())

	ctx, err := OnlyAdmin()(xcontext.WithRequestUserID(base, "admin"))
	require.NoError(t, err)
	require.True(t, xcontext.RequestIsAdmin(ctx))

	_, err = OnlyAdmin()(xcontext.WithRequestUserID(base, "user1"))
	require.True(t, errorx.Is(err, errorx.PermissionDenied))

	_, err = OnlyAdmin()(base)
	require.True(t, errorx.Is(err, errorx.PermissionDenied))
}

type httptestRequest struct {
	target  string
	headers map[string]string
}

func (r *httptestRequest) header(key, value string) {
	r.headers[key] = value
}

func (r *httptestRequest) build() *http.Request {
	req := httptest.NewRequest(http.MethodGet, r.target, nil)
	for k, v := range r.headers {
		req.Header.Set(k, v)
	}
	return req
}
