package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hauntpass/backend/pkg/errorx"
	"github.com/hauntpass/backend/pkg/xcontext"
	"github.com/stretchr/testify/require"
)

type (
	baseKey   struct{}
	markerKey struct{}
)

type echoRequest struct {
	Name string `form:"name" json:"name"`
}

type echoResponse struct {
	Greeting string `json:"greeting"`
	Base     string `json:"base"`
	Marker   string `json:"marker"`
}

func echo(ctx context.Context, req *echoRequest) (*echoResponse, error) {
	if req.Name == "" {
		return nil, errorx.New(errorx.BadRequest, "Name is required")
	}

	base, _ := ctx.Value(baseKey{}).(string)
	marker, _ := ctx.Value(markerKey{}).(string)
	return &echoResponse{Greeting: "hello " + req.Name, Base: base, Marker: marker}, nil
}

func serve(t *testing.T, handler http.Handler, method, target, body string) response {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func Test_Router_Envelope(t *testing.T) {
	r := New(context.WithValue(context.Background(), baseKey{}, "base"))

	var closed []error
	r.AddCloser(func(ctx context.Context) { closed = append(closed, Error(ctx)) })

	GET(r, "/echo", echo)
	POST(r, "/echo", echo)
	handler := r.Handler(nil)

	resp := serve(t, handler, http.MethodGet, "/echo?name=casper", "")
	require.Equal(t, int64(0), resp.Code)
	require.Equal(t, map[string]any{"greeting": "hello casper", "base": "base", "marker": ""}, resp.Data)

	resp = serve(t, handler, http.MethodPost, "/echo", `{"name":"boo"}`)
	require.Equal(t, int64(0), resp.Code)

	resp = serve(t, handler, http.MethodPost, "/echo", ``)
	require.Equal(t, int64(errorx.BadRequest), resp.Code)
	require.Equal(t, "Name is required", resp.Error)

	resp = serve(t, handler, http.MethodPost, "/echo", `{"name":`)
	require.Equal(t, int64(errorx.BadRequest), resp.Code)
	require.Equal(t, "Invalid request", resp.Error)

	require.Len(t, closed, 4)
	require.NoError(t, closed[0])
	require.Error(t, closed[2])
}

func Test_Router_Branch(t *testing.T) {
	r := New(context.Background())

	guarded := r.Branch()
	guarded.Before(func(ctx context.Context) (context.Context, error) {
		if strings.HasPrefix(requestPath(ctx), "/deny") {
			return nil, errorx.New(errorx.PermissionDenied, "Permission denied")
		}
		return context.WithValue(ctx, markerKey{}, "set"), nil
	})

	GET(guarded, "/guarded", echo)
	GET(guarded, "/deny", echo)
	GET(r, "/public", echo)
	handler := r.Handler([]string{"http://localhost"})

	resp := serve(t, handler, http.MethodGet, "/guarded?name=a", "")
	require.Equal(t, "set", resp.Data.(map[string]any)["marker"])

	resp = serve(t, handler, http.MethodGet, "/deny?name=a", "")
	require.Equal(t, int64(errorx.PermissionDenied), resp.Code)

	resp = serve(t, handler, http.MethodGet, "/public?name=a", "")
	require.Equal(t, "", resp.Data.(map[string]any)["marker"])
}

func Test_Router_Unknown(t *testing.T) {
	r := New(context.Background())
	GET(r, "/fail", func(ctx context.Context, req *echoRequest) (*echoResponse, error) {
		return nil, context.DeadlineExceeded
	})

	resp := serve(t, r.Handler(nil), http.MethodGet, "/fail", "")
	require.Equal(t, int64(errorx.Unknown.Code), resp.Code)
	require.Equal(t, errorx.Unknown.Message, resp.Error)
}

func requestPath(ctx context.Context) string {
	if req := xcontext.HTTPRequest(ctx); req != nil {
		return req.URL.Path
	}
	return ""
}
