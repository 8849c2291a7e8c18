package middleware

import (
	"context"
	"fmt"

	"github.com/hauntpass/backend/pkg/router"
	"github.com/hauntpass/backend/pkg/xcontext"
)

func Logger() router.CloserFunc {
	return func(ctx context.Context) {
		req := xcontext.HTTPRequest(ctx)
		if req == nil {
			return
		}

		info := fmt.Sprintf("%s | %s", req.Method, req.URL.Path)
		switch code := errorCode(router.Error(ctx)); {
		case code == 0:
			xcontext.Logger(ctx).Infof(info)
		case code > 0:
			xcontext.Logger(ctx).Warnf("%s | %d", info, code)
		default:
			xcontext.Logger(ctx).Errorf("%s | %d | %v", info, code, router.Error(ctx))
		}
	}
}
