package middleware

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hauntpass/backend/internal/common"
	"github.com/hauntpass/backend/pkg/errorx"
	"github.com/hauntpass/backend/pkg/router"
	"github.com/hauntpass/backend/pkg/xcontext"
)

func WithStartTime() router.MiddlewareFunc {
	return func(ctx context.Context) (context.Context, error) {
		return xcontext.WithStartTime(ctx, time.Now()), nil
	}
}

func Prometheus() router.CloserFunc {
	return func(ctx context.Context) {
		req := xcontext.HTTPRequest(ctx)
		if req == nil {
			return
		}

		code := fmt.Sprint(errorCode(router.Error(ctx)))
		path := req.URL.Path

		common.PromCounters[common.HTTPRequestTotal].WithLabelValues(path, code).Inc()

		if startTime := xcontext.StartTime(ctx); !startTime.IsZero() {
			common.PromHistograms[common.HTTPRequestDurationSeconds].
				WithLabelValues(path, code).Observe(time.Since(startTime).Seconds())
		}
	}
}

// errorCode is 0 for a successful request and -1 for an error which is not
// an errorx.Error.
func errorCode(err error) int {
	if err == nil {
		return 0
	}

	var errx errorx.Error
	if errors.As(err, &errx) {
		return int(errx.Code)
	}

	return -1
}
