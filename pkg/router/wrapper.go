package router

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hauntpass/backend/pkg/errorx"
	"github.com/hauntpass/backend/pkg/xcontext"
)

// response is the envelope of every api response. Code is 0 on success,
// otherwise the errorx code of the failure.
type response struct {
	Code  int64  `json:"code"`
	Error string `json:"error,omitempty"`
	Data  any    `json:"data,omitempty"`
}

func newResponse(data any, err error) response {
	if err == nil {
		return response{Data: data}
	}

	errx := errorx.Unknown
	errors.As(err, &errx)

	return response{Code: int64(errx.Code), Error: errx.Message}
}

func wrapHandler[Request, Response any](
	router *Router,
	method string,
	handler HandlerFunc[Request, Response],
) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := router.newContext(c)
		defer func() { router.close(ctx) }()

		var data any
		ctx, err := router.runBefores(ctx)
		if err == nil {
			var req Request
			if err = bind(c, method, &req); err != nil {
				xcontext.Logger(ctx).Debugf("Cannot bind request: %v", err)
				err = errorx.New(errorx.BadRequest, "Invalid request")
			} else {
				var resp *Response
				resp, err = handler(ctx, &req)
				if err == nil {
					if resp == nil {
						resp = new(Response)
					}
					data = resp
					ctx = withResponse(ctx, resp)
				}
			}
		}

		if err != nil {
			ctx = withError(ctx, err)
		}

		c.JSON(http.StatusOK, newResponse(data, err))
	}
}

func wrapRawHandler(router *Router, handler RawHandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := router.newContext(c)
		defer func() { router.close(ctx) }()

		ctx, err := router.runBefores(ctx)
		if err == nil {
			err = handler(ctx, c.Writer, c.Request)
		}

		if err != nil {
			ctx = withError(ctx, err)
			if !c.Writer.Written() {
				c.JSON(http.StatusOK, newResponse(nil, err))
			}
		}
	}
}

func (r *Router) newContext(c *gin.Context) context.Context {
	ctx := requestContext{Context: c.Request.Context(), base: r.base}
	return xcontext.WithHTTPRequest(ctx, c.Request)
}

func (r *Router) runBefores(ctx context.Context) (context.Context, error) {
	for _, middleware := range r.befores {
		newCtx, err := middleware(ctx)
		if err != nil {
			return ctx, err
		}

		if newCtx != nil {
			ctx = newCtx
		}
	}

	return ctx, nil
}

func (r *Router) close(ctx context.Context) {
	for _, closer := range r.closers {
		closer(ctx)
	}
}

func bind(c *gin.Context, method string, req any) error {
	switch method {
	case http.MethodGet:
		return c.ShouldBindQuery(req)
	case http.MethodPost:
		if err := c.ShouldBindJSON(req); err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		return nil
	default:
		return errors.New("unsupported method")
	}
}
