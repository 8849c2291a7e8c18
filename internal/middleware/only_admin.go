package middleware

import (
	"context"

	"github.com/hauntpass/backend/pkg/errorx"
	"github.com/hauntpass/backend/pkg/router"
	"github.com/hauntpass/backend/pkg/xcontext"
	"golang.org/x/exp/slices"
)

// OnlyAdmin must run after the auth middleware.
func OnlyAdmin() router.MiddlewareFunc {
	return func(ctx context.Context) (context.Context, error) {
		userID := xcontext.RequestUserID(ctx)
		if userID == "" || !slices.Contains(xcontext.Configs(ctx).Auth.AdminUserIDs, userID) {
			return nil, errorx.New(errorx.PermissionDenied, "Permission denied")
		}

		return xcontext.WithRequestIsAdmin(ctx, true), nil
	}
}
