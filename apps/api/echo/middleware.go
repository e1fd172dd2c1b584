package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/mohdshetty/grap/core/policy"
	"github.com/mohdshetty/grap/core/user"
)

// userMiddleware loads the account behind the token. It must run after the JWT middleware.
func userMiddleware(svc *user.Service, revoked *revocationList) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if revoked.isRevoked(claims) {
				return errTokenRevoked
			}
			if _, err := loadContextUser(ctx, svc, claims); err != nil {
				return errors.Wrap(err, "loading context user")
			}
			return next(ctx)
		}
	}
}

func adminMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			usr, err := getContextUser(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context user")
			}
			if usr.IsAdmin() {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}

// featureMiddleware lets the request through when the user's role may use any of the features.
func featureMiddleware(store *policy.Store, features ...policy.Feature) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			usr, err := getContextUser(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context user")
			}
			for _, f := range features {
				if store.Allowed(usr.Role, f) {
					return next(ctx)
				}
			}
			return errHttpForbidden
		}
	}
}
