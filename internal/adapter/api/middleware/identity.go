package middleware

import (
	"github.com/labstack/echo/v4"

	"marketchat/pkg/errors"
	"marketchat/pkg/response"
)

// IdentityMiddleware lifts the caller identity set by the authenticating
// gateway into the request context. Authentication itself happens upstream;
// this service only trusts the forwarded header.
type IdentityMiddleware struct {
	header string
}

func NewIdentityMiddleware() *IdentityMiddleware {
	return &IdentityMiddleware{
		header: "X-User-ID",
	}
}

func (m *IdentityMiddleware) RequireUser(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID := c.Request().Header.Get(m.header)
		if userID == "" {
			return response.Error(c, errors.New("UNAUTHORIZED", "Missing user identity", 401, nil))
		}

		c.Set("uid", userID)
		return next(c)
	}
}
