package middleware

import (
	"net/http"
	"strings"

	"app/internal/config"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

const CtxSubjectKey = "subject" // usecase.Subject

// カートのルート用。ログイン済みならsubをsubjectに、
// 未ログインならX-Guest-Tokenをsubjectにする。どちらも無ければ400。
// Bearerが付いているのに壊れている場合はゲスト扱いにせず401で落とす。
func ResolveSubject(cfg config.Config) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authz := c.Request().Header.Get("Authorization")
			if authz != "" {
				userID, role, err := parseBearer(c, cfg.JWTSecret)
				if err != nil {
					return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
				}
				c.Set(CtxUserIDKey, userID)
				c.Set(CtxUserRoleKey, role)
				c.Set(CtxSubjectKey, usecase.Subject{ID: userID, Authenticated: true})
				return next(c)
			}

			guestToken := strings.TrimSpace(c.Request().Header.Get("X-Guest-Token"))
			if guestToken == "" {
				return c.JSON(http.StatusBadRequest, errorJSON("missing X-Guest-Token"))
			}
			c.Set(CtxSubjectKey, usecase.Subject{ID: guestToken, Authenticated: false})
			return next(c)
		}
	}
}

// contextからsubjectを取り出す。ResolveSubjectを通っていないルートではfalse。
func SubjectFrom(c echo.Context) (usecase.Subject, bool) {
	raw := c.Get(CtxSubjectKey)
	subject, ok := raw.(usecase.Subject)
	if !ok || subject.ID == "" {
		return usecase.Subject{}, false
	}
	return subject, true
}
