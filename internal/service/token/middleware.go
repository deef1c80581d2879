package token

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const (
	CtxUserID = "user_id"
	CtxRole   = "role"
)

// RequireLogin authenticates via the access cookie and transparently
// rotates an expired access token off the refresh cookie.
func (t *TokenService) RequireLogin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims, err := t.authenticate(c)
		if err != nil {
			return err
		}
		setUserContext(c, claims)
		return next(c)
	}
}

func (t *TokenService) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims, err := t.authenticate(c)
		if err != nil {
			return err
		}
		if role, _ := claims["role"].(string); role != "admin" {
			return echo.NewHTTPError(http.StatusForbidden, "not enough rights")
		}
		setUserContext(c, claims)
		return next(c)
	}
}

func (t *TokenService) authenticate(c echo.Context) (jwt.MapClaims, error) {
	asCookie, err := c.Cookie("accessToken")
	if err == nil {
		parsed, perr := jwt.Parse(asCookie.Value, func(*jwt.Token) (interface{}, error) {
			return t.JWTSecret, nil
		})
		if perr == nil && parsed.Valid {
			if claims, ok := parsed.Claims.(jwt.MapClaims); ok {
				return claims, nil
			}
		}
		if !errors.Is(perr, jwt.ErrTokenExpired) {
			return nil, echo.NewHTTPError(http.StatusUnauthorized, "invalid access token")
		}
	}

	rfCookie, err := c.Cookie("refreshToken")
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
	}

	access, refresh, claims, err := t.Rotate(rfCookie.Value)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "invalid refresh token")
	}

	c.SetCookie(CreateCookie("accessToken", access, "/", time.Now().Add(AccessTTL)))
	c.SetCookie(CreateCookie("refreshToken", refresh, "/", time.Now().Add(RefreshTTL)))
	return claims, nil
}

func setUserContext(c echo.Context, claims jwt.MapClaims) {
	if sub, ok := claims["sub"].(float64); ok {
		c.Set(CtxUserID, uint(sub))
	}
	c.Set(CtxRole, claims["role"])
}
