package token

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/msvetlov/shopping_api/internal/models"
)

func newTestService(t *testing.T) *TokenService {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.RefreshToken{}))
	return &TokenService{
		DB:            db,
		JWTSecret:     []byte("access-secret"),
		RefreshSecret: []byte("refresh-secret"),
	}
}

func TestIssueAndRotate(t *testing.T) {
	svc := newTestService(t)

	_, refresh, err := svc.Issue(7, "user")
	require.NoError(t, err)
	require.NotEmpty(t, refresh)

	access2, refresh2, claims, err := svc.Rotate(refresh)
	require.NoError(t, err)
	require.NotEmpty(t, access2)
	require.NotEqual(t, refresh, refresh2)
	require.EqualValues(t, 7, claims["sub"].(float64))
	require.Equal(t, "user", claims["role"])

	// the rotated-out token must be dead
	_, err = svc.ValidateRefresh(refresh)
	require.Error(t, err)
}

func TestRevoke(t *testing.T) {
	svc := newTestService(t)

	_, refresh, err := svc.Issue(3, "admin")
	require.NoError(t, err)

	_, err = svc.ValidateRefresh(refresh)
	require.NoError(t, err)

	require.NoError(t, svc.Revoke(refresh))
	_, err = svc.ValidateRefresh(refresh)
	require.Error(t, err)
}

func TestValidateRejectsAccessToken(t *testing.T) {
	svc := newTestService(t)

	access, err := SignAccessToken(1, "user", svc.RefreshSecret)
	require.NoError(t, err)

	// right secret, wrong typ claim
	_, err = svc.ValidateRefresh(access)
	require.Error(t, err)
}

func requireLoginCall(t *testing.T, svc *TokenService, cookies ...*http.Cookie) (int, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/orders", nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var called bool
	err := svc.RequireLogin(func(echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})(c)
	if called {
		return rec.Code, err
	}
	return 0, err
}

func TestRequireLogin(t *testing.T) {
	svc := newTestService(t)

	access, _, err := svc.Issue(5, "user")
	require.NoError(t, err)

	code, err := requireLoginCall(t, svc,
		&http.Cookie{Name: "accessToken", Value: access, Path: "/"})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, code)
}

func TestRequireLoginMissingCookies(t *testing.T) {
	svc := newTestService(t)

	_, err := requireLoginCall(t, svc)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	require.Equal(t, http.StatusUnauthorized, he.Code)
}

func TestRequireLoginRotatesExpiredAccess(t *testing.T) {
	svc := newTestService(t)

	_, refresh, err := svc.Issue(5, "user")
	require.NoError(t, err)

	code, err := requireLoginCall(t, svc,
		&http.Cookie{Name: "refreshToken", Value: refresh, Path: "/"})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, code)
}

func TestRequireAdmin(t *testing.T) {
	svc := newTestService(t)

	userAccess, err := SignAccessToken(5, "user", svc.JWTSecret)
	require.NoError(t, err)
	adminAccess, err := SignAccessToken(6, "admin", svc.JWTSecret)
	require.NoError(t, err)

	run := func(access string) error {
		e := echo.New()
		req := httptest.NewRequest(http.MethodPost, "/api/product", nil)
		req.AddCookie(&http.Cookie{Name: "accessToken", Value: access, Path: "/"})
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		return svc.RequireAdmin(func(c echo.Context) error {
			return c.NoContent(http.StatusOK)
		})(c)
	}

	require.NoError(t, run(adminAccess))

	err = run(userAccess)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	require.Equal(t, http.StatusForbidden, he.Code)
}

func TestCookieExpiry(t *testing.T) {
	ck := CreateCookie("accessToken", "v", "/", time.Now().Add(AccessTTL))
	require.True(t, ck.HttpOnly)
	require.True(t, ck.Secure)
	require.Equal(t, http.SameSiteLaxMode, ck.SameSite)
}
