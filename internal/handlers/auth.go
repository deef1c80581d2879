package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/msvetlov/shopping_api/internal/hash"
	"github.com/msvetlov/shopping_api/internal/logging"
	"github.com/msvetlov/shopping_api/internal/models"
	"github.com/msvetlov/shopping_api/internal/mykafka"
	"github.com/msvetlov/shopping_api/internal/service/token"
)

type AuthHandler struct {
	DB       *gorm.DB
	Tokens   *token.TokenService
	Producer *mykafka.Producer
}

type credentials struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.register")

	var req credentials
	if err := c.Bind(&req); err != nil {
		l.Warn("register_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Username == "" || req.Password == "" {
		l.Warn("register_error", "status", 400, "reason", "missing credentials")
		return echo.NewHTTPError(http.StatusBadRequest, "username and password are required")
	}

	var existing models.User
	err := h.DB.WithContext(ctx).Where("username = ?", req.Username).First(&existing).Error
	if err == nil {
		l.Warn("register_error", "status", 400, "reason", "user already exists")
		return echo.NewHTTPError(http.StatusBadRequest, "user already exists")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		l.Error("register_error", "status", 500, "reason", "db error", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	passwordHash, err := hash.HashPassword(req.Password)
	if err != nil {
		l.Error("register_error", "status", 500, "reason", "cannot hash password", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	user := models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: passwordHash,
		Role:         "user",
	}
	if err := h.DB.WithContext(ctx).Create(&user).Error; err != nil {
		l.Error("register_error", "status", 500, "reason", "cannot create user", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	h.publishUserEvent(c, map[string]any{
		"type":     "user_registered",
		"userID":   user.ID,
		"username": user.Username,
	})
	l.Info("register_success", "user_id", user.ID)
	return c.JSON(http.StatusCreated, user)
}

func (h *AuthHandler) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.login")

	var req credentials
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	var user models.User
	if err := h.DB.WithContext(ctx).Where("username = ?", req.Username).First(&user).Error; err != nil {
		l.Warn("login_error", "status", 401, "reason", "unknown user")
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid username or password")
	}
	if !hash.CheckPassword(user.PasswordHash, req.Password) {
		l.Warn("login_error", "status", 401, "reason", "wrong password")
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid username or password")
	}

	access, refresh, err := h.Tokens.Issue(user.ID, user.Role)
	if err != nil {
		l.Error("login_error", "status", 500, "reason", "cannot issue tokens", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	c.SetCookie(token.CreateCookie("accessToken", access, "/", time.Now().Add(token.AccessTTL)))
	c.SetCookie(token.CreateCookie("refreshToken", refresh, "/", time.Now().Add(token.RefreshTTL)))

	h.publishUserEvent(c, map[string]any{
		"type":     "user_logged_in",
		"userID":   user.ID,
		"username": user.Username,
	})
	l.Info("login_success", "user_id", user.ID)
	return c.JSON(http.StatusOK, echo.Map{"id": user.ID, "username": user.Username, "role": user.Role})
}

func (h *AuthHandler) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.logout")

	if ck, err := c.Cookie("refreshToken"); err == nil {
		if err := h.Tokens.Revoke(ck.Value); err != nil {
			l.Error("logout_error", "status", 500, "reason", "cannot revoke token", "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
		}
	}

	c.SetCookie(token.CreateCookie("accessToken", "", "/", time.Unix(0, 0)))
	c.SetCookie(token.CreateCookie("refreshToken", "", "/", time.Unix(0, 0)))

	l.Info("logout_success")
	return c.NoContent(http.StatusNoContent)
}

func (h *AuthHandler) publishUserEvent(c echo.Context, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "user_events", fmt.Sprint(event["userID"]), event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}
