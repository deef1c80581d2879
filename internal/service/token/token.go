package token

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"

	"github.com/msvetlov/shopping_api/internal/models"
)

const (
	AccessTTL  = 15 * time.Minute
	RefreshTTL = 7 * 24 * time.Hour
)

type TokenService struct {
	DB            *gorm.DB
	JWTSecret     []byte
	RefreshSecret []byte
}

func SignAccessToken(userID uint, role string, secret []byte) (string, error) {
	claims := jwt.MapClaims{
		"sub":  userID,
		"role": role,
		"exp":  time.Now().Add(AccessTTL).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(secret)
}

func SignRefreshToken(userID uint, role string, secret []byte) (string, error) {
	claims := jwt.MapClaims{
		"sub":  userID,
		"role": role,
		"exp":  time.Now().Add(RefreshTTL).Unix(),
		"typ":  "refresh",
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(secret)
}

// Issue signs an access/refresh pair and persists the refresh token so
// it can be rotated and revoked later.
func (t *TokenService) Issue(userID uint, role string) (access, refresh string, err error) {
	access, err = SignAccessToken(userID, role, t.JWTSecret)
	if err != nil {
		return "", "", err
	}
	refresh, err = SignRefreshToken(userID, role, t.RefreshSecret)
	if err != nil {
		return "", "", err
	}
	stored := models.RefreshToken{
		Token:     refresh,
		UserID:    userID,
		Role:      role,
		ExpiresAt: time.Now().Add(RefreshTTL),
	}
	if err := t.DB.Create(&stored).Error; err != nil {
		return "", "", fmt.Errorf("save refresh token: %w", err)
	}
	return access, refresh, nil
}

func (t *TokenService) ValidateRefresh(raw string) (jwt.MapClaims, error) {
	parsed, err := jwt.Parse(raw, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signature method: %v", tok.Header["alg"])
		}
		return t.RefreshSecret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("invalid refresh token: %w", err)
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("cannot parse claims")
	}
	if typ, ok := claims["typ"]; !ok || typ != "refresh" {
		return nil, errors.New("not a refresh token")
	}

	var stored models.RefreshToken
	if err := t.DB.Where("token = ?", raw).First(&stored).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("refresh token not found")
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	if stored.Revoked {
		return nil, errors.New("refresh token revoked")
	}
	if time.Now().After(stored.ExpiresAt) {
		return nil, errors.New("refresh token expired")
	}
	return claims, nil
}

// Rotate exchanges a valid refresh token for a fresh pair, revoking
// the old one.
func (t *TokenService) Rotate(raw string) (access, refresh string, claims jwt.MapClaims, err error) {
	claims, err = t.ValidateRefresh(raw)
	if err != nil {
		return "", "", nil, err
	}

	userID := uint(claims["sub"].(float64))
	role, _ := claims["role"].(string)

	access, refresh, err = t.Issue(userID, role)
	if err != nil {
		return "", "", nil, err
	}
	if err := t.Revoke(raw); err != nil {
		return "", "", nil, err
	}
	return access, refresh, claims, nil
}

func (t *TokenService) Revoke(raw string) error {
	return t.DB.Model(&models.RefreshToken{}).Where("token = ?", raw).Update("revoked", true).Error
}

func CreateCookie(name, value, path string, exp time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		Expires:  exp,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	}
}
