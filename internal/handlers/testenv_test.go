package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/msvetlov/shopping_api/internal/imagestore"
	"github.com/msvetlov/shopping_api/internal/models"
	"github.com/msvetlov/shopping_api/internal/mykafka"
	"github.com/msvetlov/shopping_api/internal/repo"
	"github.com/msvetlov/shopping_api/internal/service/order"
	"github.com/msvetlov/shopping_api/internal/service/token"
)

type testEnv struct {
	T      *testing.T
	E      *echo.Echo
	DB     *gorm.DB
	P      *ProductHandler
	O      *OrderHandler
	A      *AuthHandler
	Images *imagestore.Store
}

func newTestEnv(t *testing.T) *testEnv {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.Product{},
		&models.ProductImage{},
		&models.Order{},
		&models.OrderItem{},
		&models.User{},
		&models.RefreshToken{},
	))

	images, err := imagestore.New(t.TempDir())
	require.NoError(t, err)

	producer := &mykafka.Producer{}
	tokens := &token.TokenService{
		DB:            db,
		JWTSecret:     []byte("test-access-secret"),
		RefreshSecret: []byte("test-refresh-secret"),
	}

	return &testEnv{
		T:      t,
		E:      echo.New(),
		DB:     db,
		P:      &ProductHandler{DB: db, Images: images, Producer: producer},
		O:      &OrderHandler{Svc: order.New(repo.New(db)), Producer: producer},
		A:      &AuthHandler{DB: db, Tokens: tokens, Producer: producer},
		Images: images,
	}
}

func (env *testEnv) doJSONRequest(method, path string, body interface{}) (*httptest.ResponseRecorder, echo.Context) {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(env.T, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return rec, env.E.NewContext(req, rec)
}

func (env *testEnv) doFormRequest(method, path string, fields map[string]string, files map[string][]byte) (*httptest.ResponseRecorder, echo.Context) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(env.T, w.WriteField(k, v))
	}
	for name, data := range files {
		fw, err := w.CreateFormFile("images", name)
		require.NoError(env.T, err)
		_, err = io.Copy(fw, bytes.NewReader(data))
		require.NoError(env.T, err)
	}
	require.NoError(env.T, w.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	rec := httptest.NewRecorder()
	return rec, env.E.NewContext(req, rec)
}

func requireHTTPError(t *testing.T, err error, status int) {
	t.Helper()
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected *echo.HTTPError, got %v", err)
	require.Equal(t, status, he.Code)
}

func seedTestProduct(t *testing.T, db *gorm.DB, name string, price int64, qty int) models.Product {
	p := models.Product{
		Name:     name,
		Price:    price,
		Quantity: qty,
		Type:     models.TypeFurniture,
	}
	require.NoError(t, db.Create(&p).Error)
	return p
}
