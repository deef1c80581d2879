package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/msvetlov/shopping_api/gateway/internal/middleware"
)

type Deps struct {
	APIURL string
}

func Register(e *echo.Echo, d *Deps) error {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	for _, m := range middleware.Common() {
		e.Use(m)
	}

	apiProxy, err := newProxy(d.APIURL, "")
	if err != nil {
		return err
	}

	e.Any("/api/*", apiProxy)
	e.Any("/images/*", apiProxy)
	return nil
}
