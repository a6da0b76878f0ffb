package routers

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"image-converter/internal/pkg/config"
	apperrors "image-converter/pkg/errors"
)

func TestPerMinute(t *testing.T) {
	app := fiber.New()
	app.Get("/limited", perMinute(2), func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/open", perMinute(0), func(c *fiber.Ctx) error { return c.SendString("ok") })

	for i, want := range []int{200, 200, 429} {
		resp, err := app.Test(httptest.NewRequest("GET", "/limited", nil))
		require.NoError(t, err)
		assert.Equal(t, want, resp.StatusCode, "request %d", i+1)
	}
	for i := 0; i < 5; i++ {
		resp, err := app.Test(httptest.NewRequest("GET", "/open", nil))
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
	}
}

func TestNewApp_ErrorHandlerAndRecover(t *testing.T) {
	cfg := &config.Config{Limits: config.LimitsConfig{MaxFileSize: 1024, MaxFiles: 2}}
	app := NewApp(cfg, zaptest.NewLogger(t))
	app.Get("/boom", func(c *fiber.Ctx) error { panic("boom") })
	app.Get("/missing", func(c *fiber.Ctx) error { return apperrors.ErrNotFound(nil) })

	resp, err := app.Test(httptest.NewRequest("GET", "/boom", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/missing", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/nowhere", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
