package middleware

import (
	"bytes"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStructuredLogger_SetsRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	app := fiber.New()
	app.Use(StructuredLogger(logger), Security())
	app.Get("/ping", func(c *fiber.Ctx) error {
		id, _ := c.Locals("requestID").(string)
		return c.SendString(id)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/ping?q=milk", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	id := resp.Header.Get("X-Request-ID")
	_, err = uuid.Parse(id)
	assert.NoError(t, err)
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", resp.Header.Get("X-Frame-Options"))

	assert.Contains(t, buf.String(), "request completed")
	assert.Contains(t, buf.String(), "request_id="+id)
	assert.Contains(t, buf.String(), `query="q=milk"`)
}

func TestStructuredLogger_ClientErrorLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	app := fiber.New()
	app.Use(StructuredLogger(logger))
	app.Get("/missing", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/missing", nil), -1)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), "client error")
}

func TestStructuredLogger_LogsContentURI(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	app := fiber.New()
	app.Use(StructuredLogger(logger))
	app.Get("/api/notes/7", func(c *fiber.Ctx) error {
		c.Locals("contentURI", "content://com.google.provider.NotePad/notes/7")
		return c.SendStatus(fiber.StatusOK)
	})
	app.Get("/plain", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/api/notes/7", nil), -1)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Contains(t, buf.String(), "uri=content://com.google.provider.NotePad/notes/7")

	buf.Reset()
	resp, err = app.Test(httptest.NewRequest("GET", "/plain", nil), -1)
	require.NoError(t, err)
	resp.Body.Close()
	assert.NotContains(t, buf.String(), "uri=")
}
