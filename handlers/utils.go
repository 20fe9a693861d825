package handlers

import (
	"bytes"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"notepad/models"
	"notepad/provider"
	"notepad/services"
	"notepad/validator"

	"github.com/gofiber/fiber/v2"
)

func success(c *fiber.Ctx, data fiber.Map) error {
	return c.JSON(data)
}

func created(c *fiber.Ctx, data fiber.Map) error {
	return c.Status(fiber.StatusCreated).JSON(data)
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": message})
}

func notFound(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": message})
}

func validationFailed(c *fiber.Ctx, err error) error {
	var errs validator.ValidationErrors
	if errors.As(err, &errs) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Validation failed", "details": errs})
	}
	return badRequest(c, err.Error())
}

func serverErrorWithDetails(c *fiber.Ctx, message string, err error) error {
	requestID := ""
	if id, ok := c.Locals("requestID").(string); ok {
		requestID = id
	}

	slog.Error("server error",
		"request_id", requestID,
		"method", c.Method(),
		"path", c.Path(),
		"message", message,
		"error", err,
	)

	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": message})
}

// providerError maps provider and service errors onto HTTP statuses
func providerError(c *fiber.Ctx, message string, err error) error {
	switch {
	case errors.Is(err, provider.ErrInvalidTarget),
		errors.Is(err, provider.ErrInvalidColumn),
		errors.Is(err, provider.ErrInvalidSortOrder),
		errors.Is(err, provider.ErrNoValues):
		return badRequest(c, err.Error())
	case errors.Is(err, provider.ErrNotFound),
		errors.Is(err, services.ErrNoteNotFound),
		errors.Is(err, services.ErrTodoNotFound),
		errors.Is(err, services.ErrNoBackup):
		return notFound(c, err.Error())
	case errors.Is(err, provider.ErrStreamUnsupported):
		return c.Status(fiber.StatusNotAcceptable).JSON(fiber.Map{"error": err.Error()})
	default:
		return serverErrorWithDetails(c, message, err)
	}
}

// trackTarget stores the content URI a request addresses for the request log
func trackTarget(c *fiber.Ctx, uri string) string {
	c.Locals("contentURI", uri)
	return uri
}

// parseBody decodes a JSON body into out. An empty body leaves out as is.
func parseBody(c *fiber.Ctx, out any) error {
	if len(bytes.TrimSpace(c.Body())) == 0 {
		return nil
	}
	return c.BodyParser(out)
}

// contentURI maps a path below /api onto the provider URI space
func contentURI(path string) string {
	path = strings.Trim(path, "/")
	return models.Scheme + "://" + models.Authority + "/" + path
}

// parseID accepts unsigned decimal ids only
func parseID(s string) (int64, bool) {
	if s == "" || strings.TrimLeft(s, "0123456789") != "" {
		return 0, false
	}
	id, err := strconv.ParseInt(s, 10, 64)
	return id, err == nil
}
