package handler

import (
	"context"
	"strings"

	"protonshop/internal/storage"

	"github.com/gofiber/fiber/v2"
	"gocloud.dev/blob"
)

// MediaSource opens stored uploads by key.
type MediaSource interface {
	Open(ctx context.Context, key string) (*blob.Reader, error)
}

// MediaHandler serves uploads from a local bucket
// GET /media/*
func MediaHandler(src MediaSource) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.Params("*")
		if key == "" || strings.Contains(key, "..") {
			return c.SendStatus(fiber.StatusNotFound)
		}

		r, err := src.Open(c.UserContext(), key)
		if err != nil {
			if storage.IsNotFound(err) {
				return c.SendStatus(fiber.StatusNotFound)
			}
			return fail(c, err)
		}

		if ct := r.ContentType(); ct != "" {
			c.Set(fiber.HeaderContentType, ct)
		}
		c.Set(fiber.HeaderCacheControl, "public, max-age=31536000, immutable")
		return c.SendStream(r, int(r.Size()))
	}
}
