package controller

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// storeIdFromCtx reads the store scope the JWT middleware put on the request.
func storeIdFromCtx(ctx *fiber.Ctx) (uuid.UUID, error) {
	raw, ok := ctx.Locals("store_id").(string)
	if !ok || raw == "" {
		return uuid.Nil, errors.New("missing store scope in token")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errors.New("invalid store scope in token")
	}
	return id, nil
}
