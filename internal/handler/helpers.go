package handler

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/gradefetcher-api/internal/middleware"
	"github.com/noah-isme/gradefetcher-api/internal/service"
)

func parseUintParam(c *fiber.Ctx, key string) (uint, error) {
	raw := strings.TrimSpace(c.Params(key))
	parsed, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return uint(parsed), nil
}

func userIDFromContext(c *fiber.Ctx) uint {
	if v := c.Locals(middleware.LocalUserID); v != nil {
		if id, ok := v.(uint); ok {
			return id
		}
		if id, ok := v.(int); ok && id >= 0 {
			return uint(id)
		}
	}
	return 0
}

func localString(c *fiber.Ctx, key string) string {
	if v := c.Locals(key); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// identityFromContext rebuilds the host-supplied user from the verified JWT
// claims the middleware stashed on the request.
func identityFromContext(c *fiber.Ctx) service.Identity {
	return service.Identity{
		UserID:             userIDFromContext(c),
		Email:              localString(c, middleware.LocalUserEmail),
		Username:           localString(c, middleware.LocalUsername),
		Role:               localString(c, middleware.LocalUserRole),
		AnonymousStudentID: localString(c, middleware.LocalAnonymousID),
	}
}
