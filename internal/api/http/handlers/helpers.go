package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/itsm-service/internal/auth"
	"github.com/spec-kit/itsm-service/internal/domain"
	"github.com/spec-kit/itsm-service/internal/repository"
	apperrors "github.com/spec-kit/itsm-service/pkg/util"
)

const maxPageSize = 200

func currentPrincipal(c *fiber.Ctx) (domain.Principal, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal == nil {
		return domain.Principal{}, apperrors.NewUnauthorized("not authenticated")
	}
	return *principal, nil
}

// parseBody decodes the JSON body into dst and runs its validation tags.
func parseBody(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	return apperrors.ValidateStruct(dst)
}

// parsePage reads page and page_size. Without page_size the whole list is returned.
func parsePage(c *fiber.Ctx) repository.Page {
	size := parsePositiveInt(c.Query("page_size"), 0)
	if size == 0 {
		return repository.Page{}
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	page := parsePositiveInt(c.Query("page"), 1)
	return repository.Page{Limit: size, Offset: (page - 1) * size}
}

func parsePositiveInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func optionalQuery(c *fiber.Ctx, key string) *string {
	val := strings.TrimSpace(c.Query(key))
	if val == "" {
		return nil
	}
	return &val
}

func splitList(val string) []string {
	if val == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func listResponse(c *fiber.Ctx, items any, count int) error {
	return c.JSON(fiber.Map{"data": items, "count": count})
}
