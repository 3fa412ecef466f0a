package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"portify/internal/api/middleware"
	"portify/internal/database"
	"portify/internal/showcase"
)

// ShowcaseHandler serves the optional third-party sections of a public
// profile. Each platform is its own request so one failing upstream can only
// take down its own section, never the page.
type ShowcaseHandler struct {
	db      *gorm.DB
	service *showcase.Service
}

func NewShowcaseHandler(db *gorm.DB, service *showcase.Service) *ShowcaseHandler {
	return &ShowcaseHandler{db: db, service: service}
}

// Get handles GET /users/:username/showcase/:platform. The section is gated
// by the handle + visibility flag pair: 404 when the handle is unset, 403
// when the owner disabled the section, 502 when the upstream fails.
func (h *ShowcaseHandler) Get(c *gin.Context) {
	platform := c.Param("platform")
	username := database.NormalizeUsername(c.Param("username"))

	ctx := c.Request.Context()
	var user database.User
	err := h.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "user not found")
			return
		}
		Internal(c, "failed to resolve user")
		return
	}

	handle, enabled, fetch := h.platformFetch(platform, user)
	if fetch == nil {
		BadRequest(c, "unknown platform")
		return
	}
	if !enabled {
		Forbidden(c, platform+" showcase is not enabled for this user")
		return
	}
	if handle == "" {
		NotFound(c, platform+" handle not set")
		return
	}

	data, err := fetch(ctx, handle)
	if err != nil {
		middleware.LoggerFromContext(c).Warn("showcase fetch failed",
			slog.String("platform", platform),
			slog.Any("error", err),
		)
		BadGateway(c, "failed to fetch "+platform+" data")
		return
	}

	c.JSON(http.StatusOK, data)
}

func (h *ShowcaseHandler) platformFetch(platform string, user database.User) (handle string, enabled bool, fetch func(context.Context, string) (any, error)) {
	switch platform {
	case "github":
		return user.Github, user.ShowGithub, func(ctx context.Context, handle string) (any, error) {
			return h.service.Github(ctx, handle)
		}
	case "producthunt":
		return user.ProductHunt, user.ShowProductHunt, func(ctx context.Context, handle string) (any, error) {
			return h.service.ProductHunt(ctx, handle)
		}
	case "devto":
		return user.Devto, user.ShowDevto, func(ctx context.Context, handle string) (any, error) {
			return h.service.Devto(ctx, handle)
		}
	case "medium":
		return user.Medium, user.ShowMedium, func(ctx context.Context, handle string) (any, error) {
			return h.service.Medium(ctx, handle)
		}
	}
	return "", false, nil
}
