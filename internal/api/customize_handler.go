package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"portify/internal/api/middleware"
	"portify/internal/database"
)

// CustomizeHandler owns the per-user template/theme/font selection and the
// showcase visibility flags, all scoped to the session's user.
type CustomizeHandler struct {
	db *gorm.DB
}

func NewCustomizeHandler(db *gorm.DB) *CustomizeHandler {
	return &CustomizeHandler{db: db}
}

func (h *CustomizeHandler) loadUser(c *gin.Context) (*database.User, bool) {
	userID, ok := middleware.UserID(c)
	if !ok {
		AbortUnauthorized(c)
		return nil, false
	}

	var user database.User
	err := h.db.WithContext(c.Request.Context()).First(&user, "id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "user not found")
			return nil, false
		}
		Internal(c, "failed to load user")
		return nil, false
	}
	return &user, true
}

func (h *CustomizeHandler) updateColumn(c *gin.Context, column string, value any) bool {
	userID, _ := middleware.UserID(c)
	err := h.db.WithContext(c.Request.Context()).
		Model(&database.User{}).
		Where("id = ?", userID).
		Update(column, value).Error
	if err != nil {
		Internal(c, "failed to save "+column)
		return false
	}
	return true
}

// GetTemplate returns the stored template, defaulting to minimal.
func (h *CustomizeHandler) GetTemplate(c *gin.Context) {
	user, ok := h.loadUser(c)
	if !ok {
		return
	}
	template := user.Template
	if !database.ValidTemplate(template) {
		template = database.TemplateMinimal
	}
	c.JSON(http.StatusOK, gin.H{"template": template})
}

type setTemplateRequest struct {
	Template string `json:"template" binding:"required"`
}

// SetTemplate accepts only the closed four-value enum.
func (h *CustomizeHandler) SetTemplate(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	var req setTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil || !database.ValidTemplate(req.Template) {
		BadRequest(c, "invalid template")
		return
	}

	err := h.db.WithContext(c.Request.Context()).
		Model(&database.User{}).
		Where("id = ?", userID).
		Update("template", req.Template).Error
	if err != nil {
		Internal(c, "failed to save template")
		return
	}
	c.JSON(http.StatusOK, gin.H{"template": req.Template})
}

// GetTheme returns the stored theme name.
func (h *CustomizeHandler) GetTheme(c *gin.Context) {
	user, ok := h.loadUser(c)
	if !ok {
		return
	}
	theme := user.Theme
	if theme == "" {
		theme = database.DefaultTheme
	}
	c.JSON(http.StatusOK, gin.H{"theme": theme})
}

type setThemeRequest struct {
	Theme string `json:"theme" binding:"required"`
}

// SetTheme stores the raw theme string. Themes are an open set; the palette
// lives client-side, so no enum check here (accepted looseness).
func (h *CustomizeHandler) SetTheme(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	var req setThemeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "theme is required")
		return
	}

	err := h.db.WithContext(c.Request.Context()).
		Model(&database.User{}).
		Where("id = ?", userID).
		Update("theme", req.Theme).Error
	if err != nil {
		Internal(c, "failed to save theme")
		return
	}
	c.JSON(http.StatusOK, gin.H{"theme": req.Theme})
}

// GetFont returns the stored heading/content pair, defaulting both to geist.
func (h *CustomizeHandler) GetFont(c *gin.Context) {
	user, ok := h.loadUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"font": user.FontSelection()})
}

type setFontRequest struct {
	Font *database.FontSelection `json:"font" binding:"required"`
}

// SetFont requires both slots; values are not enum-checked.
func (h *CustomizeHandler) SetFont(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	var req setFontRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Font == nil ||
		req.Font.Heading == "" || req.Font.Content == "" {
		BadRequest(c, "font object with heading and content is required")
		return
	}

	raw, err := json.Marshal(req.Font)
	if err != nil {
		Internal(c, "failed to encode font")
		return
	}

	err = h.db.WithContext(c.Request.Context()).
		Model(&database.User{}).
		Where("id = ?", userID).
		Update("font", datatypes.JSON(raw)).Error
	if err != nil {
		Internal(c, "failed to save font")
		return
	}
	c.JSON(http.StatusOK, gin.H{"font": req.Font})
}

// showFlagColumns maps a platform route param to its visibility column.
var showFlagColumns = map[string]string{
	"github":      "show_github",
	"producthunt": "show_product_hunt",
	"devto":       "show_devto",
	"medium":      "show_medium",
}

// GetShowFlag returns one platform's visibility flag.
func (h *CustomizeHandler) GetShowFlag(c *gin.Context) {
	column, ok := showFlagColumns[c.Param("platform")]
	if !ok {
		BadRequest(c, "unknown platform")
		return
	}

	user, loaded := h.loadUser(c)
	if !loaded {
		return
	}

	var value bool
	switch column {
	case "show_github":
		value = user.ShowGithub
	case "show_product_hunt":
		value = user.ShowProductHunt
	case "show_devto":
		value = user.ShowDevto
	case "show_medium":
		value = user.ShowMedium
	}
	c.JSON(http.StatusOK, gin.H{"show": value})
}

type setShowFlagRequest struct {
	Show *bool `json:"show" binding:"required"`
}

// SetShowFlag flips one platform's visibility flag.
func (h *CustomizeHandler) SetShowFlag(c *gin.Context) {
	column, ok := showFlagColumns[c.Param("platform")]
	if !ok {
		BadRequest(c, "unknown platform")
		return
	}

	var req setShowFlagRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Show == nil {
		BadRequest(c, "show boolean is required")
		return
	}

	if _, authed := middleware.UserID(c); !authed {
		AbortUnauthorized(c)
		return
	}
	if !h.updateColumn(c, column, *req.Show) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"show": *req.Show})
}
