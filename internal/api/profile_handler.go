package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"portify/internal/api/middleware"
	"portify/internal/database"
	"portify/internal/render"
)

// ProfileHandler serves the public page composition plus the admin-side
// profile reads and writes.
type ProfileHandler struct {
	db *gorm.DB
}

func NewProfileHandler(db *gorm.DB) *ProfileHandler {
	return &ProfileHandler{db: db}
}

var usernameRe = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{2,29}$`)

// ValidUsername reports whether a normalized username is routable.
func ValidUsername(username string) bool {
	return usernameRe.MatchString(username)
}

// GetPublicPage resolves a username and composes the page model through the
// template variant renderer. An unresolvable username is a terminal 404; the
// client renders its not-found state and fetches nothing further.
func (h *ProfileHandler) GetPublicPage(c *gin.Context) {
	username := database.NormalizeUsername(c.Param("username"))

	ctx := c.Request.Context()
	var user database.User
	err := h.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "user not found")
			return
		}
		Internal(c, "failed to load profile")
		return
	}

	var projects []database.Project
	err = h.db.WithContext(ctx).
		Where("user_id = ?", user.ID).
		Order("display_order ASC, created_at ASC").
		Find(&projects).Error
	if err != nil {
		Internal(c, "failed to load projects")
		return
	}

	page := render.ForTemplate(user.Template).Render(user, projects)
	c.JSON(http.StatusOK, page)
}

// CheckUsername is the public onboarding availability probe.
func (h *ProfileHandler) CheckUsername(c *gin.Context) {
	username := database.NormalizeUsername(c.Query("username"))
	if !ValidUsername(username) {
		BadRequest(c, "username must be 3-30 characters: lowercase letters, digits, hyphens")
		return
	}

	var count int64
	err := h.db.WithContext(c.Request.Context()).
		Model(&database.User{}).
		Where("username = ?", username).
		Count(&count).Error
	if err != nil {
		Internal(c, "failed to check username")
		return
	}

	c.JSON(http.StatusOK, gin.H{"username": username, "available": count == 0})
}

type meResponse struct {
	ID                string                 `json:"id"`
	Email             string                 `json:"email"`
	Name              string                 `json:"name"`
	Username          string                 `json:"username"`
	Tagline           string                 `json:"tagline,omitempty"`
	Bio               string                 `json:"bio,omitempty"`
	Location          string                 `json:"location,omitempty"`
	Link              string                 `json:"link,omitempty"`
	Twitter           string                 `json:"twitter,omitempty"`
	Github            string                 `json:"github,omitempty"`
	ProductHunt       string                 `json:"productHunt,omitempty"`
	Devto             string                 `json:"devto,omitempty"`
	Medium            string                 `json:"medium,omitempty"`
	ProfilePicture    string                 `json:"profilePicture,omitempty"`
	Skills            []string               `json:"skills"`
	Theme             string                 `json:"theme"`
	Template          string                 `json:"template"`
	Font              database.FontSelection `json:"font"`
	ShowGithub        bool                   `json:"showGithub"`
	ShowProductHunt   bool                   `json:"showProductHunt"`
	ShowDevto         bool                   `json:"showDevto"`
	ShowMedium        bool                   `json:"showMedium"`
	ProfileVisitCount int                    `json:"profileVisitCount"`
	CreatedAt         time.Time              `json:"createdAt"`
}

func newMeResponse(u database.User) meResponse {
	skills := u.SkillList()
	if skills == nil {
		skills = []string{}
	}
	return meResponse{
		ID:                u.ID,
		Email:             u.Email,
		Name:              u.Name,
		Username:          u.Username,
		Tagline:           u.Tagline,
		Bio:               u.Bio,
		Location:          u.Location,
		Link:              u.Link,
		Twitter:           u.Twitter,
		Github:            u.Github,
		ProductHunt:       u.ProductHunt,
		Devto:             u.Devto,
		Medium:            u.Medium,
		ProfilePicture:    u.ProfilePicture,
		Skills:            skills,
		Theme:             u.Theme,
		Template:          u.Template,
		Font:              u.FontSelection(),
		ShowGithub:        u.ShowGithub,
		ShowProductHunt:   u.ShowProductHunt,
		ShowDevto:         u.ShowDevto,
		ShowMedium:        u.ShowMedium,
		ProfileVisitCount: u.ProfileVisitCount,
		CreatedAt:         u.CreatedAt,
	}
}

// GetMe returns the authenticated account record.
func (h *ProfileHandler) GetMe(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	var user database.User
	err := h.db.WithContext(c.Request.Context()).First(&user, "id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "user not found")
			return
		}
		Internal(c, "failed to load user")
		return
	}

	c.JSON(http.StatusOK, newMeResponse(user))
}

type updateProfileRequest struct {
	Name           *string   `json:"name"`
	Tagline        *string   `json:"tagline"`
	Bio            *string   `json:"bio"`
	Location       *string   `json:"location"`
	Link           *string   `json:"link"`
	Twitter        *string   `json:"twitter"`
	Github         *string   `json:"github"`
	ProductHunt    *string   `json:"productHunt"`
	Devto          *string   `json:"devto"`
	Medium         *string   `json:"medium"`
	ProfilePicture *string   `json:"profilePicture"`
	Skills         *[]string `json:"skills"`
}

// UpdateProfile applies a partial update to the session's own row. Identity
// comes from the token; a userId in the body is ignored.
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	updates := map[string]any{}
	setIfPresent := func(column string, value *string) {
		if value != nil {
			updates[column] = *value
		}
	}
	setIfPresent("name", req.Name)
	setIfPresent("tagline", req.Tagline)
	setIfPresent("bio", req.Bio)
	setIfPresent("location", req.Location)
	setIfPresent("link", req.Link)
	setIfPresent("twitter", req.Twitter)
	setIfPresent("github", req.Github)
	setIfPresent("product_hunt", req.ProductHunt)
	setIfPresent("devto", req.Devto)
	setIfPresent("medium", req.Medium)
	setIfPresent("profile_picture", req.ProfilePicture)
	if req.Skills != nil {
		raw, err := json.Marshal(*req.Skills)
		if err != nil {
			BadRequest(c, "invalid skills")
			return
		}
		updates["skills"] = datatypes.JSON(raw)
	}

	if len(updates) == 0 {
		BadRequest(c, "no fields to update")
		return
	}

	ctx := c.Request.Context()
	err := h.db.WithContext(ctx).
		Model(&database.User{}).
		Where("id = ?", userID).
		Updates(updates).Error
	if err != nil {
		Internal(c, "failed to update profile")
		return
	}

	var user database.User
	if err := h.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		Internal(c, "failed to reload user")
		return
	}
	c.JSON(http.StatusOK, newMeResponse(user))
}
