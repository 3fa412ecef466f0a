package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"portify/internal/api/middleware"
	"portify/internal/database"
)

// ProjectHandler owns the showcased-project CRUD plus bulk reordering.
// Every write is scoped by the session's user id.
type ProjectHandler struct {
	db *gorm.DB
}

func NewProjectHandler(db *gorm.DB) *ProjectHandler {
	return &ProjectHandler{db: db}
}

type projectResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Link        string    `json:"link,omitempty"`
	Github      string    `json:"github,omitempty"`
	Logo        string    `json:"logo,omitempty"`
	Banner      string    `json:"banner,omitempty"`
	Category    string    `json:"category,omitempty"`
	Order       int       `json:"order"`
	ClickCount  int       `json:"clickCount"`
	CreatedAt   time.Time `json:"createdAt"`
}

func newProjectResponse(p database.Project) projectResponse {
	return projectResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Link:        p.Link,
		Github:      p.Github,
		Logo:        p.Logo,
		Banner:      p.Banner,
		Category:    p.Category,
		Order:       p.DisplayOrder,
		ClickCount:  p.ClickCount,
		CreatedAt:   p.CreatedAt,
	}
}

// ListProjects returns the caller's projects in display order, ties stable
// by insertion.
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	var projects []database.Project
	err := h.db.WithContext(c.Request.Context()).
		Where("user_id = ?", userID).
		Order("display_order ASC, created_at ASC").
		Find(&projects).Error
	if err != nil {
		Internal(c, "failed to list projects")
		return
	}

	items := make([]projectResponse, 0, len(projects))
	for _, p := range projects {
		items = append(items, newProjectResponse(p))
	}
	c.JSON(http.StatusOK, items)
}

type upsertProjectRequest struct {
	ID          string `json:"id"`
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Link        string `json:"link"`
	Github      string `json:"github"`
	Logo        string `json:"logo"`
	Banner      string `json:"banner"`
	Category    string `json:"category"`
}

// UpsertProject implements the upsert-by-id contract: a present id updates
// (scoped to the owner), an absent id inserts with the next display rank.
func (h *ProjectHandler) UpsertProject(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	var req upsertProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()

	if req.ID != "" {
		updates := map[string]any{
			"name":        req.Name,
			"description": req.Description,
			"link":        req.Link,
			"github":      req.Github,
			"logo":        req.Logo,
			"banner":      req.Banner,
			"category":    req.Category,
		}
		result := h.db.WithContext(ctx).
			Model(&database.Project{}).
			Where("id = ? AND user_id = ?", req.ID, userID).
			Updates(updates)
		if result.Error != nil {
			Internal(c, "failed to update project")
			return
		}
		if result.RowsAffected == 0 {
			NotFound(c, "project not found")
			return
		}

		var updated database.Project
		if err := h.db.WithContext(ctx).First(&updated, "id = ?", req.ID).Error; err != nil {
			Internal(c, "failed to reload project")
			return
		}
		c.JSON(http.StatusOK, newProjectResponse(updated))
		return
	}

	project := database.Project{
		ID:          uuid.NewString(),
		UserID:      userID,
		Name:        req.Name,
		Description: req.Description,
		Link:        req.Link,
		Github:      req.Github,
		Logo:        req.Logo,
		Banner:      req.Banner,
		Category:    req.Category,
	}
	err := h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var maxOrder struct {
			Max *int
		}
		if err := tx.Model(&database.Project{}).
			Select("MAX(display_order) AS max").
			Where("user_id = ?", userID).
			Scan(&maxOrder).Error; err != nil {
			return err
		}
		if maxOrder.Max != nil {
			project.DisplayOrder = *maxOrder.Max + 1
		}
		return tx.Create(&project).Error
	})
	if err != nil {
		middleware.LoggerFromContext(c).Error("create project failed", slog.Any("error", err))
		Internal(c, "failed to create project")
		return
	}

	c.JSON(http.StatusCreated, newProjectResponse(project))
}

// DeleteProject deletes by (id, userId) so a session can only ever remove
// its own projects. Click event rows stay; analytics labels them
// "Unknown Project" once the join no longer resolves.
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	projectID := c.Param("id")
	result := h.db.WithContext(c.Request.Context()).
		Where("id = ? AND user_id = ?", projectID, userID).
		Delete(&database.Project{})
	if result.Error != nil {
		Internal(c, "failed to delete project")
		return
	}
	if result.RowsAffected == 0 {
		NotFound(c, "project not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

type reorderRequest struct {
	ProjectIDs *[]string `json:"projectIds"`
}

// ReorderProjects rewrites the display rank to the array index for each id,
// in one transaction, touching only rows the caller owns.
func (h *ProjectHandler) ReorderProjects(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	var req reorderRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ProjectIDs == nil {
		BadRequest(c, "projectIds must be an array")
		return
	}

	err := h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		for i, id := range *req.ProjectIDs {
			err := tx.Model(&database.Project{}).
				Where("id = ? AND user_id = ?", id, userID).
				Update("display_order", i).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		middleware.LoggerFromContext(c).Error("reorder projects failed", slog.Any("error", err))
		Internal(c, "failed to reorder projects")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
