package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"portify/internal/api/middleware"
	"portify/internal/database"
)

// EventsHandler appends the immutable visit/click events. Both endpoints are
// public: the actor is the anonymous visitor, not the profile owner. The
// caller suppresses visit recording for embedded and preview loads; the
// recorder has no way to detect those and trusts the caller.
type EventsHandler struct {
	db *gorm.DB
}

func NewEventsHandler(db *gorm.DB) *EventsHandler {
	return &EventsHandler{db: db}
}

type visitEventRequest struct {
	Username string `json:"username" binding:"required"`
}

// RecordVisit appends one ProfileVisit row and bumps the legacy counter in
// the same transaction, so the two never diverge.
func (h *EventsHandler) RecordVisit(c *gin.Context) {
	var req visitEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "username is required")
		return
	}

	ctx := c.Request.Context()
	var user database.User
	err := h.db.WithContext(ctx).
		Where("username = ?", database.NormalizeUsername(req.Username)).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "user not found")
			return
		}
		Internal(c, "failed to resolve user")
		return
	}

	visit := database.ProfileVisit{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Timestamp: time.Now().Unix(),
	}
	err = h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&visit).Error; err != nil {
			return err
		}
		return tx.Model(&database.User{}).
			Where("id = ?", user.ID).
			UpdateColumn("profile_visit_count", gorm.Expr("profile_visit_count + ?", 1)).Error
	})
	if err != nil {
		middleware.LoggerFromContext(c).Error("record visit failed", slog.Any("error", err))
		Internal(c, "failed to record visit")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

type clickEventRequest struct {
	ProjectID string `json:"projectId"`
}

// RecordClick appends one ProjectClick row and applies the atomic counter
// increment in the same transaction. Concurrent clicks must not lose
// updates, hence the storage-side add rather than a read-modify-write.
func (h *EventsHandler) RecordClick(c *gin.Context) {
	var req clickEventRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ProjectID == "" {
		BadRequest(c, "project id is required")
		return
	}

	ctx := c.Request.Context()
	var project database.Project
	err := h.db.WithContext(ctx).
		Select("id").
		Where("id = ?", req.ProjectID).
		First(&project).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "project not found")
			return
		}
		Internal(c, "failed to resolve project")
		return
	}

	click := database.ProjectClick{
		ID:        uuid.NewString(),
		ProjectID: req.ProjectID,
		Timestamp: time.Now().Unix(),
	}
	err = h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&click).Error; err != nil {
			return err
		}
		return tx.Model(&database.Project{}).
			Where("id = ?", req.ProjectID).
			UpdateColumn("click_count", gorm.Expr("click_count + ?", 1)).Error
	})
	if err != nil {
		middleware.LoggerFromContext(c).Error("record click failed", slog.Any("error", err))
		Internal(c, "failed to record click")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
