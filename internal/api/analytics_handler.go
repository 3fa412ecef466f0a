package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"portify/internal/analytics"
	"portify/internal/api/middleware"
)

// AnalyticsHandler serves the two chart-ready series for the dashboard.
type AnalyticsHandler struct {
	aggregator *analytics.Aggregator
}

func NewAnalyticsHandler(db *gorm.DB) *AnalyticsHandler {
	return &AnalyticsHandler{aggregator: analytics.NewAggregator(db)}
}

type analyticsResponse struct {
	ProfileVisits []analytics.DailyPoint        `json:"profileVisits"`
	ProjectClicks []analytics.ProjectDailyPoint `json:"projectClicks"`
}

// GetAnalytics derives both series for the session's user. Empty series are
// valid responses; the dashboard renders its own "no data" state.
func (h *AnalyticsHandler) GetAnalytics(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	ctx := c.Request.Context()
	visits, err := h.aggregator.ProfileVisitSeries(ctx, userID)
	if err != nil {
		middleware.LoggerFromContext(c).Error("profile visit series failed", slog.Any("error", err))
		Internal(c, "failed to fetch analytics data")
		return
	}

	clicks, err := h.aggregator.ProjectClickSeries(ctx, userID)
	if err != nil {
		middleware.LoggerFromContext(c).Error("project click series failed", slog.Any("error", err))
		Internal(c, "failed to fetch analytics data")
		return
	}

	if visits == nil {
		visits = []analytics.DailyPoint{}
	}
	if clicks == nil {
		clicks = []analytics.ProjectDailyPoint{}
	}

	c.JSON(http.StatusOK, analyticsResponse{
		ProfileVisits: visits,
		ProjectClicks: clicks,
	})
}
