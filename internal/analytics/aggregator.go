package analytics

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"portify/internal/database"
)

// unknownProjectName labels click rows whose project row no longer joins,
// e.g. the project was deleted after the click was recorded.
const unknownProjectName = "Unknown Project"

// ProjectDailyPoint is one (project, day) click rollup.
type ProjectDailyPoint struct {
	ProjectID   string `json:"projectId"`
	ProjectName string `json:"projectName"`
	Date        string `json:"date"`
	Count       int    `json:"count"`
}

// Aggregator derives the chart-ready series from raw event rows. Nothing is
// pre-aggregated; every call reads the event tables directly.
type Aggregator struct {
	db *gorm.DB
}

func NewAggregator(db *gorm.DB) *Aggregator {
	return &Aggregator{db: db}
}

// dayExpr renders the stored unix timestamp as a UTC YYYY-MM-DD day for the
// active dialect. Tests run on sqlite, production on postgres.
func (a *Aggregator) dayExpr(column string) string {
	switch a.db.Dialector.Name() {
	case "sqlite", "sqlite3":
		return fmt.Sprintf("strftime('%%Y-%%m-%%d', %s, 'unixepoch')", column)
	default:
		return fmt.Sprintf("to_char(to_timestamp(%s), 'YYYY-MM-DD')", column)
	}
}

// ProfileVisitSeries groups the user's visit events by calendar day, ordered
// ascending. A history spanning a single day is densified to the 5-day
// display window; anything wider is returned as grouped. An empty result is
// valid and means "no data", not an error.
func (a *Aggregator) ProfileVisitSeries(ctx context.Context, userID string) ([]DailyPoint, error) {
	day := a.dayExpr("timestamp")

	var rows []DailyPoint
	err := a.db.WithContext(ctx).
		Model(&database.ProfileVisit{}).
		Select(day + " AS date, count(*) AS count").
		Where("user_id = ?", userID).
		Group(day).
		Order(day).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("group profile visits: %w", err)
	}

	// Grouped rows are unique per day, so one row means one distinct day.
	if len(rows) == 1 {
		return Densify(rows), nil
	}
	return rows, nil
}

// ProjectClickSeries groups the user's project click events by project and
// calendar day. The join filters by ownership: rows for projects the caller
// does not own never appear, regardless of which visitor clicked. Projects
// whose history spans a single day are densified individually. Output is
// flat, grouped by project in first-seen order, chronological within each.
func (a *Aggregator) ProjectClickSeries(ctx context.Context, userID string) ([]ProjectDailyPoint, error) {
	day := a.dayExpr("project_clicks.timestamp")

	var rows []ProjectDailyPoint
	err := a.db.WithContext(ctx).
		Model(&database.ProjectClick{}).
		Select("project_clicks.project_id AS project_id, projects.name AS project_name, " + day + " AS date, count(*) AS count").
		Joins("LEFT JOIN projects ON projects.id = project_clicks.project_id").
		Where("projects.user_id = ?", userID).
		Group("project_clicks.project_id, projects.name, " + day).
		Order(day).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("group project clicks: %w", err)
	}

	var projectIDs []string
	grouped := make(map[string][]ProjectDailyPoint)
	for _, row := range rows {
		if row.ProjectName == "" {
			row.ProjectName = unknownProjectName
		}
		if _, seen := grouped[row.ProjectID]; !seen {
			projectIDs = append(projectIDs, row.ProjectID)
		}
		grouped[row.ProjectID] = append(grouped[row.ProjectID], row)
	}

	out := make([]ProjectDailyPoint, 0, len(rows))
	for _, id := range projectIDs {
		sub := grouped[id]
		if len(sub) != 1 {
			out = append(out, sub...)
			continue
		}

		name := sub[0].ProjectName
		for _, p := range Densify([]DailyPoint{{Date: sub[0].Date, Count: sub[0].Count}}) {
			out = append(out, ProjectDailyPoint{
				ProjectID:   id,
				ProjectName: name,
				Date:        p.Date,
				Count:       p.Count,
			})
		}
	}
	return out, nil
}
