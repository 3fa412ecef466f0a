package analytics

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"portify/internal/database"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func dayUnix(t *testing.T, date string) int64 {
	t.Helper()
	parsed, err := time.Parse("2006-01-02", date)
	if err != nil {
		t.Fatalf("parse date %s: %v", date, err)
	}
	// Mid-day so the UTC day rendering is unambiguous.
	return parsed.Add(12 * time.Hour).Unix()
}

func seedVisit(t *testing.T, db *gorm.DB, userID, date string) {
	t.Helper()
	visit := database.ProfileVisit{
		ID:        uuid.NewString(),
		UserID:    userID,
		Timestamp: dayUnix(t, date),
	}
	if err := db.Create(&visit).Error; err != nil {
		t.Fatalf("seed visit: %v", err)
	}
}

func seedClick(t *testing.T, db *gorm.DB, projectID, date string) {
	t.Helper()
	click := database.ProjectClick{
		ID:        uuid.NewString(),
		ProjectID: projectID,
		Timestamp: dayUnix(t, date),
	}
	if err := db.Create(&click).Error; err != nil {
		t.Fatalf("seed click: %v", err)
	}
}

func TestProfileVisitSeriesGroupsByDay(t *testing.T) {
	db := newTestDB(t)
	userID := uuid.NewString()

	seedVisit(t, db, userID, "2024-01-08")
	seedVisit(t, db, userID, "2024-01-08")
	seedVisit(t, db, userID, "2024-01-10")

	got, err := NewAggregator(db).ProfileVisitSeries(context.Background(), userID)
	if err != nil {
		t.Fatalf("ProfileVisitSeries: %v", err)
	}

	// Two distinct days: grouped rows pass through without densification.
	want := []DailyPoint{
		{Date: "2024-01-08", Count: 2},
		{Date: "2024-01-10", Count: 1},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d rows, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("row %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestProfileVisitSeriesDensifiesSingleDay(t *testing.T) {
	db := newTestDB(t)
	userID := uuid.NewString()

	seedVisit(t, db, userID, "2024-01-10")
	seedVisit(t, db, userID, "2024-01-10")
	seedVisit(t, db, userID, "2024-01-10")

	got, err := NewAggregator(db).ProfileVisitSeries(context.Background(), userID)
	if err != nil {
		t.Fatalf("ProfileVisitSeries: %v", err)
	}

	want := []DailyPoint{
		{Date: "2024-01-06", Count: 0},
		{Date: "2024-01-07", Count: 0},
		{Date: "2024-01-08", Count: 0},
		{Date: "2024-01-09", Count: 0},
		{Date: "2024-01-10", Count: 3},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d rows, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("row %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestProfileVisitSeriesEmptyHistory(t *testing.T) {
	db := newTestDB(t)

	got, err := NewAggregator(db).ProfileVisitSeries(context.Background(), uuid.NewString())
	if err != nil {
		t.Fatalf("ProfileVisitSeries: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no rows for empty history, got %v", got)
	}
}

func TestProjectClickSeriesFiltersByOwner(t *testing.T) {
	db := newTestDB(t)
	owner := uuid.NewString()
	other := uuid.NewString()

	mine := database.Project{ID: uuid.NewString(), UserID: owner, Name: "Mine"}
	theirs := database.Project{ID: uuid.NewString(), UserID: other, Name: "Theirs"}
	if err := db.Create(&mine).Error; err != nil {
		t.Fatalf("seed project: %v", err)
	}
	if err := db.Create(&theirs).Error; err != nil {
		t.Fatalf("seed project: %v", err)
	}

	seedClick(t, db, mine.ID, "2024-02-01")
	seedClick(t, db, mine.ID, "2024-02-03")
	seedClick(t, db, theirs.ID, "2024-02-01")

	got, err := NewAggregator(db).ProjectClickSeries(context.Background(), owner)
	if err != nil {
		t.Fatalf("ProjectClickSeries: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 rows, got %d: %v", len(got), got)
	}
	for _, row := range got {
		if row.ProjectID != mine.ID {
			t.Errorf("row for foreign project leaked: %v", row)
		}
		if row.ProjectName != "Mine" {
			t.Errorf("expected project name Mine, got %q", row.ProjectName)
		}
	}
}

func TestProjectClickSeriesDensifiesPerProject(t *testing.T) {
	db := newTestDB(t)
	owner := uuid.NewString()

	single := database.Project{ID: uuid.NewString(), UserID: owner, Name: "Single"}
	multi := database.Project{ID: uuid.NewString(), UserID: owner, Name: "Multi"}
	if err := db.Create(&single).Error; err != nil {
		t.Fatalf("seed project: %v", err)
	}
	if err := db.Create(&multi).Error; err != nil {
		t.Fatalf("seed project: %v", err)
	}

	seedClick(t, db, single.ID, "2024-01-10")
	seedClick(t, db, single.ID, "2024-01-10")
	seedClick(t, db, multi.ID, "2024-01-09")
	seedClick(t, db, multi.ID, "2024-01-10")

	got, err := NewAggregator(db).ProjectClickSeries(context.Background(), owner)
	if err != nil {
		t.Fatalf("ProjectClickSeries: %v", err)
	}

	byProject := make(map[string][]ProjectDailyPoint)
	for _, row := range got {
		byProject[row.ProjectID] = append(byProject[row.ProjectID], row)
	}

	singleRows := byProject[single.ID]
	if len(singleRows) != 5 {
		t.Fatalf("single-day project should be densified to 5 rows, got %d: %v", len(singleRows), singleRows)
	}
	if singleRows[0].Date != "2024-01-06" || singleRows[4].Date != "2024-01-10" {
		t.Errorf("unexpected window for single-day project: %v", singleRows)
	}
	if singleRows[4].Count != 2 {
		t.Errorf("expected observed count 2 on anchor day, got %d", singleRows[4].Count)
	}

	multiRows := byProject[multi.ID]
	if len(multiRows) != 2 {
		t.Fatalf("multi-day project should pass through grouped, got %d rows: %v", len(multiRows), multiRows)
	}
	if multiRows[0].Date != "2024-01-09" || multiRows[1].Date != "2024-01-10" {
		t.Errorf("multi-day rows out of order: %v", multiRows)
	}
}

func TestProjectClickSeriesLabelsMissingName(t *testing.T) {
	db := newTestDB(t)
	owner := uuid.NewString()

	unnamed := database.Project{ID: uuid.NewString(), UserID: owner}
	if err := db.Create(&unnamed).Error; err != nil {
		t.Fatalf("seed project: %v", err)
	}
	seedClick(t, db, unnamed.ID, "2024-03-01")
	seedClick(t, db, unnamed.ID, "2024-03-02")

	got, err := NewAggregator(db).ProjectClickSeries(context.Background(), owner)
	if err != nil {
		t.Fatalf("ProjectClickSeries: %v", err)
	}
	if len(got) == 0 {
		t.Fatal("expected rows for unnamed project")
	}
	for _, row := range got {
		if row.ProjectName != "Unknown Project" {
			t.Errorf("expected fallback name, got %q", row.ProjectName)
		}
	}
}
