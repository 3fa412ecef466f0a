package api

import (
	"net/http"
	"testing"

	"github.com/google/uuid"

	"portify/internal/analytics"
	"portify/internal/database"
)

func TestGetAnalyticsEmptyHistory(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "quinn")
	h := NewAnalyticsHandler(db)

	w, c := jsonContext(t, http.MethodGet, "/v1/analytics", nil)
	c.Set("userID", user.ID)
	h.GetAnalytics(c)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}

	// Empty series must serialize as [], not null.
	body := w.Body.String()
	var resp struct {
		ProfileVisits []analytics.DailyPoint        `json:"profileVisits"`
		ProjectClicks []analytics.ProjectDailyPoint `json:"projectClicks"`
	}
	decodeBody(t, w, &resp)
	if resp.ProfileVisits == nil || resp.ProjectClicks == nil {
		t.Errorf("expected empty arrays in %s", body)
	}
	if len(resp.ProfileVisits) != 0 || len(resp.ProjectClicks) != 0 {
		t.Errorf("expected no data, got %s", body)
	}
}

func TestGetAnalyticsUnauthenticated(t *testing.T) {
	db := newTestDB(t)
	h := NewAnalyticsHandler(db)

	w, c := jsonContext(t, http.MethodGet, "/v1/analytics", nil)
	h.GetAnalytics(c)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 got %d", w.Code)
	}
}

func TestGetAnalyticsReturnsBothSeries(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "ruth")
	project := database.Project{ID: uuid.NewString(), UserID: user.ID, Name: "Gadget"}
	if err := db.Create(&project).Error; err != nil {
		t.Fatalf("seed project: %v", err)
	}

	events := NewEventsHandler(db)
	for i := 0; i < 2; i++ {
		w, c := jsonContext(t, http.MethodPost, "/v1/events/visit", map[string]string{"username": user.Username})
		events.RecordVisit(c)
		if w.Code != http.StatusOK {
			t.Fatalf("record visit: %d", w.Code)
		}
	}
	w, c := jsonContext(t, http.MethodPost, "/v1/events/click", map[string]string{"projectId": project.ID})
	events.RecordClick(c)
	if w.Code != http.StatusOK {
		t.Fatalf("record click: %d", w.Code)
	}

	h := NewAnalyticsHandler(db)
	w, c = jsonContext(t, http.MethodGet, "/v1/analytics", nil)
	c.Set("userID", user.ID)
	h.GetAnalytics(c)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		ProfileVisits []analytics.DailyPoint        `json:"profileVisits"`
		ProjectClicks []analytics.ProjectDailyPoint `json:"projectClicks"`
	}
	decodeBody(t, w, &resp)

	// All events landed today: both series densify to the 5-day window.
	if len(resp.ProfileVisits) != 5 {
		t.Errorf("expected densified visit series of 5, got %d", len(resp.ProfileVisits))
	}
	if len(resp.ProjectClicks) != 5 {
		t.Errorf("expected densified click series of 5, got %d", len(resp.ProjectClicks))
	}
	if n := len(resp.ProfileVisits); n > 0 && resp.ProfileVisits[n-1].Count != 2 {
		t.Errorf("expected 2 visits on anchor day, got %d", resp.ProfileVisits[n-1].Count)
	}
	for _, row := range resp.ProjectClicks {
		if row.ProjectName != "Gadget" {
			t.Errorf("expected project name Gadget, got %q", row.ProjectName)
		}
	}
}
