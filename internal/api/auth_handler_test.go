package api

import (
	"log/slog"
	"net/http"
	"testing"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"portify/internal/database"
)

func newAuthTestHandler(t *testing.T) (*AuthHandler, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	redisClient := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	return NewAuthHandler(db, nil, redisClient, slog.Default(), ""), db
}

func TestRegisterCreatesAccountWithDefaults(t *testing.T) {
	h, db := newAuthTestHandler(t)

	w, c := jsonContext(t, http.MethodPost, "/v1/auth/register", map[string]string{
		"email":    "New@Example.com",
		"password": "long-enough-pass",
		"name":     "New Person",
		"username": "NewPerson",
	})
	h.Register(c)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		ID       string `json:"id"`
		Username string `json:"username"`
	}
	decodeBody(t, w, &resp)
	if resp.Username != "newperson" {
		t.Errorf("username must be stored lowercased, got %q", resp.Username)
	}

	var user database.User
	if err := db.First(&user, "id = ?", resp.ID).Error; err != nil {
		t.Fatalf("load user: %v", err)
	}
	if user.Email != "new@example.com" {
		t.Errorf("email must be normalized, got %q", user.Email)
	}
	if user.Template != database.TemplateMinimal || user.Theme != database.DefaultTheme {
		t.Errorf("unexpected defaults: template=%q theme=%q", user.Template, user.Theme)
	}
	if user.PasswordHash == "" || user.PasswordHash == "long-enough-pass" {
		t.Error("password must be stored hashed")
	}
}

func TestRegisterConflictIsCaseInsensitive(t *testing.T) {
	h, db := newAuthTestHandler(t)
	seedUser(t, db, "taken")

	w, c := jsonContext(t, http.MethodPost, "/v1/auth/register", map[string]string{
		"email":    "other@example.com",
		"password": "long-enough-pass",
		"name":     "Other",
		"username": "TAKEN",
	})
	h.Register(c)
	if w.Code != http.StatusConflict {
		t.Errorf("expected 409 got %d body=%s", w.Code, w.Body.String())
	}
}

func TestRegisterRejectsInvalidUsername(t *testing.T) {
	h, _ := newAuthTestHandler(t)

	for _, username := range []string{"has_underscore", "-leading", "has.dot"} {
		w, c := jsonContext(t, http.MethodPost, "/v1/auth/register", map[string]string{
			"email":    "x@example.com",
			"password": "long-enough-pass",
			"name":     "X",
			"username": username,
		})
		h.Register(c)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%q: expected 400 got %d", username, w.Code)
		}
	}
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	h, _ := newAuthTestHandler(t)

	w, c := jsonContext(t, http.MethodPost, "/v1/auth/register", map[string]string{
		"email":    "x@example.com",
		"password": "short",
		"name":     "X",
		"username": "valid-name",
	})
	h.Register(c)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 got %d", w.Code)
	}
}
