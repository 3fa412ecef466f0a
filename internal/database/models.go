package database

import (
	"encoding/json"
	"strings"
	"time"

	"gorm.io/datatypes"
)

// Template names form a closed enum; everything else falls back to minimal.
const (
	TemplateMinimal  = "minimal"
	TemplatePristine = "pristine"
	TemplateVibrant  = "vibrant"
	TemplateElegant  = "elegant"
)

// ValidTemplate reports whether name is one of the four known templates.
func ValidTemplate(name string) bool {
	switch name {
	case TemplateMinimal, TemplatePristine, TemplateVibrant, TemplateElegant:
		return true
	}
	return false
}

const (
	DefaultTheme = "neutral"
	DefaultFont  = "geist"
)

// FontSelection is the per-user heading/content font pair stored as JSONB.
type FontSelection struct {
	Heading string `json:"heading"`
	Content string `json:"content"`
}

// User is an account plus everything the public page is rendered from.
// Username is the sole public lookup key and is stored lowercased.
type User struct {
	ID           string `gorm:"primaryKey;size:64"`
	Email        string `gorm:"uniqueIndex;size:255"`
	PasswordHash string `gorm:"size:255"`
	Name         string `gorm:"size:255"`
	Username     string `gorm:"uniqueIndex;size:64"`

	Tagline        string `gorm:"size:255"`
	Bio            string
	Location       string `gorm:"size:255"`
	Link           string
	Twitter        string `gorm:"size:255"`
	Github         string `gorm:"size:255"`
	ProductHunt    string `gorm:"size:255"`
	Devto          string `gorm:"size:255"`
	Medium         string `gorm:"size:255"`
	ProfilePicture string
	Skills         datatypes.JSON `gorm:"type:jsonb"`

	Theme    string         `gorm:"size:64;default:neutral"`
	Template string         `gorm:"size:32;default:minimal"`
	Font     datatypes.JSON `gorm:"type:jsonb"`

	ShowGithub      bool `gorm:"default:false"`
	ShowProductHunt bool `gorm:"default:false"`
	ShowDevto       bool `gorm:"default:false"`
	ShowMedium      bool `gorm:"default:false"`

	// Legacy O(1) counter; ProfileVisit rows are the source of truth for
	// time series. The two are written in the same transaction.
	ProfileVisitCount int `gorm:"default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// FontSelection decodes the stored font pair, defaulting both slots to geist.
func (u User) FontSelection() FontSelection {
	sel := FontSelection{Heading: DefaultFont, Content: DefaultFont}
	if len(u.Font) == 0 {
		return sel
	}
	var stored FontSelection
	if err := json.Unmarshal(u.Font, &stored); err != nil {
		return sel
	}
	if stored.Heading != "" {
		sel.Heading = stored.Heading
	}
	if stored.Content != "" {
		sel.Content = stored.Content
	}
	return sel
}

// SkillList decodes the stored skills array, preserving order.
func (u User) SkillList() []string {
	if len(u.Skills) == 0 {
		return nil
	}
	var skills []string
	if err := json.Unmarshal(u.Skills, &skills); err != nil {
		return nil
	}
	return skills
}

// NormalizeUsername lowercases and trims a username so uniqueness is
// case-insensitive at every lookup and write site.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// Project is one showcased work item owned by exactly one user.
// DisplayOrder drives public ordering; ties keep insertion order.
type Project struct {
	ID           string `gorm:"primaryKey;size:64"`
	UserID       string `gorm:"index;size:64"`
	Name         string `gorm:"size:255"`
	Description  string
	Link         string
	Github       string
	Logo         string
	Banner       string
	Category     string `gorm:"size:255"`
	DisplayOrder int    `gorm:"column:display_order;default:0"`
	ClickCount   int    `gorm:"default:0"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ProfileVisit is an append-only event: one qualifying public page load.
type ProfileVisit struct {
	ID        string `gorm:"primaryKey;size:64"`
	UserID    string `gorm:"index;size:64"`
	Timestamp int64
}

// ProjectClick is an append-only event: one outbound click on a project link.
type ProjectClick struct {
	ID        string `gorm:"primaryKey;size:64"`
	ProjectID string `gorm:"index;size:64"`
	Timestamp int64
}
