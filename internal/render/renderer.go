// Package render composes the public profile page model from a user's stored
// customization state and project list. Each template is one Renderer variant
// behind a common interface; adding a template means adding a variant, not
// threading conditionals through every section.
package render

import (
	"sort"

	"portify/internal/database"
)

// Page is the composed public page, consumed by the frontend as-is.
type Page struct {
	Template  string                 `json:"template"`
	Theme     string                 `json:"theme"`
	Font      database.FontSelection `json:"font"`
	Hero      Hero                   `json:"hero"`
	Socials   *SocialLinks           `json:"socials,omitempty"`
	Showcases []Showcase             `json:"showcases"`
	Projects  []ProjectCard          `json:"projects"`
	Layout    Layout                 `json:"layout"`
}

// Hero carries the passthrough user fields every template renders up top.
type Hero struct {
	Name           string       `json:"name"`
	Tagline        string       `json:"tagline,omitempty"`
	Bio            string       `json:"bio,omitempty"`
	Location       string       `json:"location,omitempty"`
	ProfilePicture string       `json:"profilePicture,omitempty"`
	Skills         []string     `json:"skills,omitempty"`
	InlineSocials  *SocialLinks `json:"inlineSocials,omitempty"`
}

// SocialLinks is the generic icon row. Empty fields render nothing.
type SocialLinks struct {
	Github  string `json:"github,omitempty"`
	Twitter string `json:"twitter,omitempty"`
	Link    string `json:"link,omitempty"`
	Email   string `json:"email,omitempty"`
}

// Showcase names an enabled third-party section. The section's data is
// fetched separately so one slow platform cannot block the page.
type Showcase struct {
	Platform string `json:"platform"`
	Handle   string `json:"handle"`
}

// ProjectCard is one showcased project in display order.
type ProjectCard struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Link        string `json:"link,omitempty"`
	Github      string `json:"github,omitempty"`
	Logo        string `json:"logo,omitempty"`
	Banner      string `json:"banner,omitempty"`
	Category    string `json:"category,omitempty"`
	Order       int    `json:"order"`
}

// Layout is the per-template structural contract.
type Layout struct {
	ProjectStyle string   `json:"projectStyle"`
	Sections     []string `json:"sections"`
}

// Renderer turns a user record and project list into a page model.
type Renderer interface {
	Render(user database.User, projects []database.Project) Page
}

// ForTemplate selects the variant for a stored template name. Unrecognized
// values fall back to minimal so a bad row never breaks rendering.
func ForTemplate(name string) Renderer {
	switch name {
	case database.TemplatePristine:
		return pristineRenderer{}
	case database.TemplateVibrant:
		return vibrantRenderer{}
	case database.TemplateElegant:
		return elegantRenderer{}
	default:
		return minimalRenderer{}
	}
}

// SortProjects orders by the explicit rank ascending; the stable sort keeps
// insertion order on ties. Ordering is independent of template choice.
func SortProjects(projects []database.Project) []database.Project {
	sorted := make([]database.Project, len(projects))
	copy(sorted, projects)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].DisplayOrder < sorted[j].DisplayOrder
	})
	return sorted
}

// EnabledShowcases gates each platform section on the handle AND visibility
// flag pair; either one missing suppresses the section entirely.
func EnabledShowcases(u database.User) []Showcase {
	out := make([]Showcase, 0, 4)
	if u.Github != "" && u.ShowGithub {
		out = append(out, Showcase{Platform: "github", Handle: u.Github})
	}
	if u.ProductHunt != "" && u.ShowProductHunt {
		out = append(out, Showcase{Platform: "producthunt", Handle: u.ProductHunt})
	}
	if u.Devto != "" && u.ShowDevto {
		out = append(out, Showcase{Platform: "devto", Handle: u.Devto})
	}
	if u.Medium != "" && u.ShowMedium {
		out = append(out, Showcase{Platform: "medium", Handle: u.Medium})
	}
	return out
}

func hero(u database.User) Hero {
	return Hero{
		Name:           u.Name,
		Tagline:        u.Tagline,
		Bio:            u.Bio,
		Location:       u.Location,
		ProfilePicture: u.ProfilePicture,
		Skills:         u.SkillList(),
	}
}

func socials(u database.User) *SocialLinks {
	links := SocialLinks{
		Github:  u.Github,
		Twitter: u.Twitter,
		Link:    u.Link,
		Email:   u.Email,
	}
	if links == (SocialLinks{}) {
		return nil
	}
	return &links
}

func projectCards(projects []database.Project) []ProjectCard {
	cards := make([]ProjectCard, 0, len(projects))
	for _, p := range SortProjects(projects) {
		cards = append(cards, ProjectCard{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			Link:        p.Link,
			Github:      p.Github,
			Logo:        p.Logo,
			Banner:      p.Banner,
			Category:    p.Category,
			Order:       p.DisplayOrder,
		})
	}
	return cards
}

func basePage(template string, u database.User, projects []database.Project) Page {
	return Page{
		Template:  template,
		Theme:     u.Theme,
		Font:      u.FontSelection(),
		Hero:      hero(u),
		Socials:   socials(u),
		Showcases: EnabledShowcases(u),
		Projects:  projectCards(projects),
	}
}
