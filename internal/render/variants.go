package render

import "portify/internal/database"

// minimalRenderer: clean single-column list, the safe default.
type minimalRenderer struct{}

func (minimalRenderer) Render(u database.User, projects []database.Project) Page {
	page := basePage(database.TemplateMinimal, u, projects)
	page.Layout = Layout{
		ProjectStyle: "list",
		Sections:     []string{"hero", "socials", "projects", "showcases"},
	}
	return page
}

// pristineRenderer: professional card grid with the showcase row above
// the project list.
type pristineRenderer struct{}

func (pristineRenderer) Render(u database.User, projects []database.Project) Page {
	page := basePage(database.TemplatePristine, u, projects)
	page.Layout = Layout{
		ProjectStyle: "cards",
		Sections:     []string{"hero", "socials", "showcases", "projects"},
	}
	return page
}

// vibrantRenderer: masonry project layout with colorful accents.
type vibrantRenderer struct{}

func (vibrantRenderer) Render(u database.User, projects []database.Project) Page {
	page := basePage(database.TemplateVibrant, u, projects)
	page.Layout = Layout{
		ProjectStyle: "masonry",
		Sections:     []string{"hero", "socials", "projects", "showcases"},
	}
	return page
}

// elegantRenderer: typography-focused layout. The generic social-icon row is
// suppressed; its links move inline into the hero instead.
type elegantRenderer struct{}

func (elegantRenderer) Render(u database.User, projects []database.Project) Page {
	page := basePage(database.TemplateElegant, u, projects)
	page.Hero.InlineSocials = page.Socials
	page.Socials = nil
	page.Layout = Layout{
		ProjectStyle: "editorial",
		Sections:     []string{"hero", "projects", "showcases"},
	}
	return page
}
