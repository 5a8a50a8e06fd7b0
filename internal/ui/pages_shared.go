package ui

import (
	"strings"
	"time"

	"user-admin/internal/domain"

	. "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"
)

type navItem struct {
	Label string
	Href  string
	Key   string
	Icon  string
}

var navItems = []navItem{
	{Label: "Users", Href: "/admin/users", Key: "users", Icon: "users"},
}

func appPage(title, active string, session domain.SessionUser, flash *Flash, body ...Node) Node {
	nav := make([]Node, 0, len(navItems))
	for _, item := range navItems {
		className := "app-nav-link d-flex flex-items-center"
		if item.Key == active {
			className += " active"
		}
		nav = append(nav, A(
			Href(item.Href),
			Class(className),
			I(Class("nav-icon"), Attr("data-lucide", item.Icon), Attr("aria-hidden", "true")),
			Span(Text(item.Label)),
		))
	}

	sessionLabel := session.Username
	if sessionLabel == "" {
		sessionLabel = "unknown"
	}

	content := []Node{flashBanner(flash)}
	content = append(content, body...)

	return HTML(
		Lang("en"),
		Head(
			Meta(Charset("utf-8")),
			Meta(Name("viewport"), Content("width=device-width, initial-scale=1")),
			TitleEl(Text(title+" | User Admin")),
			Link(Rel("icon"), Href("data:,")),
			Link(Rel("stylesheet"), Href("/admin/static/app.css")),
			Script(Src("https://unpkg.com/lucide@latest/dist/umd/lucide.min.js")),
			Script(
				Type("module"),
				Src("https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0-RC.7/bundles/datastar.js"),
			),
		),
		Body(
			Main(Class("app-shell"),
				Aside(
					Class("app-sidebar"),
					Div(
						Class("brand"),
						Strong(Text("User Admin")),
						P(Class("muted mb-0"), Text("Accounts, roles, and permissions")),
					),
					Nav(Class("app-nav"), Group(nav)),
				),
				Section(
					Class("app-main"),
					Div(
						Class("topbar"),
						Div(
							H1(Class("page-title"), Text(title)),
						),
						Div(
							P(Class("muted mb-2"), Text("Signed in as "+sessionLabel)),
							Form(
								Method("post"),
								Action("/logout"),
								Button(Type("submit"), Class(secondaryButtonClass()), Text("Sign out")),
							),
						),
					),
					Div(Class("content"), Group(content)),
				),
			),
			Script(Raw("if (window.lucide) { window.lucide.createIcons(); }")),
		),
	)
}

func flashBanner(flash *Flash) Node {
	if flash == nil {
		return nil
	}
	tone := "flash flash-success"
	if flash.Kind == "error" {
		tone = "flash flash-error"
	}
	return Div(Class(tone), Text(flash.Message))
}

func errorPage(title, message string) Node {
	return HTML(
		Lang("en"),
		Head(
			Meta(Charset("utf-8")),
			Meta(Name("viewport"), Content("width=device-width, initial-scale=1")),
			TitleEl(Text(title+" | User Admin")),
			Link(Rel("icon"), Href("data:,")),
			Link(Rel("stylesheet"), Href("/admin/static/app.css")),
		),
		Body(
			Main(
				Class("layout"),
				H1(Class("page-title"), Text(title)),
				P(Text(message)),
				P(A(Href("/admin/users"), Text("Back to users"))),
			),
		),
	)
}

func formatTime(ts time.Time) string {
	if ts.IsZero() {
		return "-"
	}
	return ts.Format("2006-01-02 15:04:05")
}

func cardClass(extra ...string) string {
	parts := []string{"card", "p-3", "mb-3"}
	parts = append(parts, extra...)
	return strings.Join(parts, " ")
}

func mutedClass() string {
	return "muted"
}

func primaryButtonClass() string {
	return "btn btn-primary"
}

func secondaryButtonClass() string {
	return "btn"
}
