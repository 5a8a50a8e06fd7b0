package ui

import (
	. "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"
)

func loginPage(errMsg string, csrf Node) Node {
	content := []Node{
		H1(Text("User Admin")),
		P(Class("muted"), Text("Sign in to manage user accounts.")),
		Form(
			Class("login-form"),
			Method("post"),
			Action("/login"),
			csrf,
			Label(Class("form-label"), Text("Username")),
			Input(Name("username"), Class("form-control"), Required(), AutoComplete("username")),
			Label(Class("form-label"), Text("Password")),
			Input(Name("password"), Type("password"), Class("form-control"), Required(), AutoComplete("current-password")),
			Button(
				Type("submit"),
				Class("btn btn-primary"),
				Text("Sign In"),
			),
		),
	}
	if errMsg != "" {
		content = append([]Node{P(Class("flash flash-error"), Text(errMsg))}, content...)
	}

	return HTML(
		Lang("en"),
		Head(
			Meta(Charset("utf-8")),
			Meta(Name("viewport"), Content("width=device-width, initial-scale=1")),
			TitleEl(Text("Sign in | User Admin")),
			Link(Rel("icon"), Href("data:,")),
			Link(Rel("stylesheet"), Href("/admin/static/app.css")),
		),
		Body(
			Class("login-body"),
			Main(Class("login-wrap"), Group(content)),
		),
	)
}
