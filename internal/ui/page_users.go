package ui

import (
	"strconv"
	"strings"

	"user-admin/internal/domain"

	. "maragu.dev/gomponents"
	data "maragu.dev/gomponents-datastar"
	. "maragu.dev/gomponents/html"
)

func usersListPage(session domain.SessionUser, flash *Flash, fetchURL, csrfToken string) Node {
	return appPage(
		"Users",
		"users",
		session,
		flash,
		Div(
			Class(cardClass("toolbar")),
			Div(
				Class("d-flex flex-justify-between flex-items-center flex-wrap gap-2"),
				P(Class(mutedClass()+" mb-0"), Text("Browse, filter, and manage user accounts.")),
				A(Href("/admin/users/create"), Class(primaryButtonClass()), Text("New user")),
			),
		),
		Div(
			Class(cardClass("toolbar")),
			Div(
				Class("d-flex flex-wrap flex-items-center gap-2"),
				Label(Class("sr-only"), For("filter-name"), Text("Filter by username")),
				Input(ID("filter-name"), Type("search"), Class("form-control"), Placeholder("Filter by username"), AutoComplete("off")),
				Label(Class("sr-only"), For("filter-email"), Text("Filter by email")),
				Input(ID("filter-email"), Type("search"), Class("form-control"), Placeholder("Filter by email"), AutoComplete("off")),
				Label(Class("sr-only"), For("page-length"), Text("Rows per page")),
				Select(
					ID("page-length"),
					Class("form-select"),
					Option(Value("10"), Selected(), Text("10 rows")),
					Option(Value("25"), Text("25 rows")),
					Option(Value("50"), Text("50 rows")),
					Option(Value("100"), Text("100 rows")),
				),
			),
		),
		Div(
			Class(cardClass("table-wrap")),
			ID("users-table"),
			Data("fetch-url", fetchURL),
			Data("csrf", csrfToken),
			Table(
				Class("data-table"),
				THead(Tr(
					Th(Text("No")),
					Th(Text("Username")),
					Th(Text("Email")),
					Th(Text("Created")),
					Th(Text("Actions")),
				)),
				TBody(ID("users-tbody")),
			),
			Div(
				Class("table-footer d-flex flex-justify-between flex-items-center"),
				P(ID("users-summary"), Class(mutedClass()+" mb-0"), Text("Loading...")),
				Div(
					Class("d-flex gap-2"),
					Button(ID("users-prev"), Type("button"), Class(secondaryButtonClass()), Text("Previous")),
					Button(ID("users-next"), Type("button"), Class(secondaryButtonClass()), Text("Next")),
				),
			),
		),
		Script(Src("/admin/static/users.js"), Defer()),
	)
}

type userFormData struct {
	Title       string
	Action      string
	Username    string
	Email       string
	Active      bool
	Errors      map[string]string
	Permissions []domain.Permission
	Groups      []domain.Group
	CheckedPerm map[int64]bool
	CheckedGrp  map[int64]bool
	IsEdit      bool
}

func userFormPage(session domain.SessionUser, form userFormData, csrf Node) Node {
	passwordLabel := "Password"
	passwordHint := Node(nil)
	if form.IsEdit {
		passwordLabel = "New password"
		passwordHint = P(Class(mutedClass()), Text("Leave blank to keep the current password."))
	}

	permBoxes := make([]Node, 0, len(form.Permissions))
	for i := range form.Permissions {
		p := form.Permissions[i]
		permBoxes = append(permBoxes, checkboxRow("permissions", p.ID, p.Name, p.Description, form.CheckedPerm[p.ID], "pq"))
	}
	groupBoxes := make([]Node, 0, len(form.Groups))
	for i := range form.Groups {
		g := form.Groups[i]
		groupBoxes = append(groupBoxes, checkboxRow("groups", g.ID, g.Name, g.Description, form.CheckedGrp[g.ID], ""))
	}

	return appPage(
		form.Title,
		"users",
		session,
		nil,
		Div(
			Class(cardClass()),
			Form(
				Class("stack-form"),
				Method("post"),
				Action(form.Action),
				data.Signals(map[string]any{"pq": ""}),
				csrf,
				fieldGroup("Username", "username", form.Errors,
					Input(Name("username"), Class("form-control"), Value(form.Username), Required()),
				),
				fieldGroup("Email", "email", form.Errors,
					Input(Name("email"), Type("email"), Class("form-control"), Value(form.Email), Required()),
				),
				fieldGroup(passwordLabel, "password", form.Errors,
					Input(Name("password"), Type("password"), Class("form-control"), AutoComplete("new-password")),
				),
				fieldGroup("Confirm password", "pass_confirm", form.Errors,
					Input(Name("pass_confirm"), Type("password"), Class("form-control"), AutoComplete("new-password")),
				),
				passwordHint,
				Div(
					Class("form-group"),
					Label(
						Class("checkbox-row"),
						Input(Type("checkbox"), Name("active"), Value("1"), activeChecked(form.Active)),
						Span(Text("Active")),
					),
				),
				fieldSet("Permissions", "permission", form.Errors, permBoxes,
					Input(Type("search"), Class("form-control mb-2"), Placeholder("Filter permissions"), data.Bind("pq"), AutoComplete("off")),
				),
				fieldSet("Roles", "role", form.Errors, groupBoxes, nil),
				Div(
					Class("form-actions"),
					Button(Type("submit"), Class(primaryButtonClass()), Text("Save")),
					A(Href("/admin/users"), Class(secondaryButtonClass()), Text("Cancel")),
				),
			),
		),
	)
}

func fieldGroup(label, key string, errs map[string]string, control Node) Node {
	nodes := []Node{
		Label(Class("form-label"), Text(label)),
		control,
	}
	if msg := errs[key]; msg != "" {
		nodes = append(nodes, P(Class("field-error"), Text(msg)))
	}
	return Div(Class("form-group"), Group(nodes))
}

func fieldSet(legend, key string, errs map[string]string, boxes []Node, filter Node) Node {
	nodes := []Node{Legend(Text(legend))}
	if msg := errs[key]; msg != "" {
		nodes = append(nodes, P(Class("field-error"), Text(msg)))
	}
	if filter != nil {
		nodes = append(nodes, filter)
	}
	nodes = append(nodes, Div(Class("checkbox-grid"), Group(boxes)))
	return FieldSet(Class("form-group"), Group(nodes))
}

// checkboxRow renders one assignment option. When signal is non-empty the
// row hides unless its label matches the bound filter signal.
func checkboxRow(name string, id int64, label, description string, checked bool, signal string) Node {
	input := []Node{
		Type("checkbox"),
		Name(name),
		Value(strconv.FormatInt(id, 10)),
	}
	if checked {
		input = append(input, Checked())
	}
	row := []Node{
		Input(input...),
		Span(Text(label)),
	}
	if description != "" {
		row = append(row, Span(Class(mutedClass()), Text(" "+description)))
	}
	attrs := []Node{Class("checkbox-row")}
	if signal != "" {
		attrs = append(attrs, data.Show(containsExpr(label, signal)))
	}
	attrs = append(attrs, Group(row))
	return Label(attrs...)
}

func containsExpr(value, signal string) string {
	lower := strings.ToLower(value)
	return "$" + signal + " === '' || " + strconv.Quote(lower) + ".includes($" + signal + ".toLowerCase())"
}

func activeChecked(active bool) Node {
	if active {
		return Checked()
	}
	return nil
}
