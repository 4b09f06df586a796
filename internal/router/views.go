package router

import (
	"html/template"
	"net/http"

	"github.com/patric-chuzhbe/biolink/internal/auth"
	"github.com/patric-chuzhbe/biolink/internal/navigator"
	"github.com/patric-chuzhbe/biolink/internal/renderer"
)

var viewTemplate = template.Must(template.New("view").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
	<title>{{.Title}}</title>
</head>
<body data-view="{{.View}}">
	<main>
		<h1>{{.Heading}}</h1>
		{{if eq .View "auth"}}
		<form id="auth-form" method="post">
			<input type="email" name="email" placeholder="Email" required>
			<input type="password" name="password" placeholder="Password" required>
			<button type="submit">{{.SubmitLabel}}</button>
		</form>
		{{end}}
		{{if eq .View "onboarding"}}
		<form id="onboarding-form" method="post">
			<input type="text" name="username" placeholder="Choose your username" required>
			<input type="text" name="display_name" placeholder="Display name">
			<button type="submit">Claim my page</button>
		</form>
		{{end}}
		{{if eq .View "landing"}}
		<p>One page for all your links.</p>
		<p><a href="/signup">Create your page</a> or <a href="/login">log in</a>.</p>
		{{end}}
		{{if eq .View "dashboard"}}
		<div id="dashboard-root"></div>
		{{end}}
	</main>
</body>
</html>`))

var notFoundTemplate = template.Must(template.New("notfound").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
	<meta charset="UTF-8">
	<title>User not found</title>
</head>
<body>
	<main style="text-align:center; padding:60px 20px;">
		<h1>User not found</h1>
		<p>There is no page at this address.</p>
		<p><a href="/">Go to the home page</a></p>
	</main>
</body>
</html>`))

type viewData struct {
	View        string
	Title       string
	Heading     string
	SubmitLabel string
}

// getPage resolves the path through the navigator and renders the
// resulting view, follows the guard redirect, or serves a public page.
func (theRouter *Router) getPage(response http.ResponseWriter, request *http.Request) {
	session := auth.SessionFromContext(request.Context())
	resolution := navigator.Resolve(request.URL.Path, session)

	switch resolution.Action {
	case navigator.ActionRedirect:
		http.Redirect(response, request, resolution.RedirectTo, http.StatusFound)

	case navigator.ActionPublicProfile:
		theRouter.getPublicProfile(response, request, resolution.Username)

	default:
		theRouter.showView(response, resolution)
	}
}

func (theRouter *Router) showView(response http.ResponseWriter, resolution navigator.Resolution) {
	data := viewData{View: string(resolution.View)}

	switch resolution.View {
	case navigator.ViewLanding:
		data.Title = "Bio.Link"
		data.Heading = "Everything you are. In one simple link."
	case navigator.ViewAuth:
		data.Title = resolution.AuthTitle
		data.Heading = resolution.AuthTitle
		data.SubmitLabel = resolution.AuthSubmitLabel
	case navigator.ViewOnboarding:
		data.Title = "Claim your username"
		data.Heading = "Claim your username"
	case navigator.ViewDashboard:
		data.Title = "Dashboard"
		data.Heading = "Dashboard"
	}

	response.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := viewTemplate.Execute(response, data); err != nil {
		http.Error(response, err.Error(), http.StatusInternalServerError)
	}
}

func (theRouter *Router) getPublicProfile(response http.ResponseWriter, request *http.Request, username string) {
	profile, found, err := theRouter.db.GetProfileByUsername(request.Context(), username)
	if err != nil {
		http.Error(response, err.Error(), http.StatusInternalServerError)
		return
	}

	response.Header().Set("Content-Type", "text/html; charset=utf-8")

	if !found {
		response.WriteHeader(http.StatusNotFound)
		if err := notFoundTemplate.Execute(response, nil); err != nil {
			http.Error(response, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	links, err := theRouter.db.GetUserLinks(request.Context(), profile.ID)
	if err != nil {
		http.Error(response, err.Error(), http.StatusInternalServerError)
		return
	}

	page, err := renderer.Render(profile, links, theRouter.themes)
	if err != nil {
		http.Error(response, err.Error(), http.StatusInternalServerError)
		return
	}

	if _, err := response.Write([]byte(page)); err != nil {
		http.Error(response, err.Error(), http.StatusInternalServerError)
	}
}
