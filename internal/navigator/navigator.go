// Package navigator resolves URL paths to views. It is the single entry
// point for all navigation, so the auth-guard redirects and the
// public-username fallback are never duplicated: programmatic redirects
// and browser back/forward both re-enter Resolve.
package navigator

import (
	"regexp"
	"strings"

	"github.com/patric-chuzhbe/biolink/internal/identity"
)

// View identifies one of the internal views.
type View string

// The internal views.
const (
	ViewLanding    View = "landing"
	ViewAuth       View = "auth"
	ViewOnboarding View = "onboarding"
	ViewDashboard  View = "dashboard"
)

// Action says what the caller must do with a resolution.
type Action int

// Possible resolution actions.
const (
	// ActionShowView activates an internal view.
	ActionShowView Action = iota

	// ActionRedirect re-enters Resolve at RedirectTo.
	ActionRedirect

	// ActionPublicProfile renders the public page of Username, with no
	// auth check at all.
	ActionPublicProfile
)

// Resolution is the outcome of resolving one path.
type Resolution struct {
	Action     Action
	View       View
	RedirectTo string
	Username   string

	// AuthTitle and AuthSubmitLabel carry the auth form copy, set only
	// when View is ViewAuth.
	AuthTitle       string
	AuthSubmitLabel string

	// LoadDashboard is set when activating the dashboard view, which
	// triggers the full profile+links load.
	LoadDashboard bool
}

// The static route table. Unmatched internal paths fall back to landing.
var routes = map[string]View{
	"/":           ViewLanding,
	"/login":      ViewAuth,
	"/signup":     ViewAuth,
	"/onboarding": ViewOnboarding,
	"/dashboard":  ViewDashboard,
}

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// Resolve maps a path and the current session to a resolution.
//
// Order matters: a single-segment path that is not a known internal route
// is a public-profile path and bypasses the auth guard entirely; then the
// guard redirects apply; then the static route table.
func Resolve(path string, session *identity.Session) Resolution {
	if _, known := routes[path]; !known && len(path) > 1 {
		username := strings.TrimPrefix(path, "/")
		if usernamePattern.MatchString(username) {
			return Resolution{
				Action:   ActionPublicProfile,
				Username: username,
			}
		}
	}

	if session != nil && (path == "/" || path == "/login" || path == "/signup") {
		return Resolution{Action: ActionRedirect, RedirectTo: "/dashboard"}
	}
	if session == nil && path == "/dashboard" {
		return Resolution{Action: ActionRedirect, RedirectTo: "/login"}
	}

	view, found := routes[path]
	if !found {
		view = ViewLanding
	}

	resolution := Resolution{
		Action: ActionShowView,
		View:   view,
	}

	switch view {
	case ViewDashboard:
		resolution.LoadDashboard = true
	case ViewAuth:
		if path == "/signup" {
			resolution.AuthTitle = "Create your account"
			resolution.AuthSubmitLabel = "Create Account"
		} else {
			resolution.AuthTitle = "Welcome back"
			resolution.AuthSubmitLabel = "Log in"
		}
	}

	return resolution
}
