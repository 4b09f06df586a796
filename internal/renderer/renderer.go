// Package renderer turns a profile and its links into a complete,
// self-contained public page. Render is a pure function: identical inputs
// produce identical output, and the same document is used for the live
// editor preview and for the publicly served page.
package renderer

import (
	"fmt"
	"html/template"
	"sort"
	"strings"

	funk "github.com/thoas/go-funk"

	"github.com/patric-chuzhbe/biolink/internal/models"
	"github.com/patric-chuzhbe/biolink/internal/theme"
)

const placeholderAvatarURL = "https://via.placeholder.com/100"

type socialLink struct {
	Href      string
	IconClass string
}

type pageLink struct {
	URL   string
	Title string
	Icon  string

	// DisplayIndex is the 1-based position after filtering to enabled
	// links and sorting; it is independent of the stored order index.
	DisplayIndex int
}

type pageData struct {
	ThemeCSS    template.CSS
	VideoURL    string
	AvatarURL   string
	Username    string
	DisplayName string
	Bio         string
	Socials     []socialLink
	Links       []pageLink
	Grid        bool
}

// Render produces the public page document for the given profile and
// links. Unknown theme ids fall back to the default theme. The caller's
// slices are never mutated.
func Render(profile *models.Profile, links []*models.Link, registry *theme.Registry) (string, error) {
	if profile == nil {
		return "", nil
	}

	bundle := registry.Lookup(profile.ThemeID)

	data := pageData{
		ThemeCSS:    template.CSS(buildThemeCSS(bundle, profile)),
		VideoURL:    bundle.BackgroundVideoURL,
		AvatarURL:   profile.AvatarURL,
		Username:    profile.Username,
		DisplayName: profile.DisplayName,
		Bio:         profile.Bio,
		Socials:     buildSocialLinks(profile),
		Links:       buildPageLinks(links),
		Grid:        bundle.Layout == theme.LayoutGrid,
	}
	if data.AvatarURL == "" {
		data.AvatarURL = placeholderAvatarURL
	}

	var page strings.Builder
	if err := pageTemplate.Execute(&page, data); err != nil {
		return "", fmt.Errorf("in internal/renderer/renderer.go/Render(): error while `pageTemplate.Execute()` calling: %w", err)
	}

	return page.String(), nil
}

// buildThemeCSS emits the :root variable block followed by the theme's
// extra CSS. Variables are written in sorted order so the output is
// byte-stable. The button background override is ignored on the grid
// layout to preserve its white-card look; the text override always wins.
func buildThemeCSS(bundle theme.Theme, profile *models.Profile) string {
	variables := make(map[string]string, len(bundle.CSSVariables))
	for name, value := range bundle.CSSVariables {
		variables[name] = value
	}

	if profile.ButtonColor != "" && bundle.Layout != theme.LayoutGrid {
		variables[theme.VarButtonBG] = profile.ButtonColor
	}
	if profile.ButtonTextColor != "" {
		variables[theme.VarButtonText] = profile.ButtonTextColor
	}

	names := funk.Keys(variables).([]string)
	sort.Strings(names)

	var css strings.Builder
	css.WriteString(":root {\n")
	for _, name := range names {
		css.WriteString("\t" + name + ": " + variables[name] + ";\n")
	}
	css.WriteString("}\n")
	if bundle.ExtraCSS != "" {
		css.WriteString(bundle.ExtraCSS + "\n")
	}

	return css.String()
}

// buildSocialLinks emits one anchor per non-empty social field, always in
// the same platform order. A bare email address gets a mailto: scheme.
func buildSocialLinks(profile *models.Profile) []socialLink {
	socials := []socialLink{}

	if profile.SocialEmail != "" {
		href := profile.SocialEmail
		if !strings.HasPrefix(href, "mailto:") {
			href = "mailto:" + href
		}
		socials = append(socials, socialLink{Href: href, IconClass: "fa-regular fa-envelope"})
	}
	if profile.SocialInstagram != "" {
		socials = append(socials, socialLink{Href: profile.SocialInstagram, IconClass: "fa-brands fa-instagram"})
	}
	if profile.SocialYoutube != "" {
		socials = append(socials, socialLink{Href: profile.SocialYoutube, IconClass: "fa-brands fa-youtube"})
	}
	if profile.SocialTelegram != "" {
		socials = append(socials, socialLink{Href: profile.SocialTelegram, IconClass: "fa-brands fa-telegram"})
	}
	if profile.SocialTwitter != "" {
		socials = append(socials, socialLink{Href: profile.SocialTwitter, IconClass: "fa-brands fa-x-twitter"})
	}

	return socials
}

// buildPageLinks keeps enabled links only, sorts them by order index with
// the id as a stable tie-break, and assigns gapless 1-based display
// indices.
func buildPageLinks(links []*models.Link) []pageLink {
	enabled := funk.Filter(links, func(link *models.Link) bool {
		return link.IsEnabled
	}).([]*models.Link)

	sorted := make([]*models.Link, len(enabled))
	copy(sorted, enabled)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].OrderIndex != sorted[j].OrderIndex {
			return sorted[i].OrderIndex < sorted[j].OrderIndex
		}
		return sorted[i].ID < sorted[j].ID
	})

	result := make([]pageLink, 0, len(sorted))
	for i, link := range sorted {
		result = append(result, pageLink{
			URL:          link.URL,
			Title:        link.Title,
			Icon:         link.Icon,
			DisplayIndex: i + 1,
		})
	}

	return result
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<link rel="stylesheet" href="https://cdnjs.cloudflare.com/ajax/libs/font-awesome/6.4.0/css/all.min.css">
<link href="https://fonts.googleapis.com/css2?family=Outfit:wght@300;400;600&display=swap" rel="stylesheet">
<style>
{{.ThemeCSS}}
* { box-sizing: border-box; }
html, body {
	scrollbar-width: none;
	-ms-overflow-style: none;
	overflow-x: hidden;
}
html::-webkit-scrollbar, body::-webkit-scrollbar {
	display: none;
	width: 0;
	height: 0;
}
body {
	background: var(--bg);
	color: var(--text);
	font-family: 'Outfit', sans-serif;
	margin: 0;
	padding: 2rem;
	min-height: 100vh;
	display: flex;
	flex-direction: column;
	align-items: center;
}
.avatar {
	width: 96px; height: 96px; border-radius: 50%; object-fit: cover;
	margin-bottom: 1rem; border: 2px solid var(--text);
	z-index: 1;
}
h1 { font-size: 1.25rem; font-weight: 700; margin: 0 0 0.5rem 0; z-index: 1; }
p { opacity: 0.8; margin: 0 0 2rem 0; text-align: center; max-width: 400px; line-height: 1.6; z-index: 1; }
.social-icons { display: flex; gap: 1rem; margin-bottom: 2rem; z-index: 1; }
.social-icons a {
	color: var(--text); font-size: 1.5rem; text-decoration: none;
	opacity: 0.9; transition: opacity 0.2s;
}
.links { width: 100%; max-width: 480px; display: flex; flex-direction: column; gap: 1rem; z-index: 1; }
.link-btn {
	display: block;
	background: var(--btn-bg);
	color: var(--btn-text);
	text-decoration: none;
	padding: 1rem;
	text-align: center;
	border-radius: 12px;
	font-weight: 600;
	transition: transform 0.2s;
	backdrop-filter: blur(5px);
	border: 1px solid rgba(255,255,255,0.1);
}
.link-btn:hover { transform: scale(1.02); }
.branding { margin-top: 3rem; opacity: 0.5; font-size: 0.8rem; z-index: 1; }
.search-container {
	width: 100%;
	max-width: 480px;
	margin-bottom: 1.5rem;
	z-index: 1;
}
.search-input {
	width: 100%;
	padding: 1rem;
	border-radius: 12px;
	border: 1px solid var(--btn-text);
	background: var(--btn-bg);
	color: var(--btn-text);
	font-family: inherit;
	font-size: 1rem;
	backdrop-filter: blur(5px);
	outline: none;
	transition: all 0.2s;
}
.search-input::placeholder {
	color: var(--btn-text);
	opacity: 0.7;
}
.search-input:focus {
	box-shadow: 0 0 0 2px var(--btn-text);
	transform: translateY(-2px);
}
</style>
<script>
function filterLinks(query) {
	const links = document.querySelectorAll('.link-btn');
	const q = query.toLowerCase().trim();

	let searchIndex = null;
	if (q.startsWith('#')) {
		const num = parseInt(q.substring(1));
		if (!isNaN(num)) {
			searchIndex = num;
		}
	}

	links.forEach(link => {
		const text = link.innerText.toLowerCase();
		const index = parseInt(link.getAttribute('data-index'));

		let match = false;
		if (text.includes(q)) {
			match = true;
		}
		if (searchIndex !== null && index === searchIndex) {
			match = true;
		}

		link.style.display = match ? (link.classList.contains('grid-item') ? 'flex' : 'block') : 'none';
	});
}
</script>
</head>
<body>
{{if .VideoURL}}<video autoplay muted loop playsinline class="video-bg"><source src="{{.VideoURL}}" type="video/mp4"></video>
{{end}}<img src="{{.AvatarURL}}" class="avatar">
<h1>@{{.Username}}</h1>
<p>{{.DisplayName}}<br>{{.Bio}}</p>
<div class="social-icons">{{range .Socials}}<a href="{{.Href}}" target="_blank"><i class="{{.IconClass}}"></i></a>{{end}}</div>
<div class="search-container">
<input type="text" class="search-input" placeholder="Search links (e.g. 'Twitter' or '#1')" onkeyup="filterLinks(this.value)">
</div>
<div class="links">
{{range .Links}}{{if $.Grid}}<a href="{{.URL}}" target="_blank" class="link-btn grid-item" data-index="{{.DisplayIndex}}">
<div class="link-badge">#{{.DisplayIndex}}</div>
<div class="link-content">{{.Title}}</div>
</a>
{{else}}<a href="{{.URL}}" target="_blank" class="link-btn" data-index="{{.DisplayIndex}}">{{if .Icon}}<i class="{{.Icon}}"></i> {{end}}{{.Title}}</a>
{{end}}{{end}}</div>
<div class="branding">Made with Bio.Link</div>
</body>
</html>
`))
