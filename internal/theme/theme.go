// Package theme defines the immutable style bundles a profile can pick
// from. A theme is pure data: CSS variables, optional extra CSS, an
// optional background video and a layout variant. The renderer branches
// on the data, never on theme IDs.
package theme

// LayoutVariant selects how the link list is rendered.
type LayoutVariant string

// Supported layout variants.
const (
	LayoutList LayoutVariant = "list"
	LayoutGrid LayoutVariant = "grid"
)

// DefaultThemeID is the fallback used for an empty or unknown theme id.
const DefaultThemeID = "default"

// Names of the CSS variables every theme defines.
const (
	VarBackground = "--bg"
	VarText       = "--text"
	VarButtonBG   = "--btn-bg"
	VarButtonText = "--btn-text"
)

// Theme is one immutable style bundle.
type Theme struct {
	ID                 string
	CSSVariables       map[string]string
	ExtraCSS           string
	BackgroundVideoURL string
	Layout             LayoutVariant
}

// Registry maps theme IDs to bundles.
type Registry struct {
	themes map[string]Theme
}

// NewRegistry returns a registry populated with the built-in themes.
func NewRegistry() *Registry {
	registry := &Registry{themes: map[string]Theme{}}
	for _, t := range builtinThemes {
		registry.themes[t.ID] = t
	}

	return registry
}

// Lookup resolves a theme id to its bundle. An empty or unknown id
// resolves to the default theme.
func (registry *Registry) Lookup(themeID string) Theme {
	if t, found := registry.themes[themeID]; found {
		return t
	}

	return registry.themes[DefaultThemeID]
}

// IDs returns the ids of all registered themes, for the editor's theme
// picker. Order is unspecified.
func (registry *Registry) IDs() []string {
	ids := make([]string, 0, len(registry.themes))
	for id := range registry.themes {
		ids = append(ids, id)
	}

	return ids
}

func vars(bg, text, btnBG, btnText string) map[string]string {
	return map[string]string{
		VarBackground: bg,
		VarText:       text,
		VarButtonBG:   btnBG,
		VarButtonText: btnText,
	}
}

var builtinThemes = []Theme{
	{
		ID:           DefaultThemeID,
		CSSVariables: vars("#fff", "#000", "#f8f9fa", "#000"),
		Layout:       LayoutList,
	},
	{
		ID:           "dark",
		CSSVariables: vars("#111", "#fff", "#222", "#fff"),
		Layout:       LayoutList,
	},
	{
		ID:           "gradient-blue",
		CSSVariables: vars("linear-gradient(135deg, #667eea 0%, #764ba2 100%)", "#fff", "rgba(255,255,255,0.2)", "#fff"),
		Layout:       LayoutList,
	},
	{
		ID:           "forest",
		CSSVariables: vars("#1a2f23", "#e2e8f0", "#2d4a3e", "#fff"),
		Layout:       LayoutList,
	},
	{
		ID:           "sunset",
		CSSVariables: vars("linear-gradient(120deg, #f6d365 0%, #fda085 100%)", "#fff", "rgba(255,255,255,0.3)", "#fff"),
		Layout:       LayoutList,
	},
	{
		ID:           "ocean",
		CSSVariables: vars("linear-gradient(to top, #30cfd0 0%, #330867 100%)", "#fff", "rgba(255,255,255,0.2)", "#fff"),
		Layout:       LayoutList,
	},
	{
		ID:           "aurora",
		CSSVariables: vars("linear-gradient(-45deg, #ee7752, #e73c7e, #23a6d5, #23d5ab)", "#fff", "rgba(255,255,255,0.25)", "#fff"),
		ExtraCSS: `@keyframes gradient {
	0% { background-position: 0% 50%; }
	50% { background-position: 100% 50%; }
	100% { background-position: 0% 50%; }
}
body {
	background-size: 400% 400% !important;
	animation: gradient 15s ease infinite;
}`,
		Layout: LayoutList,
	},
	{
		ID:           "galaxy",
		CSSVariables: vars("linear-gradient(to right, #243949 0%, #517fa4 100%)", "#e0f2fe", "rgba(0,0,0,0.3)", "#fff"),
		ExtraCSS:     `.link-btn { border: 1px solid rgba(255,255,255,0.1); }`,
		Layout:       LayoutList,
	},
	{
		ID:           "luxury",
		CSSVariables: vars("linear-gradient(to bottom, #141e30, #243b55)", "#f0e68c", "rgba(0,0,0,0.6)", "#ffd700"),
		ExtraCSS: `.link-btn { border: 1px solid #ffd700; letter-spacing: 1px; text-transform: uppercase; }
.avatar { border-color: #ffd700 !important; }`,
		Layout: LayoutList,
	},
	{
		ID:                 "motion",
		CSSVariables:       vars("#000", "#fff", "rgba(255, 255, 255, 0.15)", "#fff"),
		BackgroundVideoURL: "/background-video.mp4",
		ExtraCSS: videoBackgroundCSS("brightness(0.6)") + `
.link-btn {
	backdrop-filter: blur(10px);
	-webkit-backdrop-filter: blur(10px);
	border: 1px solid rgba(255, 255, 255, 0.2);
}`,
		Layout: LayoutList,
	},
	{
		ID:                 "motion-2",
		CSSVariables:       vars("#000", "#fff", "rgba(20, 20, 20, 0.6)", "#fff"),
		BackgroundVideoURL: "/background-video-2.mp4",
		ExtraCSS: videoBackgroundCSS("brightness(0.5) contrast(1.1)") + `
.link-btn {
	backdrop-filter: blur(5px);
	-webkit-backdrop-filter: blur(5px);
	border: 1px solid rgba(255, 255, 255, 0.1);
}`,
		Layout: LayoutList,
	},
	{
		ID:                 "motion-3",
		CSSVariables:       vars("#000", "#fff", "rgba(255, 255, 255, 0.1)", "#fff"),
		BackgroundVideoURL: "/background-video-3.mp4",
		ExtraCSS: videoBackgroundCSS("saturate(1.2)") + `
.link-btn {
	backdrop-filter: blur(20px);
	-webkit-backdrop-filter: blur(20px);
	border: 1px solid rgba(255, 255, 255, 0.3);
	border-radius: 30px;
}`,
		Layout: LayoutList,
	},
	{
		ID:                 "motion-4",
		CSSVariables:       vars("#000", "#e2e8f0", "rgba(0, 0, 0, 0.7)", "#fff"),
		BackgroundVideoURL: "/background-video-4.mp4",
		ExtraCSS: videoBackgroundCSS("grayscale(0.5) brightness(0.7)") + `
.link-btn {
	backdrop-filter: blur(5px);
	-webkit-backdrop-filter: blur(5px);
	border-left: 4px solid #f43f5e;
	border-radius: 4px;
}`,
		Layout: LayoutList,
	},
	{
		ID:           "grid",
		CSSVariables: vars("#f8fafc", "#0f172a", "#fff", "#1e293b"),
		ExtraCSS: `body { max-width: 100%; padding: 2rem 1rem; }
.links {
	display: grid;
	grid-template-columns: repeat(auto-fill, minmax(130px, 1fr));
	gap: 1rem;
	width: 100%;
	max-width: 1000px;
}
.link-btn {
	background: white;
	color: var(--text);
	border-radius: 8px;
	padding: 1rem;
	box-shadow: 0 1px 3px rgba(0,0,0,0.1);
	transition: transform 0.2s, box-shadow 0.2s;
	display: flex;
	flex-direction: column;
	align-items: center;
	justify-content: center;
	text-align: center;
	position: relative;
	border: 1px solid #e2e8f0;
	min-height: 80px;
	text-decoration: none;
	font-weight: 600;
}
.link-btn:hover {
	transform: translateY(-2px);
	box-shadow: 0 4px 6px -1px rgba(0,0,0,0.1);
	border-color: #cbd5e1;
}
.link-badge {
	position: absolute;
	top: 0.25rem;
	left: 0.25rem;
	background: #fbbf24;
	color: #000;
	font-weight: 700;
	font-size: 0.75rem;
	padding: 2px 6px;
	border-radius: 4px;
}
.link-content {
	margin-top: 0.5rem;
	word-break: break-word;
}`,
		Layout: LayoutGrid,
	},
}

func videoBackgroundCSS(filter string) string {
	return `.video-bg {
	position: fixed;
	right: 0;
	bottom: 0;
	min-width: 100%;
	min-height: 100%;
	z-index: -1;
	object-fit: cover;
	filter: ` + filter + `;
}`
}
