package renderer

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patric-chuzhbe/biolink/internal/models"
	"github.com/patric-chuzhbe/biolink/internal/theme"
)

func testProfile() *models.Profile {
	return &models.Profile{
		ID:          "user-1",
		Username:    "tester",
		DisplayName: "The Tester",
		Bio:         "testing in production",
		ThemeID:     "default",
	}
}

func TestRenderNilProfile(t *testing.T) {
	page, err := Render(nil, nil, theme.NewRegistry())
	require.NoError(t, err)
	assert.Empty(t, page)
}

func TestRenderIsDeterministic(t *testing.T) {
	registry := theme.NewRegistry()
	profile := testProfile()
	links := []*models.Link{
		{ID: "a", Title: "First", URL: "https://example.com/1", IsEnabled: true, OrderIndex: 0},
		{ID: "b", Title: "Second", URL: "https://example.com/2", IsEnabled: true, OrderIndex: 1},
	}

	first, err := Render(profile, links, registry)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		again, err := Render(profile, links, registry)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestRenderFiltersAndOrdersLinks(t *testing.T) {
	links := []*models.Link{
		{ID: "c", Title: "Third", URL: "https://example.com/3", IsEnabled: true, OrderIndex: 7},
		{ID: "a", Title: "Hidden", URL: "https://example.com/hidden", IsEnabled: false, OrderIndex: 0},
		{ID: "b", Title: "First", URL: "https://example.com/1", IsEnabled: true, OrderIndex: 2},
	}

	page, err := Render(testProfile(), links, theme.NewRegistry())
	require.NoError(t, err)

	assert.NotContains(t, page, "Hidden")

	// Display indices are gapless and 1-based regardless of the stored
	// order index values.
	assert.Contains(t, page, `data-index="1">First</a>`)
	assert.Contains(t, page, `data-index="2">Third</a>`)
	assert.NotContains(t, page, `data-index="3"`)
	assert.Less(
		t,
		indexOf(page, "First"),
		indexOf(page, "Third"),
	)
}

func TestRenderButtonColorOverrides(t *testing.T) {
	type tTestCase struct {
		name             string
		themeID          string
		expectButtonBG   bool
		expectButtonText bool
	}
	testCases := []tTestCase{
		{name: "list layout honors both overrides", themeID: "default", expectButtonBG: true, expectButtonText: true},
		{name: "grid layout ignores the background override", themeID: "grid", expectButtonBG: false, expectButtonText: true},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			profile := testProfile()
			profile.ThemeID = testCase.themeID
			profile.ButtonColor = "#123456"
			profile.ButtonTextColor = "#abcdef"

			page, err := Render(profile, nil, theme.NewRegistry())
			require.NoError(t, err)

			assert.Equal(t, testCase.expectButtonBG, strings.Contains(page, "--btn-bg: #123456;"))
			assert.Equal(t, testCase.expectButtonText, strings.Contains(page, "--btn-text: #abcdef;"))
		})
	}
}

func TestRenderSocialLinks(t *testing.T) {
	profile := testProfile()
	profile.SocialEmail = "tester@example.com"
	profile.SocialTwitter = "https://x.com/tester"

	page, err := Render(profile, nil, theme.NewRegistry())
	require.NoError(t, err)

	assert.Contains(t, page, `href="mailto:tester@example.com"`)
	assert.Contains(t, page, `href="https://x.com/tester"`)
	assert.Less(t, indexOf(page, "fa-envelope"), indexOf(page, "fa-x-twitter"))
}

func TestRenderMailtoIsNotDoubled(t *testing.T) {
	profile := testProfile()
	profile.SocialEmail = "mailto:tester@example.com"

	page, err := Render(profile, nil, theme.NewRegistry())
	require.NoError(t, err)

	assert.Contains(t, page, `href="mailto:tester@example.com"`)
	assert.NotContains(t, page, "mailto:mailto:")
}

func TestRenderDefaults(t *testing.T) {
	page, err := Render(testProfile(), nil, theme.NewRegistry())
	require.NoError(t, err)

	assert.Contains(t, page, placeholderAvatarURL)
	assert.Contains(t, page, "@tester")
	assert.Contains(t, page, "Made with Bio.Link")
	assert.Contains(t, page, "function filterLinks")
}

func TestRenderBackgroundVideo(t *testing.T) {
	profile := testProfile()
	profile.ThemeID = "motion"

	page, err := Render(profile, nil, theme.NewRegistry())
	require.NoError(t, err)
	assert.Contains(t, page, "<video autoplay muted loop playsinline")

	profile.ThemeID = "default"
	page, err = Render(profile, nil, theme.NewRegistry())
	require.NoError(t, err)
	assert.NotContains(t, page, "<video")
}

func indexOf(haystack, needle string) int {
	return strings.Index(haystack, needle)
}

func ExampleRender() {
	profile := &models.Profile{
		Username: "tester",
		ThemeID:  "no-such-theme",
	}

	page, _ := Render(profile, nil, theme.NewRegistry())
	fmt.Println(strings.Contains(page, "@tester"))
	// Output: true
}
