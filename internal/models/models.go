// Package models defines the document shapes shared between the editor,
// the renderer and the storage backends. The json tags are the wire
// contract with the document store and must not be changed.
package models

import "errors"

// Profile is the per-user public page document. Exactly one profile
// exists per user; ID equals the owning user's ID.
type Profile struct {
	ID              string `json:"id"`
	Username        string `json:"username"`
	DisplayName     string `json:"display_name"`
	Bio             string `json:"bio"`
	AvatarURL       string `json:"avatar_url"`
	ThemeID         string `json:"theme_id"`
	ButtonColor     string `json:"button_color"`
	ButtonTextColor string `json:"button_text_color"`
	SocialEmail     string `json:"social_email"`
	SocialInstagram string `json:"social_instagram"`
	SocialYoutube   string `json:"social_youtube"`
	SocialTelegram  string `json:"social_telegram"`
	SocialTwitter   string `json:"social_twitter"`
}

// Link is a single outbound link belonging to a profile.
// OrderIndex defines ascending display order; it is a sort key, not a
// dense sequence — readers must sort, never index by it.
type Link struct {
	ID         string `json:"id"`
	UserID     string `json:"user_id"`
	Title      string `json:"title"`
	URL        string `json:"url"`
	IsEnabled  bool   `json:"is_enabled"`
	OrderIndex int    `json:"order_index"`
	ImageURL   string `json:"image_url"`
	Icon       string `json:"icon"`
}

// Wire field names of the Profile document.
const (
	FieldUsername        = "username"
	FieldDisplayName     = "display_name"
	FieldBio             = "bio"
	FieldAvatarURL       = "avatar_url"
	FieldThemeID         = "theme_id"
	FieldButtonColor     = "button_color"
	FieldButtonTextColor = "button_text_color"
	FieldSocialEmail     = "social_email"
	FieldSocialInstagram = "social_instagram"
	FieldSocialYoutube   = "social_youtube"
	FieldSocialTelegram  = "social_telegram"
	FieldSocialTwitter   = "social_twitter"
)

// Wire field names of the Link document.
const (
	LinkFieldTitle      = "title"
	LinkFieldURL        = "url"
	LinkFieldIsEnabled  = "is_enabled"
	LinkFieldOrderIndex = "order_index"
	LinkFieldImageURL   = "image_url"
	LinkFieldIcon       = "icon"
)

// ProfilePatch is a partial profile update keyed by wire field names.
type ProfilePatch map[string]any

// LinkPatch is a partial link update keyed by wire field names.
type LinkPatch map[string]any

// debouncedProfileFields are the keystroke-driven fields whose writes are
// coalesced by the persistence gateway. Everything else persists
// immediately.
var debouncedProfileFields = map[string]bool{
	FieldDisplayName:     true,
	FieldBio:             true,
	FieldSocialEmail:     true,
	FieldSocialInstagram: true,
	FieldSocialYoutube:   true,
	FieldSocialTelegram:  true,
	FieldSocialTwitter:   true,
}

// IsDebounced reports whether every field of the patch is keystroke-driven
// and the patch should therefore be coalesced rather than written at once.
func (p ProfilePatch) IsDebounced() bool {
	if len(p) == 0 {
		return false
	}
	for field := range p {
		if !debouncedProfileFields[field] {
			return false
		}
	}
	return true
}

func patchString(value any) string {
	if value == nil {
		return ""
	}
	s, _ := value.(string)
	return s
}

// Apply copies the patch fields onto the profile. Unknown fields are
// ignored; a nil value clears the field. The username and the id are
// fixed at creation and cannot be patched.
func (profile *Profile) Apply(patch ProfilePatch) {
	for field, value := range patch {
		switch field {
		case FieldDisplayName:
			profile.DisplayName = patchString(value)
		case FieldBio:
			profile.Bio = patchString(value)
		case FieldAvatarURL:
			profile.AvatarURL = patchString(value)
		case FieldThemeID:
			profile.ThemeID = patchString(value)
		case FieldButtonColor:
			profile.ButtonColor = patchString(value)
		case FieldButtonTextColor:
			profile.ButtonTextColor = patchString(value)
		case FieldSocialEmail:
			profile.SocialEmail = patchString(value)
		case FieldSocialInstagram:
			profile.SocialInstagram = patchString(value)
		case FieldSocialYoutube:
			profile.SocialYoutube = patchString(value)
		case FieldSocialTelegram:
			profile.SocialTelegram = patchString(value)
		case FieldSocialTwitter:
			profile.SocialTwitter = patchString(value)
		}
	}
}

// Apply copies the patch fields onto the link. Unknown fields are ignored.
func (link *Link) Apply(patch LinkPatch) {
	for field, value := range patch {
		switch field {
		case LinkFieldTitle:
			link.Title = patchString(value)
		case LinkFieldURL:
			link.URL = patchString(value)
		case LinkFieldImageURL:
			link.ImageURL = patchString(value)
		case LinkFieldIcon:
			link.Icon = patchString(value)
		case LinkFieldIsEnabled:
			enabled, _ := value.(bool)
			link.IsEnabled = enabled
		case LinkFieldOrderIndex:
			switch index := value.(type) {
			case int:
				link.OrderIndex = index
			case float64:
				link.OrderIndex = int(index)
			}
		}
	}
}

// Storage backend kinds selectable through the configuration.
const (
	StorageTypeUnknown = iota
	StorageTypePostgresql
	StorageTypeFile
	StorageTypeMemory
)

// ErrProfileNotFound marks the expected "no profile yet" outcome after
// account creation. Callers route it to onboarding, not to an error path.
var ErrProfileNotFound = errors.New("profile not found")

// ErrUsernameTaken is returned by profile creation when the username or
// the owner already has a profile.
var ErrUsernameTaken = errors.New("username already taken")

// ErrLinkNotFound is returned for operations on an unknown link ID.
var ErrLinkNotFound = errors.New("link not found")

// ErrImageTooLarge rejects uploads over the size limit before any
// collaborator call is made.
var ErrImageTooLarge = errors.New("image too large (max 2MB)")

// ErrRemovalNotConfirmed is returned when a link delete arrives without
// the explicit user confirmation.
var ErrRemovalNotConfirmed = errors.New("link removal requires confirmation")
