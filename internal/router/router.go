// Package router wires the HTTP surface: the page routes resolved
// through the navigator, the public profile pages and the JSON API the
// dashboard runs on.
package router

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"

	"github.com/patric-chuzhbe/biolink/internal/auth"
	"github.com/patric-chuzhbe/biolink/internal/db/storage"
	"github.com/patric-chuzhbe/biolink/internal/editor"
	"github.com/patric-chuzhbe/biolink/internal/gzippedhttp"
	"github.com/patric-chuzhbe/biolink/internal/identity"
	"github.com/patric-chuzhbe/biolink/internal/ipchecker"
	"github.com/patric-chuzhbe/biolink/internal/logger"
	"github.com/patric-chuzhbe/biolink/internal/models"
	"github.com/patric-chuzhbe/biolink/internal/notifier"
	"github.com/patric-chuzhbe/biolink/internal/theme"
)

// Router holds the collaborators shared by all handlers.
type Router struct {
	db       storage.Storage
	identity identity.Provider
	auth     *auth.Auth
	sessions *editor.Registry
	themes   *theme.Registry
	checker  *ipchecker.IPChecker
	mediaDir string
}

// New assembles the chi mux with all routes and middleware.
func New(
	db storage.Storage,
	identityProvider identity.Provider,
	authService *auth.Auth,
	sessions *editor.Registry,
	themes *theme.Registry,
	checker *ipchecker.IPChecker,
	mediaDir string,
) http.Handler {
	theRouter := &Router{
		db:       db,
		identity: identityProvider,
		auth:     authService,
		sessions: sessions,
		themes:   themes,
		checker:  checker,
		mediaDir: mediaDir,
	}

	// A closed identity session must not strand debounced edits in a
	// timer; any sign-out flushes every live editing session.
	identityProvider.OnSessionChange(func(session *identity.Session) {
		if session == nil {
			theRouter.sessions.FlushAll(context.Background())
		}
	})

	mux := chi.NewRouter()
	mux.Use(logger.WithLoggingHTTPMiddleware)
	mux.Use(gzippedhttp.UngzipRequest)
	mux.Use(gzippedhttp.GzipResponse)
	mux.Use(authService.WithSession)

	mux.Get(`/`, theRouter.getPage)
	mux.Get(`/login`, theRouter.getPage)
	mux.Get(`/signup`, theRouter.getPage)
	mux.Get(`/onboarding`, theRouter.getPage)
	mux.Get(`/dashboard`, theRouter.getPage)
	mux.Get(`/{username}`, theRouter.getPage)

	mux.Handle(`/media/*`, http.StripPrefix(`/media/`, http.FileServer(http.Dir(mediaDir))))

	mux.Get(`/ping`, theRouter.getPing)

	mux.Route(`/api`, func(api chi.Router) {
		api.Post(`/auth/signup`, theRouter.postSignUp)
		api.Post(`/auth/login`, theRouter.postLogin)
		api.Post(`/auth/verify`, theRouter.postVerify)
		api.Post(`/auth/logout`, theRouter.postLogout)

		api.Post(`/onboarding`, theRouter.postOnboarding)

		api.Get(`/dashboard`, theRouter.getDashboard)
		api.Patch(`/profile`, theRouter.patchProfile)
		api.Post(`/profile/avatar`, theRouter.postAvatar)
		api.Get(`/themes`, theRouter.getThemes)
		api.Get(`/preview`, theRouter.getPreview)
		api.Get(`/notices`, theRouter.getNotices)

		api.Post(`/links`, theRouter.postLink)
		api.Patch(`/links/{linkID}`, theRouter.patchLink)
		api.Delete(`/links/{linkID}`, theRouter.deleteLink)
		api.Post(`/links/{linkID}/image`, theRouter.postLinkImage)

		api.Get(`/internal/stats`, theRouter.getInternalStats)
	})

	return mux
}

func writeJSON(response http.ResponseWriter, statusCode int, payload any) {
	response.Header().Set("Content-Type", "application/json")
	response.WriteHeader(statusCode)
	if err := json.NewEncoder(response).Encode(payload); err != nil {
		logger.Log.Errorln("response encoding failed:", err)
	}
}

func writeJSONError(response http.ResponseWriter, statusCode int, message string) {
	writeJSON(response, statusCode, map[string]string{"error": message})
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (theRouter *Router) establishSession(response http.ResponseWriter, session *identity.Session) bool {
	if err := theRouter.auth.SetSessionCookie(response, session); err != nil {
		logger.Log.Errorln("session cookie signing failed:", err)
		writeJSONError(response, http.StatusInternalServerError, "could not establish session")
		return false
	}

	return true
}

func (theRouter *Router) postSignUp(response http.ResponseWriter, request *http.Request) {
	var credentials credentialsRequest
	if err := json.NewDecoder(request.Body).Decode(&credentials); err != nil {
		writeJSONError(response, http.StatusBadRequest, "invalid request body")
		return
	}

	session, confirmationPending, err := theRouter.identity.SignUp(request.Context(), credentials.Email, credentials.Password)
	if err != nil {
		if errors.Is(err, identity.ErrEmailTaken) {
			writeJSONError(response, http.StatusConflict, err.Error())
			return
		}
		logger.Log.Errorln("sign-up failed:", err)
		writeJSONError(response, http.StatusInternalServerError, "sign-up failed")
		return
	}

	if confirmationPending {
		writeJSON(response, http.StatusAccepted, map[string]bool{"confirmation_pending": true})
		return
	}

	if !theRouter.establishSession(response, session) {
		return
	}
	writeJSON(response, http.StatusCreated, session)
}

func (theRouter *Router) postLogin(response http.ResponseWriter, request *http.Request) {
	var credentials credentialsRequest
	if err := json.NewDecoder(request.Body).Decode(&credentials); err != nil {
		writeJSONError(response, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := theRouter.identity.SignIn(request.Context(), credentials.Email, credentials.Password)
	if err != nil {
		switch {
		case errors.Is(err, identity.ErrInvalidCredentials):
			writeJSONError(response, http.StatusUnauthorized, err.Error())
		case errors.Is(err, identity.ErrConfirmationPending):
			writeJSONError(response, http.StatusForbidden, err.Error())
		default:
			logger.Log.Errorln("sign-in failed:", err)
			writeJSONError(response, http.StatusInternalServerError, "sign-in failed")
		}
		return
	}

	if !theRouter.establishSession(response, session) {
		return
	}
	writeJSON(response, http.StatusOK, session)
}

func (theRouter *Router) postVerify(response http.ResponseWriter, request *http.Request) {
	var verification struct {
		Email string `json:"email"`
		Code  string `json:"code"`
	}
	if err := json.NewDecoder(request.Body).Decode(&verification); err != nil {
		writeJSONError(response, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := theRouter.identity.VerifyOneTimeCode(request.Context(), verification.Email, verification.Code)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			writeJSONError(response, http.StatusUnauthorized, err.Error())
			return
		}
		logger.Log.Errorln("one-time code verification failed:", err)
		writeJSONError(response, http.StatusInternalServerError, "verification failed")
		return
	}

	if !theRouter.establishSession(response, session) {
		return
	}
	writeJSON(response, http.StatusOK, session)
}

func (theRouter *Router) postLogout(response http.ResponseWriter, request *http.Request) {
	if session := auth.SessionFromContext(request.Context()); session != nil {
		theRouter.sessions.Drop(request.Context(), session.UserID)
	}

	theRouter.identity.SignOut()
	theRouter.auth.ClearSessionCookie(response)
	response.WriteHeader(http.StatusNoContent)
}

// requireSession returns the editing session of the authenticated user,
// or nil after writing the 401.
func (theRouter *Router) requireSession(response http.ResponseWriter, request *http.Request) *editor.Session {
	session := auth.SessionFromContext(request.Context())
	if session == nil {
		writeJSONError(response, http.StatusUnauthorized, "authentication required")
		return nil
	}

	return theRouter.sessions.Get(session.UserID)
}

func (theRouter *Router) postOnboarding(response http.ResponseWriter, request *http.Request) {
	editorSession := theRouter.requireSession(response, request)
	if editorSession == nil {
		return
	}

	var onboarding struct {
		Username    string `json:"username"`
		DisplayName string `json:"display_name"`
	}
	if err := json.NewDecoder(request.Body).Decode(&onboarding); err != nil {
		writeJSONError(response, http.StatusBadRequest, "invalid request body")
		return
	}
	if onboarding.Username == "" {
		writeJSONError(response, http.StatusBadRequest, "username is required")
		return
	}

	if err := editorSession.CreateProfile(request.Context(), onboarding.Username, onboarding.DisplayName); err != nil {
		if errors.Is(err, models.ErrUsernameTaken) {
			writeJSONError(response, http.StatusConflict, err.Error())
			return
		}
		logger.Log.Errorln("profile creation failed:", err)
		writeJSONError(response, http.StatusInternalServerError, "profile creation failed")
		return
	}

	writeJSON(response, http.StatusCreated, editorSession.Snapshot())
}

func (theRouter *Router) getDashboard(response http.ResponseWriter, request *http.Request) {
	editorSession := theRouter.requireSession(response, request)
	if editorSession == nil {
		return
	}

	if err := editorSession.Load(request.Context()); err != nil {
		if errors.Is(err, models.ErrProfileNotFound) {
			writeJSONError(response, http.StatusNotFound, err.Error())
			return
		}
		logger.Log.Errorln("dashboard load failed:", err)
		writeJSONError(response, http.StatusInternalServerError, "dashboard load failed")
		return
	}

	editorSession.Notify(notifier.SeverityInfo, "Dashboard loaded")
	writeJSON(response, http.StatusOK, editorSession.Snapshot())
}

func (theRouter *Router) patchProfile(response http.ResponseWriter, request *http.Request) {
	editorSession := theRouter.requireSession(response, request)
	if editorSession == nil {
		return
	}

	var patch models.ProfilePatch
	if err := json.NewDecoder(request.Body).Decode(&patch); err != nil {
		writeJSONError(response, http.StatusBadRequest, "invalid request body")
		return
	}

	editorSession.ApplyProfilePatch(request.Context(), patch)
	writeJSON(response, http.StatusAccepted, editorSession.Snapshot().Profile)
}

func (theRouter *Router) getPreview(response http.ResponseWriter, request *http.Request) {
	editorSession := theRouter.requireSession(response, request)
	if editorSession == nil {
		return
	}

	response.Header().Set("Content-Type", "text/html; charset=utf-8")
	response.WriteHeader(http.StatusOK)
	if _, err := response.Write([]byte(editorSession.Preview())); err != nil {
		logger.Log.Errorln("preview write failed:", err)
	}
}

func (theRouter *Router) getNotices(response http.ResponseWriter, request *http.Request) {
	editorSession := theRouter.requireSession(response, request)
	if editorSession == nil {
		return
	}

	writeJSON(response, http.StatusOK, editorSession.Notices())
}

func (theRouter *Router) postLink(response http.ResponseWriter, request *http.Request) {
	editorSession := theRouter.requireSession(response, request)
	if editorSession == nil {
		return
	}

	link, err := editorSession.AddLink(request.Context())
	if err != nil {
		logger.Log.Errorln("link creation failed:", err)
		writeJSONError(response, http.StatusInternalServerError, "link creation failed")
		return
	}

	writeJSON(response, http.StatusCreated, link)
}

func (theRouter *Router) patchLink(response http.ResponseWriter, request *http.Request) {
	editorSession := theRouter.requireSession(response, request)
	if editorSession == nil {
		return
	}

	var patch models.LinkPatch
	if err := json.NewDecoder(request.Body).Decode(&patch); err != nil {
		writeJSONError(response, http.StatusBadRequest, "invalid request body")
		return
	}

	linkID := chi.URLParam(request, "linkID")
	for field, value := range patch {
		if err := editorSession.UpdateLinkField(request.Context(), linkID, field, value); err != nil {
			if errors.Is(err, models.ErrLinkNotFound) {
				writeJSONError(response, http.StatusNotFound, err.Error())
				return
			}
			logger.Log.Errorln("link update failed:", err)
			writeJSONError(response, http.StatusInternalServerError, "link update failed")
			return
		}
	}

	response.WriteHeader(http.StatusNoContent)
}

func (theRouter *Router) deleteLink(response http.ResponseWriter, request *http.Request) {
	editorSession := theRouter.requireSession(response, request)
	if editorSession == nil {
		return
	}

	linkID := chi.URLParam(request, "linkID")
	confirmed := request.URL.Query().Get("confirm") == "true"

	if err := editorSession.RemoveLink(request.Context(), linkID, confirmed); err != nil {
		switch {
		case errors.Is(err, models.ErrRemovalNotConfirmed):
			writeJSONError(response, http.StatusBadRequest, err.Error())
		case errors.Is(err, models.ErrLinkNotFound):
			writeJSONError(response, http.StatusNotFound, err.Error())
		default:
			logger.Log.Errorln("link removal failed:", err)
			writeJSONError(response, http.StatusInternalServerError, "link removal failed")
		}
		return
	}

	response.WriteHeader(http.StatusNoContent)
}

func (theRouter *Router) postLinkImage(response http.ResponseWriter, request *http.Request) {
	editorSession := theRouter.requireSession(response, request)
	if editorSession == nil {
		return
	}

	fileName := request.URL.Query().Get("filename")
	if fileName == "" {
		writeJSONError(response, http.StatusBadRequest, "filename query parameter is required")
		return
	}

	data, err := io.ReadAll(request.Body)
	if err != nil {
		writeJSONError(response, http.StatusBadRequest, "could not read upload body")
		return
	}

	linkID := chi.URLParam(request, "linkID")
	link, err := editorSession.UploadLinkImage(request.Context(), linkID, fileName, data)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrImageTooLarge):
			writeJSONError(response, http.StatusRequestEntityTooLarge, err.Error())
		case errors.Is(err, models.ErrLinkNotFound):
			writeJSONError(response, http.StatusNotFound, err.Error())
		default:
			logger.Log.Errorln("image upload failed:", err)
			writeJSONError(response, http.StatusInternalServerError, "image upload failed")
		}
		return
	}

	writeJSON(response, http.StatusOK, link)
}

func (theRouter *Router) postAvatar(response http.ResponseWriter, request *http.Request) {
	editorSession := theRouter.requireSession(response, request)
	if editorSession == nil {
		return
	}

	fileName := request.URL.Query().Get("filename")
	if fileName == "" {
		writeJSONError(response, http.StatusBadRequest, "filename query parameter is required")
		return
	}

	data, err := io.ReadAll(request.Body)
	if err != nil {
		writeJSONError(response, http.StatusBadRequest, "could not read upload body")
		return
	}

	profile, err := editorSession.UploadAvatar(request.Context(), fileName, data)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrImageTooLarge):
			writeJSONError(response, http.StatusRequestEntityTooLarge, err.Error())
		case errors.Is(err, models.ErrProfileNotFound):
			writeJSONError(response, http.StatusNotFound, err.Error())
		default:
			logger.Log.Errorln("avatar upload failed:", err)
			writeJSONError(response, http.StatusInternalServerError, "avatar upload failed")
		}
		return
	}

	writeJSON(response, http.StatusOK, profile)
}

// getThemes lists the available theme ids for the dashboard's picker.
func (theRouter *Router) getThemes(response http.ResponseWriter, request *http.Request) {
	if theRouter.requireSession(response, request) == nil {
		return
	}

	ids := theRouter.themes.IDs()
	sort.Strings(ids)

	writeJSON(response, http.StatusOK, ids)
}

func (theRouter *Router) getPing(response http.ResponseWriter, request *http.Request) {
	if err := theRouter.db.Ping(request.Context()); err != nil {
		logger.Log.Errorln("storage ping failed:", err)
		response.WriteHeader(http.StatusInternalServerError)
		return
	}

	response.WriteHeader(http.StatusOK)
}

func (theRouter *Router) getInternalStats(response http.ResponseWriter, request *http.Request) {
	if !theRouter.checker.Enabled() {
		response.WriteHeader(http.StatusForbidden)
		return
	}

	clientIP, err := theRouter.checker.GetClientIP(request)
	if err != nil || !theRouter.checker.Check(clientIP) {
		response.WriteHeader(http.StatusForbidden)
		return
	}

	profiles, err := theRouter.db.GetNumberOfProfiles(request.Context())
	if err != nil {
		logger.Log.Errorln("profiles count failed:", err)
		response.WriteHeader(http.StatusInternalServerError)
		return
	}

	links, err := theRouter.db.GetNumberOfLinks(request.Context())
	if err != nil {
		logger.Log.Errorln("links count failed:", err)
		response.WriteHeader(http.StatusInternalServerError)
		return
	}

	writeJSON(response, http.StatusOK, map[string]int64{
		"profiles": profiles,
		"links":    links,
	})
}
