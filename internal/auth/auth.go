// Package auth carries the editing session across HTTP requests as a
// signed JWT cookie. The middleware only extracts the session; deciding
// whether one is required is the caller's business — public pages never
// check it.
package auth

import (
	"context"
	"fmt"
	"net/http"

	"github.com/golang-jwt/jwt/v4"

	"github.com/patric-chuzhbe/biolink/internal/identity"
)

// Claims represents the JWT claims used by the system.
// It embeds standard JWT claims and adds the session identity.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// ContextKey is a custom type for storing values in context to avoid collisions.
type ContextKey string

// SessionKey is the context key under which the middleware stores the
// *identity.Session (absent when the request is unauthenticated).
const SessionKey ContextKey = "session"

// Auth signs and verifies session cookies.
type Auth struct {
	cookieName       string
	signingSecretKey []byte
}

// New creates an Auth with the given cookie name and JWT signing secret.
func New(cookieName string, signingSecretKey []byte) *Auth {
	return &Auth{
		cookieName:       cookieName,
		signingSecretKey: signingSecretKey,
	}
}

// SetSessionCookie writes the signed session cookie to the response.
func (a *Auth) SetSessionCookie(response http.ResponseWriter, session *identity.Session) error {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: session.UserID,
		Email:  session.Email,
	})

	tokenString, err := token.SignedString(a.signingSecretKey)
	if err != nil {
		return fmt.Errorf("in internal/auth/auth.go/SetSessionCookie(): error while `token.SignedString()` calling: %w", err)
	}

	http.SetCookie(
		response,
		&http.Cookie{
			Name:     a.cookieName,
			Value:    tokenString,
			Path:     "/",
			HttpOnly: true,
		},
	)

	return nil
}

// ClearSessionCookie expires the session cookie.
func (a *Auth) ClearSessionCookie(response http.ResponseWriter) {
	http.SetCookie(
		response,
		&http.Cookie{
			Name:     a.cookieName,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
		},
	)
}

// SessionFromRequest returns the session carried by the request's cookie,
// or nil when there is none or the token does not verify.
func (a *Auth) SessionFromRequest(request *http.Request) *identity.Session {
	cookie, err := request.Cookie(a.cookieName)
	if err != nil {
		return nil
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(
		cookie.Value,
		claims,
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return a.signingSecretKey, nil
		},
	)
	if err != nil || !token.Valid || claims.UserID == "" {
		return nil
	}

	return &identity.Session{UserID: claims.UserID, Email: claims.Email}
}

// WithSession is an HTTP middleware that places the request's session, if
// any, into the context under SessionKey.
func (a *Auth) WithSession(h http.Handler) http.Handler {
	middleware := func(response http.ResponseWriter, request *http.Request) {
		session := a.SessionFromRequest(request)
		if session == nil {
			h.ServeHTTP(response, request)
			return
		}

		ctx := context.WithValue(request.Context(), SessionKey, session)
		h.ServeHTTP(response, request.WithContext(ctx))
	}

	return http.HandlerFunc(middleware)
}

// SessionFromContext returns the session stored by WithSession, nil when
// the request is unauthenticated.
func SessionFromContext(ctx context.Context) *identity.Session {
	session, _ := ctx.Value(SessionKey).(*identity.Session)
	return session
}
