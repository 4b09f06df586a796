// Package identity defines the identity collaborator consumed by the
// rest of the system, plus a local provider implementation backed by the
// document store. Callers only react to sessions and human-readable
// errors; no provider-specific error shape leaks past this package.
package identity

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/patric-chuzhbe/biolink/internal/user"
)

// Session identifies an authenticated user.
type Session struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// Provider is the identity collaborator contract.
type Provider interface {
	// SignUp registers an account. When email confirmation is enabled the
	// returned session is nil and confirmationPending is true; the user
	// completes sign-up via VerifyOneTimeCode.
	SignUp(ctx context.Context, email, password string) (session *Session, confirmationPending bool, err error)

	SignIn(ctx context.Context, email, password string) (*Session, error)

	VerifyOneTimeCode(ctx context.Context, email, code string) (*Session, error)

	SignOut()

	// OnSessionChange registers a callback invoked with the new session
	// (nil on sign-out) after every authentication state change.
	OnSessionChange(callback func(*Session))
}

// ErrInvalidCredentials is returned for a wrong email/password pair and
// for a wrong one-time code.
var ErrInvalidCredentials = errors.New("invalid email or password")

// ErrEmailTaken is returned when signing up with an already registered email.
var ErrEmailTaken = errors.New("email already registered")

// ErrConfirmationPending is returned when signing in before the one-time
// code was redeemed.
var ErrConfirmationPending = errors.New("account not confirmed yet, check your email")

type userKeeper interface {
	CreateUser(ctx context.Context, usr *user.User) (string, error)
	GetUserByID(ctx context.Context, userID string) (*user.User, bool, error)
	GetUserByEmail(ctx context.Context, email string) (*user.User, bool, error)
	UpdateUser(ctx context.Context, usr *user.User) error
}

// Local is an in-process identity provider over the user collection.
type Local struct {
	db                       userKeeper
	requireEmailConfirmation bool

	mu        sync.Mutex
	callbacks []func(*Session)
}

// NewLocal returns a local provider. With requireEmailConfirmation set,
// sign-up stores a one-time code instead of opening a session.
func NewLocal(db userKeeper, requireEmailConfirmation bool) *Local {
	return &Local{
		db:                       db,
		requireEmailConfirmation: requireEmailConfirmation,
	}
}

// SignUp implements Provider.
func (provider *Local) SignUp(ctx context.Context, email, password string) (*Session, bool, error) {
	_, found, err := provider.db.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, false, fmt.Errorf("in internal/identity/identity.go/SignUp(): error while `provider.db.GetUserByEmail()` calling: %w", err)
	}
	if found {
		return nil, false, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, false, fmt.Errorf("in internal/identity/identity.go/SignUp(): error while `bcrypt.GenerateFromPassword()` calling: %w", err)
	}

	usr := &user.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: string(hash),
	}
	if provider.requireEmailConfirmation {
		usr.OneTimeCode = generateOneTimeCode()
	}

	if _, err := provider.db.CreateUser(ctx, usr); err != nil {
		return nil, false, fmt.Errorf("in internal/identity/identity.go/SignUp(): error while `provider.db.CreateUser()` calling: %w", err)
	}

	if provider.requireEmailConfirmation {
		return nil, true, nil
	}

	session := &Session{UserID: usr.ID, Email: usr.Email}
	provider.emit(session)

	return session, false, nil
}

// SignIn implements Provider.
func (provider *Local) SignIn(ctx context.Context, email, password string) (*Session, error) {
	usr, found, err := provider.db.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("in internal/identity/identity.go/SignIn(): error while `provider.db.GetUserByEmail()` calling: %w", err)
	}
	if !found {
		return nil, ErrInvalidCredentials
	}
	if usr.OneTimeCode != "" {
		return nil, ErrConfirmationPending
	}
	if bcrypt.CompareHashAndPassword([]byte(usr.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	session := &Session{UserID: usr.ID, Email: usr.Email}
	provider.emit(session)

	return session, nil
}

// VerifyOneTimeCode implements Provider. Redeeming the code confirms the
// account and opens a session.
func (provider *Local) VerifyOneTimeCode(ctx context.Context, email, code string) (*Session, error) {
	usr, found, err := provider.db.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("in internal/identity/identity.go/VerifyOneTimeCode(): error while `provider.db.GetUserByEmail()` calling: %w", err)
	}
	if !found || usr.OneTimeCode == "" || usr.OneTimeCode != code {
		return nil, ErrInvalidCredentials
	}

	usr.OneTimeCode = ""
	if err := provider.db.UpdateUser(ctx, usr); err != nil {
		return nil, fmt.Errorf("in internal/identity/identity.go/VerifyOneTimeCode(): error while `provider.db.UpdateUser()` calling: %w", err)
	}

	session := &Session{UserID: usr.ID, Email: usr.Email}
	provider.emit(session)

	return session, nil
}

// SignOut implements Provider.
func (provider *Local) SignOut() {
	provider.emit(nil)
}

// OnSessionChange implements Provider.
func (provider *Local) OnSessionChange(callback func(*Session)) {
	provider.mu.Lock()
	defer provider.mu.Unlock()
	provider.callbacks = append(provider.callbacks, callback)
}

func (provider *Local) emit(session *Session) {
	provider.mu.Lock()
	callbacks := make([]func(*Session), len(provider.callbacks))
	copy(callbacks, provider.callbacks)
	provider.mu.Unlock()

	for _, callback := range callbacks {
		callback(session)
	}
}

const oneTimeCodeLength = 6

func generateOneTimeCode() string {
	const digits = "0123456789"
	var result string

	for i := 0; i < oneTimeCodeLength; i++ {
		randomIndex, _ := rand.Int(rand.Reader, big.NewInt(int64(len(digits))))
		result += string(digits[randomIndex.Int64()])
	}

	return result
}
