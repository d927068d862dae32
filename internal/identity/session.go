package identity

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/golang-jwt/jwt/v5"

	"rentledger/internal/core"
	"rentledger/internal/store"
)

// State is the session lifecycle.
type State string

const (
	StateUninitialized   State = "uninitialized"
	StateInitializing    State = "initializing"
	StateAuthenticated   State = "authenticated"
	StateUnauthenticated State = "unauthenticated"
	StateError           State = "error"
)

// Snapshot is the session view the route guard and handlers consume.
type Snapshot struct {
	State         State
	Initialized   bool
	Loading       bool
	Authenticated bool
	Error         string
	UID           string
}

// Session is the application's authentication state machine. It is built
// once at the composition root and injected wherever auth state is
// needed; there is no package-level instance.
type Session struct {
	provider Provider
	profiles store.ProfileStore

	mu             sync.RWMutex
	state          State
	initialized    bool
	loading        bool
	lastError      string
	user           *User
	profile        *core.UserProfile
	idToken        string
	refreshToken   string
	rememberMe     bool
	refreshing     bool
	tokenListeners []func(token string)
}

func NewSession(provider Provider, profiles store.ProfileStore) *Session {
	return &Session{
		provider: provider,
		profiles: profiles,
		state:    StateUninitialized,
	}
}

// Init subscribes to the provider's auth-state stream and resolves once
// the first event arrives. It is idempotent: after the session is
// initialized further calls return immediately.
func (s *Session) Init(ctx context.Context) error {
	s.mu.Lock()
	if s.initialized || s.state == StateInitializing {
		s.mu.Unlock()
		return nil
	}
	s.state = StateInitializing
	s.mu.Unlock()

	select {
	case <-ctx.Done():
		s.mu.Lock()
		s.state = StateError
		s.initialized = true
		s.mu.Unlock()
		return ctx.Err()
	case ev := <-s.provider.StateChanges():
		if ev.Credentials == nil {
			s.mu.Lock()
			s.state = StateUnauthenticated
			s.initialized = true
			s.mu.Unlock()
			return nil
		}
		if err := s.establish(ctx, *ev.Credentials, true); err != nil {
			s.mu.Lock()
			s.state = StateError
			s.initialized = true
			s.mu.Unlock()
			return err
		}
		s.mu.Lock()
		s.initialized = true
		s.mu.Unlock()
		return nil
	}
}

// SignIn authenticates with email and password. rememberMe controls
// whether the refresh token is retained for session restoration.
func (s *Session) SignIn(ctx context.Context, email, password string, rememberMe bool) error {
	s.begin()
	defer s.end()

	creds, err := s.provider.SignInWithPassword(ctx, email, password)
	if err != nil {
		return s.authFailed("sign in", err)
	}
	s.mu.Lock()
	s.rememberMe = rememberMe
	s.mu.Unlock()
	return s.establish(ctx, creds, true)
}

// SignInWithProvider completes an OAuth flow with the credential the
// client's popup obtained.
func (s *Session) SignInWithProvider(ctx context.Context, kind OAuthKind, providerToken string) error {
	s.begin()
	defer s.end()

	creds, err := s.provider.SignInWithOAuth(ctx, kind, providerToken)
	if err != nil {
		return s.authFailed("oauth sign in", err)
	}
	return s.establish(ctx, creds, true)
}

func (s *Session) SignUp(ctx context.Context, email, password, displayName string) error {
	s.begin()
	defer s.end()

	creds, err := s.provider.SignUp(ctx, email, password, displayName)
	if err != nil {
		return s.authFailed("sign up", err)
	}
	return s.establish(ctx, creds, true)
}

// SignOut drops the session. The cached ID token is cleared and token
// listeners are notified with an empty token.
func (s *Session) SignOut(ctx context.Context) error {
	s.begin()
	defer s.end()

	s.mu.Lock()
	s.user = nil
	s.profile = nil
	s.idToken = ""
	s.refreshToken = ""
	s.state = StateUnauthenticated
	listeners := append(([]func(string))(nil), s.tokenListeners...)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn("")
	}
	slog.InfoContext(ctx, "Signed out")
	return nil
}

func (s *Session) SendPasswordReset(ctx context.Context, email string) error {
	if err := s.provider.SendPasswordReset(ctx, email); err != nil {
		return fmt.Errorf("%s: %w", Message(err), err)
	}
	return nil
}

func (s *Session) ConfirmPasswordReset(ctx context.Context, oobCode, newPassword string) error {
	if err := s.provider.ConfirmPasswordReset(ctx, oobCode, newPassword); err != nil {
		return fmt.Errorf("%s: %w", Message(err), err)
	}
	return nil
}

// RefreshToken exchanges the refresh token for a fresh ID token. A
// refresh already in flight makes this call a no-op.
func (s *Session) RefreshToken(ctx context.Context) (string, error) {
	s.mu.Lock()
	if s.refreshing || s.user == nil || s.refreshToken == "" {
		token := s.idToken
		s.mu.Unlock()
		return token, nil
	}
	s.refreshing = true
	refreshToken := s.refreshToken
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.refreshing = false
		s.mu.Unlock()
	}()

	creds, err := s.provider.RefreshIDToken(ctx, refreshToken)
	if err != nil {
		slog.ErrorContext(ctx, "Token refresh failed", "error", err)
		return "", err
	}
	s.setToken(creds.IDToken, creds.RefreshToken)
	return creds.IDToken, nil
}

// UpdateProfile applies edits to the signed-in user's stored profile and
// reloads it. A nested preferences document is accepted and flattened to
// the top-level keys the stores persist.
func (s *Session) UpdateProfile(ctx context.Context, updates map[string]any) error {
	s.mu.RLock()
	user := s.user
	s.mu.RUnlock()
	if user == nil {
		return fmt.Errorf("no authenticated user")
	}

	s.begin()
	defer s.end()

	updates = flattenProfileUpdates(updates)
	if err := s.profiles.UpdateProfile(ctx, user.UID, updates); err != nil {
		s.mu.Lock()
		s.lastError = err.Error()
		s.mu.Unlock()
		return err
	}
	profile, err := s.profiles.GetProfile(ctx, user.UID)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.profile = &profile
	s.mu.Unlock()
	return nil
}

// flattenProfileUpdates lifts {"preferences": {"theme": ...}} into the
// flat theme/currency/language keys. Top-level keys win on collision.
func flattenProfileUpdates(updates map[string]any) map[string]any {
	prefs, ok := updates["preferences"].(map[string]any)
	if !ok {
		return updates
	}
	flat := make(map[string]any, len(updates)+len(prefs))
	for k, v := range prefs {
		flat[k] = v
	}
	for k, v := range updates {
		if k != "preferences" {
			flat[k] = v
		}
	}
	return flat
}

// Snapshot returns the current state for guards and handlers.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := Snapshot{
		State:         s.state,
		Initialized:   s.initialized,
		Loading:       s.loading,
		Authenticated: s.user != nil,
		Error:         s.lastError,
	}
	if s.user != nil {
		snap.UID = s.user.UID
	}
	return snap
}

// Token returns the cached ID token for non-reactive callers. Empty when
// signed out.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.idToken
}

// Profile returns the loaded profile, or nil when signed out.
func (s *Session) Profile() *core.UserProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.profile == nil {
		return nil
	}
	p := *s.profile
	return &p
}

// OnTokenChange registers a listener invoked with every new ID token and
// with "" on sign-out.
func (s *Session) OnTokenChange(fn func(token string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokenListeners = append(s.tokenListeners, fn)
}

// establish records credentials, loads or creates the profile, and moves
// the machine to authenticated.
func (s *Session) establish(ctx context.Context, creds Credentials, notify bool) error {
	user := creds.User
	if user.UID == "" {
		// Token-refresh responses omit account details; decode the
		// ID token claims instead of an extra lookup round trip.
		if claims := decodeClaims(creds.IDToken); claims != nil {
			user = *claims
		}
	}

	profile, err := s.profiles.GetProfile(ctx, user.UID)
	if err == core.ErrProfileNotFound {
		profile = core.UserProfile{
			UID:         user.UID,
			Email:       user.Email,
			DisplayName: user.DisplayName,
			PhotoURL:    user.PhotoURL,
			Preferences: core.DefaultPreferences(),
		}
		if err := s.profiles.PutProfile(ctx, profile); err != nil {
			return fmt.Errorf("create profile: %w", err)
		}
		slog.InfoContext(ctx, "Profile created on first sign-in", "uid", user.UID)
	} else if err != nil {
		return fmt.Errorf("load profile: %w", err)
	}

	s.mu.Lock()
	s.user = &user
	s.profile = &profile
	s.state = StateAuthenticated
	s.lastError = ""
	s.mu.Unlock()

	if notify {
		s.setToken(creds.IDToken, creds.RefreshToken)
	}
	return nil
}

func (s *Session) setToken(idToken, refreshToken string) {
	s.mu.Lock()
	s.idToken = idToken
	if refreshToken != "" {
		s.refreshToken = refreshToken
	}
	listeners := append(([]func(string))(nil), s.tokenListeners...)
	s.mu.Unlock()
	for _, fn := range listeners {
		fn(idToken)
	}
}

func (s *Session) begin() {
	s.mu.Lock()
	s.loading = true
	s.lastError = ""
	s.mu.Unlock()
}

func (s *Session) end() {
	s.mu.Lock()
	s.loading = false
	s.mu.Unlock()
}

// authFailed stores the mapped user-facing message and passes the
// original error through to the caller.
func (s *Session) authFailed(op string, err error) error {
	msg := Message(err)
	s.mu.Lock()
	s.lastError = msg
	if s.user == nil {
		s.state = StateUnauthenticated
	}
	s.mu.Unlock()
	slog.Error("Auth operation failed", "op", op, "error", err)
	return err
}

// decodeClaims extracts account details from an ID token without
// verifying the signature; the provider issued the token moments ago
// over TLS and verification happens server side at the provider.
func decodeClaims(idToken string) *User {
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(idToken, claims); err != nil {
		return nil
	}
	u := &User{}
	if sub, err := claims.GetSubject(); err == nil {
		u.UID = sub
	}
	if email, ok := claims["email"].(string); ok {
		u.Email = email
	}
	if name, ok := claims["name"].(string); ok {
		u.DisplayName = name
	}
	if pic, ok := claims["picture"].(string); ok {
		u.PhotoURL = pic
	}
	if u.UID == "" {
		return nil
	}
	return u
}
