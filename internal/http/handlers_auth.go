package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"rentledger/internal/identity"
	"rentledger/internal/validate"
)

func (s *Server) handleAuth(w http.ResponseWriter, r *http.Request) {
	if s.session == nil {
		writeError(w, http.StatusServiceUnavailable, "Identity provider not configured")
		return
	}
	if err := s.session.Init(r.Context()); err != nil {
		slog.ErrorContext(r.Context(), "Session initialization failed", "error", err)
	}

	action := strings.TrimPrefix(r.URL.Path, "/api/auth/")
	switch action {
	case "login":
		s.handleLogin(w, r)
	case "signup":
		s.handleSignup(w, r)
	case "logout":
		s.handleLogout(w, r)
	case "forgot-password":
		s.handleForgotPassword(w, r)
	case "reset-password":
		s.handleResetPassword(w, r)
	case "oauth":
		s.handleOAuth(w, r)
	case "session":
		s.handleSession(w, r)
	default:
		writeError(w, http.StatusNotFound, "Not found")
	}
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	var req struct {
		Email      string `json:"email"`
		Password   string `json:"password"`
		RememberMe bool   `json:"rememberMe"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	fields := map[string][]string{}
	if errs := validate.Field(req.Email, validate.Rules{Required: true, Email: true}); len(errs) > 0 {
		fields["email"] = errs
	}
	if errs := validate.Field(req.Password, validate.Rules{Required: true}); len(errs) > 0 {
		fields["password"] = errs
	}
	if len(fields) > 0 {
		writeFieldErrors(w, fields)
		return
	}

	if err := s.session.SignIn(r.Context(), req.Email, req.Password, req.RememberMe); err != nil {
		writeError(w, authStatus(err), identity.Message(err))
		return
	}

	writeJSON(w, http.StatusOK, s.sessionResponse())
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	var req struct {
		Email       string `json:"email"`
		Password    string `json:"password"`
		DisplayName string `json:"displayName"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	fields := map[string][]string{}
	if errs := validate.Field(req.Email, validate.Rules{Required: true, Email: true}); len(errs) > 0 {
		fields["email"] = errs
	}
	if errs := validate.Password(req.Password); len(errs) > 0 {
		fields["password"] = errs
	}
	if errs := validate.Field(req.DisplayName, validate.Rules{Required: true, MaxLength: 100}); len(errs) > 0 {
		fields["displayName"] = errs
	}
	if len(fields) > 0 {
		writeFieldErrors(w, fields)
		return
	}

	if err := s.session.SignUp(r.Context(), req.Email, req.Password, sanitizeInput(req.DisplayName)); err != nil {
		writeError(w, authStatus(err), identity.Message(err))
		return
	}

	writeJSON(w, http.StatusCreated, s.sessionResponse())
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	if err := s.session.SignOut(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, identity.Message(err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"redirect": "/auth/login"})
}

func (s *Server) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	var req struct {
		Email string `json:"email"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if errs := validate.Field(req.Email, validate.Rules{Required: true, Email: true}); len(errs) > 0 {
		writeFieldErrors(w, map[string][]string{"email": errs})
		return
	}

	if err := s.session.SendPasswordReset(r.Context(), req.Email); err != nil {
		writeError(w, authStatus(err), identity.Message(err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Password reset email sent. Check your inbox.",
	})
}

func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	var req struct {
		OobCode     string `json:"oobCode"`
		NewPassword string `json:"newPassword"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	fields := map[string][]string{}
	if errs := validate.Field(req.OobCode, validate.Rules{Required: true}); len(errs) > 0 {
		fields["oobCode"] = errs
	}
	if errs := validate.Password(req.NewPassword); len(errs) > 0 {
		fields["newPassword"] = errs
	}
	if len(fields) > 0 {
		writeFieldErrors(w, fields)
		return
	}

	if err := s.session.ConfirmPasswordReset(r.Context(), req.OobCode, req.NewPassword); err != nil {
		writeError(w, authStatus(err), identity.Message(err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message":  "Password has been reset.",
		"redirect": "/auth/login",
	})
}

func (s *Server) handleOAuth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	var req struct {
		Provider string `json:"provider"`
		Token    string `json:"token"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var kind identity.OAuthKind
	switch req.Provider {
	case "google":
		kind = identity.OAuthGoogle
	case "github":
		kind = identity.OAuthGitHub
	default:
		writeError(w, http.StatusBadRequest, "Unsupported provider")
		return
	}
	if req.Token == "" {
		writeError(w, http.StatusBadRequest, "Missing provider token")
		return
	}

	if err := s.session.SignInWithProvider(r.Context(), kind, req.Token); err != nil {
		writeError(w, authStatus(err), identity.Message(err))
		return
	}

	writeJSON(w, http.StatusOK, s.sessionResponse())
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	writeJSON(w, http.StatusOK, s.sessionResponse())
}

type sessionResponse struct {
	State         identity.State    `json:"state"`
	Authenticated bool              `json:"authenticated"`
	Loading       bool              `json:"loading"`
	Error         string            `json:"error,omitempty"`
	UID           string            `json:"uid,omitempty"`
	Profile       any               `json:"profile,omitempty"`
}

func (s *Server) sessionResponse() sessionResponse {
	snap := s.session.Snapshot()
	resp := sessionResponse{
		State:         snap.State,
		Authenticated: snap.Authenticated,
		Loading:       snap.Loading,
		Error:         snap.Error,
		UID:           snap.UID,
	}
	if profile := s.session.Profile(); profile != nil {
		resp.Profile = profile
	}
	return resp
}

// authStatus maps a provider failure to an HTTP status.
func authStatus(err error) int {
	var authErr *identity.AuthError
	if !errors.As(err, &authErr) {
		return http.StatusInternalServerError
	}
	switch authErr.Code {
	case identity.CodeEmailAlreadyInUse:
		return http.StatusConflict
	case identity.CodeTooManyRequests:
		return http.StatusTooManyRequests
	case identity.CodeNetworkRequestFailed:
		return http.StatusServiceUnavailable
	default:
		return http.StatusUnauthorized
	}
}
