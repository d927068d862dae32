package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	identityToolkitURL = "https://identitytoolkit.googleapis.com/v1"
	secureTokenURL     = "https://securetoken.googleapis.com/v1/token"
)

// FirebaseProvider talks to the Firebase Auth REST API. The web client
// SDK is replaced by direct calls against the same endpoints, keyed by
// the project's web API key.
type FirebaseProvider struct {
	apiKey string
	http   *http.Client
	states chan StateEvent

	// refresh token persisted from a previous run, if any; drives the
	// first auth-state event.
	storedRefreshToken string
}

// FirebaseOption configures the provider.
type FirebaseOption func(*FirebaseProvider)

// WithHTTPClient overrides the HTTP client, mainly for tests.
func WithHTTPClient(c *http.Client) FirebaseOption {
	return func(p *FirebaseProvider) { p.http = c }
}

// WithStoredRefreshToken seeds session restoration. Without it the first
// auth-state event reports no session.
func WithStoredRefreshToken(token string) FirebaseOption {
	return func(p *FirebaseProvider) { p.storedRefreshToken = token }
}

func NewFirebaseProvider(apiKey string, opts ...FirebaseOption) (*FirebaseProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("identity API key is required")
	}
	p := &FirebaseProvider{
		apiKey: apiKey,
		http:   &http.Client{Timeout: 15 * time.Second},
		states: make(chan StateEvent, 1),
	}
	for _, opt := range opts {
		opt(p)
	}
	go p.emitInitialState()
	return p, nil
}

// emitInitialState produces the stream's first event: a session restored
// from the stored refresh token, or nothing to restore.
func (p *FirebaseProvider) emitInitialState() {
	if p.storedRefreshToken == "" {
		p.states <- StateEvent{}
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	creds, err := p.RefreshIDToken(ctx, p.storedRefreshToken)
	if err != nil {
		slog.Warn("Session restore failed", "error", err)
		p.states <- StateEvent{}
		return
	}
	p.states <- StateEvent{Credentials: &creds}
}

func (p *FirebaseProvider) StateChanges() <-chan StateEvent { return p.states }

type signInResponse struct {
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
	DisplayName  string `json:"displayName"`
	PhotoURL     string `json:"photoUrl"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
}

func (r signInResponse) credentials() Credentials {
	expires, _ := strconv.Atoi(r.ExpiresIn)
	return Credentials{
		User: User{
			UID:         r.LocalID,
			Email:       r.Email,
			DisplayName: r.DisplayName,
			PhotoURL:    r.PhotoURL,
		},
		IDToken:      r.IDToken,
		RefreshToken: r.RefreshToken,
		ExpiresIn:    time.Duration(expires) * time.Second,
	}
}

func (p *FirebaseProvider) SignInWithPassword(ctx context.Context, email, password string) (Credentials, error) {
	var resp signInResponse
	err := p.call(ctx, "accounts:signInWithPassword", map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}, &resp)
	if err != nil {
		return Credentials{}, err
	}
	return resp.credentials(), nil
}

func (p *FirebaseProvider) SignUp(ctx context.Context, email, password, displayName string) (Credentials, error) {
	var resp signInResponse
	err := p.call(ctx, "accounts:signUp", map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}, &resp)
	if err != nil {
		return Credentials{}, err
	}
	creds := resp.credentials()

	if displayName != "" {
		var updated signInResponse
		err := p.call(ctx, "accounts:update", map[string]any{
			"idToken":           creds.IDToken,
			"displayName":       displayName,
			"returnSecureToken": false,
		}, &updated)
		if err != nil {
			return Credentials{}, err
		}
		creds.User.DisplayName = displayName
	}
	return creds, nil
}

func (p *FirebaseProvider) SignInWithOAuth(ctx context.Context, kind OAuthKind, providerToken string) (Credentials, error) {
	var resp signInResponse
	err := p.call(ctx, "accounts:signInWithIdp", map[string]any{
		"postBody":            fmt.Sprintf("id_token=%s&providerId=%s", providerToken, kind),
		"requestUri":          "http://localhost",
		"returnSecureToken":   true,
		"returnIdpCredential": true,
	}, &resp)
	if err != nil {
		return Credentials{}, err
	}
	return resp.credentials(), nil
}

func (p *FirebaseProvider) SendPasswordReset(ctx context.Context, email string) error {
	return p.call(ctx, "accounts:sendOobCode", map[string]any{
		"requestType": "PASSWORD_RESET",
		"email":       email,
	}, &struct{}{})
}

func (p *FirebaseProvider) ConfirmPasswordReset(ctx context.Context, oobCode, newPassword string) error {
	return p.call(ctx, "accounts:resetPassword", map[string]any{
		"oobCode":     oobCode,
		"newPassword": newPassword,
	}, &struct{}{})
}

func (p *FirebaseProvider) RefreshIDToken(ctx context.Context, refreshToken string) (Credentials, error) {
	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {refreshToken},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		secureTokenURL+"?key="+url.QueryEscape(p.apiKey),
		strings.NewReader(form.Encode()))
	if err != nil {
		return Credentials{}, fmt.Errorf("build refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	httpResp, err := p.http.Do(req)
	if err != nil {
		return Credentials{}, &AuthError{Code: CodeNetworkRequestFailed, Err: err}
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return Credentials{}, fmt.Errorf("read refresh response: %w", err)
	}
	if httpResp.StatusCode != http.StatusOK {
		return Credentials{}, decodeAPIError(body)
	}

	var resp struct {
		UserID       string `json:"user_id"`
		IDToken      string `json:"id_token"`
		RefreshToken string `json:"refresh_token"`
		ExpiresIn    string `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return Credentials{}, fmt.Errorf("decode refresh response: %w", err)
	}
	expires, _ := strconv.Atoi(resp.ExpiresIn)
	return Credentials{
		User:         User{UID: resp.UserID},
		IDToken:      resp.IDToken,
		RefreshToken: resp.RefreshToken,
		ExpiresIn:    time.Duration(expires) * time.Second,
	}, nil
}

// call posts a JSON body to one Identity Toolkit endpoint and decodes the
// result, converting API error payloads to tagged AuthErrors.
func (p *FirebaseProvider) call(ctx context.Context, endpoint string, payload map[string]any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", endpoint, err)
	}
	u := fmt.Sprintf("%s/%s?key=%s", identityToolkitURL, endpoint, url.QueryEscape(p.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build %s request: %w", endpoint, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.http.Do(req)
	if err != nil {
		return &AuthError{Code: CodeNetworkRequestFailed, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s response: %w", endpoint, err)
	}
	if resp.StatusCode != http.StatusOK {
		return decodeAPIError(respBody)
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	return nil
}

// restCodes maps Identity Toolkit error identifiers onto the auth code
// enumeration used everywhere else.
var restCodes = map[string]Code{
	"EMAIL_EXISTS":                CodeEmailAlreadyInUse,
	"INVALID_EMAIL":               CodeInvalidEmail,
	"OPERATION_NOT_ALLOWED":       CodeOperationNotAllowed,
	"WEAK_PASSWORD":               CodeWeakPassword,
	"USER_DISABLED":               CodeUserDisabled,
	"EMAIL_NOT_FOUND":             CodeUserNotFound,
	"INVALID_PASSWORD":            CodeWrongPassword,
	"INVALID_LOGIN_CREDENTIALS":   CodeInvalidCredential,
	"INVALID_IDP_RESPONSE":        CodeInvalidCredential,
	"TOO_MANY_ATTEMPTS_TRY_LATER": CodeTooManyRequests,
	"EXPIRED_OOB_CODE":            CodeExpiredActionCode,
	"INVALID_OOB_CODE":            CodeInvalidActionCode,
	"TOKEN_EXPIRED":               CodeInvalidCredential,
	"INVALID_REFRESH_TOKEN":       CodeInvalidCredential,
}

func decodeAPIError(body []byte) error {
	var payload struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || payload.Error.Message == "" {
		return &AuthError{Code: CodeUnknown, Err: fmt.Errorf("unrecognized provider error: %s", body)}
	}
	// Some messages carry a suffix, e.g. "WEAK_PASSWORD : ...".
	ident := payload.Error.Message
	if i := strings.IndexAny(ident, " :"); i > 0 {
		ident = ident[:i]
	}
	code, ok := restCodes[ident]
	if !ok {
		code = CodeUnknown
	}
	return &AuthError{Code: code, Err: fmt.Errorf("provider: %s", payload.Error.Message)}
}
