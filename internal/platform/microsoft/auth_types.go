package microsoft

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

type SessionState int

const (
	StateStarted SessionState = iota
	StatePending
	StateCompleted
	StateFailed
	StateExpired
)

func (s SessionState) String() string {
	switch s {
	case StateStarted:
		return "started"
	case StatePending:
		return "pending"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	case StateExpired:
		return "expired"
	}
	return "unknown"
}

// Terminal states accept no further polls.
func (s SessionState) Terminal() bool {
	return s == StateCompleted || s == StateFailed || s == StateExpired
}

// DeviceAuthorizationSession is the in-memory handle of one device-code
// sign-in. It is never persisted.
type DeviceAuthorizationSession struct {
	DeviceCode      string
	UserCode        string
	VerificationURI string
	Message         string
	ExpiresAt       time.Time

	mu       sync.Mutex
	interval time.Duration
	state    SessionState
}

func (s *DeviceAuthorizationSession) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// PollInterval is the provider-supplied wait between polls. It grows when
// the provider asks the client to slow down.
func (s *DeviceAuthorizationSession) PollInterval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interval
}

// TokenSet is built step by step as the chain progresses.
type TokenSet struct {
	IdentityToken        string    `json:"identity_token"`
	IdentityRefreshToken string    `json:"identity_refresh_token,omitempty"`
	XboxLiveToken        string    `json:"xbox_live_token"`
	XSTSToken            string    `json:"xsts_token"`
	XSTSUserHash         string    `json:"xsts_user_hash"`
	MinecraftAccessToken string    `json:"minecraft_access_token"`
	MinecraftTokenExpiry time.Time `json:"minecraft_token_expiry"`
}

// Valid reports whether every token up to the Minecraft access token is set.
// A partially built set must never reach the launcher.
func (t TokenSet) Valid() bool {
	return t.IdentityToken != "" &&
		t.XboxLiveToken != "" &&
		t.XSTSToken != "" &&
		t.XSTSUserHash != "" &&
		t.MinecraftAccessToken != ""
}

// Expired reports whether the Minecraft access token is past its expiry.
// A zero expiry is treated as unknown, not expired.
func (t TokenSet) Expired(now time.Time) bool {
	return !t.MinecraftTokenExpiry.IsZero() && !now.Before(t.MinecraftTokenExpiry)
}

type PlayerProfile struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	SkinVariant string `json:"skin_variant,omitempty"`
}

// Account is the credential bundle handed from the sign-in chain to the
// launcher.
type Account struct {
	Tokens  TokenSet      `json:"tokens"`
	Profile PlayerProfile `json:"profile"`
}

// PollResult is either Pending or carries a completed Account.
type PollResult struct {
	Pending bool
	Account *Account
}

type AuthReason string

const (
	ReasonProviderRejected AuthReason = "provider_rejected"
	ReasonXSTSDenied       AuthReason = "xsts_denied"
	ReasonNoEntitlement    AuthReason = "no_entitlement"
	ReasonExpired          AuthReason = "expired"
)

// AuthError is a provider-reported failure. Code carries the provider's
// machine-readable reason (OAuth error string or XSTS XErr).
type AuthError struct {
	Reason      AuthReason
	Code        string
	Description string
	StatusCode  int
}

func (e *AuthError) Error() string {
	msg := fmt.Sprintf("authentication failed (%s)", e.Reason)
	if e.Code != "" {
		msg += ": " + e.Code
	}
	if e.Description != "" {
		msg += ": " + e.Description
	}
	return msg
}

// Is matches any AuthError with the same reason.
func (e *AuthError) Is(target error) bool {
	var t *AuthError
	if !errors.As(target, &t) {
		return false
	}
	return t.Reason == e.Reason
}

var (
	ErrProviderRejected = &AuthError{Reason: ReasonProviderRejected}
	ErrXSTSDenied       = &AuthError{Reason: ReasonXSTSDenied}
	ErrNoEntitlement    = &AuthError{Reason: ReasonNoEntitlement}
	ErrExpired          = &AuthError{Reason: ReasonExpired}

	// ErrSessionClosed is returned when polling a completed or failed session.
	ErrSessionClosed = errors.New("device authorization session is closed")
)

// xstsErrors explains the XErr codes XSTS uses for account restrictions.
var xstsErrors = map[int64]string{
	2148916227: "account is banned from Xbox Live",
	2148916233: "account has no Xbox profile; sign in at xbox.com first",
	2148916235: "Xbox Live is not available in the account's country",
	2148916236: "account needs adult verification",
	2148916237: "account needs adult verification",
	2148916238: "child account must be added to a family by an adult",
}

type deviceCodeResponse struct {
	DeviceCode      string `json:"device_code"`
	UserCode        string `json:"user_code"`
	VerificationURI string `json:"verification_uri"`
	ExpiresIn       int    `json:"expires_in"`
	Interval        int    `json:"interval"`
	Message         string `json:"message"`
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}

type oauthErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

type xboxAuthRequest struct {
	Properties   map[string]any `json:"Properties"`
	RelyingParty string         `json:"RelyingParty"`
	TokenType    string         `json:"TokenType"`
}

type xboxAuthResponse struct {
	Token         string `json:"Token"`
	NotAfter      string `json:"NotAfter"`
	DisplayClaims struct {
		XUI []struct {
			UHS string `json:"uhs"`
		} `json:"xui"`
	} `json:"DisplayClaims"`
}

type xstsErrorResponse struct {
	XErr     int64  `json:"XErr"`
	Message  string `json:"Message"`
	Redirect string `json:"Redirect"`
}

type minecraftLoginRequest struct {
	IdentityToken string `json:"identityToken"`
}

type minecraftLoginResponse struct {
	Username    string `json:"username"`
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

type profileResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Skins []struct {
		ID      string `json:"id"`
		State   string `json:"state"`
		URL     string `json:"url"`
		Variant string `json:"variant"`
	} `json:"skins"`
}
