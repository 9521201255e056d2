package microsoft

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultPollInterval = 5 * time.Second
	defaultCodeLifetime = 15 * time.Minute
	slowDownIncrement   = 5 * time.Second
)

// BeginDeviceAuth asks the identity provider for a device code. The caller
// shows UserCode and VerificationURI to the user and then drives PollOnce.
func (c *Client) BeginDeviceAuth(ctx context.Context) (*DeviceAuthorizationSession, error) {
	form := url.Values{}
	form.Set("client_id", c.clientID)
	form.Set("scope", c.scope)

	resp, err := c.postForm(ctx, c.endpoints.DeviceCode, form)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, oauthError(resp)
	}

	var dc deviceCodeResponse
	if err := resp.decode(&dc); err != nil {
		return nil, err
	}
	if dc.DeviceCode == "" || dc.UserCode == "" {
		return nil, &AuthError{Reason: ReasonProviderRejected, Description: "device code response is incomplete", StatusCode: resp.StatusCode}
	}

	interval := time.Duration(dc.Interval) * time.Second
	if interval <= 0 {
		interval = defaultPollInterval
	}
	lifetime := time.Duration(dc.ExpiresIn) * time.Second
	if lifetime <= 0 {
		lifetime = defaultCodeLifetime
	}

	c.logger.Info("device authorization started",
		zap.String("user_code", dc.UserCode),
		zap.Int("expires_in", dc.ExpiresIn),
	)

	return &DeviceAuthorizationSession{
		DeviceCode:      dc.DeviceCode,
		UserCode:        dc.UserCode,
		VerificationURI: dc.VerificationURI,
		Message:         dc.Message,
		ExpiresAt:       c.now().Add(lifetime),
		interval:        interval,
		state:           StateStarted,
	}, nil
}

// PollOnce polls the token endpoint once. While the user has not approved
// the request it returns a Pending result; once a token is issued it runs the
// rest of the chain (Xbox Live, XSTS, Minecraft login, profile) in order and
// returns the completed Account.
//
// Transport failures before a token is issued leave the session pollable.
// Any provider error, or any failure after the device code was redeemed,
// moves the session to a terminal state.
func (c *Client) PollOnce(ctx context.Context, s *DeviceAuthorizationSession) (*PollResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateCompleted, StateFailed:
		return nil, ErrSessionClosed
	case StateExpired:
		return nil, &AuthError{Reason: ReasonExpired, Description: "device code expired"}
	}

	if !c.now().Before(s.ExpiresAt) {
		s.state = StateExpired
		return nil, &AuthError{Reason: ReasonExpired, Description: "device code expired"}
	}

	tok, err := c.redeemDeviceCode(ctx, s)
	if err != nil {
		var ae *AuthError
		if !errors.As(err, &ae) {
			return nil, err
		}

		switch ae.Code {
		case "authorization_pending":
			s.state = StatePending
			return &PollResult{Pending: true}, nil
		case "slow_down":
			s.interval += slowDownIncrement
			s.state = StatePending
			return &PollResult{Pending: true}, nil
		case "expired_token":
			s.state = StateExpired
			ae.Reason = ReasonExpired
			return nil, ae
		}

		s.state = StateFailed
		return nil, ae
	}

	account, err := c.exchange(ctx, tok)
	if err != nil {
		s.state = StateFailed
		return nil, err
	}

	s.state = StateCompleted
	return &PollResult{Account: account}, nil
}

func (c *Client) redeemDeviceCode(ctx context.Context, s *DeviceAuthorizationSession) (*tokenResponse, error) {
	form := url.Values{}
	form.Set("grant_type", deviceCodeGrantType)
	form.Set("client_id", c.clientID)
	form.Set("device_code", s.DeviceCode)

	resp, err := c.postForm(ctx, c.endpoints.Token, form)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, oauthError(resp)
	}

	var tok tokenResponse
	if err := resp.decode(&tok); err != nil {
		return nil, err
	}
	if tok.AccessToken == "" {
		return nil, &AuthError{Reason: ReasonProviderRejected, Description: "token response has no access token", StatusCode: resp.StatusCode}
	}
	return &tok, nil
}

// exchange runs steps 2 to 5 of the chain. Each step consumes only the
// previous step's output.
func (c *Client) exchange(ctx context.Context, tok *tokenResponse) (*Account, error) {
	ts := TokenSet{
		IdentityToken:        tok.AccessToken,
		IdentityRefreshToken: tok.RefreshToken,
	}

	xbl, err := c.authenticateXboxLive(ctx, ts.IdentityToken)
	if err != nil {
		return nil, err
	}
	ts.XboxLiveToken = xbl

	xsts, uhs, err := c.authorizeXSTS(ctx, ts.XboxLiveToken)
	if err != nil {
		return nil, err
	}
	ts.XSTSToken, ts.XSTSUserHash = xsts, uhs

	access, expiry, err := c.loginMinecraft(ctx, ts.XSTSUserHash, ts.XSTSToken)
	if err != nil {
		return nil, err
	}
	ts.MinecraftAccessToken, ts.MinecraftTokenExpiry = access, expiry

	profile, err := c.FetchProfile(ctx, ts.MinecraftAccessToken)
	if err != nil {
		return nil, err
	}

	c.logger.Info("signed in", zap.String("profile", profile.Name))
	return &Account{Tokens: ts, Profile: *profile}, nil
}

func (c *Client) authenticateXboxLive(ctx context.Context, identityToken string) (string, error) {
	body := xboxAuthRequest{
		Properties: map[string]any{
			"AuthMethod": "RPS",
			"SiteName":   xboxLiveSiteName,
			"RpsTicket":  "d=" + identityToken,
		},
		RelyingParty: xboxLiveRelyingParty,
		TokenType:    "JWT",
	}

	resp, err := c.postJSON(ctx, c.endpoints.XboxLive, body, "")
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", &AuthError{Reason: ReasonProviderRejected, Code: "xbox_live_" + strconv.Itoa(resp.StatusCode), Description: string(resp.Body), StatusCode: resp.StatusCode}
	}

	var out xboxAuthResponse
	if err := resp.decode(&out); err != nil {
		return "", err
	}
	if out.Token == "" {
		return "", &AuthError{Reason: ReasonProviderRejected, Code: "xbox_live_no_token", StatusCode: resp.StatusCode}
	}
	return out.Token, nil
}

func (c *Client) authorizeXSTS(ctx context.Context, xblToken string) (string, string, error) {
	body := xboxAuthRequest{
		Properties: map[string]any{
			"SandboxId":  xstsSandbox,
			"UserTokens": []string{xblToken},
		},
		RelyingParty: xstsRelyingParty,
		TokenType:    "JWT",
	}

	resp, err := c.postJSON(ctx, c.endpoints.XSTS, body, "")
	if err != nil {
		return "", "", err
	}

	if resp.StatusCode != http.StatusOK {
		var xe xstsErrorResponse
		_ = resp.decode(&xe)

		// Only a 401 or an XErr is an account-level refusal. Anything else
		// is the service failing, not the account.
		if resp.StatusCode != http.StatusUnauthorized && xe.XErr == 0 {
			return "", "", &AuthError{Reason: ReasonProviderRejected, Code: "xsts_" + strconv.Itoa(resp.StatusCode), Description: string(resp.Body), StatusCode: resp.StatusCode}
		}

		ae := &AuthError{Reason: ReasonXSTSDenied, StatusCode: resp.StatusCode, Description: xe.Message}
		if xe.XErr != 0 {
			ae.Code = strconv.FormatInt(xe.XErr, 10)
			if msg, ok := xstsErrors[xe.XErr]; ok {
				ae.Description = msg
			}
		}
		return "", "", ae
	}

	var out xboxAuthResponse
	if err := resp.decode(&out); err != nil {
		return "", "", err
	}
	if out.Token == "" || len(out.DisplayClaims.XUI) == 0 || out.DisplayClaims.XUI[0].UHS == "" {
		return "", "", &AuthError{Reason: ReasonXSTSDenied, Description: "XSTS response carries no token", StatusCode: resp.StatusCode}
	}
	return out.Token, out.DisplayClaims.XUI[0].UHS, nil
}

func (c *Client) loginMinecraft(ctx context.Context, userHash, xstsToken string) (string, time.Time, error) {
	body := minecraftLoginRequest{
		IdentityToken: fmt.Sprintf("XBL3.0 x=%s;%s", userHash, xstsToken),
	}

	resp, err := c.postJSON(ctx, c.endpoints.Minecraft, body, "")
	if err != nil {
		return "", time.Time{}, err
	}
	if resp.StatusCode != http.StatusOK {
		return "", time.Time{}, &AuthError{Reason: ReasonProviderRejected, Code: "minecraft_login_" + strconv.Itoa(resp.StatusCode), Description: string(resp.Body), StatusCode: resp.StatusCode}
	}

	var out minecraftLoginResponse
	if err := resp.decode(&out); err != nil {
		return "", time.Time{}, err
	}
	if out.AccessToken == "" {
		return "", time.Time{}, &AuthError{Reason: ReasonProviderRejected, Code: "minecraft_login_no_token", StatusCode: resp.StatusCode}
	}

	var expiry time.Time
	if out.ExpiresIn > 0 {
		expiry = c.now().Add(time.Duration(out.ExpiresIn) * time.Second)
	}
	return out.AccessToken, expiry, nil
}

// FetchProfile returns the player profile owned by accessToken. A 404 means
// the identity is valid but does not own the game.
func (c *Client) FetchProfile(ctx context.Context, accessToken string) (*PlayerProfile, error) {
	resp, err := c.getJSON(ctx, c.endpoints.Profile, accessToken)
	if err != nil {
		return nil, err
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, &AuthError{Reason: ReasonNoEntitlement, Description: "account does not own Minecraft", StatusCode: resp.StatusCode}
	default:
		return nil, &AuthError{Reason: ReasonProviderRejected, Code: "profile_" + strconv.Itoa(resp.StatusCode), Description: string(resp.Body), StatusCode: resp.StatusCode}
	}

	var out profileResponse
	if err := resp.decode(&out); err != nil {
		return nil, err
	}
	if _, err := uuid.Parse(out.ID); err != nil {
		return nil, fmt.Errorf("profile id %q is not a uuid: %w", out.ID, err)
	}

	p := &PlayerProfile{ID: out.ID, Name: out.Name}
	for _, s := range out.Skins {
		if s.State == "ACTIVE" {
			p.SkinVariant = s.Variant
			break
		}
	}
	return p, nil
}

func oauthError(resp *response) error {
	var oe oauthErrorResponse
	if err := resp.decode(&oe); err != nil || oe.Error == "" {
		return &AuthError{Reason: ReasonProviderRejected, Code: "http_" + strconv.Itoa(resp.StatusCode), StatusCode: resp.StatusCode}
	}
	return &AuthError{
		Reason:      ReasonProviderRejected,
		Code:        oe.Error,
		Description: oe.ErrorDescription,
		StatusCode:  resp.StatusCode,
	}
}
