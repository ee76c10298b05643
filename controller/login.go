package controller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/billingcat/notes/model"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
)

const defaultUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"

func newOAuthConfig(cfg *model.Config) *oauth2.Config {
	endpoint := endpoints.Google
	if cfg.GoogleAuthURL != "" {
		endpoint.AuthURL = cfg.GoogleAuthURL
	}
	if cfg.GoogleTokenURL != "" {
		endpoint.TokenURL = cfg.GoogleTokenURL
	}
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		port := cfg.Port
		if port == 0 {
			port = 8080
		}
		base = fmt.Sprintf("http://localhost:%d", port)
	}
	return &oauth2.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  base + "/auth/callback/google",
		Scopes:       []string{"openid", "email", "profile"},
		Endpoint:     endpoint,
	}
}

func userInfoURL(cfg *model.Config) string {
	if cfg.GoogleUserInfoURL != "" {
		return cfg.GoogleUserInfoURL
	}
	return defaultUserInfoURL
}

func (ctrl *controller) loginInit(e *echo.Echo) {
	e.GET("/ui/login", ctrl.loginPage)
	e.GET("/auth/signin/google", ctrl.signIn)
	e.GET("/auth/callback/google", ctrl.oauthCallback)
	e.POST("/auth/signout", ctrl.signOut)
}

// authMiddleware ensures a user is signed in before accessing protected routes.
// It puts the identity into the context; on failure it redirects to /ui/login.
func (ctrl *controller) authMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		sw, err := LoadSession(c)
		if err != nil {
			return ErrInternal(fmt.Errorf("cannot load session: %w", err))
		}
		ident, ok := sw.Identity()
		if !ok {
			return c.Redirect(http.StatusSeeOther, "/ui/login")
		}
		c.Set("identity", ident)
		c.Set("uid", ident.UserID)
		return next(c)
	}
}

// loginPage shows the sign-in button, or forwards a signed-in user to their
// notes.
func (ctrl *controller) loginPage(c echo.Context) error {
	sw, err := LoadSession(c)
	if err != nil {
		return ErrInternal(err)
	}
	if ident, ok := sw.Identity(); ok {
		return c.Redirect(http.StatusFound, notesURL(ident.UserID))
	}
	m := ctrl.defaultResponseMap(c, "Sign in")
	return c.Render(http.StatusOK, "login.html", m)
}

func notesURL(uid int64) string {
	return fmt.Sprintf("/ui/notes?userId=%d", uid)
}

// signIn starts the authorization code flow with a random state kept in the
// session.
func (ctrl *controller) signIn(c echo.Context) error {
	sw, err := LoadSession(c)
	if err != nil {
		return ErrInternal(err)
	}
	state := uuid.NewString()
	sw.Values()[keyOAuthState] = state
	if err := sw.Save(); err != nil {
		return ErrInternal(err)
	}
	return c.Redirect(http.StatusFound, ctrl.oauth.AuthCodeURL(state))
}

type userInfo struct {
	Sub   string `json:"sub"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// oauthCallback completes the sign-in: it checks the state, exchanges the
// code, fetches the profile and stores the session.
func (ctrl *controller) oauthCallback(c echo.Context) error {
	logger := ctrl.requestLogger(c)
	fail := func(msg string) error {
		if err := AddFlash(c, "error", msg); err != nil {
			return err
		}
		return c.Redirect(http.StatusSeeOther, "/ui/login")
	}

	if e := c.QueryParam("error"); e != "" {
		logger.Info("sign-in aborted by provider", "error", e)
		return fail("Sign-in was cancelled.")
	}

	sw, err := LoadSession(c)
	if err != nil {
		return ErrInternal(err)
	}
	expected, _ := sw.Values()[keyOAuthState].(string)
	delete(sw.Values(), keyOAuthState)
	if expected == "" || c.QueryParam("state") != expected {
		logger.Warn("oauth state mismatch")
		return fail("Sign-in failed. Please try again.")
	}
	code := c.QueryParam("code")
	if code == "" {
		return fail("Sign-in failed. Please try again.")
	}

	ctx := context.WithValue(c.Request().Context(), oauth2.HTTPClient, ctrl.httpClient)
	tok, err := ctrl.oauth.Exchange(ctx, code)
	if err != nil {
		logger.Error("oauth code exchange failed", "error", err)
		return fail("Sign-in failed. Please try again.")
	}
	info, err := ctrl.fetchUserInfo(ctx, tok)
	if err != nil {
		logger.Error("cannot fetch user profile", "error", err)
		return fail("Sign-in failed. Please try again.")
	}

	var prev *model.Session
	if p, ok := sw.Identity(); ok {
		prev = &p
	}
	s := model.NewSession(prev, model.Login{
		Subject: info.Sub,
		Email:   info.Email,
		Name:    info.Name,
		Token:   uuid.NewString(),
	})
	sw.SetIdentity(s)
	if err := sw.Save(); err != nil {
		return ErrInternal(err)
	}
	logger.Info("user signed in", "uid", s.UserID, "email", s.Email)
	return c.Redirect(http.StatusFound, notesURL(s.UserID))
}

func (ctrl *controller) fetchUserInfo(ctx context.Context, tok *oauth2.Token) (*userInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ctrl.userInfoURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := ctrl.oauth.Client(ctx, tok).Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo: HTTP %d", resp.StatusCode)
	}
	var info userInfo
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&info); err != nil {
		return nil, fmt.Errorf("userinfo: %w", err)
	}
	if info.Email == "" {
		return nil, errors.New("userinfo: no email in profile")
	}
	return &info, nil
}

// signOut clears the session and deletes the cookie.
func (ctrl *controller) signOut(c echo.Context) error {
	sw, err := LoadSession(c)
	if err != nil {
		return ErrInternal(err)
	}
	if err := sw.Destroy(); err != nil {
		return ErrInternal(err)
	}
	_ = AddFlash(c, "success", "You have been signed out.")
	return c.Redirect(http.StatusSeeOther, "/ui/login")
}
