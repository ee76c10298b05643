package controller

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/billingcat/notes/model"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/hkdf"
)

const sessionName = "session"

// session value keys
const (
	keyUID        = "uid"
	keyEmail      = "email"
	keyName       = "name"
	keySubject    = "sub"
	keyToken      = "token"
	keyOAuthState = "oauth_state"
)

// CookieCfg controls how the session cookie is scoped and secured.
type CookieCfg struct {
	IsProd bool
}

// cookieOptions builds the cookie options. MaxAge 0 gives a browser session
// cookie, -1 deletes the cookie.
func cookieOptions(maxAge int, cfg CookieCfg) *sessions.Options {
	return &sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   cfg.IsProd,
		SameSite: http.SameSiteLaxMode,
	}
}

// sessionKeys derives the HMAC and AES keys for the cookie store from the
// configured secret.
func sessionKeys(secret string) (hashKey, blockKey []byte, err error) {
	if secret == "" {
		return nil, nil, errors.New("session secret is empty")
	}
	r := hkdf.New(sha256.New, []byte(secret), nil, []byte("notes session cookie"))
	hashKey = make([]byte, 32)
	blockKey = make([]byte, 32)
	if _, err := io.ReadFull(r, hashKey); err != nil {
		return nil, nil, fmt.Errorf("derive session hash key: %w", err)
	}
	if _, err := io.ReadFull(r, blockKey); err != nil {
		return nil, nil, fmt.Errorf("derive session block key: %w", err)
	}
	return hashKey, blockKey, nil
}

// SessionWriter is a thin wrapper around gorilla/sessions that applies the
// cookie options before every save.
type SessionWriter struct {
	sess *sessions.Session
	c    echo.Context
}

// LoadSession retrieves the session named "session" from the Echo context.
// An undecodable cookie is treated as an empty session.
func LoadSession(c echo.Context) (*SessionWriter, error) {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		if !isRecoverableSessionError(err) {
			return nil, err
		}
		if l, ok := c.Get("logger").(*slog.Logger); ok {
			l.Info("invalid session cookie, starting fresh", "error", err)
		}
	}
	return &SessionWriter{sess: sess, c: c}, nil
}

// Values gives access to the session data map.
func (sw *SessionWriter) Values() map[any]any {
	return sw.sess.Values
}

// AddFlash appends a flash message to the session. Call Save afterwards.
func (sw *SessionWriter) AddFlash(v any) {
	sw.sess.AddFlash(v)
}

// Save persists the session back to the client.
func (sw *SessionWriter) Save() error {
	cfg, ok := sw.c.Get("cookiecfg").(CookieCfg)
	if !ok {
		cfg = CookieCfg{}
	}
	sw.sess.Options = cookieOptions(0, cfg)
	return sw.sess.Save(sw.c.Request(), sw.c.Response())
}

// Identity returns the signed-in identity stored in the session.
func (sw *SessionWriter) Identity() (model.Session, bool) {
	v := sw.sess.Values
	uid, _ := v[keyUID].(int64)
	s := model.Session{UserID: uid}
	s.Email, _ = v[keyEmail].(string)
	s.Name, _ = v[keyName].(string)
	s.Subject, _ = v[keySubject].(string)
	s.Token, _ = v[keyToken].(string)
	return s, s.Authenticated()
}

// SetIdentity writes s into the session. Call Save afterwards.
func (sw *SessionWriter) SetIdentity(s model.Session) {
	v := sw.sess.Values
	v[keyUID] = s.UserID
	v[keyEmail] = s.Email
	v[keyName] = s.Name
	v[keySubject] = s.Subject
	v[keyToken] = s.Token
}

// Destroy clears all values and expires the cookie.
func (sw *SessionWriter) Destroy() error {
	for k := range sw.sess.Values {
		delete(sw.sess.Values, k)
	}
	cfg, _ := sw.c.Get("cookiecfg").(CookieCfg)
	sw.sess.Options = cookieOptions(-1, cfg)
	return sw.sess.Save(sw.c.Request(), sw.c.Response())
}

// isRecoverableSessionError checks whether the given error from session.Get()
// indicates an invalid or old session cookie that can be treated as "no session".
func isRecoverableSessionError(err error) bool {
	if err == nil {
		return false
	}
	if strings.Contains(err.Error(), "securecookie: the value is not valid") {
		return true
	}
	var scErr securecookie.Error
	return errors.As(err, &scErr)
}
