package controller

import (
	"context"
	"embed"
	"encoding/gob"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path"
	"strings"
	"time"

	"github.com/billingcat/notes/model"

	"github.com/go-playground/form/v4"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/mark3labs/mcp-go/server"
	"github.com/xeonx/timeago"
	"github.com/yuin/goldmark"
	"golang.org/x/oauth2"
)

//go:embed views/*.html
var viewsFS embed.FS

type Flash struct {
	Kind    string // "success" | "error" | "warning" | "info"
	Message string
}

// FlashLoader pulls the flashes out of the session (emptying it) and puts
// them into the echo context.
func FlashLoader(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		sw, err := LoadSession(c)
		if err != nil {
			return next(c)
		}
		raw := sw.sess.Flashes()
		if len(raw) > 0 {
			_ = sw.Save()
		}
		flashes := make([]Flash, 0, len(raw))
		for _, it := range raw {
			if f, ok := it.(Flash); ok {
				flashes = append(flashes, f)
			}
		}
		c.Set("flashes", flashes)
		return next(c)
	}
}

// AddFlash stores a flash message in the session.
func AddFlash(c echo.Context, kind, msg string) error {
	sw, err := LoadSession(c)
	if err != nil {
		return ErrInternal(err)
	}
	sw.AddFlash(Flash{Kind: kind, Message: msg})
	if err := sw.Save(); err != nil {
		return ErrInvalid(err, "Cannot save the session.")
	}
	return nil
}

type appError struct {
	Code   string // stable internal error code for ops/support
	Status int    // matching HTTP status
	Err    error  // original error, never sent to the client
	Public string // safe text for the user (optional)
}

func (e *appError) Error() string { return fmt.Sprintf("%s: %v", e.Code, e.Err) }
func (e *appError) Unwrap() error { return e.Err }

func ErrNotFound(err error) *appError {
	return &appError{Code: "NOT_FOUND", Status: http.StatusNotFound, Err: err}
}
func ErrInvalid(err error, public string) *appError {
	return &appError{Code: "INVALID_INPUT", Status: http.StatusBadRequest, Err: err, Public: public}
}
func ErrInternal(err error) *appError {
	return &appError{Code: "INTERNAL", Status: http.StatusInternalServerError, Err: err}
}

var timeagoEnglish = timeago.NoMax(timeago.English)

// The Template interface implements rendering functionality for echo.
type Template struct {
	templates *template.Template
}

// Render is the echo way of rendering templates.
func (t *Template) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	return t.templates.ExecuteTemplate(w, name, data)
}

type controller struct {
	model       *model.Store
	oauth       *oauth2.Config
	userInfoURL string
	httpClient  *http.Client
	md          goldmark.Markdown
	form        *form.Decoder
	logger      *slog.Logger
}

// requestLogger returns the request-scoped logger, or the application logger
// outside of a request.
func (ctrl *controller) requestLogger(c echo.Context) *slog.Logger {
	if l, ok := c.Get("logger").(*slog.Logger); ok && l != nil {
		return l
	}
	return ctrl.logger
}

func (ctrl *controller) defaultResponseMap(c echo.Context, title string) map[string]any {
	responseMap := map[string]any{
		"title":    title,
		"loggedin": false,
		"path":     c.Request().URL.Path,
	}

	if flashes, ok := c.Get("flashes").([]Flash); ok {
		responseMap["flashes"] = flashes
	} else {
		responseMap["flashes"] = []Flash{}
	}

	if t, ok := c.Get(middleware.DefaultCSRFConfig.ContextKey).(string); ok {
		responseMap["CSRFToken"] = t
	}

	if ident, ok := c.Get("identity").(model.Session); ok {
		responseMap["uid"] = ident.UserID
		responseMap["email"] = ident.Email
		responseMap["fullname"] = ident.Name
		responseMap["loggedin"] = true
	}
	return responseMap
}

func (ctrl *controller) templateFuncs() template.FuncMap {
	return template.FuncMap{
		"markdown": func(s string) template.HTML {
			var sb strings.Builder
			if err := ctrl.md.Convert([]byte(s), &sb); err != nil {
				return template.HTML(template.HTMLEscapeString(s))
			}
			return template.HTML(sb.String())
		},
		"timeago": func(date string) string {
			t, err := time.Parse("2006-01-02", date)
			if err != nil {
				return ""
			}
			return timeagoEnglish.Format(t)
		},
		"fmtTime": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format(time.RFC3339)
		},
		"dict": func(kv ...any) map[string]any {
			m := make(map[string]any, len(kv)/2)
			for i := 0; i+1 < len(kv); i += 2 {
				if k, ok := kv[i].(string); ok {
					m[k] = kv[i+1]
				}
			}
			return m
		},
		"deref": func(s *string) string {
			if s == nil {
				return ""
			}
			return *s
		},
	}
}

func newLogger(mode string) *slog.Logger {
	// Prod: JSON, Info+; Dev: Text, Debug
	if mode == "development" {
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
}

// NewController builds the echo application serving the notes UI, the JSON
// API, the access-code proxy and the MCP endpoint.
func NewController(store *model.Store) (*echo.Echo, error) {
	cfg := store.Config
	logger := newLogger(cfg.Mode)
	slog.SetDefault(logger)
	gob.Register(Flash{})

	hashKey, blockKey, err := sessionKeys(cfg.CookieSecret)
	if err != nil {
		return nil, err
	}

	ctrl := &controller{
		model:       store,
		oauth:       newOAuthConfig(cfg),
		userInfoURL: userInfoURL(cfg),
		httpClient:  &http.Client{Timeout: 15 * time.Second},
		md:          goldmark.New(),
		form:        form.NewDecoder(),
		logger:      logger,
	}

	tmpl := &Template{
		templates: template.Must(template.New("t").Funcs(ctrl.templateFuncs()).ParseFS(viewsFS, "views/*.html")),
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = 15 * time.Second
	e.Server.WriteTimeout = 30 * time.Second
	e.Server.IdleTimeout = 60 * time.Second

	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.BodyLimit("1M"))
	e.Use(middleware.RequestID()) // adds X-Request-ID
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		DisablePrintStack: true,
	}))
	e.Use(requestLogMiddleware(logger))
	e.HTTPErrorHandler = ctrl.httpErrorHandler

	cookieStore := sessions.NewCookieStore(hashKey, blockKey)
	cookieStore.Options = cookieOptions(0, CookieCfg{})
	e.Use(session.Middleware(cookieStore))
	e.Use(ctrl.CookieCfgMiddleware)
	e.Use(FlashLoader)
	e.Use(middleware.CSRFWithConfig(middleware.CSRFConfig{
		TokenLength:    32,
		TokenLookup:    "form:csrf,header:X-CSRF-Token",
		CookieName:     "csrf",
		CookiePath:     "/",
		CookieHTTPOnly: true,
		CookieSameSite: http.SameSiteLaxMode,
		CookieSecure:   cfg.Mode == "production",
		Skipper: func(c echo.Context) bool {
			p := c.Request().URL.Path
			return strings.HasPrefix(p, "/api/") || p == "/mcp" || p == "/health"
		},
	}))

	e.Renderer = tmpl
	e.GET("/", func(c echo.Context) error {
		return c.Redirect(http.StatusFound, "/ui/login")
	})
	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	ctrl.loginInit(e)
	ctrl.noteInit(e)
	ctrl.apiInit(e)

	mcpHTTP := server.NewStreamableHTTPServer(newMCPServer(store))
	e.Any("/mcp", echo.WrapHandler(mcpHTTP))

	return e, nil
}

// Run serves the application until ctx is canceled, then shuts down
// gracefully.
func Run(ctx context.Context, store *model.Store) error {
	e, err := NewController(store)
	if err != nil {
		return err
	}
	port := store.Config.Port
	if port == 0 {
		port = 8080
	}
	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "port", port, "mode", store.Config.Mode)
		errCh <- e.Start(fmt.Sprintf(":%d", port))
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("cannot start application %w", err)
	case <-ctx.Done():
	}

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}

func requestLogMiddleware(logger *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			req := c.Request()
			res := c.Response()
			rid := res.Header().Get(echo.HeaderXRequestID)

			reqLogger := logger.With(
				"request_id", rid,
			).WithGroup("http").With(
				"method", req.Method,
				"path", req.URL.Path,
				"remote_ip", c.RealIP(),
			)
			c.Set("logger", reqLogger)

			err := next(c)
			if err != nil {
				// let the error handler set the final status before logging
				c.Error(err)
				err = nil
			}

			if shouldSkipAccessLog(c) {
				return err
			}
			attrs := []any{
				"status", res.Status,
				"latency_ms", float64(time.Since(start).Microseconds()) / 1000.0,
			}
			switch {
			case res.Status >= 500:
				reqLogger.Error("http_request", attrs...)
			case res.Status >= 400:
				reqLogger.Warn("http_request", attrs...)
			default:
				reqLogger.Info("http_request", attrs...)
			}
			return err
		}
	}
}

// httpErrorHandler logs everything internally and sends only a safe payload.
func (ctrl *controller) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	l := ctrl.requestLogger(c)

	var ae *appError
	var he *echo.HTTPError
	switch {
	case errors.As(err, &ae):
	case errors.As(err, &he):
		// only 4xx messages are passed to the user; 5xx are masked
		public := ""
		if he.Code >= 400 && he.Code < 500 {
			public = fmt.Sprint(he.Message)
		}
		ae = &appError{
			Code:   httpStatusToCode(he.Code),
			Status: he.Code,
			Err:    fmt.Errorf("%v", he.Message),
			Public: public,
		}
	default:
		ae = ErrInternal(err)
	}

	attrs := []any{
		"status", ae.Status,
		"code", ae.Code,
		"error", ae.Err.Error(),
	}
	if ae.Status >= 500 {
		l.Error("handler_error", attrs...)
	} else {
		l.Warn("handler_error", attrs...)
	}

	if wantsHTML(c.Request()) {
		kind := "error"
		if ae.Status >= 400 && ae.Status < 500 {
			kind = "warning"
		}
		if err := AddFlash(c, kind, userMessage(ae)); err != nil {
			l.Error("cannot add flash message", "error", err)
		}
		target := c.Request().Referer()
		if target == "" {
			target = "/ui/login"
		}
		_ = c.Redirect(http.StatusSeeOther, target)
		return
	}

	_ = c.JSON(ae.Status, map[string]any{
		"error":      userMessage(ae),
		"error_code": ae.Code,
		"request_id": c.Response().Header().Get(echo.HeaderXRequestID),
	})
}

func userMessage(ae *appError) string {
	if ae.Public != "" {
		return ae.Public
	}
	switch ae.Code {
	case "INVALID_INPUT":
		return "The request is invalid."
	case "NOT_FOUND":
		return "The requested resource was not found."
	case "METHOD_NOT_ALLOWED":
		return "This HTTP method is not supported here."
	default:
		return "Something went wrong. Please try again later."
	}
}

func wantsHTML(r *http.Request) bool { return strings.Contains(r.Header.Get("Accept"), "text/html") }

func httpStatusToCode(status int) string {
	switch status {
	case 400:
		return "INVALID_INPUT"
	case 401:
		return "UNAUTHORIZED"
	case 403:
		return "FORBIDDEN"
	case 404:
		return "NOT_FOUND"
	case 405:
		return "METHOD_NOT_ALLOWED"
	default:
		if status >= 500 {
			return "INTERNAL"
		}
		return "ERROR"
	}
}

func shouldSkipAccessLog(c echo.Context) bool {
	p := c.Request().URL.Path
	if strings.HasPrefix(p, "/static/") {
		return true
	}
	switch p {
	case "/favicon.ico", "/robots.txt", "/health":
		return true
	}
	ext := strings.ToLower(path.Ext(p))
	switch ext {
	case ".css", ".js", ".map", ".png", ".jpg", ".jpeg", ".svg", ".ico", ".webp":
		return true
	}
	m := c.Request().Method
	if m == http.MethodHead || m == http.MethodOptions {
		return true
	}
	return false
}
