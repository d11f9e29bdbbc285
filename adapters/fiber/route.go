// Package fiber binds postern to a Fiber application: the issuance and
// token-link endpoints, the live event stream, the access-list update entry
// point, and a gate middleware for protected content.
package fiber

import (
	"github.com/gofiber/fiber/v3"

	"github.com/mbreck/postern/core"
)

const (
	DefaultCookieName = "postern_session"
	DefaultSuccessURL = "/success.html"
	DefaultFailureURL = "/index.html"
)

// Config carries the transport-level knobs; the zero value works.
type Config struct {
	// CookieName is the session identifier cookie.
	CookieName string

	// CookieDomain scopes the session cookie. Empty leaves it host-only.
	CookieDomain string

	// SuccessURL is where the token-link endpoint redirects after a
	// successful authentication.
	SuccessURL string

	// FailureURL is where the token-link endpoint redirects on any token
	// failure, and where the gate middleware sends unauthorized browsers.
	// The failure is deliberately generic; the cause only appears in logs.
	FailureURL string
}

type Adapter struct {
	app *fiber.App
	cfg Config
}

var _ core.HTTPAdapter = (*Adapter)(nil)

func New(app *fiber.App, cfg Config) *Adapter {
	if cfg.CookieName == "" {
		cfg.CookieName = DefaultCookieName
	}
	if cfg.SuccessURL == "" {
		cfg.SuccessURL = DefaultSuccessURL
	}
	if cfg.FailureURL == "" {
		cfg.FailureURL = DefaultFailureURL
	}
	return &Adapter{app: app, cfg: cfg}
}

func (a *Adapter) RegisterRoutes(p *core.Postern) error {
	api := a.app.Group(p.BasePath)

	api.Post("/request", a.handleRequest(p))
	api.Get("/verify", a.handleVerify(p))
	api.Get("/events", a.handleEvents(p))
	api.Put("/access", a.handleAccessUpdate(p))

	return nil
}
