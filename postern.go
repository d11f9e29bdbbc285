// Package postern implements passwordless, email-link authentication bound
// to a browser session.
//
// A session asks for a login link, the debounce guard admits the request,
// and a single-use token is issued and mailed out-of-band. Visiting the
// link consumes the token, proves the address for the session, and pushes
// the outcome to every live connection joined to that session. Whether the
// proven address may actually use the service is a separate question,
// answered by an atomically swappable allow-list.
package postern

import (
	"time"

	"github.com/mbreck/postern/core"
)

// interfaces
type (
	Storage         = core.Storage
	TokenStorage    = core.TokenStorage
	SessionStorage  = core.SessionStorage
	DebounceStorage = core.DebounceStorage

	Mailer     = core.Mailer
	MailerFunc = core.MailerFunc

	HTTPAdapter = core.HTTPAdapter
)

// structs
type (
	Postern = core.Postern
	Config  = core.Config
)

type (
	AuthToken   = core.AuthToken
	Credentials = core.Credentials
	Event       = core.Event
	EventKind   = core.EventKind
	Subscriber  = core.Subscriber

	DebounceError = core.DebounceError
)

const (
	EventAuthenticated = core.EventAuthenticated
	EventAccessWarning = core.EventAccessWarning
)

const (
	DefaultTokenTTL       = 30 * time.Minute
	DefaultDebounceWindow = time.Minute
	DefaultTokenBytes     = 32
	DefaultBasePath       = "/auth"
)

// Constructors & helpers (convenience re-exports)
var (
	NewMemoryStorage = core.NewMemoryStorage
	NewAccessGate    = core.NewAccessGate
	NewHub           = core.NewHub
)

var (
	ErrSessionIDRequired = core.ErrSessionIDRequired
	ErrEmailRequired     = core.ErrEmailRequired
	ErrInvalidEmail      = core.ErrInvalidEmail
)

var (
	ErrTokenNotFound = core.ErrTokenNotFound
	ErrTokenExpired  = core.ErrTokenExpired
	ErrTokenConsumed = core.ErrTokenConsumed
)

var (
	ErrAccessListParse = core.ErrAccessListParse
)

var (
	ErrMailerRequired = core.ErrMailerRequired
)

// New wires a Postern instance from config.
//
// Mailer is required: the mail signal is how tokens reach users. Storage
// defaults to the in-memory backend, which is fine for a single process and
// for tests; production deployments hand in a pgx or redis adapter. When an
// HTTP adapter is present its routes are registered before returning.
func New(config Config) (*core.Postern, error) {
	if config.Mailer == nil {
		return nil, ErrMailerRequired
	}

	// Set Defaults

	storage := config.Storage
	if storage == nil {
		storage = core.NewMemoryStorage()
	}

	tokenTTL := config.TokenTTL
	if tokenTTL == 0 {
		tokenTTL = DefaultTokenTTL
	}

	debounceWindow := config.DebounceWindow
	if debounceWindow == 0 {
		debounceWindow = DefaultDebounceWindow
	}

	tokenBytes := config.TokenBytes
	if tokenBytes == 0 {
		tokenBytes = DefaultTokenBytes
	}

	basePath := config.BasePath
	if basePath == "" {
		basePath = DefaultBasePath
	}

	p := core.NewPostern(storage, config.Mailer, tokenTTL, debounceWindow, tokenBytes, basePath)

	if config.HTTP != nil {
		if err := config.HTTP.RegisterRoutes(p); err != nil {
			return nil, err
		}
	}

	return p, nil
}
