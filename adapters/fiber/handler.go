package fiber

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/log"
	"github.com/google/uuid"

	"github.com/mbreck/postern/core"
)

// sessionID returns the session identifier from the request cookie, minting
// and setting a fresh one when the browser arrives without it.
func (a *Adapter) sessionID(c fiber.Ctx) string {
	if id := c.Cookies(a.cfg.CookieName); id != "" {
		return id
	}

	id := uuid.NewString()
	c.Cookie(&fiber.Cookie{
		Name:   a.cfg.CookieName,
		Value:  id,
		Domain: a.cfg.CookieDomain,
		Path:   "/",
	})
	return id
}

// handleRequest is the issuance endpoint. The token never appears in the
// response; it travels out-of-band via email.
func (a *Adapter) handleRequest(p *core.Postern) fiber.Handler {
	return func(c fiber.Ctx) error {
		var input struct {
			Email string `json:"email"`
		}
		if err := c.Bind().Body(&input); err != nil {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid request body",
			})
		}

		_, err := p.BeginAuthentication(c.Context(), a.sessionID(c), input.Email)
		if err != nil {
			var debounce *core.DebounceError
			if errors.As(err, &debounce) {
				return c.Status(http.StatusTooManyRequests).JSON(fiber.Map{
					"error":        "too many login requests",
					"retryAfterMs": debounce.RemainingMillis(),
				})
			}
			return handleAuthError(c, err)
		}

		return c.Status(http.StatusAccepted).JSON(fiber.Map{
			"message": "check your email for a login link",
		})
	}
}

// handleVerify is the token-link endpoint. Every token failure redirects to
// the same place: the link's visitor learns nothing about why, the logs
// keep the specific cause.
func (a *Adapter) handleVerify(p *core.Postern) fiber.Handler {
	return func(c fiber.Ctx) error {
		token := c.Query("token")

		creds, err := p.CompleteAuthentication(c.Context(), token)
		if err != nil {
			log.Errorf("postern: token-link authentication failed: %v", err)
			return c.Redirect().Status(http.StatusSeeOther).To(a.cfg.FailureURL)
		}

		log.Infof("postern: session %s authenticated as %s", creds.SessionID, creds.ContactAddress)
		return c.Redirect().Status(http.StatusSeeOther).To(a.cfg.SuccessURL)
	}
}

// handleAccessUpdate wholly replaces the allow-list. A payload that fails
// to parse leaves the previous list active.
func (a *Adapter) handleAccessUpdate(p *core.Postern) fiber.Handler {
	return func(c fiber.Ctx) error {
		if err := p.Access.ReplaceJSON(c.Body()); err != nil {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{
				"error": "could not parse access list",
			})
		}
		return c.SendStatus(http.StatusNoContent)
	}
}

// handleAuthError maps core errors to HTTP responses.
func handleAuthError(c fiber.Ctx, err error) error {
	return c.Status(mapErrorToStatus(err)).JSON(fiber.Map{
		"error": err.Error(),
	})
}

func mapErrorToStatus(err error) int {
	switch {
	case errors.Is(err, core.ErrSessionIDRequired),
		errors.Is(err, core.ErrEmailRequired),
		errors.Is(err, core.ErrInvalidEmail):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}
