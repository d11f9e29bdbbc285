package fiber

import (
	"net/http"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/log"

	"github.com/mbreck/postern/core"
)

// RequireAuthorized gates protected content: the session must carry a
// proven identity and that identity must be on the allow-list. Anything
// less redirects to the failure location. Downstream handlers find the
// proven address under the "email" local.
func (a *Adapter) RequireAuthorized(p *core.Postern) fiber.Handler {
	return func(c fiber.Ctx) error {
		sessionID := c.Cookies(a.cfg.CookieName)
		if sessionID == "" {
			return c.Redirect().Status(http.StatusSeeOther).To(a.cfg.FailureURL)
		}

		email, err := p.Sessions.IsAuthenticated(c.Context(), sessionID)
		if err != nil {
			log.Errorf("postern: gate check failed for session %s: %v", sessionID, err)
			return c.SendStatus(http.StatusInternalServerError)
		}

		if email == "" || !p.Access.IsAuthorized(email) {
			return c.Redirect().Status(http.StatusSeeOther).To(a.cfg.FailureURL)
		}

		c.Locals("email", email)
		return c.Next()
	}
}
