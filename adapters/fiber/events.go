package fiber

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/log"

	"github.com/mbreck/postern/core"
)

// keepaliveInterval paces SSE comment pings so dead connections surface as
// flush errors instead of lingering subscribers.
const keepaliveInterval = 15 * time.Second

// handleEvents is the real-time channel: a server-sent event stream joined
// to the caller's session. A connection whose session already proved an
// identity gets the current outcome pushed immediately on connect; later
// token consumptions for the session reach every open stream.
func (a *Adapter) handleEvents(p *core.Postern) fiber.Handler {
	return func(c fiber.Ctx) error {
		// The event stream never mints sessions; it rides the identifier
		// the HTTP boundary established. Arriving without one means the
		// integration is wired wrong.
		sessionID := c.Cookies(a.cfg.CookieName)
		if sessionID == "" {
			log.Errorf("postern: event stream request without a session cookie")
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{
				"error": "no session",
			})
		}

		c.Set(fiber.HeaderContentType, "text/event-stream")
		c.Set(fiber.HeaderCacheControl, "no-cache")
		c.Set(fiber.HeaderConnection, "keep-alive")

		sub := p.JoinSession(c.Context(), sessionID)
		ctx := c.Context()

		return c.SendStreamWriter(func(w *bufio.Writer) {
			defer sub.Leave()

			keepalive := time.NewTicker(keepaliveInterval)
			defer keepalive.Stop()

			for {
				select {
				case ev, ok := <-sub.C:
					if !ok {
						return
					}
					if err := writeEvent(w, ev); err != nil {
						return
					}
				case <-keepalive.C:
					if _, err := fmt.Fprint(w, ": keepalive\n\n"); err != nil {
						return
					}
					if err := w.Flush(); err != nil {
						return
					}
				case <-ctx.Done():
					return
				}
			}
		})
	}
}

func writeEvent(w *bufio.Writer, ev core.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Kind, payload); err != nil {
		return err
	}
	return w.Flush()
}
