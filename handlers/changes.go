package handlers

import (
	"bufio"
	"encoding/json"
	"fmt"
	"time"

	"notepad/app"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
)

var keepAliveInterval = 15 * time.Second

// Changes streams change descriptors as server-sent events. The optional
// path query parameter narrows the stream to one collection or item; by
// default every change is sent.
func Changes(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		uri := trackTarget(c, contentURI(c.Query("path")))
		if c.Query("path") != "" {
			if _, err := a.Provider.Schema().Match(uri); err != nil {
				return providerError(c, "Invalid change stream path", err)
			}
		}
		descendants := c.QueryBool("descendants", true)

		c.Set(fiber.HeaderContentType, "text/event-stream")
		c.Set(fiber.HeaderCacheControl, "no-cache")
		c.Set(fiber.HeaderConnection, "keep-alive")

		sub := a.Bus.Subscribe(uri, descendants)
		logger := a.Logger
		requestID, _ := c.Locals("requestID").(string)

		c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
			defer sub.Close()

			ticker := time.NewTicker(keepAliveInterval)
			defer ticker.Stop()

			fmt.Fprintf(w, ": watching %s\n\n", uri)
			if err := w.Flush(); err != nil {
				return
			}

			for {
				select {
				case change, ok := <-sub.C:
					if !ok {
						return
					}
					data, err := json.Marshal(change)
					if err != nil {
						logger.Warn("failed to encode change", "request_id", requestID, "error", err)
						continue
					}
					fmt.Fprintf(w, "event: change\ndata: %s\n\n", data)
				case <-ticker.C:
					fmt.Fprint(w, ": ping\n\n")
				}
				// Flush fails once the client has gone away
				if err := w.Flush(); err != nil {
					logger.Debug("change stream closed", "request_id", requestID, "uri", uri)
					return
				}
			}
		}))

		return nil
	}
}
