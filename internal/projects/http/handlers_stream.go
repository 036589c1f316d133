package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Kenz1481/web-deployment-website/internal/projects/domain"
)

// streamEvents relays pipeline events for one project as Server-Sent Events.
// The stream ends when the client disconnects, the project reaches a
// terminal status or the project is deleted.
func (h *Handler) streamEvents(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	// Subscribe before reading the snapshot so nothing published in between is lost.
	events, cancel, err := h.svc.Subscribe(ctx, id)
	if err != nil {
		writeError(c, err)
		return
	}
	defer cancel()

	p, err := h.svc.Get(ctx, id)
	if err != nil {
		writeError(c, err)
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no") // nginx: disable buffering

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "streaming unsupported"})
		return
	}

	initial, _ := json.Marshal(gin.H{"status": p.Status, "logs": p.Logs})
	fmt.Fprintf(c.Writer, "event: initial\ndata: %s\n\n", initial)
	flusher.Flush()

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			fmt.Fprint(c.Writer, ": keep-alive\n\n")
			flusher.Flush()

		case ev, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", ev.Kind, data)
			flusher.Flush()
			if ev.Kind == domain.EventDeleted || (ev.Kind == domain.EventStatus && ev.Status.IsTerminal()) {
				return
			}
		}
	}
}
