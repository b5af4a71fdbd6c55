package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/listly/listly-backend/internal/auth"
	projectdomain "github.com/listly/listly-backend/internal/projects/domain"
	"github.com/listly/listly-backend/internal/scraping/events"
)

// StreamEvents streams project status changes using Server-Sent Events (SSE)
func (h *Handler) StreamEvents(c *gin.Context) {
	userID := auth.UserFirebaseUID(c)
	projectID := c.Param("id")
	ctx := c.Request.Context()

	// Verify the project exists and belongs to the caller
	project, err := h.projects.Get(ctx, userID, projectID)
	if err != nil {
		if errors.Is(err, projectdomain.ErrProjectNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "project not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "failed to get project"})
		return
	}

	var updates <-chan events.Event
	if h.subscriber != nil {
		// Subscribe before the initial event so nothing published in between is lost.
		updates, err = h.subscriber.Subscribe(ctx, projectID)
		if err != nil {
			updates = nil
		}
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

	send := func(event string, payload any) {
		data, _ := json.Marshal(payload)
		fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", event, string(data))
		flusher.Flush()
	}

	send("initial", gin.H{"project": project})

	keepAlive := time.NewTicker(h.keepAlive)
	defer keepAlive.Stop()

	if updates != nil {
		h.streamSubscribed(ctx, updates, keepAlive.C, send, flusher, c)
		return
	}
	h.streamPolling(ctx, userID, project, keepAlive.C, send, flusher, c)
}

func (h *Handler) streamSubscribed(ctx context.Context, updates <-chan events.Event, keepAlive <-chan time.Time,
	send func(string, any), flusher http.Flusher, c *gin.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		case <-keepAlive:
			fmt.Fprint(c.Writer, ": keep-alive\n\n")
			flusher.Flush()

		case ev, ok := <-updates:
			if !ok {
				return
			}
			switch ev.Type {
			case events.TypeDeleted:
				send("deleted", gin.H{"event": "deleted", "project_id": ev.ProjectID})
				return
			case events.TypeUpdate:
				send("update", gin.H{"project": ev.Project})
			}
		}
	}
}

func (h *Handler) streamPolling(ctx context.Context, userID string, project *projectdomain.Project, keepAlive <-chan time.Time,
	send func(string, any), flusher http.Flusher, c *gin.Context) {
	poll := time.NewTicker(h.pollInterval)
	defer poll.Stop()

	lastUpdatedAt := project.UpdatedAt
	lastStatus := project.Status

	for {
		select {
		case <-ctx.Done():
			// Client disconnected
			return

		case <-keepAlive:
			fmt.Fprint(c.Writer, ": keep-alive\n\n")
			flusher.Flush()

		case <-poll.C:
			updated, err := h.projects.Get(ctx, userID, project.ID)
			if err != nil {
				if errors.Is(err, projectdomain.ErrProjectNotFound) {
					send("deleted", gin.H{"event": "deleted", "project_id": project.ID})
					return
				}
				continue
			}

			if updated.UpdatedAt.After(lastUpdatedAt) || updated.Status != lastStatus {
				lastUpdatedAt = updated.UpdatedAt
				lastStatus = updated.Status
				send("update", gin.H{"project": updated})
			}
		}
	}
}
