package handler

import (
	"errors"
	"fmt"
	"time"

	"github.com/inspeksi/apar-backend/internal/inspection/repository"
	"github.com/inspeksi/apar-backend/internal/inspection/service"
	"github.com/inspeksi/apar-backend/internal/shared/sse"
	"github.com/gin-gonic/gin"
)

// NotificationHandler serves the in-app notification feed and the SSE
// event stream.
type NotificationHandler struct {
	svc *service.NotificationService
	hub *sse.Hub
}

func NewNotificationHandler(svc *service.NotificationService, hub *sse.Hub) *NotificationHandler {
	return &NotificationHandler{svc: svc, hub: hub}
}

// List GET /api/v1/notifications
func (h *NotificationHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	unreadOnly := c.Query("unread") == "true"

	items, total, err := h.svc.ListForUser(c.Request.Context(), GetUserID(c), page, pageSize, unreadOnly)
	if err != nil {
		InternalError(c, "list notifications failed: "+err.Error())
		return
	}
	Success(c, ListResponse{Items: items, Pagination: NewPagination(page, pageSize, total)})
}

// UnreadCount GET /api/v1/notifications/unread-count
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	count, err := h.svc.CountUnread(c.Request.Context(), GetUserID(c))
	if err != nil {
		InternalError(c, "count notifications failed: "+err.Error())
		return
	}
	Success(c, gin.H{"count": count})
}

// MarkRead PUT /api/v1/notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	if err := h.svc.MarkRead(c.Request.Context(), c.Param("id"), GetUserID(c)); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "notification not found")
			return
		}
		InternalError(c, "mark read failed: "+err.Error())
		return
	}
	Success(c, gin.H{"message": "marked read"})
}

// MarkAllRead PUT /api/v1/notifications/read-all
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	if err := h.svc.MarkAllRead(c.Request.Context(), GetUserID(c)); err != nil {
		InternalError(c, "mark all read failed: "+err.Error())
		return
	}
	Success(c, gin.H{"message": "all marked read"})
}

// Stream GET /api/v1/events?token=xxx
//
// SSE stream of notification events. EventSource cannot set headers, so
// the token rides in the query string.
func (h *NotificationHandler) Stream(c *gin.Context) {
	userID := GetUserID(c)
	clientID := fmt.Sprintf("%s_%d", userID, time.Now().UnixNano())

	client := &sse.Client{
		ID:     clientID,
		UserID: userID,
		Events: make(chan sse.Event, 64),
	}

	h.hub.Register(client)

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")

	c.Writer.WriteString("event: connected\ndata: {\"client_id\":\"" + clientID + "\"}\n\n")
	c.Writer.Flush()

	heartbeat := time.NewTicker(30 * time.Second)
	defer heartbeat.Stop()

	clientGone := c.Request.Context().Done()

	for {
		select {
		case <-clientGone:
			h.hub.Unregister(clientID)
			return
		case event, ok := <-client.Events:
			if !ok {
				return
			}
			c.Writer.WriteString(fmt.Sprintf("event: %s\ndata: %s\n\n", event.EventType, event.Data))
			c.Writer.Flush()
		case <-heartbeat.C:
			c.Writer.WriteString(": keepalive\n\n")
			c.Writer.Flush()
		}
	}
}
