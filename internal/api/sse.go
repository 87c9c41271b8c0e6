package api

import (
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	sseBuffer    = 8
	sseHeartbeat = 10 * time.Second
)

type sseMessage struct {
	event string
	data  interface{}
}

// eventHub 按衣橱所有者分发变更事件
type eventHub struct {
	mu          sync.Mutex
	subscribers map[uint]map[chan sseMessage]struct{}
}

func newEventHub() *eventHub {
	return &eventHub{subscribers: make(map[uint]map[chan sseMessage]struct{})}
}

func (hub *eventHub) subscribe(ownerID uint) chan sseMessage {
	ch := make(chan sseMessage, sseBuffer)
	hub.mu.Lock()
	defer hub.mu.Unlock()
	if hub.subscribers[ownerID] == nil {
		hub.subscribers[ownerID] = make(map[chan sseMessage]struct{})
	}
	hub.subscribers[ownerID][ch] = struct{}{}
	return ch
}

func (hub *eventHub) unsubscribe(ownerID uint, ch chan sseMessage) {
	hub.mu.Lock()
	defer hub.mu.Unlock()
	delete(hub.subscribers[ownerID], ch)
	if len(hub.subscribers[ownerID]) == 0 {
		delete(hub.subscribers, ownerID)
	}
}

// publish 不阻塞写入方，消费过慢的连接会丢消息
func (hub *eventHub) publish(ownerID uint, msg sseMessage) int {
	hub.mu.Lock()
	defer hub.mu.Unlock()

	delivered := 0
	for ch := range hub.subscribers[ownerID] {
		select {
		case ch <- msg:
			delivered++
		default:
			logrus.WithFields(logrus.Fields{
				"user_id": ownerID,
				"event":   msg.event,
			}).Warn("dropping wardrobe event for slow consumer")
		}
	}
	return delivered
}

func (hub *eventHub) count(ownerID uint) int {
	hub.mu.Lock()
	defer hub.mu.Unlock()
	return len(hub.subscribers[ownerID])
}

// StreamWardrobeEvents 推送当前用户的衣橱变更事件
func (h *HTTPHandler) StreamWardrobeEvents(c *gin.Context) {
	owner := CurrentUser(c)
	if owner == nil {
		Unauthorized(c, "authentication required")
		return
	}

	events := h.events.subscribe(owner.ID)
	defer h.events.unsubscribe(owner.ID, events)

	header := c.Writer.Header()
	header.Set("Content-Type", "text/event-stream")
	header.Set("Cache-Control", "no-cache")
	header.Set("Connection", "keep-alive")
	header.Set("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	heartbeat := time.NewTicker(sseHeartbeat)
	defer heartbeat.Stop()

	log := logrus.WithField("user_id", owner.ID)
	log.Info("wardrobe event stream opened")
	defer log.Info("wardrobe event stream closed")

	done := c.Request.Context().Done()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-done:
			return false
		case <-heartbeat.C:
			c.SSEvent("ping", gin.H{"ts": time.Now().UnixMilli()})
		case msg := <-events:
			c.SSEvent(msg.event, msg.data)
		}
		return true
	})
}
