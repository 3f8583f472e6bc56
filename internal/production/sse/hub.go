package sse

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

// Event represents a Server-Sent Event
type Event struct {
	EventType string `json:"event"`
	Data      string `json:"data"`
}

// Client represents a connected SSE client
type Client struct {
	ID     string
	UserID string
	Events chan Event
}

// Hub fans production events out to connected dashboards.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
	logger  *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		clients: make(map[string]*Client),
		logger:  logger,
	}
}

func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client.ID] = client
	h.logger.Debug("sse client registered", zap.String("client", client.ID), zap.String("user", client.UserID), zap.Int("total", len(h.clients)))
}

func (h *Hub) Unregister(clientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if client, ok := h.clients[clientID]; ok {
		close(client.Events)
		delete(h.clients, clientID)
		h.logger.Debug("sse client unregistered", zap.String("client", clientID), zap.Int("total", len(h.clients)))
	}
}

// Broadcast sends an event to all connected clients
func (h *Hub) Broadcast(event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients {
		select {
		case client.Events <- event:
		default:
			h.logger.Warn("sse client buffer full, skipping event", zap.String("client", client.ID), zap.String("event", event.EventType))
		}
	}
}

// SendToUser 给特定用户发送事件（而非广播）
func (h *Hub) SendToUser(userID string, event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients {
		if client.UserID != userID {
			continue
		}
		select {
		case client.Events <- event:
		default:
			h.logger.Warn("sse client buffer full, skipping user event", zap.String("client", client.ID))
		}
	}
}

func (h *Hub) publish(eventType string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("sse marshal failed", zap.String("event", eventType), zap.Error(err))
		return
	}
	h.Broadcast(Event{EventType: eventType, Data: string(data)})
}

// PublishWorkItemUpdate 工作项树变化（创建、保存、发布）
func (h *Hub) PublishWorkItemUpdate(orderID, workItemID uint64, action string) {
	h.publish("work_item_update", map[string]interface{}{
		"order_id":     orderID,
		"work_item_id": workItemID,
		"action":       action,
	})
}

// PublishTimelineUpdate 时间线变化
func (h *Hub) PublishTimelineUpdate(orderID uint64, action string) {
	h.publish("timeline_update", map[string]interface{}{
		"order_id": orderID,
		"action":   action,
	})
}

// PublishExtensionUpdate 延期申请变化，附带最新的可编辑状态
func (h *Hub) PublishExtensionUpdate(orderID, requestID uint64, status string, editable bool) {
	h.publish("extension_update", map[string]interface{}{
		"order_id":   orderID,
		"request_id": requestID,
		"status":     status,
		"editable":   editable,
	})
}

// PublishResponseUpdate 响应轨道变化
func (h *Hub) PublishResponseUpdate(orderID uint64, stage, track, action string) {
	h.publish("response_update", map[string]interface{}{
		"order_id": orderID,
		"stage":    stage,
		"track":    track,
		"action":   action,
	})
}
