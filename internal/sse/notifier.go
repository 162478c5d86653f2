package sse

import "time"

// ImportNotifier is the interface services use to emit import events.
type ImportNotifier interface {
	NotifyImport(event *ImportEvent)
}

// HubNotifier implements ImportNotifier using the SSE Hub.
type HubNotifier struct {
	hub *Hub
}

// NewHubNotifier creates a notifier backed by the given Hub.
func NewHubNotifier(hub *Hub) *HubNotifier {
	return &HubNotifier{hub: hub}
}

func (n *HubNotifier) NotifyImport(event *ImportEvent) {
	if n.hub.ClientCount() == 0 {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	n.hub.Broadcast(event)
}

// NopNotifier is a no-op implementation for when SSE is not needed.
type NopNotifier struct{}

func (n *NopNotifier) NotifyImport(event *ImportEvent) {}
