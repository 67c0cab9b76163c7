package api

import (
	"net/http"
)

// DashboardHandler reports live process state for the activity dashboard.
type DashboardHandler struct {
	backend    string
	queueDepth func() int
	clients    func() int
}

func NewDashboardHandler(backend string, queueDepth, clients func() int) *DashboardHandler {
	return &DashboardHandler{backend: backend, queueDepth: queueDepth, clients: clients}
}

type statsResponse struct {
	StoreBackend     string `json:"store_backend"`
	QueueDepth       int    `json:"queue_depth"`
	WebSocketClients int    `json:"websocket_clients"`
}

// Stats returns queue depth and connected dashboard clients.
func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	resp := statsResponse{StoreBackend: h.backend}
	if h.queueDepth != nil {
		resp.QueueDepth = h.queueDepth()
	}
	if h.clients != nil {
		resp.WebSocketClients = h.clients()
	}
	respondJSON(w, http.StatusOK, resp)
}
