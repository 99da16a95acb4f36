package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"lendbook/internal/service"
	"lendbook/internal/watch"
	"lendbook/pkg/response"
)

type DashboardHandler struct {
	service *service.DashboardService
	hub     *watch.Hub
}

func NewDashboardHandler(service *service.DashboardService, hub *watch.Hub) *DashboardHandler {
	return &DashboardHandler{
		service: service,
		hub:     hub,
	}
}

// Summary handles GET /api/v1/dashboard
func (h *DashboardHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary(r.Context(), SessionFrom(r.Context()), time.Now())
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, summary)
}

// Stream handles GET /api/v1/stream. It emits the owner's full ledger
// snapshot as a server-sent event immediately and again after every change,
// until the client disconnects.
func (h *DashboardHandler) Stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		response.BadRequest(w, "streaming unsupported", nil)
		return
	}

	sess := SessionFrom(r.Context())
	snapshots, err := h.hub.Subscribe(r.Context(), sess)
	if err != nil {
		response.FromError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for snap := range snapshots {
		payload, err := json.Marshal(snap)
		if err != nil {
			slog.ErrorContext(r.Context(), "snapshot marshal failed", "error", err)
			continue
		}
		fmt.Fprintf(w, "event: snapshot\ndata: %s\n\n", payload)
		flusher.Flush()
	}
}
