package web

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"net/http"

	"github.com/Csrahmoh/Autonomous-Firefighting-Robot-Webots/internal/logic/mission"
)

// SnapshotFunc returns the current mission telemetry view.
// It is called from HTTP handler goroutines and must be safe for
// concurrent use.
type SnapshotFunc func() mission.Snapshot

// Handlers holds dependencies for HTTP handlers.
type Handlers struct {
	Broadcaster *StatusBroadcaster
	Snapshot    SnapshotFunc
	ConfigView  interface{}
	staticFS    fs.FS
}

// NewHandlers creates handlers with the given dependencies.
// configView is the loaded configuration, exposed read-only at /config.
func NewHandlers(broadcaster *StatusBroadcaster, snapshot SnapshotFunc, configView interface{}, staticFS fs.FS) *Handlers {
	return &Handlers{
		Broadcaster: broadcaster,
		Snapshot:    snapshot,
		ConfigView:  configView,
		staticFS:    staticFS,
	}
}

// HandleState returns the current mission snapshot as JSON.
func (h *Handlers) HandleState(w http.ResponseWriter, r *http.Request) {
	if h.Snapshot == nil {
		http.Error(w, "mission not running", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.Snapshot())
}

// HandleConfig returns the active configuration as JSON.
func (h *Handlers) HandleConfig(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.ConfigView)
}

// ServeIndex serves the main HTML page (root path only).
func (h *Handlers) ServeIndex(w http.ResponseWriter, r *http.Request) {
	data, err := fs.ReadFile(h.staticFS, "index.html")
	if err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(data)
}

// HandleStatusStream streams log messages to the client as Server-Sent Events.
func (h *Handlers) HandleStatusStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, unsub := h.Broadcaster.Subscribe()
	defer unsub()

	// Confirm the stream is alive before the first real event.
	fmt.Fprintf(w, ": connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, open := <-ch:
			if !open {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}
