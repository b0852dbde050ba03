package dashboard

import (
	"embed"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/Mavwarf/reveil/internal/alarm"
	"github.com/Mavwarf/reveil/internal/audio"
	"github.com/Mavwarf/reveil/internal/engine"
	"github.com/Mavwarf/reveil/internal/eventlog"
	"github.com/Mavwarf/reveil/internal/radio"
)

//go:embed static/index.html
var staticFS embed.FS

// maxToasts bounds the in-memory feedback buffer.
const maxToasts = 50

// Toast is one UI feedback message.
type Toast struct {
	Time     time.Time `json:"time"`
	Message  string    `json:"message"`
	Severity string    `json:"severity"`
}

// Server is the local HTTP surface the clock UI consumes: alarm
// registry mutation, engine control (stop/snooze), status, catalogs and
// ring history. It also collects the engine's toast feedback so the UI
// can poll it.
type Server struct {
	engine  *engine.Engine
	store   eventlog.Store // may be nil
	catalog *radio.Catalog

	mu     sync.Mutex
	toasts []Toast
}

func NewServer(e *engine.Engine, store eventlog.Store, catalog *radio.Catalog) *Server {
	return &Server{engine: e, store: store, catalog: catalog}
}

// Toast implements engine.Toaster by buffering recent feedback.
func (s *Server) Toast(message, severity string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.toasts = append(s.toasts, Toast{Time: time.Now(), Message: message, Severity: severity})
	if len(s.toasts) > maxToasts {
		s.toasts = s.toasts[len(s.toasts)-maxToasts:]
	}
}

// Handler returns the HTTP handler for the dashboard.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		data, err := staticFS.ReadFile("static/index.html")
		if err != nil {
			http.Error(w, "dashboard page missing", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(data)
	})

	mux.HandleFunc("GET /api/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, s.engine.Status())
	})

	mux.HandleFunc("GET /api/alarms", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, s.engine.Registry().List())
	})

	mux.HandleFunc("POST /api/alarms", func(w http.ResponseWriter, r *http.Request) {
		var a alarm.Alarm
		if err := json.NewDecoder(r.Body).Decode(&a); err != nil {
			http.Error(w, fmt.Sprintf("bad alarm: %v", err), http.StatusBadRequest)
			return
		}
		id, err := s.engine.Registry().Add(a)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, map[string]string{"id": id})
	})

	mux.HandleFunc("DELETE /api/alarms/{id}", func(w http.ResponseWriter, r *http.Request) {
		// Absent ids are silently ignored, matching the registry
		// contract.
		s.engine.Registry().Remove(r.PathValue("id"))
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("PATCH /api/alarms/{id}", func(w http.ResponseWriter, r *http.Request) {
		var p alarm.Patch
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			http.Error(w, fmt.Sprintf("bad patch: %v", err), http.StatusBadRequest)
			return
		}
		if err := s.engine.Registry().Update(r.PathValue("id"), p); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("POST /api/stop", func(w http.ResponseWriter, r *http.Request) {
		s.engine.Stop()
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("POST /api/snooze", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Minutes int `json:"minutes"`
		}
		// An empty body means the configured default duration.
		json.NewDecoder(r.Body).Decode(&body)
		s.engine.Snooze(body.Minutes)
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("POST /api/volume", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Volume int `json:"volume"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, fmt.Sprintf("bad volume: %v", err), http.StatusBadRequest)
			return
		}
		s.engine.SetVolume(body.Volume)
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("GET /api/stations", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, s.catalog.Stations())
	})

	mux.HandleFunc("GET /api/sounds", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, audio.Names())
	})

	mux.HandleFunc("GET /api/toasts", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		out := make([]Toast, len(s.toasts))
		copy(out, s.toasts)
		s.mu.Unlock()
		writeJSON(w, out)
	})

	mux.HandleFunc("GET /api/events", func(w http.ResponseWriter, r *http.Request) {
		days := 7
		if v := r.URL.Query().Get("days"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				http.Error(w, "days must be a non-negative integer", http.StatusBadRequest)
				return
			}
			days = n
		}
		if s.store == nil {
			writeJSON(w, []eventlog.Entry{})
			return
		}
		entries, err := s.store.Entries(days)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if entries == nil {
			entries = []eventlog.Entry{}
		}
		writeJSON(w, entries)
	})

	return mux
}

// Serve runs the dashboard on addr until the listener fails.
func (s *Server) Serve(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return srv.ListenAndServe()
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
