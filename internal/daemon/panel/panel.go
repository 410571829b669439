// Package panel serves the floating entity panel as a localhost web surface.
// It is a read-only consumer of the entity cache; user toggles are forwarded
// to the action dispatcher.
package panel

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/hearth-io/hearth/internal/models"
)

// DefaultAddr binds the panel to the loopback interface only.
const DefaultAddr = "127.0.0.1:8390"

// CacheReader is the panel's read-only view of the entity cache.
type CacheReader interface {
	List() []models.EntitySnapshot
	All() []models.EntitySnapshot
	Ready() bool
	Stale() bool
	LastRefresh() time.Time
}

// Toggler forwards a toggle intent to the action dispatcher.
type Toggler interface {
	Toggle(ctx context.Context, entityID string) error
}

// Refresher triggers an explicit cache refresh.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Panel hosts the entity panel endpoints and page.
type Panel struct {
	reader    CacheReader
	toggler   Toggler
	refresher Refresher
	log       zerolog.Logger
	mux       *http.ServeMux
	srv       *http.Server
	addr      string
}

// New creates a panel server on addr (DefaultAddr when empty).
func New(reader CacheReader, toggler Toggler, refresher Refresher, addr string, log zerolog.Logger) *Panel {
	if addr == "" {
		addr = DefaultAddr
	}
	p := &Panel{
		reader:    reader,
		toggler:   toggler,
		refresher: refresher,
		log:       log.With().Str("component", "panel").Logger(),
		mux:       http.NewServeMux(),
		addr:      addr,
	}

	p.mux.HandleFunc("/api/v1/entities", p.handleEntities)
	p.mux.HandleFunc("/api/v1/entities/", p.handleEntityAction)
	p.mux.HandleFunc("/api/v1/refresh", p.handleRefresh)
	p.mux.HandleFunc("/healthz", p.handleHealthz)
	p.mux.HandleFunc("/", p.handleIndex)

	return p
}

// URL returns the panel's browser address.
func (p *Panel) URL() string {
	return "http://" + p.addr + "/"
}

// ServeHTTP implements http.Handler.
func (p *Panel) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p.mux.ServeHTTP(w, r)
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (p *Panel) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", p.addr)
	if err != nil {
		return err
	}
	p.addr = listener.Addr().String()

	p.srv = &http.Server{
		Handler:      p,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = p.srv.Shutdown(shutdownCtx)
	}()

	p.log.Info().Str("addr", p.addr).Msg("panel listening")
	if err := p.srv.Serve(listener); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

type entitiesResponse struct {
	Entities    []models.EntitySnapshot `json:"entities"`
	Stale       bool                    `json:"stale"`
	LastRefresh time.Time               `json:"last_refresh"`
}

// handleEntities returns the selected entities in configured order, or a
// search across all cached entities when ?q= is present.
func (p *Panel) handleEntities(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	query := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("q")))
	var entities []models.EntitySnapshot
	if query == "" {
		entities = p.reader.List()
	} else {
		for _, entity := range p.reader.All() {
			if strings.Contains(strings.ToLower(entity.FriendlyName), query) ||
				strings.Contains(strings.ToLower(entity.EntityID), query) {
				entities = append(entities, entity)
			}
		}
	}
	if entities == nil {
		entities = []models.EntitySnapshot{}
	}

	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, entitiesResponse{
		Entities:    entities,
		Stale:       p.reader.Stale(),
		LastRefresh: p.reader.LastRefresh(),
	})
}

// handleEntityAction handles POST /api/v1/entities/{id}/toggle.
func (p *Panel) handleEntityAction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/entities/")
	entityID, action, ok := strings.Cut(rest, "/")
	if !ok || action != "toggle" || entityID == "" {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}

	if err := p.toggler.Toggle(r.Context(), entityID); err != nil {
		p.log.Warn().Err(err).Str("entity", entityID).Msg("panel toggle failed")
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (p *Panel) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if err := p.refresher.Refresh(r.Context()); err != nil {
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (p *Panel) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true, "ready": p.reader.Ready()})
}

func (p *Panel) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(indexHTML))
}

func methodNotAllowed(w http.ResponseWriter) {
	writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// OpenBrowser opens the given URL with the platform's default browser.
func OpenBrowser(url string) error {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", url).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	default:
		return exec.Command("xdg-open", url).Start()
	}
}
