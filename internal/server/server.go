// Package server exposes the dashboard over HTTP: the embedded map
// page, the view and layer APIs, and the basemap tile proxy.
package server

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/epimaps/broadstreet/internal/crs"
	"github.com/epimaps/broadstreet/internal/geodata"
	"github.com/epimaps/broadstreet/internal/layer"
	"github.com/epimaps/broadstreet/internal/mapview"
	"github.com/epimaps/broadstreet/internal/observability"
	"github.com/epimaps/broadstreet/internal/tiles"
)

//go:embed assets
var assets embed.FS

// Options configures the dashboard server.
type Options struct {
	Port           int
	AllowedOrigins []string
	DefaultBasemap string
	MetricsEnabled bool
}

// Server wires the loader, composer, and tile proxy behind a chi
// router.
type Server struct {
	loader   *geodata.Loader
	composer *mapview.Composer
	proxy    *tiles.Proxy
	metrics  *observability.Metrics
	opts     Options

	http *http.Server
	log  *zap.Logger
}

// New assembles the dashboard server. metrics may be nil when the
// endpoint is disabled.
func New(loader *geodata.Loader, composer *mapview.Composer, proxy *tiles.Proxy, metrics *observability.Metrics, opts Options) *Server {
	s := &Server{
		loader:   loader,
		composer: composer,
		proxy:    proxy,
		metrics:  metrics,
		opts:     opts,
		log:      zap.L().With(zap.String("component", "server")),
	}
	s.http = &http.Server{
		Addr:         fmt.Sprintf(":%d", opts.Port),
		Handler:      s.routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	origins := s.opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/", s.handleIndex)
	r.Get("/healthz", s.handleHealth)
	r.Get("/api/view", s.handleView)
	r.Get("/api/basemaps", s.handleBasemaps)
	r.Get("/api/layers/{name}", s.handleLayer)
	r.Post("/api/reload", s.handleReload)
	r.Get("/tiles/{basemap}/{z}/{x}/{y}", s.handleTile)

	if s.opts.MetricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}
	return r
}

// ListenAndServe runs the server until the context is canceled, then
// shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", zap.String("addr", s.http.Addr))
		errCh <- s.http.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.log.Info("shutting down")
	return s.http.Shutdown(shutdownCtx)
}

// Handler exposes the routed handler, used by tests.
func (s *Server) Handler() http.Handler {
	return s.routes()
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	page, err := assets.ReadFile("assets/index.html")
	if err != nil {
		http.Error(w, "page unavailable", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(page)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleView composes a full map view from the query toggles. Any
// failure returns an error body and never a partial view.
func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	state := mapview.ControlState{
		ShowDeaths: boolParam(r, "deaths", true),
		ShowPumps:  boolParam(r, "pumps", true),
		ShowArea:   boolParam(r, "areas", true),
		Basemap:    r.URL.Query().Get("basemap"),
	}
	if state.Basemap == "" {
		state.Basemap = s.opts.DefaultBasemap
	}

	ds, err := s.loader.Load(r.Context())
	if err != nil {
		s.observeRender(outcomeFor(err), time.Since(start))
		s.writeError(w, err)
		return
	}

	view, err := s.composer.Compose(ds, state)
	if err != nil {
		s.observeRender(outcomeFor(err), time.Since(start))
		s.writeError(w, err)
		return
	}

	s.observeRender(observability.OutcomeOK, time.Since(start))
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleBasemaps(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, mapview.Basemaps())
}

// handleLayer serves one layer as GeoJSON, independent of the view
// toggles.
func (s *Server) handleLayer(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	cfgs := layer.DefaultConfigs(nil)
	found := false
	for i := range cfgs {
		cfgs[i].Enabled = cfgs[i].Name == name
		found = found || cfgs[i].Enabled
	}
	if !found {
		writeJSON(w, http.StatusNotFound, errorBody("unknown layer "+name))
		return
	}

	ds, err := s.loader.Load(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}

	layers, err := layer.Build(ds, cfgs)
	if err != nil {
		s.writeError(w, err)
		return
	}

	body, err := layer.EncodeGeoJSON(layers[0])
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	_, _ = w.Write(body)
}

// handleReload drops the cached dataset and reads the sources fresh.
func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	ds, err := s.loader.Reload(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.log.Info("dataset reloaded",
		zap.Int("deaths", ds.DeathCount()),
		zap.Int("pumps", ds.PumpCount()),
		zap.Int("areas", len(ds.Areas)),
	)
	writeJSON(w, http.StatusOK, map[string]int{
		"deaths": ds.DeathCount(),
		"pumps":  ds.PumpCount(),
		"areas":  len(ds.Areas),
	})
}

// handleTile proxies one basemap tile. A trailing ".png" on the y
// segment is accepted for Leaflet templates.
func (s *Server) handleTile(w http.ResponseWriter, r *http.Request) {
	basemap := chi.URLParam(r, "basemap")
	z, errZ := strconv.Atoi(chi.URLParam(r, "z"))
	x, errX := strconv.Atoi(chi.URLParam(r, "x"))
	y, errY := strconv.Atoi(strings.TrimSuffix(chi.URLParam(r, "y"), ".png"))
	if errZ != nil || errX != nil || errY != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("tile coordinates must be integers"))
		return
	}

	tile, err := s.proxy.Fetch(r.Context(), basemap, z, x, y)
	if err != nil {
		s.observeTile(basemap, "error")
		s.writeError(w, err)
		return
	}

	result := "upstream"
	if tile.FromCache {
		result = "cache"
	}
	s.observeTile(basemap, result)

	w.Header().Set("Content-Type", tile.ContentType)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	_, _ = w.Write(tile.Data)
}

// writeError maps the error taxonomy to HTTP statuses: configuration
// mistakes are the client's fault, everything else is ours.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, mapview.ErrConfig), errors.Is(err, layer.ErrUnknownLayer):
		status = http.StatusBadRequest
	case errors.Is(err, geodata.ErrLoad), errors.Is(err, crs.ErrProjection):
		status = http.StatusInternalServerError
	}

	if status >= 500 {
		s.log.Error("request failed", zap.Error(err))
	} else {
		s.log.Warn("request rejected", zap.Error(err))
	}
	writeJSON(w, status, errorBody(err.Error()))
}

func (s *Server) observeRender(outcome string, d time.Duration) {
	if s.metrics != nil {
		s.metrics.ObserveRender(outcome, d)
	}
}

func (s *Server) observeTile(basemap, result string) {
	if s.metrics != nil {
		s.metrics.ObserveTileFetch(basemap, result)
	}
}

// outcomeFor classifies an error into a render outcome label.
func outcomeFor(err error) string {
	switch {
	case errors.Is(err, mapview.ErrConfig), errors.Is(err, layer.ErrUnknownLayer):
		return observability.OutcomeConfigError
	case errors.Is(err, geodata.ErrLoad):
		return observability.OutcomeLoadError
	case errors.Is(err, crs.ErrProjection):
		return observability.OutcomeProjectionError
	default:
		return observability.OutcomeInternalError
	}
}

func boolParam(r *http.Request, name string, def bool) bool {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func errorBody(msg string) map[string]string {
	return map[string]string{"error": msg}
}
