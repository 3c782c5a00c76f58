package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/df07/go-weekend-raytracer/pkg/log"
	"github.com/df07/go-weekend-raytracer/pkg/renderer"
	"github.com/df07/go-weekend-raytracer/pkg/scene"
)

var logger = log.New("server")

// Limits applied to render requests
const (
	minWidth   = 16
	maxWidth   = 1920
	maxSamples = 1000
	maxDepth   = 100
)

// Defaults describes the render parameters used when a request omits them
type Defaults struct {
	Scene           string
	Width           int
	SamplesPerPixel int
	MaxDepth        int
}

// Server handles web requests for the raytracer
type Server struct {
	port     int
	registry *scene.Registry
	defaults Defaults
	router   *mux.Router
}

// NewServer creates a new web server
func NewServer(port int, registry *scene.Registry, defaults Defaults) *Server {
	s := &Server{
		port:     port,
		registry: registry,
		defaults: defaults,
	}
	s.router = s.routes()
	return s
}

// RenderRequest represents a render request from the client
type RenderRequest struct {
	ID              string `json:"id"`              // Render id, also sent as X-Render-Id
	Scene           string `json:"scene"`           // Scene name (e.g., "random")
	Width           int    `json:"width"`           // Image width; height follows the scene's aspect ratio
	SamplesPerPixel int    `json:"samplesPerPixel"` // Samples per pixel
	MaxDepth        int    `json:"maxDepth"`        // Maximum bounce depth
	Seed            int64  `json:"seed"`            // Sampler seed; 0 picks one from the clock
	Format          string `json:"format"`          // "png" or "ppm"
}

// Stats represents render statistics
type Stats struct {
	Width             int     `json:"width"`
	Height            int     `json:"height"`
	TotalPixels       int     `json:"totalPixels"`
	TotalSamples      int     `json:"totalSamples"`
	SamplesPerPixel   int     `json:"samplesPerPixel"`
	MaxDepth          int     `json:"maxDepth"`
	RaySegments       int     `json:"raySegments"`
	AverageDepth      float64 `json:"averageDepth"`
	DurationMs        int64   `json:"durationMs"`
	AverageLuminance  float64 `json:"averageLuminance"`
	SegmentsPerSecond float64 `json:"segmentsPerSecond"`
}

// Handler returns the routed HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	api.HandleFunc("/scenes", s.handleScenes).Methods(http.MethodGet)
	api.HandleFunc("/render", s.handleRender).Methods(http.MethodGet)
	api.HandleFunc("/render/ws", s.handleRenderWS).Methods(http.MethodGet)
	api.HandleFunc("/inspect", s.handleInspect).Methods(http.MethodGet)
	return r
}

// Start starts the web server
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	logger.Noticef("Starting web server on http://localhost%s", addr)
	return srv.ListenAndServe()
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleScenes lists the built-in scenes
func (s *Server) handleScenes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"scenes": s.registry.List()})
}

// parseRenderRequest parses and validates the query parameters of a render request
func (s *Server) parseRenderRequest(r *http.Request) (*RenderRequest, error) {
	query := r.URL.Query()
	req := &RenderRequest{
		ID:     uuid.NewString(),
		Scene:  s.defaults.Scene,
		Format: "png",
	}

	if name := query.Get("scene"); name != "" {
		req.Scene = name
	}
	if !s.registry.Has(req.Scene) {
		return nil, fmt.Errorf("unknown scene: %s", req.Scene)
	}

	var err error
	if req.Width, err = parseIntParam(query, "width", s.defaults.Width, minWidth, maxWidth); err != nil {
		return nil, err
	}
	if req.SamplesPerPixel, err = parseIntParam(query, "samples", s.defaults.SamplesPerPixel, 1, maxSamples); err != nil {
		return nil, err
	}
	if req.MaxDepth, err = parseIntParam(query, "depth", s.defaults.MaxDepth, 1, maxDepth); err != nil {
		return nil, err
	}
	if value := query.Get("seed"); value != "" {
		if req.Seed, err = strconv.ParseInt(value, 10, 64); err != nil {
			return nil, fmt.Errorf("invalid seed: %s", value)
		}
	}
	if value := query.Get("format"); value != "" {
		if value != "png" && value != "ppm" {
			return nil, fmt.Errorf("format must be png or ppm, got: %s", value)
		}
		req.Format = value
	}

	// Performance warning
	if req.Width > 800 && req.SamplesPerPixel > 100 {
		logger.Warningf("[%s] Large image with high samples may render slowly", req.ID)
	}

	return req, nil
}

// parseIntParam parses an integer parameter from URL query with validation
func parseIntParam(values url.Values, key string, defaultValue, min, max int) (int, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %d and %d, got: %d", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// toStats converts renderer statistics into the API representation
func toStats(stats renderer.RenderStats, luminance float64) Stats {
	return Stats{
		Width:             stats.Width,
		Height:            stats.Height,
		TotalPixels:       stats.TotalPixels,
		TotalSamples:      stats.TotalSamples,
		SamplesPerPixel:   stats.SamplesPerPixel,
		MaxDepth:          stats.MaxDepth,
		RaySegments:       stats.RaySegments,
		AverageDepth:      stats.AverageDepth(),
		DurationMs:        stats.Duration.Milliseconds(),
		AverageLuminance:  luminance,
		SegmentsPerSecond: stats.SegmentsPerSecond(),
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Errorf("Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
